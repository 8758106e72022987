package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo clientes; el RNC es único cuando está presente.
type ClientRepo struct {
	col *mongo.Collection
}

// NewClientRepository construye el adaptador.
func NewClientRepository(db *mongo.Database) *ClientRepo {
	return &ClientRepo{col: db.Collection(colClients)}
}

func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if _, err := r.col.InsertOne(ctx, toClientDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: ya existe un cliente con RNC %s", domain.ErrDuplicate, c.RNC)
		}
		return wrap("insert client", err)
	}
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ClientRepo) GetByRNC(ctx context.Context, rnc string) (*entity.Client, error) {
	return r.findOne(ctx, bson.M{"rnc": rnc})
}

func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	set := bson.M{
		"name":      c.Name,
		"address":   c.Address,
		"phone":     c.Phone,
		"email":     c.Email,
		"updatedAt": c.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if c.RNC != "" {
		set["rnc"] = c.RNC
	} else {
		update["$unset"] = bson.M{"rnc": ""}
	}
	res, err := r.col.UpdateByID(ctx, c.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: ya existe un cliente con RNC %s", domain.ErrDuplicate, c.RNC)
		}
		return wrap("update client", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("cliente", c.ID)
	}
	return nil
}

// List búsqueda por nombre o RNC, orden alfabético.
func (r *ClientRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Client, error) {
	filter := bson.M{}
	if search != "" {
		rx := containsRegex(search)
		filter["$or"] = bson.A{bson.M{"name": rx}, bson.M{"rnc": rx}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	paginate(opts, limit, offset)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrap("find clients", err)
	}
	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode clients", err)
	}
	list := make([]*entity.Client, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}

func (r *ClientRepo) findOne(ctx context.Context, filter bson.M) (*entity.Client, error) {
	var doc clientDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrap("get client", err)
	}
	return doc.toEntity(), nil
}
