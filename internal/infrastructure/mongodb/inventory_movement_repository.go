package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo movimientos de inventario; solo inserción.
type InventoryMovementRepo struct {
	col *mongo.Collection
}

// NewInventoryMovementRepository construye el adaptador.
func NewInventoryMovementRepository(db *mongo.Database) *InventoryMovementRepo {
	return &InventoryMovementRepo{col: db.Collection(colMovements)}
}

// CreateMany inserta todos los movimientos de una operación con un solo insertMany.
func (r *InventoryMovementRepo) CreateMany(ctx context.Context, movements []*entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	docs := make([]any, len(movements))
	for i, m := range movements {
		docs[i] = toMovementDoc(m)
	}
	_, err := r.col.InsertMany(ctx, docs)
	return wrap("insert movements", err)
}

func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	filter := bson.M{}
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	date := bson.M{}
	if f.From != nil {
		date["$gte"] = *f.From
	}
	if f.To != nil {
		date["$lt"] = *f.To
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	paginate(opts, f.Limit, f.Offset)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrap("find movements", err)
	}
	var docs []movementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode movements", err)
	}
	list := make([]*entity.InventoryMovement, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}
