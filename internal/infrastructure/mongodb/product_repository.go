package mongodb

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre la colección products.
type ProductRepo struct {
	col *mongo.Collection
}

// NewProductRepository construye el adaptador.
func NewProductRepository(db *mongo.Database) *ProductRepo {
	return &ProductRepo{col: db.Collection(colProducts)}
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if _, err := r.col.InsertOne(ctx, toProductDoc(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert product", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"codeLower": lower(code)})
}

// List ordena por nombre; la búsqueda es por subcadena en nombre o código.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	filter := bson.M{}
	if f.Search != "" {
		rx := containsRegex(f.Search)
		filter["$or"] = bson.A{bson.M{"name": rx}, bson.M{"code": rx}}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	paginate(opts, f.Limit, f.Offset)
	return r.find(ctx, filter, opts)
}

// Update nunca toca stock ni costo.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	res, err := r.col.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"unitMeasure": p.UnitMeasure,
		"price":       dec128(p.Price),
		"taxRate":     dec128(p.TaxRate),
		"minStock":    dec128(p.MinStock),
		"updatedAt":   p.UpdatedAt,
	}})
	if err != nil {
		return wrap("update product", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("producto", p.ID)
	}
	return nil
}

func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.col.UpdateByID(ctx, productID, bson.M{"$set": bson.M{
		"cost":      dec128(cost),
		"updatedAt": time.Now(),
	}})
	return wrap("update product cost", err)
}

// IncrementStock aplica todos los $inc en un solo bulkWrite. Los decrementos llevan la guarda
// stock >= cantidad en el filtro. Cada documento tocado queda marcado con el id de la operación;
// si alguna guarda falla se revierten los marcados y se informa el faltante.
func (r *ProductRepo) IncrementStock(ctx context.Context, deltas []repository.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	opID := uuid.NewString()
	now := time.Now()
	models := make([]mongo.WriteModel, len(deltas))
	ids := make([]string, len(deltas))
	for i, d := range deltas {
		ids[i] = d.ProductID
		filter := bson.M{"_id": d.ProductID}
		if d.Quantity.IsNegative() {
			filter["stock"] = bson.M{"$gte": dec128(d.Quantity.Neg())}
		}
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{
				"$inc": bson.M{"stock": dec128(d.Quantity)},
				"$set": bson.M{"stockOp": opID, "updatedAt": now},
			})
	}
	res, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return wrap("increment stock", err)
	}
	if int(res.MatchedCount) == len(deltas) {
		return nil
	}

	current, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return err
	}
	byID := make(map[string]*entity.Product, len(current))
	for _, p := range current {
		byID[p.ID] = p
	}
	applied, err := r.appliedBy(ctx, opID, ids)
	if err != nil {
		return err
	}

	var failed *repository.StockDelta
	var undo []mongo.WriteModel
	for i, d := range deltas {
		if applied[d.ProductID] {
			undo = append(undo, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": d.ProductID, "stockOp": opID}).
				SetUpdate(bson.M{"$inc": bson.M{"stock": dec128(d.Quantity.Neg())}, "$unset": bson.M{"stockOp": ""}}))
			continue
		}
		if failed == nil {
			failed = &deltas[i]
		}
	}
	if len(undo) > 0 {
		if _, err := r.col.BulkWrite(ctx, undo, options.BulkWrite().SetOrdered(false)); err != nil {
			return wrap("revert stock", err)
		}
	}
	if failed == nil {
		return nil
	}

	p, ok := byID[failed.ProductID]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: failed.ProductID}
	}
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   failed.Quantity.Neg(),
	}
}

// appliedBy productos que la operación opID alcanzó a modificar.
func (r *ProductRepo) appliedBy(ctx context.Context, opID string, ids []string) (map[string]bool, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "stockOp": opID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, wrap("find applied stock", err)
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrap("decode applied stock", err)
	}
	applied := make(map[string]bool, len(rows))
	for _, row := range rows {
		applied[row.ID] = true
	}
	return applied, nil
}

// ListLowStock productos con mínimo definido y stock en o por debajo de él.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	all, err := r.find(ctx, bson.M{"minStock": bson.M{"$gt": dec128(decimal.Zero)}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var list []*entity.Product
	for _, p := range all {
		if p.IsLowStock() {
			list = append(list, p)
		}
	}
	return list, nil
}

func (r *ProductRepo) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	var doc productDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrap("get product", err)
	}
	return doc.toEntity(), nil
}

func (r *ProductRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Product, error) {
	cur, err := r.col.Find(ctx, filter, optsOrDefault(opts))
	if err != nil {
		return nil, wrap("find products", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode products", err)
	}
	list := make([]*entity.Product, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}

func optsOrDefault(opts *options.FindOptions) *options.FindOptions {
	if opts == nil {
		return options.Find()
	}
	return opts
}

func paginate(opts *options.FindOptions, limit, offset int) {
	if limit > 0 {
		opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}
}

// containsRegex búsqueda por subcadena sin distinguir mayúsculas.
func containsRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
