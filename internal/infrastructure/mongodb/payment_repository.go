package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo abonos a facturas.
type PaymentRepo struct {
	col *mongo.Collection
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(db *mongo.Database) *PaymentRepo {
	return &PaymentRepo{col: db.Collection(colPayments)}
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.col.InsertOne(ctx, toPaymentDoc(p))
	return wrap("insert payment", err)
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	var doc paymentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrap("get payment", err)
	}
	return doc.toEntity(), nil
}

func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	res, err := r.col.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"amount":    dec128(p.Amount),
		"method":    p.Method,
		"date":      p.Date,
		"reference": p.Reference,
		"notes":     p.Notes,
		"updatedAt": p.UpdatedAt,
	}})
	if err != nil {
		return wrap("update payment", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("pago", p.ID)
	}
	return nil
}

func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap("delete payment", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("pago", id)
	}
	return nil
}

// ListByInvoice por fecha de pago ascendente.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	cur, err := r.col.Find(ctx, bson.M{"invoiceId": invoiceID},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, wrap("find payments", err)
	}
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode payments", err)
	}
	list := make([]*entity.Payment, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}

func (r *PaymentRepo) DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"invoiceId": invoiceID})
	if err != nil {
		return 0, wrap("delete payments", err)
	}
	return res.DeletedCount, nil
}
