package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas con líneas y copia del cliente embebidas.
type InvoiceRepo struct {
	col *mongo.Collection
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(db *mongo.Database) *InvoiceRepo {
	return &InvoiceRepo{col: db.Collection(colInvoices)}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	doc := toInvoiceDoc(inv)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: número o NCF de factura ya existe", domain.ErrDuplicate)
		}
		return wrap("insert invoice", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var doc invoiceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrap("get invoice", err)
	}
	return doc.toEntity(), nil
}

// List ordena por fecha descendente.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	filter := bson.M{}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
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
	return r.find(ctx, filter, opts)
}

func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap("delete invoice", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("factura", id)
	}
	return nil
}

// AddPayment $inc sobre paidAmount y $push del pago en una sola actualización.
func (r *InvoiceRepo) AddPayment(ctx context.Context, id string, delta decimal.Decimal, paymentID string) (*entity.Invoice, error) {
	update := bson.M{
		"$inc": bson.M{"paidAmount": dec128(delta)},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	if paymentID != "" {
		update["$push"] = bson.M{"paymentIds": paymentID}
	}
	return r.mutate(ctx, id, update)
}

func (r *InvoiceRepo) RemovePayment(ctx context.Context, id string, amount decimal.Decimal, paymentID string) (*entity.Invoice, error) {
	return r.mutate(ctx, id, bson.M{
		"$inc":  bson.M{"paidAmount": dec128(amount.Neg())},
		"$pull": bson.M{"paymentIds": paymentID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *InvoiceRepo) AddCreditNote(ctx context.Context, id string, amount decimal.Decimal, creditNoteID string) (*entity.Invoice, error) {
	return r.mutate(ctx, id, bson.M{
		"$inc":  bson.M{"creditedAmount": dec128(amount)},
		"$push": bson.M{"creditNoteIds": creditNoteID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *InvoiceRepo) mutate(ctx context.Context, id string, update bson.M) (*entity.Invoice, error) {
	var doc invoiceDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("factura", id)
		}
		return nil, wrap("update invoice", err)
	}
	return doc.toEntity(), nil
}

func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return wrap("update invoice status", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("factura", id)
	}
	return nil
}

func (r *InvoiceRepo) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}})
	if err != nil {
		return false, wrap("update invoice status if", err)
	}
	return res.MatchedCount > 0, nil
}

// MaxNCFNumber los NCF tienen ancho fijo: el mayor en orden lexicográfico es el mayor número.
func (r *InvoiceRepo) MaxNCFNumber(ctx context.Context, ncfType string) (int64, error) {
	return maxNCF(ctx, r.col, bson.M{"ncfType": ncfType, "ncf": bson.M{"$type": "string", "$ne": ""}})
}

func maxNCF(ctx context.Context, col *mongo.Collection, filter bson.M) (int64, error) {
	var row struct {
		NCF string `bson:"ncf"`
	}
	err := col.FindOne(ctx, filter, options.FindOne().
		SetSort(bson.D{{Key: "ncf", Value: -1}}).
		SetProjection(bson.M{"ncf": 1})).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, wrap("max ncf", err)
	}
	_, n, err := dgii.ParseNCF(row.NCF)
	if err != nil {
		return 0, fmt.Errorf("max ncf %s: %w", row.NCF, err)
	}
	return n, nil
}

// UpdateClientSnapshot solo reescribe las facturas cuya copia difiere.
func (r *InvoiceRepo) UpdateClientSnapshot(ctx context.Context, clientID string, snap entity.ClientSnapshot) (int64, error) {
	doc := clientSnapshotDoc(snap)
	res, err := r.col.UpdateMany(ctx,
		bson.M{"clientId": clientID, "client": bson.M{"$ne": doc}},
		bson.M{"$set": bson.M{"client": doc, "updatedAt": time.Now()}})
	if err != nil {
		return 0, wrap("update client snapshot", err)
	}
	return res.ModifiedCount, nil
}

func (r *InvoiceRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*entity.Invoice, error) {
	return r.find(ctx, bson.M{
		"status":  entity.InvoiceStatusPendiente,
		"dueDate": bson.M{"$ne": nil, "$lt": asOf},
	}, options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
}

func (r *InvoiceRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Invoice, error) {
	cur, err := r.col.Find(ctx, filter, optsOrDefault(opts))
	if err != nil {
		return nil, wrap("find invoices", err)
	}
	var docs []invoiceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode invoices", err)
	}
	list := make([]*entity.Invoice, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}
