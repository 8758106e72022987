package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo notas de crédito; solo inserción y lectura.
type CreditNoteRepo struct {
	col *mongo.Collection
}

// NewCreditNoteRepository construye el adaptador.
func NewCreditNoteRepository(db *mongo.Database) *CreditNoteRepo {
	return &CreditNoteRepo{col: db.Collection(colCreditNotes)}
}

func (r *CreditNoteRepo) Create(ctx context.Context, cn *entity.CreditNote) error {
	if _, err := r.col.InsertOne(ctx, toCreditNoteDoc(cn)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: NCF de nota de crédito ya existe", domain.ErrDuplicate)
		}
		return wrap("insert credit note", err)
	}
	return nil
}

func (r *CreditNoteRepo) GetByID(ctx context.Context, id string) (*entity.CreditNote, error) {
	var doc creditNoteDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrap("get credit note", err)
	}
	return doc.toEntity(), nil
}

// ListByInvoice en orden de emisión.
func (r *CreditNoteRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.CreditNote, error) {
	cur, err := r.col.Find(ctx, bson.M{"invoiceId": invoiceID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "ncf", Value: 1}}))
	if err != nil {
		return nil, wrap("find credit notes", err)
	}
	var docs []creditNoteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode credit notes", err)
	}
	list := make([]*entity.CreditNote, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}

// MaxNCFNumber el prefijo del NCF ya identifica el tipo (B04, E34).
func (r *CreditNoteRepo) MaxNCFNumber(ctx context.Context, ncfType string) (int64, error) {
	return maxNCF(ctx, r.col, bson.M{"ncf": bson.M{"$regex": "^" + regexp.QuoteMeta(ncfType)}})
}
