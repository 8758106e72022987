package repository

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// CreditNoteRepository notas de crédito; solo inserción y lectura.
type CreditNoteRepository interface {
	Create(ctx context.Context, note *entity.CreditNote) error
	GetByID(ctx context.Context, id string) (*entity.CreditNote, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.CreditNote, error)
	MaxNCFNumber(ctx context.Context, ncfType string) (int64, error)
}
