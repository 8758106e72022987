package repository

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// PaymentRepository abonos a facturas.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id string) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
	DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error)
}
