package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceFilter filtros del listado de facturas.
type InvoiceFilter struct {
	ClientID string
	Status   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// InvoiceRepository define el puerto de persistencia para Invoice (líneas embebidas).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Delete(ctx context.Context, id string) error
	// AddPayment incrementa atómicamente paidAmount (delta con signo) y, si paymentID no es vacío,
	// lo agrega a la lista de pagos. Devuelve la factura actualizada.
	AddPayment(ctx context.Context, id string, delta decimal.Decimal, paymentID string) (*entity.Invoice, error)
	// RemovePayment decrementa paidAmount y quita el pago de la lista.
	RemovePayment(ctx context.Context, id string, amount decimal.Decimal, paymentID string) (*entity.Invoice, error)
	// AddCreditNote incrementa creditedAmount y agrega la nota a la lista.
	AddCreditNote(ctx context.Context, id string, amount decimal.Decimal, creditNoteID string) (*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// UpdateStatusIf cambia el estado solo si el actual es from. Devuelve false si la factura no
	// existe o ya tenía otro estado.
	UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error)
	// MaxNCFNumber mayor número secuencial emitido con ese tipo de NCF (0 si ninguno).
	MaxNCFNumber(ctx context.Context, ncfType string) (int64, error)
	// UpdateClientSnapshot reescribe la copia del cliente en todas sus facturas. Devuelve cuántas cambió.
	UpdateClientSnapshot(ctx context.Context, clientID string, snap entity.ClientSnapshot) (int64, error)
	// ListOverdue facturas Pendiente con vencimiento anterior a asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]*entity.Invoice, error)
}
