package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	invdomain "github.com/jhoicas/Gestion-RD-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// PaymentUseCase abonos a facturas. Cada operación ajusta paidAmount de forma atómica y
// recalcula el estado en la misma unidad de trabajo.
type PaymentUseCase struct {
	uow   unitofwork.Runner
	repos repository.Repositories
	loc   *time.Location
	log   zerolog.Logger
	now   func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(uow unitofwork.Runner, repos repository.Repositories, loc *time.Location, log zerolog.Logger) *PaymentUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &PaymentUseCase{uow: uow, repos: repos, loc: loc, log: log, now: time.Now}
}

// Register registra un pago. El monto no puede superar el saldo pendiente.
func (uc *PaymentUseCase) Register(ctx context.Context, userID, invoiceID string, in dto.PaymentRequest) (*dto.PaymentResponse, error) {
	now := uc.now()
	date, err := uc.validate(in, now)
	if err != nil {
		return nil, err
	}

	var (
		p      *entity.Payment
		status string
	)
	err = uc.uow.Run(ctx, "registrar_pago", func(ctx context.Context, repos repository.Repositories) error {
		inv, err := loadPayableInvoice(ctx, repos, invoiceID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(inv.Balance()) {
			return domain.Invalid("amount", "el monto (%s) excede el saldo pendiente (%s)",
				in.Amount.StringFixed(2), inv.Balance().StringFixed(2))
		}
		p = &entity.Payment{
			ID:            uuid.New().String(),
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.Number,
			Amount:        in.Amount,
			Method:        in.Method,
			Date:          date,
			Reference:     in.Reference,
			Notes:         in.Notes,
			CreatedBy:     userID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return fmt.Errorf("guardar pago: %w", err)
		}
		updated, err := repos.Invoices.AddPayment(ctx, inv.ID, in.Amount, p.ID)
		if err != nil {
			return fmt.Errorf("actualizar factura: %w", err)
		}
		status, err = syncStatus(ctx, repos, updated, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", p.ID).Str("invoice_id", invoiceID).Str("amount", p.Amount.String()).
		Str("invoice_status", status).Msg("pago registrado")
	res := ToPaymentResponse(p)
	res.InvoiceStatus = status
	return &res, nil
}

// Update edita un pago y aplica la diferencia de monto a la factura.
func (uc *PaymentUseCase) Update(ctx context.Context, paymentID string, in dto.PaymentRequest) (*dto.PaymentResponse, error) {
	now := uc.now()
	date, err := uc.validate(in, now)
	if err != nil {
		return nil, err
	}

	var (
		p      *entity.Payment
		status string
	)
	err = uc.uow.Run(ctx, "editar_pago", func(ctx context.Context, repos repository.Repositories) error {
		var err error
		p, err = repos.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("obtener pago: %w", err)
		}
		if p == nil {
			return domain.NotFound("pago", paymentID)
		}
		inv, err := loadPayableInvoice(ctx, repos, p.InvoiceID)
		if err != nil {
			return err
		}
		delta := in.Amount.Sub(p.Amount)
		if delta.GreaterThan(inv.Balance()) {
			return domain.Invalid("amount", "el nuevo monto excede el saldo pendiente (%s)", inv.Balance().StringFixed(2))
		}

		p.Amount = in.Amount
		p.Method = in.Method
		p.Date = date
		p.Reference = in.Reference
		p.Notes = in.Notes
		p.UpdatedAt = now
		if err := repos.Payments.Update(ctx, p); err != nil {
			return fmt.Errorf("actualizar pago: %w", err)
		}
		updated := inv
		if !delta.IsZero() {
			if updated, err = repos.Invoices.AddPayment(ctx, inv.ID, delta, ""); err != nil {
				return fmt.Errorf("actualizar factura: %w", err)
			}
		}
		status, err = syncStatus(ctx, repos, updated, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", paymentID).Str("amount", p.Amount.String()).Msg("pago actualizado")
	res := ToPaymentResponse(p)
	res.InvoiceStatus = status
	return &res, nil
}

// Delete elimina un pago y lo descuenta de la factura.
func (uc *PaymentUseCase) Delete(ctx context.Context, paymentID string) error {
	now := uc.now()
	err := uc.uow.Run(ctx, "eliminar_pago", func(ctx context.Context, repos repository.Repositories) error {
		p, err := repos.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("obtener pago: %w", err)
		}
		if p == nil {
			return domain.NotFound("pago", paymentID)
		}
		if err := repos.Payments.Delete(ctx, p.ID); err != nil {
			return err
		}
		updated, err := repos.Invoices.RemovePayment(ctx, p.InvoiceID, p.Amount, p.ID)
		if err != nil {
			return fmt.Errorf("actualizar factura: %w", err)
		}
		_, err = syncStatus(ctx, repos, updated, now)
		return err
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("payment_id", paymentID).Msg("pago eliminado")
	return nil
}

// ListByInvoice pagos de una factura por fecha.
func (uc *PaymentUseCase) ListByInvoice(ctx context.Context, invoiceID string) ([]dto.PaymentResponse, error) {
	list, err := uc.repos.Payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToPaymentResponse(p))
	}
	return out, nil
}

func (uc *PaymentUseCase) validate(in dto.PaymentRequest, now time.Time) (time.Time, error) {
	if !in.Amount.IsPositive() {
		return time.Time{}, domain.Invalid("amount", "el monto debe ser mayor que cero")
	}
	if !entity.ValidPaymentMethod(in.Method) {
		return time.Time{}, domain.Invalid("method", "método de pago %q no válido", in.Method)
	}
	date, err := invdomain.ParseMovementDate(in.Date, uc.loc, now)
	if err != nil {
		return time.Time{}, domain.Invalid("date", "%s", err.Error())
	}
	return date, nil
}

func loadPayableInvoice(ctx context.Context, repos repository.Repositories, id string) (*entity.Invoice, error) {
	inv, err := repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("factura", id)
	}
	if inv.Status == entity.InvoiceStatusAnulada {
		return nil, fmt.Errorf("%w: la factura %s está anulada", domain.ErrConflict, inv.Number)
	}
	return inv, nil
}

// syncStatus recalcula el estado y lo persiste solo si cambió.
func syncStatus(ctx context.Context, repos repository.Repositories, inv *entity.Invoice, now time.Time) (string, error) {
	before := inv.Status
	after := inv.RecomputeStatus(now)
	if after == before {
		return after, nil
	}
	if err := repos.Invoices.UpdateStatus(ctx, inv.ID, after); err != nil {
		return "", fmt.Errorf("actualizar estado: %w", err)
	}
	return after, nil
}
