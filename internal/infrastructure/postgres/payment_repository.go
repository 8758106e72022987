package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, invoice_id, invoice_number, amount, method, date, reference, notes, created_by, created_at, updated_at`

// PaymentRepo pagos sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.InvoiceID, p.InvoiceNumber, p.Amount, p.Method, p.Date, p.Reference, p.Notes,
		nullIfEmpty(p.CreatedBy), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert payment", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get payment", err)
	}
	return p, nil
}

func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE payments SET amount = $2, method = $3, date = $4, reference = $5, notes = $6, updated_at = $7
		WHERE id = $1`, p.ID, p.Amount, p.Method, p.Date, p.Reference, p.Notes, p.UpdatedAt)
	if err != nil {
		return wrap("update payment", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pago", p.ID)
	}
	return nil
}

func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return wrap("delete payment", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pago", id)
	}
	return nil
}

func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id = $1 ORDER BY date, created_at`, invoiceID)
	if err != nil {
		return nil, wrap("list payments", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, wrap("rows payment", rows.Err())
}

func (r *PaymentRepo) DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM payments WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return 0, wrap("delete payments", err)
	}
	return cmd.RowsAffected(), nil
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	var createdBy *string
	if err := row.Scan(&p.ID, &p.InvoiceID, &p.InvoiceNumber, &p.Amount, &p.Method, &p.Date,
		&p.Reference, &p.Notes, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedBy = derefStr(createdBy)
	return &p, nil
}
