package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, number, ncf, ncf_type, client_id, client, items, subtotal, discount, tax_rate, tax, total,
	paid_amount, credited_amount, status, payment_ids, credit_note_ids, date, due_date, notes, created_by, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la factura con sus líneas embebidas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, nullIfEmpty(inv.NCF), inv.NCFType, inv.ClientID,
		toClientDoc(inv.Client), invoiceItemDocs(inv.Items),
		inv.Subtotal, inv.Discount, inv.TaxRate, inv.Tax, inv.Total,
		inv.PaidAmount, inv.CreditedAmount, inv.Status,
		nonNil(inv.PaymentIDs), nonNil(inv.CreditNoteIDs),
		inv.Date, inv.DueDate, inv.Notes, nullIfEmpty(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número o NCF de factura ya existe", domain.ErrDuplicate)
		}
		return wrap("insert invoice", err)
	}
	return nil
}

// GetByID obtiene una factura completa por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get invoice", err)
	}
	return inv, nil
}

// List facturas por fecha descendente.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []any
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		query += ` AND client_id = $` + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += ` AND date < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY date DESC, created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list invoices", err)
	}
	return collectInvoices(rows)
}

// Delete elimina la factura. Sus pagos se eliminan antes desde el caso de uso.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return wrap("delete invoice", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("factura", id)
	}
	return nil
}

// AddPayment suma delta a paid_amount en una sola sentencia.
func (r *InvoiceRepo) AddPayment(ctx context.Context, id string, delta decimal.Decimal, paymentID string) (*entity.Invoice, error) {
	return r.mutate(ctx, id, `
		UPDATE invoices
		SET paid_amount = paid_amount + $2,
		    payment_ids = CASE WHEN $3::text = '' THEN payment_ids ELSE array_append(payment_ids, $3::text) END,
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+invoiceColumns, delta, paymentID)
}

// RemovePayment resta el monto y quita el pago de la lista.
func (r *InvoiceRepo) RemovePayment(ctx context.Context, id string, amount decimal.Decimal, paymentID string) (*entity.Invoice, error) {
	return r.mutate(ctx, id, `
		UPDATE invoices
		SET paid_amount = paid_amount - $2,
		    payment_ids = array_remove(payment_ids, $3::text),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+invoiceColumns, amount, paymentID)
}

// AddCreditNote suma el total de la nota a credited_amount.
func (r *InvoiceRepo) AddCreditNote(ctx context.Context, id string, amount decimal.Decimal, creditNoteID string) (*entity.Invoice, error) {
	return r.mutate(ctx, id, `
		UPDATE invoices
		SET credited_amount = credited_amount + $2,
		    credit_note_ids = array_append(credit_note_ids, $3::text),
		    updated_at      = now()
		WHERE id = $1
		RETURNING `+invoiceColumns, amount, creditNoteID)
}

func (r *InvoiceRepo) mutate(ctx context.Context, id, query string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("factura", id)
		}
		return nil, wrap("update invoice", err)
	}
	return inv, nil
}

// UpdateStatus cambia solo el estado.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrap("update invoice status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("factura", id)
	}
	return nil
}

// UpdateStatusIf transición condicionada al estado actual.
func (r *InvoiceRepo) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE invoices SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, wrap("update invoice status if", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// MaxNCFNumber mayor secuencia emitida del tipo. Los NCF tienen ancho fijo, así que el máximo
// lexicográfico es el máximo numérico.
func (r *InvoiceRepo) MaxNCFNumber(ctx context.Context, ncfType string) (int64, error) {
	return maxNCF(ctx, r.q, `SELECT max(ncf) FROM invoices WHERE ncf_type = $1 AND ncf IS NOT NULL`, ncfType)
}

func maxNCF(ctx context.Context, q Querier, query, ncfType string) (int64, error) {
	var ncf *string
	if err := q.QueryRow(ctx, query, ncfType).Scan(&ncf); err != nil {
		return 0, wrap("max ncf", err)
	}
	if ncf == nil {
		return 0, nil
	}
	_, n, err := dgii.ParseNCF(*ncf)
	if err != nil {
		return 0, fmt.Errorf("max ncf %s: %w", *ncf, err)
	}
	return n, nil
}

// UpdateClientSnapshot reescribe la copia del cliente en sus facturas.
func (r *InvoiceRepo) UpdateClientSnapshot(ctx context.Context, clientID string, snap entity.ClientSnapshot) (int64, error) {
	doc := toClientDoc(snap)
	cmd, err := r.q.Exec(ctx, `
		UPDATE invoices SET client = $2, updated_at = now()
		WHERE client_id = $1 AND client IS DISTINCT FROM $2::jsonb`, clientID, doc)
	if err != nil {
		return 0, wrap("update client snapshot", err)
	}
	return cmd.RowsAffected(), nil
}

// ListOverdue facturas Pendiente vencidas a la fecha.
func (r *InvoiceRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE status = $1 AND due_date IS NOT NULL AND due_date < $2
		ORDER BY due_date`, entity.InvoiceStatusPendiente, asOf)
	if err != nil {
		return nil, wrap("list overdue invoices", err)
	}
	return collectInvoices(rows)
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv       entity.Invoice
		ncf       *string
		createdBy *string
		client    clientDoc
		items     []itemDoc
	)
	err := row.Scan(&inv.ID, &inv.Number, &ncf, &inv.NCFType, &inv.ClientID, &client, &items,
		&inv.Subtotal, &inv.Discount, &inv.TaxRate, &inv.Tax, &inv.Total,
		&inv.PaidAmount, &inv.CreditedAmount, &inv.Status, &inv.PaymentIDs, &inv.CreditNoteIDs,
		&inv.Date, &inv.DueDate, &inv.Notes, &createdBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.NCF = derefStr(ncf)
	inv.CreatedBy = derefStr(createdBy)
	inv.Client = client.toEntity()
	inv.Items = make([]entity.InvoiceItem, len(items))
	for i, it := range items {
		inv.Items[i] = it.toEntity()
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, wrap("rows invoice", rows.Err())
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
