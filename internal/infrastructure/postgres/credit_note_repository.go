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

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

const creditNoteColumns = `id, ncf, invoice_id, invoice_number, invoice_ncf, client_id, client, reason, items,
	subtotal, discount, tax_rate, tax, total, notes, date, created_by, created_at`

// CreditNoteRepo notas de crédito sobre PostgreSQL; solo inserción y lectura.
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

func (r *CreditNoteRepo) Create(ctx context.Context, cn *entity.CreditNote) error {
	query := `
		INSERT INTO credit_notes (` + creditNoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		cn.ID, cn.NCF, cn.InvoiceID, cn.InvoiceNumber, cn.InvoiceNCF, cn.ClientID,
		toClientDoc(cn.Client), cn.Reason, creditItemDocs(cn.Items),
		cn.Subtotal, cn.Discount, cn.TaxRate, cn.Tax, cn.Total,
		cn.Notes, cn.Date, nullIfEmpty(cn.CreatedBy), cn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: NCF %s ya emitido", domain.ErrDuplicate, cn.NCF)
		}
		return wrap("insert credit note", err)
	}
	return nil
}

func (r *CreditNoteRepo) GetByID(ctx context.Context, id string) (*entity.CreditNote, error) {
	cn, err := scanCreditNote(r.q.QueryRow(ctx, `SELECT `+creditNoteColumns+` FROM credit_notes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get credit note", err)
	}
	return cn, nil
}

func (r *CreditNoteRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.CreditNote, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+creditNoteColumns+` FROM credit_notes
		WHERE invoice_id = $1 ORDER BY created_at, ncf`, invoiceID)
	if err != nil {
		return nil, wrap("list credit notes", err)
	}
	defer rows.Close()
	var list []*entity.CreditNote
	for rows.Next() {
		cn, err := scanCreditNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		list = append(list, cn)
	}
	return list, wrap("rows credit note", rows.Err())
}

func (r *CreditNoteRepo) MaxNCFNumber(ctx context.Context, ncfType string) (int64, error) {
	return maxNCF(ctx, r.q, `SELECT max(ncf) FROM credit_notes WHERE left(ncf, 3) = $1`, ncfType)
}

func scanCreditNote(row pgx.Row) (*entity.CreditNote, error) {
	var (
		cn        entity.CreditNote
		createdBy *string
		client    clientDoc
		items     []itemDoc
	)
	err := row.Scan(&cn.ID, &cn.NCF, &cn.InvoiceID, &cn.InvoiceNumber, &cn.InvoiceNCF, &cn.ClientID,
		&client, &cn.Reason, &items, &cn.Subtotal, &cn.Discount, &cn.TaxRate, &cn.Tax, &cn.Total,
		&cn.Notes, &cn.Date, &createdBy, &cn.CreatedAt)
	if err != nil {
		return nil, err
	}
	cn.CreatedBy = derefStr(createdBy)
	cn.Client = client.toEntity()
	cn.Items = make([]entity.CreditNoteItem, len(items))
	for i, it := range items {
		idx := 0
		if it.LineIndex != nil {
			idx = *it.LineIndex
		}
		cn.Items[i] = entity.CreditNoteItem{LineIndex: idx, InvoiceItem: it.toEntity()}
	}
	return &cn, nil
}
