package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

var (
	_ repository.ProductRepository           = (*productRepo)(nil)
	_ repository.InventoryMovementRepository = (*movementRepo)(nil)
	_ repository.InvoiceRepository           = (*invoiceRepo)(nil)
	_ repository.CreditNoteRepository        = (*creditNoteRepo)(nil)
	_ repository.PaymentRepository           = (*paymentRepo)(nil)
	_ repository.NCFSequenceRepository       = (*sequenceRepo)(nil)
	_ repository.ClientRepository            = (*clientRepo)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Productos
// ─────────────────────────────────────────────────────────────────────────────

type productRepo struct {
	s  *Store
	tx bool
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.data.products {
		if p.Code != "" && strings.EqualFold(other.Code, p.Code) {
			return domain.ErrDuplicate
		}
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.data.products[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.products {
		if strings.EqualFold(p.Code, code) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(f.Search)
	var out []*entity.Product
	for _, p := range r.s.data.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lockWrite(r.tx)()
	cur, ok := r.s.data.products[p.ID]
	if !ok {
		return domain.NotFound("producto", p.ID)
	}
	updated := *p
	updated.Stock = cur.Stock
	r.s.data.products[p.ID] = updated
	return nil
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	defer r.s.lockWrite(r.tx)()
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.NotFound("producto", id)
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	r.s.data.products[id] = p
	return nil
}

// IncrementStock valida todos los guardas antes de aplicar, como una escritura masiva atómica.
func (r *productRepo) IncrementStock(_ context.Context, deltas []repository.StockDelta) error {
	defer r.s.lockWrite(r.tx)()
	for _, d := range deltas {
		p, ok := r.s.data.products[d.ProductID]
		if !ok {
			return &domain.ProductNotFoundError{ProductID: d.ProductID}
		}
		if d.Quantity.IsNegative() && p.Stock.LessThan(d.Quantity.Neg()) {
			return &domain.InsufficientStockError{
				ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: d.Quantity.Neg(),
			}
		}
	}
	now := time.Now()
	for _, d := range deltas {
		p := r.s.data.products[d.ProductID]
		p.Stock = p.Stock.Add(d.Quantity)
		p.UpdatedAt = now
		r.s.data.products[d.ProductID] = p
	}
	return nil
}

func (r *productRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.data.products {
		if p.IsLowStock() {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Movimientos
// ─────────────────────────────────────────────────────────────────────────────

type movementRepo struct {
	s  *Store
	tx bool
}

func (r *movementRepo) CreateMany(_ context.Context, movs []*entity.InventoryMovement) error {
	defer r.s.lockWrite(r.tx)()
	for _, m := range movs {
		r.s.data.movements = append(r.s.data.movements, *m)
	}
	return nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	// recorrido inverso: a igual fecha, el más reciente primero
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.From != nil && m.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.Date.Before(*f.To) {
			continue
		}
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, f.Limit, f.Offset), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Facturas
// ─────────────────────────────────────────────────────────────────────────────

type invoiceRepo struct {
	s  *Store
	tx bool
}

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, row := range r.s.data.invoices {
		if row.inv.Number == inv.Number || (inv.NCF != "" && row.inv.NCF == inv.NCF) {
			return domain.ErrDuplicate
		}
	}
	r.s.data.invoices[inv.ID] = invoiceRow{inv: cloneInvoice(*inv), seq: r.s.nextSeq()}
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.data.invoices[id]
	if !ok {
		return nil, nil
	}
	inv := cloneInvoice(row.inv)
	return &inv, nil
}

func (r *invoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]invoiceRow, 0, len(r.s.data.invoices))
	for _, row := range r.s.data.invoices {
		inv := row.inv
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.From != nil && inv.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !inv.Date.Before(*f.To) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].inv.Date.Equal(rows[j].inv.Date) {
			return rows[i].inv.Date.After(rows[j].inv.Date)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]*entity.Invoice, 0, len(rows))
	for _, row := range rows {
		inv := cloneInvoice(row.inv)
		out = append(out, &inv)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *invoiceRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.invoices[id]; !ok {
		return domain.NotFound("factura", id)
	}
	delete(r.s.data.invoices, id)
	return nil
}

func (r *invoiceRepo) mutate(id string, fn func(inv *entity.Invoice)) (*entity.Invoice, error) {
	defer r.s.lockWrite(r.tx)()
	row, ok := r.s.data.invoices[id]
	if !ok {
		return nil, domain.NotFound("factura", id)
	}
	inv := cloneInvoice(row.inv)
	fn(&inv)
	inv.UpdatedAt = time.Now()
	row.inv = inv
	r.s.data.invoices[id] = row
	out := cloneInvoice(inv)
	return &out, nil
}

func (r *invoiceRepo) AddPayment(_ context.Context, id string, delta decimal.Decimal, paymentID string) (*entity.Invoice, error) {
	return r.mutate(id, func(inv *entity.Invoice) {
		inv.PaidAmount = inv.PaidAmount.Add(delta)
		if paymentID != "" {
			inv.PaymentIDs = append(inv.PaymentIDs, paymentID)
		}
	})
}

func (r *invoiceRepo) RemovePayment(_ context.Context, id string, amount decimal.Decimal, paymentID string) (*entity.Invoice, error) {
	return r.mutate(id, func(inv *entity.Invoice) {
		inv.PaidAmount = inv.PaidAmount.Sub(amount)
		ids := inv.PaymentIDs[:0]
		for _, pid := range inv.PaymentIDs {
			if pid != paymentID {
				ids = append(ids, pid)
			}
		}
		inv.PaymentIDs = ids
	})
}

func (r *invoiceRepo) AddCreditNote(_ context.Context, id string, amount decimal.Decimal, creditNoteID string) (*entity.Invoice, error) {
	return r.mutate(id, func(inv *entity.Invoice) {
		inv.CreditedAmount = inv.CreditedAmount.Add(amount)
		inv.CreditNoteIDs = append(inv.CreditNoteIDs, creditNoteID)
	})
}

func (r *invoiceRepo) UpdateStatus(_ context.Context, id, status string) error {
	_, err := r.mutate(id, func(inv *entity.Invoice) { inv.Status = status })
	return err
}

func (r *invoiceRepo) UpdateStatusIf(_ context.Context, id, from, to string) (bool, error) {
	defer r.s.lockWrite(r.tx)()
	row, ok := r.s.data.invoices[id]
	if !ok || row.inv.Status != from {
		return false, nil
	}
	row.inv = cloneInvoice(row.inv)
	row.inv.Status = to
	row.inv.UpdatedAt = time.Now()
	r.s.data.invoices[id] = row
	return true, nil
}

func (r *invoiceRepo) MaxNCFNumber(_ context.Context, ncfType string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var maxN int64
	for _, row := range r.s.data.invoices {
		if row.inv.NCFType != ncfType || row.inv.NCF == "" {
			continue
		}
		if _, n, err := dgii.ParseNCF(row.inv.NCF); err == nil && n > maxN {
			maxN = n
		}
	}
	return maxN, nil
}

func (r *invoiceRepo) UpdateClientSnapshot(_ context.Context, clientID string, snap entity.ClientSnapshot) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for id, row := range r.s.data.invoices {
		if row.inv.ClientID != clientID || row.inv.Client == snap {
			continue
		}
		row.inv = cloneInvoice(row.inv)
		row.inv.Client = snap
		r.s.data.invoices[id] = row
		n++
	}
	return n, nil
}

func (r *invoiceRepo) ListOverdue(_ context.Context, asOf time.Time) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, row := range r.s.data.invoices {
		if row.inv.Status == entity.InvoiceStatusPendiente && row.inv.DueDate != nil && row.inv.DueDate.Before(asOf) {
			inv := cloneInvoice(row.inv)
			out = append(out, &inv)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Notas de crédito
// ─────────────────────────────────────────────────────────────────────────────

type creditNoteRepo struct {
	s  *Store
	tx bool
}

func (r *creditNoteRepo) Create(_ context.Context, cn *entity.CreditNote) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.creditNotes[cn.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.data.creditNotes[cn.ID] = creditNoteRow{cn: cloneCreditNote(*cn), seq: r.s.nextSeq()}
	return nil
}

func (r *creditNoteRepo) GetByID(_ context.Context, id string) (*entity.CreditNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.data.creditNotes[id]
	if !ok {
		return nil, nil
	}
	cn := cloneCreditNote(row.cn)
	return &cn, nil
}

func (r *creditNoteRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.CreditNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []creditNoteRow
	for _, row := range r.s.data.creditNotes {
		if row.cn.InvoiceID == invoiceID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*entity.CreditNote, 0, len(rows))
	for _, row := range rows {
		cn := cloneCreditNote(row.cn)
		out = append(out, &cn)
	}
	return out, nil
}

func (r *creditNoteRepo) MaxNCFNumber(_ context.Context, ncfType string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var maxN int64
	for _, row := range r.s.data.creditNotes {
		if t, n, err := dgii.ParseNCF(row.cn.NCF); err == nil && t == ncfType && n > maxN {
			maxN = n
		}
	}
	return maxN, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Pagos
// ─────────────────────────────────────────────────────────────────────────────

type paymentRepo struct {
	s  *Store
	tx bool
}

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.payments[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *paymentRepo) Update(_ context.Context, p *entity.Payment) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.payments[p.ID]; !ok {
		return domain.NotFound("pago", p.ID)
	}
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.payments[id]; !ok {
		return domain.NotFound("pago", id)
	}
	delete(r.s.data.payments, id)
	return nil
}

func (r *paymentRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.s.data.payments {
		if p.InvoiceID == invoiceID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *paymentRepo) DeleteByInvoice(_ context.Context, invoiceID string) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for id, p := range r.s.data.payments {
		if p.InvoiceID == invoiceID {
			delete(r.s.data.payments, id)
			n++
		}
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Secuencias
// ─────────────────────────────────────────────────────────────────────────────

type sequenceRepo struct {
	s  *Store
	tx bool
}

func (r *sequenceRepo) Next(_ context.Context, code string) (*entity.NCFSequence, error) {
	defer r.s.lockWrite(r.tx)()
	seq := r.s.data.sequences[code]
	seq.Type = code
	seq.Current++
	seq.UpdatedAt = time.Now()
	r.s.data.sequences[code] = seq
	return copySequence(seq), nil
}

func (r *sequenceRepo) Get(_ context.Context, code string) (*entity.NCFSequence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seq, ok := r.s.data.sequences[code]
	if !ok {
		return nil, nil
	}
	return copySequence(seq), nil
}

func (r *sequenceRepo) Save(_ context.Context, seq *entity.NCFSequence) error {
	defer r.s.lockWrite(r.tx)()
	r.s.data.sequences[seq.Type] = *copySequence(*seq)
	return nil
}

func (r *sequenceRepo) List(_ context.Context) ([]*entity.NCFSequence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.NCFSequence, 0, len(r.s.data.sequences))
	for _, seq := range r.s.data.sequences {
		out = append(out, copySequence(seq))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func copySequence(seq entity.NCFSequence) *entity.NCFSequence {
	if seq.ExpiresAt != nil {
		e := *seq.ExpiresAt
		seq.ExpiresAt = &e
	}
	return &seq
}

// ─────────────────────────────────────────────────────────────────────────────
// Clientes
// ─────────────────────────────────────────────────────────────────────────────

type clientRepo struct {
	s  *Store
	tx bool
}

func (r *clientRepo) Create(_ context.Context, c *entity.Client) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.clients[c.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.data.clients {
		if c.RNC != "" && other.RNC == c.RNC {
			return domain.ErrDuplicate
		}
	}
	r.s.data.clients[c.ID] = *c
	return nil
}

func (r *clientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *clientRepo) GetByRNC(_ context.Context, rnc string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.clients {
		if c.RNC == rnc {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *clientRepo) Update(_ context.Context, c *entity.Client) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.clients[c.ID]; !ok {
		return domain.NotFound("cliente", c.ID)
	}
	for id, other := range r.s.data.clients {
		if id != c.ID && c.RNC != "" && other.RNC == c.RNC {
			return domain.ErrDuplicate
		}
	}
	r.s.data.clients[c.ID] = *c
	return nil
}

func (r *clientRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search = strings.ToLower(search)
	var out []*entity.Client
	for _, c := range r.s.data.clients {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(c.RNC, search) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}
