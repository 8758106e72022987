// Package memory almacenamiento en proceso para desarrollo y pruebas. Implementa los mismos
// puertos que los adaptadores Mongo y PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ unitofwork.Executor = (*Store)(nil)

// Option configura el Store.
type Option func(*Store)

// WithoutTransactions simula un despliegue que acepta el sondeo pero rechaza la transacción al
// iniciarla (MongoDB standalone).
func WithoutTransactions() Option {
	return func(s *Store) { s.noTx = true }
}

// Store guarda todo en mapas protegidos por un mutex. Las transacciones se serializan y se
// implementan con copia y restauración del estado; las escrituras fuera de transacción esperan
// a que termine la transacción en curso para que una restauración no las pierda.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	noTx bool
	seq  int64 // orden de inserción

	data state
}

type state struct {
	products    map[string]entity.Product
	movements   []entity.InventoryMovement
	invoices    map[string]invoiceRow
	creditNotes map[string]creditNoteRow
	payments    map[string]entity.Payment
	sequences   map[string]entity.NCFSequence
	clients     map[string]entity.Client
}

type invoiceRow struct {
	inv entity.Invoice
	seq int64
}

type creditNoteRow struct {
	cn  entity.CreditNote
	seq int64
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{data: state{
		products:    make(map[string]entity.Product),
		invoices:    make(map[string]invoiceRow),
		creditNotes: make(map[string]creditNoteRow),
		payments:    make(map[string]entity.Payment),
		sequences:   make(map[string]entity.NCFSequence),
		clients:     make(map[string]entity.Client),
	}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Repositories repositorios fuera de transacción.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(false)
}

func (s *Store) repositories(tx bool) repository.Repositories {
	return repository.Repositories{
		Products:    &productRepo{s: s, tx: tx},
		Movements:   &movementRepo{s: s, tx: tx},
		Invoices:    &invoiceRepo{s: s, tx: tx},
		CreditNotes: &creditNoteRepo{s: s, tx: tx},
		Payments:    &paymentRepo{s: s, tx: tx},
		Sequences:   &sequenceRepo{s: s, tx: tx},
		Clients:     &clientRepo{s: s, tx: tx},
	}
}

// lockWrite toma los candados de escritura y devuelve la función que los libera. Dentro de
// una transacción txMu ya lo tiene Transactional.
func (s *Store) lockWrite(tx bool) func() {
	if !tx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !tx {
			s.txMu.Unlock()
		}
	}
}

// SupportsTransactions el sondeo siempre responde que sí; ver WithoutTransactions.
func (s *Store) SupportsTransactions(context.Context) (bool, error) {
	return true, nil
}

// Transactional ejecuta fn con el estado copiado; si fn falla se restaura la copia.
func (s *Store) Transactional(ctx context.Context, fn unitofwork.Work) error {
	if s.noTx {
		return domain.ErrTransactionsUnsupported
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	saved := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.repositories(true)); err != nil {
		s.mu.Lock()
		s.data = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// Sequential ejecuta fn directamente sobre el estado.
func (s *Store) Sequential(ctx context.Context, fn unitofwork.Work) error {
	return fn(ctx, s.Repositories())
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// clone copia los contenedores; los valores guardados nunca se mutan en sitio.
func (st state) clone() state {
	out := state{
		products:    make(map[string]entity.Product, len(st.products)),
		movements:   append([]entity.InventoryMovement(nil), st.movements...),
		invoices:    make(map[string]invoiceRow, len(st.invoices)),
		creditNotes: make(map[string]creditNoteRow, len(st.creditNotes)),
		payments:    make(map[string]entity.Payment, len(st.payments)),
		sequences:   make(map[string]entity.NCFSequence, len(st.sequences)),
		clients:     make(map[string]entity.Client, len(st.clients)),
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.invoices {
		out.invoices[k] = v
	}
	for k, v := range st.creditNotes {
		out.creditNotes[k] = v
	}
	for k, v := range st.payments {
		out.payments[k] = v
	}
	for k, v := range st.sequences {
		out.sequences[k] = v
	}
	for k, v := range st.clients {
		out.clients[k] = v
	}
	return out
}

func cloneInvoice(inv entity.Invoice) entity.Invoice {
	inv.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	inv.PaymentIDs = append([]string(nil), inv.PaymentIDs...)
	inv.CreditNoteIDs = append([]string(nil), inv.CreditNoteIDs...)
	if inv.DueDate != nil {
		d := *inv.DueDate
		inv.DueDate = &d
	}
	return inv
}

func cloneCreditNote(cn entity.CreditNote) entity.CreditNote {
	cn.Items = append([]entity.CreditNoteItem(nil), cn.Items...)
	return cn
}

func page[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
