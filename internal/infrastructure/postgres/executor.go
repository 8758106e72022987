package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ unitofwork.Executor = (*Executor)(nil)

// Executor ejecuta unidades de trabajo sobre PostgreSQL; siempre hay transacciones.
type Executor struct {
	pool *pgxpool.Pool
}

// NewExecutor construye el ejecutor con el pool.
func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{pool: pool}
}

// Repositories repositorios atados al pool (fuera de transacción).
func (e *Executor) Repositories() repository.Repositories {
	return repositoriesFor(e.pool)
}

// SupportsTransactions PostgreSQL siempre las soporta.
func (e *Executor) SupportsTransactions(context.Context) (bool, error) {
	return true, nil
}

// Transactional inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (e *Executor) Transactional(ctx context.Context, fn unitofwork.Work) error {
	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, repositoriesFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// Sequential ejecuta fn sobre el pool; cada sentencia se confirma sola.
func (e *Executor) Sequential(ctx context.Context, fn unitofwork.Work) error {
	return fn(ctx, repositoriesFor(e.pool))
}

func repositoriesFor(q Querier) repository.Repositories {
	return repository.Repositories{
		Products:    NewProductRepository(q),
		Movements:   NewInventoryMovementRepository(q),
		Invoices:    NewInvoiceRepository(q),
		CreditNotes: NewCreditNoteRepository(q),
		Payments:    NewPaymentRepository(q),
		Sequences:   NewNCFSequenceRepository(q),
		Clients:     NewClientRepository(q),
	}
}
