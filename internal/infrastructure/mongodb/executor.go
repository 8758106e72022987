package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ unitofwork.Executor = (*Executor)(nil)

// Executor ejecuta unidades de trabajo sobre MongoDB.
type Executor struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewExecutor construye el ejecutor sobre la base ya conectada.
func NewExecutor(client *mongo.Client, db *mongo.Database) *Executor {
	return &Executor{client: client, db: db}
}

// Repositories repositorios sin sesión.
func (e *Executor) Repositories() repository.Repositories {
	return repositoriesFor(e.db)
}

// SupportsTransactions consulta hello: replica set (setName) o mongos (isdbgrid) admiten
// transacciones multi-documento.
func (e *Executor) SupportsTransactions(ctx context.Context) (bool, error) {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := e.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return false, wrap("hello", err)
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid", nil
}

// maxTxAttempts intentos ante conflictos de escritura entre transacciones concurrentes.
const maxTxAttempts = 3

// Transactional abre una sesión y ejecuta fn dentro de una transacción; los repositorios
// reciben el SessionContext como ctx. Un error de fn aborta todo. Los errores etiquetados
// TransientTransactionError repiten la unidad completa.
func (e *Executor) Transactional(ctx context.Context, fn unitofwork.Work) error {
	sess, err := e.client.StartSession()
	if err != nil {
		return wrap("start session", err)
	}
	defer sess.EndSession(context.Background())

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	for attempt := 1; ; attempt++ {
		err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sess.StartTransaction(txOpts); err != nil {
				return wrap("start transaction", err)
			}
			if err := fn(sc, repositoriesFor(e.db)); err != nil {
				_ = sess.AbortTransaction(context.Background())
				if isTransactionsUnsupported(err) && !errors.Is(err, domain.ErrTransactionsUnsupported) {
					return wrap("transaction", err)
				}
				return err
			}
			if err := sess.CommitTransaction(sc); err != nil {
				_ = sess.AbortTransaction(context.Background())
				return wrap("commit transaction", err)
			}
			return nil
		})
		if err == nil || attempt == maxTxAttempts || !isTransient(err) || ctx.Err() != nil {
			return err
		}
	}
}

func isTransient(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError")
}

// Sequential ejecuta fn sin sesión.
func (e *Executor) Sequential(ctx context.Context, fn unitofwork.Work) error {
	return fn(ctx, repositoriesFor(e.db))
}

func repositoriesFor(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Products:    NewProductRepository(db),
		Movements:   NewInventoryMovementRepository(db),
		Invoices:    NewInvoiceRepository(db),
		CreditNotes: NewCreditNoteRepository(db),
		Payments:    NewPaymentRepository(db),
		Sequences:   NewNCFSequenceRepository(db),
		Clients:     NewClientRepository(db),
	}
}
