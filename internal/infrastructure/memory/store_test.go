package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
)

func product(id string) *entity.Product {
	now := time.Now()
	return &entity.Product{ID: id, Code: id, Name: "Producto " + id, Price: decimal.NewFromInt(10),
		Stock: decimal.NewFromInt(5), CreatedAt: now, UpdatedAt: now}
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactional
// ─────────────────────────────────────────────────────────────────────────────

func TestTransactional_RestauraSoloLoPropio(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	repos := store.Repositories()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.Transactional(ctx, func(ctx context.Context, tx repository.Repositories) error {
			if err := tx.Products.Create(ctx, product("p1")); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	outside := make(chan error, 1)
	go func() { outside <- repos.Products.Create(ctx, product("p2")) }()

	select {
	case err := <-outside:
		t.Fatalf("la escritura externa no esperó a la transacción: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.EqualError(t, <-txDone, "boom")
	require.NoError(t, <-outside)

	p1, err := repos.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p1, "la escritura de la transacción fallida se descarta")

	p2, err := repos.Products.GetByID(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, p2, "la escritura externa sobrevive al rollback")
	assert.Equal(t, "p2", p2.ID)
}

func TestTransactional_ConfirmaSinError(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	err := store.Transactional(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Products.Create(ctx, product("p1")); err != nil {
			return err
		}
		return tx.Products.IncrementStock(ctx, []repository.StockDelta{{ProductID: "p1", Quantity: decimal.NewFromInt(-2)}})
	})
	require.NoError(t, err)

	p, err := store.Repositories().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(3)))
}

func TestTransactional_SinSoporte(t *testing.T) {
	store := memory.New(memory.WithoutTransactions())
	err := store.Transactional(context.Background(), func(context.Context, repository.Repositories) error { return nil })
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Invoices.UpdateStatusIf
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdateStatusIf(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	invoices := store.Repositories().Invoices
	now := time.Now()
	require.NoError(t, invoices.Create(ctx, &entity.Invoice{
		ID: "f1", Number: "FAC-00000001", Status: entity.InvoiceStatusParcial,
		Total: decimal.NewFromInt(100), Date: now, CreatedAt: now, UpdatedAt: now,
	}))

	ok, err := invoices.UpdateStatusIf(ctx, "f1", entity.InvoiceStatusPendiente, entity.InvoiceStatusVencida)
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := invoices.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusParcial, got.Status)

	ok, err = invoices.UpdateStatusIf(ctx, "f1", entity.InvoiceStatusParcial, entity.InvoiceStatusPagada)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = invoices.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPagada, got.Status)

	ok, err = invoices.UpdateStatusIf(ctx, "nope", entity.InvoiceStatusPendiente, entity.InvoiceStatusVencida)
	require.NoError(t, err)
	assert.False(t, ok)
}
