package billing_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
)

type env struct {
	store    *memory.Store
	repos    repository.Repositories
	boundary *unitofwork.Boundary
	invoices *billing.InvoiceUseCase
	notes    *billing.CreditNoteUseCase
	payments *billing.PaymentUseCase
	clients  *billing.ClientUseCase
	logs     *bytes.Buffer
}

func newEnv(t *testing.T, opts ...memory.Option) *env {
	t.Helper()
	store := memory.New(opts...)
	repos := store.Repositories()
	var logs bytes.Buffer
	log := zerolog.New(&logs)
	boundary := unitofwork.NewBoundary(store, log)
	ledger := inventory.NewStockLedger(time.UTC)
	allocator := fiscal.NewAllocator(boundary, repos, log)
	return &env{
		store:    store,
		repos:    repos,
		boundary: boundary,
		invoices: billing.NewInvoiceUseCase(boundary, repos, ledger, inventory.NewAvailabilityValidator(), allocator,
			decimal.NewFromInt(18), time.UTC, log),
		notes:    billing.NewCreditNoteUseCase(boundary, repos, ledger, allocator, time.UTC, log),
		payments: billing.NewPaymentUseCase(boundary, repos, time.UTC, log),
		clients:  billing.NewClientUseCase(repos.Clients, repos.Invoices, log),
		logs:     &logs,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *env) product(t *testing.T, id, price, stock string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.repos.Products.Create(context.Background(), &entity.Product{
		ID: id, Code: id, Name: "Producto " + id, Price: d(price), Stock: d(stock),
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (e *env) client(t *testing.T) string {
	t.Helper()
	res, err := e.clients.Create(context.Background(), dto.ClientRequest{Name: "Ferretería Ozama", RNC: "101010632"})
	require.NoError(t, err)
	return res.ID
}

func (e *env) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := e.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (e *env) invoice(t *testing.T, clientID string, items ...dto.InvoiceItemRequest) *dto.InvoiceResponse {
	t.Helper()
	res, err := e.invoices.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		ClientID: clientID, NCFType: "B01", Items: items,
	})
	require.NoError(t, err)
	return res
}

func item(productID, qty string) dto.InvoiceItemRequest {
	return dto.InvoiceItemRequest{ProductID: productID, Quantity: d(qty)}
}

func line(idx int, qty string) dto.CreditNoteItemRequest {
	return dto.CreditNoteItemRequest{LineIndex: &idx, Quantity: d(qty)}
}
