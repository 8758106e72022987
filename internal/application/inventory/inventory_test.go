package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, repos repository.Repositories, id, name, stock string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, repos.Products.Create(context.Background(), &entity.Product{
		ID: id, Code: id, Name: name, Stock: d(stock), Cost: d("100"), Price: d("150"),
		CreatedAt: now, UpdatedAt: now,
	}))
}

func stockOf(t *testing.T, repos repository.Repositories, id string) decimal.Decimal {
	t.Helper()
	p, err := repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// ─────────────────────────────────────────────────────────────────────────────
// StockLedger
// ─────────────────────────────────────────────────────────────────────────────

func TestLedger_AgregaPorProductoYRegistraUnMovimiento(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura blanca", "10")
	seedProduct(t, repos, "p2", "Masilla", "4")
	ledger := inventory.NewStockLedger(time.UTC)

	movs, err := ledger.Apply(context.Background(), repos, []inventory.StockLine{
		{ProductID: "p1", Quantity: d("3")},
		{ProductID: "p2", Quantity: d("1")},
		{ProductID: "p1", Quantity: d("2")},
	}, inventory.DirectionSubtract, &inventory.MovementMeta{Type: entity.MovementTypeSalida, Reference: "FAC-00000001"})
	require.NoError(t, err)

	assert.True(t, stockOf(t, repos, "p1").Equal(d("5")))
	assert.True(t, stockOf(t, repos, "p2").Equal(d("3")))
	require.Len(t, movs, 2)
	assert.Equal(t, "p1", movs[0].ProductID, "orden de primera aparición")
	assert.True(t, movs[0].Quantity.Equal(d("5")))
	assert.Equal(t, "Pintura blanca", movs[0].ProductName)
	assert.Equal(t, "subtract", movs[0].Direction)

	listed, err := repos.Movements.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestLedger_CantidadNoPositivaRechazada(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "10")

	_, err := inventory.NewStockLedger(time.UTC).Apply(context.Background(), repos,
		[]inventory.StockLine{{ProductID: "p1", Quantity: d("0")}}, inventory.DirectionAdd, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, stockOf(t, repos, "p1").Equal(d("10")))
}

func TestLedger_GuardaImpideStockNegativo(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "10")
	seedProduct(t, repos, "p2", "Masilla", "1")

	_, err := inventory.NewStockLedger(time.UTC).Apply(context.Background(), repos, []inventory.StockLine{
		{ProductID: "p1", Quantity: d("5")},
		{ProductID: "p2", Quantity: d("2")},
	}, inventory.DirectionSubtract, nil)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "p2", insufficient.ProductID)
	assert.True(t, stockOf(t, repos, "p1").Equal(d("10")), "la escritura masiva no aplica parcialmente")
}

func TestLedger_FechaSimpleAnclada(t *testing.T) {
	loc, err := time.LoadLocation("America/Santo_Domingo")
	require.NoError(t, err)
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "0")

	movs, err := inventory.NewStockLedger(loc).Apply(context.Background(), repos,
		[]inventory.StockLine{{ProductID: "p1", Quantity: d("1")}}, inventory.DirectionAdd,
		&inventory.MovementMeta{Type: entity.MovementTypeEntrada, Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, 15, movs[0].Date.UTC().Day())
}

// ─────────────────────────────────────────────────────────────────────────────
// AvailabilityValidator
// ─────────────────────────────────────────────────────────────────────────────

func TestValidator_AgregaDemanda(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "5")

	_, err := inventory.NewAvailabilityValidator().Validate(context.Background(), repos.Products, []inventory.StockLine{
		{ProductID: "p1", Quantity: d("3")},
		{ProductID: "p1", Quantity: d("3")},
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Requested.Equal(d("6")))
	assert.True(t, insufficient.Available.Equal(d("5")))
	assert.Equal(t, "Pintura", insufficient.ProductName)
}

func TestValidator_ProductoInexistente(t *testing.T) {
	store := memory.New()
	_, err := inventory.NewAvailabilityValidator().Validate(context.Background(), store.Repositories().Products,
		[]inventory.StockLine{{ProductID: "nope", Quantity: d("1")}})
	var nf *domain.ProductNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.ProductID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// InventoryUseCase
// ─────────────────────────────────────────────────────────────────────────────

type fakeExporter struct {
	title string
	count int
}

func (f *fakeExporter) ExportMovements(_ context.Context, title string, movs []*entity.InventoryMovement) ([]byte, error) {
	f.title, f.count = title, len(movs)
	return []byte("xlsx"), nil
}

func newUseCase(store *memory.Store, exporter inventory.MovementExporter) *inventory.InventoryUseCase {
	boundary := unitofwork.NewBoundary(store, zerolog.Nop())
	return inventory.NewInventoryUseCase(boundary, store.Repositories(),
		inventory.NewStockLedger(time.UTC), inventory.NewAvailabilityValidator(), exporter, time.UTC, zerolog.Nop())
}

func TestAddProductStock_CostoPromedio(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "10") // costo 100
	uc := newUseCase(store, nil)

	cost := d("200")
	res, err := uc.AddProductStock(context.Background(), "u1", "p1", dto.AddStockRequest{Quantity: d("10"), UnitCost: &cost})
	require.NoError(t, err)

	assert.True(t, res.Stock.Equal(d("20")))
	assert.True(t, res.Cost.Equal(d("150")))
	assert.Equal(t, entity.MovementTypeEntrada, res.Movement.Type)

	p, _ := repos.Products.GetByID(context.Background(), "p1")
	assert.True(t, p.Cost.Equal(d("150")))
	assert.True(t, p.Stock.Equal(d("20")))
}

func TestAddProductStock_ProductoInexistente(t *testing.T) {
	uc := newUseCase(memory.New(), nil)
	_, err := uc.AddProductStock(context.Background(), "u1", "x", dto.AddStockRequest{Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_NegativoSinStockNoEscribe(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "2")
	uc := newUseCase(store, nil)

	_, err := uc.AdjustStock(context.Background(), "u1", "p1", dto.AdjustStockRequest{Delta: d("-3"), Notes: "conteo"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movs, _ := repos.Movements.List(context.Background(), repository.MovementFilter{})
	assert.Empty(t, movs)

	res, err := uc.AdjustStock(context.Background(), "u1", "p1", dto.AdjustStockRequest{Delta: d("-2"), Notes: "conteo"})
	require.NoError(t, err)
	assert.True(t, res.Stock.IsZero())
	assert.Equal(t, entity.MovementTypeAjuste, res.Movement.Type)
}

func TestListMovements_PorMes(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "0")
	uc := newUseCase(store, nil)

	_, err := uc.AddProductStock(context.Background(), "u1", "p1", dto.AddStockRequest{Quantity: d("1"), Date: "2024-01-15"})
	require.NoError(t, err)
	_, err = uc.AddProductStock(context.Background(), "u1", "p1", dto.AddStockRequest{Quantity: d("2"), Date: "2024-02-01"})
	require.NoError(t, err)

	jan, err := uc.ListMovements(context.Background(), dto.MovementsQuery{Month: 1, Year: 2024})
	require.NoError(t, err)
	require.Len(t, jan, 1)
	assert.True(t, jan[0].Quantity.Equal(d("1")))

	year, err := uc.ListMovements(context.Background(), dto.MovementsQuery{Year: 2024})
	require.NoError(t, err)
	require.Len(t, year, 2)
	assert.True(t, year[0].Date.After(year[1].Date), "más recientes primero")
}

func TestExportMovements(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	seedProduct(t, repos, "p1", "Pintura", "0")
	exp := &fakeExporter{}
	uc := newUseCase(store, exp)

	_, err := uc.AddProductStock(context.Background(), "u1", "p1", dto.AddStockRequest{Quantity: d("1"), Date: "2024-03-10"})
	require.NoError(t, err)

	data, name, err := uc.ExportMovements(context.Background(), dto.MovementsQuery{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, "movimientos-2024-03.xlsx", name)
	assert.Equal(t, 1, exp.count)
}

func TestReplenishment_PriorizaPorSalidas(t *testing.T) {
	store := memory.New()
	repos := store.Repositories()
	ctx := context.Background()
	now := time.Now()
	for _, p := range []*entity.Product{
		{ID: "a", Code: "A", Name: "A", Stock: d("15"), MinStock: d("10"), Cost: d("2"), CreatedAt: now},
		{ID: "b", Code: "B", Name: "B", Stock: d("5"), MinStock: d("10"), Cost: d("2"), CreatedAt: now},
		{ID: "c", Code: "C", Name: "C", Stock: d("8"), MinStock: d("10"), Cost: d("2"), CreatedAt: now},
	} {
		require.NoError(t, repos.Products.Create(ctx, p))
	}
	_, err := inventory.NewStockLedger(time.UTC).Apply(ctx, repos,
		[]inventory.StockLine{{ProductID: "c", Quantity: d("1")}}, inventory.DirectionSubtract,
		&inventory.MovementMeta{Type: entity.MovementTypeSalida})
	require.NoError(t, err)

	list, err := inventory.NewReplenishmentUseCase(repos.Products, repos.Movements).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[1].SuggestedOrderQty.Equal(d("10")), "15 ideal - 5 actuales")
}
