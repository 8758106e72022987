package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
)

func newProductUseCase(t *testing.T) (*usecase.ProductUseCase, repository.Repositories) {
	t.Helper()
	store := memory.New()
	repos := store.Repositories()
	log := zerolog.Nop()
	uc := usecase.NewProductUseCase(unitofwork.NewBoundary(store, log), repos, inventory.NewStockLedger(time.UTC), log)
	return uc, repos
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestProductCreate_StockInicialComoEntrada(t *testing.T) {
	uc, repos := newProductUseCase(t)
	ctx := context.Background()

	res, err := uc.Create(ctx, "u1", dto.CreateProductRequest{
		Code: "PINT-001", Name: "Pintura acrílica blanca", Price: dec("850"), TaxRate: dec("18"),
		MinStock: dec("10"), InitialStock: dec("40"),
	})
	require.NoError(t, err)
	assert.True(t, res.Stock.Equal(dec("40")))
	assert.Equal(t, "unidad", res.UnitMeasure)
	assert.Equal(t, entity.ProductCategoryTerminado, res.Category)
	assert.False(t, res.LowStock)

	movs, err := repos.Movements.List(ctx, repository.MovementFilter{ProductID: res.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec("40")))
	assert.Equal(t, "PINT-001", movs[0].Reference)
}

func TestProductCreate_SinStockNoRegistraMovimiento(t *testing.T) {
	uc, repos := newProductUseCase(t)
	ctx := context.Background()

	res, err := uc.Create(ctx, "u1", dto.CreateProductRequest{Code: "SRV-1", Name: "Instalación", TaxRate: dec("0")})
	require.NoError(t, err)
	assert.True(t, res.Stock.IsZero())

	movs, err := repos.Movements.List(ctx, repository.MovementFilter{ProductID: res.ID})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestProductCreate_Validaciones(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.CreateProductRequest{Code: "X", Name: "X", TaxRate: dec("19")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "u1", dto.CreateProductRequest{Code: "X", Name: "X", TaxRate: dec("18"), Price: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "u1", dto.CreateProductRequest{Code: "", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "u1", dto.CreateProductRequest{Code: "DUP", Name: "Uno", TaxRate: dec("18")})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u1", dto.CreateProductRequest{Code: "dup", Name: "Dos", TaxRate: dec("18")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update / consultas
// ─────────────────────────────────────────────────────────────────────────────

func TestProductUpdate_NoTocaStock(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	created, err := uc.Create(ctx, "u1", dto.CreateProductRequest{
		Code: "P1", Name: "Sellador", Price: dec("100"), TaxRate: dec("18"), InitialStock: dec("5"),
	})
	require.NoError(t, err)

	price := dec("120")
	minStock := dec("5")
	updated, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{Price: &price, MinStock: &minStock})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(dec("120")))
	assert.True(t, updated.Stock.Equal(dec("5")))
	assert.True(t, updated.LowStock)

	low, err := uc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, created.ID, low[0].ID)

	bad := dec("7")
	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{TaxRate: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductList_Busqueda(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	for _, in := range []dto.CreateProductRequest{
		{Code: "A1", Name: "Pintura roja", TaxRate: dec("18")},
		{Code: "A2", Name: "Pintura azul", TaxRate: dec("18")},
		{Code: "B1", Name: "Brocha", TaxRate: dec("18")},
	} {
		_, err := uc.Create(ctx, "u1", in)
		require.NoError(t, err)
	}

	res, err := uc.List(ctx, dto.ProductListRequest{Search: "pintura"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 50, res.Page.Limit)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
