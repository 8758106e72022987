package repository

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockDelta incremento atómico del stock de un producto. Quantity es con signo.
type StockDelta struct {
	ProductID string
	Quantity  decimal.Decimal
}

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) cuando no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs lectura en lote; los IDs inexistentes simplemente no aparecen en el resultado.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// Update actualiza datos maestros; nunca toca Stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	// IncrementStock aplica todos los deltas en una sola escritura masiva. Los deltas negativos
	// exigen stock >= cantidad; si alguno no se cumple devuelve *domain.InsufficientStockError.
	IncrementStock(ctx context.Context, deltas []StockDelta) error
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
}
