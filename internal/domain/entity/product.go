package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de producto.
const (
	ProductCategoryTerminado    = "producto_terminado"
	ProductCategoryMateriaPrima = "materia_prima"
	ProductCategoryInsumo       = "insumo"
	ProductCategoryServicio     = "servicio"
)

// Product representa un producto terminado, materia prima o insumo de la fábrica.
// Stock solo se modifica a través del libro de movimientos (StockLedger); nunca directamente.
type Product struct {
	ID          string
	Code        string // código interno único
	Name        string
	Description string
	Category    string          // producto_terminado, materia_prima, insumo, servicio
	UnitMeasure string          // unidad, kg, galón, caja...
	Cost        decimal.Decimal // costo unitario (promedio ponderado por entradas)
	Price       decimal.Decimal // precio de venta sin ITBIS
	TaxRate     decimal.Decimal // ITBIS en porcentaje: 0, 16, 18
	Stock       decimal.Decimal
	MinStock    decimal.Decimal // umbral de alerta de reposición
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock indica si el stock actual está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.MinStock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock)
}
