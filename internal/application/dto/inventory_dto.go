package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddStockRequest body para POST /api/inventory/products/:id/stock.
type AddStockRequest struct {
	Quantity decimal.Decimal  `json:"quantity"`
	Date     string           `json:"date,omitempty"` // YYYY-MM-DD o RFC3339
	Notes    string           `json:"notes,omitempty" validate:"max=500"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/products/:id/adjustments. Delta con signo.
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta"`
	Date  string          `json:"date,omitempty"`
	Notes string          `json:"notes" validate:"required,max=500"`
}

// MovementsQuery filtro por mes/año de GET /api/inventory/movements.
type MovementsQuery struct {
	Month     int    `query:"month" validate:"omitempty,min=1,max=12"`
	Year      int    `query:"year" validate:"omitempty,min=2000,max=2100"`
	ProductID string `query:"product_id"`
}

// MovementResponse movimiento de inventario.
type MovementResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Type        string          `json:"type"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StockChangeResponse stock resultante después de una entrada o ajuste.
type StockChangeResponse struct {
	ProductID string           `json:"product_id"`
	Stock     decimal.Decimal  `json:"stock"`
	Cost      decimal.Decimal  `json:"cost"`
	Movement  MovementResponse `json:"movement"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto en o bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	Code               string          `json:"code"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	UnitsSoldLast90    decimal.Decimal `json:"units_sold_last_90d"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
