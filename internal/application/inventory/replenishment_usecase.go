package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// ReplenishmentUseCase lista de reposición: productos en o bajo su stock mínimo, priorizados
// por volumen de salidas recientes.
type ReplenishmentUseCase struct {
	products  repository.ProductRepository
	movements repository.InventoryMovementRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductRepository, movements repository.InventoryMovementRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products, movements: movements}
}

// GenerateReplenishmentList devuelve los productos bajo mínimo con la cantidad sugerida de pedido.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	low, err := uc.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// Salidas de los últimos 90 días por producto
	from := time.Now().AddDate(0, 0, -90)
	movs, err := uc.movements.List(ctx, repository.MovementFilter{From: &from})
	if err != nil {
		return nil, err
	}
	sold := make(map[string]decimal.Decimal)
	for _, m := range movs {
		if m.Type == entity.MovementTypeSalida {
			sold[m.ProductID] = sold[m.ProductID].Add(m.Quantity)
		}
	}

	factor := decimal.RequireFromString("1.5")
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, p := range low {
		ideal := p.MinStock.Mul(factor)
		qty := ideal.Sub(p.Stock)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			Code:               p.Code,
			ProductName:        p.Name,
			CurrentStock:       p.Stock,
			MinStock:           p.MinStock,
			IdealStock:         ideal,
			SuggestedOrderQty:  qty,
			UnitCost:           p.Cost,
			EstimatedOrderCost: qty.Mul(p.Cost).Round(2),
			UnitsSoldLast90:    sold[p.ID],
		})
	}

	// Mayor volumen vendido primero; empate: mayor déficit bajo el mínimo.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.UnitsSoldLast90.Equal(b.UnitsSoldLast90) {
			return a.UnitsSoldLast90.GreaterThan(b.UnitsSoldLast90)
		}
		return a.MinStock.Sub(a.CurrentStock).GreaterThan(b.MinStock.Sub(b.CurrentStock))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
