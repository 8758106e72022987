package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// AvailabilityValidator verifica stock antes de una resta. Se ejecuta dentro de la misma unidad
// de trabajo que la resta; el guarda del ledger cubre las carreras entre ambos pasos.
type AvailabilityValidator struct{}

// NewAvailabilityValidator construye el validador.
func NewAvailabilityValidator() *AvailabilityValidator {
	return &AvailabilityValidator{}
}

// Validate agrega la demanda por producto, lee exactamente esos productos en un solo lote y
// falla con el primer faltante. Devuelve los productos leídos indexados por ID.
func (v *AvailabilityValidator) Validate(
	ctx context.Context,
	products repository.ProductRepository,
	lines []StockLine,
) (map[string]*entity.Product, error) {
	agg, err := Aggregate(lines)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(agg))
	for i, line := range agg {
		ids[i] = line.ProductID
	}
	found, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("leer productos: %w", err)
	}
	byID := make(map[string]*entity.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, line := range agg {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &domain.ProductNotFoundError{ProductID: line.ProductID}
		}
		if p.Stock.LessThan(line.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   line.Quantity,
			}
		}
	}
	return byID, nil
}
