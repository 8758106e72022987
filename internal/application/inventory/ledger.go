package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	invdomain "github.com/jhoicas/Gestion-RD-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// Direction sentido del cambio de stock.
type Direction string

const (
	DirectionAdd      Direction = "add"
	DirectionSubtract Direction = "subtract"
)

// StockLine cantidad (positiva) de un producto.
type StockLine struct {
	ProductID string
	Quantity  decimal.Decimal
}

// MovementMeta datos del movimiento a registrar junto con el cambio de stock.
// Date acepta YYYY-MM-DD, RFC3339 o vacío (ahora).
type MovementMeta struct {
	Type      string
	Reference string
	Notes     string
	Date      string
	CreatedBy string
}

// StockLedger único punto que modifica Product.Stock.
type StockLedger struct {
	loc *time.Location
	now func() time.Time
}

// NewStockLedger construye el ledger; loc ancla las fechas simples de los movimientos.
func NewStockLedger(loc *time.Location) *StockLedger {
	if loc == nil {
		loc = time.Local
	}
	return &StockLedger{loc: loc, now: time.Now}
}

// Apply agrega las líneas por producto, aplica todos los incrementos en una sola escritura y,
// si meta no es nil, registra un movimiento por producto distinto. Debe llamarse con los
// repositorios de la unidad de trabajo en curso.
func (l *StockLedger) Apply(
	ctx context.Context,
	repos repository.Repositories,
	lines []StockLine,
	dir Direction,
	meta *MovementMeta,
) ([]*entity.InventoryMovement, error) {
	if dir != DirectionAdd && dir != DirectionSubtract {
		return nil, domain.Invalid("direction", "dirección %q inválida", dir)
	}
	agg, err := Aggregate(lines)
	if err != nil {
		return nil, err
	}
	if len(agg) == 0 {
		return nil, nil
	}

	var date time.Time
	if meta != nil {
		date, err = invdomain.ParseMovementDate(meta.Date, l.loc, l.now())
		if err != nil {
			return nil, domain.Invalid("date", "%s", err.Error())
		}
	}

	ids := make([]string, len(agg))
	deltas := make([]repository.StockDelta, len(agg))
	for i, line := range agg {
		ids[i] = line.ProductID
		q := line.Quantity
		if dir == DirectionSubtract {
			q = q.Neg()
		}
		deltas[i] = repository.StockDelta{ProductID: line.ProductID, Quantity: q}
	}

	var names map[string]string
	if meta != nil {
		products, err := repos.Products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("leer productos: %w", err)
		}
		names = make(map[string]string, len(products))
		for _, p := range products {
			names[p.ID] = p.Name
		}
		for _, id := range ids {
			if _, ok := names[id]; !ok {
				return nil, &domain.ProductNotFoundError{ProductID: id}
			}
		}
	}

	if err := repos.Products.IncrementStock(ctx, deltas); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	now := l.now()
	movements := make([]*entity.InventoryMovement, len(agg))
	for i, line := range agg {
		movements[i] = &entity.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   line.ProductID,
			ProductName: names[line.ProductID],
			Type:        meta.Type,
			Direction:   string(dir),
			Quantity:    line.Quantity,
			Reference:   meta.Reference,
			Notes:       meta.Notes,
			Date:        date,
			CreatedAt:   now,
			CreatedBy:   meta.CreatedBy,
		}
	}
	if err := repos.Movements.CreateMany(ctx, movements); err != nil {
		return nil, fmt.Errorf("registrar movimientos: %w", err)
	}
	return movements, nil
}

// Aggregate suma cantidades por producto conservando el orden de primera aparición.
// Rechaza cantidades no positivas y productos vacíos.
func Aggregate(lines []StockLine) ([]StockLine, error) {
	idx := make(map[string]int, len(lines))
	out := make([]StockLine, 0, len(lines))
	for i, line := range lines {
		if line.ProductID == "" {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if !line.Quantity.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor que cero")
		}
		if j, ok := idx[line.ProductID]; ok {
			out[j].Quantity = out[j].Quantity.Add(line.Quantity)
			continue
		}
		idx[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out, nil
}
