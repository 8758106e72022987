package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	invdomain "github.com/jhoicas/Gestion-RD-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// InventoryUseCase entradas manuales, ajustes y consulta del libro de movimientos.
type InventoryUseCase struct {
	uow       unitofwork.Runner
	repos     repository.Repositories
	ledger    *StockLedger
	validator *AvailabilityValidator
	exporter  MovementExporter
	loc       *time.Location
	log       zerolog.Logger
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(
	uow unitofwork.Runner,
	repos repository.Repositories,
	ledger *StockLedger,
	validator *AvailabilityValidator,
	exporter MovementExporter,
	loc *time.Location,
	log zerolog.Logger,
) *InventoryUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &InventoryUseCase{
		uow:       uow,
		repos:     repos,
		ledger:    ledger,
		validator: validator,
		exporter:  exporter,
		loc:       loc,
		log:       log,
	}
}

// AddProductStock registra una ENTRADA. Si viene UnitCost, recalcula el costo promedio ponderado.
func (uc *InventoryUseCase) AddProductStock(ctx context.Context, userID, productID string, in dto.AddStockRequest) (*dto.StockChangeResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "la cantidad debe ser mayor que cero")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "el costo no puede ser negativo")
	}

	var out *dto.StockChangeResponse
	err := uc.uow.Run(ctx, "entrada_inventario", func(ctx context.Context, repos repository.Repositories) error {
		p, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("producto", productID)
		}
		cost := p.Cost
		if in.UnitCost != nil {
			cost = invdomain.WeightedAverageCost(p.Stock, p.Cost, in.Quantity, *in.UnitCost)
			if err := repos.Products.UpdateCost(ctx, p.ID, cost); err != nil {
				return err
			}
		}
		movs, err := uc.ledger.Apply(ctx, repos,
			[]StockLine{{ProductID: p.ID, Quantity: in.Quantity}},
			DirectionAdd,
			&MovementMeta{
				Type:      entity.MovementTypeEntrada,
				Reference: "Entrada manual",
				Notes:     in.Notes,
				Date:      in.Date,
				CreatedBy: userID,
			})
		if err != nil {
			return err
		}
		out = &dto.StockChangeResponse{
			ProductID: p.ID,
			Stock:     p.Stock.Add(in.Quantity),
			Cost:      cost,
			Movement:  ToMovementResponse(movs[0]),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Str("quantity", in.Quantity.String()).Msg("entrada de inventario registrada")
	return out, nil
}

// AdjustStock registra un AJUSTE con delta con signo. Los ajustes negativos verifican
// disponibilidad primero.
func (uc *InventoryUseCase) AdjustStock(ctx context.Context, userID, productID string, in dto.AdjustStockRequest) (*dto.StockChangeResponse, error) {
	if in.Delta.IsZero() {
		return nil, domain.Invalid("delta", "el ajuste no puede ser cero")
	}
	dir := DirectionAdd
	qty := in.Delta
	if in.Delta.IsNegative() {
		dir = DirectionSubtract
		qty = in.Delta.Neg()
	}
	lines := []StockLine{{ProductID: productID, Quantity: qty}}

	var out *dto.StockChangeResponse
	err := uc.uow.Run(ctx, "ajuste_inventario", func(ctx context.Context, repos repository.Repositories) error {
		var p *entity.Product
		if dir == DirectionSubtract {
			byID, err := uc.validator.Validate(ctx, repos.Products, lines)
			if err != nil {
				return err
			}
			p = byID[productID]
		} else {
			var err error
			if p, err = repos.Products.GetByID(ctx, productID); err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto", productID)
			}
		}
		movs, err := uc.ledger.Apply(ctx, repos, lines, dir, &MovementMeta{
			Type:      entity.MovementTypeAjuste,
			Reference: "Ajuste de inventario",
			Notes:     in.Notes,
			Date:      in.Date,
			CreatedBy: userID,
		})
		if err != nil {
			return err
		}
		out = &dto.StockChangeResponse{
			ProductID: p.ID,
			Stock:     p.Stock.Add(in.Delta),
			Cost:      p.Cost,
			Movement:  ToMovementResponse(movs[0]),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Str("delta", in.Delta.String()).Msg("ajuste de inventario registrado")
	return out, nil
}

// ListMovements movimientos del mes (o del año, o todos), más recientes primero.
// Un mes sin año se interpreta en el año en curso.
func (uc *InventoryUseCase) ListMovements(ctx context.Context, q dto.MovementsQuery) ([]dto.MovementResponse, error) {
	movs, err := uc.listMovements(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ExportMovements genera el XLSX del período y el nombre de archivo sugerido.
func (uc *InventoryUseCase) ExportMovements(ctx context.Context, q dto.MovementsQuery) ([]byte, string, error) {
	if uc.exporter == nil {
		return nil, "", fmt.Errorf("exportador de movimientos no configurado")
	}
	movs, err := uc.listMovements(ctx, q)
	if err != nil {
		return nil, "", err
	}
	title, filename := "Movimientos de inventario", "movimientos.xlsx"
	q = uc.normalizeQuery(q)
	switch {
	case q.Year > 0 && q.Month > 0:
		title = fmt.Sprintf("Movimientos de inventario %02d/%d", q.Month, q.Year)
		filename = fmt.Sprintf("movimientos-%d-%02d.xlsx", q.Year, q.Month)
	case q.Year > 0:
		title = fmt.Sprintf("Movimientos de inventario %d", q.Year)
		filename = fmt.Sprintf("movimientos-%d.xlsx", q.Year)
	}
	data, err := uc.exporter.ExportMovements(ctx, title, movs)
	if err != nil {
		return nil, "", fmt.Errorf("exportar movimientos: %w", err)
	}
	return data, filename, nil
}

func (uc *InventoryUseCase) normalizeQuery(q dto.MovementsQuery) dto.MovementsQuery {
	if q.Month > 0 && q.Year == 0 {
		q.Year = time.Now().In(uc.loc).Year()
	}
	return q
}

func (uc *InventoryUseCase) listMovements(ctx context.Context, q dto.MovementsQuery) ([]*entity.InventoryMovement, error) {
	if q.Month < 0 || q.Month > 12 {
		return nil, domain.Invalid("month", "mes fuera de rango")
	}
	q = uc.normalizeQuery(q)
	from, to := invdomain.MonthRange(q.Month, q.Year, uc.loc)
	return uc.repos.Movements.List(ctx, repository.MovementFilter{ProductID: q.ProductID, From: from, To: to})
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Type:        m.Type,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
		Reference:   m.Reference,
		Notes:       m.Notes,
		Date:        m.Date,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
