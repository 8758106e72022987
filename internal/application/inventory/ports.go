package inventory

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// MovementExporter genera el reporte de movimientos en un formato descargable (XLSX).
type MovementExporter interface {
	ExportMovements(ctx context.Context, title string, movements []*entity.InventoryMovement) ([]byte, error)
}
