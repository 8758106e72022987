package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// MovementFilter rango [From, To) y producto opcional.
type MovementFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
// Los movimientos son de solo inserción.
type InventoryMovementRepository interface {
	CreateMany(ctx context.Context, movements []*entity.InventoryMovement) error
	// List ordena por fecha descendente.
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
}
