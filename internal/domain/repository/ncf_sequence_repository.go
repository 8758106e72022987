package repository

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// NCFSequenceRepository contadores de comprobantes fiscales y de numeración interna.
type NCFSequenceRepository interface {
	// Next incrementa atómicamente el contador (creándolo en 0 si no existe) y devuelve la secuencia
	// ya incrementada.
	Next(ctx context.Context, code string) (*entity.NCFSequence, error)
	Get(ctx context.Context, code string) (*entity.NCFSequence, error)
	// Save reemplaza Current, RangeEnd y ExpiresAt (upsert).
	Save(ctx context.Context, seq *entity.NCFSequence) error
	List(ctx context.Context) ([]*entity.NCFSequence, error)
}
