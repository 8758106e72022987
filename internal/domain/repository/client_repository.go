package repository

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para clientes.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByRNC(ctx context.Context, rnc string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Client, error)
}
