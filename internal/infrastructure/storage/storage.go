// Package storage abre el adaptador de almacenamiento elegido en la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Gestion-RD-api/pkg/config"
)

// Backend ejecutor, repositorios y cierre del adaptador abierto.
type Backend struct {
	Driver   string
	Executor unitofwork.Executor
	Repos    repository.Repositories
	close    func(context.Context) error
}

// Close libera las conexiones del adaptador.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open conecta con el driver de cfg.DB.Driver. Con postgres aplica las migraciones si
// MigrateOnStart está activo.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.DB.Driver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		exec := mongodb.NewExecutor(client, db)
		return &Backend{
			Driver:   cfg.DB.Driver,
			Executor: exec,
			Repos:    exec.Repositories(),
			close:    client.Disconnect,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.MigrateOnStart {
			if err := postgres.Migrate(pool, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		exec := postgres.NewExecutor(pool)
		return &Backend{
			Driver:   cfg.DB.Driver,
			Executor: exec,
			Repos:    exec.Repositories(),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.New()
		return &Backend{Driver: cfg.DB.Driver, Executor: store, Repos: store.Repositories()}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento %q no soportado", cfg.DB.Driver)
}
