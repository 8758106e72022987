package storage_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/storage"
	"github.com/jhoicas/Gestion-RD-api/pkg/config"
)

func TestOpen_Memoria(t *testing.T) {
	cfg := &config.Config{DB: config.DBConfig{Driver: config.DriverMemory}}

	b, err := storage.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	ok, err := b.Executor.SupportsTransactions(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, b.Repos.Products)
	assert.NoError(t, b.Close(context.Background()))
}

func TestOpen_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{DB: config.DBConfig{Driver: "sqlite"}}

	_, err := storage.Open(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
