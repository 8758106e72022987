package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Gestion-RD-api/pkg/config"
)

func TestNewPool_DSNInvalido(t *testing.T) {
	pool, err := postgres.NewPool(context.Background(), config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "parse DSN")
}
