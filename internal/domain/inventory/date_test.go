package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/inventory"
)

func TestParseMovementDate_FechaSimpleAlMediodia(t *testing.T) {
	loc, err := time.LoadLocation("America/Santo_Domingo")
	require.NoError(t, err)

	got, err := inventory.ParseMovementDate("2024-01-15", loc, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 12, got.Hour(), "la fecha simple se ancla a mediodía local")
	assert.Equal(t, 15, got.UTC().Day(), "en UTC sigue siendo el mismo día")
}

func TestParseMovementDate_VaciaUsaAhora(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	got, err := inventory.ParseMovementDate("  ", time.UTC, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))
}

func TestParseMovementDate_RFC3339(t *testing.T) {
	got, err := inventory.ParseMovementDate("2024-06-01T22:15:00-04:00", time.UTC, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 22, got.Hour())
}

func TestParseMovementDate_Invalida(t *testing.T) {
	_, err := inventory.ParseMovementDate("15/01/2024", time.UTC, time.Now())
	assert.Error(t, err)
}

func TestMonthRange(t *testing.T) {
	from, to := inventory.MonthRange(12, 2024, time.UTC)
	require.NotNil(t, from)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *to)

	from, to = inventory.MonthRange(0, 2024, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *to)
	assert.Equal(t, 1, int(from.Month()))

	from, to = inventory.MonthRange(5, 0, time.UTC)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestWeightedAverageCost(t *testing.T) {
	got := inventory.WeightedAverageCost(
		decimal.NewFromInt(10), decimal.NewFromInt(100),
		decimal.NewFromInt(10), decimal.NewFromInt(200),
	)
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)

	assert.True(t, inventory.WeightedAverageCost(decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(5)).IsZero())
}
