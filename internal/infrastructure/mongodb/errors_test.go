package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
)

// ─────────────────────────────────────────────────────────────────────────────
// Clasificación de errores del driver
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_StandaloneRechazaTransacciones(t *testing.T) {
	err := mongo.CommandError{
		Code:    20,
		Name:    "IllegalOperation",
		Message: "Transaction numbers are only allowed on a replica set member or mongos",
	}
	wrapped := wrap("insert invoice", err)
	assert.ErrorIs(t, wrapped, domain.ErrTransactionsUnsupported)
	assert.NotErrorIs(t, wrapped, domain.ErrRetryable)

	var ce mongo.CommandError
	assert.True(t, errors.As(wrapped, &ce), "conserva el error original")
}

func TestWrap_OtroIllegalOperationNoEsFaltaDeTransacciones(t *testing.T) {
	err := mongo.CommandError{Code: 20, Message: "cannot run on capped collection"}
	assert.NotErrorIs(t, wrap("op", err), domain.ErrTransactionsUnsupported)
}

func TestWrap_TimeoutEsReintentable(t *testing.T) {
	assert.ErrorIs(t, wrap("find", mongo.CommandError{Code: 50, Name: "MaxTimeMSExpired"}), domain.ErrRetryable)
	assert.ErrorIs(t, wrap("find", context.DeadlineExceeded), domain.ErrRetryable)
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, wrap("op", nil))
}

func TestIsTransient_PorEtiqueta(t *testing.T) {
	err := wrap("commit", mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{"TransientTransactionError"}})
	assert.True(t, isTransient(err))
	assert.False(t, isTransient(mongo.CommandError{Code: 11000}))
}

// ─────────────────────────────────────────────────────────────────────────────
// Decimal128
// ─────────────────────────────────────────────────────────────────────────────

func TestDecimal128_ConservaPrecision(t *testing.T) {
	for _, s := range []string{"0", "1770", "885.00", "318.6", "-12.345", "0.1"} {
		d := decimal.RequireFromString(s)
		assert.True(t, fromDec128(dec128(d)).Equal(d), s)
	}
}
