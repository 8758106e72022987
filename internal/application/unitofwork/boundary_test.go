package unitofwork_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// fakeExecutor registra qué vía se usó.
type fakeExecutor struct {
	supports bool
	probeErr error
	txErr    error // error que devuelve Transactional sin ejecutar fn
	probes   int
	txCalls  int
	seqCalls int
}

func (f *fakeExecutor) SupportsTransactions(context.Context) (bool, error) {
	f.probes++
	return f.supports, f.probeErr
}

func (f *fakeExecutor) Transactional(ctx context.Context, fn unitofwork.Work) error {
	f.txCalls++
	if f.txErr != nil {
		return f.txErr
	}
	return fn(ctx, repository.Repositories{})
}

func (f *fakeExecutor) Sequential(ctx context.Context, fn unitofwork.Work) error {
	f.seqCalls++
	return fn(ctx, repository.Repositories{})
}

func newBoundary(exec unitofwork.Executor) (*unitofwork.Boundary, *bytes.Buffer) {
	var buf bytes.Buffer
	return unitofwork.NewBoundary(exec, zerolog.New(&buf)), &buf
}

// ─────────────────────────────────────────────────────────────────────────────
// Vía transaccional
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_Transaccional(t *testing.T) {
	exec := &fakeExecutor{supports: true}
	b, buf := newBoundary(exec)

	runs := 0
	err := b.Run(context.Background(), "crear_factura", func(context.Context, repository.Repositories) error {
		runs++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, exec.txCalls)
	assert.Zero(t, exec.seqCalls)
	assert.Equal(t, unitofwork.ModeTransactional, b.Mode())
	assert.NotContains(t, buf.String(), `"level":"warn"`)
}

func TestRun_SondeaUnaSolaVez(t *testing.T) {
	exec := &fakeExecutor{supports: true}
	b, _ := newBoundary(exec)
	noop := func(context.Context, repository.Repositories) error { return nil }

	require.NoError(t, b.Run(context.Background(), "a", noop))
	require.NoError(t, b.Run(context.Background(), "b", noop))
	assert.Equal(t, 1, exec.probes)
}

func TestRun_ErrorDeNegocioNoReintenta(t *testing.T) {
	exec := &fakeExecutor{supports: true}
	b, _ := newBoundary(exec)

	runs := 0
	err := b.Run(context.Background(), "crear_factura", func(context.Context, repository.Repositories) error {
		runs++
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, runs)
	assert.Zero(t, exec.seqCalls)
}

// ─────────────────────────────────────────────────────────────────────────────
// Degradación a secuencial
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_FallbackCuandoNoHayTransacciones(t *testing.T) {
	exec := &fakeExecutor{
		supports: true, // el sondeo se equivoca; el servidor rechaza al ejecutar
		txErr:    fmt.Errorf("iniciar sesión: %w", domain.ErrTransactionsUnsupported),
	}
	b, buf := newBoundary(exec)

	runs := 0
	work := func(context.Context, repository.Repositories) error {
		runs++
		return nil
	}
	require.NoError(t, b.Run(context.Background(), "crear_factura", work))

	assert.Equal(t, 1, runs, "la unidad se ejecuta una sola vez por la vía secuencial")
	assert.Equal(t, 1, exec.seqCalls)
	assert.Equal(t, unitofwork.ModeSequential, b.Mode())
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "crear_factura")

	// La segunda unidad va directo a secuencial y también advierte.
	buf.Reset()
	require.NoError(t, b.Run(context.Background(), "eliminar_factura", work))
	assert.Equal(t, 1, exec.txCalls)
	assert.Equal(t, 2, exec.seqCalls)
	assert.Contains(t, buf.String(), "eliminar_factura")
	assert.Equal(t, int64(2), b.DegradedRuns())
}

func TestRun_SondeoNegativoVaDirectoASecuencial(t *testing.T) {
	exec := &fakeExecutor{supports: false}
	b, buf := newBoundary(exec)

	require.NoError(t, b.Run(context.Background(), "nota_credito", func(context.Context, repository.Repositories) error { return nil }))
	assert.Zero(t, exec.txCalls)
	assert.Equal(t, 1, exec.seqCalls)
	assert.Equal(t, 1, strings.Count(buf.String(), `"unit_of_work":"nota_credito"`))
}

func TestRun_SondeoFallidoIntentaTransaccion(t *testing.T) {
	exec := &fakeExecutor{probeErr: errors.New("timeout")}
	b, _ := newBoundary(exec)

	require.NoError(t, b.Run(context.Background(), "x", func(context.Context, repository.Repositories) error { return nil }))
	assert.Equal(t, 1, exec.txCalls)
	assert.Equal(t, unitofwork.ModeUnknown, b.Mode(), "sin sondeo exitoso la capacidad sigue sin fijar")
}
