// Package unitofwork ejecuta unidades de trabajo multi-documento de forma atómica cuando el
// almacenamiento lo permite y secuencial (mejor esfuerzo, con advertencia) cuando no.
package unitofwork

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// Work unidad de trabajo. Usa solo los repositorios recibidos; en modo transaccional están
// atados a la sesión y un error descarta todo lo escrito.
type Work func(ctx context.Context, repos repository.Repositories) error

// Executor lo implementa cada adaptador de almacenamiento.
type Executor interface {
	// SupportsTransactions sondea si el despliegue admite transacciones multi-documento.
	SupportsTransactions(ctx context.Context) (bool, error)
	// Transactional ejecuta fn en una transacción. Si el servidor las rechaza devuelve un error
	// que envuelve domain.ErrTransactionsUnsupported sin haber aplicado nada.
	Transactional(ctx context.Context, fn Work) error
	// Sequential ejecuta fn sin sesión; cada escritura se confirma por separado.
	Sequential(ctx context.Context, fn Work) error
}

// Mode capacidad detectada del almacenamiento.
type Mode int32

const (
	ModeUnknown Mode = iota
	ModeTransactional
	ModeSequential
)

func (m Mode) String() string {
	switch m {
	case ModeTransactional:
		return "transactional"
	case ModeSequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// Boundary frontera de transacción compartida por todos los casos de uso.
type Boundary struct {
	exec     Executor
	log      zerolog.Logger
	mode     atomic.Int32
	degraded atomic.Int64
}

// NewBoundary construye la frontera sobre el ejecutor del adaptador.
func NewBoundary(exec Executor, log zerolog.Logger) *Boundary {
	return &Boundary{exec: exec, log: log}
}

// Run ejecuta fn como una unidad. En modo transaccional, si el almacenamiento informa que no
// soporta transacciones, la misma fn se ejecuta una sola vez por la vía secuencial y la capacidad
// queda recordada para el resto del proceso. Cualquier otro error se devuelve sin reintentar.
func (b *Boundary) Run(ctx context.Context, name string, fn Work) error {
	mode := b.Mode()
	if mode == ModeUnknown {
		mode = b.probe(ctx)
	}

	if mode == ModeSequential {
		return b.runSequential(ctx, name, fn)
	}

	err := b.exec.Transactional(ctx, fn)
	if errors.Is(err, domain.ErrTransactionsUnsupported) {
		b.mode.Store(int32(ModeSequential))
		b.log.Warn().Err(err).Str("unit_of_work", name).
			Msg("el almacenamiento no soporta transacciones; se continúa en modo secuencial")
		return b.runSequential(ctx, name, fn)
	}
	return err
}

// Mode capacidad recordada (ModeUnknown antes del primer uso).
func (b *Boundary) Mode() Mode {
	return Mode(b.mode.Load())
}

// DegradedRuns cantidad de unidades ejecutadas sin transacción desde el arranque.
func (b *Boundary) DegradedRuns() int64 {
	return b.degraded.Load()
}

func (b *Boundary) probe(ctx context.Context) Mode {
	ok, err := b.exec.SupportsTransactions(ctx)
	if err != nil {
		// Sin respuesta del sondeo se intenta la transacción; el error del servidor decide.
		b.log.Debug().Err(err).Msg("no se pudo sondear soporte de transacciones")
		return ModeTransactional
	}
	mode := ModeTransactional
	if !ok {
		mode = ModeSequential
	}
	b.mode.CompareAndSwap(int32(ModeUnknown), int32(mode))
	b.log.Info().Str("mode", mode.String()).Msg("capacidad transaccional detectada")
	return mode
}

func (b *Boundary) runSequential(ctx context.Context, name string, fn Work) error {
	b.degraded.Add(1)
	b.log.Warn().Str("unit_of_work", name).
		Msg("unidad de trabajo sin transacción: una falla intermedia puede dejar escrituras parciales")
	return b.exec.Sequential(ctx, fn)
}

// Runner lo que necesitan los casos de uso de la frontera.
type Runner interface {
	Run(ctx context.Context, name string, fn Work) error
}

var _ Runner = (*Boundary)(nil)
