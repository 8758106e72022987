package fiscal_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
)

func setup() (*memory.Store, *unitofwork.Boundary, *fiscal.Allocator) {
	store := memory.New()
	b := unitofwork.NewBoundary(store, zerolog.Nop())
	return store, b, fiscal.NewAllocator(b, store.Repositories(), zerolog.Nop())
}

func allocate(t *testing.T, b *unitofwork.Boundary, a *fiscal.Allocator, ncfType string) string {
	t.Helper()
	var ncf string
	require.NoError(t, b.Run(context.Background(), "test", func(ctx context.Context, repos repository.Repositories) error {
		var err error
		_, ncf, err = a.Allocate(ctx, repos, ncfType)
		return err
	}))
	return ncf
}

// ─────────────────────────────────────────────────────────────────────────────
// Allocate
// ─────────────────────────────────────────────────────────────────────────────

func TestAllocate_Consecutivo(t *testing.T) {
	_, b, a := setup()
	assert.Equal(t, "B0100000001", allocate(t, b, a, "B01"))
	assert.Equal(t, "B0100000002", allocate(t, b, a, "b01"))
	assert.Equal(t, "B0200000001", allocate(t, b, a, "B02"), "cada tipo tiene su contador")
}

func TestAllocate_TipoDesconocido(t *testing.T) {
	store, _, a := setup()
	_, _, err := a.Allocate(context.Background(), store.Repositories(), "Z99")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_RevertidoConLaUnidad(t *testing.T) {
	_, b, a := setup()
	boom := errors.New("fallo posterior")
	err := b.Run(context.Background(), "test", func(ctx context.Context, repos repository.Repositories) error {
		if _, _, err := a.Allocate(ctx, repos, "B01"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "B0100000001", allocate(t, b, a, "B01"), "el número revertido se reutiliza")
}

func TestAllocate_RangoAgotado(t *testing.T) {
	_, b, a := setup()
	_, err := a.SetSequence(context.Background(), "B02", dto.SetSequenceRequest{Value: 9, RangeEnd: 10})
	require.NoError(t, err)

	assert.Equal(t, "B0200000010", allocate(t, b, a, "B02"))
	err = b.Run(context.Background(), "test", func(ctx context.Context, repos repository.Repositories) error {
		_, _, err := a.Allocate(ctx, repos, "B02")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNCFRangeExhausted)
}

func TestAllocate_AutorizacionVencida(t *testing.T) {
	_, b, a := setup()
	_, err := a.SetSequence(context.Background(), "B01", dto.SetSequenceRequest{Value: 0, ExpiresAt: "2020-12-31"})
	require.NoError(t, err)
	err = b.Run(context.Background(), "test", func(ctx context.Context, repos repository.Repositories) error {
		_, _, err := a.Allocate(ctx, repos, "B01")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNCFExpired)
}

func TestAllocate_ConcurrenteSinDuplicados(t *testing.T) {
	_, b, a := setup()
	const n = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Run(context.Background(), "test", func(ctx context.Context, repos repository.Repositories) error {
				_, ncf, err := a.Allocate(ctx, repos, "B01")
				if err != nil {
					return err
				}
				mu.Lock()
				seen[ncf] = true
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
	assert.True(t, seen["B0100000050"])
}

func TestNextInvoiceNumber(t *testing.T) {
	store, _, a := setup()
	n1, err := a.NextInvoiceNumber(context.Background(), store.Repositories())
	require.NoError(t, err)
	n2, err := a.NextInvoiceNumber(context.Background(), store.Repositories())
	require.NoError(t, err)
	assert.Equal(t, "FAC-00000001", n1)
	assert.Equal(t, "FAC-00000002", n2)
}

// ─────────────────────────────────────────────────────────────────────────────
// SetSequence / Resync / List
// ─────────────────────────────────────────────────────────────────────────────

func seedInvoiceWithNCF(t *testing.T, store *memory.Store, id, ncf string) {
	t.Helper()
	require.NoError(t, store.Repositories().Invoices.Create(context.Background(), &entity.Invoice{
		ID: id, Number: "FAC-" + id, NCF: ncf, NCFType: ncf[:3], Total: decimal.NewFromInt(1),
		Status: entity.InvoiceStatusPendiente,
	}))
}

func TestSetSequence_RechazaColision(t *testing.T) {
	store, _, a := setup()
	seedInvoiceWithNCF(t, store, "1", "B0100000042")

	_, err := a.SetSequence(context.Background(), "B01", dto.SetSequenceRequest{Value: 10})
	var collision *domain.NCFCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, int64(42), collision.MaxIssued)
	assert.ErrorIs(t, err, domain.ErrNCFCollision)

	res, err := a.SetSequence(context.Background(), "B01", dto.SetSequenceRequest{Value: 42})
	require.NoError(t, err)
	assert.Equal(t, "B0100000043", res.NextNCF)
}

func TestSetSequence_FinDeRangoMenorQueValor(t *testing.T) {
	_, _, a := setup()
	_, err := a.SetSequence(context.Background(), "B01", dto.SetSequenceRequest{Value: 10, RangeEnd: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResync_AlineaConMayorEmitido(t *testing.T) {
	store, b, a := setup()
	seedInvoiceWithNCF(t, store, "1", "B0100000007")
	seedInvoiceWithNCF(t, store, "2", "B0100000003")

	res, err := a.Resync(context.Background(), "B01")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Current)
	assert.Equal(t, "B0100000008", allocate(t, b, a, "B01"))
}

func TestResync_NotaDeCreditoUsaNotas(t *testing.T) {
	store, _, a := setup()
	require.NoError(t, store.Repositories().CreditNotes.Create(context.Background(), &entity.CreditNote{ID: "cn", NCF: "B0400000005"}))

	res, err := a.Resync(context.Background(), "B04")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Current)
}

func TestList_IncluyeCatalogo(t *testing.T) {
	_, b, a := setup()
	allocate(t, b, a, "B02")

	list, err := a.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 6)
	for _, s := range list {
		if s.Type == "B02" {
			assert.Equal(t, int64(1), s.Current)
		}
	}
}
