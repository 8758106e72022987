package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

type fakePDF struct {
	issuer billing.Issuer
	err    error
}

func (f *fakePDF) GenerateInvoicePDF(_ context.Context, issuer billing.Issuer, inv *entity.Invoice) ([]byte, error) {
	f.issuer = issuer
	return []byte("pdf:" + inv.Number), f.err
}

func (f *fakePDF) GenerateCreditNotePDF(_ context.Context, issuer billing.Issuer, cn *entity.CreditNote) ([]byte, error) {
	f.issuer = issuer
	return []byte("pdf:" + cn.NCF), f.err
}

func TestPDF_FacturaYNotaDeCredito(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	inv := e.invoice(t, e.client(t), item("p1", "2"))
	cn, err := e.notes.Create(ctx, "u1", creditNote(inv.ID, line(0, "1")))
	require.NoError(t, err)

	gen := &fakePDF{}
	uc := billing.NewPDFUseCase(e.invoices, e.notes, gen, billing.Issuer{Name: "Gestión RD", RNC: "130123454"})

	data, name, err := uc.InvoicePDF(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "factura_B0100000001.pdf", name)
	assert.Equal(t, "pdf:FAC-00000001", string(data))
	assert.Equal(t, "130123454", gen.issuer.RNC)

	data, name, err = uc.CreditNotePDF(ctx, cn.ID)
	require.NoError(t, err)
	assert.Equal(t, "nota_credito_B0400000001.pdf", name)
	assert.Equal(t, "pdf:B0400000001", string(data))

	_, _, err = uc.InvoicePDF(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPDF_ErrorDelGenerador(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "100", "10")
	inv := e.invoice(t, e.client(t), item("p1", "1"))

	boom := errors.New("boom")
	uc := billing.NewPDFUseCase(e.invoices, e.notes, &fakePDF{err: boom}, billing.Issuer{})
	_, _, err := uc.InvoicePDF(context.Background(), inv.ID)
	assert.ErrorIs(t, err, boom)
}
