package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

func pay(amount string) dto.PaymentRequest {
	return dto.PaymentRequest{Amount: d(amount), Method: entity.PaymentMethodEfectivo}
}

func TestPayments_EstadosParcialPagada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	inv := e.invoice(t, e.client(t), item("p1", "1"))
	require.True(t, inv.Total.Equal(d("118")))

	first, err := e.payments.Register(ctx, "u1", inv.ID, pay("50"))
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusParcial, first.InvoiceStatus)
	assert.Equal(t, inv.Number, first.InvoiceNumber)

	_, err = e.payments.Register(ctx, "u1", inv.ID, pay("100"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "supera el saldo")

	second, err := e.payments.Register(ctx, "u1", inv.ID, pay("68"))
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPagada, second.InvoiceStatus)

	require.NoError(t, e.payments.Delete(ctx, first.ID))
	got, err := e.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusParcial, got.Status)
	assert.True(t, got.PaidAmount.Equal(d("68")))
	assert.Equal(t, []string{second.ID}, got.PaymentIDs)

	updated, err := e.payments.Update(ctx, second.ID, pay("118"))
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPagada, updated.InvoiceStatus)

	_, err = e.payments.Update(ctx, second.ID, pay("119"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := e.payments.ListByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(d("118")))
}

func TestPayments_Validaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	inv := e.invoice(t, e.client(t), item("p1", "1"))

	_, err := e.payments.Register(ctx, "u1", inv.ID, pay("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.payments.Register(ctx, "u1", inv.ID, dto.PaymentRequest{Amount: d("10"), Method: "Bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.payments.Register(ctx, "u1", "nope", pay("10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, e.payments.Delete(ctx, "nope"), domain.ErrNotFound)
}

func TestPayments_FacturaAnuladaRechazaPagos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	inv := e.invoice(t, e.client(t), item("p1", "1"))

	_, err := e.notes.Create(ctx, "u1", creditNote(inv.ID, line(0, "1")))
	require.NoError(t, err)

	_, err = e.payments.Register(ctx, "u1", inv.ID, pay("10"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}
