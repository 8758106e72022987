package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Ciclo completo
// ─────────────────────────────────────────────────────────────────────────────

func TestCicloCompleto_FacturaNotaCreditoEliminacion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "150", "100")
	clientID := e.client(t)

	inv := e.invoice(t, clientID, item("p1", "10"))
	assert.True(t, e.stock(t, "p1").Equal(d("90")))
	assert.Equal(t, "FAC-00000001", inv.Number)
	assert.Equal(t, "B0100000001", inv.NCF)
	assert.Equal(t, entity.InvoiceStatusPendiente, inv.Status)
	assert.True(t, inv.Total.Equal(d("1770")), "1500 + 18%% ITBIS, got %s", inv.Total)
	assert.Equal(t, "Ferretería Ozama", inv.Client.Name)

	cn, err := e.notes.Create(ctx, "u1", dto.CreateCreditNoteRequest{
		InvoiceID: inv.ID, Reason: "devolución", Items: []dto.CreditNoteItemRequest{line(0, "5")},
	})
	require.NoError(t, err)
	assert.True(t, e.stock(t, "p1").Equal(d("95")))
	assert.Equal(t, "B0400000001", cn.NCF)
	assert.True(t, cn.Total.Equal(d("885")))
	assert.Equal(t, entity.InvoiceStatusNotaCreditoParc, cn.InvoiceStatus)

	require.NoError(t, e.invoices.Delete(ctx, "u1", inv.ID))
	assert.True(t, e.stock(t, "p1").Equal(d("100")), "solo se revierte lo no acreditado")

	_, err = e.invoices.Get(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := e.repos.Movements.List(ctx, repository.MovementFilter{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	var salidas, entradas int
	for _, m := range movs {
		switch m.Type {
		case entity.MovementTypeSalida:
			salidas++
			assert.Equal(t, "FAC-00000001", m.Reference)
		case entity.MovementTypeEntrada:
			entradas++
		}
	}
	assert.Equal(t, 1, salidas)
	assert.Equal(t, 2, entradas)

	notes, err := e.notes.ListByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1, "las notas de crédito se conservan")
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_StockInsuficienteNoDejaEscriturasParciales(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "10", "100")
	e.product(t, "p2", "10", "2")
	clientID := e.client(t)

	_, err := e.invoices.Create(ctx, "u1", dto.CreateInvoiceRequest{
		ClientID: clientID, NCFType: "B02", Items: []dto.InvoiceItemRequest{item("p1", "5"), item("p2", "3")},
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "p2", insufficient.ProductID)
	assert.True(t, insufficient.Available.Equal(d("2")))
	assert.True(t, insufficient.Requested.Equal(d("3")))

	assert.True(t, e.stock(t, "p1").Equal(d("100")))
	list, err := e.invoices.List(ctx, dto.InvoiceListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	inv := e.invoice(t, clientID, item("p1", "1"))
	assert.Equal(t, "FAC-00000001", inv.Number, "los contadores no avanzaron")
}

func TestCreate_SinTransaccionesDegradaYAdvierte(t *testing.T) {
	e := newEnv(t, memory.WithoutTransactions())
	e.product(t, "p1", "100", "10")
	clientID := e.client(t)

	inv := e.invoice(t, clientID, item("p1", "4"))

	assert.True(t, e.stock(t, "p1").Equal(d("6")), "la unidad se aplicó una sola vez")
	assert.Equal(t, "FAC-00000001", inv.Number)
	assert.Equal(t, unitofwork.ModeSequential, e.boundary.Mode())
	assert.Contains(t, e.logs.String(), `"level":"warn"`)
	assert.Contains(t, e.logs.String(), "crear_factura")
}

func TestCreate_PrecioDelCatalogoYDescuentos(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "100", "50")
	e.product(t, "p2", "50", "50")
	clientID := e.client(t)

	discount := d("100")
	price := d("50")
	res, err := e.invoices.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		ClientID: clientID,
		Items: []dto.InvoiceItemRequest{
			item("p1", "10"),
			{ProductID: "p2", Quantity: d("2"), Price: &price, Discount: d("50")},
		},
		Discount: &discount,
	})
	require.NoError(t, err)
	assert.Empty(t, res.NCF, "sin tipo no se asigna NCF")
	assert.True(t, res.Subtotal.Equal(d("1100")))
	assert.True(t, res.Discount.Equal(d("150")))
	assert.True(t, res.Tax.Equal(d("171")))
	assert.True(t, res.Total.Equal(d("1121")))
	assert.True(t, res.Items[0].Price.Equal(d("100")))
}

func TestCreate_Validaciones(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "100", "50")
	clientID := e.client(t)
	ctx := context.Background()

	cases := map[string]dto.CreateInvoiceRequest{
		"sin líneas":        {ClientID: clientID},
		"cantidad cero":     {ClientID: clientID, Items: []dto.InvoiceItemRequest{item("p1", "0")}},
		"descuento > 100":   {ClientID: clientID, Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: d("1"), Discount: d("101")}}},
		"tipo NCF inválido": {ClientID: clientID, NCFType: "B04", Items: []dto.InvoiceItemRequest{item("p1", "1")}},
		"vence antes":       {ClientID: clientID, Items: []dto.InvoiceItemRequest{item("p1", "1")}, Date: "2024-05-10", DueDate: "2024-05-01"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.invoices.Create(ctx, "u1", req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := e.invoices.Create(ctx, "u1", dto.CreateInvoiceRequest{ClientID: "nadie", Items: []dto.InvoiceItemRequest{item("p1", "1")}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.invoices.Create(ctx, "u1", dto.CreateInvoiceRequest{ClientID: clientID, Items: []dto.InvoiceItemRequest{item("zz", "1")}})
	var nf *domain.ProductNotFoundError
	assert.True(t, errors.As(err, &nf))
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / List / MarkOverdue
// ─────────────────────────────────────────────────────────────────────────────

func TestDelete_EliminaPagos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	inv := e.invoice(t, e.client(t), item("p1", "1"))

	p, err := e.payments.Register(ctx, "u1", inv.ID, dto.PaymentRequest{Amount: d("50"), Method: "Efectivo"})
	require.NoError(t, err)

	require.NoError(t, e.invoices.Delete(ctx, "u1", inv.ID))
	got, err := e.repos.Payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, e.stock(t, "p1").Equal(d("10")))
}

func TestDelete_Inexistente(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.invoices.Delete(context.Background(), "u1", "nope"), domain.ErrNotFound)
}

func TestList_FiltraPorEstadoYCliente(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	c1 := e.client(t)
	c2res, err := e.clients.Create(ctx, dto.ClientRequest{Name: "Colmado Don Pepe"})
	require.NoError(t, err)

	a := e.invoice(t, c1, item("p1", "1"))
	e.invoice(t, c2res.ID, item("p1", "1"))
	_, err = e.payments.Register(ctx, "u1", a.ID, dto.PaymentRequest{Amount: a.Total, Method: "Transferencia"})
	require.NoError(t, err)

	paid, err := e.invoices.List(ctx, dto.InvoiceListRequest{Status: entity.InvoiceStatusPagada})
	require.NoError(t, err)
	require.Len(t, paid.Items, 1)
	assert.Equal(t, a.ID, paid.Items[0].ID)

	byClient, err := e.invoices.List(ctx, dto.InvoiceListRequest{ClientID: c2res.ID})
	require.NoError(t, err)
	assert.Len(t, byClient.Items, 1)
}

func TestCreate_VencimientoPasadoQuedaPendiente(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "100", "10")

	inv, err := e.invoices.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		ClientID: e.client(t), Items: []dto.InvoiceItemRequest{item("p1", "1")},
		Date: "2024-01-01", DueDate: "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPendiente, inv.Status, "el barrido la marca como vencida, no la creación")

	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPendiente, got.Status)
}

func TestMarkOverdue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")
	clientID := e.client(t)

	past, err := e.invoices.Create(ctx, "u1", dto.CreateInvoiceRequest{
		ClientID: clientID, Items: []dto.InvoiceItemRequest{item("p1", "1")},
		Date: "2024-01-01", DueDate: "2024-01-31",
	})
	require.NoError(t, err)
	require.Equal(t, entity.InvoiceStatusPendiente, past.Status)

	open, err := e.invoices.Create(ctx, "u1", dto.CreateInvoiceRequest{
		ClientID: clientID, Items: []dto.InvoiceItemRequest{item("p1", "1")},
		DueDate: time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPendiente, open.Status)

	res, err := e.invoices.MarkOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{past.ID}, res.InvoiceIDs)

	res, err = e.invoices.MarkOverdue(ctx, time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated, "la ya vencida no se cuenta otra vez")
	assert.Equal(t, []string{open.ID}, res.InvoiceIDs)

	got, err := e.invoices.Get(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusVencida, got.Status)
}

// pagoTrasListar registra un pago justo después de listar las vencidas, antes de que el
// barrido escriba.
type pagoTrasListar struct {
	repository.InvoiceRepository
	pagar func(ctx context.Context, id string)
}

func (r *pagoTrasListar) ListOverdue(ctx context.Context, asOf time.Time) ([]*entity.Invoice, error) {
	list, err := r.InvoiceRepository.ListOverdue(ctx, asOf)
	for _, inv := range list {
		r.pagar(ctx, inv.ID)
	}
	return list, err
}

func TestMarkOverdue_NoPisaUnPagoConcurrente(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "p1", "100", "10")

	inv, err := e.invoices.Create(ctx, "u1", dto.CreateInvoiceRequest{
		ClientID: e.client(t), Items: []dto.InvoiceItemRequest{item("p1", "1")},
		Date: "2024-01-01", DueDate: "2024-01-15",
	})
	require.NoError(t, err)

	repos := e.repos
	repos.Invoices = &pagoTrasListar{
		InvoiceRepository: e.repos.Invoices,
		pagar: func(ctx context.Context, id string) {
			p, err := e.payments.Register(ctx, "u1", id, pay("50"))
			require.NoError(t, err)
			require.Equal(t, entity.InvoiceStatusParcial, p.InvoiceStatus)
		},
	}
	sweeper := billing.NewInvoiceUseCase(e.boundary, repos, inventory.NewStockLedger(time.UTC),
		inventory.NewAvailabilityValidator(), fiscal.NewAllocator(e.boundary, repos, zerolog.Nop()),
		decimal.NewFromInt(18), time.UTC, zerolog.Nop())

	res, err := sweeper.MarkOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, res.Updated)
	assert.Empty(t, res.InvoiceIDs)

	got, err := e.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusParcial, got.Status)
	assert.True(t, got.PaidAmount.Equal(d("50")))
}
