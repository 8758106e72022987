package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/excel"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Gestion-RD-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiEnv struct {
	app   *fiber.App
	repos repository.Repositories
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	store := memory.New()
	repos := store.Repositories()
	log := zerolog.Nop()
	boundary := unitofwork.NewBoundary(store, log)
	ledger := inventory.NewStockLedger(time.UTC)
	allocator := fiscal.NewAllocator(boundary, repos, log)

	invoices := billing.NewInvoiceUseCase(boundary, repos, ledger, inventory.NewAvailabilityValidator(), allocator,
		decimal.NewFromInt(18), time.UTC, log)
	notes := billing.NewCreditNoteUseCase(boundary, repos, ledger, allocator, time.UTC, log)
	issuer := billing.Issuer{Name: "Distribuidora Caribe SRL", RNC: "131246753"}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:       usecase.NewProductUseCase(boundary, repos, ledger, log),
		InventoryUC:     inventory.NewInventoryUseCase(boundary, repos, ledger, inventory.NewAvailabilityValidator(), excel.NewMovementExporter(), time.UTC, log),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(repos.Products, repos.Movements),
		InvoiceUC:       invoices,
		CreditNoteUC:    notes,
		PaymentUC:       billing.NewPaymentUseCase(boundary, repos, time.UTC, log),
		ClientUC:        billing.NewClientUseCase(repos.Clients, repos.Invoices, log),
		PDFUC:           billing.NewPDFUseCase(invoices, notes, pdf.NewMarotoPDFGenerator(), issuer),
		Allocator:       allocator,
		JWTSecret:       testJWTSecret,
		JWTIssuer:       testIssuer,
		Log:             log,
	})
	return &apiEnv{app: app, repos: repos}
}

func (e *apiEnv) seedProduct(t *testing.T, id, price, stock string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.repos.Products.Create(context.Background(), &entity.Product{
		ID: id, Code: id, Name: "Producto " + id,
		Price: decimal.RequireFromString(price), Stock: decimal.RequireFromString(stock),
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (e *apiEnv) stockOf(t *testing.T, id string) string {
	t.Helper()
	p, err := e.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock.String()
}

// call ejecuta la petición y decodifica el cuerpo JSON (si lo hay).
func (e *apiEnv) call(t *testing.T, method, path, role string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
	}
	return resp, out
}

func (e *apiEnv) createClient(t *testing.T) string {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/clients", "vendedor", map[string]any{
		"name": "Ferretería Ozama", "rnc": "101010632",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["client"].(map[string]any)["id"].(string)
}

func (e *apiEnv) createInvoice(t *testing.T, clientID, productID, qty string) map[string]any {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/invoices", "vendedor", map[string]any{
		"client_id": clientID,
		"ncf_type":  "B01",
		"items":     []map[string]any{{"product_id": productID, "quantity": qty}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["invoice"].(map[string]any)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CrearFactura_DescuentaStockYAsignaNCF(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "10")
	clientID := api.createClient(t)

	inv := api.createInvoice(t, clientID, "p1", "3")

	assert.Equal(t, "B0100000001", inv["ncf"])
	assert.Equal(t, "Pendiente", inv["status"])
	assert.Equal(t, "7", api.stockOf(t, "p1"))

	resp, body := api.call(t, http.MethodGet, "/api/invoices/"+inv["id"].(string), "vendedor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, inv["number"], body["invoice"].(map[string]any)["number"])
}

func TestAPI_CrearFactura_StockInsuficiente_409(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "2")
	clientID := api.createClient(t)

	resp, body := api.call(t, http.MethodPost, "/api/invoices", "vendedor", map[string]any{
		"client_id": clientID,
		"items":     []map[string]any{{"product_id": "p1", "quantity": "5"}},
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "2", api.stockOf(t, "p1"))
}

func TestAPI_CrearFactura_SinCliente_400ConCampo(t *testing.T) {
	api := newAPI(t)

	resp, body := api.call(t, http.MethodPost, "/api/invoices", "vendedor", map[string]any{
		"items": []map[string]any{{"product_id": "p1", "quantity": "1"}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Contains(t, body["message"], "client_id")
}

func TestAPI_CuerpoInvalido_400(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))

	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_FacturaInexistente_404(t *testing.T) {
	api := newAPI(t)

	resp, body := api.call(t, http.MethodGet, "/api/invoices/no-existe", "admin", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestAPI_EliminarFactura_SoloAdminYRepone(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "50", "4")
	inv := api.createInvoice(t, api.createClient(t), "p1", "4")
	path := "/api/invoices/" + inv["id"].(string)

	resp, _ := api.call(t, http.MethodDelete, path, "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := api.call(t, http.MethodDelete, path, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "4", api.stockOf(t, "p1"))
}

func TestAPI_FacturaPDF(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "250", "5")
	inv := api.createInvoice(t, api.createClient(t), "p1", "1")

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+inv["id"].(string)+"/pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos y notas de crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PagoCompleto_FacturaPagada(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "10")
	inv := api.createInvoice(t, api.createClient(t), "p1", "1")

	resp, body := api.call(t, http.MethodPost, "/api/invoices/"+inv["id"].(string)+"/payments", "vendedor", map[string]any{
		"amount": inv["total"], "method": "Efectivo",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Pagada", body["payment"].(map[string]any)["invoice_status"])
}

func TestAPI_MetodoDePagoInvalido_400(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "10")
	inv := api.createInvoice(t, api.createClient(t), "p1", "1")

	resp, body := api.call(t, http.MethodPost, "/api/invoices/"+inv["id"].(string)+"/payments", "vendedor", map[string]any{
		"amount": "10", "method": "Bitcoin",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "method")
}

func TestAPI_NotaDeCredito_ReponeStockYUsaB04(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "10")
	inv := api.createInvoice(t, api.createClient(t), "p1", "4")

	resp, body := api.call(t, http.MethodPost, "/api/credit-notes", "vendedor", map[string]any{
		"invoice_id": inv["id"],
		"reason":     "Devolución",
		"items":      []map[string]any{{"line_index": 0, "quantity": "1"}},
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	note := body["credit_note"].(map[string]any)
	assert.Equal(t, "B0400000001", note["ncf"])
	assert.Equal(t, "7", api.stockOf(t, "p1"))

	resp, body = api.call(t, http.MethodGet, "/api/invoices/"+inv["id"].(string)+"/credit-notes", "vendedor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["credit_notes"], 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario, NCF y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AjusteNegativoSinStock_409(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "1")

	resp, body := api.call(t, http.MethodPost, "/api/inventory/products/p1/adjustments", "bodeguero", map[string]any{
		"delta": "-3", "notes": "merma",
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "1", api.stockOf(t, "p1"))
}

func TestAPI_VendedorNoAccedeInventario(t *testing.T) {
	api := newAPI(t)

	resp, _ := api.call(t, http.MethodGet, "/api/inventory/movements", "vendedor", nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ExportarMovimientosXLSX(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "10")
	api.createInvoice(t, api.createClient(t), "p1", "2")

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/movements/export", nil)
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}

func TestAPI_SecuenciasNCF_SoloAdmin(t *testing.T) {
	api := newAPI(t)

	resp, _ := api.call(t, http.MethodGet, "/api/ncf/sequences", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := api.call(t, http.MethodPut, "/api/ncf/sequences/b02", "admin", map[string]any{
		"value": 40, "range_end": 100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	seq := body["sequence"].(map[string]any)
	assert.Equal(t, "B02", seq["type"])
	assert.Equal(t, "B0200000041", seq["next_ncf"])
}

func TestAPI_SecuenciaPorDebajoDeLoEmitido_409(t *testing.T) {
	api := newAPI(t)
	api.seedProduct(t, "p1", "100", "10")
	clientID := api.createClient(t)
	api.createInvoice(t, clientID, "p1", "1")
	api.createInvoice(t, clientID, "p1", "1")

	resp, body := api.call(t, http.MethodPut, "/api/ncf/sequences/B01", "admin", map[string]any{"value": 1})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NCF_COLLISION", body["code"])
}
