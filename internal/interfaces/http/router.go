package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC       *usecase.ProductUseCase
	InventoryUC     *inventory.InventoryUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	InvoiceUC       *billing.InvoiceUseCase
	CreditNoteUC    *billing.CreditNoteUseCase
	PaymentUC       *billing.PaymentUseCase
	ClientUC        *billing.ClientUseCase
	PDFUC           *billing.PDFUseCase
	Allocator       *fiscal.Allocator
	JWTSecret       string
	JWTIssuer       string
	Log             zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
//
//	admin      todo
//	vendedor   facturas, pagos, notas de crédito, clientes, lectura de productos
//	bodeguero  productos e inventario
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	anyRole := RequireRole(entity.RoleAdmin, entity.RoleVendedor, entity.RoleBodeguero)
	sales := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	stock := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	admin := RequireRole(entity.RoleAdmin)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.CreditNoteUC, deps.PDFUC, log)
	paymentHandler := NewPaymentHandler(deps.PaymentUC, log)
	creditNoteHandler := NewCreditNoteHandler(deps.CreditNoteUC, deps.PDFUC, log)
	productHandler := NewProductHandler(deps.ProductUC, log)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.ReplenishmentUC, log)
	clientHandler := NewClientHandler(deps.ClientUC, log)
	ncfHandler := NewNCFHandler(deps.Allocator, log)

	// Facturas
	invoices := api.Group("/invoices")
	invoices.Post("/overdue-sweep", admin, invoiceHandler.OverdueSweep)
	invoices.Post("/", sales, invoiceHandler.Create)
	invoices.Get("/", sales, invoiceHandler.List)
	invoices.Get("/:id", sales, invoiceHandler.Get)
	invoices.Delete("/:id", admin, invoiceHandler.Delete)
	invoices.Get("/:id/pdf", sales, invoiceHandler.PDF)
	invoices.Post("/:id/payments", sales, paymentHandler.Register)
	invoices.Get("/:id/payments", sales, paymentHandler.ListByInvoice)
	invoices.Get("/:id/credit-notes", sales, invoiceHandler.CreditNotes)

	// Pagos
	payments := api.Group("/payments", sales)
	payments.Put("/:id", paymentHandler.Update)
	payments.Delete("/:id", paymentHandler.Delete)

	// Notas de crédito
	creditNotes := api.Group("/credit-notes", sales)
	creditNotes.Post("/", creditNoteHandler.Create)
	creditNotes.Get("/:id", creditNoteHandler.Get)
	creditNotes.Get("/:id/pdf", creditNoteHandler.PDF)

	// Productos
	products := api.Group("/products")
	products.Post("/", stock, productHandler.Create)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/low-stock", anyRole, productHandler.LowStock)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", stock, productHandler.Update)

	// Inventario
	inv := api.Group("/inventory", stock)
	inv.Post("/products/:id/stock", inventoryHandler.AddStock)
	inv.Post("/products/:id/adjustments", inventoryHandler.Adjust)
	inv.Get("/movements", inventoryHandler.Movements)
	inv.Get("/movements/export", inventoryHandler.Export)
	inv.Get("/replenishment", inventoryHandler.Replenishment)

	// Clientes
	clients := api.Group("/clients", sales)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.Get)
	clients.Put("/:id", clientHandler.Update)

	// Secuencias NCF
	ncf := api.Group("/ncf/sequences", admin)
	ncf.Get("/", ncfHandler.List)
	ncf.Put("/:type", ncfHandler.Set)
	ncf.Post("/:type/resync", ncfHandler.Resync)
}
