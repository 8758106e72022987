// @title           Gestión RD API
// @version         1.0
// @description     Inventario, facturación con NCF, notas de crédito y cobros para República Dominicana.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	_ "github.com/jhoicas/Gestion-RD-api/docs"
	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/application/usecase"
	infraexcel "github.com/jhoicas/Gestion-RD-api/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/Gestion-RD-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Gestion-RD-api/internal/interfaces/http"
	"github.com/jhoicas/Gestion-RD-api/pkg/config"
	"github.com/jhoicas/Gestion-RD-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		AppName: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	taxRate, err := decimal.NewFromString(cfg.Billing.DefaultTaxRate)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Billing.DefaultTaxRate).Msg("BILLING_DEFAULT_TAX_RATE inválido")
	}
	loc := cfg.App.Location()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, err := storage.Open(ctx, cfg, log.Component(cfg.DB.Driver))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("cerrar almacenamiento")
		}
	}()
	repos := backend.Repos

	boundary := unitofwork.NewBoundary(backend.Executor, log.Component("unitofwork"))
	ledger := inventory.NewStockLedger(loc)
	validator := inventory.NewAvailabilityValidator()
	allocator := fiscal.NewAllocator(boundary, repos, log.Component("ncf"))

	productUC := usecase.NewProductUseCase(boundary, repos, ledger, log.Component("products"))
	inventoryUC := inventory.NewInventoryUseCase(boundary, repos, ledger, validator,
		infraexcel.NewMovementExporter(), loc, log.Component("inventory"))
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Products, repos.Movements)
	invoiceUC := billing.NewInvoiceUseCase(boundary, repos, ledger, validator, allocator,
		taxRate, loc, log.Component("invoices"))
	creditNoteUC := billing.NewCreditNoteUseCase(boundary, repos, ledger, allocator, loc, log.Component("credit_notes"))
	paymentUC := billing.NewPaymentUseCase(boundary, repos, loc, log.Component("payments"))
	clientUC := billing.NewClientUseCase(repos.Clients, repos.Invoices, log.Component("clients"))

	// PDF: representación impresa de facturas y notas de crédito
	pdfUC := billing.NewPDFUseCase(invoiceUC, creditNoteUC, infrapdf.NewMarotoPDFGenerator(), billing.Issuer{
		Name:    cfg.Company.Name,
		RNC:     cfg.Company.RNC,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
	})

	if cfg.Billing.OverdueSweepMinute > 0 {
		go invoiceUC.RunOverdueSweeper(ctx, time.Duration(cfg.Billing.OverdueSweepMinute)*time.Minute)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Gestión RD API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"storage": backend.Driver,
			"mode":    boundary.Mode().String(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:       productUC,
		InventoryUC:     inventoryUC,
		ReplenishmentUC: replenishmentUC,
		InvoiceUC:       invoiceUC,
		CreditNoteUC:    creditNoteUC,
		PaymentUC:       paymentUC,
		ClientUC:        clientUC,
		PDFUC:           pdfUC,
		Allocator:       allocator,
		JWTSecret:       cfg.JWT.Secret,
		JWTIssuer:       cfg.JWT.Issuer,
		Log:             log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Int64("degraded_runs", boundary.DegradedRuns()).Msg("aplicación detenida")
}
