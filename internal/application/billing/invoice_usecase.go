package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	billingcalc "github.com/jhoicas/Gestion-RD-api/internal/domain/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	invdomain "github.com/jhoicas/Gestion-RD-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

var hundred = decimal.NewFromInt(100)

// InvoiceUseCase ciclo de vida de la factura: creación con descuento de inventario y NCF,
// eliminación con reverso de stock y consultas.
type InvoiceUseCase struct {
	uow            unitofwork.Runner
	repos          repository.Repositories
	ledger         *inventory.StockLedger
	validator      *inventory.AvailabilityValidator
	allocator      *fiscal.Allocator
	defaultTaxRate decimal.Decimal
	loc            *time.Location
	log            zerolog.Logger
	now            func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. defaultTaxRate es el ITBIS en porcentaje.
func NewInvoiceUseCase(
	uow unitofwork.Runner,
	repos repository.Repositories,
	ledger *inventory.StockLedger,
	validator *inventory.AvailabilityValidator,
	allocator *fiscal.Allocator,
	defaultTaxRate decimal.Decimal,
	loc *time.Location,
	log zerolog.Logger,
) *InvoiceUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &InvoiceUseCase{
		uow:            uow,
		repos:          repos,
		ledger:         ledger,
		validator:      validator,
		allocator:      allocator,
		defaultTaxRate: defaultTaxRate,
		loc:            loc,
		log:            log,
		now:            time.Now,
	}
}

// Create valida disponibilidad, asigna consecutivo y NCF, calcula totales, guarda la factura en
// Pendiente y descuenta el stock, todo en una unidad de trabajo.
func (uc *InvoiceUseCase) Create(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := validateInvoiceItems(in.Items); err != nil {
		return nil, err
	}
	if in.NCFType != "" && !dgii.InvoiceNCFTypes[in.NCFType] {
		return nil, domain.Invalid("ncf_type", "tipo de NCF %q no válido para facturas", in.NCFType)
	}
	taxRate := uc.defaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return nil, domain.Invalid("tax_rate", "debe estar entre 0 y 100")
	}
	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}
	if discount.IsNegative() {
		return nil, domain.Invalid("discount", "no puede ser negativo")
	}

	now := uc.now()
	date, err := invdomain.ParseMovementDate(in.Date, uc.loc, now)
	if err != nil {
		return nil, domain.Invalid("date", "%s", err.Error())
	}
	var dueDate *time.Time
	if in.DueDate != "" {
		due, err := invdomain.ParseMovementDate(in.DueDate, uc.loc, now)
		if err != nil {
			return nil, domain.Invalid("due_date", "%s", err.Error())
		}
		if due.Before(date) {
			return nil, domain.Invalid("due_date", "el vencimiento es anterior a la fecha de la factura")
		}
		dueDate = &due
	}

	client, err := uc.repos.Clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if client == nil {
		return nil, domain.NotFound("cliente", in.ClientID)
	}

	lines := make([]inventory.StockLine, len(in.Items))
	for i, it := range in.Items {
		lines[i] = inventory.StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	var inv *entity.Invoice
	err = uc.uow.Run(ctx, "crear_factura", func(ctx context.Context, repos repository.Repositories) error {
		products, err := uc.validator.Validate(ctx, repos.Products, lines)
		if err != nil {
			return err
		}

		items := make([]entity.InvoiceItem, len(in.Items))
		for i, it := range in.Items {
			p := products[it.ProductID]
			price := p.Price
			if it.Price != nil {
				price = *it.Price
			}
			if !price.IsPositive() {
				return domain.Invalid(fmt.Sprintf("items[%d].price", i), "el producto %s no tiene precio", p.Name)
			}
			items[i] = billingcalc.PriceItem(entity.InvoiceItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     price,
				Quantity:  it.Quantity,
				Discount:  it.Discount,
			})
		}
		totals := billingcalc.ComputeTotals(items, discount, taxRate)
		if totals.Discount.GreaterThan(totals.Subtotal) {
			return domain.Invalid("discount", "el descuento excede el subtotal")
		}

		number, err := uc.allocator.NextInvoiceNumber(ctx, repos)
		if err != nil {
			return err
		}
		var ncf string
		if in.NCFType != "" {
			if _, ncf, err = uc.allocator.Allocate(ctx, repos, in.NCFType); err != nil {
				return err
			}
		}

		inv = &entity.Invoice{
			ID:         uuid.New().String(),
			Number:     number,
			NCF:        ncf,
			NCFType:    in.NCFType,
			ClientID:   client.ID,
			Client:     client.Snapshot(),
			Items:      items,
			Subtotal:   totals.Subtotal,
			Discount:   totals.Discount,
			TaxRate:    taxRate,
			Tax:        totals.Tax,
			Total:      totals.Total,
			PaidAmount: decimal.Zero,
			Status:     entity.InvoiceStatusPendiente,
			Date:       date,
			DueDate:    dueDate,
			Notes:      in.Notes,
			CreatedBy:  userID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			return fmt.Errorf("guardar factura: %w", err)
		}

		_, err = uc.ledger.Apply(ctx, repos, lines, inventory.DirectionSubtract, &inventory.MovementMeta{
			Type:      entity.MovementTypeSalida,
			Reference: number,
			Notes:     "Factura " + number,
			Date:      in.Date,
			CreatedBy: userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).Str("ncf", inv.NCF).
		Str("total", inv.Total.String()).Msg("factura creada")
	res := ToInvoiceResponse(inv)
	return &res, nil
}

// Delete revierte al inventario lo no acreditado de cada línea, elimina los pagos y la factura.
// Las notas de crédito emitidas se conservan como comprobantes fiscales.
func (uc *InvoiceUseCase) Delete(ctx context.Context, userID, id string) error {
	var inv *entity.Invoice
	err := uc.uow.Run(ctx, "eliminar_factura", func(ctx context.Context, repos repository.Repositories) error {
		var err error
		inv, err = repos.Invoices.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener factura: %w", err)
		}
		if inv == nil {
			return domain.NotFound("factura", id)
		}

		notes, err := repos.CreditNotes.ListByInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener notas de crédito: %w", err)
		}
		lines, err := reversibleLines(inv, entity.CreditedQuantities(notes))
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			_, err = uc.ledger.Apply(ctx, repos, lines, inventory.DirectionAdd, &inventory.MovementMeta{
				Type:      entity.MovementTypeEntrada,
				Reference: inv.Number,
				Notes:     "Eliminación de factura " + inv.Number,
				CreatedBy: userID,
			})
			if err != nil {
				return err
			}
		}
		if _, err := repos.Payments.DeleteByInvoice(ctx, id); err != nil {
			return fmt.Errorf("eliminar pagos: %w", err)
		}
		return repos.Invoices.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("invoice_id", id).Str("number", inv.Number).Msg("factura eliminada")
	return nil
}

// reversibleLines cantidad por línea que aún está fuera del inventario: vendida menos acreditada.
// Verifica que lo devuelto por producto nunca supere lo despachado.
func reversibleLines(inv *entity.Invoice, credited map[int]decimal.Decimal) ([]inventory.StockLine, error) {
	for idx := range credited {
		if idx < 0 || idx >= len(inv.Items) {
			return nil, fmt.Errorf("%w: nota de crédito apunta a la línea %d inexistente en %s",
				domain.ErrConflict, idx, inv.Number)
		}
	}
	shipped := make(map[string]decimal.Decimal)
	returned := make(map[string]decimal.Decimal)
	var lines []inventory.StockLine
	for i, it := range inv.Items {
		c := credited[i]
		remaining := it.Quantity.Sub(c)
		if remaining.IsNegative() {
			return nil, fmt.Errorf("%w: la línea %d de %s tiene más acreditado (%s) que vendido (%s)",
				domain.ErrConflict, i, inv.Number, c, it.Quantity)
		}
		shipped[it.ProductID] = shipped[it.ProductID].Add(it.Quantity)
		returned[it.ProductID] = returned[it.ProductID].Add(c).Add(remaining)
		if remaining.IsPositive() {
			lines = append(lines, inventory.StockLine{ProductID: it.ProductID, Quantity: remaining})
		}
	}
	for productID, r := range returned {
		if r.GreaterThan(shipped[productID]) {
			return nil, fmt.Errorf("%w: devolución de %s excede lo despachado", domain.ErrConflict, productID)
		}
	}
	return lines, nil
}

// Get devuelve una factura.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("factura", id)
	}
	res := ToInvoiceResponse(inv)
	return &res, nil
}

// GetEntity devuelve la entidad (para PDF y notas de crédito).
func (uc *InvoiceUseCase) GetEntity(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("factura", id)
	}
	return inv, nil
}

// List lista facturas con filtros por cliente, estado y rango de fechas.
func (uc *InvoiceUseCase) List(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	filter := repository.InvoiceFilter{
		ClientID: in.ClientID,
		Status:   in.Status,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	if in.From != "" {
		from, err := time.ParseInLocation("2006-01-02", in.From, uc.loc)
		if err != nil {
			return nil, domain.Invalid("from", "fecha inválida, use YYYY-MM-DD")
		}
		filter.From = &from
	}
	if in.To != "" {
		to, err := time.ParseInLocation("2006-01-02", in.To, uc.loc)
		if err != nil {
			return nil, domain.Invalid("to", "fecha inválida, use YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1) // incluye el día completo
		filter.To = &to
	}
	list, err := uc.repos.Invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, ToInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Count: len(items)},
	}, nil
}

// MarkOverdue pasa a Vencida las facturas Pendiente con vencimiento anterior a asOf.
// Cada factura se actualiza por separado; un fallo se registra y no detiene el barrido.
func (uc *InvoiceUseCase) MarkOverdue(ctx context.Context, asOf time.Time) (*dto.OverdueSweepResponse, error) {
	list, err := uc.repos.Invoices.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	res := &dto.OverdueSweepResponse{InvoiceIDs: []string{}}
	for _, inv := range list {
		if inv.RecomputeStatus(asOf) != entity.InvoiceStatusVencida {
			continue
		}
		// Un pago registrado después del listado ya cambió el estado; no se pisa.
		ok, err := uc.repos.Invoices.UpdateStatusIf(ctx, inv.ID, entity.InvoiceStatusPendiente, entity.InvoiceStatusVencida)
		if err != nil {
			uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo marcar la factura como vencida")
			continue
		}
		if !ok {
			continue
		}
		res.InvoiceIDs = append(res.InvoiceIDs, inv.ID)
	}
	res.Updated = len(res.InvoiceIDs)
	if res.Updated > 0 {
		uc.log.Info().Int("updated", res.Updated).Msg("facturas marcadas como vencidas")
	}
	return res, nil
}

// RunOverdueSweeper ejecuta MarkOverdue en cada tick hasta que ctx termine.
func (uc *InvoiceUseCase) RunOverdueSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if _, err := uc.MarkOverdue(ctx, t); err != nil {
				uc.log.Error().Err(err).Msg("barrido de facturas vencidas falló")
			}
		}
	}
}

func validateInvoiceItems(items []dto.InvoiceItemRequest) error {
	if len(items) == 0 {
		return domain.Invalid("items", "la factura debe tener al menos una línea")
	}
	for i, it := range items {
		if it.ProductID == "" {
			return domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if !it.Quantity.IsPositive() {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor que cero")
		}
		if it.Price != nil && !it.Price.IsPositive() {
			return domain.Invalid(fmt.Sprintf("items[%d].price", i), "el precio debe ser mayor que cero")
		}
		if it.Discount.IsNegative() || it.Discount.GreaterThan(hundred) {
			return domain.Invalid(fmt.Sprintf("items[%d].discount", i), "el descuento debe estar entre 0 y 100")
		}
	}
	return nil
}
