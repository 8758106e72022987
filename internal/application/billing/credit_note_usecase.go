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

// CreditNoteUseCase emite notas de crédito (B04) contra facturas: devuelve stock y acumula el
// monto acreditado. Las notas no se editan ni se eliminan.
type CreditNoteUseCase struct {
	uow       unitofwork.Runner
	repos     repository.Repositories
	ledger    *inventory.StockLedger
	allocator *fiscal.Allocator
	loc       *time.Location
	log       zerolog.Logger
	now       func() time.Time
}

// NewCreditNoteUseCase construye el caso de uso.
func NewCreditNoteUseCase(
	uow unitofwork.Runner,
	repos repository.Repositories,
	ledger *inventory.StockLedger,
	allocator *fiscal.Allocator,
	loc *time.Location,
	log zerolog.Logger,
) *CreditNoteUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &CreditNoteUseCase{
		uow:       uow,
		repos:     repos,
		ledger:    ledger,
		allocator: allocator,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// Create emite la nota. Cada línea apunta a una línea de la factura y no puede superar lo que
// queda por acreditar de ella; precio y descuento salen de la línea original.
func (uc *CreditNoteUseCase) Create(ctx context.Context, userID string, in dto.CreateCreditNoteRequest) (*dto.CreditNoteResponse, error) {
	if in.InvoiceID == "" {
		return nil, domain.Invalid("invoice_id", "requerido")
	}
	if in.Reason == "" {
		return nil, domain.Invalid("reason", "requerido")
	}
	requested, order, err := aggregateCreditItems(in.Items)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	date, err := invdomain.ParseMovementDate(in.Date, uc.loc, now)
	if err != nil {
		return nil, domain.Invalid("date", "%s", err.Error())
	}

	var (
		cn     *entity.CreditNote
		status string
	)
	err = uc.uow.Run(ctx, "emitir_nota_credito", func(ctx context.Context, repos repository.Repositories) error {
		inv, err := repos.Invoices.GetByID(ctx, in.InvoiceID)
		if err != nil {
			return fmt.Errorf("obtener factura: %w", err)
		}
		if inv == nil {
			return domain.NotFound("factura", in.InvoiceID)
		}
		if inv.Status == entity.InvoiceStatusAnulada {
			return fmt.Errorf("%w: la factura %s está anulada", domain.ErrConflict, inv.Number)
		}

		prev, err := repos.CreditNotes.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("obtener notas previas: %w", err)
		}
		credited := entity.CreditedQuantities(prev)

		items := make([]entity.CreditNoteItem, 0, len(order))
		lines := make([]inventory.StockLine, 0, len(order))
		for _, idx := range order {
			if idx >= len(inv.Items) {
				return domain.Invalid("items", "la factura %s no tiene línea %d", inv.Number, idx)
			}
			orig := inv.Items[idx]
			qty := requested[idx]
			remaining := orig.Quantity.Sub(credited[idx])
			if qty.GreaterThan(remaining) {
				return domain.Invalid("items", "línea %d (%s): se piden %s y quedan %s por acreditar",
					idx, orig.Name, qty, remaining)
			}
			items = append(items, entity.CreditNoteItem{
				LineIndex: idx,
				InvoiceItem: billingcalc.PriceItem(entity.InvoiceItem{
					ProductID: orig.ProductID,
					Name:      orig.Name,
					Price:     orig.Price,
					Quantity:  qty,
					Discount:  orig.Discount,
				}),
			})
			lines = append(lines, inventory.StockLine{ProductID: orig.ProductID, Quantity: qty})
			credited[idx] = credited[idx].Add(qty)
		}

		totals := creditNoteTotals(inv, items, fullyCredited(inv, credited))
		uncredited := inv.Total.Sub(inv.CreditedAmount)
		if totals.Total.GreaterThan(uncredited) {
			return domain.Invalid("items", "el total de la nota (%s) excede lo pendiente por acreditar (%s)",
				totals.Total.StringFixed(2), uncredited.StringFixed(2))
		}

		_, ncf, err := uc.allocator.Allocate(ctx, repos, dgii.NCFNotaCredito)
		if err != nil {
			return err
		}
		cn = &entity.CreditNote{
			ID:            uuid.New().String(),
			NCF:           ncf,
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.Number,
			InvoiceNCF:    inv.NCF,
			ClientID:      inv.ClientID,
			Client:        inv.Client,
			Reason:        in.Reason,
			Items:         items,
			Subtotal:      totals.Subtotal,
			Discount:      totals.Discount,
			TaxRate:       inv.TaxRate,
			Tax:           totals.Tax,
			Total:         totals.Total,
			Notes:         in.Notes,
			Date:          date,
			CreatedBy:     userID,
			CreatedAt:     now,
		}
		if err := repos.CreditNotes.Create(ctx, cn); err != nil {
			return fmt.Errorf("guardar nota de crédito: %w", err)
		}

		_, err = uc.ledger.Apply(ctx, repos, lines, inventory.DirectionAdd, &inventory.MovementMeta{
			Type:      entity.MovementTypeEntrada,
			Reference: ncf,
			Notes:     fmt.Sprintf("Nota de crédito %s a %s", ncf, inv.Number),
			Date:      in.Date,
			CreatedBy: userID,
		})
		if err != nil {
			return err
		}

		updated, err := repos.Invoices.AddCreditNote(ctx, inv.ID, cn.Total, cn.ID)
		if err != nil {
			return fmt.Errorf("actualizar factura: %w", err)
		}
		// Los pagos previos conservan Pagada o Parcial; acreditar el total anula.
		status = updated.RecomputeStatus(now)
		return repos.Invoices.UpdateStatus(ctx, inv.ID, status)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("credit_note_id", cn.ID).Str("ncf", cn.NCF).Str("invoice_id", cn.InvoiceID).
		Str("total", cn.Total.String()).Str("invoice_status", status).Msg("nota de crédito emitida")
	res := ToCreditNoteResponse(cn)
	res.InvoiceStatus = status
	return &res, nil
}

// Get devuelve una nota de crédito.
func (uc *CreditNoteUseCase) Get(ctx context.Context, id string) (*dto.CreditNoteResponse, error) {
	cn, err := uc.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	res := ToCreditNoteResponse(cn)
	return &res, nil
}

// GetEntity devuelve la entidad (para PDF).
func (uc *CreditNoteUseCase) GetEntity(ctx context.Context, id string) (*entity.CreditNote, error) {
	cn, err := uc.repos.CreditNotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cn == nil {
		return nil, domain.NotFound("nota de crédito", id)
	}
	return cn, nil
}

// ListByInvoice notas de una factura en orden de emisión.
func (uc *CreditNoteUseCase) ListByInvoice(ctx context.Context, invoiceID string) ([]dto.CreditNoteResponse, error) {
	list, err := uc.repos.CreditNotes.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreditNoteResponse, 0, len(list))
	for _, cn := range list {
		out = append(out, ToCreditNoteResponse(cn))
	}
	return out, nil
}

// aggregateCreditItems suma cantidades por línea, conservando el orden de primera aparición.
func aggregateCreditItems(items []dto.CreditNoteItemRequest) (map[int]decimal.Decimal, []int, error) {
	if len(items) == 0 {
		return nil, nil, domain.Invalid("items", "la nota debe tener al menos una línea")
	}
	qty := make(map[int]decimal.Decimal, len(items))
	order := make([]int, 0, len(items))
	for i, it := range items {
		if it.LineIndex == nil || *it.LineIndex < 0 {
			return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].line_index", i), "requerido")
		}
		if !it.Quantity.IsPositive() {
			return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor que cero")
		}
		idx := *it.LineIndex
		if _, seen := qty[idx]; !seen {
			order = append(order, idx)
		}
		qty[idx] = qty[idx].Add(it.Quantity)
	}
	return qty, order, nil
}

// fullyCredited todas las líneas quedan acreditadas por completo.
func fullyCredited(inv *entity.Invoice, credited map[int]decimal.Decimal) bool {
	for i, it := range inv.Items {
		if credited[i].LessThan(it.Quantity) {
			return false
		}
	}
	return true
}

// creditNoteTotals prorratea el descuento global de la factura y aplica su misma tasa. La nota
// que cierra la factura toma exactamente lo pendiente para no dejar diferencias de redondeo.
func creditNoteTotals(inv *entity.Invoice, items []entity.CreditNoteItem, closes bool) billingcalc.Totals {
	lines := make([]entity.InvoiceItem, len(items))
	var noteLines decimal.Decimal
	for i, it := range items {
		lines[i] = it.InvoiceItem
		noteLines = noteLines.Add(it.Total)
	}

	var invLines, invLineDiscounts decimal.Decimal
	for _, it := range inv.Items {
		invLines = invLines.Add(it.Total)
		invLineDiscounts = invLineDiscounts.Add(it.Subtotal.Sub(it.Total))
	}
	header := inv.Discount.Sub(invLineDiscounts)
	prorated := decimal.Zero
	if header.IsPositive() && invLines.IsPositive() {
		prorated = header.Mul(noteLines).Div(invLines).Round(2)
	}

	totals := billingcalc.ComputeTotals(lines, prorated, inv.TaxRate)
	if closes {
		remaining := inv.Total.Sub(inv.CreditedAmount)
		if !remaining.IsNegative() {
			totals.Tax = totals.Tax.Add(remaining.Sub(totals.Total))
			totals.Total = remaining
		}
	}
	return totals
}
