package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura.
const (
	InvoiceStatusPendiente       = "Pendiente"
	InvoiceStatusParcial         = "Parcial"
	InvoiceStatusPagada          = "Pagada"
	InvoiceStatusVencida         = "Vencida"
	InvoiceStatusAnulada         = "Anulada"
	InvoiceStatusNotaCreditoParc = "Nota de Crédito Parcial"
)

// InvoiceItem línea embebida de la factura. Es una copia del producto al momento de facturar
// y no se edita después; corregir una factura implica anularla y emitir otra.
type InvoiceItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  decimal.Decimal
	Discount  decimal.Decimal // porcentaje 0-100 sobre el subtotal de la línea
	Subtotal  decimal.Decimal // Price * Quantity
	Total     decimal.Decimal // Subtotal - descuento de línea
}

// Invoice cabecera y líneas de una factura de venta.
type Invoice struct {
	ID             string
	Number         string // consecutivo interno legible (FAC-00000001)
	NCF            string // comprobante fiscal, vacío si se emitió sin NCF
	NCFType        string
	ClientID       string
	Client         ClientSnapshot
	Items          []InvoiceItem
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	TaxRate        decimal.Decimal // porcentaje ITBIS aplicado
	Tax            decimal.Decimal
	Total          decimal.Decimal
	PaidAmount     decimal.Decimal
	CreditedAmount decimal.Decimal // suma de notas de crédito emitidas
	Status         string
	PaymentIDs     []string
	CreditNoteIDs  []string
	Date           time.Time
	DueDate        *time.Time
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance monto pendiente de cobro: total - acreditado - pagado.
func (inv *Invoice) Balance() decimal.Decimal {
	b := inv.Total.Sub(inv.CreditedAmount).Sub(inv.PaidAmount)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// IsTerminal Pagada y Anulada no admiten más efectos de stock salvo nota de crédito o eliminación.
func (inv *Invoice) IsTerminal() bool {
	return inv.Status == InvoiceStatusPagada || inv.Status == InvoiceStatusAnulada
}

// FullyCredited las notas de crédito cubren el total de la factura.
func (inv *Invoice) FullyCredited() bool {
	return inv.Total.IsPositive() && inv.CreditedAmount.Round(2).GreaterThanOrEqual(inv.Total.Round(2))
}

// RecomputeStatus deriva el estado a partir de los acumuladores. Anulada es definitiva.
func (inv *Invoice) RecomputeStatus(now time.Time) string {
	switch {
	case inv.Status == InvoiceStatusAnulada || inv.FullyCredited():
		inv.Status = InvoiceStatusAnulada
	case inv.PaidAmount.IsPositive() && inv.Balance().Round(2).IsZero():
		inv.Status = InvoiceStatusPagada
	case inv.PaidAmount.IsPositive():
		inv.Status = InvoiceStatusParcial
	case inv.CreditedAmount.IsPositive():
		inv.Status = InvoiceStatusNotaCreditoParc
	case inv.DueDate != nil && inv.DueDate.Before(now):
		inv.Status = InvoiceStatusVencida
	default:
		inv.Status = InvoiceStatusPendiente
	}
	return inv.Status
}
