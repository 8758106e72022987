// Package billing contiene los cálculos puros de facturación (sin dependencias de infraestructura).
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Totals montos calculados de un comprobante.
type Totals struct {
	Subtotal decimal.Decimal // suma de precio*cantidad
	Discount decimal.Decimal // descuentos de línea + descuento global
	Tax      decimal.Decimal // ITBIS sobre (Subtotal - Discount)
	Total    decimal.Decimal
}

// LineAmounts calcula subtotal y total de una línea con descuento porcentual.
func LineAmounts(price, quantity, discountPct decimal.Decimal) (subtotal, total decimal.Decimal) {
	subtotal = price.Mul(quantity).Round(2)
	lineDiscount := subtotal.Mul(discountPct).Div(hundred).Round(2)
	return subtotal, subtotal.Sub(lineDiscount)
}

// PriceItem completa Subtotal y Total de la línea a partir de precio, cantidad y descuento.
func PriceItem(it entity.InvoiceItem) entity.InvoiceItem {
	it.Subtotal, it.Total = LineAmounts(it.Price, it.Quantity, it.Discount)
	return it
}

// ComputeTotals aplica el descuento global y luego la tasa (porcentaje) al subtotal descontado.
// Las líneas deben venir con Subtotal y Total calculados.
func ComputeTotals(items []entity.InvoiceItem, discount, taxRatePct decimal.Decimal) Totals {
	var t Totals
	var lineDiscounts decimal.Decimal
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.Subtotal)
		lineDiscounts = lineDiscounts.Add(it.Subtotal.Sub(it.Total))
	}
	t.Discount = lineDiscounts.Add(discount).Round(2)
	taxable := t.Subtotal.Sub(t.Discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	t.Tax = taxable.Mul(taxRatePct).Div(hundred).Round(2)
	t.Total = taxable.Add(t.Tax)
	return t
}
