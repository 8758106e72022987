package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineAmounts_ConDescuento(t *testing.T) {
	sub, total := billing.LineAmounts(d("150.00"), d("4"), d("10"))
	assert.True(t, sub.Equal(d("600")), "subtotal = precio * cantidad")
	assert.True(t, total.Equal(d("540")), "total = subtotal menos 10 por ciento")
}

func TestComputeTotals_ITBISSobreSubtotalDescontado(t *testing.T) {
	items := []entity.InvoiceItem{
		billing.PriceItem(entity.InvoiceItem{Price: d("100"), Quantity: d("10")}),
		billing.PriceItem(entity.InvoiceItem{Price: d("50"), Quantity: d("2"), Discount: d("50")}),
	}
	tot := billing.ComputeTotals(items, d("100"), d("18"))

	assert.True(t, tot.Subtotal.Equal(d("1100")), "subtotal: %s", tot.Subtotal)
	assert.True(t, tot.Discount.Equal(d("150")), "descuento línea 50 + global 100: %s", tot.Discount)
	assert.True(t, tot.Tax.Equal(d("171")), "18%% de 950: %s", tot.Tax)
	assert.True(t, tot.Total.Equal(d("1121")), "total: %s", tot.Total)
}

func TestComputeTotals_DescuentoMayorQueSubtotal(t *testing.T) {
	items := []entity.InvoiceItem{billing.PriceItem(entity.InvoiceItem{Price: d("10"), Quantity: d("1")})}
	tot := billing.ComputeTotals(items, d("50"), d("18"))
	assert.True(t, tot.Tax.IsZero())
	assert.True(t, tot.Total.IsZero())
}
