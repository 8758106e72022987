package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNoteItem línea acreditada; LineIndex apunta a la línea original de la factura.
type CreditNoteItem struct {
	LineIndex int
	InvoiceItem
}

// CreditNote comprobante de reverso (NCF tipo B04). Inmutable una vez emitida.
type CreditNote struct {
	ID            string
	NCF           string
	InvoiceID     string
	InvoiceNumber string
	InvoiceNCF    string
	ClientID      string
	Client        ClientSnapshot
	Reason        string
	Items         []CreditNoteItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxRate       decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Notes         string
	Date          time.Time
	CreatedBy     string
	CreatedAt     time.Time
}

// CreditedQuantities suma por línea original las cantidades acreditadas por las notas dadas.
func CreditedQuantities(notes []*CreditNote) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	for _, cn := range notes {
		for _, it := range cn.Items {
			out[it.LineIndex] = out[it.LineIndex].Add(it.Quantity)
		}
	}
	return out
}
