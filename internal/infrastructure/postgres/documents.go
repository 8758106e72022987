package postgres

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// Forma JSONB de las líneas y de la copia del cliente embebidas en facturas y notas.

type itemDoc struct {
	LineIndex *int            `json:"line_index,omitempty"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

type clientDoc struct {
	Name    string `json:"name"`
	RNC     string `json:"rnc,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

func toItemDoc(it entity.InvoiceItem) itemDoc {
	return itemDoc{
		ProductID: it.ProductID,
		Name:      it.Name,
		Price:     it.Price,
		Quantity:  it.Quantity,
		Discount:  it.Discount,
		Subtotal:  it.Subtotal,
		Total:     it.Total,
	}
}

func (d itemDoc) toEntity() entity.InvoiceItem {
	return entity.InvoiceItem{
		ProductID: d.ProductID,
		Name:      d.Name,
		Price:     d.Price,
		Quantity:  d.Quantity,
		Discount:  d.Discount,
		Subtotal:  d.Subtotal,
		Total:     d.Total,
	}
}

func invoiceItemDocs(items []entity.InvoiceItem) []itemDoc {
	out := make([]itemDoc, len(items))
	for i, it := range items {
		out[i] = toItemDoc(it)
	}
	return out
}

func creditItemDocs(items []entity.CreditNoteItem) []itemDoc {
	out := make([]itemDoc, len(items))
	for i, it := range items {
		idx := it.LineIndex
		out[i] = toItemDoc(it.InvoiceItem)
		out[i].LineIndex = &idx
	}
	return out
}

func toClientDoc(s entity.ClientSnapshot) clientDoc {
	return clientDoc(s)
}

func (d clientDoc) toEntity() entity.ClientSnapshot {
	return entity.ClientSnapshot(d)
}
