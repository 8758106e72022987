package billing

import (
	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

func toSnapshotResponse(s entity.ClientSnapshot) dto.ClientSnapshotResponse {
	return dto.ClientSnapshotResponse{
		Name:    s.Name,
		RNC:     s.RNC,
		Address: s.Address,
		Phone:   s.Phone,
		Email:   s.Email,
	}
}

// ToInvoiceResponse convierte la factura al DTO de salida.
func ToInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = dto.InvoiceItemResponse{
			Index:     i,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Discount:  it.Discount,
			Subtotal:  it.Subtotal,
			Total:     it.Total,
		}
	}
	paymentIDs := inv.PaymentIDs
	if paymentIDs == nil {
		paymentIDs = []string{}
	}
	creditNoteIDs := inv.CreditNoteIDs
	if creditNoteIDs == nil {
		creditNoteIDs = []string{}
	}
	return dto.InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		NCF:            inv.NCF,
		NCFType:        inv.NCFType,
		ClientID:       inv.ClientID,
		Client:         toSnapshotResponse(inv.Client),
		Items:          items,
		Subtotal:       inv.Subtotal,
		Discount:       inv.Discount,
		TaxRate:        inv.TaxRate,
		Tax:            inv.Tax,
		Total:          inv.Total,
		PaidAmount:     inv.PaidAmount,
		CreditedAmount: inv.CreditedAmount,
		Balance:        inv.Balance(),
		Status:         inv.Status,
		PaymentIDs:     paymentIDs,
		CreditNoteIDs:  creditNoteIDs,
		Date:           inv.Date,
		DueDate:        inv.DueDate,
		Notes:          inv.Notes,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

// ToCreditNoteResponse convierte la nota de crédito al DTO de salida.
func ToCreditNoteResponse(cn *entity.CreditNote) dto.CreditNoteResponse {
	items := make([]dto.CreditNoteItemResponse, len(cn.Items))
	for i, it := range cn.Items {
		items[i] = dto.CreditNoteItemResponse{
			LineIndex: it.LineIndex,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Discount:  it.Discount,
			Subtotal:  it.Subtotal,
			Total:     it.Total,
		}
	}
	return dto.CreditNoteResponse{
		ID:            cn.ID,
		NCF:           cn.NCF,
		InvoiceID:     cn.InvoiceID,
		InvoiceNumber: cn.InvoiceNumber,
		InvoiceNCF:    cn.InvoiceNCF,
		ClientID:      cn.ClientID,
		Client:        toSnapshotResponse(cn.Client),
		Reason:        cn.Reason,
		Items:         items,
		Subtotal:      cn.Subtotal,
		Discount:      cn.Discount,
		TaxRate:       cn.TaxRate,
		Tax:           cn.Tax,
		Total:         cn.Total,
		Notes:         cn.Notes,
		Date:          cn.Date,
		CreatedBy:     cn.CreatedBy,
		CreatedAt:     cn.CreatedAt,
	}
}

// ToPaymentResponse convierte el pago al DTO de salida.
func ToPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		Amount:        p.Amount,
		Method:        p.Method,
		Date:          p.Date,
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToClientResponse convierte el cliente al DTO de salida.
func ToClientResponse(c *entity.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		RNC:       c.RNC,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
