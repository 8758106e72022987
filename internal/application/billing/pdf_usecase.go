package billing

import (
	"context"
	"fmt"
)

// PDFUseCase genera la representación impresa de facturas y notas de crédito.
type PDFUseCase struct {
	invoices    *InvoiceUseCase
	creditNotes *CreditNoteUseCase
	generator   DocumentPDFGenerator
	issuer      Issuer
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(invoices *InvoiceUseCase, creditNotes *CreditNoteUseCase, generator DocumentPDFGenerator, issuer Issuer) *PDFUseCase {
	return &PDFUseCase{
		invoices:    invoices,
		creditNotes: creditNotes,
		generator:   generator,
		issuer:      issuer,
	}
}

// InvoicePDF devuelve (pdfBytes, filename). domain.ErrNotFound si la factura no existe.
func (uc *PDFUseCase) InvoicePDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoices.GetEntity(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.generator.GenerateInvoicePDF(ctx, uc.issuer, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	name := inv.Number
	if inv.NCF != "" {
		name = inv.NCF
	}
	return data, fmt.Sprintf("factura_%s.pdf", name), nil
}

// CreditNotePDF devuelve (pdfBytes, filename) de una nota de crédito.
func (uc *PDFUseCase) CreditNotePDF(ctx context.Context, creditNoteID string) ([]byte, string, error) {
	cn, err := uc.creditNotes.GetEntity(ctx, creditNoteID)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.generator.GenerateCreditNotePDF(ctx, uc.issuer, cn)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return data, fmt.Sprintf("nota_credito_%s.pdf", cn.NCF), nil
}
