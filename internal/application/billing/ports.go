package billing

import (
	"context"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// Issuer datos del emisor impresos en los comprobantes.
type Issuer struct {
	Name    string
	RNC     string
	Address string
	Phone   string
}

// DocumentPDFGenerator genera la representación impresa de facturas y notas de crédito.
type DocumentPDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, issuer Issuer, invoice *entity.Invoice) ([]byte, error)
	GenerateCreditNotePDF(ctx context.Context, issuer Issuer, note *entity.CreditNote) ([]byte, error)
}
