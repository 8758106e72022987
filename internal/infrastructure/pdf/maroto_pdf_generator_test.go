package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/pdf"
)

var issuer = appbilling.Issuer{Name: "Distribuidora Caribe SRL", RNC: "131000012", Address: "Av. 27 de Febrero, Santo Domingo", Phone: "+18095551234"}

func sampleInvoice() *entity.Invoice {
	due := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	return &entity.Invoice{
		ID: "i1", Number: "FAC-00000001", NCF: "B0100000001", NCFType: "B01",
		Client: entity.ClientSnapshot{Name: "Ferretería Ozama", RNC: "101010632"},
		Items: []entity.InvoiceItem{{
			ProductID: "p1", Name: "Cemento gris 42.5kg", Price: decimal.NewFromInt(500),
			Quantity: decimal.NewFromInt(3), Subtotal: decimal.NewFromInt(1500), Total: decimal.NewFromInt(1500),
		}},
		Subtotal: decimal.NewFromInt(1500), TaxRate: decimal.NewFromInt(18), Tax: decimal.NewFromInt(270),
		Total: decimal.NewFromInt(1770), Status: entity.InvoiceStatusPendiente,
		Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), DueDate: &due,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Generación
// ─────────────────────────────────────────────────────────────────────────────

func TestGenerateInvoicePDF(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), issuer, sampleInvoice())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_SinNCF(t *testing.T) {
	inv := sampleInvoice()
	inv.NCF, inv.NCFType, inv.DueDate = "", "", nil
	out, err := pdf.NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), appbilling.Issuer{}, inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateCreditNotePDF(t *testing.T) {
	inv := sampleInvoice()
	cn := &entity.CreditNote{
		ID: "cn1", NCF: "B0400000001", InvoiceID: inv.ID, InvoiceNumber: inv.Number, InvoiceNCF: inv.NCF,
		Client: inv.Client, Reason: "Devolución parcial",
		Items:    []entity.CreditNoteItem{{LineIndex: 0, InvoiceItem: inv.Items[0]}},
		Subtotal: decimal.NewFromInt(1500), TaxRate: decimal.NewFromInt(18), Tax: decimal.NewFromInt(270),
		Total: decimal.NewFromInt(1770), Date: inv.Date,
	}
	out, err := pdf.NewMarotoPDFGenerator().GenerateCreditNotePDF(context.Background(), issuer, cn)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Formato de montos
// ─────────────────────────────────────────────────────────────────────────────

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "RD$0.00",
		"885":       "RD$885.00",
		"1770":      "RD$1,770.00",
		"1234567.5": "RD$1,234,567.50",
		"318.6":     "RD$318.60",
		"-1062.005": "-RD$1,062.01",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.FormatMoney(decimal.RequireFromString(in)), in)
	}
}
