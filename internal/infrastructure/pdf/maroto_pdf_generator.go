// Package pdf genera la representación impresa de facturas y notas de crédito con NCF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RNC  │  Tipo + NCF + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel                                     │
//	│  CLIENTE: Nombre + RNC/Cédula + contacto                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | Precio | Desc% | Importe        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / ITBIS / TOTAL               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: notas + leyenda                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appbilling "github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 45, Blue: 98}
	colorAccent  = &props.Color{Red: 206, Green: 17, Blue: 38}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Coma de miles y punto decimal, como en los comprobantes de la DGII.
var printer = message.NewPrinter(language.AmericanEnglish)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// document datos comunes a factura y nota de crédito.
type document struct {
	title     string
	ncf       string
	number    string
	reference string // NCF modificado (nota de crédito)
	date      string
	dueDate   string
	status    string
	client    entity.ClientSnapshot
	items     []entity.InvoiceItem
	subtotal  decimal.Decimal
	discount  decimal.Decimal
	taxRate   decimal.Decimal
	tax       decimal.Decimal
	total     decimal.Decimal
	paid      *decimal.Decimal
	notes     string
}

// GenerateInvoicePDF genera el PDF de la factura y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, issuer appbilling.Issuer, inv *entity.Invoice) ([]byte, error) {
	title := "FACTURA"
	if name, ok := dgii.NCFTypes[inv.NCFType]; ok && inv.NCF != "" {
		title = strings.ToUpper(name)
	}
	doc := document{
		title:    title,
		ncf:      inv.NCF,
		number:   inv.Number,
		date:     inv.Date.Format("02/01/2006"),
		status:   inv.Status,
		client:   inv.Client,
		items:    inv.Items,
		subtotal: inv.Subtotal,
		discount: inv.Discount,
		taxRate:  inv.TaxRate,
		tax:      inv.Tax,
		total:    inv.Total,
		notes:    inv.Notes,
	}
	if inv.DueDate != nil {
		doc.dueDate = inv.DueDate.Format("02/01/2006")
	}
	paid := inv.PaidAmount
	doc.paid = &paid
	return g.render(issuer, doc)
}

// GenerateCreditNotePDF genera el PDF de la nota de crédito.
func (g *MarotoPDFGenerator) GenerateCreditNotePDF(_ context.Context, issuer appbilling.Issuer, cn *entity.CreditNote) ([]byte, error) {
	items := make([]entity.InvoiceItem, len(cn.Items))
	for i, it := range cn.Items {
		items[i] = it.InvoiceItem
	}
	notes := cn.Reason
	if cn.Notes != "" {
		notes += "\n" + cn.Notes
	}
	return g.render(issuer, document{
		title:     "NOTA DE CRÉDITO",
		ncf:       cn.NCF,
		number:    cn.InvoiceNumber,
		reference: cn.InvoiceNCF,
		date:      cn.Date.Format("02/01/2006"),
		client:    cn.Client,
		items:     items,
		subtotal:  cn.Subtotal,
		discount:  cn.Discount,
		taxRate:   cn.TaxRate,
		tax:       cn.Tax,
		total:     cn.Total,
		notes:     notes,
	})
}

func (g *MarotoPDFGenerator) render(issuer appbilling.Issuer, doc document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.title+" "+doc.ncf, true).
		WithAuthor(issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(issuer, doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(issuer))
	m.AddRows(clientRow(doc.client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + RNC (izq) y tipo de comprobante + NCF + fecha (der).
func headerRow(issuer appbilling.Issuer, doc document) core.Row {
	right := []core.Component{
		text.New(doc.title, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorAccent, Top: 1,
		}),
		text.New(nonEmpty(doc.ncf, doc.number), props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
		}),
		text.New("Fecha: "+doc.date, props.Text{
			Size: 8, Align: align.Right, Top: 13, Color: colorGray,
		}),
	}
	if doc.ncf != "" && doc.number != "" {
		label := "Factura: "
		if doc.reference != "" {
			label = "NCF modificado: "
		}
		right = append(right, text.New(label+nonEmpty(doc.reference, doc.number), props.Text{
			Size: 8, Align: align.Right, Top: 17, Color: colorGray,
		}))
	}

	return row.New(22).Add(
		col.New(7).Add(
			text.New(nonEmpty(issuer.Name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RNC: "+nonEmpty(issuer.RNC, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(right...),
	)
}

func issuerRow(issuer appbilling.Issuer) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s",
				nonEmpty(issuer.Address, "-"),
				nonEmpty(issuer.Phone, "-"),
			), props.Text{Size: 8, Top: 1, Color: colorGray}),
		),
	)
}

func clientRow(c entity.ClientSnapshot) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RNC/Cédula: %s   |   Tel: %s   |   Email: %s   |   Dirección: %s",
				nonEmpty(c.RNC, "-"),
				nonEmpty(c.Phone, "-"),
				nonEmpty(c.Email, "-"),
				nonEmpty(c.Address, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio", 2, align.Right),
		h("Desc%", 1, align.Center),
		h("Importe", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableDetailRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				it.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				FormatMoney(it.Price),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				it.Discount.String()+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				FormatMoney(it.Total),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(doc document) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, top float64, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: right, Top: top,
		})
	}

	labels := []core.Component{
		label("Subtotal:", 0),
		label("Descuento:", 5),
		label("ITBIS ("+doc.taxRate.String()+"%):", 10),
		grand("TOTAL:", 15, 2),
	}
	values := []core.Component{
		value(FormatMoney(doc.subtotal), 0),
		value(FormatMoney(doc.discount), 5),
		value(FormatMoney(doc.tax), 10),
		grand(FormatMoney(doc.total), 15, 1),
	}
	height := 22.0
	if doc.paid != nil {
		labels = append(labels, label("Pagado:", 21), label("Estado:", 26))
		values = append(values, value(FormatMoney(*doc.paid), 21), value(doc.status, 26))
		height = 33
	}
	return row.New(height).Add(
		col.New(5),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
		col.New(1),
	)
}

func footerRows(doc document) []core.Row {
	var rows []core.Row
	if doc.dueDate != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Vence: "+doc.dueDate, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}),
		)))
	}
	if doc.notes != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New(doc.notes, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Comprobante fiscal emitido conforme a la Norma General 06-2018 de la DGII. "+
				"Conserve este documento como soporte fiscal.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatMoney formatea en pesos dominicanos: RD$1,234.56.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return "RD$" + fixed
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "RD$" + printer.Sprintf("%d", n) + "." + frac
}
