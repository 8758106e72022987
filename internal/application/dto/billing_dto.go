package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientSnapshotResponse copia del cliente guardada en el comprobante.
type ClientSnapshotResponse struct {
	Name    string `json:"name"`
	RNC     string `json:"rnc,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// Price de cada línea es opcional: si no viene se usa el precio del catálogo.
type CreateInvoiceRequest struct {
	ClientID string               `json:"client_id" validate:"required"`
	NCFType  string               `json:"ncf_type,omitempty" validate:"omitempty,oneof=B01 B02 B14 B15"`
	Items    []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount *decimal.Decimal     `json:"discount,omitempty"` // monto de descuento global
	TaxRate  *decimal.Decimal     `json:"tax_rate,omitempty"` // ITBIS %, por defecto el configurado
	Date     string               `json:"date,omitempty"`     // YYYY-MM-DD o RFC3339
	DueDate  string               `json:"due_date,omitempty"`
	Notes    string               `json:"notes,omitempty" validate:"max=1000"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"` // porcentaje 0-100
}

// InvoiceItemResponse línea de factura en respuestas.
type InvoiceItemResponse struct {
	Index     int             `json:"index"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceResponse factura para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                 `json:"id"`
	Number         string                 `json:"number"`
	NCF            string                 `json:"ncf,omitempty"`
	NCFType        string                 `json:"ncf_type,omitempty"`
	ClientID       string                 `json:"client_id"`
	Client         ClientSnapshotResponse `json:"client"`
	Items          []InvoiceItemResponse  `json:"items"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	Discount       decimal.Decimal        `json:"discount"`
	TaxRate        decimal.Decimal        `json:"tax_rate"`
	Tax            decimal.Decimal        `json:"tax"`
	Total          decimal.Decimal        `json:"total"`
	PaidAmount     decimal.Decimal        `json:"paid_amount"`
	CreditedAmount decimal.Decimal        `json:"credited_amount"`
	Balance        decimal.Decimal        `json:"balance"`
	Status         string                 `json:"status"`
	PaymentIDs     []string               `json:"payment_ids"`
	CreditNoteIDs  []string               `json:"credit_note_ids"`
	Date           time.Time              `json:"date"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// InvoiceListRequest filtros de GET /api/invoices.
type InvoiceListRequest struct {
	ClientID string `query:"client_id"`
	Status   string `query:"status" validate:"omitempty,oneof=Pendiente Parcial Pagada Vencida Anulada 'Nota de Crédito Parcial'"`
	From     string `query:"from"` // YYYY-MM-DD
	To       string `query:"to"`
	PageRequest
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// OverdueSweepResponse resultado del barrido de vencidas.
type OverdueSweepResponse struct {
	Updated    int      `json:"updated"`
	InvoiceIDs []string `json:"invoice_ids"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Notas de crédito
// ─────────────────────────────────────────────────────────────────────────────

// CreateCreditNoteRequest body para POST /api/credit-notes.
type CreateCreditNoteRequest struct {
	InvoiceID string                  `json:"invoice_id" validate:"required"`
	Reason    string                  `json:"reason" validate:"required,max=500"`
	Items     []CreditNoteItemRequest `json:"items" validate:"required,min=1,dive"`
	Date      string                  `json:"date,omitempty"`
	Notes     string                  `json:"notes,omitempty" validate:"max=1000"`
}

// CreditNoteItemRequest línea acreditada; LineIndex es la posición de la línea en la factura.
type CreditNoteItemRequest struct {
	LineIndex *int            `json:"line_index" validate:"required,min=0"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreditNoteItemResponse línea de la nota de crédito.
type CreditNoteItemResponse struct {
	LineIndex int             `json:"line_index"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

// CreditNoteResponse nota de crédito emitida.
type CreditNoteResponse struct {
	ID            string                   `json:"id"`
	NCF           string                   `json:"ncf"`
	InvoiceID     string                   `json:"invoice_id"`
	InvoiceNumber string                   `json:"invoice_number"`
	InvoiceNCF    string                   `json:"invoice_ncf,omitempty"`
	ClientID      string                   `json:"client_id"`
	Client        ClientSnapshotResponse   `json:"client"`
	Reason        string                   `json:"reason"`
	Items         []CreditNoteItemResponse `json:"items"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Discount      decimal.Decimal          `json:"discount"`
	TaxRate       decimal.Decimal          `json:"tax_rate"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total"`
	InvoiceStatus string                   `json:"invoice_status,omitempty"`
	Notes         string                   `json:"notes,omitempty"`
	Date          time.Time                `json:"date"`
	CreatedBy     string                   `json:"created_by,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Pagos
// ─────────────────────────────────────────────────────────────────────────────

// PaymentRequest body para registrar o editar un pago.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=Efectivo Transferencia Cheque Tarjeta"`
	Date      string          `json:"date,omitempty"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
	Notes     string          `json:"notes,omitempty" validate:"max=500"`
}

// PaymentResponse pago con el estado resultante de la factura.
type PaymentResponse struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Date          time.Time       `json:"date"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	InvoiceStatus string          `json:"invoice_status,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Clientes
// ─────────────────────────────────────────────────────────────────────────────

// ClientRequest body para POST /api/clients y PUT /api/clients/:id.
type ClientRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=200"`
	RNC     string `json:"rnc,omitempty"`
	Address string `json:"address,omitempty" validate:"max=300"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RNC       string    `json:"rnc,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Secuencias NCF
// ─────────────────────────────────────────────────────────────────────────────

// SetSequenceRequest body para PUT /api/ncf/sequences/:type. Value es el último número usado.
type SetSequenceRequest struct {
	Value     int64  `json:"value" validate:"min=0"`
	RangeEnd  int64  `json:"range_end" validate:"min=0"`
	ExpiresAt string `json:"expires_at,omitempty"` // YYYY-MM-DD
}

// SequenceResponse estado de un contador.
type SequenceResponse struct {
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	Current     int64      `json:"current"`
	NextNCF     string     `json:"next_ncf,omitempty"`
	RangeEnd    int64      `json:"range_end"`
	Remaining   *int64     `json:"remaining,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
