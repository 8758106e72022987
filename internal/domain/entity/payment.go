package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodEfectivo      = "Efectivo"
	PaymentMethodTransferencia = "Transferencia"
	PaymentMethodCheque        = "Cheque"
	PaymentMethodTarjeta       = "Tarjeta"
)

// Payment abono a una factura.
type Payment struct {
	ID            string
	InvoiceID     string
	InvoiceNumber string
	Amount        decimal.Decimal
	Method        string
	Date          time.Time
	Reference     string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidPaymentMethod indica si el método es uno de los aceptados.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodEfectivo, PaymentMethodTransferencia, PaymentMethodCheque, PaymentMethodTarjeta:
		return true
	}
	return false
}
