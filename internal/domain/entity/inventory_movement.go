package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "ENTRADA" // entrada (compras, devoluciones, anulación de facturas)
	MovementTypeSalida  = "SALIDA"  // salida (facturación)
	MovementTypeAjuste  = "AJUSTE"  // ajuste manual de conteo
)

// InventoryMovement registro inmutable de un cambio de stock. Quantity siempre es positiva;
// la dirección la indica Type (y Direction para AJUSTE).
type InventoryMovement struct {
	ID          string
	ProductID   string
	ProductName string
	Type        string
	Direction   string // add | subtract
	Quantity    decimal.Decimal
	Reference   string // número de factura, nota de crédito o documento de entrada
	Notes       string
	Date        time.Time // fecha efectiva
	CreatedAt   time.Time
	CreatedBy   string
}
