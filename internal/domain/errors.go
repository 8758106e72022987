package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Secuencias NCF (DGII)
	ErrNCFCollision      = errors.New("la secuencia NCF colisiona con comprobantes ya emitidos")
	ErrNCFRangeExhausted = errors.New("rango de NCF autorizado agotado")
	ErrNCFExpired        = errors.New("autorización de NCF vencida")

	// Infraestructura
	ErrTransactionsUnsupported = errors.New("el almacenamiento no soporta transacciones multi-documento")
	ErrRetryable               = errors.New("almacenamiento no disponible temporalmente, intente de nuevo")
)

// ValidationError error de validación de entrada con el campo afectado.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indica qué entidad no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ProductNotFoundError producto referenciado en una línea que ya no existe.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError nombra el producto, lo disponible y lo solicitado.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		name, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NCFCollisionError valor de secuencia por debajo del máximo NCF ya emitido.
type NCFCollisionError struct {
	Type      string
	Requested int64
	MaxIssued int64
}

func (e *NCFCollisionError) Error() string {
	return fmt.Sprintf("secuencia %s: el valor %d es menor que el último NCF emitido (%d)",
		e.Type, e.Requested, e.MaxIssued)
}

func (e *NCFCollisionError) Unwrap() error { return ErrNCFCollision }
