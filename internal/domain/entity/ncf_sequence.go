package entity

import "time"

// NCFSequence contador por tipo de comprobante fiscal. Current es el último número asignado;
// el siguiente es Current+1. Nunca retrocede por debajo de un número ya emitido.
type NCFSequence struct {
	Type      string
	Current   int64
	RangeEnd  int64      // último número autorizado por la DGII (0 = sin límite)
	ExpiresAt *time.Time // vencimiento de la autorización (nil = sin vencimiento)
	UpdatedAt time.Time
}
