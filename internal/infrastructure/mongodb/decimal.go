package mongodb

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dec128 convierte a Decimal128 para que $inc y las comparaciones se hagan en el servidor sin
// pérdida de precisión.
func dec128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// Fuera del rango de Decimal128 (34 dígitos); no ocurre con montos ni cantidades reales.
		v, _ = primitive.ParseDecimal128(d.Round(6).String())
	}
	return v
}

func fromDec128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
