// Package dgii contiene catálogos y validaciones de la Dirección General de Impuestos Internos
// (República Dominicana): tipos de NCF, formato de comprobantes y dígitos verificadores de RNC/cédula.
package dgii

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Tipos de Número de Comprobante Fiscal (Norma General 06-2018)
// =============================================================================

const (
	NCFCreditoFiscal       = "B01" // Factura de crédito fiscal
	NCFConsumo             = "B02" // Factura de consumo
	NCFNotaDebito          = "B03" // Nota de débito
	NCFNotaCredito         = "B04" // Nota de crédito
	NCFRegimenesEspeciales = "B14" // Regímenes especiales
	NCFGubernamental       = "B15" // Comprobante gubernamental
)

// ncfSequenceDigits longitud del secuencial después del prefijo de tipo.
const ncfSequenceDigits = 8

// MaxSequence último secuencial representable con 8 dígitos.
const MaxSequence int64 = 99_999_999

// NCFTypes catálogo de tipos aceptados con su descripción.
var NCFTypes = map[string]string{
	NCFCreditoFiscal:       "Factura de Crédito Fiscal",
	NCFConsumo:             "Factura de Consumo",
	NCFNotaDebito:          "Nota de Débito",
	NCFNotaCredito:         "Nota de Crédito",
	NCFRegimenesEspeciales: "Regímenes Especiales",
	NCFGubernamental:       "Gubernamental",
}

// InvoiceNCFTypes tipos que puede llevar una factura de venta.
var InvoiceNCFTypes = map[string]bool{
	NCFCreditoFiscal:       true,
	NCFConsumo:             true,
	NCFRegimenesEspeciales: true,
	NCFGubernamental:       true,
}

// ValidNCFType indica si el tipo está en el catálogo.
func ValidNCFType(t string) bool {
	_, ok := NCFTypes[t]
	return ok
}

// FormatNCF arma el comprobante: tipo + secuencial de 8 dígitos (B0100000042).
func FormatNCF(ncfType string, seq int64) (string, error) {
	if !ValidNCFType(ncfType) {
		return "", fmt.Errorf("dgii: tipo de NCF desconocido %q", ncfType)
	}
	if seq <= 0 || seq > MaxSequence {
		return "", fmt.Errorf("dgii: secuencial %d fuera de rango", seq)
	}
	return fmt.Sprintf("%s%0*d", ncfType, ncfSequenceDigits, seq), nil
}

// ParseNCF separa tipo y secuencial de un NCF de 11 caracteres.
func ParseNCF(ncf string) (ncfType string, seq int64, err error) {
	ncf = strings.ToUpper(strings.TrimSpace(ncf))
	if len(ncf) != 3+ncfSequenceDigits {
		return "", 0, fmt.Errorf("dgii: NCF %q debe tener %d caracteres", ncf, 3+ncfSequenceDigits)
	}
	ncfType = ncf[:3]
	if !ValidNCFType(ncfType) {
		return "", 0, fmt.Errorf("dgii: tipo de NCF desconocido %q", ncfType)
	}
	seq, err = strconv.ParseInt(ncf[3:], 10, 64)
	if err != nil || seq <= 0 {
		return "", 0, fmt.Errorf("dgii: secuencial inválido en %q", ncf)
	}
	return ncfType, seq, nil
}
