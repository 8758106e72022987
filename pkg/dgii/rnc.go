package dgii

import (
	"fmt"
	"unicode"
)

// pesos del dígito verificador del RNC (8 primeros dígitos, módulo 11).
var rncWeights = [8]int{7, 9, 8, 6, 5, 4, 3, 2}

// ValidateTaxID valida un RNC (9 dígitos) o una cédula (11 dígitos), con o sin guiones.
func ValidateTaxID(taxID string) error {
	digits := extractDigits(taxID)
	switch len(digits) {
	case 9:
		return ValidateRNC(taxID)
	case 11:
		return ValidateCedula(taxID)
	default:
		return fmt.Errorf("dgii: RNC o cédula debe tener 9 u 11 dígitos, se encontraron %d", len(digits))
	}
}

// ValidateRNC valida el dígito verificador de un RNC de persona jurídica ("1-01-01063-2" o "101010632").
func ValidateRNC(rnc string) error {
	digits := extractDigits(rnc)
	if len(digits) != 9 {
		return fmt.Errorf("dgii: RNC debe tener 9 dígitos, se encontraron %d", len(digits))
	}
	expected := rncCheckDigit(digits[:8])
	if digits[8] != expected {
		return fmt.Errorf("dgii: dígito verificador del RNC inválido: esperado %c, recibido %c", expected, digits[8])
	}
	return nil
}

func rncCheckDigit(base []byte) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * rncWeights[i]
	}
	switch r := sum % 11; r {
	case 0:
		return '2'
	case 1:
		return '1'
	default:
		return byte('0' + (11 - r))
	}
}

// ValidateCedula valida el dígito verificador (Luhn) de una cédula de identidad ("001-0000000-9").
func ValidateCedula(cedula string) error {
	digits := extractDigits(cedula)
	if len(digits) != 11 {
		return fmt.Errorf("dgii: cédula debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:10] {
		p := int(d - '0')
		if i%2 == 1 {
			p *= 2
			if p > 9 {
				p -= 9
			}
		}
		sum += p
	}
	expected := byte('0' + (10-sum%10)%10)
	if digits[10] != expected {
		return fmt.Errorf("dgii: dígito verificador de la cédula inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// NormalizeTaxID deja solo los dígitos.
func NormalizeTaxID(s string) string {
	return string(extractDigits(s))
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
