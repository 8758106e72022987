package dgii_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

// ─────────────────────────────────────────────────────────────────────────────
// NCF
// ─────────────────────────────────────────────────────────────────────────────

func TestFormatNCF_OchoDigitos(t *testing.T) {
	ncf, err := dgii.FormatNCF(dgii.NCFCreditoFiscal, 42)
	require.NoError(t, err)
	assert.Equal(t, "B0100000042", ncf)

	typ, seq, err := dgii.ParseNCF(ncf)
	require.NoError(t, err)
	assert.Equal(t, dgii.NCFCreditoFiscal, typ)
	assert.Equal(t, int64(42), seq)
}

func TestFormatNCF_TipoDesconocido(t *testing.T) {
	_, err := dgii.FormatNCF("B99", 1)
	assert.Error(t, err)
}

func TestFormatNCF_FueraDeRango(t *testing.T) {
	_, err := dgii.FormatNCF(dgii.NCFConsumo, 0)
	assert.Error(t, err)
	_, err = dgii.FormatNCF(dgii.NCFConsumo, dgii.MaxSequence+1)
	assert.Error(t, err)
}

func TestParseNCF_Invalidos(t *testing.T) {
	for _, in := range []string{"", "B01", "B010000004X", "X0100000001", "B0100000000"} {
		_, _, err := dgii.ParseNCF(in)
		assert.Error(t, err, in)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// RNC / cédula
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateRNC(t *testing.T) {
	assert.NoError(t, dgii.ValidateRNC("101010632"))
	assert.NoError(t, dgii.ValidateRNC("1-31-00001-2"))
	assert.NoError(t, dgii.ValidateRNC("130123454"))
	assert.Error(t, dgii.ValidateRNC("101010633"))
	assert.Error(t, dgii.ValidateRNC("1010106"))
}

func TestValidateCedula(t *testing.T) {
	assert.NoError(t, dgii.ValidateCedula("001-0000000-9"))
	assert.NoError(t, dgii.ValidateCedula("00112345673"))
	assert.Error(t, dgii.ValidateCedula("00112345674"))
}

func TestValidateTaxID_DespachaPorLongitud(t *testing.T) {
	assert.NoError(t, dgii.ValidateTaxID("101010632"))
	assert.NoError(t, dgii.ValidateTaxID("402-0012345-9"))
	assert.Error(t, dgii.ValidateTaxID("12345"))
	assert.Equal(t, "40200123459", dgii.NormalizeTaxID("402-0012345-9"))
}
