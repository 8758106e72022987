package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseRanges_ConEncabezado(t *testing.T) {
	raw := []byte("tipo,ultimo_usado,fin_rango,vencimiento\nB01,0,500,2027-12-31\nb02, 120 ,1000,\n# comentario\n")

	rows, err := parseRanges(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "B01", rows[0].typ)
	assert.Equal(t, int64(500), rows[0].req.RangeEnd)
	assert.Equal(t, "2027-12-31", rows[0].req.ExpiresAt)
	assert.Equal(t, "B02", rows[1].typ)
	assert.Equal(t, int64(120), rows[1].req.Value)
	assert.Equal(t, "", rows[1].req.ExpiresAt)
}

func TestParseRanges_Latin1(t *testing.T) {
	utf := "tipo,último,fin\nB14,5,50\n"
	latin, err := charmap.ISO8859_1.NewEncoder().String(utf)
	require.NoError(t, err)

	rows, err := parseRanges([]byte(latin))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].req.Value)
}

func TestParseRanges_NumeroInvalido(t *testing.T) {
	_, err := parseRanges([]byte("B01,abc,10\n"))
	assert.Error(t, err)
}
