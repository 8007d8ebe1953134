package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows_NormalizaCantidadYOrdenColumnas(t *testing.T) {
	in := "CODIGO;ARTICULO;FAMILIA;DEPOSITO;LOTE;VENCIMIENTO;STOCK\n" +
		"1001; Reactivo Glucosa ;G;Casa Central;L1;2025-01-01;1,234.5\n" +
		";;;;;;\n" +
		"1002;Guantes;LP;Limpieza;;;abc\n"
	rows, err := readRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"G", "1001", "Reactivo Glucosa", "Casa Central", "L1", "2025-01-01", "1234.5"}, rows[0])
	assert.Equal(t, "0", rows[1][6], "cantidad ilegible se guarda como 0")
}

func TestReadRows_FaltaColumna(t *testing.T) {
	_, err := readRows(strings.NewReader("CODIGO;ARTICULO\n1;x\n"))
	assert.ErrorContains(t, err, "FAMILIA")
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, [][]string{{"G", "1", "Agua d'Oro", "W", "", "", "2"}}))
	assert.Contains(t, buf.String(), `'Agua d''Oro'`)
	assert.Contains(t, buf.String(), "ON CONFLICT DO NOTHING;")
}
