// seed_stock genera un script SQL para poblar la tabla stock a partir de la exportación
// del sistema de gestión (CSV separado por ';', codificado en Latin-1).
//
// Uso: go run ./cmd/seed_stock [ruta/stock.csv] [salida.sql]
// Por defecto lee stock.csv del directorio actual y escribe stock_seed.sql en la raíz del módulo.
// Columnas esperadas (encabezado, sin importar mayúsculas): FAMILIA, CODIGO, ARTICULO, DEPOSITO,
// LOTE, VENCIMIENTO, STOCK.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var columns = []string{"FAMILIA", "CODIGO", "ARTICULO", "DEPOSITO", "LOTE", "VENCIMIENTO", "STOCK"}

func main() {
	csvPath := "stock.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "stock_seed.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readRows(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d filas de stock\n", outPath, len(rows))
}

// readRows devuelve cada fila con las columnas en el orden de columns, recortadas.
// STOCK se normaliza con la misma regla que el motor ("1,234.5" → "1234.5", "10,5" → "10.5", ilegible → "0").
func readRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("falta la columna %s", col)
		}
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			if j := index[col]; j < len(rec) {
				row[i] = strings.TrimSpace(rec[j])
			}
		}
		if row[1] == "" && row[2] == "" {
			continue
		}
		row[6] = inventory.FormatQuantity(inventory.ParseQuantity(row[6]))
		rows = append(rows, row)
	}
	return rows, nil
}

func writeSQL(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, "-- Stock inicial generado por cmd/seed_stock\n"+
		"-- Las filas ya existentes (misma identidad de lote) no se modifican.\n\n"); err != nil {
		return err
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
	}
	cols := strings.Join(quoted, ", ")
	for _, row := range rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = "'" + escapeSQL(v) + "'"
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO stock (%s) VALUES (%s) ON CONFLICT DO NOTHING;\n",
			cols, strings.Join(values, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
