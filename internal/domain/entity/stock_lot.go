package entity

import "github.com/shopspring/decimal"

// LotKey identifica una fila de stock: artículo + depósito + lote + vencimiento.
// Todos los campos se guardan recortados (trim) y respetando mayúsculas.
// Lote y vencimiento vacíos son valores válidos y distintos entre sí.
type LotKey struct {
	Code       string
	Name       string
	Warehouse  string
	Lot        string
	Expiration string
}

// StockLot representa una fila de la tabla stock (unidad física de inventario).
// QuantityText es el valor tal cual está persistido; Quantity es su lectura normalizada.
type StockLot struct {
	LotKey
	Family       string
	QuantityText string
	Quantity     decimal.Decimal
}

// ItemSummary agrega las filas de un artículo (código, nombre, familia) para el buscador.
type ItemSummary struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Family     string          `json:"family"`
	Total      decimal.Decimal `json:"total"`
	Warehouses []string        `json:"warehouses"`
}
