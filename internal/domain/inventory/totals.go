package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DefaultMainWarehouse es el marcador del depósito principal (casa central).
const DefaultMainWarehouse = "casa central"

// Totals son los agregados que se fotografían en cada registro del historial.
type Totals struct {
	Article       decimal.Decimal
	Warehouse     decimal.Decimal
	MainWarehouse decimal.Decimal
}

// ComputeTotals suma las filas de un artículo: total general, total del depósito afectado
// (coincidencia exacta tras trim) y total de los depósitos cuyo nombre contiene mainMarker.
func ComputeTotals(rows []entity.StockLot, warehouse, mainMarker string) Totals {
	if mainMarker == "" {
		mainMarker = DefaultMainWarehouse
	}
	wh := strings.TrimSpace(warehouse)
	t := Totals{Article: decimal.Zero, Warehouse: decimal.Zero, MainWarehouse: decimal.Zero}
	for _, r := range rows {
		t.Article = t.Article.Add(r.Quantity)
		dep := strings.TrimSpace(r.Warehouse)
		if dep == wh {
			t.Warehouse = t.Warehouse.Add(r.Quantity)
		}
		if ContainsName(dep, mainMarker) {
			t.MainWarehouse = t.MainWarehouse.Add(r.Quantity)
		}
	}
	return t
}

// IsMainWarehouse indica si el depósito es (o pertenece a) casa central.
func IsMainWarehouse(warehouse, mainMarker string) bool {
	if mainMarker == "" {
		mainMarker = DefaultMainWarehouse
	}
	return ContainsName(warehouse, mainMarker)
}
