package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemSearchResponse respuesta de GET /api/stock/items.
type ItemSearchResponse struct {
	Query string               `json:"query"`
	Items []entity.ItemSummary `json:"items"`
}

// StockLotResponse una fila de stock. Index es la posición entre los candidatos del depósito
// (sólo en la lista de candidatos; 0 es el recomendado).
type StockLotResponse struct {
	Index        *int            `json:"index,omitempty"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Family       string          `json:"family"`
	Warehouse    string          `json:"warehouse"`
	Lot          string          `json:"lot"`
	Expiration   string          `json:"expiration"`
	Quantity     decimal.Decimal `json:"quantity"`
	QuantityText string          `json:"quantity_text"`
}

// LotsResponse respuesta de GET /api/stock/lots. Candidates y Recommended sólo si se pidió depósito.
type LotsResponse struct {
	Lots        []StockLotResponse `json:"lots"`
	Candidates  []StockLotResponse `json:"candidates,omitempty"`
	Recommended *StockLotResponse  `json:"recommended,omitempty"`
}

// WarehousesResponse respuesta de GET /api/stock/warehouses.
type WarehousesResponse struct {
	Warehouses []string `json:"warehouses"`
}

// DestinationsResponse depósitos destino posibles y el sugerido según la familia.
type DestinationsResponse struct {
	Options   []string `json:"options"`
	Suggested string   `json:"suggested"`
}

// LotSelection campos comunes para elegir lote: Lot+Expiration, LotIndex o ninguno (FIFO/FEFO).
type LotSelection struct {
	Lot             *string `json:"lot,omitempty"`
	Expiration      string  `json:"expiration,omitempty"`
	LotIndex        *int    `json:"lot_index,omitempty"`
	ConfirmOverride bool    `json:"confirm_override"`
}

// DeductionRequest body para POST /api/stock/deductions.
type DeductionRequest struct {
	LotSelection
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Warehouse string          `json:"warehouse"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"`
}

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	LotSelection
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	OriginWarehouse      string          `json:"origin_warehouse"`
	DestinationWarehouse string          `json:"destination_warehouse"`
	Quantity             decimal.Decimal `json:"quantity"`
	Reason               string          `json:"reason,omitempty"`
}

// MutationResponse resultado de una baja o movimiento confirmado.
type MutationResponse struct {
	OperationID               string               `json:"operation_id"`
	RecordType                string               `json:"record_type"`
	Lot                       string               `json:"lot"`
	Expiration                string               `json:"expiration"`
	LotQuantityBefore         decimal.Decimal      `json:"lot_quantity_before"`
	LotQuantityAfter          decimal.Decimal      `json:"lot_quantity_after"`
	DestinationQuantityBefore *decimal.Decimal     `json:"destination_quantity_before,omitempty"`
	DestinationQuantityAfter  *decimal.Decimal     `json:"destination_quantity_after,omitempty"`
	DestinationCreated        bool                 `json:"destination_created,omitempty"`
	TotalArticle              decimal.Decimal      `json:"total_article"`
	TotalWarehouse            decimal.Decimal      `json:"total_warehouse"`
	TotalMainWarehouse        decimal.Decimal      `json:"total_main_warehouse"`
	Entry                     *LedgerEntryResponse `json:"entry,omitempty"`
}

// ToStockLotResponse convierte una fila; index < 0 omite el índice.
func ToStockLotResponse(l entity.StockLot, index int) StockLotResponse {
	r := StockLotResponse{
		Code:         l.Code,
		Name:         l.Name,
		Family:       l.Family,
		Warehouse:    l.Warehouse,
		Lot:          l.Lot,
		Expiration:   l.Expiration,
		Quantity:     l.Quantity,
		QuantityText: l.QuantityText,
	}
	if index >= 0 {
		i := index
		r.Index = &i
	}
	return r
}
