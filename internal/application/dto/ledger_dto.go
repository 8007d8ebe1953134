package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerEntryResponse registro del historial de bajas y movimientos.
type LedgerEntryResponse struct {
	ID                   int64           `json:"id"`
	OperationID          string          `json:"operation_id,omitempty"`
	User                 string          `json:"user"`
	Date                 time.Time       `json:"date"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Quantity             decimal.Decimal `json:"quantity"`
	RecordType           string          `json:"record_type"`
	Reason               string          `json:"reason,omitempty"`
	Warehouse            string          `json:"warehouse"`
	OriginWarehouse      string          `json:"origin_warehouse"`
	DestinationWarehouse *string         `json:"destination_warehouse"`
	Lot                  string          `json:"lot"`
	Expiration           string          `json:"expiration"`
	QuantityBeforeLot    decimal.Decimal `json:"quantity_before_lot"`
	QuantityAfterLot     decimal.Decimal `json:"quantity_after_lot"`
	TotalArticle         decimal.Decimal `json:"total_article"`
	TotalWarehouse       decimal.Decimal `json:"total_warehouse"`
	TotalMainWarehouse   decimal.Decimal `json:"total_main_warehouse"`
	CreatedAt            time.Time       `json:"created_at"`
}

// LedgerListResponse respuesta de GET /api/ledger.
type LedgerListResponse struct {
	Count   int                   `json:"count"`
	Entries []LedgerEntryResponse `json:"entries"`
}

// ToLedgerEntryResponse mapea la entidad al DTO.
func ToLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                   e.ID,
		OperationID:          e.OperationID,
		User:                 e.User,
		Date:                 e.Date,
		Code:                 e.Code,
		Name:                 e.Name,
		Quantity:             e.Quantity,
		RecordType:           e.RecordType,
		Reason:               e.Reason,
		Warehouse:            e.Warehouse,
		OriginWarehouse:      e.OriginWarehouse,
		DestinationWarehouse: e.DestinationWarehouse,
		Lot:                  e.Lot,
		Expiration:           e.Expiration,
		QuantityBeforeLot:    e.QuantityBeforeLot,
		QuantityAfterLot:     e.QuantityAfterLot,
		TotalArticle:         e.TotalArticle,
		TotalWarehouse:       e.TotalWarehouse,
		TotalMainWarehouse:   e.TotalMainWarehouse,
		CreatedAt:            e.CreatedAt,
	}
}

// ToLedgerEntryResponses mapea una lista (nunca nil).
func ToLedgerEntryResponses(entries []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToLedgerEntryResponse(e))
	}
	return out
}
