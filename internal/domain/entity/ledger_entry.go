package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de registro del historial. Se persisten con los valores que ya existen en historial_bajas.
const (
	RecordTypeDeduction = "BAJA"       // baja de stock (consumo, pérdida)
	RecordTypeTransfer  = "MOVIMIENTO" // traslado entre depósitos
)

// LedgerEntry es un registro inmutable del historial, uno por mutación exitosa.
// DestinationWarehouse es nil en las bajas.
type LedgerEntry struct {
	ID                   int64
	OperationID          string
	User                 string
	Date                 time.Time
	Code                 string
	Name                 string
	Quantity             decimal.Decimal // siempre positiva
	RecordType           string
	Reason               string
	Warehouse            string
	OriginWarehouse      string
	DestinationWarehouse *string
	Lot                  string
	Expiration           string
	QuantityBeforeLot    decimal.Decimal
	QuantityAfterLot     decimal.Decimal
	TotalArticle         decimal.Decimal
	TotalWarehouse       decimal.Decimal
	TotalMainWarehouse   decimal.Decimal
	CreatedAt            time.Time
}

// IsTransfer indica si el registro corresponde a un movimiento.
func (e *LedgerEntry) IsTransfer() bool {
	return e.RecordType == RecordTypeTransfer
}
