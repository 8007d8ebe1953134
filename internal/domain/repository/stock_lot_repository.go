package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockLotRepository define el puerto sobre la tabla stock.
// Las lecturas sin lock pueden usarse con el pool; GetForUpdate, UpdateQuantity e Insert
// solo tienen sentido dentro de una transacción (ver TxRunner).
type StockLotRepository interface {
	// SearchRows devuelve hasta limit filas cuyo código es igual a query
	// o cuyo nombre contiene query (sin distinguir mayúsculas).
	SearchRows(ctx context.Context, query string, limit int) ([]entity.StockLot, error)
	// ListByItem devuelve todas las filas del par exacto (código, nombre) en todos los depósitos.
	ListByItem(ctx context.Context, code, name string) ([]entity.StockLot, error)
	// ListWarehouses devuelve los depósitos distintos presentes en la tabla.
	ListWarehouses(ctx context.Context) ([]string, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE); nil si no existe.
	GetForUpdate(ctx context.Context, key entity.LotKey) (*entity.StockLot, error)
	// UpdateQuantity persiste el texto canónico de la cantidad en una fila existente.
	UpdateQuantity(ctx context.Context, key entity.LotKey, quantityText string) error
	// Insert crea una fila nueva (destino de un movimiento).
	Insert(ctx context.Context, lot *entity.StockLot) error
}
