package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerRepository define el puerto del historial (append-only).
type LedgerRepository interface {
	// Append inserta el registro; se llama solo dentro de la transacción de la mutación.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// Recent devuelve los últimos registros, del más nuevo al más viejo.
	Recent(ctx context.Context, limit int) ([]*entity.LedgerEntry, error)
	// RecentByArticle igual que Recent, filtrado por código de artículo.
	RecentByArticle(ctx context.Context, code string, limit int) ([]*entity.LedgerEntry, error)
}
