package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// Columnas de la tabla stock heredada (nombres en mayúsculas, todo texto, valores con espacios).
const stockColumns = `
	TRIM(COALESCE("FAMILIA", '')),
	TRIM(COALESCE("CODIGO", '')),
	TRIM(COALESCE("ARTICULO", '')),
	TRIM(COALESCE("DEPOSITO", '')),
	TRIM(COALESCE("LOTE", '')),
	TRIM(COALESCE("VENCIMIENTO", '')),
	COALESCE("STOCK", '')`

// Identidad de un lote comparando valores recortados; lote/vencimiento NULL equivalen a ''.
const lotKeyWhere = `
	TRIM(COALESCE("CODIGO", '')) = $1
	AND TRIM(COALESCE("ARTICULO", '')) = $2
	AND TRIM(COALESCE("DEPOSITO", '')) = $3
	AND TRIM(COALESCE("LOTE", '')) = $4
	AND TRIM(COALESCE("VENCIMIENTO", '')) = $5`

// StockLotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

// SearchRows filas cuyo código es igual a query o cuyo artículo contiene query (sin mayúsculas).
func (r *StockLotRepo) SearchRows(ctx context.Context, query string, limit int) ([]entity.StockLot, error) {
	sql := `SELECT ` + stockColumns + `
		FROM stock
		WHERE TRIM(COALESCE("CODIGO", '')) = $1
		   OR LOWER(TRIM(COALESCE("ARTICULO", ''))) LIKE '%' || LOWER($2) || '%' ESCAPE '\'
		LIMIT $3`
	rows, err := r.q.Query(ctx, sql, query, escapeLike(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search stock: %w", err)
	}
	return scanStockLots(rows)
}

// ListByItem todas las filas del par (código, artículo) en todos los depósitos.
func (r *StockLotRepo) ListByItem(ctx context.Context, code, name string) ([]entity.StockLot, error) {
	sql := `SELECT ` + stockColumns + `
		FROM stock
		WHERE TRIM(COALESCE("CODIGO", '')) = $1 AND TRIM(COALESCE("ARTICULO", '')) = $2`
	rows, err := r.q.Query(ctx, sql, code, name)
	if err != nil {
		return nil, fmt.Errorf("list stock by item: %w", err)
	}
	return scanStockLots(rows)
}

// ListWarehouses depósitos distintos (no vacíos), ordenados.
func (r *StockLotRepo) ListWarehouses(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT TRIM("DEPOSITO")
		FROM stock
		WHERE TRIM(COALESCE("DEPOSITO", '')) <> ''
		ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var wh string
		if err := rows.Scan(&wh); err != nil {
			return nil, err
		}
		out = append(out, wh)
	}
	return out, rows.Err()
}

// GetForUpdate obtiene la fila del lote y la bloquea (SELECT FOR UPDATE). Devuelve nil si no existe.
func (r *StockLotRepo) GetForUpdate(ctx context.Context, key entity.LotKey) (*entity.StockLot, error) {
	sql := `SELECT ` + stockColumns + `
		FROM stock
		WHERE ` + lotKeyWhere + `
		LIMIT 1
		FOR UPDATE`
	var l entity.StockLot
	err := r.q.QueryRow(ctx, sql, keyArgs(key)...).Scan(
		&l.Family, &l.Code, &l.Name, &l.Warehouse, &l.Lot, &l.Expiration, &l.QuantityText,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	l.Quantity = inventory.ParseQuantity(l.QuantityText)
	return &l, nil
}

// UpdateQuantity reescribe STOCK de la fila (ya bloqueada por GetForUpdate).
func (r *StockLotRepo) UpdateQuantity(ctx context.Context, key entity.LotKey, quantityText string) error {
	args := append(keyArgs(key), quantityText)
	tag, err := r.q.Exec(ctx, `UPDATE stock SET "STOCK" = $6 WHERE `+lotKeyWhere, args...)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

// Insert crea la fila destino de un movimiento. Si otra transacción la insertó antes
// (índice único sobre la identidad recortada) la operación se aborta para reintentar.
func (r *StockLotRepo) Insert(ctx context.Context, lot *entity.StockLot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock ("FAMILIA", "CODIGO", "ARTICULO", "DEPOSITO", "LOTE", "VENCIMIENTO", "STOCK")
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		lot.Family, lot.Code, lot.Name, lot.Warehouse, lot.Lot, lot.Expiration, lot.QuantityText,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AbortedError{Cause: err}
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

func keyArgs(key entity.LotKey) []any {
	return []any{
		strings.TrimSpace(key.Code),
		strings.TrimSpace(key.Name),
		strings.TrimSpace(key.Warehouse),
		strings.TrimSpace(key.Lot),
		strings.TrimSpace(key.Expiration),
	}
}

func scanStockLots(rows pgx.Rows) ([]entity.StockLot, error) {
	defer rows.Close()
	var out []entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.Family, &l.Code, &l.Name, &l.Warehouse, &l.Lot, &l.Expiration, &l.QuantityText); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		l.Quantity = inventory.ParseQuantity(l.QuantityText)
		out = append(out, l)
	}
	return out, rows.Err()
}

// escapeLike escapa los comodines de LIKE para buscar el texto literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
