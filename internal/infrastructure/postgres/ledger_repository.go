package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo historial_bajas sobre PostgreSQL (usable con pool o tx). Sólo inserta y lee.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el registro dentro de la transacción del llamador y completa ID.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO historial_bajas (
			usuario, fecha, hora, codigo_interno, articulo, cantidad, motivo,
			deposito, lote, vencimiento,
			stock_antes_lote, stock_despues_lote, stock_total_articulo, stock_total_deposito, stock_casa_central,
			tipo_registro, deposito_origen, deposito_destino, operacion_id, created_at
		) VALUES (
			$1, $2::text::date, $3::text::time, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20
		)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.User, e.Date.Format("2006-01-02"), e.Date.Format("15:04:05"), e.Code, e.Name, e.Quantity, e.Reason,
		e.Warehouse, e.Lot, e.Expiration,
		e.QuantityBeforeLot, e.QuantityAfterLot, e.TotalArticle, e.TotalWarehouse, e.TotalMainWarehouse,
		e.RecordType, e.OriginWarehouse, e.DestinationWarehouse, e.OperationID, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// Las filas anteriores a las columnas nuevas tienen NULL: se leen como '' o 0 y tipo BAJA.
const ledgerSelect = `
	SELECT id,
		COALESCE(operacion_id, ''),
		COALESCE(usuario, ''),
		COALESCE(fecha + hora, fecha::timestamp, created_at, LOCALTIMESTAMP),
		COALESCE(codigo_interno, ''),
		COALESCE(articulo, ''),
		COALESCE(cantidad, 0),
		COALESCE(tipo_registro, 'BAJA'),
		COALESCE(motivo, ''),
		COALESCE(deposito, ''),
		COALESCE(deposito_origen, deposito, ''),
		deposito_destino,
		COALESCE(lote, ''),
		COALESCE(vencimiento, ''),
		COALESCE(stock_antes_lote, 0),
		COALESCE(stock_despues_lote, 0),
		COALESCE(stock_total_articulo, 0),
		COALESCE(stock_total_deposito, 0),
		COALESCE(stock_casa_central, 0),
		COALESCE(created_at, LOCALTIMESTAMP)
	FROM historial_bajas`

// Recent últimos registros, más reciente primero.
func (r *LedgerRepo) Recent(ctx context.Context, limit int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, ledgerSelect+`
		ORDER BY created_at DESC NULLS LAST, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return scanLedgerEntries(rows)
}

// RecentByArticle últimos registros de un código de artículo.
func (r *LedgerRepo) RecentByArticle(ctx context.Context, code string, limit int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, ledgerSelect+`
		WHERE TRIM(codigo_interno) = $1
		ORDER BY created_at DESC NULLS LAST, id DESC
		LIMIT $2`, code, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger by article: %w", err)
	}
	return scanLedgerEntries(rows)
}

func scanLedgerEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.OperationID, &e.User, &e.Date, &e.Code, &e.Name, &e.Quantity,
			&e.RecordType, &e.Reason, &e.Warehouse, &e.OriginWarehouse, &e.DestinationWarehouse,
			&e.Lot, &e.Expiration,
			&e.QuantityBeforeLot, &e.QuantityAfterLot, &e.TotalArticle, &e.TotalWarehouse, &e.TotalMainWarehouse,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
