package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var tracer = otel.Tracer("stock-ledger/postgres")

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool             *pgxpool.Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. Timeouts en cero no se aplican.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout, statementTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout, statementTimeout: statementTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de fn se devuelven sin cambios; los de infraestructura que abortan la tx
// (timeouts, deadlock, serialización, cancelación, carrera de inserción) como domain.ErrTransactionAborted.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	stockRepo repository.StockLotRepository,
	ledgerRepo repository.LedgerRepository,
) error) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.tx")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classifyTxError(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.applyTimeouts(ctx, tx); err != nil {
		return classifyTxError(err)
	}

	if err := fn(ctx, NewStockLotRepository(tx), NewLedgerRepository(tx)); err != nil {
		return classifyTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// SET LOCAL no acepta parámetros; los valores salen de la configuración, no del usuario.
func (r *TxRunner) applyTimeouts(ctx context.Context, tx pgx.Tx) error {
	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	if r.statementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.statementTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}
	return nil
}
