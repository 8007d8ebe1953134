package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos SQLSTATE que abortan la transacción y admiten reintento desde el principio.
var abortCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available (lock_timeout)
	"57014": {}, // query_canceled (statement_timeout)
	"23505": {}, // unique_violation (dos movimientos insertando el mismo destino)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isAbortError indica si err es un fallo de concurrencia/timeout de PostgreSQL o una cancelación.
func isAbortError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := abortCodes[pgErr.Code]
		return ok
	}
	return false
}

// classifyTxError deja pasar los errores de dominio y envuelve los abortos en domain.AbortedError.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransactionAborted) {
		return err
	}
	if isAbortError(err) {
		return &domain.AbortedError{Cause: err}
	}
	return err
}
