package inventory

import (
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Etiquetas de resultado para logs y métricas.
const (
	OutcomeOK                   = "ok"
	OutcomeInvalidQuantity      = "invalid_quantity"
	OutcomeInvalidWarehousePair = "invalid_warehouse_pair"
	OutcomeInvalidInput         = "invalid_input"
	OutcomeLotNotFound          = "lot_not_found"
	OutcomeInsufficientStock    = "insufficient_stock"
	OutcomeFifoOverride         = "fifo_override_not_confirmed"
	OutcomeAborted              = "transaction_aborted"
	OutcomeError                = "error"
)

// Outcome clasifica un error del motor en una etiqueta estable.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidQuantity):
		return OutcomeInvalidQuantity
	case errors.Is(err, domain.ErrInvalidWarehousePair):
		return OutcomeInvalidWarehousePair
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, domain.ErrLotNotFound):
		return OutcomeLotNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrFifoOverrideNotConfirmed):
		return OutcomeFifoOverride
	case errors.Is(err, domain.ErrTransactionAborted):
		return OutcomeAborted
	default:
		return OutcomeError
	}
}

// IsRejection indica si el error es una validación de negocio (no un fallo de infraestructura).
func IsRejection(err error) bool {
	switch Outcome(err) {
	case OutcomeOK, OutcomeAborted, OutcomeError:
		return false
	}
	return true
}
