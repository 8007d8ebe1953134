package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// writeStockError traduce los errores del motor de lotes a respuestas HTTP.
func writeStockError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.StockErrorResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente en el lote"},
			Available:     insufficient.Available,
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente en el lote"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: domain.ErrInvalidQuantity.Error()})
	case errors.Is(err, domain.ErrInvalidWarehousePair):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_WAREHOUSE_PAIR", Message: "origen y destino deben ser depósitos distintos"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrLotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "LOT_NOT_FOUND", Message: domain.ErrLotNotFound.Error()})
	case errors.Is(err, domain.ErrFifoOverrideNotConfirmed):
		return c.Status(fiber.StatusPreconditionRequired).JSON(dto.ErrorResponse{Code: "FIFO_OVERRIDE_REQUIRED", Message: "el lote elegido no es el recomendado; reenvíe con confirm_override=true"})
	case errors.Is(err, domain.ErrTransactionAborted):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TRANSACTION_ABORTED", Message: domain.ErrTransactionAborted.Error()})
	default:
		return internalError(c, err)
	}
}

// internalError registra la causa con el trace_id y responde 500 con un mensaje fijo.
// El texto del error nunca va en el cuerpo.
func internalError(c *fiber.Ctx, err error) error {
	event := log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path())
	if sc := trace.SpanFromContext(c.UserContext()).SpanContext(); sc.IsValid() {
		event = event.Str("trace_id", sc.TraceID().String())
	}
	event.Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: internalMessage})
}

const internalMessage = "error interno del servidor"
