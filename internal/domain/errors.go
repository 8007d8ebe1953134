package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Motor de lotes (bajas y movimientos).
	ErrInvalidQuantity          = errors.New("la cantidad debe ser mayor a 0")
	ErrInvalidWarehousePair     = errors.New("depósito origen/destino inválido")
	ErrLotNotFound              = errors.New("no se encontró el lote seleccionado")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrFifoOverrideNotConfirmed = errors.New("el lote elegido no es el recomendado por FIFO/FEFO y falta la confirmación")
	ErrTransactionAborted       = errors.New("transacción abortada, reintente la operación")
)

// InsufficientStockError informa la cantidad disponible en el lote al momento del rechazo.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: disponible %s, solicitado %s",
		ErrInsufficientStock.Error(), e.Available.String(), e.Requested.String())
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStock construye el error con la cantidad disponible.
func NewInsufficientStock(available, requested decimal.Decimal) error {
	return &InsufficientStockError{Available: available, Requested: requested}
}

// AbortedError envuelve la causa de infraestructura (timeout, deadlock, serialización)
// manteniendo errors.Is(err, ErrTransactionAborted).
type AbortedError struct {
	Cause error
}

func (e *AbortedError) Error() string {
	if e.Cause == nil {
		return ErrTransactionAborted.Error()
	}
	return ErrTransactionAborted.Error() + ": " + e.Cause.Error()
}

func (e *AbortedError) Is(target error) bool { return target == ErrTransactionAborted }

func (e *AbortedError) Unwrap() error { return e.Cause }
