package dto

import "github.com/shopspring/decimal"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StockErrorResponse error de stock insuficiente con la cantidad disponible en el lote.
type StockErrorResponse struct {
	ErrorResponse
	Available decimal.Decimal `json:"available"`
}
