package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	DefaultLedgerLimit = 50
	MaxLedgerLimit     = 500
)

// LedgerUseCase lectura del historial de bajas y movimientos (fuera de transacción).
type LedgerUseCase struct {
	ledgerRepo repository.LedgerRepository
	pdf        LedgerPDFGenerator
}

func NewLedgerUseCase(ledgerRepo repository.LedgerRepository, pdf LedgerPDFGenerator) *LedgerUseCase {
	return &LedgerUseCase{ledgerRepo: ledgerRepo, pdf: pdf}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLedgerLimit
	}
	if limit > MaxLedgerLimit {
		return MaxLedgerLimit
	}
	return limit
}

// Recent últimos registros, más reciente primero.
func (uc *LedgerUseCase) Recent(ctx context.Context, limit int) ([]*entity.LedgerEntry, error) {
	list, err := uc.ledgerRepo.Recent(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("historial: %w", err)
	}
	return list, nil
}

// RecentByArticle historial de un código de artículo.
func (uc *LedgerUseCase) RecentByArticle(ctx context.Context, code string, limit int) ([]*entity.LedgerEntry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.ledgerRepo.RecentByArticle(ctx, code, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("historial del artículo: %w", err)
	}
	return list, nil
}

// RenderPDF historial reciente en PDF para imprimir.
func (uc *LedgerUseCase) RenderPDF(ctx context.Context, limit int) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador de PDF no configurado")
	}
	list, err := uc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateLedgerPDF(ctx, "Historial de bajas y movimientos", list)
}
