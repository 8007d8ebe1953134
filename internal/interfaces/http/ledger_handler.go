package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ledgerReader lo implementa *inventory.LedgerUseCase.
type ledgerReader interface {
	Recent(ctx context.Context, limit int) ([]*entity.LedgerEntry, error)
	RecentByArticle(ctx context.Context, code string, limit int) ([]*entity.LedgerEntry, error)
	RenderPDF(ctx context.Context, limit int) ([]byte, error)
}

// LedgerHandler historial de bajas y movimientos (protegido).
type LedgerHandler struct {
	ledger ledgerReader
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(ledger ledgerReader) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// List godoc
// @Summary      Últimos registros del historial
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int     false  "máximo de registros (por defecto 50, tope 500)"
// @Param        code   query  string  false  "filtrar por código de artículo"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	var (
		entries []*entity.LedgerEntry
		err     error
	)
	if code := strings.TrimSpace(c.Query("code")); code != "" {
		entries, err = h.ledger.RecentByArticle(c.UserContext(), code, limit)
	} else {
		entries, err = h.ledger.Recent(c.UserContext(), limit)
	}
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(dto.LedgerListResponse{Count: len(entries), Entries: dto.ToLedgerEntryResponses(entries)})
}

// PDF godoc
// @Summary      Historial en PDF
// @Tags         ledger
// @Security     Bearer
// @Produce      application/pdf
// @Param        limit  query  int  false  "máximo de registros"
// @Success      200  {file}    binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/ledger/pdf [get]
func (h *LedgerHandler) PDF(c *fiber.Ctx) error {
	pdf, err := h.ledger.RenderPDF(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return internalError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="historial_%s.pdf"`, time.Now().Format("20060102")))
	return c.Send(pdf)
}
