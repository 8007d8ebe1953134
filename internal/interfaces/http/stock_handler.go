package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// stockCatalog lo implementa *inventory.CatalogUseCase.
type stockCatalog interface {
	SearchItems(ctx context.Context, query string, rowLimit int) ([]entity.ItemSummary, error)
	ListLots(ctx context.Context, code, name string) ([]entity.StockLot, error)
	CandidateLots(ctx context.Context, code, name, warehouse string) ([]entity.StockLot, error)
	ListWarehouses(ctx context.Context) ([]string, error)
	DestinationOptions(ctx context.Context, family, origin string) ([]string, string, error)
	ResolveLot(ctx context.Context, code, name, warehouse string, choice appinv.LotChoice) (entity.StockLot, error)
}

// StockHandler consultas de stock (protegido).
type StockHandler struct {
	catalog stockCatalog
}

// NewStockHandler construye el handler.
func NewStockHandler(catalog stockCatalog) *StockHandler {
	return &StockHandler{catalog: catalog}
}

// SearchItems godoc
// @Summary      Buscar artículos
// @Description  Código exacto o nombre que contenga q. Devuelve hasta 20 artículos con total y depósitos.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "código o parte del nombre"
// @Param        limit  query  int     false  "filas a leer antes de agrupar"
// @Success      200  {object}  dto.ItemSearchResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/items [get]
func (h *StockHandler) SearchItems(c *fiber.Ctx) error {
	q := c.Query("q")
	items, err := h.catalog.SearchItems(c.UserContext(), q, c.QueryInt("limit", 0))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(dto.ItemSearchResponse{Query: strings.TrimSpace(q), Items: items})
}

// ListLots godoc
// @Summary      Lotes de un artículo
// @Description  Todas las filas del artículo en orden FIFO/FEFO. Con warehouse agrega los candidatos
//
//	(stock > 0 en ese depósito) y el recomendado.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        code       query  string  true   "código del artículo"
// @Param        name       query  string  true   "nombre del artículo"
// @Param        warehouse  query  string  false  "depósito para calcular candidatos"
// @Success      200  {object}  dto.LotsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/lots [get]
func (h *StockHandler) ListLots(c *fiber.Ctx) error {
	code, name := strings.TrimSpace(c.Query("code")), strings.TrimSpace(c.Query("name"))
	if code == "" || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code y name son requeridos"})
	}
	ctx := c.UserContext()
	lots, err := h.catalog.ListLots(ctx, code, name)
	if err != nil {
		return internalError(c, err)
	}
	out := dto.LotsResponse{Lots: make([]dto.StockLotResponse, 0, len(lots))}
	for _, l := range lots {
		out.Lots = append(out.Lots, dto.ToStockLotResponse(l, -1))
	}

	if warehouse := strings.TrimSpace(c.Query("warehouse")); warehouse != "" {
		candidates, err := h.catalog.CandidateLots(ctx, code, name, warehouse)
		if err != nil {
			return internalError(c, err)
		}
		out.Candidates = make([]dto.StockLotResponse, 0, len(candidates))
		for i, l := range candidates {
			out.Candidates = append(out.Candidates, dto.ToStockLotResponse(l, i))
		}
		if len(out.Candidates) > 0 {
			rec := out.Candidates[0]
			out.Recommended = &rec
		}
	}
	return c.JSON(out)
}

// ListWarehouses godoc
// @Summary      Depósitos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.WarehousesResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/warehouses [get]
func (h *StockHandler) ListWarehouses(c *fiber.Ctx) error {
	whs, err := h.catalog.ListWarehouses(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	if whs == nil {
		whs = []string{}
	}
	return c.JSON(dto.WarehousesResponse{Warehouses: whs})
}

// Destinations godoc
// @Summary      Destinos posibles para un movimiento
// @Description  Excluye el depósito origen y sugiere uno según la familia (no obligatorio).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        family  query  string  false  "familia del artículo"
// @Param        origin  query  string  false  "depósito origen"
// @Success      200  {object}  dto.DestinationsResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/destinations [get]
func (h *StockHandler) Destinations(c *fiber.Ctx) error {
	options, suggested, err := h.catalog.DestinationOptions(c.UserContext(), c.Query("family"), c.Query("origin"))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(dto.DestinationsResponse{Options: options, Suggested: suggested})
}
