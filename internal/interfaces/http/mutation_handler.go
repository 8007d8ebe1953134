package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// stockMutator lo implementa *inventory.MutationEngine.
type stockMutator interface {
	ApplyDeduction(ctx context.Context, in appinv.DeductionInput) (*appinv.MutationResult, error)
	ApplyTransfer(ctx context.Context, in appinv.TransferInput) (*appinv.MutationResult, error)
}

// lotResolver elige el lote a usar respetando la regla FIFO/FEFO.
type lotResolver interface {
	ResolveLot(ctx context.Context, code, name, warehouse string, choice appinv.LotChoice) (entity.StockLot, error)
}

// MutationHandler bajas y movimientos de stock (protegido, admin o bodeguero).
type MutationHandler struct {
	engine   stockMutator
	resolver lotResolver
}

// NewMutationHandler construye el handler.
func NewMutationHandler(engine stockMutator, resolver lotResolver) *MutationHandler {
	return &MutationHandler{engine: engine, resolver: resolver}
}

// Deduct godoc
// @Summary      Dar de baja stock de un lote
// @Description  Sin lot ni lot_index se usa el lote recomendado (FIFO/FEFO). Elegir otro lote requiere confirm_override=true.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeductionRequest  true  "code, name, warehouse, quantity, lot/expiration o lot_index"
// @Success      201  {object}  dto.MutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StockErrorResponse
// @Failure      428  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/deductions [post]
func (h *MutationHandler) Deduct(c *fiber.Ctx) error {
	user := ledgerUser(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DeductionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !inventory.ValidQuantity(in.Quantity) {
		return writeStockError(c, domain.ErrInvalidQuantity)
	}
	if blank(in.Code, in.Name, in.Warehouse) {
		return writeStockError(c, domain.ErrInvalidInput)
	}

	ctx := c.UserContext()
	lot, err := h.resolver.ResolveLot(ctx, in.Code, in.Name, in.Warehouse, lotChoice(in.LotSelection))
	if err != nil {
		return writeStockError(c, err)
	}
	res, err := h.engine.ApplyDeduction(ctx, appinv.DeductionInput{
		User:       user,
		Code:       in.Code,
		Name:       in.Name,
		Warehouse:  in.Warehouse,
		Lot:        lot.Lot,
		Expiration: lot.Expiration,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
	})
	if err != nil {
		return writeStockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res, lot, false))
}

// Transfer godoc
// @Summary      Mover stock de un lote entre depósitos
// @Description  Mismas reglas de selección de lote que la baja. Si el destino no tiene el lote se crea la fila.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "code, name, origin_warehouse, destination_warehouse, quantity, lot/expiration o lot_index"
// @Success      201  {object}  dto.MutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StockErrorResponse
// @Failure      428  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *MutationHandler) Transfer(c *fiber.Ctx) error {
	user := ledgerUser(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if blank(in.OriginWarehouse, in.DestinationWarehouse) || inventory.SameName(in.OriginWarehouse, in.DestinationWarehouse) {
		return writeStockError(c, domain.ErrInvalidWarehousePair)
	}
	if !inventory.ValidQuantity(in.Quantity) {
		return writeStockError(c, domain.ErrInvalidQuantity)
	}
	if blank(in.Code, in.Name) {
		return writeStockError(c, domain.ErrInvalidInput)
	}

	ctx := c.UserContext()
	lot, err := h.resolver.ResolveLot(ctx, in.Code, in.Name, in.OriginWarehouse, lotChoice(in.LotSelection))
	if err != nil {
		return writeStockError(c, err)
	}
	res, err := h.engine.ApplyTransfer(ctx, appinv.TransferInput{
		User:                 user,
		Code:                 in.Code,
		Name:                 in.Name,
		Family:               lot.Family,
		OriginWarehouse:      in.OriginWarehouse,
		DestinationWarehouse: in.DestinationWarehouse,
		Lot:                  lot.Lot,
		Expiration:           lot.Expiration,
		Quantity:             in.Quantity,
		Reason:               in.Reason,
	})
	if err != nil {
		return writeStockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res, lot, true))
}

// ledgerUser usuario que queda en el historial: username del token, o su user_id.
func ledgerUser(c *fiber.Ctx) string {
	if u := GetUsername(c); u != "" {
		return u
	}
	return GetUserID(c)
}

func lotChoice(s dto.LotSelection) appinv.LotChoice {
	return appinv.LotChoice{
		Lot:        s.Lot,
		Expiration: s.Expiration,
		Index:      s.LotIndex,
		Confirmed:  s.ConfirmOverride,
	}
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func toMutationResponse(res *appinv.MutationResult, lot entity.StockLot, transfer bool) dto.MutationResponse {
	out := dto.MutationResponse{
		OperationID:        res.OperationID,
		RecordType:         res.RecordType,
		Lot:                lot.Lot,
		Expiration:         lot.Expiration,
		LotQuantityBefore:  res.LotQuantityBefore,
		LotQuantityAfter:   res.LotQuantityAfter,
		DestinationCreated: res.DestinationCreated,
		TotalArticle:       res.TotalArticle,
		TotalWarehouse:     res.TotalWarehouse,
		TotalMainWarehouse: res.TotalMainWarehouse,
	}
	if transfer {
		before, after := res.DestinationQuantityBefore, res.DestinationQuantityAfter
		out.DestinationQuantityBefore = &before
		out.DestinationQuantityAfter = &after
	}
	if res.Entry != nil {
		entry := dto.ToLedgerEntryResponse(res.Entry)
		out.Entry = &entry
	}
	return out
}
