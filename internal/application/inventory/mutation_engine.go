package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var tracer = otel.Tracer("stock-ledger/inventory")

// Tipos de mutación (etiquetas de métricas y logs).
const (
	KindDeduction = "deduction"
	KindTransfer  = "transfer"
)

// EngineConfig parámetros del motor de lotes.
type EngineConfig struct {
	MainWarehouse string          // marcador de casa central; vacío = "casa central"
	Epsilon       decimal.Decimal // tolerancia pedido vs disponible; cero = 1e-9
}

// EngineDeps colaboradores opcionales del motor (pueden ser nil).
type EngineDeps struct {
	Publisher LedgerPublisher
	Cache     SearchCache
	Observer  MutationObserver
	Logger    *zerolog.Logger
}

// MutationEngine aplica bajas y movimientos por lote de forma transaccional:
// bloqueo de fila (SELECT FOR UPDATE), actualización, totales e historial en la misma tx.
type MutationEngine struct {
	txRunner  TxRunner
	cfg       EngineConfig
	publisher LedgerPublisher
	cache     SearchCache
	observer  MutationObserver
	log       zerolog.Logger
	now       func() time.Time
}

// NewMutationEngine construye el motor.
func NewMutationEngine(txRunner TxRunner, cfg EngineConfig, deps EngineDeps) *MutationEngine {
	if cfg.MainWarehouse == "" {
		cfg.MainWarehouse = inventory.DefaultMainWarehouse
	}
	if !cfg.Epsilon.IsPositive() {
		cfg.Epsilon = inventory.Epsilon
	}
	log := zerolog.Nop()
	if deps.Logger != nil {
		log = *deps.Logger
	}
	return &MutationEngine{
		txRunner:  txRunner,
		cfg:       cfg,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		observer:  deps.Observer,
		log:       log,
		now:       time.Now,
	}
}

// DeductionInput entrada de una baja sobre un lote puntual.
type DeductionInput struct {
	User       string
	Code       string
	Name       string
	Warehouse  string
	Lot        string
	Expiration string
	Quantity   decimal.Decimal
	Reason     string
}

func (in *DeductionInput) normalize() {
	in.User = strings.TrimSpace(in.User)
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Warehouse = strings.TrimSpace(in.Warehouse)
	in.Lot = strings.TrimSpace(in.Lot)
	in.Expiration = strings.TrimSpace(in.Expiration)
	in.Reason = strings.TrimSpace(in.Reason)
}

// TransferInput entrada de un movimiento de un lote entre dos depósitos.
type TransferInput struct {
	User                 string
	Code                 string
	Name                 string
	Family               string
	OriginWarehouse      string
	DestinationWarehouse string
	Lot                  string
	Expiration           string
	Quantity             decimal.Decimal
	Reason               string
}

func (in *TransferInput) normalize() {
	in.User = strings.TrimSpace(in.User)
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Family = strings.TrimSpace(in.Family)
	in.OriginWarehouse = strings.TrimSpace(in.OriginWarehouse)
	in.DestinationWarehouse = strings.TrimSpace(in.DestinationWarehouse)
	in.Lot = strings.TrimSpace(in.Lot)
	in.Expiration = strings.TrimSpace(in.Expiration)
	in.Reason = strings.TrimSpace(in.Reason)
}

// MutationResult cantidades y totales posteriores a la mutación, más el registro escrito.
// En bajas los campos Destination* quedan en cero.
type MutationResult struct {
	OperationID               string
	RecordType                string
	LotQuantityBefore         decimal.Decimal
	LotQuantityAfter          decimal.Decimal
	DestinationQuantityBefore decimal.Decimal
	DestinationQuantityAfter  decimal.Decimal
	DestinationCreated        bool
	TotalArticle              decimal.Decimal
	TotalWarehouse            decimal.Decimal
	TotalMainWarehouse        decimal.Decimal
	Entry                     *entity.LedgerEntry
}

// ApplyDeduction resta quantity de un lote y registra la baja en el historial.
//  1. quantity <= 0 o con más de 2 decimales → ErrInvalidQuantity (sin tocar la BD)
//  2. bloquea la fila; si no existe → ErrLotNotFound
//  3. quantity > stock del lote → ErrInsufficientStock con el disponible
//  4. actualiza STOCK, recalcula totales del artículo y escribe el historial
//  5. Commit; cualquier error hace Rollback completo
func (e *MutationEngine) ApplyDeduction(ctx context.Context, in DeductionInput) (*MutationResult, error) {
	start := time.Now()
	in.normalize()
	if !inventory.ValidQuantity(in.Quantity) {
		return nil, e.finish(ctx, KindDeduction, start, in.Code, in.Warehouse, in.Lot, domain.ErrInvalidQuantity)
	}
	if in.Code == "" || in.Name == "" || in.Warehouse == "" {
		return nil, e.finish(ctx, KindDeduction, start, in.Code, in.Warehouse, in.Lot, domain.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "inventory.ApplyDeduction", trace.WithAttributes(
		attribute.String("article.code", in.Code),
		attribute.String("stock.warehouse", in.Warehouse),
		attribute.String("stock.lot", in.Lot),
		attribute.String("stock.quantity", in.Quantity.String()),
	))
	defer span.End()

	opID := uuid.New().String()
	now := e.now()
	var res *MutationResult

	err := e.txRunner.Run(ctx, func(
		ctx context.Context,
		stockRepo repository.StockLotRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		key := entity.LotKey{Code: in.Code, Name: in.Name, Warehouse: in.Warehouse, Lot: in.Lot, Expiration: in.Expiration}
		row, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrLotNotFound
		}
		before := row.Quantity
		if inventory.ExceedsAvailable(in.Quantity, before, e.cfg.Epsilon) {
			return domain.NewInsufficientStock(before, in.Quantity)
		}
		afterText := inventory.FormatQuantity(nonNegative(before.Sub(in.Quantity)))
		if err := stockRepo.UpdateQuantity(ctx, key, afterText); err != nil {
			return err
		}
		after := inventory.ParseQuantity(afterText)

		totals, err := e.totals(ctx, stockRepo, in.Code, in.Name, in.Warehouse)
		if err != nil {
			return err
		}

		entry := &entity.LedgerEntry{
			OperationID:        opID,
			User:               in.User,
			Date:               now,
			Code:               in.Code,
			Name:               in.Name,
			Quantity:           in.Quantity,
			RecordType:         entity.RecordTypeDeduction,
			Reason:             in.Reason,
			Warehouse:          in.Warehouse,
			OriginWarehouse:    in.Warehouse,
			Lot:                in.Lot,
			Expiration:         in.Expiration,
			QuantityBeforeLot:  before,
			QuantityAfterLot:   after,
			TotalArticle:       totals.Article,
			TotalWarehouse:     totals.Warehouse,
			TotalMainWarehouse: totals.MainWarehouse,
			CreatedAt:          now,
		}
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		res = &MutationResult{
			OperationID:        opID,
			RecordType:         entity.RecordTypeDeduction,
			LotQuantityBefore:  before,
			LotQuantityAfter:   after,
			TotalArticle:       totals.Article,
			TotalWarehouse:     totals.Warehouse,
			TotalMainWarehouse: totals.MainWarehouse,
			Entry:              entry,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		return nil, e.finish(ctx, KindDeduction, start, in.Code, in.Warehouse, in.Lot, err)
	}
	e.finish(ctx, KindDeduction, start, in.Code, in.Warehouse, in.Lot, nil)
	e.afterCommit(ctx, res)
	return res, nil
}

// ApplyTransfer mueve quantity de un lote del depósito origen al mismo lote/vencimiento en destino.
// El origen se bloquea y descuenta antes de bloquear el destino; si el destino no tiene la fila
// se inserta con la cantidad movida. Origen y destino se confirman juntos o ninguno.
func (e *MutationEngine) ApplyTransfer(ctx context.Context, in TransferInput) (*MutationResult, error) {
	start := time.Now()
	in.normalize()
	if in.OriginWarehouse == "" || in.DestinationWarehouse == "" ||
		inventory.SameName(in.OriginWarehouse, in.DestinationWarehouse) {
		return nil, e.finish(ctx, KindTransfer, start, in.Code, in.OriginWarehouse, in.Lot, domain.ErrInvalidWarehousePair)
	}
	if !inventory.ValidQuantity(in.Quantity) {
		return nil, e.finish(ctx, KindTransfer, start, in.Code, in.OriginWarehouse, in.Lot, domain.ErrInvalidQuantity)
	}
	if in.Code == "" || in.Name == "" {
		return nil, e.finish(ctx, KindTransfer, start, in.Code, in.OriginWarehouse, in.Lot, domain.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "inventory.ApplyTransfer", trace.WithAttributes(
		attribute.String("article.code", in.Code),
		attribute.String("stock.origin", in.OriginWarehouse),
		attribute.String("stock.destination", in.DestinationWarehouse),
		attribute.String("stock.lot", in.Lot),
		attribute.String("stock.quantity", in.Quantity.String()),
	))
	defer span.End()

	opID := uuid.New().String()
	now := e.now()
	var res *MutationResult

	err := e.txRunner.Run(ctx, func(
		ctx context.Context,
		stockRepo repository.StockLotRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		originKey := entity.LotKey{Code: in.Code, Name: in.Name, Warehouse: in.OriginWarehouse, Lot: in.Lot, Expiration: in.Expiration}
		origin, err := stockRepo.GetForUpdate(ctx, originKey)
		if err != nil {
			return err
		}
		if origin == nil {
			return domain.ErrLotNotFound
		}
		originBefore := origin.Quantity
		if inventory.ExceedsAvailable(in.Quantity, originBefore, e.cfg.Epsilon) {
			return domain.NewInsufficientStock(originBefore, in.Quantity)
		}
		originText := inventory.FormatQuantity(nonNegative(originBefore.Sub(in.Quantity)))
		if err := stockRepo.UpdateQuantity(ctx, originKey, originText); err != nil {
			return err
		}
		originAfter := inventory.ParseQuantity(originText)

		destKey := originKey
		destKey.Warehouse = in.DestinationWarehouse
		dest, err := stockRepo.GetForUpdate(ctx, destKey)
		if err != nil {
			return err
		}
		destBefore := decimal.Zero
		created := dest == nil
		var destText string
		if created {
			family := in.Family
			if family == "" {
				family = origin.Family
			}
			destText = inventory.FormatQuantity(in.Quantity)
			if err := stockRepo.Insert(ctx, &entity.StockLot{LotKey: destKey, Family: family, QuantityText: destText}); err != nil {
				return err
			}
		} else {
			destBefore = dest.Quantity
			destText = inventory.FormatQuantity(destBefore.Add(in.Quantity))
			if err := stockRepo.UpdateQuantity(ctx, destKey, destText); err != nil {
				return err
			}
		}
		destAfter := inventory.ParseQuantity(destText)

		totals, err := e.totals(ctx, stockRepo, in.Code, in.Name, in.OriginWarehouse)
		if err != nil {
			return err
		}

		destination := in.DestinationWarehouse
		entry := &entity.LedgerEntry{
			OperationID:          opID,
			User:                 in.User,
			Date:                 now,
			Code:                 in.Code,
			Name:                 in.Name,
			Quantity:             in.Quantity,
			RecordType:           entity.RecordTypeTransfer,
			Reason:               in.Reason,
			Warehouse:            in.OriginWarehouse,
			OriginWarehouse:      in.OriginWarehouse,
			DestinationWarehouse: &destination,
			Lot:                  in.Lot,
			Expiration:           in.Expiration,
			QuantityBeforeLot:    originBefore,
			QuantityAfterLot:     originAfter,
			TotalArticle:         totals.Article,
			TotalWarehouse:       totals.Warehouse,
			TotalMainWarehouse:   totals.MainWarehouse,
			CreatedAt:            now,
		}
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		res = &MutationResult{
			OperationID:               opID,
			RecordType:                entity.RecordTypeTransfer,
			LotQuantityBefore:         originBefore,
			LotQuantityAfter:          originAfter,
			DestinationQuantityBefore: destBefore,
			DestinationQuantityAfter:  destAfter,
			DestinationCreated:        created,
			TotalArticle:              totals.Article,
			TotalWarehouse:            totals.Warehouse,
			TotalMainWarehouse:        totals.MainWarehouse,
			Entry:                     entry,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		return nil, e.finish(ctx, KindTransfer, start, in.Code, in.OriginWarehouse, in.Lot, err)
	}
	e.finish(ctx, KindTransfer, start, in.Code, in.OriginWarehouse, in.Lot, nil)
	e.afterCommit(ctx, res)
	return res, nil
}

// totals relee todas las filas del artículo dentro de la tx (ya con la mutación aplicada).
func (e *MutationEngine) totals(ctx context.Context, stockRepo repository.StockLotRepository, code, name, warehouse string) (inventory.Totals, error) {
	rows, err := stockRepo.ListByItem(ctx, code, name)
	if err != nil {
		return inventory.Totals{}, err
	}
	return inventory.ComputeTotals(rows, warehouse, e.cfg.MainWarehouse), nil
}

// finish registra métricas y log de la operación y devuelve err sin modificarlo.
func (e *MutationEngine) finish(ctx context.Context, kind string, start time.Time, code, warehouse, lot string, err error) error {
	outcome := Outcome(err)
	if e.observer != nil {
		e.observer.ObserveMutation(kind, outcome, time.Since(start))
	}
	var ev *zerolog.Event
	switch {
	case err == nil:
		ev = e.log.Info()
	case IsRejection(err):
		ev = e.log.Warn()
	default:
		ev = e.log.Error().Err(err)
	}
	ev.Str("kind", kind).
		Str("outcome", outcome).
		Str("code", code).
		Str("warehouse", warehouse).
		Str("lot", lot).
		Dur("elapsed", time.Since(start))
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		ev.Str("trace_id", span.SpanContext().TraceID().String())
	}
	ev.Msg("mutación de stock")
	return err
}

// afterCommit invalida el caché del buscador y publica el registro. Los fallos no revierten nada.
func (e *MutationEngine) afterCommit(ctx context.Context, res *MutationResult) {
	if e.cache != nil {
		if err := e.cache.Invalidate(ctx); err != nil {
			e.log.Warn().Err(err).Str("operation_id", res.OperationID).Msg("invalidar caché de búsqueda")
		}
	}
	if e.publisher != nil {
		if err := e.publisher.PublishLedgerEntry(ctx, res.Entry); err != nil {
			e.log.Warn().Err(err).Str("operation_id", res.OperationID).Msg("publicar registro de historial")
		}
	}
}

func nonNegative(q decimal.Decimal) decimal.Decimal {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// SuggestDestination depósito destino sugerido para la familia, sólo si existe en available.
func (e *MutationEngine) SuggestDestination(family string, available []string) string {
	return inventory.SuggestDestination(family, available)
}
