package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const (
	code = "1001"
	name = "Reactivo Glucosa"
)

func row(warehouse, lotID, exp, qty string) entity.StockLot {
	return entity.StockLot{
		LotKey:       entity.LotKey{Code: code, Name: name, Warehouse: warehouse, Lot: lotID, Expiration: exp},
		Family:       "G",
		QuantityText: qty,
	}
}

func key(warehouse, lotID, exp string) entity.LotKey {
	return entity.LotKey{Code: code, Name: name, Warehouse: warehouse, Lot: lotID, Expiration: exp}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(store *memStore) (*appinv.MutationEngine, *spyPublisher, *spyCache, *spyObserver) {
	pub := &spyPublisher{}
	cache := newSpyCache()
	obs := &spyObserver{}
	eng := appinv.NewMutationEngine(store, appinv.EngineConfig{}, appinv.EngineDeps{
		Publisher: pub,
		Cache:     cache,
		Observer:  obs,
	})
	return eng, pub, cache, obs
}

// ─── Bajas ───────────────────────────────────────────────────────────────────

func TestApplyDeduction_DescuentaYRegistra(t *testing.T) {
	store := newMemStore(
		row("Casa Central", "L1", "2025-01-01", "10"),
		row("Casa Central", "L2", "2025-06-01", "5"),
		row("Generales", "L1", "2025-01-01", "3"),
	)
	eng, pub, cache, obs := newEngine(store)

	res, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
		User: "ana", Code: code, Name: name, Warehouse: "Casa Central",
		Lot: "L1", Expiration: "2025-01-01", Quantity: dec("3"), Reason: "vencido",
	})
	require.NoError(t, err)

	assert.True(t, res.LotQuantityBefore.Equal(dec("10")))
	assert.True(t, res.LotQuantityAfter.Equal(dec("7")))
	assert.True(t, res.TotalArticle.Equal(dec("15")))
	assert.True(t, res.TotalWarehouse.Equal(dec("12")))
	assert.True(t, res.TotalMainWarehouse.Equal(dec("12")))
	assert.Equal(t, entity.RecordTypeDeduction, res.RecordType)
	assert.NotEmpty(t, res.OperationID)

	q, _ := store.quantity(key("Casa Central", "L1", "2025-01-01"))
	assert.Equal(t, "7", q)

	entries := store.entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "ana", e.User)
	assert.Equal(t, "vencido", e.Reason)
	assert.Nil(t, e.DestinationWarehouse)
	assert.False(t, e.IsTransfer())
	assert.True(t, e.QuantityBeforeLot.Sub(e.QuantityAfterLot).Equal(e.Quantity))

	assert.Len(t, pub.entries, 1)
	assert.Equal(t, 1, cache.invalidated)
	assert.Equal(t, []string{"deduction:ok"}, obs.outcomes)
}

func TestApplyDeduction_Fraccionaria(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "2,5"))
	eng, _, _, _ := newEngine(store)

	res, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
		Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("0.5"),
	})
	require.NoError(t, err)
	assert.True(t, res.LotQuantityAfter.Equal(dec("2")))

	q, _ := store.quantity(key("Casa Central", "L1", ""))
	assert.Equal(t, "2", q)
}

func TestApplyDeduction_TodoElStockDejaCero(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "4"))
	eng, _, _, _ := newEngine(store)

	res, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
		Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("4"),
	})
	require.NoError(t, err)
	assert.True(t, res.LotQuantityAfter.IsZero())

	q, ok := store.quantity(key("Casa Central", "L1", ""))
	require.True(t, ok, "las filas en cero no se borran")
	assert.Equal(t, "0", q)
}

func TestApplyDeduction_StockInsuficiente(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	eng, pub, cache, obs := newEngine(store)

	_, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
		Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("11"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ins *domain.InsufficientStockError
	require.True(t, errors.As(err, &ins))
	assert.True(t, ins.Available.Equal(dec("10")))

	q, _ := store.quantity(key("Casa Central", "L1", ""))
	assert.Equal(t, "10", q)
	assert.Empty(t, store.entries())
	assert.Empty(t, pub.entries)
	assert.Equal(t, 0, cache.invalidated)
	assert.Equal(t, []string{"deduction:insufficient_stock"}, obs.outcomes)
}

func TestApplyDeduction_ValidacionAntesDeLaTransaccion(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	eng, _, _, _ := newEngine(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      appinv.DeductionInput
		wantErr error
	}{
		{"cantidad cero", appinv.DeductionInput{Code: code, Name: name, Warehouse: "Casa Central", Quantity: decimal.Zero}, domain.ErrInvalidQuantity},
		{"cantidad negativa", appinv.DeductionInput{Code: code, Name: name, Warehouse: "Casa Central", Quantity: dec("-1")}, domain.ErrInvalidQuantity},
		{"más de dos decimales", appinv.DeductionInput{Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("0.001")}, domain.ErrInvalidQuantity},
		{"sin depósito", appinv.DeductionInput{Code: code, Name: name, Quantity: dec("1")}, domain.ErrInvalidInput},
		{"sin código", appinv.DeductionInput{Name: name, Warehouse: "Casa Central", Quantity: dec("1")}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.ApplyDeduction(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, store.runCount())
}

func TestApplyDeduction_LoteInexistente(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "2025-01-01", "10"))
	eng, _, _, _ := newEngine(store)

	_, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
		Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Expiration: "", Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	assert.Empty(t, store.entries())
}

func TestApplyDeduction_FalloDelHistorialRevierteStock(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	store.failAppend = errors.New("disco lleno")
	eng, pub, _, obs := newEngine(store)

	_, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
		Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("2"),
	})
	require.Error(t, err)

	q, _ := store.quantity(key("Casa Central", "L1", ""))
	assert.Equal(t, "10", q)
	assert.Empty(t, pub.entries)
	assert.Equal(t, []string{"deduction:error"}, obs.outcomes)
}

func TestApplyDeduction_ConcurrenciaNoDejaNegativos(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	eng, _, _, _ := newEngine(store)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
				Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("1"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, fail)
	q, _ := store.quantity(key("Casa Central", "L1", ""))
	assert.Equal(t, "0", q)
	assert.Len(t, store.entries(), 10)
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

func TestApplyTransfer_CreaFilaDestino(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "2025-01-01", "10"))
	eng, pub, _, _ := newEngine(store)
	before := store.total()

	res, err := eng.ApplyTransfer(context.Background(), appinv.TransferInput{
		User: "ana", Code: code, Name: name,
		OriginWarehouse: "Casa Central", DestinationWarehouse: "Generales",
		Lot: "L1", Expiration: "2025-01-01", Quantity: dec("4"),
	})
	require.NoError(t, err)

	assert.True(t, res.DestinationCreated)
	assert.True(t, res.LotQuantityAfter.Equal(dec("6")))
	assert.True(t, res.DestinationQuantityBefore.IsZero())
	assert.True(t, res.DestinationQuantityAfter.Equal(dec("4")))
	assert.True(t, res.TotalArticle.Equal(dec("10")))
	assert.True(t, res.TotalWarehouse.Equal(dec("6")))
	assert.True(t, res.TotalMainWarehouse.Equal(dec("6")))
	assert.Equal(t, before, store.total(), "el movimiento conserva el total del artículo")

	q, ok := store.quantity(key("Generales", "L1", "2025-01-01"))
	require.True(t, ok)
	assert.Equal(t, "4", q)

	entries := store.entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, entity.RecordTypeTransfer, e.RecordType)
	require.NotNil(t, e.DestinationWarehouse)
	assert.Equal(t, "Generales", *e.DestinationWarehouse)
	assert.Equal(t, "Casa Central", e.OriginWarehouse)
	assert.Len(t, pub.entries, 1)
}

func TestApplyTransfer_SumaEnFilaExistente(t *testing.T) {
	store := newMemStore(
		row("Casa Central", "L1", "", "10"),
		row("Generales", "L1", "", "1,5"),
	)
	eng, _, _, _ := newEngine(store)

	res, err := eng.ApplyTransfer(context.Background(), appinv.TransferInput{
		Code: code, Name: name, OriginWarehouse: "Casa Central", DestinationWarehouse: "Generales",
		Lot: "L1", Quantity: dec("2"),
	})
	require.NoError(t, err)
	assert.False(t, res.DestinationCreated)
	assert.True(t, res.DestinationQuantityBefore.Equal(dec("1.5")))
	assert.True(t, res.DestinationQuantityAfter.Equal(dec("3.5")))

	q, _ := store.quantity(key("Generales", "L1", ""))
	assert.Equal(t, "3.5", q)
}

func TestApplyTransfer_ParDeDepositosInvalido(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	eng, _, _, obs := newEngine(store)
	ctx := context.Background()

	for _, dest := range []string{"", "casa central", " CASA CENTRAL "} {
		_, err := eng.ApplyTransfer(ctx, appinv.TransferInput{
			Code: code, Name: name, OriginWarehouse: "Casa Central", DestinationWarehouse: dest,
			Lot: "L1", Quantity: dec("1"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidWarehousePair, dest)
	}
	assert.Equal(t, 0, store.runCount())
	assert.Len(t, obs.outcomes, 3)
}

// Un traspaso por debajo del centésimo no se puede guardar sin redondear; se
// rechaza antes de abrir la transacción y el total no se mueve.
func TestApplyTransfer_CantidadNoRepresentable(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	eng, pub, _, _ := newEngine(store)

	_, err := eng.ApplyTransfer(context.Background(), appinv.TransferInput{
		Code: code, Name: name, OriginWarehouse: "Casa Central", DestinationWarehouse: "Bodega Norte",
		Lot: "L1", Quantity: dec("0.005"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, 0, store.runCount())
	assert.Equal(t, "10", store.total())
	assert.Empty(t, store.entries())
	assert.Empty(t, pub.entries)
}

func TestApplyTransfer_InsuficienteNoTocaDestino(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "3"))
	eng, _, _, _ := newEngine(store)

	_, err := eng.ApplyTransfer(context.Background(), appinv.TransferInput{
		Code: code, Name: name, OriginWarehouse: "Casa Central", DestinationWarehouse: "Generales",
		Lot: "L1", Quantity: dec("5"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, ok := store.quantity(key("Generales", "L1", ""))
	assert.False(t, ok)
	q, _ := store.quantity(key("Casa Central", "L1", ""))
	assert.Equal(t, "3", q)
}

func TestApplyTransfer_FamiliaDelOrigenEnFilaNueva(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "3"))
	eng, _, _, _ := newEngine(store)

	_, err := eng.ApplyTransfer(context.Background(), appinv.TransferInput{
		Code: code, Name: name, OriginWarehouse: "Casa Central", DestinationWarehouse: "Generales",
		Lot: "L1", Quantity: dec("1"),
	})
	require.NoError(t, err)

	lots, err := appinv.NewCatalogUseCase(memStockRepo{store}, nil, 0).ListLots(context.Background(), code, name)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	for _, l := range lots {
		assert.Equal(t, "G", l.Family)
	}
}

func TestSuggestDestination(t *testing.T) {
	eng, _, _, _ := newEngine(newMemStore())
	assert.Equal(t, "GENERALES", eng.SuggestDestination("g", []string{"Casa Central", "GENERALES"}))
	assert.Equal(t, "", eng.SuggestDestination("G", []string{"Casa Central"}))
	assert.Equal(t, "", eng.SuggestDestination("ZZ", []string{"Generales"}))
}
