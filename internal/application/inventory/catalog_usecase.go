package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	// DefaultSearchRows filas crudas leídas por búsqueda antes de agrupar.
	DefaultSearchRows = 400
	// MaxSearchResults artículos devueltos por el buscador.
	MaxSearchResults = 20
)

// CatalogUseCase consultas de sólo lectura sobre la tabla stock.
type CatalogUseCase struct {
	stockRepo repository.StockLotRepository
	cache     SearchCache
	maxRows   int
}

// NewCatalogUseCase construye el caso de uso. cache puede ser nil; maxRows <= 0 usa DefaultSearchRows.
func NewCatalogUseCase(stockRepo repository.StockLotRepository, cache SearchCache, maxRows int) *CatalogUseCase {
	if maxRows <= 0 {
		maxRows = DefaultSearchRows
	}
	return &CatalogUseCase{stockRepo: stockRepo, cache: cache, maxRows: maxRows}
}

// SearchItems busca por código exacto o nombre que contenga query (sin distinguir mayúsculas),
// agrupa por (código, nombre, familia) y devuelve hasta 20 artículos ordenados por total desc.
func (uc *CatalogUseCase) SearchItems(ctx context.Context, query string, rowLimit int) ([]entity.ItemSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.ItemSummary{}, nil
	}
	if rowLimit <= 0 || rowLimit > uc.maxRows {
		rowLimit = uc.maxRows
	}
	var token string
	if uc.cache != nil {
		items, tok, ok := uc.cache.Get(ctx, query, rowLimit)
		if ok {
			return items, nil
		}
		token = tok
	}
	rows, err := uc.stockRepo.SearchRows(ctx, query, rowLimit)
	if err != nil {
		return nil, fmt.Errorf("buscar artículos: %w", err)
	}
	items := GroupItems(rows)
	if uc.cache != nil {
		uc.cache.Set(ctx, token, items)
	}
	return items, nil
}

// GroupItems agrupa filas por (código, nombre, familia) conservando el orden de aparición
// para desempatar, y recorta a MaxSearchResults.
func GroupItems(rows []entity.StockLot) []entity.ItemSummary {
	type acc struct {
		item entity.ItemSummary
		seen map[string]struct{}
	}
	index := make(map[[3]string]int)
	var groups []*acc
	for _, r := range rows {
		k := [3]string{strings.TrimSpace(r.Code), strings.TrimSpace(r.Name), strings.TrimSpace(r.Family)}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, &acc{
				item: entity.ItemSummary{Code: k[0], Name: k[1], Family: k[2], Total: decimal.Zero},
				seen: make(map[string]struct{}),
			})
		}
		g := groups[i]
		g.item.Total = g.item.Total.Add(r.Quantity)
		if wh := strings.TrimSpace(r.Warehouse); wh != "" {
			g.seen[wh] = struct{}{}
		}
	}
	items := make([]entity.ItemSummary, 0, len(groups))
	for _, g := range groups {
		whs := make([]string, 0, len(g.seen))
		for wh := range g.seen {
			whs = append(whs, wh)
		}
		sort.Strings(whs)
		g.item.Warehouses = whs
		items = append(items, g.item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total.GreaterThan(items[j].Total)
	})
	if len(items) > MaxSearchResults {
		items = items[:MaxSearchResults]
	}
	return items
}

// ListLots todas las filas del par (código, nombre) en todos los depósitos, en orden FIFO/FEFO.
func (uc *CatalogUseCase) ListLots(ctx context.Context, code, name string) ([]entity.StockLot, error) {
	rows, err := uc.stockRepo.ListByItem(ctx, strings.TrimSpace(code), strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	return inventory.OrderByFifoFefo(rows), nil
}

// CandidateLots lotes con stock > 0 del depósito indicado, en orden FIFO/FEFO.
func (uc *CatalogUseCase) CandidateLots(ctx context.Context, code, name, warehouse string) ([]entity.StockLot, error) {
	lots, err := uc.ListLots(ctx, code, name)
	if err != nil {
		return nil, err
	}
	return inventory.CandidateLots(lots, warehouse), nil
}

// SelectLot resuelve qué lote se usará: el primero FIFO salvo que el operador elija otro índice
// (en ese caso debe confirmar explícitamente).
func (uc *CatalogUseCase) SelectLot(ctx context.Context, code, name, warehouse string, explicitIndex *int, confirmed bool) (entity.StockLot, error) {
	candidates, err := uc.CandidateLots(ctx, code, name, warehouse)
	if err != nil {
		return entity.StockLot{}, err
	}
	return inventory.ResolveChoice(candidates, explicitIndex, confirmed)
}

// ListWarehouses nombres de depósito distintos.
func (uc *CatalogUseCase) ListWarehouses(ctx context.Context) ([]string, error) {
	whs, err := uc.stockRepo.ListWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar depósitos: %w", err)
	}
	return whs, nil
}

// DestinationOptions depósitos posibles para un movimiento desde origin y el sugerido por familia.
func (uc *CatalogUseCase) DestinationOptions(ctx context.Context, family, origin string) ([]string, string, error) {
	whs, err := uc.ListWarehouses(ctx)
	if err != nil {
		return nil, "", err
	}
	options := make([]string, 0, len(whs))
	for _, wh := range whs {
		if origin != "" && inventory.SameName(wh, origin) {
			continue
		}
		options = append(options, wh)
	}
	return options, inventory.SuggestDestination(family, options), nil
}

// LotChoice selección pedida por el operador: un lote concreto (Lot/Expiration),
// un índice de la lista de candidatos, o nada (recomendado FIFO/FEFO).
type LotChoice struct {
	Lot        *string
	Expiration string
	Index      *int
	Confirmed  bool
}

// ResolveLot aplica la regla de confirmación también cuando se nombra el lote directamente.
// Si el lote nombrado no está entre los candidatos (sin stock o inexistente) se devuelve tal cual
// y el motor decide (ErrLotNotFound / ErrInsufficientStock).
func (uc *CatalogUseCase) ResolveLot(ctx context.Context, code, name, warehouse string, choice LotChoice) (entity.StockLot, error) {
	if choice.Lot == nil {
		return uc.SelectLot(ctx, code, name, warehouse, choice.Index, choice.Confirmed)
	}
	key := entity.LotKey{
		Code:       strings.TrimSpace(code),
		Name:       strings.TrimSpace(name),
		Warehouse:  strings.TrimSpace(warehouse),
		Lot:        strings.TrimSpace(*choice.Lot),
		Expiration: strings.TrimSpace(choice.Expiration),
	}
	candidates, err := uc.CandidateLots(ctx, code, name, warehouse)
	if err != nil {
		return entity.StockLot{}, err
	}
	for i, c := range candidates {
		if c.LotKey == key {
			idx := i
			return inventory.ResolveChoice(candidates, &idx, choice.Confirmed)
		}
	}
	return entity.StockLot{LotKey: key}, nil
}
