package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// memStore simula las tablas stock e historial_bajas. Run serializa las transacciones
// (equivalente a los bloqueos de fila sobre un único lote) y restaura el estado si fn falla.
type memStore struct {
	mu         sync.Mutex
	rows       []entity.StockLot
	ledger     []*entity.LedgerEntry
	failAppend error
	runs       int
}

func newMemStore(rows ...entity.StockLot) *memStore {
	s := &memStore{}
	for _, r := range rows {
		if r.QuantityText == "" {
			r.QuantityText = inventory.FormatQuantity(r.Quantity)
		}
		r.Quantity = inventory.ParseQuantity(r.QuantityText)
		s.rows = append(s.rows, r)
	}
	return s
}

func (s *memStore) Run(ctx context.Context, fn func(context.Context, repository.StockLotRepository, repository.LedgerRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	rowsSnap := append([]entity.StockLot(nil), s.rows...)
	ledgerSnap := append([]*entity.LedgerEntry(nil), s.ledger...)
	if err := fn(ctx, memStockRepo{s}, memLedgerRepo{s}); err != nil {
		s.rows = rowsSnap
		s.ledger = ledgerSnap
		return err
	}
	return nil
}

func (s *memStore) quantity(key entity.LotKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.LotKey == key {
			return r.QuantityText, true
		}
	}
	return "", false
}

func (s *memStore) total() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t []entity.StockLot
	t = append(t, s.rows...)
	return inventory.FormatQuantity(inventory.ComputeTotals(t, "", "").Article)
}

func (s *memStore) entries() []*entity.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.LedgerEntry(nil), s.ledger...)
}

func (s *memStore) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// memStockRepo asume que el llamador tiene s.mu (dentro de Run) o usa los métodos de lectura,
// que toman el lock por su cuenta cuando se llaman fuera de una transacción.
type memStockRepo struct{ s *memStore }

func (r memStockRepo) SearchRows(_ context.Context, query string, limit int) ([]entity.StockLot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.StockLot
	for _, row := range r.s.rows {
		if row.Code == query || strings.Contains(strings.ToLower(row.Name), strings.ToLower(query)) {
			out = append(out, row)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r memStockRepo) ListByItem(_ context.Context, code, name string) ([]entity.StockLot, error) {
	return r.s.byItem(code, name), nil
}

func (r memStockRepo) ListWarehouses(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, row := range r.s.rows {
		if _, ok := seen[row.Warehouse]; !ok {
			seen[row.Warehouse] = struct{}{}
			out = append(out, row.Warehouse)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r memStockRepo) GetForUpdate(_ context.Context, key entity.LotKey) (*entity.StockLot, error) {
	for _, row := range r.s.rows {
		if row.LotKey == key {
			cp := row
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memStockRepo) UpdateQuantity(_ context.Context, key entity.LotKey, quantityText string) error {
	for i := range r.s.rows {
		if r.s.rows[i].LotKey == key {
			r.s.rows[i].QuantityText = quantityText
			r.s.rows[i].Quantity = inventory.ParseQuantity(quantityText)
			return nil
		}
	}
	return errors.New("fila inexistente")
}

func (r memStockRepo) Insert(_ context.Context, lot *entity.StockLot) error {
	row := *lot
	row.Quantity = inventory.ParseQuantity(row.QuantityText)
	r.s.rows = append(r.s.rows, row)
	return nil
}

// byItem se usa dentro de Run (lock ya tomado) desde ListByItem; el catálogo lo llama fuera.
func (s *memStore) byItem(code, name string) []entity.StockLot {
	var out []entity.StockLot
	for _, row := range s.rows {
		if row.Code == code && row.Name == name {
			out = append(out, row)
		}
	}
	return out
}

type memLedgerRepo struct{ s *memStore }

func (r memLedgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	if r.s.failAppend != nil {
		return r.s.failAppend
	}
	e.ID = int64(len(r.s.ledger) + 1)
	r.s.ledger = append(r.s.ledger, e)
	return nil
}

func (r memLedgerRepo) Recent(_ context.Context, limit int) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.recent("", limit), nil
}

func (r memLedgerRepo) RecentByArticle(_ context.Context, code string, limit int) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.recent(code, limit), nil
}

func (s *memStore) recent(code string, limit int) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for i := len(s.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if code == "" || s.ledger[i].Code == code {
			out = append(out, s.ledger[i])
		}
	}
	return out
}

// spies de los puertos opcionales

type spyPublisher struct {
	mu      sync.Mutex
	entries []*entity.LedgerEntry
	err     error
}

func (p *spyPublisher) PublishLedgerEntry(_ context.Context, e *entity.LedgerEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return p.err
}

// spyCache modela las generaciones del caché real: el token de Get lleva la
// generación y Set con un token viejo no queda visible.
type spyCache struct {
	mu          sync.Mutex
	gen         int
	items       map[string][]entity.ItemSummary
	invalidated int
}

func newSpyCache() *spyCache { return &spyCache{items: map[string][]entity.ItemSummary{}} }

func (c *spyCache) Get(_ context.Context, query string, limit int) ([]entity.ItemSummary, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := fmt.Sprintf("%d|%s|%d", c.gen, query, limit)
	v, ok := c.items[token]
	return v, token, ok
}

func (c *spyCache) Set(_ context.Context, token string, items []entity.ItemSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		return
	}
	c.items[token] = items
}

func (c *spyCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.gen++
	return nil
}

type spyObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *spyObserver) ObserveMutation(kind, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, kind+":"+outcome)
}
