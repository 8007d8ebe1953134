package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// maxDate ordena al final los vencimientos vacíos o que no parsean.
var maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Formatos aceptados para VENCIMIENTO: ISO primero, luego día/mes/año.
var expirationLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
}

// ParseExpiration interpreta un vencimiento; ok es false si está vacío o no parsea.
func ParseExpiration(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range expirationLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func expirationSortKey(text string) time.Time {
	if t, ok := ParseExpiration(text); ok {
		return t
	}
	return maxDate
}

// OrderByFifoFefo ordena los lotes por vencimiento ascendente (sin fecha al final)
// y desempata por identificador de lote. No modifica el slice recibido.
func OrderByFifoFefo(lots []entity.StockLot) []entity.StockLot {
	out := make([]entity.StockLot, len(lots))
	copy(out, lots)
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := expirationSortKey(out[i].Expiration), expirationSortKey(out[j].Expiration)
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return out[i].Lot < out[j].Lot
	})
	return out
}

// CandidateLots filtra los lotes de un depósito con cantidad > 0, ya en orden FIFO/FEFO.
// Es el conjunto entre el que el operador elige.
func CandidateLots(lots []entity.StockLot, warehouse string) []entity.StockLot {
	wh := strings.TrimSpace(warehouse)
	var out []entity.StockLot
	for _, l := range lots {
		if l.Warehouse != wh || !l.Quantity.IsPositive() {
			continue
		}
		out = append(out, l)
	}
	return OrderByFifoFefo(out)
}

// ResolveChoice devuelve el lote a usar. Sin índice explícito se usa el recomendado (índice 0).
// Elegir otro lote cuando hay más de un candidato exige confirmedOverride.
func ResolveChoice(ordered []entity.StockLot, explicitIndex *int, confirmedOverride bool) (entity.StockLot, error) {
	if len(ordered) == 0 {
		return entity.StockLot{}, domain.ErrLotNotFound
	}
	if explicitIndex == nil {
		return ordered[0], nil
	}
	idx := *explicitIndex
	if idx < 0 || idx >= len(ordered) {
		return entity.StockLot{}, domain.ErrLotNotFound
	}
	if idx != 0 && len(ordered) > 1 && !confirmedOverride {
		return entity.StockLot{}, domain.ErrFifoOverrideNotConfirmed
	}
	return ordered[idx], nil
}
