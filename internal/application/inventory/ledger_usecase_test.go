package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type stubPDF struct {
	title   string
	entries int
}

func (s *stubPDF) GenerateLedgerPDF(_ context.Context, title string, entries []*entity.LedgerEntry) ([]byte, error) {
	s.title = title
	s.entries = len(entries)
	return []byte("%PDF-1.3"), nil
}

func seedLedger(t *testing.T, store *memStore, n int) {
	t.Helper()
	eng := appinv.NewMutationEngine(store, appinv.EngineConfig{}, appinv.EngineDeps{})
	for i := 0; i < n; i++ {
		_, err := eng.ApplyDeduction(context.Background(), appinv.DeductionInput{
			Code: code, Name: name, Warehouse: "Casa Central", Lot: "L1", Quantity: dec("1"),
		})
		require.NoError(t, err)
	}
}

func TestLedgerRecent_MasRecientePrimero(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "100"))
	seedLedger(t, store, 3)
	uc := appinv.NewLedgerUseCase(memLedgerRepo{store}, nil)

	list, err := uc.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Greater(t, list[0].ID, list[1].ID)
	assert.True(t, list[0].QuantityAfterLot.Equal(dec("97")))
}

func TestLedgerRecent_LimiteMaximo(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "1000"))
	seedLedger(t, store, appinv.MaxLedgerLimit+5)
	uc := appinv.NewLedgerUseCase(memLedgerRepo{store}, nil)

	list, err := uc.Recent(context.Background(), 10000)
	require.NoError(t, err)
	assert.Len(t, list, appinv.MaxLedgerLimit)
}

func TestLedgerRecentByArticle(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	seedLedger(t, store, 2)
	uc := appinv.NewLedgerUseCase(memLedgerRepo{store}, nil)

	list, err := uc.RecentByArticle(context.Background(), code, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = uc.RecentByArticle(context.Background(), "otro", 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.RecentByArticle(context.Background(), " ", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedgerRenderPDF(t *testing.T) {
	store := newMemStore(row("Casa Central", "L1", "", "10"))
	seedLedger(t, store, 2)
	pdf := &stubPDF{}
	uc := appinv.NewLedgerUseCase(memLedgerRepo{store}, pdf)

	out, err := uc.RenderPDF(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(out))
	assert.Equal(t, 2, pdf.entries)
	assert.NotEmpty(t, pdf.title)
}
