package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y el error se propaga sin cambios; si no, Commit.
// Los fallos de infraestructura que abortan la tx (lock timeout, deadlock, serialización)
// se devuelven como domain.ErrTransactionAborted.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		stockRepo repository.StockLotRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// LedgerPublisher publica un registro ya confirmado para consumidores externos (auditoría, reportes).
type LedgerPublisher interface {
	PublishLedgerEntry(ctx context.Context, entry *entity.LedgerEntry) error
}

// SearchCache guarda resultados del buscador de artículos. Invalidate se llama tras cada commit.
//
// Get devuelve además un token atado a la generación vigente al momento de la lectura;
// Set debe recibir ese mismo token, así un resultado leído antes de una invalidación
// nunca queda visible después de ella. Un token vacío hace que Set no guarde nada.
type SearchCache interface {
	Get(ctx context.Context, query string, limit int) (items []entity.ItemSummary, token string, hit bool)
	Set(ctx context.Context, token string, items []entity.ItemSummary)
	Invalidate(ctx context.Context) error
}

// MutationObserver recibe el resultado de cada baja/movimiento (métricas).
type MutationObserver interface {
	ObserveMutation(kind, outcome string, elapsed time.Duration)
}

// LedgerPDFGenerator genera la representación imprimible del historial.
type LedgerPDFGenerator interface {
	GenerateLedgerPDF(ctx context.Context, title string, entries []*entity.LedgerEntry) ([]byte, error)
}
