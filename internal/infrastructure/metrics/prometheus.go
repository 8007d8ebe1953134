package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ appinventory.MutationObserver = (*MutationMetrics)(nil)

// MutationMetrics cuenta bajas/movimientos por resultado y mide su duración.
type MutationMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMutationMetrics crea y registra las métricas en reg (prometheus.DefaultRegisterer en producción).
func NewMutationMetrics(reg prometheus.Registerer) *MutationMetrics {
	m := &MutationMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_mutations_total",
				Help: "Bajas y movimientos de stock por tipo y resultado",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stock_mutation_duration_seconds",
				Help:    "Duración de bajas y movimientos (validación, transacción y commit)",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "outcome"},
		),
	}
	reg.MustRegister(m.total, m.duration)
	return m
}

// ObserveMutation implementa inventory.MutationObserver.
func (m *MutationMetrics) ObserveMutation(kind, outcome string, elapsed time.Duration) {
	m.total.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind, outcome).Observe(elapsed.Seconds())
}
