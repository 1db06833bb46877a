// Package metrics holds the Prometheus counters for catalog and replication
// activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeOK        = "ok"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	PiecesCreated *prometheus.CounterVec
	Imports       *prometheus.CounterVec
	ExportSteps   *prometheus.CounterVec
	ExportRuns    *prometheus.CounterVec
}

// New registers the collectors with reg. Use prometheus.NewRegistry in tests
// so repeated construction does not collide in the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PiecesCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "where_pieces_created_total",
				Help: "Pieces written to the local catalog",
			},
			[]string{"kind"},
		),
		Imports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "where_imports_total",
				Help: "Import requests handled, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		ExportSteps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "where_export_steps_total",
				Help: "Single piece pushes to a remote store, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		ExportRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "where_export_runs_total",
				Help: "Space and playset exports, by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}

func (m *Metrics) PieceCreated(kind string) {
	if m == nil {
		return
	}
	m.PiecesCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) Imported(kind, outcome string) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ExportStep(kind, outcome string) {
	if m == nil {
		return
	}
	m.ExportSteps.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ExportRun(op, outcome string) {
	if m == nil {
		return
	}
	m.ExportRuns.WithLabelValues(op, outcome).Inc()
}
