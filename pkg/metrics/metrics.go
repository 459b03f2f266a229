// Package metrics holds the Prometheus collectors of the statement pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "statement_extractor"

// Metrics groups the pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Documents    *prometheus.CounterVec
	Transactions *prometheus.CounterVec
	DroppedRows  *prometheus.CounterVec
	Categories   *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	InboxPending prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry, so several instances
// can live in one process (tests, batch runs).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Processed documents by detected bank and outcome.",
		}, []string{"bank", "outcome"}),
		Transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Extracted transactions by bank.",
		}, []string{"bank"}),
		DroppedRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Table rows skipped during extraction by bank and reason.",
		}, []string{"bank", "reason"}),
		Categories: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "categorized_transactions_total",
			Help:      "Categorized transactions by category.",
		}, []string{"category"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Time spent processing one document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		InboxPending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inbox_pending",
			Help:      "Documents waiting in the inbox at the last sweep.",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveDocument records one processed document.
func (m *Metrics) ObserveDocument(bank, outcome string, seconds float64) {
	if m == nil {
		return
	}
	if bank == "" {
		bank = "unknown"
	}
	m.Documents.WithLabelValues(bank, outcome).Inc()
	m.Duration.WithLabelValues(outcome).Observe(seconds)
}

// ObserveTransactions records extracted and dropped row counts.
func (m *Metrics) ObserveTransactions(bank string, extracted int, dropped map[string]int) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(bank).Add(float64(extracted))
	for reason, n := range dropped {
		m.DroppedRows.WithLabelValues(bank, reason).Add(float64(n))
	}
}

// ObserveCategory records one categorized transaction.
func (m *Metrics) ObserveCategory(category string) {
	if m == nil {
		return
	}
	m.Categories.WithLabelValues(category).Inc()
}

// SetInboxPending records the inbox backlog.
func (m *Metrics) SetInboxPending(n int) {
	if m == nil {
		return
	}
	m.InboxPending.Set(float64(n))
}
