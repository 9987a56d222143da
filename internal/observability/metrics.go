package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob is the Pushgateway job label for this batch job.
const pushJob = "accident_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for one ETL run.
// A batch job has no scrape endpoint, so metrics live in their own registry
// and are pushed to a Pushgateway when the run ends.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded  prometheus.Counter
	SummaryRows *prometheus.GaugeVec // labels: summary

	// Stage timing, labels: stage={extract,transform,aggregate,load:<sink>}.
	StageDuration *prometheus.HistogramVec

	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates all pipeline metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "accident_etl",
			Name:      "rows_loaded_total",
			Help:      "Rows read from the input dataset after any input sampling.",
		}),
		SummaryRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "accident_etl",
			Name:      "summary_rows",
			Help:      "Rows in each aggregated summary table.",
		}, []string{"summary"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accident_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accident_etl",
			Name:      "last_run_success",
			Help:      "1 if the last run completed, 0 if it failed.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accident_etl",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsLoaded,
		m.SummaryRows,
		m.StageDuration,
		m.LastRunSuccess,
		m.LastRunTimestamp,
	)

	return m
}

// Push sends every registered metric to the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if err := push.New(url, pushJob).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
