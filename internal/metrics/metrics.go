// Package metrics collects per-run counters and writes them in the
// Prometheus text format for a node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

const namespace = "geomap"

// Metrics holds the counters and gauges for one geomap invocation.
type Metrics struct {
	RowsRead       *prometheus.CounterVec // labels: kind
	RowsSkipped    *prometheus.CounterVec // labels: kind
	Entities       *prometheus.GaugeVec   // labels: kind
	ConvertErrors  *prometheus.CounterVec // labels: kind
	FacilitiesLoad *prometheus.CounterVec // labels: kind
	LastSuccess    *prometheus.GaugeVec   // labels: command

	registry *prometheus.Registry
}

// New creates Metrics registered with a fresh registry, so repeated calls
// never collide.
func New() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convert_rows_total",
			Help:      "Data rows read from each extract.",
		}, []string{"kind"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convert_rows_skipped_total",
			Help:      "Rows dropped because their coordinates were missing.",
		}, []string{"kind"}),
		Entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "convert_entities",
			Help:      "Distinct identifiers in the last written document.",
		}, []string{"kind"}),
		ConvertErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convert_errors_total",
			Help:      "Conversions aborted by a fatal error.",
		}, []string{"kind"}),
		FacilitiesLoad: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_facilities_loaded_total",
			Help:      "Facilities upserted into the store.",
		}, []string{"kind"}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of each command.",
		}, []string{"command"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsSkipped,
		m.Entities,
		m.ConvertErrors,
		m.FacilitiesLoad,
		m.LastSuccess,
	)
	return m
}

// ObserveConversion records the outcome of one converter.
func (m *Metrics) ObserveConversion(kind string, rows, skipped, entities int) {
	m.RowsRead.WithLabelValues(kind).Add(float64(rows))
	m.RowsSkipped.WithLabelValues(kind).Add(float64(skipped))
	m.Entities.WithLabelValues(kind).Set(float64(entities))
}

// Succeeded stamps command as having completed now.
func (m *Metrics) Succeeded(command string) {
	m.LastSuccess.WithLabelValues(command).SetToCurrentTime()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path. The file is written to a
// temporary sibling first and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "metrics: write %s", path)
	}
	return nil
}
