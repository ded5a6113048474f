package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "receipts"

// Recorder collects per-run counters on a private registry so a batch run can
// dump them as a node_exporter textfile. A nil *Recorder ignores every call.
type Recorder struct {
	registry *prometheus.Registry

	documents   *prometheus.CounterVec
	records     *prometheus.CounterVec
	extractTime *prometheus.HistogramVec
	lookups     *prometheus.CounterVec
	rows        *prometheus.GaugeVec
	spend       *prometheus.GaugeVec
	lastRun     prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Receipt documents processed, by store and outcome.",
		}, []string{"store", "status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Line items extracted, by store.",
		}, []string{"store"}),
		extractTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_seconds",
			Help:      "Time spent extracting and assembling one document.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"store"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Item-code lookups, by store and result.",
		}, []string{"store", "result"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collated_rows",
			Help:      "Rows in the last collated report, by store.",
		}, []string{"store"}),
		spend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collated_spend",
			Help:      "Total cost in the last collated report, by store.",
		}, []string{"store"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.documents, r.records, r.extractTime, r.lookups, r.rows, r.spend, r.lastRun)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Document records one parsed document; status is "ok" or "failed".
func (r *Recorder) Document(store, status string, records int, d time.Duration) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(store, status).Inc()
	r.records.WithLabelValues(store).Add(float64(records))
	r.extractTime.WithLabelValues(store).Observe(d.Seconds())
}

func (r *Recorder) Lookups(store string, found, missed int) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(store, "found").Add(float64(found))
	r.lookups.WithLabelValues(store, "missed").Add(float64(missed))
}

func (r *Recorder) Collated(store string, rows int, spend float64) {
	if r == nil {
		return
	}
	r.rows.WithLabelValues(store).Set(float64(rows))
	r.spend.WithLabelValues(store).Set(spend)
}

// Finish stamps the run time and, when path is set, writes the textfile.
func (r *Recorder) Finish(path string, now time.Time) error {
	if r == nil {
		return nil
	}
	r.lastRun.Set(float64(now.Unix()))
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
