package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sql2csv"

// Recorder holds the metrics of one export run. A one-shot process has no
// scrape endpoint, so the registry is written to a file for the node
// exporter's textfile collector instead.
type Recorder struct {
	registry    *prometheus.Registry
	rows        prometheus.Counter
	bytes       prometheus.Counter
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
	failures    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_exported_total",
			Help:      "Rows written to the output file.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written to the output file.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Wall-clock duration of the last export.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful export.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Failed exports by error kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.rows, r.bytes, r.duration, r.lastSuccess, r.failures)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Success(rows, bytes int64, elapsed time.Duration, at time.Time) {
	r.observe(rows, bytes, elapsed)
	r.lastSuccess.Set(float64(at.Unix()))
}

func (r *Recorder) Failure(kind string, rows, bytes int64, elapsed time.Duration) {
	r.observe(rows, bytes, elapsed)
	r.failures.WithLabelValues(kind).Inc()
}

func (r *Recorder) observe(rows, bytes int64, elapsed time.Duration) {
	r.rows.Add(float64(rows))
	r.bytes.Add(float64(bytes))
	r.duration.Set(elapsed.Seconds())
}

// WriteFile writes the registry in text exposition format. The file is
// replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
