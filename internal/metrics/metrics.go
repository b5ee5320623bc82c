// Package metrics exposes Prometheus counters for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "risknews"

// Outcome labels for feed requests.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the pipeline metrics. A nil Recorder ignores every call.
type Recorder struct {
	registry      *prometheus.Registry
	itemsDropped  *prometheus.CounterVec
	feedRequests  *prometheus.CounterVec
	itemsSeen     prometheus.Counter
	records       prometheus.Counter
	runs          prometheus.Counter
	runDuration   prometheus.Histogram
	lastRunRecord prometheus.Gauge
}

// NewRecorder registers all metrics on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		itemsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_dropped_total",
			Help:      "Feed items dropped, by stage and failure kind",
		}, []string{"stage", "kind"}),
		feedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Feed queries by outcome",
		}, []string{"outcome"}),
		itemsSeen: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_seen_total",
			Help:      "Feed items entering the pipeline",
		}),
		records: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Output records appended",
		}),
		runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
		}),
		lastRunRecord: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Records emitted by the most recent run",
		}),
	}
}

// FeedRequest counts one feed query.
func (r *Recorder) FeedRequest(outcome string) {
	if r == nil {
		return
	}
	r.feedRequests.WithLabelValues(outcome).Inc()
}

// ItemSeen counts one feed item entering the pipeline.
func (r *Recorder) ItemSeen() {
	if r == nil {
		return
	}
	r.itemsSeen.Inc()
}

// ItemDropped counts one item removed at a stage.
func (r *Recorder) ItemDropped(stage, kind string) {
	if r == nil {
		return
	}
	r.itemsDropped.WithLabelValues(stage, kind).Inc()
}

// RecordEmitted counts one appended record.
func (r *Recorder) RecordEmitted() {
	if r == nil {
		return
	}
	r.records.Inc()
}

// RunFinished observes a completed run.
func (r *Recorder) RunFinished(elapsed time.Duration, records int) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.runDuration.Observe(elapsed.Seconds())
	r.lastRunRecord.Set(float64(records))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
