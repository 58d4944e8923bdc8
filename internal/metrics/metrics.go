// Package metrics exposes the Prometheus counters, gauges, and histograms
// the ambient stack commits to (spec.md §2.2/§9 "observability is ambient,
// not a Non-goal"): worker pool occupancy, per-stage duration, progress-bus
// publish outcomes, live WebSocket connection count, and backpressure
// drops.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workerPoolActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "youtube_bookmarks_worker_pool_active",
		Help: "Number of video:process tasks currently being worked.",
	})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "youtube_bookmarks_enrichment_stage_duration_seconds",
		Help:    "Duration of a single enrichment pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	progressPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "youtube_bookmarks_progress_publish_total",
		Help: "Progress bus publish attempts, partitioned by outcome.",
	}, []string{"outcome"})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "youtube_bookmarks_ws_connections",
		Help: "Currently open authenticated WebSocket connections.",
	})

	backpressureDropTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bookmarks_ws_backpressure_drop_total",
		Help: "Non-terminal progress frames dropped under WebSocket backpressure.",
	})
)

// Handler serves the Prometheus exposition format for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordStageStart() func(stage string) {
	workerPoolActive.Inc()
	start := time.Now()
	return func(stage string) {
		workerPoolActive.Dec()
		stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func RecordPublish(success bool) {
	outcome := "ok"
	if !success {
		outcome = "failed"
	}
	progressPublishTotal.WithLabelValues(outcome).Inc()
}

// RecordWSConnected adjusts the live connection gauge by delta (+1 on
// connect, -1 on disconnect).
func RecordWSConnected(delta int) {
	wsConnections.Add(float64(delta))
}

func RecordBackpressureDrop() {
	backpressureDropTotal.Inc()
}
