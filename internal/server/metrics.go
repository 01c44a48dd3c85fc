package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

type metrics struct {
	runs       *prometheus.CounterVec
	rejections *prometheus.CounterVec
	duration   prometheus.Histogram
	fallbacks  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfoutline_runs_total",
			Help: "Outline runs by outcome.",
		}, []string{"status"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfoutline_rejections_total",
			Help: "Candidates rejected, by pipeline stage.",
		}, []string{"stage"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdfoutline_run_duration_seconds",
			Help:    "Wall time of outline runs.",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "pdfoutline_refine_fallbacks_total",
			Help: "Refinement batches that fell back to the local rule.",
		}),
	}
}

func (m *metrics) observe(d outline.Diagnostics) {
	for stage, n := range d.Rejections() {
		m.rejections.WithLabelValues(stage).Add(float64(n))
	}
	if n := d.Count(outline.RefinementServiceError); n > 0 {
		m.fallbacks.Add(float64(n))
	}
}
