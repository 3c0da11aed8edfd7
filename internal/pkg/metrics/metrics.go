package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tiktok_bot"

// Outcome labels of tiktok_bot_requests_total.
const (
	OutcomeUploaded    = "uploaded"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeTooLarge    = "too_large"
	OutcomeUploadError = "upload_failed"
	OutcomeStatusError = "status_failed"
	OutcomeNoMatch     = "no_match"
	OutcomeRateLimited = "rate_limited"
)

// Metrics holds the bot's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	downloadBytes   prometheus.Histogram
	pipelineSeconds prometheus.Histogram
	activeDownloads prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Incoming messages by outcome.",
		}, []string{"outcome"}),
		downloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_bytes",
			Help:      "Size of downloaded videos.",
			Buckets:   prometheus.ExponentialBuckets(256*1024, 2, 10),
		}),
		pipelineSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_seconds",
			Help:      "Time from request to the terminal message.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		activeDownloads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_downloads",
			Help:      "Downloads currently holding a worker slot.",
		}),
	}

	m.Registry.MustRegister(
		m.requests,
		m.downloadBytes,
		m.pipelineSeconds,
		m.activeDownloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// The methods below accept a nil receiver so callers can run without metrics.

func (m *Metrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDownloadSize(size int64) {
	if m == nil {
		return
	}
	m.downloadBytes.Observe(float64(size))
}

func (m *Metrics) ObservePipeline(d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineSeconds.Observe(d.Seconds())
}

// DownloadStarted increments the active gauge and returns the matching decrement.
func (m *Metrics) DownloadStarted() (done func()) {
	if m == nil {
		return func() {}
	}
	m.activeDownloads.Inc()
	return m.activeDownloads.Dec
}
