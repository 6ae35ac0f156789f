// Package metrics holds the prometheus collectors of the notice board.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	FeedSubscriptions  prometheus.Gauge
	FeedEmissions      prometheus.Counter
	ViewsRecorded      prometheus.Counter
	ViewRecordFailures prometheus.Counter
	DirectoryBatches   prometheus.Counter
	DirectoryFailures  prometheus.Counter
	DirectoryCacheHits prometheus.Counter
	DetailSessionsOpen prometheus.Gauge
	AttachmentFailures *prometheus.CounterVec
	registry           *prometheus.Registry
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		FeedSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "noticeboard", Name: "feed_subscriptions",
			Help: "Live notice feed subscriptions currently open.",
		}),
		FeedEmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "feed_emissions_total",
			Help: "Filtered notice snapshots delivered to feed subscribers.",
		}),
		ViewsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "views_recorded_total",
			Help: "View events written to the view ledger.",
		}),
		ViewRecordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "view_record_failures_total",
			Help: "View events that failed to persist.",
		}),
		DirectoryBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "directory_batches_total",
			Help: "Batched directory lookups dispatched.",
		}),
		DirectoryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "directory_failures_total",
			Help: "Batched directory lookups that failed.",
		}),
		DirectoryCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "directory_cache_hits_total",
			Help: "Directory profiles served from the name cache.",
		}),
		DetailSessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "noticeboard", Name: "detail_sessions",
			Help: "Notice detail sessions currently open.",
		}),
		AttachmentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noticeboard", Name: "attachment_failures_total",
			Help: "Blob store failures by operation.",
		}, []string{"op"}),
		registry: reg,
	}
	reg.MustRegister(
		m.FeedSubscriptions, m.FeedEmissions,
		m.ViewsRecorded, m.ViewRecordFailures,
		m.DirectoryBatches, m.DirectoryFailures, m.DirectoryCacheHits,
		m.DetailSessionsOpen, m.AttachmentFailures,
	)
	return m
}

// NewForTest builds collectors on a private registry.
func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
