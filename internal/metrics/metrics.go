// Package metrics provides Prometheus metrics for the modeler
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the modeler
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Annotation metrics
	GroupAppliesTotal  *prometheus.CounterVec
	LinksTotal         *prometheus.CounterVec
	ModelBuildsTotal   *prometheus.CounterVec
	ModelBuildDuration prometheus.Histogram

	// Store metrics
	StoreOperationsTotal *prometheus.CounterVec
	GroupsStored         prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	m := &Metrics{}

	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modeler_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modeler_http_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.GroupAppliesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modeler_group_applies_total",
			Help: "Total number of annotation group replays against a model",
		},
		[]string{"status"},
	)

	m.LinksTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modeler_dimension_links_total",
			Help: "Total number of shared dimension links",
		},
		[]string{"shared_dimension", "status"},
	)

	m.ModelBuildsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modeler_model_builds_total",
			Help: "Total number of model builds",
		},
		[]string{"status"},
	)

	m.ModelBuildDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "modeler_model_build_duration_seconds",
			Help:    "Duration of model builds in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	m.StoreOperationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modeler_store_operations_total",
			Help: "Total number of metadata store operations",
		},
		[]string{"operation", "status"},
	)

	m.GroupsStored = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "modeler_groups_stored",
			Help: "Number of annotation groups in the metadata store",
		},
	)

	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records one API request
func (m *Metrics) RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, httpStatus(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func httpStatus(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// RecordGroupApply records the outcome of a group replay
func (m *Metrics) RecordGroupApply(err error) {
	m.GroupAppliesTotal.WithLabelValues(status(err)).Inc()
}

// RecordLink records the outcome of linking a shared dimension
func (m *Metrics) RecordLink(shared string, err error) {
	m.LinksTotal.WithLabelValues(shared, status(err)).Inc()
}

// RecordModelBuild records a model build
func (m *Metrics) RecordModelBuild(duration time.Duration, err error) {
	m.ModelBuildsTotal.WithLabelValues(status(err)).Inc()
	m.ModelBuildDuration.Observe(duration.Seconds())
}

// RecordStoreOperation records a metadata store operation
func (m *Metrics) RecordStoreOperation(operation string, err error) {
	m.StoreOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

// SetGroupsStored updates the stored group count
func (m *Metrics) SetGroupsStored(n int) {
	m.GroupsStored.Set(float64(n))
}
