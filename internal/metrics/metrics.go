// Package metrics records scan counters in a private Prometheus registry.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "idlelb"

// Metric query outcomes
const (
	QueryOK    = "ok"
	QueryEmpty = "empty"
	QueryError = "error"
)

// Recorder holds the collectors for one run
type Recorder struct {
	registry *prometheus.Registry

	metricQueries     *prometheus.CounterVec
	classifyInFlight  prometheus.Gauge
	classifications   *prometheus.CounterVec
	listingErrors     *prometheus.CounterVec
	deletions         *prometheus.CounterVec
	credentialExpired prometheus.Counter
}

// New creates a Recorder with its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		metricQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cloudwatch",
				Name:      "metric_queries_total",
				Help:      "CloudWatch metric queries by outcome",
			},
			[]string{"outcome"},
		),
		classifyInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "classifications_in_flight",
				Help:      "Load balancer classifications currently running",
			},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "classifications_total",
				Help:      "Classified load balancers by kind and state",
			},
			[]string{"kind", "state"},
		),
		listingErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "listing_errors_total",
				Help:      "Regions that failed to list by kind",
			},
			[]string{"kind"},
		),
		deletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "remediation",
				Name:      "deletions_total",
				Help:      "Delete calls by kind and result",
			},
			[]string{"kind", "result"},
		),
		credentialExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "credentials",
				Name:      "expired_total",
				Help:      "Region scans refused because account credentials had expired",
			},
		),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) MetricQuery(outcome string) {
	if r == nil {
		return
	}
	r.metricQueries.WithLabelValues(outcome).Inc()
}

// ClassifyStarted and ClassifyDone bracket one governed classification
func (r *Recorder) ClassifyStarted() {
	if r == nil {
		return
	}
	r.classifyInFlight.Inc()
}

func (r *Recorder) ClassifyDone() {
	if r == nil {
		return
	}
	r.classifyInFlight.Dec()
}

func (r *Recorder) Classified(kind, state string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(kind, state).Inc()
}

func (r *Recorder) ListingError(kind string) {
	if r == nil {
		return
	}
	r.listingErrors.WithLabelValues(kind).Inc()
}

func (r *Recorder) Deletion(kind string, succeeded bool) {
	if r == nil {
		return
	}
	result := "success"
	if !succeeded {
		result = "failure"
	}
	r.deletions.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) CredentialExpired() {
	if r == nil {
		return
	}
	r.credentialExpired.Inc()
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
