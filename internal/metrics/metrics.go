// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unknownCommand replaces unsupported command ids so clients cannot grow
// the label set
const unknownCommand = "unknown"

// Metrics holds the bridge collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	// CommandsTotal counts translated records by command id and outcome
	CommandsTotal *prometheus.CounterVec

	// JobsTotal counts finished print jobs by status and source
	JobsTotal *prometheus.CounterVec

	// JobDuration records end-to-end job latency
	JobDuration *prometheus.HistogramVec

	// HTTPRequestDuration records API latency per route
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "epos_bridge_commands_total",
				Help: "Command records processed, by command id and outcome.",
			},
			[]string{"command", "outcome"},
		),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "epos_bridge_jobs_total",
				Help: "Print jobs finished, by status and source.",
			},
			[]string{"status", "source"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "epos_bridge_job_duration_seconds",
				Help:    "Time from job receipt to the printer accepting the data.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "epos_bridge_http_request_duration_seconds",
				Help:    "HTTP API latency by method, route and status code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CommandsTotal,
		m.JobsTotal,
		m.JobDuration,
		m.HTTPRequestDuration,
	)
	return m
}

// ObserveCommand counts one record outcome. supported says whether the
// command id is a known one; unknown ids share a single label value.
func (m *Metrics) ObserveCommand(command string, supported bool, outcome string) {
	if !supported {
		command = unknownCommand
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// ObserveJob counts one finished job and records its duration
func (m *Metrics) ObserveJob(status, source string, seconds float64) {
	m.JobsTotal.WithLabelValues(status, source).Inc()
	m.JobDuration.WithLabelValues(source).Observe(seconds)
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
