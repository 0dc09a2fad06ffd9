// Package metrics wires Prometheus collectors for the HTTP surface and the
// case backlog gauges the dashboard mirrors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	openCases       prometheus.Gauge
	overdueCases    prometheus.Gauge
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privacydesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "privacydesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		openCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "privacydesk",
			Name:      "open_cases",
			Help:      "Requests not yet in a terminal status.",
		}),
		overdueCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "privacydesk",
			Name:      "overdue_cases",
			Help:      "Requests past their due date and not done.",
		}),
	}
	registry.MustRegister(c.requestsTotal, c.requestDuration, c.openCases, c.overdueCases)
	return c
}

func (c *Collector) Record(method string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// SetCaseGauges refreshes the backlog gauges from the latest dashboard
// aggregates.
func (c *Collector) SetCaseGauges(open, overdue int) {
	c.openCases.Set(float64(open))
	c.overdueCases.Set(float64(overdue))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
