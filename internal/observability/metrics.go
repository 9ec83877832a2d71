// Package observability holds the Prometheus registry and the metrics the
// HTTP surface and the relay record.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	AuthAttempts    *prometheus.CounterVec
	WSConnections   prometheus.Gauge
	WSDeliveries    *prometheus.CounterVec
	WSMessagesTotal prometheus.Counter
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_auth_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "switchboard_ws_connections",
			Help: "Currently registered relay connections",
		}),
		WSDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_ws_deliveries_total",
				Help: "Per-recipient broadcast deliveries by result",
			},
			[]string{"result"},
		),
		WSMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "switchboard_ws_broadcasts_total",
			Help: "Events broadcast by the relay",
		}),
	}

	reg.MustRegister(m.HTTPRequests, m.AuthAttempts, m.WSConnections, m.WSDeliveries, m.WSMessagesTotal)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) AuthAttempt(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

func (m *Metrics) Broadcast() {
	if m == nil {
		return
	}
	m.WSMessagesTotal.Inc()
}

func (m *Metrics) Delivery(result string) {
	if m == nil {
		return
	}
	m.WSDeliveries.WithLabelValues(result).Inc()
}
