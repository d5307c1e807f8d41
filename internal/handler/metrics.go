package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the serve-mode collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	bills    prometheus.Counter
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the billgen collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billgen_bills_total",
			Help: "Bills generated over HTTP.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billgen_requests_total",
			Help: "Generation requests by response code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "billgen_generate_seconds",
			Help:    "Time spent generating one archive.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.bills, m.requests, m.duration)
	return m
}

// Middleware records the outcome of every request it wraps.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		m.duration.Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(strconv.Itoa(c.Response().Status)).Inc()
		return err
	}
}

// AddBills counts bills written to a response.
func (m *Metrics) AddBills(n int) {
	m.bills.Add(float64(n))
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
