// Package metrics exposes Prometheus metrics for HTTP traffic and reminder sweeps.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "billing"

// Metrics owns a private registry and the application collectors
type Metrics struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	notifications     *prometheus.CounterVec
	channelDeliveries *prometheus.CounterVec
	sweeps            *prometheus.CounterVec
	sweepDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them together with the Go and process collectors
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "notifications_emitted_total",
			Help:      "Notifications created by reminder sweeps.",
		}, []string{"job"}),
		channelDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "channel_deliveries_total",
			Help:      "Delivery attempts per channel and result.",
		}, []string{"channel", "result"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sweeps_total",
			Help:      "Completed reminder sweeps by job and outcome.",
		}, []string{"job", "outcome"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sweep_duration_seconds",
			Help:      "Reminder sweep run time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.notifications,
		m.channelDeliveries,
		m.sweeps,
		m.sweepDuration,
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      m,
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Println implements promhttp.Logger
func (m *Metrics) Println(v ...interface{}) {
	m.logger.Error("metrics handler error", zap.String("error", fmt.Sprint(v...)))
}

// Middleware records request count and latency labelled by the matched chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// NotificationEmitted counts one notification created by job
func (m *Metrics) NotificationEmitted(job string) {
	m.notifications.WithLabelValues(job).Inc()
}

// ChannelResult counts one delivery attempt
func (m *Metrics) ChannelResult(channel string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.channelDeliveries.WithLabelValues(channel, result).Inc()
}

// SweepCompleted records a finished sweep. failed is true when the sweep hit any error.
func (m *Metrics) SweepCompleted(job string, took time.Duration, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.sweeps.WithLabelValues(job, outcome).Inc()
	m.sweepDuration.WithLabelValues(job).Observe(took.Seconds())
}
