// Package metrics exposes Prometheus collectors for the API and side effects.
package metrics

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talent_server/pkg/apperr"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talent",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "talent",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Latency distribution of HTTP requests.",
		Buckets: []float64{
			0.001, 0.005, 0.01, 0.025,
			0.05, 0.1, 0.25, 0.5,
			1, 2.5, 5, 10,
		},
	}, []string{"route", "method"})

	consultantWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talent",
		Subsystem: "consultant",
		Name:      "writes_total",
		Help:      "Consultant write operations by operation and outcome.",
	}, []string{"op", "outcome"})

	sideEffects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talent",
		Subsystem: "effects",
		Name:      "executed_total",
		Help:      "Side effects executed by kind and outcome.",
	}, []string{"kind", "outcome"})

	realtimeDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "talent",
		Subsystem: "realtime",
		Name:      "dropped_events_total",
		Help:      "Realtime events dropped because a client buffer was full.",
	})

	realtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "talent",
		Subsystem: "realtime",
		Name:      "connected_clients",
		Help:      "Currently connected realtime subscribers.",
	})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveWrite records a consultant create, update or delete.
func ObserveWrite(op string, err error) {
	consultantWrites.WithLabelValues(op, outcome(err)).Inc()
}

// ObserveEffect records one executed side effect.
func ObserveEffect(kind string, err error) {
	sideEffects.WithLabelValues(kind, outcome(err)).Inc()
}

func RealtimeDropped() {
	realtimeDropped.Inc()
}

func SetRealtimeClients(n int) {
	realtimeClients.Set(float64(n))
}

// Middleware records request count and latency keyed by the matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.GetHTTPStatus(err)
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		httpRequests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		httpLatency.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RegisterDBStats exports database/sql pool statistics under name.
func RegisterDBStats(db *sql.DB, name string) error {
	err := prometheus.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
