package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application-level metrics beyond the per-route HTTP metrics that
// fiberprometheus collects.
var (
	// ActiveWebSockets tracks currently open websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shelftalk_active_websockets",
		Help: "Number of currently open websocket connections.",
	})

	// MessagesSent counts chat messages appended, labelled by kind (text/image).
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelftalk_messages_sent_total",
		Help: "Total chat messages appended to conversation logs.",
	}, []string{"kind"})

	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelftalk_redis_errors_total",
		Help: "Total Redis command errors.",
	}, []string{"command"})

	// ReportsFiled counts moderation reports created.
	ReportsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shelftalk_reports_filed_total",
		Help: "Total moderation reports filed.",
	})
)

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for HTTP metrics.
// The instance is shared: fiberprometheus registers its collectors in the
// default registry, which tolerates only one registration per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
