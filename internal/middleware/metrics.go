package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kulan_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// UploadBytes counts bytes accepted through multipart uploads.
	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kulan_upload_bytes_total",
		Help: "Total number of bytes stored from multipart uploads",
	})

	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kulan_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
