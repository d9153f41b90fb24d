// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Métriques Prometheus pour le service Progression
var (
	BossAttacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boss_attacks_total",
			Help: "Total number of boss attacks applied",
		},
	)

	BossDefeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boss_defeats_total",
			Help: "Total number of boss defeats",
		},
	)

	DuelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duels_total",
			Help: "Total number of resolved duels",
		},
		[]string{"result"},
	)

	XPGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "xp_granted_total",
			Help: "Total amount of XP granted to actors",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// Metrics structure pour gérer les métriques
type Metrics struct {
	registry *prometheus.Registry
}

// NewMetrics crée une nouvelle instance de metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	// Enregistrer les métriques
	registry.MustRegister(BossAttacksTotal)
	registry.MustRegister(BossDefeatsTotal)
	registry.MustRegister(DuelsTotal)
	registry.MustRegister(XPGrantedTotal)
	registry.MustRegister(HTTPRequestsTotal)
	registry.MustRegister(HTTPRequestDuration)

	logrus.Info("Prometheus metrics initialized")

	return &Metrics{
		registry: registry,
	}
}

// Handler retourne le handler Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware Prometheus pour instrumenter les requêtes HTTP
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
