// internal/handlers/health_handler.go
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
	"progression/internal/database"
)

// Constantes pour les status de santé
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthStatusDegraded  = "degraded"
)

// HealthHandler gère les requêtes de santé du service
type HealthHandler struct {
	config  *config.Config
	db      *database.DB
	version string
}

// NewHealthHandler crée un nouveau handler de santé
func NewHealthHandler(config *config.Config, db *database.DB, version string) *HealthHandler {
	return &HealthHandler{
		config:  config,
		db:      db,
		version: version,
	}
}

// HealthResponse représente la réponse de santé du service
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck représente le résultat d'une vérification de santé
type HealthCheck struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency string                 `json:"latency,omitempty"`
}

var serviceStartTime = time.Now()

// HealthCheck effectue une vérification complète de la santé du service
// @Summary Vérification de santé
// @Description Vérifie l'état de santé du service et de ses dépendances
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Service:   "progression",
		Version:   h.version,
		Timestamp: time.Now(),
		Uptime:    time.Since(serviceStartTime).String(),
		Checks:    make(map[string]HealthCheck),
	}

	response.Checks["database"] = h.checkDatabase()
	response.Checks["memory"] = h.checkMemory()

	overallStatus := HealthStatusHealthy
	for _, check := range response.Checks {
		if check.Status == HealthStatusUnhealthy {
			overallStatus = HealthStatusUnhealthy
			break
		} else if check.Status == HealthStatusDegraded && overallStatus == HealthStatusHealthy {
			overallStatus = HealthStatusDegraded
		}
	}
	response.Status = overallStatus

	statusCode := http.StatusOK
	if overallStatus == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// ReadinessCheck vérifie si le service est prêt à recevoir du traffic
// @Summary Vérification de préparation
// @Description Vérifie si le service est prêt à traiter les requêtes
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if err := h.db.HealthCheck(); err != nil {
		logrus.WithError(err).Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ready": false,
			"error": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// LivenessCheck vérifie si le service est vivant
// @Summary Vérification de vie
// @Description Vérifie si le processus répond
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive":  true,
		"uptime": time.Since(serviceStartTime).String(),
	})
}

// checkDatabase vérifie la connexion PostgreSQL
func (h *HealthHandler) checkDatabase() HealthCheck {
	start := time.Now()

	if err := h.db.HealthCheck(); err != nil {
		return HealthCheck{
			Status:  HealthStatusUnhealthy,
			Message: err.Error(),
			Latency: time.Since(start).String(),
		}
	}

	stats := h.db.Stats()
	return HealthCheck{
		Status:  HealthStatusHealthy,
		Latency: time.Since(start).String(),
		Details: map[string]interface{}{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		},
	}
}

// checkMemory vérifie l'utilisation mémoire du processus
func (h *HealthHandler) checkMemory() HealthCheck {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := HealthStatusHealthy
	allocMB := m.Alloc / 1024 / 1024
	if allocMB > 512 {
		status = HealthStatusDegraded
	}

	return HealthCheck{
		Status: status,
		Details: map[string]interface{}{
			"alloc_mb":      allocMB,
			"sys_mb":        m.Sys / 1024 / 1024,
			"num_gc":        m.NumGC,
			"num_goroutine": runtime.NumGoroutine(),
		},
	}
}
