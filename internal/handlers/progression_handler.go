// internal/handlers/progression_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/service"
)

// ProgressionHandler gère les requêtes HTTP de progression XP/level
type ProgressionHandler struct {
	progressionService service.ProgressionServiceInterface
	config             *config.Config
}

// NewProgressionHandler crée un nouveau handler de progression
func NewProgressionHandler(progressionService service.ProgressionServiceInterface, config *config.Config) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: progressionService,
		config:             config,
	}
}

// GetProgress récupère la progression de l'acteur courant
// @Summary Progression de l'acteur
// @Description Récupère le level, l'XP et l'or de l'acteur authentifié
// @Tags progression
// @Produce json
// @Success 200 {object} models.LevelProgress
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/progression [get]
func (h *ProgressionHandler) GetProgress(c *gin.Context) {
	userID, username := actorIdentity(c)

	actorID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	progress, err := h.progressionService.GetProgress(c.Request.Context(), actorID, username)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GrantXP crédite l'XP remontée par le mini-jeu raid
// @Summary Gain d'XP raid
// @Description Crédite un gain d'XP validé et borné côté serveur
// @Tags progression
// @Accept json
// @Produce json
// @Param request body models.GrantXPRequest true "Gain d'XP"
// @Success 200 {object} models.GrantXPResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/v1/progression/xp [post]
func (h *ProgressionHandler) GrantXP(c *gin.Context) {
	userID, username := actorIdentity(c)

	actorID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	var req models.GrantXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	result, err := h.progressionService.GrantRaidXP(c.Request.Context(), actorID, username, req)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResetActor remet la progression d'un acteur à zéro
// @Summary Reset de progression
// @Description Remet l'XP, le level et l'or d'un acteur à zéro (admin)
// @Tags admin
// @Produce json
// @Param actorId path string true "ID de l'acteur"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/admin/actors/{actorId}/reset [post]
func (h *ProgressionHandler) ResetActor(c *gin.Context) {
	actorID, err := uuid.Parse(c.Param("actorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	if err := h.progressionService.ResetActor(c.Request.Context(), actorID); err != nil {
		respondWithServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"actor_id": actorID,
		"admin":    c.GetString("username"),
	}).Warn("Actor progression reset")

	c.JSON(http.StatusOK, gin.H{
		"message":  "Actor progression reset",
		"actor_id": actorID,
	})
}
