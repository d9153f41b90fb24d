// internal/handlers/duel_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/service"
)

// DuelHandler gère les requêtes HTTP du PvP
type DuelHandler struct {
	duelService service.DuelServiceInterface
	config      *config.Config
}

// NewDuelHandler crée un nouveau handler de duel
func NewDuelHandler(duelService service.DuelServiceInterface, config *config.Config) *DuelHandler {
	return &DuelHandler{
		duelService: duelService,
		config:      config,
	}
}

// Resolve résout un duel entre l'acteur courant et un défenseur
// @Summary Attaquer un acteur
// @Description Résout un duel déterministe basé sur les levels des deux acteurs
// @Tags duels
// @Accept json
// @Produce json
// @Param request body models.AttackActorRequest true "Défenseur ciblé"
// @Success 200 {object} models.DuelOutcome
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/v1/duels [post]
func (h *DuelHandler) Resolve(c *gin.Context) {
	userID, username := actorIdentity(c)

	attackerID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	var req models.AttackActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	outcome, err := h.duelService.Resolve(c.Request.Context(), attackerID, username, req.DefenderID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetStats récupère les statistiques PvP de l'acteur courant
// @Summary Statistiques PvP
// @Description Récupère les victoires, défaites et dégâts cumulés de l'acteur
// @Tags duels
// @Produce json
// @Success 200 {object} models.DuelStats
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/duels/stats [get]
func (h *DuelHandler) GetStats(c *gin.Context) {
	userID, _ := actorIdentity(c)

	actorID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	h.respondStats(c, actorID)
}

// GetStatsByActor récupère les statistiques PvP d'un acteur donné
// @Summary Statistiques PvP d'un acteur
// @Description Récupère les statistiques de duel d'un acteur par son ID
// @Tags duels
// @Produce json
// @Param actorId path string true "ID de l'acteur"
// @Success 200 {object} models.DuelStats
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/duels/stats/{actorId} [get]
func (h *DuelHandler) GetStatsByActor(c *gin.Context) {
	actorID, err := uuid.Parse(c.Param("actorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	h.respondStats(c, actorID)
}

func (h *DuelHandler) respondStats(c *gin.Context, actorID uuid.UUID) {
	stats, err := h.duelService.Stats(c.Request.Context(), actorID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":    stats,
		"win_rate": stats.WinRate(),
	})
}

// Opponents liste les acteurs attaquables
// @Summary Adversaires disponibles
// @Description Liste les acteurs actifs attaquables en duel
// @Tags duels
// @Produce json
// @Success 200 {array} models.Opponent
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/duels/opponents [get]
func (h *DuelHandler) Opponents(c *gin.Context) {
	userID, _ := actorIdentity(c)

	actorID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	opponents, err := h.duelService.Opponents(c.Request.Context(), actorID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opponents": opponents,
		"count":     len(opponents),
	})
}

// Leaderboard récupère le classement PvP
// @Summary Classement PvP
// @Description Récupère le top des acteurs par victoires en duel
// @Tags duels
// @Produce json
// @Success 200 {array} models.DuelLeaderboardEntry
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/duels/leaderboard [get]
func (h *DuelHandler) Leaderboard(c *gin.Context) {
	entries, err := h.duelService.Leaderboard(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// Notifications liste les duels subis par l'acteur courant
// @Summary Notifications de duel
// @Description Liste les attaques subies, avec curseur incrémental optionnel
// @Tags duels
// @Produce json
// @Param since query string false "ID du dernier duel déjà vu"
// @Success 200 {array} models.DuelNotification
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/duels/notifications [get]
func (h *DuelHandler) Notifications(c *gin.Context) {
	userID, _ := actorIdentity(c)

	actorID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	var sinceID *uuid.UUID
	if raw := c.Query("since"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid since cursor, expected a duel ID",
				"request_id": c.GetHeader("X-Request-ID"),
			})
			return
		}
		sinceID = &parsed
	}

	notifications, err := h.duelService.Notifications(c.Request.Context(), actorID, sinceID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}
