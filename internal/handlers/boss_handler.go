// internal/handlers/boss_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/service"
)

// BossHandler gère les requêtes HTTP de l'encounter boss
type BossHandler struct {
	bossService service.BossServiceInterface
	config      *config.Config
}

// NewBossHandler crée un nouveau handler boss
func NewBossHandler(bossService service.BossServiceInterface, config *config.Config) *BossHandler {
	return &BossHandler{
		bossService: bossService,
		config:      config,
	}
}

// GetBoss récupère le boss actif (le provisionne si nécessaire)
// @Summary Boss actif
// @Description Récupère l'instance de boss active, en la créant si absente
// @Tags boss
// @Produce json
// @Success 200 {object} models.Boss
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/boss [get]
func (h *BossHandler) GetBoss(c *gin.Context) {
	boss, err := h.bossService.GetOrCreateActive(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, boss)
}

// Attack applique une attaque de l'acteur courant sur le boss
// @Summary Attaquer le boss
// @Description Applique des dégâts calculés côté serveur sur le boss actif
// @Tags boss
// @Accept json
// @Produce json
// @Param request body models.AttackBossRequest false "Upgrades éventuels"
// @Success 200 {object} models.AttackBossResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/v1/boss/attack [post]
func (h *BossHandler) Attack(c *gin.Context) {
	userID, username := actorIdentity(c)

	actorID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid actor ID",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	// Corps optionnel : une attaque sans upgrade est valide
	var req models.AttackBossRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid request body",
				"details":    err.Error(),
				"request_id": c.GetHeader("X-Request-ID"),
			})
			return
		}
	}

	result, err := h.bossService.Attack(c.Request.Context(), actorID, username, req)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Leaderboard récupère le classement de dégâts du boss actif
// @Summary Classement boss
// @Description Récupère le top des acteurs par dégâts totaux sur le boss actif
// @Tags boss
// @Produce json
// @Success 200 {array} models.BossLeaderboardEntry
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/boss/leaderboard [get]
func (h *BossHandler) Leaderboard(c *gin.Context) {
	entries, err := h.bossService.Leaderboard(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// ForceRespawn force le respawn du boss
// @Summary Respawn forcé
// @Description Désactive le boss courant et en provisionne un nouveau (admin)
// @Tags admin
// @Produce json
// @Success 200 {object} models.Boss
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/admin/boss/respawn [post]
func (h *BossHandler) ForceRespawn(c *gin.Context) {
	boss, err := h.bossService.ForceRespawn(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, boss)
}
