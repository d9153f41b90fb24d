// internal/handlers/respond.go - Mapping erreurs métier -> statuts HTTP
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progression/internal/repository"
	"progression/internal/service"
)

// respondWithServiceError traduit une erreur du domaine en réponse HTTP.
// Les erreurs inattendues sont loguées côté serveur et renvoyées génériques.
func respondWithServiceError(c *gin.Context, err error) {
	requestID := c.GetHeader("X-Request-ID")

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		seconds := cooldown.RemainingSeconds()
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       err.Error(),
			"retry_after": seconds,
			"request_id":  requestID,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSelfAttack):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"request_id": requestID,
		})
	case errors.Is(err, service.ErrDefenderNotFound),
		errors.Is(err, repository.ErrActorNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":      err.Error(),
			"request_id": requestID,
		})
	case errors.Is(err, repository.ErrBossAlreadyDefeated):
		c.JSON(http.StatusConflict, gin.H{
			"error":      err.Error(),
			"request_id": requestID,
		})
	default:
		logrus.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Internal server error",
			"request_id": requestID,
		})
	}
}

// actorIdentity extrait l'identité de l'acteur posée par le middleware JWT
func actorIdentity(c *gin.Context) (string, string) {
	return c.GetString("user_id"), c.GetString("username")
}
