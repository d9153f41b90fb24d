// internal/service/progression.go - Ledger XP/level des acteurs
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/monitoring"
	"progression/internal/repository"
)

// ProgressionServiceInterface définit les méthodes du service de progression
type ProgressionServiceInterface interface {
	GetProgress(ctx context.Context, actorID uuid.UUID, name string) (*models.LevelProgress, error)
	GrantRaidXP(ctx context.Context, actorID uuid.UUID, name string, req models.GrantXPRequest) (*models.GrantXPResult, error)
	ResetActor(ctx context.Context, actorID uuid.UUID) error
}

// ProgressionService implémente l'interface ProgressionServiceInterface
type ProgressionService struct {
	config    *config.Config
	actorRepo repository.ActorRepositoryInterface
	antiCheat AntiCheatServiceInterface
	now       func() time.Time
}

// NewProgressionService crée une nouvelle instance du service de progression
func NewProgressionService(
	cfg *config.Config,
	actorRepo repository.ActorRepositoryInterface,
	antiCheat AntiCheatServiceInterface,
) ProgressionServiceInterface {
	return &ProgressionService{
		config:    cfg,
		actorRepo: actorRepo,
		antiCheat: antiCheat,
		now:       time.Now,
	}
}

// GetProgress retourne le level, l'XP et l'or de l'acteur, en le créant
// paresseusement au premier appel
func (s *ProgressionService) GetProgress(ctx context.Context, actorID uuid.UUID, name string) (*models.LevelProgress, error) {
	if err := s.actorRepo.EnsureExists(ctx, actorID, name); err != nil {
		return nil, fmt.Errorf("failed to ensure actor: %w", err)
	}

	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	return &models.LevelProgress{
		ActorID:     actor.ID,
		Level:       actor.Level,
		XP:          actor.XP,
		Gold:        actor.Gold,
		XPIntoLevel: XPIntoLevel(actor.XP),
		XPForNext:   XPForNextLevel(actor.XP),
	}, nil
}

// GrantRaidXP crédite l'XP remontée par le mini-jeu raid. Les valeurs sont
// bornées côté serveur et les grants trop rapprochés sont rejetés
// (best-effort, basé sur l'horodatage du dernier grant de raid).
func (s *ProgressionService) GrantRaidXP(ctx context.Context, actorID uuid.UUID, name string, req models.GrantXPRequest) (*models.GrantXPResult, error) {
	xp := s.antiCheat.ClampXPAmount(req.XP)
	raidLevel := s.antiCheat.ClampRaidLevel(req.RaidLevel)

	if err := s.actorRepo.EnsureExists(ctx, actorID, name); err != nil {
		return nil, fmt.Errorf("failed to ensure actor: %w", err)
	}

	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	// Espacement minimal entre deux grants de raid du même acteur.
	// Les autres mutations (boss, duels) n'entrent pas en ligne de compte.
	if actor.LastRaidGrantAt != nil {
		if elapsed := s.now().Sub(*actor.LastRaidGrantAt); elapsed < s.config.Game.XPGrantInterval {
			return nil, &CooldownError{Remaining: s.config.Game.XPGrantInterval - elapsed}
		}
	}

	newXP, newLevel, err := s.actorRepo.ApplyRaidXP(ctx, actorID, xp)
	if err != nil {
		return nil, fmt.Errorf("failed to apply raid XP: %w", err)
	}

	monitoring.XPGrantedTotal.Add(float64(xp))

	result := &models.GrantXPResult{
		XPEarned:  xp,
		NewXP:     newXP,
		OldLevel:  actor.Level,
		NewLevel:  newLevel,
		LeveledUp: newLevel > actor.Level,
	}

	logrus.WithFields(logrus.Fields{
		"actor_id":   actorID,
		"xp_earned":  xp,
		"raid_level": raidLevel,
		"new_level":  newLevel,
		"leveled_up": result.LeveledUp,
	}).Info("Raid XP granted")

	return result, nil
}

// ResetActor remet la progression d'un acteur à zéro (admin uniquement)
func (s *ProgressionService) ResetActor(ctx context.Context, actorID uuid.UUID) error {
	if err := s.actorRepo.ResetProgress(ctx, actorID); err != nil {
		return fmt.Errorf("failed to reset actor: %w", err)
	}

	logrus.WithField("actor_id", actorID).Warn("Actor progression reset by admin")
	return nil
}
