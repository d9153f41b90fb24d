// internal/service/duel.go - Résolution PvP déterministe
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/monitoring"
	"progression/internal/repository"
)

// Constantes de combat PvP. Tout est dérivé des levels au moment de la
// résolution, aucune entrée client n'influence le calcul.
const (
	baseClickDamage  = 10
	damagePerLevel   = 5
	baseHP           = 50
	hpPerLevel       = 5
	xpPerWin         = 50
	lossXPRatio      = 0.2
	goldPerWin       = 100
	goldLossOnDefeat = 50
	maxMultiplier    = 3.0
)

// DuelServiceInterface définit les méthodes du service de duel
type DuelServiceInterface interface {
	Resolve(ctx context.Context, attackerID uuid.UUID, attackerName string, defenderID uuid.UUID) (*models.DuelOutcome, error)
	Stats(ctx context.Context, actorID uuid.UUID) (*models.DuelStats, error)
	Leaderboard(ctx context.Context) ([]*models.DuelLeaderboardEntry, error)
	Opponents(ctx context.Context, actorID uuid.UUID) ([]*models.Opponent, error)
	Notifications(ctx context.Context, defenderID uuid.UUID, sinceID *uuid.UUID) ([]*models.DuelNotification, error)
}

// DuelService implémente l'interface DuelServiceInterface
type DuelService struct {
	config    *config.Config
	duelRepo  repository.DuelRepositoryInterface
	actorRepo repository.ActorRepositoryInterface
	realtime  RealtimeServiceInterface
	now       func() time.Time
}

// NewDuelService crée une nouvelle instance du service de duel.
// realtime est optionnel (nil = pas de notification push).
func NewDuelService(
	cfg *config.Config,
	duelRepo repository.DuelRepositoryInterface,
	actorRepo repository.ActorRepositoryInterface,
	realtime RealtimeServiceInterface,
) DuelServiceInterface {
	return &DuelService{
		config:    cfg,
		duelRepo:  duelRepo,
		actorRepo: actorRepo,
		realtime:  realtime,
		now:       time.Now,
	}
}

// Resolve exécute un duel complet en une seule requête. La résolution est
// déterministe : mêmes levels, même issue.
func (s *DuelService) Resolve(ctx context.Context, attackerID uuid.UUID, attackerName string, defenderID uuid.UUID) (*models.DuelOutcome, error) {
	if attackerID == defenderID {
		return nil, ErrSelfAttack
	}

	if err := s.actorRepo.EnsureExists(ctx, attackerID, attackerName); err != nil {
		return nil, fmt.Errorf("failed to ensure attacker: %w", err)
	}

	attacker, err := s.actorRepo.GetByID(ctx, attackerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attacker: %w", err)
	}

	defender, err := s.actorRepo.GetByID(ctx, defenderID)
	if err != nil {
		if err == repository.ErrActorNotFound {
			return nil, ErrDefenderNotFound
		}
		return nil, fmt.Errorf("failed to get defender: %w", err)
	}
	if !defender.IsActive {
		return nil, ErrDefenderNotFound
	}

	// Cooldown d'attaque côté attaquant
	stats, err := s.duelRepo.GetStats(ctx, attackerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attacker stats: %w", err)
	}
	if stats.LastAttackAt != nil {
		if elapsed := s.now().Sub(*stats.LastAttackAt); elapsed < s.config.Game.AttackCooldown {
			return nil, &CooldownError{Remaining: s.config.Game.AttackCooldown - elapsed}
		}
	}

	attackerDamage := baseClickDamage + (attacker.Level-1)*damagePerLevel
	defenderHP := baseHP + (defender.Level-1)*hpPerLevel

	levelDiff := attacker.Level - defender.Level
	multiplier := math.Min(1+float64(levelDiff)*0.1, maxMultiplier)

	damageDealt := int(math.Floor(float64(attackerDamage) * multiplier))
	if damageDealt < 1 {
		damageDealt = 1
	}

	attackerWon := damageDealt >= defenderHP

	var xpEarned, goldEarned, goldLost int64
	if attackerWon {
		xpEarned = xpPerWin
		goldEarned = goldPerWin
		goldLost = goldLossOnDefeat
	} else {
		xpEarned = int64(math.Floor(xpPerWin * lossXPRatio))
	}

	record := &models.DuelRecord{
		ID:             uuid.New(),
		AttackerID:     attackerID,
		DefenderID:     defenderID,
		AttackerLevel:  attacker.Level,
		DefenderLevel:  defender.Level,
		AttackerDamage: attackerDamage,
		DefenderHP:     defenderHP,
		DamageDealt:    damageDealt,
		AttackerWon:    attackerWon,
		XPEarned:       xpEarned,
		GoldEarned:     goldEarned,
		GoldLost:       goldLost,
		CreatedAt:      s.now(),
	}

	if err := s.duelRepo.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record duel: %w", err)
	}

	outcome := &models.DuelOutcome{
		RecordID:       record.ID,
		AttackerWon:    attackerWon,
		AttackerLevel:  attacker.Level,
		DefenderLevel:  defender.Level,
		AttackerDamage: attackerDamage,
		DefenderHP:     defenderHP,
		DamageDealt:    damageDealt,
		XPEarned:       xpEarned,
		GoldEarned:     goldEarned,
		GoldLost:       goldLost,
	}

	// Récompenses de l'attaquant
	newXP, newLevel, err := s.actorRepo.ApplyXP(ctx, attackerID, xpEarned)
	if err != nil {
		logrus.WithError(err).Error("Failed to grant duel XP")
	} else {
		monitoring.XPGrantedTotal.Add(float64(xpEarned))
		outcome.Leveling = &models.GrantXPResult{
			XPEarned:  xpEarned,
			NewXP:     newXP,
			OldLevel:  attacker.Level,
			NewLevel:  newLevel,
			LeveledUp: newLevel > attacker.Level,
		}
	}

	if attackerWon {
		if err := s.actorRepo.AddGold(ctx, attackerID, goldPerWin); err != nil {
			logrus.WithError(err).Error("Failed to grant duel gold")
		}
		if err := s.actorRepo.AddGold(ctx, defenderID, -goldLossOnDefeat); err != nil {
			logrus.WithError(err).Error("Failed to deduct defender gold")
		}
	}

	// Statistiques additives des deux participants
	attackerDelta := repository.StatsDelta{
		DamageDealt:   float64(damageDealt),
		SetLastAttack: true,
	}
	defenderDelta := repository.StatsDelta{
		DamageTaken: float64(damageDealt),
	}
	if attackerWon {
		attackerDelta.Wins = 1
		defenderDelta.Losses = 1
	} else {
		attackerDelta.Losses = 1
		defenderDelta.Wins = 1
	}

	if err := s.duelRepo.UpsertStats(ctx, attackerID, attackerDelta); err != nil {
		logrus.WithError(err).Error("Failed to update attacker duel stats")
	}
	if err := s.duelRepo.UpsertStats(ctx, defenderID, defenderDelta); err != nil {
		logrus.WithError(err).Error("Failed to update defender duel stats")
	}

	if attackerWon {
		monitoring.DuelsTotal.WithLabelValues("attacker_won").Inc()
	} else {
		monitoring.DuelsTotal.WithLabelValues("defender_won").Inc()
	}

	if s.realtime != nil {
		s.realtime.NotifyActor(defenderID.String(), map[string]interface{}{
			"type":           "duel_resolved",
			"record_id":      record.ID,
			"attacker_name":  attacker.Name,
			"attacker_level": attacker.Level,
			"defender_won":   !attackerWon,
			"damage_dealt":   damageDealt,
		})
	}

	logrus.WithFields(logrus.Fields{
		"attacker_id":  attackerID,
		"defender_id":  defenderID,
		"attacker_won": attackerWon,
		"damage_dealt": damageDealt,
	}).Info("Duel resolved")

	return outcome, nil
}

// Stats retourne les statistiques PvP cumulées d'un acteur
func (s *DuelService) Stats(ctx context.Context, actorID uuid.UUID) (*models.DuelStats, error) {
	stats, err := s.duelRepo.GetStats(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel stats: %w", err)
	}

	return stats, nil
}

// Leaderboard retourne le classement PvP par victoires
func (s *DuelService) Leaderboard(ctx context.Context) ([]*models.DuelLeaderboardEntry, error) {
	entries, err := s.duelRepo.Leaderboard(ctx, s.config.Game.LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel leaderboard: %w", err)
	}

	return entries, nil
}

// Opponents liste les cibles attaquables pour un acteur
func (s *DuelService) Opponents(ctx context.Context, actorID uuid.UUID) ([]*models.Opponent, error) {
	opponents, err := s.actorRepo.ListOpponents(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list opponents: %w", err)
	}

	return opponents, nil
}

// Notifications liste les duels subis par un défenseur, du plus récent au
// plus ancien. sinceID est le curseur incrémental du client : l'id du dernier
// duel déjà vu (nil = tout l'historique récent). Un curseur inconnu est
// ignoré plutôt que rejeté.
func (s *DuelService) Notifications(ctx context.Context, defenderID uuid.UUID, sinceID *uuid.UUID) ([]*models.DuelNotification, error) {
	var since *time.Time
	if sinceID != nil {
		t, err := s.duelRepo.GetRecordTime(ctx, *sinceID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve notification cursor: %w", err)
		}
		since = t
	}

	notifications, err := s.duelRepo.NotificationsForDefender(ctx, defenderID, since, s.config.Game.LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel notifications: %w", err)
	}

	return notifications, nil
}
