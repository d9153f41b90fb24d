// internal/service/boss.go - Encounter coopératif contre le boss partagé
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progression/internal/cache"
	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/monitoring"
	"progression/internal/repository"
)

// BossServiceInterface définit les méthodes de l'encounter boss
type BossServiceInterface interface {
	GetOrCreateActive(ctx context.Context) (*models.Boss, error)
	Attack(ctx context.Context, actorID uuid.UUID, name string, req models.AttackBossRequest) (*models.AttackBossResult, error)
	Leaderboard(ctx context.Context) ([]*models.BossLeaderboardEntry, error)
	ForceRespawn(ctx context.Context) (*models.Boss, error)
}

// BossService implémente l'interface BossServiceInterface
type BossService struct {
	config    *config.Config
	bossRepo  repository.BossRepositoryInterface
	actorRepo repository.ActorRepositoryInterface
	antiCheat AntiCheatServiceInterface
	lbCache   cache.LeaderboardCacheInterface
	realtime  RealtimeServiceInterface
	now       func() time.Time
}

// NewBossService crée une nouvelle instance du service boss.
// lbCache et realtime sont optionnels (nil = désactivé).
func NewBossService(
	cfg *config.Config,
	bossRepo repository.BossRepositoryInterface,
	actorRepo repository.ActorRepositoryInterface,
	antiCheat AntiCheatServiceInterface,
	lbCache cache.LeaderboardCacheInterface,
	realtime RealtimeServiceInterface,
) BossServiceInterface {
	return &BossService{
		config:    cfg,
		bossRepo:  bossRepo,
		actorRepo: actorRepo,
		antiCheat: antiCheat,
		lbCache:   lbCache,
		realtime:  realtime,
		now:       time.Now,
	}
}

// GetOrCreateActive retourne le boss actif, en provisionnant une nouvelle
// instance si aucune n'existe. L'insertion conditionnelle est atomique :
// sous concurrence un seul appelant crée, les autres relisent.
func (s *BossService) GetOrCreateActive(ctx context.Context) (*models.Boss, error) {
	boss, err := s.bossRepo.GetActive(ctx)
	if err == nil {
		return boss, nil
	}
	if err != repository.ErrNoActiveBoss {
		return nil, fmt.Errorf("failed to get active boss: %w", err)
	}

	fresh := s.newBoss()
	if err := s.bossRepo.CreateIfNoneActive(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create boss: %w", err)
	}

	boss, err = s.bossRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload boss after creation: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"boss_id": boss.ID,
		"name":    boss.Name,
		"max_hp":  boss.MaxHP,
	}).Info("New boss spawned")

	return boss, nil
}

// Attack applique une attaque de l'acteur sur le boss actif.
// Les dégâts sont entièrement calculés côté serveur à partir du level ;
// les upgrades client sont validés et bornés avant usage.
func (s *BossService) Attack(ctx context.Context, actorID uuid.UUID, name string, req models.AttackBossRequest) (*models.AttackBossResult, error) {
	if err := s.actorRepo.EnsureExists(ctx, actorID, name); err != nil {
		return nil, fmt.Errorf("failed to ensure actor: %w", err)
	}

	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	// Rate limiting best-effort : dernier événement de dégâts de l'acteur
	lastAt, err := s.bossRepo.LastDamageAt(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check damage rate limit: %w", err)
	}
	if lastAt != nil {
		if elapsed := s.now().Sub(*lastAt); elapsed < s.config.Game.DamageInterval {
			return nil, &CooldownError{Remaining: s.config.Game.DamageInterval - elapsed}
		}
	}

	boss, err := s.GetOrCreateActive(ctx)
	if err != nil {
		return nil, err
	}

	damageMultiplier := s.antiCheat.SanitizeDamageMultiplier(req.DamageMultiplier)
	xpBonus := s.antiCheat.SanitizeXPBonus(req.XPBonus)

	baseDamage := 1 + float64(actor.Level-1)*0.5
	actualDamage := baseDamage * damageMultiplier

	newHP, defeated, err := s.bossRepo.ApplyDamage(ctx, boss.ID, actualDamage)
	if err != nil {
		if err == repository.ErrBossAlreadyDefeated {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply damage: %w", err)
	}

	xpEarned := actualDamage * boss.XPPerDamage * (1 + xpBonus)

	event := &models.DamageEvent{
		ID:           uuid.New(),
		BossID:       boss.ID,
		ActorID:      actorID,
		DamageAmount: actualDamage,
		XPEarned:     xpEarned,
		DealtAt:      s.now(),
	}
	if err := s.bossRepo.RecordDamage(ctx, event); err != nil {
		// L'attaque a déjà porté, on continue sans l'événement
		logrus.WithError(err).Error("Failed to record damage event")
	}

	result := &models.AttackBossResult{
		BossID:       boss.ID,
		ActualDamage: actualDamage,
		NewHP:        newHP,
		Defeated:     defeated,
		XPEarned:     xpEarned,
	}

	if xpInt := int64(math.Floor(xpEarned)); xpInt > 0 {
		newXP, newLevel, err := s.actorRepo.ApplyXP(ctx, actorID, xpInt)
		if err != nil {
			logrus.WithError(err).Error("Failed to grant boss XP")
		} else {
			monitoring.XPGrantedTotal.Add(float64(xpInt))
			result.Leveling = &models.GrantXPResult{
				XPEarned:  xpInt,
				NewXP:     newXP,
				OldLevel:  actor.Level,
				NewLevel:  newLevel,
				LeveledUp: newLevel > actor.Level,
			}
		}
	}

	s.mirrorDamage(ctx, boss.ID, actorID, actualDamage, xpEarned)

	monitoring.BossAttacksTotal.Inc()

	if s.realtime != nil {
		s.realtime.Broadcast(map[string]interface{}{
			"type":       "boss_update",
			"boss_id":    boss.ID,
			"current_hp": newHP,
			"max_hp":     boss.MaxHP,
		})
	}

	if defeated {
		monitoring.BossDefeatsTotal.Inc()

		logrus.WithFields(logrus.Fields{
			"boss_id":  boss.ID,
			"actor_id": actorID,
		}).Info("Boss defeated")

		if s.lbCache != nil {
			if err := s.lbCache.ClearBoss(ctx, boss.ID.String()); err != nil {
				logrus.WithError(err).Warn("Failed to clear leaderboard cache")
			}
		}

		// Défaite et respawn sont des étapes séquentielles : une instance
		// toute neuve est provisionnée immédiatement (nouvelle identité)
		next, err := s.GetOrCreateActive(ctx)
		if err != nil {
			logrus.WithError(err).Error("Failed to spawn next boss")
		} else {
			result.NextBoss = next
			if s.realtime != nil {
				s.realtime.Broadcast(map[string]interface{}{
					"type":    "boss_defeated",
					"boss_id": boss.ID,
					"next_id": next.ID,
				})
			}
		}
	}

	return result, nil
}

// Leaderboard retourne le classement de dégâts du boss actif. Lecture via
// le miroir Redis quand il est disponible, agrégation SQL sinon.
func (s *BossService) Leaderboard(ctx context.Context) ([]*models.BossLeaderboardEntry, error) {
	boss, err := s.GetOrCreateActive(ctx)
	if err != nil {
		return nil, err
	}

	limit := s.config.Game.LeaderboardLimit

	if s.lbCache != nil {
		cached, err := s.lbCache.TopDamage(ctx, boss.ID.String(), int64(limit))
		if err == nil && len(cached) > 0 {
			return s.resolveCachedEntries(ctx, cached), nil
		}
		if err != nil {
			logrus.WithError(err).Warn("Leaderboard cache read failed, falling back to SQL")
		}
	}

	entries, err := s.bossRepo.Leaderboard(ctx, boss.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}

// ForceRespawn désactive le boss courant et en provisionne un nouveau
// (action admin uniquement)
func (s *BossService) ForceRespawn(ctx context.Context) (*models.Boss, error) {
	current, err := s.bossRepo.GetActive(ctx)
	if err == nil && s.lbCache != nil {
		if err := s.lbCache.ClearBoss(ctx, current.ID.String()); err != nil {
			logrus.WithError(err).Warn("Failed to clear leaderboard cache")
		}
	}

	if err := s.bossRepo.DeactivateActive(ctx); err != nil {
		return nil, fmt.Errorf("failed to deactivate boss: %w", err)
	}

	boss, err := s.GetOrCreateActive(ctx)
	if err != nil {
		return nil, err
	}

	logrus.WithField("boss_id", boss.ID).Warn("Boss respawn forced by admin")
	return boss, nil
}

// newBoss construit une instance de boss avec les valeurs par défaut
func (s *BossService) newBoss() *models.Boss {
	now := s.now()
	return &models.Boss{
		ID:          uuid.New(),
		Name:        s.config.Game.BossName,
		Description: s.config.Game.BossDescription,
		MaxHP:       s.config.Game.BossMaxHP,
		CurrentHP:   s.config.Game.BossMaxHP,
		Level:       s.config.Game.BossLevel,
		XPPerDamage: s.config.Game.BossXPPerDamage,
		GoldReward:  s.config.Game.BossGoldReward,
		IsActive:    true,
		SpawnTime:   now,
		UpdatedAt:   now,
	}
}

// mirrorDamage pousse les totaux dans le cache Redis, best-effort
func (s *BossService) mirrorDamage(ctx context.Context, bossID, actorID uuid.UUID, damage, xp float64) {
	if s.lbCache == nil {
		return
	}

	if err := s.lbCache.AddDamage(ctx, bossID.String(), actorID.String(), damage, xp); err != nil {
		logrus.WithError(err).Warn("Failed to mirror damage to leaderboard cache")
	}
}

// resolveCachedEntries complète les entrées du cache avec les noms d'acteurs
func (s *BossService) resolveCachedEntries(ctx context.Context, cached []cache.Entry) []*models.BossLeaderboardEntry {
	entries := make([]*models.BossLeaderboardEntry, 0, len(cached))

	for _, c := range cached {
		actorID, err := uuid.Parse(c.ActorID)
		if err != nil {
			continue
		}

		name := "Unknown"
		if actor, err := s.actorRepo.GetByID(ctx, actorID); err == nil {
			name = actor.Name
		}

		entries = append(entries, &models.BossLeaderboardEntry{
			ActorID:     actorID,
			ActorName:   name,
			TotalDamage: c.TotalDamage,
			TotalXP:     c.TotalXP,
		})
	}

	return entries
}
