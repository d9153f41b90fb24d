// internal/repository/boss.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"progression/internal/database"
	"progression/internal/models"
)

// Erreurs sentinelles du repository boss
var (
	ErrNoActiveBoss        = fmt.Errorf("no active boss")
	ErrBossAlreadyDefeated = fmt.Errorf("boss already defeated")
)

// BossRepositoryInterface définit les méthodes du repository boss
type BossRepositoryInterface interface {
	GetActive(ctx context.Context) (*models.Boss, error)
	CreateIfNoneActive(ctx context.Context, boss *models.Boss) error
	ApplyDamage(ctx context.Context, bossID uuid.UUID, damage float64) (newHP float64, defeated bool, err error)
	DeactivateActive(ctx context.Context) error
	RecordDamage(ctx context.Context, event *models.DamageEvent) error
	LastDamageAt(ctx context.Context, actorID uuid.UUID) (*time.Time, error)
	Leaderboard(ctx context.Context, bossID uuid.UUID, limit int) ([]*models.BossLeaderboardEntry, error)
}

// BossRepository implémente l'interface BossRepositoryInterface
type BossRepository struct {
	db *database.DB
}

// NewBossRepository crée une nouvelle instance du repository boss
func NewBossRepository(db *database.DB) BossRepositoryInterface {
	return &BossRepository{db: db}
}

// GetActive récupère l'instance de boss active
func (r *BossRepository) GetActive(ctx context.Context) (*models.Boss, error) {
	var boss models.Boss

	query := `
		SELECT id, name, description, max_hp, current_hp, level, xp_per_damage,
		       gold_reward, is_active, spawn_time, defeated_at, updated_at
		FROM boss_instances
		WHERE is_active = true
		ORDER BY spawn_time DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &boss, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoActiveBoss
		}
		return nil, fmt.Errorf("failed to get active boss: %w", err)
	}

	return &boss, nil
}

// CreateIfNoneActive insère une nouvelle instance active uniquement si aucune
// n'existe. L'index partiel unique sur is_active rend l'opération atomique :
// deux appelants concurrents ne peuvent pas créer deux boss actifs.
func (r *BossRepository) CreateIfNoneActive(ctx context.Context, boss *models.Boss) error {
	query := `
		INSERT INTO boss_instances (
			id, name, description, max_hp, current_hp, level, xp_per_damage,
			gold_reward, is_active, spawn_time, updated_at
		) VALUES (
			:id, :name, :description, :max_hp, :current_hp, :level, :xp_per_damage,
			:gold_reward, true, :spawn_time, :updated_at
		)
		ON CONFLICT (is_active) WHERE is_active DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, boss); err != nil {
		return fmt.Errorf("failed to create boss: %w", err)
	}

	return nil
}

// ApplyDamage applique les dégâts en une seule opération atomique :
// décrément conditionnel borné à zéro, désactivation et defeated_at posés
// dans le même UPDATE. Élimine le lost update du read-modify-write.
func (r *BossRepository) ApplyDamage(ctx context.Context, bossID uuid.UUID, damage float64) (float64, bool, error) {
	var result struct {
		CurrentHP float64 `db:"current_hp"`
		Defeated  bool    `db:"defeated"`
	}

	query := `
		UPDATE boss_instances
		SET current_hp = GREATEST(0, current_hp - $2),
		    is_active = (current_hp - $2) > 0,
		    defeated_at = CASE WHEN (current_hp - $2) <= 0 THEN CURRENT_TIMESTAMP ELSE defeated_at END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND is_active = true AND current_hp > 0
		RETURNING current_hp, (NOT is_active) AS defeated`

	if err := r.db.GetContext(ctx, &result, query, bossID, damage); err != nil {
		if err == sql.ErrNoRows {
			// Lecture périmée : le boss a été vaincu entre temps
			return 0, false, ErrBossAlreadyDefeated
		}
		return 0, false, fmt.Errorf("failed to apply boss damage: %w", err)
	}

	return result.CurrentHP, result.Defeated, nil
}

// DeactivateActive désactive l'instance active sans la marquer vaincue
// (respawn forcé par un admin)
func (r *BossRepository) DeactivateActive(ctx context.Context) error {
	query := `
		UPDATE boss_instances
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE is_active = true`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to deactivate boss: %w", err)
	}

	return nil
}

// RecordDamage enregistre un événement de dégâts (append-only)
func (r *BossRepository) RecordDamage(ctx context.Context, event *models.DamageEvent) error {
	query := `
		INSERT INTO damage_events (id, boss_id, actor_id, damage_amount, xp_earned, dealt_at)
		VALUES (:id, :boss_id, :actor_id, :damage_amount, :xp_earned, :dealt_at)`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to record damage event: %w", err)
	}

	return nil
}

// LastDamageAt retourne l'horodatage de la dernière attaque de l'acteur,
// nil s'il n'a jamais attaqué (utilisé pour le rate limiting best-effort)
func (r *BossRepository) LastDamageAt(ctx context.Context, actorID uuid.UUID) (*time.Time, error) {
	var dealtAt time.Time

	query := `
		SELECT dealt_at
		FROM damage_events
		WHERE actor_id = $1
		ORDER BY dealt_at DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &dealtAt, query, actorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last damage timestamp: %w", err)
	}

	return &dealtAt, nil
}

// Leaderboard agrège les dégâts par acteur pour un boss donné.
// Égalités départagées par la première contribution (déterministe).
func (r *BossRepository) Leaderboard(ctx context.Context, bossID uuid.UUID, limit int) ([]*models.BossLeaderboardEntry, error) {
	entries := []*models.BossLeaderboardEntry{}

	query := `
		SELECT de.actor_id,
		       a.name AS actor_name,
		       SUM(de.damage_amount) AS total_damage,
		       SUM(de.xp_earned) AS total_xp
		FROM damage_events de
		JOIN actors a ON a.id = de.actor_id
		WHERE de.boss_id = $1
		GROUP BY de.actor_id, a.name
		ORDER BY total_damage DESC, MIN(de.dealt_at) ASC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &entries, query, bossID, limit); err != nil {
		return nil, fmt.Errorf("failed to get boss leaderboard: %w", err)
	}

	return entries, nil
}
