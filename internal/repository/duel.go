// internal/repository/duel.go
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

// StatsDelta représente la mise à jour additive des statistiques de duel
// d'un participant (attaquant ou défenseur)
type StatsDelta struct {
	Wins          int
	Losses        int
	DamageDealt   float64
	DamageTaken   float64
	SetLastAttack bool
}

// DuelRepositoryInterface définit les méthodes du repository duel
type DuelRepositoryInterface interface {
	CreateRecord(ctx context.Context, record *models.DuelRecord) error
	GetStats(ctx context.Context, actorID uuid.UUID) (*models.DuelStats, error)
	UpsertStats(ctx context.Context, actorID uuid.UUID, delta StatsDelta) error
	Leaderboard(ctx context.Context, limit int) ([]*models.DuelLeaderboardEntry, error)
	NotificationsForDefender(ctx context.Context, defenderID uuid.UUID, since *time.Time, limit int) ([]*models.DuelNotification, error)
	GetRecordTime(ctx context.Context, recordID uuid.UUID) (*time.Time, error)
}

// DuelRepository implémente l'interface DuelRepositoryInterface
type DuelRepository struct {
	db *database.DB
}

// NewDuelRepository crée une nouvelle instance du repository duel
func NewDuelRepository(db *database.DB) DuelRepositoryInterface {
	return &DuelRepository{db: db}
}

// CreateRecord enregistre un duel résolu (append-only)
func (r *DuelRepository) CreateRecord(ctx context.Context, record *models.DuelRecord) error {
	query := `
		INSERT INTO duel_records (
			id, attacker_id, defender_id, attacker_level, defender_level,
			attacker_damage, defender_hp, damage_dealt, attacker_won,
			xp_earned, gold_earned, gold_lost, created_at
		) VALUES (
			:id, :attacker_id, :defender_id, :attacker_level, :defender_level,
			:attacker_damage, :defender_hp, :damage_dealt, :attacker_won,
			:xp_earned, :gold_earned, :gold_lost, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to create duel record: %w", err)
	}

	return nil
}

// GetStats récupère les statistiques de duel d'un acteur.
// Retourne une ligne vide (zéros) si l'acteur n'a jamais combattu.
func (r *DuelRepository) GetStats(ctx context.Context, actorID uuid.UUID) (*models.DuelStats, error) {
	var stats models.DuelStats

	query := `
		SELECT actor_id, wins, losses, total_damage_dealt, total_damage_taken,
		       last_attack_at, updated_at
		FROM duel_stats
		WHERE actor_id = $1`

	if err := r.db.GetContext(ctx, &stats, query, actorID); err != nil {
		if err == sql.ErrNoRows {
			return &models.DuelStats{ActorID: actorID}, nil
		}
		return nil, fmt.Errorf("failed to get duel stats: %w", err)
	}

	return &stats, nil
}

// UpsertStats applique une mise à jour additive des statistiques, en créant
// la ligne au premier duel. L'upsert évite le read-modify-write sous
// concurrence.
func (r *DuelRepository) UpsertStats(ctx context.Context, actorID uuid.UUID, delta StatsDelta) error {
	var lastAttack *time.Time
	if delta.SetLastAttack {
		now := time.Now()
		lastAttack = &now
	}

	query := `
		INSERT INTO duel_stats (
			actor_id, wins, losses, total_damage_dealt, total_damage_taken,
			last_attack_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (actor_id) DO UPDATE SET
			wins = duel_stats.wins + EXCLUDED.wins,
			losses = duel_stats.losses + EXCLUDED.losses,
			total_damage_dealt = duel_stats.total_damage_dealt + EXCLUDED.total_damage_dealt,
			total_damage_taken = duel_stats.total_damage_taken + EXCLUDED.total_damage_taken,
			last_attack_at = COALESCE(EXCLUDED.last_attack_at, duel_stats.last_attack_at),
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query,
		actorID, delta.Wins, delta.Losses, delta.DamageDealt, delta.DamageTaken, lastAttack,
	); err != nil {
		return fmt.Errorf("failed to upsert duel stats: %w", err)
	}

	return nil
}

// Leaderboard retourne le classement PvP trié par victoires
func (r *DuelRepository) Leaderboard(ctx context.Context, limit int) ([]*models.DuelLeaderboardEntry, error) {
	entries := []*models.DuelLeaderboardEntry{}

	query := `
		SELECT ds.actor_id,
		       a.name AS actor_name,
		       a.level,
		       ds.wins,
		       ds.losses,
		       ds.total_damage_dealt
		FROM duel_stats ds
		JOIN actors a ON a.id = ds.actor_id
		ORDER BY ds.wins DESC, ds.total_damage_dealt DESC
		LIMIT $1`

	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get duel leaderboard: %w", err)
	}

	for _, entry := range entries {
		entry.WinRate = models.WinRate(entry.Wins, entry.Losses)
	}

	return entries, nil
}

// NotificationsForDefender liste les duels récents subis par un défenseur,
// du plus récent au plus ancien
func (r *DuelRepository) NotificationsForDefender(ctx context.Context, defenderID uuid.UUID, since *time.Time, limit int) ([]*models.DuelNotification, error) {
	notifications := []*models.DuelNotification{}

	query := `
		SELECT dr.id,
		       a.name AS attacker_name,
		       dr.attacker_level,
		       (NOT dr.attacker_won) AS defender_won,
		       dr.damage_dealt,
		       dr.created_at
		FROM duel_records dr
		JOIN actors a ON a.id = dr.attacker_id
		WHERE dr.defender_id = $1
		  AND ($2::timestamptz IS NULL OR dr.created_at > $2)
		ORDER BY dr.created_at DESC
		LIMIT $3`

	if err := r.db.SelectContext(ctx, &notifications, query, defenderID, since, limit); err != nil {
		return nil, fmt.Errorf("failed to get duel notifications: %w", err)
	}

	return notifications, nil
}

// GetRecordTime retourne l'horodatage d'un duel (curseur pour les
// notifications incrémentales)
func (r *DuelRepository) GetRecordTime(ctx context.Context, recordID uuid.UUID) (*time.Time, error) {
	var createdAt time.Time

	query := `SELECT created_at FROM duel_records WHERE id = $1`

	if err := r.db.GetContext(ctx, &createdAt, query, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get duel record time: %w", err)
	}

	return &createdAt, nil
}
