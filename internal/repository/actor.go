// internal/repository/actor.go
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

// ErrActorNotFound est retourné quand l'acteur n'existe pas
var ErrActorNotFound = fmt.Errorf("actor not found")

// ActorRepositoryInterface définit les méthodes du repository acteur
type ActorRepositoryInterface interface {
	EnsureExists(ctx context.Context, id uuid.UUID, name string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	ListOpponents(ctx context.Context, excludeID uuid.UUID) ([]*models.Opponent, error)
	ApplyXP(ctx context.Context, id uuid.UUID, amount int64) (newXP int64, newLevel int, err error)
	ApplyRaidXP(ctx context.Context, id uuid.UUID, amount int64) (newXP int64, newLevel int, err error)
	AddGold(ctx context.Context, id uuid.UUID, delta int64) error
	ResetProgress(ctx context.Context, id uuid.UUID) error
}

// ActorRepository implémente l'interface ActorRepositoryInterface
type ActorRepository struct {
	db *database.DB
}

// NewActorRepository crée une nouvelle instance du repository acteur
func NewActorRepository(db *database.DB) ActorRepositoryInterface {
	return &ActorRepository{db: db}
}

// EnsureExists crée l'acteur s'il n'existe pas encore (création paresseuse,
// l'identité est fournie par le JWT)
func (r *ActorRepository) EnsureExists(ctx context.Context, id uuid.UUID, name string) error {
	query := `
		INSERT INTO actors (id, name, level, xp, gold, is_active, created_at, updated_at)
		VALUES ($1, $2, 1, 0, 0, true, $3, $3)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, id, name, time.Now()); err != nil {
		return fmt.Errorf("failed to ensure actor exists: %w", err)
	}

	return nil
}

// GetByID récupère un acteur par son ID
func (r *ActorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	var actor models.Actor

	query := `
		SELECT id, name, level, xp, gold, is_active, last_raid_grant_at, created_at, updated_at
		FROM actors
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &actor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	return &actor, nil
}

// ListOpponents liste les acteurs actifs attaquables (tous sauf soi-même)
func (r *ActorRepository) ListOpponents(ctx context.Context, excludeID uuid.UUID) ([]*models.Opponent, error) {
	opponents := []*models.Opponent{}

	query := `
		SELECT id, name, level, xp
		FROM actors
		WHERE is_active = true AND id != $1
		ORDER BY level DESC, name ASC`

	if err := r.db.SelectContext(ctx, &opponents, query, excludeID); err != nil {
		return nil, fmt.Errorf("failed to list opponents: %w", err)
	}

	return opponents, nil
}

// Le level est recalculé dans l'UPDATE à partir du même diviseur que le
// service de leveling, pour que la formule n'existe qu'à un seul endroit.
var applyXPQuery = fmt.Sprintf(`
	UPDATE actors
	SET xp = xp + $2,
	    level = ((xp + $2) / %d) + 1,
	    updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	RETURNING xp, level`, models.XPPerLevel)

var applyRaidXPQuery = fmt.Sprintf(`
	UPDATE actors
	SET xp = xp + $2,
	    level = ((xp + $2) / %d) + 1,
	    last_raid_grant_at = CURRENT_TIMESTAMP,
	    updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	RETURNING xp, level`, models.XPPerLevel)

// ApplyXP ajoute de l'XP et recalcule le level en une seule opération atomique,
// ce qui évite les lost updates entre acteurs concurrents.
func (r *ActorRepository) ApplyXP(ctx context.Context, id uuid.UUID, amount int64) (int64, int, error) {
	return r.applyXP(ctx, applyXPQuery, id, amount)
}

// ApplyRaidXP fait la même chose pour un grant de raid, en horodatant
// last_raid_grant_at pour l'espacement minimal entre deux grants.
func (r *ActorRepository) ApplyRaidXP(ctx context.Context, id uuid.UUID, amount int64) (int64, int, error) {
	return r.applyXP(ctx, applyRaidXPQuery, id, amount)
}

func (r *ActorRepository) applyXP(ctx context.Context, query string, id uuid.UUID, amount int64) (int64, int, error) {
	var result struct {
		XP    int64 `db:"xp"`
		Level int   `db:"level"`
	}

	if err := r.db.GetContext(ctx, &result, query, id, amount); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, ErrActorNotFound
		}
		return 0, 0, fmt.Errorf("failed to apply XP: %w", err)
	}

	return result.XP, result.Level, nil
}

// AddGold ajoute (ou retire) de l'or, borné à zéro côté base
func (r *ActorRepository) AddGold(ctx context.Context, id uuid.UUID, delta int64) error {
	query := `
		UPDATE actors
		SET gold = GREATEST(0, gold + $2),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("failed to add gold: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check gold update: %w", err)
	}
	if rows == 0 {
		return ErrActorNotFound
	}

	return nil
}

// ResetProgress remet l'XP, le level et l'or à zéro (action admin uniquement,
// seule exception à la monotonie de l'XP)
func (r *ActorRepository) ResetProgress(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE actors
		SET xp = 0, level = 1, gold = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset actor progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check reset: %w", err)
	}
	if rows == 0 {
		return ErrActorNotFound
	}

	return nil
}
