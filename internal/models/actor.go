// internal/models/actor.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// XPPerLevel est le diviseur fixe de conversion XP -> level
const XPPerLevel = 100

// Actor représente un utilisateur participant à l'économie de progression
type Actor struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Level           int        `json:"level" db:"level"`
	XP              int64      `json:"xp" db:"xp"`
	Gold            int64      `json:"gold" db:"gold"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	LastRaidGrantAt *time.Time `json:"last_raid_grant_at,omitempty" db:"last_raid_grant_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// LevelProgress représente la progression XP/level d'un acteur
type LevelProgress struct {
	ActorID      uuid.UUID `json:"actor_id"`
	Level        int       `json:"level"`
	XP           int64     `json:"xp"`
	Gold         int64     `json:"gold"`
	XPIntoLevel  int64     `json:"xp_into_level"`
	XPForNext    int64     `json:"xp_for_next_level"`
}

// GrantXPResult représente le résultat d'un gain d'XP
// LeveledUp + OldLevel/NewLevel forment le signal consommé par le
// système de badges (collaborateur externe).
type GrantXPResult struct {
	XPEarned  int64 `json:"xp_earned"`
	NewXP     int64 `json:"new_xp"`
	OldLevel  int   `json:"old_level"`
	NewLevel  int   `json:"new_level"`
	LeveledUp bool  `json:"leveled_up"`
}

// Opponent représente un acteur attaquable en duel
type Opponent struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Level int       `json:"level" db:"level"`
	XP    int64     `json:"xp" db:"xp"`
}
