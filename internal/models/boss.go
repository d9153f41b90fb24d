// internal/models/boss.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Boss représente l'unique entité partagée servant de puits de dégâts.
// Au plus une instance est active à la fois (index partiel unique en base).
type Boss struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	MaxHP       float64    `json:"max_hp" db:"max_hp"`
	CurrentHP   float64    `json:"current_hp" db:"current_hp"`
	Level       int        `json:"level" db:"level"`
	XPPerDamage float64    `json:"xp_per_damage" db:"xp_per_damage"`
	GoldReward  int64      `json:"gold_reward" db:"gold_reward"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	SpawnTime   time.Time  `json:"spawn_time" db:"spawn_time"`
	DefeatedAt  *time.Time `json:"defeated_at,omitempty" db:"defeated_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HPPercent retourne le pourcentage de vie restant
func (b *Boss) HPPercent() float64 {
	if b.MaxHP <= 0 {
		return 0
	}
	return (b.CurrentHP / b.MaxHP) * 100
}

// DamageEvent représente une attaque enregistrée contre le boss (append-only)
type DamageEvent struct {
	ID           uuid.UUID `json:"id" db:"id"`
	BossID       uuid.UUID `json:"boss_id" db:"boss_id"`
	ActorID      uuid.UUID `json:"actor_id" db:"actor_id"`
	DamageAmount float64   `json:"damage_amount" db:"damage_amount"`
	XPEarned     float64   `json:"xp_earned" db:"xp_earned"`
	DealtAt      time.Time `json:"dealt_at" db:"dealt_at"`
}

// BossLeaderboardEntry représente une ligne du classement de l'encounter
type BossLeaderboardEntry struct {
	ActorID     uuid.UUID `json:"actor_id" db:"actor_id"`
	ActorName   string    `json:"actor_name" db:"actor_name"`
	TotalDamage float64   `json:"total_damage" db:"total_damage"`
	TotalXP     float64   `json:"total_xp" db:"total_xp"`
}

// AttackBossResult représente le résultat d'une attaque sur le boss
type AttackBossResult struct {
	BossID       uuid.UUID      `json:"boss_id"`
	ActualDamage float64        `json:"actual_damage"`
	NewHP        float64        `json:"new_hp"`
	Defeated     bool           `json:"defeated"`
	XPEarned     float64        `json:"xp_earned"`
	Leveling     *GrantXPResult `json:"leveling,omitempty"`
	NextBoss     *Boss          `json:"next_boss,omitempty"`
}
