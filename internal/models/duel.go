// internal/models/duel.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// DuelRecord représente une résolution PvP (append-only)
type DuelRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	AttackerID     uuid.UUID `json:"attacker_id" db:"attacker_id"`
	DefenderID     uuid.UUID `json:"defender_id" db:"defender_id"`
	AttackerLevel  int       `json:"attacker_level" db:"attacker_level"`
	DefenderLevel  int       `json:"defender_level" db:"defender_level"`
	AttackerDamage int       `json:"attacker_damage" db:"attacker_damage"`
	DefenderHP     int       `json:"defender_hp" db:"defender_hp"`
	DamageDealt    int       `json:"damage_dealt" db:"damage_dealt"`
	AttackerWon    bool      `json:"attacker_won" db:"attacker_won"`
	XPEarned       int64     `json:"xp_earned" db:"xp_earned"`
	GoldEarned     int64     `json:"gold_earned" db:"gold_earned"`
	GoldLost       int64     `json:"gold_lost" db:"gold_lost"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// DuelStats représente les statistiques PvP cumulées d'un acteur
// (une ligne par acteur, créée paresseusement au premier duel)
type DuelStats struct {
	ActorID          uuid.UUID  `json:"actor_id" db:"actor_id"`
	Wins             int        `json:"wins" db:"wins"`
	Losses           int        `json:"losses" db:"losses"`
	TotalDamageDealt float64    `json:"total_damage_dealt" db:"total_damage_dealt"`
	TotalDamageTaken float64    `json:"total_damage_taken" db:"total_damage_taken"`
	LastAttackAt     *time.Time `json:"last_attack_at,omitempty" db:"last_attack_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// WinRate retourne le taux de victoire en pourcentage, arrondi à une décimale
func (s *DuelStats) WinRate() float64 {
	return WinRate(s.Wins, s.Losses)
}

// WinRate calcule le taux de victoire en pourcentage, arrondi à une décimale.
// Utilisé aussi par le classement PvP.
func WinRate(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	rate := float64(wins) / float64(total) * 100
	return float64(int(rate*10+0.5)) / 10
}

// DuelOutcome représente le résultat d'un duel résolu
type DuelOutcome struct {
	RecordID       uuid.UUID      `json:"record_id"`
	AttackerWon    bool           `json:"attacker_won"`
	AttackerLevel  int            `json:"attacker_level"`
	DefenderLevel  int            `json:"defender_level"`
	AttackerDamage int            `json:"attacker_damage"`
	DefenderHP     int            `json:"defender_hp"`
	DamageDealt    int            `json:"damage_dealt"`
	XPEarned       int64          `json:"xp_earned"`
	GoldEarned     int64          `json:"gold_earned"`
	GoldLost       int64          `json:"gold_lost"`
	Leveling       *GrantXPResult `json:"leveling,omitempty"`
}

// DuelLeaderboardEntry représente une ligne du classement PvP
type DuelLeaderboardEntry struct {
	ActorID          uuid.UUID `json:"actor_id" db:"actor_id"`
	ActorName        string    `json:"actor_name" db:"actor_name"`
	Level            int       `json:"level" db:"level"`
	Wins             int       `json:"wins" db:"wins"`
	Losses           int       `json:"losses" db:"losses"`
	WinRate          float64   `json:"win_rate" db:"-"`
	TotalDamageDealt float64   `json:"total_damage_dealt" db:"total_damage_dealt"`
}

// DuelNotification représente un duel récent vu côté défenseur
type DuelNotification struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AttackerName  string    `json:"attacker_name" db:"attacker_name"`
	AttackerLevel int       `json:"attacker_level" db:"attacker_level"`
	DefenderWon   bool      `json:"defender_won" db:"defender_won"`
	DamageDealt   int       `json:"damage_dealt" db:"damage_dealt"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
