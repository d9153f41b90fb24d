// internal/models/requests.go
package models

import "github.com/google/uuid"

// AttackBossRequest représente une attaque contre le boss.
// Les multiplicateurs proviennent d'upgrades achetés côté client et ne sont
// jamais crus tels quels : ils sont validés et bornés côté serveur.
type AttackBossRequest struct {
	DamageMultiplier *float64 `json:"damage_multiplier,omitempty"`
	XPBonus          *float64 `json:"xp_bonus,omitempty"`
}

// AttackActorRequest représente une demande de duel
type AttackActorRequest struct {
	DefenderID uuid.UUID `json:"defender_id" binding:"required"`
}

// GrantXPRequest représente un gain d'XP remonté par le mini-jeu raid.
// Les deux valeurs sont bornées côté serveur (anti-cheat).
type GrantXPRequest struct {
	XP        int64 `json:"xp"`
	RaidLevel int   `json:"raid_level"`
}

// ErrorResponse représente une réponse d'erreur standard
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}
