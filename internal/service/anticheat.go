// internal/service/anticheat.go - Bornage des entrées numériques non fiables
package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"progression/internal/config"
)

// AntiCheatServiceInterface définit les méthodes de validation anti-triche.
// Posture délibérée : toujours produire un résultat valide borné plutôt que
// de faire échouer la requête.
type AntiCheatServiceInterface interface {
	SanitizeDamageMultiplier(value *float64) float64
	SanitizeXPBonus(value *float64) float64
	ClampXPAmount(xp int64) int64
	ClampRaidLevel(level int) int
}

// AntiCheatService implémente l'interface AntiCheatServiceInterface
type AntiCheatService struct {
	config *config.Config
}

// NewAntiCheatService crée une nouvelle instance du service anti-triche
func NewAntiCheatService(cfg *config.Config) AntiCheatServiceInterface {
	return &AntiCheatService{config: cfg}
}

// SanitizeDamageMultiplier valide le multiplicateur de dégâts.
// Absent ou hors [0, max] : la valeur est ignorée et le défaut 1 s'applique,
// jamais d'amplification au-delà du plafond documenté.
func (s *AntiCheatService) SanitizeDamageMultiplier(value *float64) float64 {
	if value == nil {
		return 1
	}

	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > s.config.AntiCheat.MaxDamageMultiplier {
		s.logSuspicious("damage_multiplier", v)
		return 1
	}

	return v
}

// SanitizeXPBonus valide le bonus d'XP. Absent ou hors [0, max] : défaut 0.
func (s *AntiCheatService) SanitizeXPBonus(value *float64) float64 {
	if value == nil {
		return 0
	}

	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > s.config.AntiCheat.MaxXPBonus {
		s.logSuspicious("xp_bonus", v)
		return 0
	}

	return v
}

// ClampXPAmount borne un gain d'XP brut remonté par le client
func (s *AntiCheatService) ClampXPAmount(xp int64) int64 {
	max := s.config.AntiCheat.MaxXPPerAction

	if xp < 0 {
		s.logSuspicious("xp_amount", float64(xp))
		return 0
	}
	if xp > max {
		s.logSuspicious("xp_amount", float64(xp))
		return max
	}

	return xp
}

// ClampRaidLevel borne le level de raid remonté par le client à [1, max]
func (s *AntiCheatService) ClampRaidLevel(level int) int {
	max := s.config.AntiCheat.MaxRaidLevel

	if level < 1 {
		s.logSuspicious("raid_level", float64(level))
		return 1
	}
	if level > max {
		s.logSuspicious("raid_level", float64(level))
		return max
	}

	return level
}

// logSuspicious trace les valeurs hors bornes si configuré
func (s *AntiCheatService) logSuspicious(field string, value float64) {
	if !s.config.AntiCheat.LogSuspiciousActivity {
		return
	}

	logrus.WithFields(logrus.Fields{
		"field": field,
		"value": value,
	}).Warn("Suspicious input value capped")
}
