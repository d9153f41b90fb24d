// internal/service/leveling.go - Conversion XP <-> level
package service

import "progression/internal/models"

// XPPerLevel est le diviseur fixe de conversion XP -> level,
// partagé avec le recalcul SQL du repository acteur
const XPPerLevel = models.XPPerLevel

// LevelForXP convertit un total d'XP en level : floor(xp / XPPerLevel) + 1.
// Fonction pure, totale et monotone.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/XPPerLevel) + 1
}

// GrantXP calcule le résultat d'un gain d'XP sans effet de bord.
// LeveledUp et la paire OldLevel/NewLevel forment le signal remis au
// système de badges, qui parcourt la plage de levels franchie.
func GrantXP(currentXP, amount int64) models.GrantXPResult {
	oldLevel := LevelForXP(currentXP)
	newXP := currentXP + amount
	newLevel := LevelForXP(newXP)

	return models.GrantXPResult{
		XPEarned:  amount,
		NewXP:     newXP,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		LeveledUp: newLevel > oldLevel,
	}
}

// XPIntoLevel retourne l'XP accumulée dans le level courant
func XPIntoLevel(xp int64) int64 {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// XPForNextLevel retourne l'XP restante avant le prochain level
func XPForNextLevel(xp int64) int64 {
	return XPPerLevel - XPIntoLevel(xp)
}
