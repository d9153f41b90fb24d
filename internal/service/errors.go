// internal/service/errors.go - Taxonomie des erreurs métier
package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Erreurs de validation : rejet synchrone, aucune mutation
var (
	ErrSelfAttack       = errors.New("you cannot attack yourself")
	ErrDefenderNotFound = errors.New("defender not found or inactive")
)

// CooldownError est une erreur de précondition : l'appelant peut réessayer
// après le délai indiqué (arrondi à la seconde supérieure)
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("wait %d seconds before attacking again", e.RemainingSeconds())
}

// RemainingSeconds retourne le délai restant en secondes, arrondi au
// supérieur
func (e *CooldownError) RemainingSeconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}
