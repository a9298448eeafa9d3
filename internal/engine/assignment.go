package engine

import (
	"github.com/priorart-academy/challenge-service/internal/models"
)

// Actor is the minimal identity needed for an assignment decision.
type Actor struct {
	ID   string
	Role models.UserRole
}

// CanEvaluate decides whether an actor may grade submissions of the given
// sub-challenge.
//
// Explicit assignment always wins: a user listed in the sub-challenge's
// evaluator list may grade regardless of role. When no evaluators are
// assigned, responsibility falls back implicitly to the overall challenge's
// managers. Everyone else is denied.
//
// The decision depends on the sub-challenge's own evaluator list, so it
// must be made per (actor, sub-challenge) pair and never cached across
// sub-challenges. A false return is the expected access-denied signal, not
// an error.
func CanEvaluate(actor Actor, subChallenge models.SubChallenge, parentManagerIDs []string) bool {
	if subChallenge.HasEvaluator(actor.ID) {
		return true
	}

	if actor.Role == models.RoleManager && len(subChallenge.EvaluatorIDs) == 0 {
		for _, id := range parentManagerIDs {
			if id == actor.ID {
				return true
			}
		}
	}

	return false
}
