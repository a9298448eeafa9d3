package engine

import (
	"sort"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// RankedEntry is one leaderboard row.
type RankedEntry struct {
	Rank       int    `json:"rank"`
	TraineeID  string `json:"trainee_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

// AggregateLeaderboard folds per-submission scores across sub-challenges
// into a ranked table, one row per trainee.
//
// Only evaluated submissions contribute; ungraded work changes nothing
// versus omitting it entirely. Unless includeUnpublished is set (internal
// manager views), sub-challenges whose scores have not been published are
// excluded even when graded.
//
// Rows are sorted descending by total score. Ties keep the stable order of
// the trainees input slice, so repeated computation over the same snapshot
// yields the same ranking.
func AggregateLeaderboard(trainees []models.User, subChallenges []models.SubChallenge, includeUnpublished bool) []RankedEntry {
	totals := make(map[string]int, len(trainees))

	for i := range subChallenges {
		sc := &subChallenges[i]
		if !includeUnpublished && !sc.ScoresPublished() {
			continue
		}
		for j := range sc.Submissions {
			sub := &sc.Submissions[j]
			if !sub.IsEvaluated() {
				continue
			}
			totals[sub.TraineeID] += Score(*sub, sc.Rules)
		}
	}

	entries := make([]RankedEntry, 0, len(trainees))
	for _, t := range trainees {
		entries = append(entries, RankedEntry{
			TraineeID:  t.ID,
			Name:       t.FullName,
			TotalScore: totals[t.ID],
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].TotalScore > entries[b].TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
