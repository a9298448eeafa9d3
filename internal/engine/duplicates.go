package engine

import (
	"sort"
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// SubmitterEntry records one trainee having submitted a particular
// (normalized) reference, with the original spelling and the effective
// submission time.
type SubmitterEntry struct {
	TraineeID     string    `json:"trainee_id"`
	OriginalValue string    `json:"original_value"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// DetectDuplicates cross-references every result of every submission in a
// sub-challenge, grouped by normalized key. Within a group, entries are
// ordered ascending by effective submission time with ties broken by
// trainee ID, so the head of each list is the first submitter. That
// ordering is load-bearing: it drives override suggestions during grading
// and "first correct" recognition on public pages.
//
// The computation is deterministic: identical input always yields identical
// groupings and ordering.
func DetectDuplicates(submissions []models.Submission) map[string][]SubmitterEntry {
	groups := make(map[string][]SubmitterEntry)

	for i := range submissions {
		sub := &submissions[i]
		for _, r := range sub.Results {
			key := Normalize(r.Value, r.Type)
			groups[key] = append(groups[key], SubmitterEntry{
				TraineeID:     sub.TraineeID,
				OriginalValue: r.Value,
				SubmittedAt:   sub.ResultTime(r),
			})
		}
	}

	for key := range groups {
		entries := groups[key]
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].SubmittedAt.Equal(entries[b].SubmittedAt) {
				return entries[a].TraineeID < entries[b].TraineeID
			}
			return entries[a].SubmittedAt.Before(entries[b].SubmittedAt)
		})
	}

	return groups
}

// IsDuplicate reports whether a group holds more than one submitter entry.
func IsDuplicate(entries []SubmitterEntry) bool {
	return len(entries) > 1
}

// FirstSubmitter returns the earliest entry of a group, or nil for an
// empty group.
func FirstSubmitter(entries []SubmitterEntry) *SubmitterEntry {
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}
