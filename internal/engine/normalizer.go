// Package engine contains the challenge evaluation core: result
// normalization, duplicate detection, scoring, evaluator assignment,
// submission lifecycle classification and leaderboard aggregation.
//
// Every function in this package is a pure computation over an in-memory
// snapshot. Nothing here performs I/O, holds state between calls, or
// returns an error: malformed input degrades to a safe default (usually a
// zero contribution) instead of aborting, so one bad result can never zero
// out an entire submission's valid work.
package engine

import (
	"strings"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// Normalize canonicalizes a submitted identifier so that different spellings
// of the same real-world reference compare equal.
//
// Literature references are compared as URLs/citations: scheme, leading
// "www." and one trailing slash are insignificant. Patent numbers are
// compared with all separator punctuation removed, so "US-1,234,567" and
// "us1234567" collapse to the same key.
//
// Normalize is total and idempotent: it never fails, and normalizing an
// already-normalized value is a no-op.
func Normalize(value string, typ models.ResultType) string {
	v := strings.ToLower(strings.TrimSpace(value))

	if typ == models.ResultTypeLiterature {
		v = strings.TrimPrefix(v, "https://")
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "www.")
		v = strings.TrimSuffix(v, "/")
		return v
	}

	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch r {
		case '-', '/', ',', ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
