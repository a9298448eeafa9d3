package engine

import (
	"math"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// Score computes the total score of a submission under the given rules.
//
// An ungraded submission (no evaluation attached) scores 0. Each submitted
// result contributes independently:
//
//   - no judgment for the result yet: 0 (partial credit while grading is
//     in progress, not an error)
//   - a score override: exactly the override, tier comparison and penalty
//     logic are bypassed
//   - matching tiers: the configured tier score for the result's type
//     (0 when the (type, tier) pair is not configured)
//   - mismatching tiers: the configured penalty when marking is "penalty"
//     (applied with whatever sign is configured), otherwise 0
//
// When report scoring is enabled and the evaluator entered a report score,
// it is added as entered; MaxScore does not clamp it here. The accumulated
// total is rounded to the nearest integer.
func Score(submission models.Submission, rules models.EvaluationRules) int {
	if submission.Evaluation == nil {
		return 0
	}

	var total float64
	for _, r := range submission.Results {
		total += resultContribution(r, submission.Evaluation, rules)
	}

	if rules.Report.Enabled && submission.Evaluation.ReportScore != nil {
		total += *submission.Evaluation.ReportScore
	}

	return int(math.Round(total))
}

func resultContribution(r models.SubmittedResult, eval *models.Evaluation, rules models.EvaluationRules) float64 {
	judgment := eval.Judgment(r.ID)
	if judgment == nil {
		return 0
	}

	if judgment.ScoreOverride != nil {
		return *judgment.ScoreOverride
	}

	if r.TraineeTier == judgment.EvaluatorTier {
		return rules.TierScore(r.Type, r.TraineeTier)
	}

	if rules.IncorrectMarking == models.MarkingPenalty {
		return rules.IncorrectPenalty
	}
	return 0
}
