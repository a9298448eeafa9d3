package validator

import (
	"fmt"

	apperrors "github.com/priorart-academy/challenge-service/internal/errors"
	"github.com/priorart-academy/challenge-service/internal/models"
)

// RulesValidator checks evaluation rule sets at authoring time. The scoring
// engine itself degrades missing entries to 0, so these checks produce
// errors only for configurations that cannot be meant seriously and
// warnings for the rest.
type RulesValidator struct{}

func NewRulesValidator() *RulesValidator {
	return &RulesValidator{}
}

// Validate returns hard errors for an unusable rule set.
func (rv *RulesValidator) Validate(rules models.EvaluationRules) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(rules.TierScores) == 0 {
		errs = append(errs, *apperrors.NewValidationError(
			"tier_scores", "at least one (type, tier) score must be configured", nil))
	}

	switch rules.IncorrectMarking {
	case models.MarkingZero, models.MarkingPenalty:
	default:
		errs = append(errs, *apperrors.NewValidationError(
			"incorrect_marking", "must be zero or penalty", rules.IncorrectMarking))
	}

	if rules.IncorrectMarking == models.MarkingPenalty && rules.IncorrectPenalty > 0 {
		errs = append(errs, *apperrors.NewValidationError(
			"incorrect_penalty", "penalty is expected to be negative or zero", rules.IncorrectPenalty))
	}

	if rules.Report.Enabled && rules.Report.MaxScore <= 0 {
		errs = append(errs, *apperrors.NewValidationError(
			"report.max_score", "must be positive when report scoring is enabled", rules.Report.MaxScore))
	}

	return errs
}

// Warnings reports tier table gaps. A missing (type, tier) entry scores 0
// at grading time, which is usually an authoring oversight rather than an
// intended rule.
func (rv *RulesValidator) Warnings(rules models.EvaluationRules) []string {
	var warnings []string

	for _, typ := range models.KnownResultTypes {
		byTier, ok := rules.TierScores[typ]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("no tier scores configured for result type %q; all %s results will score 0", typ, typ))
			continue
		}
		for _, tier := range models.KnownResultTiers {
			if _, ok := byTier[tier]; !ok {
				warnings = append(warnings, fmt.Sprintf("no score configured for (%s, %s); such results will score 0", typ, tier))
			}
		}
	}

	return warnings
}
