package models

type ResultType string

const (
	ResultTypePatent     ResultType = "patent"
	ResultTypeLiterature ResultType = "literature"
)

// ResultTier is the three-level confidence classification assigned
// independently by the trainee and by the evaluator. Tier 1 is strongest.
type ResultTier string

const (
	TierOne   ResultTier = "tier_1"
	TierTwo   ResultTier = "tier_2"
	TierThree ResultTier = "tier_3"
)

type IncorrectMarking string

const (
	MarkingZero    IncorrectMarking = "zero"
	MarkingPenalty IncorrectMarking = "penalty"
)

// ReportRules configures whether a sub-challenge expects a written search
// report and how many points it is worth at most. MaxScore is advisory:
// the scoring engine adds the evaluator's report score as entered.
type ReportRules struct {
	Enabled  bool    `json:"enabled"`
	MaxScore float64 `json:"max_score"`
}

// EvaluationRules is the per-sub-challenge scoring configuration, stored as
// a jsonb column on the sub-challenge row.
//
// TierScores maps (result type, tier) to the points awarded when trainee and
// evaluator agree on the tier. A missing entry means that combination is
// worth nothing; the scoring engine treats it as 0 rather than failing.
type EvaluationRules struct {
	TierScores       map[ResultType]map[ResultTier]float64 `json:"tier_scores"`
	IncorrectMarking IncorrectMarking                      `json:"incorrect_marking"`
	IncorrectPenalty float64                               `json:"incorrect_penalty"`
	Report           ReportRules                           `json:"report"`
}

// TierScore looks up the configured score for a (type, tier) pair,
// degrading to 0 when the pair is not configured.
func (r EvaluationRules) TierScore(typ ResultType, tier ResultTier) float64 {
	byTier, ok := r.TierScores[typ]
	if !ok {
		return 0
	}
	return byTier[tier]
}

// KnownResultTypes and KnownResultTiers enumerate every value a trainee can
// produce; the rules validator uses them to flag incomplete tier tables.
var (
	KnownResultTypes = []ResultType{ResultTypePatent, ResultTypeLiterature}
	KnownResultTiers = []ResultTier{TierOne, TierTwo, TierThree}
)
