package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmittedResult is one prior-art finding inside a submission. Value is
// free text (a patent number or a literature reference) classified by the
// trainee with a type and a self-assessed tier.
//
// SubmittedAt is optional; consumers fall back to the parent submission's
// timestamp when it is absent.
type SubmittedResult struct {
	ID          string     `json:"id" validate:"required"`
	Value       string     `json:"value" validate:"required"`
	Type        ResultType `json:"type" validate:"required,result_type"`
	TraineeTier ResultTier `json:"trainee_tier" validate:"required,result_tier"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// ResultEvaluation is the evaluator's judgment for a single submitted
// result. A non-nil ScoreOverride replaces tier-comparison scoring for that
// result entirely.
type ResultEvaluation struct {
	ResultID       string     `json:"result_id" validate:"required"`
	EvaluatorTier  ResultTier `json:"evaluator_tier" validate:"required,result_tier"`
	ScoreOverride  *float64   `json:"score_override"`
	OverrideReason string     `json:"override_reason"`
}

// Evaluation is attached at most once per submission. Its presence is the
// sole signal that a submission has been graded.
type Evaluation struct {
	EvaluatorID       string             `json:"evaluator_id" validate:"required"`
	ResultEvaluations []ResultEvaluation `json:"result_evaluations" validate:"dive"`
	ReportScore       *float64           `json:"report_score"`
	Feedback          string             `json:"feedback"`
	EvaluatedAt       time.Time          `json:"evaluated_at"`
}

// Judgment returns the evaluation entry for a result ID, or nil when the
// evaluator has not judged that result yet.
func (e *Evaluation) Judgment(resultID string) *ResultEvaluation {
	if e == nil {
		return nil
	}
	for i := range e.ResultEvaluations {
		if e.ResultEvaluations[i].ResultID == resultID {
			return &e.ResultEvaluations[i]
		}
	}
	return nil
}

// ReportFile holds metadata of an uploaded search report. Storage of the
// file itself is handled elsewhere; only name and path travel through here.
type ReportFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Submission is a trainee's one-and-only entry for a sub-challenge.
// Results and Evaluation live in jsonb columns on the row and are decoded
// into the typed fields by the gorm hooks below, so everything past the
// persistence boundary operates on strongly-typed structures.
type Submission struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	SubChallengeID uint      `json:"sub_challenge_id" gorm:"not null;index;uniqueIndex:idx_sub_challenge_trainee"`
	TraineeID      string    `json:"trainee_id" gorm:"not null;size:255;index;uniqueIndex:idx_sub_challenge_trainee"`
	SubmittedAt    time.Time `json:"submitted_at" gorm:"not null"`

	ResultsJSON    datatypes.JSON `json:"-" gorm:"column:results;type:jsonb"`
	ReportJSON     datatypes.JSON `json:"-" gorm:"column:report_file;type:jsonb"`
	EvaluationJSON datatypes.JSON `json:"-" gorm:"column:evaluation;type:jsonb"`

	Results    []SubmittedResult `json:"results" gorm:"-"`
	ReportFile *ReportFile       `json:"report_file" gorm:"-"`
	Evaluation *Evaluation       `json:"evaluation" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	SubChallenge *SubChallenge `json:"-" gorm:"foreignKey:SubChallengeID"`
	Trainee      *User         `json:"trainee,omitempty" gorm:"foreignKey:TraineeID"`

	// Computed fields (not stored)
	Score int `json:"score" gorm:"-"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsEvaluated reports whether an evaluator has graded this submission.
func (s *Submission) IsEvaluated() bool {
	return s.Evaluation != nil
}

// ResultTime returns the effective timestamp of a result, falling back to
// the submission's own timestamp when the result carries none.
func (s *Submission) ResultTime(r SubmittedResult) time.Time {
	if r.SubmittedAt != nil {
		return *r.SubmittedAt
	}
	return s.SubmittedAt
}

func (s *Submission) BeforeSave(tx *gorm.DB) error {
	raw, err := json.Marshal(s.Results)
	if err != nil {
		return err
	}
	s.ResultsJSON = raw

	if s.ReportFile != nil {
		if raw, err = json.Marshal(s.ReportFile); err != nil {
			return err
		}
		s.ReportJSON = raw
	}
	if s.Evaluation != nil {
		if raw, err = json.Marshal(s.Evaluation); err != nil {
			return err
		}
		s.EvaluationJSON = raw
	}
	return nil
}

func (s *Submission) AfterFind(tx *gorm.DB) error {
	if len(s.ResultsJSON) > 0 {
		if err := json.Unmarshal(s.ResultsJSON, &s.Results); err != nil {
			return err
		}
	}
	if len(s.ReportJSON) > 0 {
		if err := json.Unmarshal(s.ReportJSON, &s.ReportFile); err != nil {
			return err
		}
	}
	if len(s.EvaluationJSON) > 0 {
		if err := json.Unmarshal(s.EvaluationJSON, &s.Evaluation); err != nil {
			return err
		}
	}
	return nil
}
