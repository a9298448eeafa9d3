package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OverallChallenge is a training campaign grouping several sub-challenges.
// EndedAt, once set, makes every child sub-challenge permanently read-only
// regardless of the sub-challenges' own deadlines.
type OverallChallenge struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	ManagerIDs datatypes.JSONSlice[string] `json:"manager_ids" gorm:"type:jsonb"`
	TraineeIDs datatypes.JSONSlice[string] `json:"trainee_ids" gorm:"type:jsonb"`

	EndedAt *time.Time `json:"ended_at"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	SubChallenges []SubChallenge `json:"sub_challenges,omitempty" gorm:"foreignKey:ChallengeID"`
}

func (OverallChallenge) TableName() string {
	return "overall_challenges"
}

// IsEnded reports whether the campaign has been closed by a manager.
func (c *OverallChallenge) IsEnded() bool {
	return c.EndedAt != nil
}

// HasManager reports whether the given user manages this campaign.
func (c *OverallChallenge) HasManager(userID string) bool {
	for _, id := range c.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasTrainee reports whether the given user is enrolled as a trainee.
func (c *OverallChallenge) HasTrainee(userID string) bool {
	for _, id := range c.TraineeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SubChallenge is one gradable unit tied to a single patent. Trainees
// submit prior-art results against it before SubmissionEndTime; evaluators
// grade those submissions using the sub-challenge's evaluation rules.
//
// EvaluatorIDs empty or null means no explicit assignment: responsibility
// falls back to the overall challenge's managers.
type SubChallenge struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ChallengeID uint   `json:"challenge_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`

	// Patent under search
	PatentNumber string  `json:"patent_number" gorm:"not null;size:50" validate:"required"`
	PatentTitle  *string `json:"patent_title" gorm:"size:300"`

	// Deadlines
	SubmissionEndTime time.Time  `json:"submission_end_time" gorm:"not null" validate:"required"`
	ReportEndTime     *time.Time `json:"report_end_time"`

	EvaluatorIDs datatypes.JSONSlice[string] `json:"evaluator_ids" gorm:"type:jsonb"`

	// Scoring configuration (jsonb column, decoded into Rules on load)
	RulesJSON datatypes.JSON  `json:"-" gorm:"column:rules;type:jsonb"`
	Rules     EvaluationRules `json:"rules" gorm:"-"`

	ScoresPublishedAt *time.Time `json:"scores_published_at"`
	SubmissionLimit   *int       `json:"submission_limit" validate:"omitempty,min=1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Challenge   *OverallChallenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
	Submissions []Submission      `json:"submissions,omitempty" gorm:"foreignKey:SubChallengeID"`
}

func (SubChallenge) TableName() string {
	return "sub_challenges"
}

// ScoresPublished reports whether a manager has published this
// sub-challenge's scores for trainee and public visibility.
func (sc *SubChallenge) ScoresPublished() bool {
	return sc.ScoresPublishedAt != nil
}

// HasEvaluator reports whether the given user is explicitly assigned.
func (sc *SubChallenge) HasEvaluator(userID string) bool {
	for _, id := range sc.EvaluatorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// BeforeSave encodes the typed rules into the jsonb column.
func (sc *SubChallenge) BeforeSave(tx *gorm.DB) error {
	raw, err := json.Marshal(sc.Rules)
	if err != nil {
		return err
	}
	sc.RulesJSON = raw
	return nil
}

// AfterFind decodes the jsonb rules column into the typed struct so every
// consumer past the persistence boundary works with strongly-typed rules.
func (sc *SubChallenge) AfterFind(tx *gorm.DB) error {
	if len(sc.RulesJSON) == 0 {
		return nil
	}
	return json.Unmarshal(sc.RulesJSON, &sc.Rules)
}
