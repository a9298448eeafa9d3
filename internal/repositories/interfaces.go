package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates all entity repositories and transaction handling.
type Repository interface {
	Challenge() ChallengeRepository
	SubChallenge() SubChallengeRepository
	Submission() SubmissionRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError checks whether an error represents a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation checks whether an error was caused by a unique index,
// such as the one-submission-per-trainee constraint.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ===== SHARED FILTER STRUCTS =====

type ChallengeFilters struct {
	ManagerID *string    `json:"manager_id"`
	TraineeID *string    `json:"trainee_id"`
	Ended     *bool      `json:"ended"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "title"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	SubChallengeID *uint      `json:"sub_challenge_id"`
	TraineeID      *string    `json:"trainee_id"`
	Evaluated      *bool      `json:"evaluated"`
	DateFrom       *time.Time `json:"date_from"`
	DateTo         *time.Time `json:"date_to"`
	Limit          int        `json:"limit"`
	Offset         int        `json:"offset"`
	SortBy         string     `json:"sort_by"`
	SortOrder      string     `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

// GradingProgress summarizes how far evaluation of a sub-challenge has come.
type GradingProgress struct {
	TotalSubmissions     int `json:"total_submissions"`
	EvaluatedSubmissions int `json:"evaluated_submissions"`
	PendingSubmissions   int `json:"pending_submissions"`
}

type ChallengeStats struct {
	SubChallengeCount    int `json:"sub_challenge_count"`
	SubmissionCount      int `json:"submission_count"`
	EvaluatedSubmissions int `json:"evaluated_submissions"`
	TraineeCount         int `json:"trainee_count"`
}
