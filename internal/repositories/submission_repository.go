package repositories

import (
	"context"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// SubmissionRepository covers trainee submissions and their attached
// evaluations (stored on the submission row).
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error

	GetBySubChallengeAndTrainee(ctx context.Context, subChallengeID uint, traineeID string) (*models.Submission, error)
	GetBySubChallenge(ctx context.Context, subChallengeID uint) ([]*models.Submission, error)
	GetByTrainee(ctx context.Context, traineeID string, filters SubmissionFilters) ([]*models.Submission, int64, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)

	ExistsForTrainee(ctx context.Context, subChallengeID uint, traineeID string) (bool, error)
	CountBySubChallenge(ctx context.Context, subChallengeID uint) (int64, error)
}
