package repositories

import (
	"context"
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// ChallengeRepository covers overall challenges (campaigns).
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.OverallChallenge) error
	GetByID(ctx context.Context, id uint) (*models.OverallChallenge, error)
	GetByIDWithSubChallenges(ctx context.Context, id uint) (*models.OverallChallenge, error)
	Update(ctx context.Context, challenge *models.OverallChallenge) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters ChallengeFilters) ([]*models.OverallChallenge, int64, error)
	GetByManager(ctx context.Context, managerID string, filters ChallengeFilters) ([]*models.OverallChallenge, int64, error)
	GetByTrainee(ctx context.Context, traineeID string, filters ChallengeFilters) ([]*models.OverallChallenge, int64, error)

	MarkEnded(ctx context.Context, id uint, endedAt time.Time) error
	GetStats(ctx context.Context, id uint) (*ChallengeStats, error)
}

// SubChallengeRepository covers per-patent gradable units.
type SubChallengeRepository interface {
	Create(ctx context.Context, subChallenge *models.SubChallenge) error
	GetByID(ctx context.Context, id uint) (*models.SubChallenge, error)
	GetByIDWithSubmissions(ctx context.Context, id uint) (*models.SubChallenge, error)
	GetByChallenge(ctx context.Context, challengeID uint) ([]*models.SubChallenge, error)
	GetByChallengeWithSubmissions(ctx context.Context, challengeID uint) ([]*models.SubChallenge, error)
	Update(ctx context.Context, subChallenge *models.SubChallenge) error
	Delete(ctx context.Context, id uint) error

	MarkScoresPublished(ctx context.Context, id uint, publishedAt time.Time) error
	GetGradingProgress(ctx context.Context, id uint) (*GradingProgress, error)
}
