package postgres

import (
	"context"
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"gorm.io/gorm"
)

type SubChallengePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubChallengePostgreSQL(db *gorm.DB) repositories.SubChallengeRepository {
	return &SubChallengePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s SubChallengePostgreSQL) Create(ctx context.Context, subChallenge *models.SubChallenge) error {
	return s.db.WithContext(ctx).Create(subChallenge).Error
}

func (s SubChallengePostgreSQL) GetByID(ctx context.Context, id uint) (*models.SubChallenge, error) {
	var subChallenge models.SubChallenge
	if err := s.db.WithContext(ctx).First(&subChallenge, id).Error; err != nil {
		return nil, err
	}

	return &subChallenge, nil
}

func (s SubChallengePostgreSQL) GetByIDWithSubmissions(ctx context.Context, id uint) (*models.SubChallenge, error) {
	var subChallenge models.SubChallenge
	if err := s.db.WithContext(ctx).
		Preload("Submissions").
		First(&subChallenge, id).Error; err != nil {
		return nil, err
	}

	return &subChallenge, nil
}

func (s SubChallengePostgreSQL) GetByChallenge(ctx context.Context, challengeID uint) ([]*models.SubChallenge, error) {
	var subChallenges []*models.SubChallenge
	if err := s.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("submission_end_time asc").
		Find(&subChallenges).Error; err != nil {
		return nil, err
	}

	return subChallenges, nil
}

func (s SubChallengePostgreSQL) GetByChallengeWithSubmissions(ctx context.Context, challengeID uint) ([]*models.SubChallenge, error) {
	var subChallenges []*models.SubChallenge
	if err := s.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("submission_end_time asc").
		Preload("Submissions").
		Find(&subChallenges).Error; err != nil {
		return nil, err
	}

	return subChallenges, nil
}

func (s SubChallengePostgreSQL) Update(ctx context.Context, subChallenge *models.SubChallenge) error {
	return s.db.WithContext(ctx).Save(subChallenge).Error
}

func (s SubChallengePostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.SubChallenge{}, id).Error
}

func (s SubChallengePostgreSQL) MarkScoresPublished(ctx context.Context, id uint, publishedAt time.Time) error {
	return s.db.WithContext(ctx).Model(&models.SubChallenge{}).
		Where("id = ? AND scores_published_at IS NULL", id).
		Update("scores_published_at", publishedAt).Error
}

func (s SubChallengePostgreSQL) GetGradingProgress(ctx context.Context, id uint) (*repositories.GradingProgress, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("sub_challenge_id = ?", id).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var evaluated int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("sub_challenge_id = ? AND evaluation IS NOT NULL", id).
		Count(&evaluated).Error; err != nil {
		return nil, err
	}

	return &repositories.GradingProgress{
		TotalSubmissions:     int(total),
		EvaluatedSubmissions: int(evaluated),
		PendingSubmissions:   int(total - evaluated),
	}, nil
}
