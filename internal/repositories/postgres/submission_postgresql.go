package postgres

import (
	"context"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

func (s SubmissionPostgreSQL) Update(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}

func (s SubmissionPostgreSQL) GetBySubChallengeAndTrainee(ctx context.Context, subChallengeID uint, traineeID string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("sub_challenge_id = ? AND trainee_id = ?", subChallengeID, traineeID).
		First(&submission).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

func (s SubmissionPostgreSQL) GetBySubChallenge(ctx context.Context, subChallengeID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	if err := s.db.WithContext(ctx).
		Where("sub_challenge_id = ?", subChallengeID).
		Order("submitted_at asc").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (s SubmissionPostgreSQL) GetByTrainee(ctx context.Context, traineeID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	filters.TraineeID = &traineeID
	return s.List(ctx, filters)
}

func (s SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	// apply filter first
	query := s.db.WithContext(ctx).Model(&models.Submission{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = s.applyPaginationAndSort(query, filters)

	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (s SubmissionPostgreSQL) ExistsForTrainee(ctx context.Context, subChallengeID uint, traineeID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("sub_challenge_id = ? AND trainee_id = ?", subChallengeID, traineeID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s SubmissionPostgreSQL) CountBySubChallenge(ctx context.Context, subChallengeID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("sub_challenge_id = ?", subChallengeID).
		Count(&count).Error

	return count, err
}

// applyFilters applies common filters to a query
func (s SubmissionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.SubChallengeID != nil {
		query = query.Where("sub_challenge_id = ?", *filters.SubChallengeID)
	}

	if filters.TraineeID != nil {
		query = query.Where("trainee_id = ?", *filters.TraineeID)
	}

	if filters.Evaluated != nil {
		if *filters.Evaluated {
			query = query.Where("evaluation IS NOT NULL")
		} else {
			query = query.Where("evaluation IS NULL")
		}
	}

	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}

	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}

	return query
}

// applyPaginationAndSort applies pagination and sorting to a query
func (s SubmissionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "submitted_at", "created_at":
	default:
		sortBy = "submitted_at"
	}
	return s.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)
}
