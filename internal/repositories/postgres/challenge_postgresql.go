package postgres

import (
	"context"
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"gorm.io/gorm"
)

type ChallengePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewChallengePostgreSQL(db *gorm.DB) repositories.ChallengeRepository {
	return &ChallengePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (c ChallengePostgreSQL) Create(ctx context.Context, challenge *models.OverallChallenge) error {
	return c.db.WithContext(ctx).Create(challenge).Error
}

func (c ChallengePostgreSQL) GetByID(ctx context.Context, id uint) (*models.OverallChallenge, error) {
	var challenge models.OverallChallenge
	if err := c.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return nil, err
	}

	return &challenge, nil
}

func (c ChallengePostgreSQL) GetByIDWithSubChallenges(ctx context.Context, id uint) (*models.OverallChallenge, error) {
	var challenge models.OverallChallenge
	if err := c.db.WithContext(ctx).
		Preload("SubChallenges").
		First(&challenge, id).Error; err != nil {
		return nil, err
	}

	return &challenge, nil
}

func (c ChallengePostgreSQL) Update(ctx context.Context, challenge *models.OverallChallenge) error {
	return c.db.WithContext(ctx).Save(challenge).Error
}

func (c ChallengePostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.OverallChallenge{}, id).Error
}

func (c ChallengePostgreSQL) List(ctx context.Context, filters repositories.ChallengeFilters) ([]*models.OverallChallenge, int64, error) {
	var challenges []*models.OverallChallenge
	var total int64

	// apply filter first
	query := c.db.WithContext(ctx).Model(&models.OverallChallenge{})
	query = c.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = c.applyPaginationAndSort(query, filters)

	if err := query.Find(&challenges).Error; err != nil {
		return nil, 0, err
	}

	return challenges, total, nil
}

func (c ChallengePostgreSQL) GetByManager(ctx context.Context, managerID string, filters repositories.ChallengeFilters) ([]*models.OverallChallenge, int64, error) {
	filters.ManagerID = &managerID
	return c.List(ctx, filters)
}

func (c ChallengePostgreSQL) GetByTrainee(ctx context.Context, traineeID string, filters repositories.ChallengeFilters) ([]*models.OverallChallenge, int64, error) {
	filters.TraineeID = &traineeID
	return c.List(ctx, filters)
}

func (c ChallengePostgreSQL) MarkEnded(ctx context.Context, id uint, endedAt time.Time) error {
	return c.db.WithContext(ctx).Model(&models.OverallChallenge{}).
		Where("id = ? AND ended_at IS NULL", id).
		Update("ended_at", endedAt).Error
}

func (c ChallengePostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.ChallengeStats, error) {
	var challenge models.OverallChallenge
	if err := c.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return nil, err
	}

	var subChallengeCount int64
	if err := c.db.WithContext(ctx).
		Model(&models.SubChallenge{}).
		Where("challenge_id = ?", id).
		Count(&subChallengeCount).Error; err != nil {
		return nil, err
	}

	var submissionCount int64
	if err := c.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN sub_challenges ON sub_challenges.id = submissions.sub_challenge_id").
		Where("sub_challenges.challenge_id = ?", id).
		Count(&submissionCount).Error; err != nil {
		return nil, err
	}

	var evaluatedCount int64
	if err := c.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN sub_challenges ON sub_challenges.id = submissions.sub_challenge_id").
		Where("sub_challenges.challenge_id = ? AND submissions.evaluation IS NOT NULL", id).
		Count(&evaluatedCount).Error; err != nil {
		return nil, err
	}

	return &repositories.ChallengeStats{
		SubChallengeCount:    int(subChallengeCount),
		SubmissionCount:      int(submissionCount),
		EvaluatedSubmissions: int(evaluatedCount),
		TraineeCount:         len(challenge.TraineeIDs),
	}, nil
}

// applyFilters applies common filters to a query
func (c ChallengePostgreSQL) applyFilters(query *gorm.DB, filters repositories.ChallengeFilters) *gorm.DB {
	if filters.ManagerID != nil {
		query = query.Where("manager_ids @> ?", jsonStringArray(*filters.ManagerID))
	}

	if filters.TraineeID != nil {
		query = query.Where("trainee_ids @> ?", jsonStringArray(*filters.TraineeID))
	}

	if filters.Ended != nil {
		if *filters.Ended {
			query = query.Where("ended_at IS NOT NULL")
		} else {
			query = query.Where("ended_at IS NULL")
		}
	}

	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}

	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	return query
}

// applyPaginationAndSort applies pagination and sorting to a query
func (c ChallengePostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ChallengeFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "title":
	default:
		sortBy = "created_at"
	}
	return c.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)
}
