package postgres

import (
	"context"

	"github.com/priorart-academy/challenge-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	challenge    repositories.ChallengeRepository
	subChallenge repositories.SubChallengeRepository
	submission   repositories.SubmissionRepository
	user         repositories.UserRepository
}

// NewRepository wires the gorm-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:           db,
		challenge:    NewChallengePostgreSQL(db),
		subChallenge: NewSubChallengePostgreSQL(db),
		submission:   NewSubmissionPostgreSQL(db),
		user:         NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Challenge() repositories.ChallengeRepository {
	return r.challenge
}

func (r *gormRepository) SubChallenge() repositories.SubChallengeRepository {
	return r.subChallenge
}

func (r *gormRepository) Submission() repositories.SubmissionRepository {
	return r.submission
}

func (r *gormRepository) User() repositories.UserRepository {
	return r.user
}

// WithTransaction runs fn against a repository bound to a single
// transaction, committing on nil and rolling back on error.
func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
