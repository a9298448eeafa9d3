package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/priorart-academy/challenge-service/internal/cache"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockChallengeRepository is a mock implementation of ChallengeRepository
type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) Create(ctx context.Context, challenge *models.OverallChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockChallengeRepository) GetByID(ctx context.Context, id uint) (*models.OverallChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OverallChallenge), args.Error(1)
}

func (m *MockChallengeRepository) GetByIDWithSubChallenges(ctx context.Context, id uint) (*models.OverallChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OverallChallenge), args.Error(1)
}

func (m *MockChallengeRepository) Update(ctx context.Context, challenge *models.OverallChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockChallengeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChallengeRepository) List(ctx context.Context, filters repositories.ChallengeFilters) ([]*models.OverallChallenge, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.OverallChallenge), args.Get(1).(int64), args.Error(2)
}

func (m *MockChallengeRepository) GetByManager(ctx context.Context, managerID string, filters repositories.ChallengeFilters) ([]*models.OverallChallenge, int64, error) {
	args := m.Called(ctx, managerID, filters)
	return args.Get(0).([]*models.OverallChallenge), args.Get(1).(int64), args.Error(2)
}

func (m *MockChallengeRepository) GetByTrainee(ctx context.Context, traineeID string, filters repositories.ChallengeFilters) ([]*models.OverallChallenge, int64, error) {
	args := m.Called(ctx, traineeID, filters)
	return args.Get(0).([]*models.OverallChallenge), args.Get(1).(int64), args.Error(2)
}

func (m *MockChallengeRepository) MarkEnded(ctx context.Context, id uint, endedAt time.Time) error {
	args := m.Called(ctx, id, endedAt)
	return args.Error(0)
}

func (m *MockChallengeRepository) GetStats(ctx context.Context, id uint) (*repositories.ChallengeStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.ChallengeStats), args.Error(1)
}

// MockSubChallengeRepository is a mock implementation of SubChallengeRepository
type MockSubChallengeRepository struct {
	mock.Mock
}

func (m *MockSubChallengeRepository) Create(ctx context.Context, subChallenge *models.SubChallenge) error {
	args := m.Called(ctx, subChallenge)
	return args.Error(0)
}

func (m *MockSubChallengeRepository) GetByID(ctx context.Context, id uint) (*models.SubChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubChallenge), args.Error(1)
}

func (m *MockSubChallengeRepository) GetByIDWithSubmissions(ctx context.Context, id uint) (*models.SubChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubChallenge), args.Error(1)
}

func (m *MockSubChallengeRepository) GetByChallenge(ctx context.Context, challengeID uint) ([]*models.SubChallenge, error) {
	args := m.Called(ctx, challengeID)
	return args.Get(0).([]*models.SubChallenge), args.Error(1)
}

func (m *MockSubChallengeRepository) GetByChallengeWithSubmissions(ctx context.Context, challengeID uint) ([]*models.SubChallenge, error) {
	args := m.Called(ctx, challengeID)
	return args.Get(0).([]*models.SubChallenge), args.Error(1)
}

func (m *MockSubChallengeRepository) Update(ctx context.Context, subChallenge *models.SubChallenge) error {
	args := m.Called(ctx, subChallenge)
	return args.Error(0)
}

func (m *MockSubChallengeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubChallengeRepository) MarkScoresPublished(ctx context.Context, id uint, publishedAt time.Time) error {
	args := m.Called(ctx, id, publishedAt)
	return args.Error(0)
}

func (m *MockSubChallengeRepository) GetGradingProgress(ctx context.Context, id uint) (*repositories.GradingProgress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.GradingProgress), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetBySubChallengeAndTrainee(ctx context.Context, subChallengeID uint, traineeID string) (*models.Submission, error) {
	args := m.Called(ctx, subChallengeID, traineeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) GetBySubChallenge(ctx context.Context, subChallengeID uint) ([]*models.Submission, error) {
	args := m.Called(ctx, subChallengeID)
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) GetByTrainee(ctx context.Context, traineeID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, traineeID, filters)
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) ExistsForTrainee(ctx context.Context, subChallengeID uint, traineeID string) (bool, error) {
	args := m.Called(ctx, subChallengeID, traineeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) CountBySubChallenge(ctx context.Context, subChallengeID uint) (int64, error) {
	args := m.Called(ctx, subChallengeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByRole(ctx context.Context, role models.UserRole, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	args := m.Called(ctx, id, role)
	return args.Bool(0), args.Error(1)
}

// mockRepository bundles the entity mocks behind the Repository interface.
type mockRepository struct {
	challenge    *MockChallengeRepository
	subChallenge *MockSubChallengeRepository
	submission   *MockSubmissionRepository
	user         *MockUserRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		challenge:    new(MockChallengeRepository),
		subChallenge: new(MockSubChallengeRepository),
		submission:   new(MockSubmissionRepository),
		user:         new(MockUserRepository),
	}
}

func (r *mockRepository) Challenge() repositories.ChallengeRepository       { return r.challenge }
func (r *mockRepository) SubChallenge() repositories.SubChallengeRepository { return r.subChallenge }
func (r *mockRepository) Submission() repositories.SubmissionRepository     { return r.submission }
func (r *mockRepository) User() repositories.UserRepository                 { return r.user }

func (r *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *mockRepository) Ping(ctx context.Context) error { return nil }
func (r *mockRepository) Close() error                   { return nil }

// mockCache is an in-memory CacheService for tests.
type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (c *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *mockCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
		}
	}
	return nil
}
