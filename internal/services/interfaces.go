package services

import (
	"log/slog"

	"github.com/priorart-academy/challenge-service/internal/cache"
	"github.com/priorart-academy/challenge-service/internal/events"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/priorart-academy/challenge-service/internal/validator"
)

// ServiceManager exposes all domain services behind one accessor so the
// handler layer only needs a single dependency.
type ServiceManager interface {
	Challenge() ChallengeService
	Submission() SubmissionService
	Evaluation() EvaluationService
	Leaderboard() LeaderboardService
	Export() ExportService
}

type serviceManager struct {
	challenge   ChallengeService
	submission  SubmissionService
	evaluation  EvaluationService
	leaderboard LeaderboardService
	export      ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	leaderboard := NewLeaderboardService(repo, cacheService, logger)

	return &serviceManager{
		challenge:   NewChallengeService(repo, cacheService, eventPublisher, logger, v),
		submission:  NewSubmissionService(repo, eventPublisher, logger, v),
		evaluation:  NewEvaluationService(repo, cacheService, eventPublisher, logger, v),
		leaderboard: leaderboard,
		export:      NewExportService(repo, leaderboard, logger),
	}
}

func (sm *serviceManager) Challenge() ChallengeService     { return sm.challenge }
func (sm *serviceManager) Submission() SubmissionService   { return sm.submission }
func (sm *serviceManager) Evaluation() EvaluationService   { return sm.evaluation }
func (sm *serviceManager) Leaderboard() LeaderboardService { return sm.leaderboard }
func (sm *serviceManager) Export() ExportService           { return sm.export }
