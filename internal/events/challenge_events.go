package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/priorart-academy/challenge-service/internal/models"
)

// EventType represents different types of challenge events
type EventType string

const (
	// Challenge events
	EventChallengeEnded  EventType = "challenge.ended"
	EventScoresPublished EventType = "scores.published"

	// Submission events
	EventSubmissionReceived EventType = "submission.received"
	EventReportAttached     EventType = "submission.report_attached"

	// Evaluation events
	EventEvaluationCompleted EventType = "evaluation.completed"
	EventDuplicateFlagged    EventType = "evaluation.duplicate_flagged"
)

// ChallengeEvent is the envelope shared by all events published by this
// service. Consumers re-fetch their snapshot and recompute; the payload is
// a notification, not a sync protocol.
type ChallengeEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const (
	eventSource  = "challenge-service"
	eventVersion = "1.0"
)

// Event payloads

type ChallengeEndedEvent struct {
	ChallengeID    uint      `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	EndedAt        time.Time `json:"ended_at"`
	EndedBy        string    `json:"ended_by"`
	TraineeIDs     []string  `json:"trainee_ids"`
}

type ScoresPublishedEvent struct {
	SubChallengeID uint      `json:"sub_challenge_id"`
	ChallengeID    uint      `json:"challenge_id"`
	Title          string    `json:"title"`
	PublishedAt    time.Time `json:"published_at"`
	PublishedBy    string    `json:"published_by"`
	TraineeIDs     []string  `json:"trainee_ids"`
}

type SubmissionReceivedEvent struct {
	SubmissionID   uint      `json:"submission_id"`
	SubChallengeID uint      `json:"sub_challenge_id"`
	TraineeID      string    `json:"trainee_id"`
	SubmittedAt    time.Time `json:"submitted_at"`
	ResultCount    int       `json:"result_count"`
	EvaluatorIDs   []string  `json:"evaluator_ids"`
}

type EvaluationCompletedEvent struct {
	SubmissionID   uint      `json:"submission_id"`
	SubChallengeID uint      `json:"sub_challenge_id"`
	TraineeID      string    `json:"trainee_id"`
	EvaluatorID    string    `json:"evaluator_id"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
	Score          int       `json:"score"`
}

type DuplicateFlaggedEvent struct {
	SubChallengeID uint     `json:"sub_challenge_id"`
	NormalizedKey  string   `json:"normalized_key"`
	TraineeIDs     []string `json:"trainee_ids"`
	FirstTraineeID string   `json:"first_trainee_id"`
}

// Event factory functions

func NewChallengeEndedEvent(challenge *models.OverallChallenge, endedBy string) *ChallengeEvent {
	return newEvent(EventChallengeEnded, ChallengeEndedEvent{
		ChallengeID:    challenge.ID,
		ChallengeTitle: challenge.Title,
		EndedAt:        *challenge.EndedAt,
		EndedBy:        endedBy,
		TraineeIDs:     challenge.TraineeIDs,
	})
}

func NewScoresPublishedEvent(sc *models.SubChallenge, publishedBy string, traineeIDs []string) *ChallengeEvent {
	return newEvent(EventScoresPublished, ScoresPublishedEvent{
		SubChallengeID: sc.ID,
		ChallengeID:    sc.ChallengeID,
		Title:          sc.Title,
		PublishedAt:    *sc.ScoresPublishedAt,
		PublishedBy:    publishedBy,
		TraineeIDs:     traineeIDs,
	})
}

func NewSubmissionReceivedEvent(sub *models.Submission, sc *models.SubChallenge) *ChallengeEvent {
	return newEvent(EventSubmissionReceived, SubmissionReceivedEvent{
		SubmissionID:   sub.ID,
		SubChallengeID: sub.SubChallengeID,
		TraineeID:      sub.TraineeID,
		SubmittedAt:    sub.SubmittedAt,
		ResultCount:    len(sub.Results),
		EvaluatorIDs:   sc.EvaluatorIDs,
	})
}

func NewEvaluationCompletedEvent(sub *models.Submission, score int) *ChallengeEvent {
	return newEvent(EventEvaluationCompleted, EvaluationCompletedEvent{
		SubmissionID:   sub.ID,
		SubChallengeID: sub.SubChallengeID,
		TraineeID:      sub.TraineeID,
		EvaluatorID:    sub.Evaluation.EvaluatorID,
		EvaluatedAt:    sub.Evaluation.EvaluatedAt,
		Score:          score,
	})
}

func NewDuplicateFlaggedEvent(subChallengeID uint, key string, traineeIDs []string) *ChallengeEvent {
	first := ""
	if len(traineeIDs) > 0 {
		first = traineeIDs[0]
	}
	return newEvent(EventDuplicateFlagged, DuplicateFlaggedEvent{
		SubChallengeID: subChallengeID,
		NormalizedKey:  key,
		TraineeIDs:     traineeIDs,
		FirstTraineeID: first,
	})
}

func newEvent(typ EventType, data interface{}) *ChallengeEvent {
	event := &ChallengeEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
	if notifType, priority, ok := notificationHint(typ); ok {
		event.Metadata = map[string]interface{}{
			"notification_type":     string(notifType),
			"notification_priority": string(priority),
		}
	}
	return event
}

// notificationHint maps an event type to the notification the downstream
// consumer should fan out to users. Events without a hint are consumed
// internally only.
func notificationHint(typ EventType) (models.NotificationType, models.NotificationPriority, bool) {
	switch typ {
	case EventChallengeEnded:
		return models.NotificationChallengeEnded, models.PriorityHigh, true
	case EventScoresPublished:
		return models.NotificationScoresPublished, models.PriorityHigh, true
	case EventSubmissionReceived:
		return models.NotificationSubmissionReceived, models.PriorityLow, true
	case EventEvaluationCompleted:
		return models.NotificationEvaluationCompleted, models.PriorityNormal, true
	case EventDuplicateFlagged:
		return models.NotificationDuplicateFlagged, models.PriorityNormal, true
	default:
		return "", "", false
	}
}
