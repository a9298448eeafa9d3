package models

type NotificationType string

const (
	NotificationChallengeEnded      NotificationType = "challenge_ended"
	NotificationScoresPublished     NotificationType = "scores_published"
	NotificationSubmissionReceived  NotificationType = "submission_received"
	NotificationEvaluationCompleted NotificationType = "evaluation_completed"
	NotificationReportDueSoon       NotificationType = "report_due_soon"
	NotificationDuplicateFlagged    NotificationType = "duplicate_flagged"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)
