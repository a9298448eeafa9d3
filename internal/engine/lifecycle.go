package engine

import (
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
)

// Status is the trainee-visible state of a submission slot within a
// sub-challenge. Active and ReportDue are transient read states recomputed
// on every query; Submitted and Ended are stable once reached.
type Status string

const (
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
	StatusReportDue Status = "report_due"
	StatusEnded     Status = "ended"
)

// Classify derives the status from deadlines, publication flags and the
// submission itself, checked in order:
//
//  1. a closed overall challenge is terminal: Ended, no further checks
//  2. before the submission deadline: Submitted if a submission exists,
//     Active otherwise
//  3. after the submission deadline, while the report window is open and
//     the submission has no report yet: ReportDue
//  4. otherwise Submitted if a submission exists, Ended if not
//
// Classify is a pure function of its arguments; it holds no memory and is
// recomputed from persisted state on every call.
func Classify(subChallenge models.SubChallenge, challenge models.OverallChallenge, submission *models.Submission, now time.Time) Status {
	if challenge.IsEnded() {
		return StatusEnded
	}

	if now.Before(subChallenge.SubmissionEndTime) {
		if submission != nil {
			return StatusSubmitted
		}
		return StatusActive
	}

	if subChallenge.Rules.Report.Enabled &&
		subChallenge.ReportEndTime != nil &&
		now.Before(*subChallenge.ReportEndTime) &&
		submission != nil && submission.ReportFile == nil {
		return StatusReportDue
	}

	if submission != nil {
		return StatusSubmitted
	}
	return StatusEnded
}

// RelevantDeadline returns the deadline the current status is counting
// down to: the submission deadline while it is open, then the report
// deadline while that window is open, then nil once everything has passed.
func RelevantDeadline(subChallenge models.SubChallenge, now time.Time) *time.Time {
	if now.Before(subChallenge.SubmissionEndTime) {
		end := subChallenge.SubmissionEndTime
		return &end
	}
	if subChallenge.Rules.Report.Enabled &&
		subChallenge.ReportEndTime != nil &&
		now.Before(*subChallenge.ReportEndTime) {
		end := *subChallenge.ReportEndTime
		return &end
	}
	return nil
}
