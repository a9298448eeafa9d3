package services

import (
	"errors"
	"fmt"

	apperrors "github.com/priorart-academy/challenge-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Challenge specific errors
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrChallengeAccessDenied = errors.New("access denied to challenge")
	ErrChallengeEnded        = errors.New("challenge has already ended")
	ErrChallengeNotEditable  = errors.New("challenge cannot be edited after it ended")

	// Sub-challenge specific errors
	ErrSubChallengeNotFound      = errors.New("sub-challenge not found")
	ErrSubChallengeInvalidRules  = errors.New("invalid evaluation rules")
	ErrScoresAlreadyPublished    = errors.New("scores already published")
	ErrScoresNotPublished        = errors.New("scores are not published yet")
	ErrSubChallengeNotGraded     = errors.New("sub-challenge has ungraded submissions")
	ErrDeadlineBeforeCurrentTime = errors.New("deadline must be in the future")

	// Submission specific errors
	ErrSubmissionNotFound       = errors.New("submission not found")
	ErrSubmissionClosed         = errors.New("submission window has closed")
	ErrSubmissionLimitReached   = errors.New("result limit for this sub-challenge reached")
	ErrAlreadySubmitted         = errors.New("trainee already submitted for this sub-challenge")
	ErrReportWindowClosed       = errors.New("report window has closed")
	ErrReportNotAccepted        = errors.New("sub-challenge does not accept reports")
	ErrSubmissionAccessDenied   = errors.New("access denied to submission")
	ErrTraineeNotEnrolled       = errors.New("trainee is not enrolled in this challenge")

	// Evaluation specific errors
	ErrEvaluationPermissionDenied = errors.New("permission denied for evaluation")
	ErrEvaluationAlreadyExists    = errors.New("submission already evaluated")
	ErrEvaluationUnknownResult    = errors.New("evaluation references an unknown result")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrChallengeNotFound) ||
		errors.Is(err, ErrSubChallengeNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrChallengeAccessDenied) ||
		errors.Is(err, ErrSubmissionAccessDenied) ||
		errors.Is(err, ErrEvaluationPermissionDenied) ||
		errors.Is(err, ErrInsufficientPermissions) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrSubChallengeInvalidRules) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrEvaluationAlreadyExists) ||
		errors.Is(err, ErrScoresAlreadyPublished) ||
		errors.Is(err, ErrSubmissionLimitReached)
}
