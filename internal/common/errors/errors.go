// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProfileBuildFailed   ErrorCode = "PROFILE_BUILD_FAILED"
	ErrCodeProfileParseFailed   ErrorCode = "PROFILE_PARSE_FAILED"
	ErrCodeLLMTimeout           ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRefineFailed      ErrorCode = "LLM_REFINE_FAILED"
	ErrCodeLLMProvidersExhausted ErrorCode = "LLM_PROVIDERS_EXHAUSTED"

	ErrCodeRubricInvalid    ErrorCode = "RUBRIC_INVALID"
	ErrCodeRubricNotFound   ErrorCode = "RUBRIC_NOT_FOUND"
	ErrCodeMatchScoreFailed ErrorCode = "MATCH_SCORE_FAILED"
	ErrCodeBatchMatchFailed ErrorCode = "BATCH_MATCH_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCandidateQueryFailed     ErrorCode = "CANDIDATE_QUERY_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeResultPersistFailed      ErrorCode = "RESULT_PERSIST_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeZeebeUnavailable    ErrorCode = "ZEEBE_UNAVAILABLE"
	ErrCodeInputParsingFailed  ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// New creates a StandardError with the given code and message.
func New(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable provider-timeout error.
func NewLLMTimeoutError(details string) *StandardError {
	return New(ErrCodeLLMTimeout, "LLM provider call timed out", details, true)
}

// NewLLMExhaustedError signals that every configured provider failed.
// Not retryable: the router already retried each provider with backoff.
func NewLLMExhaustedError(details string) *StandardError {
	return New(ErrCodeLLMProvidersExhausted, "All LLM providers failed", details, false)
}

// NewRubricInvalidError creates a non-retryable rubric validation error.
func NewRubricInvalidError(details string) *StandardError {
	return New(ErrCodeRubricInvalid, "Rubric document failed validation", details, false)
}

// NewMatchScoreError wraps a scoring failure for a single candidate.
func NewMatchScoreError(details string) *StandardError {
	return New(ErrCodeMatchScoreFailed, "Match scoring failed", details, false)
}

// NewCandidateQueryError creates a retryable datastore error.
func NewCandidateQueryError(details string) *StandardError {
	return New(ErrCodeCandidateQueryFailed, "Investor candidate query failed", details, true)
}

// ToBPMN converts a StandardError into a BPMN error for job failure reporting.
func (e *StandardError) ToBPMN(retries int) *BPMNError {
	return &BPMNError{
		Code:      string(e.Code),
		Message:   e.Message,
		Details:   e.Details,
		Retryable: e.Retryable,
		Retries:   retries,
	}
}
