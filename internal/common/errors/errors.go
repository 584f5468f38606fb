// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidRating ErrorCode = "INVALID_RATING"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeFeedbackQueryFailed      ErrorCode = "FEEDBACK_QUERY_FAILED"
	ErrCodeFeedbackQueryTimeout     ErrorCode = "FEEDBACK_QUERY_TIMEOUT"
	ErrCodeFeedbackUpdateFailed     ErrorCode = "FEEDBACK_UPDATE_FAILED"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"

	ErrCodeAnalysisFailed    ErrorCode = "ANALYSIS_FAILED"
	ErrCodeLexiconLoadFailed ErrorCode = "LEXICON_LOAD_FAILED"

	ErrCodeCacheFailed   ErrorCode = "CACHE_FAILED"
	ErrCodePublishFailed ErrorCode = "PUBLISH_FAILED"

	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowEngineTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowEngineRejected    ErrorCode = "WORKFLOW_ENGINE_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// ==========================
// 2. BPMN Error Integration
// ==========================

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

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable job variable error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewInvalidRatingError creates a non-retryable error for ratings outside 1-5.
func NewInvalidRatingError(err error) *StandardError {
	return newError(ErrCodeInvalidRating, "Feedback rating out of range", err.Error(), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Failed to connect to database", err.Error(), true)
}

// NewFeedbackQueryFailedError creates a retryable repository error.
func NewFeedbackQueryFailedError(queryType string, err error) *StandardError {
	e := newError(ErrCodeFeedbackQueryFailed, "Feedback query failed", err.Error(), true)
	e.Metadata = map[string]interface{}{"queryType": queryType}
	return e
}

func NewFeedbackQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeFeedbackQueryTimeout, "Feedback query timed out",
		fmt.Sprintf("queryType: %s", queryType), true)
}

func NewFeedbackUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeFeedbackUpdateFailed, "Failed to update feedback", err.Error(), true)
}

func NewInvalidQueryTypeError(queryType string) *StandardError {
	return newError(ErrCodeInvalidQueryType, "Unsupported query type",
		fmt.Sprintf("queryType: %s", queryType), false)
}

func NewAnalysisFailedError(err error) *StandardError {
	return newError(ErrCodeAnalysisFailed, "Feedback analysis failed", err.Error(), false)
}

func NewLexiconLoadFailedError(path string, err error) *StandardError {
	return newError(ErrCodeLexiconLoadFailed, "Failed to load lexicon",
		fmt.Sprintf("path: %s: %v", path, err), false)
}

// NewCacheFailedError is logged rather than surfaced; a cache miss never fails a job.
func NewCacheFailedError(err error) *StandardError {
	return newError(ErrCodeCacheFailed, "Analysis cache unavailable", err.Error(), true)
}

func NewPublishFailedError(index string, err error) *StandardError {
	return newError(ErrCodePublishFailed, "Failed to publish analysis",
		fmt.Sprintf("index: %s: %v", index, err), true)
}

// NewWorkflowEngineError classifies a Zeebe command failure.
func NewWorkflowEngineError(code ErrorCode, operation string, err error) *StandardError {
	return newError(code, fmt.Sprintf("Zeebe operation '%s' failed", operation), err.Error(),
		code != ErrCodeWorkflowEngineRejected)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeInvalidRating:            "INVALID_RATING",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeFeedbackQueryFailed:      "FEEDBACK_QUERY_FAILED",
	ErrCodeFeedbackQueryTimeout:     "FEEDBACK_QUERY_TIMEOUT",
	ErrCodeFeedbackUpdateFailed:     "FEEDBACK_UPDATE_FAILED",
	ErrCodeInvalidQueryType:         "INVALID_QUERY_TYPE",
	ErrCodeAnalysisFailed:           "ANALYSIS_FAILED",
	ErrCodeLexiconLoadFailed:        "LEXICON_LOAD_FAILED",
	ErrCodeCacheFailed:              "CACHE_FAILED",
	ErrCodePublishFailed:            "PUBLISH_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeFeedbackQueryFailed,
		ErrCodeFeedbackUpdateFailed,
		ErrCodePublishFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3

	case ErrCodeFeedbackQueryTimeout,
		ErrCodeCacheFailed,
		ErrCodeWorkflowEngineTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError if one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "UPDATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "ANALYSIS") || strings.Contains(codeStr, "LEXICON"):
		return "ANALYTICS"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "PUBLISH"):
		return "SEARCH"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
