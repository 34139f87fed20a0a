// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// AI provider errors
const (
	ErrCodeAIUnavailable     ErrorCode = "AI_UNAVAILABLE"
	ErrCodeProviderTimeout   ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderRateLimit ErrorCode = "PROVIDER_RATE_LIMIT"
	ErrCodeParseError        ErrorCode = "PARSE_ERROR"
	ErrCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// Catalogue / data-access errors
const (
	ErrCodeCourseNotFound           ErrorCode = "COURSE_NOT_FOUND"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout            ErrorCode = "SEARCH_TIMEOUT"
)

// Assessment errors
const (
	ErrCodeInvalidProfile    ErrorCode = "INVALID_PROFILE"
	ErrCodeInvalidCurriculum ErrorCode = "INVALID_CURRICULUM"
	ErrCodeReportSendFailed  ErrorCode = "REPORT_SEND_FAILED"
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

// HTTPStatus maps an error code to the status the public surface reports.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeAIUnavailable, ErrCodeProviderTimeout:
		return 503
	case ErrCodeProviderRateLimit:
		return 429
	case ErrCodeParseError, ErrCodeInternalError:
		return 502
	case ErrCodeCourseNotFound:
		return 404
	case ErrCodeInvalidProfile, ErrCodeInvalidCurriculum:
		return 400
	default:
		return 500
	}
}

// ToErrorPayload renders the wire shape clients receive when a call fails.
func (e *StandardError) ToErrorPayload(requestID string) map[string]interface{} {
	payload := map[string]interface{}{
		"status":     "error",
		"error_code": string(e.Code),
		"message":    e.Message,
		"retryable":  e.Retryable,
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}
	if e.Details != "" {
		payload["details"] = e.Details
	}
	return payload
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

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewAIUnavailableError reports a missing provider credential. Never retried.
func NewAIUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAIUnavailable,
		Message:   "AI provider is not configured",
		Details:   "missing API credential",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   "AI provider call timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderRateLimitError creates a retryable rate-limit error.
func NewProviderRateLimitError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRateLimit,
		Message:   "AI provider rate limit exceeded",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError reports unusable provider output. Retrying would replay the
// same malformed response, so it is terminal.
func NewParseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "AI response was not valid JSON",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderInternalError creates a retryable catch-all provider error.
func NewProviderInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "AI provider call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCourseNotFoundError creates a non-retryable lookup error.
func NewCourseNotFoundError(courseID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCourseNotFound,
		Message:   "Course not found",
		Details:   fmt.Sprintf("courseId: %s", courseID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Course search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Course search timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidProfileError creates a non-retryable applicant validation error.
func NewInvalidProfileError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProfile,
		Message:   "Applicant profile failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCurriculumError creates a non-retryable curriculum error.
func NewInvalidCurriculumError(curriculum string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCurriculum,
		Message:   "Unsupported curriculum",
		Details:   fmt.Sprintf("curriculum: %s", curriculum),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportSendFailedError creates a retryable report delivery error.
func NewReportSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSendFailed,
		Message:   "Assessment report delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeAIUnavailable:            "AI_UNAVAILABLE",
	ErrCodeProviderTimeout:          "PROVIDER_TIMEOUT",
	ErrCodeProviderRateLimit:        "PROVIDER_RATE_LIMIT",
	ErrCodeParseError:               "PARSE_ERROR",
	ErrCodeInternalError:            "INTERNAL_ERROR",
	ErrCodeCourseNotFound:           "COURSE_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeInvalidProfile:           "INVALID_PROFILE",
	ErrCodeInvalidCurriculum:        "INVALID_CURRICULUM",
	ErrCodeReportSendFailed:         "REPORT_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error class.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeReportSendFailed,
		ErrCodeInternalError:
		return 3 // Retryable technical errors

	case ErrCodeProviderTimeout,
		ErrCodeProviderRateLimit,
		ErrCodeSearchTimeout:
		return 2 // Partial retry for timeouts and throttling

	default:
		return 0 // Business and parse errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
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

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AI") || strings.Contains(codeStr, "PROVIDER") || strings.Contains(codeStr, "PARSE"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "REPORT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PROFILE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
