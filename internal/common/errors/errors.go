// Package errors provides standardized error handling for the order
// enrichment pipeline and the reporting generator.
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

const (
	ErrCodeInvalidOrderPayload ErrorCode = "INVALID_ORDER_PAYLOAD"

	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeClassificationTimeout ErrorCode = "CLASSIFICATION_TIMEOUT"

	ErrCodeWarehouseInsertFailed ErrorCode = "WAREHOUSE_INSERT_FAILED"
	ErrCodeWarehouseQueryFailed  ErrorCode = "WAREHOUSE_QUERY_FAILED"
	ErrCodeQueryTimeout          ErrorCode = "QUERY_TIMEOUT"

	ErrCodeEscalationDispatchFailed ErrorCode = "ESCALATION_DISPATCH_FAILED"
	ErrCodeDashboardUpdateFailed    ErrorCode = "DASHBOARD_UPDATE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeReportSectionFailed ErrorCode = "REPORT_SECTION_FAILED"
	ErrCodeSheetWriteFailed    ErrorCode = "SHEET_WRITE_FAILED"
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
// 2. Error Constructors
// ==========================

// NewInvalidOrderPayloadError creates a non-retryable webhook validation error.
func NewInvalidOrderPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOrderPayload,
		Message:   "Order payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a classification error. It is never
// surfaced to callers; the adapter absorbs it via the fallback result.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Generative model call or response parsing failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationTimeoutError creates a classification timeout error.
func NewClassificationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationTimeout,
		Message:   "Generative model call exceeded timeout",
		Details:   "call exceeded configured classification timeout",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWarehouseInsertFailedError creates a retryable warehouse insert error.
func NewWarehouseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWarehouseInsertFailed,
		Message:   "Warehouse insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWarehouseQueryFailedError creates a retryable warehouse query error.
func NewWarehouseQueryFailedError(section string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWarehouseQueryFailed,
		Message:   "Warehouse query execution failed",
		Details:   fmt.Sprintf("section: %s, error: %s", section, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(section string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Warehouse query timeout",
		Details:   fmt.Sprintf("section: %s", section),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEscalationDispatchFailedError creates an escalation dispatch error.
// Dispatch is attempted once and never retried by the pipeline.
func NewEscalationDispatchFailedError(actionType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEscalationDispatchFailed,
		Message:   "Escalation action dispatch failed",
		Details:   fmt.Sprintf("action: %s, error: %s", actionType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDashboardUpdateFailedError creates a dashboard index update error.
func NewDashboardUpdateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDashboardUpdateFailed,
		Message:   "Dashboard index update failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportSectionFailedError creates a section-scoped report error. The run
// continues; the failed section renders empty.
func NewReportSectionFailedError(section string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSectionFailed,
		Message:   "Report section computation failed",
		Details:   fmt.Sprintf("section: %s, error: %s", section, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSheetWriteFailedError creates a retryable presentation surface error.
func NewSheetWriteFailedError(grid string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSheetWriteFailed,
		Message:   "Sheet grid write failed",
		Details:   fmt.Sprintf("grid: %s, error: %s", grid, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for operator tooling.
// The pipeline itself never retries; retries are layered by callers.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeWarehouseInsertFailed,
		ErrCodeWarehouseQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeSheetWriteFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CLASSIFICATION"):
		return "AI"
	case strings.Contains(codeStr, "WAREHOUSE") || strings.Contains(codeStr, "QUERY"):
		return "WAREHOUSE"
	case strings.Contains(codeStr, "ESCALATION") || strings.Contains(codeStr, "DASHBOARD"):
		return "ESCALATION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "REPORT") || strings.Contains(codeStr, "SHEET"):
		return "REPORTING"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
