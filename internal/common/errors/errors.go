// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
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
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	ErrCodePartialBatchFailure   ErrorCode = "PARTIAL_BATCH_FAILURE"

	ErrCodeParseError    ErrorCode = "PARSE_ERROR"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
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

// NewInvalidInputError reports a malformed, missing or out-of-domain field.
func NewInvalidInputError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   fmt.Sprintf("%s: %s", field, details),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewClassifierUnavailableError reports a classifier that failed to load or to predict.
func NewClassifierUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassifierUnavailable,
		Message:   "Classifier unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewParseError creates a non-retryable error for undecodable job variables.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// RowFailure describes why one row of a batch could not be scored.
type RowFailure struct {
	Index  int       `json:"index"`
	Code   ErrorCode `json:"code"`
	Reason string    `json:"reason"`
}

// PartialBatchFailure is returned alongside batch results when some rows failed
// while others succeeded.
type PartialBatchFailure struct {
	Total    int          `json:"total"`
	Failures []RowFailure `json:"failures"`
}

func (e *PartialBatchFailure) Error() string {
	idx := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		idx = append(idx, fmt.Sprintf("%d", f.Index))
	}
	return fmt.Sprintf("%s: %d of %d rows failed (rows %s)",
		ErrCodePartialBatchFailure, len(e.Failures), e.Total, strings.Join(idx, ","))
}

// FailedIndices returns the indices of the failed rows in input order.
func (e *PartialBatchFailure) FailedIndices() []int {
	out := make([]int, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Index
	}
	return out
}

// NewRowFailure builds a RowFailure from any error, keeping the StandardError code when present.
func NewRowFailure(index int, err error) RowFailure {
	return RowFailure{
		Index:  index,
		Code:   CodeOf(err),
		Reason: err.Error(),
	}
}

// ==========================
// 4. Error Inspection
// ==========================

// CodeOf extracts the ErrorCode from err, defaulting to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	var batchErr *PartialBatchFailure
	if stderrors.As(err, &batchErr) {
		return ErrCodePartialBatchFailure
	}
	return ErrCodeInternalError
}

// IsInvalidInput reports whether err carries the INVALID_INPUT code.
func IsInvalidInput(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeInvalidInput
}

// IsClassifierUnavailable reports whether err carries the CLASSIFIER_UNAVAILABLE code.
func IsClassifierUnavailable(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeClassifierUnavailable
}

// AsPartialBatchFailure unwraps a *PartialBatchFailure from err.
func AsPartialBatchFailure(err error) (*PartialBatchFailure, bool) {
	var batchErr *PartialBatchFailure
	if stderrors.As(err, &batchErr) {
		return batchErr, true
	}
	return nil, false
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:          "INVALID_INPUT",
	ErrCodeClassifierUnavailable: "CLASSIFIER_UNAVAILABLE",
	ErrCodePartialBatchFailure:   "PARTIAL_BATCH_FAILURE",
	ErrCodeParseError:            "PARSE_ERROR",
	ErrCodeInternalError:         "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassifierUnavailable:
		return 3
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

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidInput, ErrCodeParseError:
		return "VALIDATION"
	case ErrCodeClassifierUnavailable:
		return "MODEL"
	case ErrCodePartialBatchFailure:
		return "BATCH"
	default:
		return "OTHER"
	}
}
