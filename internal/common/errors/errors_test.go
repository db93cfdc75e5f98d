package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("founder_age", "12 outside [18,100]")

	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.False(t, err.Retryable)
	assert.Equal(t, "founder_age", err.Metadata["field"])
	assert.Contains(t, err.Error(), "INVALID_INPUT")
	assert.Contains(t, err.Error(), "founder_age")
}

func TestCodeOf(t *testing.T) {
	cause := stderrors.New("model file missing")

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"invalid input", NewInvalidInputError("sector", "missing"), ErrCodeInvalidInput},
		{"wrapped classifier error", fmt.Errorf("row 3: %w", NewClassifierUnavailableError(cause)), ErrCodeClassifierUnavailable},
		{"partial batch", &PartialBatchFailure{Total: 2}, ErrCodePartialBatchFailure},
		{"parse error", NewParseError(cause), ErrCodeParseError},
		{"plain error", cause, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}

	assert.False(t, IsInvalidInput(nil))
	assert.False(t, IsClassifierUnavailable(nil))
}

func TestClassifierUnavailable_Unwraps(t *testing.T) {
	cause := stderrors.New("onnxruntime not initialized")
	err := fmt.Errorf("predict: %w", NewClassifierUnavailableError(cause))

	assert.True(t, IsClassifierUnavailable(err))
	assert.ErrorIs(t, err, cause)
}

func TestPartialBatchFailure(t *testing.T) {
	batchErr := &PartialBatchFailure{
		Total: 5,
		Failures: []RowFailure{
			NewRowFailure(1, NewInvalidInputError("client_count", "negative value -1")),
			NewRowFailure(4, stderrors.New("boom")),
		},
	}
	var err error = fmt.Errorf("batch: %w", batchErr)

	got, ok := AsPartialBatchFailure(err)
	require.True(t, ok)
	assert.Equal(t, []int{1, 4}, got.FailedIndices())
	assert.Equal(t, ErrCodeInvalidInput, got.Failures[0].Code)
	assert.Equal(t, ErrCodeInternalError, got.Failures[1].Code)
	assert.Contains(t, err.Error(), "2 of 5 rows failed (rows 1,4)")

	_, ok = AsPartialBatchFailure(stderrors.New("other"))
	assert.False(t, ok)
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewClassifierUnavailableError(stderrors.New("timeout")))
	assert.Equal(t, "CLASSIFIER_UNAVAILABLE", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "CLASSIFIER_UNAVAILABLE", vars["errorCode"])
	assert.Equal(t, "CLASSIFIER_UNAVAILABLE", vars["originalErrorCode"])

	bpmn = ConvertToBPMNError(NewInvalidInputError("sector", "missing"))
	assert.False(t, bpmn.Retryable)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestNormalize(t *testing.T) {
	std := NewInvalidInputError("sector", "missing")
	assert.Same(t, std, Normalize(fmt.Errorf("wrapped: %w", std)))

	plain := stderrors.New("unexpected")
	n := Normalize(plain)
	assert.Equal(t, ErrCodeInternalError, n.Code)
	assert.ErrorIs(t, n, plain)
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "MODEL", GetErrorCategory(ErrCodeClassifierUnavailable))
	assert.Equal(t, "BATCH", GetErrorCategory(ErrCodePartialBatchFailure))
	assert.True(t, IsRetryableErrorCode(ErrCodeClassifierUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeParseError))
}
