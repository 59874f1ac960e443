package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name:     "With Code",
			appError: &AppError{Code: "TEST_CODE", Message: "This is a test error"},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name:     "Without Code",
			appError: &AppError{Message: "This is a test error without code"},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDatabaseError(cause, "failed to load loan")

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DB_ERROR", appErr.Code)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, cause)
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("mobile", "Invalid mobile number")

	assert.ErrorIs(t, err, ErrValidation)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "mobile", vErr.Field)
	assert.Equal(t, "validation failed for field 'mobile': Invalid mobile number", vErr.Error())
}

func TestNewFieldErrors(t *testing.T) {
	assert.NoError(t, NewFieldErrors(nil))
	assert.NoError(t, NewFieldErrors(map[string]string{}))

	err := NewFieldErrors(map[string]string{"pan": "Invalid PAN", "aadhar": "Invalid Aadhaar"})
	assert.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
	assert.Equal(t, "validation failed: aadhar: Invalid Aadhaar; pan: Invalid PAN", vErr.Error())
}
