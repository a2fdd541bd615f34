package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Chain(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("store value: %w", NewTransport(cause))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeTransport, appErr.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPStatus(err))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(cause))
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("bad").WithDetail("field", "label").WithDetail("max", 3)
	assert.Equal(t, map[string]any{"field": "label", "max": 3}, err.Details)
	assert.Equal(t, "VALIDATION_ERROR: bad", err.Error())
}

func TestIsRecoverable(t *testing.T) {
	recoverable := []error{
		NewTypeMismatch("x"),
		NewConstraintViolation("x"),
		NewUniquenessConflict("x"),
		NewReference("field", "1"),
		NewState("x"),
		NewNotFound("field", "1"),
		NewDuplicate("value", "unique_key", ""),
	}
	for _, err := range recoverable {
		assert.True(t, IsRecoverable(err), err.Error())
	}

	fatal := []error{
		NewTransport(errors.New("down")),
		NewDatabase(errors.New("syntax")),
		NewInternal(errors.New("bug")),
		errors.New("raw"),
	}
	for _, err := range fatal {
		assert.False(t, IsRecoverable(err), err.Error())
	}

	assert.True(t, IsNotFound(fmt.Errorf("get: %w", NewNotFound("option", "1"))))
	assert.False(t, IsAppError(errors.New("raw")))
}
