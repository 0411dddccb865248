package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("create sponsor: %w", Validation("email", "email is invalid"))

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidState("campaign", "draft", "active"))

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestStorageIsRetryableAndUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("list campaigns", cause)

	assert.True(t, Retryable(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, Retryable(Conflict("double billing")))
}

func TestInvalidStateFields(t *testing.T) {
	err := InvalidState("invoice", "paid", "paid")

	assert.Equal(t, "paid", err.Fields["current"])
	assert.Equal(t, "paid", err.Fields["requested"])
	assert.Contains(t, err.Error(), "cannot move from paid to paid")
}

func TestInvalidActionNamesCurrentState(t *testing.T) {
	err := InvalidAction("campaign", "approve", "active")

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "active", err.Fields["current"])
	assert.Equal(t, "campaign in status active cannot approve", err.Message)
}
