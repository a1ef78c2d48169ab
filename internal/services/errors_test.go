package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapsToKind(t *testing.T) {
	err := validationError("Client name is required")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "Client name is required", err.Error())
}

func TestError_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := wrapError(ErrDelivery, "Failed to send OTP. Please try again.", cause)

	assert.True(t, errors.Is(err, ErrDelivery))
	assert.True(t, errors.Is(err, cause))
}

func TestError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("accept: %w", ErrNotAssigned)

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(err, ErrNotAssigned))
}
