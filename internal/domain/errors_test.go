package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("search: %w", &UpstreamError{Status: 503, Body: "busy"})

	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "upstream status 503: busy")

	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, 503, upstream.Status)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(fmt.Errorf("x: %w", ErrTimeout)), "too long")
	assert.Contains(t, UserMessage(ErrNetworkFailure), "unreachable")
	assert.Contains(t, UserMessage(&UpstreamError{Status: 500}), "status 500")
	assert.Equal(t, "An error occurred.", UserMessage(errors.New("boom")))
}
