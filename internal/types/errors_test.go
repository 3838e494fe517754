package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphmapError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GraphmapError
		contains []string
	}{
		{
			name:     "simple error without cause",
			err:      NewError(CONFIG_LOAD_FAILED, "failed to load configuration"),
			contains: []string{"[CONFIG_LOAD_FAILED]", "failed to load configuration"},
		},
		{
			name:     "error with cause",
			err:      WrapError(CONFIG_PARSE_FAILED, "bad yaml", errors.New("line 3")),
			contains: []string{"[CONFIG_PARSE_FAILED]", "bad yaml", "line 3"},
		},
		{
			name:     "retryable error",
			err:      NewRetryableError(INVALID_ARGUMENT, "try again"),
			contains: []string{"[INVALID_ARGUMENT]", "try again"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestGraphmapError_Is(t *testing.T) {
	sentinel := NewError(INVALID_ARGUMENT, "")
	err := fmt.Errorf("create: %w", NewError(INVALID_ARGUMENT, "uid is empty"))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, NewError(CONFIG_NOT_FOUND, "")))
	assert.False(t, errors.Is(errors.New("plain"), sentinel))
}

func TestGraphmapError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(CONFIG_LOAD_FAILED, "load", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.Nil(t, NewError(CONFIG_LOAD_FAILED, "load").Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CONFIG_NOT_FOUND, CodeOf(fmt.Errorf("x: %w", NewError(CONFIG_NOT_FOUND, "missing"))))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"non-retryable", NewError(INVALID_ARGUMENT, "bad"), false},
		{"retryable", NewRetryableError(INVALID_ARGUMENT, "busy"), true},
		{
			name: "retryable cause under non-retryable wrapper",
			err:  WrapError(CONFIG_LOAD_FAILED, "load", WrapRetryableError(INVALID_ARGUMENT, "busy", errors.New("503"))),
			want: true,
		},
		{"wrapped with fmt", fmt.Errorf("op: %w", NewRetryableError(INVALID_ARGUMENT, "busy")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestErrorsAsCompatibility(t *testing.T) {
	err := fmt.Errorf("outer: %w", WrapError(CONFIG_VALIDATION_FAILED, "invalid", errors.New("url")))

	var gerr *GraphmapError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, CONFIG_VALIDATION_FAILED, gerr.Code)
	assert.False(t, gerr.Retryable)
}
