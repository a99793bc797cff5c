package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "input: failed to read input: file not found",
		NewInputError("failed to read input", ErrFileNotFound).Error())
	assert.Equal(t, "render: no host", NewRenderError("no host", nil).Error())
}

func TestAppError_WrapsCause(t *testing.T) {
	err := fmt.Errorf("render sample.json: %w", NewParsingError("bad document", ErrInvalidJSON))

	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorIs(t, err, &AppError{Type: ErrorTypeParsing})
	assert.NotErrorIs(t, err, &AppError{Type: ErrorTypeInput})

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "bad document", appErr.Message)
	assert.Equal(t, ErrInvalidJSON, appErr.Unwrap())
}

func TestAppError_IsIgnoresPlainErrors(t *testing.T) {
	assert.False(t, NewServerError("listen", nil).Is(errors.New("listen")))
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"input", NewInputError("failed to read file", ErrFileNotFound), "Input error: failed to read file"},
		{"parsing", NewParsingError("invalid JSON syntax", nil), "JSON parsing error: invalid JSON syntax"},
		{"config", NewConfigError("unknown key naming", nil), "Configuration error: unknown key naming"},
		{"render", NewRenderError("failed to mount document", nil), "Render error: failed to mount document"},
		{"output", NewOutputError("failed to write output", nil), "Output error: failed to write output"},
		{"server", NewServerError("listen failed", nil), "Server error: listen failed"},
		{"unknown type", &AppError{Type: ErrorTypeUnknown, Message: "odd"}, "Error: odd"},
		{"empty input", ErrEmptyInput, "Error: The input is empty. Please provide valid JSON data."},
		{"multiple values", ErrMultipleJSON, "Error: Multiple JSON values found. Please provide a single JSON value."},
		{"no host", ErrNoHost, "Error: There is no element to render the JSON document into."},
		{
			"wrapped invalid option",
			fmt.Errorf("threshold -1: %w", ErrInvalidOption),
			"Error: A render option has an invalid value. Please check your flags and config file.",
		},
		{"plain", errors.New("some unknown error"), "Error: some unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserFriendlyError(tt.err))
		})
	}
}
