// Package errors defines the error taxonomy shared by the CLI, the server
// and the render pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrNoHost          = errors.New("host surface has no element to render into")
	ErrInvalidOption   = errors.New("invalid render option")
)

// ErrorType tells which stage of the pipeline failed.
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeRender  ErrorType = "render"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeServer  ErrorType = "server"
	ErrorTypeUnknown ErrorType = "unknown"
)

// labels prefix the message shown to users for each error type.
var labels = map[ErrorType]string{
	ErrorTypeInput:   "Input error",
	ErrorTypeParsing: "JSON parsing error",
	ErrorTypeConfig:  "Configuration error",
	ErrorTypeRender:  "Render error",
	ErrorTypeOutput:  "Output error",
	ErrorTypeServer:  "Server error",
}

// hints replace the terse sentinel text when no AppError carries context.
var hints = []struct {
	err  error
	text string
}{
	{ErrEmptyInput, "The input is empty. Please provide valid JSON data."},
	{ErrInvalidJSON, "The input contains invalid JSON. Please check your JSON syntax."},
	{ErrMultipleJSON, "Multiple JSON values found. Please provide a single JSON value."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty. Please provide a file with valid JSON content."},
	{ErrNoInput, "No input provided. Please specify a file with -i or pipe JSON data to stdin."},
	{ErrInvalidFilePath, "Invalid file path. Please provide a valid file path."},
	{ErrNoHost, "There is no element to render the JSON document into."},
	{ErrInvalidOption, "A render option has an invalid value. Please check your flags and config file."},
}

// AppError wraps a cause with the stage it happened in and a message
// meant for users.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is reports whether target is an *AppError of the same type, so
// errors.Is(err, &AppError{Type: ErrorTypeConfig}) matches any config error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError reports a problem reading the document from a file, URL or stdin.
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError reports malformed JSON.
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewConfigError reports a config file that cannot be loaded or validated.
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewRenderError reports a failure while mounting or serializing a tree.
func NewRenderError(message string, err error) *AppError {
	return newError(ErrorTypeRender, message, err)
}

// NewOutputError reports a failure writing the result.
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// NewServerError reports a listener or shutdown failure.
func NewServerError(message string, err error) *AppError {
	return newError(ErrorTypeServer, message, err)
}

// UserFriendlyError renders err for the terminal or an HTTP error body.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		label, ok := labels[appErr.Type]
		if !ok {
			label = "Error"
		}
		return label + ": " + appErr.Message
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return "Error: " + h.text
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
