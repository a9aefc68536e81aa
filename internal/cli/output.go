package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes for the CLI.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Storage or ingestion failure
	ExitCommandError = 2 // Malformed invocation or invalid configuration
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// UsageError reports a malformed invocation. Message always starts with
// "Expected" and is printed as is.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// usagef builds a UsageError whose message starts with "Expected ".
func usagef(format string, args ...any) *UsageError {
	return &UsageError{Message: "Expected " + fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error.
// Usage errors map to ExitCommandError; errors that are neither an
// ExitError nor a UsageError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Notices that must not mix with results (defaults to Writer)
}

// CLIResponse is the envelope for JSON and YAML output.
type CLIResponse struct {
	Status string      `json:"status" yaml:"status"`                   // "ok"
	Data   interface{} `json:"data,omitempty" yaml:"data,omitempty"`   // success payload
}

// Success outputs a successful result in the configured format.
// Text output uses the value's String method; an empty string prints nothing.
func (f *OutputFormatter) Success(data interface{}) error {
	switch f.Format {
	case "json":
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		if err := enc.Encode(CLIResponse{Status: "ok", Data: data}); err != nil {
			return err
		}
		return enc.Close()
	}

	text := fmt.Sprint(data)
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Notice writes a human-readable line to ErrWriter regardless of format.
func (f *OutputFormatter) Notice(format string, args ...interface{}) {
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
