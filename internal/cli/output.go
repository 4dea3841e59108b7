package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Makepad-fr/shoplist/internal/model"
	"github.com/Makepad-fr/shoplist/internal/shopping"
	"github.com/Makepad-fr/shoplist/internal/store"
	"github.com/Makepad-fr/shoplist/internal/ui"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Storage or runtime failure
	ExitCommandError = 2 // Usage or validation error (bad index, blank name, bad flags)
)

// ExitError carries the exit code a command should terminate with.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// opError maps a controller error to an exit code: caller mistakes are
// usage errors, everything else is a failure.
func opError(verb string, err error) error {
	var ie *shopping.IndexError
	if errors.As(err, &ie) {
		err = positionError(ie)
	}
	switch {
	case errors.Is(err, model.ErrBlankName),
		errors.Is(err, shopping.ErrIndexOutOfRange),
		errors.Is(err, shopping.ErrItemNotFound):
		return WrapExitError(ExitCommandError, verb, err)
	}
	return WrapExitError(ExitFailure, verb, err)
}

// positionError restates a controller index in the 1-based positions
// the CLI accepts.
func positionError(ie *shopping.IndexError) error {
	return fmt.Errorf("%w: position %d, list has %d %s",
		shopping.ErrIndexOutOfRange, ie.Index+1, ie.Len, plural(ie.Len, "item", "items"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// errorCode is the stable code reported in JSON error responses.
func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrBlankName):
		return "blank_name"
	case errors.Is(err, shopping.ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, shopping.ErrItemNotFound), errors.Is(err, store.ErrNotFound):
		return "not_found"
	case GetExitCode(err) == ExitCommandError:
		return "usage"
	}
	return "failure"
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Success writes data in JSON mode, or msg as a check line in text mode.
func (f *OutputFormatter) Success(msg string, data interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	ui.OK(f.Writer, msg)
	return nil
}

// Error reports err in the configured format.
func (f *OutputFormatter) Error(err error) {
	if f.JSON() {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: errorCode(err), Message: err.Error()},
		})
		return
	}
	ui.Fail(f.errWriter(), err.Error())
	if errors.Is(err, shopping.ErrIndexOutOfRange) {
		fmt.Fprintln(f.errWriter(), ui.Dim("Hint: run `shoplist ls` to see valid positions"))
	}
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
