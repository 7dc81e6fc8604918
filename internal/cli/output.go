package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/navegante/internal/dispatch"
	"github.com/roach88/navegante/internal/transport"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // command completed
	ExitFailure      = 1 // an operation was rejected or a scenario failed
	ExitCommandError = 2 // bad flags, unreadable paths or a malformed request
)

// ExitError is a command failure carrying the process exit code.
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

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors without one exit 1.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Output renders command results on stdout.
//
// JSON output is one transport.Response per command, so a script parses
// `invoke --format json` the same way it parses a stdio response line.
type Output struct {
	Format string
	Writer io.Writer

	// RequestID is echoed as the envelope id. Empty renders as null.
	RequestID string
}

func newOutput(opts *RootOptions, cmd *cobra.Command) *Output {
	return &Output{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// Result writes a successful operation result. Text output is indented
// JSON, or "ok" for operations that return nothing.
func (o *Output) Result(data any) error {
	if o.Format == "json" {
		return o.encode("ok", data, nil)
	}
	return writeText(o.Writer, data)
}

// Report writes data as the envelope payload, or text in text mode.
func (o *Output) Report(data any, text string) error {
	if o.Format == "json" {
		return o.encode("ok", data, nil)
	}
	_, err := io.WriteString(o.Writer, text)
	return err
}

// Failure writes a failed operation under its dispatcher code.
func (o *Output) Failure(code dispatch.Code, message string) error {
	if o.Format == "json" {
		return o.encode("error", nil, &transport.ErrorBody{Code: string(code), Message: message})
	}
	_, err := fmt.Fprintf(o.Writer, "%s: %s\n", code, message)
	return err
}

// Rejected writes data together with a failure body. Text mode prints text.
func (o *Output) Rejected(data any, body transport.ErrorBody, text string) error {
	if o.Format == "json" {
		return o.encode("error", data, &body)
	}
	_, err := io.WriteString(o.Writer, text)
	return err
}

func (o *Output) encode(status string, data any, body *transport.ErrorBody) error {
	id := json.RawMessage("null")
	if o.RequestID != "" {
		id, _ = json.Marshal(o.RequestID)
	}
	return json.NewEncoder(o.Writer).Encode(transport.Response{
		ID:     id,
		Status: status,
		Data:   data,
		Error:  body,
	})
}

// writeText prints a result as indented JSON, or "ok" for nil.
func writeText(w io.Writer, result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if string(data) == "null" {
		_, err = fmt.Fprintln(w, "ok")
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
