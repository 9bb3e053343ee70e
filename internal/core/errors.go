package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// contextIndent is the indentation added for each level of error context.
const contextIndent = "  "

// Error is the error value shared by every command. It carries the process
// exit status, an optional message, and a stack of context frames that were
// added as the error propagated upward.
type Error struct {
	// Status is the exit status used when the process terminates.
	Status int

	// Message is the root cause rendered for the user.
	Message string

	// Context holds the context frames, most recently added last.
	Context []string

	cause error
}

// NewError creates a bare error carrying only an exit status.
func NewError(status int) *Error {
	return &Error{Status: status}
}

// Errorf creates an error with a status and a formatted message.
func Errorf(status int, format string, args ...any) *Error {
	return NewError(status).WithMessage(fmt.Sprintf(format, args...))
}

// WithMessage replaces the message and returns the error.
func (e *Error) WithMessage(message string) *Error {
	e.Message = message
	return e
}

// WithMessagef replaces the message with a formatted one.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithContext pushes a context frame onto the error.
func (e *Error) WithContext(context string) *Error {
	e.Context = append(e.Context, context)
	return e
}

// WithContextf pushes a formatted context frame onto the error.
func (e *Error) WithContextf(format string, args ...any) *Error {
	return e.WithContext(fmt.Sprintf(format, args...))
}

// Error renders the context frames and message without a trailing newline.
func (e *Error) Error() string {
	lines := e.lines()
	if len(lines) == 0 {
		return fmt.Sprintf("exit status %d", e.Status)
	}

	return strings.Join(lines, "\n")
}

// Unwrap returns the error this one was converted from, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Render writes the error for the user: context frames most recent first,
// each one indented a level deeper, followed by the message. Nothing is
// written when there is no message, even if context frames exist.
func (e *Error) Render(w io.Writer) error {
	lines := e.lines()
	if len(lines) == 0 {
		return nil
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func (e *Error) lines() []string {
	if e.Message == "" {
		return nil
	}

	lines := make([]string, 0, len(e.Context)+1)
	depth := 0
	for i := len(e.Context) - 1; i >= 0; i-- {
		lines = append(lines, strings.Repeat(contextIndent, depth)+e.Context[i])
		depth++
	}

	indent := strings.Repeat(contextIndent, depth)
	for _, line := range strings.Split(strings.TrimRight(e.Message, "\n"), "\n") {
		lines = append(lines, indent+line)
	}

	return lines
}

// AsError converts any error into an *Error. An *Error already in the chain
// is returned as is. Process exit errors keep the child's exit code and I/O
// errors keep the operating system error code; everything else is status 1.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	converted := &Error{Status: 1, Message: err.Error(), cause: err}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			converted.Status = code
		}
		return converted
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		converted.Status = int(errno)
	}

	return converted
}

// WithContext adds a context frame to err, converting it if necessary.
// A nil error stays nil.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}

	return AsError(err).WithContext(context)
}

// WithContextf adds a formatted context frame to err.
func WithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return AsError(err).WithContextf(format, args...)
}

// Exit renders err to stderr and terminates the process with its status.
func Exit(err error) {
	appErr := AsError(err)
	if appErr == nil {
		os.Exit(0)
	}

	_ = appErr.Render(os.Stderr)
	os.Exit(appErr.Status)
}
