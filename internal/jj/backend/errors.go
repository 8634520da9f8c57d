package backend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed engine invocation.
type ErrorKind uint8

const (
	// KindOutput means the process could not be spawned or its output could
	// not be collected.
	KindOutput ErrorKind = iota
	// KindStatus means the process ran and exited with a non-zero status.
	KindStatus
	// KindUTF8 means stdout was not valid UTF-8.
	KindUTF8
)

func (k ErrorKind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindStatus:
		return "status"
	case KindUTF8:
		return "utf8"
	default:
		return "unknown"
	}
}

// ErrInvalidUTF8 is wrapped by CommandError values of kind KindUTF8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 in output")

// CommandError is returned by Runner for every failed invocation.
type CommandError struct {
	Kind ErrorKind
	// Stderr is the captured standard error (KindStatus only).
	Stderr string
	// ExitCode is the process exit code, or -1 when the process was killed
	// by a signal or never started.
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case KindOutput:
		return fmt.Sprintf("error getting output: %v", e.Err)
	case KindStatus:
		return e.Stderr
	case KindUTF8:
		return fmt.Sprintf("error parsing UTF-8 output: %v", e.Err)
	default:
		return fmt.Sprintf("command error: %v", e.Err)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// HasExitCode reports whether the process exited normally with a code.
func (e *CommandError) HasExitCode() bool {
	return e.Kind == KindStatus && e.ExitCode >= 0
}

// Render formats the error for display in a message popup. A non-empty title
// is followed by two blank lines.
func (e *CommandError) Render(title string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n\n\n")
	}
	b.WriteString(e.Error())
	return b.String()
}

// IsStatus reports whether err is a CommandError of kind KindStatus with the
// given exit code.
func IsStatus(err error, code int) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Kind == KindStatus && cmdErr.ExitCode == code
}
