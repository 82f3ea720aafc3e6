// Package git discovers a git executable and queries it for the revision
// metadata that ends up in the generated header.
package git

import (
	"errors"
	"fmt"
	"strings"
)

// Errors wrapped into QueryError or logged while locating git.
var (
	errNoOutput     = errors.New("no output")
	errEmptyCommand = errors.New("empty command")
)

// Command is a runnable git invocation prefix: a program plus any leading
// arguments that came from a user-configured command string.
type Command struct {
	Path string
	Args []string
}

// String renders the command the way it would be typed.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// with returns the full argument list for a subcommand.
func (c Command) with(args ...string) []string {
	full := make([]string, 0, len(c.Args)+len(args))
	full = append(full, c.Args...)
	return append(full, args...)
}

// QueryError reports a located git that could not answer a query. It is fatal
// to a stamping run.
type QueryError struct {
	Command string // Full command line that failed
	Stderr  string // Trimmed stderr, if any
	Err     error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("failed to exec %s", e.Command)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ExitCode is the process status for a run aborted by this error.
func (e *QueryError) ExitCode() int {
	return 1
}
