// Package exec provides an abstraction over running external programs so that
// git discovery and queries can be exercised without spawning processes.
package exec

import (
	"context"
	"errors"
	"os/exec"
)

// Result holds the output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// RunOptions configures a single invocation.
type RunOptions struct {
	Name string   // Program name or path (required)
	Args []string // Program arguments
	Dir  string   // Working directory (empty = current)
	Env  []string // Additional environment variables (KEY=VALUE format)
}

// Executor runs external programs.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/executor.go . Executor
type Executor interface {
	// Run executes a program and captures its output.
	// Returns os/exec.ExitError on non-zero exit (use errors.As to extract);
	// the Result is populated in that case too.
	Run(ctx context.Context, opts *RunOptions) (*Result, error)

	// LookPath searches for an executable in PATH.
	LookPath(name string) (string, error)
}

// Started reports whether err still means the process was started. A nil error
// and a non-zero exit both qualify; a missing or non-executable program does not.
func Started(err error) bool {
	if err == nil {
		return true
	}
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
