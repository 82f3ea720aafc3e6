package git

import (
	"context"
	"strings"

	"github.com/jmgilman/scmrev/internal/exec"
)

// queryEnv keeps git non-interactive and its diagnostics untranslated.
var queryEnv = []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}

// Client runs queries against a located git.
type Client struct {
	exec exec.Executor
	cmd  Command
	dir  string
}

// NewClient creates a Client that runs cmd in dir (empty = current directory).
func NewClient(e exec.Executor, cmd Command, dir string) *Client {
	return &Client{exec: e, cmd: cmd, dir: dir}
}

// Revision returns the full hash of HEAD.
func (c *Client) Revision(ctx context.Context) (string, error) {
	return c.FirstLine(ctx, "rev-parse", "HEAD")
}

// Describe returns `git describe --always --long --dirty` unmodified.
func (c *Client) Describe(ctx context.Context) (string, error) {
	return c.FirstLine(ctx, "describe", "--always", "--long", "--dirty")
}

// Branch returns the checked out branch name, or "HEAD" when detached.
func (c *Client) Branch(ctx context.Context) (string, error) {
	return c.FirstLine(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// FirstLine runs git with args and returns the first line of stdout without its
// terminator. A process that cannot be started, or that prints nothing, yields
// a *QueryError.
func (c *Client) FirstLine(ctx context.Context, args ...string) (string, error) {
	full := c.cmd.with(args...)
	result, err := c.exec.Run(ctx, &exec.RunOptions{
		Name: c.cmd.Path,
		Args: full,
		Dir:  c.dir,
		Env:  queryEnv,
	})

	var stdout, stderr string
	if result != nil {
		stdout = string(result.Stdout)
		stderr = strings.TrimSpace(string(result.Stderr))
	}

	if !exec.Started(err) {
		return "", &QueryError{Command: c.cmd.Path + " " + strings.Join(full, " "), Err: err}
	}
	if stdout == "" {
		if err == nil {
			err = errNoOutput
		}
		return "", &QueryError{Command: c.cmd.Path + " " + strings.Join(full, " "), Stderr: stderr, Err: err}
	}

	line, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
