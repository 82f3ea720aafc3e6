package scmrev

import (
	"context"
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"

	"github.com/jmgilman/scmrev/internal/exec"
	"github.com/jmgilman/scmrev/internal/git"
	"github.com/jmgilman/scmrev/internal/slogger"
)

// DefaultOutput is the header path, relative to the working directory.
const DefaultOutput = "./defaultconfig/scmrev.h"

// Locator finds a git executable. Not finding one is not an error.
type Locator interface {
	Locate(ctx context.Context) (git.Command, bool)
}

// Options configures a stamping run.
type Options struct {
	Output string // Header path (empty = DefaultOutput)
	Dir    string // Working directory for git queries (empty = current)
}

// Result describes a finished stamping run.
type Result struct {
	Path   string
	Status Status
	Info   Info
}

// String is the one-line status report printed for a run.
func (r *Result) String() string {
	if r.Status == StatusCurrent {
		return fmt.Sprintf("%s current at %s", r.Path, r.Info.Describe)
	}
	return fmt.Sprintf("%s updated to %s", r.Path, r.Info.Describe)
}

// Stamper produces the version header. Process execution and the filesystem
// are injected so whole runs can be exercised without git or a disk.
type Stamper struct {
	locator Locator
	exec    exec.Executor
	fs      afero.Fs
	out     io.Writer
}

// New creates a Stamper that prints its status line to out.
func New(locator Locator, e exec.Executor, fsys afero.Fs, out io.Writer) *Stamper {
	return &Stamper{
		locator: locator,
		exec:    e,
		fs:      fsys,
		out:     out,
	}
}

// Resolve gathers version info. Without git the placeholders are returned. With
// git every query must succeed: a failure is returned as a *git.QueryError and
// no placeholder is substituted. A cancelled context is an error, never a
// reason to fall back to placeholders.
func (s *Stamper) Resolve(ctx context.Context, dir string) (Info, error) {
	info := PlaceholderInfo()

	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	cmd, found := s.locator.Locate(ctx)
	// Lookups fail once the context is done, which looks like a missing git.
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	if found {
		client := git.NewClient(s.exec, cmd, dir)

		revision, err := client.Revision(ctx)
		if err != nil {
			return Info{}, err
		}
		describe, err := client.Describe(ctx)
		if err != nil {
			return Info{}, err
		}
		branch, err := client.Branch(ctx)
		if err != nil {
			return Info{}, err
		}

		info = Info{
			Revision: revision,
			Describe: describe,
			Branch:   branch,
			Stable:   IsStableBranch(branch),
			Tool:     cmd.String(),
		}
	}

	info.Describe = SanitizeDescribe(info.Describe)
	return info, nil
}

// Stamp resolves version info, writes the header if it changed and prints
// "<path> current at <describe>" or "<path> updated to <describe>".
func (s *Stamper) Stamp(ctx context.Context, opts Options) (*Result, error) {
	path := opts.Output
	if path == "" {
		path = DefaultOutput
	}

	info, err := s.Resolve(ctx, opts.Dir)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := info.Header()
	status, previous, err := writeIfChanged(s.fs, path, text)
	if err != nil {
		return nil, err
	}
	if status == StatusUpdated {
		logDiff(ctx, path, previous, text)
	}

	result := &Result{Path: path, Status: status, Info: info}
	if _, err := fmt.Fprintln(s.out, result.String()); err != nil {
		return nil, fmt.Errorf("write status: %w", err)
	}
	return result, nil
}

// logDiff logs the header change at debug level.
func logDiff(ctx context.Context, path, before, after string) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  1,
	})
	if err != nil {
		return
	}
	slogger.L(ctx).Debug("header changed", "path", path, "diff", diff)
}
