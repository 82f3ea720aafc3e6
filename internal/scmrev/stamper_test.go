package scmrev

import (
	"bytes"
	"context"
	"errors"
	osexec "os/exec"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/scmrev/internal/exec"
	"github.com/jmgilman/scmrev/internal/exec/mocks"
	"github.com/jmgilman/scmrev/internal/git"
	"github.com/jmgilman/scmrev/internal/slogger"
)

// locatorFunc adapts a function to the Locator interface.
type locatorFunc func(ctx context.Context) (git.Command, bool)

func (f locatorFunc) Locate(ctx context.Context) (git.Command, bool) {
	return f(ctx)
}

func notFound(context.Context) (git.Command, bool) {
	return git.Command{}, false
}

func found(context.Context) (git.Command, bool) {
	return git.Command{Path: "/usr/bin/git"}, true
}

// gitExec answers the three queries from a table keyed by the first argument
// that distinguishes them.
func gitExec(revision, describe, branch string) *mocks.ExecutorMock {
	return &mocks.ExecutorMock{
		RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
			switch strings.Join(opts.Args, " ") {
			case "rev-parse HEAD":
				return &exec.Result{Stdout: []byte(revision + "\n")}, nil
			case "describe --always --long --dirty":
				return &exec.Result{Stdout: []byte(describe + "\n")}, nil
			case "rev-parse --abbrev-ref HEAD":
				return &exec.Result{Stdout: []byte(branch + "\n")}, nil
			}
			return nil, errors.New("unexpected args: " + strings.Join(opts.Args, " "))
		},
	}
}

func TestStamper_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("placeholders when git is not found", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{}
		s := New(locatorFunc(notFound), mockExec, afero.NewMemMapFs(), &bytes.Buffer{})

		info, err := s.Resolve(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, PlaceholderInfo(), info)
		assert.Empty(t, mockExec.RunCalls())
	})

	t.Run("queries git and sanitizes describe", func(t *testing.T) {
		s := New(locatorFunc(found), gitExec("deadbeef", "v1.4-12-gabc123-dirty", "stable"), afero.NewMemMapFs(), &bytes.Buffer{})

		info, err := s.Resolve(ctx, "/src")

		require.NoError(t, err)
		assert.Equal(t, Info{
			Revision: "deadbeef",
			Describe: "v1.4-dirty",
			Branch:   "stable",
			Stable:   true,
			Tool:     "/usr/bin/git",
		}, info)
	})

	t.Run("feature branch is not stable", func(t *testing.T) {
		s := New(locatorFunc(found), gitExec("deadbeef", "v1.4-0-gabc123", "feature/x"), afero.NewMemMapFs(), &bytes.Buffer{})

		info, err := s.Resolve(ctx, "")

		require.NoError(t, err)
		assert.False(t, info.Stable)
	})

	t.Run("a failing query is fatal without placeholder substitution", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
				if opts.Args[0] == "describe" {
					return &exec.Result{ExitCode: -1}, &osexec.Error{Name: "git", Err: osexec.ErrNotFound}
				}
				return &exec.Result{Stdout: []byte("value\n")}, nil
			},
		}
		s := New(locatorFunc(found), mockExec, afero.NewMemMapFs(), &bytes.Buffer{})

		_, err := s.Resolve(ctx, "")

		var qerr *git.QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Contains(t, qerr.Command, "describe --always --long --dirty")
		// Branch is never queried once describe failed.
		assert.Len(t, mockExec.RunCalls(), 2)
	})
}

func TestStamper_Stamp(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback writes placeholders", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		var out bytes.Buffer
		s := New(locatorFunc(notFound), &mocks.ExecutorMock{}, fs, &out)

		result, err := s.Stamp(ctx, Options{})

		require.NoError(t, err)
		assert.Equal(t, StatusUpdated, result.Status)
		assert.Equal(t, DefaultOutput, result.Path)
		assert.Equal(t, "./defaultconfig/scmrev.h updated to SCM_DESC_STR\n", out.String())

		got, err := afero.ReadFile(fs, DefaultOutput)
		require.NoError(t, err)
		assert.Equal(t, PlaceholderInfo().Header(), string(got))
		assert.Contains(t, string(got), "#define SCM_IS_MASTER 0\n")
	})

	t.Run("second run reports current", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mockExec := gitExec("deadbeef", "v2.0-0-g1234567", "master")

		_, err := New(locatorFunc(found), mockExec, fs, &bytes.Buffer{}).Stamp(ctx, Options{Output: "out/scmrev.h"})
		require.NoError(t, err)

		var out bytes.Buffer
		result, err := New(locatorFunc(found), mockExec, fs, &out).Stamp(ctx, Options{Output: "out/scmrev.h"})

		require.NoError(t, err)
		assert.Equal(t, StatusCurrent, result.Status)
		assert.Equal(t, "out/scmrev.h current at v2.0\n", out.String())
	})

	t.Run("fatal query leaves existing header untouched", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, DefaultOutput, []byte(sampleHeader), 0o644))
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(_ context.Context, _ *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{ExitCode: -1}, &osexec.Error{Name: "git", Err: osexec.ErrNotFound}
			},
		}
		var out bytes.Buffer

		_, err := New(locatorFunc(found), mockExec, fs, &out).Stamp(ctx, Options{})

		require.Error(t, err)
		assert.Empty(t, out.String())
		got, err := afero.ReadFile(fs, DefaultOutput)
		require.NoError(t, err)
		assert.Equal(t, sampleHeader, string(got))
	})

	t.Run("cancelled run keeps the existing header", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, DefaultOutput, []byte(sampleHeader), 0o644))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		var out bytes.Buffer

		// Lookups fail under a cancelled context, so the locator reports nothing.
		_, err := New(locatorFunc(notFound), &mocks.ExecutorMock{}, fs, &out).Stamp(cancelled, Options{})

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, out.String())
		got, err := afero.ReadFile(fs, DefaultOutput)
		require.NoError(t, err)
		assert.Equal(t, sampleHeader, string(got))
	})

	t.Run("cancellation during lookup is not a missing git", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		cancelCtx, cancel := context.WithCancel(ctx)
		locator := locatorFunc(func(context.Context) (git.Command, bool) {
			cancel()
			return git.Command{}, false
		})

		_, err := New(locator, &mocks.ExecutorMock{}, fs, &bytes.Buffer{}).Stamp(cancelCtx, Options{})

		require.ErrorIs(t, err, context.Canceled)
		exists, err := afero.Exists(fs, DefaultOutput)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("logs a diff of the header at debug level", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "scmrev.h", []byte(PlaceholderInfo().Header()), 0o644))
		var logs bytes.Buffer
		logCtx := slogger.WithLogger(ctx, slogger.New(slogger.Config{Verbosity: 2, Output: &logs}))

		_, err := New(locatorFunc(found), gitExec("deadbeef", "v1.0-3-gabcdef0", "develop"), fs, &bytes.Buffer{}).
			Stamp(logCtx, Options{Output: "scmrev.h"})

		require.NoError(t, err)
		assert.Contains(t, logs.String(), "header changed")
		assert.Contains(t, logs.String(), "SCM_REV_STR")
	})
}

func TestResult_String(t *testing.T) {
	r := &Result{Path: "x.h", Status: StatusUpdated, Info: Info{Describe: "v1"}}
	assert.Equal(t, "x.h updated to v1", r.String())

	r.Status = StatusCurrent
	assert.Equal(t, "x.h current at v1", r.String())
}
