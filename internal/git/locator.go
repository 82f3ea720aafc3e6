package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/afero"

	"github.com/jmgilman/scmrev/internal/exec"
	"github.com/jmgilman/scmrev/internal/slogger"
)

// DefaultCandidates are the command names tried on PATH, in order.
var DefaultCandidates = []string{"git.cmd", "git", "git.bat"}

// programFilesVars name the environment variables holding Windows program
// directories that a standalone git install may live under.
var programFilesVars = []string{"ProgramFiles(x86)", "ProgramFiles", "ProgramW6432"}

// LocatorConfig configures the lookup strategies.
type LocatorConfig struct {
	// Command is a user-configured git command. It is either a path to an
	// existing file or a shell-style command line such as "git --no-pager".
	Command string

	// Candidates are command names to resolve on PATH. Defaults to DefaultCandidates.
	Candidates []string

	// SearchPaths are extra executable paths checked after the program files
	// defaults. Existence is enough; they are not run.
	SearchPaths []string

	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string

	// UserCommand reads the platform's per-user command setting. Defaults to
	// the Git Extensions registry value on Windows and nothing elsewhere.
	UserCommand func() (string, bool)
}

// Locator finds a runnable git.
type Locator struct {
	exec exec.Executor
	fs   afero.Fs
	cfg  LocatorConfig
}

// NewLocator creates a Locator probing processes through e and files through fs.
func NewLocator(e exec.Executor, fs afero.Fs, cfg LocatorConfig) *Locator {
	if cfg.Candidates == nil {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	if cfg.UserCommand == nil {
		cfg.UserCommand = registryCommand
	}
	return &Locator{exec: e, fs: fs, cfg: cfg}
}

// strategy is one lookup attempt.
type strategy func(ctx context.Context) (Command, bool)

// Locate returns the first git found by, in order: the user-configured command,
// the PATH candidates, and the well-known install paths. Not finding git is a
// normal outcome and is only logged.
func (l *Locator) Locate(ctx context.Context) (Command, bool) {
	if ctx.Err() != nil {
		return Command{}, false
	}
	for _, try := range []strategy{l.fromUserConfig, l.fromPath, l.fromInstallPaths} {
		if cmd, ok := try(ctx); ok {
			slogger.L(ctx).Debug("located git", "command", cmd.String())
			return cmd, true
		}
	}

	if ctx.Err() != nil {
		return Command{}, false
	}
	slogger.L(ctx).Warn("cannot find git or git.cmd, check your PATH", "PATH", l.cfg.Getenv("PATH"))
	return Command{}, false
}

// InstallPaths returns the well-known install locations in lookup order.
func (l *Locator) InstallPaths() []string {
	var paths []string
	for _, name := range programFilesVars {
		if dir := l.cfg.Getenv(name); dir != "" {
			paths = append(paths, filepath.Join(dir, "Git", "cmd", "git.exe"))
		}
	}
	return append(paths, l.cfg.SearchPaths...)
}

func (l *Locator) fromUserConfig(ctx context.Context) (Command, bool) {
	sources := []func() (string, bool){
		func() (string, bool) { return l.cfg.Command, l.cfg.Command != "" },
		l.cfg.UserCommand,
	}
	for _, source := range sources {
		raw, ok := source()
		if !ok {
			continue
		}
		cmd, err := l.parseCommand(raw)
		if err != nil {
			slogger.L(ctx).Warn("ignoring configured git command", "command", raw, "error", err)
			continue
		}
		if l.runnable(ctx, cmd) {
			return cmd, true
		}
		slogger.L(ctx).Info("configured git command is not runnable", "command", raw)
	}
	return Command{}, false
}

func (l *Locator) fromPath(ctx context.Context) (Command, bool) {
	for _, name := range l.cfg.Candidates {
		path, err := l.exec.LookPath(name)
		if err != nil {
			slogger.L(ctx).Debug("git candidate not on PATH", "name", name)
			continue
		}
		cmd := Command{Path: path}
		if l.runnable(ctx, cmd) {
			return cmd, true
		}
	}
	return Command{}, false
}

func (l *Locator) fromInstallPaths(ctx context.Context) (Command, bool) {
	for _, path := range l.InstallPaths() {
		ok, err := afero.Exists(l.fs, path)
		if err != nil {
			slogger.L(ctx).Debug("cannot stat git install path", "path", path, "error", err)
			continue
		}
		if ok {
			return Command{Path: path}, true
		}
	}
	return Command{}, false
}

// parseCommand accepts either a path to an existing file, which may contain
// spaces or backslashes, or a shell-style command line.
func (l *Locator) parseCommand(raw string) (Command, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Command{}, errEmptyCommand
	}
	if ok, _ := afero.Exists(l.fs, raw); ok {
		return Command{Path: raw}, nil
	}

	words, err := shellwords.Parse(raw)
	if err != nil {
		return Command{}, err
	}
	if len(words) == 0 {
		return Command{}, errEmptyCommand
	}
	cmd := Command{Path: words[0]}
	if len(words) > 1 {
		cmd.Args = words[1:]
	}
	return cmd, nil
}

// runnable performs a no-op invocation. Any started process counts, whatever
// its exit status.
func (l *Locator) runnable(ctx context.Context, cmd Command) bool {
	_, err := l.exec.Run(ctx, &exec.RunOptions{
		Name: cmd.Path,
		Args: cmd.with("--version"),
	})
	return exec.Started(err)
}
