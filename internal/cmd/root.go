// Package cmd implements the scmrev CLI using Cobra. Running scmrev with no
// subcommand stamps the version header.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jmgilman/scmrev/internal/config"
	"github.com/jmgilman/scmrev/internal/exec"
	"github.com/jmgilman/scmrev/internal/git"
	"github.com/jmgilman/scmrev/internal/scmrev"
	"github.com/jmgilman/scmrev/internal/slogger"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	ConfigPath string
	Output     string
	Dir        string
	Verbosity  int
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "scmrev",
		Short: "Generate a C header with git version metadata",
		Long: `scmrev writes a header defining SCM_REV_STR, SCM_DESC_STR, SCM_BRANCH_STR
and SCM_IS_MASTER from the current git checkout.

The header is only rewritten when its content changes, so builds that depend
on it are not triggered needlessly. When git cannot be found, placeholder
values are written instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := slogger.New(slogger.Config{
				Verbosity: opts.Verbosity,
				Output:    cmd.ErrOrStderr(),
			})

			loader, err := config.NewLoader(opts.ConfigPath)
			if err != nil {
				return err
			}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = opts.Output
			}
			if cmd.Flags().Changed("dir") {
				cfg.Git.Dir = opts.Dir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = slogger.WithLogger(ctx, logger)
			ctx = WithConfig(ctx, cfg)
			cmd.SetContext(ctx)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStamp(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file (default ~/.config/scmrev/config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Header file to write")
	cmd.PersistentFlags().StringVarP(&opts.Dir, "dir", "C", "", "Run git in this directory")
	cmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func runStamp(ctx context.Context, out io.Writer) error {
	cfg := ConfigFromContext(ctx)
	_, err := newStamper(cfg, out).Stamp(ctx, scmrev.Options{
		Output: cfg.Output,
		Dir:    cfg.Git.Dir,
	})
	return err
}

// newStamper wires the real process executor and filesystem.
func newStamper(cfg *config.Config, out io.Writer) *scmrev.Stamper {
	executor := exec.New()
	fs := afero.NewOsFs()

	locator := git.NewLocator(executor, fs, git.LocatorConfig{
		Command:     cfg.Git.Command,
		Candidates:  cfg.Git.Candidates,
		SearchPaths: cfg.Git.SearchPaths,
		Getenv:      os.Getenv,
	})

	return scmrev.New(locator, executor, fs, out)
}
