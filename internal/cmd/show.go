package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/scmrev/internal/scmrev"
)

// Output formats accepted by show.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var validFormats = map[string]bool{
	formatText: true,
	formatJSON: true,
	formatYAML: true,
}

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the version info without writing the header",
		Example: `  # Print the header that would be written
  scmrev show

  # Machine-readable output
  scmrev show --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !validFormats[format] {
				return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
			}

			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)

			info, err := newStamper(cfg, io.Discard).Resolve(ctx, cfg.Git.Dir)
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), info, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json or yaml")

	return cmd
}

func printInfo(w io.Writer, info scmrev.Info, format string) error {
	switch format {
	case formatText:
		_, err := io.WriteString(w, info.Header())
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
	}
}
