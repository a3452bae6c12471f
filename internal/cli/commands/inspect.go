package commands

import (
	"fmt"

	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/pkg/codec"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Format string
}

// Inspect output formats.
const (
	InspectText = "text"
	InspectJSON = "json"
	InspectYAML = "yaml"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode and print a matrix file",
		Long: `Decode a matrix file written by the shell's write command and print it.

The file is read with the same decoder the shell uses, so truncated or
corrupt files fail with the same diagnostics.`,
		Example: `  # Print the bootstrap matrix
  matshell inspect temp_mat

  # Machine-readable output
  matshell inspect temp_mat --format json
  matshell inspect temp_mat --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", InspectText, "Output format: text, json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{InspectText, InspectJSON, InspectYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	cc := NewCommandContext(cmd)

	m, err := codec.ReadFile(path)
	if err != nil {
		return err
	}
	cc.Logger.DebugContext(cmd.Context(), "decoded matrix file", "path", path, "name", m.Name, "rows", m.Rows, "cols", m.Cols)

	switch opts.Format {
	case InspectText, "":
		grid, err := output.ParseGridStyle(cc.Cfg.Display)
		if err != nil {
			return err
		}
		cc.Renderer.Matrix(m, grid)
		return nil
	case InspectJSON:
		return cc.Renderer.JSON(output.NewMatrixDoc(m))
	case InspectYAML:
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(output.NewMatrixDoc(m)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", opts.Format)
	}
}
