package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display matshell version and the matrix file format it reads and writes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "matshell v%s\n", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Matrix files: little-endian u32 fields, 0xFF trailer")
		},
	}
}
