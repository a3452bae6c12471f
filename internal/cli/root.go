// Package cli provides the command-line interface for matshell.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/matshell/internal/cli/commands"
	"github.com/leapstack-labs/matshell/internal/cli/config"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "matshell",
		Short: "matshell - interactive matrix shell",
		Long: `matshell is an interactive shell for small unsigned integer matrices.

Matrices live in a fixed number of named slots. When every slot is taken
the oldest one is replaced. Matrices can be created, randomized, added,
shifted, compared, and written to or read from a compact binary file.

Running matshell without a subcommand starts the shell.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// help and completion must work with a broken config.
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), cfg)
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose && cfg.ConfigFile != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.ConfigFile)
			}
			return nil
		},
		RunE:          commands.RunShell,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./matshell.yaml)")
	rootCmd.PersistentFlags().Int("capacity", config.DefaultCapacity, "Number of matrix slots")
	rootCmd.PersistentFlags().String("data-dir", config.DefaultDataDir, "Directory for written matrices and relative read paths")
	rootCmd.PersistentFlags().String("name-match", config.DefaultNameMatch, "Name lookup mode (exact|prefix)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Random seed (0 uses the clock)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("name-match", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"exact", "prefix"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewLogger builds the process logger: slog text records on w at the configured level.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for matshell.

To load completions:

Bash:
  $ source <(matshell completion bash)

Zsh:
  $ matshell completion zsh > "${fpath[1]}/_matshell"

Fish:
  $ matshell completion fish | source

PowerShell:
  PS> matshell completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
