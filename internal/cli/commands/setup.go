package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/matshell/internal/cli/config"
	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/internal/shell"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and a renderer for cmd.
// Config and logger come from the context set up by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// SessionConfig translates the CLI configuration into a shell session config.
func (c *CommandContext) SessionConfig() (shell.Config, error) {
	mode, err := registry.ParseMatchMode(c.Cfg.NameMatch)
	if err != nil {
		return shell.Config{}, err
	}
	grid, err := output.ParseGridStyle(c.Cfg.Display)
	if err != nil {
		return shell.Config{}, err
	}
	if c.Cfg.Capacity < 1 {
		return shell.Config{}, fmt.Errorf("capacity must be positive, got %d", c.Cfg.Capacity)
	}

	b := c.Cfg.Bootstrap
	return shell.Config{
		Capacity:  c.Cfg.Capacity,
		MatchMode: mode,
		DataDir:   c.Cfg.DataDir,
		Grid:      grid,
		Seed:      c.Cfg.Seed,
		Bootstrap: &shell.Bootstrap{
			Name:  b.Name,
			Rows:  b.Rows,
			Cols:  b.Cols,
			Low:   b.Low,
			High:  b.High,
			Write: b.Write,
		},
		Logger: c.Logger,
	}, nil
}
