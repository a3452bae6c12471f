// Package shell implements the matrix command interpreter and the
// read-dispatch loop that drives it.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// Interpreter maps tokenized commands onto registry, codec and matrix operations.
type Interpreter struct {
	reg     *registry.Registry
	out     *output.Renderer
	logger  *slog.Logger
	rng     matrix.Rand
	dataDir string
	grid    output.GridStyle
	cmds    *commandTable
}

// InterpreterOptions configures an Interpreter.
type InterpreterOptions struct {
	// DataDir is where write puts files and where relative read paths resolve.
	DataDir string
	Grid    output.GridStyle
	Rand    matrix.Rand
	Logger  *slog.Logger
}

// NewInterpreter creates an interpreter over reg that reports through out.
func NewInterpreter(reg *registry.Registry, out *output.Renderer, opts InterpreterOptions) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	grid := opts.Grid
	if grid == "" {
		grid = output.GridPlain
	}
	return &Interpreter{
		reg:     reg,
		out:     out,
		logger:  logger,
		rng:     opts.Rand,
		dataDir: dataDir,
		grid:    grid,
		cmds:    builtinCommands(),
	}
}

// Commands returns the command names in sorted order.
func (in *Interpreter) Commands() []string {
	return in.cmds.names()
}

// Dispatch runs one tokenized command. Every failure is returned as a
// *CommandError; an empty token list is a no-op.
func (in *Interpreter) Dispatch(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := tokens[0]
	cmd, ok := in.cmds.resolve(name)
	if !ok {
		return &CommandError{Command: name, Err: ErrUnknownCommand}
	}
	if len(tokens) != cmd.Arity {
		return &CommandError{
			Command: name,
			Err:     fmt.Errorf("%w: %s takes %d arguments, got %d (usage: %s)", ErrArity, name, cmd.Arity-1, len(tokens)-1, cmd.Usage),
		}
	}

	in.logger.DebugContext(ctx, "dispatch", "command", name, "args", tokens[1:])
	if err := cmd.Run(ctx, in, tokens[1:]); err != nil {
		return &CommandError{Command: name, Err: err}
	}
	return nil
}

// lookup resolves a name-role token.
func (in *Interpreter) lookup(name string) (*matrix.Matrix, error) {
	return in.reg.Get(name)
}

// store inserts a command result, logging any matrix it evicts.
func (in *Interpreter) store(ctx context.Context, m *matrix.Matrix) error {
	idx, evicted, err := in.reg.Insert(m)
	if err != nil {
		return err
	}
	if evicted != "" {
		in.logger.DebugContext(ctx, "evicted matrix", "slot", idx, "name", evicted, "replacement", m.Name)
	}
	return nil
}

// path resolves a file token against the data directory.
func (in *Interpreter) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(in.dataDir, p)
}

func parseUint32(role, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an unsigned 32-bit integer", ErrParse, role, s)
	}
	return uint32(v), nil
}
