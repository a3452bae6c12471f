package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/leapstack-labs/matshell/internal/cli/config"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/internal/shell"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive matrix shell",
		Long: `Start the interactive matrix shell.

A bootstrap matrix (temp_mat by default) is created, randomized and written
to the data directory before the first prompt. Each input line is one
command; type help for the command list and exit to quit.

When standard input is not a terminal, lines are read from it without
line editing, so scripts can be piped in.`,
		Example: `  # Interactive session
  matshell shell

  # Run a script
  printf 'create A 2 2\nrandom A 1 9\ndisplay A\n' | matshell shell

  # Prefix name lookup and a fixed seed
  matshell shell --name-match prefix --seed 42`,
		Args: cobra.NoArgs,
		RunE: RunShell,
	}
}

// RunShell runs a shell session on the command's input and output streams.
// It is also the root command's default action.
func RunShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	scfg, err := cc.SessionConfig()
	if err != nil {
		return err
	}
	logger := cc.Logger.With("session", uuid.NewString())
	scfg.Logger = logger

	sess := shell.NewSession(scfg, cc.Renderer)
	defer func() { _ = sess.Close() }()

	if err := sess.Bootstrap(ctx); err != nil {
		return err
	}

	lr, closeReader, err := newLineReader(cmd, cc.Cfg, sess)
	if err != nil {
		return err
	}
	defer closeReader()

	logger.DebugContext(ctx, "shell started",
		"capacity", scfg.Capacity,
		"data_dir", scfg.DataDir,
		"name_match", scfg.MatchMode)
	return sess.Run(ctx, lr)
}

// newLineReader picks readline for terminals and a plain line scanner otherwise.
func newLineReader(cmd *cobra.Command, cfg *config.Config, sess *shell.Session) (shell.LineReader, func(), error) {
	in := cmd.InOrStdin()
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return shell.NewScannerReader(in), func() {}, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    newShellCompleter(sess.Interpreter().Commands(), sess.Registry()),
		InterruptPrompt: "^C",
		EOFPrompt:       shell.ExitToken,
		Stdin:           f,
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize shell: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "matshell (%d slots, data dir %s)\n", cfg.Capacity, cfg.DataDir)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type help for commands, exit to quit")

	return interactiveReader{rl: rl}, func() { _ = rl.Close() }, nil
}

// interactiveReader turns ^C into an empty line so the loop keeps going.
type interactiveReader struct {
	rl *readline.Instance
}

func (r interactiveReader) Readline() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}
	if errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	return line, err
}

// matrixArgCommands take an existing matrix name as their first operand.
var matrixArgCommands = map[string]bool{
	"display":   true,
	"add":       true,
	"duplicate": true,
	"equal":     true,
	"shift":     true,
	"write":     true,
	"random":    true,
}

// newShellCompleter completes command keywords and, where a command expects
// one, the names currently held in the registry.
func newShellCompleter(commands []string, reg *registry.Registry) *readline.PrefixCompleter {
	names := func(string) []string { return reg.Names() }

	items := make([]readline.PrefixCompleterInterface, 0, len(commands)+1)
	for _, name := range commands {
		if matrixArgCommands[name] {
			items = append(items, readline.PcItem(name, readline.PcItemDynamic(names)))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	items = append(items, readline.PcItem(shell.ExitToken))
	return readline.NewPrefixCompleter(items...)
}
