package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/pkg/codec"
	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// ExitToken ends the read loop.
const ExitToken = "exit"

// LineReader supplies raw input lines. Readline returns io.EOF when input ends.
type LineReader interface {
	Readline() (string, error)
}

// Bootstrap describes the matrix created before the first prompt.
type Bootstrap struct {
	Name  string
	Rows  uint32
	Cols  uint32
	Low   uint32
	High  uint32
	Write bool
}

// Config configures a Session.
type Config struct {
	Capacity  int
	MatchMode registry.MatchMode
	DataDir   string
	Grid      output.GridStyle
	// Seed for the random source; 0 seeds from the clock.
	Seed      uint64
	Bootstrap *Bootstrap
	Logger    *slog.Logger
}

// Session owns a registry and an interpreter for one shell run.
type Session struct {
	cfg    Config
	reg    *registry.Registry
	interp *Interpreter
	out    *output.Renderer
	logger *slog.Logger
}

// NewSession creates a session with an empty registry.
func NewSession(cfg Config, out *output.Renderer) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	reg := registry.New(cfg.Capacity, registry.WithMatchMode(cfg.MatchMode))
	interp := NewInterpreter(reg, out, InterpreterOptions{
		DataDir: cfg.DataDir,
		Grid:    cfg.Grid,
		Rand:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Logger:  logger,
	})
	return &Session{
		cfg:    cfg,
		reg:    reg,
		interp: interp,
		out:    out,
		logger: logger,
	}
}

// Registry returns the session's slot table.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Interpreter returns the session's interpreter.
func (s *Session) Interpreter() *Interpreter { return s.interp }

// Bootstrap creates, randomizes and optionally writes the startup matrix.
// Any failure is wrapped in ErrBootstrap; the shell cannot start without it.
func (s *Session) Bootstrap(ctx context.Context) error {
	b := s.cfg.Bootstrap
	if b == nil {
		return nil
	}

	m, err := matrix.New(b.Name, b.Rows, b.Cols)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrBootstrap, b.Name, err)
	}
	if _, _, err := s.reg.Insert(m); err != nil {
		return fmt.Errorf("%w: insert %s: %w", ErrBootstrap, b.Name, err)
	}
	m, err = s.reg.Get(b.Name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	if err := matrix.Randomize(m, s.interp.rng, b.Low, b.High); err != nil {
		return fmt.Errorf("%w: randomize %s: %w", ErrBootstrap, b.Name, err)
	}
	if b.Write {
		path := filepath.Join(s.cfg.DataDir, m.Name)
		if err := codec.WriteFile(path, m); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrBootstrap, b.Name, err)
		}
		s.logger.DebugContext(ctx, "bootstrap matrix written", "path", path)
	}
	s.logger.InfoContext(ctx, "bootstrap matrix ready", "name", m.Name, "rows", m.Rows, "cols", m.Cols)
	return nil
}

// Exec tokenizes and dispatches one line. It returns io.EOF for the exit token.
func (s *Session) Exec(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == ExitToken {
		return io.EOF
	}
	tokens, err := Tokenize(line)
	if err != nil {
		return &CommandError{Command: "parse", Err: err}
	}
	return s.interp.Dispatch(ctx, tokens)
}

// Run reads lines from lr until the exit token, end of input or context
// cancellation. Command failures are reported and never end the loop.
func (s *Session) Run(ctx context.Context, lr LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := lr.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		err = s.Exec(ctx, line)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			s.report(ctx, err)
		}
	}
}

func (s *Session) report(ctx context.Context, err error) {
	var ce *CommandError
	if errors.As(err, &ce) {
		s.out.Error(fmt.Sprintf("%s failed: %v", ce.Command, ce.Err))
	} else {
		s.out.Error(err.Error())
	}
	s.logger.DebugContext(ctx, "command failed", "error", err)
}

// Close destroys every matrix still held and returns how many were released.
func (s *Session) Close() int {
	n := s.reg.Teardown()
	s.logger.Debug("registry torn down", "released", n, "capacity", s.reg.Capacity())
	return n
}

// ScannerReader adapts an io.Reader to LineReader, one line per call.
type ScannerReader struct {
	sc *bufio.Scanner
}

// NewScannerReader reads lines from r.
func NewScannerReader(r io.Reader) *ScannerReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &ScannerReader{sc: sc}
}

// Readline returns the next line without its terminator.
func (r *ScannerReader) Readline() (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
