package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/internal/testutil"
	"github.com/leapstack-labs/matshell/pkg/codec"
	"github.com/leapstack-labs/matshell/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, cfg Config) (*Session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	s := NewSession(cfg, output.NewRenderer(out, errOut, output.ModeText))
	return s, out, errOut
}

func defaultBootstrap() *Bootstrap {
	return &Bootstrap{Name: "temp_mat", Rows: 5, Cols: 5, Low: 10, High: 15, Write: true}
}

func TestSession_Bootstrap(t *testing.T) {
	dir := t.TempDir()
	s, _, _ := newTestSession(t, Config{Capacity: 10, DataDir: dir, Bootstrap: defaultBootstrap()})

	require.NoError(t, s.Bootstrap(context.Background()))

	m, err := s.Registry().Get("temp_mat")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), m.Rows)
	for _, v := range m.Data {
		assert.GreaterOrEqual(t, v, uint32(10))
		assert.LessOrEqual(t, v, uint32(15))
	}

	onDisk, err := codec.ReadFile(filepath.Join(dir, "temp_mat"))
	require.NoError(t, err)
	assert.True(t, matrix.Equal(m, onDisk))
}

func TestSession_BootstrapFailures(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "unwritable data dir",
			cfg: Config{
				Capacity:  10,
				DataDir:   filepath.Join(t.TempDir(), "missing"),
				Bootstrap: defaultBootstrap(),
			},
		},
		{
			name: "inverted range",
			cfg: Config{
				Capacity:  10,
				Bootstrap: &Bootstrap{Name: "temp_mat", Rows: 1, Cols: 1, Low: 5, High: 1},
			},
		},
		{
			name: "invalid name",
			cfg: Config{
				Capacity:  10,
				Bootstrap: &Bootstrap{Name: "", Rows: 1, Cols: 1, Low: 1, High: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSession(t, tt.cfg)
			assert.ErrorIs(t, s.Bootstrap(context.Background()), ErrBootstrap)
		})
	}

	t.Run("no bootstrap configured", func(t *testing.T) {
		s, _, _ := newTestSession(t, Config{Capacity: 10})
		require.NoError(t, s.Bootstrap(context.Background()))
		assert.Zero(t, s.Registry().Len())
	})
}

func TestSession_Run(t *testing.T) {
	s, out, errOut := newTestSession(t, Config{Capacity: 10})

	input := strings.Join([]string{
		"create A 2 2",
		"",
		"bogus",
		"display missing",
		"random A 1 5",
		"duplicate A B",
		"equal A B",
		"exit",
		"create after_exit 1 1",
	}, "\n")

	require.NoError(t, s.Run(context.Background(), NewScannerReader(strings.NewReader(input))))

	assert.Contains(t, out.String(), "Created Matrix (A,2,2)")
	assert.Contains(t, out.String(), "SAME DATA IN BOTH")
	assert.Contains(t, errOut.String(), "bogus failed: not a command in this application")
	assert.Contains(t, errOut.String(), "display failed: matrix not found: missing")

	_, err := s.Registry().Find("after_exit")
	assert.ErrorIs(t, err, registry.ErrNotFound, "lines after exit are not read")

	assert.Equal(t, 2, s.Close())
	assert.Zero(t, s.Close())
}

func TestSession_RunEndsOnEOF(t *testing.T) {
	s, out, _ := newTestSession(t, Config{Capacity: 10})
	require.NoError(t, s.Run(context.Background(), NewScannerReader(strings.NewReader("create A 1 1"))))
	assert.Contains(t, out.String(), "Created Matrix (A,1,1)")
}

func TestSession_ExitToken(t *testing.T) {
	s, _, _ := newTestSession(t, Config{Capacity: 10})
	ctx := context.Background()

	assert.ErrorIs(t, s.Exec(ctx, "exit"), io.EOF)
	assert.ErrorIs(t, s.Exec(ctx, "  exit \n"), io.EOF)

	// exit must be the whole line
	err := s.Exec(ctx, "exit now")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	err = s.Exec(ctx, "exited")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestSession_TokenTooLongIsReported(t *testing.T) {
	s, _, errOut := newTestSession(t, Config{Capacity: 10})
	input := "read " + strings.Repeat("p", MaxTokenLen+1) + "\ncreate A 1 1\n"

	require.NoError(t, s.Run(context.Background(), NewScannerReader(strings.NewReader(input))))
	assert.Contains(t, errOut.String(), "parse failed")

	_, err := s.Registry().Find("A")
	assert.NoError(t, err, "the loop continues after a tokenizer failure")
}

type failingReader struct{ err error }

func (r failingReader) Readline() (string, error) { return "", r.err }

func TestSession_RunReaderError(t *testing.T) {
	s, _, _ := newTestSession(t, Config{Capacity: 10})
	boom := errors.New("boom")
	assert.ErrorIs(t, s.Run(context.Background(), failingReader{err: boom}), boom)
}

func TestSession_RunCancelled(t *testing.T) {
	s, _, _ := newTestSession(t, Config{Capacity: 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx, NewScannerReader(strings.NewReader("create A 1 1"))), context.Canceled)
}

func TestSession_LogsEviction(t *testing.T) {
	logger, logs := testutil.NewCapturingLogger()
	s, _, _ := newTestSession(t, Config{Capacity: 1, Logger: logger})
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "create A 1 1"))
	require.NoError(t, s.Exec(ctx, "create B 1 1"))

	assert.Contains(t, logs.String(), "evicted matrix")
	assert.Contains(t, logs.String(), "name=A")
	assert.Contains(t, logs.String(), "replacement=B")
}

func TestSession_PrefixMatchMode(t *testing.T) {
	s, _, _ := newTestSession(t, Config{Capacity: 10, MatchMode: registry.MatchPrefix})
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "create A 1 1"))
	// the stored name "A" is a prefix of "Apple"
	require.NoError(t, s.Exec(ctx, "display Apple"))
}
