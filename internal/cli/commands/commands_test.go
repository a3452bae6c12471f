package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/matshell/internal/cli/config"
	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/internal/cli/testutil"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/internal/shell"
	"github.com/leapstack-labs/matshell/pkg/codec"
	"github.com/leapstack-labs/matshell/pkg/matrix"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testConfig returns defaults pointed at a temp data dir with a fixed seed.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Seed = 1
	cfg.HistoryFile = ""
	cfg.OutputFormat = string(output.ModeText)
	return cfg
}

// execute runs cmd with args and stdin, returning stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	// a nil slice makes cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))

	ctx := config.WithConfig(context.Background(), cfg)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewShellCommand(), use: "shell"},
		{cmd: NewInspectCommand(), use: "inspect <file>", flags: []string{"format"}},
		{cmd: NewVersionCommand("test"), use: "version"},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	for _, version := range []string{"0.1.0", "dev"} {
		t.Run(version, func(t *testing.T) {
			out, _, err := execute(t, NewVersionCommand(version), config.Default(), "")
			require.NoError(t, err)
			assert.Contains(t, out, "matshell v"+version)
			assert.Contains(t, out, "0xFF")
		})
	}
}

func TestShellCommand_Script(t *testing.T) {
	cfg := testConfig(t)
	script := strings.Join([]string{
		"list",
		"create A 2 2",
		"random A 3 3",
		"display A",
		"write A",
		"nonsense",
		"exit",
	}, "\n")

	out, errOut, err := execute(t, NewShellCommand(), cfg, script)
	require.NoError(t, err)

	assert.Contains(t, out, "temp_mat", "bootstrap matrix is listed")
	assert.Contains(t, out, "Created Matrix (A,2,2)")
	assert.Contains(t, out, "\nMatrix Contents (A):\nDIM = (2,2)\n3 3 \n3 3 \n\n")
	assert.Contains(t, errOut, "nonsense failed")

	onDisk, err := codec.ReadFile(filepath.Join(cfg.DataDir, "A"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 3, 3, 3}, onDisk.Data)

	boot, err := codec.ReadFile(filepath.Join(cfg.DataDir, config.DefaultBootstrapName))
	require.NoError(t, err)
	assert.Equal(t, uint32(config.DefaultBootstrapRows), boot.Rows)
	for _, v := range boot.Data {
		assert.GreaterOrEqual(t, v, uint32(config.DefaultBootstrapLow))
		assert.LessOrEqual(t, v, uint32(config.DefaultBootstrapHigh))
	}
}

func TestShellCommand_BootstrapFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(cfg.DataDir, "does", "not", "exist")

	_, _, err := execute(t, NewShellCommand(), cfg, "create A 1 1\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, shell.ErrBootstrap)
}

func TestShellCommand_BootstrapWithoutWrite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bootstrap.Write = false

	_, _, err := execute(t, NewShellCommand(), cfg, "")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.DataDir, config.DefaultBootstrapName))
	assert.True(t, os.IsNotExist(err))
}

func TestShellCommand_PrefixMatching(t *testing.T) {
	cfg := testConfig(t)
	cfg.NameMatch = string(registry.MatchPrefix)

	out, errOut, err := execute(t, NewShellCommand(), cfg, "create M 1 1\ndisplay Matrix\n")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Matrix Contents (M)")
}

func TestCommandContext_SessionConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Capacity = 3
	cfg.NameMatch = "prefix"
	cfg.Display = "table"
	cfg.Seed = 99

	cc := &CommandContext{Cfg: cfg, Logger: config.GetLogger(context.Background())}
	scfg, err := cc.SessionConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, scfg.Capacity)
	assert.Equal(t, registry.MatchPrefix, scfg.MatchMode)
	assert.Equal(t, output.GridTable, scfg.Grid)
	assert.Equal(t, uint64(99), scfg.Seed)
	assert.Equal(t, cfg.DataDir, scfg.DataDir)
	require.NotNil(t, scfg.Bootstrap)
	assert.Equal(t, config.DefaultBootstrapName, scfg.Bootstrap.Name)

	t.Run("invalid values", func(t *testing.T) {
		for _, mutate := range []func(*config.Config){
			func(c *config.Config) { c.NameMatch = "fuzzy" },
			func(c *config.Config) { c.Display = "fancy" },
			func(c *config.Config) { c.Capacity = 0 },
		} {
			bad := testConfig(t)
			mutate(bad)
			_, err := (&CommandContext{Cfg: bad}).SessionConfig()
			assert.Error(t, err)
		}
	})
}

func TestShellCompleter(t *testing.T) {
	reg := registry.New(4)
	m, err := matrix.New("alpha", 1, 1)
	require.NoError(t, err)
	_, _, err = reg.Insert(m)
	require.NoError(t, err)

	pc := newShellCompleter([]string{"create", "display", "help"}, reg)

	var keywords []string
	for _, child := range pc.GetChildren() {
		keywords = append(keywords, strings.TrimSpace(string(child.GetName())))
	}
	assert.Equal(t, []string{"create", "display", "help", "exit"}, keywords)

	for _, child := range pc.GetChildren() {
		name := strings.TrimSpace(string(child.GetName()))
		if name != "display" {
			assert.Empty(t, child.GetChildren(), "%s takes no name completion", name)
			continue
		}
		require.Len(t, child.GetChildren(), 1)
		dyn, ok := child.GetChildren()[0].(readline.DynamicPrefixCompleterInterface)
		require.True(t, ok)
		assert.Equal(t, [][]rune{[]rune("alpha ")}, dyn.GetDynamicNames([]rune("display ")))
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	path, m := testutil.WriteMatrixFile(t, dir, "grid", 2, 3)

	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, NewInspectCommand(), testConfig(t), "", path)
		require.NoError(t, err)
		assert.Equal(t, "\nMatrix Contents (grid):\nDIM = (2,3)\n1 2 3 \n4 5 6 \n\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, NewInspectCommand(), testConfig(t), "", path, "--format", "json")
		require.NoError(t, err)

		var doc output.MatrixDoc
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, output.NewMatrixDoc(m), doc)
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, NewInspectCommand(), testConfig(t), "", path, "-f", "yaml")
		require.NoError(t, err)

		var doc output.MatrixDoc
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, output.NewMatrixDoc(m), doc)
		testutil.AssertNoANSI(t, out)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, NewInspectCommand(), testConfig(t), "", path, "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, NewInspectCommand(), testConfig(t), "", filepath.Join(dir, "absent"))
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrIO)
	})

	t.Run("truncated file", func(t *testing.T) {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		short := filepath.Join(dir, "short")
		require.NoError(t, os.WriteFile(short, raw[:len(raw)-6], 0o600))

		_, _, err = execute(t, NewInspectCommand(), testConfig(t), "", short)
		assert.ErrorIs(t, err, codec.ErrTruncated)
	})

	t.Run("requires a path", func(t *testing.T) {
		_, _, err := execute(t, NewInspectCommand(), testConfig(t), "")
		assert.Error(t, err)
	})
}

func TestShellSession_MarkdownOutput(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeMarkdown)
	cc := &CommandContext{Cfg: testConfig(t), Logger: config.GetLogger(context.Background()), Renderer: tr.Renderer}
	scfg, err := cc.SessionConfig()
	require.NoError(t, err)

	sess := shell.NewSession(scfg, tr.Renderer)
	defer sess.Close()
	ctx := context.Background()
	require.NoError(t, sess.Bootstrap(ctx))

	require.NoError(t, sess.Exec(ctx, "list"))
	testutil.AssertValidMarkdownTable(t, tr.Output())
	testutil.AssertNoANSI(t, tr.Output())
	assert.Contains(t, tr.Output(), "| 0 | temp_mat | 5 | 5 |")

	tr.Reset()
	require.NoError(t, sess.Exec(ctx, "help"))
	testutil.AssertValidMarkdownTable(t, tr.Output())
	assert.Empty(t, tr.ErrorOutput())
}
