// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/pkg/codec"
	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// WriteMatrixFile encodes a rows x cols matrix filled with 1, 2, 3, ... into dir/name.
func WriteMatrixFile(t *testing.T, dir, name string, rows, cols uint32) (string, *matrix.Matrix) {
	t.Helper()

	m, err := matrix.New(name, rows, cols)
	if err != nil {
		t.Fatalf("failed to create matrix %s: %v", name, err)
	}
	for i := range m.Data {
		m.Data[i] = uint32(i + 1)
	}

	path := filepath.Join(dir, name)
	if err := codec.WriteFile(path, m); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path, m
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdownTable checks that every table row has as many cells as the header.
func AssertValidMarkdownTable(t *testing.T, md string) {
	t.Helper()

	var width int
	for i, line := range strings.Split(strings.TrimSpace(md), "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := strings.Count(line, "|") - strings.Count(line, `\|`) - 1
		if width == 0 {
			width = cells
			continue
		}
		if cells != width {
			t.Errorf("markdown row %d has %d cells, header has %d: %q", i+1, cells, width, line)
		}
	}
	if width == 0 {
		t.Errorf("no markdown table found in %q", md)
	}
}
