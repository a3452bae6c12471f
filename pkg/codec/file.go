package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// WriteFile creates or truncates path and writes m in a single transfer.
// Matrices with zero rows or zero columns are refused.
func WriteFile(path string, m *matrix.Matrix) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	if m == nil || m.Destroyed() {
		return fmt.Errorf("%w: nil matrix", ErrInvalidInput)
	}
	if m.Rows == 0 || m.Cols == 0 {
		return fmt.Errorf("%w: %s has no elements to write", ErrInvalidInput, m)
	}

	buf, err := Encode(m)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return newIOError("open", path, err)
	}
	n, werr := f.Write(buf)
	cerr := f.Close()
	if werr != nil {
		return newIOError("write", path, werr)
	}
	if n != len(buf) {
		return &IOError{Op: "write", Path: path, Kind: KindShortWrite, Err: io.ErrShortWrite}
	}
	if cerr != nil {
		return newIOError("close", path, cerr)
	}
	return nil
}

// ReadFile opens path and decodes one matrix from it.
func ReadFile(path string) (*matrix.Matrix, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, newIOError("open", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}
