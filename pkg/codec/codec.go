// Package codec reads and writes matrices in the shell's binary file format.
//
// Layout (little-endian, every integer is a u32):
//   - u32: name length, terminator included
//   - bytes: name followed by one NUL
//   - u32: rows
//   - u32: cols
//   - u32 * rows * cols: elements, row-major
//   - u8: trailing 0xFF sentinel, written but never read back
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// Sentinel is the byte appended after the element data.
const Sentinel byte = 0xFF

const wordSize = 4

// Size returns the encoded length of m in bytes.
func Size(m *matrix.Matrix) int {
	return wordSize + len(m.Name) + 1 + 2*wordSize + wordSize*m.Len() + 1
}

// Encode returns the binary form of m.
func Encode(m *matrix.Matrix) ([]byte, error) {
	if m == nil || m.Destroyed() {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidInput)
	}
	if err := matrix.ValidateName(m.Name); err != nil {
		return nil, err
	}
	if len(m.Data) != m.Len() {
		return nil, fmt.Errorf("%w: %s has %d elements", ErrInvalidInput, m, len(m.Data))
	}

	buf := make([]byte, Size(m))
	off := 0
	nameLen := len(m.Name) + 1
	binary.LittleEndian.PutUint32(buf[off:], uint32(nameLen))
	off += wordSize
	copy(buf[off:], m.Name) // terminator is already zero
	off += nameLen
	binary.LittleEndian.PutUint32(buf[off:], m.Rows)
	off += wordSize
	binary.LittleEndian.PutUint32(buf[off:], m.Cols)
	off += wordSize
	for _, v := range m.Data {
		binary.LittleEndian.PutUint32(buf[off:], v)
		off += wordSize
	}
	buf[off] = Sentinel
	return buf, nil
}

// Decode reads one matrix from r. Every field must be read in full; a short
// read fails with a *TruncatedError naming the field.
func Decode(r io.Reader) (*matrix.Matrix, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidInput)
	}

	nameLen, err := readWord(r, "name length")
	if err != nil {
		return nil, err
	}
	if nameLen == 0 || nameLen > matrix.MaxNameLen {
		return nil, fmt.Errorf("%w: name length %d outside 1..%d", ErrCorrupt, nameLen, matrix.MaxNameLen)
	}
	rawName, err := readExact(r, int(nameLen), "name")
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(rawName, 0); i >= 0 {
		rawName = rawName[:i]
	}

	rows, err := readWord(r, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := readWord(r, "cols")
	if err != nil {
		return nil, err
	}
	n := uint64(rows) * uint64(cols)
	if n > matrix.MaxElements {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d elements", ErrCorrupt, rows, cols, matrix.MaxElements)
	}

	raw, err := readStream(r, int64(n)*wordSize, "data")
	if err != nil {
		return nil, err
	}

	m, err := matrix.New(string(rawName), rows, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	for i := range m.Data {
		m.Data[i] = binary.LittleEndian.Uint32(raw[i*wordSize:])
	}
	return m, nil
}

// Unmarshal decodes a matrix from an in-memory buffer.
func Unmarshal(b []byte) (*matrix.Matrix, error) {
	return Decode(bytes.NewReader(b))
}

func readWord(r io.Reader, field string) (uint32, error) {
	b, err := readExact(r, wordSize, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readExact reads exactly n bytes. Running out of input is a *TruncatedError;
// any other reader failure is an *IOError.
func readExact(r io.Reader, n int, field string) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	if got == n {
		return buf, nil
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, newIOError("read "+field, "", err)
	}
	return nil, &TruncatedError{Field: field, Want: n, Got: got}
}

// readStream is readExact for fields whose size comes from the header. The
// buffer grows with the bytes actually delivered, so a short stream claiming
// a huge shape costs only what it contains.
func readStream(r io.Reader, n int64, field string) ([]byte, error) {
	var buf bytes.Buffer
	got, err := io.CopyN(&buf, r, n)
	if got == n {
		return buf.Bytes(), nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, newIOError("read "+field, "", err)
	}
	return nil, &TruncatedError{Field: field, Want: int(n), Got: int(got)}
}
