// Package matrix defines the named 2-D unsigned integer matrix held by the
// shell registry, together with its elementwise operations.
//
// A Matrix owns a dense row-major buffer of Rows*Cols elements. Operations
// never resize a matrix; callers that need a result of a given shape create
// it first with New and pass it in.
package matrix

import (
	"errors"
	"fmt"
)

// MaxNameLen is the longest name in bytes, including the terminator the
// file format stores after the name.
const MaxNameLen = 50

// MaxElements bounds Rows*Cols. Requests above it fail with ErrAllocation
// instead of attempting a multi-gigabyte buffer.
const MaxElements = 1 << 28

var (
	// ErrInvalidInput reports a nil matrix or missing buffer.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidName reports an empty name or one that exceeds MaxNameLen.
	ErrInvalidName = errors.New("invalid matrix name")
	// ErrAllocation reports a buffer that cannot be obtained.
	ErrAllocation = errors.New("allocation error")
	// ErrDimensionMismatch reports operands whose shapes differ.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidRange reports a random range whose lower bound exceeds its upper bound.
	ErrInvalidRange = errors.New("invalid range")
)

// Matrix is a named rows x cols grid of uint32 values.
type Matrix struct {
	Name string
	Rows uint32
	Cols uint32
	Data []uint32
}

// ValidateName checks a name against MaxNameLen.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name)+1 > MaxNameLen {
		return fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrInvalidName, name, len(name), MaxNameLen-1)
	}
	return nil
}

// New allocates a zero-filled matrix.
// A matrix with zero rows or zero columns is legal and has an empty buffer.
func New(name string, rows, cols uint32) (*Matrix, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	n := uint64(rows) * uint64(cols)
	if n > MaxElements {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d elements", ErrAllocation, rows, cols, MaxElements)
	}
	return &Matrix{
		Name: name,
		Rows: rows,
		Cols: cols,
		Data: make([]uint32, n),
	}, nil
}

// Destroy releases the buffer. It is a no-op on a nil or already destroyed matrix.
func (m *Matrix) Destroy() {
	if m == nil {
		return
	}
	m.Data = nil
	m.Rows = 0
	m.Cols = 0
}

// Destroyed reports whether Destroy has released the buffer.
func (m *Matrix) Destroyed() bool {
	return m == nil || m.Data == nil
}

// Len returns the element count.
func (m *Matrix) Len() int {
	return int(m.Rows) * int(m.Cols)
}

// At returns the element at row r, column c.
func (m *Matrix) At(r, c uint32) uint32 {
	return m.Data[r*m.Cols+c]
}

// Set stores v at row r, column c.
func (m *Matrix) Set(r, c, v uint32) {
	m.Data[r*m.Cols+c] = v
}

// Row returns the elements of row r. The slice aliases the matrix buffer.
func (m *Matrix) Row(r uint32) []uint32 {
	start := r * m.Cols
	return m.Data[start : start+m.Cols]
}

// SameShape reports whether a and b have identical dimensions.
func SameShape(a, b *Matrix) bool {
	return a.Rows == b.Rows && a.Cols == b.Cols
}

func (m *Matrix) check() error {
	if m.Destroyed() {
		return ErrInvalidInput
	}
	if len(m.Data) != m.Len() {
		return fmt.Errorf("%w: %s has %d elements for %dx%d", ErrInvalidInput, m.Name, len(m.Data), m.Rows, m.Cols)
	}
	return nil
}

func (m *Matrix) String() string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%d,%d)", m.Name, m.Rows, m.Cols)
}
