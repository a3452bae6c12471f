package matrix

import (
	"fmt"
	"strings"
)

// Direction selects a logical shift direction.
type Direction uint8

const (
	// ShiftLeft shifts every element toward the high-order bits.
	ShiftLeft Direction = iota
	// ShiftRight shifts every element toward the low-order bits.
	ShiftRight
)

func (d Direction) String() string {
	if d == ShiftLeft {
		return "left"
	}
	return "right"
}

// ParseDirection maps the first character of s to a Direction:
// 'l' for left and 'r' for right, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty shift direction", ErrInvalidInput)
	}
	switch strings.ToLower(s[:1]) {
	case "l":
		return ShiftLeft, nil
	case "r":
		return ShiftRight, nil
	}
	return 0, fmt.Errorf("%w: shift direction %q is neither l nor r", ErrInvalidInput, s)
}

// Rand is the random source used by Randomize. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Uint64N(n uint64) uint64
}

// Equal reports whether a and b have the same shape and identical elements.
// It returns false when either matrix is nil or destroyed.
func Equal(a, b *Matrix) bool {
	if a.check() != nil || b.check() != nil {
		return false
	}
	if !SameShape(a, b) {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// Duplicate copies every element of src into dst, which must already have
// the same shape, and reports whether the two are now Equal.
func Duplicate(src, dst *Matrix) (bool, error) {
	if err := src.check(); err != nil {
		return false, fmt.Errorf("duplicate source: %w", err)
	}
	if err := dst.check(); err != nil {
		return false, fmt.Errorf("duplicate destination: %w", err)
	}
	if !SameShape(src, dst) {
		return false, fmt.Errorf("%w: cannot copy %s into %s", ErrDimensionMismatch, src, dst)
	}
	copy(dst.Data, src.Data)
	return Equal(src, dst), nil
}

// Randomize fills m with values drawn uniformly from the inclusive range
// [low, high]. The matrix is left untouched when low > high.
func Randomize(m *Matrix, rng Rand, low, high uint32) error {
	if err := m.check(); err != nil {
		return err
	}
	if rng == nil {
		return fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}
	if low > high {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, low, high)
	}
	span := uint64(high-low) + 1
	for i := range m.Data {
		m.Data[i] = low + uint32(rng.Uint64N(span))
	}
	return nil
}

// Shift applies a logical shift of amount bits to every element in place.
// Bits shifted out are discarded; amounts of 32 or more clear the element.
func Shift(m *Matrix, dir Direction, amount uint32) error {
	if err := m.check(); err != nil {
		return err
	}
	switch dir {
	case ShiftLeft:
		for i := range m.Data {
			m.Data[i] <<= amount
		}
	case ShiftRight:
		for i := range m.Data {
			m.Data[i] >>= amount
		}
	default:
		return fmt.Errorf("%w: unknown shift direction %d", ErrInvalidInput, dir)
	}
	return nil
}

// Add stores the elementwise sum a+b into out. All three must share a shape.
// Sums wrap around on overflow.
func Add(a, b, out *Matrix) error {
	for _, m := range []*Matrix{a, b, out} {
		if err := m.check(); err != nil {
			return err
		}
	}
	if !SameShape(a, b) || !SameShape(a, out) {
		return fmt.Errorf("%w: %s + %s -> %s", ErrDimensionMismatch, a, b, out)
	}
	for i := range out.Data {
		out.Data[i] = a.Data[i] + b.Data[i]
	}
	return nil
}
