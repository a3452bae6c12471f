// Package registry provides the fixed-capacity matrix slot table.
// Insertions cycle through the slots in order, evicting whatever matrix
// previously occupied the target slot, so the table behaves as a ring
// buffer over insertion order rather than a name-indexed map.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// DefaultCapacity is the slot count used when none is configured.
const DefaultCapacity = 10

var (
	// ErrNotFound reports a name that matches no occupied slot.
	ErrNotFound = errors.New("matrix not found")
	// ErrInvalidInput reports a nil, destroyed or already held matrix passed to Insert.
	ErrInvalidInput = errors.New("invalid input")
)

// MatchMode selects how Find compares a target against stored names.
type MatchMode string

const (
	// MatchExact requires the stored name and the target to be identical.
	MatchExact MatchMode = "exact"
	// MatchPrefix compares only over the length of the stored name, so a
	// stored "A" matches targets "A", "AB" and "Apple".
	MatchPrefix MatchMode = "prefix"
)

// ParseMatchMode validates a configured match mode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(s)) {
	case MatchExact, "":
		return MatchExact, nil
	case MatchPrefix:
		return MatchPrefix, nil
	}
	return "", fmt.Errorf("unknown name match mode %q (want exact or prefix)", s)
}

func (m MatchMode) matches(stored, target string) bool {
	if m == MatchPrefix {
		return strings.HasPrefix(target, stored)
	}
	return stored == target
}

// Slot is a snapshot of one occupied slot.
type Slot struct {
	Index  int
	Matrix *matrix.Matrix
}

// Registry holds up to Capacity matrices.
type Registry struct {
	mu sync.Mutex

	slots []*matrix.Matrix
	// counter is the total number of insertions; the next insertion goes
	// to slot counter % len(slots).
	counter uint64
	mode    MatchMode
}

// Option configures a Registry.
type Option func(*Registry)

// WithMatchMode sets the name comparison used by Find.
func WithMatchMode(mode MatchMode) Option {
	return func(r *Registry) {
		r.mode = mode
	}
}

// New creates an empty registry. A capacity below 1 falls back to DefaultCapacity.
func New(capacity int, opts ...Option) *Registry {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	r := &Registry{
		slots: make([]*matrix.Matrix, capacity),
		mode:  MatchExact,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores m in the next ring slot and returns its index. An occupant
// of that slot is destroyed first; evicted is empty when the slot was.
// A matrix already held by any slot is refused and the ring does not move.
func (r *Registry) Insert(m *matrix.Matrix) (idx int, evicted string, err error) {
	if m == nil || m.Destroyed() {
		return -1, "", ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, held := range r.slots {
		if held == m {
			return -1, "", fmt.Errorf("%w: %s already occupies slot %d", ErrInvalidInput, m.Name, i)
		}
	}

	idx = int(r.counter % uint64(len(r.slots)))
	if old := r.slots[idx]; old != nil {
		evicted = old.Name
		old.Destroy()
	}
	r.slots[idx] = m
	r.counter++
	return idx, evicted, nil
}

// Find returns the index of the first slot whose matrix matches name.
func (r *Registry) Find(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(name)
}

func (r *Registry) find(name string) (int, error) {
	for i, m := range r.slots {
		if m != nil && r.mode.matches(m.Name, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Get returns the first matrix matching name.
func (r *Registry) Get(name string) (*matrix.Matrix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return r.slots[idx], nil
}

// At returns the matrix in slot idx, or nil when the slot is empty or out of range.
func (r *Registry) At(idx int) *matrix.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.slots) {
		return nil
	}
	return r.slots[idx]
}

// Teardown destroys every occupied slot once and returns how many it released.
func (r *Registry) Teardown() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i, m := range r.slots {
		if m == nil {
			continue
		}
		m.Destroy()
		r.slots[i] = nil
		n++
	}
	return n
}

// Slots returns the occupied slots in index order.
func (r *Registry) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Slot, 0, len(r.slots))
	for i, m := range r.slots {
		if m != nil {
			out = append(out, Slot{Index: i, Matrix: m})
		}
	}
	return out
}

// Names returns the names of occupied slots in index order.
func (r *Registry) Names() []string {
	slots := r.Slots()
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Matrix.Name
	}
	return names
}

// Capacity returns the slot count.
func (r *Registry) Capacity() int {
	return len(r.slots)
}

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	return len(r.Slots())
}

// Counter returns the number of insertions so far.
func (r *Registry) Counter() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counter
}

// MatchMode returns the configured name comparison.
func (r *Registry) MatchMode() MatchMode {
	return r.mode
}
