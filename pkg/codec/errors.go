package codec

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("i/o error")
	// ErrTruncated is matched by every *TruncatedError.
	ErrTruncated = errors.New("truncated input")
	// ErrCorrupt reports a header field that cannot describe a valid matrix.
	ErrCorrupt = errors.New("corrupt matrix stream")
	// ErrInvalidInput reports a nil matrix or an unwritable shape.
	ErrInvalidInput = errors.New("invalid input")
)

// Kind classifies the operating system failure behind an IOError.
type Kind uint8

const (
	KindOther Kind = iota
	KindPermission
	KindNotFound
	KindBusy
	KindExists
	KindShortWrite
)

func (k Kind) String() string {
	switch k {
	case KindPermission:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindBusy:
		return "busy"
	case KindExists:
		return "already exists"
	case KindShortWrite:
		return "short write"
	default:
		return "other"
	}
}

// classify maps an error from the os package onto a Kind.
func classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrExist):
		return KindExists
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.EADDRINUSE), errors.Is(err, syscall.ETXTBSY):
		return KindBusy
	default:
		return KindOther
	}
}

// IOError is a failed open, read, write or close of a matrix file.
type IOError struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func newIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Kind: classify(err), Err: err}
}

func (e *IOError) Error() string {
	target := e.Op
	if e.Path != "" {
		target += " " + e.Path
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", target, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", target, e.Kind, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIO) true for every IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// TruncatedError reports a field that could not be read in full.
type TruncatedError struct {
	Field string
	Want  int
	Got   int
	Err   error
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated %s: read %d of %d bytes", e.Field, e.Got, e.Want)
}

func (e *TruncatedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTruncated) true for every TruncatedError.
func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }
