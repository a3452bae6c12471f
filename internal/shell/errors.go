package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand reports a keyword that names no command.
	ErrUnknownCommand = errors.New("not a command in this application")
	// ErrArity reports a command given the wrong number of tokens.
	ErrArity = errors.New("wrong number of arguments")
	// ErrParse reports a numeric or direction token that cannot be parsed.
	ErrParse = errors.New("parse error")
	// ErrTokenTooLong reports a token longer than MaxTokenLen.
	ErrTokenTooLong = errors.New("token too long")
	// ErrBootstrap wraps any failure to establish the startup matrix.
	ErrBootstrap = errors.New("bootstrap failed")
)

// CommandError is a failed command. The session reports it and keeps reading.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
