package parse

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions that do not need a formatted,
// position-specific message.
var (
	// ErrSourceTooLarge is returned when the source buffer exceeds the
	// configured maximum size.
	ErrSourceTooLarge = errors.New("parse: source exceeds maximum size")

	// ErrUnmatchedClose is returned when a ']' is encountered with no
	// corresponding open bracket on the stack.
	ErrUnmatchedClose = errors.New("parse: unmatched closing bracket ']'")
)

// NestingError is returned when bracket nesting exceeds the parser's
// bracket-stack capacity. It is a distinct type (rather than a sentinel)
// so callers can recover the offending depth.
type NestingError struct {
	Depth int // the depth that would have been reached
	Limit int // the configured capacity
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("parse: nesting depth %d exceeds limit %d", e.Depth, e.Limit)
}

// UnmatchedOpenError is returned when one or more '[' remain unmatched
// at end of input. Offset is the byte offset of the outermost such '['.
type UnmatchedOpenError struct {
	Offset int
}

func (e *UnmatchedOpenError) Error() string {
	return fmt.Sprintf("parse: unmatched opening bracket '[' at offset %d", e.Offset)
}
