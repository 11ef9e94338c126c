// Package tape implements the Brainfuck runtime tape: a fixed-size
// array of byte cells plus the data pointer invariants shared by both
// the interpreter and the JIT-compiled code.
package tape

import "errors"

// Size is the number of cells on the tape, per the canonical
// Brainfuck layout.
const Size = 30000

// ErrOutOfBounds is returned in strict mode when the data pointer
// would leave [0, Size) after an instruction's offset is applied.
var ErrOutOfBounds = errors.New("tape: data pointer out of bounds")

// ErrCellOverflow is returned in strict mode when an Add would carry
// a cell past 255.
var ErrCellOverflow = errors.New("tape: cell overflow")

// ErrCellUnderflow is returned in strict mode when a Sub would carry
// a cell below 0.
var ErrCellUnderflow = errors.New("tape: cell underflow")

// Tape is a zero-initialized array of Size byte cells together with a
// data pointer. It is allocated fresh for every execution and is
// never reused across runs: the zero value is ready to use.
type Tape struct {
	Cells  [Size]byte
	Ptr    int
	Strict bool // opt-in: trap instead of wrap/clamp
}

// New returns a freshly zeroed tape. strict enables the bounds and
// arithmetic checks described in the strict-mode design: canonical
// Brainfuck relies on silent wraparound, so strict mode is off by
// default and is meant for programs that were written assuming it
// will trap misbehaving pointer arithmetic.
func New(strict bool) *Tape {
	return &Tape{Strict: strict}
}

// Move applies delta to the data pointer, as every opcode but End
// does before its own effect. In strict mode it traps by returning
// ErrOutOfBounds if the result would leave [0, Size).
func (t *Tape) Move(delta int) error {
	p := t.Ptr + delta
	if t.Strict && (p < 0 || p >= Size) {
		return ErrOutOfBounds
	}
	// Non-strict mode never traps; out-of-range pointers are not
	// reachable in the reference dialect, so wrap modulo Size to stay
	// memory-safe rather than pretend the pointer is "fine" at a
	// negative or overlong index.
	p %= Size
	if p < 0 {
		p += Size
	}
	t.Ptr = p
	return nil
}

// Add adds n (mod 256, n >= 0) to the current cell. In strict mode it
// traps if the addition would cross the 8-bit upper boundary.
func (t *Tape) Add(n int) error {
	cur := t.Cells[t.Ptr]
	if t.Strict && int(cur)+n > 255 {
		return ErrCellOverflow
	}
	t.Cells[t.Ptr] = byte(int(cur) + n)
	return nil
}

// Sub subtracts n (mod 256, n >= 0) from the current cell. In strict
// mode it traps iff the subtraction would cross the lower bound --
// the clean reading of the reference implementation's off-by-one
// underflow check, expressed directly against the unsigned cell
// range since cells here are uint8, not a signed type.
func (t *Tape) Sub(n int) error {
	cur := t.Cells[t.Ptr]
	if t.Strict && int(cur)-n < 0 {
		return ErrCellUnderflow
	}
	t.Cells[t.Ptr] = byte(int(cur) - n)
	return nil
}

// Set writes v to the current cell unconditionally (used by Zero).
func (t *Tape) Set(v byte) {
	t.Cells[t.Ptr] = v
}

// Get returns the current cell's value.
func (t *Tape) Get() byte {
	return t.Cells[t.Ptr]
}
