package jit

import (
	"fmt"

	"github.com/bflang/bf/internal/debug"
	"github.com/bflang/bf/ir"
	"github.com/bflang/bf/tape"
)

// allocator is the subset of MMapAllocator's surface the JIT depends
// on, so tests can swap in a mock rather than touch real executable
// memory.
type allocator interface {
	AllocateExec(code []byte) (CompiledFunc, error)
	Close() error
}

// JIT compiles ir.Program values to native code and runs them
// in-process. The zero value is not usable; use New.
type JIT struct {
	backend Backend
	alloc   allocator
}

// New returns a JIT using the amd64 backend and a fresh executable
// memory allocator. Callers must Close the JIT once done with every
// CompiledFunc it produced.
func New() *JIT {
	return &JIT{backend: AMD64Backend{}, alloc: &MMapAllocator{}}
}

// Close releases the executable memory backing every program this
// JIT has compiled.
func (j *JIT) Close() error {
	return j.alloc.Close()
}

// Compile lowers prog to native code and returns a callable. Calling
// the result runs the program against t: PUT/READ are lowered to
// direct write(2)/read(2) syscalls against the process's stdout/stdin,
// so — unlike interp.Run — the returned CompiledFunc has no way to
// redirect I/O or report a strict-mode trap; it exists for raw
// execution speed, not for sandboxed or instrumented runs.
func (j *JIT) Compile(prog ir.Program) (CompiledFunc, error) {
	code, err := j.backend.Lower(prog)
	if err != nil {
		return nil, fmt.Errorf("jit: lower: %w", err)
	}
	debug.Logf("jit: lowered %d instructions to %d bytes of native code", len(prog), len(code))
	fn, err := j.alloc.AllocateExec(code)
	if err != nil {
		return nil, fmt.Errorf("jit: allocate: %w", err)
	}
	return fn, nil
}

// Run compiles prog and immediately runs it against a fresh tape,
// returning the tape for inspection (e.g. by tests).
func (j *JIT) Run(prog ir.Program) (*tape.Tape, error) {
	fn, err := j.Compile(prog)
	if err != nil {
		return nil, err
	}
	t := tape.New(false)
	fn(t)
	return t, nil
}

// Listing renders the native instructions the backend would emit for
// prog, without compiling or running it. This backs bfjit's
// -p/--print flag.
func (j *JIT) Listing(prog ir.Program) (string, error) {
	return j.backend.Listing(prog)
}
