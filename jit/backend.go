// Package jit lowers a frozen ir.Program to native machine code and
// runs it in-process.
//
// The JIT drives code generation through the Backend interface, which
// takes a whole program at a time: each backend carries its own walk
// over the IR and its own instruction emission, so a second backend
// reimplements that walk rather than plugging into a shared one.
// Today there is a single amd64 backend built on the external
// golang-asm assembler.
package jit

import "github.com/bflang/bf/ir"

// Backend lowers a Brainfuck program to a native code image. All
// Brainfuck-level optimization has already happened in the IR
// (package parse); a Backend is a dumb lowering target and must not
// attempt any IR-level rewriting of its own.
type Backend interface {
	// Lower assembles prog into raw machine code for a function that
	// runs the program over a tape of tape.Size cells. The code takes
	// no argument under the C calling convention: the tape base is
	// passed in a reserved register described by the concrete backend.
	Lower(prog ir.Program) ([]byte, error)

	// Listing renders the machine-level instructions Lower would emit
	// for prog as text, one line per IR instruction (plus a line for a
	// nonzero pointer offset), without assembling or running anything.
	// A line may summarize several native instructions. This backs the
	// -p/--print flag.
	Listing(prog ir.Program) (string, error)
}
