// Package parse implements the Brainfuck tokenizer and optimizing
// parser: a single left-to-right pass over a source buffer that
// produces a frozen ir.Program.
//
// Peephole rewrites are applied inline, in the following priority
// order, mirroring the tie-breaks in the language specification:
//
//  1. pointer-move coalescing ('>'/'<' runs fold into the next
//     emitted instruction's Off, never becoming an opcode of their own)
//  2. additive run-length fusion (runs of '+' or '-' collapse to a
//     single Add/Sub carrying the run length)
//  3. clear-cell recognition ("[-]"/"[+]" collapses to a single Zero)
//  4. scan-loop recognition ("[>]", "[<<]", ... collapse to a single Scan)
//  5. general bracket linking (anything else becomes a linked
//     JmpFwd/JmpBck pair)
//
// Rules 1 and 2 are purely local and are evaluated first; rules 3 and
// 4 require a peek-ahead or a peek-backward on the already-emitted
// instruction stream and take priority over the general rule 5.
package parse

import (
	"github.com/bflang/bf/internal/debug"
	"github.com/bflang/bf/ir"
)

// maxNesting bounds the depth of the bracket stack used during
// parsing. Nesting to this depth succeeds; one level deeper fails.
const maxNesting = 256

// Options configures a single call to Parse.
type Options struct {
	// MaxSize caps the size of the source buffer in bytes. Zero means
	// no cap is enforced by the parser itself (callers pick a default
	// appropriate to their mode, e.g. 8 MiB for the interpreter and
	// 1 MiB for the compiler front ends).
	MaxSize int
}

func isSignificant(c byte) bool {
	switch c {
	case '+', '-', '>', '<', '.', ',', '[', ']':
		return true
	}
	return false
}

// peekSignificant scans forward from src[i], skipping comment bytes,
// and returns the next significant byte and the index just past it.
// It does not mutate any parser state; it is purely a lookahead used
// by the clear-cell and scan-loop recognizers.
func peekSignificant(src []byte, i int) (c byte, next int, ok bool) {
	for i < len(src) {
		if isSignificant(src[i]) {
			return src[i], i + 1, true
		}
		i++
	}
	return 0, i, false
}

// bracketEntry records where a still-open '[' landed, both in the
// program (to back-patch its Target) and in the source (to report an
// UnmatchedOpenError with a useful offset).
type bracketEntry struct {
	progIndex int
	srcOffset int
}

// Parse tokenizes and optimizes src, producing a frozen IR program
// terminated by ir.End, or a parse error. Parsing is deterministic:
// the same src always yields a byte-identical Program.
func Parse(src []byte, opts Options) (ir.Program, error) {
	if opts.MaxSize > 0 && len(src) > opts.MaxSize {
		return nil, ErrSourceTooLarge
	}

	prog := make([]ir.Instr, 0, len(src)/2+1)
	var stack []bracketEntry
	pending := 0 // accumulated, not-yet-attached pointer delta

	last := func() *ir.Instr {
		if len(prog) == 0 {
			return nil
		}
		return &prog[len(prog)-1]
	}

	i := 0
	for i < len(src) {
		c := src[i]

		switch c {
		case '>':
			pending++
			i++
			continue
		case '<':
			pending--
			i++
			continue

		case '+', '-':
			op := ir.Add
			if c == '-' {
				op = ir.Sub
			}
			if l := last(); pending == 0 && l != nil && l.Code == op {
				l.N++
				i++
				continue
			}
			prog = append(prog, ir.Instr{Code: op, N: 1, Off: pending})
			pending = 0
			i++
			continue

		case '.':
			prog = append(prog, ir.Instr{Code: ir.Put, Off: pending})
			pending = 0
			i++
			continue

		case ',':
			prog = append(prog, ir.Instr{Code: ir.Read, Off: pending})
			pending = 0
			i++
			continue

		case '[':
			// Rule 3: clear-cell recognition, "[-]" or "[+]".
			if c1, i1, ok1 := peekSignificant(src, i+1); ok1 && (c1 == '-' || c1 == '+') {
				if c2, i2, ok2 := peekSignificant(src, i1); ok2 && c2 == ']' {
					prog = append(prog, ir.Instr{Code: ir.Zero, Off: pending})
					pending = 0
					i = i2
					continue
				}
			}

			// Rule 5: general bracket linking, forward half.
			if len(stack) >= maxNesting {
				return nil, &NestingError{Depth: len(stack) + 1, Limit: maxNesting}
			}
			stack = append(stack, bracketEntry{progIndex: len(prog), srcOffset: i})
			prog = append(prog, ir.Instr{Code: ir.JmpFwd, Off: pending})
			pending = 0
			i++
			continue

		case ']':
			if len(stack) == 0 {
				return nil, ErrUnmatchedClose
			}
			top := stack[len(stack)-1]

			// Rule 4: scan-loop recognition. Applies only when the
			// loop body emitted no real instruction: the JmpFwd
			// pushed at '[' is still the last thing in the program,
			// and every '>'/'<' since then only advanced `pending`.
			if top.progIndex == len(prog)-1 {
				fwd := prog[top.progIndex]
				stack = stack[:len(stack)-1]
				prog = prog[:top.progIndex]
				prog = append(prog, ir.Instr{Code: ir.Scan, Stride: pending, Off: fwd.Off})
				pending = 0
				i++
				continue
			}

			// Rule 5: general bracket linking, backward half.
			stack = stack[:len(stack)-1]
			prog = append(prog, ir.Instr{Code: ir.JmpBck, Off: pending, Target: top.progIndex + 1})
			prog[top.progIndex].Target = len(prog)
			pending = 0
			i++
			continue

		default:
			// comment byte
			i++
			continue
		}
	}

	if len(stack) > 0 {
		return nil, &UnmatchedOpenError{Offset: stack[0].srcOffset}
	}

	// The trailing move rule: any pending offset with no following
	// emitting instruction is discarded, not folded into End.
	prog = append(prog, ir.Instr{Code: ir.End})
	debug.Logf("parse: %d bytes -> %d instructions", len(src), len(prog))
	return ir.Program(prog), nil
}
