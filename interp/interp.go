// Package interp implements the interpreter: direct execution of an
// ir.Program over a tape.Tape, dispatched through a switch.
package interp

import (
	"bufio"
	"io"

	"github.com/bflang/bf/ir"
	"github.com/bflang/bf/tape"
)

// Run executes prog over t, reading from in and writing to out. It
// returns the first error encountered: a strict-mode trap from the
// tape, or an I/O error from in/out. Output is buffered and flushed
// once at termination rather than per byte.
//
// Dispatch is a dense switch over the opcode tag. The specification
// only requires the per-instruction dispatch overhead to be constant
// and independent of the opcode count; computed/threaded dispatch via
// address-of-label is a performance optimization the host language
// doesn't expose, so this relies on the compiler to lower the switch
// to a jump table.
func Run(prog ir.Program, t *tape.Tape, in io.Reader, out io.Writer) error {
	br := bufio.NewReader(in)
	bw := bufio.NewWriter(out)
	defer bw.Flush()

	var oneByte [1]byte
	pc := 0
	for {
		cur := prog[pc]

		if cur.Code != ir.End {
			if err := t.Move(cur.Off); err != nil {
				return err
			}
		}

		switch cur.Code {
		case ir.Add:
			if err := t.Add(cur.N); err != nil {
				return err
			}
			pc++

		case ir.Sub:
			if err := t.Sub(cur.N); err != nil {
				return err
			}
			pc++

		case ir.Zero:
			t.Set(0)
			pc++

		case ir.Read:
			_, err := io.ReadFull(br, oneByte[:])
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				t.Set(0xFF)
			} else if err != nil {
				return err
			} else {
				t.Set(oneByte[0])
			}
			pc++

		case ir.Put:
			oneByte[0] = t.Get()
			if _, err := bw.Write(oneByte[:]); err != nil {
				return err
			}
			pc++

		case ir.Scan:
			for t.Get() != 0 {
				if err := t.Move(cur.Stride); err != nil {
					return err
				}
			}
			pc++

		case ir.JmpFwd:
			if t.Get() == 0 {
				pc = cur.Target
			} else {
				pc++
			}

		case ir.JmpBck:
			if t.Get() != 0 {
				pc = cur.Target
			} else {
				pc++
			}

		case ir.End:
			return bw.Flush()
		}
	}
}
