package ir

import (
	"bufio"
	"fmt"
	"io"
)

// Dump writes a human-readable, line-oriented listing of prog to w: one
// line per instruction, "OPCODE(arg, offset)", terminated by a literal
// line "END". This is the format used by the -p/--print-ast flag of
// bfi and is stable across runs for a fixed input (it is re-derived
// directly from Program, never reconstructed from source).
func Dump(w io.Writer, prog Program) error {
	bw := bufio.NewWriter(w)
	for _, in := range prog {
		switch in.Code {
		case End:
			fmt.Fprintln(bw, "END")
		case Scan:
			fmt.Fprintf(bw, "%s(%d, %d)\n", in.Code, in.Stride, in.Off)
		case JmpFwd, JmpBck:
			fmt.Fprintf(bw, "%s(%d, %d)\n", in.Code, in.Target, in.Off)
		case Add, Sub:
			fmt.Fprintf(bw, "%s(%d, %d)\n", in.Code, in.N, in.Off)
		default: // Read, Put, Zero
			fmt.Fprintf(bw, "%s(%d, %d)\n", in.Code, 0, in.Off)
		}
	}
	return bw.Flush()
}
