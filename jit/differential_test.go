//go:build linux && amd64

package jit

import (
	"bytes"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/bflang/bf/interp"
	"github.com/bflang/bf/ir"
	"github.com/bflang/bf/parse"
	"github.com/bflang/bf/tape"
)

// TestJITMatchesInterpreter lowers the same program through the real
// AMD64Backend and through interp.Run, and asserts they produce
// identical output -- the differential invariant the interpreter and
// JIT are required to uphold for every well-formed program. Unlike
// jit_test.go's mock-backed tests, this runs the compiled function for
// real (no mock backend or allocator), so it also exercises
// MMapAllocator and the executable page mapping it allocates.
//
// PUT is lowered to a raw write(2) on fd 1, not through any Go
// io.Writer, so capturing the JIT's output means redirecting the
// process's real stdout file descriptor for the duration of the call.
func TestJITMatchesInterpreter(t *testing.T) {
	const src = `++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.`

	prog, err := parse.Parse([]byte(src), parse.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var wantBuf bytes.Buffer
	if err := interp.Run(prog, tape.New(false), strings.NewReader(""), &wantBuf); err != nil {
		t.Fatalf("interp.Run: %v", err)
	}
	want := wantBuf.String()

	got := runJITCapturingStdout(t, prog)

	if got != want {
		t.Errorf("jit output = %q, interp output = %q", got, want)
	}
}

// runJITCapturingStdout compiles and runs prog through the real JIT,
// temporarily redirecting file descriptor 1 to a pipe so the PUT
// opcode's write(2) syscalls land somewhere this test can read back.
func runJITCapturingStdout(t *testing.T, prog ir.Program) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	savedStdout, err := syscall.Dup(1)
	if err != nil {
		t.Fatalf("dup stdout: %v", err)
	}
	if err := syscall.Dup2(int(w.Fd()), 1); err != nil {
		t.Fatalf("dup2 stdout: %v", err)
	}
	w.Close()

	j := New()
	defer j.Close()
	_, runErr := j.Run(prog)

	syscall.Dup2(savedStdout, 1)
	syscall.Close(savedStdout)

	out := make([]byte, 4096)
	n, _ := r.Read(out)
	r.Close()

	if runErr != nil {
		t.Fatalf("jit run: %v", runErr)
	}
	return string(out[:n])
}
