package parse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bflang/bf/ir"
)

func dumpString(t *testing.T, prog ir.Program) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ir.Dump(&buf, prog); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	return buf.String()
}

func TestEmptyInput(t *testing.T) {
	prog, err := Parse(nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "END\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestAllComments(t *testing.T) {
	prog, err := Parse([]byte("hello world! this is not brainfuck"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "END\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestClearCell(t *testing.T) {
	prog, err := Parse([]byte("[-]"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "ZERO(0, 0)\nEND\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestClearCellWithOffset(t *testing.T) {
	prog, err := Parse([]byte(">[-]<"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "ZERO(0, 1)\nEND\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestScanLoop(t *testing.T) {
	prog, err := Parse([]byte("[>]"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "SCAN(1, 0)\nEND\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestPointerCoalescing(t *testing.T) {
	prog, err := Parse([]byte(">>>+<<<"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "ADD(1, 3)\nEND\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestRunLengthFusion(t *testing.T) {
	prog, err := Parse([]byte("+++---"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "ADD(3, 0)\nSUB(3, 0)\nEND\n"; dumpString(t, prog) != want {
		t.Errorf("dump = %q, want %q", dumpString(t, prog), want)
	}
}

func TestNestingLimit(t *testing.T) {
	ok := strings.Repeat("[", maxNesting) + strings.Repeat("]", maxNesting)
	if _, err := Parse([]byte(ok), Options{}); err != nil {
		t.Fatalf("nesting to %d should succeed: %v", maxNesting, err)
	}

	tooDeep := strings.Repeat("[", maxNesting+1) + strings.Repeat("]", maxNesting+1)
	_, err := Parse([]byte(tooDeep), Options{})
	if err == nil {
		t.Fatal("nesting one level deeper should fail")
	}
	if _, ok := err.(*NestingError); !ok {
		t.Errorf("err = %T, want *NestingError", err)
	}
}

func TestUnmatchedClose(t *testing.T) {
	_, err := Parse([]byte("]"), Options{})
	if err != ErrUnmatchedClose {
		t.Errorf("err = %v, want %v", err, ErrUnmatchedClose)
	}
}

func TestUnmatchedOpen(t *testing.T) {
	_, err := Parse([]byte("[[]"), Options{})
	if _, ok := err.(*UnmatchedOpenError); !ok {
		t.Errorf("err = %T (%v), want *UnmatchedOpenError", err, err)
	}
}

func TestMaxSize(t *testing.T) {
	_, err := Parse([]byte("+++"), Options{MaxSize: 2})
	if err != ErrSourceTooLarge {
		t.Errorf("err = %v, want %v", err, ErrSourceTooLarge)
	}
}

func TestJumpTargetsReciprocal(t *testing.T) {
	prog, err := Parse([]byte("+[>+[<]]"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i, in := range prog {
		if in.Code == ir.JmpFwd {
			target := in.Target
			if target == 0 || target-1 >= len(prog) {
				t.Fatalf("JmpFwd[%d].Target = %d out of range", i, target)
			}
			back := prog[target-1]
			if back.Code != ir.JmpBck || back.Target != i+1 {
				t.Errorf("JmpFwd[%d] target %d does not reciprocate: %+v", i, target, back)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	const src = "++[>++<-]>."
	a, err := Parse([]byte(src), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(src), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if dumpString(t, a) != dumpString(t, b) {
		t.Fatal("parsing the same input twice produced different IR")
	}
}
