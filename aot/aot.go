package aot

import (
	"fmt"

	"github.com/bflang/bf/ir"
	"github.com/bflang/bf/jit"
	"github.com/bflang/bf/tape"
)

// Build lowers prog to native code and wraps it in a minimal static
// Linux/x86-64 ELF executable. The executable needs no runtime, no
// libc and no loader beyond the kernel's own ELF loader: PUT/READ are
// the same direct read(2)/write(2) syscalls the in-process JIT uses,
// and the tape lives in a zero-filled BSS segment sized from
// tape.Size rather than on the heap.
func Build(prog ir.Program) ([]byte, error) {
	body, err := jit.AMD64Backend{}.Lower(prog)
	if err != nil {
		return nil, fmt.Errorf("aot: lower: %w", err)
	}

	exit := exitStub()
	entry := entryStub(BSSBase, int32(len(exit)))

	code := make([]byte, 0, len(entry)+len(exit)+len(body))
	code = append(code, entry...)
	code = append(code, exit...)
	code = append(code, body...)

	b := NewBuilder()
	b.AddCode(code, CodeBase)
	b.AddBSS(BSSBase, uint64(tape.Size))

	return b.Build(), nil
}
