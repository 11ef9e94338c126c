package jit

import (
	"fmt"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/bflang/bf/tape"
)

// minAllocSize is the size of a fresh mapping requested from the OS
// when the current block can't fit the next compiled program. Small
// programs share a block instead of costing a full page each.
const minAllocSize = 64 * 1024

// allocationAlignment is the byte alignment every compiled program's
// start address is rounded up to within a block.
const allocationAlignment = 16

// CompiledFunc is a Brainfuck program compiled to native code, ready
// to run against a freshly allocated tape.
type CompiledFunc func(t *tape.Tape)

// execBlock is one OS mapping shared by however many compiled
// programs fit in it.
type execBlock struct {
	mem       mmap.MMap
	consumed  uint32
	remaining uint32
}

// MMapAllocator hands out PROT_READ|PROT_WRITE|PROT_EXEC pages for
// compiled code and packs small programs into shared blocks. It is
// the concrete executable-memory allocator behind the in-process JIT
// path, grounded on the teacher's own (mmap-backed) allocator for the
// same role, rebuilt here against the portable mmap-go API.
type MMapAllocator struct {
	blocks []*execBlock
	last   *execBlock
}

// AllocateExec copies code into executable memory and returns a
// callable wrapping it. The returned CompiledFunc is valid until
// Close is called.
func (a *MMapAllocator) AllocateExec(code []byte) (CompiledFunc, error) {
	aligned := uint32((len(code) + allocationAlignment - 1) &^ (allocationAlignment - 1))

	if a.last == nil || a.last.remaining < aligned {
		size := minAllocSize
		if int(aligned) > size {
			size = int(aligned)
		}
		m, err := mmap.MapRegion(nil, size, mmap.RDWR|mmap.EXEC, mmap.ANON, 0)
		if err != nil {
			return nil, fmt.Errorf("jit: mmap region of %d bytes: %w", size, err)
		}
		blk := &execBlock{mem: m, remaining: uint32(size)}
		a.blocks = append(a.blocks, blk)
		a.last = blk
	}

	blk := a.last
	off := blk.consumed
	copy(blk.mem[off:], code)
	blk.consumed += aligned
	blk.remaining -= aligned

	base := unsafe.Pointer(&blk.mem[off])
	return func(t *tape.Tape) {
		jitcall(base, unsafe.Pointer(&t.Cells[0]))
	}, nil
}

// Close unmaps every block this allocator has handed out code from.
// Any CompiledFunc obtained from it must not be called afterwards.
func (a *MMapAllocator) Close() error {
	for _, blk := range a.blocks {
		if err := blk.mem.Unmap(); err != nil {
			return err
		}
	}
	a.blocks = nil
	a.last = nil
	return nil
}
