//go:build linux && amd64

package jit

import (
	"testing"
)

func TestMMapAllocatorPacksSmallAllocations(t *testing.T) {
	a := &MMapAllocator{}
	defer a.Close()

	// A lone RET: 0xC3. Small enough that two of these plus alignment
	// padding should share a single block.
	if _, err := a.AllocateExec([]byte{0xc3}); err != nil {
		t.Fatal(err)
	}
	firstBlock := a.last
	if want := uint32(allocationAlignment); a.last.consumed != want {
		t.Errorf("consumed = %d, want %d", a.last.consumed, want)
	}

	if _, err := a.AllocateExec([]byte{0xc3}); err != nil {
		t.Fatal(err)
	}
	if a.last != firstBlock {
		t.Error("second small allocation should reuse the first block")
	}
	if want := uint32(2 * allocationAlignment); a.last.consumed != want {
		t.Errorf("consumed = %d, want %d", a.last.consumed, want)
	}
}

func TestMMapAllocatorGrowsForLargeAllocations(t *testing.T) {
	a := &MMapAllocator{}
	defer a.Close()

	big := make([]byte, minAllocSize*2)
	if _, err := a.AllocateExec(big); err != nil {
		t.Fatal(err)
	}
	if a.last.remaining != 0 {
		t.Errorf("remaining = %d, want 0 for an exactly-sized block", a.last.remaining)
	}
}
