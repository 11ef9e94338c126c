package aot

import (
	"encoding/binary"
	"testing"

	"github.com/bflang/bf/ir"
)

func TestBuildProducesValidELFHeader(t *testing.T) {
	prog := ir.Program{{Code: ir.Add, N: 1}, {Code: ir.Put}, {Code: ir.End}}
	out, err := Build(prog)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) < elfHeaderSize+2*phdrSize {
		t.Fatalf("output too short: %d bytes", len(out))
	}
	if string(out[:4]) != "\x7fELF" {
		t.Fatalf("bad magic: %x", out[:4])
	}
	if out[4] != 2 {
		t.Errorf("EI_CLASS = %d, want 2 (64-bit)", out[4])
	}
	codeFileOff := uint64(elfHeaderSize + 2*phdrSize)
	entry := binary.LittleEndian.Uint64(out[24:32])
	if want := CodeBase + codeFileOff; entry != want {
		t.Errorf("entry = %#x, want %#x", entry, want)
	}
	phnum := binary.LittleEndian.Uint16(out[56:58])
	if phnum != 2 {
		t.Errorf("phnum = %d, want 2", phnum)
	}
}

// TestLoadSegmentsAreLoadable asserts the congruence the Linux ELF
// loader enforces for every PT_LOAD segment: p_vaddr mod p_align must
// equal p_offset mod p_align (vm_mmap rejects a mismatched mapping
// offset with -EINVAL). This is the property the "tiny ELF" layout
// (code segment mapped from file offset 0) is built to satisfy.
func TestLoadSegmentsAreLoadable(t *testing.T) {
	prog := ir.Program{{Code: ir.End}}
	out, err := Build(prog)
	if err != nil {
		t.Fatal(err)
	}

	phoff := elfHeaderSize
	for i := 0; i < 2; i++ {
		ph := out[phoff+i*phdrSize:]
		offset := binary.LittleEndian.Uint64(ph[8:16])
		vaddr := binary.LittleEndian.Uint64(ph[16:24])
		align := binary.LittleEndian.Uint64(ph[48:56])
		if offset%align != vaddr%align {
			t.Errorf("segment %d: offset %#x mod %#x = %#x, vaddr %#x mod %#x = %#x, want equal",
				i, offset, align, offset%align, vaddr, align, vaddr%align)
		}
	}
}

func TestBuildEmbedsBodyAfterStubs(t *testing.T) {
	prog := ir.Program{{Code: ir.End}}
	out, err := Build(prog)
	if err != nil {
		t.Fatal(err)
	}
	codeOff := elfHeaderSize + 2*phdrSize
	// entryStub (15 bytes) + exitStub (9 bytes) precede the body.
	if len(out) < codeOff+15+9+1 {
		t.Fatalf("output too short to contain stubs and body: %d bytes", len(out))
	}
}
