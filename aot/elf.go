// Package aot packages a JIT-compiled Brainfuck program as a
// standalone, statically linked Linux/x86-64 executable: the natural
// extension of the JIT's compile-to-object mode described in the
// specification. It reuses the JIT's amd64 lowering verbatim for the
// function body and only adds the entry/exit stub and the ELF
// container around it, grounded on the minimal ELF64 builder and
// x86-64 Linux code-generation approach the wider example corpus
// uses for freestanding Brainfuck executables.
package aot

import (
	"bytes"
	"encoding/binary"
)

// Linux/x86-64 ELF layout constants. CodeBase and BSSBase are chosen
// low enough to need no dynamic relocation for a small non-PIE static
// executable; PageSize is the minimum alignment the loader requires
// between a segment's file offset and its virtual address.
const (
	CodeBase = 0x400000
	BSSBase  = 0x600000
	PageSize = 0x1000
)

const (
	etExec    = 2
	emX8664   = 62
	evCurrent = 1

	ptLoad = 1
	pfX    = 1
	pfW    = 2
	pfR    = 4

	elfHeaderSize = 64
	phdrSize      = 56
)

// Builder assembles the minimal ELF64 executable this package
// produces: one PT_LOAD segment carrying the header, program headers
// and code as a single contiguous, page-aligned blob starting at file
// offset 0, and one zero-filled PT_LOAD segment reserving the tape.
//
// The loader requires p_vaddr ≡ p_offset (mod p_align) for every
// PT_LOAD segment (see mm/util.c's vm_mmap rejecting a misaligned
// offset with -EINVAL). Carrying the ELF header itself inside the
// code segment's mapping, at file offset 0, makes that congruence
// trivially true (0 ≡ 0) without any padding -- the standard "tiny
// ELF" construction -- rather than padding the file so a later,
// nonzero code offset lines up with CodeBase's alignment.
type Builder struct {
	code     []byte
	codeAddr uint64
	bssAddr  uint64
	bssSize  uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddCode attaches the executable's sole code segment: addr is the
// virtual address this segment (and so the ELF header itself) is
// mapped at.
func (b *Builder) AddCode(code []byte, addr uint64) {
	b.code = code
	b.codeAddr = addr
}

// AddBSS reserves a zero-filled, read-write segment of size bytes at
// addr -- the tape.
func (b *Builder) AddBSS(addr uint64, size uint64) {
	b.bssAddr = addr
	b.bssSize = size
}

// Build serializes the executable. The entry point is codeAddr plus
// the offset of the first code byte past the header and program
// headers, since the code segment's mapping starts at file offset 0
// and covers the whole file.
func (b *Builder) Build() []byte {
	var buf bytes.Buffer

	codeFileOff := uint64(elfHeaderSize + 2*phdrSize)
	entry := b.codeAddr + codeFileOff
	totalSize := codeFileOff + uint64(len(b.code))

	// ELF header.
	buf.Write([]byte{0x7f, 'E', 'L', 'F', 2 /* 64-bit */, 1 /* LE */, evCurrent, 0})
	buf.Write(make([]byte, 8)) // EI_PAD
	binary.Write(&buf, binary.LittleEndian, uint16(etExec))
	binary.Write(&buf, binary.LittleEndian, uint16(emX8664))
	binary.Write(&buf, binary.LittleEndian, uint32(evCurrent))
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, uint64(elfHeaderSize)) // phoff
	binary.Write(&buf, binary.LittleEndian, uint64(0))             // shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))             // flags
	binary.Write(&buf, binary.LittleEndian, uint16(elfHeaderSize))
	binary.Write(&buf, binary.LittleEndian, uint16(phdrSize))
	binary.Write(&buf, binary.LittleEndian, uint16(2)) // phnum: code + bss
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // shstrndx

	writePhdr(&buf, ptLoad, pfR|pfX, 0, b.codeAddr, totalSize, totalSize, PageSize)
	writePhdr(&buf, ptLoad, pfR|pfW, 0, b.bssAddr, 0, b.bssSize, PageSize)

	buf.Write(b.code)

	return buf.Bytes()
}

func writePhdr(buf *bytes.Buffer, typ, flags uint32, offset, vaddr, filesz, memsz, align uint64) {
	binary.Write(buf, binary.LittleEndian, typ)
	binary.Write(buf, binary.LittleEndian, flags)
	binary.Write(buf, binary.LittleEndian, offset)
	binary.Write(buf, binary.LittleEndian, vaddr)
	binary.Write(buf, binary.LittleEndian, vaddr) // paddr, unused
	binary.Write(buf, binary.LittleEndian, filesz)
	binary.Write(buf, binary.LittleEndian, memsz)
	binary.Write(buf, binary.LittleEndian, align)
}
