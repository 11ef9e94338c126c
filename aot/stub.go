package aot

import "encoding/binary"

// entryStub returns the fixed-size machine code that runs before the
// compiled program body: it loads the tape's base address into R13
// (the body's own preamble zeroes R12), then CALLs over the exit stub
// into the body. Raw byte emission, rather than routing this through
// golang-asm, mirrors how a freestanding entry point is built when
// there is no surrounding object-file/linker step to hand it to.
//
// bodyDisp is the distance, in bytes, from the end of the CALL
// instruction to the start of the body -- i.e. the length of the exit
// stub sitting between them. CALL pushes the address immediately
// following itself as the return address, so placing the exit stub
// there means the body's trailing RET lands on it rather than looping
// back into itself.
func entryStub(tapeAddr uint64, bodyDisp int32) []byte {
	buf := make([]byte, 10)
	buf[0] = 0x49 // REX.WB
	buf[1] = 0xBD // MOVABS R13, imm64
	binary.LittleEndian.PutUint64(buf[2:], tapeAddr)

	call := make([]byte, 5)
	call[0] = 0xE8 // CALL rel32
	binary.LittleEndian.PutUint32(call[1:], uint32(bodyDisp))

	return append(buf, call...)
}

// exitStub returns the machine code that runs once the compiled body
// returns: exit(0) via the Linux x86-64 syscall ABI. Its length is the
// bodyDisp entryStub's CALL must skip over.
func exitStub() []byte {
	return []byte{
		0xB8, 0x3C, 0x00, 0x00, 0x00, // MOV EAX, 60 (sys_exit)
		0x31, 0xFF, // XOR EDI, EDI
		0x0F, 0x05, // SYSCALL
	}
}
