package jit

import "unsafe"

// jitcall transfers control to the native code at fn, having first
// moved tape into R13, the register the amd64 backend treats as the
// tape base address for the lifetime of the call. Implemented in
// jitcall_amd64.s.
func jitcall(fn, tape unsafe.Pointer)
