package jit

import (
	"fmt"
	"strings"

	asm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/bflang/bf/ir"
)

// Linux x86-64 syscall numbers used by the I/O lowering. There is no
// libc linked into the generated snippet, so getchar/putchar are
// lowered directly to read(2)/write(2) rather than calls into libc --
// the freestanding-executable analogue of the reference design's
// getchar/putchar calls.
const (
	sysRead  = 0
	sysWrite = 1
)

// AMD64Backend lowers IR to x86-64 machine code via golang-asm.
//
// Register convention, set up by the jitcall trampoline before it
// transfers control into the assembled snippet:
//
//	R13 - tape base address (constant for the lifetime of the call)
//	R12 - data pointer, the offset in bytes from R13; zeroed by the
//	      snippet's own preamble
//
// Scratch registers AX, DI, SI, DX are used only around the read/write
// syscalls and are not preserved across them; R12 and R13 are
// preserved by the Linux x86-64 syscall convention, which only
// clobbers RCX, R11 and RAX.
type AMD64Backend struct{}

// Lower implements Backend.
func (AMD64Backend) Lower(prog ir.Program) ([]byte, error) {
	builder, err := asm.NewBuilder("amd64", len(prog)+8)
	if err != nil {
		return nil, err
	}

	emitPreamble(builder)

	labelAt := make([]*obj.Prog, len(prog))
	var fixups []fixup

	for idx, in := range prog {
		first := emitOffset(builder, in)
		p := emitOp(builder, idx, in, &fixups)
		if first == nil {
			first = p
		}
		if first == nil {
			// An instruction that emitted nothing still needs an
			// anchor so that branches targeting it have somewhere
			// to land.
			first = nop(builder)
		}
		labelAt[idx] = first
	}

	for _, f := range fixups {
		f.prog.To.Val = labelAt[f.target]
	}

	return builder.Assemble(), nil
}

// Listing implements Backend. Each line is prefixed with the IR index
// it belongs to and names the native instructions the backend would
// emit for it; the format differs from ir.Dump's.
func (AMD64Backend) Listing(prog ir.Program) (string, error) {
	var sb strings.Builder
	for idx, in := range prog {
		if in.Off != 0 && in.Code != ir.End {
			fmt.Fprintf(&sb, "%04d: ADDQ $%d, R12\n", idx, in.Off)
		}
		switch in.Code {
		case ir.Add:
			fmt.Fprintf(&sb, "%04d: ADDB $%d, (R13)(R12*1)\n", idx, in.N%256)
		case ir.Sub:
			fmt.Fprintf(&sb, "%04d: SUBB $%d, (R13)(R12*1)\n", idx, in.N%256)
		case ir.Zero:
			fmt.Fprintf(&sb, "%04d: MOVB $0, (R13)(R12*1)\n", idx)
		case ir.Read:
			fmt.Fprintf(&sb, "%04d: SYSCALL read(0, (R13)(R12*1), 1); JNE ...; MOVB $0xff, (R13)(R12*1)\n", idx)
		case ir.Put:
			fmt.Fprintf(&sb, "%04d: SYSCALL write(1, (R13)(R12*1), 1)\n", idx)
		case ir.Scan:
			fmt.Fprintf(&sb, "%04d: loop: CMPB $0, (R13)(R12*1); JEQ end; ADDQ $%d, R12; JMP loop; end:\n", idx, in.Stride)
		case ir.JmpFwd:
			fmt.Fprintf(&sb, "%04d: CMPB $0, (R13)(R12*1); JEQ %04d\n", idx, in.Target)
		case ir.JmpBck:
			fmt.Fprintf(&sb, "%04d: CMPB $0, (R13)(R12*1); JNE %04d\n", idx, in.Target)
		case ir.End:
			fmt.Fprintf(&sb, "%04d: RET\n", idx)
		}
	}
	return sb.String(), nil
}

// fixup records a branch instruction whose target Prog is not yet
// known because it targets a forward IR index; it is patched once
// every IR index has an anchor instruction.
type fixup struct {
	prog   *obj.Prog
	target int
}

func emitPreamble(b *asm.Builder) {
	p := b.NewProg()
	p.As = x86.AXORQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_R12
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_R12
	b.AddInstruction(p)
}

func nop(b *asm.Builder) *obj.Prog {
	p := b.NewProg()
	p.As = obj.ANOP
	b.AddInstruction(p)
	return p
}

// emitOffset emits the "i += offset" step every opcode but End
// carries out before its own effect, and returns the first emitted
// Prog (nil if Off is zero, or the opcode is End).
func emitOffset(b *asm.Builder, in ir.Instr) *obj.Prog {
	if in.Code == ir.End || in.Off == 0 {
		return nil
	}
	p := b.NewProg()
	p.As = x86.AADDQ
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = int64(in.Off)
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_R12
	b.AddInstruction(p)
	return p
}

// cellOperand is the memory operand for the cell under the data
// pointer: (R13)(R12*1).
func cellOperand() obj.Addr {
	return obj.Addr{
		Type:  obj.TYPE_MEM,
		Reg:   x86.REG_R13,
		Index: x86.REG_R12,
		Scale: 1,
	}
}

func emitOp(b *asm.Builder, idx int, in ir.Instr, fixups *[]fixup) *obj.Prog {
	switch in.Code {
	case ir.Add, ir.Sub:
		as := x86.AADDB
		if in.Code == ir.Sub {
			as = x86.ASUBB
		}
		p := b.NewProg()
		p.As = as
		p.From.Type = obj.TYPE_CONST
		p.From.Offset = int64(in.N % 256)
		p.To = cellOperand()
		b.AddInstruction(p)
		return p

	case ir.Zero:
		p := b.NewProg()
		p.As = x86.AMOVB
		p.From.Type = obj.TYPE_CONST
		p.From.Offset = 0
		p.To = cellOperand()
		b.AddInstruction(p)
		return p

	case ir.Read:
		return emitRead(b)

	case ir.Put:
		return emitWrite(b)

	case ir.Scan:
		return emitScan(b, in.Stride)

	case ir.JmpFwd:
		return emitCondBranch(b, x86.AJEQ, in.Target, fixups)

	case ir.JmpBck:
		return emitCondBranch(b, x86.AJNE, in.Target, fixups)

	case ir.End:
		p := b.NewProg()
		p.As = obj.ARET
		b.AddInstruction(p)
		return p
	}
	return nil
}

// emitCondBranch emits "CMPB $0, (cell); Jcc <target>" and registers
// a fixup for the (not yet known) target Prog. Returns the CMPB, the
// entry point for this IR index.
func emitCondBranch(b *asm.Builder, jcc obj.As, target int, fixups *[]fixup) *obj.Prog {
	cmp := b.NewProg()
	cmp.As = x86.ACMPB
	cmp.From = cellOperand()
	cmp.To.Type = obj.TYPE_CONST
	cmp.To.Offset = 0
	b.AddInstruction(cmp)

	j := b.NewProg()
	j.As = jcc
	j.To.Type = obj.TYPE_BRANCH
	b.AddInstruction(j)

	*fixups = append(*fixups, fixup{prog: j, target: target})
	return cmp
}

// emitScan emits the tight loop: while cell != 0, R12 += stride.
func emitScan(b *asm.Builder, stride int) *obj.Prog {
	top := b.NewProg()
	top.As = x86.ACMPB
	top.From = cellOperand()
	top.To.Type = obj.TYPE_CONST
	top.To.Offset = 0
	b.AddInstruction(top)

	jeq := b.NewProg()
	jeq.As = x86.AJEQ
	jeq.To.Type = obj.TYPE_BRANCH
	b.AddInstruction(jeq)

	add := b.NewProg()
	add.As = x86.AADDQ
	add.From.Type = obj.TYPE_CONST
	add.From.Offset = int64(stride)
	add.To.Type = obj.TYPE_REG
	add.To.Reg = x86.REG_R12
	b.AddInstruction(add)

	jmp := b.NewProg()
	jmp.As = obj.AJMP
	jmp.To.Type = obj.TYPE_BRANCH
	jmp.To.Val = top
	b.AddInstruction(jmp)

	end := nop(b)
	jeq.To.Val = end

	return top
}

// emitRead lowers ',' to read(2) of one byte into the current cell,
// setting the cell to 0xFF on EOF (read returning 0).
func emitRead(b *asm.Builder) *obj.Prog {
	movRAX := movImmReg(b, sysRead, x86.REG_AX)

	xorDI := b.NewProg()
	xorDI.As = x86.AXORQ
	xorDI.From.Type = obj.TYPE_REG
	xorDI.From.Reg = x86.REG_DI
	xorDI.To.Type = obj.TYPE_REG
	xorDI.To.Reg = x86.REG_DI
	b.AddInstruction(xorDI)

	lea := b.NewProg()
	lea.As = x86.ALEAQ
	lea.From = cellOperand()
	lea.To.Type = obj.TYPE_REG
	lea.To.Reg = x86.REG_SI
	b.AddInstruction(lea)

	movImmReg(b, 1, x86.REG_DX)

	sys := b.NewProg()
	sys.As = x86.ASYSCALL
	b.AddInstruction(sys)

	cmp := b.NewProg()
	cmp.As = x86.ACMPQ
	cmp.From.Type = obj.TYPE_REG
	cmp.From.Reg = x86.REG_AX
	cmp.To.Type = obj.TYPE_CONST
	cmp.To.Offset = 0
	b.AddInstruction(cmp)

	jne := b.NewProg()
	jne.As = x86.AJNE
	jne.To.Type = obj.TYPE_BRANCH
	b.AddInstruction(jne)

	movFF := b.NewProg()
	movFF.As = x86.AMOVB
	movFF.From.Type = obj.TYPE_CONST
	movFF.From.Offset = 0xFF
	movFF.To = cellOperand()
	b.AddInstruction(movFF)

	skip := nop(b)
	jne.To.Val = skip

	return movRAX
}

// emitWrite lowers '.' to write(2) of one byte from the current cell.
// Per the JIT ABI (one pointer argument, no return value), write
// failures cannot be surfaced from inside the generated snippet; they
// are a concern of the interpreter path instead.
func emitWrite(b *asm.Builder) *obj.Prog {
	movRAX := movImmReg(b, sysWrite, x86.REG_AX)
	movImmReg(b, 1, x86.REG_DI)

	lea := b.NewProg()
	lea.As = x86.ALEAQ
	lea.From = cellOperand()
	lea.To.Type = obj.TYPE_REG
	lea.To.Reg = x86.REG_SI
	b.AddInstruction(lea)

	movImmReg(b, 1, x86.REG_DX)

	sys := b.NewProg()
	sys.As = x86.ASYSCALL
	b.AddInstruction(sys)

	return movRAX
}

func movImmReg(b *asm.Builder, v int64, reg int16) *obj.Prog {
	p := b.NewProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = v
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
	b.AddInstruction(p)
	return p
}
