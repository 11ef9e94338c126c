package jit

import (
	"errors"
	"testing"

	"github.com/bflang/bf/ir"
	"github.com/bflang/bf/tape"
)

type mockBackend struct {
	lowered  ir.Program
	lowerErr error
}

func (m *mockBackend) Lower(prog ir.Program) ([]byte, error) {
	m.lowered = prog
	if m.lowerErr != nil {
		return nil, m.lowerErr
	}
	return []byte{0xc3}, nil // a lone RET, harmless if ever executed
}

func (m *mockBackend) Listing(prog ir.Program) (string, error) {
	return "mock listing", nil
}

type mockAllocator struct {
	allocated []byte
	closed    bool
}

func (m *mockAllocator) AllocateExec(code []byte) (CompiledFunc, error) {
	m.allocated = code
	return func(t *tape.Tape) {}, nil
}

func (m *mockAllocator) Close() error {
	m.closed = true
	return nil
}

func TestCompileWiresBackendAndAllocator(t *testing.T) {
	be := &mockBackend{}
	al := &mockAllocator{}
	j := &JIT{backend: be, alloc: al}

	prog := ir.Program{{Code: ir.Add, N: 1}, {Code: ir.End}}
	fn, err := j.Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	if fn == nil {
		t.Fatal("Compile returned nil func")
	}
	if len(be.lowered) != len(prog) {
		t.Errorf("backend saw %d instructions, want %d", len(be.lowered), len(prog))
	}
	if len(al.allocated) == 0 {
		t.Error("allocator never received lowered code")
	}
}

func TestCompileSurfacesLowerError(t *testing.T) {
	wantErr := errors.New("boom")
	j := &JIT{backend: &mockBackend{lowerErr: wantErr}, alloc: &mockAllocator{}}
	_, err := j.Compile(ir.Program{{Code: ir.End}})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapping %v", err, wantErr)
	}
}

func TestClosePropagatesToAllocator(t *testing.T) {
	al := &mockAllocator{}
	j := &JIT{backend: &mockBackend{}, alloc: al}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if !al.closed {
		t.Error("Close did not reach the allocator")
	}
}

func TestListingDelegatesToBackend(t *testing.T) {
	j := &JIT{backend: &mockBackend{}, alloc: &mockAllocator{}}
	got, err := j.Listing(ir.Program{{Code: ir.End}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "mock listing" {
		t.Errorf("Listing = %q", got)
	}
}
