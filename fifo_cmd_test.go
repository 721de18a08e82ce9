package main

import "testing"

// TestDecodeFifoCmdUpdate verifies opcode 1 decodes into an UPDATE record
// with its four argument words in order.
func TestDecodeFifoCmdUpdate(t *testing.T) {
	data := []uint32{fifoCmdUpdate, 1, 2, 3, 4}
	mem := newFixtureFifoMem(16+uint32(len(data))*WordSize, 16, append(data, 0))
	r := NewFifoReader(mem)
	v := r.View()

	cmd, ok := DecodeFifoCmd(v)
	if !ok {
		t.Fatal("DecodeFifoCmd returned ok=false")
	}
	if cmd.Kind != fifoCmdUpdate {
		t.Fatalf("Kind = %d, want fifoCmdUpdate", cmd.Kind)
	}
	if cmd.UpdateX != 1 || cmd.UpdateY != 2 || cmd.UpdateW != 3 || cmd.UpdateH != 4 {
		t.Fatalf("UPDATE args = (%d,%d,%d,%d), want (1,2,3,4)", cmd.UpdateX, cmd.UpdateY, cmd.UpdateW, cmd.UpdateH)
	}
}

// TestDecodeFifoCmdFence verifies opcode 30 decodes into a FENCE record
// and still consumes its argument word.
func TestDecodeFifoCmdFence(t *testing.T) {
	data := []uint32{fifoCmdFence, 0xABCD}
	mem := newFixtureFifoMem(16+uint32(len(data))*WordSize, 16, append(data, 0))
	r := NewFifoReader(mem)
	v := r.View()

	cmd, ok := DecodeFifoCmd(v)
	if !ok {
		t.Fatal("DecodeFifoCmd returned ok=false")
	}
	if cmd.Kind != fifoCmdFence {
		t.Fatalf("Kind = %d, want fifoCmdFence", cmd.Kind)
	}
	if cmd.FenceVal != 0xABCD {
		t.Fatalf("FenceVal = %#x, want 0xABCD", cmd.FenceVal)
	}
	if v.Available() != 0 {
		t.Fatalf("Available() after decode = %d, want 0 (argument must be consumed)", v.Available())
	}
}

// TestDecodeFifoCmdEmptyFifo verifies ok=false when no opcode word is
// available at all (STOP == NEXT_CMD).
func TestDecodeFifoCmdEmptyFifo(t *testing.T) {
	mem := newFixtureFifoMem(16, 16, []uint32{0})
	r := NewFifoReader(mem)
	v := r.View()

	if _, ok := DecodeFifoCmd(v); ok {
		t.Fatal("DecodeFifoCmd on an empty FIFO returned ok=true")
	}
}

// TestDecodeFifoCmdUnknownOpcodeIsFatal verifies an opcode outside the
// table is a protocol violation and panics.
func TestDecodeFifoCmdUnknownOpcodeIsFatal(t *testing.T) {
	data := []uint32{99}
	mem := newFixtureFifoMem(16+uint32(len(data))*WordSize, 16, append(data, 0))
	r := NewFifoReader(mem)
	v := r.View()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown opcode")
		}
	}()
	DecodeFifoCmd(v)
}

// TestDecodeFifoCmdTruncatedUpdateIsFatal verifies a present opcode with a
// short argument block panics rather than returning ok=false.
func TestDecodeFifoCmdTruncatedUpdateIsFatal(t *testing.T) {
	data := []uint32{fifoCmdUpdate, 1}
	mem := newFixtureFifoMem(16+uint32(len(data))*WordSize, 16, append(data, 0))
	r := NewFifoReader(mem)
	v := r.View()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on truncated UPDATE command")
		}
	}()
	DecodeFifoCmd(v)
}
