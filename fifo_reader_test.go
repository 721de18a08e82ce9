package main

import "testing"

// newFixtureFifoMem builds the header+data region shared by fixtures 1-4:
// MIN/MAX/NEXT_CMD/STOP occupy words 0-3, the ring's data area starts at
// word 4 (byte 16), matching every fixture's MIN=16. MAX is the end of
// data, so a fixture whose NEXT_CMD lies past its last command carries a
// spare trailing word (a cursor equal to MAX is rejected).
func newFixtureFifoMem(nextCmd, stop uint32, data []uint32) *SharedMem {
	m := NewSharedMem(make([]byte, 16+len(data)*WordSize))
	m.StoreRelease(fifoHdrMin, 16)
	m.StoreRelease(fifoHdrMax, uint32(16+len(data)*WordSize))
	m.StoreRelease(fifoHdrNextCmd, nextCmd)
	m.StoreRelease(fifoHdrStop, stop)
	for i, w := range data {
		m.WriteVolatile(4+i, w)
	}
	return m
}

func drainAll(v *FifoView) []uint32 {
	var out []uint32
	for {
		w, ok := v.Next()
		if !ok {
			return out
		}
		out = append(out, w)
	}
}

func wordsEqual(t *testing.T, got, want []uint32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestFifoReaderBasicDrain is spec fixture 1: MIN=16, MAX=40, STOP=16,
// NEXT_CMD=36, data [1,2,3,4,5]; draining all five words via Next then
// committing advances STOP to 36 and leaves the FIFO empty. The sixth,
// unused word puts MAX at 40, past NEXT_CMD.
func TestFifoReaderBasicDrain(t *testing.T) {
	mem := newFixtureFifoMem(36, 16, []uint32{1, 2, 3, 4, 5, 0})
	r := NewFifoReader(mem)

	v := r.View()
	if v.Available() != 5 {
		t.Fatalf("Available() = %d, want 5", v.Available())
	}
	wordsEqual(t, drainAll(v), []uint32{1, 2, 3, 4, 5})
	v.Commit()

	if got := mem.LoadAcquire(fifoHdrStop); got != 36 {
		t.Fatalf("STOP after commit = %d, want 36", got)
	}
	if v2 := r.View(); v2.Available() != 0 {
		t.Fatalf("Available() on next view = %d, want 0", v2.Available())
	}
}

// TestFifoReaderWrapDrain is spec fixture 2: same region sized for six
// words, NEXT_CMD already wrapped past MAX back toward MIN (STOP=24,
// NEXT_CMD=20). Draining crosses MAX and commit lands STOP at 20.
func TestFifoReaderWrapDrain(t *testing.T) {
	mem := newFixtureFifoMem(20, 24, []uint32{1, 2, 3, 4, 5, 6})
	r := NewFifoReader(mem)

	v := r.View()
	if v.Available() != 5 {
		t.Fatalf("Available() = %d, want 5", v.Available())
	}
	wordsEqual(t, drainAll(v), []uint32{3, 4, 5, 6, 1})
	v.Commit()

	if got := mem.LoadAcquire(fifoHdrStop); got != 20 {
		t.Fatalf("STOP after commit = %d, want 20", got)
	}
}

// TestFifoReaderBorrowNoWrap is spec fixture 3: the same basic-drain
// region, borrowed in two pieces that never cross MAX.
func TestFifoReaderBorrowNoWrap(t *testing.T) {
	mem := newFixtureFifoMem(36, 16, []uint32{1, 2, 3, 4, 5, 0})
	r := NewFifoReader(mem)

	v := r.View()
	got, ok := v.Borrow(3)
	if !ok {
		t.Fatal("Borrow(3) returned ok=false")
	}
	wordsEqual(t, got, []uint32{1, 2, 3})

	if _, ok := v.Borrow(3); ok {
		t.Fatal("Borrow(3) a second time should fail: only 2 words remain")
	}
	v.Commit()

	v2 := r.View()
	got2, ok := v2.Borrow(2)
	if !ok {
		t.Fatal("Borrow(2) on the next view returned ok=false")
	}
	wordsEqual(t, got2, []uint32{4, 5})
}

// TestFifoReaderBorrowWrap is spec fixture 4: the wrap-drain region,
// borrowed as a single span that crosses MAX, exercising the slow
// (scratch-copy) path. Five words is the full available span here: the
// first four come from the pre-wrap side, the last one from post-wrap.
func TestFifoReaderBorrowWrap(t *testing.T) {
	mem := newFixtureFifoMem(20, 24, []uint32{1, 2, 3, 4, 5, 6})
	r := NewFifoReader(mem)

	v := r.View()
	got, ok := v.Borrow(5)
	if !ok {
		t.Fatal("Borrow(5) returned ok=false")
	}
	wordsEqual(t, got, []uint32{3, 4, 5, 6, 1})
	v.Commit()

	if got := mem.LoadAcquire(fifoHdrStop); got != 20 {
		t.Fatalf("STOP after commit = %d, want 20", got)
	}
}

// TestFifoReaderViewWithoutCommitIsDiscarded verifies that peeking without
// committing leaves STOP, and the next view's available count, unchanged.
func TestFifoReaderViewWithoutCommitIsDiscarded(t *testing.T) {
	mem := newFixtureFifoMem(36, 16, []uint32{1, 2, 3, 4, 5, 0})
	r := NewFifoReader(mem)

	v := r.View()
	drainAll(v) // no Commit() call

	if got := mem.LoadAcquire(fifoHdrStop); got != 16 {
		t.Fatalf("STOP changed without commit: got %d, want 16", got)
	}
	if v2 := r.View(); v2.Available() != 5 {
		t.Fatalf("Available() on fresh view = %d, want 5", v2.Available())
	}
}

// TestNewFifoReaderRejectsInvertedBounds verifies the MIN >= MAX fatal
// assertion.
func TestNewFifoReaderRejectsInvertedBounds(t *testing.T) {
	mem := NewSharedMem(make([]byte, 32))
	mem.StoreRelease(fifoHdrMin, 24)
	mem.StoreRelease(fifoHdrMax, 24)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on MIN >= MAX")
		}
	}()
	NewFifoReader(mem)
}

// TestNewFifoReaderRejectsMisalignedBounds verifies the word-alignment
// assertion on MIN/MAX.
func TestNewFifoReaderRejectsMisalignedBounds(t *testing.T) {
	mem := NewSharedMem(make([]byte, 32))
	mem.StoreRelease(fifoHdrMin, 1)
	mem.StoreRelease(fifoHdrMax, 24)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on misaligned MIN")
		}
	}()
	NewFifoReader(mem)
}
