package main

import (
	"sync"
	"testing"
)

// TestMailboxReadBeforeAnyWritePublished verifies BorrowRead returns nil
// until a frame has been published at least once.
func TestMailboxReadBeforeAnyWritePublished(t *testing.T) {
	mb := NewMailbox()
	if r := mb.BorrowRead(); r != nil {
		t.Fatal("BorrowRead before any write returned non-nil")
	}
}

// TestMailboxWriteThenReadRoundTrip verifies a published frame is visible
// to a subsequent reader.
func TestMailboxWriteThenReadRoundTrip(t *testing.T) {
	mb := NewMailbox()

	w := mb.BorrowWrite()
	buf := w.Buffer(4)
	copy(buf, []uint32{1, 2, 3, 4})
	w.Close()

	r := mb.BorrowRead()
	if r == nil {
		t.Fatal("BorrowRead returned nil after a publish")
	}
	defer r.Close()

	got := r.Data()
	want := []uint32{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Data length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Data[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// TestMailboxSecondWriteDoesNotClobberActiveReader verifies the writer picks
// a slot other than the one a held reader is pinning.
func TestMailboxSecondWriteDoesNotClobberActiveReader(t *testing.T) {
	mb := NewMailbox()

	w1 := mb.BorrowWrite()
	w1.Buffer(1)[0] = 111
	w1.Close()

	r := mb.BorrowRead()
	defer r.Close()

	w2 := mb.BorrowWrite()
	w2.Buffer(1)[0] = 222
	w2.Close()

	if got := r.Data()[0]; got != 111 {
		t.Fatalf("reader's pinned data changed under it: got %d, want 111", got)
	}

	r2 := mb.BorrowRead()
	defer r2.Close()
	if got := r2.Data()[0]; got != 222 {
		t.Fatalf("new reader sees %d, want 222", got)
	}
}

// TestMailboxBufferReallocatesOnSizeChange verifies Buffer(n) resizes the
// slot's backing array when n differs from its current length.
func TestMailboxBufferReallocatesOnSizeChange(t *testing.T) {
	mb := NewMailbox()
	w := mb.BorrowWrite()
	if got := len(w.Buffer(4)); got != 4 {
		t.Fatalf("Buffer(4) length = %d, want 4", got)
	}
	if got := len(w.Buffer(8)); got != 8 {
		t.Fatalf("Buffer(8) length = %d, want 8", got)
	}
	w.Close()
}

// TestMailboxConcurrentReadersDoNotBlockEachOther verifies multiple readers
// can hold the latest slot at once (RWMutex read lock).
func TestMailboxConcurrentReadersDoNotBlockEachOther(t *testing.T) {
	mb := NewMailbox()
	w := mb.BorrowWrite()
	w.Buffer(1)[0] = 1
	w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := mb.BorrowRead()
			defer r.Close()
			_ = r.Data()
		}()
	}
	wg.Wait()
}
