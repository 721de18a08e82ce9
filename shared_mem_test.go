package main

import "testing"

// TestNewSharedMemRejectsNil verifies the nil-base embedder-misuse panic.
func TestNewSharedMemRejectsNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil base")
		}
	}()
	NewSharedMem(nil)
}

// TestNewSharedMemRejectsUnalignedLength verifies the length-must-be-a-whole-
// number-of-words invariant.
func TestNewSharedMemRejectsUnalignedLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on misaligned length")
		}
	}()
	NewSharedMem(make([]byte, 5))
}

// TestSharedMemLoadStoreRoundTrip verifies atomic store then acquire load
// returns the stored value.
func TestSharedMemLoadStoreRoundTrip(t *testing.T) {
	m := NewSharedMem(make([]byte, 16))
	m.StoreRelease(2, 0xDEADBEEF)
	if got := m.LoadAcquire(2); got != 0xDEADBEEF {
		t.Fatalf("LoadAcquire = 0x%08X, want 0xDEADBEEF", got)
	}
}

// TestSharedMemCompareAndSwap verifies success and failure cases.
func TestSharedMemCompareAndSwap(t *testing.T) {
	m := NewSharedMem(make([]byte, 4))
	m.StoreRelease(0, 10)

	if m.CompareAndSwap(0, 11, 20) {
		t.Fatal("CAS succeeded against stale expected value")
	}
	if !m.CompareAndSwap(0, 10, 20) {
		t.Fatal("CAS failed against correct expected value")
	}
	if got := m.LoadAcquire(0); got != 20 {
		t.Fatalf("LoadAcquire after CAS = %d, want 20", got)
	}
}

// TestSharedMemWordPtrBoundsCheck verifies out-of-range indices panic rather
// than reading adjacent memory.
func TestSharedMemWordPtrBoundsCheck(t *testing.T) {
	m := NewSharedMem(make([]byte, 8))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range word index")
		}
	}()
	m.LoadAcquire(2)
}

// TestSharedMemSliceTo verifies the raw byte view covers exactly the
// requested word span.
func TestSharedMemSliceTo(t *testing.T) {
	m := NewSharedMem(make([]byte, 16))
	m.StoreRelease(1, 0x01020304)
	s := m.SliceTo(1, 2)
	if len(s) != 4 {
		t.Fatalf("SliceTo length = %d, want 4", len(s))
	}
}
