package main

import (
	"sync"
	"testing"
	"time"
)

// fakeGraphicBackend is a minimal GraphicBackend test double that records
// the words it was handed and renders a fixed byte pattern.
type fakeGraphicBackend struct {
	updated  []uint32
	rendered byte
}

func (f *fakeGraphicBackend) UpdateFramebufferWhole(words []uint32) {
	f.updated = append([]uint32(nil), words...)
}

func (f *fakeGraphicBackend) Render(out []byte) {
	for i := range out {
		out[i] = f.rendered
	}
}

func (f *fakeGraphicBackend) Destroy() {}

func newTestFifoState(fifoDataWords, fbWords uint32) *FifoState {
	fifoMem := NewSharedMem(make([]byte, 16+fifoDataWords*WordSize))
	fifoMem.StoreRelease(fifoHdrMin, 16)
	fifoMem.StoreRelease(fifoHdrMax, 16+fifoDataWords*WordSize)

	fs := &FifoState{
		fifoMem: fifoMem,
		fbMem:   NewSharedMem(make([]byte, fbWords*WordSize)),
		output:  NewMailbox(),
	}
	fs.resumeCond = sync.NewCond(&fs.resumeMu)
	return fs
}

// TestDrainOneCommandEmptyReturnsFalse verifies no-progress signaling on an
// empty FIFO.
func TestDrainOneCommandEmptyReturnsFalse(t *testing.T) {
	fs := newTestFifoState(16, 4)
	fs.fifoMem.StoreRelease(fifoHdrNextCmd, 16)
	fs.fifoMem.StoreRelease(fifoHdrStop, 16)

	reader := NewFifoReader(fs.fifoMem)
	backend := &fakeGraphicBackend{}
	if drainOneCommand(reader, fs, backend) {
		t.Fatal("drainOneCommand on an empty FIFO returned true")
	}
}

// TestDrainOneCommandAppliesUpdate verifies a queued UPDATE is decoded,
// applied to the backend with the current framebuffer contents, and
// committed so a second drain finds the FIFO empty.
func TestDrainOneCommandAppliesUpdate(t *testing.T) {
	fs := newTestFifoState(16, 4)
	fs.fifoMem.WriteVolatile(4, fifoCmdUpdate)
	fs.fifoMem.WriteVolatile(5, 0)
	fs.fifoMem.WriteVolatile(6, 0)
	fs.fifoMem.WriteVolatile(7, 2)
	fs.fifoMem.WriteVolatile(8, 2)
	fs.fifoMem.StoreRelease(fifoHdrNextCmd, 16+5*WordSize)
	fs.fifoMem.StoreRelease(fifoHdrStop, 16)

	for i := 0; i < 4; i++ {
		fs.fbMem.WriteVolatile(i, uint32(100+i))
	}

	reader := NewFifoReader(fs.fifoMem)
	backend := &fakeGraphicBackend{}
	if !drainOneCommand(reader, fs, backend) {
		t.Fatal("drainOneCommand with a queued UPDATE returned false")
	}
	want := []uint32{100, 101, 102, 103}
	if len(backend.updated) != len(want) {
		t.Fatalf("updated length = %d, want %d", len(backend.updated), len(want))
	}
	for i := range want {
		if backend.updated[i] != want[i] {
			t.Fatalf("updated[%d] = %d, want %d", i, backend.updated[i], want[i])
		}
	}

	if drainOneCommand(reader, fs, backend) {
		t.Fatal("second drainOneCommand unexpectedly found more work")
	}
}

// TestRenderFramePublishesConvertedBytes verifies renderFrame packs the
// backend's BGRA bytes into little-endian words and publishes them.
func TestRenderFramePublishesConvertedBytes(t *testing.T) {
	fs := newTestFifoState(16, 4)
	backend := &fakeGraphicBackend{rendered: 0xAB}

	renderFrame(fs, backend, 4)

	r := fs.output.BorrowRead()
	if r == nil {
		t.Fatal("BorrowRead returned nil after renderFrame")
	}
	defer r.Close()

	want := uint32(0xAB) | uint32(0xAB)<<8 | uint32(0xAB)<<16 | uint32(0xAB)<<24
	for i, w := range r.Data() {
		if w != want {
			t.Fatalf("word %d = %#08x, want %#08x", i, w, want)
		}
	}
}

// TestWaitResumeTimeoutReturnsOnBroadcast verifies a real Signal/Broadcast
// wakes the wait well before the timeout elapses.
func TestWaitResumeTimeoutReturnsOnBroadcast(t *testing.T) {
	var mu sync.Mutex
	cond := sync.NewCond(&mu)

	done := make(chan struct{})
	go func() {
		mu.Lock()
		waitResumeTimeout(cond, 2*time.Second)
		mu.Unlock()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	cond.Broadcast()
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("waitResumeTimeout did not return after Broadcast")
	}
}

// TestWaitResumeTimeoutReturnsOnExpiry verifies the timer-driven fallback
// fires when nobody signals.
func TestWaitResumeTimeoutReturnsOnExpiry(t *testing.T) {
	var mu sync.Mutex
	cond := sync.NewCond(&mu)

	done := make(chan struct{})
	go func() {
		mu.Lock()
		waitResumeTimeout(cond, 30*time.Millisecond)
		mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("waitResumeTimeout did not return on its own timeout")
	}
}
