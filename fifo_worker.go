// fifo_worker.go - Background FIFO processor thread and its lifecycle handle

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"sync"
	"sync/atomic"
	"time"
)

// workerSuspendTimeout bounds how long the worker sleeps in its resume wait
// when it made no progress last iteration, per the worker loop in §4.5.1.
const workerSuspendTimeout = 5 * time.Second

// FifoState is the host-internal state shared between a Chip and its
// background worker. No guest access: fifoMem/fbMem are the host's typed
// views over the guest-shared regions, everything else is pure host state.
type FifoState struct {
	fifoMem *SharedMem
	fbMem   *SharedMem

	enabled atomic.Bool // master run flag; seq-cst on the true transition
	busy    atomic.Bool // surfaced to the guest via REG_BUSY

	resumeMu   sync.Mutex
	resumeCond *sync.Cond

	output *Mailbox
}

// workerHandle is the Chip's lifecycle handle on a spawned worker goroutine.
type workerHandle struct {
	done chan struct{}
}

// startFifoWorker spawns the background FIFO processor for (width, height)
// against fifo. Only one worker is ever live per Chip; the caller enforces
// that invariant.
func startFifoWorker(width, height uint32, fifo *FifoState) *workerHandle {
	h := &workerHandle{done: make(chan struct{})}
	go runFifoWorker(width, height, fifo, h)
	return h
}

// runFifoWorker is the worker loop of §4.5.1: construct the backend once,
// then while fifo.enabled, render a frame, drain at most one command per
// iteration, and suspend with a timeout when nothing was consumed.
func runFifoWorker(width, height uint32, fifo *FifoState, h *workerHandle) {
	defer close(h.done)

	backend := NewDefaultGraphicBackend(int(width), int(height))
	defer backend.Destroy()

	reader := NewFifoReader(fifo.fifoMem)
	frameWords := int(width) * int(height)

	for fifo.enabled.Load() {
		renderFrame(fifo, backend, frameWords)

		if drainOneCommand(reader, fifo, backend) {
			continue
		}

		fifo.busy.Store(false)
		fifo.resumeMu.Lock()
		waitResumeTimeout(fifo.resumeCond, workerSuspendTimeout)
		fifo.resumeMu.Unlock()
	}
}

// renderFrame asks the backend for a full BGRA frame and publishes it into
// the mailbox, reusing the slot's backing buffer when its size matches.
func renderFrame(fifo *FifoState, backend GraphicBackend, frameWords int) {
	w := fifo.output.BorrowWrite()
	defer w.Close()

	raw := make([]byte, frameWords*4)
	backend.Render(raw)

	words := w.Buffer(frameWords)
	for i := range words {
		words[i] = uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
	}
}

// drainOneCommand opens a view, decodes at most one command, applies it to
// backend, and commits. Returns false (no progress) when the FIFO is empty.
func drainOneCommand(reader *FifoReader, fifo *FifoState, backend GraphicBackend) bool {
	view := reader.View()
	if view.Available() == 0 {
		return false
	}

	cmd, ok := DecodeFifoCmd(view)
	if !ok {
		return false
	}

	applyFifoCmd(cmd, fifo, backend)
	view.Commit()
	return true
}

// applyFifoCmd mutates backend per the decoded command. UPDATE is always a
// full-framebuffer refresh (the spec excludes partial/dirty-rect updates as
// a feature, so the rect argument is consumed but not used to sub-select);
// FENCE is a recognized no-op.
func applyFifoCmd(cmd FifoCmd, fifo *FifoState, backend GraphicBackend) {
	switch cmd.Kind {
	case fifoCmdUpdate:
		n := fifo.fbMem.Len()
		words := make([]uint32, n)
		for i := 0; i < n; i++ {
			words[i] = fifo.fbMem.ReadVolatile(i)
		}
		backend.UpdateFramebufferWhole(words)
	case fifoCmdFence:
		// Reserved for guest/host ordering; nothing to do host-side.
	}
}

// waitResumeTimeout waits on c, which must already be locked by the caller,
// for at most d before returning on its own. sync.Cond has no built-in
// timed wait, so a timer goroutine broadcasts on expiry; the broadcast is a
// no-op if Wait has already returned via a real Signal.
func waitResumeTimeout(c *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		c.L.Lock()
		c.Broadcast()
		c.L.Unlock()
	})
	defer timer.Stop()
	c.Wait()
}
