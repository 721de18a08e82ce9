// shared_mem.go - Bounds-checked atomic/volatile view over guest-shared memory

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
	"sync/atomic"
	"unsafe"
)

// WordSize is the element width SharedMem operates on: the FIFO header,
// FIFO command words, and the BGRA framebuffer are all laid out as u32.
const WordSize = 4

// SharedMem is a bounds-checked window over externally owned memory shared
// with a non-cooperative guest. Every word access goes through LoadAcquire,
// ReadVolatile or their store counterparts, all of them sync/atomic ops.
// SliceTo is the one accessor that returns a plain byte alias of the
// region; the FIFO reader and worker do not use it.
//
// Construction asserts non-nil base, a length divisible by WordSize, and a
// word-aligned base pointer - mirroring the original SharedMem<T>'s
// constructor asserts. Violating any of these is embedder misuse (error
// taxonomy category 2) and is fatal.
type SharedMem struct {
	base []byte
}

// NewSharedMem wraps base as a SharedMem view. Panics (category 2, fatal)
// if base is nil, misaligned, or not a whole number of words.
func NewSharedMem(base []byte) *SharedMem {
	if base == nil {
		panic("shared_mem: nil base")
	}
	if len(base)%WordSize != 0 {
		panic("shared_mem: length not a multiple of word size")
	}
	if uintptr(unsafe.Pointer(&base[0]))%WordSize != 0 {
		panic("shared_mem: base not word-aligned")
	}
	return &SharedMem{base: base}
}

// Len returns the number of words in the view.
func (m *SharedMem) Len() int {
	return len(m.base) / WordSize
}

func (m *SharedMem) wordPtr(i int) *uint32 {
	if i < 0 || i >= m.Len() {
		panic("shared_mem: index out of range")
	}
	return (*uint32)(unsafe.Pointer(&m.base[i*WordSize]))
}

// LoadAcquire atomically loads word i. Go's sync/atomic load/store on
// shared hardware provides acquire/release semantics on every supported
// platform; there is no separate acquire-only primitive in the standard
// library, so this and StoreRelease are both implemented with the plain
// atomic ops, matching the strength the spec requires.
func (m *SharedMem) LoadAcquire(i int) uint32 {
	return atomic.LoadUint32(m.wordPtr(i))
}

// StoreRelease atomically stores val into word i.
func (m *SharedMem) StoreRelease(i int, val uint32) {
	atomic.StoreUint32(m.wordPtr(i), val)
}

// CompareAndSwap attempts an atomic CAS on word i.
func (m *SharedMem) CompareAndSwap(i int, old, new uint32) bool {
	return atomic.CompareAndSwapUint32(m.wordPtr(i), old, new)
}

// ReadVolatile reads word i, for slots where the only requirement is
// "don't let the compiler cache this value across a loop iteration" (the
// FIFO command payload words, once NEXT_CMD has already been acquired). It
// uses the same atomic load as LoadAcquire; the separate name marks the
// weaker requirement at the call site.
func (m *SharedMem) ReadVolatile(i int) uint32 {
	return atomic.LoadUint32(m.wordPtr(i))
}

// WriteVolatile writes word i with the same atomic store as StoreRelease.
func (m *SharedMem) WriteVolatile(i int, val uint32) {
	atomic.StoreUint32(m.wordPtr(i), val)
}

// SliceTo returns the raw bytes of words [begin, end), for use where a
// contiguous span must be memcpy'd out.
// The returned slice aliases the shared region; the caller must not retain
// it past the owning view's lifetime.
func (m *SharedMem) SliceTo(begin, end int) []byte {
	if begin < 0 || end > m.Len() || begin > end {
		panic("shared_mem: slice out of range")
	}
	return m.base[begin*WordSize : end*WordSize]
}
