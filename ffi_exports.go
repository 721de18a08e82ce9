// ffi_exports.go - Exported C-callable control surface

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

// This file is the only public contract meant to cross the cgo boundary
// when the module is built with -buildmode=c-shared; every other type in
// this repository is an implementation detail. Build with
// `go build -buildmode=c-shared -o libvmsvga.so .` to generate the paired
// C header this file's //export directives describe; that header itself
// is not checked in (out of scope per the device model's own spec).
package main

/*
#include <stdint.h>
#include <stddef.h>

typedef uint64_t vmsvga_handle;

typedef struct {
	const void *fifo;
	const void *fb;
	uint32_t    fifo_len;
	uint32_t    fb_len;
	uint32_t    vram_len;
} vmsvga_chip_config;
*/
import "C"

import (
	"os"
	"sync"
	"sync/atomic"
	"unsafe"
)

// chipHandles maps the opaque handles returned across the cgo boundary to
// the *Chip they name. A single flat map is enough here - unlike a
// multi-kind C API, this module only ever exports one handle type.
var (
	chipHandlesMu sync.RWMutex
	chipHandles   = make(map[uint64]*Chip)
	nextChipID    atomic.Uint64
)

func registerChip(c *Chip) C.vmsvga_handle {
	id := nextChipID.Add(1)
	chipHandlesMu.Lock()
	chipHandles[id] = c
	chipHandlesMu.Unlock()
	return C.vmsvga_handle(id)
}

func lookupChip(h C.vmsvga_handle) *Chip {
	chipHandlesMu.RLock()
	defer chipHandlesMu.RUnlock()
	return chipHandles[uint64(h)]
}

func unregisterChip(h C.vmsvga_handle) *Chip {
	chipHandlesMu.Lock()
	defer chipHandlesMu.Unlock()
	c := chipHandles[uint64(h)]
	delete(chipHandles, uint64(h))
	return c
}

// fatalBoundary recovers a panic from a protocol violation or embedder
// misuse (error taxonomy categories 1-2) and aborts the process rather
// than letting it unwind across the cgo call boundary into C code.
func fatalBoundary(name string) {
	if r := recover(); r != nil {
		logf("ffi", "fatal error in %s: %v", name, r)
		os.Stderr.Sync()
		os.Exit(2)
	}
}

//export vmsvga_config_default
func vmsvga_config_default(sz C.size_t, cfg *C.vmsvga_chip_config) {
	defer fatalBoundary("vmsvga_config_default")
	initLogging()
	if uintptr(sz) != unsafe.Sizeof(C.vmsvga_chip_config{}) {
		panic("ffi: vmsvga_config_default: struct size mismatch")
	}
	if cfg == nil {
		panic("ffi: vmsvga_config_default: nil cfg")
	}
	def := DefaultChipConfig()
	cfg.fifo = nil
	cfg.fb = nil
	cfg.fifo_len = 0
	cfg.fb_len = 0
	cfg.vram_len = C.uint32_t(def.VRAMLen)
}

//export vmsvga_new
func vmsvga_new(cfg *C.vmsvga_chip_config) C.vmsvga_handle {
	defer fatalBoundary("vmsvga_new")
	if cfg == nil {
		panic("ffi: vmsvga_new: nil cfg")
	}
	if cfg.fifo == nil {
		panic("ffi: vmsvga_new: nil fifo pointer")
	}
	if cfg.fb == nil {
		panic("ffi: vmsvga_new: nil fb pointer")
	}

	chipCfg := ChipConfig{
		FIFO:    unsafe.Slice((*byte)(unsafe.Pointer(cfg.fifo)), int(cfg.fifo_len)),
		FB:      unsafe.Slice((*byte)(unsafe.Pointer(cfg.fb)), int(cfg.fb_len)),
		FIFOLen: uint32(cfg.fifo_len),
		FBLen:   uint32(cfg.fb_len),
		VRAMLen: uint32(cfg.vram_len),
	}
	c := NewChip(chipCfg)
	return registerChip(c)
}

//export vmsvga_free
func vmsvga_free(h C.vmsvga_handle) {
	defer fatalBoundary("vmsvga_free")
	c := unregisterChip(h)
	if c == nil {
		return
	}
	c.Free()
}

//export vmsvga_is_vga_mode
func vmsvga_is_vga_mode(h C.vmsvga_handle) C.bool {
	defer fatalBoundary("vmsvga_is_vga_mode")
	c := mustChip(h)
	return C.bool(c.IsVGAMode())
}

//export vmsvga_read_io4
func vmsvga_read_io4(h C.vmsvga_handle, addr C.uint32_t) C.uint32_t {
	defer fatalBoundary("vmsvga_read_io4")
	c := mustChip(h)
	return C.uint32_t(c.ReadIO4(uint32(addr)))
}

//export vmsvga_write_io4
func vmsvga_write_io4(h C.vmsvga_handle, addr, val C.uint32_t) {
	defer fatalBoundary("vmsvga_write_io4")
	c := mustChip(h)
	c.WriteIO4(uint32(addr), uint32(val))
}

//export vmsvga_output_info
func vmsvga_output_info(h C.vmsvga_handle, width, height, stride *C.uint32_t) {
	defer fatalBoundary("vmsvga_output_info")
	c := mustChip(h)
	w, hh, s := c.OutputInfo()
	if width != nil {
		*width = C.uint32_t(w)
	}
	if height != nil {
		*height = C.uint32_t(hh)
	}
	if stride != nil {
		*stride = C.uint32_t(s)
	}
}

//export vmsvga_output_read
func vmsvga_output_read(h C.vmsvga_handle, ptr *C.uint8_t, length C.size_t) C.bool {
	defer fatalBoundary("vmsvga_output_read")
	c := mustChip(h)
	if ptr == nil {
		panic("ffi: vmsvga_output_read: nil ptr")
	}
	out := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(length))
	return C.bool(c.OutputRead(out))
}

//export vmsvga_invalidate
func vmsvga_invalidate(h C.vmsvga_handle) {
	defer fatalBoundary("vmsvga_invalidate")
	c := mustChip(h)
	c.Invalidate()
}

// mustChip resolves a handle or panics (embedder misuse, category 2) - every
// exported entry point except config_default, new and free requires a handle
// that was returned by a prior vmsvga_new call and not yet freed; free
// returns without effect on an unknown handle.
func mustChip(h C.vmsvga_handle) *Chip {
	c := lookupChip(h)
	if c == nil {
		panic("ffi: unknown or freed handle")
	}
	return c
}
