// chip.go - Register file, I/O port demux, and the exported control surface

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

import "sync"

// ChipConfig names the embedder-supplied shared regions: base pointers and
// lengths of the guest-visible FIFO and framebuffer memory.
type ChipConfig struct {
	FIFO    []byte
	FB      []byte
	FIFOLen uint32
	FBLen   uint32
	VRAMLen uint32
}

// DefaultChipConfig populates a ChipConfig with defaults - the only default
// with a concrete value is VRAMLen (128 MiB); FIFO/FB must be supplied by
// the embedder before New.
func DefaultChipConfig() ChipConfig {
	return ChipConfig{VRAMLen: defaultVRAMLen}
}

// Chip is the device model's register file and control surface. All access
// to its fields from foreign entry points (PIO, output reads) is serialized
// by mu.
type Chip struct {
	mu sync.Mutex

	enabled           bool
	pendingIOAddr     uint32
	width, height     uint32
	negotiatedVersion uint32
	config            ChipConfig

	worker *workerHandle
	fifo   *FifoState
}

// NewChip constructs a device over the embedder's shared regions. Asserts
// non-nil FIFO and framebuffer slices (embedder misuse, category 2, fatal)
// and zero-initializes the FIFO header.
func NewChip(cfg ChipConfig) *Chip {
	initLogging()

	if cfg.FIFO == nil {
		panic("chip: nil FIFO region")
	}
	if cfg.FB == nil {
		panic("chip: nil framebuffer region")
	}

	fifoView := NewSharedMem(cfg.FIFO[fifoHeaderOffsetWords*WordSize:])
	for i := 0; i < 4; i++ {
		fifoView.StoreRelease(i, 0)
	}
	fbView := NewSharedMem(cfg.FB)

	c := &Chip{
		negotiatedVersion: SVGAVer2,
		config:            cfg,
		fifo: &FifoState{
			fifoMem: fifoView,
			fbMem:   fbView,
			output:  NewMailbox(),
		},
	}
	c.fifo.resumeCond = sync.NewCond(&c.fifo.resumeMu)
	return c
}

// Free destroys the device, joining the worker if one is running.
func (c *Chip) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWorkerLocked()
}

// IsVGAMode returns whether the device is still in legacy VGA mode
// (i.e. not yet enabled into SVGA-native mode).
func (c *Chip) IsVGAMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.enabled
}

// ReadIO4 services a 4-byte read at the given PIO port offset.
func (c *Chip) ReadIO4(addr uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch addr {
	case SVGAIndexPort:
		return c.pendingIOAddr
	case SVGAValuePort:
		return c.readRegLocked(c.pendingIOAddr)
	default:
		logf("chip", "read_io4: unknown port %d", addr)
		return 0
	}
}

// WriteIO4 services a 4-byte write at the given PIO port offset.
func (c *Chip) WriteIO4(addr, val uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch addr {
	case SVGAIndexPort:
		c.pendingIOAddr = val
	case SVGAValuePort:
		c.writeRegLocked(c.pendingIOAddr, val)
	default:
		logf("chip", "write_io4: unknown port %d", addr)
	}
}

func (c *Chip) readRegLocked(idx uint32) uint32 {
	switch idx {
	case SVGARegID:
		return c.negotiatedVersion
	case SVGARegEnable:
		if c.enabled {
			return 1
		}
		return 0
	case SVGARegWidth:
		return c.width
	case SVGARegHeight:
		return c.height
	case SVGARegBytesPerLine:
		return c.width * 4
	case SVGARegFBSize:
		return c.config.FBLen
	case SVGARegCapabilities:
		return 0
	case SVGARegMemSize:
		return c.config.FIFOLen
	case SVGARegBusy:
		if c.fifo.busy.Load() {
			return 1
		}
		return 0
	default:
		logf("chip", "read_reg: unknown register %d", idx)
		return 0
	}
}

func (c *Chip) writeRegLocked(idx, val uint32) {
	switch idx {
	case SVGARegID:
		if val < c.negotiatedVersion {
			c.negotiatedVersion = val
		}
	case SVGARegEnable:
		c.enabled = val != 0
	case SVGARegWidth:
		if c.fifo.enabled.Load() {
			panic("chip: WIDTH write while FIFO enabled")
		}
		c.width = val
	case SVGARegHeight:
		if c.fifo.enabled.Load() {
			panic("chip: HEIGHT write while FIFO enabled")
		}
		c.height = val
	case SVGARegBitsPerPixel:
		if val != 32 {
			panic("chip: BITS_PER_PIXEL must be 32")
		}
	case SVGARegConfigDone:
		c.handleConfigDoneLocked(val)
	case SVGARegSync:
		c.handleSyncLocked()
	default:
		logf("chip", "write_reg: unknown register %d", idx)
	}
}

func (c *Chip) handleConfigDoneLocked(val uint32) {
	if val != 0 {
		c.fifo.enabled.Store(true) // seq-cst transition to true
		c.startWorkerLocked()
	} else {
		c.stopWorkerLocked()
	}
}

func (c *Chip) handleSyncLocked() {
	c.fifo.busy.Store(true)
	c.fifo.resumeMu.Lock()
	c.fifo.resumeCond.Signal()
	c.fifo.resumeMu.Unlock()

	if c.worker != nil {
		select {
		case <-c.worker.done:
			// previous worker already exited; respawn
			c.worker = nil
			c.startWorkerLocked()
		default:
		}
	} else {
		c.startWorkerLocked()
	}
}

func (c *Chip) startWorkerLocked() {
	if c.worker != nil {
		return
	}
	c.worker = startFifoWorker(c.width, c.height, c.fifo)
}

func (c *Chip) stopWorkerLocked() {
	if c.worker == nil {
		return
	}
	c.fifo.enabled.Store(false)
	c.fifo.resumeMu.Lock()
	c.fifo.resumeCond.Signal()
	c.fifo.resumeMu.Unlock()
	<-c.worker.done
	c.worker = nil
}

// OutputInfo returns the current resolution and row stride.
func (c *Chip) OutputInfo() (width, height, stride uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height, c.width * 4
}

// OutputRead copies the latest published frame into out. Returns false,
// logging a warning, if no frame has been published yet or out's length
// does not match the current frame size exactly.
func (c *Chip) OutputRead(out []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	reader := c.fifo.output.BorrowRead()
	if reader == nil {
		logf("chip", "output_read: no frame published yet")
		return false
	}
	defer reader.Close()

	data := reader.Data()
	if len(data)*4 != len(out) {
		logf("chip", "output_read: length mismatch, want %d got %d", len(data)*4, len(out))
		return false
	}
	for i, w := range data {
		out[i*4+0] = byte(w)
		out[i*4+1] = byte(w >> 8)
		out[i*4+2] = byte(w >> 16)
		out[i*4+3] = byte(w >> 24)
	}
	return true
}

// Invalidate is currently a no-op hook; the worker always renders a fresh
// frame every iteration.
func (c *Chip) Invalidate() {}
