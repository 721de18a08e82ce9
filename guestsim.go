// guestsim.go - Standalone guest-driver simulator for manual/automated end-to-end exercise

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

// guestsim drives a Chip in-process exactly as a real guest driver would:
// it maps its own shared memory, performs the register handshake, writes
// FIFO commands and pixels, and pulls frames back out through output_read.
// There is no cgo boundary here - the exported control surface in
// ffi_exports.go exists for out-of-process embedders; a Go tool in the same
// binary just calls the Chip methods directly.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type guestSimConfig struct {
	width       uint32
	height      uint32
	fifoWords   uint32
	frames      int
	interactive bool
	display     bool
	frameDelay  time.Duration
}

func defaultGuestSimConfig() guestSimConfig {
	return guestSimConfig{
		width:      640,
		height:     480,
		fifoWords:  4096,
		frames:     10,
		frameDelay: 200 * time.Millisecond,
	}
}

// parseGuestSimFlags owns the guest simulator's own CLI surface - unlike
// ChipConfig, which is always constructor-supplied, this tool's own
// parameters (which resolution to simulate, how many frames, whether to
// pop a viewer window) go through the standard flag package.
func parseGuestSimFlags(args []string) guestSimConfig {
	cfg := defaultGuestSimConfig()
	fs := flag.NewFlagSet("guestsim", flag.ExitOnError)
	fs.UintVar((*uint)(&cfg.width), "width", uint(cfg.width), "simulated display width")
	fs.UintVar((*uint)(&cfg.height), "height", uint(cfg.height), "simulated display height")
	fs.UintVar((*uint)(&cfg.fifoWords), "fifo-words", uint(cfg.fifoWords), "simulated FIFO region size, in words")
	fs.IntVar(&cfg.frames, "frames", cfg.frames, "number of frames to drive before exiting (ignored with -interactive)")
	fs.BoolVar(&cfg.interactive, "interactive", false, "read stdin: press Enter to issue one SYNC")
	fs.BoolVar(&cfg.display, "display", false, "pop an ebiten viewer window showing the produced frames")
	fs.Parse(args)
	return cfg
}

// mmapRegion allocates an anonymous, shared mapping of n bytes - standing in
// for the pages a real VMM would map from guest physical memory, closer to
// that model than a plain Go slice would be.
func mmapRegion(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_SHARED)
}

// runGuestSim wires up a Chip over mmap'd shared regions, performs the
// register handshake, then runs a simulated guest FIFO writer concurrently
// with a host frame reader until cfg.frames SYNCs have completed (or, in
// interactive mode, until the user presses 'q' or stdin closes).
func runGuestSim(cfg guestSimConfig) error {
	fifoBytes := int(fifoHeaderOffsetWords*WordSize) + int(cfg.fifoWords)*WordSize
	fbBytes := int(cfg.width) * int(cfg.height) * WordSize

	fifoBuf, err := mmapRegion(fifoBytes)
	if err != nil {
		return fmt.Errorf("guestsim: mmap fifo: %w", err)
	}
	defer unix.Munmap(fifoBuf)

	fbBuf, err := mmapRegion(fbBytes)
	if err != nil {
		return fmt.Errorf("guestsim: mmap framebuffer: %w", err)
	}
	defer unix.Munmap(fbBuf)

	chipCfg := DefaultChipConfig()
	chipCfg.FIFO = fifoBuf
	chipCfg.FB = fbBuf
	chipCfg.FIFOLen = uint32(fifoBytes)
	chipCfg.FBLen = uint32(fbBytes)
	chip := NewChip(chipCfg)
	defer chip.Free()

	// The embedder owns MIN/MAX: the guest's view of the FIFO region spans
	// everything past the two-word magic offset.
	fifoView := NewSharedMem(fifoBuf[fifoHeaderOffsetWords*WordSize:])
	fifoView.StoreRelease(fifoHdrMin, 0)
	fifoView.StoreRelease(fifoHdrMax, cfg.fifoWords*WordSize)

	chip.WriteIO4(SVGAIndexPort, SVGARegWidth)
	chip.WriteIO4(SVGAValuePort, cfg.width)
	chip.WriteIO4(SVGAIndexPort, SVGARegHeight)
	chip.WriteIO4(SVGAValuePort, cfg.height)
	chip.WriteIO4(SVGAIndexPort, SVGARegBitsPerPixel)
	chip.WriteIO4(SVGAValuePort, 32)
	chip.WriteIO4(SVGAIndexPort, SVGARegEnable)
	chip.WriteIO4(SVGAValuePort, 1)
	chip.WriteIO4(SVGAIndexPort, SVGARegConfigDone)
	chip.WriteIO4(SVGAValuePort, 1)

	var viewer VideoOutput
	if cfg.display {
		viewer, err = NewVideoOutput(VideoBackendEbiten)
		if err != nil {
			return fmt.Errorf("guestsim: video output: %w", err)
		}
		if err := viewer.SetDisplayConfig(DisplayConfig{Width: int(cfg.width), Height: int(cfg.height), Scale: 1}); err != nil {
			return fmt.Errorf("guestsim: set display config: %w", err)
		}
		if err := viewer.Start(); err != nil {
			return fmt.Errorf("guestsim: start viewer: %w", err)
		}
		defer viewer.Stop()
	}

	sim := &guestWriterState{chip: chip, fifoView: fifoView, cfg: cfg}

	outer, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(outer)
	g.Go(func() error {
		defer cancel() // the reader has no natural end of its own; the writer finishing ends the run
		return sim.writeLoop(ctx)
	})
	g.Go(func() error { return readLoop(ctx, chip, viewer, cfg) })

	return g.Wait()
}

// guestWriterState tracks the guest's own NEXT_CMD cursor; only the guest
// writer goroutine ever touches it, so it needs no lock of its own.
type guestWriterState struct {
	chip     *Chip
	fifoView *SharedMem
	cfg      guestSimConfig
	nextCmd  uint32
}

// writeLoop issues one UPDATE covering the whole framebuffer per iteration,
// then SYNCs the device, repeating cfg.frames times (or, in interactive
// mode, once per Enter keypress read from stdin).
func (s *guestWriterState) writeLoop(ctx context.Context) error {
	if s.cfg.interactive {
		return s.writeLoopInteractive(ctx)
	}
	for i := 0; i < s.cfg.frames; i++ {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		s.paintFrame(uint32(i))
		s.issueUpdate()
		s.chip.WriteIO4(SVGAIndexPort, SVGARegSync)
		s.chip.WriteIO4(SVGAValuePort, 1)
		time.Sleep(s.cfg.frameDelay)
	}
	return nil
}

// writeLoopInteractive puts stdin into raw mode (grounded in the same
// term.MakeRaw/term.Restore pairing the demo terminal host uses) and issues
// one SYNC per Enter keypress until the user presses 'q' or stdin closes.
func (s *guestWriterState) writeLoopInteractive(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("guestsim: stdin raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Fprintln(os.Stderr, "guestsim: press Enter to SYNC one frame, 'q' to quit")
	reader := bufio.NewReader(os.Stdin)
	frame := uint32(0)
	for {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		b, err := reader.ReadByte()
		if err != nil {
			return nil
		}
		if b == 'q' {
			return nil
		}
		if b == '\r' || b == '\n' {
			s.paintFrame(frame)
			frame++
			s.issueUpdate()
			s.chip.WriteIO4(SVGAIndexPort, SVGARegSync)
			s.chip.WriteIO4(SVGAValuePort, 1)
		}
	}
}

// paintFrame writes the built-in test pattern directly into the guest
// framebuffer region, as a real guest driver's rendering would.
func (s *guestWriterState) paintFrame(tick uint32) {
	words := TestPattern(int(s.cfg.width), int(s.cfg.height))
	fbView := NewSharedMem(s.chip.config.FB)
	shift := int(tick % uint32(s.cfg.width))
	for i, w := range words {
		fbView.WriteVolatile((i+shift)%fbView.Len(), w)
	}
}

// issueUpdate appends a single whole-framebuffer UPDATE command to the
// FIFO and publishes it by advancing NEXT_CMD with release ordering.
func (s *guestWriterState) issueUpdate() {
	args := []uint32{fifoCmdUpdate, 0, 0, s.cfg.width, s.cfg.height}
	cursor := s.nextCmd
	fifoLenBytes := s.cfg.fifoWords * WordSize
	for _, w := range args {
		idx := int(cursor / WordSize)
		s.fifoView.WriteVolatile(idx, w)
		cursor = (cursor + WordSize) % fifoLenBytes
	}
	s.nextCmd = cursor
	s.fifoView.StoreRelease(fifoHdrNextCmd, s.nextCmd)
}

// readLoop polls output_read for freshly published frames and, if a viewer
// was requested, blits each one into the demo window.
func readLoop(ctx context.Context, chip *Chip, viewer VideoOutput, cfg guestSimConfig) error {
	frame := make([]byte, int(cfg.width)*int(cfg.height)*4)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !chip.OutputRead(frame) {
				continue
			}
			if viewer != nil {
				if err := viewer.UpdateFrame(frame); err != nil {
					return err
				}
			}
		}
	}
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
