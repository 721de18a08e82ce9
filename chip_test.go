package main

import (
	"testing"
	"time"
)

func newTestChipConfig(fifoDataWords, width, height uint32) ChipConfig {
	fifoBytes := fifoHeaderOffsetWords*WordSize + fifoDataWords*WordSize
	fbBytes := width * height * WordSize
	return ChipConfig{
		FIFO:    make([]byte, fifoBytes),
		FB:      make([]byte, fbBytes),
		FIFOLen: fifoBytes,
		FBLen:   fbBytes,
		VRAMLen: defaultVRAMLen,
	}
}

// TestChipRegisterHandshake is spec fixture 5: the version-negotiation
// register behaves as a monotone non-increasing value under guest writes.
func TestChipRegisterHandshake(t *testing.T) {
	chip := NewChip(newTestChipConfig(16, 4, 4))
	defer chip.Free()

	chip.WriteIO4(SVGAIndexPort, SVGARegID)
	if got := chip.ReadIO4(SVGAValuePort); got != SVGAVer2 {
		t.Fatalf("initial ID read = %#x, want %#x", got, uint32(SVGAVer2))
	}

	chip.WriteIO4(SVGAValuePort, 0x90000001)
	if got := chip.ReadIO4(SVGAValuePort); got != 0x90000001 {
		t.Fatalf("ID after lowering write = %#x, want 0x90000001", got)
	}

	chip.WriteIO4(SVGAValuePort, 0xFFFFFFFF)
	if got := chip.ReadIO4(SVGAValuePort); got != 0x90000001 {
		t.Fatalf("ID after raising write = %#x, want unchanged 0x90000001", got)
	}
}

// TestChipIsVGAModeTracksEnable verifies is_vga_mode is the negation of
// ENABLE.
func TestChipIsVGAModeTracksEnable(t *testing.T) {
	chip := NewChip(newTestChipConfig(16, 4, 4))
	defer chip.Free()

	if !chip.IsVGAMode() {
		t.Fatal("new chip should start in VGA mode")
	}

	chip.WriteIO4(SVGAIndexPort, SVGARegEnable)
	chip.WriteIO4(SVGAValuePort, 1)
	if chip.IsVGAMode() {
		t.Fatal("IsVGAMode should be false once ENABLE=1")
	}
}

// TestChipWidthHeightWriteWhileFifoEnabledIsFatal verifies a guest cannot
// resize while the worker is configured and running.
func TestChipWidthHeightWriteWhileFifoEnabledIsFatal(t *testing.T) {
	cfg := newTestChipConfig(16, 4, 4)
	chip := NewChip(cfg)
	defer chip.Free()

	// A valid, empty FIFO header so the worker starts cleanly.
	fifoView := NewSharedMem(cfg.FIFO[fifoHeaderOffsetWords*WordSize:])
	fifoView.StoreRelease(fifoHdrMin, 4*WordSize)
	fifoView.StoreRelease(fifoHdrMax, 16*WordSize)
	fifoView.StoreRelease(fifoHdrNextCmd, 4*WordSize)
	fifoView.StoreRelease(fifoHdrStop, 4*WordSize)

	chip.WriteIO4(SVGAIndexPort, SVGARegWidth)
	chip.WriteIO4(SVGAValuePort, 4)
	chip.WriteIO4(SVGAIndexPort, SVGARegHeight)
	chip.WriteIO4(SVGAValuePort, 4)
	chip.WriteIO4(SVGAIndexPort, SVGARegBitsPerPixel)
	chip.WriteIO4(SVGAValuePort, 32)
	chip.WriteIO4(SVGAIndexPort, SVGARegConfigDone)
	chip.WriteIO4(SVGAValuePort, 1)
	defer func() {
		chip.WriteIO4(SVGAIndexPort, SVGARegConfigDone)
		chip.WriteIO4(SVGAValuePort, 0)
	}()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing WIDTH while FIFO enabled")
		}
	}()
	chip.WriteIO4(SVGAIndexPort, SVGARegWidth)
	chip.WriteIO4(SVGAValuePort, 8)
}

// TestChipBitsPerPixelMustBe32 verifies the fatal assertion on a non-32bpp
// write.
func TestChipBitsPerPixelMustBe32(t *testing.T) {
	chip := NewChip(newTestChipConfig(16, 4, 4))
	defer chip.Free()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on BITS_PER_PIXEL != 32")
		}
	}()
	chip.WriteIO4(SVGAIndexPort, SVGARegBitsPerPixel)
	chip.WriteIO4(SVGAValuePort, 16)
}

// TestChipConfigureRenderRead is spec fixture 6: the WIDTH/HEIGHT/
// BITS_PER_PIXEL/CONFIG_DONE handshake, a guest-issued UPDATE placed after
// the four header words, and a successful output_read, followed by a clean
// CONFIG_DONE=0 teardown.
func TestChipConfigureRenderRead(t *testing.T) {
	const width, height = uint32(4), uint32(4)
	const fifoDataWords = 16

	cfg := newTestChipConfig(fifoDataWords, width, height)
	chip := NewChip(cfg)
	defer chip.Free()

	fifoView := NewSharedMem(cfg.FIFO[fifoHeaderOffsetWords*WordSize:])
	fifoView.StoreRelease(fifoHdrMin, 4*WordSize)
	fifoView.StoreRelease(fifoHdrMax, fifoDataWords*WordSize)
	fifoView.StoreRelease(fifoHdrNextCmd, 4*WordSize)
	fifoView.StoreRelease(fifoHdrStop, 4*WordSize)

	chip.WriteIO4(SVGAIndexPort, SVGARegWidth)
	chip.WriteIO4(SVGAValuePort, width)
	chip.WriteIO4(SVGAIndexPort, SVGARegHeight)
	chip.WriteIO4(SVGAValuePort, height)
	chip.WriteIO4(SVGAIndexPort, SVGARegBitsPerPixel)
	chip.WriteIO4(SVGAValuePort, 32)
	chip.WriteIO4(SVGAIndexPort, SVGARegConfigDone)
	chip.WriteIO4(SVGAValuePort, 1)

	args := []uint32{fifoCmdUpdate, 0, 0, width, height}
	for i, w := range args {
		fifoView.WriteVolatile(4+i, w)
	}
	fifoView.StoreRelease(fifoHdrNextCmd, uint32(4+len(args))*WordSize)

	chip.WriteIO4(SVGAIndexPort, SVGARegSync)
	chip.WriteIO4(SVGAValuePort, 1)

	out := make([]byte, width*height*4)
	deadline := time.Now().Add(2 * time.Second)
	var ok bool
	for time.Now().Before(deadline) {
		if chip.OutputRead(out) {
			ok = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !ok {
		t.Fatal("output_read never succeeded within the deadline")
	}

	gotW, gotH, gotStride := chip.OutputInfo()
	if gotW != width || gotH != height || gotStride != width*4 {
		t.Fatalf("OutputInfo = (%d,%d,%d), want (%d,%d,%d)", gotW, gotH, gotStride, width, height, width*4)
	}

	chip.WriteIO4(SVGAIndexPort, SVGARegConfigDone)
	chip.WriteIO4(SVGAValuePort, 0)
}

// TestChipOutputReadLengthMismatch verifies a wrong-size buffer is
// rejected without copying.
func TestChipOutputReadLengthMismatch(t *testing.T) {
	chip := NewChip(newTestChipConfig(16, 4, 4))
	defer chip.Free()

	// Publish a 4x4 frame so the read reaches the length check.
	w := chip.fifo.output.BorrowWrite()
	w.Buffer(4 * 4)
	w.Close()

	if chip.OutputRead(make([]byte, 1)) {
		t.Fatal("OutputRead with a 1-byte buffer unexpectedly succeeded")
	}
}
