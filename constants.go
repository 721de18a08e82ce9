// constants.go - SVGA-II register and protocol constants

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

// PIO port offsets within the device's I/O window. Every access is 4 bytes.
const (
	SVGAIndexPort = 0
	SVGAValuePort = 1
)

// SVGAVer2 is the negotiated device identity for protocol version 2.
const SVGAVer2 = 0x90000002

// Register indices, full table from the original device. Only the subset
// handled in chip.go's readRegLocked/writeRegLocked is load-bearing; the
// rest fall through the unknown-register path (log, read as 0, ignore
// writes).
const (
	SVGARegID               = 0
	SVGARegEnable            = 1
	SVGARegWidth             = 2
	SVGARegHeight            = 3
	SVGARegMaxWidth          = 4
	SVGARegMaxHeight         = 5
	SVGARegDepth             = 6
	SVGARegBitsPerPixel      = 7
	SVGARegPseudocolor       = 8
	SVGARegRedMask           = 9
	SVGARegGreenMask         = 10
	SVGARegBlueMask          = 11
	SVGARegBytesPerLine      = 12
	SVGARegFBStart           = 13
	SVGARegFBOffset          = 14
	SVGARegVRAMSize          = 15
	SVGARegFBSize            = 16
	SVGARegCapabilities      = 17
	SVGARegMemStart          = 18 // deprecated
	SVGARegMemSize           = 19
	SVGARegConfigDone        = 20
	SVGARegSync              = 21
	SVGARegBusy              = 22
	SVGARegGuestID           = 23
	SVGARegCursorID          = 24 // deprecated
	SVGARegCursorX           = 25 // deprecated
	SVGARegCursorY           = 26 // deprecated
	SVGARegCursorOn          = 27 // deprecated
	SVGARegHostBitsPerPixel  = 28 // deprecated
	SVGARegScratchSize       = 29
	SVGARegMemRegs           = 30
	SVGARegNumDisplays       = 31 // deprecated
	SVGARegPitchlock         = 32
	SVGARegIRQMask           = 33
)

// fifoHeaderOffsetWords is the "magic" two-word skip past the raw FIFO
// base pointer: the first two guest-owned words belong to a metadata
// convention unrelated to the host's MIN/MAX/NEXT_CMD/STOP header.
// Unexplained in the source this was distilled from; preserved bit-for-bit.
const fifoHeaderOffsetWords = 2

// FIFO header word indices, relative to the host's view (i.e. already past
// fifoHeaderOffsetWords).
const (
	fifoHdrMin = iota
	fifoHdrMax
	fifoHdrNextCmd
	fifoHdrStop
)

// defaultVRAMLen is ChipConfig's default vram_len: 128 MiB.
const defaultVRAMLen = 128 * 1024 * 1024

// FIFO command opcodes.
const (
	fifoCmdUpdate = 1
	fifoCmdFence  = 30
)

const fifoCmdUpdateArgc = 4
const fifoCmdFenceArgc = 1

// Version is the module's own release tag, reported by printFeatures.
const Version = "0.1.0"
