// video_output_ebiten.go - ebiten-backed demo viewer window

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

	"github.com/hajimehoshi/ebiten/v2"
)

func init() {
	compiledFeatures = append(compiledFeatures, "video:ebiten")
}

// EbitenOutput blits Chip frames (pulled by the caller via OutputRead) into
// an ebiten window. Ebiten's pixel format is RGBA; the Chip's frames are
// BGRA, so UpdateFrame swaps R/B per pixel on the way in.
type EbitenOutput struct {
	mu          sync.RWMutex
	running     bool
	window      *ebiten.Image
	width       int
	height      int
	scale       int
	fullscreen  bool
	frameBuffer []byte // RGBA, ready for ebiten.Image.WritePixels
	frameCount  uint64
	readyChan   chan struct{}
}

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:       640,
		height:      480,
		scale:       1,
		frameBuffer: make([]byte, 640*480*4),
		readyChan:   make(chan struct{}, 1),
	}, nil
}

func (eo *EbitenOutput) Start() error {
	eo.mu.Lock()
	if eo.running {
		eo.mu.Unlock()
		return nil
	}
	eo.running = true
	w, h, scale, fullscreen := eo.width, eo.height, eo.scale, eo.fullscreen
	eo.mu.Unlock()

	ebiten.SetWindowSize(w*scale, h*scale)
	ebiten.SetWindowTitle("vmsvga demo viewer")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		if err := ebiten.RunGame(eo); err != nil {
			logf("video", "ebiten run loop exited: %v", err)
		}
	}()

	<-eo.readyChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.mu.Lock()
	eo.running = false
	eo.mu.Unlock()
	return nil
}

func (eo *EbitenOutput) IsStarted() bool {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return eo.running
}

// UpdateFrame accepts a full BGRA frame (the exact layout Chip.OutputRead
// produces) sized width*height*4 and converts it to RGBA for display.
func (eo *EbitenOutput) UpdateFrame(frame []byte) error {
	eo.mu.Lock()
	defer eo.mu.Unlock()
	if len(frame) != len(eo.frameBuffer) {
		return &VideoError{Operation: "update frame", Details: "frame size mismatch"}
	}
	for i := 0; i < len(frame); i += 4 {
		eo.frameBuffer[i+0] = frame[i+2] // R (BGRA byte 2)
		eo.frameBuffer[i+1] = frame[i+1] // G
		eo.frameBuffer[i+2] = frame[i+0] // B (BGRA byte 0)
		eo.frameBuffer[i+3] = frame[i+3] // A
	}
	return nil
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.mu.Lock()
	defer eo.mu.Unlock()

	width, height := config.Width, config.Height
	if width <= 0 {
		width = eo.width
	}
	if height <= 0 {
		height = eo.height
	}
	eo.width, eo.height = width, height
	eo.scale = clampScale(config.Scale)
	eo.fullscreen = config.Fullscreen

	newSize := eo.width * eo.height * 4
	if len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return DisplayConfig{Width: eo.width, Height: eo.height, Scale: eo.scale, Fullscreen: eo.fullscreen}
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return eo.frameCount
}

// Update implements ebiten.Game. There is no keyboard/input path for a
// display-only adapter; this only watches for the window being closed or
// for Stop having been called.
func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	eo.mu.RLock()
	running := eo.running
	eo.mu.RUnlock()
	if !running {
		return ebiten.Termination
	}
	return nil
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	eo.mu.Lock()
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}
	eo.window.WritePixels(eo.frameBuffer)
	eo.frameCount++
	eo.mu.Unlock()

	screen.DrawImage(eo.window, nil)

	select {
	case eo.readyChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return eo.width, eo.height
}
