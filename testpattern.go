// testpattern.go - Built-in BGRA test-card frame generator

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
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// splashPNGBase64 is a tiny embedded 32x32 checkerboard card, scaled up by
// TestPattern to whatever resolution the guest simulator negotiates. Kept
// as a literal rather than a go:embed asset so this file has no sibling
// data file to ship.
const splashPNGBase64 = `
iVBORw0KGgoAAAANSUhEUgAAACAAAAAgCAYAAABzenr0AAAARElEQVR42mMQsc3+j4xfHLJCwbSWZxh1wIA7gN4WosuPOmDgHTCa
C0YdMJoLRh0wmgtGHTCaC0YdMJoLRh0wmgtGvAMAgPs8iBZkbUcAAAAASUVORK5CYII=`

// TestPattern renders the built-in splash/test-card as a BGRA frame sized
// width*height words, bilinearly scaled from the embedded source image via
// golang.org/x/image/draw - this module's one decode/scale dependency,
// exercised here rather than left dead in go.mod.
func TestPattern(width, height int) []uint32 {
	src := decodeSplashImage()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	words := make([]uint32, width*height)
	for i := 0; i < width*height; i++ {
		r := dst.Pix[i*4+0]
		g := dst.Pix[i*4+1]
		b := dst.Pix[i*4+2]
		a := dst.Pix[i*4+3]
		// BGRA word, little-endian byte order: B is the low byte.
		words[i] = uint32(b) | uint32(g)<<8 | uint32(r)<<16 | uint32(a)<<24
	}
	return words
}

func decodeSplashImage() image.Image {
	raw, err := base64.StdEncoding.DecodeString(stripNewlines(splashPNGBase64))
	if err != nil {
		panic("testpattern: embedded splash image is not valid base64: " + err.Error())
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		panic("testpattern: embedded splash image is not a valid PNG: " + err.Error())
	}
	return img
}

func stripNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
