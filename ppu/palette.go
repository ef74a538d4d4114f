package ppu

import (
	_ "embed"
	"image/color"
)

//go:embed assets/ntsc.pal
var defaultPaletteBytes []byte

// Palette is the fixed 64-entry index-to-RGBA lookup table the PPU core
// uses to turn the 0..63 color value stored in palette RAM into a
// displayable color. It is loaded once from a 192-byte binary resource: 64 RGB
// triples, no header.
type Palette [64]color.RGBA

// DefaultPalette is decoded from the embedded NTSC palette resource.
var DefaultPalette = must(LoadPalette(defaultPaletteBytes))

// LoadPalette decodes a 192-byte palette resource (64 RGB triples).
func LoadPalette(data []byte) (Palette, error) {
	var p Palette
	if len(data) != 64*3 {
		return p, errInvalidPaletteSize(len(data))
	}
	for i := range p {
		p[i] = color.RGBA{
			R: data[i*3],
			G: data[i*3+1],
			B: data[i*3+2],
			A: 0xff,
		}
	}
	return p, nil
}

// Get returns the RGBA color for a 0..63 palette index; out-of-range
// indices wrap modulo 64, matching hardware's 6-bit color index.
func (p Palette) Get(index uint8) color.RGBA {
	return p[int(index)%len(p)]
}

type errInvalidPaletteSize int

func (e errInvalidPaletteSize) Error() string {
	return "ppu: palette resource must be exactly 192 bytes"
}

func must(p Palette, err error) Palette {
	if err != nil {
		panic(err)
	}
	return p
}
