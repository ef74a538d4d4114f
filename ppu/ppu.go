package ppu

import "image/color"

const (
	FrameWidth  = 256
	FrameHeight = 240
)

// PPU is the per-dot 2C02 rendering core: it owns the memory-mapped
// registers, runs the background tile-shift pipeline and sprite
// evaluation, and composites a completed frame into FrameBuffer.
type PPU struct {
	Registers *Registers
	Bus       *Bus
	Palette   Palette

	Scanline int16
	Dot      int16

	FrameBuffer [FrameWidth * FrameHeight]color.RGBA

	frameComplete bool
	requireNMI    bool
	oddFrame      bool

	bgShiftPatternLow, bgShiftPatternHigh uint16
	bgShiftAttribLow, bgShiftAttribHigh   uint16

	nextTileID     uint8
	nextTileAttrib uint8
	nextTileLow    uint8
	nextTileHigh   uint8

	sprites               [8]spriteSlot
	spriteCount           uint8
	spriteZeroInSecondary bool
	spriteZeroRendering   bool
	oamStartAddress       uint8
}

func New(bus *Bus) *PPU {
	return &PPU{
		Registers: NewRegisters(bus),
		Bus:       bus,
		Palette:   DefaultPalette,
	}
}

func (p *PPU) AttachCartridge(c Cartridge) { p.Bus.AttachCartridge(c) }

// ReadRegister, WriteRegister and PeekRegister are the CPU bus's window
// onto the PPU: addr is any address in $2000-$3FFF, mirrored every 8 bytes.
func (p *PPU) ReadRegister(addr uint16) uint8     { return p.Registers.ReadU8(addr) }
func (p *PPU) WriteRegister(addr uint16, v uint8) { p.Registers.WriteU8(addr, v) }
func (p *PPU) PeekRegister(addr uint16) uint8     { return p.Registers.PeekU8(addr) }

// ConsumeNMI reports and clears a pending vblank NMI request.
func (p *PPU) ConsumeNMI() bool {
	if p.requireNMI {
		p.requireNMI = false
		return true
	}
	return false
}

// FrameComplete reports whether the visible scanlines of a frame have been
// composited into FrameBuffer. The flag is set when VBlank starts
// (scanline 241, dot 1) and cleared by ClearFrameComplete or at the start
// of the next frame's visible scanlines.
func (p *PPU) FrameComplete() bool { return p.frameComplete }
func (p *PPU) ClearFrameComplete() { p.frameComplete = false }

// Pixel returns the composited color at (x, y) of the most recent frame.
func (p *PPU) Pixel(x, y int) color.RGBA { return p.FrameBuffer[y*FrameWidth+x] }

// Clock advances the PPU by one dot. The CPU bus calls this three times
// per CPU cycle.
func (p *PPU) Clock() {
	switch {
	case p.Scanline <= 239 || p.Scanline == 261:
		p.clockRenderLine()
	case p.Scanline == 241 && p.Dot == 1:
		p.Registers.Status |= StatusVBlank
		p.frameComplete = true
		if p.Registers.Control&CtrlVBlankNMI != 0 {
			p.requireNMI = true
		}
	}
	p.advanceDot()
}

func (p *PPU) advanceDot() {
	p.Dot++
	if p.Dot > 340 {
		// On the pre-render line, an odd frame with rendering enabled skips
		// dot 0 of the next scanline (the well-known one-dot-shorter frame).
		skipIdleDot := p.Scanline == 261 && p.oddFrame && p.Registers.Mask.isRendering()
		p.Dot = 0
		if skipIdleDot {
			p.Dot = 1
		}
		p.Scanline++
		if p.Scanline > 261 {
			p.Scanline = 0
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) clockRenderLine() {
	if p.Scanline == 261 && p.Dot == 1 {
		p.Registers.Status &^= StatusVBlank | StatusSprite0Hit | StatusSpriteOverflow
	}
	if p.Dot == 0 && p.Scanline >= 0 && p.Scanline <= 239 {
		p.frameComplete = false
	}

	if p.Dot == 65 {
		p.oamStartAddress = p.Registers.OAMAddress
	}
	if p.Dot >= 258 && p.Dot <= 320 {
		p.Registers.OAMAddress = 0
	}

	rendering := p.Registers.Mask.isRendering()

	switch {
	case p.Dot >= 1 && p.Dot <= 256:
		p.loadBackgroundByte()
		p.updateShifters()
		if rendering {
			if p.Dot == 256 {
				p.Registers.v = p.Registers.v.scrollFineY()
			} else if p.Dot%8 == 0 {
				p.Registers.v = p.Registers.v.scrollCoarseX()
			}
		}
		if p.Scanline >= 0 && p.Scanline <= 239 {
			p.renderPixel()
		}
	case p.Dot == 257:
		p.updateShifters()
		if p.Scanline >= 0 && p.Scanline <= 239 {
			p.evaluateSprites()
		}
		if rendering {
			p.Registers.v = p.Registers.v.setX(p.Registers.t)
		}
	case p.Dot >= 280 && p.Dot <= 304:
		if p.Scanline == 261 && rendering {
			p.Registers.v = p.Registers.v.setY(p.Registers.t)
		}
	case p.Dot >= 321 && p.Dot <= 336:
		p.loadBackgroundByte()
		p.updateShifters()
		if rendering && p.Dot%8 == 0 {
			p.Registers.v = p.Registers.v.scrollCoarseX()
		}
	case p.Dot == 338 || p.Dot == 340:
		if rendering {
			p.nextTileID = p.Bus.Read(p.Registers.v.nametableAddress())
		}
	}
}

// loadBackgroundByte runs the 8-dot nametable/attribute/pattern fetch
// sequence. Shifters are reloaded with the previous fetch's result right
// before the next tile ID is fetched.
func (p *PPU) loadBackgroundByte() {
	switch p.Dot % 8 {
	case 1:
		p.reloadShifters()
		p.nextTileID = p.Bus.Read(p.Registers.v.nametableAddress())
	case 3:
		attr := p.Bus.Read(p.Registers.v.attributeAddress())
		p.nextTileAttrib = p.Registers.v.shiftAttribute(attr)
	case 5:
		fineY := uint8(p.Registers.v.get(maskFineY))
		tile := uint16(p.nextTileID) + p.Registers.Control.backgroundTableOffset()
		p.nextTileLow, p.nextTileHigh = p.Bus.ReadPatternTilePlanes(tile, fineY)
	}
}

func (p *PPU) reloadShifters() {
	p.bgShiftPatternLow = (p.bgShiftPatternLow &^ 0x00ff) | uint16(p.nextTileLow)
	p.bgShiftPatternHigh = (p.bgShiftPatternHigh &^ 0x00ff) | uint16(p.nextTileHigh)

	var lowFill, highFill uint16
	if p.nextTileAttrib&1 != 0 {
		lowFill = 0x00ff
	}
	if p.nextTileAttrib&2 != 0 {
		highFill = 0x00ff
	}
	p.bgShiftAttribLow = (p.bgShiftAttribLow &^ 0x00ff) | lowFill
	p.bgShiftAttribHigh = (p.bgShiftAttribHigh &^ 0x00ff) | highFill
}

func (p *PPU) updateShifters() {
	if !p.Registers.Mask.canShowBackground() {
		return
	}
	p.bgShiftPatternLow <<= 1
	p.bgShiftPatternHigh <<= 1
	p.bgShiftAttribLow <<= 1
	p.bgShiftAttribHigh <<= 1
}

func (p *PPU) backgroundPixel(x int) (pixel, palette uint8) {
	if !p.Registers.Mask.canShowBackgroundAt(x) {
		return 0, 0
	}
	bit := uint16(0x8000) >> p.Registers.fineX
	if p.bgShiftPatternLow&bit != 0 {
		pixel |= 1
	}
	if p.bgShiftPatternHigh&bit != 0 {
		pixel |= 2
	}
	if p.bgShiftAttribLow&bit != 0 {
		palette |= 1
	}
	if p.bgShiftAttribHigh&bit != 0 {
		palette |= 2
	}
	return pixel, palette
}

func (p *PPU) spritePixel(x int) (pixel, palette uint8, behindBackground, isSpriteZero bool) {
	if !p.Registers.Mask.canShowSpritesAt(x) {
		return 0, 0, false, false
	}
	for i := uint8(0); i < p.spriteCount; i++ {
		s := &p.sprites[i]
		idx := s.colorIndex(int16(x))
		if idx == 0 {
			continue
		}
		return idx, s.palette() + 4, s.behind(), i == 0 && p.spriteZeroRendering
	}
	return 0, 0, false, false
}

func (p *PPU) renderPixel() {
	x := int(p.Dot - 1)
	y := int(p.Scanline)

	bgPixel, bgPalette := p.backgroundPixel(x)
	spPixel, spPalette, spBehind, isSpriteZero := p.spritePixel(x)

	var finalPixel, finalPalette uint8
	switch {
	case bgPixel == 0 && spPixel == 0:
		finalPixel, finalPalette = 0, 0
	case bgPixel == 0:
		finalPixel, finalPalette = spPixel, spPalette
	case spPixel == 0:
		finalPixel, finalPalette = bgPixel, bgPalette
	default:
		if isSpriteZero && x != 255 {
			p.Registers.Status |= StatusSprite0Hit
		}
		if spBehind {
			finalPixel, finalPalette = bgPixel, bgPalette
		} else {
			finalPixel, finalPalette = spPixel, spPalette
		}
	}

	colorIndex := p.Bus.Read(0x3f00 + uint16(finalPalette)*4 + uint16(finalPixel))
	p.FrameBuffer[y*FrameWidth+x] = p.Palette.Get(colorIndex)
}

func (p *PPU) oamByte(offset int) uint8 { return p.Registers.OAM[offset&0xff] }

func spriteYMatches(y uint8, scanline int16, height uint8) bool {
	top := int16(y)
	return scanline >= top && scanline < top+int16(height)
}

// evaluateSprites fills the eight-deep secondary sprite buffer for the
// next scanline. Once the buffer is full, real hardware keeps scanning OAM
// for the overflow flag but does so with its evaluation counter no longer
// reset between the Y/tile/attribute/X sub-steps, producing a stride of 5
// bytes instead of 4 on non-matching entries; this makes later sprites
// line up on the wrong byte and can set SPRITE_OVERFLOW spuriously. That
// glitch is reproduced here rather than avoided.
func (p *PPU) evaluateSprites() {
	p.spriteCount = 0
	p.spriteZeroInSecondary = false
	height := p.Registers.Control.spriteHeight()
	scanline := p.Scanline

	byteIdx := int(p.oamStartAddress)
	overflowMode := false
	for n := 0; n < 64; n++ {
		y := p.oamByte(byteIdx)
		matches := spriteYMatches(y, scanline, height)

		if !overflowMode {
			if matches {
				s := spriteSlot{
					y:          y,
					tile:       p.oamByte(byteIdx + 1),
					attributes: p.oamByte(byteIdx + 2),
					x:          p.oamByte(byteIdx + 3),
					oamIndex:   uint8(n),
				}
				if n == 0 {
					p.spriteZeroInSecondary = true
				}
				p.resolveSpritePlane(&s, scanline)
				p.sprites[p.spriteCount] = s
				p.spriteCount++
			}
			byteIdx += 4
			if p.spriteCount == 8 {
				overflowMode = true
			}
			continue
		}

		if matches {
			p.Registers.Status |= StatusSpriteOverflow
			byteIdx += 4
		} else {
			byteIdx += 5
		}
	}
	p.spriteZeroRendering = p.spriteZeroInSecondary
}

func (p *PPU) resolveSpritePlane(s *spriteSlot, scanline int16) {
	height := p.Registers.Control.spriteHeight()
	fineY := scanline - int16(s.y)
	if s.flipVertical() {
		fineY = int16(height) - 1 - fineY
	}

	var tile uint16
	if height == 16 {
		table := uint16(s.tile&1) * 0x100
		base := uint16(s.tile &^ 1)
		if fineY >= 8 {
			base++
			fineY -= 8
		}
		tile = table | base
	} else {
		tile = uint16(s.tile) | p.Registers.Control.spriteTableOffset()
	}
	s.patternLow, s.patternHigh = p.Bus.ReadPatternTilePlanes(tile, uint8(fineY))
}
