// Package mos6502 implements the emulated 6502 CPU ("2A03"): its bus,
// opcode table, controllers, and execution core.
package mos6502

import "github.com/bdwalton/nesgo/ppu"

const ramSize = 2048

// Cartridge is the subset of cartridge.Cartridge the CPU bus needs.
type Cartridge interface {
	CpuRead(addr uint16) (uint8, bool)
	CpuWrite(addr uint16, value uint8)
}

// Bus is the CPU's address space: 2 KiB RAM mirrored through $1FFF, the
// PPU register window, two controller ports, and the cartridge window.
// Every public read/write ticks the PPU three times, keeping the two
// devices in lockstep at the documented 1:3 clock ratio.
type Bus struct {
	RAM          [ramSize]uint8
	PPU          *ppu.PPU
	Controllers  [2]*Controller
	CyclesToWait uint32
	CyclesTotal  uint64

	cartridge Cartridge
	openBus   uint8
}

func NewBus(p *ppu.PPU) *Bus {
	b := &Bus{PPU: p}
	b.Controllers[0] = &Controller{}
	b.Controllers[1] = &Controller{}
	return b
}

func (b *Bus) AttachCartridge(c Cartridge) { b.cartridge = c }

// RequireNMI reports and clears the PPU's latched NMI request. Called once
// per instruction, at the instruction-fetch boundary.
func (b *Bus) RequireNMI() bool { return b.PPU.ConsumeNMI() }

// clock accounts one CPU cycle and runs the PPU for the three dots that
// elapse during it.
func (b *Bus) clock() {
	b.CyclesToWait++
	b.CyclesTotal++
	for i := 0; i < 3; i++ {
		b.PPU.Clock()
	}
}

func (b *Bus) decodeRead(addr uint16) uint8 {
	switch {
	case addr <= 0x1fff:
		return b.RAM[addr%ramSize]
	case addr <= 0x3fff:
		return b.PPU.ReadRegister(addr)
	case addr == 0x4016:
		return b.Controllers[0].ReadU8()
	case addr == 0x4017:
		return b.Controllers[1].ReadU8()
	case addr < 0x4020:
		return b.openBus
	default:
		if b.cartridge != nil {
			if v, ok := b.cartridge.CpuRead(addr); ok {
				return v
			}
		}
		return b.openBus
	}
}

func (b *Bus) decodeWrite(addr uint16, value uint8) {
	switch {
	case addr <= 0x1fff:
		b.RAM[addr%ramSize] = value
	case addr <= 0x3fff:
		b.PPU.WriteRegister(addr, value)
	case addr == 0x4016, addr == 0x4017:
		b.Controllers[0].WriteU8(value)
		b.Controllers[1].WriteU8(value)
	case addr < 0x4020:
		// open bus region; writes are dropped
	default:
		if b.cartridge != nil {
			b.cartridge.CpuWrite(addr, value)
		}
	}
}

// ReadU8 performs the decoded bus access and ticks the PPU three times.
func (b *Bus) ReadU8(addr uint16) uint8 {
	v := b.decodeRead(addr)
	b.openBus = v
	b.clock()
	return v
}

// WriteU8 performs the decoded bus access and ticks the PPU three times.
func (b *Bus) WriteU8(addr uint16, value uint8) {
	b.decodeWrite(addr, value)
	b.openBus = value
	b.clock()
}

// ReadU16 reads two consecutive bytes, low byte first.
func (b *Bus) ReadU16(addr uint16) uint16 {
	lo := uint16(b.ReadU8(addr))
	hi := uint16(b.ReadU8(addr + 1))
	return lo | hi<<8
}

// ReadU16Wrapped reads a 16-bit value whose high byte is fetched from the
// same 256-byte page as the low byte, reproducing the JMP-indirect and
// zero-page-indirect page-wrap bug.
func (b *Bus) ReadU16Wrapped(addr uint16) uint16 {
	lo := uint16(b.ReadU8(addr))
	hiAddr := (addr & 0xff00) | uint16(uint8(addr)+1)
	hi := uint16(b.ReadU8(hiAddr))
	return lo | hi<<8
}

// UnclockedReadU8 peeks a byte without ticking the PPU or disturbing the
// open-bus byte. Used only by the disassembler.
func (b *Bus) UnclockedReadU8(addr uint16) uint8 {
	switch {
	case addr <= 0x1fff:
		return b.RAM[addr%ramSize]
	case addr <= 0x3fff:
		return b.PPU.PeekRegister(addr)
	case addr < 0x4020:
		return b.openBus
	default:
		if b.cartridge != nil {
			if v, ok := b.cartridge.CpuRead(addr); ok {
				return v
			}
		}
		return b.openBus
	}
}
