package mappers

import "github.com/bdwalton/nesgo/nesrom"

// nrom implements INES mapper 0 (NROM). https://www.nesdev.org/wiki/NROM
type nrom struct {
	prgROM, chrROM Memory
	prgRAM, chrRAM Memory
}

func init() {
	Register(0, func(h *nesrom.Header, prgROM, chrROM []uint8) Mapper {
		m := &nrom{
			prgROM: Memory(prgROM),
			chrROM: Memory(chrROM),
			prgRAM: make(Memory, h.PrgRAMSize),
			chrRAM: make(Memory, h.ChrRAMSize),
		}
		return m
	})
}

func (m *nrom) ID() uint8 { return 0 }

func (m *nrom) CpuRead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr <= 0x7fff:
		return m.prgRAM.MirroredRead(addr - 0x6000), true
	case addr >= 0x8000:
		return m.prgROM.MirroredRead(addr - 0x8000), true
	default:
		return 0, false
	}
}

func (m *nrom) CpuWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr <= 0x7fff {
		m.prgRAM.MirroredWrite(addr-0x6000, value)
	}
}

func (m *nrom) PpuRead(addr uint16) uint8 {
	if len(m.chrROM) == 0 {
		return m.chrRAM.MirroredRead(addr)
	}
	return m.chrROM.MirroredRead(addr)
}

func (m *nrom) PpuWrite(addr uint16, value uint8) {
	if len(m.chrROM) == 0 {
		m.chrRAM.MirroredWrite(addr, value)
	}
}
