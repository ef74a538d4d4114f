package mappers

import "github.com/bdwalton/nesgo/nesrom"

// testram implements mapper ID 220, which iNES never assigned to anything
// useful. It exposes PRG-RAM across the entire cartridge CPU window and is
// used only by test ROMs that need a flat writable address space.
type testram struct {
	prgRAM Memory
}

func init() {
	Register(220, func(h *nesrom.Header, prgROM, chrROM []uint8) Mapper {
		size := h.PrgRAMSize
		if size == 0 {
			size = 0x10000
		}
		return &testram{prgRAM: make(Memory, size)}
	})
}

func (m *testram) ID() uint8 { return 220 }

func (m *testram) CpuRead(addr uint16) (uint8, bool) {
	return m.prgRAM.MirroredRead(addr), true
}

func (m *testram) CpuWrite(addr uint16, value uint8) {
	m.prgRAM.MirroredWrite(addr, value)
}

func (m *testram) PpuRead(addr uint16) uint8 { return 0 }

func (m *testram) PpuWrite(addr uint16, value uint8) {}
