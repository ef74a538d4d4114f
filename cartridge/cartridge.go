// Package cartridge aggregates a parsed iNES header, PRG/CHR memory, and
// the selected mapper into a single object shared by the CPU and PPU
// buses.
package cartridge

import (
	"fmt"
	"io"

	"github.com/bdwalton/nesgo/mappers"
	"github.com/bdwalton/nesgo/nesrom"
)

const trainerSize = 512

// Cartridge is the two-port gateway both buses call into. The CPU and PPU
// buses hold the same *Cartridge, so writes through either port are
// immediately visible to the other; there is exactly one copy of PRG/CHR
// memory.
type Cartridge struct {
	Header *nesrom.Header
	mapper mappers.Mapper
}

// Load reads a full iNES file (header, optional trainer, PRG-ROM, CHR-ROM)
// and constructs the cartridge with its header-selected mapper.
func Load(r io.Reader) (*Cartridge, error) {
	hbytes := make([]byte, 16)
	if _, err := io.ReadFull(r, hbytes); err != nil {
		return nil, fmt.Errorf("cartridge: reading header: %w", err)
	}
	header, err := nesrom.ParseHeader(hbytes)
	if err != nil {
		return nil, err
	}

	if header.HasTrainer {
		if _, err := io.CopyN(io.Discard, r, trainerSize); err != nil {
			return nil, fmt.Errorf("cartridge: skipping trainer: %w", err)
		}
	}

	prgROM := make([]byte, header.PrgROMSize)
	if _, err := io.ReadFull(r, prgROM); err != nil {
		return nil, fmt.Errorf("cartridge: reading PRG-ROM: %w", err)
	}

	chrROM := make([]byte, header.ChrROMSize)
	if _, err := io.ReadFull(r, chrROM); err != nil {
		return nil, fmt.Errorf("cartridge: reading CHR-ROM: %w", err)
	}

	m, err := mappers.Get(header, prgROM, chrROM)
	if err != nil {
		return nil, err
	}

	return &Cartridge{Header: header, mapper: m}, nil
}

// NewTest builds a cartridge directly from in-memory PRG/CHR data, bypassing
// file I/O. Used by tests.
func NewTest(mapperID uint8, prgROM, chrROM []uint8, prgRAMSize int) *Cartridge {
	h := &nesrom.Header{
		MapperID:   mapperID,
		PrgROMSize: len(prgROM),
		ChrROMSize: len(chrROM),
		PrgRAMSize: prgRAMSize,
	}
	m, err := mappers.Get(h, prgROM, chrROM)
	if err != nil {
		panic(err)
	}
	return &Cartridge{Header: h, mapper: m}
}

// CpuRead forwards to the mapper. addr must be in $4020-$FFFF; callers
// outside that range indicate a CPU bus decoding bug.
func (c *Cartridge) CpuRead(addr uint16) (uint8, bool) {
	if addr < 0x4020 {
		panic(fmt.Sprintf("cartridge: CpuRead out of range: %#04x", addr))
	}
	return c.mapper.CpuRead(addr)
}

func (c *Cartridge) CpuWrite(addr uint16, value uint8) {
	if addr < 0x4020 {
		panic(fmt.Sprintf("cartridge: CpuWrite out of range: %#04x", addr))
	}
	c.mapper.CpuWrite(addr, value)
}

// PpuRead forwards to the mapper. addr must be in $0000-$1FFF.
func (c *Cartridge) PpuRead(addr uint16) uint8 {
	if addr > 0x1fff {
		panic(fmt.Sprintf("cartridge: PpuRead out of range: %#04x", addr))
	}
	return c.mapper.PpuRead(addr)
}

func (c *Cartridge) PpuWrite(addr uint16, value uint8) {
	if addr > 0x1fff {
		panic(fmt.Sprintf("cartridge: PpuWrite out of range: %#04x", addr))
	}
	c.mapper.PpuWrite(addr, value)
}

// MirroringMode reports the nametable mirroring declared in the header.
func (c *Cartridge) MirroringMode() nesrom.Mirroring {
	return c.Header.Mirroring
}
