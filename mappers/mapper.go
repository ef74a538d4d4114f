// Package mappers implements and registers cartridge mappers, referenced
// numerically by the iNES mapper ID.
package mappers

import (
	"errors"
	"fmt"

	"github.com/bdwalton/nesgo/nesrom"
)

// ErrUnsupportedMapper is wrapped with the offending ID and returned by Get
// when no mapper is registered under it.
var ErrUnsupportedMapper = errors.New("mappers: unsupported mapper")

// Mapper is the per-cartridge bus arbiter. CpuRead's second return value is
// false for addresses the mapper does not respond to, letting the CPU bus
// fall back to open-bus semantics.
type Mapper interface {
	ID() uint8
	CpuRead(addr uint16) (uint8, bool)
	CpuWrite(addr uint16, value uint8)
	PpuRead(addr uint16) uint8
	PpuWrite(addr uint16, value uint8)
}

// Memory is a byte bank that supports address-mirrored access: reads and
// writes wrap modulo the bank's length, and a zero-length bank reads as 0
// and drops writes silently.
type Memory []uint8

func (m Memory) MirroredRead(addr uint16) uint8 {
	if len(m) == 0 {
		return 0
	}
	return m[int(addr)%len(m)]
}

func (m Memory) MirroredWrite(addr uint16, value uint8) {
	if len(m) == 0 {
		return
	}
	m[int(addr)%len(m)] = value
}

type factory func(h *nesrom.Header, prgROM, chrROM []uint8) Mapper

var registry = map[uint8]factory{}

// Register associates a mapper ID with a constructor. Called from each
// mapper implementation's init(); panics on duplicate registration since
// that indicates a programming error, not bad input.
func Register(id uint8, f factory) {
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("mappers: mapper %d already registered", id))
	}
	registry[id] = f
}

// Get constructs the mapper selected by the header's mapper ID.
func Get(h *nesrom.Header, prgROM, chrROM []uint8) (Mapper, error) {
	f, ok := registry[h.MapperID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, h.MapperID)
	}
	return f(h, prgROM, chrROM), nil
}
