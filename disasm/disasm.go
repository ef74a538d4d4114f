// Package disasm formats the instruction stream for UI display. It never
// mutates CPU or PPU state: all reads go through the CPU bus's immutable
// peek, so disassembling never disturbs open-bus state or PPU timing.
package disasm

import (
	"fmt"

	"github.com/bdwalton/nesgo/mos6502"
)

// Disassembler walks a CPU bus from Address, formatting one instruction
// at a time.
type Disassembler struct {
	Bus     *mos6502.Bus
	Address uint16
}

func New(bus *mos6502.Bus, address uint16) *Disassembler {
	return &Disassembler{Bus: bus, Address: address}
}

// Next formats the instruction at Address and advances Address past it.
// An opcode byte with no decode-table entry formats as "??? ($xx)" rather
// than failing, since disassembly must never error.
func (d *Disassembler) Next() string {
	start := d.Address
	b := d.Bus.UnclockedReadU8(d.Address)

	opcode, ok := mos6502.Decode(b)
	if !ok {
		d.Address++
		return fmt.Sprintf("$%04x: ??? ($%02x)", start, b)
	}
	d.Address++

	operand := d.formatOperand(opcode.Mode)
	if operand == "" {
		return fmt.Sprintf("$%04x: %s", start, opcode.Name)
	}
	return fmt.Sprintf("$%04x: %s %s", start, opcode.Name, operand)
}

// Lines disassembles n consecutive instructions starting at Address.
func (d *Disassembler) Lines(n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, d.Next())
	}
	return lines
}

func (d *Disassembler) nextByte() uint8 {
	v := d.Bus.UnclockedReadU8(d.Address)
	d.Address++
	return v
}

func (d *Disassembler) nextWord() uint16 {
	lo := uint16(d.nextByte())
	hi := uint16(d.nextByte())
	return lo | hi<<8
}

func (d *Disassembler) formatOperand(mode mos6502.AddrMode) string {
	switch mode {
	case mos6502.Accumulator:
		return "A"
	case mos6502.Implied:
		return ""
	case mos6502.Immediate:
		return fmt.Sprintf("#$%02x", d.nextByte())
	case mos6502.ZeroPage:
		return fmt.Sprintf("$%02x", d.nextByte())
	case mos6502.ZeroPageX:
		return fmt.Sprintf("$%02x,X", d.nextByte())
	case mos6502.ZeroPageY:
		return fmt.Sprintf("$%02x,Y", d.nextByte())
	case mos6502.Absolute:
		return fmt.Sprintf("$%04x", d.nextWord())
	case mos6502.AbsoluteX, mos6502.AbsoluteXForceClock:
		return fmt.Sprintf("$%04x,X", d.nextWord())
	case mos6502.AbsoluteY, mos6502.AbsoluteYForceClock:
		return fmt.Sprintf("$%04x,Y", d.nextWord())
	case mos6502.Indirect:
		return fmt.Sprintf("[$%04x]", d.nextWord())
	case mos6502.IndirectX:
		return fmt.Sprintf("[$%02x,X]", d.nextByte())
	case mos6502.IndirectY, mos6502.IndirectYForceClock:
		return fmt.Sprintf("[$%02x],Y", d.nextByte())
	case mos6502.Relative:
		offset := int8(d.nextByte())
		target := uint16(int32(d.Address) + int32(offset))
		sign := "+"
		n := int(offset)
		if offset < 0 {
			sign = "-"
			n = -n
		}
		return fmt.Sprintf("*%s%d ($%04x)", sign, n, target)
	default:
		return ""
	}
}
