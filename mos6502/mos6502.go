package mos6502

import (
	"fmt"
	"strings"
)

// Flags is the 6502 status register.
type Flags uint8

const (
	FlagCarry Flags = 1 << iota
	FlagZero
	FlagInterrupt
	FlagDecimal
	FlagBreak
	FlagUnused
	FlagOverflow
	FlagNegative
)

func (f Flags) String() string {
	bits := []struct {
		flag Flags
		name string
	}{
		{FlagNegative, "N"}, {FlagOverflow, "O"}, {FlagUnused, "-"},
		{FlagBreak, "B"}, {FlagDecimal, "D"}, {FlagInterrupt, "I"},
		{FlagZero, "Z"}, {FlagCarry, "C"},
	}
	var sb strings.Builder
	for _, b := range bits {
		if f&b.flag != 0 {
			sb.WriteString(b.name)
		} else {
			sb.WriteString(".")
		}
	}
	return sb.String()
}

// ErrUnknownOpcode is the sentinel wrapped by UnknownOpcodeError; check
// with errors.Is.
var ErrUnknownOpcode = fmt.Errorf("mos6502: unknown opcode")

// UnknownOpcodeError reports an opcode byte with no entry in the decode
// table. The byte has already been consumed and PC advanced past it.
type UnknownOpcodeError struct {
	Byte uint8
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("%s: %#02x", ErrUnknownOpcode, e.Byte)
}

func (e *UnknownOpcodeError) Unwrap() error { return ErrUnknownOpcode }

// CPU is the 6502 execution core: registers, flags, and the fetch/decode/
// execute loop. All memory access goes through Bus, which is also where
// cycle accounting and PPU clocking live.
type CPU struct {
	PC      uint16
	SP      uint8
	A, X, Y uint8
	Flags   Flags

	Bus *Bus

	operandAddress *uint16
}

func New(bus *Bus) *CPU {
	return &CPU{Bus: bus, Flags: FlagUnused}
}

// Reset puts the CPU into its post-power-on state: registers and flags
// cleared (interrupts disabled), PC loaded from the reset vector, and the
// stack pointer set to $FD. Matches the documented 7-cycle reset sequence:
// 5 explicit idle clocks plus the 2 implicit clocks of the vector read.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.Flags = FlagUnused | FlagInterrupt
	c.SP = 0xfd
	c.Bus.CyclesTotal = 0
	c.Bus.CyclesToWait = 0
	for i := 0; i < 5; i++ {
		c.Bus.clock()
	}
	c.PC = c.Bus.ReadU16(0xfffc)
}

// ExecuteNext runs one step: if the PPU has latched an NMI, the 7-cycle
// NMI sequence is serviced in place of an instruction; otherwise one
// instruction is decoded and run. Returns the number of CPU cycles the
// step took, or an UnknownOpcodeError if the fetched byte has no
// decode-table entry.
func (c *CPU) ExecuteNext() (uint32, error) {
	c.Bus.CyclesToWait = 0

	if c.Bus.RequireNMI() {
		// One internal cycle plus the six of the shared interrupt sequence.
		c.Bus.clock()
		c.nmi()
		return c.Bus.CyclesToWait, nil
	}

	b := c.readU8AtPC()
	opcode, ok := Decode(b)
	if !ok {
		return 0, &UnknownOpcodeError{Byte: b}
	}

	c.operandAddress = c.readOperandAddress(opcode.Mode)
	c.execute(&opcode)

	return c.Bus.CyclesToWait, nil
}

func (c *CPU) readU8AtPC() uint8 {
	pc := c.PC
	c.PC++
	return c.Bus.ReadU8(pc)
}

func (c *CPU) readU16AtPC() uint16 {
	pc := c.PC
	c.PC += 2
	return c.Bus.ReadU16(pc)
}

// addressAddOffset adds offset to address, ticking an extra bus cycle
// whenever the addition crosses a page boundary or the addressing mode
// always pays that cycle regardless (store and read-modify-write forms).
func (c *CPU) addressAddOffset(address uint16, offset uint8, mode AddrMode) uint16 {
	added := address + uint16(offset)
	forceClock := mode == AbsoluteXForceClock || mode == AbsoluteYForceClock || mode == IndirectYForceClock
	if forceClock || (address&0xff00) != (added&0xff00) {
		c.Bus.clock()
	}
	return added
}

// readOperandAddress resolves the addressing mode for the instruction just
// fetched, consuming any additional operand bytes from the instruction
// stream. Returns nil for Implied/Accumulator, where the operand is the
// accumulator itself.
func (c *CPU) readOperandAddress(mode AddrMode) *uint16 {
	switch mode {
	case Implied, Accumulator:
		return nil
	case Immediate:
		addr := c.PC
		c.PC++
		return &addr
	case ZeroPage:
		addr := uint16(c.readU8AtPC())
		return &addr
	case ZeroPageX:
		c.Bus.clock()
		addr := uint16(c.readU8AtPC() + c.X)
		return &addr
	case ZeroPageY:
		c.Bus.clock()
		addr := uint16(c.readU8AtPC() + c.Y)
		return &addr
	case Absolute:
		addr := c.readU16AtPC()
		return &addr
	case AbsoluteX, AbsoluteXForceClock:
		base := c.readU16AtPC()
		addr := c.addressAddOffset(base, c.X, mode)
		return &addr
	case AbsoluteY, AbsoluteYForceClock:
		base := c.readU16AtPC()
		addr := c.addressAddOffset(base, c.Y, mode)
		return &addr
	case Indirect:
		ia := c.readU16AtPC()
		addr := c.Bus.ReadU16Wrapped(ia)
		return &addr
	case IndirectX:
		ia := c.readU8AtPC() + c.X
		c.Bus.clock()
		addr := c.Bus.ReadU16Wrapped(uint16(ia))
		return &addr
	case IndirectY, IndirectYForceClock:
		ia := c.readU8AtPC()
		base := c.Bus.ReadU16Wrapped(uint16(ia))
		addr := c.addressAddOffset(base, c.Y, mode)
		return &addr
	case Relative:
		offset := int8(c.readU8AtPC())
		addr := uint16(int32(c.PC) + int32(offset))
		return &addr
	default:
		return nil
	}
}

func (c *CPU) readOperandValue() uint8 {
	if c.operandAddress != nil {
		return c.Bus.ReadU8(*c.operandAddress)
	}
	return c.A
}

func (c *CPU) setFlagBit(flag Flags, v bool) {
	if v {
		c.Flags |= flag
	} else {
		c.Flags &^= flag
	}
}

func (c *CPU) setZeroNegFlags(v uint8) {
	c.setFlagBit(FlagZero, v == 0)
	c.setFlagBit(FlagNegative, v&0x80 != 0)
}

func (c *CPU) setCompareFlags(register, value uint8) {
	c.setFlagBit(FlagCarry, register >= value)
	c.setZeroNegFlags(register - value)
}

// transfer is shared by the T?? register-transfer instructions: it always
// costs one bus cycle and sets the zero/negative flags from the result.
func (c *CPU) transfer(value uint8) uint8 {
	c.Bus.clock()
	c.setZeroNegFlags(value)
	return value
}

func (c *CPU) stackPush(value uint8) {
	c.Bus.WriteU8(0x0100+uint16(c.SP), value)
	c.SP--
}

func (c *CPU) stackPushClocked(value uint8) {
	c.stackPush(value)
	c.Bus.clock()
}

func (c *CPU) stackPushU16(value uint16) {
	c.stackPush(uint8(value >> 8))
	c.stackPush(uint8(value))
}

func (c *CPU) stackPop() uint8 {
	c.SP++
	return c.Bus.ReadU8(0x0100 + uint16(c.SP))
}

func (c *CPU) stackPopClocked() uint8 {
	c.Bus.clock()
	c.Bus.clock()
	return c.stackPop()
}

func (c *CPU) stackPopU16() uint16 {
	lo := uint16(c.stackPop())
	hi := uint16(c.stackPop())
	return lo | hi<<8
}

func (c *CPU) php() {
	c.stackPushClocked(uint8(c.Flags | FlagBreak | FlagUnused))
}

func (c *CPU) plp() {
	c.Flags = Flags(c.stackPopClocked())
	c.Flags |= FlagUnused
	c.Flags &^= FlagBreak
}

// shift implements ASL/LSR/ROL/ROR (and, for the read-modify-write
// undocumented opcodes, their shift half): isLeft selects direction,
// containsCarry selects rotate (carry feeds the vacated bit) vs plain
// shift (0 feeds it).
func (c *CPU) shift(isLeft, containsCarry bool) uint8 {
	value := c.readOperandValue()

	var carryIn uint8
	if containsCarry && c.Flags&FlagCarry != 0 {
		carryIn = 1
	}

	var result uint8
	var carryOutMask uint8
	if isLeft {
		result = value<<1 | carryIn
		carryOutMask = 0x80
	} else {
		result = value>>1 | carryIn<<7
		carryOutMask = 0x01
	}

	c.setFlagBit(FlagCarry, value&carryOutMask != 0)
	c.setZeroNegFlags(result)
	c.Bus.clock()

	if c.operandAddress != nil {
		c.Bus.WriteU8(*c.operandAddress, result)
	} else {
		c.A = result
	}
	return result
}

func (c *CPU) incVal(value uint8, delta int8) uint8 {
	return c.transfer(uint8(int8(value) + delta))
}

func (c *CPU) incMem(delta int8) uint8 {
	value := c.readOperandValue()
	result := c.incVal(value, delta)
	c.storeMem(result)
	return result
}

func (c *CPU) loadMem() uint8 {
	value := c.readOperandValue()
	c.setZeroNegFlags(value)
	return value
}

func (c *CPU) storeMem(value uint8) {
	c.Bus.WriteU8(*c.operandAddress, value)
}

func (c *CPU) setOverflowFlag(a, adder, result uint8) {
	sameSignOperands := (a^adder)&0x80 == 0
	resultChangedSign := (a^result)&0x80 != 0
	c.setFlagBit(FlagOverflow, sameSignOperands && resultChangedSign)
}

// addCarry is shared by ADC and SBC: SBC calls it with the operand
// bit-complemented, which is the standard way to express subtraction as
// addition on this ALU.
func (c *CPU) addCarry(adder uint8) {
	var carryIn uint16
	if c.Flags&FlagCarry != 0 {
		carryIn = 1
	}
	result := uint16(c.A) + uint16(adder) + carryIn
	c.setFlagBit(FlagCarry, result > 0xff)
	c.setOverflowFlag(c.A, adder, uint8(result))
	c.setZeroNegFlags(uint8(result))
	c.A = uint8(result)
}

func (c *CPU) setFlag(flag Flags, value bool) {
	c.setFlagBit(flag, value)
	c.Bus.clock()
}

func (c *CPU) bit() {
	value := c.readOperandValue()
	c.setFlagBit(FlagZero, c.A&value == 0)
	c.setFlagBit(FlagOverflow, value&0x40 != 0)
	c.setFlagBit(FlagNegative, value&0x80 != 0)
}

func (c *CPU) compare(register uint8) {
	c.setCompareFlags(register, c.readOperandValue())
}

func (c *CPU) jsr() {
	c.stackPushU16(c.PC - 1)
	c.Bus.clock()
	c.PC = *c.operandAddress
}

func (c *CPU) rts() {
	c.PC = c.stackPopU16() + 1
	for i := 0; i < 3; i++ {
		c.Bus.clock()
	}
}

func (c *CPU) rti() {
	c.plp()
	c.PC = c.stackPopU16()
}

// interrupt is shared by BRK, IRQ and NMI: push PC and flags, load PC from
// loadVector, and set the interrupt-disable flag. pushFlags ORs extra bits
// into the pushed status byte (BRK pushes FlagBreak; IRQ/NMI push neither).
func (c *CPU) interrupt(loadVector uint16, pushFlags Flags) {
	c.stackPushU16(c.PC)
	c.stackPush(uint8(c.Flags | pushFlags | FlagUnused))
	c.setFlagBit(FlagInterrupt, true)
	c.PC = c.Bus.ReadU16(loadVector)
	c.Bus.clock()
}

func (c *CPU) branch(condition bool) {
	target := *c.operandAddress
	if !condition {
		return
	}
	c.Bus.clock()
	if target&0xff00 != c.PC&0xff00 {
		c.Bus.clock()
	}
	c.PC = target
}

// irq services a maskable interrupt. Unused by this core today: nothing in
// scope (no mapper IRQ lines, no APU frame counter) raises one, but it is
// kept alongside nmi since both implement the same interrupt sequencing.
func (c *CPU) irq() {
	if c.Flags&FlagInterrupt != 0 {
		return
	}
	c.interrupt(0xfffe, 0)
}

func (c *CPU) nmi() {
	c.interrupt(0xfffa, 0)
}

func (c *CPU) execute(opcode *Opcode) {
	switch opcode.Name {
	case "pha":
		c.stackPushClocked(c.A)
	case "php":
		c.php()
	case "pla":
		c.A = c.stackPopClocked()
	case "plp":
		c.plp()

	case "asl":
		c.shift(true, false)
	case "lsr":
		c.shift(false, false)
	case "rol":
		c.shift(true, true)
	case "ror":
		c.shift(false, true)

	case "slo":
		c.A |= c.shift(true, false)
	case "rla":
		c.A &= c.shift(true, true)
	case "sre":
		c.A ^= c.shift(false, false)
	case "rra":
		c.addCarry(c.shift(false, true))

	case "adc":
		c.addCarry(c.readOperandValue())
	case "sbc":
		c.addCarry(^c.readOperandValue())

	case "inc":
		c.incMem(1)
	case "dec":
		c.incMem(-1)
	case "inx":
		c.X = c.incVal(c.X, 1)
	case "iny":
		c.Y = c.incVal(c.Y, 1)
	case "dex":
		c.X = c.incVal(c.X, -1)
	case "dey":
		c.Y = c.incVal(c.Y, -1)

	case "isc":
		c.addCarry(^c.incMem(1))
	case "dcp":
		c.setCompareFlags(c.A, c.incMem(-1))

	case "lda":
		c.A = c.loadMem()
	case "ldx":
		c.X = c.loadMem()
	case "ldy":
		c.Y = c.loadMem()
	case "lax":
		c.A = c.loadMem()
		c.X = c.A

	case "sta":
		c.storeMem(c.A)
	case "stx":
		c.storeMem(c.X)
	case "sty":
		c.storeMem(c.Y)
	case "sax":
		c.storeMem(c.A & c.X)

	case "tax":
		c.X = c.transfer(c.A)
	case "tay":
		c.Y = c.transfer(c.A)
	case "tsx":
		c.X = c.transfer(c.SP)
	case "txa":
		c.A = c.transfer(c.X)
	case "txs":
		c.SP = c.X
		c.Bus.clock()
	case "tya":
		c.A = c.transfer(c.Y)

	case "clc":
		c.setFlag(FlagCarry, false)
	case "cld":
		c.setFlag(FlagDecimal, false)
	case "cli":
		c.setFlag(FlagInterrupt, false)
	case "clv":
		c.setFlag(FlagOverflow, false)
	case "sec":
		c.setFlag(FlagCarry, true)
	case "sed":
		c.setFlag(FlagDecimal, true)
	case "sei":
		c.setFlag(FlagInterrupt, true)

	case "and":
		c.A &= c.loadMem()
	case "eor":
		c.A ^= c.loadMem()
	case "ora":
		c.A |= c.loadMem()
	case "bit":
		c.bit()

	case "cmp":
		c.compare(c.A)
	case "cpx":
		c.compare(c.X)
	case "cpy":
		c.compare(c.Y)

	case "jmp":
		c.PC = *c.operandAddress
	case "jsr":
		c.jsr()
	case "rts":
		c.rts()
	case "brk":
		c.interrupt(0xfffe, FlagBreak)
	case "rti":
		c.rti()

	case "bcc":
		c.branch(c.Flags&FlagCarry == 0)
	case "bcs":
		c.branch(c.Flags&FlagCarry != 0)
	case "beq":
		c.branch(c.Flags&FlagZero != 0)
	case "bmi":
		c.branch(c.Flags&FlagNegative != 0)
	case "bne":
		c.branch(c.Flags&FlagZero == 0)
	case "bpl":
		c.branch(c.Flags&FlagNegative == 0)
	case "bvc":
		c.branch(c.Flags&FlagOverflow == 0)
	case "bvs":
		c.branch(c.Flags&FlagOverflow != 0)

	case "nop":
		if opcode.Mode != Implied {
			c.readOperandValue()
		} else {
			c.Bus.clock()
		}

	default:
		panic(fmt.Sprintf("mos6502: opcode %q has no execute case", opcode.Name))
	}

	switch opcode.Name {
	case "pla", "and", "eor", "ora", "slo", "rla", "sre":
		c.setZeroNegFlags(c.A)
	}
}
