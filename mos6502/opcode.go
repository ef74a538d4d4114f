package mos6502

// AddrMode is the operand-addressing mode an opcode resolves before
// execution. The "ForceClock" variants exist for write/read-modify-write
// instructions where the extra cycle normally added only on a page cross
// is always added.
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteXForceClock
	AbsoluteY
	AbsoluteYForceClock
	Indirect
	IndirectX
	IndirectY
	IndirectYForceClock
	Relative
)

// Opcode is the decode of one opcode byte: the instruction mnemonic and
// its addressing mode. Execution dispatches on Name; see (*CPU).execute.
type Opcode struct {
	Name string
	Mode AddrMode
	Byte uint8
}

// Decode returns the opcode for byte and whether one is defined. Covers
// all 151 documented instructions plus the undocumented opcodes exercised
// by common test ROMs.
func Decode(b uint8) (Opcode, bool) {
	o, ok := opcodes[b]
	if !ok {
		return Opcode{}, false
	}
	o.Byte = b
	return o, true
}

func op(name string, mode AddrMode) Opcode { return Opcode{Name: name, Mode: mode} }

var opcodes = map[uint8]Opcode{
	// -- Stack --
	0x48: op("pha", Implied),
	0x08: op("php", Implied),
	0x68: op("pla", Implied),
	0x28: op("plp", Implied),

	// -- Shift and rotate --
	0x0a: op("asl", Accumulator),
	0x06: op("asl", ZeroPage),
	0x16: op("asl", ZeroPageX),
	0x0e: op("asl", Absolute),
	0x1e: op("asl", AbsoluteXForceClock),

	0x4a: op("lsr", Accumulator),
	0x46: op("lsr", ZeroPage),
	0x56: op("lsr", ZeroPageX),
	0x4e: op("lsr", Absolute),
	0x5e: op("lsr", AbsoluteXForceClock),

	0x2a: op("rol", Accumulator),
	0x26: op("rol", ZeroPage),
	0x36: op("rol", ZeroPageX),
	0x2e: op("rol", Absolute),
	0x3e: op("rol", AbsoluteXForceClock),

	0x6a: op("ror", Accumulator),
	0x66: op("ror", ZeroPage),
	0x76: op("ror", ZeroPageX),
	0x6e: op("ror", Absolute),
	0x7e: op("ror", AbsoluteXForceClock),

	// -- Arithmetic --
	0x69: op("adc", Immediate),
	0x65: op("adc", ZeroPage),
	0x75: op("adc", ZeroPageX),
	0x6d: op("adc", Absolute),
	0x7d: op("adc", AbsoluteX),
	0x79: op("adc", AbsoluteY),
	0x61: op("adc", IndirectX),
	0x71: op("adc", IndirectY),

	0xe9: op("sbc", Immediate),
	0xeb: op("sbc", Immediate), // undocumented alias
	0xe5: op("sbc", ZeroPage),
	0xf5: op("sbc", ZeroPageX),
	0xed: op("sbc", Absolute),
	0xfd: op("sbc", AbsoluteX),
	0xf9: op("sbc", AbsoluteY),
	0xe1: op("sbc", IndirectX),
	0xf1: op("sbc", IndirectY),

	// -- Increment and decrement --
	0xe6: op("inc", ZeroPage),
	0xf6: op("inc", ZeroPageX),
	0xee: op("inc", Absolute),
	0xfe: op("inc", AbsoluteXForceClock),

	0xc6: op("dec", ZeroPage),
	0xd6: op("dec", ZeroPageX),
	0xce: op("dec", Absolute),
	0xde: op("dec", AbsoluteXForceClock),

	0xe8: op("inx", Implied),
	0xc8: op("iny", Implied),
	0xca: op("dex", Implied),
	0x88: op("dey", Implied),

	// -- Register loads --
	0xa9: op("lda", Immediate),
	0xa5: op("lda", ZeroPage),
	0xb5: op("lda", ZeroPageX),
	0xad: op("lda", Absolute),
	0xbd: op("lda", AbsoluteX),
	0xb9: op("lda", AbsoluteY),
	0xa1: op("lda", IndirectX),
	0xb1: op("lda", IndirectY),

	0xa2: op("ldx", Immediate),
	0xa6: op("ldx", ZeroPage),
	0xb6: op("ldx", ZeroPageY),
	0xae: op("ldx", Absolute),
	0xbe: op("ldx", AbsoluteY),

	0xa0: op("ldy", Immediate),
	0xa4: op("ldy", ZeroPage),
	0xb4: op("ldy", ZeroPageX),
	0xac: op("ldy", Absolute),
	0xbc: op("ldy", AbsoluteX),

	// -- Register stores --
	0x85: op("sta", ZeroPage),
	0x95: op("sta", ZeroPageX),
	0x8d: op("sta", Absolute),
	0x9d: op("sta", AbsoluteXForceClock),
	0x99: op("sta", AbsoluteYForceClock),
	0x81: op("sta", IndirectX),
	0x91: op("sta", IndirectYForceClock),

	0x8e: op("stx", Absolute),
	0x86: op("stx", ZeroPage),
	0x96: op("stx", ZeroPageY),

	0x8c: op("sty", Absolute),
	0x84: op("sty", ZeroPage),
	0x94: op("sty", ZeroPageX),

	// -- Register transfers --
	0xaa: op("tax", Implied),
	0xa8: op("tay", Implied),
	0xba: op("tsx", Implied),
	0x8a: op("txa", Implied),
	0x9a: op("txs", Implied),
	0x98: op("tya", Implied),

	// -- Flag clear and set --
	0x18: op("clc", Implied),
	0xd8: op("cld", Implied),
	0x58: op("cli", Implied),
	0xb8: op("clv", Implied),
	0x38: op("sec", Implied),
	0xf8: op("sed", Implied),
	0x78: op("sei", Implied),

	// -- Logic --
	0x29: op("and", Immediate),
	0x25: op("and", ZeroPage),
	0x35: op("and", ZeroPageX),
	0x2d: op("and", Absolute),
	0x3d: op("and", AbsoluteX),
	0x39: op("and", AbsoluteY),
	0x21: op("and", IndirectX),
	0x31: op("and", IndirectY),

	0x2c: op("bit", Absolute),
	0x24: op("bit", ZeroPage),

	0x49: op("eor", Immediate),
	0x45: op("eor", ZeroPage),
	0x55: op("eor", ZeroPageX),
	0x4d: op("eor", Absolute),
	0x5d: op("eor", AbsoluteX),
	0x59: op("eor", AbsoluteY),
	0x41: op("eor", IndirectX),
	0x51: op("eor", IndirectY),

	0x09: op("ora", Immediate),
	0x05: op("ora", ZeroPage),
	0x15: op("ora", ZeroPageX),
	0x0d: op("ora", Absolute),
	0x1d: op("ora", AbsoluteX),
	0x19: op("ora", AbsoluteY),
	0x01: op("ora", IndirectX),
	0x11: op("ora", IndirectY),

	0xc9: op("cmp", Immediate),
	0xc5: op("cmp", ZeroPage),
	0xd5: op("cmp", ZeroPageX),
	0xcd: op("cmp", Absolute),
	0xdd: op("cmp", AbsoluteX),
	0xd9: op("cmp", AbsoluteY),
	0xc1: op("cmp", IndirectX),
	0xd1: op("cmp", IndirectY),

	0xe0: op("cpx", Immediate),
	0xe4: op("cpx", ZeroPage),
	0xec: op("cpx", Absolute),

	0xc0: op("cpy", Immediate),
	0xc4: op("cpy", ZeroPage),
	0xcc: op("cpy", Absolute),

	// -- Control flow --
	0x4c: op("jmp", Absolute),
	0x6c: op("jmp", Indirect),
	0x20: op("jsr", Absolute),
	0x60: op("rts", Implied),
	0x00: op("brk", Implied),
	0x40: op("rti", Implied),

	0x90: op("bcc", Relative),
	0xb0: op("bcs", Relative),
	0xf0: op("beq", Relative),
	0x30: op("bmi", Relative),
	0xd0: op("bne", Relative),
	0x10: op("bpl", Relative),
	0x50: op("bvc", Relative),
	0x70: op("bvs", Relative),

	// -- NOP and its undocumented addressing-mode variants --
	0xea: op("nop", Implied),
	0x1a: op("nop", Implied),
	0x3a: op("nop", Implied),
	0x5a: op("nop", Implied),
	0xda: op("nop", Implied),
	0x80: op("nop", Immediate),
	0x04: op("nop", ZeroPage),
	0x44: op("nop", ZeroPage),
	0x64: op("nop", ZeroPage),
	0x14: op("nop", ZeroPageX),
	0x34: op("nop", ZeroPageX),
	0x54: op("nop", ZeroPageX),
	0x74: op("nop", ZeroPageX),
	0xd4: op("nop", ZeroPageX),
	0xf4: op("nop", ZeroPageX),
	0x0c: op("nop", Absolute),
	0x1c: op("nop", AbsoluteX),
	0x3c: op("nop", AbsoluteX),
	0x5c: op("nop", AbsoluteX),
	0x7c: op("nop", AbsoluteX),
	0xdc: op("nop", AbsoluteX),
	0xfc: op("nop", AbsoluteX),

	// -- Undocumented combined read-modify-write ops --
	0x07: op("slo", ZeroPage),
	0x17: op("slo", ZeroPageX),
	0x0f: op("slo", Absolute),
	0x1f: op("slo", AbsoluteXForceClock),
	0x1b: op("slo", AbsoluteYForceClock),
	0x03: op("slo", IndirectX),
	0x13: op("slo", IndirectYForceClock),

	0x27: op("rla", ZeroPage),
	0x37: op("rla", ZeroPageX),
	0x2f: op("rla", Absolute),
	0x3f: op("rla", AbsoluteXForceClock),
	0x3b: op("rla", AbsoluteYForceClock),
	0x23: op("rla", IndirectX),
	0x33: op("rla", IndirectYForceClock),

	0x47: op("sre", ZeroPage),
	0x57: op("sre", ZeroPageX),
	0x4f: op("sre", Absolute),
	0x5f: op("sre", AbsoluteXForceClock),
	0x5b: op("sre", AbsoluteYForceClock),
	0x43: op("sre", IndirectX),
	0x53: op("sre", IndirectYForceClock),

	0x67: op("rra", ZeroPage),
	0x77: op("rra", ZeroPageX),
	0x6f: op("rra", Absolute),
	0x7f: op("rra", AbsoluteXForceClock),
	0x7b: op("rra", AbsoluteYForceClock),
	0x63: op("rra", IndirectX),
	0x73: op("rra", IndirectYForceClock),

	0xc7: op("dcp", ZeroPage),
	0xd7: op("dcp", ZeroPageX),
	0xcf: op("dcp", Absolute),
	0xdf: op("dcp", AbsoluteXForceClock),
	0xdb: op("dcp", AbsoluteYForceClock),
	0xc3: op("dcp", IndirectX),
	0xd3: op("dcp", IndirectYForceClock),

	0xe7: op("isc", ZeroPage),
	0xf7: op("isc", ZeroPageX),
	0xef: op("isc", Absolute),
	0xff: op("isc", AbsoluteXForceClock),
	0xfb: op("isc", AbsoluteYForceClock),
	0xe3: op("isc", IndirectX),
	0xf3: op("isc", IndirectYForceClock),

	0xa7: op("lax", ZeroPage),
	0xb7: op("lax", ZeroPageY),
	0xaf: op("lax", Absolute),
	0xbf: op("lax", AbsoluteY),
	0xa3: op("lax", IndirectX),
	0xb3: op("lax", IndirectY),

	0x87: op("sax", ZeroPage),
	0x97: op("sax", ZeroPageY),
	0x8f: op("sax", Absolute),
	0x83: op("sax", IndirectX),
}
