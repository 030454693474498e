package cpu

// opcodeEntry names the mnemonic and addressing mode for one of the 256
// opcode bytes. The dispatcher in execute() is a total function over this
// table: every byte value 0-255 has an entry.
type opcodeEntry struct {
	name string
	mode Mode
}

var opcodeTable = [256]opcodeEntry{
	0x00: {"BRK", ModeImmediate8}, 0x01: {"ORA", ModeDirectPageIndexedIndirectX},
	0x02: {"COP", ModeImmediate8}, 0x03: {"ORA", ModeStackRelative},
	0x04: {"TSB", ModeDirectPage}, 0x05: {"ORA", ModeDirectPage},
	0x06: {"ASL", ModeDirectPage}, 0x07: {"ORA", ModeDirectPageIndirectLong},
	0x08: {"PHP", ModeImplied}, 0x09: {"ORA", ModeImmediateM},
	0x0A: {"ASL", ModeAccumulator}, 0x0B: {"PHD", ModeImplied},
	0x0C: {"TSB", ModeAbsolute}, 0x0D: {"ORA", ModeAbsolute},
	0x0E: {"ASL", ModeAbsolute}, 0x0F: {"ORA", ModeAbsoluteLong},

	0x10: {"BPL", ModeRelative8}, 0x11: {"ORA", ModeDirectPageIndirectIndexedY},
	0x12: {"ORA", ModeDirectPageIndirect}, 0x13: {"ORA", ModeStackRelativeIndirectIndexedY},
	0x14: {"TRB", ModeDirectPage}, 0x15: {"ORA", ModeDirectPageX},
	0x16: {"ASL", ModeDirectPageX}, 0x17: {"ORA", ModeDirectPageIndirectLongIndexedY},
	0x18: {"CLC", ModeImplied}, 0x19: {"ORA", ModeAbsoluteY},
	0x1A: {"INC", ModeAccumulator}, 0x1B: {"TCS", ModeImplied},
	0x1C: {"TRB", ModeAbsolute}, 0x1D: {"ORA", ModeAbsoluteX},
	0x1E: {"ASL", ModeAbsoluteX}, 0x1F: {"ORA", ModeAbsoluteLongX},

	0x20: {"JSR", ModeAbsolute}, 0x21: {"AND", ModeDirectPageIndexedIndirectX},
	0x22: {"JSL", ModeAbsoluteLong}, 0x23: {"AND", ModeStackRelative},
	0x24: {"BIT", ModeDirectPage}, 0x25: {"AND", ModeDirectPage},
	0x26: {"ROL", ModeDirectPage}, 0x27: {"AND", ModeDirectPageIndirectLong},
	0x28: {"PLP", ModeImplied}, 0x29: {"AND", ModeImmediateM},
	0x2A: {"ROL", ModeAccumulator}, 0x2B: {"PLD", ModeImplied},
	0x2C: {"BIT", ModeAbsolute}, 0x2D: {"AND", ModeAbsolute},
	0x2E: {"ROL", ModeAbsolute}, 0x2F: {"AND", ModeAbsoluteLong},

	0x30: {"BMI", ModeRelative8}, 0x31: {"AND", ModeDirectPageIndirectIndexedY},
	0x32: {"AND", ModeDirectPageIndirect}, 0x33: {"AND", ModeStackRelativeIndirectIndexedY},
	0x34: {"BIT", ModeDirectPageX}, 0x35: {"AND", ModeDirectPageX},
	0x36: {"ROL", ModeDirectPageX}, 0x37: {"AND", ModeDirectPageIndirectLongIndexedY},
	0x38: {"SEC", ModeImplied}, 0x39: {"AND", ModeAbsoluteY},
	0x3A: {"DEC", ModeAccumulator}, 0x3B: {"TSC", ModeImplied},
	0x3C: {"BIT", ModeAbsoluteX}, 0x3D: {"AND", ModeAbsoluteX},
	0x3E: {"ROL", ModeAbsoluteX}, 0x3F: {"AND", ModeAbsoluteLongX},

	0x40: {"RTI", ModeImplied}, 0x41: {"EOR", ModeDirectPageIndexedIndirectX},
	0x42: {"WDM", ModeImmediate8}, 0x43: {"EOR", ModeStackRelative},
	0x44: {"MVP", ModeBlockMove}, 0x45: {"EOR", ModeDirectPage},
	0x46: {"LSR", ModeDirectPage}, 0x47: {"EOR", ModeDirectPageIndirectLong},
	0x48: {"PHA", ModeImplied}, 0x49: {"EOR", ModeImmediateM},
	0x4A: {"LSR", ModeAccumulator}, 0x4B: {"PHK", ModeImplied},
	0x4C: {"JMP", ModeAbsolute}, 0x4D: {"EOR", ModeAbsolute},
	0x4E: {"LSR", ModeAbsolute}, 0x4F: {"EOR", ModeAbsoluteLong},

	0x50: {"BVC", ModeRelative8}, 0x51: {"EOR", ModeDirectPageIndirectIndexedY},
	0x52: {"EOR", ModeDirectPageIndirect}, 0x53: {"EOR", ModeStackRelativeIndirectIndexedY},
	0x54: {"MVN", ModeBlockMove}, 0x55: {"EOR", ModeDirectPageX},
	0x56: {"LSR", ModeDirectPageX}, 0x57: {"EOR", ModeDirectPageIndirectLongIndexedY},
	0x58: {"CLI", ModeImplied}, 0x59: {"EOR", ModeAbsoluteY},
	0x5A: {"PHY", ModeImplied}, 0x5B: {"TCD", ModeImplied},
	0x5C: {"JML", ModeAbsoluteLong}, 0x5D: {"EOR", ModeAbsoluteX},
	0x5E: {"LSR", ModeAbsoluteX}, 0x5F: {"EOR", ModeAbsoluteLongX},

	0x60: {"RTS", ModeImplied}, 0x61: {"ADC", ModeDirectPageIndexedIndirectX},
	0x62: {"PER", ModeRelative16}, 0x63: {"ADC", ModeStackRelative},
	0x64: {"STZ", ModeDirectPage}, 0x65: {"ADC", ModeDirectPage},
	0x66: {"ROR", ModeDirectPage}, 0x67: {"ADC", ModeDirectPageIndirectLong},
	0x68: {"PLA", ModeImplied}, 0x69: {"ADC", ModeImmediateM},
	0x6A: {"ROR", ModeAccumulator}, 0x6B: {"RTL", ModeImplied},
	0x6C: {"JMP", ModeAbsoluteIndirect}, 0x6D: {"ADC", ModeAbsolute},
	0x6E: {"ROR", ModeAbsolute}, 0x6F: {"ADC", ModeAbsoluteLong},

	0x70: {"BVS", ModeRelative8}, 0x71: {"ADC", ModeDirectPageIndirectIndexedY},
	0x72: {"ADC", ModeDirectPageIndirect}, 0x73: {"ADC", ModeStackRelativeIndirectIndexedY},
	0x74: {"STZ", ModeDirectPageX}, 0x75: {"ADC", ModeDirectPageX},
	0x76: {"ROR", ModeDirectPageX}, 0x77: {"ADC", ModeDirectPageIndirectLongIndexedY},
	0x78: {"SEI", ModeImplied}, 0x79: {"ADC", ModeAbsoluteY},
	0x7A: {"PLY", ModeImplied}, 0x7B: {"TDC", ModeImplied},
	0x7C: {"JMP", ModeAbsoluteIndirectX}, 0x7D: {"ADC", ModeAbsoluteX},
	0x7E: {"ROR", ModeAbsoluteX}, 0x7F: {"ADC", ModeAbsoluteLongX},

	0x80: {"BRA", ModeRelative8}, 0x81: {"STA", ModeDirectPageIndexedIndirectX},
	0x82: {"BRL", ModeRelative16}, 0x83: {"STA", ModeStackRelative},
	0x84: {"STY", ModeDirectPage}, 0x85: {"STA", ModeDirectPage},
	0x86: {"STX", ModeDirectPage}, 0x87: {"STA", ModeDirectPageIndirectLong},
	0x88: {"DEY", ModeImplied}, 0x89: {"BIT", ModeImmediateM},
	0x8A: {"TXA", ModeImplied}, 0x8B: {"PHB", ModeImplied},
	0x8C: {"STY", ModeAbsolute}, 0x8D: {"STA", ModeAbsolute},
	0x8E: {"STX", ModeAbsolute}, 0x8F: {"STA", ModeAbsoluteLong},

	0x90: {"BCC", ModeRelative8}, 0x91: {"STA", ModeDirectPageIndirectIndexedY},
	0x92: {"STA", ModeDirectPageIndirect}, 0x93: {"STA", ModeStackRelativeIndirectIndexedY},
	0x94: {"STY", ModeDirectPageX}, 0x95: {"STA", ModeDirectPageX},
	0x96: {"STX", ModeDirectPageY}, 0x97: {"STA", ModeDirectPageIndirectLongIndexedY},
	0x98: {"TYA", ModeImplied}, 0x99: {"STA", ModeAbsoluteY},
	0x9A: {"TXS", ModeImplied}, 0x9B: {"TXY", ModeImplied},
	0x9C: {"STZ", ModeAbsolute}, 0x9D: {"STA", ModeAbsoluteX},
	0x9E: {"STZ", ModeAbsoluteX}, 0x9F: {"STA", ModeAbsoluteLongX},

	0xA0: {"LDY", ModeImmediateX}, 0xA1: {"LDA", ModeDirectPageIndexedIndirectX},
	0xA2: {"LDX", ModeImmediateX}, 0xA3: {"LDA", ModeStackRelative},
	0xA4: {"LDY", ModeDirectPage}, 0xA5: {"LDA", ModeDirectPage},
	0xA6: {"LDX", ModeDirectPage}, 0xA7: {"LDA", ModeDirectPageIndirectLong},
	0xA8: {"TAY", ModeImplied}, 0xA9: {"LDA", ModeImmediateM},
	0xAA: {"TAX", ModeImplied}, 0xAB: {"PLB", ModeImplied},
	0xAC: {"LDY", ModeAbsolute}, 0xAD: {"LDA", ModeAbsolute},
	0xAE: {"LDX", ModeAbsolute}, 0xAF: {"LDA", ModeAbsoluteLong},

	0xB0: {"BCS", ModeRelative8}, 0xB1: {"LDA", ModeDirectPageIndirectIndexedY},
	0xB2: {"LDA", ModeDirectPageIndirect}, 0xB3: {"LDA", ModeStackRelativeIndirectIndexedY},
	0xB4: {"LDY", ModeDirectPageX}, 0xB5: {"LDA", ModeDirectPageX},
	0xB6: {"LDX", ModeDirectPageY}, 0xB7: {"LDA", ModeDirectPageIndirectLongIndexedY},
	0xB8: {"CLV", ModeImplied}, 0xB9: {"LDA", ModeAbsoluteY},
	0xBA: {"TSX", ModeImplied}, 0xBB: {"TYX", ModeImplied},
	0xBC: {"LDY", ModeAbsoluteX}, 0xBD: {"LDA", ModeAbsoluteX},
	0xBE: {"LDX", ModeAbsoluteY}, 0xBF: {"LDA", ModeAbsoluteLongX},

	0xC0: {"CPY", ModeImmediateX}, 0xC1: {"CMP", ModeDirectPageIndexedIndirectX},
	0xC2: {"REP", ModeImmediate8}, 0xC3: {"CMP", ModeStackRelative},
	0xC4: {"CPY", ModeDirectPage}, 0xC5: {"CMP", ModeDirectPage},
	0xC6: {"DEC", ModeDirectPage}, 0xC7: {"CMP", ModeDirectPageIndirectLong},
	0xC8: {"INY", ModeImplied}, 0xC9: {"CMP", ModeImmediateM},
	0xCA: {"DEX", ModeImplied}, 0xCB: {"WAI", ModeImplied},
	0xCC: {"CPY", ModeAbsolute}, 0xCD: {"CMP", ModeAbsolute},
	0xCE: {"DEC", ModeAbsolute}, 0xCF: {"CMP", ModeAbsoluteLong},

	0xD0: {"BNE", ModeRelative8}, 0xD1: {"CMP", ModeDirectPageIndirectIndexedY},
	0xD2: {"CMP", ModeDirectPageIndirect}, 0xD3: {"CMP", ModeStackRelativeIndirectIndexedY},
	0xD4: {"PEI", ModeDirectPage}, 0xD5: {"CMP", ModeDirectPageX},
	0xD6: {"DEC", ModeDirectPageX}, 0xD7: {"CMP", ModeDirectPageIndirectLongIndexedY},
	0xD8: {"CLD", ModeImplied}, 0xD9: {"CMP", ModeAbsoluteY},
	0xDA: {"PHX", ModeImplied}, 0xDB: {"STP", ModeImplied},
	0xDC: {"JML", ModeAbsoluteIndirectLong}, 0xDD: {"CMP", ModeAbsoluteX},
	0xDE: {"DEC", ModeAbsoluteX}, 0xDF: {"CMP", ModeAbsoluteLongX},

	0xE0: {"CPX", ModeImmediateX}, 0xE1: {"SBC", ModeDirectPageIndexedIndirectX},
	0xE2: {"SEP", ModeImmediate8}, 0xE3: {"SBC", ModeStackRelative},
	0xE4: {"CPX", ModeDirectPage}, 0xE5: {"SBC", ModeDirectPage},
	0xE6: {"INC", ModeDirectPage}, 0xE7: {"SBC", ModeDirectPageIndirectLong},
	0xE8: {"INX", ModeImplied}, 0xE9: {"SBC", ModeImmediateM},
	0xEA: {"NOP", ModeImplied}, 0xEB: {"XBA", ModeImplied},
	0xEC: {"CPX", ModeAbsolute}, 0xED: {"SBC", ModeAbsolute},
	0xEE: {"INC", ModeAbsolute}, 0xEF: {"SBC", ModeAbsoluteLong},

	0xF0: {"BEQ", ModeRelative8}, 0xF1: {"SBC", ModeDirectPageIndirectIndexedY},
	0xF2: {"SBC", ModeDirectPageIndirect}, 0xF3: {"SBC", ModeStackRelativeIndirectIndexedY},
	0xF4: {"PEA", ModeAbsolute}, 0xF5: {"SBC", ModeDirectPageX},
	0xF6: {"INC", ModeDirectPageX}, 0xF7: {"SBC", ModeDirectPageIndirectLongIndexedY},
	0xF8: {"SED", ModeImplied}, 0xF9: {"SBC", ModeAbsoluteY},
	0xFA: {"PLX", ModeImplied}, 0xFB: {"XCE", ModeImplied},
	0xFC: {"JSR", ModeAbsoluteIndirectX}, 0xFD: {"SBC", ModeAbsoluteX},
	0xFE: {"INC", ModeAbsoluteX}, 0xFF: {"SBC", ModeAbsoluteLongX},
}

// execute fetches one opcode byte and dispatches it. The switch covers
// every mnemonic in opcodeTable, so every opcode byte has a defined
// handler; an unreachable default would indicate a table/switch mismatch
// rather than an "illegal opcode" (the 65816 has none).
func (c *CPU) execute() {
	opAddr := Address{c.PBR, c.PC}
	op := c.fetch8()
	entry := opcodeTable[op]

	switch entry.name {
	case "ORA":
		c.doOra(entry.mode)
	case "AND":
		c.doAnd(entry.mode)
	case "EOR":
		c.doEor(entry.mode)
	case "ADC":
		c.doAdc(entry.mode)
	case "SBC":
		c.doSbc(entry.mode)
	case "CMP":
		c.doCompare(&c.A, entry.mode, c.widthM())
	case "CPX":
		c.doCompare(&c.X, entry.mode, c.widthX())
	case "CPY":
		c.doCompare(&c.Y, entry.mode, c.widthX())
	case "BIT":
		c.doBit(entry.mode)
	case "TSB":
		c.doTsbTrb(entry.mode, true)
	case "TRB":
		c.doTsbTrb(entry.mode, false)
	case "ASL":
		c.doShift(entry.mode, shiftASL)
	case "LSR":
		c.doShift(entry.mode, shiftLSR)
	case "ROL":
		c.doShift(entry.mode, shiftROL)
	case "ROR":
		c.doShift(entry.mode, shiftROR)
	case "INC":
		c.doIncDec(entry.mode, 1)
	case "DEC":
		c.doIncDec(entry.mode, ^uint16(0))
	case "LDA":
		c.doLoad(&c.A, entry.mode, c.widthM())
	case "LDX":
		c.doLoad(&c.X, entry.mode, c.widthX())
	case "LDY":
		c.doLoad(&c.Y, entry.mode, c.widthX())
	case "STA":
		c.doStore(c.A, entry.mode, c.widthM())
	case "STX":
		c.doStore(c.X, entry.mode, c.widthX())
	case "STY":
		c.doStore(c.Y, entry.mode, c.widthX())
	case "STZ":
		c.doStore(0, entry.mode, c.widthM())
	case "TAX":
		c.transfer(c.A, &c.X, c.widthX())
	case "TAY":
		c.transfer(c.A, &c.Y, c.widthX())
	case "TXA":
		c.transfer(c.X, &c.A, c.widthM())
	case "TYA":
		c.transfer(c.Y, &c.A, c.widthM())
	case "TXY":
		c.transfer(c.X, &c.Y, c.widthX())
	case "TYX":
		c.transfer(c.Y, &c.X, c.widthX())
	case "TSX":
		c.transfer(c.SP, &c.X, c.widthX())
	case "TXS":
		if c.E {
			c.SP = 0x0100 | (c.X & 0xFF)
		} else {
			c.SP = c.X
		}
	case "TCS":
		if c.E {
			c.SP = 0x0100 | (c.A & 0xFF)
		} else {
			c.SP = c.A
		}
	case "TSC":
		c.A = c.SP
		c.setNZ16(c.A)
	case "TCD":
		c.D = c.A
		c.setNZ16(c.D)
	case "TDC":
		c.A = c.D
		c.setNZ16(c.A)
	case "PHA":
		c.pushWidth(c.A, c.widthM())
	case "PLA":
		c.A = c.pullWidth(c.widthM(), c.A)
		c.setNZWidth(c.A, c.widthM())
	case "PHX":
		c.pushWidth(c.X, c.widthX())
	case "PLX":
		c.X = c.pullWidth(c.widthX(), c.X)
		c.setNZWidth(c.X, c.widthX())
	case "PHY":
		c.pushWidth(c.Y, c.widthX())
	case "PLY":
		c.Y = c.pullWidth(c.widthX(), c.Y)
		c.setNZWidth(c.Y, c.widthX())
	case "PHP":
		c.push8(c.effectiveP())
	case "PLP":
		c.setP(c.pop8())
	case "PHB":
		c.push8(c.DBR)
	case "PLB":
		c.DBR = c.pop8()
		c.setNZ8(c.DBR)
	case "PHD":
		c.push16(c.D)
	case "PLD":
		c.D = c.pop16()
		c.setNZ16(c.D)
	case "PHK":
		c.push8(c.PBR)
	case "PEA":
		addr := c.resolve(entry.mode)
		c.push16(addr.Offset)
	case "PEI":
		addr := c.resolve(entry.mode)
		c.push16(c.read16(0, addr.Offset))
	case "PER":
		addr := c.resolve(entry.mode)
		c.push16(addr.Offset)
	case "CLC":
		c.setFlag(flagC, false)
	case "SEC":
		c.setFlag(flagC, true)
	case "CLI":
		c.setFlag(flagI, false)
	case "SEI":
		c.setFlag(flagI, true)
	case "CLV":
		c.setFlag(flagV, false)
	case "CLD":
		c.setFlag(flagD, false)
	case "SED":
		c.setFlag(flagD, true)
	case "REP":
		mask := c.fetch8()
		c.setP(c.effectiveP() &^ mask)
	case "SEP":
		mask := c.fetch8()
		c.setP(c.effectiveP() | mask)
	case "XCE":
		oldE := c.E
		c.E = c.getFlag(flagC)
		c.setFlag(flagC, oldE)
		if c.E {
			c.P |= flagM | flagX
			c.X &= 0xFF
			c.Y &= 0xFF
			c.SP = 0x0100 | (c.SP & 0xFF)
		}
	case "NOP":
		// one-byte no-op
	case "WDM":
		c.fetch8() // reserved two-byte no-op; signature byte is discarded
	case "BRK":
		c.doBRK()
	case "COP":
		c.doCOP()
	case "RTI":
		c.doRTI()
	case "JMP":
		addr := c.resolve(entry.mode)
		c.PC = addr.Offset
	case "JML":
		addr := c.resolve(entry.mode)
		c.PC = addr.Offset
		c.PBR = addr.Bank
	case "JSR":
		addr := c.resolve(entry.mode)
		c.push16(c.PC - 1)
		c.PC = addr.Offset
	case "JSL":
		addr := c.resolve(entry.mode)
		c.push8(c.PBR)
		c.push16(c.PC - 1)
		c.PC = addr.Offset
		c.PBR = addr.Bank
	case "RTS":
		c.PC = c.pop16() + 1
	case "RTL":
		c.PC = c.pop16() + 1
		c.PBR = c.pop8()
	case "BRA":
		addr := c.resolve(entry.mode)
		c.PC = addr.Offset
	case "BRL":
		addr := c.resolve(entry.mode)
		c.PC = addr.Offset
	case "BPL":
		c.branch(entry.mode, !c.getFlag(flagN))
	case "BMI":
		c.branch(entry.mode, c.getFlag(flagN))
	case "BVC":
		c.branch(entry.mode, !c.getFlag(flagV))
	case "BVS":
		c.branch(entry.mode, c.getFlag(flagV))
	case "BCC":
		c.branch(entry.mode, !c.getFlag(flagC))
	case "BCS":
		c.branch(entry.mode, c.getFlag(flagC))
	case "BNE":
		c.branch(entry.mode, !c.getFlag(flagZ))
	case "BEQ":
		c.branch(entry.mode, c.getFlag(flagZ))
	case "WAI":
		c.waiting = true
	case "STP":
		c.stopped = true
	case "MVN":
		c.doBlockMove(1)
	case "MVP":
		c.doBlockMove(-1)
	case "XBA":
		lo := uint8(c.A)
		hi := uint8(c.A >> 8)
		c.A = uint16(lo)<<8 | uint16(hi)
		c.setNZ8(hi)
	case "INX":
		c.X = c.incDecWidth(c.X, 1, c.widthX())
		c.setNZWidth(c.X, c.widthX())
	case "INY":
		c.Y = c.incDecWidth(c.Y, 1, c.widthX())
		c.setNZWidth(c.Y, c.widthX())
	case "DEX":
		c.X = c.incDecWidth(c.X, ^uint16(0), c.widthX())
		c.setNZWidth(c.X, c.widthX())
	case "DEY":
		c.Y = c.incDecWidth(c.Y, ^uint16(0), c.widthX())
		c.setNZWidth(c.Y, c.widthX())
	default:
		c.halt(opAddr)
	}
	c.cycles += 2
}
