package cpu

// Mode identifies a 65C816 addressing mode. The decoder resolves every
// memory-accessing mode to a single effective bank:offset pair; immediate
// and implied/accumulator modes are handled inline by the instruction body
// since their operand width depends on the M/X flags rather than the mode
// itself.
type Mode int

const (
	ModeImplied Mode = iota
	ModeAccumulator
	ModeImmediateM // width = widthM()
	ModeImmediateX // width = widthX()
	ModeImmediate8 // always 8-bit (e.g. block move, WDM)
	ModeDirectPage
	ModeDirectPageX
	ModeDirectPageY
	ModeDirectPageIndirect       // (dp)
	ModeDirectPageIndirectLong   // [dp]
	ModeDirectPageIndexedIndirectX // (dp,X)
	ModeDirectPageIndirectIndexedY // (dp),Y
	ModeDirectPageIndirectLongIndexedY // [dp],Y
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeAbsoluteLong
	ModeAbsoluteLongX
	ModeAbsoluteIndirect    // (addr) - JMP only
	ModeAbsoluteIndirectX   // (addr,X) - JMP/JSR
	ModeAbsoluteIndirectLong // [addr] - JML
	ModeStackRelative        // sr,S
	ModeStackRelativeIndirectIndexedY // (sr,S),Y
	ModeRelative8
	ModeRelative16
	ModeBlockMove
)

// directPageBase applies the direct-page register to an 8-bit dp operand.
func (c *CPU) directPageBase(operand uint8) uint16 {
	return c.D + uint16(operand)
}

// directPageIndexed applies an index register to an 8-bit dp operand before
// adding D. On real hardware, in emulation mode with DL (D's low byte) zero,
// the dp+index sum wraps within the page as an 8-bit addition, replicating
// 6502 zero-page wraparound; otherwise it's a plain 16-bit addition with no
// wrap.
func (c *CPU) directPageIndexed(operand uint8, index uint16) uint16 {
	if c.E && c.D&0xFF == 0 {
		return c.D + uint16(operand+uint8(index))
	}
	return c.directPageBase(operand) + index
}

// resolve fetches the operand bytes for mode from the instruction stream
// and returns the effective bank:offset address. Page-boundary crossings
// are not detected, so no +1 cycle penalty is applied (cycle-exact timing
// is a non-goal).
func (c *CPU) resolve(mode Mode) Address {
	switch mode {
	case ModeDirectPage:
		dp := c.fetch8()
		return Address{0, c.directPageBase(dp)}

	case ModeDirectPageX:
		dp := c.fetch8()
		return Address{0, c.directPageIndexed(dp, c.X)}

	case ModeDirectPageY:
		dp := c.fetch8()
		return Address{0, c.directPageIndexed(dp, c.Y)}

	case ModeDirectPageIndirect:
		dp := c.fetch8()
		ptr := c.directPageBase(dp)
		off := c.read16(0, ptr)
		return Address{c.DBR, off}

	case ModeDirectPageIndirectLong:
		dp := c.fetch8()
		ptr := c.directPageBase(dp)
		bank, off := c.read24(0, ptr)
		return Address{bank, off}

	case ModeDirectPageIndexedIndirectX:
		dp := c.fetch8()
		ptr := c.directPageIndexed(dp, c.X)
		off := c.read16(0, ptr)
		return Address{c.DBR, off}

	case ModeDirectPageIndirectIndexedY:
		dp := c.fetch8()
		ptr := c.directPageBase(dp)
		off := c.read16(0, ptr)
		return Address{c.DBR, off + c.Y}

	case ModeDirectPageIndirectLongIndexedY:
		dp := c.fetch8()
		ptr := c.directPageBase(dp)
		bank, off := c.read24(0, ptr)
		return Address{bank, off + c.Y}

	case ModeAbsolute:
		off := c.fetch16()
		return Address{c.DBR, off}

	case ModeAbsoluteX:
		off := c.fetch16()
		return Address{c.DBR, off + c.X}

	case ModeAbsoluteY:
		off := c.fetch16()
		return Address{c.DBR, off + c.Y}

	case ModeAbsoluteLong:
		bank, off := c.fetch24()
		return Address{bank, off}

	case ModeAbsoluteLongX:
		bank, off := c.fetch24()
		return Address{bank, off + c.X}

	case ModeAbsoluteIndirect:
		ptr := c.fetch16()
		off := c.read16(0, ptr)
		return Address{c.PBR, off}

	case ModeAbsoluteIndirectX:
		ptr := c.fetch16() + c.X
		off := c.read16(c.PBR, ptr)
		return Address{c.PBR, off}

	case ModeAbsoluteIndirectLong:
		ptr := c.fetch16()
		bank, off := c.read24(0, ptr)
		return Address{bank, off}

	case ModeStackRelative:
		sr := c.fetch8()
		return Address{0, c.SP + uint16(sr)}

	case ModeStackRelativeIndirectIndexedY:
		sr := c.fetch8()
		ptr := c.SP + uint16(sr)
		off := c.read16(0, ptr)
		return Address{c.DBR, off + c.Y}

	case ModeRelative8:
		rel := int8(c.fetch8())
		return Address{c.PBR, uint16(int32(c.PC) + int32(rel))}

	case ModeRelative16:
		rel := int16(c.fetch16())
		return Address{c.PBR, uint16(int32(c.PC) + int32(rel))}

	default:
		return Address{}
	}
}

// readOperand8 reads an 8-bit value for the given mode, fetching an
// immediate byte directly when mode is an immediate mode.
func (c *CPU) readOperand8(mode Mode) uint8 {
	if mode == ModeImmediateM || mode == ModeImmediateX || mode == ModeImmediate8 {
		return c.fetch8()
	}
	addr := c.resolve(mode)
	return c.read8(addr.Bank, addr.Offset)
}

// readOperand16 reads a 16-bit value, either as a two-byte immediate or a
// memory word at the resolved address.
func (c *CPU) readOperand16(mode Mode) uint16 {
	if mode == ModeImmediateM || mode == ModeImmediateX {
		return c.fetch16()
	}
	addr := c.resolve(mode)
	return c.read16(addr.Bank, addr.Offset)
}
