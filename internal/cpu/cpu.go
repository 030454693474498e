// Package cpu implements the 65C816 CPU used as the SNES main processor.
package cpu

// Status register bit masks. In native mode all eight are meaningful; in
// emulation mode bit 4 (X/B) reads as the break flag and bit 5 is always 1.
const (
	flagC uint8 = 1 << 0 // carry
	flagZ uint8 = 1 << 1 // zero
	flagI uint8 = 1 << 2 // IRQ disable
	flagD uint8 = 1 << 3 // decimal mode
	flagX uint8 = 1 << 4 // index width (native) / break (emulation)
	flagM uint8 = 1 << 5 // accumulator/memory width (native)
	flagV uint8 = 1 << 6 // overflow
	flagN uint8 = 1 << 7 // negative
)

// Emulation-mode vectors live at fixed bank-zero offsets; each native-mode
// vector sits $10 below its emulation-mode counterpart (see the 65816
// datasheet).
const (
	vectorCOPNative   = 0xFFE4
	vectorBRKNative   = 0xFFE6
	vectorABORTNative = 0xFFE8
	vectorNMINative   = 0xFFEA
	vectorIRQNative   = 0xFFEE

	vectorCOPEmulation   = 0xFFF4
	vectorABORTEmulation = 0xFFF8
	vectorNMIEmulation   = 0xFFFA
	vectorResetEmulation = 0xFFFC
	vectorIRQBRKEmu      = 0xFFFE
)

// Address is a resolved 24-bit bank:offset address.
type Address struct {
	Bank   uint8
	Offset uint16
}

// Bus is the CPU's view of the memory bus: 8-bit reads/writes addressed by
// bank and 16-bit offset, matching the bus's own Read/Write surface.
type Bus interface {
	Read(bank uint8, offset uint16) uint8
	Write(bank uint8, offset uint16, value uint8)
}

// Status reports why Step returned without completing the requested work.
type Status int

const (
	StatusOK Status = iota
	StatusHalted
)

// CPU holds all 65C816 programmer-visible state plus the handful of
// scheduler-visible flags (stopped/waiting) needed to drive interrupts.
type CPU struct {
	A  uint16
	X  uint16
	Y  uint16
	SP uint16
	D  uint16 // direct page register
	PC uint16
	PBR uint8 // program bank register
	DBR uint8 // data bank register
	P   uint8 // status/processor flags

	E bool // emulation mode

	bus Bus

	waiting bool // halted by WAI, resumes on any enabled interrupt
	stopped bool // halted by STP, resumes only on reset

	nmiPending bool
	irqLine    bool // level-sensitive external IRQ source

	halted   bool
	haltedAt Address

	cycles uint64
}

// New creates a CPU wired to the given bus. Call Reset before stepping.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset puts the CPU into the emulation-mode power-up state: 8-bit A/X/Y,
// stack forced into page 1, D=0, P=0x34, PC loaded from $00:FFFC.
func (c *CPU) Reset() {
	c.E = true
	c.P = flagM | flagX | flagI
	c.A, c.X, c.Y = 0, 0, 0
	c.D = 0
	c.SP = 0x01FD
	c.PBR = 0
	c.DBR = 0
	c.waiting = false
	c.stopped = false
	c.halted = false
	c.nmiPending = false
	c.irqLine = false

	lo := c.bus.Read(0, vectorResetEmulation)
	hi := c.bus.Read(0, vectorResetEmulation+1)
	c.PC = uint16(lo) | uint16(hi)<<8
}

// SetNMI raises (edge-triggered) a pending non-maskable interrupt.
func (c *CPU) SetNMI() {
	c.nmiPending = true
}

// SetIRQLine sets the level-sensitive external IRQ line state.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

// Halted reports whether the CPU hit an unrecoverable illegal state.
func (c *CPU) Halted() (bool, Address) {
	return c.halted, c.haltedAt
}

// Cycles returns the running master-cycle-equivalent counter used by the
// scheduler to derive how far to advance the PPU/APU.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// widthM reports whether A is currently 8-bit (emulation mode forces this).
func (c *CPU) widthM() bool {
	return c.E || c.P&flagM != 0
}

// widthX reports whether X/Y are currently 8-bit.
func (c *CPU) widthX() bool {
	return c.E || c.P&flagX != 0
}

func (c *CPU) setNZ8(v uint8) {
	if v == 0 {
		c.P |= flagZ
	} else {
		c.P &^= flagZ
	}
	if v&0x80 != 0 {
		c.P |= flagN
	} else {
		c.P &^= flagN
	}
}

func (c *CPU) setNZ16(v uint16) {
	if v == 0 {
		c.P |= flagZ
	} else {
		c.P &^= flagZ
	}
	if v&0x8000 != 0 {
		c.P |= flagN
	} else {
		c.P &^= flagN
	}
}

func (c *CPU) getFlag(mask uint8) bool {
	return c.P&mask != 0
}

func (c *CPU) setFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

// Step takes a pending interrupt (returning once the vector is loaded) or,
// if none is pending, fetches and executes one instruction. It returns the
// number of cycles used (used by the scheduler to derive PPU/APU advance)
// and the CPU status.
func (c *CPU) Step() (uint64, Status) {
	if c.halted {
		return 0, StatusHalted
	}

	if c.stopped {
		c.cycles += 2
		return 2, StatusOK
	}

	before := c.cycles
	if c.checkInterrupts() {
		c.waiting = false
		return c.cycles - before, StatusOK
	}

	if c.waiting {
		c.cycles += 2
		return 2, StatusOK
	}

	c.execute()
	return c.cycles - before, StatusOK
}

// checkInterrupts services a pending NMI (edge) or IRQ (level, gated by the
// I flag), returning true if one was taken.
func (c *CPU) checkInterrupts() bool {
	if c.nmiPending {
		c.nmiPending = false
		c.enterInterrupt(false, true)
		return true
	}
	if c.irqLine && !c.getFlag(flagI) {
		c.enterInterrupt(false, false)
		return true
	}
	return false
}

// enterInterrupt performs the push+vector sequence for hardware IRQ and NMI
// (BRK and COP run their own sequences in instructions.go).
// isBRK distinguishes BRK from a hardware IRQ for the emulation-mode vector
// table (they share a vector on real hardware; the distinction matters for
// native mode where BRK and IRQ have separate vectors).
func (c *CPU) enterInterrupt(isBRK, isNMI bool) {
	if !c.E {
		c.push8(c.PBR)
	}
	c.push16(c.PC)
	flags := c.P
	if c.E && !isBRK {
		flags &^= flagX // B flag clear for hardware IRQ/NMI pushed in emulation mode
	}
	c.push8(flags)
	c.setFlag(flagI, true)
	c.setFlag(flagD, false)
	c.PBR = 0

	var vector uint16
	switch {
	case c.E && isNMI:
		vector = vectorNMIEmulation
	case c.E && !isNMI:
		vector = vectorIRQBRKEmu
	case !c.E && isNMI:
		vector = vectorNMINative
	case !c.E && isBRK:
		vector = vectorBRKNative
	default:
		vector = vectorIRQNative
	}
	lo := c.bus.Read(0, vector)
	hi := c.bus.Read(0, vector+1)
	c.PC = uint16(lo) | uint16(hi)<<8
	c.cycles += 7
}

func (c *CPU) halt(at Address) {
	c.halted = true
	c.haltedAt = at
}
