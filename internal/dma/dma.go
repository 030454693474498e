// Package dma implements the SNES general DMA and HDMA transfer engines.
package dma

// Bus is the CPU-side memory surface the DMA engine reads/writes through.
// B-bus destinations are always in the $2100-$21FF range, so the engine
// passes bank 0 for them; A-bus sources are full bank:offset.
type Bus interface {
	Read(bank uint8, offset uint16) uint8
	Write(bank uint8, offset uint16, value uint8)
}

// modePattern lists, for one "unit" of a transfer mode, which BBAD offset
// each successive byte targets. Grounded on the documented SNES DMA
// transfer-mode table (modes 0-7).
var modePattern = [8][]uint8{
	0: {0},
	1: {0, 1},
	2: {0, 0},
	3: {0, 0, 1, 1},
	4: {0, 1, 2, 3},
	5: {0, 1, 0, 1},
	6: {0, 0},
	7: {0, 0, 1, 1},
}

// Channel holds one DMA/HDMA channel's register file and HDMA run state.
type Channel struct {
	DMAP uint8
	BBAD uint8
	A1TL uint8
	A1TH uint8
	A1B  uint8
	DASL uint8
	DASH uint8
	DASB uint8 // HDMA indirect bank
	A2AL uint8 // HDMA current table address low (also general-DMA scratch)
	A2AH uint8
	NTRL uint8 // HDMA line counter

	hdmaActive     bool
	hdmaDone       bool
	hdmaJustLoaded bool // line-entry byte was (re)loaded; transfer unconditionally this line
	indirectAddr   uint16
}

func (c *Channel) a1t() uint16    { return uint16(c.A1TL) | uint16(c.A1TH)<<8 }
func (c *Channel) setA1T(v uint16) { c.A1TL, c.A1TH = uint8(v), uint8(v>>8) }
func (c *Channel) das() uint16    { return uint16(c.DASL) | uint16(c.DASH)<<8 }
func (c *Channel) setDas(v uint16) { c.DASL, c.DASH = uint8(v), uint8(v>>8) }
func (c *Channel) tableAddr() uint16 { return uint16(c.A2AL) | uint16(c.A2AH)<<8 }
func (c *Channel) setTableAddr(v uint16) { c.A2AL, c.A2AH = uint8(v), uint8(v>>8) }

func (c *Channel) direction() bool    { return c.DMAP&0x80 != 0 } // true = B->A
func (c *Channel) fixed() bool        { return c.DMAP&0x08 != 0 }
func (c *Channel) decrement() bool    { return c.DMAP&0x10 != 0 }
func (c *Channel) mode() uint8        { return c.DMAP & 0x07 }
func (c *Channel) hdmaIndirect() bool { return c.DMAP&0x40 != 0 }

// Engine drives all 8 channels plus the $420B/$420C trigger registers.
type Engine struct {
	Channels [8]Channel
	mdmaen   uint8
	hdmaen   uint8

	bus Bus
}

func New(bus Bus) *Engine {
	return &Engine{bus: bus}
}

// WriteRegister handles $4300-$437F (per-channel registers) and is also
// used by the bus for $420B (MDMAEN) / $420C (HDMAEN) via WriteMDMAEN /
// WriteHDMAEN below.
func (e *Engine) WriteRegister(ch int, reg uint8, value uint8) {
	c := &e.Channels[ch]
	switch reg {
	case 0x0:
		c.DMAP = value
	case 0x1:
		c.BBAD = value
	case 0x2:
		c.A1TL = value
	case 0x3:
		c.A1TH = value
	case 0x4:
		c.A1B = value
	case 0x5:
		c.DASL = value
	case 0x6:
		c.DASH = value
	case 0x7:
		c.DASB = value
	case 0x8:
		c.A2AL = value
	case 0x9:
		c.A2AH = value
	case 0xA:
		c.NTRL = value
	}
}

func (e *Engine) ReadRegister(ch int, reg uint8) uint8 {
	c := &e.Channels[ch]
	switch reg {
	case 0x0:
		return c.DMAP
	case 0x1:
		return c.BBAD
	case 0x2:
		return c.A1TL
	case 0x3:
		return c.A1TH
	case 0x4:
		return c.A1B
	case 0x5:
		return c.DASL
	case 0x6:
		return c.DASH
	case 0x7:
		return c.DASB
	case 0x8:
		return c.A2AL
	case 0x9:
		return c.A2AH
	case 0xA:
		return c.NTRL
	}
	return 0
}

// WriteMDMAEN latches the general-DMA enable mask and, if non-zero, runs
// the triggered channels to completion immediately (the CPU is stalled for
// the whole burst on real hardware; the scheduler accounts for that by
// simply not advancing CPU time during this call).
func (e *Engine) WriteMDMAEN(value uint8) {
	e.mdmaen = value
	for ch := 0; ch < 8; ch++ {
		if value&(1<<uint(ch)) != 0 {
			e.runGeneralDMA(ch)
		}
	}
	e.mdmaen = 0
}

func (e *Engine) MDMAEN() uint8 { return e.mdmaen }

func (e *Engine) WriteHDMAEN(value uint8) {
	e.hdmaen = value
}

func (e *Engine) HDMAEN() uint8 { return e.hdmaen }

// runGeneralDMA transfers DAS bytes (0 meaning 0x10000) for channel ch,
// cycling the transfer-mode's BBAD offset pattern per byte.
func (e *Engine) runGeneralDMA(ch int) {
	c := &e.Channels[ch]
	count := uint32(c.das())
	if count == 0 {
		count = 0x10000
	}
	pattern := modePattern[c.mode()]
	addr := c.a1t()
	bToA := c.direction()

	for i := uint32(0); i < count; i++ {
		bbad := c.BBAD + pattern[i%uint32(len(pattern))]
		if bToA {
			v := e.bus.Read(0, 0x2100+uint16(bbad))
			e.bus.Write(c.A1B, addr, v)
		} else {
			v := e.bus.Read(c.A1B, addr)
			e.bus.Write(0, 0x2100+uint16(bbad), v)
		}
		if !c.fixed() {
			if c.decrement() {
				addr--
			} else {
				addr++
			}
		}
	}
	c.setA1T(addr)
	c.setDas(0)
}

// InitHDMA is called once per frame (at the start of VBlank on real
// hardware) for every channel with its HDMAEN bit set: it primes the table
// pointer and loads the first line-count entry.
func (e *Engine) InitHDMA() {
	for ch := 0; ch < 8; ch++ {
		if e.hdmaen&(1<<uint(ch)) == 0 {
			continue
		}
		c := &e.Channels[ch]
		c.setTableAddr(c.a1t())
		c.hdmaDone = false
		e.loadHDMALineEntry(c)
	}
}

func (e *Engine) loadHDMALineEntry(c *Channel) {
	addr := c.tableAddr()
	n := e.bus.Read(c.A1B, addr)
	addr++
	if n == 0 {
		c.hdmaDone = true
		c.setTableAddr(addr)
		return
	}
	c.NTRL = n
	c.hdmaJustLoaded = true
	if c.hdmaIndirect() {
		lo := e.bus.Read(c.A1B, addr)
		addr++
		hi := e.bus.Read(c.A1B, addr)
		addr++
		c.indirectAddr = uint16(lo) | uint16(hi)<<8
	}
	c.setTableAddr(addr)
}

// StepHDMALine runs one scanline's worth of HDMA for every active channel;
// call it once at the start of each visible scanline (lines 1..224).
func (e *Engine) StepHDMALine() {
	for ch := 0; ch < 8; ch++ {
		if e.hdmaen&(1<<uint(ch)) == 0 {
			continue
		}
		c := &e.Channels[ch]
		if c.hdmaDone {
			continue
		}
		// Bit7 of the line-count byte means repeat: transfer every line
		// of the hold period. Without it, the block transfers only on
		// the first line after its entry was loaded, then holds static
		// for the rest of the countdown.
		if c.NTRL&0x80 != 0 || c.hdmaJustLoaded {
			e.transferHDMAUnit(c)
		}
		c.hdmaJustLoaded = false

		count := c.NTRL & 0x7F
		if count == 0 {
			e.loadHDMALineEntry(c)
		} else {
			c.NTRL = (c.NTRL & 0x80) | (count - 1)
		}
	}
}

func (e *Engine) transferHDMAUnit(c *Channel) {
	pattern := modePattern[c.mode()]
	for _, off := range pattern {
		var v uint8
		if c.hdmaIndirect() {
			v = e.bus.Read(c.DASB, c.indirectAddr)
			c.indirectAddr++
		} else {
			addr := c.tableAddr()
			v = e.bus.Read(c.A1B, addr)
			c.setTableAddr(addr + 1)
		}
		e.bus.Write(0, 0x2100+uint16(c.BBAD+off), v)
	}
}
