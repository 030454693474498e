// Package apu implements the SNES audio coprocessor: an SPC700 CPU (the
// SMP) driving a DSP and 64 KiB of audio RAM, bridged to the main CPU by a
// four-byte mailbox in each direction.
package apu

// iplROM is the real 64-byte IPL boot ROM, overlaid at $FFC0-$FFFF while
// CONTROL ($F1) bit 7 is set. It clears direct page 0 ($0001-$00EF), then performs the
// well-known $F4/$F5 handshake real software uses to detect the SPC700 is
// ready before uploading a driver.
var iplROM = [64]uint8{
	0xCD, 0xEF, 0xBD, 0xE8, 0x00, 0xC6, 0x1D, 0xD0,
	0xFC, 0x8F, 0xAA, 0xF4, 0x8F, 0xBB, 0xF5, 0x78,
	0xCC, 0xF4, 0xD0, 0xFB, 0x2F, 0x19, 0xEB, 0xF4,
	0xD0, 0xFC, 0x7E, 0xF4, 0xD0, 0x0B, 0xE4, 0xF5,
	0xCB, 0xF4, 0xD7, 0x00, 0xFC, 0xD0, 0xF3, 0xAB,
	0x01, 0x10, 0xEF, 0x7E, 0xF4, 0x10, 0xEB, 0xBA,
	0xF6, 0xDA, 0x00, 0xBA, 0xF4, 0xC4, 0xF4, 0xDD,
	0x5D, 0xD0, 0xDB, 0x1F, 0x00, 0x00, 0xC0, 0xFF,
}

const (
	flagN uint8 = 1 << 7
	flagV uint8 = 1 << 6
	flagP uint8 = 1 << 5 // direct page select: 0=$00xx, 1=$01xx
	flagB uint8 = 1 << 4
	flagH uint8 = 1 << 3
	flagI uint8 = 1 << 2
	flagZ uint8 = 1 << 1
	flagC uint8 = 1 << 0
)

// Mailbox is the CPU-facing side of the four-byte bidirectional port pair;
// the apu package only ever calls the APU-side methods.
type Mailbox interface {
	WriteFromAPU(i int, v uint8)
	ReadByAPU(i int) uint8
	ForcePortValue(i int, v uint8)
}

// SMP is the SPC700 CPU plus its owned ARAM and DSP.
type SMP struct {
	A, X, Y uint8
	SP      uint8
	PSW     uint8
	PC      uint16

	aram [0x10000]uint8
	dsp  *DSP

	mailbox Mailbox

	iplEnabled bool // CONTROL ($F1) bit7: IPL ROM overlaid at $FFC0-$FFFF

	timerTarget  [3]uint8
	timerCounter [3]uint8 // sub-divider counting SMP cycles to one tick
	timerUp      [3]uint8 // ticks since last target match
	timerOut     [3]uint8 // 4-bit wrapping counters read at $FD-$FF
	timerEnabled [3]bool

	cyclesToNextTimerTick int
	stopped               bool
}

func newSMP() *SMP {
	s := &SMP{dsp: newDSP()}
	s.mailbox = nullMailbox{}
	s.Reset()
	return s
}

// SetMailbox wires the shared mailbox instance used by the bus's $2140-
// $2143 ports; the APU only ever writes its own direction and reads the
// other, so no locking is needed under the cooperative scheduler.
func (s *SMP) SetMailbox(m Mailbox) {
	s.mailbox = m
}

func (s *SMP) Reset() {
	s.A, s.X, s.Y = 0, 0, 0
	s.SP = 0xEF
	s.PSW = flagI
	s.iplEnabled = true
	s.stopped = false
	for i := range s.aram {
		s.aram[i] = 0
	}
	s.dsp.reset()
	s.PC = 0xFFC0 // IPL ROM entry point
}

// DSP exposes the owned DSP for the bus/frontend (audio sample pull).
func (s *SMP) DSP() *DSP { return s.dsp }

type nullMailbox struct{}

func (nullMailbox) WriteFromAPU(int, uint8)  {}
func (nullMailbox) ReadByAPU(int) uint8      { return 0 }
func (nullMailbox) ForcePortValue(int, uint8) {}

func (s *SMP) getFlag(mask uint8) bool { return s.PSW&mask != 0 }
func (s *SMP) setFlag(mask uint8, v bool) {
	if v {
		s.PSW |= mask
	} else {
		s.PSW &^= mask
	}
}

func (s *SMP) setNZ(v uint8) {
	s.setFlag(flagZ, v == 0)
	s.setFlag(flagN, v&0x80 != 0)
}

// directPageBase returns $0000 or $0100 depending on PSW.P.
func (s *SMP) directPageBase() uint16 {
	if s.getFlag(flagP) {
		return 0x0100
	}
	return 0x0000
}

// Read8 performs one ARAM/MMIO byte read, routing the control registers at
// $00F0-$00FF and the IPL ROM overlay at $FFC0-$FFFF.
func (s *SMP) Read8(addr uint16) uint8 {
	if s.iplEnabled && addr >= 0xFFC0 {
		return iplROM[addr-0xFFC0]
	}
	switch addr {
	case 0x00F2:
		return s.dsp.addr
	case 0x00F3:
		return s.dsp.readData()
	case 0x00F4, 0x00F5, 0x00F6, 0x00F7:
		return s.mailbox.ReadByAPU(int(addr - 0x00F4))
	case 0x00FD, 0x00FE, 0x00FF:
		i := addr - 0x00FD
		v := s.timerOut[i]
		s.timerOut[i] = 0
		return v
	}
	return s.aram[addr]
}

// Write8 performs one ARAM/MMIO byte write.
func (s *SMP) Write8(addr uint16, v uint8) {
	switch addr {
	case 0x00F1: // CONTROL
		s.iplEnabled = v&0x80 != 0
		for i := 0; i < 3; i++ {
			wasEnabled := s.timerEnabled[i]
			s.timerEnabled[i] = v&(1<<uint(i)) != 0
			if s.timerEnabled[i] && !wasEnabled {
				s.timerCounter[i] = 0
				s.timerOut[i] = 0
			}
		}
		if v&0x10 != 0 {
			s.mailbox.WriteFromAPU(0, 0)
			s.mailbox.WriteFromAPU(1, 0)
		}
		if v&0x20 != 0 {
			s.mailbox.WriteFromAPU(2, 0)
			s.mailbox.WriteFromAPU(3, 0)
		}
		return
	case 0x00F2:
		s.dsp.addr = v
		return
	case 0x00F3:
		s.dsp.writeData(v)
		return
	case 0x00F4, 0x00F5, 0x00F6, 0x00F7:
		s.mailbox.WriteFromAPU(int(addr-0x00F4), v)
		return
	case 0x00FA, 0x00FB, 0x00FC:
		s.timerTarget[addr-0x00FA] = v
		return
	}
	s.aram[addr] = v
}

func (s *SMP) fetch8() uint8 {
	v := s.Read8(s.PC)
	s.PC++
	return v
}

func (s *SMP) fetch16() uint16 {
	lo := s.fetch8()
	hi := s.fetch8()
	return uint16(lo) | uint16(hi)<<8
}

func (s *SMP) push8(v uint8) {
	s.Write8(0x0100|uint16(s.SP), v)
	s.SP--
}

func (s *SMP) pop8() uint8 {
	s.SP++
	return s.Read8(0x0100 | uint16(s.SP))
}

func (s *SMP) push16(v uint16) {
	s.push8(uint8(v >> 8))
	s.push8(uint8(v))
}

func (s *SMP) pop16() uint16 {
	lo := s.pop8()
	hi := s.pop8()
	return uint16(lo) | uint16(hi)<<8
}

// stepTimers advances the three fixed-rate dividers by one SMP cycle.
// Timers 0/1 tick every 128 SMP cycles, timer 2 every 16, matching the
// real 8/8/64 kHz rates derived from the 1.024 MHz SMP clock.
func (s *SMP) stepTimers() {
	divisors := [3]uint8{128, 128, 16}
	for i := 0; i < 3; i++ {
		if !s.timerEnabled[i] {
			continue
		}
		s.timerCounter[i]++
		if s.timerCounter[i] < divisors[i] {
			continue
		}
		s.timerCounter[i] = 0
		s.timerUp[i]++
		if s.timerUp[i] == s.timerTarget[i] {
			s.timerUp[i] = 0
			s.timerOut[i] = (s.timerOut[i] + 1) & 0x0F
		}
	}
}

// Step executes one instruction and returns the SMP cycles it consumed.
func (s *SMP) Step() uint64 {
	if s.stopped {
		return 2
	}
	cycles := s.execute()
	for i := uint64(0); i < cycles; i++ {
		s.stepTimers()
	}
	return cycles
}
