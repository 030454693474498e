package cpu

import "testing"

type flatBus struct {
	mem [1 << 24]uint8
}

func newFlatBus() *flatBus { return &flatBus{} }

func (b *flatBus) Read(bank uint8, offset uint16) uint8 {
	return b.mem[uint32(bank)<<16|uint32(offset)]
}

func (b *flatBus) Write(bank uint8, offset uint16, v uint8) {
	b.mem[uint32(bank)<<16|uint32(offset)] = v
}

func (b *flatBus) setVector(addr uint16, pc uint16) {
	b.mem[addr] = uint8(pc)
	b.mem[addr+1] = uint8(pc >> 8)
}

func (b *flatBus) load(bank uint8, offset uint16, code ...uint8) {
	for i, v := range code {
		b.mem[uint32(bank)<<16|uint32(offset)+uint32(i)] = v
	}
}

func newTestCPU() (*CPU, *flatBus) {
	bus := newFlatBus()
	bus.setVector(vectorResetEmulation, 0x8000)
	c := New(bus)
	c.Reset()
	return c, bus
}

func TestResetVector(t *testing.T) {
	c, _ := newTestCPU()
	if c.PC != 0x8000 {
		t.Fatalf("PC = %#x, want 0x8000", c.PC)
	}
	if !c.E {
		t.Fatal("expected emulation mode after reset")
	}
	if c.SP != 0x01FD {
		t.Fatalf("SP = %#x, want 0x01FD", c.SP)
	}
}

func TestDecoderIsTotal(t *testing.T) {
	for op := 0; op < 256; op++ {
		if opcodeTable[op].name == "" {
			t.Fatalf("opcode %#02x has no table entry", op)
		}
	}
}

func TestLdaImmediateSetsFlags(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x8000, 0xA9, 0x00) // LDA #$00
	c.Step()
	if !c.getFlag(flagZ) {
		t.Fatal("expected Z set after LDA #$00")
	}

	c, bus = newTestCPU()
	bus.load(0, 0x8000, 0xA9, 0x80) // LDA #$80
	c.Step()
	if !c.getFlag(flagN) {
		t.Fatal("expected N set after LDA #$80")
	}
}

func TestXceEntersNativeMode(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x8000, 0x18, 0xFB) // CLC, XCE
	c.Step()
	c.Step()
	if c.E {
		t.Fatal("expected native mode after CLC;XCE")
	}
}

func TestRepWidensAccumulator(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x8000, 0x18, 0xFB, 0xC2, 0x20, 0xA9, 0xFF, 0xFF) // CLC;XCE;REP #$20;LDA #$FFFF
	for i := 0; i < 4; i++ {
		c.Step()
	}
	if c.A != 0xFFFF {
		t.Fatalf("A = %#x, want 0xFFFF", c.A)
	}
}

func TestAdcBinaryOverflow(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x7F
	bus.load(0, 0x8000, 0x69, 0x01) // ADC #$01
	c.Step()
	if c.A&0xFF != 0x80 {
		t.Fatalf("A = %#x, want 0x80", c.A&0xFF)
	}
	if !c.getFlag(flagV) {
		t.Fatal("expected overflow set")
	}
}

func TestAdcDecimalMode(t *testing.T) {
	c, bus := newTestCPU()
	c.setFlag(flagD, true)
	c.A = 0x19
	bus.load(0, 0x8000, 0x69, 0x01) // ADC #$01 in decimal mode
	c.Step()
	if c.A&0xFF != 0x20 {
		t.Fatalf("A = %#x, want 0x20 (BCD 19+1=20)", c.A&0xFF)
	}
}

func TestJsrRts(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x8000, 0x20, 0x00, 0x90) // JSR $9000
	bus.load(0, 0x9000, 0x60)             // RTS
	c.Step()
	if c.PC != 0x9000 {
		t.Fatalf("PC = %#x, want 0x9000 after JSR", c.PC)
	}
	c.Step()
	if c.PC != 0x8003 {
		t.Fatalf("PC = %#x, want 0x8003 after RTS", c.PC)
	}
}

func TestBranchTaken(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x8000, 0xA9, 0x00, 0xF0, 0x02, 0xA9, 0x01, 0xA9, 0x02) // LDA #0;BEQ +2;LDA #1;LDA #2
	c.Step() // LDA #0
	c.Step() // BEQ taken, skip LDA #1
	c.Step() // LDA #2
	if c.A&0xFF != 0x02 {
		t.Fatalf("A = %#x, want 0x02", c.A&0xFF)
	}
}

func TestDirectPageWraps(t *testing.T) {
	c, bus := newTestCPU()
	c.D = 0x0000
	bus.load(0, 0x0010, 0x42)
	bus.load(0, 0x8000, 0xA5, 0x10) // LDA $10
	c.Step()
	if c.A&0xFF != 0x42 {
		t.Fatalf("A = %#x, want 0x42", c.A&0xFF)
	}
}

// TestDirectPageXWrapsWithinPageInEmulationMode reproduces 6502-compatible
// zero-page wraparound: in emulation mode with D's low byte zero, dp+X is
// computed as an 8-bit sum before D is added, so $FF,X with X=$02 reads
// from $01, not $101.
func TestDirectPageXWrapsWithinPageInEmulationMode(t *testing.T) {
	c, bus := newTestCPU()
	c.D = 0x0000
	c.X = 0x02
	bus.load(0, 0x0001, 0x42) // wrapped target: dp($FF)+X($02) wraps to $01
	bus.load(0, 0x0101, 0x99) // unwrapped (wrong) target, must not be read
	bus.load(0, 0x8000, 0xB5, 0xFF) // LDA $FF,X
	c.Step()
	if c.A&0xFF != 0x42 {
		t.Fatalf("A = %#x, want 0x42 (wrapped dp+X)", c.A&0xFF)
	}
}

// TestDirectPageXNoWrapWhenDLNonzero covers the hardware quirk's other
// half: once D's low byte is nonzero, dp+X is a plain 16-bit addition with
// no page wraparound.
func TestDirectPageXNoWrapWhenDLNonzero(t *testing.T) {
	c, bus := newTestCPU()
	c.D = 0x0001 // DL != 0
	c.X = 0x02
	bus.load(0, 0x0002, 0x99) // wrapped (wrong) target: D + uint8(0xFF+2)
	bus.load(0, 0x0102, 0x42) // correct target: D + 0xFF + X, no wrap
	bus.load(0, 0x8000, 0xB5, 0xFF) // LDA $FF,X
	c.Step()
	if c.A&0xFF != 0x42 {
		t.Fatalf("A = %#x, want 0x42 (unwrapped dp+X when DL != 0)", c.A&0xFF)
	}
}

// TestMvnWrapsIndexRegistersAt8BitWidth covers the block-move index update:
// in emulation mode (always 8-bit index width) X/Y must wrap at $FF, not
// roll over into the high byte like a raw 16-bit increment would.
func TestMvnWrapsIndexRegistersAt8BitWidth(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x0000 // decrements to 0xFFFF after one byte, stopping the move
	c.X = 0x00FF
	c.Y = 0x00FF
	bus.mem[uint32(0x02)<<16|0xFF] = 0x77 // source byte at src-bank:X
	bus.load(0, 0x8000, 0x54, 0x01, 0x02) // MVN destbank=$01, srcbank=$02

	c.Step()

	if c.X != 0x0000 {
		t.Fatalf("X = %#x, want 0x0000 (wrapped at 8 bits)", c.X)
	}
	if c.Y != 0x0000 {
		t.Fatalf("Y = %#x, want 0x0000 (wrapped at 8 bits)", c.Y)
	}
	if got := bus.mem[uint32(0x01)<<16|0xFF]; got != 0x77 {
		t.Fatalf("dest byte = %#x, want 0x77", got)
	}
}

// TestMvpWrapsIndexRegistersAt8BitWidth is the MVP (post-decrement) half of
// the same wraparound requirement.
func TestMvpWrapsIndexRegistersAt8BitWidth(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x0000
	c.X = 0x0000
	c.Y = 0x0000
	bus.mem[uint32(0x02)<<16|0x00] = 0x55
	bus.load(0, 0x8000, 0x44, 0x01, 0x02) // MVP destbank=$01, srcbank=$02

	c.Step()

	if c.X != 0x00FF {
		t.Fatalf("X = %#x, want 0x00FF (wrapped at 8 bits)", c.X)
	}
	if c.Y != 0x00FF {
		t.Fatalf("Y = %#x, want 0x00FF (wrapped at 8 bits)", c.Y)
	}
}

func TestNmiDeliveredBetweenInstructions(t *testing.T) {
	c, bus := newTestCPU()
	bus.setVector(vectorNMIEmulation, 0xA000)
	bus.load(0, 0x8000, 0xEA, 0xEA) // NOP, NOP
	c.SetNMI()
	c.Step()
	if c.PC != 0xA000 {
		t.Fatalf("PC = %#x, want 0xA000 after NMI", c.PC)
	}
}
