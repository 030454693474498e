package bus

import "testing"

type mockPPU struct {
	regs [0x40]uint8
}

func (m *mockPPU) WriteRegister(addr uint16, v uint8) { m.regs[addr&0x3F] = v }
func (m *mockPPU) ReadRegister(addr uint16) (uint8, bool) {
	if addr == 0x2139 {
		return 0, false // unmapped sub-register, falls back to open bus
	}
	return m.regs[addr&0x3F], true
}

type mockDMA struct {
	mdmaen, hdmaen uint8
	lastWriteCh    int
	lastWriteReg   uint8
	lastWriteVal   uint8
}

func (d *mockDMA) WriteRegister(ch int, reg uint8, value uint8) {
	d.lastWriteCh, d.lastWriteReg, d.lastWriteVal = ch, reg, value
}
func (d *mockDMA) ReadRegister(ch int, reg uint8) uint8 { return uint8(ch)<<4 | reg }
func (d *mockDMA) WriteMDMAEN(value uint8)              { d.mdmaen = value }
func (d *mockDMA) MDMAEN() uint8                        { return d.mdmaen }
func (d *mockDMA) WriteHDMAEN(value uint8)              { d.hdmaen = value }
func (d *mockDMA) HDMAEN() uint8                        { return d.hdmaen }

type mockMailbox struct {
	toAPU [4]uint8
	toCPU [4]uint8
}

func (m *mockMailbox) WriteFromCPU(i int, v uint8) { m.toAPU[i&3] = v }
func (m *mockMailbox) ReadByCPU(i int) uint8        { return m.toCPU[i&3] }

type mockInput struct {
	lastWriteAddr uint16
	lastWriteVal  uint8
}

func (m *mockInput) Read(address uint16) uint8 { return 0x01 }
func (m *mockInput) Write(address uint16, value uint8) {
	m.lastWriteAddr, m.lastWriteVal = address, value
}
func (m *mockInput) ReadAutoJoy(address uint16) uint8 { return uint8(address) }

type mockCartridge struct {
	rom [0x8000]uint8
}

func (c *mockCartridge) Read(bank uint8, offset uint16) (uint8, bool) {
	if offset < 0x8000 {
		return 0, false
	}
	return c.rom[offset&0x7FFF], true
}
func (c *mockCartridge) Write(bank uint8, offset uint16, value uint8) bool {
	return false // ROM writes are dropped
}

func newTestMemory() (*Memory, *mockPPU, *mockDMA, *mockMailbox, *mockInput) {
	ppu, dma, mb, in := &mockPPU{}, &mockDMA{}, &mockMailbox{}, &mockInput{}
	m := New(ppu, mb, in)
	m.SetDMA(dma)
	return m, ppu, dma, mb, in
}

func TestWRAMMirrorsAcrossBanks7E7F(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x7E, 0x1234, 0x42)
	if v := m.Read(0x7E, 0x1234); v != 0x42 {
		t.Fatalf("Read = %#02x, want 0x42", v)
	}
	m.Write(0x7F, 0x0001, 0x99)
	if v := m.Read(0x7F, 0x0001); v != 0x99 {
		t.Fatalf("bank $7F Read = %#02x, want 0x99", v)
	}
}

func TestLowHalfBankAliasesWRAMBelow0x2000(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x00, 0x0010, 0x7A)
	if v := m.Read(0x01, 0x0010); v != 0x7A {
		t.Fatalf("aliased WRAM read = %#02x, want 0x7A", v)
	}
}

func TestPPURegisterRoutedThroughBus(t *testing.T) {
	m, ppu, _, _, _ := newTestMemory()
	m.Write(0x00, 0x2100, 0x0F)
	if ppu.regs[0] != 0x0F {
		t.Fatal("expected PPU.WriteRegister to receive the byte")
	}
	if v := m.Read(0x00, 0x2100); v != 0x0F {
		t.Fatalf("Read = %#02x, want 0x0F", v)
	}
}

func TestUnmappedPPUReadReturnsOpenBus(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x00, 0x2100, 0x55) // establishes an open-bus value
	if v := m.Read(0x00, 0x2139); v != 0x55 {
		t.Fatalf("Read = %#02x, want stale open-bus value 0x55", v)
	}
}

func TestMailboxPortsRouteCPUSide(t *testing.T) {
	m, _, _, mb, _ := newTestMemory()
	m.Write(0x00, 0x2140, 0xAB)
	if mb.toAPU[0] != 0xAB {
		t.Fatal("expected $2140 write to reach mailbox.WriteFromCPU(0, ...)")
	}
	mb.toCPU[2] = 0xCD
	if v := m.Read(0x00, 0x2142); v != 0xCD {
		t.Fatalf("Read = %#02x, want 0xCD", v)
	}
}

func TestDMAChannelRegistersDecodeChannelAndRegister(t *testing.T) {
	m, _, dma, _, _ := newTestMemory()
	m.Write(0x00, 0x4305, 0x77) // channel 0, register 5
	if dma.lastWriteCh != 0 || dma.lastWriteReg != 5 || dma.lastWriteVal != 0x77 {
		t.Fatalf("got ch=%d reg=%d val=%#02x, want ch=0 reg=5 val=0x77",
			dma.lastWriteCh, dma.lastWriteReg, dma.lastWriteVal)
	}
	m.Write(0x00, 0x4312, 0x01) // channel 1, register 2
	if dma.lastWriteCh != 1 || dma.lastWriteReg != 2 {
		t.Fatalf("got ch=%d reg=%d, want ch=1 reg=2", dma.lastWriteCh, dma.lastWriteReg)
	}
}

func TestMDMAENTriggersDMAWrite(t *testing.T) {
	m, _, dma, _, _ := newTestMemory()
	m.Write(0x00, 0x420B, 0x07)
	if dma.mdmaen != 0x07 {
		t.Fatalf("dma.mdmaen = %#02x, want 0x07", dma.mdmaen)
	}
}

func TestWRMPYTriggersOnWriteToB(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x00, 0x4202, 12)
	m.Write(0x00, 0x4203, 10)
	lo := m.Read(0x00, 0x4216)
	hi := m.Read(0x00, 0x4217)
	got := uint16(lo) | uint16(hi)<<8
	if got != 120 {
		t.Fatalf("RDMPY = %d, want 120", got)
	}
}

func TestWRDIVTriggersOnWriteToDivisorAndProducesRemainder(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x00, 0x4204, 100) // WRDIVL
	m.Write(0x00, 0x4205, 0)   // WRDIVH
	m.Write(0x00, 0x4206, 7)   // WRDIVB: triggers divide

	quotientLo := m.Read(0x00, 0x4214)
	quotientHi := m.Read(0x00, 0x4215)
	quotient := uint16(quotientLo) | uint16(quotientHi)<<8
	if quotient != 100/7 {
		t.Fatalf("RDDIV = %d, want %d", quotient, 100/7)
	}

	remLo := m.Read(0x00, 0x4216)
	remHi := m.Read(0x00, 0x4217)
	remainder := uint16(remLo) | uint16(remHi)<<8
	if remainder != 100%7 {
		t.Fatalf("RDMPY (remainder) = %d, want %d", remainder, 100%7)
	}
}

func TestDivideByZeroSaturatesQuotient(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x00, 0x4204, 55)
	m.Write(0x00, 0x4205, 0)
	m.Write(0x00, 0x4206, 0)

	lo := m.Read(0x00, 0x4214)
	hi := m.Read(0x00, 0x4215)
	if uint16(lo)|uint16(hi)<<8 != 0xFFFF {
		t.Fatal("expected divide by zero to saturate RDDIV at 0xFFFF")
	}
}

func TestRDNMIClearsFlagOnRead(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.SetNMIFlag(true)
	v := m.Read(0x00, 0x4210)
	if v&0x80 == 0 {
		t.Fatal("expected RDNMI bit7 set")
	}
	if m.Read(0x00, 0x4210)&0x80 != 0 {
		t.Fatal("expected RDNMI to clear the flag after read")
	}
}

func TestNMITIMENDecodesEnableBits(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x00, 0x4200, 0x80|0x20|0x10|0x01)
	if !m.NMIEnabled() || !m.VIRQEnabled() || !m.HIRQEnabled() || !m.AutoJoyEnabled() {
		t.Fatal("expected all four NMITIMEN bits to decode")
	}
}

func TestJoypadAutoReadPortsRouteToInput(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	if v := m.Read(0x00, 0x4218); v != 0x18 {
		t.Fatalf("Read($4218) = %#02x, want 0x18", v)
	}
}

func TestCartridgeReadFallsThroughToROM(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	cart := &mockCartridge{}
	cart.rom[0] = 0x9A
	m.SetCartridge(cart)
	if v := m.Read(0x00, 0x8000); v != 0x9A {
		t.Fatalf("Read = %#02x, want 0x9A", v)
	}
}

func TestWriteToROMIsDropped(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	cart := &mockCartridge{}
	m.SetCartridge(cart)
	m.Write(0x00, 0x2100, 0x11) // establish open-bus baseline via MMIO path
	m.Write(0x00, 0x8000, 0x22)
	if m.openBusValue != 0x11 {
		t.Fatal("expected ROM write not to update open bus (no side effect)")
	}
}

func TestWRAMLoadRoundTrip(t *testing.T) {
	m, _, _, _, _ := newTestMemory()

	snapshot := make([]uint8, len(m.WRAM()))
	snapshot[0] = 0xAB
	snapshot[100] = 0xCD

	m.LoadWRAM(snapshot)

	if m.WRAM()[0] != 0xAB || m.WRAM()[100] != 0xCD {
		t.Fatalf("LoadWRAM did not restore contents: %#02x, %#02x", m.WRAM()[0], m.WRAM()[100])
	}
}

func TestWRAMIsLiveBackingArray(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.WRAM()[5] = 0x42

	if v, _ := m.read(0x7E, 5); v != 0x42 {
		t.Fatalf("expected WRAM() to expose the same array the bus reads, got %#02x", v)
	}
}
