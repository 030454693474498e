package scheduler

import (
	"testing"

	"github.com/rng999/gosnes/internal/cartridge"
)

// loopingROM builds a minimal 32KB LoROM image whose reset vector points
// at an infinite JMP-to-self loop, and whose NMI vector points at a second
// JMP-to-self loop so a test can tell whether NMI was delivered.
func loopingROM() []uint8 {
	rom := make([]uint8, 0x8000)
	// bank $00:$8000 -> JMP $8000 (opcode 0x4C)
	rom[0x0000] = 0x4C
	rom[0x0001] = 0x00
	rom[0x0002] = 0x80
	// bank $00:$8010 -> JMP $8010 (NMI handler loop)
	rom[0x0010] = 0x4C
	rom[0x0011] = 0x10
	rom[0x0012] = 0x80

	rom[0x7FFC] = 0x00 // reset vector lo
	rom[0x7FFD] = 0x80 // reset vector hi
	rom[0x7FFA] = 0x10 // NMI vector (emulation mode) lo
	rom[0x7FFB] = 0x80 // NMI vector hi
	return rom
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	cart, err := cartridge.New(loopingROM(), 0, cartridge.MapLoROM, false)
	if err != nil {
		t.Fatalf("cartridge.New: %v", err)
	}
	s := New()
	s.LoadCartridge(cart)
	return s
}

func TestLoadCartridgeResetsToVector(t *testing.T) {
	s := newTestScheduler(t)
	if s.CPU.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000", s.CPU.PC)
	}
}

func TestStepFrameAdvancesFrameCounter(t *testing.T) {
	s := newTestScheduler(t)
	result := s.StepFrame()
	if result.Status != StatusOK {
		t.Fatalf("Status = %v, want StatusOK (halted at %+v)", result.Status, result.HaltedAt)
	}
	if s.FrameCount() != 1 {
		t.Fatalf("FrameCount() = %d, want 1", s.FrameCount())
	}
	// StepFrame only returns once scanline 0's own entry transitions (and
	// body) have run, so position has already moved on to scanline 1.
	if s.scanline != 1 {
		t.Fatalf("scanline = %d, want 1", s.scanline)
	}
}

func TestStepFrameDeliversNMIWhenEnabled(t *testing.T) {
	s := newTestScheduler(t)
	s.Memory.Write(0x00, 0x4200, 0x80) // NMITIMEN: enable NMI

	s.StepFrame()

	if s.CPU.PC != 0x8010 {
		t.Fatalf("PC = %#04x, want 0x8010 (NMI handler loop)", s.CPU.PC)
	}
}

func TestStepFrameSkipsNMIWhenDisabled(t *testing.T) {
	s := newTestScheduler(t)
	s.StepFrame()

	if s.CPU.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000 (reset loop, NMI disabled)", s.CPU.PC)
	}
}

func TestGeneralDMARunsSynchronouslyThroughBusWrite(t *testing.T) {
	s := newTestScheduler(t)
	s.Memory.Write(0x7E, 0x0000, 0xAB) // WRAM source byte for channel 0

	s.Memory.Write(0x00, 0x4300, 0x00) // DMAP ch0: CPU->PPU, 1 byte/transfer
	s.Memory.Write(0x00, 0x4301, 0x18) // BBAD ch0: $2118 (VRAM data write)
	s.Memory.Write(0x00, 0x4302, 0x00) // A1TL
	s.Memory.Write(0x00, 0x4303, 0x00) // A1TH
	s.Memory.Write(0x00, 0x4304, 0x7E) // A1B: source bank $7E
	s.Memory.Write(0x00, 0x4305, 0x01) // DASL: 1 byte
	s.Memory.Write(0x00, 0x4306, 0x00) // DASH

	s.Memory.Write(0x00, 0x420B, 0x01) // MDMAEN: trigger channel 0

	if s.DMA.MDMAEN() != 0 {
		t.Fatal("expected MDMAEN to self-clear once general DMA completes")
	}
}

func TestVBlankFlagTracksScanlinePosition(t *testing.T) {
	s := newTestScheduler(t)
	s.StepFrame()
	// Immediately after wraparound the scheduler has re-entered line 0,
	// which clears VBlank for the next frame's visible area.
	if v := s.Memory.Read(0x00, 0x4212); v&0x80 != 0 {
		t.Fatal("expected HVBJOY VBlank bit clear at line 0")
	}
}

func TestAutoJoyLatchesControllerStateAtVBlank(t *testing.T) {
	s := newTestScheduler(t)
	s.Memory.Write(0x00, 0x4200, 0x01) // NMITIMEN: enable auto-joy only
	s.Input.SetButtons1(0x8000)        // B button

	s.StepFrame()

	lo := s.Memory.Read(0x00, 0x4218)
	hi := s.Memory.Read(0x00, 0x4219)
	if uint16(lo)|uint16(hi)<<8 != 0x8000 {
		t.Fatal("expected auto-joy latch to capture controller 1's button state")
	}
}
