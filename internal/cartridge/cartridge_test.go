package cartridge

import "testing"

func makeROM(size int, fill func(i int) uint8) []uint8 {
	rom := make([]uint8, size)
	for i := range rom {
		if fill != nil {
			rom[i] = fill(i)
		}
	}
	return rom
}

func TestLoROMBankMirroring(t *testing.T) {
	rom := makeROM(0x80000, func(i int) uint8 { return uint8(i) })
	cart, err := New(rom, 0x2000, MapLoROM, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v0, ok := cart.Read(0x00, 0x8000)
	if !ok {
		t.Fatal("expected mapped read at bank $00:$8000")
	}
	v1, ok := cart.Read(0x80, 0x8000)
	if !ok || v1 != v0 {
		t.Fatalf("bank $80 should mirror bank $00: got %#x want %#x", v1, v0)
	}
}

func TestLoROMSRAM(t *testing.T) {
	rom := makeROM(0x80000, nil)
	cart, _ := New(rom, 0x2000, MapLoROM, true)

	if ok := cart.Write(0x00, 0x6000, 0x42); !ok {
		t.Fatal("expected SRAM write to be accepted")
	}
	v, ok := cart.Read(0x00, 0x6000)
	if !ok || v != 0x42 {
		t.Fatalf("SRAM readback = %#x, ok=%v", v, ok)
	}
}

func TestHiROMDirectMapping(t *testing.T) {
	rom := makeROM(0x400000, func(i int) uint8 { return uint8(i >> 8) })
	cart, _ := New(rom, 0, MapHiROM, false)

	v, ok := cart.Read(0xC0, 0x0000)
	if !ok {
		t.Fatal("expected mapped read at bank $C0:$0000")
	}
	if v != rom[0] {
		t.Fatalf("got %#x want %#x", v, rom[0])
	}

	v2, ok := cart.Read(0x00, 0x8000)
	if !ok || v2 != rom[0x8000] {
		t.Fatalf("bank $00 upper half should map ROM offset $8000 (same as $C0:$8000): got %#x want %#x", v2, rom[0x8000])
	}
}

func TestLoadBytesPicksMapMode(t *testing.T) {
	rom := makeROM(0x80000, nil)
	rom[loROMHeaderOffset+headerMapModeOffset] = 0x20
	rom[loROMHeaderOffset+headerROMSizeOffset] = 0x0A
	rom[loROMHeaderOffset+headerChecksumOffset] = 0x34
	rom[loROMHeaderOffset+headerChecksumOffset+1] = 0x12
	rom[loROMHeaderOffset+headerChecksumCOffset] = 0xCB
	rom[loROMHeaderOffset+headerChecksumCOffset+1] = 0xED

	cart, err := LoadBytes(rom)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if cart.MapMode() != MapLoROM {
		t.Fatalf("MapMode() = %v, want MapLoROM", cart.MapMode())
	}
}

func TestScoreHeaderRewardsASCIITitleAndPlausibleResetVector(t *testing.T) {
	rom := makeROM(0x80000, nil)
	copy(rom[loROMHeaderOffset+headerTitleOffset:], "SUPER TEST GAME      ")
	rom[loROMHeaderOffset+headerResetVectorOffset] = 0x00
	rom[loROMHeaderOffset+headerResetVectorOffset+1] = 0x80 // $8000: plausible ROM entry point

	withBoth := scoreHeader(rom, loROMHeaderOffset)

	garbage := makeROM(0x80000, nil)
	for i := 0; i < headerTitleLength; i++ {
		garbage[loROMHeaderOffset+headerTitleOffset+i] = 0xFF // not printable ASCII
	}
	garbage[loROMHeaderOffset+headerResetVectorOffset] = 0x00
	garbage[loROMHeaderOffset+headerResetVectorOffset+1] = 0x00 // implausible: bank-local zero page

	withNeither := scoreHeader(garbage, loROMHeaderOffset)

	if withBoth <= withNeither {
		t.Fatalf("score with ASCII title + plausible reset vector (%d) should beat score without (%d)",
			withBoth, withNeither)
	}
}

func TestLoadBytesStripsCopierHeader(t *testing.T) {
	inner := makeROM(0x80000, nil)
	withHeader := append(make([]uint8, copierHeaderSize), inner...)

	cart, err := LoadBytes(withHeader)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if _, ok := cart.Read(0x00, 0x8000); !ok {
		t.Fatal("expected mapped read after copier header strip")
	}
}
