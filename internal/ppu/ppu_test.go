package ppu

import "testing"

// writeVRAMWord writes both bytes of a word to the same address regardless
// of VMAIN's increment-timing bit, by writing whichever byte does NOT
// trigger the address increment first.
func writeVRAMWord(p *PPU, addr uint16, lo, hi uint8) {
	p.WriteRegister(0x2116, uint8(addr))
	p.WriteRegister(0x2117, uint8(addr>>8))
	if p.vmIncOnHigh {
		p.WriteRegister(0x2118, lo)
		p.WriteRegister(0x2119, hi)
	} else {
		p.WriteRegister(0x2119, hi)
		p.WriteRegister(0x2118, lo)
	}
}

func TestVRAMPairedWriteAdvancesAddressOnce(t *testing.T) {
	p := New()
	p.WriteRegister(0x2115, 0x80) // increment after high byte
	p.WriteRegister(0x2116, 0x00)
	p.WriteRegister(0x2117, 0x10)
	p.WriteRegister(0x2118, 0x34)
	if p.vmAddr != 0x1000 {
		t.Fatalf("low byte write must not advance address when incrementing on high, got %#x", p.vmAddr)
	}
	p.WriteRegister(0x2119, 0x12)
	if got := p.VRAMWord(0x1000); got != 0x1234 {
		t.Fatalf("VRAMWord(0x1000) = %#x, want 0x1234", got)
	}
	if p.vmAddr != 0x1001 {
		t.Fatalf("high byte write should advance address exactly once, got %#x", p.vmAddr)
	}
}

func TestVMAINIncrementTiming(t *testing.T) {
	p := New()
	p.WriteRegister(0x2115, 0x00) // increment after low byte, step 1
	p.WriteRegister(0x2116, 0x00)
	p.WriteRegister(0x2117, 0x00)
	p.WriteRegister(0x2118, 0xAA)
	if p.vmAddr != 1 {
		t.Fatalf("address should advance after low byte write, got %d", p.vmAddr)
	}
	p.WriteRegister(0x2119, 0xBB)
	if p.vmAddr != 1 {
		t.Fatalf("high byte write should not also advance address, got %d", p.vmAddr)
	}
}

func TestCGRAMRoundTrip(t *testing.T) {
	p := New()
	p.WriteRegister(0x2121, 5)
	p.WriteRegister(0x2122, 0x34)
	p.WriteRegister(0x2122, 0x56)
	if got := p.CGRAMColor(5); got != 0x5634 { // high byte masked to 7 bits
		t.Fatalf("CGRAMColor(5) = %#x, want 0x5634", got)
	}

	p.WriteRegister(0x2121, 5)
	lo, _ := p.ReadRegister(0x213B)
	hi, _ := p.ReadRegister(0x213B)
	if lo != 0x34 || hi != 0x56 {
		t.Fatalf("CGDATAREAD = %#x,%#x want 0x34,0x56", lo, hi)
	}
}

func TestWindowInsideInclusiveRange(t *testing.T) {
	w := Window{Left: 10, Right: 20}
	if !windowInside(10, w) || !windowInside(20, w) || !windowInside(15, w) {
		t.Fatalf("expected 10,15,20 inside [10,20]")
	}
	if windowInside(9, w) || windowInside(21, w) {
		t.Fatalf("expected 9,21 outside [10,20]")
	}
}

func TestWindowWraparoundWhenLeftExceedsRight(t *testing.T) {
	w := Window{Left: 200, Right: 50}
	if !windowInside(250, w) || !windowInside(0, w) || !windowInside(50, w) {
		t.Fatalf("expected wraparound membership near screen edges")
	}
	if windowInside(100, w) {
		t.Fatalf("100 should be outside a [200,50] wraparound window")
	}
}

func TestColorMathHalfFlagAverages(t *testing.T) {
	p := New()
	p.cgadsub = 0x80 // half, add
	r, g, b := p.colorMath(20, 10, 0, 10, 10, 0)
	if r != 15 || g != 10 || b != 0 {
		t.Fatalf("half-add(20,10)=%d half-add(10,10)=%d want 15,10", r, g)
	}
}

func TestColorMathSubtractSaturatesAtZero(t *testing.T) {
	p := New()
	p.cgadsub = 0x40 // subtract, no half
	r, _, _ := p.colorMath(5, 0, 0, 10, 0, 0)
	if r != 0 {
		t.Fatalf("subtract should clamp to 0, got %d", r)
	}
}

func TestColorMathAddSaturatesAt31(t *testing.T) {
	p := New()
	r, _, _ := p.colorMath(30, 0, 0, 10, 0, 0)
	if r != 31 {
		t.Fatalf("add should clamp to 31, got %d", r)
	}
}

func TestLayerAllowsMathStrictModeChecksOwnBit(t *testing.T) {
	p := New()
	p.cgadsub = 0x20 // only backdrop bit set
	if p.layerAllowsMath(5) != true {
		t.Fatal("backdrop should allow math when its own bit is set")
	}
	if p.layerAllowsMath(0) != false {
		t.Fatal("BG1 should not allow math when only the backdrop bit is set in strict mode")
	}
}

func TestLayerAllowsMathLegacyBit5IsGlobalEnable(t *testing.T) {
	p := New()
	p.SetColorMathMode(ColorMathModeLegacyBit5Global)
	p.cgadsub = 0x20 // only bit5 set, no per-layer bits
	if !p.layerAllowsMath(0) {
		t.Fatal("legacy mode should let bit5 enable math for BG1 too")
	}
	if !p.layerAllowsMath(4) {
		t.Fatal("legacy mode should let bit5 enable math for OBJ too")
	}

	p.cgadsub = 0 // bit5 clear: legacy mode falls back to strict per-bit check
	if p.layerAllowsMath(0) {
		t.Fatal("legacy mode without bit5 set should not globally enable math")
	}
}

func TestColorMathModeDefaultsToStrictAndSurvivesReset(t *testing.T) {
	p := New()
	if p.ColorMathMode() != ColorMathModeStrict {
		t.Fatal("default color math mode should be strict")
	}
	p.SetColorMathMode(ColorMathModeLegacyBit5Global)
	p.Reset()
	if p.ColorMathMode() != ColorMathModeLegacyBit5Global {
		t.Fatal("color math mode is configuration, not power-on state, and should survive Reset")
	}
}

func TestBGPixelReadsTileAndPalette(t *testing.T) {
	p := New()
	// BG1: tilemap base 0, char base 0, mode 1 (BG1 is 4bpp).
	p.WriteRegister(0x2105, 1)
	p.WriteRegister(0x2107, 0) // BG1SC base 0, 32x32
	p.WriteRegister(0x210B, 0) // BG1 char base nibble 0

	// Tilemap entry at (0,0): tile 1, palette group 2, no flip.
	writeVRAMWord(p, 0, 0x01, 0x08) // tileIndex=1, group bits (0x08>>2)=2

	// Tile 1 in 4bpp occupies words 16-31. Row 0, set bit0 of every plane
	// pair so pixel 0 (MSB) decodes to color index 0xF.
	charBase := uint16(16)
	writeVRAMWord(p, charBase, 0x80, 0x80) // bitplanes 0/1, row 0
	writeVRAMWord(p, charBase+8, 0x80, 0x80) // bitplanes 2/3, row 0

	idx, group, _ := p.bgPixel(0, 0, 0)
	if idx != 0xF {
		t.Fatalf("colorIndex = %#x, want 0xF", idx)
	}
	if group != 2 {
		t.Fatalf("paletteGroup = %d, want 2", group)
	}
}

func TestOBJPixelFindsTopmostOpaqueSprite(t *testing.T) {
	p := New()
	p.WriteRegister(0x2101, 0) // OBSEL: base 0, size pair 0 (8x8/16x16)

	// Park every sprite off-screen first so the zero-valued OAM entries
	// left over from Reset don't collide with the sprite under test.
	for i := 0; i < 128; i++ {
		p.oam[i*4+1] = 0xF0
	}

	// Sprite 0 at (10,10), tile 0, palette group 1, 8x8.
	p.oam[0] = 10 // x low
	p.oam[1] = 10 // y
	p.oam[2] = 0  // tile
	p.oam[3] = 0x02 // palette group bit0 set -> group 1

	writeVRAMWord(p, 0, 0x80, 0x80)
	writeVRAMWord(p, 8, 0x80, 0x80)

	idx, group, _, found := p.objPixel(10, 10)
	if !found {
		t.Fatalf("expected sprite pixel to be found")
	}
	if idx != 0xF || group != 1 {
		t.Fatalf("idx=%#x group=%d, want 0xF,1", idx, group)
	}

	if _, _, _, found := p.objPixel(0, 0); found {
		t.Fatalf("expected no sprite at (0,0)")
	}
}

func TestForcedBlankRendersBlack(t *testing.T) {
	p := New()
	r, g, b := p.pixelAt(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("forced blank should render black, got %d,%d,%d", r, g, b)
	}
}

func TestRenderMainScreenRGBAProducesOpaqueFrame(t *testing.T) {
	p := New()
	p.WriteRegister(0x2100, 0x0F) // disable forced blank, full brightness
	for y := 0; y < ScreenHeight; y++ {
		p.RenderScanline(y)
	}
	out := p.RenderMainScreenRGBA(64, 56)
	if len(out) != 64*56*4 {
		t.Fatalf("len = %d, want %d", len(out), 64*56*4)
	}
	for i := 3; i < len(out); i += 4 {
		if out[i] != 0xFF {
			t.Fatalf("alpha byte at %d = %#x, want 0xFF", i, out[i])
		}
	}
}
