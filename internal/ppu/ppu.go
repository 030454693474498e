// Package ppu implements the SNES PPU's register/VRAM/CGRAM/OAM model and
// its layered pixel composer.
package ppu

const (
	ScreenWidth  = 256
	ScreenHeight = 224

	vramWords = 0x8000
	cgramSize = 256
	oamSize   = 544
)

// Window holds one of the two hardware clip windows (A/B).
type Window struct {
	Left, Right uint8
}

// ColorMathMode selects how CGADSUB bit5 (the backdrop mask bit) is
// interpreted. Real hardware and common test fixtures disagree here; see
// SetColorMathMode.
type ColorMathMode uint8

const (
	// ColorMathModeStrict checks each layer's own CGADSUB mask bit,
	// including bit5 for the backdrop and bit4 for OBJ. This matches real
	// hardware and is the default.
	ColorMathModeStrict ColorMathMode = iota
	// ColorMathModeLegacyBit5Global treats CGADSUB bit5 as a single global
	// color-math enable: when set, every layer participates regardless of
	// its own mask bit. This matches the behavior a number of older test
	// fixtures assume bit5 has.
	ColorMathModeLegacyBit5Global
)

// PPU owns all video state: VRAM, CGRAM, OAM, the full MMIO register file,
// and the composer that turns that state into an RGBA frame.
type PPU struct {
	vram  [vramWords]uint16
	cgram [cgramSize]uint16
	oam   [oamSize]uint8

	// $2100 INIDISP
	forcedBlank bool
	brightness  uint8 // 0-15

	// $2101 OBSEL
	objSize    uint8 // 0-7, selects small/large sprite size pair
	objBase    uint16
	objNameSel uint8

	// $2102/$2103/$2104 OAM access
	oamAddr      uint16
	oamPriorityRotate bool

	// $2105 BGMODE
	bgMode      uint8
	bg3Priority bool
	bgTileSize  [4]bool // false=8x8, true=16x16, one bit per BG
	// $2106 MOSAIC
	mosaicSize uint8
	mosaicEnable [4]bool

	// $2107-$210A BGnSC
	bgSC [4]uint8
	// $210B/$210C BG character base nibbles
	bgNBA [4]uint8
	charBaseShift uint8 // 11 (nibble x 0x1000 bytes); set by Reset, not changed elsewhere

	// $210D-$2114 BG scroll two-write latches
	bgHOFS [4]uint16
	bgVOFS [4]uint16
	bgScrollLatch uint8 // shared write-twice latch byte for all BG scroll regs
	m7Latch       uint8

	// $2115 VMAIN
	vmStep        uint16
	vmIncOnHigh   bool
	vmTranslate   uint8

	// $2116/$2117 VRAM address, with prefetch read buffer
	vmAddr       uint16
	vmReadBuffer uint16

	// $2121/$2122 CGRAM
	cgAdd      uint8
	cgLatchLow bool
	cgLowByte  uint8
	cgReadLatchLow bool

	// $2123-$212A, $2130 windows
	w12sel, w34sel, wobjsel uint8
	winA                    [4]Window // indexed by BG1..4/OBJ/COL conceptually; see windowFor
	wbglog, wobjlog         uint8

	// $212C/$212D/$212E/$212F TM/TS/TMW/TSW
	tm, ts, tmw, tsw uint8

	// $2130/$2131/$2132 CGWSEL/CGADSUB/COLDATA
	cgwsel  uint8
	cgadsub uint8
	fixedR, fixedG, fixedB uint8

	// colorMathMode is a configuration toggle, not a hardware register; it
	// survives Reset like the rest of this emulator's setup, not the
	// power-on state.
	colorMathMode ColorMathMode

	// $2133 SETINI
	interlace     bool
	overscan      bool
	pseudoHires   bool
	extBG         bool

	// Mode 7 registers (model only; rendering not implemented, see
	// SPEC_FULL.md open question on mode 7 fidelity).
	m7sel              uint8
	m7a, m7b, m7c, m7d int16
	m7x, m7y           int16

	// Read-only status
	ophct, opvct uint16
	latchToggle  bool

	nmiCallback func()

	frame [ScreenWidth * ScreenHeight * 4]uint8

	// currentScanline/currentDot mirror the scheduler's timing counters
	// (the scheduler is the owner; the PPU only needs these for SLHV/
	// OPHCT/OPVCT register reads).
	currentScanline int
	currentDot      int
}

// SetPosition is called by the scheduler every tick so SLHV/OPHCT/OPVCT
// reads observe the current beam position.
func (p *PPU) SetPosition(scanline, dot int) {
	p.currentScanline = scanline
	p.currentDot = dot
}

// New creates a PPU with all registers at their hardware power-on state.
func New() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

func (p *PPU) Reset() {
	mode := p.colorMathMode
	*p = PPU{charBaseShift: 11, colorMathMode: mode}
	p.forcedBlank = true
}

// SetColorMathMode selects strict hardware-accurate CGADSUB bit5 handling or
// the legacy global-enable interpretation some test fixtures expect.
// Defaults to ColorMathModeStrict and is unaffected by Reset.
func (p *PPU) SetColorMathMode(mode ColorMathMode) {
	p.colorMathMode = mode
}

// ColorMathMode returns the currently configured color-math mask mode.
func (p *PPU) ColorMathMode() ColorMathMode { return p.colorMathMode }

// VRAM/CGRAM/OAM raw inspection, used by tests and by save/debug tooling;
// never used by the bus's MMIO path (which goes through the latch logic).
func (p *PPU) VRAMWord(addr uint16) uint16 { return p.vram[addr&0x7FFF] }
func (p *PPU) CGRAMColor(i uint8) uint16   { return p.cgram[i] }
func (p *PPU) OAMByte(i uint16) uint8      { return p.oam[i%oamSize] }

// SetNMICallback wires the VBlank-entry NMI edge to the scheduler/CPU.
func (p *PPU) SetNMICallback(cb func()) {
	p.nmiCallback = cb
}
