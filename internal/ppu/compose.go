package ppu

// bppForBG returns the bit depth for a background layer under the current
// screen mode, following the mode table in SPEC_FULL.md 4.3. Modes 2/5/6
// fall back to the mode-1 depths (register model present; rendering is a
// documented approximation, see DESIGN.md) since their native behavior
// (offset-per-tile scroll, pseudo-hires, mode-7 extBG) is out of scope.
func bppForBG(mode uint8, bg int) int {
	switch mode {
	case 0:
		return 2
	case 1:
		if bg == 2 {
			return 2
		}
		return 4
	case 3:
		if bg == 0 {
			return 8
		}
		return 4
	case 4:
		if bg == 0 {
			return 8
		}
		return 2
	default:
		if bg == 2 {
			return 2
		}
		return 4
	}
}

// layerOrder returns the BG layers in back-to-front priority order as
// (kind, bg) pairs; only BG entries (kind 0) are listed. Mode 1 elevates
// BG3 above BG1/BG2 when bit3 of BGMODE is set.
func (p *PPU) layerOrder() [][2]int {
	bgHighFirst := p.bgMode == 1 && p.bg3Priority
	if bgHighFirst {
		return [][2]int{{0, 3}, {0, 1}, {0, 0}, {0, 2}}
	}
	return [][2]int{{0, 3}, {0, 2}, {0, 1}, {0, 0}}
}

func (p *PPU) bgCharBase(bg int) uint16 {
	return uint16(p.bgNBA[bg]) << p.charBaseShift
}

func (p *PPU) tilemapWordAddr(bg int, tx, ty int) uint16 {
	sc := p.bgSC[bg]
	base := uint16(sc&0xFC) << 8
	size := sc & 0x3
	var quadrant uint16
	switch size {
	case 1:
		if tx >= 32 {
			quadrant = 0x400
		}
	case 2:
		if ty >= 32 {
			quadrant = 0x800
		}
	case 3:
		if tx >= 32 {
			quadrant += 0x400
		}
		if ty >= 32 {
			quadrant += 0x800
		}
	}
	localX := tx % 32
	localY := ty % 32
	return (base + quadrant + uint16(localY*32+localX)) & 0x7FFF
}

// decodeTilePixel extracts the palette-local color index for one pixel of
// a tile, honoring the SNES planar bitplane layout (bpp/2 word-pairs, one
// row per word).
func (p *PPU) decodeTilePixel(charBase uint16, tileIndex int, bpp, subX, subY int) int {
	wordsPerTile := 8 * (bpp / 2)
	tileWordAddr := charBase + uint16(tileIndex)*uint16(wordsPerTile)
	colorIndex := 0
	for pp := 0; pp < bpp/2; pp++ {
		word := p.vram[(tileWordAddr+uint16(pp*8)+uint16(subY))&0x7FFF]
		lo := uint8(word)
		hi := uint8(word >> 8)
		bit0 := (lo >> uint(7-subX)) & 1
		bit1 := (hi >> uint(7-subX)) & 1
		colorIndex |= int(bit0) << uint(2*pp)
		colorIndex |= int(bit1) << uint(2*pp+1)
	}
	return colorIndex
}

// bgPixel resolves one background layer's pixel at screen (x,y), returning
// (colorIndex, paletteGroup, priority). It does not check whether the
// current mode uses the layer.
func (p *PPU) bgPixel(bg int, x, y int) (colorIndex, paletteGroup int, priority bool) {
	hofs := int(p.bgHOFS[bg])
	vofs := int(p.bgVOFS[bg])
	worldX := x + hofs
	worldY := y + vofs

	tileSize := 8
	if p.bgTileSize[bg] {
		tileSize = 16
	}

	tilesWide := 64 * 8 / tileSize
	blockX := (worldX / tileSize) % (tilesWide)
	blockY := (worldY / tileSize) % (tilesWide)
	if blockX < 0 {
		blockX += tilesWide
	}
	if blockY < 0 {
		blockY += tilesWide
	}

	// Tilemap addressing is always in 8x8-tile units; a 16x16 "tile" as
	// seen by the map occupies one tilemap entry per 16x16 block, so the
	// map coordinate is the block coordinate scaled back into 8x8 units
	// when tileSize==8, or used directly (1 entry per block) otherwise.
	mapTx := blockX
	mapTy := blockY
	if tileSize == 8 {
		mapTx = blockX % 64
		mapTy = blockY % 64
	}
	word := p.vram[p.tilemapWordAddr(bg, mapTx, mapTy)]
	tileIndex := int(word & 0x3FF)
	paletteGroup = int((word >> 10) & 0x7)
	priority = word&0x2000 != 0
	xflip := word&0x4000 != 0
	yflip := word&0x8000 != 0

	localX := worldX % tileSize
	localY := worldY % tileSize
	if localX < 0 {
		localX += tileSize
	}
	if localY < 0 {
		localY += tileSize
	}
	if xflip {
		localX = tileSize - 1 - localX
	}
	if yflip {
		localY = tileSize - 1 - localY
	}

	subTileX := localX / 8
	subTileY := localY / 8
	finalTile := tileIndex + subTileY*0x10 + subTileX

	bpp := bppForBG(p.bgMode, bg)
	colorIndex = p.decodeTilePixel(p.bgCharBase(bg), finalTile, bpp, localX%8, localY%8)
	return
}

var objSizePairs = [8][2][2]int{
	{{8, 8}, {16, 16}},
	{{8, 8}, {32, 32}},
	{{8, 8}, {64, 64}},
	{{16, 16}, {32, 32}},
	{{16, 16}, {64, 64}},
	{{32, 32}, {64, 64}},
	{{16, 32}, {32, 64}},
	{{16, 32}, {32, 32}},
}

type spriteEntry struct {
	x, y          int
	tileIndex     int
	paletteGroup  int
	priority      int
	hflip, vflip  bool
	w, h          int
	secondTable   bool
}

func (p *PPU) sprite(i int) spriteEntry {
	base := i * 4
	xLow := p.oam[base]
	y := p.oam[base+1]
	tile := p.oam[base+2]
	attr := p.oam[base+3]

	hiByteIdx := 512 + i/4
	bitPos := uint((i % 4) * 2)
	xHigh := (p.oam[hiByteIdx] >> bitPos) & 1
	sizeBit := (p.oam[hiByteIdx] >> (bitPos + 1)) & 1

	pair := objSizePairs[p.objSize&0x7]
	dims := pair[0]
	if sizeBit != 0 {
		dims = pair[1]
	}

	x := int(xLow) | int(xHigh)<<8
	if x >= 256 {
		x -= 512 // 9-bit signed wraparound for off-left sprites
	}

	return spriteEntry{
		x:            x,
		y:            int(y),
		tileIndex:    int(tile),
		paletteGroup: int((attr >> 1) & 0x7),
		priority:     int((attr >> 4) & 0x3),
		hflip:        attr&0x40 != 0,
		vflip:        attr&0x80 != 0,
		w:            dims[0],
		h:            dims[1],
		secondTable:  attr&0x1 != 0,
	}
}

const objCharTableGap = 0x1000 // words between the two 4bpp OBJ name tables

func (p *PPU) objPixel(x, y int) (colorIndex, paletteGroup, priority int, found bool) {
	for i := 127; i >= 0; i-- {
		s := p.sprite(i)
		spriteY := s.y
		if y < spriteY || y >= spriteY+s.h {
			// handle Y wraparound near the bottom of the screen
			if spriteY+s.h <= 256 || y >= spriteY+s.h-256 {
				continue
			}
		}
		if x < s.x || x >= s.x+s.w {
			continue
		}
		localX := x - s.x
		localY := y - spriteY
		if s.hflip {
			localX = s.w - 1 - localX
		}
		if s.vflip {
			localY = s.h - 1 - localY
		}
		subTileX := localX / 8
		subTileY := localY / 8
		finalTile := s.tileIndex + subTileY*0x10 + subTileX

		charBase := p.objBase
		if s.secondTable {
			charBase += objCharTableGap
		}
		idx := p.decodeTilePixel(charBase, finalTile, 4, localX%8, localY%8)
		if idx == 0 {
			continue // transparent pixel, sprite keeps looking below
		}
		return idx, s.paletteGroup, s.priority, true
	}
	return 0, 0, 0, false
}

func (p *PPU) paletteLookup(layerKind, bg, colorIndex, paletteGroup int) (r, g, b uint8) {
	var idx int
	switch {
	case layerKind == 1: // OBJ: CGRAM 128-255, 16 colors per group
		idx = 128 + paletteGroup*16 + colorIndex
	case bppForBG(p.bgMode, bg) == 8:
		idx = colorIndex
	case bppForBG(p.bgMode, bg) == 4:
		idx = paletteGroup*16 + colorIndex
	default:
		idx = paletteGroup*4 + colorIndex
	}
	color := p.cgram[idx&0xFF]
	r = uint8(color & 0x1F)
	g = uint8((color >> 5) & 0x1F)
	b = uint8((color >> 10) & 0x1F)
	return
}

// windowInside implements the inclusive/wraparound window membership test
// from the testable-properties list: left<=right is a normal inclusive
// range; left>right wraps around the edges of the screen.
func windowInside(x int, w Window) bool {
	left, right := int(w.Left), int(w.Right)
	if left <= right {
		return x >= left && x <= right
	}
	return x >= left || x <= right
}

// layerWindowGate evaluates whether pixel x is clipped by the window logic
// configured for a given BG (0-3) or OBJ (4); returns true if the pixel
// should be treated as "inside" the combined window region.
func (p *PPU) layerWindowGate(layer, x int) (enabled bool, inside bool) {
	var enableA, enableB, invertA, invertB bool
	var sel uint8
	switch layer {
	case 0, 1:
		sel = p.w12sel
	case 2, 3:
		sel = p.w34sel
	case 4:
		sel = p.wobjsel
	}
	shift := uint((layer % 2) * 4)
	enableA = sel&(0x02<<shift) != 0
	invertA = sel&(0x01<<shift) != 0
	enableB = sel&(0x08<<shift) != 0
	invertB = sel&(0x04<<shift) != 0

	if !enableA && !enableB {
		return false, false
	}
	inA := enableA && windowInside(x, p.winA[0])
	if invertA {
		inA = enableA && !windowInside(x, p.winA[0])
	}
	inB := enableB && windowInside(x, p.winA[1])
	if invertB {
		inB = enableB && !windowInside(x, p.winA[1])
	}

	var combine uint8
	if layer == 4 {
		combine = p.wobjlog & 0x3
	} else {
		combine = (p.wbglog >> uint(layer*2)) & 0x3
	}

	if enableA && !enableB {
		return true, inA
	}
	if enableB && !enableA {
		return true, inB
	}
	switch combine {
	case 0:
		return true, inA || inB
	case 1:
		return true, inA && inB
	case 2:
		return true, inA != inB
	default:
		return true, !(inA != inB)
	}
}

func clamp5(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint8(v)
}

// colorMath combines main and sub pixels per SPEC_FULL.md 4.3 step 5.
func (p *PPU) colorMath(mainR, mainG, mainB uint8, subR, subG, subB uint8) (uint8, uint8, uint8) {
	half := p.cgadsub&0x80 != 0
	subtract := p.cgadsub&0x40 != 0

	combine := func(a, b uint8) uint8 {
		var r int
		if subtract {
			r = int(a) - int(b)
		} else {
			r = int(a) + int(b)
		}
		if half {
			r = (int(a) + func() int {
				if subtract {
					return -int(b)
				}
				return int(b)
			}()) / 2
		}
		return clamp5(r)
	}
	return combine(mainR, subR), combine(mainG, subG), combine(mainB, subB)
}

// RenderScanline composes one visible scanline (0-223) of output directly
// into the RGBA frame buffer. Call once per line after that line's HDMA
// has been applied, so scroll/window/color-math registers reflect
// mid-frame updates the way real hardware's raster effects rely on.
func (p *PPU) RenderScanline(y int) {
	if y < 0 || y >= ScreenHeight {
		return
	}
	for x := 0; x < ScreenWidth; x++ {
		r, g, b := p.pixelAt(x, y)
		o := (y*ScreenWidth + x) * 4
		p.frame[o] = r
		p.frame[o+1] = g
		p.frame[o+2] = b
		p.frame[o+3] = 0xFF
	}
}

func (p *PPU) pixelAt(x, y int) (uint8, uint8, uint8) {
	if p.forcedBlank {
		return 0, 0, 0
	}

	mainR, mainG, mainB, mainLayer, mainFound := p.resolveScreen(x, y, p.tm, p.tmw)
	subR, subG, subB, _, subFound := p.resolveScreen(x, y, p.ts, p.tsw)

	if !mainFound {
		mainR, mainG, mainB = p.fixedBackdropOrBlack()
	}

	mathEnabled := p.layerAllowsMath(mainLayer)
	if mathEnabled {
		if !subFound {
			if p.cgwsel&0x02 != 0 {
				subR, subG, subB = p.fixedR, p.fixedG, p.fixedB
			} else {
				subR, subG, subB = 0, 0, 0
			}
		}
		mainR, mainG, mainB = p.colorMath(mainR, mainG, mainB, subR, subG, subB)
	}

	scale := func(c5 uint8) uint8 {
		v := int(c5) * 255 / 31
		v = v * int(p.brightness) / 15
		return uint8(v)
	}
	return scale(mainR), scale(mainG), scale(mainB)
}

func (p *PPU) fixedBackdropOrBlack() (uint8, uint8, uint8) {
	color := p.cgram[0]
	return uint8(color & 0x1F), uint8((color >> 5) & 0x1F), uint8((color >> 10) & 0x1F)
}

// layerAllowsMath reports whether the winning main-screen layer (0-3 BG,
// 4 OBJ, 5 backdrop) participates in color math per CGADSUB's mask. Under
// ColorMathModeLegacyBit5Global, bit5 set overrides every layer's own bit
// and enables math unconditionally; see ColorMathMode.
func (p *PPU) layerAllowsMath(layer int) bool {
	if p.colorMathMode == ColorMathModeLegacyBit5Global && p.cgadsub&0x20 != 0 {
		return true
	}
	if layer == 5 {
		return p.cgadsub&0x20 != 0
	}
	if layer == 4 {
		return p.cgadsub&0x10 != 0
	}
	return p.cgadsub&(1<<uint(layer)) != 0
}

// resolveScreen picks the winning pixel for a TM/TS-style enable mask,
// honoring per-layer window clipping. Returns found=false if every
// enabled layer is transparent at this pixel (the caller substitutes the
// backdrop or fixed color as appropriate).
func (p *PPU) resolveScreen(x, y int, enableMask, windowMask uint8) (r, g, b uint8, layer int, found bool) {
	order := p.layerOrder()
	for i := len(order) - 1; i >= 0; i-- {
		bg := order[i][1]
		if enableMask&(1<<uint(bg)) == 0 {
			continue
		}
		if windowMask&(1<<uint(bg)) != 0 {
			if _, inside := p.layerWindowGate(bg, x); inside {
				continue
			}
		}
		colorIndex, group, _ := p.bgPixel(bg, x, y)
		if colorIndex == 0 {
			continue
		}
		rr, gg, bb := p.paletteLookup(0, bg, colorIndex, group)
		return rr, gg, bb, bg, true
	}
	if enableMask&0x10 != 0 {
		if idx, group, _, ok := p.objPixel(x, y); ok {
			if windowMask&0x10 != 0 {
				if _, inside := p.layerWindowGate(4, x); inside {
					return 0, 0, 0, 4, false
				}
			}
			rr, gg, bb := p.paletteLookup(1, 0, idx, group)
			return rr, gg, bb, 4, true
		}
	}
	return 0, 0, 0, 5, false
}

// RenderMainScreenRGBA produces an RGBA8 buffer of the current composed
// frame, resampled to w x h if it differs from the native 256x224.
func (p *PPU) RenderMainScreenRGBA(w, h int) []byte {
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		srcY := y * ScreenHeight / h
		for x := 0; x < w; x++ {
			srcX := x * ScreenWidth / w
			o := (srcY*ScreenWidth + srcX) * 4
			d := (y*w + x) * 4
			copy(out[d:d+4], p.frame[o:o+4])
		}
	}
	return out
}
