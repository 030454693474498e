package ppu

// vmStepTable maps VMAIN bits 0-1 to the word increment step.
var vmStepTable = [4]uint16{1, 32, 128, 128}

// WriteRegister handles a CPU write to a $21xx PPU port.
func (p *PPU) WriteRegister(addr uint16, v uint8) {
	switch addr {
	case 0x2100: // INIDISP
		p.forcedBlank = v&0x80 != 0
		p.brightness = v & 0x0F

	case 0x2101: // OBSEL
		p.objSize = v >> 5
		p.objNameSel = (v >> 3) & 0x3
		p.objBase = uint16(v&0x7) << 13

	case 0x2102: // OAMADDL
		p.oamAddr = (p.oamAddr &^ 0xFF) | uint16(v)
		p.oamAddr %= oamSize
	case 0x2103: // OAMADDH
		p.oamPriorityRotate = v&0x80 != 0
		p.oamAddr = (p.oamAddr & 0xFF) | (uint16(v&1) << 8)
		p.oamAddr %= oamSize
	case 0x2104: // OAMDATA
		p.oam[p.oamAddr] = v
		p.oamAddr = (p.oamAddr + 1) % oamSize

	case 0x2105: // BGMODE
		p.bgMode = v & 0x7
		p.bg3Priority = v&0x08 != 0
		for i := 0; i < 4; i++ {
			p.bgTileSize[i] = v&(0x10<<uint(i)) != 0
		}
	case 0x2106: // MOSAIC
		p.mosaicSize = v >> 4
		for i := 0; i < 4; i++ {
			p.mosaicEnable[i] = v&(1<<uint(i)) != 0
		}

	case 0x2107, 0x2108, 0x2109, 0x210A:
		p.bgSC[addr-0x2107] = v

	case 0x210B: // BG12NBA
		p.bgNBA[0] = v & 0x0F
		p.bgNBA[1] = v >> 4
	case 0x210C: // BG34NBA
		p.bgNBA[2] = v & 0x0F
		p.bgNBA[3] = v >> 4

	case 0x210D: // BG1HOFS / M7HOFS
		p.bgHOFS[0] = (uint16(v)<<8 | uint16(p.bgScrollLatch)) & 0x1FFF
		p.bgScrollLatch = v
		p.m7x = int16(uint16(v)<<8 | uint16(p.m7Latch))
		p.m7Latch = v
	case 0x210E:
		p.bgVOFS[0] = (uint16(v)<<8 | uint16(p.bgScrollLatch)) & 0x1FFF
		p.bgScrollLatch = v
		p.m7y = int16(uint16(v)<<8 | uint16(p.m7Latch))
		p.m7Latch = v
	case 0x210F, 0x2111, 0x2113:
		idx := int((addr-0x210F)/2) + 1
		p.bgHOFS[idx] = (uint16(v)<<8 | uint16(p.bgScrollLatch)) & 0x1FFF
		p.bgScrollLatch = v
	case 0x2110, 0x2112, 0x2114:
		idx := int((addr-0x2110)/2) + 1
		p.bgVOFS[idx] = (uint16(v)<<8 | uint16(p.bgScrollLatch)) & 0x1FFF
		p.bgScrollLatch = v

	case 0x2115: // VMAIN
		p.vmStep = vmStepTable[v&0x3]
		p.vmIncOnHigh = v&0x80 != 0
		p.vmTranslate = (v >> 2) & 0x3
	case 0x2116: // VMADDL
		p.vmAddr = (p.vmAddr &^ 0xFF) | uint16(v)
		p.vmReadBuffer = p.vram[p.vmAddr&0x7FFF]
	case 0x2117: // VMADDH
		p.vmAddr = (p.vmAddr & 0xFF) | uint16(v)<<8
		p.vmReadBuffer = p.vram[p.vmAddr&0x7FFF]
	case 0x2118: // VMDATAL
		p.vram[p.vmAddr&0x7FFF] = (p.vram[p.vmAddr&0x7FFF] &^ 0xFF) | uint16(v)
		if !p.vmIncOnHigh {
			p.vmAddr += p.vmStep
		}
	case 0x2119: // VMDATAH
		p.vram[p.vmAddr&0x7FFF] = (p.vram[p.vmAddr&0x7FFF] &^ 0xFF00) | uint16(v)<<8
		if p.vmIncOnHigh {
			p.vmAddr += p.vmStep
		}

	case 0x211A: // M7SEL
		p.m7sel = v
	case 0x211B: // M7A
		p.m7a = int16(uint16(v)<<8 | uint16(p.m7Latch))
		p.m7Latch = v
	case 0x211C: // M7B
		p.m7b = int16(uint16(v)<<8 | uint16(p.m7Latch))
		p.m7Latch = v
	case 0x211D: // M7C
		p.m7c = int16(uint16(v)<<8 | uint16(p.m7Latch))
		p.m7Latch = v
	case 0x211E: // M7D
		p.m7d = int16(uint16(v)<<8 | uint16(p.m7Latch))
		p.m7Latch = v
	case 0x211F, 0x2120: // M7X/M7Y
		p.m7Latch = v

	case 0x2121: // CGADD
		p.cgAdd = v
		p.cgLatchLow = false
	case 0x2122: // CGDATA
		if !p.cgLatchLow {
			p.cgLowByte = v
			p.cgLatchLow = true
		} else {
			p.cgram[p.cgAdd] = uint16(p.cgLowByte) | uint16(v&0x7F)<<8
			p.cgAdd++
			p.cgLatchLow = false
		}

	case 0x2123: // W12SEL
		p.w12sel = v
	case 0x2124: // W34SEL
		p.w34sel = v
	case 0x2125: // WOBJSEL
		p.wobjsel = v
	case 0x2126: // WH0 (window A left)
		p.winA[0].Left = v
	case 0x2127: // WH1 (window A right)
		p.winA[0].Right = v
	case 0x2128: // WH2 (window B left)
		p.winA[1].Left = v
	case 0x2129: // WH3 (window B right)
		p.winA[1].Right = v
	case 0x212A: // WBGLOG
		p.wbglog = v
	case 0x212B: // WOBJLOG
		p.wobjlog = v

	case 0x212C:
		p.tm = v
	case 0x212D:
		p.ts = v
	case 0x212E:
		p.tmw = v
	case 0x212F:
		p.tsw = v
	case 0x2130:
		p.cgwsel = v
	case 0x2131:
		p.cgadsub = v
	case 0x2132: // COLDATA
		if v&0x20 != 0 {
			p.fixedR = v & 0x1F
		}
		if v&0x40 != 0 {
			p.fixedG = v & 0x1F
		}
		if v&0x80 != 0 {
			p.fixedB = v & 0x1F
		}
	case 0x2133: // SETINI
		p.interlace = v&0x01 != 0
		p.overscan = v&0x04 != 0
		p.pseudoHires = v&0x08 != 0
		p.extBG = v&0x40 != 0
	}
}

// ReadRegister handles a CPU read of a $21xx PPU port. Write-only
// sub-registers return open bus handled by the caller (the bus passes
// through its own open-bus byte when this returns ok=false).
func (p *PPU) ReadRegister(addr uint16) (uint8, bool) {
	switch addr {
	case 0x2134: // MPYL
		return uint8(p.mode7Product()), true
	case 0x2135:
		return uint8(p.mode7Product() >> 8), true
	case 0x2136:
		return uint8(p.mode7Product() >> 16), true
	case 0x2137: // SLHV - latches current H/V position for OPHCT/OPVCT
		p.ophct = uint16(p.currentDot)
		p.opvct = uint16(p.currentScanline)
		p.latchToggle = false
		return 0, true
	case 0x2138: // OAMDATAREAD
		v := p.oam[p.oamAddr]
		p.oamAddr = (p.oamAddr + 1) % oamSize
		return v, true
	case 0x2139: // VMDATALREAD
		v := uint8(p.vmReadBuffer)
		if !p.vmIncOnHigh {
			p.vmAddr += p.vmStep
			p.vmReadBuffer = p.vram[p.vmAddr&0x7FFF]
		}
		return v, true
	case 0x213A: // VMDATAHREAD
		v := uint8(p.vmReadBuffer >> 8)
		if p.vmIncOnHigh {
			p.vmAddr += p.vmStep
			p.vmReadBuffer = p.vram[p.vmAddr&0x7FFF]
		}
		return v, true
	case 0x213B: // CGDATAREAD
		color := p.cgram[p.cgAdd]
		var v uint8
		if !p.cgReadLatchLow {
			v = uint8(color)
		} else {
			v = uint8(color>>8) & 0x7F
			p.cgAdd++
		}
		p.cgReadLatchLow = !p.cgReadLatchLow
		return v, true
	case 0x213C: // OPHCT
		v := uint8(p.ophct)
		if p.latchToggle {
			v = uint8(p.ophct >> 8)
		}
		p.latchToggle = !p.latchToggle
		return v, true
	case 0x213D: // OPVCT
		v := uint8(p.opvct)
		if p.latchToggle {
			v = uint8(p.opvct >> 8)
		}
		p.latchToggle = !p.latchToggle
		return v, true
	case 0x213E: // STAT77
		return 0x01, true // version nibble; range-over flags omitted
	case 0x213F: // STAT78
		p.latchToggle = false
		return 0x02, true // NTSC, version nibble
	}
	return 0, false
}

func (p *PPU) mode7Product() uint32 {
	return uint32(int32(p.m7a) * int32(int8(p.m7x>>8)))
}
