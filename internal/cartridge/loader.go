package cartridge

import (
	"errors"
	"io"
	"os"
)

// Header-related constants, grounded on the standard SNES internal header
// layout (title/map-mode/ROM-size/RAM-size/checksum at fixed offsets
// relative to the LoROM/HiROM mirror of bank $00/$FF).
const (
	copierHeaderSize = 512

	loROMHeaderOffset = 0x7FC0
	hiROMHeaderOffset = 0xFFC0

	headerTitleOffset      = 0x00
	headerTitleLength      = 21
	headerMapModeOffset    = 0x15
	headerROMSizeOffset    = 0x17
	headerRAMSizeOffset    = 0x18
	headerChecksumCOffset  = 0x1C
	headerChecksumOffset   = 0x1E
	// headerResetVectorOffset is the emulation-mode RESET vector, the last
	// of the six emulation vectors in the header's vector block.
	headerResetVectorOffset = 0x3C
)

// LoadFile reads a ROM image from disk, strips an optional 512-byte copier
// header, scores the LoROM and HiROM header candidates (checksum/complement
// pair, mapping byte, ROM-size byte, ASCII title, reset vector; see
// scoreHeader), and builds a Cartridge using whichever mapping wins.
func LoadFile(path string) (*Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// LoadBytes builds a Cartridge from an in-memory ROM image, following the
// same header-detection rules as LoadFile.
func LoadBytes(data []uint8) (*Cartridge, error) {
	if len(data)%1024 == copierHeaderSize%1024 && len(data) > copierHeaderSize {
		data = data[copierHeaderSize:]
	}
	if len(data) < 0x8000 {
		return nil, errors.New("cartridge: ROM image too small")
	}

	loScore := scoreHeader(data, loROMHeaderOffset)
	hiScore := scoreHeader(data, hiROMHeaderOffset)

	mode := MapLoROM
	offset := loROMHeaderOffset
	if hiScore > loScore {
		mode = MapHiROM
		offset = hiROMHeaderOffset
	}

	ramSize := 0
	hasBattery := false
	if offset+headerRAMSizeOffset < len(data) {
		shift := data[offset+headerRAMSizeOffset]
		if shift > 0 && shift < 8 {
			ramSize = 1024 << (shift - 1)
		}
		if offset+0x16 < len(data) {
			cartType := data[offset+0x16]
			hasBattery = cartType == 0x02 || cartType == 0x05 || cartType == 0x06
		}
	}

	return New(data, ramSize, mode, hasBattery)
}

// scoreHeader returns how plausible a header candidate at offset looks, by
// checking checksum-complement validity, the mapping byte, ROM-size
// plausibility, title ASCII-ness, and reset-vector plausibility.
func scoreHeader(data []uint8, offset int) int {
	if offset+headerChecksumOffset+2 > len(data) {
		return -1
	}
	mapMode := data[offset+headerMapModeOffset]
	checksum := uint16(data[offset+headerChecksumOffset]) | uint16(data[offset+headerChecksumOffset+1])<<8
	complement := uint16(data[offset+headerChecksumCOffset]) | uint16(data[offset+headerChecksumCOffset+1])<<8

	score := 0
	if checksum^complement == 0xFFFF {
		score += 10
	}
	switch mapMode & 0x2F {
	case 0x20, 0x21, 0x25:
		score += 5
	}
	romSizeShift := data[offset+headerROMSizeOffset]
	if romSizeShift > 0 && romSizeShift < 16 {
		score += 1
	}
	if titleLooksLikeASCII(data, offset) {
		score += 3
	}
	if resetVectorLooksPlausible(data, offset) {
		score += 2
	}
	return score
}

// titleLooksLikeASCII reports whether the 21-byte title field holds only
// printable ASCII or null padding, as a real cartridge's title does.
func titleLooksLikeASCII(data []uint8, offset int) bool {
	start := offset + headerTitleOffset
	if start+headerTitleLength > len(data) {
		return false
	}
	for _, b := range data[start : start+headerTitleLength] {
		if b != 0x00 && (b < 0x20 || b > 0x7E) {
			return false
		}
	}
	return true
}

// resetVectorLooksPlausible reports whether the emulation-mode RESET vector
// points into the upper half of the bank, where ROM is mapped on both
// LoROM and HiROM.
func resetVectorLooksPlausible(data []uint8, offset int) bool {
	addr := offset + headerResetVectorOffset
	if addr+2 > len(data) {
		return false
	}
	reset := uint16(data[addr]) | uint16(data[addr+1])<<8
	return reset >= 0x8000
}
