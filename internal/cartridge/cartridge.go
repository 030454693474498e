// Package cartridge implements ROM mapping for SNES cartridges.
package cartridge

import "errors"

// MapMode identifies how a cartridge's ROM is laid out across banks.
type MapMode uint8

const (
	MapLoROM MapMode = iota
	MapHiROM
)

// Mapper translates a 24-bit bank:offset address into a ROM/SRAM access.
// ok is false when the address is unmapped and the bus should fall back
// to open-bus behavior.
type Mapper interface {
	Read(bank uint8, offset uint16) (value uint8, ok bool)
	Write(bank uint8, offset uint16, value uint8) (ok bool)
}

// Cartridge owns ROM and SRAM storage and dispatches to a Mapper.
type Cartridge struct {
	rom  []uint8
	sram []uint8

	mapMode    MapMode
	hasBattery bool

	mapper Mapper
}

// New builds a Cartridge from a raw, already-unheadered ROM image, an SRAM
// size in bytes (0 if the cartridge has none), and the mapping mode to use.
func New(rom []uint8, sramSize int, mode MapMode, hasBattery bool) (*Cartridge, error) {
	if len(rom) == 0 {
		return nil, errors.New("cartridge: empty ROM image")
	}
	c := &Cartridge{
		rom:        rom,
		sram:       make([]uint8, sramSize),
		mapMode:    mode,
		hasBattery: hasBattery,
	}
	switch mode {
	case MapHiROM:
		c.mapper = newHiROMMapper(c)
	default:
		c.mapper = newLoROMMapper(c)
	}
	return c, nil
}

// Read performs a bank:offset access through the active mapper.
func (c *Cartridge) Read(bank uint8, offset uint16) (uint8, bool) {
	return c.mapper.Read(bank, offset)
}

// Write performs a bank:offset access through the active mapper. Returns
// false for ROM addresses so the bus can apply open-bus semantics.
func (c *Cartridge) Write(bank uint8, offset uint16, value uint8) bool {
	return c.mapper.Write(bank, offset, value)
}

// MapMode reports the cartridge's mapping mode.
func (c *Cartridge) MapMode() MapMode {
	return c.mapMode
}

// HasBattery reports whether SRAM contents should be persisted.
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// SRAM returns the raw battery-backed RAM, for save-file persistence.
func (c *Cartridge) SRAM() []uint8 {
	return c.sram
}

// LoadSRAM replaces SRAM contents, e.g. from a save file on disk.
func (c *Cartridge) LoadSRAM(data []uint8) {
	n := copy(c.sram, data)
	for i := n; i < len(c.sram); i++ {
		c.sram[i] = 0
	}
}

// romRead returns a byte from the ROM image, wrapping on mirror boundaries
// for images whose size isn't a power of two.
func (c *Cartridge) romRead(index int) uint8 {
	if len(c.rom) == 0 {
		return 0
	}
	return c.rom[index%len(c.rom)]
}

func (c *Cartridge) sramRead(index int) uint8 {
	if len(c.sram) == 0 {
		return 0
	}
	return c.sram[index%len(c.sram)]
}

func (c *Cartridge) sramWrite(index int, value uint8) {
	if len(c.sram) == 0 {
		return
	}
	c.sram[index%len(c.sram)] = value
}
