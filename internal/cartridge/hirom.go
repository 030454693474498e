package cartridge

// hiROMMapper implements the HiROM layout: each bank is a full 64KB ROM
// slice, addressed directly from $C0-$FF (and mirrored at $40-$7D and, for
// the upper half of each bank, $00-$3F).
type hiROMMapper struct {
	cart *Cartridge
}

func newHiROMMapper(cart *Cartridge) *hiROMMapper {
	return &hiROMMapper{cart: cart}
}

func (m *hiROMMapper) Read(bank uint8, offset uint16) (uint8, bool) {
	b := bank &^ 0x80

	if b <= 0x3F && offset >= 0x6000 && offset <= 0x7FFF {
		return m.cart.sramRead(int(offset - 0x6000)), true
	}

	if b <= 0x3F && offset < 0x8000 {
		return 0, false
	}

	romIndex := int(b&0x3F)*0x10000 + int(offset)
	return m.cart.romRead(romIndex), true
}

func (m *hiROMMapper) Write(bank uint8, offset uint16, value uint8) bool {
	b := bank &^ 0x80

	if b <= 0x3F && offset >= 0x6000 && offset <= 0x7FFF {
		m.cart.sramWrite(int(offset-0x6000), value)
		return true
	}
	return false
}
