package apu

// resolveDP returns the effective direct-page address for a dp-page offset
// byte, honoring PSW.P (page 0 vs page 1).
func (s *SMP) resolveDP(offset uint8) uint16 {
	return s.directPageBase() + uint16(offset)
}

func (s *SMP) readDP(offset uint8) uint8     { return s.Read8(s.resolveDP(offset)) }
func (s *SMP) writeDP(offset uint8, v uint8) { s.Write8(s.resolveDP(offset), v) }

func (s *SMP) readDPWord(offset uint8) uint16 {
	lo := s.readDP(offset)
	hi := s.readDP(offset + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (s *SMP) writeDPWord(offset uint8, v uint16) {
	s.writeDP(offset, uint8(v))
	s.writeDP(offset+1, uint8(v>>8))
}

// indirectDPIndexedX / indirectDPIndirectY implement the two indirect
// addressing families [dp+X] and [dp]+Y used by MOV A,[dp+X] / MOV A,[dp]+Y etc.
func (s *SMP) indirectDPIndexedX(offset uint8) uint16 {
	ptr := s.resolveDP(offset + s.X)
	lo := s.Read8(ptr)
	hi := s.Read8(ptr + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (s *SMP) indirectDPIndirectY(offset uint8) uint16 {
	ptr := s.resolveDP(offset)
	lo := s.Read8(ptr)
	hi := s.Read8(ptr + 1)
	return (uint16(lo) | uint16(hi)<<8) + uint16(s.Y)
}
