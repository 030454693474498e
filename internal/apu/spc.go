package apu

import (
	"bytes"
	"errors"
)

const (
	spcHeaderSize  = 66
	spcMagic       = "SNES-SPC700 Sound File Data v0.30"
	spcARAMSize    = 0x10000
	spcDSPRegSize  = 128
	spcExtraRAMSize = 64
	spcTotalSize   = spcHeaderSize + spcARAMSize + spcDSPRegSize + spcExtraRAMSize
)

// ErrSpcMalformed is returned when an SPC dump's header magic doesn't
// match; the APU's prior state is left untouched.
var ErrSpcMalformed = errors.New("apu: malformed SPC header")

// LoadSPC restores SMP registers, ARAM, and DSP state from an SPC audio
// dump. The layout is a 66-byte header, 64 KiB of ARAM, 128 DSP registers,
// and 64 bytes of extra RAM (the save-RAM region some drivers use).
func (a *APU) LoadSPC(data []uint8) error {
	if len(data) < spcTotalSize {
		return ErrSpcMalformed
	}
	if !bytes.HasPrefix(data, []byte(spcMagic)) {
		return ErrSpcMalformed
	}

	pc := uint16(data[37]) | uint16(data[38])<<8
	a.Reset()
	a.smp.PC = pc
	a.smp.A = data[39]
	a.smp.X = data[40]
	a.smp.Y = data[41]
	a.smp.PSW = data[42]
	a.smp.SP = data[43]

	copy(a.smp.aram[:], data[spcHeaderSize:spcHeaderSize+spcARAMSize])

	dspOffset := spcHeaderSize + spcARAMSize
	copy(a.smp.dsp.regs[:], data[dspOffset:dspOffset+spcDSPRegSize])

	extraOffset := dspOffset + spcDSPRegSize
	copy(a.smp.aram[0xFFC0:0x10000], data[extraOffset:extraOffset+spcExtraRAMSize])

	a.smp.iplEnabled = false // a loaded dump replaces the IPL state entirely
	return nil
}

// PatchWaitLoop scans ARAM for the two common port-$F4 equality spin-loops
// used by SPC dumps that expect the main CPU to have already written a
// handshake byte, and resolves each one by writing the expected value
// directly into the mailbox rather than mutating the uploaded code.
//
// Patterns (bytes at PC): `E5 F4 00 68 vv D0 ofs` (MOV A,!$00F4 / CMP A,#vv)
// and `E4 F4 68 vv D0 ofs` (MOV A,$F4 / CMP A,#vv).
func (a *APU) PatchWaitLoop() {
	aram := a.smp.aram[:]
	for i := 0; i+6 < len(aram); i++ {
		switch {
		case aram[i] == 0xE5 && aram[i+1] == 0xF4 && aram[i+2] == 0x00 && aram[i+3] == 0x68 && aram[i+5] == 0xD0:
			vv := aram[i+4]
			a.mailbox.ForcePortValue(0, vv)
		case aram[i] == 0xE4 && aram[i+1] == 0xF4 && aram[i+2] == 0x68 && aram[i+4] == 0xD0:
			vv := aram[i+3]
			a.mailbox.ForcePortValue(0, vv)
		}
	}
}
