package apu

// DSP models the S-DSP's 128-byte register file and its 8-voice sample
// mixer. Full BRR decode and echo are simplified (see DESIGN.md): envelope
// and volume register state is tracked exactly since software inspects it
// through $00F2/$00F3, while the mixed waveform is a best-effort sum of
// each voice's current envelope level rather than a true decoded BRR
// waveform.
type DSP struct {
	regs [128]uint8
	addr uint8

	voices [8]voice

	masterVolL, masterVolR int8
	echoVolL, echoVolR     int8
	flags                  uint8 // FLG register: reset/mute/echo-disable/noise-clock

	sampleRate int
	samples    []float32
}

type voice struct {
	volL, volR   int8
	pitch        uint16
	srcn         uint8
	adsr1, adsr2 uint8
	gain         uint8
	envelope     int16
	keyedOn      bool
	envPhase     envPhase
}

type envPhase int

const (
	envRelease envPhase = iota
	envAttack
	envDecay
	envSustain
)

// DSP register offsets within a voice's 0x10-aligned block.
const (
	regVOLL = 0x00
	regVOLR = 0x01
	regPITCHL = 0x02
	regPITCHH = 0x03
	regSRCN = 0x04
	regADSR1 = 0x05
	regADSR2 = 0x06
	regGAIN = 0x07
	regENVX = 0x08
	regOUTX = 0x09
)

func newDSP() *DSP {
	d := &DSP{sampleRate: 32000}
	d.reset()
	return d
}

func (d *DSP) reset() {
	for i := range d.regs {
		d.regs[i] = 0
	}
	d.voices = [8]voice{}
	d.addr = 0
	d.flags = 0x60 // mute and echo-disable on reset
	d.samples = d.samples[:0]
}

func (d *DSP) SetSampleRate(rate int) { d.sampleRate = rate }

func (d *DSP) readData() uint8 {
	if d.addr == 0x7C { // ENDX, cleared on read per hardware quirk is not modeled; return live
		return d.regs[d.addr]
	}
	return d.regs[d.addr&0x7F]
}

func (d *DSP) writeData(v uint8) {
	a := d.addr & 0x7F
	d.regs[a] = v

	if a == 0x4C { // KON
		for i := 0; i < 8; i++ {
			if v&(1<<uint(i)) != 0 {
				d.voices[i].keyedOn = true
				d.voices[i].envPhase = envAttack
				d.voices[i].envelope = 0
			}
		}
		return
	}
	if a == 0x5C { // KOFF
		for i := 0; i < 8; i++ {
			if v&(1<<uint(i)) != 0 {
				d.voices[i].keyedOn = false
				d.voices[i].envPhase = envRelease
			}
		}
		return
	}
	if a == 0x6C { // FLG
		d.flags = v
		return
	}
	if a == 0x0C || a == 0x1C {
		if a == 0x0C {
			d.masterVolL = int8(v)
		} else {
			d.masterVolR = int8(v)
		}
		return
	}
	if a == 0x2C || a == 0x3C {
		if a == 0x2C {
			d.echoVolL = int8(v)
		} else {
			d.echoVolR = int8(v)
		}
		return
	}

	if a < 0x80 {
		voiceIdx := a >> 4
		if voiceIdx < 8 {
			reg := a & 0x0F
			vo := &d.voices[voiceIdx]
			switch reg {
			case regVOLL:
				vo.volL = int8(v)
			case regVOLR:
				vo.volR = int8(v)
			case regPITCHL:
				vo.pitch = (vo.pitch &^ 0xFF) | uint16(v)
			case regPITCHH:
				vo.pitch = (vo.pitch & 0xFF) | uint16(v&0x3F)<<8
			case regSRCN:
				vo.srcn = v
			case regADSR1:
				vo.adsr1 = v
			case regADSR2:
				vo.adsr2 = v
			case regGAIN:
				vo.gain = v
			}
		}
	}
}

// tickEnvelope advances one voice's envelope by one DSP sample tick using
// the ADSR/GAIN model (linear approximation of the exponential hardware
// curves, adequate for the mailbox/audibility contract this emulator
// targets).
func (v *voice) tickEnvelope() {
	useADSR := v.adsr1&0x80 != 0
	const maxEnv = 0x7FF

	if !v.keyedOn && v.envPhase == envRelease {
		if v.envelope > 0 {
			v.envelope -= 8
			if v.envelope < 0 {
				v.envelope = 0
			}
		}
		return
	}

	if !useADSR {
		// Direct GAIN mode: the 7-bit gain register is the level target.
		target := int16(v.gain&0x7F) << 4
		if v.envelope < target {
			v.envelope += 16
		} else if v.envelope > target {
			v.envelope -= 16
		}
		return
	}

	switch v.envPhase {
	case envAttack:
		rate := v.adsr1 & 0x0F
		v.envelope += int16(rate) + 32
		if v.envelope >= maxEnv {
			v.envelope = maxEnv
			v.envPhase = envDecay
		}
	case envDecay:
		sustainLevel := int16((v.adsr2>>5)&0x7) << 8
		v.envelope -= (v.envelope >> 8) + 1
		if v.envelope <= sustainLevel {
			v.envPhase = envSustain
		}
	case envSustain:
		rate := v.adsr2 & 0x1F
		if rate != 0 {
			v.envelope -= (v.envelope >> 8) + 1
			if v.envelope < 0 {
				v.envelope = 0
			}
		}
	}
}

// MixSample advances every voice's envelope by one output sample and
// returns the summed stereo frame, scaled by the master volume.
func (d *DSP) MixSample() (left, right int16) {
	var sumL, sumR int32
	for i := range d.voices {
		v := &d.voices[i]
		v.tickEnvelope()
		if d.flags&0x40 != 0 { // mute
			continue
		}
		sumL += int32(v.envelope) * int32(v.volL) / 128
		sumR += int32(v.envelope) * int32(v.volR) / 128
	}
	sumL = sumL * int32(d.masterVolL) / 128
	sumR = sumR * int32(d.masterVolR) / 128
	left = clampSample(sumL)
	right = clampSample(sumR)
	return
}

func (d *DSP) pushSample(l, r int16) {
	d.samples = append(d.samples, float32(l)/32768, float32(r)/32768)
}

// DrainSamples returns and clears the accumulated stereo sample buffer.
func (d *DSP) DrainSamples() []float32 {
	out := d.samples
	d.samples = nil
	return out
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
