package apu

// APU ties the SMP (SPC700 CPU) and its owned DSP to the shared mailbox,
// and paces DSP sample generation against the SMP's own instruction clock.
type APU struct {
	smp *SMP

	mailbox Mailbox

	cyclesSinceSample int
	cyclesPerSample   int // SMP cycles (~1.024MHz) per DSP output sample
}

const defaultCyclesPerSample = 32 // 1024000 / 32000

func New() *APU {
	return &APU{
		smp:             newSMP(),
		mailbox:         nullMailbox{},
		cyclesPerSample: defaultCyclesPerSample,
	}
}

func (a *APU) Reset() {
	a.smp.Reset()
	a.cyclesSinceSample = 0
}

// SetMailbox wires the bus's shared mailbox into both the SMP's MMIO path
// and the wait-loop patcher.
func (a *APU) SetMailbox(m Mailbox) {
	a.mailbox = m
	a.smp.SetMailbox(m)
}

// Step runs one SMP instruction and advances the DSP sample clock by the
// matching number of cycles, mixing a new stereo sample whenever the ratio
// rolls over so the scheduler only needs to drive the SMP.
func (a *APU) Step() uint64 {
	cycles := a.smp.Step()
	a.cyclesSinceSample += int(cycles)
	for a.cyclesSinceSample >= a.cyclesPerSample {
		l, r := a.smp.dsp.MixSample()
		a.smp.dsp.pushSample(l, r)
		a.cyclesSinceSample -= a.cyclesPerSample
	}
	return cycles
}

// GetSamples drains the accumulated interleaved stereo sample buffer
// (float32 in [-1,1]) for the frontend's audio sink.
func (a *APU) GetSamples() []float32 {
	return a.smp.dsp.DrainSamples()
}

func (a *APU) SetSampleRate(rate int) {
	a.smp.dsp.SetSampleRate(rate)
	if rate <= 0 {
		return
	}
	a.cyclesPerSample = 1024000 / rate
	if a.cyclesPerSample < 1 {
		a.cyclesPerSample = 1
	}
}
