// Package scheduler drives one cooperative SNES frame: it owns scanline,
// dot, and frame-counter state (the PPU itself only tracks composer
// position) and steps the CPU, PPU, APU, and DMA engine in lockstep.
package scheduler

import (
	"github.com/rng999/gosnes/internal/apu"
	"github.com/rng999/gosnes/internal/bus"
	"github.com/rng999/gosnes/internal/cartridge"
	"github.com/rng999/gosnes/internal/cpu"
	"github.com/rng999/gosnes/internal/dma"
	"github.com/rng999/gosnes/internal/input"
	"github.com/rng999/gosnes/internal/mailbox"
	"github.com/rng999/gosnes/internal/ppu"
)

// Region selects the scanline count a frame runs for.
type Region int

const (
	NTSC Region = iota
	PAL
)

const (
	dotsPerScanline = 340
	scanlinesNTSC   = 262
	scanlinesPAL    = 312

	vblankStartScanline  = 225
	firstVisibleScanline = 0
	lastVisibleScanline  = 224

	// dotsPerCPUCycle approximates the ratio between the PPU's ~5.37MHz dot
	// clock and the 65816's variable (~2.68MHz fast, ~1.79MHz slow) cycle
	// rate. Exact master-cycle accounting is out of scope (see Non-goals);
	// this keeps scanline/dot position roughly in step with CPU progress.
	dotsPerCPUCycle = 2

	// hblankStartDot is the logical-dot threshold (out of dotsPerScanline)
	// past which HVBJOY's HBlank bit reads set, approximating the real
	// ~1096/1364 master-cycle boundary.
	hblankStartDot = 274

	// cpuCyclesPerAPUStep approximates the ~2.62:1 ratio between the main
	// CPU's clock and the SMP's fixed 1.024MHz clock.
	cpuCyclesPerAPUStep = 3

	// maxInstructionsPerScanline caps the CPU steps one scanline may take,
	// so a CPU that never advances the dot counter cannot loop forever
	// within a single StepFrame call.
	maxInstructionsPerScanline = 20000
)

// Status reports how a StepFrame call ended.
type Status int

const (
	StatusOK Status = iota
	StatusHalted
	StatusWatchdog
)

// FrameResult reports how a StepFrame call ended.
type FrameResult struct {
	Status   Status
	HaltedAt cpu.Address
}

// Scheduler wires together one SNES system's components and drives them
// through the fixed per-tick order: CPU instruction, any DMA the write
// side of that instruction triggered (synchronous, via the bus write
// path), APU advance, then scanline/dot/HDMA/NMI/IRQ bookkeeping.
type Scheduler struct {
	CPU     *cpu.CPU
	PPU     *ppu.PPU
	APU     *apu.APU
	DMA     *dma.Engine
	Memory  *bus.Memory
	Input   *input.InputState
	Mailbox *mailbox.Mailbox

	region            Region
	scanlinesPerFrame int

	scanline int
	dot      int
	frame    uint64

	// wrapped is set when the scanline counter wraps to 0 and consumed by
	// that line's entry, so the line 0 Reset starts on completes no frame.
	wrapped bool

	apuCredit int

	hIRQFiredThisLine   bool
	vhIRQFiredThisFrame bool
}

// New builds a fully wired, unreset Scheduler with no cartridge attached.
func New() *Scheduler {
	mb := mailbox.New()
	in := input.NewInputState()
	p := ppu.New()
	a := apu.New()
	a.SetMailbox(mb)

	m := bus.New(p, mb, in)
	d := dma.New(m)
	m.SetDMA(d)

	c := cpu.New(m)

	s := &Scheduler{
		CPU:     c,
		PPU:     p,
		APU:     a,
		DMA:     d,
		Memory:  m,
		Input:   in,
		Mailbox: mb,
		region:  NTSC,
	}
	s.SetRegion(NTSC)
	return s
}

// SetRegion selects NTSC (262 scanlines) or PAL (312 scanlines) frame
// timing. The visible area and VBlank entry scanline are unaffected.
func (s *Scheduler) SetRegion(r Region) {
	s.region = r
	if r == PAL {
		s.scanlinesPerFrame = scanlinesPAL
	} else {
		s.scanlinesPerFrame = scanlinesNTSC
	}
}

// LoadCartridge attaches a parsed cartridge and resets the CPU so it picks
// up the reset vector from the new ROM.
func (s *Scheduler) LoadCartridge(cart *cartridge.Cartridge) {
	s.Memory.SetCartridge(cart)
	s.Reset()
}

func (s *Scheduler) Reset() {
	s.CPU.Reset()
	s.PPU.Reset()
	s.APU.Reset()
	s.Input.Reset()

	s.scanline = 0
	s.dot = 0
	s.frame = 0
	s.wrapped = false
	s.apuCredit = 0
	s.hIRQFiredThisLine = false
	s.vhIRQFiredThisFrame = false

	s.Memory.SetVBlank(false)
	s.Memory.SetHBlank(false)
}

// FrameCount returns the number of frames completed since Reset.
func (s *Scheduler) FrameCount() uint64 { return s.frame }

// StepFrame advances the system until exactly one VBlank-to-line-0
// transition has occurred, the CPU hits an unrecoverable halt, or the
// instruction-per-scanline watchdog trips.
func (s *Scheduler) StepFrame() FrameResult {
	startFrame := s.frame
	for s.frame == startFrame {
		if halted, at := s.CPU.Halted(); halted {
			return FrameResult{Status: StatusHalted, HaltedAt: at}
		}
		if !s.runScanline() {
			return FrameResult{Status: StatusWatchdog}
		}
	}
	return FrameResult{Status: StatusOK}
}

// runScanline drives CPU instructions for one scanline's worth of dots,
// handling the HDMA/NMI/IRQ transitions that occur at its start. It
// returns false if the instruction-per-scanline watchdog tripped.
func (s *Scheduler) runScanline() bool {
	s.enterScanline()

	instructions := 0
	ok := true
	for s.dot < dotsPerScanline {
		if halted, _ := s.CPU.Halted(); halted {
			break
		}
		if instructions >= maxInstructionsPerScanline {
			ok = false
			break
		}
		instructions++

		s.CPU.SetIRQLine(s.Memory.IRQFlag())
		cycles, _ := s.CPU.Step()

		s.advanceAPU(cycles)

		prevDot := s.dot
		s.dot += int(cycles) * dotsPerCPUCycle
		s.Memory.SetHBlank(s.dot >= hblankStartDot)

		s.checkHIRQCrossing(prevDot)
	}

	s.PPU.SetPosition(s.scanline, s.dot)
	s.advanceScanline()
	return ok
}

// enterScanline performs the once-per-scanline transitions that happen
// before its first CPU instruction: HDMA for visible lines, and the
// VBlank/NMI/auto-joy/HDMA-init sequence at line 225 and line 0.
func (s *Scheduler) enterScanline() {
	s.PPU.SetPosition(s.scanline, 0)

	switch {
	case s.scanline == vblankStartScanline:
		s.Memory.SetVBlank(true)
		s.Memory.SetNMIFlag(true)
		if s.Memory.NMIEnabled() {
			s.CPU.SetNMI()
		}
		if s.Memory.AutoJoyEnabled() {
			s.Input.LatchAutoJoy()
		}
		s.DMA.InitHDMA()
	case s.scanline == firstVisibleScanline:
		s.Memory.SetVBlank(false)
		s.vhIRQFiredThisFrame = false
		if s.wrapped {
			s.wrapped = false
			s.frame++ // the VBlank -> line 0 transition completes one frame
		}
	}

	s.hIRQFiredThisLine = false

	if s.scanline >= firstVisibleScanline+1 && s.scanline <= lastVisibleScanline {
		s.DMA.StepHDMALine()
	}
	if s.scanline >= firstVisibleScanline && s.scanline <= lastVisibleScanline {
		s.PPU.RenderScanline(s.scanline)
	}

	s.checkVOnlyIRQ()
}

// checkVOnlyIRQ fires the V-only IRQ combination (NMITIMEN bits 5:4 = 10)
// once per frame at H=0 of the target scanline.
func (s *Scheduler) checkVOnlyIRQ() {
	if s.Memory.VIRQEnabled() && !s.Memory.HIRQEnabled() && int(s.Memory.VTime()) == s.scanline {
		s.Memory.SetIRQFlag(true)
	}
}

// checkHIRQCrossing fires the H-only combination every scanline, and the
// combined H+V combination once per frame, when dot crosses HTime.
func (s *Scheduler) checkHIRQCrossing(prevDot int) {
	htime := int(s.Memory.HTime())
	crossed := prevDot < htime && s.dot >= htime

	switch {
	case s.Memory.HIRQEnabled() && !s.Memory.VIRQEnabled():
		if crossed && !s.hIRQFiredThisLine {
			s.hIRQFiredThisLine = true
			s.Memory.SetIRQFlag(true)
		}
	case s.Memory.HIRQEnabled() && s.Memory.VIRQEnabled():
		if crossed && int(s.Memory.VTime()) == s.scanline && !s.vhIRQFiredThisFrame {
			s.vhIRQFiredThisFrame = true
			s.Memory.SetIRQFlag(true)
		}
	}
}

// advanceAPU steps the SMP a number of times roughly proportional to the
// CPU cycles just spent, per cpuCyclesPerAPUStep.
func (s *Scheduler) advanceAPU(cpuCycles uint64) {
	s.apuCredit += int(cpuCycles)
	for s.apuCredit >= cpuCyclesPerAPUStep {
		s.APU.Step()
		s.apuCredit -= cpuCyclesPerAPUStep
	}
}

// advanceScanline moves to the next scanline, wrapping the counter back to
// 0 without yet running its entry transitions (enterScanline does that,
// including the frame-counter increment, on the following runScanline
// call). The dot approximation isn't carried forward precisely (see
// dotsPerCPUCycle); each scanline starts its own fresh budget.
func (s *Scheduler) advanceScanline() {
	s.dot = 0
	s.scanline++
	if s.scanline >= s.scanlinesPerFrame {
		s.scanline = 0
		s.wrapped = true
	}
}

// RenderMainScreenRGBA composes the full visible frame buffer.
func (s *Scheduler) RenderMainScreenRGBA(w, h int) []byte {
	return s.PPU.RenderMainScreenRGBA(w, h)
}

// GetAudioSamples drains the APU's accumulated stereo sample buffer.
func (s *Scheduler) GetAudioSamples() []float32 {
	return s.APU.GetSamples()
}

func (s *Scheduler) SetAudioSampleRate(rate int) {
	s.APU.SetSampleRate(rate)
}

func (s *Scheduler) SetControllerButtons(controller int, mask uint16) {
	switch controller {
	case 1:
		s.Input.SetButtons1(mask)
	case 2:
		s.Input.SetButtons2(mask)
	}
}
