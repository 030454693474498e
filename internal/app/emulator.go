// Package app provides emulator integration for the main application.
package app

import (
	"fmt"
	"time"

	"github.com/rng999/gosnes/internal/cartridge"
	"github.com/rng999/gosnes/internal/scheduler"
)

// Emulator drives the scheduler at a fixed 60fps cadence (for every region) and
// exposes the frame/audio buffers the application's render loop consumes.
type Emulator struct {
	Scheduler *scheduler.Scheduler
	config    *Config

	targetFrameTime time.Duration

	frameBuffer  []byte
	audioSamples []float32

	actualFrameTime  time.Duration
	emulationTime    time.Duration
	averageFrameTime time.Duration

	isRunning     bool
	lastResetTime time.Time

	romPath string
}

// NewEmulator creates a new emulator instance with fixed 60fps timing.
func NewEmulator(config *Config) *Emulator {
	e := &Emulator{
		Scheduler:       scheduler.New(),
		config:          config,
		targetFrameTime: time.Second / 60,
		audioSamples:    make([]float32, 0, 1024),
		lastResetTime:   time.Now(),
	}
	e.Scheduler.SetAudioSampleRate(config.Audio.SampleRate)
	return e
}

// LoadROM loads a cartridge image and resets the system to its entry point.
func (e *Emulator) LoadROM(path string) error {
	cart, err := cartridge.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load ROM %s: %v", path, err)
	}
	e.romPath = path
	e.Scheduler.LoadCartridge(cart)
	return nil
}

// Reset resets emulation to the cartridge's entry point.
func (e *Emulator) Reset() {
	e.Scheduler.Reset()
	e.lastResetTime = time.Now()
}

// Start marks the emulator as running.
func (e *Emulator) Start() { e.isRunning = true }

// Stop marks the emulator as stopped.
func (e *Emulator) Stop() { e.isRunning = false }

// Update runs exactly one frame of emulation if the emulator is running,
// translating a non-OK frame result into an error for the caller.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	frameStart := time.Now()
	result := e.StepFrame()
	e.actualFrameTime = time.Since(frameStart)

	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.actualFrameTime
	} else {
		e.averageFrameTime = time.Duration(
			float64(e.averageFrameTime)*0.95 + float64(e.actualFrameTime)*0.05,
		)
	}

	switch result.Status {
	case scheduler.StatusHalted:
		return fmt.Errorf("CPU halted at %02x:%04x", result.HaltedAt.Bank, result.HaltedAt.Offset)
	case scheduler.StatusWatchdog:
		return fmt.Errorf("scheduler watchdog tripped (instruction cap exceeded)")
	}

	return nil
}

// StepFrame runs one scheduler frame, refreshes the frame/audio buffers, and
// returns the raw scheduler result. A halted or watchdog-tripped frame stops
// the emulator; it is still returned rather than surfaced as an error, so
// callers can inspect Status and HaltedAt directly.
func (e *Emulator) StepFrame() scheduler.FrameResult {
	emulationStart := time.Now()

	result := e.Scheduler.StepFrame()

	e.frameBuffer = e.Scheduler.RenderMainScreenRGBA(256, 224)
	if samples := e.Scheduler.GetAudioSamples(); len(samples) > 0 {
		e.audioSamples = append(e.audioSamples[:0], samples...)
	}

	e.emulationTime = time.Since(emulationStart)

	if result.Status != scheduler.StatusOK {
		e.isRunning = false
	}

	return result
}

// GetFrameBuffer returns the current RGBA frame buffer (256x224x4 bytes).
func (e *Emulator) GetFrameBuffer() []byte { return e.frameBuffer }

// GetAudioSamples returns the most recently drained stereo audio samples.
func (e *Emulator) GetAudioSamples() []float32 { return e.audioSamples }

// GetFrameCount returns the number of frames completed since Reset.
func (e *Emulator) GetFrameCount() uint64 { return e.Scheduler.FrameCount() }

// GetEmulationTime returns the CPU time spent producing the last frame.
func (e *Emulator) GetEmulationTime() time.Duration { return e.emulationTime }

// GetActualFrameTime returns the wall-clock time the last Update() call took.
func (e *Emulator) GetActualFrameTime() time.Duration { return e.actualFrameTime }

// GetAverageFrameTime returns an exponentially weighted average frame time.
func (e *Emulator) GetAverageFrameTime() time.Duration { return e.averageFrameTime }

// GetTargetFrameTime returns the target frame time (60fps).
func (e *Emulator) GetTargetFrameTime() time.Duration { return e.targetFrameTime }

// GetEmulationSpeed returns emulation speed as a percentage of real-time.
func (e *Emulator) GetEmulationSpeed() float64 {
	if e.actualFrameTime == 0 {
		return 0
	}
	return float64(e.targetFrameTime) / float64(e.actualFrameTime) * 100.0
}

// IsRunning returns whether the emulator is currently running.
func (e *Emulator) IsRunning() bool { return e.isRunning }

// GetUptime returns the time elapsed since the last Reset.
func (e *Emulator) GetUptime() time.Duration { return time.Since(e.lastResetTime) }

// SetControllerButtons sets one controller's full 12-button state mask, in
// the bit order documented on input.Button.
func (e *Emulator) SetControllerButtons(player int, mask uint16) {
	e.Scheduler.SetControllerButtons(player, mask)
}

// ROMPath returns the path of the currently loaded ROM, if any.
func (e *Emulator) ROMPath() string { return e.romPath }
