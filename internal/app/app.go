// Package app implements the main SNES emulator application with GUI support.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rng999/gosnes/internal/graphics"
	"github.com/rng999/gosnes/internal/input"
	"github.com/rng999/gosnes/internal/scheduler"
)

// Application represents the main SNES emulator application
type Application struct {
	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	config   *Config
	emulator *Emulator
	states   *StateManager

	running     bool
	paused      bool
	initialized bool
	headless    bool

	frameCount  uint64
	startTime   time.Time
	lastFPSTime time.Time
	currentFPS  float64

	romPath string

	lastESCTime time.Time

	controller1Mask uint16
	controller2Mask uint16
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// NewApplication creates a new SNES emulator application
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a new SNES emulator application with optional headless mode
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:      NewConfig(),
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents(headless bool) error {
	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %v", err)
	}

	app.emulator = NewEmulator(app.config)
	app.states = NewStateManager(app.config.Paths.SaveStates)

	app.initialized = true
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "ebitengine":
			backendType = graphics.BackendEbitengine
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			backendType = graphics.BackendEbitengine
		}
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %v", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "gosnes - Go SNES Emulator",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType == graphics.BackendEbitengine {
			fmt.Printf("[APP_WARNING] Ebitengine backend failed (%v), falling back to headless mode\n", err)
			app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
			if err != nil {
				return fmt.Errorf("failed to create fallback headless backend: %v", err)
			}
			graphicsConfig.Headless = true
			if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
				return fmt.Errorf("failed to initialize fallback headless backend: %v", err)
			}
		} else {
			return fmt.Errorf("failed to initialize graphics backend: %v", err)
		}
	}

	if !headless && !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(
			graphicsConfig.WindowTitle, graphicsConfig.WindowWidth, graphicsConfig.WindowHeight)
		if err != nil {
			return fmt.Errorf("failed to create window: %v", err)
		}
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness, app.config.Video.Contrast, app.config.Video.Saturation)

	return nil
}

// LoadROM loads a ROM file into the emulator
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	if err := app.emulator.LoadROM(romPath); err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}
	app.romPath = romPath

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("gosnes - %s", filepath.Base(romPath)))
	}

	app.emulator.Start()
	return nil
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = time.Now()

	if app.graphicsBackend.GetName() == "Ebitengine" && app.window != nil {
		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			ebitengineWindow.SetEmulatorUpdateFunc(func() error {
				app.processInput()
				if err := app.updateEmulator(); err != nil && app.config.Debug.EnableLogging {
					fmt.Printf("[APP_DEBUG] emulator update error: %v\n", err)
				}
				if err := app.render(); err != nil && app.config.Debug.EnableLogging {
					fmt.Printf("[APP_ERROR] render error: %v\n", err)
				}
				app.updateFPS()
				if app.window.ShouldClose() {
					app.Stop()
				}
				return nil
			})
			return ebitengineWindow.Run()
		}
	}

	for app.running {
		app.processInput()
		if err := app.updateEmulator(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_DEBUG] emulator update error: %v\n", err)
		}
		if err := app.render(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] render error: %v\n", err)
		}
		app.updateFPS()

		if app.window != nil && app.window.ShouldClose() {
			app.Stop()
		}

		time.Sleep(16 * time.Millisecond) // ~60 FPS for non-Ebitengine backends
	}

	return nil
}

// updateEmulator advances emulation by one frame if not paused
func (app *Application) updateEmulator() error {
	if !app.paused && app.romPath != "" {
		return app.emulator.Update()
	}
	return nil
}

// processInput processes input events from the graphics backend
func (app *Application) processInput() {
	if app.window == nil {
		return
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return
		case graphics.InputEventTypeKey:
			app.handleSpecialKey(event)
		case graphics.InputEventTypeButton:
			app.setButton(event.Player, event.Button, event.Pressed)
		}
	}

	app.emulator.SetControllerButtons(1, app.controller1Mask)
	app.emulator.SetControllerButtons(2, app.controller2Mask)
}

// setButton updates the cached per-player button mask for one controller.
func (app *Application) setButton(player int, button input.Button, pressed bool) {
	mask := &app.controller1Mask
	if player == 2 {
		mask = &app.controller2Mask
	}
	if pressed {
		*mask |= uint16(button)
	} else {
		*mask &^= uint16(button)
	}
}

// handleSpecialKey handles ESC-to-quit and save-state hotkeys
func (app *Application) handleSpecialKey(event graphics.InputEvent) bool {
	if !event.Pressed {
		return false
	}

	if event.Key == graphics.KeyEscape {
		now := time.Now()
		if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second {
			app.Stop()
			return true
		}
		app.lastESCTime = now
		return true
	}
	app.lastESCTime = time.Time{}

	switch event.Key {
	case graphics.KeyF1, graphics.KeyF2, graphics.KeyF3, graphics.KeyF4, graphics.KeyF5,
		graphics.KeyF6, graphics.KeyF7, graphics.KeyF8, graphics.KeyF9, graphics.KeyF10:
		slot := int(event.Key - graphics.KeyF1)
		if event.Modifiers&graphics.ModifierShift != 0 {
			if err := app.LoadState(slot); err != nil {
				fmt.Printf("failed to load state %d: %v\n", slot, err)
			}
		} else {
			if err := app.SaveState(slot); err != nil {
				fmt.Printf("failed to save state %d: %v\n", slot, err)
			}
		}
		return true
	}

	return false
}

// render renders the current frame to the window
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}

	if app.romPath != "" {
		frame := app.emulator.GetFrameBuffer()
		if app.videoProcessor != nil {
			frame = app.videoProcessor.ProcessFrame(frame)
		}
		if err := app.window.RenderFrame(frame); err != nil {
			return fmt.Errorf("failed to render frame: %v", err)
		}
	}

	app.window.SwapBuffers()
	return nil
}

// updateFPS recomputes the observed frame rate once per second
func (app *Application) updateFPS() {
	app.frameCount++
	now := time.Now()
	if elapsed := now.Sub(app.lastFPSTime); elapsed >= time.Second {
		app.currentFPS = float64(app.frameCount) / elapsed.Seconds()
		app.frameCount = 0
		app.lastFPSTime = now
	}
}

func (app *Application) Stop()          { app.running = false }
func (app *Application) Pause()         { app.paused = true }
func (app *Application) Resume()        { app.paused = false }
func (app *Application) TogglePause()   { app.paused = !app.paused }
func (app *Application) IsRunning() bool { return app.running }
func (app *Application) IsPaused() bool  { return app.paused }
func (app *Application) GetFPS() float64 { return app.currentFPS }
func (app *Application) GetROMPath() string { return app.romPath }
func (app *Application) GetConfig() *Config { return app.config }

// GetFrameCount returns the total frames completed since reset
func (app *Application) GetFrameCount() uint64 { return app.emulator.GetFrameCount() }

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration { return time.Since(app.startTime) }

// SaveState saves the current emulator state
func (app *Application) SaveState(slot int) error {
	if app.romPath == "" {
		return errors.New("no ROM loaded")
	}
	return app.states.SaveState(app.emulator, slot, app.romPath)
}

// LoadState loads a saved emulator state
func (app *Application) LoadState(slot int) error {
	if app.romPath == "" {
		return errors.New("no ROM loaded")
	}
	return app.states.LoadState(app.emulator, slot, app.romPath)
}

// Reset resets the emulator
func (app *Application) Reset() {
	app.emulator.Reset()
}

// StepFrame runs exactly one frame of emulation, bypassing the windowed
// Run loop, and returns the scheduler's raw result. Used by headless and
// scripted callers that drive their own cadence and want to inspect Status
// and HaltedAt directly rather than get a flattened error.
func (app *Application) StepFrame() scheduler.FrameResult {
	return app.emulator.StepFrame()
}

// GetFrameBuffer returns the current RGBA frame buffer (256x224x4 bytes).
func (app *Application) GetFrameBuffer() []byte {
	return app.emulator.GetFrameBuffer()
}

// RenderMainScreenRGBA renders the main screen at the requested resolution,
// the frontend-facing entry point to the scheduler's composer output.
func (app *Application) RenderMainScreenRGBA(w, h int) []byte {
	return app.emulator.Scheduler.RenderMainScreenRGBA(w, h)
}

// SetController1State sets controller 1's full button mask for the next
// frame, in the bit order documented on input.Button.
func (app *Application) SetController1State(buttons input.Button) {
	app.emulator.SetControllerButtons(1, uint16(buttons))
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	var lastErr error

	if app.states != nil {
		if err := app.states.Cleanup(); err != nil {
			lastErr = err
		}
	}
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
		}
	}
	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
		}
	}

	app.initialized = false
	return lastErr
}
