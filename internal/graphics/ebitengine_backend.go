//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/rng999/gosnes/internal/input"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	events             []InputEvent
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the SNES emulator
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	windowWidth  int
	windowHeight int

	previousKeyStates map[ebiten.Key]bool
	drawCount         int
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		windowWidth:       width,
		windowHeight:      height,
		frameImage:        ebiten.NewImage(ScreenWidth, ScreenHeight),
		previousKeyStates: make(map[ebiten.Key]bool),
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if b.config.Filter == "linear" {
		ebiten.SetScreenFilterEnabled(true)
	} else {
		ebiten.SetScreenFilterEnabled(false)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers is handled automatically by Ebitengine
func (w *EbitengineWindow) SwapBuffers() {}

// PollEvents processes input events and returns them
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame renders an RGBA SNES frame buffer to the window
func (w *EbitengineWindow) RenderFrame(frame []byte) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	if len(frame) != ScreenWidth*ScreenHeight*4 {
		return fmt.Errorf("frame buffer size %d, want %d", len(frame), ScreenWidth*ScreenHeight*4)
	}

	w.game.frameImage.WritePixels(frame)
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	return ebiten.RunGame(w.game)
}

// SetEmulatorUpdateFunc sets the emulator update function
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	g.processInput()

	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			log.Printf("[Ebitengine] emulator update error: %v", err)
		}
	}

	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}

	scaleX := float64(g.windowWidth) / float64(ScreenWidth)
	scaleY := float64(g.windowHeight) / float64(ScreenHeight)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	offsetX := (float64(g.windowWidth) - float64(ScreenWidth)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(ScreenHeight)*scale) / 2

	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)

	screen.DrawImage(g.frameImage, op)
	g.drawCount++
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// ebitenKeyMappings maps Ebitengine keys to the backend's Key enum.
var ebitenKeyMappings = map[ebiten.Key]Key{
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyW:          KeyW,
	ebiten.KeyA:          KeyA,
	ebiten.KeyS:          KeyS,
	ebiten.KeyD:          KeyD,
	ebiten.KeyI:          KeyI,
	ebiten.KeyJ:          KeyJ,
	ebiten.KeyK:          KeyK,
	ebiten.KeyL:          KeyL,
	ebiten.KeyU:          KeyU,
	ebiten.KeyO:          KeyO,
	ebiten.Key1:          Key1,
	ebiten.Key2:          Key2,
	ebiten.Key3:          Key3,
	ebiten.Key4:          Key4,
	ebiten.Key5:          Key5,
	ebiten.Key6:          Key6,
	ebiten.Key7:          Key7,
	ebiten.Key8:          Key8,
	ebiten.KeyF1:         KeyF1,
	ebiten.KeyF2:         KeyF2,
	ebiten.KeyF3:         KeyF3,
	ebiten.KeyF4:         KeyF4,
	ebiten.KeyF5:         KeyF5,
	ebiten.KeyF6:         KeyF6,
	ebiten.KeyF7:         KeyF7,
	ebiten.KeyF8:         KeyF8,
	ebiten.KeyF9:         KeyF9,
	ebiten.KeyF10:        KeyF10,
}

// player1Buttons maps the WASD+IJKL+UO layout (config.go's default
// Player1Keys) onto the 12 SNES pad buttons; the arrow keys also drive
// player 1's d-pad. The table is fixed and does not read the config.
var player1Buttons = map[Key]input.Button{
	KeyUp:    input.ButtonUp,
	KeyDown:  input.ButtonDown,
	KeyLeft:  input.ButtonLeft,
	KeyRight: input.ButtonRight,
	KeyW:     input.ButtonUp,
	KeyS:     input.ButtonDown,
	KeyA:     input.ButtonLeft,
	KeyD:     input.ButtonRight,
	KeyL:     input.ButtonA,
	KeyK:     input.ButtonB,
	KeyI:     input.ButtonX,
	KeyJ:     input.ButtonY,
	KeyU:     input.ButtonL,
	KeyO:     input.ButtonR,
	KeyEnter: input.ButtonStart,
	KeySpace: input.ButtonSelect,
}

// player2Buttons maps the number row onto the second controller: keys 3-8
// match the face and shoulder buttons of config.go's default Player2Keys,
// and 1/2 act as Left/Down. Player 2 has no Up, Right, Start or Select
// key here; the arrow keys drive player 1 (see player1Buttons).
var player2Buttons = map[Key]input.Button{
	Key1: input.ButtonLeft,
	Key2: input.ButtonDown,
	Key3: input.ButtonB,
	Key4: input.ButtonA,
	Key5: input.ButtonL,
	Key6: input.ButtonR,
	Key7: input.ButtonY,
	Key8: input.ButtonX,
}

func (g *EbitengineGame) processInput() {
	if g.window == nil {
		return
	}

	var events []InputEvent

	mods := ModifierNone
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModifierShift
	}

	for ebitenKey, key := range ebitenKeyMappings {
		pressed, changed := false, false
		if inpututil.IsKeyJustPressed(ebitenKey) {
			pressed, changed = true, true
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			pressed, changed = false, true
		}
		if !changed {
			continue
		}
		g.previousKeyStates[ebitenKey] = pressed

		events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: pressed, Modifiers: mods})
		if button, ok := player1Buttons[key]; ok {
			events = append(events, InputEvent{Type: InputEventTypeButton, Button: button, Player: 1, Pressed: pressed})
		}
		if button, ok := player2Buttons[key]; ok {
			events = append(events, InputEvent{Type: InputEventTypeButton, Button: button, Player: 2, Pressed: pressed})
		}
	}

	g.window.events = append(g.window.events, events...)
}
