package app

import (
	"testing"

	"github.com/rng999/gosnes/internal/scheduler"
)

func TestNewApplicationWithMode_Headless(t *testing.T) {
	application, err := NewApplicationWithMode("", true)
	if err != nil {
		t.Fatalf("NewApplicationWithMode failed: %v", err)
	}
	defer application.Cleanup()

	if !application.initialized {
		t.Error("application should be initialized")
	}
	if application.graphicsBackend == nil {
		t.Error("graphics backend should be set")
	}
	if application.window != nil {
		t.Error("headless mode should not create a window")
	}
}

func TestApplication_LoadROM(t *testing.T) {
	application, err := NewApplicationWithMode("", true)
	if err != nil {
		t.Fatalf("NewApplicationWithMode failed: %v", err)
	}
	defer application.Cleanup()

	if err := application.LoadROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if application.GetROMPath() == "" {
		t.Error("expected ROM path to be set after LoadROM")
	}
}

func TestApplication_StepFrameProducesFrameBuffer(t *testing.T) {
	application, err := NewApplicationWithMode("", true)
	if err != nil {
		t.Fatalf("NewApplicationWithMode failed: %v", err)
	}
	defer application.Cleanup()

	if err := application.LoadROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if result := application.StepFrame(); result.Status != scheduler.StatusOK {
		t.Errorf("expected StatusOK, got %v (halted at %+v)", result.Status, result.HaltedAt)
	}

	frame := application.GetFrameBuffer()
	if len(frame) != 256*224*4 {
		t.Errorf("expected frame buffer of %d bytes, got %d", 256*224*4, len(frame))
	}
}

func TestApplication_PauseResumeToggle(t *testing.T) {
	application, err := NewApplicationWithMode("", true)
	if err != nil {
		t.Fatalf("NewApplicationWithMode failed: %v", err)
	}
	defer application.Cleanup()

	if application.IsPaused() {
		t.Fatal("application should not start paused")
	}

	application.Pause()
	if !application.IsPaused() {
		t.Error("expected paused state after Pause")
	}

	application.Resume()
	if application.IsPaused() {
		t.Error("expected unpaused state after Resume")
	}

	application.TogglePause()
	if !application.IsPaused() {
		t.Error("expected paused state after TogglePause")
	}
}

func TestApplication_SetButtonTracksPerPlayerMask(t *testing.T) {
	application, err := NewApplicationWithMode("", true)
	if err != nil {
		t.Fatalf("NewApplicationWithMode failed: %v", err)
	}
	defer application.Cleanup()

	application.setButton(1, 1<<7, true) // input.ButtonA
	if application.controller1Mask&(1<<7) == 0 {
		t.Error("expected controller1 mask to have button A bit set")
	}

	application.setButton(1, 1<<7, false)
	if application.controller1Mask&(1<<7) != 0 {
		t.Error("expected controller1 mask to clear button A bit on release")
	}

	application.setButton(2, 1<<15, true) // input.ButtonB
	if application.controller2Mask&(1<<15) == 0 {
		t.Error("expected controller2 mask to have button B bit set")
	}
}
