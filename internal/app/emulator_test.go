package app

import "testing"

func TestEmulator_LoadROMAndReset(t *testing.T) {
	e := NewEmulator(NewConfig())

	if err := e.LoadROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	e.Reset()

	if e.GetFrameCount() != 0 {
		t.Errorf("expected frame count 0 after reset, got %d", e.GetFrameCount())
	}
	if e.ROMPath() == "" {
		t.Error("expected ROMPath to be set after LoadROM")
	}
}

func TestEmulator_StartStopControlsUpdate(t *testing.T) {
	e := NewEmulator(NewConfig())
	if err := e.LoadROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if e.IsRunning() {
		t.Error("emulator should not be running before Start")
	}

	e.Start()
	if !e.IsRunning() {
		t.Error("emulator should be running after Start")
	}

	e.Stop()
	if e.IsRunning() {
		t.Error("emulator should not be running after Stop")
	}

	// Update is a no-op while stopped.
	if err := e.Update(); err != nil {
		t.Errorf("Update while stopped should not error, got %v", err)
	}
	if e.GetFrameCount() != 0 {
		t.Errorf("expected no frames to run while stopped, got %d", e.GetFrameCount())
	}
}

func TestEmulator_SetControllerButtonsDoesNotPanic(t *testing.T) {
	e := NewEmulator(NewConfig())
	if err := e.LoadROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	e.SetControllerButtons(1, 0xFFFF)
	e.SetControllerButtons(2, 0x0000)
}

func TestEmulator_GetEmulationSpeedZeroBeforeAnyFrame(t *testing.T) {
	e := NewEmulator(NewConfig())
	if got := e.GetEmulationSpeed(); got != 0 {
		t.Errorf("expected 0%% speed before any frame ran, got %v", got)
	}
}
