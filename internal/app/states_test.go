package app

import "testing"

func newTestEmulator(t *testing.T) (*Emulator, string) {
	t.Helper()
	e := NewEmulator(NewConfig())
	romPath := writeTestROM(t)
	if err := e.LoadROM(romPath); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}
	e.Reset()
	return e, romPath
}

func TestStateManager_SaveAndLoadRoundTrip(t *testing.T) {
	sm := NewStateManager(t.TempDir())
	e, romPath := newTestEmulator(t)

	e.Scheduler.CPU.A = 0x1234
	e.Scheduler.CPU.PC = 0x8000
	e.Scheduler.Memory.WRAM()[0] = 0x42

	if err := sm.SaveState(e, 0, romPath); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	// Mutate state so a successful load is observable.
	e.Scheduler.CPU.A = 0
	e.Scheduler.CPU.PC = 0
	e.Scheduler.Memory.WRAM()[0] = 0

	if err := sm.LoadState(e, 0, romPath); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	if e.Scheduler.CPU.A != 0x1234 {
		t.Errorf("expected A register restored to 0x1234, got %#x", e.Scheduler.CPU.A)
	}
	if e.Scheduler.CPU.PC != 0x8000 {
		t.Errorf("expected PC restored to 0x8000, got %#x", e.Scheduler.CPU.PC)
	}
	if e.Scheduler.Memory.WRAM()[0] != 0x42 {
		t.Errorf("expected WRAM byte 0 restored to 0x42, got %#x", e.Scheduler.Memory.WRAM()[0])
	}
}

func TestStateManager_LoadMissingSlot(t *testing.T) {
	sm := NewStateManager(t.TempDir())
	e, romPath := newTestEmulator(t)

	if err := sm.LoadState(e, 5, romPath); err == nil {
		t.Fatal("expected error loading an empty slot")
	}
}

func TestStateManager_InvalidSlotRange(t *testing.T) {
	sm := NewStateManager(t.TempDir())
	e, romPath := newTestEmulator(t)

	if err := sm.SaveState(e, -1, romPath); err == nil {
		t.Fatal("expected error for negative slot")
	}
	if err := sm.SaveState(e, sm.GetMaxSlots(), romPath); err == nil {
		t.Fatal("expected error for slot beyond max")
	}
}

func TestStateManager_LoadRejectsMismatchedROM(t *testing.T) {
	sm := NewStateManager(t.TempDir())
	e, romPath := newTestEmulator(t)

	if err := sm.SaveState(e, 0, romPath); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	if err := sm.LoadState(e, 0, "a-different-rom.sfc"); err == nil {
		t.Fatal("expected error loading a state saved for a different ROM")
	}
}

func TestStateManager_SlotInfoAndDelete(t *testing.T) {
	sm := NewStateManager(t.TempDir())
	e, romPath := newTestEmulator(t)

	if sm.HasSaveState(0, romPath) {
		t.Fatal("slot 0 should start empty")
	}

	if err := sm.SaveState(e, 0, romPath); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	if !sm.HasSaveState(0, romPath) {
		t.Error("slot 0 should be used after saving")
	}

	slots := sm.GetSlotInfo(romPath)
	if !slots[0].Used {
		t.Error("GetSlotInfo should report slot 0 as used")
	}

	if err := sm.DeleteState(0, romPath); err != nil {
		t.Fatalf("DeleteState failed: %v", err)
	}
	if sm.HasSaveState(0, romPath) {
		t.Error("slot 0 should be empty after delete")
	}
}
