package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	w, h := cfg.GetSNESResolution()
	if w != 256 || h != 224 {
		t.Errorf("expected SNES resolution 256x224, got %dx%d", w, h)
	}

	if cfg.Window.Scale != 2 {
		t.Errorf("expected default scale 2, got %d", cfg.Window.Scale)
	}

	ww, wh := cfg.GetWindowResolution()
	if ww != 512 || wh != 448 {
		t.Errorf("expected window resolution 512x448, got %dx%d", ww, wh)
	}
}

func TestConfig_GetAspectRatio(t *testing.T) {
	cfg := NewConfig()

	cfg.Video.AspectRatio = "4:3"
	if got := cfg.GetAspectRatio(); got != 4.0/3.0 {
		t.Errorf("4:3 aspect ratio: got %v", got)
	}

	cfg.Video.AspectRatio = "original"
	want := float32(256) / float32(224)
	if got := cfg.GetAspectRatio(); got != want {
		t.Errorf("original aspect ratio: got %v, want %v", got, want)
	}
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gosnes.json")

	cfg := NewConfig()
	cfg.Video.Brightness = 1.25
	cfg.Input.Player1Keys.A = "Z"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded := NewConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Video.Brightness != 1.25 {
		t.Errorf("expected brightness 1.25, got %v", loaded.Video.Brightness)
	}
	if loaded.Input.Player1Keys.A != "Z" {
		t.Errorf("expected player1 A key 'Z', got %q", loaded.Input.Player1Keys.A)
	}
}

func TestConfig_LoadFromFile_MissingCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config", "gosnes.json")

	cfg := NewConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile should create a default config file, got error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created at %s: %v", path, err)
	}
}

func TestConfig_Validate_RejectsOutOfRangeValues(t *testing.T) {
	cfg := NewConfig()
	cfg.Video.Brightness = 10.0
	cfg.Audio.Channels = 3
	cfg.Window.Scale = -1

	if err := cfg.validate(); err != nil {
		t.Fatalf("validate returned unexpected error: %v", err)
	}

	if cfg.Video.Brightness != 1.0 {
		t.Errorf("expected brightness reset to default, got %v", cfg.Video.Brightness)
	}
	if cfg.Audio.Channels != 2 {
		t.Errorf("expected channels reset to 2, got %d", cfg.Audio.Channels)
	}
	if cfg.Window.Scale != 1 {
		t.Errorf("expected scale reset to 1, got %d", cfg.Window.Scale)
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := NewConfig()
	cfg.Video.Brightness = 1.5

	clone := cfg.Clone()
	clone.Video.Brightness = 2.0

	if cfg.Video.Brightness == clone.Video.Brightness {
		t.Error("clone should be an independent copy")
	}
}
