package app

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestROM writes a minimal 32KB zeroed LoROM image to a temp file and
// returns its path. The cartridge loader accepts it (no checksum match is
// required to pick a mapping), which is enough to exercise load/reset/save
// state without needing a real game ROM.
func writeTestROM(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sfc")
	rom := make([]byte, 0x8000)
	if err := os.WriteFile(path, rom, 0644); err != nil {
		t.Fatalf("failed to write test ROM: %v", err)
	}
	return path
}
