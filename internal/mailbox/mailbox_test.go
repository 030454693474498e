package mailbox

import "testing"

func TestCPUToAPUVisibility(t *testing.T) {
	m := New()
	m.WriteFromCPU(0, 0xAA)
	if v := m.ReadByAPU(0); v != 0xAA {
		t.Fatalf("ReadByAPU(0) = %#x, want 0xAA", v)
	}
}

func TestAPUToCPUVisibility(t *testing.T) {
	m := New()
	m.WriteFromAPU(2, 0x55)
	if v := m.ReadByCPU(2); v != 0x55 {
		t.Fatalf("ReadByCPU(2) = %#x, want 0x55", v)
	}
}

func TestNewestValueWinsNoQueueing(t *testing.T) {
	m := New()
	m.WriteFromCPU(1, 0x01)
	m.WriteFromCPU(1, 0x02)
	if v := m.ReadByAPU(1); v != 0x02 {
		t.Fatalf("ReadByAPU(1) = %#x, want 0x02", v)
	}
}
