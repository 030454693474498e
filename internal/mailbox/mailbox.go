// Package mailbox implements the four-byte bidirectional port pair that
// bridges the main CPU ($2140-$2143) and the APU ($F4-$F7).
package mailbox

// Mailbox holds both directions' latches. A single instance is shared by
// pointer between the bus (CPU side) and the APU (SMP side); each side
// only ever writes its own direction and reads the other's, so there is no
// contention under the emulator's single-threaded cooperative scheduler.
type Mailbox struct {
	toAPU [4]uint8 // CPU -> APU, written at $2140-$2143, read at $F4-$F7
	toCPU [4]uint8 // APU -> CPU, written at $F4-$F7, read at $2140-$2143
}

func New() *Mailbox {
	return &Mailbox{}
}

// WriteFromCPU handles a main-CPU write to $2140+i.
func (m *Mailbox) WriteFromCPU(i int, v uint8) {
	m.toAPU[i&3] = v
}

// ReadByCPU handles a main-CPU read of $2140+i.
func (m *Mailbox) ReadByCPU(i int) uint8 {
	return m.toCPU[i&3]
}

// WriteFromAPU handles an SMP write to $F4+i.
func (m *Mailbox) WriteFromAPU(i int, v uint8) {
	m.toCPU[i&3] = v
}

// ReadByAPU handles an SMP read of $F4+i.
func (m *Mailbox) ReadByAPU(i int) uint8 {
	return m.toAPU[i&3]
}

// ForcePortValue writes directly to the CPU->APU side as if the main CPU
// had written it. Used by the SPC wait-loop patcher to unblock a port-$F4
// polling loop without mutating the uploaded program.
func (m *Mailbox) ForcePortValue(i int, v uint8) {
	m.toAPU[i&3] = v
}
