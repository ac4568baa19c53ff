package vm

// Memory is COMET II's flat 64K-word address space (§3). There are no
// segments, pages, or permissions: every address is equally readable and
// writable, and all addressing wraps modulo 65536 via uint16 arithmetic.
type Memory [65536]uint16

// Load zero-fills memory, then copies image starting at address 0 (§4.4).
func (m *Memory) Load(image []uint16) {
	for i := range m {
		m[i] = 0
	}
	copy(m[:], image)
}
