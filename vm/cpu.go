// Package vm implements the COMET II fetch-decode-execute loop (§4.4).
package vm

// InitialSP is the stack pointer value at reset: one past the highest
// usable stack word (§6). RET with SP at or above this value terminates
// the VM cleanly rather than underflowing the stack.
const InitialSP uint16 = 0xFF00

// FlagRegister holds COMET II's three independent condition bits (§3, §9
// "use three independent bits; do not conflate with a single comparison
// result").
type FlagRegister struct {
	S bool // sign
	Z bool // zero
	O bool // overflow
}

// CPU holds the eight general registers, program counter, stack pointer,
// and flag register (§3).
type CPU struct {
	GR [8]uint16
	PC uint16
	SP uint16
	FR FlagRegister
}

// reset returns the CPU to its initial state with PC set to entry (§4.4).
func (c *CPU) reset(entry uint16) {
	*c = CPU{PC: entry, SP: InitialSP}
}
