package vm

import "fmt"

// RuntimeError is a fatal decode or addressing fault: an unknown opcode, an
// unknown SVC code, or a program counter that runs off the end of memory
// (§4.4). It always aborts the run loop; it is distinct from the VM's own
// clean-termination paths (RET with an empty stack, SVC 0-3).
type RuntimeError struct {
	PC      uint16
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("PC=0x%04X: %s", e.PC, e.Message)
}
