// Package debugger is an interactive front end driving a vm.VM one step at
// a time, with PC breakpoints (§3.1).
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caslii/comet2/vm"
)

// Debugger wraps a VM with breakpoints and a small command set.
type Debugger struct {
	VM *vm.VM

	// Breakpoints is a flat set of PC values, checked once per Step, the
	// same place the teacher's shouldBreak checks it.
	Breakpoints map[uint16]bool

	// Symbols maps label names to resolved addresses, for break <label>.
	Symbols map[string]uint16

	Output strings.Builder
}

// New wraps machine for interactive stepping.
func New(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: make(map[uint16]bool),
		Symbols:     make(map[string]uint16),
	}
}

// LoadSymbols installs the assembled program's label table, for resolving
// break <label> commands.
func (d *Debugger) LoadSymbols(symbols map[string]uint16) {
	d.Symbols = symbols
}

func (d *Debugger) shouldBreak() bool {
	return d.Breakpoints[d.VM.CPU.PC]
}

// Step executes exactly one instruction, ignoring breakpoints (a single
// explicit step always steps).
func (d *Debugger) Step() error {
	return d.VM.Step()
}

// Continue runs until a breakpoint is hit, the VM terminates, or a
// RuntimeError occurs. It always executes at least one instruction, so
// continuing from on top of a breakpoint makes progress.
func (d *Debugger) Continue() error {
	if err := d.VM.Step(); err != nil {
		return err
	}
	for !d.VM.Terminated && !d.shouldBreak() {
		if err := d.VM.Step(); err != nil {
			return err
		}
	}
	return nil
}

// ResolveAddress parses a numeric address (decimal or #hex) or resolves a
// label via Symbols.
func (d *Debugger) ResolveAddress(token string) (uint16, error) {
	if addr, ok := d.Symbols[token]; ok {
		return addr, nil
	}
	if strings.HasPrefix(token, "#") {
		v, err := strconv.ParseUint(token[1:], 16, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid hex address %q: %w", token, err)
		}
		return uint16(v), nil
	}
	v, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unresolved label or address %q", token)
	}
	return uint16(v), nil
}

// RegisterDump formats all eight general registers and the flag register.
func (d *Debugger) RegisterDump() string {
	var b strings.Builder
	for i, v := range d.VM.CPU.GR {
		fmt.Fprintf(&b, "GR%d=%#04x ", i, v)
	}
	fmt.Fprintf(&b, "\nPC=%#04x SP=%#04x FR=S:%v Z:%v O:%v\n",
		d.VM.CPU.PC, d.VM.CPU.SP, d.VM.CPU.FR.S, d.VM.CPU.FR.Z, d.VM.CPU.FR.O)
	return b.String()
}

// MemoryDump formats length words of memory starting at addr, eight per
// line.
func (d *Debugger) MemoryDump(addr uint16, length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		if i%8 == 0 {
			fmt.Fprintf(&b, "%#04x: ", int(addr)+i)
		}
		fmt.Fprintf(&b, "%04x ", d.VM.Memory[int(addr)+i])
		if i%8 == 7 {
			b.WriteByte('\n')
		}
	}
	if length%8 != 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// Command dispatches a single debugger command line (step, run, break
// <addr>, regs, mem <addr> <len>), appending its textual result to Output.
func (d *Debugger) Command(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "step", "s":
		if err := d.Step(); err != nil {
			return err
		}
		d.Output.WriteString(d.RegisterDump())
	case "run", "c", "continue":
		if err := d.Continue(); err != nil {
			return err
		}
		d.Output.WriteString(d.RegisterDump())
	case "break", "b":
		if len(fields) < 2 {
			return fmt.Errorf("break requires an address or label")
		}
		addr, err := d.ResolveAddress(fields[1])
		if err != nil {
			return err
		}
		d.Breakpoints[addr] = true
		fmt.Fprintf(&d.Output, "breakpoint set at %#04x\n", addr)
	case "regs":
		d.Output.WriteString(d.RegisterDump())
	case "mem":
		if len(fields) < 3 {
			return fmt.Errorf("mem requires an address and a length")
		}
		addr, err := d.ResolveAddress(fields[1])
		if err != nil {
			return err
		}
		length, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid length %q: %w", fields[2], err)
		}
		d.Output.WriteString(d.MemoryDump(addr, length))
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}
