package debugger_test

import (
	"strings"
	"testing"

	"github.com/caslii/comet2/debugger"
	"github.com/caslii/comet2/loader"
)

func newDebugger(t *testing.T, src string) *debugger.Debugger {
	t.Helper()
	m, err := loader.AssembleAndLoad(src, "t.cas", nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return debugger.New(m)
}

func TestDebugger_StepAdvancesPC(t *testing.T) {
	d := newDebugger(t, "M START\n  NOP\n  RET\n  END\n")
	if err := d.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.VM.CPU.PC != 1 {
		t.Errorf("expected PC=1 after one step, got %d", d.VM.CPU.PC)
	}
}

func TestDebugger_BreakpointStopsContinue(t *testing.T) {
	d := newDebugger(t, "M START\n  NOP\n  NOP\n  RET\n  END\n")
	d.Breakpoints[1] = true
	if err := d.Continue(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.VM.CPU.PC != 1 {
		t.Errorf("expected to stop at breakpoint PC=1, got %d", d.VM.CPU.PC)
	}
	if d.VM.Terminated {
		t.Error("expected VM not yet terminated")
	}
}

func TestDebugger_CommandRegs(t *testing.T) {
	d := newDebugger(t, "M START\n  LAD GR1, 5\n  RET\n  END\n")
	if err := d.Command("step"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Command("regs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(d.Output.String(), "GR1=0x0005") {
		t.Errorf("expected GR1=0x0005 in output, got %q", d.Output.String())
	}
}

func TestDebugger_CommandMem(t *testing.T) {
	d := newDebugger(t, "M START\n  RET\n  END\n")
	if err := d.Command("mem 0 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(d.Output.String(), "0x0000:") {
		t.Errorf("expected a memory dump line, got %q", d.Output.String())
	}
}

func TestDebugger_UnknownCommandErrors(t *testing.T) {
	d := newDebugger(t, "M START\n  RET\n  END\n")
	if err := d.Command("bogus"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}
