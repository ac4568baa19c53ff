package parser_test

import (
	"testing"

	"github.com/caslii/comet2/lexer"
	"github.com/caslii/comet2/parser"
)

func parse(t *testing.T, src string) *parser.Program {
	t.Helper()
	l := lexer.NewLexer(src, "test.cas")
	p := parser.NewParser(l, "test.cas")
	prog := p.Parse()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors: %s", p.Errors().Error())
	}
	return prog
}

func TestParser_StartEnd(t *testing.T) {
	prog := parse(t, "MAIN START\n  RET\n  END\n")
	if len(prog.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(prog.Lines))
	}
	if !prog.Lines[0].HasLabel || prog.Lines[0].Label != "MAIN" {
		t.Errorf("expected label MAIN, got %+v", prog.Lines[0])
	}
	if prog.Lines[0].Instruction.Kind != parser.KindStart {
		t.Errorf("expected START, got %v", prog.Lines[0].Instruction.Kind)
	}
	if prog.Lines[1].Instruction.Kind != parser.KindNoOperand || prog.Lines[1].Instruction.Mnemonic != "RET" {
		t.Errorf("expected RET, got %+v", prog.Lines[1].Instruction)
	}
	if prog.Lines[2].Instruction.Kind != parser.KindEnd {
		t.Errorf("expected END, got %+v", prog.Lines[2].Instruction)
	}
}

func TestParser_RegAddrVsTwoReg(t *testing.T) {
	prog := parse(t, "  LD GR1, GR2\n  LD GR1, DATA\n")
	i0 := prog.Lines[0].Instruction
	if i0.Kind != parser.KindTwoReg || i0.Reg != 1 || i0.Reg2 != 2 {
		t.Errorf("expected two-register LD, got %+v", i0)
	}
	i1 := prog.Lines[1].Instruction
	if i1.Kind != parser.KindRegAddr || i1.Reg != 1 || i1.Addr.Kind != parser.AddrLabel || i1.Addr.Label != "DATA" {
		t.Errorf("expected register-address LD, got %+v", i1)
	}
}

func TestParser_RegAddrWithIndex(t *testing.T) {
	prog := parse(t, "  LD GR1, DATA, GR2\n")
	i0 := prog.Lines[0].Instruction
	if !i0.HasIndex || i0.IndexReg != 2 {
		t.Errorf("expected index register GR2, got %+v", i0)
	}
}

func TestParser_AlwaysRegAddr(t *testing.T) {
	prog := parse(t, "  ST GR3, BUF\n  SLA GR1, 4\n")
	st := prog.Lines[0].Instruction
	if st.Kind != parser.KindRegAddr || st.Reg != 3 || st.Addr.Label != "BUF" {
		t.Errorf("expected ST as register-address, got %+v", st)
	}
	sla := prog.Lines[1].Instruction
	if sla.Kind != parser.KindRegAddr || sla.Addr.Kind != parser.AddrDecimal || sla.Addr.Decimal != 4 {
		t.Errorf("expected SLA with decimal address, got %+v", sla)
	}
}

func TestParser_AlwaysAddr(t *testing.T) {
	prog := parse(t, "  JUMP LOOP\n  CALL SUB, GR1\n  SVC 0\n")
	jump := prog.Lines[0].Instruction
	if jump.Kind != parser.KindAddr || jump.Addr.Label != "LOOP" {
		t.Errorf("expected JUMP with label address, got %+v", jump)
	}
	call := prog.Lines[1].Instruction
	if call.Kind != parser.KindAddr || !call.HasIndex || call.IndexReg != 1 {
		t.Errorf("expected CALL with index register, got %+v", call)
	}
	svc := prog.Lines[2].Instruction
	if svc.Kind != parser.KindAddr || svc.Addr.Kind != parser.AddrDecimal || svc.Addr.Decimal != 0 {
		t.Errorf("expected SVC 0, got %+v", svc)
	}
}

func TestParser_OneReg(t *testing.T) {
	prog := parse(t, "  POP GR4\n")
	pop := prog.Lines[0].Instruction
	if pop.Kind != parser.KindOneReg || pop.Reg != 4 {
		t.Errorf("expected POP GR4, got %+v", pop)
	}
}

func TestParser_DS(t *testing.T) {
	prog := parse(t, "BUF DS 5\n")
	ds := prog.Lines[0].Instruction
	if ds.Kind != parser.KindDS || ds.DSCount != 5 {
		t.Errorf("expected DS 5, got %+v", ds)
	}
}

func TestParser_DCList(t *testing.T) {
	prog := parse(t, "VALS DC 1, #00FF, 'A', LABEL\n")
	dc := prog.Lines[0].Instruction
	if dc.Kind != parser.KindDC || len(dc.DCValues) != 4 {
		t.Fatalf("expected 4 DC values, got %+v", dc)
	}
	if dc.DCValues[0].Kind != parser.DCDecimal || dc.DCValues[0].Decimal != 1 {
		t.Errorf("expected decimal 1, got %+v", dc.DCValues[0])
	}
	if dc.DCValues[1].Kind != parser.DCHex || dc.DCValues[1].Hex != 0x00FF {
		t.Errorf("expected hex 00FF, got %+v", dc.DCValues[1])
	}
	if dc.DCValues[2].Kind != parser.DCString || dc.DCValues[2].Str != "A" {
		t.Errorf("expected string A, got %+v", dc.DCValues[2])
	}
	if dc.DCValues[3].Kind != parser.DCLabel || dc.DCValues[3].Label != "LABEL" {
		t.Errorf("expected label LABEL, got %+v", dc.DCValues[3])
	}
}

func TestParser_InOut(t *testing.T) {
	prog := parse(t, "  IN BUF, LEN\n  OUT BUF, LEN\n")
	in := prog.Lines[0].Instruction
	if in.Kind != parser.KindIn || in.InBuf != "BUF" || in.InLen != "LEN" {
		t.Errorf("expected IN BUF, LEN, got %+v", in)
	}
	out := prog.Lines[1].Instruction
	if out.Kind != parser.KindOut || out.OutBuf != "BUF" || out.OutLen != "LEN" {
		t.Errorf("expected OUT BUF, LEN, got %+v", out)
	}
}

func TestParser_RpushRpop(t *testing.T) {
	prog := parse(t, "  RPUSH\n  RPOP\n")
	if prog.Lines[0].Instruction.Kind != parser.KindRpush {
		t.Errorf("expected RPUSH, got %+v", prog.Lines[0].Instruction)
	}
	if prog.Lines[1].Instruction.Kind != parser.KindRpop {
		t.Errorf("expected RPOP, got %+v", prog.Lines[1].Instruction)
	}
}

func TestParser_CommentsAndBlankLines(t *testing.T) {
	prog := parse(t, "; a comment\n\nMAIN START ; entry\n  NOP\n  END\n")
	if len(prog.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(prog.Lines))
	}
}

func TestParser_UnknownMnemonicReportsError(t *testing.T) {
	l := lexer.NewLexer("  BOGUS GR1\n", "test.cas")
	p := parser.NewParser(l, "test.cas")
	p.Parse()
	if !p.Errors().HasErrors() {
		t.Error("expected an error for an unknown mnemonic")
	}
}
