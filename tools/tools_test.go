package tools_test

import (
	"strings"
	"testing"

	"github.com/caslii/comet2/lexer"
	"github.com/caslii/comet2/parser"
	"github.com/caslii/comet2/tools"
)

func parse(t *testing.T, src string) *parser.Program {
	t.Helper()
	l := lexer.NewLexer(src, "t.cas")
	p := parser.NewParser(l, "t.cas")
	prog := p.Parse()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors: %s", p.Errors().Error())
	}
	return prog
}

func TestLint_FlagsUnusedLabel(t *testing.T) {
	prog := parse(t, "M START\n  RET\nUNUSED DS 1\n  END\n")
	issues := tools.Lint(prog)
	found := false
	for _, i := range issues {
		if i.Code == "UNUSED_LABEL" && strings.Contains(i.Message, "UNUSED") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an UNUSED_LABEL issue, got %v", issues)
	}
}

func TestLint_FlagsZeroSizeDS(t *testing.T) {
	prog := parse(t, "M START\nZ DS 0\n  RET\n  END\n")
	issues := tools.Lint(prog)
	found := false
	for _, i := range issues {
		if i.Code == "ZERO_SIZE_DS" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a ZERO_SIZE_DS issue, got %v", issues)
	}
}

func TestLint_ReferencedLabelNotFlagged(t *testing.T) {
	prog := parse(t, "M START\n  LAD GR1, N\nN DS 1\n  END\n")
	for _, i := range tools.Lint(prog) {
		if i.Code == "UNUSED_LABEL" && strings.Contains(i.Message, `"N"`) {
			t.Errorf("did not expect N to be flagged unused: %v", i)
		}
	}
}

func TestXref_TracksDefinitionAndReferences(t *testing.T) {
	prog := parse(t, "M START\n  LAD GR1, N\n  LAD GR2, N\nN DS 1\n  END\n")
	entries := tools.Xref(prog)
	var n *tools.XrefEntry
	for _, e := range entries {
		if e.Label == "N" {
			n = e
		}
	}
	if n == nil {
		t.Fatal("expected an xref entry for N")
	}
	if n.DefinedAt == 0 {
		t.Error("expected N to have a defined line")
	}
	if len(n.References) != 2 {
		t.Errorf("expected 2 references to N, got %d", len(n.References))
	}
}

func TestFormat_AlignsColumnsAndPreservesComment(t *testing.T) {
	out := tools.Format("M START\nLBL  LD GR1,N  ; load n\n  END\n")
	if !strings.Contains(out, "; load n") {
		t.Errorf("expected the comment to survive formatting, got %q", out)
	}
}

func TestFormat_QuotedSemicolonIsNotATerminator(t *testing.T) {
	out := tools.Format("C DC 'A;B'\n")
	if strings.Contains(out, "; B") {
		t.Errorf("expected the quoted ';' not to be treated as a comment marker, got %q", out)
	}
}
