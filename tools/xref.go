package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caslii/comet2/parser"
)

// XrefEntry is one label's definition line and every line that references
// it.
type XrefEntry struct {
	Label      string
	DefinedAt  int
	References []int
}

// Xref builds a label cross-reference table for prog, in label order.
// Undefined references still get an entry (DefinedAt 0) so a cross-check
// against the assembler's own undefined-label errors is straightforward.
func Xref(prog *parser.Program) []*XrefEntry {
	entries := make(map[string]*XrefEntry)

	get := func(label string) *XrefEntry {
		e, ok := entries[label]
		if !ok {
			e = &XrefEntry{Label: label}
			entries[label] = e
		}
		return e
	}

	for _, line := range prog.Lines {
		if line.HasLabel {
			get(line.Label).DefinedAt = line.LineNumber
		}
		if line.Instruction == nil {
			continue
		}
		instr := line.Instruction
		if instr.HasEntry {
			e := get(instr.EntryLabel)
			e.References = append(e.References, line.LineNumber)
		}
		if instr.Addr.Kind == parser.AddrLabel {
			e := get(instr.Addr.Label)
			e.References = append(e.References, line.LineNumber)
		}
		for _, v := range instr.DCValues {
			if v.Kind == parser.DCLabel {
				e := get(v.Label)
				e.References = append(e.References, line.LineNumber)
			}
		}
	}

	result := make([]*XrefEntry, 0, len(entries))
	for _, e := range entries {
		sort.Ints(e.References)
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result
}

// String renders one cross-reference entry as a single line: the label, its
// defining line (or "undefined"), and the lines that reference it.
func (e *XrefEntry) String() string {
	refs := make([]string, len(e.References))
	for i, r := range e.References {
		refs[i] = fmt.Sprintf("%d", r)
	}
	defined := "undefined"
	if e.DefinedAt != 0 {
		defined = fmt.Sprintf("%d", e.DefinedAt)
	}
	return fmt.Sprintf("%-20s defined:%-8s refs:%s", e.Label, defined, strings.Join(refs, ","))
}
