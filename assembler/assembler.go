package assembler

import (
	"fmt"

	"github.com/caslii/comet2/lexer"
	"github.com/caslii/comet2/parser"
)

// Image is the assembled binary: a sequence of 16-bit words starting at
// address 0, plus the resolved entry address (§3, §6).
type Image struct {
	Words []uint16
	Entry uint16
}

// Assembler is the two-pass CASL II code generator (§4.3). Assembling is a
// pure function from a program tree to an Image or a diagnostic list; it
// holds no state beyond one Assemble call (§5).
type Assembler struct {
	filename string
	symtab   *SymbolTable
	pools    map[string]*literalPool
	poolBase map[string]uint16
	errors   *ErrorList
}

// scopeState tracks the mutable per-line bookkeeping both passes share:
// current address, current scope, and the prospective program entry.
type scopeState struct {
	address uint16
	scope   string
	inScope bool

	haveEntryScope bool
	entryScope     string
	entryLine      int

	haveOverride  bool
	overrideScope string
	overrideLabel string
	overrideLine  int
}

// Assemble runs pass 1 (layout and symbol resolution) followed by pass 2
// (emission) over prog, producing an Image or a non-empty ErrorList.
func Assemble(prog *parser.Program, filename string) (*Image, *ErrorList) {
	a := &Assembler{
		filename: filename,
		symtab:   NewSymbolTable(),
		pools:    make(map[string]*literalPool),
		poolBase: make(map[string]uint16),
		errors:   &ErrorList{},
	}

	entry, total := a.pass1(prog)
	if a.errors.HasErrors() {
		return nil, a.errors
	}

	words := a.pass2(prog, total)
	if a.errors.HasErrors() {
		return nil, a.errors
	}

	return &Image{Words: words, Entry: entry}, a.errors
}

func (a *Assembler) pos(line int) Position {
	return Position{File: a.filename, Line: line}
}

func (a *Assembler) pool(scope string) *literalPool {
	p, ok := a.pools[scope]
	if !ok {
		p = newLiteralPool()
		a.pools[scope] = p
	}
	return p
}

// pass1 walks the program tree computing addresses, the symbol table, and
// per-scope literal pools. It returns the resolved entry address and the
// total word count of the image.
func (a *Assembler) pass1(prog *parser.Program) (uint16, int) {
	st := &scopeState{}

	for _, line := range prog.Lines {
		instr := line.Instruction

		if instr != nil && instr.Kind == parser.KindStart {
			a.pass1Start(st, line)
			continue
		}
		if instr != nil && instr.Kind == parser.KindEnd {
			a.pass1End(st)
			continue
		}

		if line.HasLabel && st.inScope {
			a.symtab.Define(st.scope, line.Label, st.address, line.LineNumber)
		}

		if instr == nil {
			continue
		}

		if (instr.Kind == parser.KindRegAddr || instr.Kind == parser.KindAddr) &&
			instr.Addr.Kind == parser.AddrLiteral && st.inScope {
			a.pool(st.scope).add(instr.Addr.Literal)
		}

		sz := a.instructionSize(instr, line.LineNumber)
		st.address += uint16(sz)
	}

	if st.inScope {
		a.errors.Add(a.pos(0), ErrorMissingEnd, "reached end of input inside an unterminated START/END block")
	}

	entryScope, entryLabel, entryLine := st.entryScope, st.entryScope, st.entryLine
	if st.haveOverride {
		entryScope, entryLabel, entryLine = st.overrideScope, st.overrideLabel, st.overrideLine
	}

	var entry uint16
	if entryScope == "" {
		a.errors.Add(a.pos(0), ErrorUndefinedLabel, "no START block found to serve as the program entry")
	} else if sym, ok := a.symtab.Lookup(entryScope, entryLabel); ok {
		entry = sym.Address
	} else {
		a.errors.Add(a.pos(entryLine), ErrorUndefinedLabel, fmt.Sprintf("undefined entry label %q in scope %q", entryLabel, entryScope))
	}

	return entry, int(st.address)
}

func (a *Assembler) pass1Start(st *scopeState, line parser.Line) {
	instr := line.Instruction
	if st.inScope {
		a.errors.Add(a.pos(line.LineNumber), ErrorNestedStart, "START cannot appear inside another START/END block")
	}
	if !line.HasLabel {
		a.errors.Add(a.pos(line.LineNumber), ErrorStartWithoutLabel, "START requires a label")
	}

	st.scope = line.Label
	st.inScope = true

	if line.HasLabel {
		a.symtab.Define(st.scope, st.scope, st.address, line.LineNumber)
	}

	if !st.haveEntryScope {
		st.haveEntryScope = true
		st.entryScope = st.scope
		st.entryLine = line.LineNumber
	}
	if instr.HasEntry {
		// The entry operand only triggers an override; its text is never
		// looked up. The resolved entry is always SCOPE:SCOPE, per
		// original_source/src/assembler.rs:82-85,168-176.
		st.haveOverride = true
		st.overrideScope = st.scope
		st.overrideLabel = st.scope
		st.overrideLine = line.LineNumber
	}
}

func (a *Assembler) pass1End(st *scopeState) {
	if !st.inScope {
		a.errors.Add(a.pos(0), ErrorEndWithoutStart, "END without a preceding START")
		return
	}
	pool := a.pool(st.scope)
	a.poolBase[st.scope] = st.address
	for range pool.payloads {
		st.address++
	}
	st.inScope = false
	st.scope = ""
}

// instructionSize returns the pass-1 word count for instr (§3 table).
func (a *Assembler) instructionSize(instr *parser.Instruction, line int) int {
	switch instr.Kind {
	case parser.KindNoOperand, parser.KindOneReg, parser.KindTwoReg:
		return 1
	case parser.KindRegAddr, parser.KindAddr:
		return 2
	case parser.KindDS:
		if instr.DSCount < 0 {
			a.errors.Add(a.pos(line), ErrorNegativeDS, fmt.Sprintf("DS count must not be negative, got %d", instr.DSCount))
			return 0
		}
		return int(instr.DSCount)
	case parser.KindDC:
		total := 0
		for _, v := range instr.DCValues {
			if v.Kind == parser.DCString {
				total += len([]rune(v.Str))
			} else {
				total++
			}
		}
		return total
	case parser.KindIn, parser.KindOut:
		return 12
	case parser.KindRpush:
		return 14
	case parser.KindRpop:
		return 7
	default:
		return 0
	}
}

// pass2 re-walks the program tree, emitting words that must exactly match
// the sizes pass1 computed; it does not mutate the symbol table.
func (a *Assembler) pass2(prog *parser.Program, total int) []uint16 {
	words := make([]uint16, 0, total)
	scope := ""

	for _, line := range prog.Lines {
		instr := line.Instruction
		if instr == nil {
			continue
		}

		switch instr.Kind {
		case parser.KindStart:
			scope = line.Label
			continue
		case parser.KindEnd:
			for _, payload := range a.pool(scope).payloads {
				v, err := lexer.ParseLiteralPayload(payload)
				if err != nil {
					a.errors.Add(a.pos(line.LineNumber), ErrorMalformedLiteral, err.Error())
					continue
				}
				words = append(words, v)
			}
			scope = ""
			continue
		}

		words = append(words, a.encode(scope, instr, line.LineNumber)...)
	}

	return words
}

func (a *Assembler) encode(scope string, instr *parser.Instruction, line int) []uint16 {
	switch instr.Kind {
	case parser.KindNoOperand:
		return []uint16{encodeNoOperand(opcodeNoOperand[instr.Mnemonic])}

	case parser.KindOneReg:
		return []uint16{encodeOneReg(opcodeOneReg[instr.Mnemonic], instr.Reg)}

	case parser.KindTwoReg:
		return []uint16{encodeTwoReg(opcodeTwoReg[instr.Mnemonic], instr.Reg, instr.Reg2)}

	case parser.KindRegAddr:
		x := 0
		if instr.HasIndex {
			x = instr.IndexReg
		}
		addr := a.resolveAddress(scope, instr.Addr, line)
		return []uint16{encodeRegAddr(opcodeRegAddr[instr.Mnemonic], instr.Reg, x), addr}

	case parser.KindAddr:
		x := 0
		if instr.HasIndex {
			x = instr.IndexReg
		}
		addr := a.resolveAddress(scope, instr.Addr, line)
		return []uint16{encodeAddr(opcodeAddr[instr.Mnemonic], x), addr}

	case parser.KindDS:
		n := instr.DSCount
		if n < 0 {
			n = 0
		}
		return make([]uint16, n)

	case parser.KindDC:
		var out []uint16
		for _, v := range instr.DCValues {
			out = append(out, a.resolveDCValue(scope, v, line)...)
		}
		return out

	case parser.KindIn:
		return a.expandInOut(scope, instr.InBuf, instr.InLen, SVCIn, line)
	case parser.KindOut:
		return a.expandInOut(scope, instr.OutBuf, instr.OutLen, SVCOut, line)

	case parser.KindRpush:
		var out []uint16
		for r := 1; r <= 7; r++ {
			out = append(out, encodeAddr(opcodeAddr["PUSH"], r), 0)
		}
		return out

	case parser.KindRpop:
		var out []uint16
		for r := 7; r >= 1; r-- {
			out = append(out, encodeOneReg(opcodeOneReg["POP"], r))
		}
		return out

	default:
		return nil
	}
}

// expandInOut emits the fixed 12-word IN/OUT macro template (§4.3, §9
// "macro size stability"): save GR1/GR2, load their effective addresses
// with the buffer and length labels, issue the SVC, restore GR2 then GR1.
func (a *Assembler) expandInOut(scope, buf, length string, svcCode uint16, line int) []uint16 {
	bufAddr := a.resolveAddress(scope, parser.Address{Kind: parser.AddrLabel, Label: buf}, line)
	lenAddr := a.resolveAddress(scope, parser.Address{Kind: parser.AddrLabel, Label: length}, line)
	return []uint16{
		encodeAddr(opcodeAddr["PUSH"], 1), 0,
		encodeAddr(opcodeAddr["PUSH"], 2), 0,
		encodeRegAddr(opcodeRegAddr["LAD"], 1, 0), bufAddr,
		encodeRegAddr(opcodeRegAddr["LAD"], 2, 0), lenAddr,
		encodeAddr(opcodeAddr["SVC"], 0), svcCode,
		encodeOneReg(opcodeOneReg["POP"], 2),
		encodeOneReg(opcodeOneReg["POP"], 1),
	}
}

func (a *Assembler) resolveAddress(scope string, addr parser.Address, line int) uint16 {
	switch addr.Kind {
	case parser.AddrLabel:
		if sym, ok := a.symtab.Lookup(scope, addr.Label); ok {
			return sym.Address
		}
		a.errors.Add(a.pos(line), ErrorUndefinedLabel, fmt.Sprintf("undefined label %q", addr.Label))
		return 0
	case parser.AddrDecimal:
		return uint16(int16(addr.Decimal))
	case parser.AddrHex:
		return addr.Hex
	case parser.AddrLiteral:
		if litAddr, ok := a.literalAddress(scope, addr.Literal); ok {
			return litAddr
		}
		a.errors.Add(a.pos(line), ErrorInternal, fmt.Sprintf("literal %q not found in scope %q's pool", addr.Literal, scope))
		return 0
	default:
		return 0
	}
}

// literalAddress resolves a literal payload to its address within scope's
// pool, laid out contiguously starting at poolBase[scope] (recorded when
// pass1 flushed the pool at the scope's END, §3).
func (a *Assembler) literalAddress(scope, payload string) (uint16, bool) {
	pool, ok := a.pools[scope]
	if !ok {
		return 0, false
	}
	idx, ok := pool.index[payload]
	if !ok {
		return 0, false
	}
	base, ok := a.poolBase[scope]
	if !ok {
		return 0, false
	}
	return base + uint16(idx), true
}

// resolveDCValue emits the word(s) for one DC list element (§4.3): numbers
// and immediates are one word, a string is one word per character, and a
// label resolves to its address.
func (a *Assembler) resolveDCValue(scope string, v parser.DCValue, line int) []uint16 {
	switch v.Kind {
	case parser.DCDecimal:
		return []uint16{uint16(int16(v.Decimal))}
	case parser.DCHex:
		return []uint16{v.Hex}
	case parser.DCString:
		runes := []rune(v.Str)
		out := make([]uint16, len(runes))
		for i, r := range runes {
			out[i] = uint16(r)
		}
		return out
	case parser.DCLabel:
		if sym, ok := a.symtab.Lookup(scope, v.Label); ok {
			return []uint16{sym.Address}
		}
		a.errors.Add(a.pos(line), ErrorUndefinedLabel, fmt.Sprintf("undefined label %q", v.Label))
		return []uint16{0}
	default:
		return nil
	}
}
