package parser

import (
	"fmt"
	"strconv"

	"github.com/caslii/comet2/lexer"
)

// mnemonic classification tables used by dispatch (§4.2).
var noOperandMnemonics = map[string]bool{
	"NOP": true, "RET": true, "RPUSH": true, "RPOP": true, "END": true,
}

var regAddrOrTwoRegMnemonics = map[string]bool{
	"LD": true, "ADDA": true, "SUBA": true, "ADDL": true, "SUBL": true,
	"MULA": true, "DIVA": true, "MULL": true, "DIVL": true,
	"AND": true, "OR": true, "XOR": true, "CPA": true, "CPL": true,
}

var alwaysRegAddrMnemonics = map[string]bool{
	"SLA": true, "SRA": true, "SLL": true, "SRL": true, "ST": true, "LAD": true,
}

var alwaysAddrMnemonics = map[string]bool{
	"JMI": true, "JNZ": true, "JZE": true, "JUMP": true, "JPL": true, "JOV": true,
	"PUSH": true, "CALL": true, "SVC": true,
}

// Parser is a hand-written recursive-descent parser over a CASL II token
// stream, one token of lookahead plus one extra peek (§4.2).
type Parser struct {
	l        *lexer.Lexer
	filename string
	curr     lexer.Token
	peek     lexer.Token
	errors   *ErrorList
}

// NewParser creates a parser consuming tokens from l.
func NewParser(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{l: l, filename: filename, errors: &ErrorList{}}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos() lexer.Position {
	return lexer.Position{File: p.filename, Line: p.curr.Line}
}

func (p *Parser) Errors() *ErrorList {
	return p.errors
}

// Parse consumes the entire token stream and returns a program tree. Parsing
// continues past a line-local error so multiple diagnostics can be reported
// in one pass; the caller should check Errors().HasErrors() afterward.
func (p *Parser) Parse() *Program {
	prog := &Program{}
	for p.curr.Type != lexer.TokenEOF {
		if p.curr.Type == lexer.TokenNewline {
			p.next()
			continue
		}
		if p.curr.Type == lexer.TokenComment {
			p.next()
			continue
		}
		line := p.parseLine()
		prog.Lines = append(prog.Lines, line)
	}
	return prog
}

func (p *Parser) parseLine() Line {
	lineNo := p.curr.Line
	line := Line{LineNumber: lineNo}

	if p.curr.Type == lexer.TokenIdentifier {
		line.Label = p.curr.Literal
		line.HasLabel = true
		p.next()
	}

	if p.curr.Type == lexer.TokenMnemonic {
		line.Instruction = p.parseInstruction()
	} else if p.curr.Type != lexer.TokenNewline && p.curr.Type != lexer.TokenComment &&
		p.curr.Type != lexer.TokenEOF {
		p.errors.Add(p.pos(), ErrorStrayToken, fmt.Sprintf("unexpected token %s", p.curr))
		p.next()
	}

	if p.curr.Type == lexer.TokenComment {
		p.next()
	}
	if p.curr.Type == lexer.TokenNewline {
		p.next()
	} else if p.curr.Type != lexer.TokenEOF {
		p.errors.Add(p.pos(), ErrorStrayToken, fmt.Sprintf("unexpected trailing token %s", p.curr))
		for p.curr.Type != lexer.TokenNewline && p.curr.Type != lexer.TokenEOF {
			p.next()
		}
		if p.curr.Type == lexer.TokenNewline {
			p.next()
		}
	}

	return line
}

func (p *Parser) parseInstruction() *Instruction {
	mnem := p.curr.Literal
	p.next()

	switch {
	case noOperandMnemonics[mnem]:
		return &Instruction{Kind: p.noOperandKind(mnem), Mnemonic: mnem}

	case mnem == "POP":
		reg, ok := p.expectRegister()
		if !ok {
			return &Instruction{Kind: KindOneReg, Mnemonic: mnem}
		}
		return &Instruction{Kind: KindOneReg, Mnemonic: mnem, Reg: reg}

	case mnem == "START":
		instr := &Instruction{Kind: KindStart, Mnemonic: mnem}
		if p.curr.Type == lexer.TokenIdentifier {
			instr.EntryLabel = p.curr.Literal
			instr.HasEntry = true
			p.next()
		}
		return instr

	case mnem == "DS":
		instr := &Instruction{Kind: KindDS, Mnemonic: mnem}
		n, ok := p.expectSignedInt()
		if ok {
			instr.DSCount = n
		}
		return instr

	case mnem == "DC":
		return &Instruction{Kind: KindDC, Mnemonic: mnem, DCValues: p.parseDCList()}

	case mnem == "IN":
		buf, lenLbl := p.parseTwoLabels()
		return &Instruction{Kind: KindIn, Mnemonic: mnem, InBuf: buf, InLen: lenLbl}

	case mnem == "OUT":
		buf, lenLbl := p.parseTwoLabels()
		return &Instruction{Kind: KindOut, Mnemonic: mnem, OutBuf: buf, OutLen: lenLbl}

	case regAddrOrTwoRegMnemonics[mnem]:
		return p.parseRegAddrOrTwoReg(mnem)

	case alwaysRegAddrMnemonics[mnem]:
		return p.parseRegAddr(mnem)

	case alwaysAddrMnemonics[mnem]:
		return p.parseAddr(mnem)

	default:
		p.errors.Add(p.pos(), ErrorUnknownMnemonic, fmt.Sprintf("unknown mnemonic %q", mnem))
		return &Instruction{Kind: KindNoOperand, Mnemonic: mnem}
	}
}

func (p *Parser) noOperandKind(mnem string) InstructionKind {
	switch mnem {
	case "RPUSH":
		return KindRpush
	case "RPOP":
		return KindRpop
	case "END":
		return KindEnd
	default:
		return KindNoOperand
	}
}

// parseRegAddrOrTwoReg reads the first register, a comma, then peeks: a
// following register token means the two-register form, otherwise it is
// register-address with an optional index-register tail (§4.2).
func (p *Parser) parseRegAddrOrTwoReg(mnem string) *Instruction {
	reg, ok := p.expectRegister()
	if !ok {
		return &Instruction{Kind: KindRegAddr, Mnemonic: mnem}
	}
	if !p.expectComma() {
		return &Instruction{Kind: KindRegAddr, Mnemonic: mnem, Reg: reg}
	}
	if p.curr.Type == lexer.TokenRegister {
		reg2, ok := p.expectRegister()
		if !ok {
			return &Instruction{Kind: KindTwoReg, Mnemonic: mnem, Reg: reg}
		}
		return &Instruction{Kind: KindTwoReg, Mnemonic: mnem, Reg: reg, Reg2: reg2}
	}
	addr, ok := p.expectAddress()
	instr := &Instruction{Kind: KindRegAddr, Mnemonic: mnem, Reg: reg}
	if ok {
		instr.Addr = addr
	}
	p.maybeIndexTail(instr)
	return instr
}

func (p *Parser) parseRegAddr(mnem string) *Instruction {
	reg, ok := p.expectRegister()
	if !ok {
		return &Instruction{Kind: KindRegAddr, Mnemonic: mnem}
	}
	if !p.expectComma() {
		return &Instruction{Kind: KindRegAddr, Mnemonic: mnem, Reg: reg}
	}
	addr, ok := p.expectAddress()
	instr := &Instruction{Kind: KindRegAddr, Mnemonic: mnem, Reg: reg}
	if ok {
		instr.Addr = addr
	}
	p.maybeIndexTail(instr)
	return instr
}

func (p *Parser) parseAddr(mnem string) *Instruction {
	addr, ok := p.expectAddress()
	instr := &Instruction{Kind: KindAddr, Mnemonic: mnem}
	if ok {
		instr.Addr = addr
	}
	p.maybeIndexTail(instr)
	return instr
}

// maybeIndexTail parses an optional ", GRn" index-register suffix.
func (p *Parser) maybeIndexTail(instr *Instruction) {
	if p.curr.Type != lexer.TokenComma {
		return
	}
	p.next()
	reg, ok := p.expectRegister()
	if ok {
		instr.HasIndex = true
		instr.IndexReg = reg
	}
}

func (p *Parser) parseTwoLabels() (string, string) {
	a := p.expectLabel()
	if !p.expectComma() {
		return a, ""
	}
	b := p.expectLabel()
	return a, b
}

func (p *Parser) parseDCList() []DCValue {
	var values []DCValue
	for {
		v, ok := p.parseDCValue()
		if ok {
			values = append(values, v)
		}
		if p.curr.Type != lexer.TokenComma {
			break
		}
		p.next()
	}
	return values
}

func (p *Parser) parseDCValue() (DCValue, bool) {
	switch p.curr.Type {
	case lexer.TokenNumber:
		n, err := strconv.ParseInt(p.curr.Literal, 10, 32)
		if err != nil {
			p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("malformed decimal %q", p.curr.Literal))
			p.next()
			return DCValue{}, false
		}
		p.next()
		return DCValue{Kind: DCDecimal, Decimal: int32(n)}, true
	case lexer.TokenHexImm:
		v, err := strconv.ParseUint(p.curr.Literal, 16, 16)
		if err != nil {
			p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("malformed hex immediate %q", p.curr.Literal))
			p.next()
			return DCValue{}, false
		}
		p.next()
		return DCValue{Kind: DCHex, Hex: uint16(v)}, true
	case lexer.TokenString:
		s := p.curr.Literal
		p.next()
		return DCValue{Kind: DCString, Str: s}, true
	case lexer.TokenIdentifier:
		l := p.curr.Literal
		p.next()
		return DCValue{Kind: DCLabel, Label: l}, true
	default:
		p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("expected a DC value, got %s", p.curr))
		p.next()
		return DCValue{}, false
	}
}

// expectAddress parses a label, decimal, hex immediate, or literal into an
// Address (§3).
func (p *Parser) expectAddress() (Address, bool) {
	switch p.curr.Type {
	case lexer.TokenIdentifier:
		a := Address{Kind: AddrLabel, Label: p.curr.Literal}
		p.next()
		return a, true
	case lexer.TokenNumber:
		n, err := strconv.ParseInt(p.curr.Literal, 10, 32)
		if err != nil {
			p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("malformed decimal %q", p.curr.Literal))
			p.next()
			return Address{}, false
		}
		p.next()
		return Address{Kind: AddrDecimal, Decimal: int32(n)}, true
	case lexer.TokenHexImm:
		v, err := strconv.ParseUint(p.curr.Literal, 16, 16)
		if err != nil {
			p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("malformed hex immediate %q", p.curr.Literal))
			p.next()
			return Address{}, false
		}
		p.next()
		return Address{Kind: AddrHex, Hex: uint16(v)}, true
	case lexer.TokenLiteral:
		a := Address{Kind: AddrLiteral, Literal: p.curr.Literal}
		p.next()
		return a, true
	default:
		p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("expected an address operand, got %s", p.curr))
		return Address{}, false
	}
}

func (p *Parser) expectRegister() (int, bool) {
	if p.curr.Type != lexer.TokenRegister {
		p.errors.Add(p.pos(), ErrorMissingOperand, fmt.Sprintf("expected a register, got %s", p.curr))
		return 0, false
	}
	reg := p.curr.Reg
	p.next()
	return reg, true
}

func (p *Parser) expectComma() bool {
	if p.curr.Type != lexer.TokenComma {
		p.errors.Add(p.pos(), ErrorMissingComma, fmt.Sprintf("expected ',', got %s", p.curr))
		return false
	}
	p.next()
	return true
}

func (p *Parser) expectLabel() string {
	if p.curr.Type != lexer.TokenIdentifier {
		p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("expected a label, got %s", p.curr))
		return ""
	}
	l := p.curr.Literal
	p.next()
	return l
}

func (p *Parser) expectSignedInt() (int32, bool) {
	if p.curr.Type != lexer.TokenNumber {
		p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("expected an integer, got %s", p.curr))
		return 0, false
	}
	n, err := strconv.ParseInt(p.curr.Literal, 10, 32)
	if err != nil {
		p.errors.Add(p.pos(), ErrorWrongOperandKind, fmt.Sprintf("malformed integer %q", p.curr.Literal))
		p.next()
		return 0, false
	}
	p.next()
	return int32(n), true
}
