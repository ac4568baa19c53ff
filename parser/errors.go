package parser

import (
	"fmt"
	"strings"

	"github.com/caslii/comet2/lexer"
)

// ErrorKind categorizes a syntax error (§7).
type ErrorKind int

const (
	ErrorMissingOperand ErrorKind = iota
	ErrorWrongOperandKind
	ErrorUnknownMnemonic
	ErrorMissingComma
	ErrorStrayToken
	ErrorUnexpectedEOF
)

// Error is a syntax error tied to a source line.
type Error struct {
	Pos     lexer.Position
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// ErrorList collects syntax errors encountered across a parse.
type ErrorList struct {
	Errors []*Error
}

func (l *ErrorList) Add(pos lexer.Position, kind ErrorKind, message string) {
	l.Errors = append(l.Errors, &Error{Pos: pos, Kind: kind, Message: message})
}

func (l *ErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *ErrorList) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
