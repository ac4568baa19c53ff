// Package loader assembles CASL II source and loads the resulting image
// into a fresh VM, gluing the assembler and vm packages together (§4.4).
// Unlike a richer architecture, COMET II has a single flat memory space, so
// there is no segment layout to negotiate here.
package loader

import (
	"fmt"

	"github.com/caslii/comet2/assembler"
	"github.com/caslii/comet2/lexer"
	"github.com/caslii/comet2/parser"
	"github.com/caslii/comet2/vm"
)

// AssembleError wraps a non-empty error list from the lexer/parser/assembler
// pipeline, identifying the stage it came from.
type AssembleError struct {
	Stage string
	Errs  error
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Errs.Error())
}

// Assemble runs source through the lexer, parser, and assembler, returning
// the resulting image. The first stage to report errors stops the pipeline.
// The lexer's own errors (unterminated string, malformed immediate,
// unexpected character, §7) are checked after parsing drives the lexer to
// EOF, since the parser pulls tokens from the lexer on demand rather than
// tokenizing up front.
func Assemble(source, filename string) (*assembler.Image, error) {
	l := lexer.NewLexer(source, filename)
	p := parser.NewParser(l, filename)
	prog := p.Parse()
	if l.Errors().HasErrors() {
		return nil, &AssembleError{Stage: "lex", Errs: l.Errors()}
	}
	if p.Errors().HasErrors() {
		return nil, &AssembleError{Stage: "parse", Errs: p.Errors()}
	}

	img, errs := assembler.Assemble(prog, filename)
	if errs.HasErrors() {
		return nil, &AssembleError{Stage: "assemble", Errs: errs}
	}
	return img, nil
}

// Load builds a VM from an already-assembled image.
func Load(img *assembler.Image, input []string, quiet bool) *vm.VM {
	return vm.New(img.Words, img.Entry, input, quiet)
}

// AssembleAndLoad is the common path: assemble source, then load it into a
// ready-to-run VM.
func AssembleAndLoad(source, filename string, input []string, quiet bool) (*vm.VM, error) {
	img, err := Assemble(source, filename)
	if err != nil {
		return nil, err
	}
	return Load(img, input, quiet), nil
}
