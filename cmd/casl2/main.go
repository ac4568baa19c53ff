// Command casl2 assembles and runs CASL II source files against the COMET
// II virtual machine.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caslii/comet2/loader"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		detailed    = flag.Bool("d", false, "Show detailed assembly info (word count, entry address)")
		assembleOnly = flag.Bool("a", false, "Assemble only; do not run")
		run         = flag.Bool("r", true, "Run after assembling")
		noColor     = flag.Bool("no-color", false, "Disable colored diagnostics")
		quiet       = flag.Bool("q", false, "Quiet: suppress IN/OUT annotations")
		veryQuiet   = flag.Bool("qq", false, "Very quiet: implies -q and -r")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("casl2 %s (commit %s, built %s)\n", Version, Commit, Date)
		os.Exit(0)
	}

	if *veryQuiet {
		*quiet = true
		*run = true
	}

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	sourceFile := flag.Arg(0)
	inputLines := flag.Args()[1:]

	src, err := os.ReadFile(sourceFile) // #nosec G304 -- user-specified source path
	if err != nil {
		fail(*noColor, fmt.Sprintf("cannot read %s: %v", sourceFile, err))
	}

	img, err := loader.Assemble(string(src), sourceFile)
	if err != nil {
		fail(*noColor, err.Error())
	}

	if *detailed {
		fmt.Printf("entry: %#04x\n", img.Entry)
		fmt.Printf("words: %d\n", len(img.Words))
	}

	if *assembleOnly || !*run {
		os.Exit(0)
	}

	m := loader.Load(img, inputLines, *quiet)
	m.OutputWriter = os.Stdout
	if err := m.Run(); err != nil {
		fail(*noColor, err.Error())
	}

	os.Exit(0)
}

func fail(noColor bool, message string) {
	if noColor {
		fmt.Fprintf(os.Stderr, "error: %s\n", message)
	} else {
		fmt.Fprintf(os.Stderr, "\x1b[31merror:\x1b[0m %s\n", message)
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `casl2 %s

Usage: casl2 [options] <source-file> [input-line ...]

Options:
  -d           Show detailed assembly info (word count, entry address)
  -a           Assemble only; do not run
  -r           Run after assembling (default true)
  -no-color    Disable colored diagnostics
  -q           Quiet: suppress IN/OUT annotations
  -qq          Very quiet: implies -q and -r
  -version     Show version information

Examples:
  casl2 hello.cas
  casl2 -d echo.cas "HI"
  casl2 -a -d program.cas
`, Version)
}
