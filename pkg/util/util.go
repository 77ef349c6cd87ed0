package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xplshn/tacc/pkg/token"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// Printer renders diagnostics against the source files of one compilation,
// with the offending line and a caret under the token.
type Printer struct {
	Out   io.Writer
	Color bool
	files []SourceFileRecord
}

// NewPrinter writes to out, coloring output only when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{Out: out}
	if f, ok := out.(*os.File); ok {
		p.Color = term.IsTerminal(int(f.Fd()))
	}
	return p
}

// AddFile registers a source file and returns the file index its tokens use.
func (p *Printer) AddFile(rec SourceFileRecord) int {
	p.files = append(p.files, rec)
	return len(p.files) - 1
}

func (p *Printer) paint(color, s string) string {
	if !p.Color {
		return s
	}
	return color + s + colorReset
}

func (p *Printer) location(tok token.Token) string {
	name := "<input>"
	if tok.FileIndex >= 0 && tok.FileIndex < len(p.files) {
		name = p.files[tok.FileIndex].Name
	}
	if tok.Line == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, tok.Line, tok.Column)
}

// printErrorLine prints the source line and a caret indicating the error position
func (p *Printer) printErrorLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(p.files) || tok.Line == 0 {
		return
	}
	lines := strings.Split(string(p.files[tok.FileIndex].Content), "\n")
	if tok.Line > len(lines) {
		return
	}
	fmt.Fprintf(p.Out, "  %s\n", lines[tok.Line-1])

	caret := "^"
	if tok.Len > 1 {
		caret += strings.Repeat("~", tok.Len-1)
	}
	fmt.Fprintf(p.Out, "  %s%s\n", strings.Repeat(" ", max(tok.Column-1, 0)), p.paint(colorGreen, caret))
}

// Error prints an error diagnostic; kind names its category.
func (p *Printer) Error(tok token.Token, kind, msg string) {
	fmt.Fprintf(p.Out, "%s: %s %s", p.location(tok), p.paint(colorRed, "error:"), msg)
	if kind != "" {
		fmt.Fprintf(p.Out, " [%s]", kind)
	}
	fmt.Fprintln(p.Out)
	p.printErrorLine(tok)
}

// Warn prints a warning diagnostic tagged with the flag that controls it.
func (p *Printer) Warn(tok token.Token, flag, msg string) {
	fmt.Fprintf(p.Out, "%s: %s %s [-W%s]\n", p.location(tok), p.paint(colorYellow, "warning:"), msg, flag)
	p.printErrorLine(tok)
}

// Fatal prints a formatted error message and exits the program
func Fatal(format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, "tacc: error: ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}
