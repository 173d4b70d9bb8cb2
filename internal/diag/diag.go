// Package diag implements the error taxonomy shared by the lexer, parser,
// symbol table, type checker, and unused-variable lint, and renders
// diagnostics with a labeled source span the way the compiler's original
// sources report errors (a caret-annotated snippet plus an optional help
// line).
package diag

import (
	"fmt"
	"strings"

	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

// Severity classifies whether a Diagnostic aborts compilation or not.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Kind names one entry of the taxonomy described in spec.md §7.
type Kind string

const (
	// Lex
	UnexpectedCharacter Kind = "UnexpectedCharacter"
	InvalidNumberFormat Kind = "InvalidNumberFormat"
	UndefinedKeyword    Kind = "UndefinedKeyword"
	UnterminatedQuote   Kind = "UnterminatedQuote"
	UnterminatedComment Kind = "UnterminatedComment"

	// Parse
	ReservedKeyword       Kind = "ReservedKeyword"
	UnexpectedIdent       Kind = "UnexpectedIdent"
	UnexpectedToken       Kind = "UnexpectedToken"
	UnexpectedEOF         Kind = "UnexpectedEOF"
	InternalCompilerError Kind = "InternalCompilerError"

	// Semantic
	UndefinedVariable  Kind = "UndefinedVariable"
	InvalidSyntax      Kind = "InvalidSyntax"
	TypeMismatch       Kind = "TypeMismatch"
	UnusedVariable     Kind = "UnusedVariable"
	AlreadyDefinedIdent Kind = "AlreadyDefinedIdent"

	// I/O
	FileNotReadable Kind = "FileNotReadable"
	WriteFailed     Kind = "WriteFailed"
)

// Diagnostic is one reported problem, anchored to a primary span.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Span     span.Span
	Help     string

	// OriginalSpan is set for AlreadyDefinedIdent: the span of the
	// first (conflicting) definition.
	OriginalSpan *span.Span
}

func (d Diagnostic) Error() string { return d.Message }

// New builds an error-severity Diagnostic.
func New(kind Kind, sp span.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Kind: kind, Span: sp, Message: fmt.Sprintf(format, args...)}
}

// Warn builds a warning-severity Diagnostic.
func Warn(kind Kind, sp span.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Kind: kind, Span: sp, Message: fmt.Sprintf(format, args...)}
}

// WithHelp attaches a human-readable hint, e.g. for ReservedKeyword raised
// while parsing a class name.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// WithOriginal attaches the span of a conflicting prior definition.
func (d Diagnostic) WithOriginal(original span.Span) Diagnostic {
	d.OriginalSpan = &original
	return d
}

// Bag accumulates diagnostics for a single compilation unit.
type Bag struct {
	Source string
	Unit   string
	items  []Diagnostic
}

// NewBag creates a Bag for reporting diagnostics against source, which must
// outlive every Diagnostic added (span offsets are resolved against it).
func NewBag(unit, source string) *Bag { return &Bag{Unit: unit, Source: source} }

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Errorf is a convenience to add an error-severity diagnostic.
func (b *Bag) Errorf(kind Kind, sp span.Span, format string, args ...any) {
	b.Add(New(kind, sp, format, args...))
}

// Warnf is a convenience to add a warning-severity diagnostic.
func (b *Bag) Warnf(kind Kind, sp span.Span, format string, args ...any) {
	b.Add(Warn(kind, sp, format, args...))
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded so far, in insertion order.
func (b *Bag) All() []Diagnostic { return b.items }

// lineCol resolves a byte offset to a 1-based (line, column) pair plus the
// text of that line, by scanning source once per call. Compilation units
// are small enough (single Jack classes) that this stays well within
// budget; a persistent line-offset index isn't warranted here.
func lineCol(source string, offset uint32) (line, col int, lineText string) {
	line, col, lineStart := 1, 1, 0

	for i := 0; i < int(offset) && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			col = 1
			lineStart = i + 1
		} else {
			col++
		}
	}

	lineEnd := lineStart
	for lineEnd < len(source) && source[lineEnd] != '\n' {
		lineEnd++
	}

	return line, col, source[lineStart:lineEnd]
}

// Render formats a single diagnostic as a multi-line, human-readable report
// with a caret-underlined source snippet, in the manner of the original
// compiler's span-based error reporting.
func (b *Bag) Render(d Diagnostic) string {
	var out strings.Builder

	line, col, lineText := lineCol(b.Source, d.Span.Lo)
	fmt.Fprintf(&out, "%s: %s: %s\n", b.Unit, d.Severity, d.Message)
	fmt.Fprintf(&out, "  --> %s:%d:%d\n", b.Unit, line, col)
	fmt.Fprintf(&out, "   |\n")
	fmt.Fprintf(&out, "%3d| %s\n", line, lineText)

	width := d.Span.Len()
	if width < 1 {
		width = 1
	}
	underline := strings.Repeat("^", width)
	fmt.Fprintf(&out, "   | %s%s\n", strings.Repeat(" ", col-1), underline)

	if d.OriginalSpan != nil {
		origLine, origCol, origText := lineCol(b.Source, d.OriginalSpan.Lo)
		fmt.Fprintf(&out, "note: originally defined at %s:%d:%d\n", b.Unit, origLine, origCol)
		fmt.Fprintf(&out, "%3d| %s\n", origLine, origText)
	}

	if d.Help != "" {
		fmt.Fprintf(&out, "help: %s\n", d.Help)
	}

	return out.String()
}

// RenderAll renders every diagnostic in the bag, separated by blank lines.
func (b *Bag) RenderAll() string {
	var out strings.Builder
	for _, d := range b.items {
		out.WriteString(b.Render(d))
		out.WriteString("\n")
	}
	return out.String()
}
