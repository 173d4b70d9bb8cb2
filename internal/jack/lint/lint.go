// Package lint implements the unused-variable warning described in
// spec.md §4.5: a two-pass walk over a class's functions that records
// every declared field, static, parameter and local, marks an identifier
// used the moment it's read, and finally reports every declaration that
// was never read.
//
// Grounded on jack-compiler/src/diagnosis/unused_variable.rs's
// UnusedVariableVisitor, generalized to flush a function's declarations
// into the class-level tally after processing it (rather than only before
// starting the next one), so that a class's last function isn't silently
// skipped as it is in the original.
package lint

import (
	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

type record struct {
	used bool
	span span.Span
}

// Visitor accumulates declaration/use state across one class: `declared`
// holds every field/static plus every function's params and locals once
// that function has been walked; `current` holds the function presently
// being walked.
type Visitor struct {
	declared map[string]record
	current  map[string]record
}

func New() *Visitor {
	return &Visitor{declared: make(map[string]record), current: make(map[string]record)}
}

// DeclareClassVar records a field or static before any function is walked.
func (v *Visitor) DeclareClassVar(name string, sp span.Span) {
	v.declared[name] = record{used: false, span: sp}
}

// BeginFn flushes the previous function's declarations into the class
// tally and starts a fresh scope for the next one.
func (v *Visitor) BeginFn() {
	for name, r := range v.current {
		v.declared[name] = r
	}
	v.current = make(map[string]record)
}

// DeclareLocal records a parameter or local variable of the function
// currently being walked.
func (v *Visitor) DeclareLocal(name string, sp span.Span) {
	v.current[name] = record{used: false, span: sp}
}

// MarkUsed records a read of ident, in whichever scope currently holds it.
// A name declared in both the class scope and the current function scope
// is assumed not to happen (the symbol table would have one shadow the
// other), matching the original visitor's own documented assumption.
func (v *Visitor) MarkUsed(ident string) {
	if r, ok := v.current[ident]; ok {
		r.used = true
		v.current[ident] = r
	}
	if r, ok := v.declared[ident]; ok {
		r.used = true
		v.declared[ident] = r
	}
}

// Finish flushes any still-open function scope and reports every
// declaration that was never marked used as an UnusedVariable warning.
func (v *Visitor) Finish(bag *diag.Bag) {
	v.BeginFn()
	for name, r := range v.declared {
		if !r.used {
			bag.Warnf(diag.UnusedVariable, r.span, "variable '%s' is never used", name)
		}
	}
}
