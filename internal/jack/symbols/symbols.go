// Package symbols implements the two-namespace symbol table described in
// spec.md §4.3: a function registry keyed by (class, function) plus a
// scoped variable table that assigns each variable a sequential register
// within its kind.
//
// Grounded on jack-compiler/src/symbol.rs in the original implementation
// for the session/scoped/register_variable/lookup_fn semantics, expressed
// with the Go idiom (map + explicit parent pointer rather than a borrowed
// closure) its-hmny-nand2tetris/pkg/jack/scopes.go uses for its own
// (simpler) scope stack.
package symbols

import (
	"strconv"

	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

// VarKind is the storage kind of a registered variable, distinct from
// ast.VarKind because a Param also becomes a variable (kind Arg) though it
// has no corresponding ast.VarKind.
type VarKind int

const (
	KindVar VarKind = iota
	KindArg
	KindStatic
	KindField
)

// Segment names the VM memory segment a kind is stored in.
func (k VarKind) Segment() string {
	switch k {
	case KindVar:
		return "local"
	case KindArg:
		return "argument"
	case KindStatic:
		return "static"
	case KindField:
		return "this"
	}
	return "?"
}

func (k VarKind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindArg:
		return "function argument"
	case KindStatic:
		return "static"
	case KindField:
		return "field"
	}
	return "?"
}

// Variable is a registered identifier: its declared type, storage kind and
// the span of its declaration (used for AlreadyDefinedIdent notes).
type Variable struct {
	Name string
	Type ast.Type
	Kind VarKind
	Span span.Span
}

func VarFromField(v ast.VariableDef) Variable {
	return Variable{Name: v.Name, Type: v.Type, Kind: KindField, Span: v.Span}
}

func VarFromStatic(v ast.VariableDef) Variable {
	return Variable{Name: v.Name, Type: v.Type, Kind: KindStatic, Span: v.Span}
}

func VarFromLocal(v ast.VariableDef) Variable {
	return Variable{Name: v.Name, Type: v.Type, Kind: KindVar, Span: v.Span}
}

func VarFromParam(p ast.Param) Variable {
	return Variable{Name: p.Name, Type: p.Type, Kind: KindArg, Span: p.Span}
}

// ThisVar is the implicit `this` argument of a method. Scoped does not
// register it; callers (codegen, typecheck) register it first inside a
// method's scope so that it takes argument register 0.
func ThisVar(className string, sp span.Span) Variable {
	return Variable{Name: "this", Type: ast.Type{Kind: ast.TClass, ClassName: className}, Kind: KindArg, Span: sp}
}

// fnKey identifies a registered function by (class, name).
type fnKey struct{ class, name string }

// FnCtxt is a registered function signature.
type FnCtxt struct {
	Class  string
	Name   string
	Kind   ast.FnKind
	Return ast.Type
	Span   span.Span
}

type slot struct {
	variable Variable
	register int
}

// scopedContext is one level of variable scoping: the class level (parent
// == nil) or one function level nested under it. Jack has no nested
// function definitions, so the chain is never more than two deep.
type scopedContext struct {
	parent          *scopedContext
	currentFn       *ast.FnDef
	idents          map[string]slot
	registerCounter map[VarKind]int
}

func newScopedContext() *scopedContext {
	return &scopedContext{idents: make(map[string]slot), registerCounter: make(map[VarKind]int)}
}

func (c *scopedContext) lookup(name string) (slot, bool) {
	s, ok := c.idents[name]
	return s, ok
}

// Table is the compiler's combined function/variable symbol table, reused
// across classes within one compilation via Sess.
type Table struct {
	functions map[fnKey]FnCtxt
	ctx       *scopedContext

	currentClass  string
	currentSource string
	haveCurrent   bool

	labelCounter int
}

// New returns a Table pre-seeded with the Jack standard library's function
// signatures (spec.md §6), so user code can call them without a `.jack`
// source for Array, Math, Output, and so on.
func New() *Table {
	return &Table{functions: stdlibFunctions(), ctx: newScopedContext()}
}

// Sess starts a fresh class-scoped session: resets variable scoping and
// records which class/source subsequent diagnostics refer to. The function
// registry persists across calls so forward references between classes
// resolve correctly.
func (t *Table) Sess(class, source string) {
	t.currentClass = class
	t.currentSource = source
	t.haveCurrent = true
	t.ctx = newScopedContext()
}

func (t *Table) CurrentClass() (string, *diag.Diagnostic) {
	if !t.haveCurrent {
		d := diag.New(diag.InternalCompilerError, span.Span{}, "symbol table: current class is not set")
		return "", &d
	}
	return t.currentClass, nil
}

func (t *Table) CurrentFn() *ast.FnDef { return t.ctx.currentFn }

// Scoped runs f with a fresh function-level scope pushed on top of the
// current (class-level) one, then restores the previous scope regardless
// of whether f returned an error.
func (t *Table) Scoped(fn *ast.FnDef, f func(*Table) *diag.Diagnostic) *diag.Diagnostic {
	parent := t.ctx
	t.ctx = &scopedContext{parent: parent, currentFn: fn, idents: make(map[string]slot), registerCounter: make(map[VarKind]int)}

	d := f(t)

	t.ctx = parent
	return d
}

// LookupVariable searches the current function scope then the class scope,
// returning the variable and its assigned register.
func (t *Table) LookupVariable(name string) (Variable, int, bool) {
	if s, ok := t.ctx.lookup(name); ok {
		return s.variable, s.register, true
	}
	if t.ctx.parent != nil {
		if s, ok := t.ctx.parent.lookup(name); ok {
			return s.variable, s.register, true
		}
	}
	return Variable{}, 0, false
}

// LookupFn resolves a call's target function. receiver == "" means the
// call has no explicit receiver and targets the current class. Otherwise,
// if receiver names an in-scope variable of class type, the call is a
// method call dispatched on that variable's class; else receiver is taken
// literally as a class name (a static/function call).
func (t *Table) LookupFn(receiver, name string) (FnCtxt, bool) {
	class := receiver
	if class == "" {
		class = t.currentClass
	} else if v, _, ok := t.LookupVariable(receiver); ok && v.Type.Kind == ast.TClass {
		class = v.Type.ClassName
	}
	fc, ok := t.functions[fnKey{class: class, name: name}]
	return fc, ok
}

// RegisterFn adds a function signature to the registry, rejecting a
// duplicate (class, name) pair.
func (t *Table) RegisterFn(class, name string, kind ast.FnKind, ret ast.Type, sp span.Span) *diag.Diagnostic {
	key := fnKey{class: class, name: name}
	if existing, ok := t.functions[key]; ok {
		d := diag.New(diag.AlreadyDefinedIdent, sp, "function '%s.%s' is already defined", class, name).
			WithOriginal(existing.Span)
		return &d
	}
	t.functions[key] = FnCtxt{Class: class, Name: name, Kind: kind, Return: ret, Span: sp}
	return nil
}

// RegisterVariable assigns the next free register of var.Kind within the
// current scope and records it for lookup, rejecting kinds that don't
// belong at the current nesting level (Var/Arg need a function scope,
// Static/Field must be class-scoped) and duplicate names within the same
// scope are allowed to silently shadow the earlier one, matching the
// reference compiler's documented behavior.
func (t *Table) RegisterVariable(v Variable) *diag.Diagnostic {
	atClassScope := t.ctx.parent == nil

	switch {
	case atClassScope && (v.Kind == KindVar || v.Kind == KindArg):
		d := diag.New(diag.InvalidSyntax, v.Span, "cannot use %s to define class-scoped variables", v.Kind)
		return &d
	case !atClassScope && (v.Kind == KindStatic || v.Kind == KindField):
		d := diag.New(diag.InvalidSyntax, v.Span, "cannot use %s to define function-scoped variables", v.Kind)
		return &d
	}

	register := t.assignRegister(v.Kind)
	t.ctx.idents[v.Name] = slot{variable: v, register: register}
	return nil
}

func (t *Table) assignRegister(kind VarKind) int {
	register := t.ctx.registerCounter[kind]
	t.ctx.registerCounter[kind]++
	return register
}

// Label returns a fresh, globally unique label name for lowering control
// flow (if/while) to VM goto targets.
func (t *Table) Label() string {
	t.labelCounter++
	return "LABEL_" + strconv.Itoa(t.labelCounter)
}
