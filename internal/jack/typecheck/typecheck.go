// Package typecheck implements the diagnostic-only type checker described
// in spec.md §4.4: its only hard errors are a bare `return;` inside a
// non-void function and a `let` whose target variable is undefined, and
// otherwise it reports TypeMismatch as a warning wherever an assignment
// isn't covered by one of Jack's permissive coercion rules. A non-void
// function whose body ends without any return statement is not reported.
//
// Grounded on jack-compiler/src/diagnosis/typeck.rs's validate_variable_ty
// and infer_expr_ty, adapted to read from a populated symbols.Table instead
// of borrowing from the AST directly.
package typecheck

import (
	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/symbols"
)

// Checker type-checks one class against a symbol table that already has
// the class's fields/statics and every class's function signatures
// registered (see symbols.Table.RegisterVariable / RegisterFn).
type Checker struct {
	table *symbols.Table
	bag   *diag.Bag
}

func New(table *symbols.Table, bag *diag.Bag) *Checker {
	return &Checker{table: table, bag: bag}
}

// CheckClass type-checks every function body of class, registering each
// function's parameters and locals in a fresh scope before walking its
// statements. class's fields/statics and every class's functions must
// already be registered in the Checker's table.
func (c *Checker) CheckClass(class ast.Class) {
	for _, fn := range class.Fns {
		fn := fn
		c.table.Scoped(&fn, func(t *symbols.Table) *diag.Diagnostic {
			if fn.Kind == ast.FnMethod {
				t.RegisterVariable(symbols.ThisVar(class.Name, fn.NameSpan))
			}
			for _, p := range fn.Params {
				t.RegisterVariable(symbols.VarFromParam(p))
			}
			for _, l := range fn.Locals {
				t.RegisterVariable(symbols.VarFromLocal(l))
			}
			c.checkFnBody(fn)
			return nil
		})
	}
}

func (c *Checker) checkFnBody(fn ast.FnDef) {
	for _, stmt := range fn.Body {
		c.checkStmt(stmt, fn)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt, fn ast.FnDef) {
	switch s := stmt.(type) {
	case ast.LetStmt:
		c.checkLet(s)
	case ast.IfStmt:
		for _, inner := range s.Then {
			c.checkStmt(inner, fn)
		}
		for _, inner := range s.Else {
			c.checkStmt(inner, fn)
		}
	case ast.WhileStmt:
		for _, inner := range s.Body {
			c.checkStmt(inner, fn)
		}
	case ast.ReturnStmt:
		c.checkReturn(s, fn)
	case ast.DoStmt:
		// A `do` call's result is discarded; no assignment to check.
	}
}

func (c *Checker) checkLet(s ast.LetStmt) {
	target, ok := s.Target.(ast.VarTerm)
	if !ok {
		return
	}
	variable, _, found := c.table.LookupVariable(target.Name)
	if !found {
		c.bag.Errorf(diag.UndefinedVariable, target.Span, "undefined variable '%s'", target.Name)
		return
	}

	// Assigning through an index into an Array-typed variable bypasses the
	// element type entirely: the VM has no notion of array element types.
	if target.Index != nil && variable.Type.Kind == ast.TClass && variable.Type.ClassName == "Array" {
		return
	}

	rhsType, ok := c.inferExprType(s.Value)
	if !ok {
		return
	}
	if !assignable(variable.Type, rhsType) {
		c.bag.Warnf(diag.TypeMismatch, s.Span, "cannot assign %s to variable '%s' of type %s", rhsType, target.Name, variable.Type)
	}
}

func (c *Checker) checkReturn(s ast.ReturnStmt, fn ast.FnDef) {
	if fn.Kind == ast.FnConstructor {
		// A constructor conventionally returns `this`; its return
		// statements are not checked at all.
		return
	}
	if fn.Return.Kind == ast.TVoid {
		if s.HasValue {
			c.bag.Warnf(diag.TypeMismatch, s.Span, "function '%s' is declared void but returns a value", fn.Name)
		}
		return
	}
	if !s.HasValue {
		c.bag.Errorf(diag.TypeMismatch, s.Span, "function '%s' must return a value of type %s", fn.Name, fn.Return)
	}
}

// assignable implements Jack's permissive coercion table: boolean accepts
// anything, int accepts boolean and char, char accepts String, and
// otherwise the types must match exactly.
func assignable(target, value ast.Type) bool {
	switch {
	case target.Kind == ast.TBoolean:
		return true
	case target.Kind == ast.TInt && value.Kind == ast.TBoolean:
		return true
	case target.Kind == ast.TInt && value.Kind == ast.TChar:
		return true
	case target.Kind == ast.TChar && value.Kind == ast.TClass && value.ClassName == "String":
		return true
	}
	return target.Equal(value)
}

// inferExprType infers the type of an Expr from its left term, falling
// back to the right term when the left one can't be resolved (e.g. `null`
// constants carry no type of their own).
func (c *Checker) inferExprType(e ast.Expr) (ast.Type, bool) {
	if ty, ok := c.inferTermType(e.Lhs); ok {
		return ty, true
	}
	if e.HasRhs {
		return c.inferTermType(e.Rhs)
	}
	return ast.Type{}, false
}

func (c *Checker) inferTermType(term ast.Term) (ast.Type, bool) {
	switch t := term.(type) {
	case ast.ConstTerm:
		switch t.Kind {
		case ast.ConstInt:
			return ast.Type{Kind: ast.TInt}, true
		case ast.ConstString:
			if len(t.Str) == 1 {
				return ast.Type{Kind: ast.TChar}, true
			}
			return ast.Type{Kind: ast.TClass, ClassName: "String"}, true
		case ast.ConstTrue, ast.ConstFalse:
			return ast.Type{Kind: ast.TBoolean}, true
		case ast.ConstThis:
			class, d := c.table.CurrentClass()
			if d != nil {
				return ast.Type{}, false
			}
			return ast.Type{Kind: ast.TClass, ClassName: class}, true
		case ast.ConstNull:
			return ast.Type{}, false
		}
	case ast.VarTerm:
		if v, _, ok := c.table.LookupVariable(t.Name); ok {
			return v.Type, true
		}
	case ast.CallTerm:
		if fc, ok := c.table.LookupFn(t.Call.Receiver, t.Call.Name); ok {
			return fc.Return, true
		}
	case ast.ParenTerm:
		return c.inferExprType(t.Inner)
	case ast.UnaryTerm:
		return c.inferTermType(t.Inner)
	}
	return ast.Type{}, false
}
