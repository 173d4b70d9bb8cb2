package lint

import (
	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
)

// CheckClass runs the unused-variable walk over one class and reports
// every never-read declaration into bag.
func CheckClass(class ast.Class, bag *diag.Bag) {
	v := New()
	for _, vr := range class.Vars {
		v.DeclareClassVar(vr.Name, vr.Span)
	}

	for _, fn := range class.Fns {
		v.BeginFn()
		for _, p := range fn.Params {
			v.DeclareLocal(p.Name, p.Span)
		}
		for _, l := range fn.Locals {
			v.DeclareLocal(l.Name, l.Span)
		}
		for _, stmt := range fn.Body {
			v.checkStmt(stmt)
		}
	}

	v.Finish(bag)
}

func (v *Visitor) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case ast.LetStmt:
		// Only the right-hand side counts as a read; assigning into a
		// target is not itself a use, matching the original checker.
		v.checkExpr(s.Value)
	case ast.IfStmt:
		v.checkExpr(s.Cond)
		for _, inner := range s.Then {
			v.checkStmt(inner)
		}
		for _, inner := range s.Else {
			v.checkStmt(inner)
		}
	case ast.WhileStmt:
		v.checkExpr(s.Cond)
		for _, inner := range s.Body {
			v.checkStmt(inner)
		}
	case ast.DoStmt:
		v.checkFnCall(s.Call)
	case ast.ReturnStmt:
		if s.HasValue {
			v.checkExpr(s.Value)
		}
	}
}

func (v *Visitor) checkExpr(e ast.Expr) {
	v.checkTerm(e.Lhs)
	if e.HasRhs {
		v.checkTerm(e.Rhs)
	}
}

func (v *Visitor) checkTerm(term ast.Term) {
	switch t := term.(type) {
	case ast.VarTerm:
		v.MarkUsed(t.Name)
		if t.Index != nil {
			v.checkExpr(*t.Index)
		}
	case ast.CallTerm:
		v.checkFnCall(t.Call)
	case ast.ParenTerm:
		v.checkExpr(t.Inner)
	case ast.UnaryTerm:
		v.checkTerm(t.Inner)
	case ast.ConstTerm:
		// Constants reference nothing.
	}
}

func (v *Visitor) checkFnCall(call ast.FnCall) {
	if call.Receiver != "" {
		v.MarkUsed(call.Receiver)
	}
	for _, arg := range call.Args {
		v.checkExpr(arg)
	}
}
