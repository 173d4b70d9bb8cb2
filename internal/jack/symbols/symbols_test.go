package symbols_test

import (
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/symbols"
	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

func tInt() ast.Type  { return ast.Type{Kind: ast.TInt} }
func tChar() ast.Type { return ast.Type{Kind: ast.TChar} }

func TestRegisterVariableClassScope(t *testing.T) {
	table := symbols.New()
	table.Sess("TestClass", "")

	field := symbols.Variable{Name: "test_field", Type: tInt(), Kind: symbols.KindField}
	if d := table.RegisterVariable(field); d != nil {
		t.Fatalf("unexpected error registering field: %v", d)
	}

	static := symbols.Variable{Name: "test_static", Type: tChar(), Kind: symbols.KindStatic}
	if d := table.RegisterVariable(static); d != nil {
		t.Fatalf("unexpected error registering static: %v", d)
	}

	v, reg, ok := table.LookupVariable("test_field")
	if !ok || reg != 0 || v.Kind != symbols.KindField {
		t.Errorf("expected test_field at register 0, got %+v reg=%d ok=%v", v, reg, ok)
	}

	v, reg, ok = table.LookupVariable("test_static")
	if !ok || reg != 0 || v.Kind != symbols.KindStatic {
		t.Errorf("expected test_static at register 0, got %+v reg=%d ok=%v", v, reg, ok)
	}

	if _, _, ok := table.LookupVariable("unknown"); ok {
		t.Errorf("expected unknown to be unresolved")
	}
}

func TestRegisterVariableRejectsWrongScope(t *testing.T) {
	table := symbols.New()
	table.Sess("TestClass", "")

	local := symbols.Variable{Name: "x", Type: tInt(), Kind: symbols.KindVar}
	if d := table.RegisterVariable(local); d == nil {
		t.Errorf("expected error registering a local at class scope")
	}

	table.Scoped(&ast.FnDef{Name: "run"}, func(inner *symbols.Table) *diag.Diagnostic {
		field := symbols.Variable{Name: "y", Type: tInt(), Kind: symbols.KindField}
		if d := inner.RegisterVariable(field); d == nil {
			t.Errorf("expected error registering a field inside function scope")
		}
		return nil
	})
}

func TestScopedSeparatesRegisterCounters(t *testing.T) {
	table := symbols.New()
	table.Sess("TestClass", "")

	field := symbols.Variable{Name: "some_field", Type: tInt(), Kind: symbols.KindField}
	if d := table.RegisterVariable(field); d != nil {
		t.Fatalf("unexpected error: %v", d)
	}

	fn := &ast.FnDef{Name: "m1"}
	d := table.Scoped(fn, func(inner *symbols.Table) *diag.Diagnostic {
		v := symbols.Variable{Name: "some_var", Type: tChar(), Kind: symbols.KindVar}
		if d := inner.RegisterVariable(v); d != nil {
			t.Fatalf("unexpected error: %v", d)
		}
		if _, reg, ok := inner.LookupVariable("some_var"); !ok || reg != 0 {
			t.Errorf("expected some_var at register 0 in m1, got reg=%d ok=%v", reg, ok)
		}
		return nil
	})
	if d != nil {
		t.Fatalf("unexpected error from Scoped: %v", d)
	}

	fn2 := &ast.FnDef{Name: "m2"}
	d = table.Scoped(fn2, func(inner *symbols.Table) *diag.Diagnostic {
		v := symbols.Variable{Name: "some_var_in_other_scope", Type: tChar(), Kind: symbols.KindVar}
		if d := inner.RegisterVariable(v); d != nil {
			t.Fatalf("unexpected error: %v", d)
		}
		if _, reg, ok := inner.LookupVariable("some_var_in_other_scope"); !ok || reg != 0 {
			t.Errorf("expected fresh register counters per scope, got reg=%d ok=%v", reg, ok)
		}
		// Registers from the first scope must not leak into this one.
		if _, _, ok := inner.LookupVariable("some_var"); ok {
			t.Errorf("expected some_var to be out of scope in m2")
		}
		return nil
	})
	if d != nil {
		t.Fatalf("unexpected error from Scoped: %v", d)
	}
}

func TestLookupFnResolvesReceiverByVariableType(t *testing.T) {
	table := symbols.New()
	table.Sess("Main", "")

	if d := table.RegisterFn("Helper", "run", ast.FnMethod, ast.Type{Kind: ast.TVoid}, span.Span{}); d != nil {
		t.Fatalf("unexpected error: %v", d)
	}

	fn := &ast.FnDef{Name: "main"}
	d := table.Scoped(fn, func(inner *symbols.Table) *diag.Diagnostic {
		helper := symbols.Variable{Name: "h", Type: ast.Type{Kind: ast.TClass, ClassName: "Helper"}, Kind: symbols.KindVar}
		if d := inner.RegisterVariable(helper); d != nil {
			t.Fatalf("unexpected error: %v", d)
		}
		if _, ok := inner.LookupFn("h", "run"); !ok {
			t.Errorf("expected h.run() to resolve via h's declared class")
		}
		return nil
	})
	if d != nil {
		t.Fatalf("unexpected error from Scoped: %v", d)
	}
}

func TestLookupFnFindsStandardLibrary(t *testing.T) {
	table := symbols.New()
	fc, ok := table.LookupFn("Math", "multiply")
	if !ok {
		t.Fatalf("expected Math.multiply to resolve from the standard library seed")
	}
	if fc.Return.Kind != ast.TInt {
		t.Errorf("expected Math.multiply to return int, got %s", fc.Return)
	}
}

func TestRegisterFnRejectsDuplicate(t *testing.T) {
	table := symbols.New()
	if d := table.RegisterFn("Main", "run", ast.FnFunction, ast.Type{Kind: ast.TVoid}, span.Span{}); d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	if d := table.RegisterFn("Main", "run", ast.FnFunction, ast.Type{Kind: ast.TVoid}, span.Span{}); d == nil {
		t.Errorf("expected AlreadyDefinedIdent registering Main.run twice")
	}
}

func TestLabelIsUniquePerCall(t *testing.T) {
	table := symbols.New()
	a := table.Label()
	b := table.Label()
	if a == b {
		t.Errorf("expected distinct labels, got %q twice", a)
	}
}
