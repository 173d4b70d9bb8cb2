package typecheck_test

import (
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/parser"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/symbols"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/typecheck"
)

func checkSource(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	p, d := parser.New(src)
	if d != nil {
		t.Fatalf("unexpected lex error: %v", d)
	}
	class, d := p.ParseClass()
	if d != nil {
		t.Fatalf("unexpected parse error: %v", d)
	}

	table := symbols.New()
	table.Sess(class.Name, src)
	for _, v := range class.Vars {
		switch v.Kind {
		case ast.VarField:
			table.RegisterVariable(symbols.VarFromField(v))
		case ast.VarStatic:
			table.RegisterVariable(symbols.VarFromStatic(v))
		}
	}
	for _, fn := range class.Fns {
		table.RegisterFn(class.Name, fn.Name, fn.Kind, fn.Return, fn.NameSpan)
	}

	bag := diag.NewBag("test.jack", src)
	typecheck.New(table, bag).CheckClass(class)
	return bag.All()
}

func TestReturnMissingValueIsError(t *testing.T) {
	diags := checkSource(t, `class Main {
		function int run() {
			return;
		}
	}`)
	if len(diags) != 1 || diags[0].Severity != diag.Error {
		t.Fatalf("expected 1 error diagnostic, got %+v", diags)
	}
}

func TestVoidReturnWithValueIsWarning(t *testing.T) {
	diags := checkSource(t, `class Main {
		function void run() {
			return 1;
		}
	}`)
	if len(diags) != 1 || diags[0].Severity != diag.Warning {
		t.Fatalf("expected 1 warning diagnostic, got %+v", diags)
	}
}

func TestBooleanAcceptsAnyAssignment(t *testing.T) {
	diags := checkSource(t, `class Main {
		function void run() {
			var boolean b;
			let b = 5;
			return;
		}
	}`)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestIntRejectsStringAssignment(t *testing.T) {
	diags := checkSource(t, `class Main {
		function void run() {
			var int n;
			let n = "hi";
			return;
		}
	}`)
	if len(diags) != 1 || diags[0].Kind != diag.TypeMismatch {
		t.Fatalf("expected a TypeMismatch warning, got %+v", diags)
	}
}

func TestConstructorReturnIsNotChecked(t *testing.T) {
	diags := checkSource(t, `class Point {
		constructor Point new() {
			return;
		}
	}`)
	if len(diags) != 0 {
		t.Fatalf("expected constructors' bare return to be exempt, got %+v", diags)
	}
}
