package parser_test

import (
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/parser"
)

func parseClass(t *testing.T, src string) ast.Class {
	t.Helper()
	p, d := parser.New(src)
	if d != nil {
		t.Fatalf("unexpected lex error: %v", d)
	}
	class, d := p.ParseClass()
	if d != nil {
		t.Fatalf("unexpected parse error: %v", d)
	}
	return class
}

func TestParseEmptyClass(t *testing.T) {
	class := parseClass(t, "class Main { }")
	if class.Name != "Main" {
		t.Errorf("expected class name 'Main', got %q", class.Name)
	}
	if len(class.Vars) != 0 || len(class.Fns) != 0 {
		t.Errorf("expected no members, got %+v", class)
	}
}

func TestParseClassVarsExpandCommaList(t *testing.T) {
	class := parseClass(t, `class Point {
		field int x, y;
		static boolean initialized;
	}`)
	if len(class.Vars) != 3 {
		t.Fatalf("expected 3 variables, got %d (%+v)", len(class.Vars), class.Vars)
	}
	if class.Vars[0].Name != "x" || class.Vars[1].Name != "y" {
		t.Errorf("expected x,y from the comma list, got %+v", class.Vars[:2])
	}
	if class.Vars[0].Kind != ast.VarField || class.Vars[2].Kind != ast.VarStatic {
		t.Errorf("expected field/static kinds to carry across the list, got %+v", class.Vars)
	}
}

func TestParseFnWithLocalsAndReturn(t *testing.T) {
	class := parseClass(t, `class Main {
		function int compute() {
			var int a;
			let a = 1;
			return a;
		}
	}`)
	if len(class.Fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(class.Fns))
	}
	fn := class.Fns[0]
	if fn.Kind != ast.FnFunction || fn.Name != "compute" {
		t.Errorf("unexpected function header: %+v", fn)
	}
	if len(fn.Locals) != 1 || fn.Locals[0].Name != "a" {
		t.Errorf("expected one local 'a', got %+v", fn.Locals)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[1].(ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected a ReturnStmt, got %T", fn.Body[1])
	}
	if !ret.HasValue {
		t.Errorf("expected HasValue for 'return a;'")
	}
}

func TestParseBareReturnHasNoValue(t *testing.T) {
	class := parseClass(t, `class Main {
		function void run() {
			return;
		}
	}`)
	ret := class.Fns[0].Body[0].(ast.ReturnStmt)
	if ret.HasValue {
		t.Errorf("expected bare 'return;' to have HasValue == false")
	}
}

func TestParseIfElse(t *testing.T) {
	class := parseClass(t, `class Main {
		function void run() {
			if (true) {
				let x = 1;
			} else {
				let x = 2;
			}
		}
	}`)
	stmt := class.Fns[0].Body[0]
	ifs, ok := stmt.(ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", stmt)
	}
	if len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Errorf("expected one statement per branch, got then=%d else=%d", len(ifs.Then), len(ifs.Else))
	}
}

func TestParseTermAmbiguity(t *testing.T) {
	class := parseClass(t, `class Main {
		function void run() {
			var int x;
			do Output.printInt(arr[0]);
			let x = (1);
		}
	}`)
	doStmt := class.Fns[0].Body[0].(ast.DoStmt)
	if doStmt.Call.Receiver != "Output" || doStmt.Call.Name != "printInt" {
		t.Errorf("expected Output.printInt call, got %+v", doStmt.Call)
	}
	arg := doStmt.Call.Args[0]
	varTerm, ok := arg.Lhs.(ast.VarTerm)
	if !ok || varTerm.Index == nil {
		t.Errorf("expected an indexed variable term, got %+v", arg.Lhs)
	}
}

func TestParseExprHasNoPrecedence(t *testing.T) {
	class := parseClass(t, `class Main {
		function void run() {
			let x = 1 + 2;
		}
	}`)
	let := class.Fns[0].Body[0].(ast.LetStmt)
	if !let.Value.HasRhs || let.Value.Op != ast.OpAdd {
		t.Errorf("expected a single binary op, got %+v", let.Value)
	}
}

func TestParseReservedKeywordAsClassName(t *testing.T) {
	_, d := parser.New("class if { }")
	if d != nil {
		t.Fatalf("unexpected lex error: %v", d)
	}
	p, _ := parser.New("class if { }")
	_, pd := p.ParseClass()
	if pd == nil {
		t.Fatalf("expected an error")
	}
	if pd.Kind != diag.ReservedKeyword {
		t.Errorf("expected ReservedKeyword, got %s", pd.Kind)
	}
	if pd.Help == "" {
		t.Errorf("expected a help hint on ReservedKeyword")
	}
}

func TestParseUnexpectedTokenInStatement(t *testing.T) {
	p, _ := parser.New(`class Main { function void run() { ; } }`)
	_, d := p.ParseClass()
	if d == nil {
		t.Fatalf("expected an error")
	}
	if d.Kind != diag.UnexpectedToken {
		t.Errorf("expected UnexpectedToken, got %s", d.Kind)
	}
}
