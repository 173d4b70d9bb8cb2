package vm_test

import (
	"strings"
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/vm"
)

func TestParseModuleSkipsBlankLinesAndComments(t *testing.T) {
	mod, err := vm.ParseModule("// a comment\n\npush constant 1 // trailing\nadd\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod) != 2 {
		t.Fatalf("expected 2 operations, got %d: %+v", len(mod), mod)
	}
	mem, ok := mod[0].(vm.MemoryOp)
	if !ok || mem.Operation != vm.Push || mem.Segment != vm.Constant || mem.Offset != 1 {
		t.Fatalf("unexpected first operation: %+v", mod[0])
	}
	arith, ok := mod[1].(vm.ArithmeticOp)
	if !ok || arith.Operation != vm.Add {
		t.Fatalf("unexpected second operation: %+v", mod[1])
	}
}

func TestParseModuleAllNineStackCommands(t *testing.T) {
	src := "add\nsub\nneg\neq\ngt\nlt\nand\nor\nnot\n"
	mod, err := vm.ParseModule(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []vm.ArithOpType{vm.Add, vm.Sub, vm.Neg, vm.Eq, vm.Gt, vm.Lt, vm.And, vm.Or, vm.Not}
	for i, w := range want {
		got, ok := mod[i].(vm.ArithmeticOp)
		if !ok || got.Operation != w {
			t.Fatalf("op %d: want %s, got %+v", i, w, mod[i])
		}
	}
}

func TestParseModuleControlFlow(t *testing.T) {
	mod, err := vm.ParseModule("label LOOP\ngoto LOOP\nif-goto LOOP\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decl, ok := mod[0].(vm.LabelDecl); !ok || decl.Name != "LOOP" {
		t.Fatalf("unexpected label decl: %+v", mod[0])
	}
	if g, ok := mod[1].(vm.GotoOp); !ok || g.Jump != vm.Unconditional || g.Label != "LOOP" {
		t.Fatalf("unexpected goto: %+v", mod[1])
	}
	if g, ok := mod[2].(vm.GotoOp); !ok || g.Jump != vm.Conditional || g.Label != "LOOP" {
		t.Fatalf("unexpected if-goto: %+v", mod[2])
	}
}

func TestParseModuleFunctionAndCall(t *testing.T) {
	mod, err := vm.ParseModule("function Main.run 3\ncall Main.helper 2\nreturn\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fd, ok := mod[0].(vm.FuncDecl); !ok || fd.Name != "Main.run" || fd.NLocal != 3 {
		t.Fatalf("unexpected function decl: %+v", mod[0])
	}
	if fc, ok := mod[1].(vm.FuncCallOp); !ok || fc.Name != "Main.helper" || fc.NArgs != 2 {
		t.Fatalf("unexpected call: %+v", mod[1])
	}
	if _, ok := mod[2].(vm.ReturnOp); !ok {
		t.Fatalf("unexpected return: %+v", mod[2])
	}
}

func TestParseModuleRejectsPopConstant(t *testing.T) {
	if _, err := vm.ParseModule("pop constant 0\n"); err == nil {
		t.Fatalf("expected an error popping into the constant segment")
	}
}

func TestParseModuleRejectsUnknownSegment(t *testing.T) {
	if _, err := vm.ParseModule("push bogus 0\n"); err == nil {
		t.Fatalf("expected an error for an unrecognized segment")
	}
}

func TestParseModuleRejectsMalformedLine(t *testing.T) {
	if _, err := vm.ParseModule("function OnlyOneField\n"); err == nil {
		t.Fatalf("expected an error for a malformed function declaration")
	}
}

func TestParseModuleReportsLineNumberInError(t *testing.T) {
	_, err := vm.ParseModule("push constant 1\nbogus\n")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected an error naming line 2, got %v", err)
	}
}
