package vm_test

import (
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/vm"
)

func TestTextMemoryOp(t *testing.T) {
	line, err := vm.Text(vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "push local 2" {
		t.Fatalf("want %q, got %q", "push local 2", line)
	}
}

func TestTextRejectsOutOfRangePointerOffset(t *testing.T) {
	if _, err := vm.Text(vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 2}); err == nil {
		t.Fatalf("expected an error for pointer offset 2")
	}
}

func TestTextRejectsOutOfRangeTempOffset(t *testing.T) {
	if _, err := vm.Text(vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 8}); err == nil {
		t.Fatalf("expected an error for temp offset 8")
	}
}

func TestTextControlFlowAndFunctions(t *testing.T) {
	cases := []struct {
		op   vm.Operation
		want string
	}{
		{vm.LabelDecl{Name: "LOOP"}, "label LOOP"},
		{vm.GotoOp{Jump: vm.Unconditional, Label: "LOOP"}, "goto LOOP"},
		{vm.GotoOp{Jump: vm.Conditional, Label: "LOOP"}, "if-goto LOOP"},
		{vm.FuncDecl{Name: "Main.run", NLocal: 3}, "function Main.run 3"},
		{vm.FuncCallOp{Name: "Main.helper", NArgs: 2}, "call Main.helper 2"},
		{vm.ReturnOp{}, "return"},
	}
	for _, c := range cases {
		got, err := vm.Text(c.op)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", c.op, err)
		}
		if got != c.want {
			t.Fatalf("want %q, got %q", c.want, got)
		}
	}
}

func TestTextRejectsEmptyNames(t *testing.T) {
	if _, err := vm.Text(vm.LabelDecl{Name: ""}); err == nil {
		t.Fatalf("expected an error for an empty label declaration")
	}
	if _, err := vm.Text(vm.GotoOp{Jump: vm.Unconditional, Label: ""}); err == nil {
		t.Fatalf("expected an error for an empty jump label")
	}
	if _, err := vm.Text(vm.FuncDecl{Name: ""}); err == nil {
		t.Fatalf("expected an error for an empty function declaration")
	}
	if _, err := vm.Text(vm.FuncCallOp{Name: ""}); err == nil {
		t.Fatalf("expected an error for an empty function call")
	}
}

func TestEmitModuleOrdersLinesAndStopsOnError(t *testing.T) {
	mod := vm.Module{
		vm.FuncDecl{Name: "Main.run", NLocal: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 7},
		vm.ReturnOp{},
	}
	lines, err := vm.EmitModule(mod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"function Main.run 0", "push constant 7", "return"}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: want %q, got %q", i, want[i], lines[i])
		}
	}

	if _, err := vm.EmitModule(vm.Module{vm.LabelDecl{Name: ""}}); err == nil {
		t.Fatalf("expected EmitModule to propagate a Text error")
	}
}
