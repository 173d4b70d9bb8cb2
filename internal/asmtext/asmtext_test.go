package asmtext_test

import (
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/asmtext"
)

func TestTextLabelDecl(t *testing.T) {
	got, err := asmtext.Text(asmtext.LabelDecl{Name: "LOOP"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "(LOOP)"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestTextAInstruction(t *testing.T) {
	cases := []struct{ location, want string }{
		{"17", "@17"},
		{"LOOP", "@LOOP"},
		{"SCREEN", "@SCREEN"},
	}
	for _, c := range cases {
		got, err := asmtext.Text(asmtext.AInstruction{Location: c.location})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != c.want {
			t.Fatalf("want %q, got %q", c.want, got)
		}
	}
}

func TestTextCInstructionForms(t *testing.T) {
	cases := []struct {
		name string
		stmt asmtext.CInstruction
		want string
	}{
		{"comp only", asmtext.CInstruction{Comp: "M"}, "M"},
		{"dest and comp", asmtext.CInstruction{Dest: "D", Comp: "M"}, "D=M"},
		{"comp and jump", asmtext.CInstruction{Comp: "0", Jump: "JMP"}, "0;JMP"},
		{"dest, comp and jump", asmtext.CInstruction{Dest: "D", Comp: "M", Jump: "JGT"}, "D=M;JGT"},
		{"multi-register dest", asmtext.CInstruction{Dest: "AMD", Comp: "D+1"}, "AMD=D+1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := asmtext.Text(c.stmt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("want %q, got %q", c.want, got)
			}
		})
	}
}

func TestTextRejectsEmptyFields(t *testing.T) {
	if _, err := asmtext.Text(asmtext.LabelDecl{}); err == nil {
		t.Fatalf("expected error for empty label")
	}
	if _, err := asmtext.Text(asmtext.AInstruction{}); err == nil {
		t.Fatalf("expected error for empty A-instruction")
	}
	if _, err := asmtext.Text(asmtext.CInstruction{Dest: "D"}); err == nil {
		t.Fatalf("expected error for missing comp field")
	}
}

func TestEmitProgram(t *testing.T) {
	prog := asmtext.Program{
		asmtext.AInstruction{Location: "0"},
		asmtext.CInstruction{Dest: "D", Comp: "A"},
		asmtext.LabelDecl{Name: "START"},
		asmtext.CInstruction{Comp: "0", Jump: "JMP"},
	}
	lines, err := asmtext.EmitProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"@0", "D=A", "(START)", "0;JMP"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: want %q, got %q", i, want[i], lines[i])
		}
	}
}
