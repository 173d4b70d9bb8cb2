// Package asmtext is the text-level Hack assembly IR shared between the VM
// translator (internal/vm) and the two-pass assembler (internal/hackasm):
// the former emits it, the latter parses it back.
//
// Grounded on its-hmny-nand2tetris/pkg/asm/asm.go's Statement/LabelDecl/
// AInstruction/CInstruction shapes, with one deliberate correction: Text's
// CInstruction case builds the general `dest=comp;jump` form directly
// instead of branching on Dest-xor-Jump the way pkg/asm/codegen.go's
// GenerateCInst does, which can't produce a comp-only instruction (dest and
// jump both empty, e.g. a bare "M" side-effect statement) or the combined
// dest+jump form, both of which spec.md §4.8 requires.
package asmtext

import "fmt"

// Statement is one line of Hack assembly text: a label declaration or an A-
// or C-instruction.
type Statement interface{ asmStmt() }

// LabelDecl marks the following instruction's address as Name, occupying no
// space of its own once resolved by the assembler's first pass.
type LabelDecl struct{ Name string }

// AInstruction loads Location into the A register. Location is either a
// decimal literal, a symbolic label, or a predefined built-in (SP, SCREEN,
// R0, ...) — internal/hackasm's first pass resolves which.
type AInstruction struct{ Location string }

// CInstruction computes Comp, optionally storing it in Dest and optionally
// jumping on Jump. Comp is the only mandatory field.
type CInstruction struct {
	Comp string
	Dest string
	Jump string
}

func (LabelDecl) asmStmt()    {}
func (AInstruction) asmStmt() {}
func (CInstruction) asmStmt() {}

// Program is a full assembly text unit: one Statement per source line.
type Program []Statement

// Text renders one Statement in canonical Hack assembly syntax.
func Text(stmt Statement) (string, error) {
	switch s := stmt.(type) {
	case LabelDecl:
		if s.Name == "" {
			return "", fmt.Errorf("unable to produce empty label declaration")
		}
		return fmt.Sprintf("(%s)", s.Name), nil

	case AInstruction:
		if s.Location == "" {
			return "", fmt.Errorf("unable to produce A-instruction with empty location")
		}
		return fmt.Sprintf("@%s", s.Location), nil

	case CInstruction:
		if s.Comp == "" {
			return "", fmt.Errorf("unable to produce C-instruction with empty comp field")
		}
		line := s.Comp
		if s.Jump != "" {
			line = line + ";" + s.Jump
		}
		if s.Dest != "" {
			line = s.Dest + "=" + line
		}
		return line, nil
	}

	return "", fmt.Errorf("unrecognized statement: %T", stmt)
}

// EmitProgram renders every statement of p in order, one per line.
func EmitProgram(p Program) ([]string, error) {
	lines := make([]string, 0, len(p))
	for _, stmt := range p {
		line, err := Text(stmt)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
