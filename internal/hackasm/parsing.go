// Package hackasm implements the two-pass Hack assembler (spec.md §4.8):
// a goparsec-based text parser producing internal/asmtext.Statement values,
// and the pass-1 (label resolution)/pass-2 (variable allocation and binary
// emission) translator consuming them.
//
// Grounded on its-hmny-nand2tetris/pkg/asm/parsing.go for the parser
// combinators themselves, and on pkg/asm/lowering.go plus pkg/hack/codegen.go
// for the two-pass translation, consolidated into one package per
// SPEC_FULL.md's architecture.
package hackasm

import (
	"fmt"
	"io"
	"os"

	pc "github.com/prataprc/goparsec"

	"github.com/nand2tetris-toolchain/hackc/internal/asmtext"
)

var parserAST = pc.NewAST("hackasm", 0)

var (
	pProgram = parserAST.ManyUntil("program", nil, parserAST.OrdChoice("item", nil, pComment, pInstruction), pc.End())

	pInstruction = parserAST.OrdChoice("instruction", nil, pAInst, pCInst, pLabelDecl)
	pComment     = parserAST.And("comment", nil, pc.Atom("//", "//"), pc.Token(`(?m).*$`, "COMMENT"))

	pAInst     = parserAST.And("a-inst", nil, pc.Atom("@", "@"), pLabel)
	pLabelDecl = parserAST.And("label-decl", nil, pc.Atom("(", "("), pLabel, pc.Atom(")", ")"))
	pCInst     = parserAST.And("c-inst", nil,
		parserAST.Maybe("maybe-assign", nil, parserAST.And("assign", nil, pDest, pc.Atom("=", "="))),
		pComp,
		parserAST.Maybe("maybe-goto", nil, parserAST.And("goto", nil, pc.Atom(";", ";"), pJump)),
	)
)

var (
	// A label may be any sequence of letters, digits and _.$: and must not
	// start with a leading digit (spec.md §6).
	pLabel = parserAST.OrdChoice("label", nil, pc.Int(), pc.Token(`[A-Za-z_.$:][0-9a-zA-Z_.$:]*`, "SYMBOL"))

	// Multi-register destinations are listed before their single-register
	// prefixes so the ordered choice doesn't stop early (it's a BFS match).
	pDest = parserAST.OrdChoice("dest", nil,
		pc.Atom("AMD", "AMD"), pc.Atom("AM", "AM"), pc.Atom("AD", "AD"), pc.Atom("MD", "MD"),
		pc.Atom("D", "D"), pc.Atom("A", "A"), pc.Atom("M", "M"),
	)

	pComp = parserAST.OrdChoice("comp", nil,
		pc.Atom("D&A", "D&A"), pc.Atom("D&M", "D&M"),
		pc.Atom("D|A", "D|A"), pc.Atom("D|M", "D|M"),
		pc.Atom("D+A", "D+A"), pc.Atom("D+M", "D+M"),
		pc.Atom("D-A", "D-A"), pc.Atom("D-M", "D-M"),
		pc.Atom("A-D", "A-D"), pc.Atom("M-D", "M-D"),
		pc.Atom("D+1", "D+1"), pc.Atom("A+1", "A+1"), pc.Atom("M+1", "M+1"),
		pc.Atom("D-1", "D-1"), pc.Atom("A-1", "A-1"), pc.Atom("M-1", "M-1"),
		pc.Atom("!D", "!D"), pc.Atom("!A", "!A"), pc.Atom("!M", "!M"),
		pc.Atom("-D", "-D"), pc.Atom("-A", "-A"), pc.Atom("-M", "-M"),
		pc.Atom("0", "0"), pc.Atom("1", "1"), pc.Atom("-1", "-1"),
		pc.Atom("D", "D"), pc.Atom("A", "A"), pc.Atom("M", "M"),
	)

	pJump = parserAST.OrdChoice("jump", nil,
		pc.Atom("JNE", "JNE"), pc.Atom("JEQ", "JEQ"),
		pc.Atom("JGT", "JGT"), pc.Atom("JGE", "JGE"),
		pc.Atom("JLT", "JLT"), pc.Atom("JLE", "JLE"),
		pc.Atom("JMP", "JMP"),
	)
)

// Parser turns assembly source text into an asmtext.Program.
type Parser struct{ reader io.Reader }

// NewParser returns a Parser reading source from r.
func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

// Parse reads all of the Parser's source and returns its parsed Program.
func (p *Parser) Parse() (asmtext.Program, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read source: %w", err)
	}

	root, ok := p.fromSource(content)
	if !ok {
		return nil, fmt.Errorf("failed to parse assembly source")
	}
	return p.fromAST(root)
}

func (p *Parser) fromSource(source []byte) (pc.Queryable, bool) {
	if os.Getenv("PARSEC_DEBUG") != "" {
		parserAST.SetDebug()
	}
	root, _ := parserAST.Parsewith(pProgram, pc.NewScanner(source))
	return root, true
}

// fromAST walks the parsed tree's top-level children, converting each
// instruction subtree to its asmtext.Statement counterpart.
func (p *Parser) fromAST(root pc.Queryable) (asmtext.Program, error) {
	if root.GetName() != "program" {
		return nil, fmt.Errorf("expected node 'program', found %s", root.GetName())
	}

	var program asmtext.Program
	for _, child := range root.GetChildren() {
		switch child.GetName() {
		case "a-inst":
			stmt, err := handleAInst(child)
			if err != nil {
				return nil, err
			}
			program = append(program, stmt)

		case "c-inst":
			stmt, err := handleCInst(child)
			if err != nil {
				return nil, err
			}
			program = append(program, stmt)

		case "label-decl":
			stmt, err := handleLabelDecl(child)
			if err != nil {
				return nil, err
			}
			program = append(program, stmt)

		case "comment":
			continue

		default:
			return nil, fmt.Errorf("unrecognized node %q", child.GetName())
		}
	}
	return program, nil
}

func handleAInst(inst pc.Queryable) (asmtext.Statement, error) {
	if inst.GetName() != "a-inst" {
		return nil, fmt.Errorf("expected node 'a-inst', found %s", inst.GetName())
	}
	symbol := inst.GetChildren()[1]
	if symbol.GetName() != "INT" && symbol.GetName() != "SYMBOL" {
		return nil, fmt.Errorf("expected token 'SYMBOL' or 'INT', got %s", symbol.GetName())
	}
	return asmtext.AInstruction{Location: symbol.GetValue()}, nil
}

// handleCInst extracts dest/comp/jump from a "c-inst" subtree, supporting
// every combination of optional dest and jump — unlike
// its-hmny-nand2tetris/pkg/asm/parsing.go's HandleCInst, which only
// accepts exactly one of "assign" or "goto" present and rejects a bare
// comp-only instruction (both absent) or a combined dest+jump instruction
// (both present), even though spec.md §4.8 requires dest/comp/jump be
// independently optional.
func handleCInst(inst pc.Queryable) (asmtext.Statement, error) {
	if inst.GetName() != "c-inst" {
		return nil, fmt.Errorf("expected node 'c-inst', found %s", inst.GetName())
	}

	maybeAssign, comp, maybeGoto := inst.GetChildren()[0], inst.GetChildren()[1], inst.GetChildren()[2]

	stmt := asmtext.CInstruction{Comp: comp.GetValue()}
	if maybeAssign.GetName() == "assign" && len(maybeAssign.GetChildren()) == 2 {
		stmt.Dest = maybeAssign.GetChildren()[0].GetValue()
	}
	if maybeGoto.GetName() == "goto" && len(maybeGoto.GetChildren()) == 2 {
		stmt.Jump = maybeGoto.GetChildren()[1].GetValue()
	}
	return stmt, nil
}

func handleLabelDecl(decl pc.Queryable) (asmtext.Statement, error) {
	if decl.GetName() != "label-decl" {
		return nil, fmt.Errorf("expected node 'label-decl', found %s", decl.GetName())
	}
	symbol := decl.GetChildren()[1]
	if symbol.GetName() != "SYMBOL" {
		return nil, fmt.Errorf("expected token 'SYMBOL', got %s", symbol.GetName())
	}
	return asmtext.LabelDecl{Name: symbol.GetValue()}, nil
}
