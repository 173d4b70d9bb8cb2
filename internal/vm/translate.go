package vm

import (
	"fmt"
	"sort"

	"github.com/nand2tetris-toolchain/hackc/internal/asmtext"
)

// Translator lowers a Program of VM modules to Hack assembly text (spec.md
// §4.7). There is no its-hmny-nand2tetris file that does this specific
// job — pkg/vm/codegen.go only renders vm.Operation back to VM text, the
// same job internal/vm/text.go already does — so this file is grounded
// directly on the algorithm described in spec.md §4.7, using pkg/hack and
// pkg/asm only for the shape of the emitted instructions and Go idiom.
type Translator struct {
	callSeq map[string]int
	cmpSeq  int
}

// NewTranslator returns a Translator with fresh return-address and
// comparison label counters.
func NewTranslator() *Translator {
	return &Translator{callSeq: make(map[string]int)}
}

// Translate lowers every module of prog, in sorted unit-name order for
// determinism, to a single Hack assembly Program. If any module declares
// `function Sys.init 0`, a bootstrap (SP=256; call Sys.init 0) is prepended.
func (tr *Translator) Translate(prog Program) (asmtext.Program, error) {
	names := make([]string, 0, len(prog))
	for name := range prog {
		names = append(names, name)
	}
	sort.Strings(names)

	hasSysInit := false
	for _, name := range names {
		for _, op := range prog[name] {
			if fd, ok := op.(FuncDecl); ok && fd.Name == "Sys.init" {
				hasSysInit = true
			}
		}
	}

	var out asmtext.Program
	if hasSysInit {
		out = append(out, bootstrap()...)
		call, err := tr.translateCall(FuncCallOp{Name: "Sys.init", NArgs: 0})
		if err != nil {
			return nil, err
		}
		out = append(out, call...)
	}

	for _, name := range names {
		currentFn := ""
		for _, op := range prog[name] {
			stmts, err := tr.translateOp(name, &currentFn, op)
			if err != nil {
				return nil, fmt.Errorf("unit %s: %w", name, err)
			}
			out = append(out, stmts...)
		}
	}
	return out, nil
}

// bootstrap emits `SP=256`, per spec.md §4.7: "If any unit defines
// Sys.init, prepend: @256; D=A; @SP; M=D".
func bootstrap() []asmtext.Statement {
	return []asmtext.Statement{
		a("256"), c("D", "A", ""),
		a("SP"), c("M", "D", ""),
	}
}

func (tr *Translator) translateOp(unit string, currentFn *string, op Operation) ([]asmtext.Statement, error) {
	switch o := op.(type) {
	case MemoryOp:
		return tr.translateMemory(unit, o)
	case ArithmeticOp:
		return tr.translateArith(o)
	case LabelDecl:
		return []asmtext.Statement{asmtext.LabelDecl{Name: namespaced(*currentFn, o.Name)}}, nil
	case GotoOp:
		return translateGoto(*currentFn, o)
	case FuncDecl:
		*currentFn = o.Name
		return funcPrologue(o), nil
	case ReturnOp:
		*currentFn = ""
		return returnSequence(), nil
	case FuncCallOp:
		return tr.translateCall(o)
	}
	return nil, fmt.Errorf("unrecognized operation: %T", op)
}

// namespaced rewrites a label to F$L when fn is non-empty (inside a
// function), or leaves it bare otherwise, per spec.md §4.7's label
// namespacing rule.
func namespaced(fn, label string) string {
	if fn == "" {
		return label
	}
	return fn + "$" + label
}

func translateGoto(fn string, o GotoOp) ([]asmtext.Statement, error) {
	target := namespaced(fn, o.Label)
	switch o.Jump {
	case Unconditional:
		return []asmtext.Statement{a(target), c("", "0", "JMP")}, nil
	case Conditional:
		s := popToD()
		return append(s, a(target), c("", "D", "JNE")), nil
	}
	return nil, fmt.Errorf("unrecognized jump type: %q", o.Jump)
}

// funcPrologue emits the function's entry label followed by NLocal pushes
// of the literal 0, zero-initializing its locals — spec.md §9 documents
// this as a deliberate fix: the source this toolchain is modeled on pushes
// whatever is already in D rather than zero.
func funcPrologue(fd FuncDecl) []asmtext.Statement {
	stmts := []asmtext.Statement{asmtext.LabelDecl{Name: fd.Name}}
	for i := uint8(0); i < fd.NLocal; i++ {
		stmts = append(stmts, pushConstant(0)...)
	}
	return stmts
}

// returnSequence implements the call-frame teardown of spec.md §4.7. The
// return address is saved to R14 first, because with zero arguments *ARG
// is the frame's return-address slot; the popped return value (kept in R15)
// is then written to the callee's *ARG and SP reset to ARG+1, and only
// after that are the caller's segment pointers restored from the frame.
func returnSequence() []asmtext.Statement {
	var s []asmtext.Statement

	s = append(s, a("LCL"), c("D", "M", ""), a("R13"), c("M", "D", ""))                     // FRAME = LCL
	s = append(s, a("5"), c("A", "D-A", ""), c("D", "M", ""), a("R14"), c("M", "D", ""))    // RET = *(FRAME-5)
	s = append(s, popToD()...)
	s = append(s, a("R15"), c("M", "D", "")) // R15 = pop()

	s = append(s, a("R15"), c("D", "M", ""), a("ARG"), c("A", "M", ""), c("M", "D", "")) // *ARG = R15
	s = append(s, a("ARG"), c("D", "M+1", ""), a("SP"), c("M", "D", ""))                 // SP = ARG+1

	s = append(s, a("R13"), c("AM", "M-1", ""), c("D", "M", ""), a("THAT"), c("M", "D", "")) // THAT = *(FRAME-1)
	s = append(s, a("R13"), c("AM", "M-1", ""), c("D", "M", ""), a("THIS"), c("M", "D", "")) // THIS = *(FRAME-2)
	s = append(s, a("R13"), c("AM", "M-1", ""), c("D", "M", ""), a("ARG"), c("M", "D", ""))  // ARG = *(FRAME-3)
	s = append(s, a("R13"), c("AM", "M-1", ""), c("D", "M", ""), a("LCL"), c("M", "D", ""))  // LCL = *(FRAME-4)

	s = append(s, a("R14"), c("A", "M", ""), c("", "0", "JMP")) // goto RET
	return s
}

// translateCall implements the caller-saves call-frame sequence of
// spec.md §4.7, using a return-address label unique per call-site (the
// counter is keyed by the label name "return-address", so k grows across
// every call site whatever the callee).
func (tr *Translator) translateCall(o FuncCallOp) ([]asmtext.Statement, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("unable to translate call with empty function name")
	}
	const retPrefix = "return-address"
	k := tr.callSeq[retPrefix]
	tr.callSeq[retPrefix] = k + 1
	retLabel := fmt.Sprintf("%s%d", retPrefix, k)

	var s []asmtext.Statement
	s = append(s, a(retLabel), c("D", "A", ""))
	s = append(s, pushD()...)
	for _, seg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		s = append(s, a(seg), c("D", "M", ""))
		s = append(s, pushD()...)
	}
	s = append(s, a("SP"), c("D", "M", ""))
	s = append(s, a(fmt.Sprintf("%d", int(o.NArgs)+5)), c("D", "D-A", ""))
	s = append(s, a("ARG"), c("M", "D", ""))
	s = append(s, a("SP"), c("D", "M", ""), a("LCL"), c("M", "D", ""))
	s = append(s, a(o.Name), c("", "0", "JMP"))
	s = append(s, asmtext.LabelDecl{Name: retLabel})
	return s, nil
}

func (tr *Translator) translateArith(o ArithmeticOp) ([]asmtext.Statement, error) {
	switch o.Operation {
	case Add:
		return binaryOp("D+M"), nil
	case Sub:
		return binaryOp("M-D"), nil
	case And:
		return binaryOp("D&M"), nil
	case Or:
		return binaryOp("D|M"), nil
	case Neg:
		return unaryOp("-M"), nil
	case Not:
		return unaryOp("!M"), nil
	case Eq:
		return tr.comparison("JEQ"), nil
	case Gt:
		return tr.comparison("JGT"), nil
	case Lt:
		return tr.comparison("JLT"), nil
	}
	return nil, fmt.Errorf("unrecognized arithmetic operation: %q", o.Operation)
}

// binaryOp pops the top value into D and points M at the value below it
// (so comp sees the lower operand as M and the former top as D), writing
// comp's result into that lower slot, which becomes the new top of stack.
func binaryOp(comp string) []asmtext.Statement {
	return []asmtext.Statement{
		a("SP"), c("AM", "M-1", ""), c("D", "M", ""), c("A", "A-1", ""), c("M", comp, ""),
	}
}

func unaryOp(comp string) []asmtext.Statement {
	return []asmtext.Statement{
		a("SP"), c("A", "M-1", ""), c("M", comp, ""),
	}
}

// comparison pops the top two values, subtracts, and pushes -1 (true) or 0
// (false) depending on whether jump holds against zero, using a pair of
// labels unique to this occurrence (spec.md §4.7: "unique labels per
// occurrence").
func (tr *Translator) comparison(jump string) []asmtext.Statement {
	tr.cmpSeq++
	trueLabel := fmt.Sprintf("CMP_TRUE_%d", tr.cmpSeq)
	endLabel := fmt.Sprintf("CMP_END_%d", tr.cmpSeq)

	return []asmtext.Statement{
		a("SP"), c("AM", "M-1", ""), c("D", "M", ""), c("A", "A-1", ""), c("D", "M-D", ""),
		a(trueLabel), c("", "D", jump),
		a("SP"), c("A", "M-1", ""), c("M", "0", ""),
		a(endLabel), c("", "0", "JMP"),
		asmtext.LabelDecl{Name: trueLabel},
		a("SP"), c("A", "M-1", ""), c("M", "-1", ""),
		asmtext.LabelDecl{Name: endLabel},
	}
}

func (tr *Translator) translateMemory(unit string, o MemoryOp) ([]asmtext.Statement, error) {
	if o.Operation == Push {
		return tr.translatePush(unit, o)
	}
	return tr.translatePop(unit, o)
}

func (tr *Translator) translatePush(unit string, o MemoryOp) ([]asmtext.Statement, error) {
	switch o.Segment {
	case Constant:
		return pushConstant(o.Offset), nil
	case Pointer:
		reg, err := pointerRegister(o.Offset)
		if err != nil {
			return nil, err
		}
		return append([]asmtext.Statement{a(reg), c("D", "M", "")}, pushD()...), nil
	case Temp:
		reg, err := tempRegister(o.Offset)
		if err != nil {
			return nil, err
		}
		return append([]asmtext.Statement{a(reg), c("D", "M", "")}, pushD()...), nil
	case Static:
		sym := staticSymbol(unit, o.Offset)
		return append([]asmtext.Statement{a(sym), c("D", "M", "")}, pushD()...), nil
	default:
		base, err := baseRegister(o.Segment)
		if err != nil {
			return nil, err
		}
		s := []asmtext.Statement{
			a(base), c("D", "M", ""),
			a(fmt.Sprintf("%d", o.Offset)), c("A", "D+A", ""), c("D", "M", ""),
		}
		return append(s, pushD()...), nil
	}
}

func (tr *Translator) translatePop(unit string, o MemoryOp) ([]asmtext.Statement, error) {
	switch o.Segment {
	case Constant:
		return nil, fmt.Errorf("cannot pop to 'constant' segment")
	case Pointer:
		reg, err := pointerRegister(o.Offset)
		if err != nil {
			return nil, err
		}
		s := popToD()
		return append(s, a(reg), c("M", "D", "")), nil
	case Temp:
		reg, err := tempRegister(o.Offset)
		if err != nil {
			return nil, err
		}
		s := popToD()
		return append(s, a(reg), c("M", "D", "")), nil
	case Static:
		sym := staticSymbol(unit, o.Offset)
		s := popToD()
		return append(s, a(sym), c("M", "D", "")), nil
	default:
		base, err := baseRegister(o.Segment)
		if err != nil {
			return nil, err
		}
		s := []asmtext.Statement{
			a(base), c("D", "M", ""),
			a(fmt.Sprintf("%d", o.Offset)), c("D", "D+A", ""),
			a("R13"), c("M", "D", ""),
		}
		s = append(s, popToD()...)
		s = append(s, a("R13"), c("A", "M", ""), c("M", "D", ""))
		return s, nil
	}
}

func baseRegister(seg SegmentType) (string, error) {
	switch seg {
	case Local:
		return "LCL", nil
	case Argument:
		return "ARG", nil
	case This:
		return "THIS", nil
	case That:
		return "THAT", nil
	}
	return "", fmt.Errorf("segment %q has no base register", seg)
}

func pointerRegister(offset uint16) (string, error) {
	switch offset {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	}
	return "", fmt.Errorf("invalid 'pointer' offset, got %d", offset)
}

func tempRegister(offset uint16) (string, error) {
	if offset > 7 {
		return "", fmt.Errorf("invalid 'temp' offset, got %d", offset)
	}
	return fmt.Sprintf("R%d", 5+offset), nil
}

func staticSymbol(unit string, offset uint16) string {
	return fmt.Sprintf("%s.%d", unit, offset)
}

// pushConstant pushes the literal value k onto the stack directly, used
// both for `push constant k` and for zero-initializing locals.
func pushConstant(k uint16) []asmtext.Statement {
	s := []asmtext.Statement{a(fmt.Sprintf("%d", k)), c("D", "A", "")}
	return append(s, pushD()...)
}

// pushD appends the generic "push whatever is in D" sequence.
func pushD() []asmtext.Statement {
	return []asmtext.Statement{
		a("SP"), c("A", "M", ""), c("M", "D", ""),
		a("SP"), c("M", "M+1", ""),
	}
}

// popToD appends the generic "pop the stack top into D" sequence.
func popToD() []asmtext.Statement {
	return []asmtext.Statement{
		a("SP"), c("AM", "M-1", ""), c("D", "M", ""),
	}
}

func a(location string) asmtext.AInstruction { return asmtext.AInstruction{Location: location} }

func c(dest, comp, jump string) asmtext.CInstruction {
	return asmtext.CInstruction{Dest: dest, Comp: comp, Jump: jump}
}
