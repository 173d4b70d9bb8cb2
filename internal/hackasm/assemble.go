package hackasm

import (
	"fmt"
	"strconv"

	"github.com/nand2tetris-toolchain/hackc/internal/asmtext"
)

// MaxAddressableMemory is the upper bound of an A-instruction's 15-bit
// address field (its-hmny-nand2tetris/pkg/hack/hack.go's
// MaxAddressableMemory).
const MaxAddressableMemory uint16 = 1 << 15

// SymbolTable maps a label or variable name to its resolved address.
type SymbolTable map[string]uint16

// newSeededTable returns a SymbolTable pre-populated with BuiltInTable, so
// pass 1 can record label addresses into the same table pass 2 resolves
// A-instructions against.
func newSeededTable() SymbolTable {
	table := make(SymbolTable, len(BuiltInTable))
	for name, addr := range BuiltInTable {
		table[name] = addr
	}
	return table
}

// resolveLabels is pass 1: it walks prog assigning each LabelDecl the
// address of the instruction that follows it (labels occupy no space of
// their own) and returns the remaining A/C instructions in order.
//
// Grounded on its-hmny-nand2tetris/pkg/asm/lowering.go's Lower, with the
// its-hmny-nand2tetris/pkg/asm/codegen.go:GenerateLabelDecl's rejection of
// a label overriding a built-in symbol moved here, since that's a
// pass-1/label-table concern rather than something the text emitter
// (internal/asmtext) should know about.
func resolveLabels(prog asmtext.Program) ([]asmtext.Statement, SymbolTable, error) {
	table := newSeededTable()
	instructions := make([]asmtext.Statement, 0, len(prog))

	for _, stmt := range prog {
		decl, ok := stmt.(asmtext.LabelDecl)
		if !ok {
			instructions = append(instructions, stmt)
			continue
		}
		if decl.Name == "" {
			return nil, nil, fmt.Errorf("label declaration with empty name")
		}
		if _, isBuiltIn := BuiltInTable[decl.Name]; isBuiltIn {
			return nil, nil, fmt.Errorf("label %q collides with a built-in symbol", decl.Name)
		}
		if _, exists := table[decl.Name]; exists {
			return nil, nil, fmt.Errorf("label %q is declared more than once", decl.Name)
		}
		table[decl.Name] = uint16(len(instructions))
	}
	return instructions, table, nil
}

// Assembler translates a resolved, label-free instruction stream plus a
// symbol table into Hack binary text, assigning fresh variable addresses
// starting at 16 for any A-instruction referencing an unresolved symbol.
//
// Grounded on its-hmny-nand2tetris/pkg/hack/codegen.go's CodeGenerator.
type Assembler struct {
	table   SymbolTable
	nextVar uint16
}

// NewAssembler returns an Assembler that resolves labels and built-ins
// against table, allocating fresh variables starting at address 16.
func NewAssembler(table SymbolTable) *Assembler {
	return &Assembler{table: table, nextVar: 16}
}

// Assemble renders every instruction as one 16-bit binary text line.
func (asm *Assembler) Assemble(instructions []asmtext.Statement) ([]string, error) {
	lines := make([]string, 0, len(instructions))
	for _, stmt := range instructions {
		var line string
		var err error
		switch s := stmt.(type) {
		case asmtext.AInstruction:
			line, err = asm.assembleA(s)
		case asmtext.CInstruction:
			line, err = asm.assembleC(s)
		default:
			err = fmt.Errorf("unrecognized instruction: %T", stmt)
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (asm *Assembler) assembleA(inst asmtext.AInstruction) (string, error) {
	if address, err := strconv.ParseUint(inst.Location, 10, 16); err == nil {
		return binary16(uint16(address))
	}

	if address, found := asm.table[inst.Location]; found {
		return binary16(address)
	}

	address := asm.nextVar
	asm.nextVar++
	asm.table[inst.Location] = address
	return binary16(address)
}

func binary16(address uint16) (string, error) {
	if address >= MaxAddressableMemory {
		return "", fmt.Errorf("address %d exceeds the 15-bit addressable range", address)
	}
	return fmt.Sprintf("%016b", address), nil
}

func (asm *Assembler) assembleC(inst asmtext.CInstruction) (string, error) {
	opcode, found := CompTable[inst.Comp]
	if !found {
		return "", fmt.Errorf("unknown comp mnemonic %q", inst.Comp)
	}
	dest, found := DestTable[inst.Dest]
	if !found {
		return "", fmt.Errorf("unknown dest mnemonic %q", inst.Dest)
	}
	jump, found := JumpTable[inst.Jump]
	if !found {
		return "", fmt.Errorf("unknown jump mnemonic %q", inst.Jump)
	}

	command := uint16(0b111<<13) | opcode<<6 | dest<<3 | jump
	return fmt.Sprintf("%016b", command), nil
}

// Assemble runs the full two-pass pipeline over parsed source: pass 1
// resolves labels, pass 2 allocates variables and emits binary text.
func Assemble(prog asmtext.Program) ([]string, error) {
	instructions, table, err := resolveLabels(prog)
	if err != nil {
		return nil, err
	}
	return NewAssembler(table).Assemble(instructions)
}
