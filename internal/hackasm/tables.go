package hackasm

// BuiltInTable seeds the symbol table with the Hack architecture's
// predefined addresses (spec.md §4.8 / §6), grounded on
// its-hmny-nand2tetris/pkg/hack/codegen.go's BuiltInTable.
var BuiltInTable = map[string]uint16{
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
	"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
	"R12": 12, "R13": 13, "R14": 14, "R15": 15,
	"SCREEN": 16384, "KBD": 24576,
}

// CompTable maps every comp mnemonic to its 7-bit opcode, grounded on
// its-hmny-nand2tetris/pkg/hack/codegen.go's CompTable with the
// commutative duplicates spec.md §6 requires ("identity mapping must
// include commutative duplicates, e.g. D+A ≡ A+D") added: the teacher's
// table only lists one spelling of each commutative pair.
var CompTable = map[string]uint16{
	"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
	"D": 0b0001100, "A": 0b0110000, "M": 0b1110000,
	"!D": 0b0001101, "!A": 0b0110001, "!M": 0b1110001,
	"-D": 0b0001111, "-A": 0b0110011, "-M": 0b1110011,
	"D+1": 0b0011111, "A+1": 0b0110111, "M+1": 0b1110111,
	"D-1": 0b0001110, "A-1": 0b0110010, "M-1": 0b1110010,
	"D+A": 0b0000010, "A+D": 0b0000010,
	"D+M": 0b1000010, "M+D": 0b1000010,
	"D-A": 0b0010011,
	"D-M": 0b1010011,
	"A-D": 0b0000111,
	"M-D": 0b1000111,
	"D&A": 0b0000000, "A&D": 0b0000000,
	"D&M": 0b1000000, "M&D": 0b1000000,
	"D|A": 0b0010101, "A|D": 0b0010101,
	"D|M": 0b1010101, "M|D": 0b1010101,
}

// DestTable maps every dest mnemonic (including the empty one) to its
// 3-bit opcode.
var DestTable = map[string]uint16{
	"": 0b000, "M": 0b001, "D": 0b010, "A": 0b100,
	"MD": 0b011, "AM": 0b101, "AD": 0b110, "AMD": 0b111,
}

// JumpTable maps every jump mnemonic (including the empty one) to its
// 3-bit opcode.
var JumpTable = map[string]uint16{
	"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
	"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
}
