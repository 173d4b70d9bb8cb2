package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseModule parses a .vm source file's text into a Module. Each non-blank
// line (with `//` comments stripped) is one instruction; this is a simple
// whitespace-delimited format, so a hand-rolled line parser fits better
// than pulling in a combinator library for it (the assembler's equivalent
// text format, with operands that can be expressions or labels in other
// assemblers, is what the goparsec parser in internal/hackasm is for).
func ParseModule(src string) (Module, error) {
	var mod Module
	for n, raw := range strings.Split(src, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		mod = append(mod, op)
	}
	return mod, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

func parseLine(line string) (Operation, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "push", "pop":
		return parseMemoryOp(fields)
	case "add", "sub", "neg", "eq", "gt", "lt", "and", "or", "not":
		return ArithmeticOp{Operation: ArithOpType(fields[0])}, nil
	case "label":
		if len(fields) != 2 {
			return nil, fmt.Errorf("expected 'label NAME', got %q", line)
		}
		return LabelDecl{Name: fields[1]}, nil
	case "goto":
		if len(fields) != 2 {
			return nil, fmt.Errorf("expected 'goto LABEL', got %q", line)
		}
		return GotoOp{Jump: Unconditional, Label: fields[1]}, nil
	case "if-goto":
		if len(fields) != 2 {
			return nil, fmt.Errorf("expected 'if-goto LABEL', got %q", line)
		}
		return GotoOp{Jump: Conditional, Label: fields[1]}, nil
	case "function":
		if len(fields) != 3 {
			return nil, fmt.Errorf("expected 'function NAME NLOCALS', got %q", line)
		}
		n, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid local count %q: %w", fields[2], err)
		}
		return FuncDecl{Name: fields[1], NLocal: uint8(n)}, nil
	case "call":
		if len(fields) != 3 {
			return nil, fmt.Errorf("expected 'call NAME NARGS', got %q", line)
		}
		n, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid argument count %q: %w", fields[2], err)
		}
		return FuncCallOp{Name: fields[1], NArgs: uint8(n)}, nil
	case "return":
		if len(fields) != 1 {
			return nil, fmt.Errorf("expected bare 'return', got %q", line)
		}
		return ReturnOp{}, nil
	}
	return nil, fmt.Errorf("unrecognized instruction %q", fields[0])
}

func parseMemoryOp(fields []string) (Operation, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("expected '%s SEGMENT INDEX', got %d fields", fields[0], len(fields))
	}
	offset, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q: %w", fields[2], err)
	}

	segment := SegmentType(fields[1])
	switch segment {
	case Constant, Local, Argument, Static, This, That, Pointer, Temp:
	default:
		return nil, fmt.Errorf("unrecognized segment %q", fields[1])
	}
	if segment == Constant && fields[0] == "pop" {
		return nil, fmt.Errorf("cannot pop into the constant segment")
	}

	op := OperationType(fields[0])
	return MemoryOp{Operation: op, Segment: segment, Offset: uint16(offset)}, nil
}
