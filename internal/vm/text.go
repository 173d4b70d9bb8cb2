package vm

import "fmt"

// Text renders one Operation in the canonical VM text syntax, the same
// format its-hmny-nand2tetris/pkg/vm/codegen.go produces line by line.
func Text(op Operation) (string, error) {
	switch o := op.(type) {
	case MemoryOp:
		if o.Segment == Pointer && o.Offset > 1 {
			return "", fmt.Errorf("invalid 'pointer' offset, got %d", o.Offset)
		}
		if o.Segment == Temp && o.Offset > 7 {
			return "", fmt.Errorf("invalid 'temp' offset, got %d", o.Offset)
		}
		return fmt.Sprintf("%s %s %d", o.Operation, o.Segment, o.Offset), nil

	case ArithmeticOp:
		return string(o.Operation), nil

	case LabelDecl:
		if o.Name == "" {
			return "", fmt.Errorf("unable to produce empty label declaration")
		}
		return fmt.Sprintf("label %s", o.Name), nil

	case GotoOp:
		if o.Label == "" {
			return "", fmt.Errorf("unable to produce empty jump label")
		}
		return fmt.Sprintf("%s %s", o.Jump, o.Label), nil

	case FuncDecl:
		if o.Name == "" {
			return "", fmt.Errorf("unable to produce empty function declaration")
		}
		return fmt.Sprintf("function %s %d", o.Name, o.NLocal), nil

	case ReturnOp:
		return "return", nil

	case FuncCallOp:
		if o.Name == "" {
			return "", fmt.Errorf("unable to produce empty function call")
		}
		return fmt.Sprintf("call %s %d", o.Name, o.NArgs), nil
	}

	return "", fmt.Errorf("unrecognized operation: %T", op)
}

// EmitModule renders every instruction of m in order, one per line.
func EmitModule(m Module) ([]string, error) {
	lines := make([]string, 0, len(m))
	for _, op := range m {
		line, err := Text(op)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
