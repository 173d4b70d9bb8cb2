package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teris-io/cli"

	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/codegen"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/lint"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/parser"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/symbols"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/typecheck"
	"github.com/nand2tetris-toolchain/hackc/internal/vm"
)

var Description = strings.ReplaceAll(`
The Jack Compiler compiles programs (composed of multiple classes/files) written in
the Jack language into VM modules that can be further elaborated. The Jack language
is a higher-level OOP language tailored for use with the Hack computer architecture.
`, "\n", " ")

var JackCompiler = cli.New(Description).
	WithArg(cli.NewArg("inputs", "The source (.jack) files to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("typecheck", "Does a full type check of source code before emitting any output").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("warn", "Surfaces type-mismatch and unused-variable warnings on stderr").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// unit is one parsed translation unit: the source file it came from plus
// its parsed class.
type unit struct {
	path  string
	src   string
	class ast.Class
}

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return 0
	}

	var tus []string
	for _, input := range args {
		filepath.Walk(input, func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".jack") {
				return nil
			}
			tus = append(tus, p)
			return nil
		})
	}

	units := make(map[string]*unit, len(tus))
	for _, tu := range tus {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return 1
		}

		p, d := parser.New(string(content))
		if d != nil {
			fmt.Printf("ERROR: Unable to complete 'lexing' pass for %s: %s\n", tu, d.Message)
			return 1
		}
		class, d := p.ParseClass()
		if d != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass for %s: %s\n", tu, d.Message)
			return 1
		}
		units[class.Name] = &unit{path: tu, src: string(content), class: class}
	}

	classNames := make([]string, 0, len(units))
	for name := range units {
		classNames = append(classNames, name)
	}
	sort.Strings(classNames)

	// Function registration must precede any codegen so that cross-class
	// calls resolve regardless of processing order (spec.md §5).
	table := symbols.New()
	for _, name := range classNames {
		for _, fn := range units[name].class.Fns {
			if d := table.RegisterFn(name, fn.Name, fn.Kind, fn.Return, fn.NameSpan); d != nil {
				fmt.Printf("ERROR: %s\n", d.Message)
				return 1
			}
		}
	}

	_, typecheckRequested := options["typecheck"]
	_, warnRequested := options["warn"]

	program := vm.Program{}
	hadError := false

	for _, name := range classNames {
		u := units[name]
		bag := diag.NewBag(u.path, u.src)

		table.Sess(name, u.src)
		for _, v := range u.class.Vars {
			switch v.Kind {
			case ast.VarField:
				table.RegisterVariable(symbols.VarFromField(v))
			case ast.VarStatic:
				table.RegisterVariable(symbols.VarFromStatic(v))
			}
		}

		// --warn surfaces TypeMismatch alongside UnusedVariable, so it runs
		// the same checker --typecheck does rather than a separate pass.
		if typecheckRequested || warnRequested {
			typecheck.New(table, bag).CheckClass(u.class)
		}
		if warnRequested {
			lint.CheckClass(u.class, bag)
		}

		mod := codegen.New(table, bag).CompileClass(u.class)

		for _, d := range bag.All() {
			fmt.Fprint(os.Stderr, bag.Render(d))
		}
		if bag.HasErrors() {
			hadError = true
			continue
		}
		program[name] = mod
	}

	if hadError {
		return 1
	}

	for name, mod := range program {
		lines, err := vm.EmitModule(mod)
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'codegen' pass for %s: %s\n", name, err)
			return 1
		}

		outPath := fmt.Sprintf("%s.vm", strings.TrimSuffix(units[name].path, path.Ext(units[name].path)))
		output, err := os.Create(outPath)
		if err != nil {
			fmt.Printf("ERROR: Unable to open output file: %s\n", err)
			return 1
		}
		for _, line := range lines {
			fmt.Fprintln(output, line)
		}
		output.Close()
	}

	return 0
}

func main() { os.Exit(JackCompiler.Run(os.Args, os.Stdout)) }
