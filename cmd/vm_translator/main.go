package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/teris-io/cli"

	"github.com/nand2tetris-toolchain/hackc/internal/asmtext"
	"github.com/nand2tetris-toolchain/hackc/internal/vm"
)

var Description = strings.ReplaceAll(`
The VM Translator translates programs (composed of multiple modules/files) written in
the VM language into Hack assembly code that can be further elaborated. The VM language
is a higher-level (bytecode'like) language tailored for use with the Hack computer arch.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	WithArg(cli.NewArg("inputs", "The bytecode (.vm) file to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The compiled binary output (.asm)").
		WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 || options["output"] == "" {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return 0
	}

	output, err := os.Create(options["output"])
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return 1
	}
	defer output.Close()

	program := vm.Program{}
	for _, input := range args {
		content, err := os.ReadFile(input)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return 1
		}

		mod, err := vm.ParseModule(string(content))
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
			return 1
		}

		filename := path.Base(input)
		unit := strings.TrimSuffix(filename, path.Ext(filename))
		program[unit] = mod
	}

	// The bootstrap (SP=256; call Sys.init 0) is emitted automatically by
	// the translator whenever any unit declares Sys.init — spec.md §4.7
	// makes this conditional on the program's content, not a CLI choice.
	asmProgram, err := vm.NewTranslator().Translate(program)
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'translation' pass: %s\n", err)
		return 1
	}

	lines, err := asmtext.EmitProgram(asmProgram)
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return 1
	}
	for _, line := range lines {
		fmt.Fprintln(output, line)
	}

	return 0
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
