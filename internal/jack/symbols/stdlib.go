package symbols

import (
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

func tInt() ast.Type     { return ast.Type{Kind: ast.TInt} }
func tChar() ast.Type    { return ast.Type{Kind: ast.TChar} }
func tVoid() ast.Type    { return ast.Type{Kind: ast.TVoid} }
func tClass(n string) ast.Type { return ast.Type{Kind: ast.TClass, ClassName: n} }

// stdlibFunctions seeds the function registry with the signatures of the
// eight built-in OS classes (spec.md §6), the same set load_stl() seeds in
// jack-compiler/src/symbol.rs, so calls to Math.multiply, String.new, and
// so on resolve without a corresponding .jack source file.
func stdlibFunctions() map[fnKey]FnCtxt {
	entries := []struct {
		class, name string
		kind        ast.FnKind
		ret         ast.Type
	}{
		{"Array", "new", ast.FnFunction, tClass("Array")},
		{"Array", "dispose", ast.FnMethod, tVoid()},

		{"Keyboard", "init", ast.FnFunction, tVoid()},
		{"Keyboard", "keyPressed", ast.FnFunction, tChar()},
		{"Keyboard", "readChar", ast.FnFunction, tChar()},
		{"Keyboard", "readLine", ast.FnFunction, tClass("String")},
		{"Keyboard", "readInt", ast.FnFunction, tInt()},

		{"Math", "init", ast.FnFunction, tVoid()},
		{"Math", "abs", ast.FnFunction, tInt()},
		{"Math", "multiply", ast.FnFunction, tInt()},
		{"Math", "divide", ast.FnFunction, tInt()},
		{"Math", "min", ast.FnFunction, tInt()},
		{"Math", "max", ast.FnFunction, tInt()},
		{"Math", "sqrt", ast.FnFunction, tInt()},

		{"Memory", "init", ast.FnFunction, tVoid()},
		{"Memory", "peek", ast.FnFunction, tInt()},
		{"Memory", "poke", ast.FnFunction, tVoid()},
		{"Memory", "alloc", ast.FnFunction, tClass("Array")},
		{"Memory", "deAlloc", ast.FnFunction, tVoid()},

		{"Output", "init", ast.FnFunction, tVoid()},
		{"Output", "moveCursor", ast.FnFunction, tVoid()},
		{"Output", "printChar", ast.FnFunction, tVoid()},
		{"Output", "printString", ast.FnFunction, tVoid()},
		{"Output", "printInt", ast.FnFunction, tVoid()},
		{"Output", "println", ast.FnFunction, tVoid()},
		{"Output", "backSpace", ast.FnFunction, tVoid()},

		{"Screen", "init", ast.FnFunction, tVoid()},
		{"Screen", "clearScreen", ast.FnFunction, tVoid()},
		{"Screen", "setColor", ast.FnFunction, tVoid()},
		{"Screen", "drawPixel", ast.FnFunction, tVoid()},
		{"Screen", "drawLine", ast.FnFunction, tVoid()},
		{"Screen", "drawRectangle", ast.FnFunction, tVoid()},
		{"Screen", "drawCircle", ast.FnFunction, tVoid()},

		{"String", "new", ast.FnConstructor, tClass("String")},
		{"String", "dispose", ast.FnMethod, tVoid()},
		{"String", "length", ast.FnMethod, tInt()},
		{"String", "charAt", ast.FnMethod, tChar()},
		{"String", "setCharAt", ast.FnMethod, tVoid()},
		{"String", "appendChar", ast.FnMethod, tClass("String")},
		{"String", "eraseLastChar", ast.FnMethod, tVoid()},
		{"String", "intValue", ast.FnMethod, tInt()},
		{"String", "setInt", ast.FnMethod, tVoid()},

		{"Sys", "init", ast.FnFunction, tVoid()},
		{"Sys", "halt", ast.FnFunction, tVoid()},
		{"Sys", "error", ast.FnFunction, tVoid()},
		{"Sys", "wait", ast.FnFunction, tVoid()},
	}

	fns := make(map[fnKey]FnCtxt, len(entries))
	for _, e := range entries {
		fns[fnKey{class: e.class, name: e.name}] = FnCtxt{Class: e.class, Name: e.name, Kind: e.kind, Return: e.ret, Span: span.Span{}}
	}
	return fns
}
