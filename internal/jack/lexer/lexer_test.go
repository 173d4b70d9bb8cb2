package lexer_test

import (
	"testing"

	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/lexer"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/token"
)

func TestLexerPunctuationAndKeywords(t *testing.T) {
	toks, d := lexer.New("class Main { }").All()
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	want := []token.Kind{token.KwClass, token.Ident, token.LBrace, token.RBrace}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%+v)", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s", i, k, toks[i].Kind)
		}
	}
}

func TestLexerSkipsComments(t *testing.T) {
	src := "// a line comment\nlet /* inline */ x = 1;"
	toks, d := lexer.New(src).All()
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	want := []token.Kind{token.KwLet, token.Ident, token.Equal, token.Integer, token.Semi}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%+v)", len(want), len(toks), toks)
	}
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	_, d := lexer.New("/* never closed").All()
	if d == nil {
		t.Fatalf("expected an error")
	}
	if d.Kind != diag.UnterminatedComment {
		t.Errorf("expected UnterminatedComment, got %s", d.Kind)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, d := lexer.New(`"hello`).All()
	if d == nil {
		t.Fatalf("expected an error")
	}
	if d.Kind != diag.UnterminatedQuote {
		t.Errorf("expected UnterminatedQuote, got %s", d.Kind)
	}
}

func TestLexerStringLiteralSpanIncludesQuotes(t *testing.T) {
	toks, d := lexer.New(`"hi"`).All()
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	if len(toks) != 1 {
		t.Fatalf("expected 1 token, got %d", len(toks))
	}
	tok := toks[0]
	if tok.Str != "hi" {
		t.Errorf("expected decoded string 'hi', got %q", tok.Str)
	}
	if tok.Span.Len() != 4 {
		t.Errorf("expected span length 4 (quotes included), got %d", tok.Span.Len())
	}
}

func TestLexerIntegerOutOfRange(t *testing.T) {
	_, d := lexer.New("32768").All()
	if d == nil {
		t.Fatalf("expected an error")
	}
	if d.Kind != diag.InvalidNumberFormat {
		t.Errorf("expected InvalidNumberFormat, got %s", d.Kind)
	}
}

func TestLexerIntegerAtUpperBound(t *testing.T) {
	toks, d := lexer.New("32767").All()
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	if toks[0].Int != 32767 {
		t.Errorf("expected 32767, got %d", toks[0].Int)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	_, d := lexer.New("@").All()
	if d == nil {
		t.Fatalf("expected an error")
	}
	if d.Kind != diag.UnexpectedCharacter {
		t.Errorf("expected UnexpectedCharacter, got %s", d.Kind)
	}
}

func TestLexerIdentifierVsKeyword(t *testing.T) {
	toks, d := lexer.New("classy").All()
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	if toks[0].Kind != token.Ident || toks[0].Ident != "classy" {
		t.Errorf("expected identifier 'classy', got %+v", toks[0])
	}
}
