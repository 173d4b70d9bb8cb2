// Package lexer tokenizes Jack source text, grounded on the byte-indexed
// scanning style of its-hmny-nand2tetris/pkg/jack (one current-position
// cursor, punctuation tried before identifiers) generalized to track byte
// spans and report spanned diagnostics the way jack-compiler/src/lexer.rs
// does in the original implementation.
package lexer

import (
	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/token"
	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

// Lexer scans a Jack source buffer one Token at a time.
type Lexer struct {
	src string
	pos uint32
}

// New returns a Lexer over src.
func New(src string) *Lexer { return &Lexer{src: src} }

// Next scans and returns the next Token, or io.EOF-equivalent token.EOF
// once the source is exhausted. A lexical error is fatal and is returned
// verbatim; callers must not call Next again afterwards.
func (l *Lexer) Next() (token.Token, *diag.Diagnostic) {
	if d := l.skipTrivia(); d != nil {
		return token.Token{}, d
	}

	if l.atEOF() {
		return token.Token{Kind: token.EOF, Span: span.New(l.pos, l.pos)}, nil
	}

	if tok, ok := l.lexPunct(); ok {
		return tok, nil
	}
	if tok, d, ok := l.lexString(); ok {
		return tok, d
	}
	if tok, d, ok := l.lexInteger(); ok {
		return tok, d
	}
	if tok, ok := l.lexIdent(); ok {
		return tok, nil
	}

	c := rune(l.src[l.pos])
	base := l.pos
	l.pos++
	d := diag.New(diag.UnexpectedCharacter, span.FromLen(base, 1), "unexpected character %q", c)
	return token.Token{}, &d
}

// All drains the lexer into a slice of tokens (excluding the trailing EOF
// token), stopping at the first lexical error.
func (l *Lexer) All() ([]token.Token, *diag.Diagnostic) {
	var toks []token.Token
	for {
		tok, d := l.Next()
		if d != nil {
			return toks, d
		}
		if tok.Kind == token.EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) atEOF() bool { return int(l.pos) >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.atEOF() {
		return 0
	}
	return l.src[l.pos]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// skipTrivia consumes whitespace, "// line" comments, and "/* block */"
// comments (non-nested). An unterminated block comment fails with a
// spanned error at its opening position.
func (l *Lexer) skipTrivia() *diag.Diagnostic {
	for !l.atEOF() {
		switch {
		case isSpace(l.peekByte()):
			l.pos++
		case l.hasPrefix("//"):
			for !l.atEOF() && l.peekByte() != '\n' {
				l.pos++
			}
		case l.hasPrefix("/*"):
			start := l.pos
			l.pos += 2
			closed := false
			for !l.atEOF() {
				if l.hasPrefix("*/") {
					l.pos += 2
					closed = true
					break
				}
				l.pos++
			}
			if !closed {
				d := diag.New(diag.UnterminatedComment, span.FromLen(start, 2), "unterminated block comment")
				return &d
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) hasPrefix(s string) bool {
	end := int(l.pos) + len(s)
	return end <= len(l.src) && l.src[l.pos:end] == s
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

var punctKinds = map[byte]token.Kind{
	'{': token.LBrace, '}': token.RBrace,
	'(': token.LParen, ')': token.RParen,
	'[': token.LBracket, ']': token.RBracket,
	'.': token.Dot, ',': token.Comma, ';': token.Semi,
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'&': token.Amp, '|': token.Pipe,
	'<': token.Lt, '>': token.Gt, '=': token.Equal, '~': token.Tilde,
}

func (l *Lexer) lexPunct() (token.Token, bool) {
	b := l.peekByte()
	kind, ok := punctKinds[b]
	if !ok {
		return token.Token{}, false
	}
	sp := span.FromLen(l.pos, 1)
	l.pos++
	return token.Token{Kind: kind, Span: sp}, true
}

func (l *Lexer) lexString() (token.Token, *diag.Diagnostic, bool) {
	if l.peekByte() != '"' {
		return token.Token{}, nil, false
	}
	base := l.pos
	l.pos++ // opening quote

	start := l.pos
	for !l.atEOF() && l.peekByte() != '"' && l.peekByte() != '\n' {
		l.pos++
	}
	if l.atEOF() || l.peekByte() != '"' {
		d := diag.New(diag.UnterminatedQuote, span.FromLen(base, 1), "unterminated string literal")
		return token.Token{}, &d, true
	}
	str := l.src[start:l.pos]
	l.pos++ // closing quote

	sp := span.New(base, l.pos) // span includes the surrounding quotes
	return token.Token{Kind: token.String, Span: sp, Str: str}, nil, true
}

func (l *Lexer) lexInteger() (token.Token, *diag.Diagnostic, bool) {
	if !isDigit(l.peekByte()) {
		return token.Token{}, nil, false
	}
	base := l.pos
	for !l.atEOF() && isDigit(l.peekByte()) {
		l.pos++
	}
	digits := l.src[base:l.pos]
	sp := span.FromLen(base, len(digits))

	value := uint32(0)
	for i := 0; i < len(digits); i++ {
		value = value*10 + uint32(digits[i]-'0')
	}
	if value > 32767 {
		d := diag.New(diag.InvalidNumberFormat, sp, "integer literal %s out of range 0..32767", digits)
		return token.Token{}, &d, true
	}

	return token.Token{Kind: token.Integer, Span: sp, Int: value}, nil, true
}

func (l *Lexer) lexIdent() (token.Token, bool) {
	if !isIdentStart(l.peekByte()) {
		return token.Token{}, false
	}
	base := l.pos
	for !l.atEOF() && isIdentCont(l.peekByte()) {
		l.pos++
	}
	word := l.src[base:l.pos]
	sp := span.FromLen(base, len(word))

	if kind, ok := token.Keywords[word]; ok {
		return token.Token{Kind: kind, Span: sp, Ident: word}, true
	}
	return token.Token{Kind: token.Ident, Span: sp, Ident: word}, true
}
