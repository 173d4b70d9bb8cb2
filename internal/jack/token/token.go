// Package token defines the lexical tokens of the Jack language.
package token

import "github.com/nand2tetris-toolchain/hackc/internal/span"

// Kind tags the lexical category of a Token.
type Kind int

const (
	Invalid Kind = iota

	// Literals & identifiers
	Ident
	Integer
	String

	// Keywords
	KwClass
	KwConstructor
	KwFunction
	KwMethod
	KwField
	KwStatic
	KwVar
	KwInt
	KwChar
	KwBoolean
	KwVoid
	KwTrue
	KwFalse
	KwNull
	KwThis
	KwLet
	KwDo
	KwIf
	KwElse
	KwWhile
	KwReturn

	// Punctuation
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Dot
	Comma
	Semi
	Plus
	Minus
	Star
	Slash
	Amp
	Pipe
	Lt
	Gt
	Equal
	Tilde

	EOF
)

// Keywords maps every reserved word to its Kind. 21 entries, matching the
// fixed keyword table used by the lexer to disambiguate identifiers.
var Keywords = map[string]Kind{
	"class":       KwClass,
	"constructor": KwConstructor,
	"function":    KwFunction,
	"method":      KwMethod,
	"field":       KwField,
	"static":      KwStatic,
	"var":         KwVar,
	"int":         KwInt,
	"char":        KwChar,
	"boolean":     KwBoolean,
	"void":        KwVoid,
	"true":        KwTrue,
	"false":       KwFalse,
	"null":        KwNull,
	"this":        KwThis,
	"let":         KwLet,
	"do":          KwDo,
	"if":          KwIf,
	"else":        KwElse,
	"while":       KwWhile,
	"return":      KwReturn,
}

// Token is one lexed unit: a tag plus the byte span it occupies in source,
// plus (for Ident/Integer/String) the decoded payload.
type Token struct {
	Kind  Kind
	Span  span.Span
	Ident string // valid when Kind == Ident
	Int   uint32 // valid when Kind == Integer
	Str   string // valid when Kind == String (without quotes)
}

func (k Kind) IsKeyword() bool { return k >= KwClass && k <= KwReturn }

// String renders a Kind for diagnostic messages.
func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Integer:
		return "integer literal"
	case String:
		return "string literal"
	case EOF:
		return "end of file"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Dot:
		return "'.'"
	case Comma:
		return "','"
	case Semi:
		return "';'"
	case Plus:
		return "'+'"
	case Minus:
		return "'-'"
	case Star:
		return "'*'"
	case Slash:
		return "'/'"
	case Amp:
		return "'&'"
	case Pipe:
		return "'|'"
	case Lt:
		return "'<'"
	case Gt:
		return "'>'"
	case Equal:
		return "'='"
	case Tilde:
		return "'~'"
	}

	for word, kind := range Keywords {
		if kind == k {
			return "'" + word + "'"
		}
	}
	return "unknown token"
}
