// Package parser implements a recursive-descent parser for the Jack
// grammar (spec.md §4.2), producing an ast.Class.
//
// Grounded on the node/field shapes of
// its-hmny-nand2tetris/pkg/jack/jack.go, but hand-rolled rather than built
// on github.com/prataprc/goparsec: the teacher's own goparsec-based
// pkg/jack/parsing.go never got past a stub (`Parser.Parse` there returns
// "not implemented yet") because combinators don't naturally expose the
// peek/consume discipline spec.md §4.2 requires (recoverable
// eat_if_matches vs fatal eat_by, one token of lookahead, hint-decorated
// errors). This hand-rolled version follows the semantics of the original
// Rust jack-compiler/src/parser.rs, expressed in ordinary Go control flow.
package parser

import (
	"github.com/nand2tetris-toolchain/hackc/internal/diag"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/ast"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/lexer"
	"github.com/nand2tetris-toolchain/hackc/internal/jack/token"
	"github.com/nand2tetris-toolchain/hackc/internal/span"
)

// Parser holds one token of lookahead plus the current span, consuming a
// pre-lexed token stream for the given source.
type Parser struct {
	src  string
	toks []token.Token
	pos  int
}

// New lexes src in full and returns a Parser ready to parse one Class.
// A lexical error is fatal and propagates unchanged, per spec.md §7.
func New(src string) (*Parser, *diag.Diagnostic) {
	toks, d := lexer.New(src).All()
	if d != nil {
		return nil, d
	}
	return &Parser{src: src, toks: toks}, nil
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		end := uint32(len(p.src))
		return token.Token{Kind: token.EOF, Span: span.New(end, end)}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		end := uint32(len(p.src))
		return token.Token{Kind: token.EOF, Span: span.New(end, end)}
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

// eatBy consumes the current token if it matches want, otherwise returns a
// fatal UnexpectedToken diagnostic. Use for constructs that must appear
// once a rule has committed to a production.
func (p *Parser) eatBy(want token.Kind) (token.Token, *diag.Diagnostic) {
	got := p.peek()
	if got.Kind != want {
		d := diag.New(diag.UnexpectedToken, got.Span, "expected %s, found %s", want, describe(got))
		return token.Token{}, &d
	}
	return p.advance(), nil
}

// eatIfMatches consumes the current token if it matches want and reports
// success; otherwise it leaves the cursor untouched and reports failure so
// the caller can try an alternative production.
func (p *Parser) eatIfMatches(want token.Kind) (token.Token, bool) {
	if p.peek().Kind != want {
		return token.Token{}, false
	}
	return p.advance(), true
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	if tok.Kind == token.Ident {
		return "identifier '" + tok.Ident + "'"
	}
	return tok.Kind.String()
}

func unexpectedEOF(sp span.Span) diag.Diagnostic {
	return diag.New(diag.UnexpectedEOF, sp, "unexpected end of file")
}

// ParseClass parses `class IDENT { class_var* fn_def* }`.
func (p *Parser) ParseClass() (ast.Class, *diag.Diagnostic) {
	start := p.peek().Span

	if _, d := p.eatBy(token.KwClass); d != nil {
		return ast.Class{}, d
	}

	nameTok := p.peek()
	if nameTok.Kind.IsKeyword() {
		d := diag.New(diag.ReservedKeyword, nameTok.Span, "%s is a reserved keyword", nameTok.Kind).
			WithHelp("you cannot use the keyword `" + nameTok.Kind.String() + "` for a class name")
		return ast.Class{}, &d
	}
	nameTok, d := p.eatBy(token.Ident)
	if d != nil {
		return ast.Class{}, d
	}
	className := nameTok.Ident

	if _, d := p.eatBy(token.LBrace); d != nil {
		return ast.Class{}, d
	}

	var vars []ast.VariableDef
	for {
		defs, d, matched := p.tryParseClassVar()
		if d != nil {
			return ast.Class{}, d
		}
		if !matched {
			break
		}
		vars = append(vars, defs...)
	}

	var fns []ast.FnDef
	for p.peek().Kind != token.RBrace && p.peek().Kind != token.EOF {
		fn, d := p.parseFnDef(className)
		if d != nil {
			return ast.Class{}, d
		}
		fns = append(fns, fn)
	}

	closeTok, d := p.eatBy(token.RBrace)
	if d != nil {
		return ast.Class{}, d
	}

	return ast.Class{
		Name:     className,
		Vars:     vars,
		Fns:      fns,
		NameSpan: nameTok.Span,
		Span:     start.To(closeTok.Span),
	}, nil
}

// tryParseClassVar parses `("static"|"field") type IDENT ("," IDENT)* ";"`,
// expanding a comma list into one VariableDef per name. Returns
// matched=false (no diagnostic) if the current token isn't "static"/"field".
func (p *Parser) tryParseClassVar() ([]ast.VariableDef, *diag.Diagnostic, bool) {
	var kind ast.VarKind
	switch p.peek().Kind {
	case token.KwStatic:
		kind = ast.VarStatic
	case token.KwField:
		kind = ast.VarField
	default:
		return nil, nil, false
	}
	p.advance()

	ty, d := p.parseType()
	if d != nil {
		return nil, d, true
	}

	defs, d := p.parseIdentList(kind, ty)
	if d != nil {
		return nil, d, true
	}

	if _, d := p.eatBy(token.Semi); d != nil {
		return nil, d, true
	}

	return defs, nil, true
}

// parseIdentList parses `IDENT ("," IDENT)*` and expands it to one
// VariableDef per name, sharing kind and type.
func (p *Parser) parseIdentList(kind ast.VarKind, ty ast.Type) ([]ast.VariableDef, *diag.Diagnostic) {
	var defs []ast.VariableDef

	nameTok, d := p.eatBy(token.Ident)
	if d != nil {
		return nil, d
	}
	defs = append(defs, ast.VariableDef{Kind: kind, Type: ty, Name: nameTok.Ident, Span: nameTok.Span})

	for {
		if _, ok := p.eatIfMatches(token.Comma); !ok {
			break
		}
		nameTok, d := p.eatBy(token.Ident)
		if d != nil {
			return nil, d
		}
		defs = append(defs, ast.VariableDef{Kind: kind, Type: ty, Name: nameTok.Ident, Span: nameTok.Span})
	}

	return defs, nil
}

// parseType parses one of {int, char, boolean, void, IDENT}.
func (p *Parser) parseType() (ast.Type, *diag.Diagnostic) {
	tok := p.peek()
	switch tok.Kind {
	case token.KwInt:
		p.advance()
		return ast.Type{Kind: ast.TInt}, nil
	case token.KwChar:
		p.advance()
		return ast.Type{Kind: ast.TChar}, nil
	case token.KwBoolean:
		p.advance()
		return ast.Type{Kind: ast.TBoolean}, nil
	case token.KwVoid:
		p.advance()
		return ast.Type{Kind: ast.TVoid}, nil
	case token.Ident:
		p.advance()
		return ast.Type{Kind: ast.TClass, ClassName: tok.Ident}, nil
	case token.EOF:
		d := unexpectedEOF(tok.Span)
		return ast.Type{}, &d
	default:
		d := diag.New(diag.UnexpectedToken, tok.Span, "expected a type, found %s", describe(tok))
		return ast.Type{}, &d
	}
}

// parseFnDef parses `("constructor"|"function"|"method") type IDENT "(" params? ")" "{" var_decl* stmt* "}"`.
func (p *Parser) parseFnDef(className string) (ast.FnDef, *diag.Diagnostic) {
	start := p.peek().Span

	var kind ast.FnKind
	switch p.peek().Kind {
	case token.KwConstructor:
		kind = ast.FnConstructor
	case token.KwFunction:
		kind = ast.FnFunction
	case token.KwMethod:
		kind = ast.FnMethod
	default:
		d := diag.New(diag.UnexpectedToken, p.peek().Span,
			"expected 'constructor', 'function' or 'method', found %s", describe(p.peek()))
		return ast.FnDef{}, &d
	}
	p.advance()

	retTy, d := p.parseType()
	if d != nil {
		return ast.FnDef{}, d
	}

	nameTok, d := p.eatBy(token.Ident)
	if d != nil {
		return ast.FnDef{}, d
	}

	if _, d := p.eatBy(token.LParen); d != nil {
		return ast.FnDef{}, d
	}

	var params []ast.Param
	if p.peek().Kind != token.RParen {
		for {
			pty, d := p.parseType()
			if d != nil {
				return ast.FnDef{}, d
			}
			pname, d := p.eatBy(token.Ident)
			if d != nil {
				return ast.FnDef{}, d
			}
			params = append(params, ast.Param{Type: pty, Name: pname.Ident, Span: pname.Span})

			if _, ok := p.eatIfMatches(token.Comma); !ok {
				break
			}
		}
	}

	if _, d := p.eatBy(token.RParen); d != nil {
		return ast.FnDef{}, d
	}

	if _, d := p.eatBy(token.LBrace); d != nil {
		return ast.FnDef{}, d
	}

	var locals []ast.VariableDef
	for {
		defs, d, matched := p.tryParseVarDecl()
		if d != nil {
			return ast.FnDef{}, d
		}
		if !matched {
			break
		}
		locals = append(locals, defs...)
	}

	var body []ast.Stmt
	for p.peek().Kind != token.RBrace && p.peek().Kind != token.EOF {
		stmt, d := p.parseStmt()
		if d != nil {
			return ast.FnDef{}, d
		}
		body = append(body, stmt)
	}

	closeTok, d := p.eatBy(token.RBrace)
	if d != nil {
		return ast.FnDef{}, d
	}

	return ast.FnDef{
		Kind:     kind,
		Return:   retTy,
		Name:     nameTok.Ident,
		Params:   params,
		Locals:   locals,
		Body:     body,
		NameSpan: nameTok.Span,
		Span:     start.To(closeTok.Span),
	}, nil
}

// tryParseVarDecl parses `"var" type IDENT ("," IDENT)* ";"`.
func (p *Parser) tryParseVarDecl() ([]ast.VariableDef, *diag.Diagnostic, bool) {
	if _, ok := p.eatIfMatches(token.KwVar); !ok {
		return nil, nil, false
	}

	ty, d := p.parseType()
	if d != nil {
		return nil, d, true
	}

	defs, d := p.parseIdentList(ast.VarLocal, ty)
	if d != nil {
		return nil, d, true
	}

	if _, d := p.eatBy(token.Semi); d != nil {
		return nil, d, true
	}

	return defs, nil, true
}

// parseStmt dispatches to let|if|while|do|return based on the leading
// keyword.
func (p *Parser) parseStmt() (ast.Stmt, *diag.Diagnostic) {
	switch p.peek().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDo()
	case token.KwReturn:
		return p.parseReturn()
	case token.EOF:
		d := unexpectedEOF(p.peek().Span)
		return nil, &d
	default:
		d := diag.New(diag.UnexpectedToken, p.peek().Span, "expected a statement, found %s", describe(p.peek()))
		return nil, &d
	}
}

func (p *Parser) parseLet() (ast.Stmt, *diag.Diagnostic) {
	start := p.advance().Span // "let"

	nameTok, d := p.eatBy(token.Ident)
	if d != nil {
		return nil, d
	}

	var target ast.Term = ast.VarTerm{Name: nameTok.Ident, Span: nameTok.Span}
	if _, ok := p.eatIfMatches(token.LBracket); ok {
		idx, d := p.parseExpr()
		if d != nil {
			return nil, d
		}
		if _, d := p.eatBy(token.RBracket); d != nil {
			return nil, d
		}
		target = ast.VarTerm{Name: nameTok.Ident, Index: &idx, Span: nameTok.Span}
	}

	if _, d := p.eatBy(token.Equal); d != nil {
		return nil, d
	}

	value, d := p.parseExpr()
	if d != nil {
		return nil, d
	}

	end, d := p.eatBy(token.Semi)
	if d != nil {
		return nil, d
	}

	return ast.LetStmt{Target: target, Value: value, Span: start.To(end.Span)}, nil
}

func (p *Parser) parseIf() (ast.Stmt, *diag.Diagnostic) {
	start := p.advance().Span // "if"

	if _, d := p.eatBy(token.LParen); d != nil {
		return nil, d
	}
	cond, d := p.parseExpr()
	if d != nil {
		return nil, d
	}
	if _, d := p.eatBy(token.RParen); d != nil {
		return nil, d
	}

	then, end, d := p.parseBlock()
	if d != nil {
		return nil, d
	}

	var elseBlock []ast.Stmt
	if _, ok := p.eatIfMatches(token.KwElse); ok {
		elseBlock, end, d = p.parseBlock()
		if d != nil {
			return nil, d
		}
	}

	return ast.IfStmt{Cond: cond, Then: then, Else: elseBlock, Span: start.To(end)}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *diag.Diagnostic) {
	start := p.advance().Span // "while"

	if _, d := p.eatBy(token.LParen); d != nil {
		return nil, d
	}
	cond, d := p.parseExpr()
	if d != nil {
		return nil, d
	}
	if _, d := p.eatBy(token.RParen); d != nil {
		return nil, d
	}

	body, end, d := p.parseBlock()
	if d != nil {
		return nil, d
	}

	return ast.WhileStmt{Cond: cond, Body: body, Span: start.To(end)}, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, span.Span, *diag.Diagnostic) {
	if _, d := p.eatBy(token.LBrace); d != nil {
		return nil, span.Span{}, d
	}
	var stmts []ast.Stmt
	for p.peek().Kind != token.RBrace && p.peek().Kind != token.EOF {
		stmt, d := p.parseStmt()
		if d != nil {
			return nil, span.Span{}, d
		}
		stmts = append(stmts, stmt)
	}
	closeTok, d := p.eatBy(token.RBrace)
	if d != nil {
		return nil, span.Span{}, d
	}
	return stmts, closeTok.Span, nil
}

func (p *Parser) parseDo() (ast.Stmt, *diag.Diagnostic) {
	start := p.advance().Span // "do"

	call, d := p.parseFnCall()
	if d != nil {
		return nil, d
	}

	end, d := p.eatBy(token.Semi)
	if d != nil {
		return nil, d
	}

	return ast.DoStmt{Call: call, Span: start.To(end.Span)}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *diag.Diagnostic) {
	start := p.advance().Span // "return"

	var value *ast.Expr
	if p.peek().Kind != token.Semi {
		expr, d := p.parseExpr()
		if d != nil {
			return nil, d
		}
		value = &expr
	}

	end, d := p.eatBy(token.Semi)
	if d != nil {
		return nil, d
	}

	rs := ast.ReturnStmt{Span: start.To(end.Span)}
	if value != nil {
		rs.Value = *value
		rs.HasValue = true
	}
	return rs, nil
}

// parseExpr parses `term (bin_op term)?`: zero or one right-hand side, no
// precedence whatsoever — this is deliberate and must be preserved.
func (p *Parser) parseExpr() (ast.Expr, *diag.Diagnostic) {
	start := p.peek().Span

	lhs, d := p.parseTerm()
	if d != nil {
		return ast.Expr{}, d
	}

	op, ok := binOpOf(p.peek().Kind)
	if !ok {
		return ast.Expr{Lhs: lhs, Span: start.To(p.prevSpan())}, nil
	}
	p.advance()

	rhs, d := p.parseTerm()
	if d != nil {
		return ast.Expr{}, d
	}

	return ast.Expr{Lhs: lhs, Op: op, Rhs: rhs, HasRhs: true, Span: start.To(p.prevSpan())}, nil
}

func (p *Parser) prevSpan() span.Span {
	if p.pos == 0 {
		return p.peek().Span
	}
	return p.toks[p.pos-1].Span
}

func binOpOf(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.Plus:
		return ast.OpAdd, true
	case token.Minus:
		return ast.OpSub, true
	case token.Star:
		return ast.OpMul, true
	case token.Slash:
		return ast.OpDiv, true
	case token.Amp:
		return ast.OpAnd, true
	case token.Pipe:
		return ast.OpOr, true
	case token.Equal:
		return ast.OpEq, true
	case token.Lt:
		return ast.OpLt, true
	case token.Gt:
		return ast.OpGt, true
	}
	return 0, false
}

// parseTerm parses `const | variable | fn_call | "(" expr ")" | unary_op term`.
func (p *Parser) parseTerm() (ast.Term, *diag.Diagnostic) {
	tok := p.peek()

	switch tok.Kind {
	case token.Integer:
		p.advance()
		return ast.ConstTerm{Kind: ast.ConstInt, Int: tok.Int, Span: tok.Span}, nil
	case token.String:
		p.advance()
		return ast.ConstTerm{Kind: ast.ConstString, Str: tok.Str, Span: tok.Span}, nil
	case token.KwTrue:
		p.advance()
		return ast.ConstTerm{Kind: ast.ConstTrue, Span: tok.Span}, nil
	case token.KwFalse:
		p.advance()
		return ast.ConstTerm{Kind: ast.ConstFalse, Span: tok.Span}, nil
	case token.KwNull:
		p.advance()
		return ast.ConstTerm{Kind: ast.ConstNull, Span: tok.Span}, nil
	case token.KwThis:
		p.advance()
		return ast.ConstTerm{Kind: ast.ConstThis, Span: tok.Span}, nil

	case token.LParen:
		p.advance()
		inner, d := p.parseExpr()
		if d != nil {
			return nil, d
		}
		closeTok, d := p.eatBy(token.RParen)
		if d != nil {
			return nil, d
		}
		return ast.ParenTerm{Inner: inner, Span: tok.Span.To(closeTok.Span)}, nil

	case token.Minus:
		p.advance()
		inner, d := p.parseTerm()
		if d != nil {
			return nil, d
		}
		return ast.UnaryTerm{Op: ast.OpNeg, Inner: inner, Span: tok.Span}, nil

	case token.Tilde:
		p.advance()
		inner, d := p.parseTerm()
		if d != nil {
			return nil, d
		}
		return ast.UnaryTerm{Op: ast.OpNot, Inner: inner, Span: tok.Span}, nil

	case token.Ident:
		return p.parseIdentTerm()

	case token.EOF:
		d := unexpectedEOF(tok.Span)
		return nil, &d

	default:
		d := diag.New(diag.UnexpectedToken, tok.Span, "expected an expression, found %s", describe(tok))
		return nil, &d
	}
}

// parseIdentTerm resolves the term-level ambiguity after a leading
// identifier by looking one token ahead: '(' => call with no receiver,
// '.' => call with receiver, '[' => indexed variable, otherwise a bare
// variable read.
func (p *Parser) parseIdentTerm() (ast.Term, *diag.Diagnostic) {
	nameTok := p.advance() // consumed Ident

	switch p.peek().Kind {
	case token.LParen:
		call, d := p.finishFnCall("", nameTok)
		if d != nil {
			return nil, d
		}
		return ast.CallTerm{Call: call, Span: call.Span}, nil

	case token.Dot:
		p.advance()
		methodTok, d := p.eatBy(token.Ident)
		if d != nil {
			return nil, d
		}
		call, d := p.finishFnCall(nameTok.Ident, methodTok)
		if d != nil {
			return nil, d
		}
		return ast.CallTerm{Call: call, Span: call.Span}, nil

	case token.LBracket:
		p.advance()
		idx, d := p.parseExpr()
		if d != nil {
			return nil, d
		}
		closeTok, d := p.eatBy(token.RBracket)
		if d != nil {
			return nil, d
		}
		return ast.VarTerm{Name: nameTok.Ident, Index: &idx, Span: nameTok.Span.To(closeTok.Span)}, nil

	default:
		return ast.VarTerm{Name: nameTok.Ident, Span: nameTok.Span}, nil
	}
}

// parseFnCall parses `IDENT ("." IDENT)? "(" (expr ("," expr)*)? ")"`.
func (p *Parser) parseFnCall() (ast.FnCall, *diag.Diagnostic) {
	first, d := p.eatBy(token.Ident)
	if d != nil {
		return ast.FnCall{}, d
	}

	if _, ok := p.eatIfMatches(token.Dot); ok {
		second, d := p.eatBy(token.Ident)
		if d != nil {
			return ast.FnCall{}, d
		}
		return p.finishFnCall(first.Ident, second)
	}

	return p.finishFnCall("", first)
}

func (p *Parser) finishFnCall(receiver string, nameTok token.Token) (ast.FnCall, *diag.Diagnostic) {
	if _, d := p.eatBy(token.LParen); d != nil {
		return ast.FnCall{}, d
	}

	var args []ast.Expr
	if p.peek().Kind != token.RParen {
		for {
			arg, d := p.parseExpr()
			if d != nil {
				return ast.FnCall{}, d
			}
			args = append(args, arg)

			if _, ok := p.eatIfMatches(token.Comma); !ok {
				break
			}
		}
	}

	closeTok, d := p.eatBy(token.RParen)
	if d != nil {
		return ast.FnCall{}, d
	}

	return ast.FnCall{
		Receiver: receiver,
		Name:     nameTok.Ident,
		Args:     args,
		Span:     nameTok.Span.To(closeTok.Span),
	}, nil
}
