package parser

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/lexer"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/token"
)

// tokenizeSnippet lexes a template-string interpolation body in isolation.
// Its positions are not meaningful for caret rendering (the sub-parser only
// needs Kind/Text), so it gets its own throwaway FileSet.
func tokenizeSnippet(src string) []token.Token {
	fs := source.NewFileSet()
	f := fs.AddFile("<template>", src)
	return lexer.New(f, diag.NewBag()).Tokenize()
}

// parseExpr is precedence-climbing over the precedence table internal/token
// encodes.
func (p *Parser) parseExpr(minPrec int) *ast.Expr {
	left := p.parseUnary()
	for {
		k := p.cur().Kind
		prec := token.BinaryPrecedence(k)
		if prec < minPrec || prec == 0 {
			break
		}
		opTok := p.advance()
		if token.IsAssignOp(k) {
			right := p.parseExpr(prec) // right-associative
			left = &ast.Expr{Kind: ast.EAssign, Pos: opTok.Pos, Op: opTok.Text, Left: left, Right: right}
			continue
		}
		if k == token.Unwrap {
			def := (*ast.Expr)(nil)
			if p.at(token.Colon) {
				p.advance()
				def = p.parseExpr(prec)
			}
			left = &ast.Expr{Kind: ast.EUnwrap, Pos: opTok.Pos, Left: left, Default: def}
			continue
		}
		nextMin := prec + 1
		if token.IsRightAssociative(k) {
			nextMin = prec
		}
		right := p.parseExpr(nextMin)
		left = &ast.Expr{Kind: ast.EBinary, Pos: opTok.Pos, Op: opTok.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() *ast.Expr {
	switch p.cur().Kind {
	case token.Minus, token.Bang, token.Tilde, token.At, token.Pin, token.Iter, token.Inc, token.Dec:
		t := p.advance()
		operand := p.parseUnary()
		return &ast.Expr{Kind: ast.EUnary, Pos: t.Pos, Op: t.Text, Right: operand}
	case token.KwAwait:
		t := p.advance()
		operand := p.parseUnary()
		return &ast.Expr{Kind: ast.EAwait, Pos: t.Pos, Right: operand}
	case token.KwSpawn:
		t := p.advance()
		operand := p.parseUnary()
		return &ast.Expr{Kind: ast.ESpawn, Pos: t.Pos, Right: operand}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(e *ast.Expr) *ast.Expr {
	for {
		switch p.cur().Kind {
		case token.LParen:
			pos := p.advance().Pos
			var args []*ast.Expr
			for !p.at(token.RParen) && !p.at(token.RBrace) && !p.at(token.EOF) {
				args = append(args, p.parseExpr(0))
				if p.at(token.Comma) {
					p.advance()
				}
			}
			p.expect(token.RParen, ")")
			e = &ast.Expr{Kind: ast.ECall, Pos: pos, Callee: e, Args: args}
		case token.LBracket:
			pos := p.advance().Pos
			idx := p.parseExpr(0)
			p.expect(token.RBracket, "]")
			e = &ast.Expr{Kind: ast.EIndex, Pos: pos, Object: e, Index: idx}
		case token.Dot:
			pos := p.advance().Pos
			name := p.expect(token.Ident, "field name").Text
			e = &ast.Expr{Kind: ast.EMember, Pos: pos, Object: e, Field: name}
		case token.Arrow:
			pos := p.advance().Pos
			name := p.expect(token.Ident, "field name").Text
			e = &ast.Expr{Kind: ast.EMember, Pos: pos, Object: e, Field: name, Arrow: true}
		case token.Inc, token.Dec:
			t := p.advance()
			e = &ast.Expr{Kind: ast.EUnary, Pos: t.Pos, Op: "post" + t.Text, Right: e}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() *ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.IntLit:
		p.advance()
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitInt, LitText: t.Text}
	case token.FloatLit:
		p.advance()
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitFloat, LitText: t.Text}
	case token.StringLit:
		p.advance()
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitString, LitText: t.Text}
	case token.CharLit:
		p.advance()
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitChar, LitText: t.Text}
	case token.TemplateStringLit:
		return p.parseTemplateString()
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitBool, LitText: t.Text}
	case token.KwNull:
		p.advance()
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitNull}
	case token.Ident:
		p.advance()
		return &ast.Expr{Kind: ast.EIdent, Pos: t.Pos, Ident: t.Text}
	case token.LParen:
		p.advance()
		if p.looksLikeLambdaParams() {
			return p.parseLambda()
		}
		e := p.parseExpr(0)
		p.expect(token.RParen, ")")
		return p.finishTernaryMaybe(e)
	case token.LBracket:
		return p.parseArrayLit()
	case token.LBrace:
		return p.parseObjectLit()
	default:
		p.bag.Errorf(t.Pos, diag.CodeParse, "unexpected token %q in expression", t.Text)
		if t.Kind != token.RBrace {
			p.advance() // a "}" is left for the enclosing block to close
		}
		return &ast.Expr{Kind: ast.ELiteral, Pos: t.Pos, LitKind: ast.LitNull}
	}
}

// finishTernaryMaybe handles "cond is then : else" where cond
// was already parsed as a parenthesized expression.
func (p *Parser) finishTernaryMaybe(cond *ast.Expr) *ast.Expr {
	if !p.at(token.Is) {
		return cond
	}
	pos := p.advance().Pos
	then := p.parseExpr(0)
	p.expect(token.Colon, ":")
	els := p.parseExpr(0)
	return &ast.Expr{Kind: ast.ETernary, Pos: pos, Left: cond, Then: then, Else: els}
}

// looksLikeLambdaParams peeks past a balanced "(" ... ")" to see whether a
// "=>" or "{" follows, distinguishing "(x:int) => x" from a parenthesized
// expression.
func (p *Parser) looksLikeLambdaParams() bool {
	depth := 1
	i := p.pos
	for depth > 0 {
		i++
		if i >= len(p.toks) {
			return false
		}
		switch p.toks[i].Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case token.EOF:
			return false
		}
	}
	next := p.toks[i+1]
	return next.Kind == token.FatArrow
}

func (p *Parser) parseLambda() *ast.Expr {
	pos := p.cur().Pos
	params := p.parseParamList()
	p.expect(token.RParen, ")")
	p.expect(token.FatArrow, "=>")
	lam := &ast.Expr{Kind: ast.ELambda, Pos: pos, Params: params}
	if p.at(token.LBrace) {
		lam.Body = p.parseBlock()
	} else {
		e := p.parseExpr(0)
		lam.Body = &ast.Stmt{Kind: ast.SBlock, Pos: pos, Body: []*ast.Stmt{
			{Kind: ast.SReturn, Pos: pos, Expr: e},
		}}
	}
	return lam
}

func (p *Parser) parseTemplateString() *ast.Expr {
	t := p.advance()
	e := &ast.Expr{Kind: ast.ETemplateString, Pos: t.Pos}
	// The lexer preserves ${...}/&{...} markers verbatim; split them here so
	// the parser (not the lexer) owns expression-grammar knowledge.
	text := t.Text
	i := 0
	var lit []byte
	for i < len(text) {
		if (text[i] == '$' || text[i] == '&') && i+1 < len(text) && text[i+1] == '{' {
			e.TemplateParts = append(e.TemplateParts, string(lit))
			lit = nil
			depth := 1
			j := i + 2
			start := j
			for j < len(text) && depth > 0 {
				if text[j] == '{' {
					depth++
				} else if text[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := text[start:j]
			sub := New(tokenizeSnippet(inner), p.file, p.bag)
			e.TemplateExprs = append(e.TemplateExprs, sub.parseExpr(0))
			i = j + 1
			continue
		}
		lit = append(lit, text[i])
		i++
	}
	e.TemplateParts = append(e.TemplateParts, string(lit))
	return e
}

func (p *Parser) parseArrayLit() *ast.Expr {
	pos := p.advance().Pos
	e := &ast.Expr{Kind: ast.EArrayLit, Pos: pos}
	for !p.at(token.RBracket) && !p.at(token.RBrace) && !p.at(token.EOF) {
		e.Elements = append(e.Elements, p.parseExpr(0))
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBracket, "]")
	return e
}

func (p *Parser) parseObjectLit() *ast.Expr {
	pos := p.advance().Pos
	e := &ast.Expr{Kind: ast.EObjectLit, Pos: pos}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name := p.expect(token.Ident, "field name").Text
		p.expect(token.Colon, ":")
		val := p.parseExpr(0)
		e.Fields = append(e.Fields, ast.Field{Name: name, Value: val})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace, "}")
	return e
}
