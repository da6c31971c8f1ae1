package parser

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/token"
)

func (p *Parser) parseStmt() *ast.Stmt {
	switch p.cur().Kind {
	case token.KwConst:
		if p.aheadIsStructDecl(1) {
			return p.parseStructDecl()
		}
		return p.parseVarDecl()
	case token.KwStack, token.KwGC, token.KwWild, token.KwWildX, token.KwLet:
		return p.parseVarDecl()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		pos := p.advance().Pos
		s := &ast.Stmt{Kind: ast.SBreak, Pos: pos}
		if p.at(token.Ident) {
			s.Label = p.advance().Text
		}
		p.consumeSemi()
		return s
	case token.KwContinue:
		pos := p.advance().Pos
		s := &ast.Stmt{Kind: ast.SContinue, Pos: pos}
		if p.at(token.Ident) {
			s.Label = p.advance().Text
		}
		p.consumeSemi()
		return s
	case token.KwDefer:
		pos := p.advance().Pos
		body := p.parseBlock()
		return &ast.Stmt{Kind: ast.SDefer, Pos: pos, DeferBody: body}
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseForIn()
	case token.KwLoop:
		return p.parseLoop()
	case token.KwTill:
		return p.parseTill()
	case token.KwWhen:
		return p.parseWhen()
	case token.KwPick:
		return p.parsePick()
	case token.KwTrait:
		return p.parseTraitDecl()
	case token.KwImpl:
		return p.parseImplDecl()
	case token.KwFunc, token.KwPub, token.KwAsync, token.KwExtern:
		return p.parseFuncDecl()
	case token.Semi:
		p.advance()
		return nil
	case token.Ident:
		if p.aheadIsStructDecl(0) {
			return p.parseStructDecl()
		}
		if p.peekAt(1).Kind == token.Colon && p.peekAt(2).Kind == token.Ident {
			return p.parseVarDecl() // `Type : Name` with no storage keyword, gc-scoped
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseVarDecl() *ast.Stmt {
	pos := p.cur().Pos
	var flags ast.VarFlags
	for {
		switch p.cur().Kind {
		case token.KwConst:
			flags.Const = true
			p.advance()
			continue
		case token.KwStack:
			flags.Stack = true
			p.advance()
			continue
		case token.KwGC:
			flags.GC = true
			p.advance()
			continue
		case token.KwWild:
			flags.Wild = true
			p.advance()
			continue
		case token.KwWildX:
			flags.WildX = true
			p.advance()
			continue
		case token.KwLet:
			p.advance()
			continue
		}
		break
	}
	if !flags.Const && !flags.Stack && !flags.Wild && !flags.WildX {
		flags.GC = true
	}
	s := &ast.Stmt{Kind: ast.SVarDecl, Pos: pos, VarFlags: flags}
	s.Type = p.parseTypeExpr()
	p.expect(token.Colon, ":")
	s.Name = p.expect(token.Ident, "variable name").Text
	if p.at(token.Assign) {
		p.advance()
		s.Init = p.parseExpr(0)
	}
	p.consumeSemi()
	return s
}

func (p *Parser) parseReturn() *ast.Stmt {
	pos := p.advance().Pos
	s := &ast.Stmt{Kind: ast.SReturn, Pos: pos}
	if !p.at(token.Semi) && !p.at(token.RBrace) {
		s.Expr = p.parseExpr(0)
	}
	p.consumeSemi()
	return s
}

func (p *Parser) parseExprStmt() *ast.Stmt {
	pos := p.cur().Pos
	e := p.parseExpr(0)
	p.consumeSemi()
	return &ast.Stmt{Kind: ast.SExprStmt, Pos: pos, Expr: e}
}

func (p *Parser) parseIf() *ast.Stmt {
	pos := p.advance().Pos
	cond := p.parseExpr(0)
	body := p.parseBlock()
	s := &ast.Stmt{Kind: ast.SIf, Pos: pos, Cond: cond, Body: body.Body}
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			s.Else2 = p.parseIf()
		} else {
			s.Else2 = p.parseBlock()
		}
	}
	return s
}

func (p *Parser) parseWhile() *ast.Stmt {
	pos := p.advance().Pos
	cond := p.parseExpr(0)
	body := p.parseBlock()
	return &ast.Stmt{Kind: ast.SWhile, Pos: pos, Cond: cond, Body: body.Body}
}

func (p *Parser) parseForIn() *ast.Stmt {
	pos := p.advance().Pos
	name := p.expect(token.Ident, "loop variable").Text
	p.expect(token.KwIn, "in")
	iter := p.parseExpr(0)
	body := p.parseBlock()
	return &ast.Stmt{Kind: ast.SForIn, Pos: pos, IterVar: name, IterExpr: iter, Body: body.Body}
}

func (p *Parser) parseLoop() *ast.Stmt {
	pos := p.advance().Pos
	p.expect(token.LParen, "(")
	start := p.parseExpr(0)
	p.expect(token.Comma, ",")
	limit := p.parseExpr(0)
	var step *ast.Expr
	if p.at(token.Comma) {
		p.advance()
		step = p.parseExpr(0)
	}
	p.expect(token.RParen, ")")
	body := p.parseBlock()
	return &ast.Stmt{Kind: ast.SLoop, Pos: pos, Start: start, Limit: limit, Step: step, Body: body.Body}
}

func (p *Parser) parseTill() *ast.Stmt {
	pos := p.advance().Pos
	p.expect(token.LParen, "(")
	limit := p.parseExpr(0)
	var step *ast.Expr
	if p.at(token.Comma) {
		p.advance()
		step = p.parseExpr(0)
	}
	p.expect(token.RParen, ")")
	body := p.parseBlock()
	return &ast.Stmt{Kind: ast.STill, Pos: pos, Limit: limit, Step: step, Body: body.Body}
}

func (p *Parser) parseWhen() *ast.Stmt {
	pos := p.advance().Pos
	p.expect(token.LParen, "(")
	cond := p.parseExpr(0)
	p.expect(token.RParen, ")")
	s := &ast.Stmt{Kind: ast.SWhen, Pos: pos, Cond: cond}
	if p.at(token.LBrace) {
		s.Body = p.parseBlock().Body
	}
	if p.at(token.KwThen) {
		p.advance()
		s.ThenBody = p.parseBlock().Body
	}
	if p.at(token.KwEnd) {
		p.advance()
		s.EndBody = p.parseBlock().Body
	}
	return s
}

func (p *Parser) parsePick() *ast.Stmt {
	pos := p.advance().Pos
	sel := p.parseExpr(0)
	p.expect(token.LBrace, "{")
	s := &ast.Stmt{Kind: ast.SPick, Pos: pos, Selector: sel}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		c := p.parsePickCase()
		s.Cases = append(s.Cases, c)
	}
	p.expect(token.RBrace, "}")
	return s
}

func (p *Parser) parsePickCase() ast.PickCase {
	var c ast.PickCase
	switch {
	case p.at(token.Bang):
		p.advance()
		c.Unreachable = true
	case p.at(token.Star):
		p.advance()
		c.Wildcard = true
	default:
		first := p.parseExpr(token.BinaryPrecedence(token.OrOr))
		if p.at(token.DotDot) || p.at(token.DotDotDot) {
			incl := p.at(token.DotDotDot)
			p.advance()
			c.RangeLow = first
			c.RangeHigh = p.parseExpr(token.BinaryPrecedence(token.OrOr))
			c.RangeIncl = incl
		} else {
			c.Exact = first
		}
	}
	p.expect(token.Colon, ":")
	if p.at(token.LBrace) {
		c.Body = p.parseBlock().Body
	} else {
		if st := p.parseStmt(); st != nil {
			c.Body = []*ast.Stmt{st}
		}
	}
	return c
}

// diag is imported for future case-validation diagnostics (duplicate
// labels, unreachable-after-wildcard) emitted by sema rather than here.
var _ = diag.CodeParse
