// Package parser builds an ast.Program from a token stream by recursive
// descent with precedence climbing for expressions, using the
// precedence table internal/token encodes. It is a single pass that
// recovers from a parse error by logging a diagnostic and continuing rather
// than aborting: an unexpected token in expression position is skipped
// (a "}" is left for the enclosing block), and Parse advances past any
// token on which a top-level parse made no progress.
package parser

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/token"
)

type Parser struct {
	toks []token.Token
	pos  int
	bag  *diag.Bag
	file *source.File
}

func New(toks []token.Token, file *source.File, bag *diag.Bag) *Parser {
	return &Parser{toks: toks, file: file, bag: bag}
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if !p.at(k) {
		p.bag.Errorf(p.cur().Pos, diag.CodeParse, "expected %s, found %q", what, p.cur().Text)
		return p.cur()
	}
	return p.advance()
}

// synchronize skips tokens until a statement boundary, for error recovery
//.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.Semi) {
			p.advance()
			return
		}
		switch p.cur().Kind {
		case token.KwFunc, token.KwStruct, token.KwTrait, token.KwImpl, token.KwIf, token.KwWhile,
			token.KwLoop, token.KwReturn, token.KwUse, token.KwPick, token.KwWhen, token.LBrace:
			return
		}
		p.advance()
	}
}

// aheadIsStructDecl reports whether the tokens starting identOffset tokens
// ahead of the current position spell `Identifier "=" "struct"`, the only
// construct that shares a bare-identifier (or const-prefixed) lead-in with a
// variable declaration and an expression statement.
func (p *Parser) aheadIsStructDecl(identOffset int) bool {
	return p.peekAt(identOffset).Kind == token.Ident &&
		p.peekAt(identOffset+1).Kind == token.Assign &&
		p.peekAt(identOffset+2).Kind == token.KwStruct
}

// Parse consumes the whole token stream and returns the top-level program
//.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		start := p.pos
		decl := p.parseTopLevel()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.pos == start { // safety: guarantee forward progress
			p.advance()
		}
	}
	return prog
}

func (p *Parser) parseTopLevel() *ast.Stmt {
	switch p.cur().Kind {
	case token.KwUse:
		return p.parseUse()
	case token.KwTrait:
		return p.parseTraitDecl()
	case token.KwImpl:
		return p.parseImplDecl()
	case token.KwPub, token.KwAsync, token.KwExtern, token.KwFunc:
		return p.parseFuncDecl()
	case token.KwConst:
		if p.aheadIsStructDecl(1) {
			return p.parseStructDecl()
		}
		return p.parseStmt()
	case token.Ident:
		if p.aheadIsStructDecl(0) {
			return p.parseStructDecl()
		}
		return p.parseStmt()
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseUse() *ast.Stmt {
	pos := p.cur().Pos
	p.advance() // use
	var pathParts []string
	pathParts = append(pathParts, p.expect(token.Ident, "module path segment").Text)
	for p.at(token.Dot) {
		p.advance()
		if p.at(token.Star) {
			p.advance()
			s := &ast.Stmt{Kind: ast.SUse, Pos: pos, Wildcard: true}
			s.ImportPath = joinDots(pathParts)
			p.consumeSemi()
			return s
		}
		pathParts = append(pathParts, p.expect(token.Ident, "module path segment").Text)
	}
	s := &ast.Stmt{Kind: ast.SUse, Pos: pos, ImportPath: joinDots(pathParts)}
	if p.at(token.KwAs) {
		p.advance()
		s.Alias = p.expect(token.Ident, "alias").Text
	}
	if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			s.Selective = append(s.Selective, p.expect(token.Ident, "selective import name").Text)
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace, "}")
	}
	p.consumeSemi()
	return s
}

func joinDots(parts []string) string {
	out := parts[0]
	for _, x := range parts[1:] {
		out += "." + x
	}
	return out
}

func (p *Parser) consumeSemi() {
	if p.at(token.Semi) {
		p.advance()
	}
}

func (p *Parser) parseStructDecl() *ast.Stmt {
	pos := p.cur().Pos
	var flags ast.VarFlags
	if p.at(token.KwConst) {
		flags.Const = true
		p.advance()
	}
	name := p.expect(token.Ident, "struct name").Text
	p.expect(token.Assign, "=")
	p.expect(token.KwStruct, "struct")
	packed := false
	if p.at(token.KwPacked) {
		packed = true
		p.advance()
	}
	p.expect(token.LBrace, "{")
	s := &ast.Stmt{Kind: ast.SStructDecl, Pos: pos, Name: name, Packed: packed, VarFlags: flags}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwPub, token.KwAsync, token.KwExtern, token.KwFunc:
			s.Methods = append(s.Methods, p.parseFuncDecl())
			continue
		}
		fname := p.expect(token.Ident, "field name").Text
		p.expect(token.Colon, ":")
		ftype := p.parseTypeExpr()
		s.Fields = append(s.Fields, ast.StructField{Name: fname, Type: ftype})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace, "}")
	p.consumeSemi()
	return s
}

func (p *Parser) parseTraitDecl() *ast.Stmt {
	pos := p.cur().Pos
	p.advance() // trait
	name := p.expect(token.Ident, "trait name").Text
	s := &ast.Stmt{Kind: ast.STraitDecl, Pos: pos, Name: name}
	if p.at(token.Colon) {
		p.advance()
		s.SuperTraits = append(s.SuperTraits, p.expect(token.Ident, "supertrait name").Text)
		for p.at(token.Comma) {
			p.advance()
			s.SuperTraits = append(s.SuperTraits, p.expect(token.Ident, "supertrait name").Text)
		}
	}
	p.expect(token.LBrace, "{")
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		s.MethodSigs = append(s.MethodSigs, p.parseFuncDecl())
	}
	p.expect(token.RBrace, "}")
	return s
}

func (p *Parser) parseImplDecl() *ast.Stmt {
	pos := p.cur().Pos
	p.advance() // impl
	first := p.expect(token.Ident, "trait or type name").Text
	s := &ast.Stmt{Kind: ast.SImplDecl, Pos: pos}
	if p.at(token.KwFor) {
		p.advance()
		s.TraitName = first
		s.TypeName = p.expect(token.Ident, "type name").Text
	} else {
		s.TypeName = first
	}
	p.expect(token.LBrace, "{")
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		s.Methods = append(s.Methods, p.parseFuncDecl())
	}
	p.expect(token.RBrace, "}")
	return s
}

func (p *Parser) parseFuncDecl() *ast.Stmt {
	pos := p.cur().Pos
	s := &ast.Stmt{Kind: ast.SFuncDecl, Pos: pos}
	for {
		switch p.cur().Kind {
		case token.KwPub:
			s.Pub = true
			p.advance()
			continue
		case token.KwAsync:
			s.Async = true
			p.advance()
			continue
		case token.KwExtern:
			s.Extern = true
			p.advance()
			continue
		}
		break
	}
	p.expect(token.KwFunc, "func")
	if p.at(token.Lt) {
		s.Generics = p.parseGenerics()
	}
	p.expect(token.Colon, ":")
	s.Name = p.expect(token.Ident, "function name").Text
	p.expect(token.Assign, "=")
	if p.at(token.Star) {
		s.AutoWrap = true
		p.advance()
	}
	s.Type = p.parseTypeExpr()
	p.expect(token.LParen, "(")
	s.Params = p.parseParamList()
	p.expect(token.RParen, ")")
	if p.at(token.LBrace) {
		s.FuncBody = p.parseBlock()
	}
	p.consumeSemi() // trailing ";" required by grammar; also covers trait method signatures with no body
	return s
}

func (p *Parser) parseGenerics() []ast.GenericParam {
	p.advance() // <
	var gens []ast.GenericParam
	for !p.at(token.Gt) && !p.at(token.EOF) {
		g := ast.GenericParam{Name: p.expect(token.Ident, "generic parameter").Text}
		if p.at(token.Colon) {
			p.advance()
			g.Bounds = append(g.Bounds, p.expect(token.Ident, "trait bound").Text)
			for p.at(token.Plus) {
				p.advance()
				g.Bounds = append(g.Bounds, p.expect(token.Ident, "trait bound").Text)
			}
		}
		gens = append(gens, g)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.Gt, ">")
	return gens
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pt := p.parseTypeExpr()
		p.expect(token.Colon, ":")
		name := p.expect(token.Ident, "parameter name").Text
		pr := ast.Param{Type: pt, Name: name}
		if p.at(token.Assign) {
			p.advance()
			pr.Default = p.parseExpr(0)
		}
		params = append(params, pr)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	return params
}

func (p *Parser) parseBlock() *ast.Stmt {
	pos := p.cur().Pos
	p.expect(token.LBrace, "{")
	blk := &ast.Stmt{Kind: ast.SBlock, Pos: pos}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		st := p.parseStmt()
		if st != nil {
			blk.Body = append(blk.Body, st)
		}
	}
	p.expect(token.RBrace, "}")
	return blk
}
