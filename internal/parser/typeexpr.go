package parser

import (
	"strconv"
	"strings"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/token"
)

// numeric type keyword prefixes recognized by width-suffix parsing, e.g.
// int32, uint8, flt64, tbb16.
var widthPrefixes = []struct {
	prefix string
	kind   ast.TypeKind
}{
	{"int", ast.TSignedInt},
	{"uint", ast.TUnsignedInt},
	{"flt", ast.TFloat},
	{"tbb", ast.TTBB},
}

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	pos := p.cur().Pos
	switch p.cur().Kind {
	case token.At:
		p.advance()
		flag := ast.PointerPlain
		switch p.cur().Kind {
		case token.KwWild:
			flag = ast.PointerWild
			p.advance()
		case token.KwWildX:
			flag = ast.PointerWildX
			p.advance()
		case token.Pin:
			flag = ast.PointerPinned
			p.advance()
		}
		pointee := p.parseTypeExpr()
		return &ast.TypeExpr{Kind: ast.TPointer, Pos: pos, Pointee: pointee, PtrFlag: flag}
	case token.LBracket:
		p.advance()
		var lenExpr *ast.Expr
		if !p.at(token.RBracket) {
			lenExpr = p.parseExpr(0)
		}
		p.expect(token.RBracket, "]")
		elem := p.parseTypeExpr()
		return &ast.TypeExpr{Kind: ast.TArray, Pos: pos, ArrayLen: lenExpr, Elem: elem}
	case token.KwDyn:
		p.advance()
		return &ast.TypeExpr{Kind: ast.TDyn, Pos: pos}
	case token.KwFunc:
		return p.parseFuncTypeExpr()
	case token.Ident:
		return p.parseIdentTypeExpr()
	default:
		t := p.advance()
		p.bag.Errorf(t.Pos, diag.CodeParse, "expected type, found %q", t.Text)
		return &ast.TypeExpr{Kind: ast.TError, Pos: pos}
	}
}

func (p *Parser) parseFuncTypeExpr() *ast.TypeExpr {
	pos := p.advance().Pos
	p.expect(token.LParen, "(")
	var params []*ast.TypeExpr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		params = append(params, p.parseTypeExpr())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RParen, ")")
	te := &ast.TypeExpr{Kind: ast.TFunction, Pos: pos, Params: params}
	if p.at(token.Arrow) {
		p.advance()
		te.Return = p.parseTypeExpr()
	}
	return te
}

func (p *Parser) parseIdentTypeExpr() *ast.TypeExpr {
	t := p.advance()
	pos := t.Pos
	name := t.Text

	switch name {
	case "void":
		return &ast.TypeExpr{Kind: ast.TVoid, Pos: pos}
	case "bool":
		return &ast.TypeExpr{Kind: ast.TBool, Pos: pos}
	case "string":
		return &ast.TypeExpr{Kind: ast.TString, Pos: pos}
	}

	for _, wp := range widthPrefixes {
		if strings.HasPrefix(name, wp.prefix) {
			if bits, err := strconv.Atoi(name[len(wp.prefix):]); err == nil {
				return &ast.TypeExpr{Kind: wp.kind, Pos: pos, Bits: bits}
			}
		}
	}

	if strings.HasPrefix(name, "vec") {
		if dim, err := strconv.Atoi(name[3:]); err == nil {
			if p.at(token.Lt) {
				p.advance()
				elem := p.parseTypeExpr()
				p.expect(token.Gt, ">")
				return &ast.TypeExpr{Kind: ast.TVector, Pos: pos, VectorDim: dim, Elem: elem}
			}
			return &ast.TypeExpr{Kind: ast.TVector, Pos: pos, VectorDim: dim, Elem: &ast.TypeExpr{Kind: ast.TFloat, Bits: 32}}
		}
	}

	if name == "result" && p.at(token.Lt) {
		p.advance()
		val := p.parseTypeExpr()
		p.expect(token.Gt, ">")
		return &ast.TypeExpr{Kind: ast.TResult, Pos: pos, Value: val}
	}

	if name == "future" && p.at(token.Lt) {
		p.advance()
		val := p.parseTypeExpr()
		p.expect(token.Gt, ">")
		return &ast.TypeExpr{Kind: ast.TFuture, Pos: pos, Value: val}
	}

	te := &ast.TypeExpr{Kind: ast.TNamed, Pos: pos, Name: name}
	if p.at(token.Lt) {
		p.advance()
		for !p.at(token.Gt) && !p.at(token.EOF) {
			te.TypeArgs = append(te.TypeArgs, p.parseTypeExpr())
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.Gt, ">")
	}
	return te
}
