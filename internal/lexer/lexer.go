// Package lexer implements a forward scanner: it turns the preprocessor's
// expanded buffer into a token stream, recognizing the full 22-level
// operator set, numeric literals in decimal/hex/binary, comments, and
// template strings with ${...}/&{...} interpolation markers preserved for
// the parser.
//
// The scanner follows the same forward, position-tracking,
// error-token-then-resume discipline go/scanner itself uses: a lexical
// error appends a diagnostic and resumes scanning rather than aborting.
package lexer

import (
	"strings"

	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/token"
)

// Lexer scans one source file into tokens.
type Lexer struct {
	file *source.File
	src  string
	off  int
	bag  *diag.Bag
}

func New(file *source.File, bag *diag.Bag) *Lexer {
	return &Lexer{file: file, src: file.Text, bag: bag}
}

// Tokenize scans the whole file and returns its token stream, terminated by
// an EOF token. Lexical errors append to the Bag and resume scanning at the
// next whitespace boundary, so a single call can still
// return a complete, if partly erroneous, stream.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks
}

func (l *Lexer) pos() source.Pos { return l.file.Position(l.off) }

func (l *Lexer) peekByte() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *Lexer) advance() byte {
	b := l.src[l.off]
	l.off++
	return b
}

func (l *Lexer) skipTrivia() {
	for l.off < len(l.src) {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.off++
		case c == '/' && l.peekByteAt(1) == '/':
			for l.off < len(l.src) && l.peekByte() != '\n' {
				l.off++
			}
		case c == '/' && l.peekByteAt(1) == '*':
			l.off += 2
			for l.off < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.off++
			}
			if l.off < len(l.src) {
				l.off += 2
			}
		default:
			return
		}
	}
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool  { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isAlnum(b byte) bool  { return isAlpha(b) || isDigit(b) }
func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (l *Lexer) resumeAtWhitespace() {
	for l.off < len(l.src) && l.peekByte() != ' ' && l.peekByte() != '\t' && l.peekByte() != '\n' {
		l.off++
	}
}

func (l *Lexer) errorToken(pos source.Pos, msg string) token.Token {
	l.bag.Errorf(pos, diag.CodeLex, "%s", msg)
	l.resumeAtWhitespace()
	return token.Token{Kind: token.Error, Text: msg, Pos: pos}
}

func (l *Lexer) next() token.Token {
	l.skipTrivia()
	pos := l.pos()
	if l.off >= len(l.src) {
		return token.Token{Kind: token.EOF, Pos: pos}
	}
	c := l.peekByte()

	switch {
	case isAlpha(c):
		return l.scanIdent(pos)
	case isDigit(c):
		return l.scanNumber(pos)
	case c == '"':
		return l.scanString(pos, false)
	case c == '`':
		return l.scanTemplateString(pos)
	case c == '\'':
		return l.scanChar(pos)
	}

	return l.scanOperator(pos)
}

func (l *Lexer) scanIdent(pos source.Pos) token.Token {
	start := l.off
	for l.off < len(l.src) && isAlnum(l.peekByte()) {
		l.off++
	}
	text := l.src[start:l.off]
	return token.Token{Kind: token.LookupIdent(text), Text: text, Pos: pos}
}

func (l *Lexer) scanNumber(pos source.Pos) token.Token {
	start := l.off
	if l.peekByte() == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
		l.off += 2
		for l.off < len(l.src) && isHex(l.peekByte()) {
			l.off++
		}
		return token.Token{Kind: token.IntLit, Text: l.src[start:l.off], Pos: pos}
	}
	if l.peekByte() == '0' && (l.peekByteAt(1) == 'b' || l.peekByteAt(1) == 'B') {
		l.off += 2
		for l.off < len(l.src) && (l.peekByte() == '0' || l.peekByte() == '1') {
			l.off++
		}
		return token.Token{Kind: token.IntLit, Text: l.src[start:l.off], Pos: pos}
	}
	for l.off < len(l.src) && isDigit(l.peekByte()) {
		l.off++
	}
	isFloat := false
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.off++
		for l.off < len(l.src) && isDigit(l.peekByte()) {
			l.off++
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		isFloat = true
		l.off++
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.off++
		}
		for l.off < len(l.src) && isDigit(l.peekByte()) {
			l.off++
		}
	}
	kind := token.IntLit
	if isFloat {
		kind = token.FloatLit
	}
	return token.Token{Kind: kind, Text: l.src[start:l.off], Pos: pos}
}

func (l *Lexer) scanString(pos source.Pos, _ bool) token.Token {
	l.advance() // opening quote
	var sb strings.Builder
	for l.off < len(l.src) && l.peekByte() != '"' {
		c := l.advance()
		if c == '\\' && l.off < len(l.src) {
			sb.WriteByte(c)
			sb.WriteByte(l.advance())
			continue
		}
		if c == '\n' {
			return l.errorToken(pos, "string literal not terminated")
		}
		sb.WriteByte(c)
	}
	if l.off >= len(l.src) {
		return l.errorToken(pos, "string literal not terminated")
	}
	l.advance() // closing quote
	return token.Token{Kind: token.StringLit, Text: sb.String(), Pos: pos}
}

// scanTemplateString scans a backtick template string, preserving ${...} and
// &{...} interpolation markers verbatim in the token text for the parser to
// split.
func (l *Lexer) scanTemplateString(pos source.Pos) token.Token {
	l.advance() // opening backtick
	var sb strings.Builder
	depth := 0
	for l.off < len(l.src) {
		c := l.peekByte()
		if c == '`' && depth == 0 {
			l.advance()
			return token.Token{Kind: token.TemplateStringLit, Text: sb.String(), Pos: pos}
		}
		if (c == '$' || c == '&') && l.peekByteAt(1) == '{' {
			depth++
			sb.WriteByte(l.advance())
			sb.WriteByte(l.advance())
			continue
		}
		if c == '}' && depth > 0 {
			depth--
			sb.WriteByte(l.advance())
			continue
		}
		sb.WriteByte(l.advance())
	}
	return l.errorToken(pos, "template string literal not terminated")
}

func (l *Lexer) scanChar(pos source.Pos) token.Token {
	l.advance() // opening quote
	var sb strings.Builder
	for l.off < len(l.src) && l.peekByte() != '\'' {
		c := l.advance()
		sb.WriteByte(c)
		if c == '\\' && l.off < len(l.src) {
			sb.WriteByte(l.advance())
		}
	}
	if l.off >= len(l.src) {
		return l.errorToken(pos, "character literal not terminated")
	}
	l.advance()
	return token.Token{Kind: token.CharLit, Text: sb.String(), Pos: pos}
}

// three, two, then one-byte operator tables, longest match first.
var threeByte = map[string]token.Kind{
	"<=>": token.Spaceship,
	"...": token.DotDotDot,
	"<<=": token.ShlAssign,
	">>=": token.ShrAssign,
}

var twoByte = map[string]token.Kind{
	"|>": token.Pipe2,
	"<|": token.LArrowPipe,
	"??": token.QuestionQuestion,
	"?.": token.QDot,
	"==": token.EqEq,
	"!=": token.NotEq,
	"<=": token.LtEq,
	">=": token.GtEq,
	"&&": token.AndAnd,
	"||": token.OrOr,
	"<<": token.Shl,
	">>": token.Shr,
	"++": token.Inc,
	"--": token.Dec,
	"->": token.Arrow,
	"=>": token.FatArrow,
	"+=": token.PlusAssign,
	"-=": token.MinusAssign,
	"*=": token.StarAssign,
	"/=": token.SlashAssign,
	"%=": token.PercentAssign,
	"&=": token.AndAssign,
	"|=": token.OrAssign,
	"^=": token.XorAssign,
	"..": token.DotDot,
}

var oneByte = map[byte]token.Kind{
	'(': token.LParen, ')': token.RParen,
	'{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
	',': token.Comma, ';': token.Semi, ':': token.Colon, '.': token.Dot,
	'=': token.Assign,
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'<': token.Lt, '>': token.Gt,
	'&': token.And, '|': token.Or, '^': token.Xor, '~': token.Tilde, '!': token.Bang,
	'@': token.At, '#': token.Pin, '$': token.Iter,
	'?': token.Unwrap,
}

func (l *Lexer) scanOperator(pos source.Pos) token.Token {
	rest := l.src[l.off:]
	if len(rest) >= 3 {
		if k, ok := threeByte[rest[:3]]; ok {
			l.off += 3
			return token.Token{Kind: k, Text: rest[:3], Pos: pos}
		}
	}
	if len(rest) >= 2 {
		if k, ok := twoByte[rest[:2]]; ok {
			l.off += 2
			return token.Token{Kind: k, Text: rest[:2], Pos: pos}
		}
	}
	if k, ok := oneByte[rest[0]]; ok {
		l.off++
		return token.Token{Kind: k, Text: rest[:1], Pos: pos}
	}
	bad := string(rest[0])
	l.off++
	return l.errorToken(pos, "unexpected character "+bad)
}
