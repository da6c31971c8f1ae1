package preprocess

import (
	"strconv"
	"strings"

	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
)

// A small recursive-descent integer-expression evaluator for %if/%elif/%rep
// counts: + - * / % < > <= >= == != && || ! ( ).

type ifTok struct {
	text string
}

func tokenizeIfExpr(s string) []ifTok {
	var toks []ifTok
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case strings.HasPrefix(s[i:], "<=") || strings.HasPrefix(s[i:], ">=") ||
			strings.HasPrefix(s[i:], "==") || strings.HasPrefix(s[i:], "!=") ||
			strings.HasPrefix(s[i:], "&&") || strings.HasPrefix(s[i:], "||"):
			toks = append(toks, ifTok{s[i : i+2]})
			i += 2
		case strings.ContainsRune("+-*/%<>()!", rune(c)):
			toks = append(toks, ifTok{string(c)})
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			toks = append(toks, ifTok{s[i:j]})
			i = j
		default:
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			toks = append(toks, ifTok{s[i:j]})
			i = j
		}
	}
	return toks
}

type ifExprEval struct {
	toks []ifTok
	pos  int
	bag  *diag.Bag
	diagPos source.Pos
}

func (e *ifExprEval) peek() string {
	if e.pos >= len(e.toks) {
		return ""
	}
	return e.toks[e.pos].text
}

func (e *ifExprEval) next() string {
	t := e.peek()
	e.pos++
	return t
}

func (e *ifExprEval) parseOr() int64 {
	v := e.parseAnd()
	for e.peek() == "||" {
		e.next()
		r := e.parseAnd()
		if v != 0 || r != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v
}

func (e *ifExprEval) parseAnd() int64 {
	v := e.parseCmp()
	for e.peek() == "&&" {
		e.next()
		r := e.parseCmp()
		if v != 0 && r != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v
}

func (e *ifExprEval) parseCmp() int64 {
	v := e.parseAdd()
	for {
		op := e.peek()
		switch op {
		case "<", ">", "<=", ">=", "==", "!=":
			e.next()
			r := e.parseAdd()
			v = boolToInt(compare(v, r, op))
		default:
			return v
		}
	}
}

func compare(a, b int64, op string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (e *ifExprEval) parseAdd() int64 {
	v := e.parseMul()
	for {
		op := e.peek()
		if op != "+" && op != "-" {
			return v
		}
		e.next()
		r := e.parseMul()
		if op == "+" {
			v += r
		} else {
			v -= r
		}
	}
}

func (e *ifExprEval) parseMul() int64 {
	v := e.parseUnary()
	for {
		op := e.peek()
		if op != "*" && op != "/" && op != "%" {
			return v
		}
		e.next()
		r := e.parseUnary()
		switch op {
		case "*":
			v *= r
		case "/":
			if r == 0 {
				if e.bag != nil {
					e.bag.Errorf(e.diagPos, diag.CodePreprocess, "division by zero in %%if expression")
				}
				v = 0
			} else {
				v /= r
			}
		case "%":
			if r == 0 {
				v = 0
			} else {
				v %= r
			}
		}
	}
}

func (e *ifExprEval) parseUnary() int64 {
	switch e.peek() {
	case "!":
		e.next()
		return boolToInt(e.parseUnary() == 0)
	case "-":
		e.next()
		return -e.parseUnary()
	case "(":
		e.next()
		v := e.parseOr()
		if e.peek() == ")" {
			e.next()
		}
		return v
	default:
		t := e.next()
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			// undefined constant (or bare identifier not caught by
			// expandConstants) evaluates to 0
			return 0
		}
		return n
	}
}
