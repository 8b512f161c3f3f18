package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/tanema/typefence/src/terrors"
)

type (
	tokenKind int
	token     struct {
		kind tokenKind
		str  string
		ival int64
		fval float64
	}
	parser struct {
		tokens []token
		pos    int
		ns     Namespace
		vars   map[string]*Var
	}
)

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenInt
	tokenFloat
	tokenVar      // $NAME
	tokenOpenBrk  // [
	tokenCloseBrk // ]
	tokenOpenPrn  // (
	tokenClosePrn // )
	tokenComma
	tokenPipe
	tokenArrow    // ->
	tokenEllipsis // ...
	tokenEOF
)

// Parse parses a textual type expression like "dict[str, int | none]" or
// "(int, str) -> bool". Identifiers that are not builtin become forward
// references against ns. "$NAME" produces a type variable; the same name maps
// to the same variable within one parse.
func Parse(src string, ns Namespace) (Expr, error) {
	tokens, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, ns: ns, vars: map[string]*Var{}}
	expr, perr := p.union()
	if perr != nil {
		return nil, perr
	}
	if p.peek().kind != tokenEOF {
		return nil, p.errf("unexpected %q after type expression", p.peek().str)
	}
	return expr, nil
}

func scan(src string) ([]token, error) {
	tokens := []token{}
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '[':
			tokens = append(tokens, token{kind: tokenOpenBrk, str: "["})
			i++
		case c == ']':
			tokens = append(tokens, token{kind: tokenCloseBrk, str: "]"})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenOpenPrn, str: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenClosePrn, str: ")"})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokenComma, str: ","})
			i++
		case c == '|':
			tokens = append(tokens, token{kind: tokenPipe, str: "|"})
			i++
		case strings.HasPrefix(src[i:], "->"):
			tokens = append(tokens, token{kind: tokenArrow, str: "->"})
			i += 2
		case strings.HasPrefix(src[i:], "..."):
			tokens = append(tokens, token{kind: tokenEllipsis, str: "..."})
			i += 3
		case c == '$':
			start := i + 1
			i = scanIdent(src, start)
			if i == start {
				return nil, scanErr("expected a name after $")
			}
			tokens = append(tokens, token{kind: tokenVar, str: src[start:i]})
		case c == '"' || c == '\'':
			end := strings.IndexRune(src[i+1:], c)
			if end < 0 {
				return nil, scanErr("unterminated string")
			}
			tokens = append(tokens, token{kind: tokenString, str: src[i+1 : i+1+end]})
			i += end + 2
		case unicode.IsDigit(c) || c == '-':
			start := i
			i++
			isFloat := false
			for i < len(src) && (unicode.IsDigit(rune(src[i])) || src[i] == '.') {
				isFloat = isFloat || src[i] == '.'
				i++
			}
			if isFloat {
				fval, err := strconv.ParseFloat(src[start:i], 64)
				if err != nil {
					return nil, scanErr("malformed number %q", src[start:i])
				}
				tokens = append(tokens, token{kind: tokenFloat, str: src[start:i], fval: fval})
			} else {
				ival, err := strconv.ParseInt(src[start:i], 10, 64)
				if err != nil {
					return nil, scanErr("malformed number %q", src[start:i])
				}
				tokens = append(tokens, token{kind: tokenInt, str: src[start:i], ival: ival})
			}
		case unicode.IsLetter(c) || c == '_':
			start := i
			i = scanIdent(src, i)
			tokens = append(tokens, token{kind: tokenIdent, str: src[start:i]})
		default:
			return nil, scanErr("unexpected character %q", c)
		}
	}
	return append(tokens, token{kind: tokenEOF, str: "<eof>"}), nil
}

func scanIdent(src string, i int) int {
	for i < len(src) {
		c := rune(src[i])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '.' {
			break
		}
		i++
	}
	return i
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, *terrors.Error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.errf("expected %s but found %q", what, tok.str)
	}
	return tok, nil
}

func (p *parser) union() (Expr, *terrors.Error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	alts := []Expr{first}
	for p.peek().kind == tokenPipe {
		p.next()
		alt, err := p.term()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return UnionOf(alts...), nil
}

func (p *parser) term() (Expr, *terrors.Error) {
	switch tok := p.next(); tok.kind {
	case tokenOpenPrn:
		return p.callable()
	case tokenVar:
		if v, seen := p.vars[tok.str]; seen {
			return v, nil
		}
		v := NewVar(tok.str)
		p.vars[tok.str] = v
		return v, nil
	case tokenIdent:
		if p.peek().kind == tokenOpenBrk {
			return p.generic(tok.str)
		}
		if t, isBuiltin := DefaultDefns[tok.str]; isBuiltin {
			return t, nil
		}
		return RefTo(tok.str, p.ns), nil
	default:
		return nil, p.errf("expected a type but found %q", tok.str)
	}
}

func (p *parser) callable() (Expr, *terrors.Error) {
	params := []Expr{}
	for p.peek().kind != tokenClosePrn {
		if p.peek().kind == tokenEllipsis && len(params) == 0 {
			p.next()
			params = nil
			break
		}
		param, err := p.union()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.peek().kind != tokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokenClosePrn, ")"); err != nil {
		return nil, err
	}
	if p.peek().kind != tokenArrow {
		// plain grouping like (int | str)
		if params == nil || len(params) != 1 {
			return nil, p.errf("expected -> after parameter list")
		}
		return params[0], nil
	}
	p.next()
	ret, err := p.term()
	if err != nil {
		return nil, err
	}
	return NewCallable(params, ret), nil
}

func (p *parser) generic(name string) (Expr, *terrors.Error) {
	if _, err := p.expect(tokenOpenBrk, "["); err != nil {
		return nil, err
	}
	if name == "literal" {
		return p.literal()
	}
	args := []Expr{}
	variadic := false
	for {
		if p.peek().kind == tokenEllipsis {
			p.next()
			variadic = true
			break
		}
		arg, err := p.union()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().kind != tokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokenCloseBrk, "]"); err != nil {
		return nil, err
	}

	switch name {
	case "list", "set":
		if len(args) != 1 || variadic {
			return nil, p.errf("%s takes exactly one type parameter", name)
		}
		if name == "list" {
			return ListOf(args[0]), nil
		}
		return SetOf(args[0]), nil
	case "dict":
		if len(args) != 2 || variadic {
			return nil, p.errf("dict takes a key and a value type parameter")
		}
		return DictOf(args[0], args[1]), nil
	case "tuple":
		if variadic {
			if len(args) == 0 {
				return nil, p.errf("a variadic tuple needs a tail type")
			}
			return VariadicTuple(args[len(args)-1], args[:len(args)-1]...), nil
		}
		return TupleOf(args...), nil
	default:
		return nil, p.errf("%q cannot be parameterized", name)
	}
}

func (p *parser) literal() (Expr, *terrors.Error) {
	vals := []any{}
	for {
		switch tok := p.next(); tok.kind {
		case tokenString:
			vals = append(vals, tok.str)
		case tokenInt:
			vals = append(vals, tok.ival)
		case tokenFloat:
			vals = append(vals, tok.fval)
		case tokenIdent:
			switch tok.str {
			case "true":
				vals = append(vals, true)
			case "false":
				vals = append(vals, false)
			case "none":
				vals = append(vals, nil)
			default:
				return nil, p.errf("%q is not a literal value", tok.str)
			}
		default:
			return nil, p.errf("expected a literal value but found %q", tok.str)
		}
		if p.peek().kind != tokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokenCloseBrk, "]"); err != nil {
		return nil, err
	}
	return LiteralOf(vals...), nil
}

func (p *parser) errf(format string, args ...any) *terrors.Error {
	return &terrors.Error{Kind: terrors.ParseErr, Err: fmt.Errorf(format, args...)}
}

func scanErr(format string, args ...any) *terrors.Error {
	return &terrors.Error{Kind: terrors.ParseErr, Err: fmt.Errorf(format, args...)}
}
