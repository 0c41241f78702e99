package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a syntax error in a filter string.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads a filter written as text into an Expr.
//
//	filter  = or
//	or      = and { ("OR" | "||") and }
//	and     = unary { ("AND" | "&&") unary }
//	unary   = ("NOT" | "!") unary | "(" or ")" | operand [ cmpop operand ]
//	operand = path [ "(" args ")" ] | number | string | TRUE | FALSE | NULL
//
// Integers parse to int64 and decimals to float64.
func Parse(input string) (Expr, error) {
	p := &parser{lexer: NewLexer(input)}
	p.next()
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, p.errorf("unexpected %q", p.cur.Literal)
	}
	return e, nil
}

type parser struct {
	lexer *Lexer
	cur   Token
}

func (p *parser) next() {
	p.cur = p.lexer.NextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.cur.Offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Conn: ConnOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Logical{Conn: ConnAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisons = map[TokenType]Op{
	TokenEq: OpEq,
	TokenNe: OpNe,
	TokenLt: OpLt,
	TokenLe: OpLe,
	TokenGt: OpGt,
	TokenGe: OpGe,
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.cur.Type {
	case TokenNot:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Negation{Operand: operand}, nil
	case TokenLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, p.errorf("expected ')'")
		}
		p.next()
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := comparisons[p.cur.Type]
	if !ok {
		if _, isCall := left.(*Call); isCall {
			return left, nil
		}
		return nil, p.errorf("expected comparison operator after %s", left)
	}
	p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Compare{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseOperand() (Expr, error) {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		p.next()
		return numberConstant(tok.Literal, false)
	case TokenMinus:
		p.next()
		if p.cur.Type != TokenNumber {
			return nil, p.errorf("expected number after '-'")
		}
		lit := p.cur.Literal
		p.next()
		return numberConstant(lit, true)
	case TokenString:
		p.next()
		return &Constant{Value: tok.Literal}, nil
	case TokenTrue, TokenFalse:
		p.next()
		return &Constant{Value: tok.Type == TokenTrue}, nil
	case TokenNull:
		p.next()
		return &Constant{Value: nil}, nil
	case TokenIdent:
		return p.parsePath()
	case TokenEOF:
		return nil, p.errorf("unexpected end of filter")
	default:
		return nil, p.errorf("unexpected %q", tok.Literal)
	}
}

// parsePath reads a dotted member path; a trailing "(" turns its last
// segment into a method call on the preceding path.
func (p *parser) parsePath() (Expr, error) {
	path := []string{p.cur.Literal}
	p.next()
	for p.cur.Type == TokenDot {
		p.next()
		if p.cur.Type != TokenIdent {
			return nil, p.errorf("expected identifier after '.'")
		}
		path = append(path, p.cur.Literal)
		p.next()
	}
	if p.cur.Type != TokenLParen {
		return &Member{Path: path}, nil
	}

	p.next()
	var args []Expr
	for p.cur.Type != TokenRParen {
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == TokenComma {
			p.next()
			continue
		}
		if p.cur.Type != TokenRParen {
			return nil, p.errorf("expected ',' or ')' in argument list")
		}
	}
	p.next()

	call := &Call{Method: path[len(path)-1], Args: args}
	if len(path) > 1 {
		call.Target = &Member{Path: path[:len(path)-1]}
	}
	return call, nil
}

func numberConstant(lit string, negative bool) (Expr, error) {
	if negative {
		lit = "-" + lit
	}
	if !strings.ContainsAny(lit, ".eE") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return &Constant{Value: n}, nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("invalid number %q", lit)}
	}
	return &Constant{Value: f}, nil
}
