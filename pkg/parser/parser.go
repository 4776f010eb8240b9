// Package parser implements the Expression Parser (§4.C): recursive descent
// with precedence climbing over a token.Token slice, producing an ast.Node
// tree. Errors on first fault, per spec; there is no partial-node cleanup to
// perform since Go is garbage collected (the teacher's C-era "free
// partially-built nodes on error" concern does not apply).
package parser

import (
	"fmt"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/token"
)

// ParseError is a plain data struct carrying the offending line and message,
// mirroring the teacher's ParseError (a non-error-interface data type so
// the caller decides how to surface it) — lattice wraps it into *lattice.Error
// at the package boundary (see parseExpr in pkg/directive).
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%d: %s", e.Line, e.Message) }

func errf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Parse consumes toks (already lexed up to an implicit terminator) and
// returns the single expression they encode. Leftover tokens after a
// complete expression is parsed is a syntax error ("extra tokens in
// expression").
func Parse(toks []token.Token) (ast.Node, *ParseError) {
	p := &parser{toks: toks}
	if len(toks) == 0 {
		return nil, errf(0, "empty expression")
	}
	node, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, errf(p.cur().Line, "extra tokens in expression")
	}
	return node, nil
}

type parser struct {
	toks []token.Token
	pos  int
}

func (p *parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	line := 0
	if len(p.toks) > 0 {
		line = p.toks[len(p.toks)-1].Line
	}
	return token.Token{Kind: token.EOF, Line: line}
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) expect(k token.Kind) (token.Token, *ParseError) {
	if p.cur().Kind != k {
		return token.Token{}, errf(p.cur().Line, "expected %s, got %s", k, p.cur().Kind)
	}
	return p.advance(), nil
}

// --- precedence levels, lowest to highest: ternary > || > && > cmp > bitwise > additive > multiplicative > exp > unary > call > primary

func (p *parser) parseTernary() (ast.Node, *ParseError) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == token.Question {
		line := p.advance().Line
		thenN, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		elseN, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return ast.NewTernary(line, cond, thenN, elseN), nil
	}
	return cond, nil
}

func (p *parser) parseOr() (ast.Node, *ParseError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.OrOr {
		line := p.advance().Line
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, ast.Either, left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Node, *ParseError) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.AndAnd {
		line := p.advance().Line
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, ast.Both, left, right)
	}
	return left, nil
}

var compareOps = map[token.Kind]ast.BinOp{
	token.EqEq: ast.Eq, token.NotEq: ast.Neq,
	token.Lt: ast.Lt, token.LtEq: ast.Lte,
	token.Gt: ast.Gt, token.GtEq: ast.Gte,
}

func (p *parser) parseCompare() (ast.Node, *ParseError) {
	left, err := p.parseBitwise()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := compareOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		line := p.advance().Line
		right, err := p.parseBitwise()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, op, left, right)
	}
}

var bitwiseOps = map[token.Kind]ast.BinOp{
	token.Amp: ast.BitAnd, token.Pipe: ast.BitOr, token.Caret: ast.BitXor,
}

func (p *parser) parseBitwise() (ast.Node, *ParseError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := bitwiseOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		line := p.advance().Line
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, op, left, right)
	}
}

func (p *parser) parseAdditive() (ast.Node, *ParseError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Plus || p.cur().Kind == token.Minus {
		op := ast.Add
		if p.cur().Kind == token.Minus {
			op = ast.Sub
		}
		line := p.advance().Line
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, op, left, right)
	}
	return left, nil
}

var multOps = map[token.Kind]ast.BinOp{
	token.Star: ast.Mul, token.Slash: ast.Div, token.SlashSlash: ast.Quot, token.Percent: ast.Mod,
}

func (p *parser) parseMultiplicative() (ast.Node, *ParseError) {
	left, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		line := p.advance().Line
		right, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, op, left, right)
	}
}

func (p *parser) parseExp() (ast.Node, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.StarStar {
		line := p.advance().Line
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(line, ast.Exp, left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Node, *ParseError) {
	switch p.cur().Kind {
	case token.Plus:
		line := p.advance().Line
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(line, ast.Pos, n), nil
	case token.Minus:
		line := p.advance().Line
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(line, ast.Neg, n), nil
	case token.Not:
		line := p.advance().Line
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(line, ast.Not, n), nil
	case token.Tilde:
		line := p.advance().Line
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(line, ast.Comp, n), nil
	default:
		return p.parseCall()
	}
}

func (p *parser) parseCall() (ast.Node, *ParseError) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.Dot:
			line := p.advance().Line
			nameTok, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			if p.cur().Kind == token.LParen {
				p.advance()
				args, err := p.parseArgList(token.RParen)
				if err != nil {
					return nil, err
				}
				n = ast.NewMethod(line, n, nameTok.Literal, args)
			} else {
				n = ast.NewLookup(line, n, nameTok.Literal)
			}
		case token.LBracket:
			line := p.advance().Line
			low, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			var high ast.Node
			if p.cur().Kind == token.Comma {
				p.advance()
				high, err = p.parseTernary()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			n = ast.NewIndex(line, n, low, high)
		default:
			return n, nil
		}
	}
}

func (p *parser) parseArgList(closing token.Kind) ([]ast.Node, *ParseError) {
	var args []ast.Node
	if p.cur().Kind == closing {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Kind == token.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Node, *ParseError) {
	t := p.cur()
	switch t.Kind {
	case token.Null:
		p.advance()
		return ast.NewNull(t.Line), nil
	case token.True:
		p.advance()
		return ast.NewBool(t.Line, true), nil
	case token.False:
		p.advance()
		return ast.NewBool(t.Line, false), nil
	case token.Number:
		p.advance()
		n, perr := parseNumberLiteral(t.Literal)
		if perr != nil {
			return nil, errf(t.Line, "invalid numeric literal %q: %v", t.Literal, perr)
		}
		return ast.NewNumber(t.Line, n), nil
	case token.String:
		p.advance()
		return ast.NewString(t.Line, t.Literal), nil
	case token.At:
		p.advance()
		return ast.NewRoot(t.Line), nil
	case token.Ident:
		p.advance()
		return ast.NewIdent(t.Line, t.Literal), nil
	case token.LParen:
		p.advance()
		n, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return n, nil
	case token.LBracket:
		p.advance()
		items, err := p.parseArgList(token.RBracket)
		if err != nil {
			return nil, err
		}
		return ast.NewArray(t.Line, items), nil
	case token.LBrace:
		p.advance()
		var entries []ast.ObjectEntry
		if p.cur().Kind != token.RBrace {
			for {
				k, err := p.parseTernary()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.Colon); err != nil {
					return nil, err
				}
				v, err := p.parseTernary()
				if err != nil {
					return nil, err
				}
				entries = append(entries, ast.ObjectEntry{Key: k, Value: v})
				if p.cur().Kind == token.Comma {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
		return ast.NewObject(t.Line, entries), nil
	default:
		return nil, errf(t.Line, "unexpected token %s in expression", t.Kind)
	}
}
