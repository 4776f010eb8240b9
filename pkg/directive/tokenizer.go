package directive

import (
	"strings"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/lerr"
	"github.com/keurnel/lattice/pkg/lexer"
	"github.com/keurnel/lattice/pkg/parser"
)

// keywords recognised after a bare '$' (§4.E). Matched by reading a full
// identifier word and comparing against this table — a longest-match scan
// by construction, since words are read to their natural boundary rather
// than probed keyword-by-keyword in a fixed (and ambiguity-prone) order.
// This directly implements the recommendation in SPEC_FULL.md's resolution
// of the reverse-keyword-scan open question.
var keywords = map[string]bool{
	"if": true, "elif": true, "else": true, "switch": true, "case": true,
	"default": true, "for": true, "with": true, "end": true, "from": true,
	"in": true,
}

// Tokenize scans source into a flat slice of Raw directives.
func Tokenize(source string) ([]Raw, *lerr.Error) {
	s := &scanner{src: source, line: 1}
	return s.run()
}

type scanner struct {
	src  string
	pos  int
	line int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) run() ([]Raw, *lerr.Error) {
	var out []Raw
	var span strings.Builder
	spanLine := s.line

	flush := func() {
		if span.Len() > 0 {
			out = append(out, Raw{Kind: Span, Line: spanLine, Text: span.String()})
			span.Reset()
		}
	}

	for !s.eof() {
		ch := s.src[s.pos]
		if ch != '$' {
			if span.Len() == 0 {
				spanLine = s.line
			}
			if ch == '\n' {
				s.line++
			}
			span.WriteByte(ch)
			s.pos++
			continue
		}

		// ch == '$'
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '$' {
			if span.Len() == 0 {
				spanLine = s.line
			}
			span.WriteByte('$')
			s.pos += 2
			continue
		}

		flush()
		rawLine := s.line
		d, err := s.scanDirective()
		if err != nil {
			return nil, err
		}
		if d != nil {
			d.Line = rawLine
			out = append(out, *d)
		}
	}
	flush()
	return out, nil
}

// scanDirective is called with s.pos at the '$' sigil. It returns nil, nil
// for constructs that produce no directive record (comments).
func (s *scanner) scanDirective() (*Raw, *lerr.Error) {
	s.pos++ // consume '$'
	if s.eof() {
		return nil, lerr.SyntaxErrorf(s.line, "unexpected end of template after '$'")
	}
	switch s.src[s.pos] {
	case '(':
		return nil, s.scanComment()
	case '[':
		return s.scanSub(SubEsc, ']')
	case '{':
		return s.scanSub(SubRaw, '}')
	case '<':
		return s.scanInclude()
	default:
		return s.scanKeyword()
	}
}

func (s *scanner) scanComment() *lerr.Error {
	s.pos++ // consume '('
	for {
		if s.eof() {
			return lerr.SyntaxErrorf(s.line, "unterminated comment")
		}
		if s.src[s.pos] == '\n' {
			s.line++
		}
		if s.src[s.pos] == ')' {
			s.pos++
			return nil
		}
		s.pos++
	}
}

func (s *scanner) scanSub(kind Kind, closing byte) (*Raw, *lerr.Error) {
	s.pos++ // consume '[' or '{'
	node, err := s.parseExpr(string(closing))
	if err != nil {
		return nil, err
	}
	if s.eof() || s.src[s.pos] != closing {
		return nil, lerr.SyntaxErrorf(s.line, "expected closing %q", closing)
	}
	s.pos++
	return &Raw{Kind: kind, Expr1: node}, nil
}

func (s *scanner) scanInclude() (*Raw, *lerr.Error) {
	s.pos++ // consume '<'
	start := s.pos
	for {
		if s.eof() {
			return nil, lerr.SyntaxErrorf(s.line, "unterminated include directive")
		}
		if s.src[s.pos] == '\n' {
			s.line++
		}
		if s.src[s.pos] == '>' {
			path := s.src[start:s.pos]
			s.pos++
			return &Raw{Kind: Include, Text: path}, nil
		}
		s.pos++
	}
}

func (s *scanner) readWord() string {
	start := s.pos
	for !s.eof() && isWordByte(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func (s *scanner) skipInlineSpace() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\r') {
		s.pos++
	}
}

func (s *scanner) scanKeyword() (*Raw, *lerr.Error) {
	word := s.readWord()
	if !keywords[word] || word == "from" || word == "in" {
		return nil, lerr.SyntaxErrorf(s.line, "unknown directive %q", word)
	}
	switch word {
	case "else", "default":
		if err := s.consumeColon(); err != nil {
			return nil, err
		}
		k := Else
		if word == "default" {
			k = Default
		}
		return &Raw{Kind: k}, nil
	case "end":
		return &Raw{Kind: End}, nil
	case "if", "elif", "switch", "case", "with":
		node, err := s.parseColonTerminated()
		if err != nil {
			return nil, err
		}
		k := map[string]Kind{"if": If, "elif": Elif, "switch": Switch, "case": Case, "with": With}[word]
		return &Raw{Kind: k, Expr1: node}, nil
	case "for":
		return s.scanFor()
	default:
		return nil, lerr.SyntaxErrorf(s.line, "unknown directive %q", word)
	}
}

func (s *scanner) consumeColon() *lerr.Error {
	s.skipInlineSpace()
	if s.eof() || s.src[s.pos] != ':' {
		return lerr.SyntaxErrorf(s.line, "expected ':' terminator")
	}
	s.pos++
	s.skipInlineSpace()
	return nil
}

func (s *scanner) parseColonTerminated() (ast.Node, *lerr.Error) {
	node, err := s.parseExpr(":")
	if err != nil {
		return nil, err
	}
	if err := s.consumeColon(); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *scanner) scanFor() (*Raw, *lerr.Error) {
	s.skipInlineSpace()
	ident := s.readWord()
	if ident == "" {
		return nil, lerr.SyntaxErrorf(s.line, "expected loop variable after 'for'")
	}
	s.skipInlineSpace()
	kw := s.readWord()
	switch kw {
	case "from":
		s.skipInlineSpace()
		lowNode, err := s.parseExpr("..")
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(s.src[s.pos:], "..") {
			return nil, lerr.SyntaxErrorf(s.line, "expected '..' in for-range")
		}
		s.pos += 2
		inclusive := false
		if !s.eof() && s.src[s.pos] == '=' {
			inclusive = true
			s.pos++
		}
		s.skipInlineSpace()
		highNode, err := s.parseExpr(":")
		if err != nil {
			return nil, err
		}
		if err := s.consumeColon(); err != nil {
			return nil, err
		}
		kind := ForRangeExc
		if inclusive {
			kind = ForRangeInc
		}
		return &Raw{Kind: kind, Ident: ident, Expr1: lowNode, Expr2: highNode}, nil
	case "in":
		s.skipInlineSpace()
		iterNode, err := s.parseColonTerminated()
		if err != nil {
			return nil, err
		}
		return &Raw{Kind: ForIter, Ident: ident, Expr1: iterNode}, nil
	default:
		return nil, lerr.SyntaxErrorf(s.line, "expected 'from' or 'in' after for-loop variable")
	}
}

// parseExpr lexes and parses a single expression starting at s.pos,
// terminated by term, advancing s.pos/s.line past the parsed expression
// (but not past the terminator itself) on success.
func (s *scanner) parseExpr(term string) (ast.Node, *lerr.Error) {
	lx := lexer.New(s.src, s.pos, s.line, term)
	toks, lerrv := lx.Lex()
	if lerrv != nil {
		return nil, lerr.SyntaxErrorf(lerrv.Line, "%s", lerrv.Error())
	}
	node, perr := parser.Parse(toks)
	if perr != nil {
		return nil, lerr.SyntaxErrorf(perr.Line, "%s", perr.Message)
	}
	s.pos, s.line = lx.Pos(), lx.Line()
	return node, nil
}
