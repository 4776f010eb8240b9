package parser

import (
	"testing"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/lexer"
)

func mustParse(t *testing.T, src string) ast.Node {
	t.Helper()
	l := lexer.New(src, 0, 1, "")
	toks, lerr := l.Lex()
	if lerr != nil {
		t.Fatalf("lex(%q): %s", src, lerr.Error())
	}
	node, perr := Parse(toks)
	if perr != nil {
		t.Fatalf("parse(%q): %s", src, perr.Error())
	}
	return node
}

func TestParsePrecedenceArithmeticOverComparison(t *testing.T) {
	// "1 + 2 == 3" should parse as (1 + 2) == 3, not 1 + (2 == 3).
	node := mustParse(t, "1 + 2 == 3")
	bin, ok := node.(*ast.Binary)
	if !ok || bin.Op != ast.Eq {
		t.Fatalf("expected top-level ==, got %#v", node)
	}
	left, ok := bin.Left.(*ast.Binary)
	if !ok || left.Op != ast.Add {
		t.Fatalf("expected left side to be +, got %#v", bin.Left)
	}
}

func TestParseExponentIsLeftAssociative(t *testing.T) {
	// "2 ** 3 ** 2" should parse as (2 ** 3) ** 2.
	node := mustParse(t, "2 ** 3 ** 2")
	bin, ok := node.(*ast.Binary)
	if !ok || bin.Op != ast.Exp {
		t.Fatalf("expected top-level **, got %#v", node)
	}
	left, ok := bin.Left.(*ast.Binary)
	if !ok || left.Op != ast.Exp {
		t.Fatalf("expected left side to be **, got %#v", bin.Left)
	}
}

func TestParseLookupVsMethod(t *testing.T) {
	node := mustParse(t, "a.b")
	if _, ok := node.(*ast.Lookup); !ok {
		t.Fatalf("a.b: expected *ast.Lookup, got %#v", node)
	}
	node = mustParse(t, "a.b(1, 2)")
	m, ok := node.(*ast.Method)
	if !ok {
		t.Fatalf("a.b(1,2): expected *ast.Method, got %#v", node)
	}
	if len(m.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(m.Args))
	}
}

func TestParseIndexSingleAndRange(t *testing.T) {
	node := mustParse(t, "a[0]")
	idx, ok := node.(*ast.Index)
	if !ok || idx.High != nil {
		t.Fatalf("a[0]: expected single-index form, got %#v", node)
	}
	node = mustParse(t, "a[0, 2]")
	idx, ok = node.(*ast.Index)
	if !ok || idx.High == nil {
		t.Fatalf("a[0,2]: expected range-index form, got %#v", node)
	}
}

func TestParseTernary(t *testing.T) {
	node := mustParse(t, "a ? 1 : 2")
	tern, ok := node.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected *ast.Ternary, got %#v", node)
	}
	if _, ok := tern.Then.(*ast.Number); !ok {
		t.Errorf("expected Then to be a number literal")
	}
}

func TestParseExtraTokensIsError(t *testing.T) {
	l := lexer.New("1 2", 0, 1, "")
	toks, _ := l.Lex()
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected an error for trailing tokens")
	}
}

func TestParseEmptyIsError(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected an error for an empty token stream")
	}
}
