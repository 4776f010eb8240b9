package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keurnel/lattice/internal/jsonvalue"
	"github.com/keurnel/lattice/pkg/eval"
	"github.com/keurnel/lattice/pkg/lexer"
	"github.com/keurnel/lattice/pkg/parser"
	"github.com/keurnel/lattice/pkg/value"
)

func evalExpr(t *testing.T, expr, rootJSON string) value.Value {
	t.Helper()
	l := lexer.New(expr, 0, 1, "")
	toks, lerr := l.Lex()
	require.Nil(t, lerr)
	node, perr := parser.Parse(toks)
	require.Nil(t, perr)

	cap := jsonvalue.New()
	root, err := cap.Parse(rootJSON)
	require.NoError(t, err)
	env := eval.Env{Cap: cap, Root: root, Scope: root}
	v, everr := eval.Eval(node, env)
	require.Nil(t, everr)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, "1 + 2 * 3", "{}")
	assert.Equal(t, float64(7), cap.AsNumber(v))
}

func TestEvalStringMethodsLowerUpper(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, `"Hi".upper()`, "{}")
	assert.Equal(t, "HI", cap.AsString(v))

	v = evalExpr(t, `"Hi".lower()`, "{}")
	assert.Equal(t, "hi", cap.AsString(v))
}

func TestEvalNumberOfUnparseableStringIsZero(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, `"not a number".number()`, "{}")
	assert.Equal(t, float64(0), cap.AsNumber(v))
}

func TestEvalRoundHalfAwayFromZero(t *testing.T) {
	cap := jsonvalue.New()
	assert.Equal(t, float64(3), cap.AsNumber(evalExpr(t, "2.5.round()", "{}")))
	assert.Equal(t, float64(-3), cap.AsNumber(evalExpr(t, "(-2.5).round()", "{}")))
}

func TestEvalIdentLookupFromScope(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, "name", `{"name":"ada"}`)
	assert.Equal(t, "ada", cap.AsString(v))
}

func TestEvalUndefinedIdentIsNameError(t *testing.T) {
	l := lexer.New("missing", 0, 1, "")
	toks, _ := l.Lex()
	node, _ := parser.Parse(toks)
	cap := jsonvalue.New()
	root, _ := cap.Parse(`{}`)
	env := eval.Env{Cap: cap, Root: root, Scope: root}
	_, err := eval.Eval(node, env)
	require.NotNil(t, err)
}

func TestEvalContainsAndFind(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, `items.contains(2)`, `{"items":[1,2,3]}`)
	assert.True(t, cap.AsBool(v))

	v = evalExpr(t, `items.find(2)`, `{"items":[1,2,3]}`)
	assert.Equal(t, float64(1), cap.AsNumber(v))
}

func TestEvalTernary(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, `x > 0 ? "pos" : "nonpos"`, `{"x":5}`)
	assert.Equal(t, "pos", cap.AsString(v))
}

func TestEvalRootAccess(t *testing.T) {
	cap := jsonvalue.New()
	v := evalExpr(t, `@.name`, `{"name":"root-val"}`)
	assert.Equal(t, "root-val", cap.AsString(v))
}
