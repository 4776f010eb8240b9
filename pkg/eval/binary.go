package eval

import (
	"math"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/lerr"
	"github.com/keurnel/lattice/pkg/value"
)

func evalBinary(n *ast.Binary, env Env) (value.Value, *lerr.Error) {
	switch n.Op {
	case ast.Either:
		return evalShortCircuit(n, env, true)
	case ast.Both:
		return evalShortCircuit(n, env, false)
	}

	left, err := Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := Eval(n.Right, env)
	if err != nil {
		env.Cap.Free(left)
		return nil, err
	}
	defer env.Cap.Free(left)
	defer env.Cap.Free(right)

	switch n.Op {
	case ast.Eq, ast.Neq:
		return evalEquality(n, env, left, right)
	case ast.Lt, ast.Lte, ast.Gt, ast.Gte:
		return evalOrdered(n, env, left, right)
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Quot, ast.Mod, ast.Exp:
		return evalArith(n, env, left, right)
	case ast.BitAnd, ast.BitOr, ast.BitXor:
		return evalBitwise(n, env, left, right)
	default:
		return nil, lerr.TypeErrorf(n.Line(), "unsupported binary operator")
	}
}

// evalShortCircuit implements `||` (or=true) and `&&` (or=false) without
// evaluating the right operand unless needed.
func evalShortCircuit(n *ast.Binary, env Env, or bool) (value.Value, *lerr.Error) {
	left, err := Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	truthy := value.Truthy(env.Cap, left)
	if truthy == or {
		return left, nil
	}
	env.Cap.Free(left)
	return Eval(n.Right, env)
}

func evalEquality(n *ast.Binary, env Env, left, right value.Value) (value.Value, *lerr.Error) {
	lt, rt := env.Cap.TypeOf(left), env.Cap.TypeOf(right)
	if lt != rt {
		return nil, lerr.TypeErrorf(n.Line(), "cannot compare %s with %s", lt, rt)
	}
	var eq bool
	switch lt {
	case value.Null:
		eq = true
	case value.Bool, value.Number, value.String:
		eq = env.Cap.Equal(left, right)
	case value.Array, value.Object:
		// Array/object equality is defined as reference/identity equality
		// only (see SPEC_FULL.md §9 open-question resolution).
		eq = env.Cap.Equal(left, right)
	}
	if n.Op == ast.Neq {
		eq = !eq
	}
	return env.Cap.NewBool(eq), nil
}

func evalOrdered(n *ast.Binary, env Env, left, right value.Value) (value.Value, *lerr.Error) {
	lt, rt := env.Cap.TypeOf(left), env.Cap.TypeOf(right)
	if lt != rt || (lt != value.Number && lt != value.String) {
		return nil, lerr.TypeErrorf(n.Line(), "ordered comparison requires two numbers or two strings")
	}
	var cmp int
	if lt == value.Number {
		a, b := env.Cap.AsNumber(left), env.Cap.AsNumber(right)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	} else {
		a, b := env.Cap.AsString(left), env.Cap.AsString(right)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	}
	var result bool
	switch n.Op {
	case ast.Lt:
		result = cmp < 0
	case ast.Lte:
		result = cmp <= 0
	case ast.Gt:
		result = cmp > 0
	case ast.Gte:
		result = cmp >= 0
	}
	return env.Cap.NewBool(result), nil
}

func evalArith(n *ast.Binary, env Env, left, right value.Value) (value.Value, *lerr.Error) {
	lt, rt := env.Cap.TypeOf(left), env.Cap.TypeOf(right)

	if lt == value.Number && rt == value.Number {
		a, b := env.Cap.AsNumber(left), env.Cap.AsNumber(right)
		switch n.Op {
		case ast.Add:
			return env.Cap.NewNumber(a + b), nil
		case ast.Sub:
			return env.Cap.NewNumber(a - b), nil
		case ast.Mul:
			return env.Cap.NewNumber(a * b), nil
		case ast.Div:
			return env.Cap.NewNumber(a / b), nil
		case ast.Quot:
			return env.Cap.NewNumber(math.Floor(a / b)), nil
		case ast.Mod:
			return env.Cap.NewNumber(math.Mod(a, b)), nil
		case ast.Exp:
			return env.Cap.NewNumber(math.Pow(a, b)), nil
		}
	}

	switch n.Op {
	case ast.Add:
		if lt == value.String && rt == value.String {
			return env.Cap.NewString(env.Cap.AsString(left) + env.Cap.AsString(right)), nil
		}
		if lt == value.Array && rt == value.Array {
			result := env.Cap.NewArray()
			result = appendAllCloned(env.Cap, result, left)
			result = appendAllCloned(env.Cap, result, right)
			return result, nil
		}
		return nil, lerr.TypeErrorf(n.Line(), "+ requires two numbers, two strings, or two arrays")
	case ast.Mul:
		if lt == value.String && rt == value.Number {
			return repeatString(env, n, left, right)
		}
		if lt == value.Number && rt == value.String {
			return repeatString(env, n, right, left)
		}
		if lt == value.Array && rt == value.Number {
			return repeatArray(env, n, left, right)
		}
		if lt == value.Number && rt == value.Array {
			return repeatArray(env, n, right, left)
		}
		return nil, lerr.TypeErrorf(n.Line(), "* requires two numbers, string*number, or array*number")
	default:
		return nil, lerr.TypeErrorf(n.Line(), "%s requires two numbers", binName(n.Op))
	}
}

func appendAllCloned(cap value.Capability, dst, src value.Value) value.Value {
	for i := 0; i < cap.Len(src); i++ {
		elem, _ := cap.GetIndex(src, i)
		dst = cap.Append(dst, cap.Clone(elem))
	}
	return dst
}

func repeatCount(env Env, n *ast.Binary, countVal value.Value) (int, *lerr.Error) {
	count := env.Cap.AsNumber(countVal)
	if count != math.Trunc(count) {
		return 0, lerr.ValueErrorf(n.Line(), "repetition count must be a whole number")
	}
	if count < 0 {
		return 0, lerr.ValueErrorf(n.Line(), "repetition count must be non-negative")
	}
	return int(count), nil
}

func repeatString(env Env, n *ast.Binary, strVal, countVal value.Value) (value.Value, *lerr.Error) {
	count, err := repeatCount(env, n, countVal)
	if err != nil {
		return nil, err
	}
	s := env.Cap.AsString(strVal)
	result := ""
	for i := 0; i < count; i++ {
		result += s
	}
	return env.Cap.NewString(result), nil
}

func repeatArray(env Env, n *ast.Binary, arrVal, countVal value.Value) (value.Value, *lerr.Error) {
	count, err := repeatCount(env, n, countVal)
	if err != nil {
		return nil, err
	}
	result := env.Cap.NewArray()
	for i := 0; i < count; i++ {
		result = appendAllCloned(env.Cap, result, arrVal)
	}
	return result, nil
}

func evalBitwise(n *ast.Binary, env Env, left, right value.Value) (value.Value, *lerr.Error) {
	a, err := requireWholeBits(env.Cap, left, n.Line())
	if err != nil {
		return nil, err
	}
	b, err := requireWholeBits(env.Cap, right, n.Line())
	if err != nil {
		return nil, err
	}
	var r uint64
	switch n.Op {
	case ast.BitAnd:
		r = a & b
	case ast.BitOr:
		r = a | b
	case ast.BitXor:
		r = a ^ b
	}
	return env.Cap.NewNumber(float64(r)), nil
}

func binName(op ast.BinOp) string {
	switch op {
	case ast.Sub:
		return "-"
	case ast.Div:
		return "/"
	case ast.Quot:
		return "//"
	case ast.Mod:
		return "%"
	case ast.Exp:
		return "**"
	default:
		return "?"
	}
}
