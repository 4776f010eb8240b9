// Package eval implements the Expression Evaluator (§4.D): a tree-walking
// interpreter over ast.Node that produces freshly owned value.Value results
// through the caller-supplied value.Capability, never mutating the scope it
// is given.
package eval

import (
	"math"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/lerr"
	"github.com/keurnel/lattice/pkg/value"
)

// Env threads the three values the evaluator needs beyond the current node:
// the capability vtable, the immutable top-level root (for `@`), and the
// current scope (an object-typed Value bare identifiers resolve against).
type Env struct {
	Cap   value.Capability
	Root  value.Value
	Scope value.Value
}

// Child returns a copy of e with Scope replaced — used when the renderer
// descends into a `with` or `for` body.
func (e Env) Child(scope value.Value) Env {
	e.Scope = scope
	return e
}

// Eval evaluates node against env, returning a freshly owned Value the
// caller must place into a container or Free.
func Eval(node ast.Node, env Env) (value.Value, *lerr.Error) {
	switch n := node.(type) {
	case *ast.Null:
		return env.Cap.NewNull(), nil
	case *ast.Bool:
		return env.Cap.NewBool(n.Value), nil
	case *ast.Number:
		return env.Cap.NewNumber(n.Value), nil
	case *ast.String:
		return env.Cap.NewString(n.Value), nil
	case *ast.Root:
		return env.Cap.Clone(env.Root), nil
	case *ast.Ident:
		return evalIdent(n, env)
	case *ast.Array:
		return evalArray(n, env)
	case *ast.Object:
		return evalObject(n, env)
	case *ast.Unary:
		return evalUnary(n, env)
	case *ast.Binary:
		return evalBinary(n, env)
	case *ast.Lookup:
		return evalLookup(n, env)
	case *ast.Method:
		return evalMethod(n, env)
	case *ast.Index:
		return evalIndex(n, env)
	case *ast.Ternary:
		return evalTernary(n, env)
	default:
		return nil, lerr.TypeErrorf(node.Line(), "unsupported expression node")
	}
}

func evalIdent(n *ast.Ident, env Env) (value.Value, *lerr.Error) {
	if env.Cap.TypeOf(env.Scope) != value.Object {
		return nil, lerr.TypeErrorf(n.Line(), "identifier %q: current scope is not an object", n.Name)
	}
	v, ok := env.Cap.GetKey(env.Scope, n.Name)
	if !ok {
		return nil, lerr.NameErrorf(n.Line(), "undefined name %q", n.Name)
	}
	return env.Cap.Clone(v), nil
}

func evalArray(n *ast.Array, env Env) (value.Value, *lerr.Error) {
	arr := env.Cap.NewArray()
	for _, item := range n.Items {
		v, err := Eval(item, env)
		if err != nil {
			env.Cap.Free(arr)
			return nil, err
		}
		arr = env.Cap.Append(arr, v)
	}
	return arr, nil
}

func evalObject(n *ast.Object, env Env) (value.Value, *lerr.Error) {
	obj := env.Cap.NewObject()
	for _, entry := range n.Entries {
		k, err := Eval(entry.Key, env)
		if err != nil {
			env.Cap.Free(obj)
			return nil, err
		}
		if env.Cap.TypeOf(k) == value.Null {
			env.Cap.Free(k)
			// key is null: value is evaluated-and-discarded (skipped).
			v, err := Eval(entry.Value, env)
			if err != nil {
				env.Cap.Free(obj)
				return nil, err
			}
			env.Cap.Free(v)
			continue
		}
		if env.Cap.TypeOf(k) != value.String {
			env.Cap.Free(k)
			env.Cap.Free(obj)
			return nil, lerr.TypeErrorf(entry.Key.Line(), "object key must be a string or null")
		}
		keyStr := env.Cap.AsString(k)
		env.Cap.Free(k)
		v, err := Eval(entry.Value, env)
		if err != nil {
			env.Cap.Free(obj)
			return nil, err
		}
		obj = env.Cap.Set(obj, keyStr, v)
	}
	return obj, nil
}

func evalTernary(n *ast.Ternary, env Env) (value.Value, *lerr.Error) {
	cond, err := Eval(n.Cond, env)
	if err != nil {
		return nil, err
	}
	truthy := value.Truthy(env.Cap, cond)
	env.Cap.Free(cond)
	if truthy {
		return Eval(n.Then, env)
	}
	return Eval(n.Else, env)
}

func evalLookup(n *ast.Lookup, env Env) (value.Value, *lerr.Error) {
	obj, err := Eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	defer env.Cap.Free(obj)
	if env.Cap.TypeOf(obj) != value.Object {
		return nil, lerr.TypeErrorf(n.Line(), "lookup %q on non-object value", n.Name)
	}
	v, ok := env.Cap.GetKey(obj, n.Name)
	if !ok {
		return nil, lerr.NameErrorf(n.Line(), "no such key %q", n.Name)
	}
	return env.Cap.Clone(v), nil
}

func evalUnary(n *ast.Unary, env Env) (value.Value, *lerr.Error) {
	v, err := Eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.Not:
		t := value.Truthy(env.Cap, v)
		env.Cap.Free(v)
		return env.Cap.NewBool(!t), nil
	case ast.Pos, ast.Neg:
		if env.Cap.TypeOf(v) != value.Number {
			env.Cap.Free(v)
			return nil, lerr.TypeErrorf(n.Line(), "unary %s requires a number", unaryName(n.Op))
		}
		num := env.Cap.AsNumber(v)
		env.Cap.Free(v)
		if n.Op == ast.Neg {
			num = -num
		}
		return env.Cap.NewNumber(num), nil
	case ast.Comp:
		bits, terr := requireWholeBits(env.Cap, v, n.Line())
		env.Cap.Free(v)
		if terr != nil {
			return nil, terr
		}
		return env.Cap.NewNumber(float64(^bits)), nil
	default:
		env.Cap.Free(v)
		return nil, lerr.TypeErrorf(n.Line(), "unsupported unary operator")
	}
}

func unaryName(op ast.UnOp) string {
	switch op {
	case ast.Pos:
		return "+"
	case ast.Neg:
		return "-"
	case ast.Not:
		return "!"
	case ast.Comp:
		return "~"
	default:
		return "?"
	}
}

func requireWholeBits(cap value.Capability, v value.Value, line int) (uint64, *lerr.Error) {
	if cap.TypeOf(v) != value.Number {
		return 0, lerr.TypeErrorf(line, "bitwise operator requires a number")
	}
	n := cap.AsNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, lerr.ValueErrorf(line, "bitwise operator requires a whole, finite number")
	}
	return uint64(int64(n)), nil
}
