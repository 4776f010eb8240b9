package eval

import (
	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/lerr"
	"github.com/keurnel/lattice/pkg/value"
)

func evalIndex(n *ast.Index, env Env) (value.Value, *lerr.Error) {
	coll, err := Eval(n.Collection, env)
	if err != nil {
		return nil, err
	}
	defer env.Cap.Free(coll)

	if n.High != nil {
		return evalRangeIndex(n, env, coll)
	}
	return evalSingleIndex(n, env, coll)
}

func evalSingleIndex(n *ast.Index, env Env, coll value.Value) (value.Value, *lerr.Error) {
	t := env.Cap.TypeOf(coll)
	switch t {
	case value.String, value.Array:
		lowV, err := Eval(n.Low, env)
		if err != nil {
			return nil, err
		}
		defer env.Cap.Free(lowV)
		if env.Cap.TypeOf(lowV) != value.Number {
			return nil, lerr.TypeErrorf(n.Line(), "index must be a number")
		}
		length := env.Cap.Len(coll)
		idx := normalizeIndex(env.Cap.AsNumber(lowV), length)
		elem, ok := env.Cap.GetIndex(coll, idx)
		if !ok {
			return nil, lerr.ValueErrorf(n.Line(), "index out of range")
		}
		return env.Cap.Clone(elem), nil
	case value.Object:
		keyV, err := Eval(n.Low, env)
		if err != nil {
			return nil, err
		}
		defer env.Cap.Free(keyV)
		if env.Cap.TypeOf(keyV) != value.String {
			return nil, lerr.TypeErrorf(n.Line(), "object index must be a string key")
		}
		v, ok := env.Cap.GetKey(coll, env.Cap.AsString(keyV))
		if !ok {
			return nil, lerr.ValueErrorf(n.Line(), "no such key %q", env.Cap.AsString(keyV))
		}
		return env.Cap.Clone(v), nil
	default:
		return nil, lerr.TypeErrorf(n.Line(), "cannot index a %s", t)
	}
}

func evalRangeIndex(n *ast.Index, env Env, coll value.Value) (value.Value, *lerr.Error) {
	t := env.Cap.TypeOf(coll)
	if t != value.String && t != value.Array {
		return nil, lerr.TypeErrorf(n.Line(), "range indexing requires a string or array")
	}
	lowV, err := Eval(n.Low, env)
	if err != nil {
		return nil, err
	}
	defer env.Cap.Free(lowV)
	highV, err := Eval(n.High, env)
	if err != nil {
		return nil, err
	}
	defer env.Cap.Free(highV)
	if env.Cap.TypeOf(lowV) != value.Number || env.Cap.TypeOf(highV) != value.Number {
		return nil, lerr.TypeErrorf(n.Line(), "range bounds must be numbers")
	}

	length := env.Cap.Len(coll)
	i := clampIndex(env.Cap.AsNumber(lowV), length)
	j := clampIndex(env.Cap.AsNumber(highV), length)
	if j < i {
		j = i
	}

	if t == value.String {
		s := env.Cap.AsString(coll)
		return env.Cap.NewString(s[i:j]), nil
	}
	result := env.Cap.NewArray()
	for k := i; k < j; k++ {
		elem, _ := env.Cap.GetIndex(coll, k)
		result = env.Cap.Append(result, env.Cap.Clone(elem))
	}
	return result, nil
}

// normalizeIndex resolves a (possibly negative) single index against
// length, returning a value that may still be out of [0,length) — the
// caller's GetIndex reports that as "not found".
func normalizeIndex(n float64, length int) int {
	idx := int(n)
	if idx < 0 {
		idx += length
	}
	return idx
}

// clampIndex resolves a range endpoint: negative counts from the end, then
// clamps to [0, length].
func clampIndex(n float64, length int) int {
	idx := int(n)
	if idx < 0 {
		idx += length
	}
	if idx < 0 {
		idx = 0
	}
	if idx > length {
		idx = length
	}
	return idx
}
