package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/lerr"
	"github.com/keurnel/lattice/pkg/value"
)

// methodArity is the fixed arity table (§4.D "Method catalog"). Dispatch in
// the source is described as a perfect hash; Go's map literal plays the same
// role here — a collision with the stored name fails softly with null, which
// falls naturally out of "name not present in the table".
var methodArity = map[string]int{
	"boolean": 0, "number": 0, "string": 0, "type": 0, "length": 0,
	"keys": 0, "values": 0, "contains": 1, "find": 1, "join": 1,
	"repeat": 1, "lower": 0, "upper": 0, "round": 0, "nan": 0, "real": 0,
	"datetime": 0,
}

func evalMethod(n *ast.Method, env Env) (value.Value, *lerr.Error) {
	arity, known := methodArity[n.Name]
	if !known {
		return env.Cap.NewNull(), nil
	}
	if len(n.Args) != arity {
		return nil, lerr.ValueErrorf(n.Line(), "method %q expects %d argument(s), got %d", n.Name, arity, len(n.Args))
	}

	recv, err := Eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	defer env.Cap.Free(recv)

	var args []value.Value
	for _, a := range n.Args {
		v, err := Eval(a, env)
		if err != nil {
			for _, freed := range args {
				env.Cap.Free(freed)
			}
			return nil, err
		}
		args = append(args, v)
	}
	defer func() {
		for _, a := range args {
			env.Cap.Free(a)
		}
	}()

	cap := env.Cap
	switch n.Name {
	case "boolean":
		return cap.NewBool(value.Truthy(cap, recv)), nil
	case "number":
		return methodNumber(cap, recv), nil
	case "string":
		s, perr := cap.Print(recv)
		if perr != nil {
			return nil, lerr.JSONErrorf(n.Line(), "string(): %v", perr)
		}
		return cap.NewString(s), nil
	case "type":
		return cap.NewString(cap.TypeOf(recv).String()), nil
	case "length":
		return methodLength(cap, recv)
	case "keys":
		return methodKeys(cap, recv)
	case "values":
		return methodValues(cap, recv)
	case "contains":
		return methodContains(cap, recv, args[0])
	case "find":
		return methodFind(cap, recv, args[0])
	case "join":
		return methodJoin(n, cap, recv, args[0])
	case "repeat":
		return methodRepeat(n, cap, recv, args[0])
	case "lower", "upper":
		return methodCase(cap, recv, n.Name == "upper")
	case "round":
		return methodRound(cap, recv)
	case "nan":
		return methodNan(cap, recv)
	case "real":
		return methodReal(cap, recv)
	case "datetime":
		return methodDatetime(cap, recv)
	default:
		return cap.NewNull(), nil
	}
}

// methodNumber resolves the §4.D / Open-Questions "number() of a
// non-parseable string" decision: an unparseable string yields 0, matching
// the permissive C atof-style behaviour the source exhibits.
func methodNumber(cap value.Capability, recv value.Value) value.Value {
	switch cap.TypeOf(recv) {
	case value.Null:
		return cap.NewNumber(0)
	case value.Bool:
		if cap.AsBool(recv) {
			return cap.NewNumber(1)
		}
		return cap.NewNumber(0)
	case value.Number:
		return cap.NewNumber(cap.AsNumber(recv))
	case value.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(cap.AsString(recv)), 64)
		if err != nil {
			return cap.NewNumber(0)
		}
		return cap.NewNumber(n)
	default:
		return cap.NewNull()
	}
}

func methodLength(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	switch cap.TypeOf(recv) {
	case value.String, value.Array, value.Object:
		return cap.NewNumber(float64(cap.Len(recv))), nil
	default:
		return cap.NewNull(), nil
	}
}

func methodKeys(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	result := cap.NewArray()
	switch cap.TypeOf(recv) {
	case value.Object:
		for _, k := range cap.Keys(recv) {
			result = cap.Append(result, cap.NewString(k))
		}
	case value.Array:
		for i := 0; i < cap.Len(recv); i++ {
			result = cap.Append(result, cap.NewNumber(float64(i)))
		}
	case value.String:
		for i := 0; i < cap.Len(recv); i++ {
			result = cap.Append(result, cap.NewNumber(float64(i)))
		}
	default:
		cap.Free(result)
		return cap.NewNull(), nil
	}
	return result, nil
}

func methodValues(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	result := cap.NewArray()
	switch cap.TypeOf(recv) {
	case value.Array:
		for i := 0; i < cap.Len(recv); i++ {
			elem, _ := cap.GetIndex(recv, i)
			result = cap.Append(result, cap.Clone(elem))
		}
	case value.Object:
		for _, k := range cap.Keys(recv) {
			v, _ := cap.GetKey(recv, k)
			result = cap.Append(result, cap.Clone(v))
		}
	default:
		cap.Free(result)
		return cap.NewNull(), nil
	}
	return result, nil
}

func methodContains(cap value.Capability, recv, needle value.Value) (value.Value, *lerr.Error) {
	switch cap.TypeOf(recv) {
	case value.String:
		if cap.TypeOf(needle) != value.String {
			return cap.NewNull(), nil
		}
		return cap.NewBool(strings.Contains(cap.AsString(recv), cap.AsString(needle))), nil
	case value.Array:
		for i := 0; i < cap.Len(recv); i++ {
			elem, _ := cap.GetIndex(recv, i)
			if cap.TypeOf(elem) == cap.TypeOf(needle) && cap.Equal(elem, needle) {
				return cap.NewBool(true), nil
			}
		}
		return cap.NewBool(false), nil
	default:
		return cap.NewNull(), nil
	}
}

func methodFind(cap value.Capability, recv, needle value.Value) (value.Value, *lerr.Error) {
	switch cap.TypeOf(recv) {
	case value.String:
		if cap.TypeOf(needle) != value.String {
			return cap.NewNull(), nil
		}
		idx := strings.Index(cap.AsString(recv), cap.AsString(needle))
		return cap.NewNumber(float64(idx)), nil
	case value.Array:
		for i := 0; i < cap.Len(recv); i++ {
			elem, _ := cap.GetIndex(recv, i)
			if cap.TypeOf(elem) == cap.TypeOf(needle) && cap.Equal(elem, needle) {
				return cap.NewNumber(float64(i)), nil
			}
		}
		return cap.NewNumber(-1), nil
	default:
		return cap.NewNull(), nil
	}
}

func methodJoin(n *ast.Method, cap value.Capability, recv, sep value.Value) (value.Value, *lerr.Error) {
	if cap.TypeOf(recv) != value.Array {
		return cap.NewNull(), nil
	}
	if cap.TypeOf(sep) != value.String {
		return nil, lerr.TypeErrorf(n.Line(), "join() separator must be a string")
	}
	parts := make([]string, 0, cap.Len(recv))
	for i := 0; i < cap.Len(recv); i++ {
		elem, _ := cap.GetIndex(recv, i)
		if cap.TypeOf(elem) != value.String {
			return nil, lerr.TypeErrorf(n.Line(), "join() requires an array of strings")
		}
		parts = append(parts, cap.AsString(elem))
	}
	return cap.NewString(strings.Join(parts, cap.AsString(sep))), nil
}

func methodRepeat(n *ast.Method, cap value.Capability, recv, countVal value.Value) (value.Value, *lerr.Error) {
	if cap.TypeOf(countVal) != value.Number {
		return nil, lerr.TypeErrorf(n.Line(), "repeat() count must be a number")
	}
	count := cap.AsNumber(countVal)
	if count != math.Trunc(count) || count < 0 {
		return nil, lerr.ValueErrorf(n.Line(), "repeat() count must be a non-negative whole number")
	}
	switch cap.TypeOf(recv) {
	case value.String:
		return cap.NewString(strings.Repeat(cap.AsString(recv), int(count))), nil
	case value.Array:
		result := cap.NewArray()
		for i := 0; i < int(count); i++ {
			result = appendAllCloned(cap, result, recv)
		}
		return result, nil
	default:
		return cap.NewNull(), nil
	}
}

func methodCase(cap value.Capability, recv value.Value, upper bool) (value.Value, *lerr.Error) {
	if cap.TypeOf(recv) != value.String {
		return cap.NewNull(), nil
	}
	s := cap.AsString(recv)
	if upper {
		return cap.NewString(strings.ToUpper(s)), nil
	}
	return cap.NewString(strings.ToLower(s)), nil
}

// methodRound implements round-half-away-from-zero (C round semantics),
// pinning down the open question left unspecified by the source.
func methodRound(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	if cap.TypeOf(recv) != value.Number {
		return cap.NewNull(), nil
	}
	return cap.NewNumber(math.Round(cap.AsNumber(recv))), nil
}

func methodNan(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	if cap.TypeOf(recv) != value.Number {
		return cap.NewNull(), nil
	}
	return cap.NewBool(math.IsNaN(cap.AsNumber(recv))), nil
}

func methodReal(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	if cap.TypeOf(recv) != value.Number {
		return cap.NewNull(), nil
	}
	n := cap.AsNumber(recv)
	return cap.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

// methodDatetime formats the current local time using the receiver string as
// a strftime-style pattern, translated to a Go reference-time layout. Unlike
// the source's fixed 1KiB buffer, the Go string grows without a cap (see
// SPEC_FULL.md's resolution of the "datetime buffer" open question).
func methodDatetime(cap value.Capability, recv value.Value) (value.Value, *lerr.Error) {
	if cap.TypeOf(recv) != value.String {
		return cap.NewNull(), nil
	}
	return cap.NewString(strftime(cap.AsString(recv), time.Now().Local())), nil
}

var strftimeDirectives = map[byte]string{
	'Y': "2006", 'y': "06", 'm': "01", 'd': "02",
	'H': "15", 'M': "04", 'S': "05",
	'B': "January", 'b': "Jan", 'A': "Monday", 'a': "Mon",
	'p': "PM", 'Z': "MST", 'z': "-0700",
}

func strftime(pattern string, t time.Time) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '%' && i+1 < len(pattern) {
			directive := pattern[i+1]
			if directive == '%' {
				sb.WriteByte('%')
				i++
				continue
			}
			if layout, ok := strftimeDirectives[directive]; ok {
				sb.WriteString(t.Format(layout))
				i++
				continue
			}
			sb.WriteString(fmt.Sprintf("%%%c", directive))
			i++
			continue
		}
		sb.WriteByte(pattern[i])
	}
	return sb.String()
}
