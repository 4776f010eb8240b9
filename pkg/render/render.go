// Package render implements the Renderer (§4.H): it walks a block tree,
// evaluating expressions against the shared value.Capability and scope, and
// emitting bytes through a caller-supplied sink.
package render

import (
	"context"
	"strings"

	"github.com/keurnel/lattice/pkg/ast"
	"github.com/keurnel/lattice/pkg/block"
	"github.com/keurnel/lattice/pkg/eval"
	"github.com/keurnel/lattice/pkg/lerr"
	"github.com/keurnel/lattice/pkg/value"
)

// EmitFunc writes data to the output sink, returning the number of bytes
// actually written. A zero-length write with a nil error is treated per
// Options.IgnoreEmitZero (§5's "emit callback ... return zero to signal an
// IO error").
type EmitFunc func(data []byte) (int, error)

// EscapeFunc transforms a string before a sub_esc directive emits it.
type EscapeFunc func(string) string

// Options configures a single render pass.
type Options struct {
	Escape         EscapeFunc
	IgnoreEmitZero bool
}

// DefaultEscape implements the spec's default HTML escape: & ' " < > become
// decimal numeric character references.
func DefaultEscape(s string) string {
	if !strings.ContainsAny(s, "&'\"<>") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			sb.WriteString("&#38;")
		case '\'':
			sb.WriteString("&#39;")
		case '"':
			sb.WriteString("&#34;")
		case '<':
			sb.WriteString("&#60;")
		case '>':
			sb.WriteString("&#62;")
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Render walks nodes under env, emitting through emit, and returns the
// total number of bytes written. ctx is checked before every node visited,
// at every nesting level; a cancelled context surfaces as an IO-class error.
func Render(ctx context.Context, nodes []block.Node, env eval.Env, emit EmitFunc, opts Options) (int64, *lerr.Error) {
	if opts.Escape == nil {
		opts.Escape = DefaultEscape
	}
	r := &renderer{ctx: ctx, emit: emit, opts: opts}
	err := r.renderSeq(nodes, env)
	return r.written, err
}

type renderer struct {
	ctx     context.Context
	emit    EmitFunc
	opts    Options
	written int64
}

func (r *renderer) renderSeq(nodes []block.Node, env eval.Env) *lerr.Error {
	for _, n := range nodes {
		if r.ctx != nil {
			select {
			case <-r.ctx.Done():
				return lerr.IOErrorf(n.Line(), "render cancelled: %v", r.ctx.Err())
			default:
			}
		}
		if err := r.renderOne(n, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderOne(n block.Node, env eval.Env) *lerr.Error {
	switch t := n.(type) {
	case *block.Span:
		return r.write(t.Line(), []byte(t.Text))
	case *block.SubRaw:
		return r.renderSub(t.Line(), t.Expr, env, false)
	case *block.SubEsc:
		return r.renderSub(t.Line(), t.Expr, env, true)
	case *block.Include:
		return r.renderSeq(t.Children, env)
	case *block.Conditional:
		return r.renderConditional(t, env)
	case *block.Switch:
		return r.renderSwitch(t, env)
	case *block.ForRange:
		return r.renderForRange(t, env)
	case *block.ForIter:
		return r.renderForIter(t, env)
	case *block.With:
		return r.renderWith(t, env)
	default:
		return lerr.TypeErrorf(n.Line(), "unrecognized block node")
	}
}

func (r *renderer) write(line int, data []byte) *lerr.Error {
	n, err := r.emit(data)
	if err != nil {
		return lerr.IOErrorf(line, "emit: %v", err)
	}
	if n == 0 && len(data) > 0 && !r.opts.IgnoreEmitZero {
		return lerr.IOErrorf(line, "emit returned 0 bytes")
	}
	r.written += int64(n)
	return nil
}

func (r *renderer) renderSub(line int, expr ast.Node, env eval.Env, escape bool) *lerr.Error {
	v, err := eval.Eval(expr, env)
	if err != nil {
		return err
	}
	defer env.Cap.Free(v)

	var s string
	if env.Cap.TypeOf(v) == value.String {
		s = env.Cap.AsString(v)
	} else {
		printed, perr := env.Cap.Print(v)
		if perr != nil {
			return lerr.JSONErrorf(line, "print: %v", perr)
		}
		s = printed
	}
	if escape {
		s = r.opts.Escape(s)
	}
	return r.write(line, []byte(s))
}

func (r *renderer) renderConditional(c *block.Conditional, env eval.Env) *lerr.Error {
	for _, arm := range c.Arms {
		if arm.Cond == nil {
			return r.renderSeq(arm.Body, env)
		}
		v, err := eval.Eval(arm.Cond, env)
		if err != nil {
			return err
		}
		truthy := value.Truthy(env.Cap, v)
		env.Cap.Free(v)
		if truthy {
			return r.renderSeq(arm.Body, env)
		}
	}
	return nil
}

func (r *renderer) renderSwitch(s *block.Switch, env eval.Env) *lerr.Error {
	disc, err := eval.Eval(s.Discriminant, env)
	if err != nil {
		return err
	}
	defer env.Cap.Free(disc)

	for _, c := range s.Cases {
		v, err := eval.Eval(c.Expr, env)
		if err != nil {
			return err
		}
		match := env.Cap.TypeOf(disc) == env.Cap.TypeOf(v) && env.Cap.Equal(disc, v)
		env.Cap.Free(v)
		if match {
			return r.renderSeq(c.Body, env)
		}
	}
	if s.Default != nil {
		return r.renderSeq(s.Default, env)
	}
	return nil
}

func (r *renderer) renderForRange(f *block.ForRange, env eval.Env) *lerr.Error {
	loV, err := eval.Eval(f.Low, env)
	if err != nil {
		return err
	}
	defer env.Cap.Free(loV)
	hiV, err := eval.Eval(f.High, env)
	if err != nil {
		return err
	}
	defer env.Cap.Free(hiV)
	if env.Cap.TypeOf(loV) != value.Number || env.Cap.TypeOf(hiV) != value.Number {
		return lerr.TypeErrorf(f.Line(), "for-range bounds must be numbers")
	}
	lo, hi := env.Cap.AsNumber(loV), env.Cap.AsNumber(hiV)

	for i := lo; boundHolds(i, hi, f.Inclusive); i++ {
		val := env.Cap.NewNumber(i)
		if err := r.renderIteration(f.Body, env, f.Ident, val, f.Line()); err != nil {
			return err
		}
	}
	return nil
}

func boundHolds(i, hi float64, inclusive bool) bool {
	if inclusive {
		return i <= hi
	}
	return i < hi
}

func (r *renderer) renderForIter(f *block.ForIter, env eval.Env) *lerr.Error {
	iterV, err := eval.Eval(f.Iter, env)
	if err != nil {
		return err
	}
	defer env.Cap.Free(iterV)

	cap := env.Cap
	switch cap.TypeOf(iterV) {
	case value.String:
		s := cap.AsString(iterV)
		for i := 0; i < len(s); i++ {
			elem := cap.NewString(string(s[i]))
			if err := r.renderIteration(f.Body, env, f.Ident, elem, f.Line()); err != nil {
				return err
			}
		}
	case value.Array:
		for i := 0; i < cap.Len(iterV); i++ {
			e, _ := cap.GetIndex(iterV, i)
			if err := r.renderIteration(f.Body, env, f.Ident, cap.Clone(e), f.Line()); err != nil {
				return err
			}
		}
	case value.Object:
		for _, k := range cap.Keys(iterV) {
			if err := r.renderIteration(f.Body, env, f.Ident, cap.NewString(k), f.Line()); err != nil {
				return err
			}
		}
	default:
		return lerr.TypeErrorf(f.Line(), "for-in requires a string, array, or object")
	}
	return nil
}

// renderIteration binds elem to ident (unless ident is "_", in which case
// elem is discarded and the outer scope is reused untouched — the spec's
// "do not clone/rebind" anonymous-variable optimisation), renders body
// against that scope, and releases the scope afterward.
func (r *renderer) renderIteration(body []block.Node, env eval.Env, ident string, elem value.Value, line int) *lerr.Error {
	if ident == "_" {
		env.Cap.Free(elem)
		return r.renderSeq(body, env)
	}
	newScope, err := bindScope(env, line, ident, elem)
	if err != nil {
		return err
	}
	rerr := r.renderSeq(body, env.Child(newScope))
	env.Cap.Free(newScope)
	return rerr
}

func (r *renderer) renderWith(w *block.With, env eval.Env) *lerr.Error {
	v, err := eval.Eval(w.Expr, env)
	if err != nil {
		return err
	}
	rerr := r.renderSeq(w.Body, env.Child(v))
	env.Cap.Free(v)
	return rerr
}

// bindScope builds "current scope object minus any existing ident binding,
// plus {ident: val}" (§4.H). val's ownership transfers to the new scope
// object via Set. The current scope must be an object (§4.H's scope
// discipline invariant).
func bindScope(env eval.Env, line int, ident string, val value.Value) (value.Value, *lerr.Error) {
	cap := env.Cap
	if cap.TypeOf(env.Scope) != value.Object {
		cap.Free(val)
		return nil, lerr.TypeErrorf(line, "binding %q requires an object scope", ident)
	}
	result := cap.NewObject()
	for _, k := range cap.Keys(env.Scope) {
		if k == ident {
			continue
		}
		v, _ := cap.GetKey(env.Scope, k)
		result = cap.Set(result, k, cap.Clone(v))
	}
	result = cap.Set(result, ident, val)
	return result, nil
}
