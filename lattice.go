// Package lattice is the public facade: it wires the template tokenizer,
// block builder, include resolver and renderer into the three rendering
// entrypoints described in §6. The facade is the only place in the core
// engine that is allowed to know about all four pipeline stages at once;
// each stage package only depends on the ones before it.
package lattice

import (
	"bytes"
	"context"
	"io"

	"github.com/keurnel/lattice/pkg/block"
	"github.com/keurnel/lattice/pkg/directive"
	"github.com/keurnel/lattice/pkg/eval"
	"github.com/keurnel/lattice/pkg/include"
	"github.com/keurnel/lattice/pkg/render"
	"github.com/keurnel/lattice/pkg/value"
)

// EmitFunc is the caller-supplied output sink. See render.EmitFunc.
type EmitFunc = render.EmitFunc

// EscapeFunc transforms a sub_esc substitution before it is emitted.
type EscapeFunc = render.EscapeFunc

// DefaultEscape is the built-in HTML escape (&#NN; decimal entities for
// & ' " < >), used whenever Options.Escape is nil.
var DefaultEscape = render.DefaultEscape

// Options is the engine's options record (§6): a zero-initialised Options
// is a valid default (CWD-only includes, default HTML escaping, emit-zero
// treated as an IO error).
type Options struct {
	// Search is an ordered list of include search directories, tried in
	// order. Entries containing '*' are expanded as doublestar glob patterns
	// and a match whose base name equals the include identifier is used
	// (see SPEC_FULL.md's include-resolver expansion); plain entries are
	// tried as exact directory joins.
	Search []string
	// Resolve, when set, takes over include resolution per §4.G's table:
	// with no Search entries its result is a filesystem path; with Search
	// entries present its result is used as include contents directly.
	Resolve func(ident string) (string, error)
	// Escape overrides the sub_esc escape function. Nil means DefaultEscape.
	Escape EscapeFunc
	// IgnoreEmitZero treats a zero-byte, nil-error emit as "keep going"
	// instead of an IO error.
	IgnoreEmitZero bool
	// Name is source's own include-resolver cycle-detection key: the value
	// include.Key(ident, ...) would produce for whatever identifier a
	// nested `$<...>` directive would use to refer back to this same
	// template (internal/tmplsource.Source.Ident computes this for a file
	// loaded from disk with no search path in play). Leaving it empty is
	// safe for a one-off in-memory source with no such identifier, but a
	// recursive include chain that cycles back to source itself is then
	// only caught one level later and reported against whichever other
	// include closed the loop, instead of against source's own name.
	Name string
}

// compile runs the tokenizer, block builder and include resolver over
// source, producing a tree ready for the renderer.
func compile(source string, opts Options) ([]block.Node, *Error) {
	raws, err := directive.Tokenize(source)
	if err != nil {
		return nil, err
	}
	nodes, err := block.Build(raws)
	if err != nil {
		return nil, err
	}
	incOpts := include.Options{Search: opts.Search, Resolve: opts.Resolve, EntryIdent: opts.Name}
	if err := include.ResolveAll(nodes, incOpts); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Render tokenizes, block-builds, resolves includes for, and renders
// source against root (using cap to manipulate it), writing output through
// emit. It returns the number of bytes written. ctx is checked for
// cancellation between directives.
func Render(ctx context.Context, source string, cap value.Capability, root value.Value, emit EmitFunc, opts Options) (int64, *Error) {
	nodes, err := compile(source, opts)
	if err != nil {
		return 0, err
	}
	renderOpts := render.Options{Escape: opts.Escape, IgnoreEmitZero: opts.IgnoreEmitZero}
	env := eval.Env{Cap: cap, Root: root, Scope: root}
	return render.Render(ctx, nodes, env, emit, renderOpts)
}

// RenderToFile renders source, writing output to w.
func RenderToFile(ctx context.Context, source string, cap value.Capability, root value.Value, w io.Writer, opts Options) (int64, *Error) {
	return Render(ctx, source, cap, root, w.Write, opts)
}

// RenderToBuffer renders source into a freshly allocated growable buffer.
func RenderToBuffer(ctx context.Context, source string, cap value.Capability, root value.Value, opts Options) ([]byte, *Error) {
	var buf bytes.Buffer
	if _, err := Render(ctx, source, cap, root, buf.Write, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
