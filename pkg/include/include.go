// Package include implements the Include Resolver (§4.G): it turns an
// unresolved block.Include directive into a nested, fully block-built
// template tree, reading contents per the search/resolve behaviour table
// and rejecting recursive includes.
//
// Cycle detection is a real-time DFS recursion-stack check — push the
// resolved key before recursing into a nested include, pop it on the way
// back out — the same shape as the teacher's dependency_graph.cyclic
// (visited/recStack DFS), inlined into the resolve-then-parse step instead
// of run as a separate whole-graph analysis pass.
package include

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/keurnel/lattice/pkg/block"
	"github.com/keurnel/lattice/pkg/directive"
	"github.com/keurnel/lattice/pkg/lerr"
)

// Options mirrors the subset of the engine's public Options record the
// resolver needs, kept as a separate type so this package never imports
// the root facade package (which itself imports include, to avoid a cycle).
type Options struct {
	Search  []string
	Resolve func(ident string) (string, error)

	// EntryIdent is the cycle-detection key (see Key) of the top-level
	// template being rendered, already resolved to the same form a nested
	// include referring back to it by name would produce — the caller
	// computes this with Key, not a raw include identifier. Empty means
	// the caller has no stable identity for its entry source (e.g. an ad
	// hoc in-memory string with no name), so a cycle back through the
	// entry itself is only caught one level later, and reported against
	// whichever other include closed the loop.
	EntryIdent string
}

// ResolveAll walks a block tree depth-first, resolving every block.Include
// node it finds (including ones nested inside already-resolved includes)
// and filling in its Children in place. When opts.EntryIdent is set, it is
// pushed onto the recursion stack first, so an include chain that cycles
// back to the entry template is reported by the entry's own name rather
// than going unnoticed because nothing ever pushed it.
func ResolveAll(nodes []block.Node, opts Options) *lerr.Error {
	stack := map[string]bool{}
	if opts.EntryIdent != "" {
		stack[opts.EntryIdent] = true
	}
	r := &resolver{opts: opts, stack: stack}
	return r.walk(nodes)
}

type resolver struct {
	opts  Options
	stack map[string]bool
}

func (r *resolver) walk(nodes []block.Node) *lerr.Error {
	for _, n := range nodes {
		switch t := n.(type) {
		case *block.Include:
			if err := r.resolveInclude(t); err != nil {
				return err
			}
		case *block.Conditional:
			for _, arm := range t.Arms {
				if err := r.walk(arm.Body); err != nil {
					return err
				}
			}
		case *block.Switch:
			for _, c := range t.Cases {
				if err := r.walk(c.Body); err != nil {
					return err
				}
			}
			if t.Default != nil {
				if err := r.walk(t.Default); err != nil {
					return err
				}
			}
		case *block.ForRange:
			if err := r.walk(t.Body); err != nil {
				return err
			}
		case *block.ForIter:
			if err := r.walk(t.Body); err != nil {
				return err
			}
		case *block.With:
			if err := r.walk(t.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) resolveInclude(inc *block.Include) *lerr.Error {
	key, contents, err := resolveContents(inc.Path, r.opts)
	if err != nil {
		return err.WithFile(inc.Path)
	}
	if r.stack[key] {
		return lerr.IncludeErrorf(inc.Line(), "recursive include: %q", inc.Path).WithFile(inc.Path)
	}

	raws, terr := directive.Tokenize(contents)
	if terr != nil {
		return terr.WithFile(inc.Path)
	}
	children, berr := block.Build(raws)
	if berr != nil {
		return berr.WithFile(inc.Path)
	}

	r.stack[key] = true
	if err := r.walk(children); err != nil {
		return err
	}
	delete(r.stack, key)

	inc.Children = children
	return nil
}

// Key computes the cycle-detection identity that ident resolves to under
// opts, using the same §4.G mode the resolver itself would use to read it.
// It is exported so a caller loading the entry template outside the
// resolver (see internal/tmplsource.Source.Ident) can compute a matching
// identity to seed Options.EntryIdent with, without duplicating the mode
// dispatch here.
func Key(ident string, opts Options) string {
	switch {
	case opts.Resolve != nil && len(opts.Search) > 0:
		// Contents-bypass mode never reads a path, so the identifier
		// itself, not anything Resolve returns, is the only stable key.
		return "contents:" + ident

	case opts.Resolve != nil:
		if path, err := opts.Resolve(ident); err == nil {
			return path
		}
		return ident

	case len(opts.Search) > 0:
		for _, dir := range opts.Search {
			if strings.Contains(dir, "*") {
				matches, err := doublestar.FilepathGlob(dir)
				if err != nil {
					continue
				}
				for _, m := range matches {
					if filepath.Base(m) == ident {
						return m
					}
				}
				continue
			}
			candidate := filepath.Join(dir, ident)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		return filepath.Clean(ident)

	default:
		return filepath.Clean(ident)
	}
}

// resolveContents implements the §4.G behaviour table, returning both the
// Key identity to track on the recursion stack and the template contents.
func resolveContents(ident string, opts Options) (key, contents string, lerrv *lerr.Error) {
	switch {
	case opts.Resolve != nil && len(opts.Search) > 0:
		out, err := opts.Resolve(ident)
		if err != nil {
			return "", "", lerr.IncludeErrorf(0, "resolve(%q): %v", ident, err)
		}
		return Key(ident, opts), out, nil

	case opts.Resolve != nil:
		path, err := opts.Resolve(ident)
		if err != nil {
			return "", "", lerr.IncludeErrorf(0, "resolve(%q): %v", ident, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", lerr.IncludeErrorf(0, "include %q: %v", ident, err)
		}
		return path, string(data), nil

	case len(opts.Search) > 0:
		for _, dir := range opts.Search {
			if strings.Contains(dir, "*") {
				matches, err := doublestar.FilepathGlob(dir)
				if err != nil {
					continue
				}
				for _, m := range matches {
					if filepath.Base(m) == ident {
						if data, err := os.ReadFile(m); err == nil {
							return m, string(data), nil
						}
					}
				}
				continue
			}
			candidate := filepath.Join(dir, ident)
			if data, err := os.ReadFile(candidate); err == nil {
				return candidate, string(data), nil
			}
		}
		return "", "", lerr.IncludeErrorf(0, "include %q not found in search path", ident)

	default:
		data, err := os.ReadFile(ident)
		if err != nil {
			return "", "", lerr.IncludeErrorf(0, "include %q: %v", ident, err)
		}
		return filepath.Clean(ident), string(data), nil
	}
}
