package include_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keurnel/lattice/pkg/block"
	"github.com/keurnel/lattice/pkg/directive"
	"github.com/keurnel/lattice/pkg/include"
)

func buildTree(t *testing.T, source string) []block.Node {
	t.Helper()
	raws, terr := directive.Tokenize(source)
	require.Nil(t, terr)
	nodes, berr := block.Build(raws)
	require.Nil(t, berr)
	return nodes
}

func TestResolveAllFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.tmpl"), []byte("included text"), 0o644))

	nodes := buildTree(t, "before $<partial.tmpl> after")
	err := include.ResolveAll(nodes, include.Options{Search: []string{dir}})
	require.Nil(t, err)

	inc := nodes[1].(*block.Include)
	require.Len(t, inc.Children, 1)
	span := inc.Children[0].(*block.Span)
	assert.Equal(t, "included text", span.Text)
}

func TestResolveAllMissingFileIsIncludeError(t *testing.T) {
	nodes := buildTree(t, "$<does-not-exist.tmpl>")
	err := include.ResolveAll(nodes, include.Options{Search: []string{t.TempDir()}})
	require.NotNil(t, err)
}

func TestResolveAllDetectsRecursion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tmpl"), []byte("$<b.tmpl>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tmpl"), []byte("$<a.tmpl>"), 0o644))

	nodes := buildTree(t, "$<a.tmpl>")
	err := include.ResolveAll(nodes, include.Options{Search: []string{dir}})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "a.tmpl")
}

func TestResolveAllDetectsRecursionThroughEntry(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.tmpl")
	require.NoError(t, os.WriteFile(aPath, []byte("$<b.tmpl>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tmpl"), []byte("$<a.tmpl>"), 0o644))

	base := include.Options{Search: []string{dir}}
	opts := include.Options{Search: []string{dir}, EntryIdent: include.Key("a.tmpl", base)}
	require.Equal(t, aPath, opts.EntryIdent)
	nodes := buildTree(t, "$<b.tmpl>") // a.tmpl's own content, rendered directly as the entry
	err := include.ResolveAll(nodes, opts)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "a.tmpl")
}

func TestResolveAllGlobSearchEntry(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "partials")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "header.tmpl"), []byte("HEADER"), 0o644))

	nodes := buildTree(t, "$<header.tmpl>")
	err := include.ResolveAll(nodes, include.Options{Search: []string{filepath.Join(dir, "**")}})
	require.Nil(t, err)
	inc := nodes[0].(*block.Include)
	require.Len(t, inc.Children, 1)
	assert.Equal(t, "HEADER", inc.Children[0].(*block.Span).Text)
}
