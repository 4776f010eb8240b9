// Package tmplsource loads a top-level template file from disk and derives
// the identifier the include resolver (pkg/include) needs to recognise a
// nested include that cycles back to that same file. It started as a
// narrowing of the teacher repo's internal/lineMap.Source down to lattice's
// own file convention, but lineMap.Source never had to answer "what is this
// file's own include identity" — a render entrypoint has no Include node of
// its own to carry that identity, so something has to compute it once at
// load time and hand it to the renderer. That is this package's job now;
// lineMap's companion Instance and History types tracked incremental edits
// to a live-edited buffer, a use case lattice's single-pass render pipeline
// has no counterpart for, so they were not carried over (see DESIGN.md).
package tmplsource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Source is a loaded template file, validated and read exactly once.
type Source struct {
	path    string
	content string
}

// Load reads path, which must name a ".tmpl" file, and returns its content.
func Load(path string) (Source, error) {
	if !strings.HasSuffix(path, ".tmpl") {
		return Source{}, errors.New("tmplsource: template file must have a .tmpl extension")
	}

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, errors.New("tmplsource: template path is a directory where a file is expected")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}

	return Source{path: path, content: string(content)}, nil
}

// Path returns the file path the source was loaded from.
func (s Source) Path() string { return s.path }

// Content returns the loaded template source text.
func (s Source) Content() string { return s.content }

// Ident returns the identifier to seed the include resolver's recursion
// stack with before rendering this source. It is filepath.Clean'd so that
// a nested `$<./a.tmpl>` and a command-line argument of `a.tmpl` naming the
// same file are recognised as the same identity rather than missing a
// cycle back to the entry template because the two spellings differ.
func (s Source) Ident() string { return filepath.Clean(s.path) }
