// Package block implements the Block Builder (§4.F): it turns the flat
// []directive.Raw list from pkg/directive into a genuinely nested tree.
// Per SPEC_FULL.md's resolution of the "directive tree shape" open
// question, the tree is built from nested owned child slices — a single
// Conditional node chaining if/elif/else arms, a single Switch node
// holding ordered case/default arms — rather than the cyclic
// parent/prev/next/child pointer graph a C-era implementation would use.
package block

import "github.com/keurnel/lattice/pkg/ast"

// Node is the sum type of the block tree. Every node knows the source line
// of its opening directive.
type Node interface {
	blockNode()
	Line() int
}

type base struct{ line int }

func (b base) blockNode() {}
func (b base) Line() int  { return b.line }

// Span is a literal run of template bytes.
type Span struct {
	base
	Text string
}

// SubEsc is a `$[ expr ]` escaped substitution.
type SubEsc struct {
	base
	Expr ast.Node
}

// SubRaw is a `${ expr }` raw substitution.
type SubRaw struct {
	base
	Expr ast.Node
}

// Include is an unresolved `$<path>` directive. The include resolver
// (pkg/include) fills in Children once it has tokenized and block-built
// the referenced template.
type Include struct {
	base
	Path     string
	Children []Node
}

// CondArm is one arm of an if/elif/else chain. Cond == nil marks the
// trailing else arm (there is at most one, and it must be last).
type CondArm struct {
	Cond ast.Node
	Body []Node
}

// Conditional is the single node representing a whole if/elif*/else? chain.
type Conditional struct {
	base
	Arms []CondArm
}

// CaseArm is one `case expr:` arm of a switch.
type CaseArm struct {
	Expr ast.Node
	Body []Node
}

// Switch is a switch/case/default block. Default == nil when absent.
type Switch struct {
	base
	Discriminant ast.Node
	Cases        []CaseArm
	Default      []Node
}

// ForRange is a `for id from lo..hi:` / `for id from lo..=hi:` block.
type ForRange struct {
	base
	Ident     string
	Inclusive bool
	Low, High ast.Node
	Body      []Node
}

// ForIter is a `for id in expr:` block.
type ForIter struct {
	base
	Ident string
	Iter  ast.Node
	Body  []Node
}

// With is a `with expr:` block; it rebinds scope rather than merging into it.
type With struct {
	base
	Expr ast.Node
	Body []Node
}

func newSpan(line int, text string) *Span       { return &Span{base{line}, text} }
func newSubEsc(line int, e ast.Node) *SubEsc     { return &SubEsc{base{line}, e} }
func newSubRaw(line int, e ast.Node) *SubRaw     { return &SubRaw{base{line}, e} }
func newInclude(line int, path string) *Include  { return &Include{base: base{line}, Path: path} }
