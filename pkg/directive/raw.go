// Package directive implements the Template Tokenizer (§4.E): it scans a
// template source into a flat slice of Raw directive records. A later stage
// (pkg/block) pairs openers with terminators into a tree; the tokenizer
// itself does no structural pairing, matching the "flat directive list"
// hand-off point the spec draws between components E and F.
package directive

import "github.com/keurnel/lattice/pkg/ast"

// Kind tags the directive record, mirroring the directive token tags of §3.
type Kind int

const (
	Span Kind = iota
	SubEsc
	SubRaw
	Include
	If
	Elif
	Else
	Switch
	Case
	Default
	ForRangeExc
	ForRangeInc
	ForIter
	With
	End
)

func (k Kind) String() string {
	names := [...]string{
		"span", "sub_esc", "sub_raw", "include", "if", "elif", "else",
		"switch", "case", "default", "for_range_exc", "for_range_inc",
		"for_iter", "with", "end",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Raw is one flat directive record as emitted by the tokenizer.
type Raw struct {
	Kind Kind
	Line int

	Text string // span literal bytes, or include path

	Ident string // for_* loop variable; "_" means anonymous

	Expr1 ast.Node // condition / discriminant / lo-bound / iterable / with-expr
	Expr2 ast.Node // for_range high bound
}
