package block

import (
	"github.com/keurnel/lattice/pkg/directive"
	"github.com/keurnel/lattice/pkg/lerr"
)

// Build consumes the flat directive list produced by pkg/directive and
// returns the nested tree described in block.go.
func Build(raws []directive.Raw) ([]Node, *lerr.Error) {
	b := &builder{raws: raws}
	nodes, err := b.parseSeq(nil, 0)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

type builder struct {
	raws []directive.Raw
	i    int
}

// parseSeq consumes directives until it sees a kind present in stop (which
// it leaves unconsumed for the caller to inspect) or runs out of input. An
// empty/nil stop set means "top level": running out of input is success,
// and any of end/elif/else/case/default encountered is a stray-directive
// error. openLine is the line of the construct that opened this sequence,
// used to report "unclosed block" against the right directive.
func (b *builder) parseSeq(stop map[directive.Kind]bool, openLine int) ([]Node, *lerr.Error) {
	var nodes []Node
	for b.i < len(b.raws) {
		r := b.raws[b.i]
		if stop[r.Kind] {
			return nodes, nil
		}
		switch r.Kind {
		case directive.Span:
			nodes = append(nodes, newSpan(r.Line, r.Text))
			b.i++
		case directive.SubEsc:
			nodes = append(nodes, newSubEsc(r.Line, r.Expr1))
			b.i++
		case directive.SubRaw:
			nodes = append(nodes, newSubRaw(r.Line, r.Expr1))
			b.i++
		case directive.Include:
			nodes = append(nodes, newInclude(r.Line, r.Text))
			b.i++
		case directive.If:
			n, err := b.parseConditional()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case directive.Switch:
			n, err := b.parseSwitch()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case directive.ForRangeExc, directive.ForRangeInc:
			n, err := b.parseForRange(r.Kind)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case directive.ForIter:
			n, err := b.parseForIter()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case directive.With:
			n, err := b.parseWith()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case directive.Elif, directive.Else, directive.Case, directive.Default, directive.End:
			return nil, lerr.SyntaxErrorf(r.Line, "unexpected %s directive", r.Kind)
		default:
			return nil, lerr.SyntaxErrorf(r.Line, "unrecognized directive")
		}
	}
	if len(stop) > 0 {
		return nil, lerr.SyntaxErrorf(openLine, "unclosed block")
	}
	return nodes, nil
}

var stopIfArm = map[directive.Kind]bool{directive.Elif: true, directive.Else: true, directive.End: true}
var stopEndOnly = map[directive.Kind]bool{directive.End: true}
var stopSwitchArm = map[directive.Kind]bool{directive.Case: true, directive.Default: true, directive.End: true}

func (b *builder) parseConditional() (*Conditional, *lerr.Error) {
	line := b.raws[b.i].Line
	var arms []CondArm
	for {
		r := b.raws[b.i] // If or Elif
		cond := r.Expr1
		b.i++
		body, err := b.parseSeq(stopIfArm, line)
		if err != nil {
			return nil, err
		}
		arms = append(arms, CondArm{Cond: cond, Body: body})
		if b.i >= len(b.raws) {
			return nil, lerr.SyntaxErrorf(line, "unclosed if chain")
		}
		switch b.raws[b.i].Kind {
		case directive.Elif:
			continue
		case directive.Else:
			b.i++
			elseBody, err := b.parseSeq(stopEndOnly, line)
			if err != nil {
				return nil, err
			}
			arms = append(arms, CondArm{Cond: nil, Body: elseBody})
			if b.i >= len(b.raws) || b.raws[b.i].Kind != directive.End {
				return nil, lerr.SyntaxErrorf(line, "unclosed if chain")
			}
			b.i++
			return &Conditional{base{line}, arms}, nil
		case directive.End:
			b.i++
			return &Conditional{base{line}, arms}, nil
		default:
			return nil, lerr.SyntaxErrorf(line, "unclosed if chain")
		}
	}
}

func (b *builder) parseSwitch() (*Switch, *lerr.Error) {
	line := b.raws[b.i].Line
	disc := b.raws[b.i].Expr1
	b.i++
	var cases []CaseArm
	var def []Node
	haveDefault := false
	for {
		if b.i >= len(b.raws) {
			return nil, lerr.SyntaxErrorf(line, "unclosed switch")
		}
		r := b.raws[b.i]
		switch r.Kind {
		case directive.Case:
			if haveDefault {
				return nil, lerr.SyntaxErrorf(r.Line, "case after default")
			}
			expr := r.Expr1
			b.i++
			body, err := b.parseSeq(stopSwitchArm, line)
			if err != nil {
				return nil, err
			}
			cases = append(cases, CaseArm{Expr: expr, Body: body})
		case directive.Default:
			if haveDefault {
				return nil, lerr.SyntaxErrorf(r.Line, "duplicate default arm")
			}
			haveDefault = true
			b.i++
			body, err := b.parseSeq(stopSwitchArm, line)
			if err != nil {
				return nil, err
			}
			def = body
		case directive.End:
			b.i++
			return &Switch{base{line}, disc, cases, def}, nil
		default:
			return nil, lerr.SyntaxErrorf(r.Line, "switch body may only contain case/default")
		}
	}
}

func (b *builder) parseForRange(kind directive.Kind) (*ForRange, *lerr.Error) {
	r := b.raws[b.i]
	line, ident, low, high := r.Line, r.Ident, r.Expr1, r.Expr2
	b.i++
	body, err := b.parseSeq(stopEndOnly, line)
	if err != nil {
		return nil, err
	}
	if b.i >= len(b.raws) || b.raws[b.i].Kind != directive.End {
		return nil, lerr.SyntaxErrorf(line, "unclosed for loop")
	}
	b.i++
	return &ForRange{base{line}, ident, kind == directive.ForRangeInc, low, high, body}, nil
}

func (b *builder) parseForIter() (*ForIter, *lerr.Error) {
	r := b.raws[b.i]
	line, ident, iter := r.Line, r.Ident, r.Expr1
	b.i++
	body, err := b.parseSeq(stopEndOnly, line)
	if err != nil {
		return nil, err
	}
	if b.i >= len(b.raws) || b.raws[b.i].Kind != directive.End {
		return nil, lerr.SyntaxErrorf(line, "unclosed for loop")
	}
	b.i++
	return &ForIter{base{line}, ident, iter, body}, nil
}

func (b *builder) parseWith() (*With, *lerr.Error) {
	r := b.raws[b.i]
	line, expr := r.Line, r.Expr1
	b.i++
	body, err := b.parseSeq(stopEndOnly, line)
	if err != nil {
		return nil, err
	}
	if b.i >= len(b.raws) || b.raws[b.i].Kind != directive.End {
		return nil, lerr.SyntaxErrorf(line, "unclosed with block")
	}
	b.i++
	return &With{base{line}, expr, body}, nil
}
