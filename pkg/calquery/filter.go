// Package calquery implements the composite filter tree and its
// compilation to parameterised SQL (spec §4.5, component C5).
package calquery

import (
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

// StringMatch enumerates the string-valued match operators (spec §4.5.1).
type StringMatch int

const (
	MatchEqual StringMatch = iota + 1
	MatchFullString
	MatchContains
	MatchStartsWith
	MatchEndsWith
	MatchExactly
)

// NumberMatch enumerates the numeric/caltime match operators.
type NumberMatch int

const (
	MatchNumEqual NumberMatch = iota + 1
	MatchGreater
	MatchGreaterOrEqual
	MatchLess
	MatchLessOrEqual
	MatchNotEqual
	MatchIsNull
)

// LogicalOp joins sibling children of a composite filter.
type LogicalOp int

const (
	OpAnd LogicalOp = iota + 1
	OpOr
)

// AttributeFilter is a single leaf test against one property (spec §4.5.1).
type AttributeFilter struct {
	Property    calview.PropertyID
	StringMatch StringMatch // set when Value.Type == CellString
	NumberMatch NumberMatch // set otherwise
	Value       calmodel.Cell
}

// CompositeFilter is an AND/OR tree of children. Invariant: len(Ops) ==
// len(Children)-1 (spec §4.5.1); operators bind left-to-right with no
// precedence between AND and OR.
type CompositeFilter struct {
	ViewURI  string
	Children []Filter
	Ops      []LogicalOp
}

// Filter is either an attribute leaf or a composite node. Exactly one of
// Attr/Composite is non-nil.
type Filter struct {
	Attr      *AttributeFilter
	Composite *CompositeFilter
}

func Leaf(f AttributeFilter) Filter             { return Filter{Attr: &f} }
func Composite(c CompositeFilter) Filter        { return Filter{Composite: &c} }
func (f Filter) IsZero() bool                   { return f.Attr == nil && f.Composite == nil }

// Validate checks the composite-arity invariant recursively and that
// every composite's ViewURI matches the view query is compiled against
// (spec §7: "filter view URI mismatch" is invalid-parameter).
func (f Filter) Validate(expectViewURI string) error {
	if f.IsZero() {
		return nil
	}
	if f.Attr != nil {
		return nil
	}
	c := f.Composite
	if c.ViewURI != "" && c.ViewURI != expectViewURI {
		return errInvalidf("filter view URI %q does not match query view %q", c.ViewURI, expectViewURI)
	}
	if len(c.Ops) != len(c.Children)-1 {
		return errInvalidf("composite filter arity mismatch: %d children, %d operators (want %d)", len(c.Children), len(c.Ops), len(c.Children)-1)
	}
	for _, child := range c.Children {
		if err := child.Validate(expectViewURI); err != nil {
			return err
		}
	}
	return nil
}

// Query bundles a filter with a projection, sort key, and page bounds
// (spec §4.5.3/§4.5.4).
type Query struct {
	ViewURI    string
	Filter     Filter
	Projection []calview.PropertyID // empty == all properties
	OrderBy    calview.PropertyID
	OrderDesc  bool
	Distinct   bool
	Limit      int // 0 == no limit
	Offset     int
}
