package calquery

import (
	"strings"
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

func eventView(t *testing.T) *calview.Table {
	t.Helper()
	v, err := calview.GetPropertyInfo(calview.URIEvent)
	if err != nil {
		t.Fatalf("GetPropertyInfo: %v", err)
	}
	return v
}

func TestCompileSelect_SimpleFilter(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI: calview.URIEvent,
		Filter: Leaf(AttributeFilter{
			Property:    calview.PropSummary,
			StringMatch: MatchContains,
			Value:       calmodel.StringCell("meet"),
		}),
	}
	c, err := CompileSelect(v, q, false)
	if err != nil {
		t.Fatalf("CompileSelect: %v", err)
	}
	if !strings.Contains(c.SQL, "summary LIKE ?") {
		t.Fatalf("sql = %q, want LIKE clause", c.SQL)
	}
	if len(c.Args) != 1 || c.Args[0] != "%meet%" {
		t.Fatalf("args = %v, want [%%meet%%]", c.Args)
	}
}

func TestCompileSelect_CompositeAnd(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI: calview.URIEvent,
		Filter: Composite(CompositeFilter{
			ViewURI: calview.URIEvent,
			Children: []Filter{
				Leaf(AttributeFilter{Property: calview.PropSummary, StringMatch: MatchContains, Value: calmodel.StringCell("meet")}),
				Leaf(AttributeFilter{Property: calview.PropBookID, NumberMatch: MatchNumEqual, Value: calmodel.Int64Cell(1)}),
			},
			Ops: []LogicalOp{OpAnd},
		}),
		OrderBy: calview.PropDTStart,
		Limit:   10,
	}
	c, err := CompileSelect(v, q, false)
	if err != nil {
		t.Fatalf("CompileSelect: %v", err)
	}
	if !strings.Contains(c.SQL, " AND ") {
		t.Fatalf("sql = %q, want AND join", c.SQL)
	}
	if !strings.Contains(c.SQL, "ORDER BY CASE") {
		t.Fatalf("sql = %q, want CASE-based caltime order", c.SQL)
	}
	if !strings.Contains(c.SQL, "LIMIT ? OFFSET ?") {
		t.Fatalf("sql = %q, want limit/offset", c.SQL)
	}
	if len(c.Args) != 4 { // like, bookid, limit, offset
		t.Fatalf("args = %v, want 4 bind values", c.Args)
	}
}

func TestCompileSelect_ArityMismatch(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI: calview.URIEvent,
		Filter: Composite(CompositeFilter{
			ViewURI:  calview.URIEvent,
			Children: []Filter{Leaf(AttributeFilter{Property: calview.PropSummary, StringMatch: MatchEqual, Value: calmodel.StringCell("x")})},
			Ops:      []LogicalOp{OpAnd},
		}),
	}
	if _, err := CompileSelect(v, q, false); err == nil {
		t.Fatal("expected arity-mismatch error")
	}
}

func TestCompileSelect_ViewMismatch(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI: calview.URIEvent,
		Filter: Composite(CompositeFilter{
			ViewURI: calview.URITodo,
			Children: []Filter{
				Leaf(AttributeFilter{Property: calview.PropSummary, StringMatch: MatchEqual, Value: calmodel.StringCell("x")}),
			},
		}),
	}
	if _, err := CompileSelect(v, q, false); err == nil {
		t.Fatal("expected view URI mismatch error")
	}
}

func TestCompileSelect_Count(t *testing.T) {
	v := eventView(t)
	q := Query{ViewURI: calview.URIEvent}
	c, err := CompileSelect(v, q, true)
	if err != nil {
		t.Fatalf("CompileSelect: %v", err)
	}
	if !strings.HasPrefix(c.SQL, "SELECT count(*)") {
		t.Fatalf("sql = %q, want count(*) prefix", c.SQL)
	}
}

func TestCompileSelect_IsNull(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI: calview.URIEvent,
		Filter:  Leaf(AttributeFilter{Property: calview.PropPriority, NumberMatch: MatchIsNull}),
	}
	c, err := CompileSelect(v, q, false)
	if err != nil {
		t.Fatalf("CompileSelect: %v", err)
	}
	if !strings.Contains(c.SQL, "priority IS NULL") {
		t.Fatalf("sql = %q, want IS NULL", c.SQL)
	}
	if len(c.Args) != 0 {
		t.Fatalf("args = %v, want none", c.Args)
	}
}

func TestCompileSelect_Projection(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI:    calview.URIEvent,
		Projection: []calview.PropertyID{calview.PropID, calview.PropSummary},
	}
	c, err := CompileSelect(v, q, false)
	if err != nil {
		t.Fatalf("CompileSelect: %v", err)
	}
	if !strings.Contains(c.SQL, "id, summary") {
		t.Fatalf("sql = %q, want projected columns", c.SQL)
	}
}

func TestCompileSelect_UnknownPropertyFails(t *testing.T) {
	v := eventView(t)
	q := Query{
		ViewURI: calview.URIEvent,
		Filter:  Leaf(AttributeFilter{Property: calview.PropAttendeeRole, NumberMatch: MatchNumEqual, Value: calmodel.Int32Cell(1)}),
	}
	if _, err := CompileSelect(v, q, false); err == nil {
		t.Fatal("expected error for property not in view")
	}
}
