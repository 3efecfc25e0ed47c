package calquery

import (
	"fmt"
	"strings"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

func errInvalidf(format string, args ...interface{}) error {
	return calerr.InvalidParameterf("calquery.compile", format, args...)
}

// Compiled is the result of compiling a Query against a view (spec §4.5.2-4.5.4).
type Compiled struct {
	SQL  string
	Args []interface{}
}

// CompileSelect builds "SELECT {proj|*} FROM {table} [WHERE ...]
// [ORDER BY ...] [LIMIT ? OFFSET ?]" per spec §4.5.4.
func CompileSelect(view *calview.Table, q Query, countOnly bool) (Compiled, error) {
	if err := q.Filter.Validate(q.ViewURI); err != nil {
		return Compiled{}, err
	}

	var sb strings.Builder
	var args []interface{}

	sb.WriteString("SELECT ")
	if countOnly {
		sb.WriteString("count(*)")
	} else {
		proj, err := createProjection(view, q)
		if err != nil {
			return Compiled{}, err
		}
		if q.Distinct {
			sb.WriteString("DISTINCT ")
		}
		sb.WriteString(proj)
	}
	sb.WriteString(" FROM ")
	sb.WriteString(view.SQLTable)

	if !q.Filter.IsZero() {
		cond, condArgs, err := createCondition(view, q.Filter)
		if err != nil {
			return Compiled{}, err
		}
		if cond != "" {
			sb.WriteString(" WHERE ")
			sb.WriteString(cond)
			args = append(args, condArgs...)
		}
	}

	if !countOnly && q.OrderBy != 0 {
		order, err := createOrder(view, q)
		if err != nil {
			return Compiled{}, err
		}
		sb.WriteString(" ")
		sb.WriteString(order)
	}

	if !countOnly && q.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Offset)
	}

	return Compiled{SQL: sb.String(), Args: args}, nil
}

// CompileFilter exposes the WHERE-clause fragment compiler to callers
// that assemble their own SELECT (e.g. calstore's fixed-column kind
// queries), validating the filter against viewURI first.
func CompileFilter(view *calview.Table, f Filter) (string, []interface{}, error) {
	if err := f.Validate(view.URI); err != nil {
		return "", nil, err
	}
	return createCondition(view, f)
}

// CompileOrderBy exposes the ORDER BY fragment compiler to callers
// assembling their own SELECT.
func CompileOrderBy(view *calview.Table, q Query) (string, error) {
	return createOrder(view, q)
}

// createCondition compiles a Filter tree to a WHERE-clause fragment and
// its bind list (spec §4.5.2).
func createCondition(view *calview.Table, f Filter) (string, []interface{}, error) {
	if f.IsZero() {
		return "", nil, nil
	}
	if f.Attr != nil {
		return compileLeaf(view, *f.Attr)
	}
	return compileComposite(view, *f.Composite)
}

func compileComposite(view *calview.Table, c CompositeFilter) (string, []interface{}, error) {
	var parts []string
	var args []interface{}
	for _, child := range c.Children {
		frag, fragArgs, err := createCondition(view, child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+frag+")")
		args = append(args, fragArgs...)
	}
	var sb strings.Builder
	for i, part := range parts {
		if i > 0 {
			switch c.Ops[i-1] {
			case OpAnd:
				sb.WriteString(" AND ")
			case OpOr:
				sb.WriteString(" OR ")
			default:
				return "", nil, errInvalidf("unknown logical operator %v", c.Ops[i-1])
			}
		}
		sb.WriteString(part)
	}
	return sb.String(), args, nil
}

func compileLeaf(view *calview.Table, a AttributeFilter) (string, []interface{}, error) {
	d, ok := view.Lookup(a.Property)
	if !ok {
		return "", nil, errInvalidf("property %v is not part of view %q", a.Property, view.URI)
	}
	if !d.Filterable() {
		return "", nil, errInvalidf("property %v is not filterable in view %q", a.Property, view.URI)
	}

	if d.Column.IsTime {
		return compileCalTimeLeaf(d, a)
	}

	switch a.Value.Type {
	case calmodel.CellString:
		return compileStringLeaf(d.Column.Columns[0], a)
	default:
		return compileNumberLeaf(d.Column.Columns[0], a)
	}
}

// compileCalTimeLeaf picks the _utime column for Utime values and the
// _datetime column otherwise (spec §4.5.2).
func compileCalTimeLeaf(d calview.Descriptor, a AttributeFilter) (string, []interface{}, error) {
	utimeCol, datetimeCol := d.Column.Columns[1], d.Column.Columns[2]
	col := datetimeCol
	var bind interface{}
	if a.Value.Type == calmodel.CellCalTime && a.Value.CalTime.Kind == calmodel.CalTimeUtime {
		col = utimeCol
		bind = a.Value.CalTime.Utime
	} else if a.Value.Type == calmodel.CellCalTime {
		col = datetimeCol
		bind = a.Value.CalTime.FormatLocal()
	} else {
		return "", nil, errInvalidf("caltime filter on %s requires a CalTime value", utimeCol)
	}
	return compileNumberOp(col, a.NumberMatch, bind)
}

func compileNumberLeaf(col string, a AttributeFilter) (string, []interface{}, error) {
	if a.NumberMatch == MatchIsNull {
		return col + " IS NULL", nil, nil
	}
	var bind interface{}
	switch a.Value.Type {
	case calmodel.CellInt32:
		bind = a.Value.I32
	case calmodel.CellInt64:
		bind = a.Value.I64
	case calmodel.CellFloat64:
		bind = a.Value.F64
	default:
		return "", nil, errInvalidf("unsupported numeric cell type on %s", col)
	}
	return compileNumberOp(col, a.NumberMatch, bind)
}

func compileNumberOp(col string, m NumberMatch, bind interface{}) (string, []interface{}, error) {
	if m == MatchIsNull {
		return col + " IS NULL", nil, nil
	}
	op, ok := numberOps[m]
	if !ok {
		return "", nil, errInvalidf("unknown numeric match operator %v", m)
	}
	return col + " " + op + " ?", []interface{}{bind}, nil
}

var numberOps = map[NumberMatch]string{
	MatchNumEqual:       "=",
	MatchGreater:        ">",
	MatchGreaterOrEqual: ">=",
	MatchLess:           "<",
	MatchLessOrEqual:    "<=",
	MatchNotEqual:       "!=",
}

// compileStringLeaf compiles the string match operators to "col LIKE ?"
// with '\' escape, percent-expanding per spec §4.5.2 (MatchFullString
// binds the escaped value with no wildcard), except MatchEqual (an exact
// "=") and MatchExactly (case-sensitive exact, same SQL shape since
// SQLite TEXT comparison is byte-wise by default).
func compileStringLeaf(col string, a AttributeFilter) (string, []interface{}, error) {
	v := escapeLike(a.Value.Str)
	switch a.StringMatch {
	case MatchEqual, MatchExactly:
		return col + " = ?", []interface{}{a.Value.Str}, nil
	case MatchFullString:
		return col + " LIKE ? ESCAPE '\\'", []interface{}{v}, nil
	case MatchContains:
		return col + " LIKE ? ESCAPE '\\'", []interface{}{"%" + v + "%"}, nil
	case MatchStartsWith:
		return col + " LIKE ? ESCAPE '\\'", []interface{}{v + "%"}, nil
	case MatchEndsWith:
		return col + " LIKE ? ESCAPE '\\'", []interface{}{"%" + v}, nil
	default:
		return "", nil, errInvalidf("unknown string match operator %v", a.StringMatch)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// createProjection builds the projected column list (spec §4.5.3): each
// property may expand to one or multiple columns (CalTime -> 3 columns).
func createProjection(view *calview.Table, q Query) (string, error) {
	if len(q.Projection) == 0 {
		return "*", nil
	}
	var cols []string
	for _, p := range q.Projection {
		d, ok := view.Lookup(p)
		if !ok {
			return "", errInvalidf("property %v is not part of view %q", p, view.URI)
		}
		if !d.Projectable() {
			return "", errInvalidf("property %v is not projectable in view %q", p, view.URI)
		}
		cols = append(cols, d.Column.Columns...)
	}
	return strings.Join(cols, ", "), nil
}

// createOrder builds "ORDER BY ... [ASC|DESC]" (spec §4.5.3). CalTime
// properties sort by a CASE that picks utime when type=Utime and
// datetime otherwise.
func createOrder(view *calview.Table, q Query) (string, error) {
	d, ok := view.Lookup(q.OrderBy)
	if !ok {
		return "", errInvalidf("order-by property %v is not part of view %q", q.OrderBy, view.URI)
	}
	dir := "ASC"
	if q.OrderDesc {
		dir = "DESC"
	}
	if !d.Column.IsTime {
		return fmt.Sprintf("ORDER BY %s %s", d.Column.Columns[0], dir), nil
	}
	typeCol, utimeCol, datetimeCol := d.Column.Columns[0], d.Column.Columns[1], d.Column.Columns[2]
	caseExpr := fmt.Sprintf(
		"ORDER BY CASE WHEN %s = %d THEN %s ELSE NULL END %s, CASE WHEN %s != %d THEN %s ELSE NULL END %s",
		typeCol, calmodel.CalTimeUtime, utimeCol, dir,
		typeCol, calmodel.CalTimeUtime, datetimeCol, dir,
	)
	return caseExpr, nil
}
