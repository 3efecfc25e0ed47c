package calmodel

// CellType tags the five value shapes the codec moves between Go and SQL
// bind slots / column reads (spec §4.1).
type CellType int

const (
	CellString CellType = iota + 1
	CellInt32
	CellFloat64
	CellInt64
	CellCalTime
)

// Cell is the tagged-union value the rest of the engine passes around
// instead of talking to *sql.Rows/*sql.Stmt directly. A NULL string reads
// back as "" (empty string), never as a Go nil — strings are never NULL
// in the output record (spec §4.1).
type Cell struct {
	Type CellType

	Str     string
	I32     int32
	F64     float64
	I64     int64
	CalTime CalTime
}

func StringCell(s string) Cell        { return Cell{Type: CellString, Str: s} }
func Int32Cell(v int32) Cell          { return Cell{Type: CellInt32, I32: v} }
func Float64Cell(v float64) Cell      { return Cell{Type: CellFloat64, F64: v} }
func Int64Cell(v int64) Cell          { return Cell{Type: CellInt64, I64: v} }
func CalTimeCell(v CalTime) Cell      { return Cell{Type: CellCalTime, CalTime: v} }

// NullString coalesces a *string read from a nullable SQL column to "",
// matching the codec's "NULL binds nothing, reads as empty string" rule.
func NullString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
