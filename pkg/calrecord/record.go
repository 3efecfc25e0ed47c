// Package calrecord implements the record handle (spec §3.3-§3.4,
// component C3): a kind-tagged property bag with read-only/dirty
// tracking, plus the list handle (component C4) used to hold an
// ordered collection of records with cursor semantics.
package calrecord

import (
	"fmt"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

func errInvalidf(format string, args ...interface{}) error {
	return calerr.InvalidParameterf("calrecord", format, args...)
}

// Record is the in-memory handle for one of the thirteen concrete kinds
// (spec §3.1). It carries its kind tag, the view it was read through,
// and a property bag addressed by calview.PropertyID rather than
// per-kind struct fields, so a single implementation serves all
// thirteen kinds (the "vtable" is the Kind + ViewURI pair: every typed
// setter looks up the property's Descriptor via calview before storing;
// the typed getters read the property bag directly).
type Record struct {
	Kind    calmodel.RecordKind
	ViewURI string

	values    map[calview.PropertyID]calmodel.Cell
	projected map[calview.PropertyID]bool
	dirty     map[calview.PropertyID]bool

	children map[calmodel.RecordKind][]*Record
}

// New creates an empty record handle for kind, bound to viewURI (spec
// §3.3 invariant 1: "every record handle carries exactly one kind tag
// fixed at creation").
func New(kind calmodel.RecordKind, viewURI string) *Record {
	return &Record{
		Kind:      kind,
		ViewURI:   viewURI,
		values:    map[calview.PropertyID]calmodel.Cell{},
		projected: map[calview.PropertyID]bool{},
		dirty:     map[calview.PropertyID]bool{},
		children:  map[calmodel.RecordKind][]*Record{},
	}
}

func (r *Record) view() (*calview.Table, error) {
	return calview.GetPropertyInfo(r.ViewURI)
}

func (r *Record) descriptor(p calview.PropertyID) (calview.Descriptor, error) {
	v, err := r.view()
	if err != nil {
		return calview.Descriptor{}, err
	}
	d, ok := v.Lookup(p)
	if !ok {
		return calview.Descriptor{}, errInvalidf("property %v is not part of view %q", p, r.ViewURI)
	}
	return d, nil
}

// set stores raw without going through descriptor validation; used by
// calstore to populate a freshly-read row (every column read back from
// SQLite is by definition projectable for its own view).
func (r *Record) set(p calview.PropertyID, v calmodel.Cell, markDirty bool) {
	r.values[p] = v
	r.projected[p] = true
	if markDirty {
		r.dirty[p] = true
	}
}

// Populate is the read-path entry point: calstore calls this once per
// column after a SELECT, bypassing the read-only check (read-only only
// guards writes).
func (r *Record) Populate(p calview.PropertyID, v calmodel.Cell) {
	r.set(p, v, false)
}

// checkWritable validates p is part of the record's view and not
// read-only: a property outside the view fails with invalid-parameter,
// a set on a read-only property fails with not-permitted.
func (r *Record) checkWritable(p calview.PropertyID) error {
	d, err := r.descriptor(p)
	if err != nil {
		return err
	}
	if d.ReadOnly() {
		return calerr.NotPermittedf("calrecord", "property %v is read-only in view %q", p, r.ViewURI)
	}
	return nil
}

func (r *Record) setChecked(p calview.PropertyID, v calmodel.Cell) error {
	if err := r.checkWritable(p); err != nil {
		return err
	}
	r.set(p, v, true)
	return nil
}

// SetStr, SetInt32, SetFloat64, SetInt64 and SetCalTime are the typed
// setters (vtable set_str/set_int/set_double/set_lli/set_caltime);
// every one marks p dirty so calstore's dirty-update path can emit a
// partial UPDATE touching only changed columns (spec §4.6).
func (r *Record) SetStr(p calview.PropertyID, v string) error {
	return r.setChecked(p, calmodel.StringCell(v))
}

func (r *Record) SetInt32(p calview.PropertyID, v int32) error {
	return r.setChecked(p, calmodel.Int32Cell(v))
}

func (r *Record) SetFloat64(p calview.PropertyID, v float64) error {
	return r.setChecked(p, calmodel.Float64Cell(v))
}

func (r *Record) SetInt64(p calview.PropertyID, v int64) error {
	return r.setChecked(p, calmodel.Int64Cell(v))
}

func (r *Record) SetCalTime(p calview.PropertyID, v calmodel.CalTime) error {
	return r.setChecked(p, calmodel.CalTimeCell(v))
}

// GetStr, GetInt32, GetFloat64, GetInt64 and GetCalTime are the typed
// readers. A property never populated reads back as the type's zero
// value, matching the "NULL reads as empty/zero, never as a Go nil"
// rule for Cell (spec §4.1).
func (r *Record) GetStr(p calview.PropertyID) string  { return r.values[p].Str }
func (r *Record) GetInt32(p calview.PropertyID) int32 { return r.values[p].I32 }
func (r *Record) GetFloat64(p calview.PropertyID) float64 {
	return r.values[p].F64
}
func (r *Record) GetInt64(p calview.PropertyID) int64 { return r.values[p].I64 }
func (r *Record) GetCalTime(p calview.PropertyID) calmodel.CalTime {
	return r.values[p].CalTime
}

// GetCell returns the raw tagged-union value for p, used by calstore's
// dirty-update compiler to bind a column generically without a type
// switch per property (spec §4.6 partial UPDATE).
func (r *Record) GetCell(p calview.PropertyID) calmodel.Cell { return r.values[p] }

// GetStrP mirrors vtable get_str_p: ok is false when the property was
// never populated on this handle (as opposed to populated-but-empty).
func (r *Record) GetStrP(p calview.PropertyID) (string, bool) {
	if !r.projected[p] {
		return "", false
	}
	return r.values[p].Str, true
}

// IsProjected reports whether p was fetched on this handle; calquery
// projections leave unrequested properties unset rather than zeroed.
func (r *Record) IsProjected(p calview.PropertyID) bool { return r.projected[p] }

// DirtyProperties returns every property set since creation (or since
// ClearDirty), in no particular order. calstore's dirty-update path
// uses this to build a partial UPDATE statement.
func (r *Record) DirtyProperties() []calview.PropertyID {
	out := make([]calview.PropertyID, 0, len(r.dirty))
	for p := range r.dirty {
		out = append(out, p)
	}
	return out
}

// ClearDirty resets the dirty set, e.g. after calstore has persisted a
// write successfully.
func (r *Record) ClearDirty() {
	r.dirty = map[calview.PropertyID]bool{}
}

// AddChildRecord attaches a child (alarm/attendee/extended/exception)
// under kind (spec §3.1 parent/child ownership, §3.4 list ownership:
// the parent record takes ownership of the pointer).
func (r *Record) AddChildRecord(kind calmodel.RecordKind, child *Record) {
	r.children[kind] = append(r.children[kind], child)
}

// RemoveChildRecord removes the child at index idx under kind.
func (r *Record) RemoveChildRecord(kind calmodel.RecordKind, idx int) error {
	list := r.children[kind]
	if idx < 0 || idx >= len(list) {
		return errInvalidf("child index %d out of range for kind %v (len %d)", idx, kind, len(list))
	}
	r.children[kind] = append(list[:idx], list[idx+1:]...)
	return nil
}

// GetChildRecordCount returns how many children of kind are attached.
func (r *Record) GetChildRecordCount(kind calmodel.RecordKind) int {
	return len(r.children[kind])
}

// GetChildRecordAtP mirrors vtable get_child_record_at_p: ok is false
// past the end of the list.
func (r *Record) GetChildRecordAtP(kind calmodel.RecordKind, idx int) (*Record, bool) {
	list := r.children[kind]
	if idx < 0 || idx >= len(list) {
		return nil, false
	}
	return list[idx], true
}

// CloneChildRecordList returns a deep copy of every child of kind,
// leaving r's own children untouched (used when a caller wants to
// detach a child list without affecting the parent handle, e.g.
// splitting a recurring series at RECURRENCE-ID; spec §4.7.2).
func (r *Record) CloneChildRecordList(kind calmodel.RecordKind) []*Record {
	list := r.children[kind]
	out := make([]*Record, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}

// Clone deep-copies the record handle, including its children (vtable
// clone; spec §3.4: "clone never shares mutable state with the
// original").
func (r *Record) Clone() *Record {
	out := New(r.Kind, r.ViewURI)
	for p, v := range r.values {
		out.values[p] = v
	}
	for p, v := range r.projected {
		out.projected[p] = v
	}
	for p, v := range r.dirty {
		out.dirty[p] = v
	}
	for kind, list := range r.children {
		cloned := make([]*Record, len(list))
		for i, c := range list {
			cloned[i] = c.Clone()
		}
		out.children[kind] = cloned
	}
	return out
}

// Destroy releases the handle. When deleteChildren is true, attached
// children are dropped from r as well (vtable destroy(delete_child));
// when false, the caller is assumed to have already reparented them
// (e.g. moving a set of exceptions onto a split-off series, spec
// §4.7.2 RANGE=THISANDFUTURE).
func (r *Record) Destroy(deleteChildren bool) {
	if deleteChildren {
		r.children = map[calmodel.RecordKind][]*Record{}
	}
	r.values = map[calview.PropertyID]calmodel.Cell{}
	r.projected = map[calview.PropertyID]bool{}
	r.dirty = map[calview.PropertyID]bool{}
}

func (r *Record) String() string {
	return fmt.Sprintf("Record{kind=%s view=%s fields=%d}", r.Kind, r.ViewURI, len(r.values))
}
