package calrecord

// List is the ordered record collection with cursor semantics (spec
// §3.4, component C4). It owns the records it holds: Destroy drops
// every element, and Clone deep-copies them.
type List struct {
	items  []*Record
	cursor int // -1 == before-first
}

// NewList creates an empty list with the cursor positioned before the
// first element.
func NewList() *List {
	return &List{cursor: -1}
}

// Add appends a record and takes ownership of it.
func (l *List) Add(r *Record) {
	l.items = append(l.items, r)
}

// Remove drops the record at idx, adjusting the cursor if needed.
func (l *List) Remove(idx int) error {
	if idx < 0 || idx >= len(l.items) {
		return errInvalidf("list index %d out of range (len %d)", idx, len(l.items))
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	return nil
}

// Len returns the number of records held.
func (l *List) Len() int { return len(l.items) }

// First moves the cursor to the first element and returns it, or
// ok==false if the list is empty.
func (l *List) First() (*Record, bool) {
	if len(l.items) == 0 {
		l.cursor = -1
		return nil, false
	}
	l.cursor = 0
	return l.items[0], true
}

// Last moves the cursor to the last element and returns it.
func (l *List) Last() (*Record, bool) {
	if len(l.items) == 0 {
		l.cursor = -1
		return nil, false
	}
	l.cursor = len(l.items) - 1
	return l.items[l.cursor], true
}

// Next advances the cursor by one and returns the record there, or
// ok==false once the cursor runs past the end (spec §3.4: iterating
// past the end never wraps).
func (l *List) Next() (*Record, bool) {
	if l.cursor+1 >= len(l.items) {
		l.cursor = len(l.items)
		return nil, false
	}
	l.cursor++
	return l.items[l.cursor], true
}

// Prev retreats the cursor by one and returns the record there.
func (l *List) Prev() (*Record, bool) {
	if l.cursor-1 < 0 {
		l.cursor = -1
		return nil, false
	}
	l.cursor--
	return l.items[l.cursor], true
}

// GetCurrentRecordP returns the record at the cursor without moving
// it, or ok==false when the cursor is out of bounds.
func (l *List) GetCurrentRecordP() (*Record, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return nil, false
	}
	return l.items[l.cursor], true
}

// GetNthRecordP returns the record at idx without moving the cursor.
func (l *List) GetNthRecordP(idx int) (*Record, bool) {
	if idx < 0 || idx >= len(l.items) {
		return nil, false
	}
	return l.items[idx], true
}

// Clone deep-copies every record into a new list with its cursor reset
// to before-first.
func (l *List) Clone() *List {
	out := NewList()
	for _, r := range l.items {
		out.items = append(out.items, r.Clone())
	}
	return out
}

// Destroy empties the list, dropping its references to every record it
// held (the records themselves are GC'd once unreferenced elsewhere).
func (l *List) Destroy() {
	l.items = nil
	l.cursor = -1
}
