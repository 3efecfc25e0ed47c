package calrecord

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

func TestListCursor(t *testing.T) {
	l := NewList()
	if _, ok := l.First(); ok {
		t.Fatal("First on empty list should fail")
	}
	l.Add(New(calmodel.KindBook, "book"))
	l.Add(New(calmodel.KindBook, "book"))
	l.Add(New(calmodel.KindBook, "book"))

	if _, ok := l.First(); !ok {
		t.Fatal("First should succeed on non-empty list")
	}
	if _, ok := l.Next(); !ok {
		t.Fatal("Next should reach the second element")
	}
	if _, ok := l.Next(); !ok {
		t.Fatal("Next should reach the third element")
	}
	if _, ok := l.Next(); ok {
		t.Fatal("Next past the end should fail")
	}
	if _, ok := l.Next(); ok {
		t.Fatal("Next should keep failing, not wrap")
	}
}

func TestListRemoveAdjustsCursor(t *testing.T) {
	l := NewList()
	l.Add(New(calmodel.KindBook, "book"))
	l.Add(New(calmodel.KindBook, "book"))
	l.Last()
	if err := l.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
	if _, ok := l.GetCurrentRecordP(); !ok {
		t.Fatal("cursor should land on the remaining element after removing the last one")
	}
}

func TestListCloneIndependence(t *testing.T) {
	l := NewList()
	r, err := FromBook(calmodel.Book{AccountID: "a", StoreType: calmodel.StoreEvent, Name: "Orig"})
	if err != nil {
		t.Fatalf("FromBook: %v", err)
	}
	l.Add(r)
	clone := l.Clone()
	cr, ok := clone.GetNthRecordP(0)
	if !ok {
		t.Fatal("clone should have the copied record at index 0")
	}
	if err := cr.SetStr(calview.PropName, "Changed"); err != nil {
		t.Fatalf("SetStr: %v", err)
	}
	orig, ok := l.GetNthRecordP(0)
	if !ok {
		t.Fatal("original list should still have its record")
	}
	if orig.GetStr(calview.PropName) == "Changed" {
		t.Fatal("mutating the clone's record must not affect the original list's record")
	}
}
