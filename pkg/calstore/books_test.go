package calstore

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestCreateAndGetBook(t *testing.T) {
	e := newTestEngine(t)
	b, err := e.CreateBook("alice", calmodel.Book{Name: "Work", StoreType: calmodel.StoreEvent})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if b.ID <= 0 {
		t.Fatalf("CreateBook returned id %d, want > 0", b.ID)
	}

	got, err := e.GetBook(b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Name != "Work" || got.AccountID != "alice" {
		t.Fatalf("book mismatch: %+v", got)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetBook(999)
	if calerr.Of(err) != calerr.DBRecordNotFound {
		t.Fatalf("GetBook(999) code = %v, want DBRecordNotFound", calerr.Of(err))
	}
}

func TestListBooksForAccount(t *testing.T) {
	e := newTestEngine(t)
	e.CreateBook("alice", calmodel.Book{Name: "Work"})
	e.CreateBook("alice", calmodel.Book{Name: "Personal"})
	e.CreateBook("bob", calmodel.Book{Name: "Bob's"})

	books, err := e.ListBooksForAccount("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books for alice, want 2", len(books))
	}
}

func TestUpdateBook(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})

	b.Name = "Work Renamed"
	b.Color = "blue"
	if err := e.UpdateBook(b); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	got, err := e.GetBook(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Work Renamed" || got.Color != "blue" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestUpdateBook_ReadOnlyRejected(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work", Mode: calmodel.ModeReadOnly})

	b.Name = "renamed"
	err := e.UpdateBook(b)
	if calerr.Of(err) != calerr.PermissionDenied {
		t.Fatalf("UpdateBook on read-only book code = %v, want PermissionDenied", calerr.Of(err))
	}
}

func TestDeleteBook_ForMeHardDeletesChildren(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work", SyncPolicy: calmodel.SyncForMe})
	ev, err := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})
	if err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteBook(b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	if _, err := e.GetEvent(ev.ID); calerr.Of(err) != calerr.DBRecordNotFound {
		t.Fatalf("event should be hard-deleted, got %v", err)
	}
	changes, _, err := e.PullChanges(0)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range changes {
		if c.RecordID == ev.ID && c.Kind == calmodel.KindEvent {
			t.Fatalf("SyncForMe should not tombstone events, found %+v", c)
		}
	}
}

func TestDeleteBook_EveryAndDeleteTombstones(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work", SyncPolicy: calmodel.SyncEveryAndDelete})
	ev, err := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})
	if err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteBook(b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	changes, _, err := e.PullChanges(0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range changes {
		if c.RecordID == ev.ID && c.Kind == calmodel.KindEvent && c.Status == calmodel.ModifiedDelete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a tombstone for event %d, got %+v", ev.ID, changes)
	}
}

func TestDeleteBook_EveryAndRemainKeepsChildren(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work", SyncPolicy: calmodel.SyncEveryAndRemain})
	ev, err := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})
	if err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteBook(b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	if _, err := e.GetEvent(ev.ID); err != nil {
		t.Fatalf("SyncEveryAndRemain should leave the event queryable, got %v", err)
	}
	got, err := e.GetBook(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Deleted {
		t.Fatalf("book should be marked deleted")
	}
}

func TestDeleteAccount_CascadesEveryBook(t *testing.T) {
	e := newTestEngine(t)
	e.CreateBook("alice", calmodel.Book{Name: "Work"})
	e.CreateBook("alice", calmodel.Book{Name: "Personal"})

	if err := e.DeleteAccount("alice"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	books, err := e.ListBooksForAccount("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 0 {
		t.Fatalf("expected no remaining books after DeleteAccount, got %d", len(books))
	}
}
