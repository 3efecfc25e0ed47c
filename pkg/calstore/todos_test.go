package calstore

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calquery"
)

func TestCreateAndGetTodo(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	td, err := e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "file taxes", Due: calmodel.NewUtime(5000)})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if td.UID == "" {
		t.Fatal("expected CreateTodo to auto-generate a UID")
	}

	got, err := e.GetTodo(td.ID)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if got.Summary != "file taxes" || got.Due.Utime != 5000 {
		t.Fatalf("todo mismatch: %+v", got)
	}
}

func TestGetTodo_NotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetTodo(7)
	if calerr.Of(err) != calerr.DBRecordNotFound {
		t.Fatalf("GetTodo(7) code = %v, want DBRecordNotFound", calerr.Of(err))
	}
}

func TestQueryTodos_ExcludesEvents(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)
	e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "a todo"})
	e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "an event"})

	todos, err := e.QueryTodos(calquery.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 1 || todos[0].Summary != "a todo" {
		t.Fatalf("QueryTodos leaked events: %+v", todos)
	}
}

func TestCreateTodo_RejectedOnReadOnlyBook(t *testing.T) {
	e := newTestEngine(t)
	b, err := e.CreateBook("alice", calmodel.Book{Name: "Archive", Mode: calmodel.ModeReadOnly})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	_, err = e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "should fail"})
	if calerr.Of(err) != calerr.PermissionDenied {
		t.Fatalf("CreateTodo on read-only book code = %v, want PermissionDenied", calerr.Of(err))
	}
}

func TestDeleteTodo_EveryAndRemainSoftDeletes(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncEveryAndRemain)
	td, _ := e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "file taxes"})

	if err := e.DeleteTodo(td.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}

	got, err := e.GetTodo(td.ID)
	if err != nil {
		t.Fatalf("expected every-and-remain delete to leave the row present, got err: %v", err)
	}
	if got.ChangedVer <= td.ChangedVer {
		t.Fatalf("expected changed_ver to be bumped by delete, before=%d after=%d", td.ChangedVer, got.ChangedVer)
	}

	changes, _, err := e.PullChanges(0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range changes {
		if c.RecordID == td.ID && c.Status == calmodel.ModifiedDelete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected soft-deleted todo %d to surface as ModifiedDelete", td.ID)
	}
}

func TestDeleteTodo_EveryAndDeleteTombstones(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncEveryAndDelete)
	td, _ := e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "file taxes"})

	if err := e.DeleteTodo(td.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}

	changes, _, err := e.PullChanges(0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range changes {
		if c.RecordID == td.ID && c.Kind == calmodel.KindTodo && c.Status == calmodel.ModifiedDelete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tombstone for deleted todo %d", td.ID)
	}
}

func TestGetTodosByIDs(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)
	t1, _ := e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "one"})
	t2, _ := e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "two"})

	got, err := e.GetTodosByIDs([]int64{t1.ID, t2.ID})
	if err != nil {
		t.Fatalf("GetTodosByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d todos, want 2", len(got))
	}
}
