package calstore

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calquery"
)

func mustBook(t *testing.T, e *Engine, policy calmodel.SyncPolicy) calmodel.Book {
	t.Helper()
	b, err := e.CreateBook("alice", calmodel.Book{Name: "Work", SyncPolicy: policy})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	return b
}

func TestCreateEvent_AutoUID(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	ev, err := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.UID == "" {
		t.Fatal("expected CreateEvent to auto-generate a UID")
	}
	if ev.CreatedVer == 0 || ev.ChangedVer == 0 {
		t.Fatalf("expected non-zero created/changed ver, got %d/%d", ev.CreatedVer, ev.ChangedVer)
	}
}

func TestCreateEvent_ExplicitUIDPreserved(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	ev, err := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup", UID: "fixed-uid"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.UID != "fixed-uid" {
		t.Fatalf("UID = %q, want fixed-uid", ev.UID)
	}
}

func TestCreateAndGetEvent_WithChildren(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	ev, err := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "launch review",
		DTStart: calmodel.NewUtime(1000),
		DTEnd:   calmodel.NewUtime(2000),
		Alarms: []calmodel.Alarm{
			{Tick: 10, Unit: calmodel.UnitMinute},
		},
		Attendees: []calmodel.Attendee{
			{Email: "bob@example.com", Role: "REQ-PARTICIPANT"},
		},
		Extended: []calmodel.Extended{
			{Key: "source", Value: "import"},
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if !ev.HasAlarm || !ev.HasAttendee || !ev.HasExtended {
		t.Fatalf("has_* flags not set on create: %+v", ev)
	}

	got, err := e.GetEvent(ev.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Summary != "launch review" {
		t.Fatalf("summary mismatch: %q", got.Summary)
	}
	if len(got.Alarms) != 1 || got.Alarms[0].Tick != 10 {
		t.Fatalf("alarms not round-tripped: %+v", got.Alarms)
	}
	if len(got.Attendees) != 1 || got.Attendees[0].Email != "bob@example.com" {
		t.Fatalf("attendees not round-tripped: %+v", got.Attendees)
	}
	if len(got.Extended) != 1 || got.Extended[0].Key != "source" {
		t.Fatalf("extended not round-tripped: %+v", got.Extended)
	}
}

func TestCreateEvent_RRuleFieldsRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	ev, err := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "standup",
		RRuleFields: calmodel.RRuleFields{
			Freq:     calmodel.FreqWeekly,
			Interval: 1,
			ByDay: []calmodel.ByDayRule{
				{Nth: 0, Weekday: calmodel.Monday},
				{Nth: 2, Weekday: calmodel.Tuesday},
			},
			ByMonth: []int32{1, 6},
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	got, err := e.GetEvent(ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Freq != calmodel.FreqWeekly {
		t.Fatalf("freq = %v, want FreqWeekly", got.Freq)
	}
	if len(got.ByDay) != 2 || got.ByDay[1].Nth != 2 || got.ByDay[1].Weekday != calmodel.Tuesday {
		t.Fatalf("byday not round-tripped: %+v", got.ByDay)
	}
	if len(got.ByMonth) != 2 || got.ByMonth[0] != 1 || got.ByMonth[1] != 6 {
		t.Fatalf("bymonth not round-tripped: %+v", got.ByMonth)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetEvent(42)
	if calerr.Of(err) != calerr.DBRecordNotFound {
		t.Fatalf("GetEvent(42) code = %v, want DBRecordNotFound", calerr.Of(err))
	}
}

func TestQueryEvents_EmptyQueryReturnsAll(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "b-event", Priority: 2})
	e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "a-event", Priority: 1})
	e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "c-event", Priority: 3})

	events, err := e.QueryEvents(calquery.Query{})
	if err != nil {
		t.Fatalf("QueryEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
}

func TestQueryEvents_ExcludesTodos(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)

	e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "an event"})
	e.CreateTodo(calmodel.Todo{BookID: b.ID, Summary: "a todo"})

	events, err := e.QueryEvents(calquery.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Summary != "an event" {
		t.Fatalf("QueryEvents leaked todos: %+v", events)
	}
}

func TestCreateEvent_RejectedOnReadOnlyBook(t *testing.T) {
	e := newTestEngine(t)
	b, err := e.CreateBook("alice", calmodel.Book{Name: "Archive", Mode: calmodel.ModeReadOnly})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	_, err = e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "should fail"})
	if calerr.Of(err) != calerr.PermissionDenied {
		t.Fatalf("CreateEvent on read-only book code = %v, want PermissionDenied", calerr.Of(err))
	}
}

func TestDeleteEvent_ForMeHardDeletes(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})

	if err := e.DeleteEvent(ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := e.GetEvent(ev.ID); calerr.Of(err) != calerr.DBRecordNotFound {
		t.Fatalf("expected DBRecordNotFound after delete, got %v", err)
	}
}

func TestDeleteEvent_EveryAndDeleteTombstones(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncEveryAndDelete)
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})

	if err := e.DeleteEvent(ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	changes, _, err := e.PullChanges(0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range changes {
		if c.RecordID == ev.ID && c.Status == calmodel.ModifiedDelete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tombstone for deleted event %d", ev.ID)
	}
}

func TestDeleteEvent_EveryAndRemainSoftDeletes(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncEveryAndRemain)
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})

	if err := e.DeleteEvent(ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	got, err := e.GetEvent(ev.ID)
	if err != nil {
		t.Fatalf("expected every-and-remain delete to leave the row present, got err: %v", err)
	}
	if got.ChangedVer <= ev.ChangedVer {
		t.Fatalf("expected changed_ver to be bumped by delete, before=%d after=%d", ev.ChangedVer, got.ChangedVer)
	}

	changes, _, err := e.PullChanges(0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range changes {
		if c.RecordID == ev.ID && c.Status == calmodel.ModifiedDelete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected soft-deleted event %d to surface as ModifiedDelete", ev.ID)
	}
}

func TestGetEventsByIDs(t *testing.T) {
	e := newTestEngine(t)
	b := mustBook(t, e, calmodel.SyncForMe)
	e1, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "one"})
	e2, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "two"})
	e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "three"})

	got, err := e.GetEventsByIDs([]int64{e1.ID, e2.ID})
	if err != nil {
		t.Fatalf("GetEventsByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
}

func TestGetEventsByIDs_Empty(t *testing.T) {
	e := newTestEngine(t)
	got, err := e.GetEventsByIDs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty id list, got %+v", got)
	}
}
