package calrecur

import (
	"context"
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func dailyParent(dtstart int64, count int32) calmodel.Event {
	return calmodel.Event{
		ID:      1,
		UID:     "parent-uid",
		Summary: "standup",
		DTStart: calmodel.NewUtime(dtstart),
		DTEnd:   calmodel.NewUtime(dtstart + 3600),
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqDaily,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     count,
		},
	}
}

func TestResolveException_NoRangeExdatesTheParent(t *testing.T) {
	r := &Reconciler{}
	parent := dailyParent(1_700_000_000, 3)
	exception := calmodel.Event{
		UID:          "parent-uid",
		RecurrenceID: "20231114T220000Z",
		Summary:      "cancelled",
	}

	gotParent, gotExc, err := r.ResolveException(context.Background(), parent, exception)
	if err != nil {
		t.Fatalf("ResolveException: %v", err)
	}
	if len(gotParent.ExDate) != 1 || gotParent.ExDate[0] != "20231114T220000Z" {
		t.Fatalf("parent ExDate = %v, want [20231114T220000Z]", gotParent.ExDate)
	}
	if !gotParent.HasException {
		t.Fatal("parent.HasException should be set")
	}
	if gotExc.OriginalEventID != parent.ID {
		t.Fatalf("exception.OriginalEventID = %d, want %d", gotExc.OriginalEventID, parent.ID)
	}
	if gotExc.RecurrenceID != "20231114T220000Z" {
		t.Fatalf("exception.RecurrenceID = %q, unexpected mutation", gotExc.RecurrenceID)
	}
}

func TestResolveException_ThisAndFutureSplitsTheSeries(t *testing.T) {
	r := &Reconciler{}
	parent := dailyParent(1_700_000_000, 5)
	exception := calmodel.Event{
		UID:          "parent-uid",
		RecurrenceID: "20231115T221320Z;RANGE=THISANDFUTURE",
		Summary:      "new time",
		DTStart:      calmodel.NewUtime(1_700_086_400),
		DTEnd:        calmodel.NewUtime(1_700_090_000),
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqWeekly,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     4,
		},
	}

	gotParent, gotExc, err := r.ResolveException(context.Background(), parent, exception)
	if err != nil {
		t.Fatalf("ResolveException: %v", err)
	}
	if gotParent.RangeType != calmodel.RangeUntil {
		t.Fatalf("parent.RangeType = %v, want RangeUntil", gotParent.RangeType)
	}
	if gotParent.Until.Utime != 1_700_086_400-1 {
		t.Fatalf("parent.Until = %d, want %d", gotParent.Until.Utime, 1_700_086_400-1)
	}
	if gotParent.Count != 0 {
		t.Fatalf("parent.Count = %d, want 0 once range-bounded", gotParent.Count)
	}
	if gotExc.OriginalEventID != -1 {
		t.Fatalf("exception.OriginalEventID = %d, want -1 (independent series)", gotExc.OriginalEventID)
	}
	if gotExc.UID == "parent-uid" || gotExc.UID == "" {
		t.Fatalf("exception.UID should be a fresh uuid, got %q", gotExc.UID)
	}
	if gotExc.RecurrenceID != "" {
		t.Fatalf("exception.RecurrenceID should be cleared, got %q", gotExc.RecurrenceID)
	}
}

func TestResolveException_ThisAndPriorMakesExceptionTheHead(t *testing.T) {
	r := &Reconciler{}
	parent := dailyParent(1_700_000_000, 5)
	exception := calmodel.Event{
		UID:          "parent-uid",
		RecurrenceID: "20231115T221320Z;RANGE=THISANDPRIOR",
		Summary:      "head replacement",
	}

	gotParent, gotExc, err := r.ResolveException(context.Background(), parent, exception)
	if err != nil {
		t.Fatalf("ResolveException: %v", err)
	}
	if gotParent.DTStart.Utime != 1_700_086_400+1 {
		t.Fatalf("parent.DTStart = %d, want %d", gotParent.DTStart.Utime, 1_700_086_400+1)
	}
	if gotExc.OriginalEventID != -1 {
		t.Fatalf("exception.OriginalEventID = %d, want -1", gotExc.OriginalEventID)
	}
	if gotExc.RangeType != calmodel.RangeUntil || gotExc.Until.Utime != 1_700_086_400 {
		t.Fatalf("exception range = %+v, want Until=1700086400", gotExc.RRuleFields)
	}
}

func TestResolveException_RejectsEmptyRecurrenceID(t *testing.T) {
	r := &Reconciler{}
	parent := dailyParent(1_700_000_000, 3)
	exception := calmodel.Event{UID: "parent-uid"}

	if _, _, err := r.ResolveException(context.Background(), parent, exception); err == nil {
		t.Fatal("expected an error for an exception with no recurrence_id")
	}
}

func TestInsertException_NoRangeEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	r := NewReconciler(e)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})

	parent, err := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		UID:     "series-1",
		Summary: "standup",
		DTStart: calmodel.NewUtime(1_700_000_000),
		DTEnd:   calmodel.NewUtime(1_700_003_600),
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqDaily,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     3,
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := r.PublishEvent(context.Background(), parent); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	exception := calmodel.Event{
		BookID:       b.ID,
		UID:          "series-1",
		RecurrenceID: "20231115T220000Z",
		Summary:      "standup (moved)",
		DTStart:      calmodel.NewUtime(1_700_086_400 + 3600),
		DTEnd:        calmodel.NewUtime(1_700_086_400 + 7200),
	}

	updatedParent, created, err := r.InsertException(context.Background(), exception)
	if err != nil {
		t.Fatalf("InsertException: %v", err)
	}
	if created.ID == 0 || created.ID == parent.ID {
		t.Fatalf("expected exception to be a new row, got id %d", created.ID)
	}
	if created.OriginalEventID != parent.ID {
		t.Fatalf("exception.OriginalEventID = %d, want %d", created.OriginalEventID, parent.ID)
	}

	gotParent, err := e.GetEvent(parent.ID)
	if err != nil {
		t.Fatalf("GetEvent(parent): %v", err)
	}
	found := false
	for _, x := range gotParent.ExDate {
		if x == "20231115T220000Z" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected parent EXDATE to contain the recurrence-id, got %v", gotParent.ExDate)
	}
	if !updatedParent.HasException {
		t.Fatal("expected parent.HasException to be set")
	}
}

func TestInsertException_RequiresRecurrenceID(t *testing.T) {
	e := newTestEngine(t)
	r := NewReconciler(e)
	_, _, err := r.InsertException(context.Background(), calmodel.Event{UID: "series-1"})
	if err == nil {
		t.Fatal("expected error for missing recurrence-id")
	}
}

func TestReconcileNewParent_ResolvesEveryPreexistingException(t *testing.T) {
	r := &Reconciler{}
	parent := dailyParent(1_700_000_000, 3)
	exceptions := []calmodel.Event{
		{UID: "parent-uid", RecurrenceID: "20231114T220000Z", Summary: "first cancelled"},
		{UID: "parent-uid", RecurrenceID: "20231115T220000Z", Summary: "second cancelled"},
	}

	gotParent, gotExcs, err := r.ReconcileNewParent(context.Background(), parent, exceptions)
	if err != nil {
		t.Fatalf("ReconcileNewParent: %v", err)
	}
	if !gotParent.HasException {
		t.Fatal("parent.HasException should be set")
	}
	if len(gotParent.ExDate) != 2 {
		t.Fatalf("parent.ExDate = %v, want 2 entries", gotParent.ExDate)
	}
	if len(gotExcs) != 2 || gotExcs[0].OriginalEventID != parent.ID || gotExcs[1].OriginalEventID != parent.ID {
		t.Fatalf("exceptions not bound to parent: %+v", gotExcs)
	}
}
