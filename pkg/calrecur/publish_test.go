package calrecur

import (
	"context"
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calstore"
)

func newTestEngine(t *testing.T) *calstore.Engine {
	t.Helper()
	e, err := calstore.Open(":memory:")
	if err != nil {
		t.Fatalf("calstore.Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestPublishEvent_NonRecurringSingleInstance(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "standup",
		DTStart: calmodel.NewUtime(1_700_000_000),
		DTEnd:   calmodel.NewUtime(1_700_003_600),
	})

	r := NewReconciler(e)
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(2_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Start.Utime != 1_700_000_000 || got[0].End.Utime != 1_700_003_600 {
		t.Fatalf("got %+v, want one instance at [1700000000, 1700003600]", got)
	}
}

func TestPublishEvent_DailyCount(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "daily standup",
		DTStart: calmodel.NewUtime(1_700_000_000),
		DTEnd:   calmodel.NewUtime(1_700_003_600),
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqDaily,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     3,
		},
	})

	r := NewReconciler(e)
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(2_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d instances, want 3: %+v", len(got), got)
	}
	want := []int64{1_700_000_000, 1_700_086_400, 1_700_172_800}
	for i, inst := range got {
		if inst.Start.Utime != want[i] {
			t.Fatalf("instance %d start = %d, want %d", i, inst.Start.Utime, want[i])
		}
		if inst.End.Utime != want[i]+3600 {
			t.Fatalf("instance %d end = %d, want %d", i, inst.End.Utime, want[i]+3600)
		}
	}
}

func TestPublishEvent_ExdateSkipsOccurrence(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "daily standup",
		DTStart: calmodel.NewUtime(1_700_000_000),
		DTEnd:   calmodel.NewUtime(1_700_003_600),
		ExDate:  []string{icsWallClock(calTimeToTime(calmodel.NewUtime(1_700_086_400)))},
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqDaily,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     3,
		},
	})

	r := NewReconciler(e)
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(2_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	// EXDATE exclusion doesn't count toward COUNT, so 3 non-excluded
	// occurrences still get published, skipping the excluded candidate.
	if len(got) != 3 {
		t.Fatalf("got %d instances, want 3", len(got))
	}
	for _, inst := range got {
		if inst.Start.Utime == 1_700_086_400 {
			t.Fatalf("excluded occurrence 1700086400 should not be published: %+v", got)
		}
	}
}

func TestPublishEvent_RepublishReplacesPreviousSet(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
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
	r := NewReconciler(e)
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	ev.Count = 1
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(2_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("republish did not replace the previous set, got %d instances", len(got))
	}
}

func TestPublishEvent_AllDayUsesAllDayTable(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:   b.ID,
		Summary:  "vacation",
		IsAllDay: true,
		DTStart:  calmodel.NewLocal(2026, 8, 1, 0, 0, 0),
		DTEnd:    calmodel.NewLocal(2026, 8, 1, 23, 59, 59),
	})

	r := NewReconciler(e)
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceAllday,
		calmodel.NewLocal(2026, 7, 1, 0, 0, 0), calmodel.NewLocal(2026, 9, 1, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Start.Year != 2026 || got[0].Start.Month != 8 || got[0].Start.MDay != 1 {
		t.Fatalf("allday instance not published correctly: %+v", got)
	}
}

func TestApplyExdateDelete_RemovesOnlyMatchingOccurrence(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "daily standup",
		DTStart: calmodel.NewUtime(1_700_000_000),
		DTEnd:   calmodel.NewUtime(1_700_003_600),
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqDaily,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     3,
		},
	})
	r := NewReconciler(e)
	if err := r.PublishEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	newExDate := []string{icsWallClock(calTimeToTime(calmodel.NewUtime(1_700_086_400)))}
	if err := r.ApplyExdateDelete(ev, newExDate); err != nil {
		t.Fatalf("ApplyExdateDelete: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(2_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d instances after exdate delete, want 2: %+v", len(got), got)
	}
	for _, inst := range got {
		if inst.Start.Utime == 1_700_086_400 {
			t.Fatalf("instance at 1700086400 should have been removed by ApplyExdateDelete")
		}
	}
}

func TestApplyExdateDelete_NoopWhenNothingMatches(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{
		BookID:  b.ID,
		Summary: "daily standup",
		DTStart: calmodel.NewUtime(1_700_000_000),
		DTEnd:   calmodel.NewUtime(1_700_003_600),
		RRuleFields: calmodel.RRuleFields{
			Freq:      calmodel.FreqDaily,
			Interval:  1,
			RangeType: calmodel.RangeCount,
			Count:     2,
		},
	})
	r := NewReconciler(e)
	r.PublishEvent(context.Background(), ev)

	if err := r.ApplyExdateDelete(ev, []string{"20991231T235959Z"}); err != nil {
		t.Fatalf("ApplyExdateDelete: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(2_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d instances, want the original 2 untouched", len(got))
	}
}
