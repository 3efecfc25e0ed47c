package calstore

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func TestReplaceAndListInstances_Utime(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup", RRuleFields: calmodel.RRuleFields{Freq: calmodel.FreqDaily}})

	instances := []calmodel.Instance{
		{Start: calmodel.NewUtime(1000), End: calmodel.NewUtime(1600)},
		{Start: calmodel.NewUtime(87400), End: calmodel.NewUtime(88000)},
	}
	if err := e.ReplaceInstances(ev.ID, calmodel.InstanceUtime, instances); err != nil {
		t.Fatalf("ReplaceInstances: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(100000))
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d instances, want 2", len(got))
	}
	if got[0].Start.Utime != 1000 {
		t.Fatalf("instances not ordered by start: %+v", got)
	}
}

func TestReplaceInstances_DeletesPreviousSet(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})

	e.ReplaceInstances(ev.ID, calmodel.InstanceUtime, []calmodel.Instance{
		{Start: calmodel.NewUtime(1000), End: calmodel.NewUtime(1600)},
		{Start: calmodel.NewUtime(2000), End: calmodel.NewUtime(2600)},
	})
	if err := e.ReplaceInstances(ev.ID, calmodel.InstanceUtime, []calmodel.Instance{
		{Start: calmodel.NewUtime(3000), End: calmodel.NewUtime(3600)},
	}); err != nil {
		t.Fatalf("ReplaceInstances: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(0), calmodel.NewUtime(100000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Start.Utime != 3000 {
		t.Fatalf("expected the old instance set to be replaced, got %+v", got)
	}
}

func TestListInstances_RangeFilter(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "standup"})

	e.ReplaceInstances(ev.ID, calmodel.InstanceUtime, []calmodel.Instance{
		{Start: calmodel.NewUtime(1000), End: calmodel.NewUtime(1600)},
		{Start: calmodel.NewUtime(50000), End: calmodel.NewUtime(50600)},
	})

	got, err := e.ListInstances(ev.ID, calmodel.InstanceUtime, calmodel.NewUtime(40000), calmodel.NewUtime(60000))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Start.Utime != 50000 {
		t.Fatalf("range filter did not exclude the out-of-window instance: %+v", got)
	}
}

func TestReplaceAndListInstances_Allday(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	ev, _ := e.CreateEvent(calmodel.Event{BookID: b.ID, Summary: "vacation", IsAllDay: true})

	start := calmodel.NewLocal(2026, 8, 1, 0, 0, 0)
	end := calmodel.NewLocal(2026, 8, 1, 23, 59, 59)
	if err := e.ReplaceInstances(ev.ID, calmodel.InstanceAllday, []calmodel.Instance{{Start: start, End: end}}); err != nil {
		t.Fatalf("ReplaceInstances: %v", err)
	}

	got, err := e.ListInstances(ev.ID, calmodel.InstanceAllday,
		calmodel.NewLocal(2026, 7, 1, 0, 0, 0), calmodel.NewLocal(2026, 9, 1, 0, 0, 0))
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d allday instances, want 1", len(got))
	}
	if got[0].Start.Year != 2026 || got[0].Start.Month != 8 || got[0].Start.MDay != 1 {
		t.Fatalf("allday instance not round-tripped: %+v", got[0].Start)
	}
}
