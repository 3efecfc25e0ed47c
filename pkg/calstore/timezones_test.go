package calstore

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func TestInternTimezone_InsertsOnFirstSight(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})

	tz, err := e.InternTimezone(b.ID, calmodel.Timezone{
		TZID:          "America/New_York",
		OffsetFromGMT: -300,
		Standard:      calmodel.TZRule{Name: "EST", Month: 11, NthWeek: 1, DayOfWeek: 0, Hour: 2},
		Daylight:      calmodel.TZRule{Name: "EDT", Month: 3, NthWeek: 2, DayOfWeek: 0, Hour: 2},
	})
	if err != nil {
		t.Fatalf("InternTimezone: %v", err)
	}
	if tz.ID <= 0 {
		t.Fatalf("expected an assigned id, got %d", tz.ID)
	}
}

func TestInternTimezone_LooksUpExistingRowInstead(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})

	first, err := e.InternTimezone(b.ID, calmodel.Timezone{TZID: "Europe/Berlin", OffsetFromGMT: 60})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.InternTimezone(b.ID, calmodel.Timezone{TZID: "Europe/Berlin", OffsetFromGMT: 999})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("InternTimezone should return the existing row, got a new id %d != %d", second.ID, first.ID)
	}
	if second.OffsetFromGMT != first.OffsetFromGMT {
		t.Fatalf("second intern should not overwrite the existing row's offset, got %d", second.OffsetFromGMT)
	}
}

func TestGetTimezone_NotFound(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	if _, err := e.GetTimezone(b.ID, "nowhere"); err == nil {
		t.Fatal("expected an error for an unknown tzid")
	}
}

func TestListTimezonesForBook(t *testing.T) {
	e := newTestEngine(t)
	b, _ := e.CreateBook("alice", calmodel.Book{Name: "Work"})
	e.InternTimezone(b.ID, calmodel.Timezone{TZID: "Europe/Berlin"})
	e.InternTimezone(b.ID, calmodel.Timezone{TZID: "America/New_York"})

	tzs, err := e.ListTimezonesForBook(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tzs) != 2 {
		t.Fatalf("got %d timezones, want 2", len(tzs))
	}
}
