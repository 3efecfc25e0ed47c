package caldate

import (
	"testing"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func TestOpenSetGetField_Utime(t *testing.T) {
	e := NewTimeEngine()
	h, err := e.OpenCalendar("", calmodel.Monday)
	if err != nil {
		t.Fatalf("OpenCalendar: %v", err)
	}
	defer e.CloseCalendar(h)

	if err := e.SetCalTime(h, calmodel.NewUtime(1_700_000_000)); err != nil {
		t.Fatalf("SetCalTime: %v", err)
	}
	year, err := e.GetField(h, FieldYear)
	if err != nil {
		t.Fatal(err)
	}
	if year != 2023 {
		t.Fatalf("FieldYear = %d, want 2023", year)
	}
}

func TestAdd_StepsTheField(t *testing.T) {
	e := NewTimeEngine()
	h, _ := e.OpenCalendar("", calmodel.Monday)
	defer e.CloseCalendar(h)
	e.SetCalTime(h, calmodel.NewUtime(1_700_000_000))

	before, _ := e.Millis(h)
	if err := e.Add(h, FieldDay, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	after, err := e.Millis(h)
	if err != nil {
		t.Fatal(err)
	}
	if after-before != 86_400_000 {
		t.Fatalf("Add(FieldDay, 1) moved %dms, want 86400000", after-before)
	}
}

func TestSetCalTime_LocalIsInterpretedInHandleZone(t *testing.T) {
	e := NewTimeEngine()
	h, _ := e.OpenCalendar("", calmodel.Monday)
	defer e.CloseCalendar(h)

	if err := e.SetCalTime(h, calmodel.NewLocal(2026, 3, 15, 9, 30, 0)); err != nil {
		t.Fatal(err)
	}
	day, _ := e.GetField(h, FieldDay)
	hour, _ := e.GetField(h, FieldHour)
	if day != 15 || hour != 9 {
		t.Fatalf("got day=%d hour=%d, want 15/9", day, hour)
	}
}

func TestGetField_Weekday(t *testing.T) {
	e := NewTimeEngine()
	h, _ := e.OpenCalendar("", calmodel.Monday)
	defer e.CloseCalendar(h)
	// 2026-07-30 is a Thursday.
	e.SetCalTime(h, calmodel.NewLocal(2026, 7, 30, 0, 0, 0))

	wd, err := e.GetField(h, FieldWeekday)
	if err != nil {
		t.Fatal(err)
	}
	if calmodel.Weekday(wd) != calmodel.Thursday {
		t.Fatalf("FieldWeekday = %d, want Thursday (%d)", wd, calmodel.Thursday)
	}
}

func TestIsAvailableTZID(t *testing.T) {
	e := NewTimeEngine()
	if !e.IsAvailableTZID("America/New_York") {
		t.Fatal("expected America/New_York to be available")
	}
	if !e.IsAvailableTZID("") {
		t.Fatal("expected the empty tzid (UTC) to be available")
	}
	if e.IsAvailableTZID("Not/AZone") {
		t.Fatal("expected an unknown tzid to be unavailable")
	}
}

func TestTZOffset_NewYorkWinterIsMinusFiveHours(t *testing.T) {
	e := NewTimeEngine()
	// 2026-01-15 is outside US daylight saving.
	winter := int64(1768482000)
	off, err := e.TZOffset("America/New_York", winter)
	if err != nil {
		t.Fatalf("TZOffset: %v", err)
	}
	if off.ZoneMinutes != -300 {
		t.Fatalf("ZoneMinutes = %d, want -300", off.ZoneMinutes)
	}
	if off.DSTMinutes != 0 {
		t.Fatalf("DSTMinutes = %d, want 0 in winter", off.DSTMinutes)
	}

	inDST, err := e.InDST("America/New_York", winter)
	if err != nil {
		t.Fatal(err)
	}
	if inDST {
		t.Fatal("expected January to not be in DST")
	}
}

func TestUnknownHandleIsAnError(t *testing.T) {
	e := NewTimeEngine()
	if _, err := e.GetField(Handle(999), FieldYear); err == nil {
		t.Fatal("expected an error for an unopened handle")
	}
	if err := e.CloseCalendar(Handle(999)); err == nil {
		t.Fatal("expected an error closing an unopened handle")
	}
}
