// Package caldate is the date-arithmetic collaborator consumed by C7
// (recurrence expansion) and C9 (timezone support), per spec §6.1:
// "open_ucal(calendar_system, tzid, wkst) -> handle, set_caltime(h,
// CalTime), get_field(h, field), add(h, field, amount), millis(h),
// in_dst(tz, utime) -> bool, get_tz_offset(tz) -> (zone, dst)".
package caldate

import "github.com/calendarcore/calendarcore/pkg/calmodel"

// Field names one of the fields get_field/add operate on.
type Field int

const (
	FieldYear Field = iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldSecond
	FieldWeekday
)

// Handle addresses one open calendar, mirroring the opaque handle
// returned by open_ucal in the original interface.
type Handle int

// Offset is the (zone, dst) pair returned by TZOffset, in minutes east
// of UTC.
type Offset struct {
	ZoneMinutes int32
	DSTMinutes  int32
}

// Engine is the calendar-date collaborator contract. calrecur and
// calstore's timezone interning consume it only through this interface,
// never the concrete implementation, so a caller can substitute an
// ICU-backed adapter without touching either package.
type Engine interface {
	// OpenCalendar allocates a handle bound to tzid (the IANA zone name)
	// and wkst (the first day of the week, used by BYWEEKNO/weekly
	// stepping). An empty tzid means UTC.
	OpenCalendar(tzid string, wkst calmodel.Weekday) (Handle, error)
	// CloseCalendar releases a handle opened by OpenCalendar.
	CloseCalendar(h Handle) error
	// SetCalTime binds h's current instant to t.
	SetCalTime(h Handle, t calmodel.CalTime) error
	// GetField reads one field of h's current instant.
	GetField(h Handle, field Field) (int, error)
	// Add steps h's current instant by amount units of field.
	Add(h Handle, field Field, amount int) error
	// Millis returns h's current instant as Unix milliseconds.
	Millis(h Handle) (int64, error)
	// InDST reports whether tzid observes daylight saving at utime.
	InDST(tzid string, utime int64) (bool, error)
	// TZOffset returns tzid's standard/DST offsets at utime.
	TZOffset(tzid string, utime int64) (Offset, error)
	// IsAvailableTZID reports whether tzid is a zone this collaborator
	// can resolve.
	IsAvailableTZID(tzid string) bool
}
