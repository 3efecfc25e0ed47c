package caldate

import (
	"fmt"
	"sync"
	"time"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// calState is one open handle's calendar position.
type calState struct {
	loc  *time.Location
	wkst calmodel.Weekday
	cur  time.Time
}

// TimeEngine is the default Engine, backed entirely by stdlib time; zones
// come from time.LoadLocation, i.e. the host's zoneinfo database, since
// time/tzdata is not linked in (spec §6.1 names ICU's ucal_* family; no pack example
// binds an ICU-equivalent library, so this adapter is the bridge).
// Handles are mutex-guarded the way calview's process-wide registry is,
// since callers may open/close them from more than one goroutine.
type TimeEngine struct {
	mu      sync.Mutex
	handles map[Handle]*calState
	next    Handle
}

// NewTimeEngine returns a ready-to-use TimeEngine.
func NewTimeEngine() *TimeEngine {
	return &TimeEngine{handles: make(map[Handle]*calState)}
}

func (e *TimeEngine) OpenCalendar(tzid string, wkst calmodel.Weekday) (Handle, error) {
	loc, err := resolveLocation(tzid)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	h := e.next
	e.handles[h] = &calState{loc: loc, wkst: wkst, cur: time.Unix(0, 0).In(loc)}
	return h, nil
}

func (e *TimeEngine) CloseCalendar(h Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.handles[h]; !ok {
		return fmt.Errorf("caldate: unknown handle %d", h)
	}
	delete(e.handles, h)
	return nil
}

func (e *TimeEngine) state(h Handle) (*calState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.handles[h]
	if !ok {
		return nil, fmt.Errorf("caldate: unknown handle %d", h)
	}
	return st, nil
}

func (e *TimeEngine) SetCalTime(h Handle, t calmodel.CalTime) error {
	st, err := e.state(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch t.Kind {
	case calmodel.CalTimeUtime:
		st.cur = time.Unix(t.Utime, 0).In(st.loc)
	case calmodel.CalTimeLocal:
		st.cur = time.Date(t.Year, time.Month(t.Month), t.MDay, t.Hour, t.Min, t.Sec, 0, st.loc)
	default:
		return fmt.Errorf("caldate: SetCalTime called with an unset CalTime")
	}
	return nil
}

func (e *TimeEngine) GetField(h Handle, field Field) (int, error) {
	st, err := e.state(h)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch field {
	case FieldYear:
		return st.cur.Year(), nil
	case FieldMonth:
		return int(st.cur.Month()), nil
	case FieldDay:
		return st.cur.Day(), nil
	case FieldHour:
		return st.cur.Hour(), nil
	case FieldMinute:
		return st.cur.Minute(), nil
	case FieldSecond:
		return st.cur.Second(), nil
	case FieldWeekday:
		return int(isoWeekday(st.cur)), nil
	default:
		return 0, fmt.Errorf("caldate: unknown field %d", field)
	}
}

func (e *TimeEngine) Add(h Handle, field Field, amount int) error {
	st, err := e.state(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch field {
	case FieldYear:
		st.cur = st.cur.AddDate(amount, 0, 0)
	case FieldMonth:
		st.cur = st.cur.AddDate(0, amount, 0)
	case FieldDay, FieldWeekday:
		st.cur = st.cur.AddDate(0, 0, amount)
	case FieldHour:
		st.cur = st.cur.Add(time.Duration(amount) * time.Hour)
	case FieldMinute:
		st.cur = st.cur.Add(time.Duration(amount) * time.Minute)
	case FieldSecond:
		st.cur = st.cur.Add(time.Duration(amount) * time.Second)
	default:
		return fmt.Errorf("caldate: unknown field %d", field)
	}
	return nil
}

func (e *TimeEngine) Millis(h Handle) (int64, error) {
	st, err := e.state(h)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return st.cur.UnixMilli(), nil
}

func (e *TimeEngine) InDST(tzid string, utime int64) (bool, error) {
	loc, err := resolveLocation(tzid)
	if err != nil {
		return false, err
	}
	_, offset := time.Unix(utime, 0).In(loc).Zone()
	std := standardOffset(loc, time.Unix(utime, 0).In(loc).Year())
	return offset != std, nil
}

func (e *TimeEngine) TZOffset(tzid string, utime int64) (Offset, error) {
	loc, err := resolveLocation(tzid)
	if err != nil {
		return Offset{}, err
	}
	t := time.Unix(utime, 0).In(loc)
	_, offset := t.Zone()
	std := standardOffset(loc, t.Year())
	return Offset{ZoneMinutes: int32(std / 60), DSTMinutes: int32((offset - std) / 60)}, nil
}

func (e *TimeEngine) IsAvailableTZID(tzid string) bool {
	_, err := resolveLocation(tzid)
	return err == nil
}

func resolveLocation(tzid string) (*time.Location, error) {
	if tzid == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return nil, fmt.Errorf("caldate: unknown tzid %q: %w", tzid, err)
	}
	return loc, nil
}

// standardOffset approximates a zone's non-DST offset as the smaller of
// its January-1 and July-1 offsets for year; stdlib time exposes no
// direct isDST flag, so this is the usual two-solstice heuristic.
func standardOffset(loc *time.Location, year int) int {
	_, jan := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	_, jul := time.Date(year, time.July, 1, 0, 0, 0, 0, loc).Zone()
	if jan < jul {
		return jan
	}
	return jul
}

// isoWeekday maps Go's Sunday=0..Saturday=6 onto calmodel.Weekday's
// Monday=0..Sunday=6.
func isoWeekday(t time.Time) calmodel.Weekday {
	return calmodel.Weekday((int(t.Weekday()) + 6) % 7)
}
