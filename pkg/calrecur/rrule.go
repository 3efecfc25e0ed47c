// Package calrecur expands an event's embedded RRULE fields into the
// materialized instance rows that calquery filters over, and resolves
// RECURRENCE-ID/RANGE exceptions against a parent series (spec §4.7,
// component C7). It sits on top of calstore: nothing here opens a
// transaction directly, it only computes rows and hands them to
// Engine.ReplaceInstances.
package calrecur

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// maxOccurrences bounds the recurrence expansion loop regardless of
// COUNT/UNTIL, per §4.7.1's "implementation-defined safety bound".
const maxOccurrences = 10000

var freqMap = map[calmodel.Freq]rrule.Frequency{
	calmodel.FreqYearly:   rrule.YEARLY,
	calmodel.FreqMonthly:  rrule.MONTHLY,
	calmodel.FreqWeekly:   rrule.WEEKLY,
	calmodel.FreqDaily:    rrule.DAILY,
	calmodel.FreqHourly:   rrule.HOURLY,
	calmodel.FreqMinutely: rrule.MINUTELY,
	calmodel.FreqSecondly: rrule.SECONDLY,
}

// weekdayMap follows calmodel.Weekday's Monday=0..Sunday=6 ordering.
var weekdayMap = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

func toInts(vs []int32) []int {
	if len(vs) == 0 {
		return nil
	}
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}

func toByWeekday(rules []calmodel.ByDayRule) []rrule.Weekday {
	if len(rules) == 0 {
		return nil
	}
	out := make([]rrule.Weekday, len(rules))
	for i, r := range rules {
		wd := weekdayMap[r.Weekday%7]
		if r.Nth != 0 {
			wd = wd.Nth(r.Nth)
		}
		out[i] = wd
	}
	return out
}

// calTimeToTime flattens a CalTime to a UTC time.Time for RRULE
// arithmetic; a Localtime payload is treated as a naive wall clock (no
// timezone is applied here, matching the allday instance table's own
// timezone-agnostic string comparisons).
func calTimeToTime(t calmodel.CalTime) time.Time {
	if t.Kind == calmodel.CalTimeUtime {
		return time.Unix(t.Utime, 0).UTC()
	}
	return time.Date(t.Year, time.Month(t.Month), t.MDay, t.Hour, t.Min, t.Sec, 0, time.UTC)
}

// timeToCalTime is calTimeToTime's inverse, tagged with the Kind the
// caller's own DTSTART uses so a Utime event stays Utime-keyed and an
// allday event stays Local-keyed end to end.
func timeToCalTime(kind calmodel.CalTimeKind, t time.Time) calmodel.CalTime {
	if kind == calmodel.CalTimeUtime {
		return calmodel.NewUtime(t.Unix())
	}
	return calmodel.NewLocal(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// icsWallClock renders t in the RFC-5545 basic UTC form used by EXDATE
// entries and RECURRENCE-ID strings (spec §4.7.1/§4.7.2 scenarios use
// e.g. "20231114T220000Z").
func icsWallClock(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// buildROption translates the embedded RRULE fields of ev into an
// rrule.ROption. Count is deliberately left unset here: §4.7.1 counts
// only non-excluded occurrences toward COUNT, which the library cannot
// know about, so callers enforce COUNT themselves while walking the
// iterator.
func buildROption(ev calmodel.Event) (rrule.ROption, error) {
	freq, ok := freqMap[ev.Freq]
	if !ok {
		return rrule.ROption{}, &unsupportedFreqError{ev.Freq}
	}
	interval := int(ev.Interval)
	if interval <= 0 {
		interval = 1
	}
	opt := rrule.ROption{
		Freq:       freq,
		Interval:   interval,
		Dtstart:    calTimeToTime(ev.DTStart),
		Wkst:       weekdayMap[ev.Wkst%7],
		Bymonth:    toInts(ev.ByMonth),
		Byweekno:   toInts(ev.ByWeekNo),
		Byyearday:  toInts(ev.ByYearDay),
		Bymonthday: toInts(ev.ByMonthDay),
		Byweekday:  toByWeekday(ev.ByDay),
		Byhour:     toInts(ev.ByHour),
		Byminute:   toInts(ev.ByMinute),
		Bysecond:   toInts(ev.BySecond),
		Bysetpos:   toInts(ev.BySetPos),
	}
	if ev.RangeType == calmodel.RangeUntil {
		opt.Until = calTimeToTime(ev.Until)
	}
	return opt, nil
}

type unsupportedFreqError struct{ freq calmodel.Freq }

func (e *unsupportedFreqError) Error() string {
	return "calrecur: unsupported recurrence frequency"
}
