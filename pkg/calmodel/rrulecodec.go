package calmodel

import (
	"strconv"
	"strings"
)

// EncodeInts/DecodeInts serialise a BYxxx int32 list to/from the
// comma-separated TEXT column calview maps it to (spec §3.1: BYMONTH,
// BYWEEKNO, BYYEARDAY, BYMONTHDAY, BYHOUR, BYMINUTE, BYSECOND, BYSETPOS
// are all small integer lists stored the same way).
func EncodeInts(vs []int32) string {
	if len(vs) == 0 {
		return ""
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ",")
}

func DecodeInts(s string) []int32 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, int32(n))
	}
	return out
}

var weekdayCode = map[Weekday]string{
	Monday:    "MO",
	Tuesday:   "TU",
	Wednesday: "WE",
	Thursday:  "TH",
	Friday:    "FR",
	Saturday:  "SA",
	Sunday:    "SU",
}

var codeWeekday = map[string]Weekday{
	"MO": Monday,
	"TU": Tuesday,
	"WE": Wednesday,
	"TH": Thursday,
	"FR": Friday,
	"SA": Saturday,
	"SU": Sunday,
}

// EncodeByDay/DecodeByDay serialise BYDAY entries in RFC-5545 form
// ("2TU,-1FR") to/from the byday TEXT column.
func EncodeByDay(rules []ByDayRule) string {
	if len(rules) == 0 {
		return ""
	}
	parts := make([]string, len(rules))
	for i, r := range rules {
		prefix := ""
		if r.Nth != 0 {
			prefix = strconv.Itoa(r.Nth)
		}
		parts[i] = prefix + weekdayCode[r.Weekday]
	}
	return strings.Join(parts, ",")
}

func DecodeByDay(s string) []ByDayRule {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]ByDayRule, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < 2 {
			continue
		}
		code := p[len(p)-2:]
		wd, ok := codeWeekday[code]
		if !ok {
			continue
		}
		nth := 0
		if len(p) > 2 {
			if n, err := strconv.Atoi(p[:len(p)-2]); err == nil {
				nth = n
			}
		}
		out = append(out, ByDayRule{Nth: nth, Weekday: wd})
	}
	return out
}
