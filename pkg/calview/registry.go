package calview

import (
	"fmt"
	"sync"
)

// Table is the ordered descriptor array for one view URI.
type Table struct {
	URI       string
	SQLTable  string // the physical/joined SQL FROM target
	Descriptors []Descriptor
}

// registry is the process-wide, insertion-ordered, mutex-guarded view map
// (spec §4.2: "process-wide insertion-ordered map keyed by view URI,
// initialised lazily under a mutex; initialisation and teardown are
// reference-counted across client connections").
type registry struct {
	mu       sync.Mutex
	tables   map[string]*Table
	order    []string
	refcount int
}

var global = &registry{}

// Acquire increments the registry's connection refcount, building the
// static tables on the first call. Every calstore.Engine calls Acquire
// when it opens and Release when it closes.
func Acquire() {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.refcount == 0 {
		global.tables, global.order = buildTables()
	}
	global.refcount++
}

// Release decrements the refcount, tearing the tables down (so a later
// Acquire rebuilds them from scratch; the descriptor data itself is
// immutable, so this is only meaningful for tests that want a clean
// slate) once the last connection is gone.
func Release() {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.refcount == 0 {
		return
	}
	global.refcount--
	if global.refcount == 0 {
		global.tables = nil
		global.order = nil
	}
}

// GetPropertyInfo returns the immutable descriptor table for uri, mirroring
// the C API's cal_view_get_property_info(uri) -> (table_ptr, count).
func GetPropertyInfo(uri string) (*Table, error) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.tables == nil {
		global.tables, global.order = buildTables()
	}
	t, ok := global.tables[uri]
	if !ok {
		return nil, fmt.Errorf("calview: unknown view URI %q", uri)
	}
	return t, nil
}

// URIs returns every registered view URI in insertion order.
func URIs() []string {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.tables == nil {
		global.tables, global.order = buildTables()
	}
	out := make([]string, len(global.order))
	copy(out, global.order)
	return out
}

// Lookup finds the descriptor for property within t, or ok==false.
func (t *Table) Lookup(p PropertyID) (Descriptor, bool) {
	for _, d := range t.Descriptors {
		if d.Property == p {
			return d, true
		}
	}
	return Descriptor{}, false
}

const (
	URIBook               = "book"
	URIEvent              = "event"
	URITodo               = "todo"
	URIAlarm              = "alarm"
	URIAttendee           = "attendee"
	URITimezone           = "timezone"
	URIExtended           = "extended"
	URIEventInstanceUtime = "event_instance_utime"
	URIEventInstanceAllday = "event_instance_allday"
	URITodoInstanceUtime  = "todo_instance_utime"
	URITodoInstanceAllday = "todo_instance_allday"
	URIUpdatedInfo        = "updated_info"
	URISearchResult       = "search_result"
	// URIEventCalendarAttendee is a join view (spec §GLOSSARY example):
	// event properties plus the owning book's name, read-only.
	URIEventCalendarAttendee = "event_calendar_attendee"
)

func buildTables() (map[string]*Table, []string) {
	tables := map[string]*Table{}
	var order []string
	add := func(t *Table) {
		tables[t.URI] = t
		order = append(order, t.URI)
	}

	rw := FlagProjection | FlagFilter
	ro := FlagReadOnly | FlagProjection | FlagFilter

	add(&Table{URI: URIBook, SQLTable: "calendar_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropAccountID, Col("account_id"), rw},
		{PropStoreType, Col("store_type"), rw},
		{PropName, Col("name"), rw},
		{PropDescription, Col("description"), rw},
		{PropColor, Col("color"), rw},
		{PropLocation, Col("location"), rw},
		{PropVisibility, Col("visibility"), rw},
		{PropSyncPolicy, Col("sync_event"), rw},
		{PropMode, Col("mode"), rw},
		{PropSync1, Col("sync1"), rw},
		{PropSync2, Col("sync2"), rw},
		{PropSync3, Col("sync3"), rw},
		{PropSync4, Col("sync4"), rw},
		{PropDeleted, Col("is_deleted"), ro},
	}})

	add(&Table{URI: URIEvent, SQLTable: "schedule_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropBookID, Col("calendar_id"), rw},
		{PropSummary, Col("summary"), rw},
		{PropDescription, Col("description"), rw},
		{PropLocation, Col("event_location"), rw},
		{PropCategories, Col("categories"), rw},
		{PropStatus, Col("status"), rw},
		{PropPriority, Col("priority"), rw},
		{PropTimezoneID, Col("timezone"), rw},
		{PropBusyStatus, Col("busy_status"), rw},
		{PropSensitivity, Col("sensitivity"), rw},
		{PropUID, Col("uid"), rw},
		{PropOrganizerName, Col("organizer"), rw},
		{PropOrganizerEmail, Col("organizer_email"), rw},
		{PropMeetingStatus, Col("meeting_status"), rw},
		{PropOriginalEventID, Col("original_event_id"), rw},
		{PropLatitude, Col("latitude"), rw},
		{PropLongitude, Col("longitude"), rw},
		{PropEmailID, Col("email_id"), rw},
		{PropCreatedAt, TimeCol("created_type", "created_utime", "created_datetime"), ro},
		{PropLastModifiedAt, TimeCol("lastmod_type", "lastmod_utime", "lastmod_datetime"), ro},
		{PropDeleted, Col("is_deleted"), ro},
		{PropDTStart, TimeCol("dtstart_type", "dtstart_utime", "dtstart_datetime"), rw},
		{PropDTEnd, TimeCol("dtend_type", "dtend_utime", "dtend_datetime"), rw},
		{PropStartTZID, Col("dtstart_tzid"), rw},
		{PropEndTZID, Col("dtend_tzid"), rw},
		{PropHasAlarm, Col("has_alarm"), ro},
		{PropHasAttendee, Col("has_attendee"), ro},
		{PropHasException, Col("has_exception"), ro},
		{PropHasExtended, Col("has_extended"), ro},
		{PropSystemType, Col("system_type"), rw},
		{PropSync1, Col("sync1"), rw},
		{PropSync2, Col("sync2"), rw},
		{PropSync3, Col("sync3"), rw},
		{PropSync4, Col("sync4"), rw},
		{PropRecurrenceID, Col("recurrence_id"), rw},
		{PropRDate, Col("rdate"), rw},
		{PropIsAllDay, Col("is_allday"), rw},
		{PropFreq, Col("freq"), rw},
		{PropRangeType, Col("range_type"), rw},
		{PropUntil, TimeCol("until_type", "until_utime", "until_datetime"), rw},
		{PropCount, Col("count"), rw},
		{PropInterval, Col("interval"), rw},
		{PropByMonth, Col("bymonth"), rw},
		{PropByWeekNo, Col("byweekno"), rw},
		{PropByYearDay, Col("byyearday"), rw},
		{PropByMonthDay, Col("bymonthday"), rw},
		{PropByDay, Col("byday"), rw},
		{PropByHour, Col("byhour"), rw},
		{PropByMinute, Col("byminute"), rw},
		{PropBySecond, Col("bysecond"), rw},
		{PropBySetPos, Col("bysetpos"), rw},
		{PropWkst, Col("wkst"), rw},
		{PropCreatedVer, Col("created_ver"), ro},
		{PropChangedVer, Col("changed_ver"), ro},
	}})

	add(&Table{URI: URITodo, SQLTable: "schedule_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropBookID, Col("calendar_id"), rw},
		{PropSummary, Col("summary"), rw},
		{PropDescription, Col("description"), rw},
		{PropLocation, Col("event_location"), rw},
		{PropCategories, Col("categories"), rw},
		{PropStatus, Col("status"), rw},
		{PropPriority, Col("priority"), rw},
		{PropTimezoneID, Col("timezone"), rw},
		{PropBusyStatus, Col("busy_status"), rw},
		{PropSensitivity, Col("sensitivity"), rw},
		{PropUID, Col("uid"), rw},
		{PropOrganizerName, Col("organizer"), rw},
		{PropOrganizerEmail, Col("organizer_email"), rw},
		{PropMeetingStatus, Col("meeting_status"), rw},
		{PropLatitude, Col("latitude"), rw},
		{PropLongitude, Col("longitude"), rw},
		{PropEmailID, Col("email_id"), rw},
		{PropCreatedAt, TimeCol("created_type", "created_utime", "created_datetime"), ro},
		{PropLastModifiedAt, TimeCol("lastmod_type", "lastmod_utime", "lastmod_datetime"), ro},
		{PropDeleted, Col("is_deleted"), ro},
		{PropDTStart, TimeCol("dtstart_type", "dtstart_utime", "dtstart_datetime"), rw},
		{PropDue, TimeCol("due_type", "due_utime", "due_datetime"), rw},
		{PropStartTZID, Col("dtstart_tzid"), rw},
		{PropEndTZID, Col("dtend_tzid"), rw},
		{PropHasAlarm, Col("has_alarm"), ro},
		{PropHasAttendee, Col("has_attendee"), ro},
		{PropHasExtended, Col("has_extended"), ro},
		{PropSystemType, Col("system_type"), rw},
		{PropSync1, Col("sync1"), rw},
		{PropSync2, Col("sync2"), rw},
		{PropSync3, Col("sync3"), rw},
		{PropSync4, Col("sync4"), rw},
		{PropIsAllDay, Col("is_allday"), rw},
		{PropFreq, Col("freq"), rw},
		{PropRangeType, Col("range_type"), rw},
		{PropUntil, TimeCol("until_type", "until_utime", "until_datetime"), rw},
		{PropCount, Col("count"), rw},
		{PropInterval, Col("interval"), rw},
		{PropByMonth, Col("bymonth"), rw},
		{PropByWeekNo, Col("byweekno"), rw},
		{PropByYearDay, Col("byyearday"), rw},
		{PropByMonthDay, Col("bymonthday"), rw},
		{PropByDay, Col("byday"), rw},
		{PropByHour, Col("byhour"), rw},
		{PropByMinute, Col("byminute"), rw},
		{PropBySecond, Col("bysecond"), rw},
		{PropBySetPos, Col("bysetpos"), rw},
		{PropWkst, Col("wkst"), rw},
		{PropCreatedVer, Col("created_ver"), ro},
		{PropChangedVer, Col("changed_ver"), ro},
	}})

	add(&Table{URI: URIAlarm, SQLTable: "alarm_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropAlarmParentID, Col("parent_id"), ro},
		{PropAlarmTick, Col("tick"), rw},
		{PropAlarmUnit, Col("unit"), rw},
		{PropDescription, Col("description"), rw},
		{PropSummary, Col("summary"), rw},
		{PropAlarmAction, Col("action"), rw},
		{PropAlarmAttach, Col("attach"), rw},
		{PropAlarmTime, TimeCol("alarm_type", "alarm_utime", "alarm_datetime"), rw},
	}})

	add(&Table{URI: URIAttendee, SQLTable: "attendee_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropAttendeeParentID, Col("parent_id"), ro},
		{PropAttendeeNumber, Col("number"), rw},
		{PropAttendeeCUType, Col("cutype"), rw},
		{PropAttendeeContactIndex, Col("contact_index"), rw},
		{PropUID, Col("uid"), rw},
		{PropAttendeeGroup, Col("attendee_group"), rw},
		{PropAttendeeEmail, Col("email"), rw},
		{PropAttendeeRole, Col("role"), rw},
		{PropAttendeeStatus, Col("status"), rw},
		{PropAttendeeRSVP, Col("rsvp"), rw},
		{PropAttendeeDelegatorURI, Col("delegator_uri"), rw},
		{PropAttendeeDelegateeURI, Col("delegatee_uri"), rw},
		{PropAttendeeName, Col("attendee_name"), rw},
		{PropAttendeeMember, Col("member"), rw},
	}})

	add(&Table{URI: URITimezone, SQLTable: "timezone_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropBookID, Col("calendar_id"), ro},
		{PropUID, Col("tzid"), ro},
		{PropTZOffset, Col("offset_from_gmt"), ro},
		{PropTZStandardName, Col("standard_name"), ro},
		{PropTZDaylightName, Col("daylight_name"), ro},
	}})

	add(&Table{URI: URIExtended, SQLTable: "extended_table", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropAlarmParentID, Col("record_id"), ro},
		{PropDTStart /* reused as "record kind" slot */, Col("record_kind"), ro},
		{PropExtendedKey, Col("key"), rw},
		{PropExtendedValue, Col("value"), rw},
	}})

	instanceDescriptors := func(parentIDCol string) []Descriptor {
		return []Descriptor{
			{PropID, Col("id"), ro},
			{PropAlarmParentID, Col(parentIDCol), ro},
			{PropInstanceStart, Col("instance_start"), ro},
			{PropInstanceEnd, Col("instance_end"), ro},
		}
	}
	add(&Table{URI: URIEventInstanceUtime, SQLTable: "normal_instance_table", Descriptors: instanceDescriptors("event_id")})
	add(&Table{URI: URIEventInstanceAllday, SQLTable: "allday_instance_table", Descriptors: instanceDescriptors("event_id")})
	add(&Table{URI: URITodoInstanceUtime, SQLTable: "normal_instance_table", Descriptors: instanceDescriptors("event_id")})
	add(&Table{URI: URITodoInstanceAllday, SQLTable: "allday_instance_table", Descriptors: instanceDescriptors("event_id")})

	add(&Table{URI: URIUpdatedInfo, SQLTable: "(deleted_table UNION schedule_table/calendar_table)", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropBookID, Col("calendar_id"), ro},
		{PropChangedVer, Col("changed_ver"), ro},
	}})

	add(&Table{URI: URISearchResult, SQLTable: "(cross-kind projection)", Descriptors: []Descriptor{
		{PropID, Col("id"), ro},
		{PropBookID, Col("calendar_id"), ro},
	}})

	add(&Table{URI: URIEventCalendarAttendee, SQLTable: "schedule_table JOIN calendar_table", Descriptors: []Descriptor{
		{PropID, Col("schedule_table.id"), ro},
		{PropSummary, Col("schedule_table.summary"), ro},
		{PropName, Col("calendar_table.name"), ro},
	}})

	return tables, order
}
