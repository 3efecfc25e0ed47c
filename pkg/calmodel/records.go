package calmodel

// StoreType constrains what a Book may hold (spec §3.1).
type StoreType int

const (
	StoreNone StoreType = iota
	StoreEvent
	StoreTodo
)

// SyncPolicy governs delete semantics for a Book's children (spec §4.6).
type SyncPolicy int

const (
	SyncForMe SyncPolicy = iota
	SyncEveryAndRemain
	SyncEveryAndDelete
)

// BookMode restricts writes.
type BookMode int

const (
	ModeNone BookMode = iota
	ModeReadOnly
)

// Book is a calendar container (spec §3.1).
type Book struct {
	ID          int64
	AccountID   string
	StoreType   StoreType
	Name        string
	Description string
	Color       string
	Location    string
	Visibility  string
	SyncPolicy  SyncPolicy
	Mode        BookMode
	Sync1       string
	Sync2       string
	Sync3       string
	Sync4       string
	Deleted     bool
}

// Organizer is the (name, email) pair embedded in Event/Todo.
type Organizer struct {
	Name  string
	Email string
}

// RRuleFields are the RFC-5545 recurrence fields embedded directly on an
// Event/Todo row (spec §3.1 — "the embedded RRULE fields"). Freq == FreqNone
// means the row does not recur (spec §3.3 invariant 6).
type RRuleFields struct {
	Freq       Freq
	RangeType  RangeType
	Until      CalTime
	Count      int32
	Interval   int32
	ByMonth    []int32
	ByWeekNo   []int32
	ByYearDay  []int32
	ByMonthDay []int32
	ByDay      []ByDayRule
	ByHour     []int32
	ByMinute   []int32
	BySecond   []int32
	BySetPos   []int32
	Wkst       Weekday
}

// Freq enumerates the recurrence frequency (spec §4.7.1).
type Freq int

const (
	FreqNone Freq = iota
	FreqYearly
	FreqMonthly
	FreqWeekly
	FreqDaily
	FreqHourly
	FreqMinutely
	FreqSecondly
)

// RangeType says whether a recurrence ends by COUNT or by UNTIL.
type RangeType int

const (
	RangeNone RangeType = iota
	RangeCount
	RangeUntil
)

// Weekday is ISO-ish (0=Monday .. 6=Sunday), used for WKST.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// ByDayRule is a BYDAY entry: an optional ordinal (e.g. "2TU" -> Nth=2)
// plus the weekday; Nth == 0 means "every occurrence of this weekday".
type ByDayRule struct {
	Nth     int
	Weekday Weekday
}

// Event is a calendar entry (spec §3.1).
type Event struct {
	ID              int64
	BookID          int64
	Summary         string
	Description     string
	Location        string
	Categories      string
	ExDate          []string // wall-clock recurrence-id strings
	Status          string
	Priority        int32
	TimezoneID      string
	BusyStatus      string
	Sensitivity     string
	UID             string
	Organizer       Organizer
	MeetingStatus   string
	OriginalEventID int64 // -1 == master, >0 == exception
	Latitude        float64
	Longitude       float64
	EmailID         string
	CreatedAt       CalTime
	LastModifiedAt  CalTime
	Deleted         bool
	DTStart         CalTime
	DTEnd           CalTime
	StartTZID       string
	EndTZID         string
	HasAlarm        bool
	HasAttendee     bool
	HasExtended     bool
	HasException    bool
	SystemType      string
	Sync1           string
	Sync2           string
	Sync3           string
	Sync4           string
	RecurrenceID    string
	RDate           string
	IsAllDay        bool
	RRuleFields

	CreatedVer int64
	ChangedVer int64

	Alarms     []Alarm
	Attendees  []Attendee
	Exceptions []int64 // child exception event ids
	Extended   []Extended
}

// Todo is the to-do counterpart of Event: same field set minus
// exception/recurrence-id/exdate (spec §3.1); DTEnd is named Due here.
type Todo struct {
	ID             int64
	BookID         int64
	Summary        string
	Description    string
	Location       string
	Categories     string
	Status         string
	Priority       int32
	TimezoneID     string
	BusyStatus     string
	Sensitivity    string
	UID            string
	Organizer      Organizer
	MeetingStatus  string
	Latitude       float64
	Longitude      float64
	EmailID        string
	CreatedAt      CalTime
	LastModifiedAt CalTime
	Deleted        bool
	DTStart        CalTime
	Due            CalTime
	StartTZID      string
	EndTZID        string
	HasAlarm       bool
	HasAttendee    bool
	HasExtended    bool
	SystemType     string
	Sync1          string
	Sync2          string
	Sync3          string
	Sync4          string
	IsAllDay       bool
	RRuleFields

	CreatedVer int64
	ChangedVer int64

	Alarms    []Alarm
	Attendees []Attendee
	Extended  []Extended
}

// AlarmUnit enumerates the reminder-tick unit (spec §3.1).
type AlarmUnit int

const (
	UnitNone AlarmUnit = iota
	UnitSecond
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitSpecific
)

// Alarm is owned by one event or to-do.
type Alarm struct {
	ID          int64
	ParentID    int64
	Tick        int32
	Unit        AlarmUnit
	Description string
	Summary     string
	Action      string
	Attach      string
	AlarmTime   CalTime
}

// Attendee is owned by one event or to-do.
type Attendee struct {
	ID           int64
	ParentID     int64
	Number       int32
	CUType       string
	ContactIndex int32
	UID          string
	Group        string
	Email        string
	Role         string
	Status       string
	RSVP         bool
	DelegatorURI string
	DelegateeURI string
	Name         string
	Member       string
}

// TZRule is the standard/daylight transition rule embedded in Timezone.
type TZRule struct {
	Name       string
	Month      int32
	NthWeek    int32
	DayOfWeek  int32
	Hour       int32
	BiasMinute int32
}

// Timezone is a named TZID row (spec §3.1, §4.9).
type Timezone struct {
	ID             int64
	BookID         int64
	TZID           string
	OffsetFromGMT  int32
	Standard       TZRule
	Daylight       TZRule
}

// Extended is a key/value pair attached to a record by (record id, kind).
type Extended struct {
	ID         int64
	RecordID   int64
	RecordKind RecordKind
	Key        string
	Value      string
}

// RecordKind tags which of the thirteen concrete kinds a Record envelope
// wraps (spec §2 item C3, §3.1).
type RecordKind int

const (
	KindBook RecordKind = iota + 1
	KindEvent
	KindTodo
	KindAlarm
	KindAttendee
	KindTimezone
	KindEventInstanceUtime
	KindEventInstanceAllday
	KindTodoInstanceUtime
	KindTodoInstanceAllday
	KindUpdatedInfo
	KindSearchResult
	KindExtended
)

func (k RecordKind) String() string {
	switch k {
	case KindBook:
		return "book"
	case KindEvent:
		return "event"
	case KindTodo:
		return "todo"
	case KindAlarm:
		return "alarm"
	case KindAttendee:
		return "attendee"
	case KindTimezone:
		return "timezone"
	case KindEventInstanceUtime:
		return "event_instance_utime"
	case KindEventInstanceAllday:
		return "event_instance_allday"
	case KindTodoInstanceUtime:
		return "todo_instance_utime"
	case KindTodoInstanceAllday:
		return "todo_instance_allday"
	case KindUpdatedInfo:
		return "updated_info"
	case KindSearchResult:
		return "search_result"
	case KindExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// Instance is one materialized occurrence row (spec §3.1, §4.7). Table
// selects which physical table (normal_instance_table vs
// allday_instance_table) it was read from/written to; ParentKind says
// whether the owning series is an Event or a Todo, resolving the "four
// instance variants" record kinds onto the two physical tables.
type Instance struct {
	ID         int64
	ParentID   int64
	ParentKind RecordKind // KindEvent or KindTodo
	Table      InstanceTable
	Start      CalTime
	End        CalTime
}

// InstanceTable is the physical table an Instance row lives in.
type InstanceTable int

const (
	InstanceUtime InstanceTable = iota
	InstanceAllday
)

// Tombstone is a deleted-row marker (spec §3.1, §4.8).
type Tombstone struct {
	RecordID        int64
	Kind            RecordKind
	BookID          int64
	ChangedVer      int64
	CreatedVer      int64
	OriginalEventID int64
}

// UpdatedInfo is one row of the calendar_updated_info sync view (§4.8).
type UpdatedInfo struct {
	Kind           RecordKind
	ID             int64
	BookID         int64
	Version        int64
	ModifiedStatus ModifiedStatus
}

// ModifiedStatus distinguishes an upsert from a delete in the sync feed.
type ModifiedStatus int

const (
	ModifiedUpsert ModifiedStatus = iota
	ModifiedDelete
)

// SearchResult is a projected row returned by a cross-kind query (§4.5.4).
type SearchResult struct {
	Kind   RecordKind
	ID     int64
	BookID int64
}
