// Package calview is the view registry (spec §4.2, component C2): for
// each view URI, an ordered table mapping property ids to SQL column
// names and flags. Every other component asks calview for property ->
// column translation instead of hard-coding column names.
package calview

// PropertyID enumerates every property exposed across all thirteen
// record kinds. The same id can appear in several views mapped to
// different column names (e.g. PropLocation is "location" in the book
// view and "event_location" in the event view, while PropDue only exists
// in the todo view).
type PropertyID int

const (
	PropID PropertyID = iota + 1
	PropBookID
	PropAccountID
	PropStoreType
	PropName
	PropDescription
	PropColor
	PropLocation
	PropVisibility
	PropSyncPolicy
	PropMode
	PropSync1
	PropSync2
	PropSync3
	PropSync4
	PropDeleted

	PropSummary
	PropCategories
	PropExDate
	PropStatus
	PropPriority
	PropTimezoneID
	PropBusyStatus
	PropSensitivity
	PropUID
	PropOrganizerName
	PropOrganizerEmail
	PropMeetingStatus
	PropOriginalEventID
	PropLatitude
	PropLongitude
	PropEmailID
	PropCreatedAt
	PropLastModifiedAt
	PropDTStart
	PropDTEnd
	PropDue
	PropStartTZID
	PropEndTZID
	PropHasAlarm
	PropHasAttendee
	PropHasException
	PropHasExtended
	PropSystemType
	PropRecurrenceID
	PropRDate
	PropIsAllDay
	PropCreatedVer
	PropChangedVer

	PropFreq
	PropRangeType
	PropUntil
	PropCount
	PropInterval
	PropByMonth
	PropByWeekNo
	PropByYearDay
	PropByMonthDay
	PropByDay
	PropByHour
	PropByMinute
	PropBySecond
	PropBySetPos
	PropWkst

	PropAlarmParentID
	PropAlarmTick
	PropAlarmUnit
	PropAlarmAction
	PropAlarmAttach
	PropAlarmTime

	PropAttendeeParentID
	PropAttendeeNumber
	PropAttendeeCUType
	PropAttendeeContactIndex
	PropAttendeeGroup
	PropAttendeeEmail
	PropAttendeeRole
	PropAttendeeStatus
	PropAttendeeRSVP
	PropAttendeeDelegatorURI
	PropAttendeeDelegateeURI
	PropAttendeeName
	PropAttendeeMember

	PropTZOffset
	PropTZStandardName
	PropTZDaylightName

	PropExtendedKey
	PropExtendedValue

	PropInstanceStart
	PropInstanceEnd
)

// Flag is a bit in a property's descriptor flags.
type Flag uint8

const (
	// FlagReadOnly refuses set_* (spec §4.3).
	FlagReadOnly Flag = 1 << iota
	// FlagProjection marks a property eligible for projection lists.
	FlagProjection
	// FlagFilter marks a property eligible as a filter leaf.
	FlagFilter
)

func (f Flag) has(bit Flag) bool { return f&bit != 0 }

// ColumnGroup is the one-or-more physical columns a property expands to.
// Most properties are a single column; CalTime properties expand to
// three (type, utime, datetime) per spec §3.2/§4.5.3.
type ColumnGroup struct {
	// Columns holds the column name(s) in the canonical order: for a
	// plain property, len==1; for a CalTime property,
	// [typeCol, utimeCol, datetimeCol].
	Columns []string
	IsTime  bool
}

func Col(name string) ColumnGroup { return ColumnGroup{Columns: []string{name}} }

func TimeCol(typeCol, utimeCol, datetimeCol string) ColumnGroup {
	return ColumnGroup{Columns: []string{typeCol, utimeCol, datetimeCol}, IsTime: true}
}

// Descriptor is one row of a view's property table.
type Descriptor struct {
	Property PropertyID
	Column   ColumnGroup
	Flags    Flag
}

func (d Descriptor) ReadOnly() bool  { return d.Flags.has(FlagReadOnly) }
func (d Descriptor) Projectable() bool { return d.Flags.has(FlagProjection) }
func (d Descriptor) Filterable() bool  { return d.Flags.has(FlagFilter) }
