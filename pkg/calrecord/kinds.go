package calrecord

import (
	"github.com/go-playground/validator/v10"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

var validate = validator.New()

// bookInput/eventInput/... carry the struct-tag validation backing
// invariants 1-5 (spec §3.3): every concrete kind has a required
// subset of fields that must be non-zero before calstore accepts an
// insert.
type bookInput struct {
	AccountID string             `validate:"required"`
	StoreType calmodel.StoreType `validate:"oneof=0 1 2"`
	Name      string             `validate:"required"`
}

type eventInput struct {
	BookID  int64  `validate:"required"`
	UID     string `validate:"required"`
	Summary string
}

type todoInput struct {
	BookID int64  `validate:"required"`
	UID    string `validate:"required"`
}

type alarmInput struct {
	ParentID int64                `validate:"required"`
	Unit     calmodel.AlarmUnit   `validate:"required"`
}

type attendeeInput struct {
	ParentID int64  `validate:"required"`
	Email    string `validate:"required"`
}

func validationErr(op string, err error) error {
	return calerr.InvalidParameterf(op, "%v", err)
}

// FromBook builds a Book record handle, validating the required
// subset of fields (spec §3.1, §3.3 invariant 1).
func FromBook(b calmodel.Book) (*Record, error) {
	if err := validate.Struct(bookInput{AccountID: b.AccountID, StoreType: b.StoreType, Name: b.Name}); err != nil {
		return nil, validationErr("calrecord.FromBook", err)
	}
	r := New(calmodel.KindBook, calview.URIBook)
	r.set(calview.PropID, calmodel.Int64Cell(b.ID), false)
	r.set(calview.PropAccountID, calmodel.StringCell(b.AccountID), true)
	r.set(calview.PropStoreType, calmodel.Int32Cell(int32(b.StoreType)), true)
	r.set(calview.PropName, calmodel.StringCell(b.Name), true)
	r.set(calview.PropDescription, calmodel.StringCell(b.Description), true)
	r.set(calview.PropColor, calmodel.StringCell(b.Color), true)
	r.set(calview.PropLocation, calmodel.StringCell(b.Location), true)
	r.set(calview.PropVisibility, calmodel.StringCell(b.Visibility), true)
	r.set(calview.PropSyncPolicy, calmodel.Int32Cell(int32(b.SyncPolicy)), true)
	r.set(calview.PropMode, calmodel.Int32Cell(int32(b.Mode)), true)
	r.set(calview.PropSync1, calmodel.StringCell(b.Sync1), true)
	r.set(calview.PropSync2, calmodel.StringCell(b.Sync2), true)
	r.set(calview.PropSync3, calmodel.StringCell(b.Sync3), true)
	r.set(calview.PropSync4, calmodel.StringCell(b.Sync4), true)
	r.set(calview.PropDeleted, boolCell(b.Deleted), false)
	return r, nil
}

// ToBook reads a Book record handle back into a calmodel.Book value.
func (r *Record) ToBook() calmodel.Book {
	return calmodel.Book{
		ID:          r.GetInt64(calview.PropID),
		AccountID:   r.GetStr(calview.PropAccountID),
		StoreType:   calmodel.StoreType(r.GetInt32(calview.PropStoreType)),
		Name:        r.GetStr(calview.PropName),
		Description: r.GetStr(calview.PropDescription),
		Color:       r.GetStr(calview.PropColor),
		Location:    r.GetStr(calview.PropLocation),
		Visibility:  r.GetStr(calview.PropVisibility),
		SyncPolicy:  calmodel.SyncPolicy(r.GetInt32(calview.PropSyncPolicy)),
		Mode:        calmodel.BookMode(r.GetInt32(calview.PropMode)),
		Sync1:       r.GetStr(calview.PropSync1),
		Sync2:       r.GetStr(calview.PropSync2),
		Sync3:       r.GetStr(calview.PropSync3),
		Sync4:       r.GetStr(calview.PropSync4),
		Deleted:     r.GetInt32(calview.PropDeleted) != 0,
	}
}

// FromEvent builds an Event record handle with its RRULE fields and
// child alarms/attendees/extended (spec §3.1).
func FromEvent(e calmodel.Event) (*Record, error) {
	if err := validate.Struct(eventInput{BookID: e.BookID, UID: e.UID, Summary: e.Summary}); err != nil {
		return nil, validationErr("calrecord.FromEvent", err)
	}
	r := New(calmodel.KindEvent, calview.URIEvent)
	setEventCommon(r, e.BookID, e.Summary, e.Description, e.Location, e.Categories, e.Status, e.Priority,
		e.TimezoneID, e.BusyStatus, e.Sensitivity, e.UID, e.Organizer, e.MeetingStatus, e.Latitude, e.Longitude,
		e.EmailID, e.CreatedAt, e.LastModifiedAt, e.Deleted, e.DTStart, e.StartTZID, e.EndTZID,
		e.HasAlarm, e.HasAttendee, e.HasExtended, e.SystemType, e.Sync1, e.Sync2, e.Sync3, e.Sync4,
		e.IsAllDay, e.RRuleFields, e.CreatedVer, e.ChangedVer)
	r.set(calview.PropID, calmodel.Int64Cell(e.ID), false)
	r.set(calview.PropDTEnd, calmodel.CalTimeCell(e.DTEnd), true)
	r.set(calview.PropHasException, boolCell(e.HasException), false)
	r.set(calview.PropOriginalEventID, calmodel.Int64Cell(e.OriginalEventID), true)
	r.set(calview.PropRecurrenceID, calmodel.StringCell(e.RecurrenceID), true)
	r.set(calview.PropRDate, calmodel.StringCell(e.RDate), true)

	for _, a := range e.Alarms {
		ar, err := FromAlarm(a)
		if err != nil {
			return nil, err
		}
		r.AddChildRecord(calmodel.KindAlarm, ar)
	}
	for _, a := range e.Attendees {
		ar, err := FromAttendee(a)
		if err != nil {
			return nil, err
		}
		r.AddChildRecord(calmodel.KindAttendee, ar)
	}
	for _, x := range e.Extended {
		r.AddChildRecord(calmodel.KindExtended, FromExtended(x))
	}
	return r, nil
}

// FromTodo builds a Todo record handle (spec §3.1: same shape as Event
// minus exception/recurrence-id/exdate, DTEnd renamed Due).
func FromTodo(td calmodel.Todo) (*Record, error) {
	if err := validate.Struct(todoInput{BookID: td.BookID, UID: td.UID}); err != nil {
		return nil, validationErr("calrecord.FromTodo", err)
	}
	r := New(calmodel.KindTodo, calview.URITodo)
	setEventCommon(r, td.BookID, td.Summary, td.Description, td.Location, td.Categories, td.Status, td.Priority,
		td.TimezoneID, td.BusyStatus, td.Sensitivity, td.UID, td.Organizer, td.MeetingStatus, td.Latitude, td.Longitude,
		td.EmailID, td.CreatedAt, td.LastModifiedAt, td.Deleted, td.DTStart, td.StartTZID, td.EndTZID,
		td.HasAlarm, td.HasAttendee, td.HasExtended, td.SystemType, td.Sync1, td.Sync2, td.Sync3, td.Sync4,
		td.IsAllDay, td.RRuleFields, td.CreatedVer, td.ChangedVer)
	r.set(calview.PropID, calmodel.Int64Cell(td.ID), false)
	r.set(calview.PropDue, calmodel.CalTimeCell(td.Due), true)

	for _, a := range td.Alarms {
		ar, err := FromAlarm(a)
		if err != nil {
			return nil, err
		}
		r.AddChildRecord(calmodel.KindAlarm, ar)
	}
	for _, a := range td.Attendees {
		ar, err := FromAttendee(a)
		if err != nil {
			return nil, err
		}
		r.AddChildRecord(calmodel.KindAttendee, ar)
	}
	for _, x := range td.Extended {
		r.AddChildRecord(calmodel.KindExtended, FromExtended(x))
	}
	return r, nil
}

// setEventCommon populates the field set shared by Event and Todo.
func setEventCommon(r *Record, bookID int64, summary, description, location, categories, status string,
	priority int32, tzid, busy, sensitivity, uid string, org calmodel.Organizer, meetingStatus string,
	lat, lon float64, emailID string, createdAt, lastModAt calmodel.CalTime, deleted bool, dtstart calmodel.CalTime,
	startTZID, endTZID string, hasAlarm, hasAttendee, hasExtended bool, systemType, sync1, sync2, sync3, sync4 string,
	isAllDay bool, rr calmodel.RRuleFields, createdVer, changedVer int64) {

	r.set(calview.PropBookID, calmodel.Int64Cell(bookID), true)
	r.set(calview.PropSummary, calmodel.StringCell(summary), true)
	r.set(calview.PropDescription, calmodel.StringCell(description), true)
	r.set(calview.PropLocation, calmodel.StringCell(location), true)
	r.set(calview.PropCategories, calmodel.StringCell(categories), true)
	r.set(calview.PropStatus, calmodel.StringCell(status), true)
	r.set(calview.PropPriority, calmodel.Int32Cell(priority), true)
	r.set(calview.PropTimezoneID, calmodel.StringCell(tzid), true)
	r.set(calview.PropBusyStatus, calmodel.StringCell(busy), true)
	r.set(calview.PropSensitivity, calmodel.StringCell(sensitivity), true)
	r.set(calview.PropUID, calmodel.StringCell(uid), true)
	r.set(calview.PropOrganizerName, calmodel.StringCell(org.Name), true)
	r.set(calview.PropOrganizerEmail, calmodel.StringCell(org.Email), true)
	r.set(calview.PropMeetingStatus, calmodel.StringCell(meetingStatus), true)
	r.set(calview.PropLatitude, calmodel.Float64Cell(lat), true)
	r.set(calview.PropLongitude, calmodel.Float64Cell(lon), true)
	r.set(calview.PropEmailID, calmodel.StringCell(emailID), true)
	r.set(calview.PropCreatedAt, calmodel.CalTimeCell(createdAt), false)
	r.set(calview.PropLastModifiedAt, calmodel.CalTimeCell(lastModAt), false)
	r.set(calview.PropDeleted, boolCell(deleted), false)
	r.set(calview.PropDTStart, calmodel.CalTimeCell(dtstart), true)
	r.set(calview.PropStartTZID, calmodel.StringCell(startTZID), true)
	r.set(calview.PropEndTZID, calmodel.StringCell(endTZID), true)
	r.set(calview.PropHasAlarm, boolCell(hasAlarm), false)
	r.set(calview.PropHasAttendee, boolCell(hasAttendee), false)
	r.set(calview.PropHasExtended, boolCell(hasExtended), false)
	r.set(calview.PropSystemType, calmodel.StringCell(systemType), true)
	r.set(calview.PropSync1, calmodel.StringCell(sync1), true)
	r.set(calview.PropSync2, calmodel.StringCell(sync2), true)
	r.set(calview.PropSync3, calmodel.StringCell(sync3), true)
	r.set(calview.PropSync4, calmodel.StringCell(sync4), true)
	r.set(calview.PropIsAllDay, boolCell(isAllDay), true)
	r.set(calview.PropFreq, calmodel.Int32Cell(int32(rr.Freq)), true)
	r.set(calview.PropRangeType, calmodel.Int32Cell(int32(rr.RangeType)), true)
	r.set(calview.PropUntil, calmodel.CalTimeCell(rr.Until), true)
	r.set(calview.PropCount, calmodel.Int32Cell(rr.Count), true)
	r.set(calview.PropInterval, calmodel.Int32Cell(rr.Interval), true)
	r.set(calview.PropByMonth, calmodel.StringCell(calmodel.EncodeInts(rr.ByMonth)), true)
	r.set(calview.PropByWeekNo, calmodel.StringCell(calmodel.EncodeInts(rr.ByWeekNo)), true)
	r.set(calview.PropByYearDay, calmodel.StringCell(calmodel.EncodeInts(rr.ByYearDay)), true)
	r.set(calview.PropByMonthDay, calmodel.StringCell(calmodel.EncodeInts(rr.ByMonthDay)), true)
	r.set(calview.PropByDay, calmodel.StringCell(calmodel.EncodeByDay(rr.ByDay)), true)
	r.set(calview.PropByHour, calmodel.StringCell(calmodel.EncodeInts(rr.ByHour)), true)
	r.set(calview.PropByMinute, calmodel.StringCell(calmodel.EncodeInts(rr.ByMinute)), true)
	r.set(calview.PropBySecond, calmodel.StringCell(calmodel.EncodeInts(rr.BySecond)), true)
	r.set(calview.PropBySetPos, calmodel.StringCell(calmodel.EncodeInts(rr.BySetPos)), true)
	r.set(calview.PropWkst, calmodel.Int32Cell(int32(rr.Wkst)), true)
	r.set(calview.PropCreatedVer, calmodel.Int64Cell(createdVer), false)
	r.set(calview.PropChangedVer, calmodel.Int64Cell(changedVer), false)
}

// ToEvent reads an Event record handle back into a calmodel.Event.
func (r *Record) ToEvent() calmodel.Event {
	return calmodel.Event{
		ID:              r.GetInt64(calview.PropID),
		BookID:          r.GetInt64(calview.PropBookID),
		Summary:         r.GetStr(calview.PropSummary),
		Description:     r.GetStr(calview.PropDescription),
		Location:        r.GetStr(calview.PropLocation),
		Categories:      r.GetStr(calview.PropCategories),
		Status:          r.GetStr(calview.PropStatus),
		Priority:        r.GetInt32(calview.PropPriority),
		TimezoneID:      r.GetStr(calview.PropTimezoneID),
		BusyStatus:      r.GetStr(calview.PropBusyStatus),
		Sensitivity:     r.GetStr(calview.PropSensitivity),
		UID:             r.GetStr(calview.PropUID),
		Organizer:       calmodel.Organizer{Name: r.GetStr(calview.PropOrganizerName), Email: r.GetStr(calview.PropOrganizerEmail)},
		MeetingStatus:   r.GetStr(calview.PropMeetingStatus),
		OriginalEventID: r.GetInt64(calview.PropOriginalEventID),
		Latitude:        r.GetFloat64(calview.PropLatitude),
		Longitude:       r.GetFloat64(calview.PropLongitude),
		EmailID:         r.GetStr(calview.PropEmailID),
		CreatedAt:       r.GetCalTime(calview.PropCreatedAt),
		LastModifiedAt:  r.GetCalTime(calview.PropLastModifiedAt),
		Deleted:         r.GetInt32(calview.PropDeleted) != 0,
		DTStart:         r.GetCalTime(calview.PropDTStart),
		DTEnd:           r.GetCalTime(calview.PropDTEnd),
		StartTZID:       r.GetStr(calview.PropStartTZID),
		EndTZID:         r.GetStr(calview.PropEndTZID),
		HasAlarm:        r.GetInt32(calview.PropHasAlarm) != 0,
		HasAttendee:     r.GetInt32(calview.PropHasAttendee) != 0,
		HasExtended:     r.GetInt32(calview.PropHasExtended) != 0,
		HasException:    r.GetInt32(calview.PropHasException) != 0,
		SystemType:      r.GetStr(calview.PropSystemType),
		Sync1:           r.GetStr(calview.PropSync1),
		Sync2:           r.GetStr(calview.PropSync2),
		Sync3:           r.GetStr(calview.PropSync3),
		Sync4:           r.GetStr(calview.PropSync4),
		RecurrenceID:    r.GetStr(calview.PropRecurrenceID),
		RDate:           r.GetStr(calview.PropRDate),
		IsAllDay:        r.GetInt32(calview.PropIsAllDay) != 0,
		RRuleFields:     readRRuleFields(r),
		CreatedVer:      r.GetInt64(calview.PropCreatedVer),
		ChangedVer:      r.GetInt64(calview.PropChangedVer),
	}
}

// ToTodo reads a Todo record handle back into a calmodel.Todo.
func (r *Record) ToTodo() calmodel.Todo {
	return calmodel.Todo{
		ID:             r.GetInt64(calview.PropID),
		BookID:         r.GetInt64(calview.PropBookID),
		Summary:        r.GetStr(calview.PropSummary),
		Description:    r.GetStr(calview.PropDescription),
		Location:       r.GetStr(calview.PropLocation),
		Categories:     r.GetStr(calview.PropCategories),
		Status:         r.GetStr(calview.PropStatus),
		Priority:       r.GetInt32(calview.PropPriority),
		TimezoneID:     r.GetStr(calview.PropTimezoneID),
		BusyStatus:     r.GetStr(calview.PropBusyStatus),
		Sensitivity:    r.GetStr(calview.PropSensitivity),
		UID:            r.GetStr(calview.PropUID),
		Organizer:      calmodel.Organizer{Name: r.GetStr(calview.PropOrganizerName), Email: r.GetStr(calview.PropOrganizerEmail)},
		MeetingStatus:  r.GetStr(calview.PropMeetingStatus),
		Latitude:       r.GetFloat64(calview.PropLatitude),
		Longitude:      r.GetFloat64(calview.PropLongitude),
		EmailID:        r.GetStr(calview.PropEmailID),
		CreatedAt:      r.GetCalTime(calview.PropCreatedAt),
		LastModifiedAt: r.GetCalTime(calview.PropLastModifiedAt),
		Deleted:        r.GetInt32(calview.PropDeleted) != 0,
		DTStart:        r.GetCalTime(calview.PropDTStart),
		Due:            r.GetCalTime(calview.PropDue),
		StartTZID:      r.GetStr(calview.PropStartTZID),
		EndTZID:        r.GetStr(calview.PropEndTZID),
		HasAlarm:       r.GetInt32(calview.PropHasAlarm) != 0,
		HasAttendee:    r.GetInt32(calview.PropHasAttendee) != 0,
		HasExtended:    r.GetInt32(calview.PropHasExtended) != 0,
		SystemType:     r.GetStr(calview.PropSystemType),
		Sync1:          r.GetStr(calview.PropSync1),
		Sync2:          r.GetStr(calview.PropSync2),
		Sync3:          r.GetStr(calview.PropSync3),
		Sync4:          r.GetStr(calview.PropSync4),
		IsAllDay:       r.GetInt32(calview.PropIsAllDay) != 0,
		RRuleFields:    readRRuleFields(r),
		CreatedVer:     r.GetInt64(calview.PropCreatedVer),
		ChangedVer:     r.GetInt64(calview.PropChangedVer),
	}
}

func readRRuleFields(r *Record) calmodel.RRuleFields {
	return calmodel.RRuleFields{
		Freq:       calmodel.Freq(r.GetInt32(calview.PropFreq)),
		RangeType:  calmodel.RangeType(r.GetInt32(calview.PropRangeType)),
		Until:      r.GetCalTime(calview.PropUntil),
		Count:      r.GetInt32(calview.PropCount),
		Interval:   r.GetInt32(calview.PropInterval),
		ByMonth:    calmodel.DecodeInts(r.GetStr(calview.PropByMonth)),
		ByWeekNo:   calmodel.DecodeInts(r.GetStr(calview.PropByWeekNo)),
		ByYearDay:  calmodel.DecodeInts(r.GetStr(calview.PropByYearDay)),
		ByMonthDay: calmodel.DecodeInts(r.GetStr(calview.PropByMonthDay)),
		ByDay:      calmodel.DecodeByDay(r.GetStr(calview.PropByDay)),
		ByHour:     calmodel.DecodeInts(r.GetStr(calview.PropByHour)),
		ByMinute:   calmodel.DecodeInts(r.GetStr(calview.PropByMinute)),
		BySecond:   calmodel.DecodeInts(r.GetStr(calview.PropBySecond)),
		BySetPos:   calmodel.DecodeInts(r.GetStr(calview.PropBySetPos)),
		Wkst:       calmodel.Weekday(r.GetInt32(calview.PropWkst)),
	}
}

// FromAlarm builds an Alarm child record handle.
func FromAlarm(a calmodel.Alarm) (*Record, error) {
	if err := validate.Struct(alarmInput{ParentID: a.ParentID, Unit: a.Unit}); err != nil {
		return nil, validationErr("calrecord.FromAlarm", err)
	}
	r := New(calmodel.KindAlarm, calview.URIAlarm)
	r.set(calview.PropID, calmodel.Int64Cell(a.ID), false)
	r.set(calview.PropAlarmParentID, calmodel.Int64Cell(a.ParentID), false)
	r.set(calview.PropAlarmTick, calmodel.Int32Cell(a.Tick), true)
	r.set(calview.PropAlarmUnit, calmodel.Int32Cell(int32(a.Unit)), true)
	r.set(calview.PropDescription, calmodel.StringCell(a.Description), true)
	r.set(calview.PropSummary, calmodel.StringCell(a.Summary), true)
	r.set(calview.PropAlarmAction, calmodel.StringCell(a.Action), true)
	r.set(calview.PropAlarmAttach, calmodel.StringCell(a.Attach), true)
	r.set(calview.PropAlarmTime, calmodel.CalTimeCell(a.AlarmTime), true)
	return r, nil
}

func (r *Record) ToAlarm() calmodel.Alarm {
	return calmodel.Alarm{
		ID:          r.GetInt64(calview.PropID),
		ParentID:    r.GetInt64(calview.PropAlarmParentID),
		Tick:        r.GetInt32(calview.PropAlarmTick),
		Unit:        calmodel.AlarmUnit(r.GetInt32(calview.PropAlarmUnit)),
		Description: r.GetStr(calview.PropDescription),
		Summary:     r.GetStr(calview.PropSummary),
		Action:      r.GetStr(calview.PropAlarmAction),
		Attach:      r.GetStr(calview.PropAlarmAttach),
		AlarmTime:   r.GetCalTime(calview.PropAlarmTime),
	}
}

// FromAttendee builds an Attendee child record handle.
func FromAttendee(a calmodel.Attendee) (*Record, error) {
	if err := validate.Struct(attendeeInput{ParentID: a.ParentID, Email: a.Email}); err != nil {
		return nil, validationErr("calrecord.FromAttendee", err)
	}
	r := New(calmodel.KindAttendee, calview.URIAttendee)
	r.set(calview.PropID, calmodel.Int64Cell(a.ID), false)
	r.set(calview.PropAttendeeParentID, calmodel.Int64Cell(a.ParentID), false)
	r.set(calview.PropAttendeeNumber, calmodel.Int32Cell(a.Number), true)
	r.set(calview.PropAttendeeCUType, calmodel.StringCell(a.CUType), true)
	r.set(calview.PropAttendeeContactIndex, calmodel.Int32Cell(a.ContactIndex), true)
	r.set(calview.PropUID, calmodel.StringCell(a.UID), true)
	r.set(calview.PropAttendeeGroup, calmodel.StringCell(a.Group), true)
	r.set(calview.PropAttendeeEmail, calmodel.StringCell(a.Email), true)
	r.set(calview.PropAttendeeRole, calmodel.StringCell(a.Role), true)
	r.set(calview.PropAttendeeStatus, calmodel.StringCell(a.Status), true)
	r.set(calview.PropAttendeeRSVP, boolCell(a.RSVP), true)
	r.set(calview.PropAttendeeDelegatorURI, calmodel.StringCell(a.DelegatorURI), true)
	r.set(calview.PropAttendeeDelegateeURI, calmodel.StringCell(a.DelegateeURI), true)
	r.set(calview.PropAttendeeName, calmodel.StringCell(a.Name), true)
	r.set(calview.PropAttendeeMember, calmodel.StringCell(a.Member), true)
	return r, nil
}

func (r *Record) ToAttendee() calmodel.Attendee {
	return calmodel.Attendee{
		ID:           r.GetInt64(calview.PropID),
		ParentID:     r.GetInt64(calview.PropAttendeeParentID),
		Number:       r.GetInt32(calview.PropAttendeeNumber),
		CUType:       r.GetStr(calview.PropAttendeeCUType),
		ContactIndex: r.GetInt32(calview.PropAttendeeContactIndex),
		UID:          r.GetStr(calview.PropUID),
		Group:        r.GetStr(calview.PropAttendeeGroup),
		Email:        r.GetStr(calview.PropAttendeeEmail),
		Role:         r.GetStr(calview.PropAttendeeRole),
		Status:       r.GetStr(calview.PropAttendeeStatus),
		RSVP:         r.GetInt32(calview.PropAttendeeRSVP) != 0,
		DelegatorURI: r.GetStr(calview.PropAttendeeDelegatorURI),
		DelegateeURI: r.GetStr(calview.PropAttendeeDelegateeURI),
		Name:         r.GetStr(calview.PropAttendeeName),
		Member:       r.GetStr(calview.PropAttendeeMember),
	}
}

// FromTimezone builds a read-only Timezone record handle.
func FromTimezone(tz calmodel.Timezone) *Record {
	r := New(calmodel.KindTimezone, calview.URITimezone)
	r.set(calview.PropID, calmodel.Int64Cell(tz.ID), false)
	r.set(calview.PropBookID, calmodel.Int64Cell(tz.BookID), false)
	r.set(calview.PropUID, calmodel.StringCell(tz.TZID), false)
	r.set(calview.PropTZOffset, calmodel.Int32Cell(tz.OffsetFromGMT), false)
	return r
}

// FromExtended builds an Extended child record handle.
func FromExtended(x calmodel.Extended) *Record {
	r := New(calmodel.KindExtended, calview.URIExtended)
	r.set(calview.PropID, calmodel.Int64Cell(x.ID), false)
	r.set(calview.PropAlarmParentID, calmodel.Int64Cell(x.RecordID), false)
	r.set(calview.PropDTStart, calmodel.Int32Cell(int32(x.RecordKind)), false)
	r.set(calview.PropExtendedKey, calmodel.StringCell(x.Key), true)
	r.set(calview.PropExtendedValue, calmodel.StringCell(x.Value), true)
	return r
}

func (r *Record) ToExtended() calmodel.Extended {
	return calmodel.Extended{
		ID:         r.GetInt64(calview.PropID),
		RecordID:   r.GetInt64(calview.PropAlarmParentID),
		RecordKind: calmodel.RecordKind(r.GetInt32(calview.PropDTStart)),
		Key:        r.GetStr(calview.PropExtendedKey),
		Value:      r.GetStr(calview.PropExtendedValue),
	}
}

// FromInstance builds one of the four instance-view record handles,
// resolving ParentKind/Table to the matching view URI (spec §3.1 "four
// instance variants" over the two physical tables).
func FromInstance(in calmodel.Instance) (*Record, error) {
	uri, kind, err := instanceView(in.ParentKind, in.Table)
	if err != nil {
		return nil, err
	}
	r := New(kind, uri)
	r.set(calview.PropID, calmodel.Int64Cell(in.ID), false)
	r.set(calview.PropAlarmParentID, calmodel.Int64Cell(in.ParentID), false)
	r.set(calview.PropInstanceStart, calmodel.CalTimeCell(in.Start), false)
	r.set(calview.PropInstanceEnd, calmodel.CalTimeCell(in.End), false)
	return r, nil
}

func (r *Record) ToInstance() calmodel.Instance {
	parentKind := calmodel.KindEvent
	table := calmodel.InstanceUtime
	switch r.Kind {
	case calmodel.KindEventInstanceUtime:
		parentKind, table = calmodel.KindEvent, calmodel.InstanceUtime
	case calmodel.KindEventInstanceAllday:
		parentKind, table = calmodel.KindEvent, calmodel.InstanceAllday
	case calmodel.KindTodoInstanceUtime:
		parentKind, table = calmodel.KindTodo, calmodel.InstanceUtime
	case calmodel.KindTodoInstanceAllday:
		parentKind, table = calmodel.KindTodo, calmodel.InstanceAllday
	}
	return calmodel.Instance{
		ID:         r.GetInt64(calview.PropID),
		ParentID:   r.GetInt64(calview.PropAlarmParentID),
		ParentKind: parentKind,
		Table:      table,
		Start:      r.GetCalTime(calview.PropInstanceStart),
		End:        r.GetCalTime(calview.PropInstanceEnd),
	}
}

func instanceView(parentKind calmodel.RecordKind, table calmodel.InstanceTable) (string, calmodel.RecordKind, error) {
	switch {
	case parentKind == calmodel.KindEvent && table == calmodel.InstanceUtime:
		return calview.URIEventInstanceUtime, calmodel.KindEventInstanceUtime, nil
	case parentKind == calmodel.KindEvent && table == calmodel.InstanceAllday:
		return calview.URIEventInstanceAllday, calmodel.KindEventInstanceAllday, nil
	case parentKind == calmodel.KindTodo && table == calmodel.InstanceUtime:
		return calview.URITodoInstanceUtime, calmodel.KindTodoInstanceUtime, nil
	case parentKind == calmodel.KindTodo && table == calmodel.InstanceAllday:
		return calview.URITodoInstanceAllday, calmodel.KindTodoInstanceAllday, nil
	default:
		return "", 0, errInvalidf("instance record must have parent kind event or todo, got %v", parentKind)
	}
}

func boolCell(b bool) calmodel.Cell {
	if b {
		return calmodel.Int32Cell(1)
	}
	return calmodel.Int32Cell(0)
}
