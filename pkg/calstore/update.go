package calstore

import (
	"strings"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calrecord"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

// compileDirtyUpdate builds the "col = ?, col2 = ?, ..." fragment and
// bind list for every property r.DirtyProperties() reports, resolving
// each property's column name(s) through view (spec §4.6: "a dirty
// update touches only the columns the caller actually set, and never
// recomputes has_alarm/has_attendee/has_exception/has_extended").
// Returns ok=false when r has nothing dirty, so callers can skip the
// round trip entirely.
func compileDirtyUpdate(view *calview.Table, r *calrecord.Record) (frag string, args []interface{}, ok bool, err error) {
	props := r.DirtyProperties()
	if len(props) == 0 {
		return "", nil, false, nil
	}
	var parts []string
	for _, p := range props {
		d, found := view.Lookup(p)
		if !found {
			return "", nil, false, calerr.InvalidParameterf("calstore.compileDirtyUpdate", "property %v is not part of view %q", p, view.URI)
		}
		cell := r.GetCell(p)
		if d.Column.IsTime {
			typeCol, utimeCol, datetimeCol := d.Column.Columns[0], d.Column.Columns[1], d.Column.Columns[2]
			typ, utime, datetime := cell.CalTime.BindTriple()
			parts = append(parts, typeCol+" = ?", utimeCol+" = ?", datetimeCol+" = ?")
			args = append(args, typ, utime, datetime)
			continue
		}
		col := d.Column.Columns[0]
		parts = append(parts, col+" = ?")
		args = append(args, cellBindValue(cell))
	}
	return strings.Join(parts, ", "), args, true, nil
}

func cellBindValue(c calmodel.Cell) interface{} {
	switch c.Type {
	case calmodel.CellString:
		return c.Str
	case calmodel.CellInt32:
		return c.I32
	case calmodel.CellInt64:
		return c.I64
	case calmodel.CellFloat64:
		return c.F64
	default:
		return nil
	}
}

// UpdateEventDirty persists only the properties set on rec since it was
// read (or since the last successful update), leaving has_alarm/
// has_attendee/has_exception/has_extended untouched (spec §4.6). Pass
// the Record built by calrecord.FromEvent's read path or by individual
// Set* calls against calview.URIEvent.
func (e *Engine) UpdateEventDirty(id int64, rec *calrecord.Record) error {
	return e.updateDirty(calview.URIEvent, "schedule_table", "is_todo = 0", id, calmodel.KindEvent, rec)
}

// UpdateTodoDirty is UpdateEventDirty's todo counterpart.
func (e *Engine) UpdateTodoDirty(id int64, rec *calrecord.Record) error {
	return e.updateDirty(calview.URITodo, "schedule_table", "is_todo = 1", id, calmodel.KindTodo, rec)
}

func (e *Engine) updateDirty(viewURI, table, scope string, id int64, kind calmodel.RecordKind, rec *calrecord.Record) error {
	view, err := calview.GetPropertyInfo(viewURI)
	if err != nil {
		return err
	}
	frag, args, ok, err := compileDirtyUpdate(view, rec)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	bookID, err := e.bookIDForSchedule(id)
	if err != nil {
		return err
	}
	b, err := e.GetBook(bookID)
	if err != nil {
		return err
	}
	if err := e.checkBookWritable("calstore.updateDirty", b); err != nil {
		return err
	}
	return e.retryOnContention(func() error {
		tx, err := e.db.Begin()
		if err != nil {
			return calerr.DBFailedf("calstore.updateDirty", err)
		}
		defer tx.Rollback() //nolint:errcheck

		ver, err := e.version.Reserve(tx)
		if err != nil {
			return calerr.DBFailedf("calstore.updateDirty", err)
		}
		callArgs := append(append([]interface{}{}, args...), ver, id)
		q := "UPDATE " + table + " SET " + frag + ", changed_ver = ? WHERE id = ? AND " + scope
		res, err := tx.Exec(q, callArgs...)
		if err != nil {
			return calerr.DBFailedf("calstore.updateDirty", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return calerr.DBFailedf("calstore.updateDirty", err)
		}
		if n == 0 {
			return calerr.New(calerr.DBRecordNotFound, "calstore.updateDirty", nil)
		}
		if err := tx.Commit(); err != nil {
			return calerr.DBFailedf("calstore.updateDirty", err)
		}
		rec.ClearDirty()
		e.notify.Notify(kind, id, calmodel.ModifiedUpsert)
		return nil
	})
}

// UpdateEventFull rewrites every column of an existing event, including
// its children (full delete + reinsert) and has_alarm/has_attendee/
// has_extended flags recomputed from the child slices, the complement
// to UpdateEventDirty (spec §4.6). has_exception is not recomputed: it
// is written as ev.HasException carries it.
func (e *Engine) UpdateEventFull(ev calmodel.Event) error {
	if _, err := calrecord.FromEvent(ev); err != nil {
		return err
	}
	b, err := e.GetBook(ev.BookID)
	if err != nil {
		return err
	}
	if err := e.checkBookWritable("calstore.UpdateEventFull", b); err != nil {
		return err
	}
	ev.HasAlarm = len(ev.Alarms) > 0
	ev.HasAttendee = len(ev.Attendees) > 0
	ev.HasExtended = len(ev.Extended) > 0
	if ev.OriginalEventID == 0 {
		ev.OriginalEventID = -1
	}

	err = e.retryOnContention(func() error {
		tx, err := e.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		ver, err := e.version.Reserve(tx)
		if err != nil {
			return err
		}
		ev.ChangedVer = ver

		ct, cu, cd := ev.CreatedAt.BindTriple()
		lt, lu, ld := ev.LastModifiedAt.BindTriple()
		dst, dsu, dsd := ev.DTStart.BindTriple()
		det, deu, ded := ev.DTEnd.BindTriple()
		ut, uu, ud := ev.Until.BindTriple()

		res, err := tx.Exec(
			`UPDATE schedule_table SET
			 summary=?, description=?, event_location=?, categories=?, status=?, priority=?,
			 timezone=?, busy_status=?, sensitivity=?, uid=?, organizer=?, organizer_email=?, meeting_status=?, original_event_id=?,
			 latitude=?, longitude=?, email_id=?, created_type=?, created_utime=?, created_datetime=?,
			 lastmod_type=?, lastmod_utime=?, lastmod_datetime=?, is_deleted=?,
			 dtstart_type=?, dtstart_utime=?, dtstart_datetime=?, dtend_type=?, dtend_utime=?, dtend_datetime=?,
			 dtstart_tzid=?, dtend_tzid=?, has_alarm=?, has_attendee=?, has_exception=?, has_extended=?, system_type=?,
			 sync1=?, sync2=?, sync3=?, sync4=?, recurrence_id=?, rdate=?, is_allday=?,
			 freq=?, range_type=?, until_type=?, until_utime=?, until_datetime=?, count=?, interval=?,
			 bymonth=?, byweekno=?, byyearday=?, bymonthday=?, byday=?, byhour=?, byminute=?, bysecond=?, bysetpos=?, wkst=?,
			 changed_ver=?
			 WHERE id=? AND is_todo=0`,
			ev.Summary, ev.Description, ev.Location, ev.Categories, ev.Status, ev.Priority,
			ev.TimezoneID, ev.BusyStatus, ev.Sensitivity, ev.UID, ev.Organizer.Name, ev.Organizer.Email, ev.MeetingStatus, ev.OriginalEventID,
			ev.Latitude, ev.Longitude, ev.EmailID, ct, cu, cd,
			lt, lu, ld, boolInt(ev.Deleted),
			dst, dsu, dsd, det, deu, ded,
			ev.StartTZID, ev.EndTZID, boolInt(ev.HasAlarm), boolInt(ev.HasAttendee), boolInt(ev.HasException), boolInt(ev.HasExtended), ev.SystemType,
			ev.Sync1, ev.Sync2, ev.Sync3, ev.Sync4, ev.RecurrenceID, ev.RDate, boolInt(ev.IsAllDay),
			int(ev.Freq), int(ev.RangeType), ut, uu, ud, ev.Count, ev.Interval,
			calmodel.EncodeInts(ev.ByMonth), calmodel.EncodeInts(ev.ByWeekNo), calmodel.EncodeInts(ev.ByYearDay), calmodel.EncodeInts(ev.ByMonthDay),
			calmodel.EncodeByDay(ev.ByDay), calmodel.EncodeInts(ev.ByHour), calmodel.EncodeInts(ev.ByMinute), calmodel.EncodeInts(ev.BySecond), calmodel.EncodeInts(ev.BySetPos), int(ev.Wkst),
			ver,
			ev.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return calerr.New(calerr.DBRecordNotFound, "calstore.UpdateEventFull", nil)
		}
		if err := deleteChildren(tx, ev.ID, calmodel.KindEvent); err != nil {
			return err
		}
		if err := insertChildren(tx, ev.ID, ev.Alarms, ev.Attendees, ev.Extended, calmodel.KindEvent); err != nil {
			return err
		}
		return tx.Commit()
	})
	if calerr.Of(err) == calerr.DBRecordNotFound {
		return err
	}
	if err != nil {
		return calerr.DBFailedf("calstore.UpdateEventFull", err)
	}
	e.notify.Notify(calmodel.KindEvent, ev.ID, calmodel.ModifiedUpsert)
	return nil
}

// UpdateTodoFull is UpdateEventFull's todo counterpart.
func (e *Engine) UpdateTodoFull(td calmodel.Todo) error {
	if _, err := calrecord.FromTodo(td); err != nil {
		return err
	}
	b, err := e.GetBook(td.BookID)
	if err != nil {
		return err
	}
	if err := e.checkBookWritable("calstore.UpdateTodoFull", b); err != nil {
		return err
	}
	td.HasAlarm = len(td.Alarms) > 0
	td.HasAttendee = len(td.Attendees) > 0
	td.HasExtended = len(td.Extended) > 0

	err = e.retryOnContention(func() error {
		tx, err := e.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		ver, err := e.version.Reserve(tx)
		if err != nil {
			return err
		}
		td.ChangedVer = ver

		ct, cu, cd := td.CreatedAt.BindTriple()
		lt, lu, ld := td.LastModifiedAt.BindTriple()
		dst, dsu, dsd := td.DTStart.BindTriple()
		dut, duu, dud := td.Due.BindTriple()
		ut, uu, ud := td.Until.BindTriple()

		res, err := tx.Exec(
			`UPDATE schedule_table SET
			 summary=?, description=?, event_location=?, categories=?, status=?, priority=?,
			 timezone=?, busy_status=?, sensitivity=?, uid=?, organizer=?, organizer_email=?, meeting_status=?,
			 latitude=?, longitude=?, email_id=?, created_type=?, created_utime=?, created_datetime=?,
			 lastmod_type=?, lastmod_utime=?, lastmod_datetime=?, is_deleted=?,
			 dtstart_type=?, dtstart_utime=?, dtstart_datetime=?, due_type=?, due_utime=?, due_datetime=?,
			 dtstart_tzid=?, dtend_tzid=?, has_alarm=?, has_attendee=?, has_extended=?, system_type=?,
			 sync1=?, sync2=?, sync3=?, sync4=?, is_allday=?,
			 freq=?, range_type=?, until_type=?, until_utime=?, until_datetime=?, count=?, interval=?,
			 bymonth=?, byweekno=?, byyearday=?, bymonthday=?, byday=?, byhour=?, byminute=?, bysecond=?, bysetpos=?, wkst=?,
			 changed_ver=?
			 WHERE id=? AND is_todo=1`,
			td.Summary, td.Description, td.Location, td.Categories, td.Status, td.Priority,
			td.TimezoneID, td.BusyStatus, td.Sensitivity, td.UID, td.Organizer.Name, td.Organizer.Email, td.MeetingStatus,
			td.Latitude, td.Longitude, td.EmailID, ct, cu, cd,
			lt, lu, ld, boolInt(td.Deleted),
			dst, dsu, dsd, dut, duu, dud,
			td.StartTZID, td.EndTZID, boolInt(td.HasAlarm), boolInt(td.HasAttendee), boolInt(td.HasExtended), td.SystemType,
			td.Sync1, td.Sync2, td.Sync3, td.Sync4, boolInt(td.IsAllDay),
			int(td.Freq), int(td.RangeType), ut, uu, ud, td.Count, td.Interval,
			calmodel.EncodeInts(td.ByMonth), calmodel.EncodeInts(td.ByWeekNo), calmodel.EncodeInts(td.ByYearDay), calmodel.EncodeInts(td.ByMonthDay),
			calmodel.EncodeByDay(td.ByDay), calmodel.EncodeInts(td.ByHour), calmodel.EncodeInts(td.ByMinute), calmodel.EncodeInts(td.BySecond), calmodel.EncodeInts(td.BySetPos), int(td.Wkst),
			ver,
			td.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return calerr.New(calerr.DBRecordNotFound, "calstore.UpdateTodoFull", nil)
		}
		if err := deleteChildren(tx, td.ID, calmodel.KindTodo); err != nil {
			return err
		}
		if err := insertChildren(tx, td.ID, td.Alarms, td.Attendees, td.Extended, calmodel.KindTodo); err != nil {
			return err
		}
		return tx.Commit()
	})
	if calerr.Of(err) == calerr.DBRecordNotFound {
		return err
	}
	if err != nil {
		return calerr.DBFailedf("calstore.UpdateTodoFull", err)
	}
	e.notify.Notify(calmodel.KindTodo, td.ID, calmodel.ModifiedUpsert)
	return nil
}
