package calstore

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calquery"
	"github.com/calendarcore/calendarcore/pkg/calrecord"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

const eventColumns = `id, calendar_id, summary, description, event_location, categories, status, priority,
	timezone, busy_status, sensitivity, uid, organizer, organizer_email, meeting_status, original_event_id,
	latitude, longitude, email_id, created_type, created_utime, created_datetime,
	lastmod_type, lastmod_utime, lastmod_datetime, is_deleted,
	dtstart_type, dtstart_utime, dtstart_datetime, dtend_type, dtend_utime, dtend_datetime,
	dtstart_tzid, dtend_tzid, has_alarm, has_attendee, has_exception, has_extended, system_type,
	sync1, sync2, sync3, sync4, recurrence_id, rdate, is_allday,
	freq, range_type, until_type, until_utime, until_datetime, count, interval,
	bymonth, byweekno, byyearday, bymonthday, byday, byhour, byminute, bysecond, bysetpos, wkst,
	created_ver, changed_ver`

// CreateEvent inserts an Event and its children inside one transaction,
// stamping created_ver/changed_ver from the version ledger (spec §4.6,
// §4.8).
func (e *Engine) CreateEvent(ev calmodel.Event) (calmodel.Event, error) {
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}
	if _, err := calrecord.FromEvent(ev); err != nil {
		return calmodel.Event{}, err
	}
	b, err := e.GetBook(ev.BookID)
	if err != nil {
		return calmodel.Event{}, err
	}
	if err := e.checkBookWritable("calstore.CreateEvent", b); err != nil {
		return calmodel.Event{}, err
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
		ev.CreatedVer, ev.ChangedVer = ver, ver

		ct, cu, cd := ev.CreatedAt.BindTriple()
		lt, lu, ld := ev.LastModifiedAt.BindTriple()
		dst, dsu, dsd := ev.DTStart.BindTriple()
		det, deu, ded := ev.DTEnd.BindTriple()
		ut, uu, ud := ev.Until.BindTriple()

		res, err := tx.Exec(
			`INSERT INTO schedule_table
			 (calendar_id, summary, description, event_location, categories, status, priority,
			  timezone, busy_status, sensitivity, uid, organizer, organizer_email, meeting_status, original_event_id,
			  latitude, longitude, email_id, created_type, created_utime, created_datetime,
			  lastmod_type, lastmod_utime, lastmod_datetime, is_deleted,
			  dtstart_type, dtstart_utime, dtstart_datetime, dtend_type, dtend_utime, dtend_datetime,
			  dtstart_tzid, dtend_tzid, has_alarm, has_attendee, has_exception, has_extended, system_type,
			  sync1, sync2, sync3, sync4, recurrence_id, rdate, is_allday,
			  freq, range_type, until_type, until_utime, until_datetime, count, interval,
			  bymonth, byweekno, byyearday, bymonthday, byday, byhour, byminute, bysecond, bysetpos, wkst,
			  is_todo, created_ver, changed_ver)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,0,?,?)`,
			ev.BookID, ev.Summary, ev.Description, ev.Location, ev.Categories, ev.Status, ev.Priority,
			ev.TimezoneID, ev.BusyStatus, ev.Sensitivity, ev.UID, ev.Organizer.Name, ev.Organizer.Email, ev.MeetingStatus, ev.OriginalEventID,
			ev.Latitude, ev.Longitude, ev.EmailID, ct, cu, cd,
			lt, lu, ld, boolInt(ev.Deleted),
			dst, dsu, dsd, det, deu, ded,
			ev.StartTZID, ev.EndTZID, boolInt(ev.HasAlarm), boolInt(ev.HasAttendee), boolInt(ev.HasException), boolInt(ev.HasExtended), ev.SystemType,
			ev.Sync1, ev.Sync2, ev.Sync3, ev.Sync4, ev.RecurrenceID, ev.RDate, boolInt(ev.IsAllDay),
			int(ev.Freq), int(ev.RangeType), ut, uu, ud, ev.Count, ev.Interval,
			calmodel.EncodeInts(ev.ByMonth), calmodel.EncodeInts(ev.ByWeekNo), calmodel.EncodeInts(ev.ByYearDay), calmodel.EncodeInts(ev.ByMonthDay),
			calmodel.EncodeByDay(ev.ByDay), calmodel.EncodeInts(ev.ByHour), calmodel.EncodeInts(ev.ByMinute), calmodel.EncodeInts(ev.BySecond), calmodel.EncodeInts(ev.BySetPos), int(ev.Wkst),
			ver, ver,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		ev.ID = id

		if err := insertChildren(tx, id, ev.Alarms, ev.Attendees, ev.Extended, calmodel.KindEvent); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return calmodel.Event{}, calerr.DBFailedf("calstore.CreateEvent", err)
	}
	e.notify.Notify(calmodel.KindEvent, ev.ID, calmodel.ModifiedUpsert)
	return ev, nil
}

// GetEvent reads an event and its children by id.
func (e *Engine) GetEvent(id int64) (calmodel.Event, error) {
	row := e.db.QueryRow(`SELECT `+eventColumns+` FROM schedule_table WHERE id = ? AND is_todo = 0`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return calmodel.Event{}, calerr.New(calerr.DBRecordNotFound, "calstore.GetEvent", err)
	}
	if err != nil {
		return calmodel.Event{}, calerr.DBFailedf("calstore.GetEvent", err)
	}
	ev.Alarms, ev.Attendees, ev.Extended, err = e.loadChildren(id, calmodel.KindEvent)
	if err != nil {
		return calmodel.Event{}, err
	}
	return ev, nil
}

// GetEventByUID resolves a master event by its UID within a book, the
// lookup a RECURRENCE-ID exception needs to find the series it
// modifies (spec §4.7.2).
func (e *Engine) GetEventByUID(bookID int64, uid string) (calmodel.Event, error) {
	row := e.db.QueryRow(
		`SELECT `+eventColumns+` FROM schedule_table WHERE calendar_id = ? AND uid = ? AND is_todo = 0 AND original_event_id = -1`,
		bookID, uid,
	)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return calmodel.Event{}, calerr.New(calerr.DBRecordNotFound, "calstore.GetEventByUID", err)
	}
	if err != nil {
		return calmodel.Event{}, calerr.DBFailedf("calstore.GetEventByUID", err)
	}
	ev.Alarms, ev.Attendees, ev.Extended, err = e.loadChildren(ev.ID, calmodel.KindEvent)
	if err != nil {
		return calmodel.Event{}, err
	}
	return ev, nil
}

// scanEvent decodes one schedule_table row (eventColumns order) from any
// rowScanner, so both *sql.Row (GetEvent) and *sql.Rows (QueryEvents)
// share one implementation. Scan errors, including sql.ErrNoRows, are
// returned unwrapped so callers can branch on them.
func scanEvent(row rowScanner) (calmodel.Event, error) {
	var ev calmodel.Event
	var deleted, hasAlarm, hasAttendee, hasException, hasExtended, isAllDay int
	var freq, rangeType, wkst int
	var ct, lt, dst, det, ut int32
	var cu, lu, dsu, deu, uu int64
	var cd, ld, dsd, ded, ud string
	var bymonth, byweekno, byyearday, bymonthday, byday, byhour, byminute, bysecond, bysetpos string

	err := row.Scan(&ev.ID, &ev.BookID, &ev.Summary, &ev.Description, &ev.Location, &ev.Categories, &ev.Status, &ev.Priority,
		&ev.TimezoneID, &ev.BusyStatus, &ev.Sensitivity, &ev.UID, &ev.Organizer.Name, &ev.Organizer.Email, &ev.MeetingStatus, &ev.OriginalEventID,
		&ev.Latitude, &ev.Longitude, &ev.EmailID, &ct, &cu, &cd,
		&lt, &lu, &ld, &deleted,
		&dst, &dsu, &dsd, &det, &deu, &ded,
		&ev.StartTZID, &ev.EndTZID, &hasAlarm, &hasAttendee, &hasException, &hasExtended, &ev.SystemType,
		&ev.Sync1, &ev.Sync2, &ev.Sync3, &ev.Sync4, &ev.RecurrenceID, &ev.RDate, &isAllDay,
		&freq, &rangeType, &ut, &uu, &ud, &ev.Count, &ev.Interval,
		&bymonth, &byweekno, &byyearday, &bymonthday, &byday, &byhour, &byminute, &bysecond, &bysetpos, &wkst,
		&ev.CreatedVer, &ev.ChangedVer,
	)
	if err != nil {
		return calmodel.Event{}, err
	}

	ev.Deleted, ev.HasAlarm, ev.HasAttendee, ev.HasException, ev.HasExtended, ev.IsAllDay =
		deleted != 0, hasAlarm != 0, hasAttendee != 0, hasException != 0, hasExtended != 0, isAllDay != 0
	ev.CreatedAt, _ = calmodel.ColumnCalTime(ct, cu, cd)
	ev.LastModifiedAt, _ = calmodel.ColumnCalTime(lt, lu, ld)
	ev.DTStart, _ = calmodel.ColumnCalTime(dst, dsu, dsd)
	ev.DTEnd, _ = calmodel.ColumnCalTime(det, deu, ded)
	ev.Until, _ = calmodel.ColumnCalTime(ut, uu, ud)
	ev.Freq = calmodel.Freq(freq)
	ev.RangeType = calmodel.RangeType(rangeType)
	ev.Wkst = calmodel.Weekday(wkst)
	ev.ByMonth = calmodel.DecodeInts(bymonth)
	ev.ByWeekNo = calmodel.DecodeInts(byweekno)
	ev.ByYearDay = calmodel.DecodeInts(byyearday)
	ev.ByMonthDay = calmodel.DecodeInts(bymonthday)
	ev.ByDay = calmodel.DecodeByDay(byday)
	ev.ByHour = calmodel.DecodeInts(byhour)
	ev.ByMinute = calmodel.DecodeInts(byminute)
	ev.BySecond = calmodel.DecodeInts(bysecond)
	ev.BySetPos = calmodel.DecodeInts(bysetpos)
	return ev, nil
}

// QueryEvents runs q (filter/order/limit only — Event rows are always
// returned in full) against the event view, scoped to non-deleted rows
// in the todo-free half of schedule_table.
func (e *Engine) QueryEvents(q calquery.Query) ([]calmodel.Event, error) {
	view, err := calview.GetPropertyInfo(calview.URIEvent)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + eventColumns + ` FROM schedule_table WHERE is_todo = 0 AND is_deleted = 0`
	var args []interface{}
	if !q.Filter.IsZero() {
		cond, condArgs, err := calquery.CompileFilter(view, q.Filter)
		if err != nil {
			return nil, err
		}
		query += " AND (" + cond + ")"
		args = append(args, condArgs...)
	}
	if q.OrderBy != 0 {
		order, err := calquery.CompileOrderBy(view, q)
		if err != nil {
			return nil, err
		}
		query += " " + order
	}
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.QueryEvents", err)
	}
	defer rows.Close()

	var out []calmodel.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, calerr.DBFailedf("calstore.QueryEvents", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// DeleteEvent hard/tombstone-deletes a single event per its owning
// book's SyncPolicy, the single-record counterpart to DeleteBook's
// cascade (spec §4.6).
func (e *Engine) DeleteEvent(id int64) error {
	ev, err := e.GetEvent(id)
	if err != nil {
		return err
	}
	b, err := e.GetBook(ev.BookID)
	if err != nil {
		return err
	}
	if err := e.checkBookWritable("calstore.DeleteEvent", b); err != nil {
		return err
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

		switch b.SyncPolicy {
		case calmodel.SyncEveryAndDelete:
			if _, err := tx.Exec(
				`INSERT INTO deleted_table (record_id, kind, calendar_id, changed_ver, created_ver, original_event_id)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				id, int(calmodel.KindEvent), ev.BookID, ver, ev.CreatedVer, ev.OriginalEventID,
			); err != nil {
				return err
			}
			if _, err := tx.Exec(`DELETE FROM schedule_table WHERE id = ?`, id); err != nil {
				return err
			}
		case calmodel.SyncEveryAndRemain:
			if _, err := tx.Exec(`UPDATE schedule_table SET is_deleted = 1, changed_ver = ? WHERE id = ?`, ver, id); err != nil {
				return err
			}
		default:
			if _, err := tx.Exec(`DELETE FROM schedule_table WHERE id = ?`, id); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return calerr.DBFailedf("calstore.DeleteEvent", err)
	}
	e.notify.Notify(calmodel.KindEvent, id, calmodel.ModifiedDelete)
	return nil
}

func (e *Engine) loadChildren(parentID int64, kind calmodel.RecordKind) ([]calmodel.Alarm, []calmodel.Attendee, []calmodel.Extended, error) {
	alarms, err := e.listAlarms(parentID)
	if err != nil {
		return nil, nil, nil, err
	}
	attendees, err := e.listAttendees(parentID)
	if err != nil {
		return nil, nil, nil, err
	}
	extended, err := e.listExtended(parentID, kind)
	if err != nil {
		return nil, nil, nil, err
	}
	return alarms, attendees, extended, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

