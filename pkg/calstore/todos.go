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

const todoColumns = `id, calendar_id, summary, description, event_location, categories, status, priority,
	timezone, busy_status, sensitivity, uid, organizer, organizer_email, meeting_status,
	latitude, longitude, email_id, created_type, created_utime, created_datetime,
	lastmod_type, lastmod_utime, lastmod_datetime, is_deleted,
	dtstart_type, dtstart_utime, dtstart_datetime, due_type, due_utime, due_datetime,
	dtstart_tzid, dtend_tzid, has_alarm, has_attendee, has_extended, system_type,
	sync1, sync2, sync3, sync4, is_allday,
	freq, range_type, until_type, until_utime, until_datetime, count, interval,
	bymonth, byweekno, byyearday, bymonthday, byday, byhour, byminute, bysecond, bysetpos, wkst,
	created_ver, changed_ver`

// CreateTodo inserts a Todo and its children inside one transaction,
// mirroring CreateEvent but writing the due_* columns instead of
// dtend_* and leaving the event-only exception/recurrence-id columns
// at their defaults (spec §4.6, §3.1: Todo and Event share one
// physical row shape, distinguished by is_todo).
func (e *Engine) CreateTodo(td calmodel.Todo) (calmodel.Todo, error) {
	if td.UID == "" {
		td.UID = uuid.NewString()
	}
	if _, err := calrecord.FromTodo(td); err != nil {
		return calmodel.Todo{}, err
	}
	b, err := e.GetBook(td.BookID)
	if err != nil {
		return calmodel.Todo{}, err
	}
	if err := e.checkBookWritable("calstore.CreateTodo", b); err != nil {
		return calmodel.Todo{}, err
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
		td.CreatedVer, td.ChangedVer = ver, ver

		ct, cu, cd := td.CreatedAt.BindTriple()
		lt, lu, ld := td.LastModifiedAt.BindTriple()
		dst, dsu, dsd := td.DTStart.BindTriple()
		dut, duu, dud := td.Due.BindTriple()
		ut, uu, ud := td.Until.BindTriple()

		res, err := tx.Exec(
			`INSERT INTO schedule_table
			 (calendar_id, summary, description, event_location, categories, status, priority,
			  timezone, busy_status, sensitivity, uid, organizer, organizer_email, meeting_status,
			  latitude, longitude, email_id, created_type, created_utime, created_datetime,
			  lastmod_type, lastmod_utime, lastmod_datetime, is_deleted,
			  dtstart_type, dtstart_utime, dtstart_datetime, due_type, due_utime, due_datetime,
			  dtstart_tzid, dtend_tzid, has_alarm, has_attendee, has_extended, system_type,
			  sync1, sync2, sync3, sync4, is_allday,
			  freq, range_type, until_type, until_utime, until_datetime, count, interval,
			  bymonth, byweekno, byyearday, bymonthday, byday, byhour, byminute, bysecond, bysetpos, wkst,
			  original_event_id, is_todo, created_ver, changed_ver)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,-1,1,?,?)`,
			td.BookID, td.Summary, td.Description, td.Location, td.Categories, td.Status, td.Priority,
			td.TimezoneID, td.BusyStatus, td.Sensitivity, td.UID, td.Organizer.Name, td.Organizer.Email, td.MeetingStatus,
			td.Latitude, td.Longitude, td.EmailID, ct, cu, cd,
			lt, lu, ld, boolInt(td.Deleted),
			dst, dsu, dsd, dut, duu, dud,
			td.StartTZID, td.EndTZID, boolInt(td.HasAlarm), boolInt(td.HasAttendee), boolInt(td.HasExtended), td.SystemType,
			td.Sync1, td.Sync2, td.Sync3, td.Sync4, boolInt(td.IsAllDay),
			int(td.Freq), int(td.RangeType), ut, uu, ud, td.Count, td.Interval,
			calmodel.EncodeInts(td.ByMonth), calmodel.EncodeInts(td.ByWeekNo), calmodel.EncodeInts(td.ByYearDay), calmodel.EncodeInts(td.ByMonthDay),
			calmodel.EncodeByDay(td.ByDay), calmodel.EncodeInts(td.ByHour), calmodel.EncodeInts(td.ByMinute), calmodel.EncodeInts(td.BySecond), calmodel.EncodeInts(td.BySetPos), int(td.Wkst),
			ver, ver,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		td.ID = id

		if err := insertChildren(tx, id, td.Alarms, td.Attendees, td.Extended, calmodel.KindTodo); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return calmodel.Todo{}, calerr.DBFailedf("calstore.CreateTodo", err)
	}
	e.notify.Notify(calmodel.KindTodo, td.ID, calmodel.ModifiedUpsert)
	return td, nil
}

// GetTodo reads a todo and its children by id.
func (e *Engine) GetTodo(id int64) (calmodel.Todo, error) {
	row := e.db.QueryRow(`SELECT `+todoColumns+` FROM schedule_table WHERE id = ? AND is_todo = 1`, id)
	td, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return calmodel.Todo{}, calerr.New(calerr.DBRecordNotFound, "calstore.GetTodo", err)
	}
	if err != nil {
		return calmodel.Todo{}, calerr.DBFailedf("calstore.GetTodo", err)
	}
	td.Alarms, td.Attendees, td.Extended, err = e.loadChildren(id, calmodel.KindTodo)
	if err != nil {
		return calmodel.Todo{}, err
	}
	return td, nil
}

func scanTodo(row rowScanner) (calmodel.Todo, error) {
	var td calmodel.Todo
	var deleted, hasAlarm, hasAttendee, hasExtended, isAllDay int
	var freq, rangeType, wkst int
	var ct, lt, dst, due, ut int32
	var cu, lu, dsu, duu, uu int64
	var cd, ld, dsd, dud, ud string
	var bymonth, byweekno, byyearday, bymonthday, byday, byhour, byminute, bysecond, bysetpos string

	err := row.Scan(&td.ID, &td.BookID, &td.Summary, &td.Description, &td.Location, &td.Categories, &td.Status, &td.Priority,
		&td.TimezoneID, &td.BusyStatus, &td.Sensitivity, &td.UID, &td.Organizer.Name, &td.Organizer.Email, &td.MeetingStatus,
		&td.Latitude, &td.Longitude, &td.EmailID, &ct, &cu, &cd,
		&lt, &lu, &ld, &deleted,
		&dst, &dsu, &dsd, &due, &duu, &dud,
		&td.StartTZID, &td.EndTZID, &hasAlarm, &hasAttendee, &hasExtended, &td.SystemType,
		&td.Sync1, &td.Sync2, &td.Sync3, &td.Sync4, &isAllDay,
		&freq, &rangeType, &ut, &uu, &ud, &td.Count, &td.Interval,
		&bymonth, &byweekno, &byyearday, &bymonthday, &byday, &byhour, &byminute, &bysecond, &bysetpos, &wkst,
		&td.CreatedVer, &td.ChangedVer,
	)
	if err != nil {
		return calmodel.Todo{}, err
	}

	td.Deleted, td.HasAlarm, td.HasAttendee, td.HasExtended, td.IsAllDay =
		deleted != 0, hasAlarm != 0, hasAttendee != 0, hasExtended != 0, isAllDay != 0
	td.CreatedAt, _ = calmodel.ColumnCalTime(ct, cu, cd)
	td.LastModifiedAt, _ = calmodel.ColumnCalTime(lt, lu, ld)
	td.DTStart, _ = calmodel.ColumnCalTime(dst, dsu, dsd)
	td.Due, _ = calmodel.ColumnCalTime(due, duu, dud)
	td.Until, _ = calmodel.ColumnCalTime(ut, uu, ud)
	td.Freq = calmodel.Freq(freq)
	td.RangeType = calmodel.RangeType(rangeType)
	td.Wkst = calmodel.Weekday(wkst)
	td.ByMonth = calmodel.DecodeInts(bymonth)
	td.ByWeekNo = calmodel.DecodeInts(byweekno)
	td.ByYearDay = calmodel.DecodeInts(byyearday)
	td.ByMonthDay = calmodel.DecodeInts(bymonthday)
	td.ByDay = calmodel.DecodeByDay(byday)
	td.ByHour = calmodel.DecodeInts(byhour)
	td.ByMinute = calmodel.DecodeInts(byminute)
	td.BySecond = calmodel.DecodeInts(bysecond)
	td.BySetPos = calmodel.DecodeInts(bysetpos)
	return td, nil
}

// QueryTodos runs q against the todo view, scoped to non-deleted rows
// in the todo half of schedule_table.
func (e *Engine) QueryTodos(q calquery.Query) ([]calmodel.Todo, error) {
	view, err := calview.GetPropertyInfo(calview.URITodo)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + todoColumns + ` FROM schedule_table WHERE is_todo = 1 AND is_deleted = 0`
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
		return nil, calerr.DBFailedf("calstore.QueryTodos", err)
	}
	defer rows.Close()

	var out []calmodel.Todo
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, calerr.DBFailedf("calstore.QueryTodos", err)
		}
		out = append(out, td)
	}
	return out, rows.Err()
}

// DeleteTodo hard/soft/tombstone-deletes a todo per its owning book's
// SyncPolicy, mirroring DeleteBook's per-record branch but scoped to a
// single schedule_table row (spec §4.6).
func (e *Engine) DeleteTodo(id int64) error {
	td, err := e.GetTodo(id)
	if err != nil {
		return err
	}
	b, err := e.GetBook(td.BookID)
	if err != nil {
		return err
	}
	if err := e.checkBookWritable("calstore.DeleteTodo", b); err != nil {
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
				 VALUES (?, ?, ?, ?, ?, -1)`,
				id, int(calmodel.KindTodo), td.BookID, ver, td.CreatedVer,
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
		return calerr.DBFailedf("calstore.DeleteTodo", err)
	}
	e.notify.Notify(calmodel.KindTodo, id, calmodel.ModifiedDelete)
	return nil
}
