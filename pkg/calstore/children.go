package calstore

import (
	"database/sql"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// insertChildren writes an event/todo's alarms, attendees and extended
// properties inside the parent's transaction (spec §3.1, §4.6). Called
// by CreateEvent/CreateTodo after the parent row has its id.
func insertChildren(tx *sql.Tx, parentID int64, alarms []calmodel.Alarm, attendees []calmodel.Attendee, extended []calmodel.Extended, kind calmodel.RecordKind) error {
	for _, a := range alarms {
		at, au, ad := a.AlarmTime.BindTriple()
		if _, err := tx.Exec(
			`INSERT INTO alarm_table (parent_id, tick, unit, description, summary, action, attach, alarm_type, alarm_utime, alarm_datetime)
			 VALUES (?,?,?,?,?,?,?,?,?,?)`,
			parentID, a.Tick, int(a.Unit), a.Description, a.Summary, a.Action, a.Attach, at, au, ad,
		); err != nil {
			return calerr.DBFailedf("calstore.insertChildren", err)
		}
	}
	for _, a := range attendees {
		if _, err := tx.Exec(
			`INSERT INTO attendee_table (parent_id, number, cutype, contact_index, uid, attendee_group, email, role, status, rsvp, delegator_uri, delegatee_uri, attendee_name, member)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			parentID, a.Number, a.CUType, a.ContactIndex, a.UID, a.Group, a.Email, a.Role, a.Status, boolInt(a.RSVP), a.DelegatorURI, a.DelegateeURI, a.Name, a.Member,
		); err != nil {
			return calerr.DBFailedf("calstore.insertChildren", err)
		}
	}
	for _, x := range extended {
		if _, err := tx.Exec(
			`INSERT INTO extended_table (record_id, record_kind, key, value) VALUES (?,?,?,?)`,
			parentID, int(kind), x.Key, x.Value,
		); err != nil {
			return calerr.DBFailedf("calstore.insertChildren", err)
		}
	}
	return nil
}

// deleteChildren removes every alarm/attendee/extended row owned by
// parentID, used by dirty-vs-full update and by hard deletes that don't
// rely on ON DELETE CASCADE (e.g. rewriting children on a full update).
func deleteChildren(tx *sql.Tx, parentID int64, kind calmodel.RecordKind) error {
	if _, err := tx.Exec(`DELETE FROM alarm_table WHERE parent_id = ?`, parentID); err != nil {
		return calerr.DBFailedf("calstore.deleteChildren", err)
	}
	if _, err := tx.Exec(`DELETE FROM attendee_table WHERE parent_id = ?`, parentID); err != nil {
		return calerr.DBFailedf("calstore.deleteChildren", err)
	}
	if _, err := tx.Exec(`DELETE FROM extended_table WHERE record_id = ? AND record_kind = ?`, parentID, int(kind)); err != nil {
		return calerr.DBFailedf("calstore.deleteChildren", err)
	}
	return nil
}

func (e *Engine) listAlarms(parentID int64) ([]calmodel.Alarm, error) {
	rows, err := e.db.Query(
		`SELECT id, parent_id, tick, unit, description, summary, action, attach, alarm_type, alarm_utime, alarm_datetime
		 FROM alarm_table WHERE parent_id = ? ORDER BY id`, parentID,
	)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.listAlarms", err)
	}
	defer rows.Close()

	var out []calmodel.Alarm
	for rows.Next() {
		var a calmodel.Alarm
		var unit int
		var at int32
		var au int64
		var ad string
		if err := rows.Scan(&a.ID, &a.ParentID, &a.Tick, &unit, &a.Description, &a.Summary, &a.Action, &a.Attach, &at, &au, &ad); err != nil {
			return nil, calerr.DBFailedf("calstore.listAlarms", err)
		}
		a.Unit = calmodel.AlarmUnit(unit)
		a.AlarmTime, _ = calmodel.ColumnCalTime(at, au, ad)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (e *Engine) listAttendees(parentID int64) ([]calmodel.Attendee, error) {
	rows, err := e.db.Query(
		`SELECT id, parent_id, number, cutype, contact_index, uid, attendee_group, email, role, status, rsvp, delegator_uri, delegatee_uri, attendee_name, member
		 FROM attendee_table WHERE parent_id = ? ORDER BY id`, parentID,
	)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.listAttendees", err)
	}
	defer rows.Close()

	var out []calmodel.Attendee
	for rows.Next() {
		var a calmodel.Attendee
		var rsvp int
		if err := rows.Scan(&a.ID, &a.ParentID, &a.Number, &a.CUType, &a.ContactIndex, &a.UID, &a.Group, &a.Email, &a.Role, &a.Status, &rsvp, &a.DelegatorURI, &a.DelegateeURI, &a.Name, &a.Member); err != nil {
			return nil, calerr.DBFailedf("calstore.listAttendees", err)
		}
		a.RSVP = rsvp != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func (e *Engine) listExtended(parentID int64, kind calmodel.RecordKind) ([]calmodel.Extended, error) {
	rows, err := e.db.Query(
		`SELECT id, record_id, record_kind, key, value FROM extended_table WHERE record_id = ? AND record_kind = ? ORDER BY id`,
		parentID, int(kind),
	)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.listExtended", err)
	}
	defer rows.Close()

	var out []calmodel.Extended
	for rows.Next() {
		var x calmodel.Extended
		var k int
		if err := rows.Scan(&x.ID, &x.RecordID, &k, &x.Key, &x.Value); err != nil {
			return nil, calerr.DBFailedf("calstore.listExtended", err)
		}
		x.RecordKind = calmodel.RecordKind(k)
		out = append(out, x)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows, letting
// scanEvent serve QueryEvents' Rows loop and GetEvent's single-row read
// with one implementation.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
