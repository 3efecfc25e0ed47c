package calstore

import (
	"database/sql"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func instanceTableName(t calmodel.InstanceTable) string {
	if t == calmodel.InstanceAllday {
		return "allday_instance_table"
	}
	return "normal_instance_table"
}

// ReplaceInstances deletes every materialized instance row for
// (parentID, table) and inserts starts/ends in one transaction, the
// persistence half of calrecur's delete-then-republish recurrence
// expansion (spec §4.7.1: "RRULE edits always discard and rematerialize
// the full instance set rather than diffing it").
func (e *Engine) ReplaceInstances(parentID int64, table calmodel.InstanceTable, instances []calmodel.Instance) error {
	name := instanceTableName(table)
	tx, err := e.db.Begin()
	if err != nil {
		return calerr.DBFailedf("calstore.ReplaceInstances", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM `+name+` WHERE event_id = ?`, parentID); err != nil {
		return calerr.DBFailedf("calstore.ReplaceInstances", err)
	}

	if table == calmodel.InstanceAllday {
		for _, in := range instances {
			_, _, startDatetime := in.Start.BindTriple()
			_, _, endDatetime := in.End.BindTriple()
			if _, err := tx.Exec(
				`INSERT INTO allday_instance_table (event_id, instance_start, instance_end) VALUES (?,?,?)`,
				parentID, startDatetime, endDatetime,
			); err != nil {
				return calerr.DBFailedf("calstore.ReplaceInstances", err)
			}
		}
	} else {
		for _, in := range instances {
			if _, err := tx.Exec(
				`INSERT INTO normal_instance_table (event_id, instance_start, instance_end) VALUES (?,?,?)`,
				parentID, in.Start.Utime, in.End.Utime,
			); err != nil {
				return calerr.DBFailedf("calstore.ReplaceInstances", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return calerr.DBFailedf("calstore.ReplaceInstances", err)
	}
	return nil
}

// ListInstances returns every materialized instance for parentID within
// [rangeStart, rangeEnd] (spec §4.7.1's expansion window).
func (e *Engine) ListInstances(parentID int64, table calmodel.InstanceTable, rangeStart, rangeEnd calmodel.CalTime) ([]calmodel.Instance, error) {
	name := instanceTableName(table)

	var rows *sql.Rows
	var err error
	if table == calmodel.InstanceAllday {
		_, _, startDatetime := rangeStart.BindTriple()
		_, _, endDatetime := rangeEnd.BindTriple()
		rows, err = e.db.Query(
			`SELECT id, event_id, instance_start, instance_end FROM `+name+`
			 WHERE event_id = ? AND instance_end >= ? AND instance_start <= ? ORDER BY instance_start`,
			parentID, startDatetime, endDatetime,
		)
	} else {
		rows, err = e.db.Query(
			`SELECT id, event_id, instance_start, instance_end FROM `+name+`
			 WHERE event_id = ? AND instance_end >= ? AND instance_start <= ? ORDER BY instance_start`,
			parentID, rangeStart.Utime, rangeEnd.Utime,
		)
	}
	if err != nil {
		return nil, calerr.DBFailedf("calstore.ListInstances", err)
	}
	defer rows.Close()

	var out []calmodel.Instance
	for rows.Next() {
		var in calmodel.Instance
		if table == calmodel.InstanceAllday {
			var start, end string
			if err := rows.Scan(&in.ID, &in.ParentID, &start, &end); err != nil {
				return nil, calerr.DBFailedf("calstore.ListInstances", err)
			}
			in.Start, _ = calmodel.ParseLocal(start)
			in.End, _ = calmodel.ParseLocal(end)
		} else {
			var start, end int64
			if err := rows.Scan(&in.ID, &in.ParentID, &start, &end); err != nil {
				return nil, calerr.DBFailedf("calstore.ListInstances", err)
			}
			in.Start = calmodel.NewUtime(start)
			in.End = calmodel.NewUtime(end)
		}
		in.Table = table
		out = append(out, in)
	}
	return out, rows.Err()
}
