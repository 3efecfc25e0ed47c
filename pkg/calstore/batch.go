package calstore

import (
	"github.com/jmoiron/sqlx"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// GetEventsByIDs batch-fetches events by id, used by sync pull handlers
// that resolve a page of changed_ver rows back to full records in one
// round trip instead of one GetEvent per row. sqlx.In expands the slice
// bind into the right number of placeholders for the "?" driver used by
// modernc.org/sqlite.
func (e *Engine) GetEventsByIDs(ids []int64) ([]calmodel.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+eventColumns+` FROM schedule_table WHERE id IN (?) AND is_todo = 0`, ids)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.GetEventsByIDs", err)
	}
	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.GetEventsByIDs", err)
	}
	defer rows.Close()

	var out []calmodel.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, calerr.DBFailedf("calstore.GetEventsByIDs", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GetTodosByIDs is GetEventsByIDs' todo counterpart.
func (e *Engine) GetTodosByIDs(ids []int64) ([]calmodel.Todo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+todoColumns+` FROM schedule_table WHERE id IN (?) AND is_todo = 1`, ids)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.GetTodosByIDs", err)
	}
	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.GetTodosByIDs", err)
	}
	defer rows.Close()

	var out []calmodel.Todo
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, calerr.DBFailedf("calstore.GetTodosByIDs", err)
		}
		out = append(out, td)
	}
	return out, rows.Err()
}
