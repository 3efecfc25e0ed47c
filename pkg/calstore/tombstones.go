package calstore

import (
	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// ChangeRecord is one row of a sync client's incremental pull: either a
// live upsert (read the current row with GetEvent/GetTodo/GetBook) or a
// tombstone (the row is gone, only its id/kind survive).
type ChangeRecord struct {
	Kind       calmodel.RecordKind
	RecordID   int64
	ChangedVer int64
	Status     calmodel.ModifiedStatus
}

// PullChanges returns every event/todo touched since sinceVer,
// combining deleted_table tombstones with the live changed_ver column
// on schedule_table (spec §4.8's "changed" feed; see SyncWatermark for
// the companion low-water-mark/GC half). Book changes are not reported:
// calendar_table carries no changed_ver. The caller
// advances its cursor with SyncWatermark().Advance(clientID, hwm) once
// it has durably applied the returned batch.
func (e *Engine) PullChanges(sinceVer int64) ([]ChangeRecord, int64, error) {
	var out []ChangeRecord
	hwm := sinceVer

	tombRows, err := e.db.Query(
		`SELECT record_id, kind, changed_ver FROM deleted_table WHERE changed_ver > ? ORDER BY changed_ver`, sinceVer,
	)
	if err != nil {
		return nil, 0, calerr.DBFailedf("calstore.PullChanges", err)
	}
	for tombRows.Next() {
		var c ChangeRecord
		var kind int
		if err := tombRows.Scan(&c.RecordID, &kind, &c.ChangedVer); err != nil {
			tombRows.Close()
			return nil, 0, calerr.DBFailedf("calstore.PullChanges", err)
		}
		c.Kind = calmodel.RecordKind(kind)
		c.Status = calmodel.ModifiedDelete
		if c.ChangedVer > hwm {
			hwm = c.ChangedVer
		}
		out = append(out, c)
	}
	if err := tombRows.Err(); err != nil {
		tombRows.Close()
		return nil, 0, calerr.DBFailedf("calstore.PullChanges", err)
	}
	tombRows.Close()

	scheduleRows, err := e.db.Query(
		`SELECT id, is_todo, changed_ver, is_deleted FROM schedule_table WHERE changed_ver > ? ORDER BY changed_ver`, sinceVer,
	)
	if err != nil {
		return nil, 0, calerr.DBFailedf("calstore.PullChanges", err)
	}
	for scheduleRows.Next() {
		var id, changedVer int64
		var isTodo, isDeleted int
		if err := scheduleRows.Scan(&id, &isTodo, &changedVer, &isDeleted); err != nil {
			scheduleRows.Close()
			return nil, 0, calerr.DBFailedf("calstore.PullChanges", err)
		}
		kind := calmodel.KindEvent
		if isTodo != 0 {
			kind = calmodel.KindTodo
		}
		status := calmodel.ModifiedUpsert
		if isDeleted != 0 {
			status = calmodel.ModifiedDelete
		}
		if changedVer > hwm {
			hwm = changedVer
		}
		out = append(out, ChangeRecord{Kind: kind, RecordID: id, ChangedVer: changedVer, Status: status})
	}
	if err := scheduleRows.Err(); err != nil {
		scheduleRows.Close()
		return nil, 0, calerr.DBFailedf("calstore.PullChanges", err)
	}
	scheduleRows.Close()

	return out, hwm, nil
}

// SearchResult is one hit from SearchAll, projecting just enough to
// resolve the full record with GetEvent/GetTodo (spec §4.5's
// cross-kind query surface, supplemented per SPEC_FULL.md: the
// distilled spec queries one view at a time, but a complete engine
// also needs a single text search across both schedule kinds).
type SearchResult struct {
	Kind     calmodel.RecordKind
	RecordID int64
	Summary  string
}

// SearchAll runs a substring search over event/todo summaries and
// descriptions within one book, returning both kinds in changed_ver
// order.
func (e *Engine) SearchAll(bookID int64, needle string) ([]SearchResult, error) {
	rows, err := e.db.Query(
		`SELECT id, is_todo, summary FROM schedule_table
		 WHERE calendar_id = ? AND is_deleted = 0 AND (summary LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')
		 ORDER BY changed_ver`,
		bookID, "%"+needle+"%", "%"+needle+"%",
	)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.SearchAll", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var isTodo int
		if err := rows.Scan(&r.RecordID, &isTodo, &r.Summary); err != nil {
			return nil, calerr.DBFailedf("calstore.SearchAll", err)
		}
		r.Kind = calmodel.KindEvent
		if isTodo != 0 {
			r.Kind = calmodel.KindTodo
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
