// syncwatermark.go tracks the low-water mark below which tombstones may
// be garbage-collected (spec §4.8: "a tombstone may be purged once every
// sync client has observed it").
//
// Adapted from pkg/frontier/frontier.go's Naiad-style antichain frontier:
// that package tracked a 2-D antichain of (epoch, round) pointstamps
// across many concurrently active agents. calstore has a single
// monotone version axis and any number of sync-cursor holders rather
// than live agents, so the antichain collapses to a plain minimum: the
// watermark is simply the smallest cursor any known client still holds.
package calstore

import "database/sql"

// SyncWatermark is the minimum changed_ver across every registered sync
// cursor. A tombstone with changed_ver < watermark has been observed by
// every client and is safe to hard-delete.
type SyncWatermark struct {
	db *sql.DB
}

func newSyncWatermark(db *sql.DB) *SyncWatermark {
	return &SyncWatermark{db: db}
}

// Advance records that clientID has synced up through ver.
func (w *SyncWatermark) Advance(clientID string, ver int64) error {
	_, err := w.db.Exec(
		`INSERT INTO sync_cursor_table (client_id, since_ver) VALUES (?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET since_ver = excluded.since_ver
		 WHERE excluded.since_ver > sync_cursor_table.since_ver`,
		clientID, ver,
	)
	return err
}

// Low returns the current low-water mark, or 0 if no client has ever
// synced (nothing may be GC'd yet).
func (w *SyncWatermark) Low() (int64, error) {
	var low sql.NullInt64
	err := w.db.QueryRow(`SELECT MIN(since_ver) FROM sync_cursor_table`).Scan(&low)
	if err != nil {
		return 0, err
	}
	if !low.Valid {
		return 0, nil
	}
	return low.Int64, nil
}

// PurgeTombstones deletes every deleted_table row with changed_ver
// strictly below the current low-water mark. Returns the number of
// rows removed.
func (w *SyncWatermark) PurgeTombstones() (int64, error) {
	low, err := w.Low()
	if err != nil {
		return 0, err
	}
	if low == 0 {
		return 0, nil
	}
	res, err := w.db.Exec(`DELETE FROM deleted_table WHERE changed_ver < ?`, low)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
