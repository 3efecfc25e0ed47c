// version.go implements the monotone version ledger (spec §4.8,
// component C8): a single counter shared by every book, advanced once
// per write and stamped onto the touched row's changed_ver (and
// created_ver on first insert).
//
// Adapted from pkg/clock/clock.go's Lamport clock: Tick -> Reserve, but
// the counter now lives in the database (every process sees the same
// sequence) rather than in an in-memory struct, and the Receive/IR2
// max-merge rule is dropped — there is only one writer of record per
// database file, so there is nothing to merge against.
package calstore

import "database/sql"

// VersionCounter hands out a strictly increasing sequence of version
// numbers backed by the version_table row (id=1, value=<last issued>).
type VersionCounter struct {
	db *sql.DB
}

func newVersionCounter(db *sql.DB) *VersionCounter {
	return &VersionCounter{db: db}
}

// Reserve atomically advances the counter and returns the new value
// (spec §4.8: "every insert or update that changes row contents stamps
// changed_ver with a freshly reserved version"). Must be called inside
// the same transaction as the row write it stamps, so a crash between
// the two never leaves a gap visible to a sync client.
func (v *VersionCounter) Reserve(tx *sql.Tx) (int64, error) {
	var next int64
	err := tx.QueryRow(`UPDATE version_table SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&next)
	return next, err
}

// Current returns the last issued version without advancing it.
func (v *VersionCounter) Current() (int64, error) {
	var cur int64
	err := v.db.QueryRow(`SELECT value FROM version_table WHERE id = 1`).Scan(&cur)
	return cur, err
}
