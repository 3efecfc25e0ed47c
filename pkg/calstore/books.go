package calstore

import (
	"database/sql"
	"fmt"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calrecord"
)

// CreateBook inserts a new Book and returns it with its assigned id
// (spec §4.6, component C6).
func (e *Engine) CreateBook(accountID string, b calmodel.Book) (calmodel.Book, error) {
	b.AccountID = accountID
	if _, err := calrecord.FromBook(b); err != nil {
		return calmodel.Book{}, err
	}
	var id int64
	err := e.retryOnContention(func() error {
		res, err := e.db.Exec(
			`INSERT INTO calendar_table
			 (account_id, store_type, name, description, color, location, visibility,
			  sync_event, mode, sync1, sync2, sync3, sync4, is_deleted)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
			b.AccountID, int(b.StoreType), b.Name, b.Description, b.Color, b.Location, b.Visibility,
			int(b.SyncPolicy), int(b.Mode), b.Sync1, b.Sync2, b.Sync3, b.Sync4,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return calmodel.Book{}, calerr.DBFailedf("calstore.CreateBook", err)
	}
	b.ID = id
	e.notify.Notify(calmodel.KindBook, id, calmodel.ModifiedUpsert)
	return b, nil
}

// GetBook reads a book by id.
func (e *Engine) GetBook(id int64) (calmodel.Book, error) {
	row := e.db.QueryRow(
		`SELECT id, account_id, store_type, name, description, color, location, visibility,
		        sync_event, mode, sync1, sync2, sync3, sync4, is_deleted
		 FROM calendar_table WHERE id = ?`, id,
	)
	return scanBook(row)
}

func scanBook(row *sql.Row) (calmodel.Book, error) {
	var b calmodel.Book
	var storeType, syncPolicy, mode, deleted int
	err := row.Scan(&b.ID, &b.AccountID, &storeType, &b.Name, &b.Description, &b.Color, &b.Location,
		&b.Visibility, &syncPolicy, &mode, &b.Sync1, &b.Sync2, &b.Sync3, &b.Sync4, &deleted)
	if err == sql.ErrNoRows {
		return calmodel.Book{}, calerr.New(calerr.DBRecordNotFound, "calstore.GetBook", err)
	}
	if err != nil {
		return calmodel.Book{}, calerr.DBFailedf("calstore.GetBook", err)
	}
	b.StoreType = calmodel.StoreType(storeType)
	b.SyncPolicy = calmodel.SyncPolicy(syncPolicy)
	b.Mode = calmodel.BookMode(mode)
	b.Deleted = deleted != 0
	return b, nil
}

// ListBooksForAccount returns every non-deleted book owned by
// accountID, ordered by id.
func (e *Engine) ListBooksForAccount(accountID string) ([]calmodel.Book, error) {
	rows, err := e.db.Query(
		`SELECT id, account_id, store_type, name, description, color, location, visibility,
		        sync_event, mode, sync1, sync2, sync3, sync4, is_deleted
		 FROM calendar_table WHERE account_id = ? AND is_deleted = 0 ORDER BY id`, accountID,
	)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.ListBooksForAccount", err)
	}
	defer rows.Close()

	var out []calmodel.Book
	for rows.Next() {
		var b calmodel.Book
		var storeType, syncPolicy, mode, deleted int
		if err := rows.Scan(&b.ID, &b.AccountID, &storeType, &b.Name, &b.Description, &b.Color, &b.Location,
			&b.Visibility, &syncPolicy, &mode, &b.Sync1, &b.Sync2, &b.Sync3, &b.Sync4, &deleted); err != nil {
			return nil, calerr.DBFailedf("calstore.ListBooksForAccount", err)
		}
		b.StoreType = calmodel.StoreType(storeType)
		b.SyncPolicy = calmodel.SyncPolicy(syncPolicy)
		b.Mode = calmodel.BookMode(mode)
		b.Deleted = deleted != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBook persists a full rewrite of a book's mutable fields (spec
// §4.6: books have no dirty-vs-full distinction, only events/todos do).
func (e *Engine) UpdateBook(b calmodel.Book) error {
	current, err := e.GetBook(b.ID)
	if err != nil {
		return err
	}
	if err := e.checkBookWritable("calstore.UpdateBook", current); err != nil {
		return err
	}
	return e.retryOnContention(func() error {
		res, err := e.db.Exec(
			`UPDATE calendar_table SET store_type=?, name=?, description=?, color=?, location=?,
			 visibility=?, sync_event=?, mode=?, sync1=?, sync2=?, sync3=?, sync4=? WHERE id=? AND is_deleted=0`,
			int(b.StoreType), b.Name, b.Description, b.Color, b.Location, b.Visibility,
			int(b.SyncPolicy), int(b.Mode), b.Sync1, b.Sync2, b.Sync3, b.Sync4, b.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return calerr.New(calerr.DBRecordNotFound, "calstore.UpdateBook", fmt.Errorf("book %d", b.ID))
		}
		return nil
	})
}

// DeleteBook soft-deletes a book and cascades per its SyncPolicy (spec
// §4.6):
//   - SyncForMe: children are hard-deleted immediately, no tombstones.
//   - SyncEveryAndRemain: the book is soft-deleted but children remain
//     queryable (orphaned) until a later hard GC pass.
//   - SyncEveryAndDelete: children are tombstoned so sync clients learn
//     of the deletion on their next pull.
func (e *Engine) DeleteBook(id int64) error {
	b, err := e.GetBook(id)
	if err != nil {
		return err
	}
	tx, err := e.db.Begin()
	if err != nil {
		return calerr.DBFailedf("calstore.DeleteBook", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ver, err := e.version.Reserve(tx)
	if err != nil {
		return calerr.DBFailedf("calstore.DeleteBook", err)
	}

	switch b.SyncPolicy {
	case calmodel.SyncForMe:
		if _, err := tx.Exec(`DELETE FROM schedule_table WHERE calendar_id = ?`, id); err != nil {
			return calerr.DBFailedf("calstore.DeleteBook", err)
		}
	case calmodel.SyncEveryAndDelete:
		if err := tombstoneEventsForBook(tx, id, ver); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM schedule_table WHERE calendar_id = ?`, id); err != nil {
			return calerr.DBFailedf("calstore.DeleteBook", err)
		}
	case calmodel.SyncEveryAndRemain:
		// Children remain; only the book itself is marked deleted.
	}

	if _, err := tx.Exec(`UPDATE calendar_table SET is_deleted = 1 WHERE id = ?`, id); err != nil {
		return calerr.DBFailedf("calstore.DeleteBook", err)
	}
	if err := tx.Commit(); err != nil {
		return calerr.DBFailedf("calstore.DeleteBook", err)
	}
	e.notify.Notify(calmodel.KindBook, id, calmodel.ModifiedDelete)
	return nil
}

// DeleteAccount cascades DeleteBook across every book owned by
// accountID, then hands off to the injected AccountDeleter (if any) so
// a caller can cascade the deletion to systems calstore doesn't own
// (auth, billing, external directory) — spec §6.1 collaborator
// contract, SPEC_FULL.md "Supplemented features".
func (e *Engine) DeleteAccount(accountID string) error {
	books, err := e.ListBooksForAccount(accountID)
	if err != nil {
		return err
	}
	for _, b := range books {
		if err := e.DeleteBook(b.ID); err != nil {
			return err
		}
	}
	if e.accounts != nil {
		return e.accounts.DeleteAccount(accountID)
	}
	return nil
}

func tombstoneEventsForBook(tx *sql.Tx, bookID int64, ver int64) error {
	rows, err := tx.Query(`SELECT id, original_event_id, created_ver FROM schedule_table WHERE calendar_id = ?`, bookID)
	if err != nil {
		return calerr.DBFailedf("calstore.tombstoneEventsForBook", err)
	}
	defer rows.Close()
	type row struct{ id, orig, createdVer int64 }
	var toTomb []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.orig, &r.createdVer); err != nil {
			return calerr.DBFailedf("calstore.tombstoneEventsForBook", err)
		}
		toTomb = append(toTomb, r)
	}
	if err := rows.Err(); err != nil {
		return calerr.DBFailedf("calstore.tombstoneEventsForBook", err)
	}
	for _, r := range toTomb {
		if _, err := tx.Exec(
			`INSERT INTO deleted_table (record_id, kind, calendar_id, changed_ver, created_ver, original_event_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.id, int(calmodel.KindEvent), bookID, ver, r.createdVer, r.orig,
		); err != nil {
			return calerr.DBFailedf("calstore.tombstoneEventsForBook", err)
		}
	}
	return nil
}
