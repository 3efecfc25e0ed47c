package calstore

import "github.com/calendarcore/calendarcore/pkg/calmodel"

// PermissionChecker gates every write against a book's own write
// permission (spec §6.1's `have_write_permission(book_id) -> bool`,
// checked at entry to every mutating op; denial maps to
// calerr.PermissionDenied).
type PermissionChecker interface {
	// CanWrite reports whether book currently accepts writes.
	CanWrite(book calmodel.Book) (bool, error)
}

type allowAll struct{}

func (allowAll) CanWrite(calmodel.Book) (bool, error) { return true, nil }

// PerBookWriteLock is the default PermissionChecker installed by Open:
// it denies writes to a book in ModeReadOnly and
// allows everything else (spec.md:210's "write on read-only book
// mode" not-permitted case, enforced as PermissionDenied at the
// engine's collaborator boundary rather than inline per op).
type PerBookWriteLock struct{}

func (PerBookWriteLock) CanWrite(b calmodel.Book) (bool, error) {
	return b.Mode != calmodel.ModeReadOnly, nil
}

// NotifySink is told about every committed write, keyed by the
// record's kind and id, so that a caller can fan out change
// notifications (spec §4.8's "changed" feed observed from the write
// side rather than polled).
type NotifySink interface {
	Notify(kind calmodel.RecordKind, id int64, status calmodel.ModifiedStatus)
}

type noopSink struct{}

func (noopSink) Notify(calmodel.RecordKind, int64, calmodel.ModifiedStatus) {}

// AccountDeleter is the optional hook Engine.DeleteAccount calls after it
// has run DeleteBook on every book owned by account_id, so the deletion
// can reach systems calstore does not own.
type AccountDeleter interface {
	DeleteAccount(accountID string) error
}
