// Package calstore is the persistence layer (spec §4.6-§4.9, components
// C6/C8/C9): a single SQLite database opened in WAL mode, the version
// ledger, tombstone writer, sync low-water mark, and timezone interning.
// Books, events and todos go in and out as calmodel structs; a
// calrecord.Record handle validates each write and carries the dirty
// set for UpdateEventDirty/UpdateTodoDirty.
//
// Adapted from pkg/store/store.go: same DSN/pragma/pool-sizing shape,
// generalised from clockmail's agents/events/locks tables to the
// calendar schema in schema.go.
package calstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calview"

	_ "modernc.org/sqlite"
)

// Engine owns the SQLite connection pool and the collaborators that
// operate on top of it.
type Engine struct {
	db       *sql.DB
	version  *VersionCounter
	sync     *SyncWatermark
	log      zerolog.Logger
	perm     PermissionChecker
	notify   NotifySink
	accounts AccountDeleter
}

// Option configures an Engine at Open time.
type Option func(*Engine)

// WithLogger overrides the default zerolog logger (zerolog's global
// log.Logger).
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPermissionChecker installs a collaborator consulted before every
// write (spec §6.1 collaborator contract; SPEC_FULL.md "Supplemented
// features"). Defaults to PerBookWriteLock, which enforces Book.Mode;
// install a custom PermissionChecker to layer account-level ACLs on
// top, or one that always allows to disable the check entirely.
func WithPermissionChecker(p PermissionChecker) Option {
	return func(e *Engine) { e.perm = p }
}

// WithNotifySink installs a collaborator notified after every committed
// write. Defaults to a no-op sink.
func WithNotifySink(n NotifySink) Option {
	return func(e *Engine) { e.notify = n }
}

// WithAccountDeleter installs the optional hook DeleteAccount calls once
// it has deleted every book of the account.
func WithAccountDeleter(a AccountDeleter) Option {
	return func(e *Engine) { e.accounts = a }
}

// Open opens (or creates) the SQLite database at path and runs pending
// migrations. path may be ":memory:" for tests.
func Open(path string, opts ...Option) (*Engine, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	if path == ":memory:" {
		dsn = path + "?_pragma=busy_timeout(60000)&_pragma=foreign_keys(ON)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("calstore: open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("calstore: migrate: %w", err)
	}

	calview.Acquire()

	e := &Engine{
		db:       db,
		version:  newVersionCounter(db),
		sync:     newSyncWatermark(db),
		log:      log.Logger,
		perm:     PerBookWriteLock{},
		notify:   noopSink{},
		accounts: nil,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close closes the database connection and releases the view registry.
func (e *Engine) Close() error {
	calview.Release()
	return e.db.Close()
}

// DB exposes the underlying *sql.DB for callers that need direct read
// access without going through the engine's write path.
func (e *Engine) DB() *sql.DB { return e.db }

// Version exposes the engine's version ledger to callers that need to
// inspect the current high-water mark (e.g. a sync status command).
func (e *Engine) Version() *VersionCounter { return e.version }

// SyncWatermark exposes the tombstone GC watermark tracker.
func (e *Engine) SyncWatermark() *SyncWatermark { return e.sync }

// checkBookWritable consults the installed PermissionChecker for b,
// mapping a denial to calerr.PermissionDenied (spec §6.1's
// have_write_permission, checked at entry to every mutating op).
func (e *Engine) checkBookWritable(op string, b calmodel.Book) error {
	ok, err := e.perm.CanWrite(b)
	if err != nil {
		return calerr.DBFailedf(op, err)
	}
	if !ok {
		return calerr.New(calerr.PermissionDenied, op, fmt.Errorf("book %d is not writable", b.ID))
	}
	return nil
}

// bookIDForSchedule looks up the owning calendar_id for an event/todo
// row, used by the dirty-update path where the caller only has an id.
func (e *Engine) bookIDForSchedule(id int64) (int64, error) {
	var bookID int64
	err := e.db.QueryRow(`SELECT calendar_id FROM schedule_table WHERE id = ?`, id).Scan(&bookID)
	if err == sql.ErrNoRows {
		return 0, calerr.New(calerr.DBRecordNotFound, "calstore.bookIDForSchedule", err)
	}
	if err != nil {
		return 0, calerr.DBFailedf("calstore.bookIDForSchedule", err)
	}
	return bookID, nil
}
