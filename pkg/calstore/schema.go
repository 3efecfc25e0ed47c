package calstore

import (
	"database/sql"
	"fmt"
)

// schemaMigrations is applied in order against PRAGMA user_version,
// mirroring the teacher's single-shot `CREATE TABLE IF NOT EXISTS`
// migrate() but split into numbered steps so later additions (e.g. the
// sync_cursor_table this package adds on top of the distilled spec) can
// land without re-running earlier statements (spec §6.2 table list,
// supplemented per SPEC_FULL.md's migration-sequence note).
var schemaMigrations = []string{
	// 100: calendar_table (Book)
	`CREATE TABLE calendar_table (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id    TEXT NOT NULL,
		store_type    INTEGER NOT NULL DEFAULT 0,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		color         TEXT NOT NULL DEFAULT '',
		location      TEXT NOT NULL DEFAULT '',
		visibility    TEXT NOT NULL DEFAULT '',
		sync_event    INTEGER NOT NULL DEFAULT 0,
		mode          INTEGER NOT NULL DEFAULT 0,
		sync1         TEXT NOT NULL DEFAULT '',
		sync2         TEXT NOT NULL DEFAULT '',
		sync3         TEXT NOT NULL DEFAULT '',
		sync4         TEXT NOT NULL DEFAULT '',
		is_deleted    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_calendar_account ON calendar_table(account_id);`,

	// 101: schedule_table (Event + Todo share one physical table,
	// distinguished by the is_todo column), rrule fields
	// embedded directly per spec §3.1.
	`CREATE TABLE schedule_table (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		calendar_id        INTEGER NOT NULL REFERENCES calendar_table(id),
		summary            TEXT NOT NULL DEFAULT '',
		description        TEXT NOT NULL DEFAULT '',
		event_location     TEXT NOT NULL DEFAULT '',
		categories         TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT '',
		priority           INTEGER NOT NULL DEFAULT 0,
		timezone           TEXT NOT NULL DEFAULT '',
		busy_status        TEXT NOT NULL DEFAULT '',
		sensitivity        TEXT NOT NULL DEFAULT '',
		uid                TEXT NOT NULL DEFAULT '',
		organizer          TEXT NOT NULL DEFAULT '',
		organizer_email    TEXT NOT NULL DEFAULT '',
		meeting_status     TEXT NOT NULL DEFAULT '',
		original_event_id  INTEGER NOT NULL DEFAULT -1,
		latitude           REAL NOT NULL DEFAULT 0,
		longitude          REAL NOT NULL DEFAULT 0,
		email_id           TEXT NOT NULL DEFAULT '',
		created_type       INTEGER NOT NULL DEFAULT 0,
		created_utime      INTEGER NOT NULL DEFAULT 0,
		created_datetime   TEXT NOT NULL DEFAULT '',
		lastmod_type       INTEGER NOT NULL DEFAULT 0,
		lastmod_utime      INTEGER NOT NULL DEFAULT 0,
		lastmod_datetime   TEXT NOT NULL DEFAULT '',
		is_deleted         INTEGER NOT NULL DEFAULT 0,
		dtstart_type       INTEGER NOT NULL DEFAULT 0,
		dtstart_utime      INTEGER NOT NULL DEFAULT 0,
		dtstart_datetime   TEXT NOT NULL DEFAULT '',
		dtend_type         INTEGER NOT NULL DEFAULT 0,
		dtend_utime        INTEGER NOT NULL DEFAULT 0,
		dtend_datetime     TEXT NOT NULL DEFAULT '',
		due_type           INTEGER NOT NULL DEFAULT 0,
		due_utime          INTEGER NOT NULL DEFAULT 0,
		due_datetime       TEXT NOT NULL DEFAULT '',
		dtstart_tzid       TEXT NOT NULL DEFAULT '',
		dtend_tzid         TEXT NOT NULL DEFAULT '',
		has_alarm          INTEGER NOT NULL DEFAULT 0,
		has_attendee       INTEGER NOT NULL DEFAULT 0,
		has_exception      INTEGER NOT NULL DEFAULT 0,
		has_extended       INTEGER NOT NULL DEFAULT 0,
		system_type        TEXT NOT NULL DEFAULT '',
		sync1              TEXT NOT NULL DEFAULT '',
		sync2              TEXT NOT NULL DEFAULT '',
		sync3              TEXT NOT NULL DEFAULT '',
		sync4              TEXT NOT NULL DEFAULT '',
		recurrence_id      TEXT NOT NULL DEFAULT '',
		rdate              TEXT NOT NULL DEFAULT '',
		is_allday          INTEGER NOT NULL DEFAULT 0,
		freq               INTEGER NOT NULL DEFAULT 0,
		range_type         INTEGER NOT NULL DEFAULT 0,
		until_type         INTEGER NOT NULL DEFAULT 0,
		until_utime        INTEGER NOT NULL DEFAULT 0,
		until_datetime     TEXT NOT NULL DEFAULT '',
		count              INTEGER NOT NULL DEFAULT 0,
		interval           INTEGER NOT NULL DEFAULT 0,
		bymonth            TEXT NOT NULL DEFAULT '',
		byweekno           TEXT NOT NULL DEFAULT '',
		byyearday          TEXT NOT NULL DEFAULT '',
		bymonthday         TEXT NOT NULL DEFAULT '',
		byday              TEXT NOT NULL DEFAULT '',
		byhour             TEXT NOT NULL DEFAULT '',
		byminute           TEXT NOT NULL DEFAULT '',
		bysecond           TEXT NOT NULL DEFAULT '',
		bysetpos           TEXT NOT NULL DEFAULT '',
		wkst               INTEGER NOT NULL DEFAULT 0,
		is_todo            INTEGER NOT NULL DEFAULT 0,
		created_ver        INTEGER NOT NULL DEFAULT 0,
		changed_ver        INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_schedule_calendar ON schedule_table(calendar_id);
	CREATE INDEX idx_schedule_uid ON schedule_table(uid);
	CREATE INDEX idx_schedule_original ON schedule_table(original_event_id);
	CREATE INDEX idx_schedule_changed_ver ON schedule_table(changed_ver);`,

	// 102: alarm_table, attendee_table, extended_table (children).
	`CREATE TABLE alarm_table (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id   INTEGER NOT NULL REFERENCES schedule_table(id) ON DELETE CASCADE,
		tick        INTEGER NOT NULL DEFAULT 0,
		unit        INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		summary     TEXT NOT NULL DEFAULT '',
		action      TEXT NOT NULL DEFAULT '',
		attach      TEXT NOT NULL DEFAULT '',
		alarm_type  INTEGER NOT NULL DEFAULT 0,
		alarm_utime INTEGER NOT NULL DEFAULT 0,
		alarm_datetime TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_alarm_parent ON alarm_table(parent_id);

	CREATE TABLE attendee_table (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id      INTEGER NOT NULL REFERENCES schedule_table(id) ON DELETE CASCADE,
		number         INTEGER NOT NULL DEFAULT 0,
		cutype         TEXT NOT NULL DEFAULT '',
		contact_index  INTEGER NOT NULL DEFAULT 0,
		uid            TEXT NOT NULL DEFAULT '',
		attendee_group TEXT NOT NULL DEFAULT '',
		email          TEXT NOT NULL DEFAULT '',
		role           TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT '',
		rsvp           INTEGER NOT NULL DEFAULT 0,
		delegator_uri  TEXT NOT NULL DEFAULT '',
		delegatee_uri  TEXT NOT NULL DEFAULT '',
		attendee_name  TEXT NOT NULL DEFAULT '',
		member         TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_attendee_parent ON attendee_table(parent_id);

	CREATE TABLE extended_table (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id   INTEGER NOT NULL,
		record_kind INTEGER NOT NULL,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_extended_record ON extended_table(record_id, record_kind);`,

	// 103: timezone_table, normal_instance_table, allday_instance_table.
	`CREATE TABLE timezone_table (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		calendar_id     INTEGER NOT NULL REFERENCES calendar_table(id),
		tzid            TEXT NOT NULL,
		offset_from_gmt INTEGER NOT NULL DEFAULT 0,
		standard_name   TEXT NOT NULL DEFAULT '',
		standard_month  INTEGER NOT NULL DEFAULT 0,
		standard_nth    INTEGER NOT NULL DEFAULT 0,
		standard_dow    INTEGER NOT NULL DEFAULT 0,
		standard_hour   INTEGER NOT NULL DEFAULT 0,
		standard_bias   INTEGER NOT NULL DEFAULT 0,
		daylight_name   TEXT NOT NULL DEFAULT '',
		daylight_month  INTEGER NOT NULL DEFAULT 0,
		daylight_nth    INTEGER NOT NULL DEFAULT 0,
		daylight_dow    INTEGER NOT NULL DEFAULT 0,
		daylight_hour   INTEGER NOT NULL DEFAULT 0,
		daylight_bias   INTEGER NOT NULL DEFAULT 0,
		UNIQUE(calendar_id, tzid)
	);

	CREATE TABLE normal_instance_table (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id       INTEGER NOT NULL REFERENCES schedule_table(id) ON DELETE CASCADE,
		instance_start INTEGER NOT NULL,
		instance_end   INTEGER NOT NULL
	);
	CREATE INDEX idx_normal_instance_event ON normal_instance_table(event_id);
	CREATE INDEX idx_normal_instance_range ON normal_instance_table(instance_start, instance_end);

	CREATE TABLE allday_instance_table (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id       INTEGER NOT NULL REFERENCES schedule_table(id) ON DELETE CASCADE,
		instance_start TEXT NOT NULL,
		instance_end   TEXT NOT NULL
	);
	CREATE INDEX idx_allday_instance_event ON allday_instance_table(event_id);
	CREATE INDEX idx_allday_instance_range ON allday_instance_table(instance_start, instance_end);`,

	// 104: deleted_table (tombstones), version_table (C8 ledger).
	`CREATE TABLE deleted_table (
		record_id         INTEGER NOT NULL,
		kind              INTEGER NOT NULL,
		calendar_id       INTEGER NOT NULL,
		changed_ver       INTEGER NOT NULL,
		created_ver       INTEGER NOT NULL,
		original_event_id INTEGER NOT NULL DEFAULT -1,
		PRIMARY KEY (record_id, kind)
	);
	CREATE INDEX idx_deleted_changed_ver ON deleted_table(changed_ver);

	CREATE TABLE version_table (
		id    INTEGER PRIMARY KEY,
		value INTEGER NOT NULL
	);
	INSERT INTO version_table (id, value) VALUES (1, 0);`,

	// 105: sync_cursor_table — supplements the distilled spec's sync feed
	// with a per-client low-water mark (SPEC_FULL.md "Supplemented
	// features"), backing SyncWatermark/tombstone GC.
	`CREATE TABLE sync_cursor_table (
		client_id TEXT PRIMARY KEY,
		since_ver INTEGER NOT NULL DEFAULT 0
	);`,
}

// migrate applies every schemaMigrations step not yet reflected in
// PRAGMA user_version, mirroring the teacher's migrate() but stepped
// (spec §6.2 table list; step numbering documented in SPEC_FULL.md).
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	for i := version; i < len(schemaMigrations); i++ {
		if _, err := db.Exec(schemaMigrations[i]); err != nil {
			return err
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return err
		}
	}
	return nil
}
