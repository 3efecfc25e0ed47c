// retry.go provides automatic retry logic for transient SQLite errors.
//
// Every mutating op reserves a version from version_table (C8's single
// monotone counter, shared by every book and every device syncing
// against this database file) inside the same transaction as its row
// write — see version.go. That single-row UPDATE is the one lock every
// concurrent writer queues behind, so under a handful of devices
// pushing changes to the same account at once, SQLITE_BUSY/LOCKED on
// that row is routine rather than exceptional. The busy_timeout pragma
// handles plain SQLITE_BUSY at the connection level, but IOERR_SHORT_READ
// and the cases busy_timeout doesn't catch still need an
// application-level retry.
package calstore

import (
	"math/rand"
	"strings"
	"time"
)

// retryConfig controls retry behavior for transient SQLite errors.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// defaultRetryConfig is used by retryOnContention, which wraps the
// engine's create, update and per-record delete writes (DeleteBook,
// ReplaceInstances and the SyncWatermark writes run once). Contention
// is on a single counter row rather than per-mailbox state, so each
// individual attempt clears fast once the holder commits: the base
// delay is short and attempts are more numerous than a coarser-grained
// lock would warrant, so a burst of same-second writes from several
// syncing devices resolves within a bounded handful of retries instead
// of a few long waits.
var defaultRetryConfig = retryConfig{
	maxRetries: 6,
	baseDelay:  10 * time.Millisecond,
	maxDelay:   200 * time.Millisecond,
}

// isTransientSQLiteError returns true if err is a transient SQLite error
// that can be resolved by retrying:
//   - SQLITE_BUSY (5) — another connection holds a lock
//   - SQLITE_LOCKED (6) — table-level lock conflict
//   - SQLITE_IOERR_SHORT_READ (522) — WAL contention read failure
func isTransientSQLiteError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"IOERR_SHORT_READ",
		"database is locked",
		"database table is locked",
		"(5)",
		"(6)",
		"(522)",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// retryOp executes fn with exponential backoff + jitter for transient
// errors. If fn succeeds or returns a non-transient error, it returns
// immediately.
func retryOp(cfg retryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransientSQLiteError(lastErr) {
			return lastErr
		}
		if attempt < cfg.maxRetries {
			time.Sleep(backoffDelay(cfg, attempt))
		}
	}
	return lastErr
}

// backoffDelay computes the delay for a given retry attempt using
// exponential backoff with jitter: baseDelay * 2^attempt + random([0,
// baseDelay)).
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(cfg.baseDelay)))
	return delay + jitter
}

func (e *Engine) retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}
