// Package calerr defines the error taxonomy every calendarcore operation
// surfaces to its caller (spec §7). The engine never swallows an error
// silently; every failure is classified into exactly one Code. calstore
// retries a write a bounded number of times on transient SQLite lock
// errors (calstore/retry.go) before surfacing the failure.
package calerr

import (
	"errors"
	"fmt"
)

// Code classifies the outcome of a failed operation.
type Code int

const (
	// InvalidParameter covers a NULL/zero-value argument, an unknown view
	// URI, a §3.3 validation failure, an operator/filter arity mismatch, a
	// filter view URI mismatch, or a write to a non-writable property.
	InvalidParameter Code = iota + 1
	// NotPermitted covers an unsupported vtable slot, a set on a
	// read-only property, a get on a non-projected property, or a write
	// against a read-only book mode.
	NotPermitted
	// PermissionDenied is returned when the access-control collaborator
	// refuses a write.
	PermissionDenied
	// OutOfMemory covers allocation failure. No calendarcore operation
	// returns it: calrecur's recurrence-expansion bound (maxOccurrences)
	// ends the expansion without an error.
	OutOfMemory
	// NoData covers a list iterator walking off an end, a get-by-id miss
	// on a list that is otherwise valid, or a query returning zero rows
	// where the caller asked for exactly one.
	NoData
	// DBRecordNotFound covers get-by-id for a row that exists but is
	// masked by sync policy (soft-deleted), or never existed.
	DBRecordNotFound
	// DBFailed covers a SQL prepare/step failure not otherwise classified.
	DBFailed
	// FileNoSpace maps SQLITE_FULL.
	FileNoSpace
	// System covers locale/timezone collaborator failure.
	System
	// Canceled is returned when a cooperative cancel token was observed
	// set mid-operation.
	Canceled
)

func (c Code) String() string {
	switch c {
	case InvalidParameter:
		return "invalid-parameter"
	case NotPermitted:
		return "not-permitted"
	case PermissionDenied:
		return "permission-denied"
	case OutOfMemory:
		return "out-of-memory"
	case NoData:
		return "no-data"
	case DBRecordNotFound:
		return "db-record-not-found"
	case DBFailed:
		return "db-failed"
	case FileNoSpace:
		return "file-no-space"
	case System:
		return "system"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every calendarcore operation returns.
// Op names the failing operation (e.g. "event.insert") for log context;
// Err is the underlying cause, if any.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match any *Error target carrying the same Code, e.g.
// errors.Is(err, calerr.New(calerr.InvalidParameter, "", nil)). A bare
// Code is not an error value; use calerr.Is(err, code) for that.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// New builds an *Error for code, tagging it with the failing operation.
func New(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Of reports the Code of err, or 0 if err is nil or not a *Error.
func Of(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Is reports whether err is a calendarcore *Error with the given code.
func Is(err error, code Code) bool {
	return Of(err) == code
}

// Constructor helpers for the most common codes.
func InvalidParameterf(op, format string, args ...interface{}) *Error {
	return New(InvalidParameter, op, fmt.Errorf(format, args...))
}

func NotPermittedf(op, format string, args ...interface{}) *Error {
	return New(NotPermitted, op, fmt.Errorf(format, args...))
}

func DBFailedf(op string, err error) *Error {
	return New(DBFailed, op, err)
}
