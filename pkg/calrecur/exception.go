package calrecur

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// rangeMode is the RANGE modifier parsed off an exception's
// recurrence_id string (spec §4.7.2).
type rangeMode int

const (
	rangeNone rangeMode = iota
	rangeThisAndFuture
	rangeThisAndPrior
)

// parseRecurrenceID splits "20231116T220000Z" or
// "20231116T220000Z;RANGE=THISANDFUTURE" into its wall-clock time and
// RANGE mode. An unrecognized RANGE value is treated as no RANGE at all,
// matching the no-RANGE branch of §4.7.2.
func parseRecurrenceID(s string) (time.Time, rangeMode, error) {
	parts := strings.SplitN(s, ";", 2)
	t, err := time.Parse("20060102T150405Z", parts[0])
	if err != nil {
		return time.Time{}, rangeNone, fmt.Errorf("calrecur: malformed recurrence-id %q: %w", s, err)
	}
	mode := rangeNone
	if len(parts) == 2 {
		switch strings.TrimSpace(parts[1]) {
		case "RANGE=THISANDFUTURE":
			mode = rangeThisAndFuture
		case "RANGE=THISANDPRIOR":
			mode = rangeThisAndPrior
		}
	}
	return t, mode, nil
}

// ResolveException implements §4.7.2: given a parent series and an
// exception event carrying a non-empty RecurrenceID, it returns the
// updated parent and exception ready for the caller to persist via
// Engine.UpdateEventFull/Engine.CreateEvent. It does not touch the
// store itself, so the caller controls transaction boundaries and can
// re-publish instances (PublishEvent) for both rows afterward.
func (r *Reconciler) ResolveException(ctx context.Context, parent, exception calmodel.Event) (calmodel.Event, calmodel.Event, error) {
	if exception.RecurrenceID == "" {
		return parent, exception, calerr.InvalidParameterf("calrecur.ResolveException", "exception has no recurrence_id")
	}
	recTime, mode, err := parseRecurrenceID(exception.RecurrenceID)
	if err != nil {
		return parent, exception, calerr.New(calerr.InvalidParameter, "calrecur.ResolveException", err)
	}

	switch mode {
	case rangeThisAndFuture:
		return r.resolveThisAndFuture(ctx, parent, exception, recTime)
	case rangeThisAndPrior:
		return r.resolveThisAndPrior(parent, exception, recTime)
	default:
		return r.resolveNoRange(parent, exception, recTime)
	}
}

// resolveThisAndFuture shifts the parent's UNTIL to just before
// recTime, resolving its effective last occurrence first if it was
// COUNT-bounded, then hands that tail to the exception as its own range
// and severs it into an independent series.
func (r *Reconciler) resolveThisAndFuture(ctx context.Context, parent, exception calmodel.Event, recTime time.Time) (calmodel.Event, calmodel.Event, error) {
	var tail time.Time
	var haveTail bool
	var err error

	switch parent.RangeType {
	case calmodel.RangeCount:
		tail, haveTail, err = r.lastOccurrence(parent)
		if err != nil {
			return parent, exception, err
		}
	case calmodel.RangeUntil:
		tail, haveTail = calTimeToTime(parent.Until), true
	}

	boundary := recTime.Add(-time.Second)
	parent.RangeType = calmodel.RangeUntil
	parent.Until = timeToCalTime(parent.DTStart.Kind, boundary)
	parent.Count = 0

	exception.UID = uuid.NewString()
	exception.OriginalEventID = -1
	exception.RecurrenceID = ""
	if exception.RangeType == calmodel.RangeNone && haveTail {
		exception.RangeType = calmodel.RangeUntil
		exception.Until = timeToCalTime(exception.DTStart.Kind, tail)
	}
	return parent, exception, nil
}

// resolveThisAndPrior is the mirror of resolveThisAndFuture: the
// exception becomes the head (covering everything up to and including
// recTime) and the parent's own DTSTART moves to just after it.
func (r *Reconciler) resolveThisAndPrior(parent, exception calmodel.Event, recTime time.Time) (calmodel.Event, calmodel.Event, error) {
	if exception.DTStart.IsZero() {
		exception.DTStart = parent.DTStart
	}
	if exception.RangeType == calmodel.RangeNone {
		exception.RangeType = calmodel.RangeUntil
		exception.Until = timeToCalTime(exception.DTStart.Kind, recTime)
	}
	exception.UID = uuid.NewString()
	exception.OriginalEventID = -1
	exception.RecurrenceID = ""

	parent.DTStart = timeToCalTime(parent.DTStart.Kind, recTime.Add(time.Second))
	return parent, exception, nil
}

// resolveNoRange appends the recurrence-id to the parent's EXDATE and
// binds the exception to the parent by id. It does not touch the
// parent's instance rows; InsertException republishes them with
// PublishEvent, which skips EXDATE entries.
func (r *Reconciler) resolveNoRange(parent, exception calmodel.Event, recTime time.Time) (calmodel.Event, calmodel.Event, error) {
	wall := icsWallClock(recTime)
	parent.ExDate = append(parent.ExDate, wall)
	parent.HasException = true
	exception.OriginalEventID = parent.ID
	exception.RecurrenceID = wall
	return parent, exception, nil
}

// InsertException is the entry point a caller actually reaches for
// (spec §4.7.2's worked scenarios §8.3.3/§8.3.4): given a new exception
// event carrying UID + RecurrenceID, it looks up the parent series by
// UID within the exception's own book, resolves the RECURRENCE-ID/RANGE
// algebra via ResolveException, persists the updated parent and the
// newly-created exception, and republishes instance rows for both.
// Engine.UpdateEventFull and Engine.CreateEvent each commit their own
// transaction (the Reconciler never opens one of its own) and the parent
// is written first, so a failure or crash after that write leaves the
// parent's EXDATE/UNTIL/DTSTART updated without the exception row.
// Calling InsertException again is not idempotent: a no-RANGE exception
// appends its recurrence-id to EXDATE a second time, and a RANGE
// exception is resolved against the already-modified parent.
func (r *Reconciler) InsertException(ctx context.Context, exception calmodel.Event) (calmodel.Event, calmodel.Event, error) {
	if exception.RecurrenceID == "" {
		return calmodel.Event{}, calmodel.Event{}, calerr.InvalidParameterf("calrecur.InsertException", "exception has no recurrence_id")
	}
	parent, err := r.engine.GetEventByUID(exception.BookID, exception.UID)
	if err != nil {
		return calmodel.Event{}, calmodel.Event{}, err
	}
	if exception.BookID == 0 {
		exception.BookID = parent.BookID
	}

	newParent, newExc, err := r.ResolveException(ctx, parent, exception)
	if err != nil {
		return calmodel.Event{}, calmodel.Event{}, err
	}

	if err := r.engine.UpdateEventFull(newParent); err != nil {
		return calmodel.Event{}, calmodel.Event{}, err
	}
	created, err := r.engine.CreateEvent(newExc)
	if err != nil {
		return calmodel.Event{}, calmodel.Event{}, err
	}

	if err := r.PublishEvent(ctx, newParent); err != nil {
		return calmodel.Event{}, calmodel.Event{}, err
	}
	if err := r.PublishEvent(ctx, created); err != nil {
		return calmodel.Event{}, calmodel.Event{}, err
	}
	return newParent, created, nil
}

// ReconcileNewParent handles the case of §4.7.2's closing paragraph: a
// parent inserted after its exceptions already exist (matched by UID).
// Each pre-existing exception is resolved against the new parent in
// turn and parent.HasException is set.
func (r *Reconciler) ReconcileNewParent(ctx context.Context, parent calmodel.Event, exceptions []calmodel.Event) (calmodel.Event, []calmodel.Event, error) {
	parent.HasException = len(exceptions) > 0
	out := make([]calmodel.Event, 0, len(exceptions))
	for _, exc := range exceptions {
		var err error
		parent, exc, err = r.ResolveException(ctx, parent, exc)
		if err != nil {
			return parent, nil, err
		}
		out = append(out, exc)
	}
	return parent, out, nil
}
