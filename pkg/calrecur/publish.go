package calrecur

import (
	"context"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calstore"
)

// Reconciler republishes instance rows for a recurring event and
// resolves RECURRENCE-ID exceptions against a parent series. It holds
// no state of its own beyond the store it talks to.
type Reconciler struct {
	engine *calstore.Engine
}

// NewReconciler binds a Reconciler to the store it will publish
// instances into.
func NewReconciler(e *calstore.Engine) *Reconciler {
	return &Reconciler{engine: e}
}

func instanceTable(ev calmodel.Event) calmodel.InstanceTable {
	if ev.IsAllDay {
		return calmodel.InstanceAllday
	}
	return calmodel.InstanceUtime
}

// PublishEvent implements §4.7.1: delete and republish every instance
// row for ev. A non-recurring event (Freq == FreqNone) gets exactly one
// row covering [DTStart, DTEnd]; a recurring event is walked through its
// RRULE, skipping EXDATE matches and stopping at COUNT/UNTIL or the
// safety bound, whichever comes first. ctx is checked once per raw
// candidate so a caller can cancel a long expansion; an aborted call
// leaves the previous instance rows untouched.
func (r *Reconciler) PublishEvent(ctx context.Context, ev calmodel.Event) error {
	table := instanceTable(ev)

	if ev.Freq == calmodel.FreqNone {
		return r.engine.ReplaceInstances(ev.ID, table, []calmodel.Instance{
			{ParentID: ev.ID, ParentKind: calmodel.KindEvent, Table: table, Start: ev.DTStart, End: ev.DTEnd},
		})
	}

	opt, err := buildROption(ev)
	if err != nil {
		return calerr.New(calerr.InvalidParameter, "calrecur.PublishEvent", err)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return calerr.New(calerr.InvalidParameter, "calrecur.PublishEvent", err)
	}

	excluded := make(map[string]bool, len(ev.ExDate))
	for _, x := range ev.ExDate {
		excluded[x] = true
	}

	duration := calTimeToTime(ev.DTEnd).Sub(calTimeToTime(ev.DTStart))
	next := rule.Iterator()
	instances := make([]calmodel.Instance, 0, 16)
	matched := 0

	for raw := 0; raw < maxOccurrences; raw++ {
		select {
		case <-ctx.Done():
			return calerr.New(calerr.Canceled, "calrecur.PublishEvent", ctx.Err())
		default:
		}

		start, ok := next()
		if !ok {
			break
		}
		if excluded[icsWallClock(start)] {
			continue
		}

		end := start.Add(duration)
		instances = append(instances, calmodel.Instance{
			ParentID:   ev.ID,
			ParentKind: calmodel.KindEvent,
			Table:      table,
			Start:      timeToCalTime(ev.DTStart.Kind, start),
			End:        timeToCalTime(ev.DTStart.Kind, end),
		})
		matched++
		if ev.RangeType == calmodel.RangeCount && matched >= int(ev.Count) {
			break
		}
	}

	return r.engine.ReplaceInstances(ev.ID, table, instances)
}

// wideBounds returns a [start, end] pair that ReplaceInstances/
// ListInstances will treat as "everything", keyed to the Kind ev's
// instances are stored under.
func wideBounds(ev calmodel.Event) (calmodel.CalTime, calmodel.CalTime) {
	if ev.IsAllDay {
		return calmodel.NewLocal(0, 1, 1, 0, 0, 0), calmodel.NewLocal(9999, 12, 31, 23, 59, 59)
	}
	return calmodel.NewUtime(minInt64), calmodel.NewUtime(maxInt64)
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

// ApplyExdateDelete is the §4.7.1 fast path for `update_exdate_del`:
// drop instance rows whose start wall-clock matches a member of
// newExDate, leaving every other occurrence row untouched. Unlike
// PublishEvent it never re-walks the RRULE.
func (r *Reconciler) ApplyExdateDelete(ev calmodel.Event, newExDate []string) error {
	table := instanceTable(ev)
	lo, hi := wideBounds(ev)

	all, err := r.engine.ListInstances(ev.ID, table, lo, hi)
	if err != nil {
		return err
	}

	excluded := make(map[string]bool, len(newExDate))
	for _, x := range newExDate {
		excluded[x] = true
	}

	kept := all[:0]
	for _, inst := range all {
		if excluded[icsWallClock(calTimeToTime(inst.Start))] {
			continue
		}
		kept = append(kept, inst)
	}
	if len(kept) == len(all) {
		return nil
	}
	return r.engine.ReplaceInstances(ev.ID, table, kept)
}

// lastOccurrence resolves ev's effective final occurrence, used by
// ResolveException to cap a THISANDFUTURE/THISANDPRIOR split when the
// parent was COUNT-bounded (spec §4.7.2: "if the parent was
// count-bounded, first resolve its effective last occurrence").
func (r *Reconciler) lastOccurrence(ev calmodel.Event) (time.Time, bool, error) {
	opt, err := buildROption(ev)
	if err != nil {
		return time.Time{}, false, calerr.New(calerr.InvalidParameter, "calrecur.lastOccurrence", err)
	}
	if ev.RangeType == calmodel.RangeCount {
		opt.Count = int(ev.Count)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, false, calerr.New(calerr.InvalidParameter, "calrecur.lastOccurrence", err)
	}
	all := rule.All()
	if len(all) == 0 {
		return time.Time{}, false, nil
	}
	return all[len(all)-1], true, nil
}
