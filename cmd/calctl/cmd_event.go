package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calquery"
	"github.com/calendarcore/calendarcore/pkg/calrecur"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

func (a *app) cmdEventCreate(args []string) int {
	flags := flag.NewFlagSet("event-create", flag.ContinueOnError)
	book := flags.Int64("book", 0, "book id")
	summary := flags.String("summary", "", "summary")
	description := flags.String("description", "", "description")
	location := flags.String("location", "", "location")
	uid := flags.String("uid", "", "explicit UID (auto-generated if empty)")
	start := flags.Int64("start", 0, "DTSTART as Unix seconds")
	end := flags.Int64("end", 0, "DTEND as Unix seconds")
	allday := flags.String("allday", "", "allday date YYYY-MM-DD (overrides --start/--end)")
	freq := flags.String("freq", "", "recurrence frequency: daily|weekly|monthly|yearly")
	count := flags.Int("count", 0, "recurrence COUNT (0 == unbounded)")
	recurrenceID := flags.String("recurrence-id", "", "RECURRENCE-ID[;RANGE=THISANDFUTURE|THISANDPRIOR] of the parent occurrence this event overrides")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if *book == 0 || *summary == "" {
		fmt.Fprintln(os.Stderr, "calctl: event-create: --book and --summary are required")
		return 1
	}
	if *recurrenceID != "" && *uid == "" {
		fmt.Fprintln(os.Stderr, "calctl: event-create: --recurrence-id requires --uid naming the parent series")
		return 1
	}

	ev := calmodel.Event{
		BookID:      *book,
		Summary:     *summary,
		Description: *description,
		Location:    *location,
		UID:         *uid,
	}
	if *allday != "" {
		d, err := parseISODate(*allday)
		if err != nil {
			fmt.Fprintf(os.Stderr, "calctl: event-create: %v\n", err)
			return 1
		}
		ev.IsAllDay = true
		ev.DTStart = d
		ev.DTEnd = d
	} else {
		ev.DTStart = calmodel.NewUtime(*start)
		ev.DTEnd = calmodel.NewUtime(*end)
	}
	if f, ok := freqFromFlag(*freq); ok {
		ev.Freq = f
		ev.Interval = 1
		if *count > 0 {
			ev.RangeType = calmodel.RangeCount
			ev.Count = int32(*count)
		}
	}

	if *recurrenceID != "" {
		ev.RecurrenceID = *recurrenceID
		_, created, err := calrecur.NewReconciler(a.engine).InsertException(context.Background(), ev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "calctl: event-create: resolve exception: %v\n", err)
			return 1
		}
		if *jsonOut {
			printJSON(created)
		} else {
			fmt.Printf("created exception event %d %q (uid=%s) against parent uid=%s\n", created.ID, created.Summary, created.UID, *uid)
		}
		return 0
	}

	created, err := a.engine.CreateEvent(ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: event-create: %v\n", err)
		return 1
	}
	if created.Freq != calmodel.FreqNone {
		if err := calrecur.NewReconciler(a.engine).PublishEvent(context.Background(), created); err != nil {
			fmt.Fprintf(os.Stderr, "calctl: event-create: publish instances: %v\n", err)
			return 1
		}
	}
	if *jsonOut {
		printJSON(created)
	} else {
		fmt.Printf("created event %d %q (uid=%s)\n", created.ID, created.Summary, created.UID)
	}
	return 0
}

func (a *app) cmdEventGet(args []string) int {
	flags := flag.NewFlagSet("event-get", flag.ContinueOnError)
	id := flags.Int64("id", 0, "event id")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	ev, err := a.engine.GetEvent(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: event-get: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(ev)
	} else {
		fmt.Printf("%d %q book=%d uid=%s\n", ev.ID, ev.Summary, ev.BookID, ev.UID)
	}
	return 0
}

func (a *app) cmdEventList(args []string) int {
	flags := flag.NewFlagSet("event-list", flag.ContinueOnError)
	book := flags.Int64("book", 0, "book id")
	limit := flags.Int("limit", 0, "row limit (0 == unlimited)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if *book == 0 {
		fmt.Fprintln(os.Stderr, "calctl: event-list: --book is required")
		return 1
	}

	q := calquery.Query{
		ViewURI: calview.URIEvent,
		Filter: calquery.Leaf(calquery.AttributeFilter{
			Property:    calview.PropBookID,
			NumberMatch: calquery.MatchNumEqual,
			Value:       calmodel.Int64Cell(*book),
		}),
		OrderBy: calview.PropSummary,
		Limit:   *limit,
	}
	events, err := a.engine.QueryEvents(q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: event-list: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(events)
		return 0
	}
	for _, ev := range events {
		fmt.Printf("%-6d %-30s uid=%s\n", ev.ID, ev.Summary, ev.UID)
	}
	return 0
}

func (a *app) cmdEventDelete(args []string) int {
	flags := flag.NewFlagSet("event-delete", flag.ContinueOnError)
	id := flags.Int64("id", 0, "event id")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if err := a.engine.DeleteEvent(*id); err != nil {
		fmt.Fprintf(os.Stderr, "calctl: event-delete: %v\n", err)
		return 1
	}
	fmt.Printf("deleted event %d\n", *id)
	return 0
}

func (a *app) cmdEventPublish(args []string) int {
	flags := flag.NewFlagSet("event-publish", flag.ContinueOnError)
	id := flags.Int64("id", 0, "event id")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	ev, err := a.engine.GetEvent(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: event-publish: %v\n", err)
		return 1
	}
	if err := calrecur.NewReconciler(a.engine).PublishEvent(context.Background(), ev); err != nil {
		fmt.Fprintf(os.Stderr, "calctl: event-publish: %v\n", err)
		return 1
	}
	fmt.Printf("republished instances for event %d\n", *id)
	return 0
}

func freqFromFlag(s string) (calmodel.Freq, bool) {
	switch s {
	case "daily":
		return calmodel.FreqDaily, true
	case "weekly":
		return calmodel.FreqWeekly, true
	case "monthly":
		return calmodel.FreqMonthly, true
	case "yearly":
		return calmodel.FreqYearly, true
	default:
		return calmodel.FreqNone, false
	}
}

func parseISODate(s string) (calmodel.CalTime, error) {
	var y, mo, d int
	if _, err := fmt.Sscanf(s, "%04d-%02d-%02d", &y, &mo, &d); err != nil {
		return calmodel.CalTime{}, fmt.Errorf("malformed date %q, want YYYY-MM-DD", s)
	}
	return calmodel.NewLocal(y, mo, d, 0, 0, 0), nil
}
