package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdSync(args []string) int {
	flags := flag.NewFlagSet("sync", flag.ContinueOnError)
	since := flags.Int64("since", 0, "pull changes with changed_ver > since")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	changes, hwm, err := a.engine.PullChanges(*since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: sync: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(map[string]interface{}{"changes": changes, "high_water_mark": hwm})
		return 0
	}
	for _, c := range changes {
		fmt.Printf("%-8s id=%-6d ver=%-6d status=%d\n", c.Kind, c.RecordID, c.ChangedVer, c.Status)
	}
	fmt.Printf("high water mark: %d\n", hwm)
	return 0
}

func (a *app) cmdSearch(args []string) int {
	flags := flag.NewFlagSet("search", flag.ContinueOnError)
	book := flags.Int64("book", 0, "book id to search within")
	needle := flags.String("q", "", "search text")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if *book == 0 || *needle == "" {
		fmt.Fprintln(os.Stderr, "calctl: search: --book and --q are required")
		return 1
	}
	results, err := a.engine.SearchAll(*book, *needle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: search: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(results)
		return 0
	}
	for _, r := range results {
		fmt.Printf("%-8s id=%-6d %s\n", r.Kind, r.RecordID, r.Summary)
	}
	return 0
}
