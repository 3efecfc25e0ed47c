package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calquery"
	"github.com/calendarcore/calendarcore/pkg/calview"
)

func (a *app) cmdTodoCreate(args []string) int {
	flags := flag.NewFlagSet("todo-create", flag.ContinueOnError)
	book := flags.Int64("book", 0, "book id")
	summary := flags.String("summary", "", "summary")
	description := flags.String("description", "", "description")
	uid := flags.String("uid", "", "explicit UID (auto-generated if empty)")
	due := flags.Int64("due", 0, "DUE as Unix seconds")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if *book == 0 || *summary == "" {
		fmt.Fprintln(os.Stderr, "calctl: todo-create: --book and --summary are required")
		return 1
	}

	td, err := a.engine.CreateTodo(calmodel.Todo{
		BookID:      *book,
		Summary:     *summary,
		Description: *description,
		UID:         *uid,
		Due:         calmodel.NewUtime(*due),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: todo-create: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(td)
	} else {
		fmt.Printf("created todo %d %q (uid=%s)\n", td.ID, td.Summary, td.UID)
	}
	return 0
}

func (a *app) cmdTodoGet(args []string) int {
	flags := flag.NewFlagSet("todo-get", flag.ContinueOnError)
	id := flags.Int64("id", 0, "todo id")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	td, err := a.engine.GetTodo(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: todo-get: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(td)
	} else {
		fmt.Printf("%d %q book=%d uid=%s\n", td.ID, td.Summary, td.BookID, td.UID)
	}
	return 0
}

func (a *app) cmdTodoList(args []string) int {
	flags := flag.NewFlagSet("todo-list", flag.ContinueOnError)
	book := flags.Int64("book", 0, "book id")
	limit := flags.Int("limit", 0, "row limit (0 == unlimited)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if *book == 0 {
		fmt.Fprintln(os.Stderr, "calctl: todo-list: --book is required")
		return 1
	}

	q := calquery.Query{
		ViewURI: calview.URITodo,
		Filter: calquery.Leaf(calquery.AttributeFilter{
			Property:    calview.PropBookID,
			NumberMatch: calquery.MatchNumEqual,
			Value:       calmodel.Int64Cell(*book),
		}),
		OrderBy: calview.PropSummary,
		Limit:   *limit,
	}
	todos, err := a.engine.QueryTodos(q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: todo-list: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(todos)
		return 0
	}
	for _, td := range todos {
		fmt.Printf("%-6d %-30s uid=%s\n", td.ID, td.Summary, td.UID)
	}
	return 0
}

func (a *app) cmdTodoDelete(args []string) int {
	flags := flag.NewFlagSet("todo-delete", flag.ContinueOnError)
	id := flags.Int64("id", 0, "todo id")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if err := a.engine.DeleteTodo(*id); err != nil {
		fmt.Fprintf(os.Stderr, "calctl: todo-delete: %v\n", err)
		return 1
	}
	fmt.Printf("deleted todo %d\n", *id)
	return 0
}
