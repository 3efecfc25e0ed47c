// Command calctl is the calendarcore admin CLI — direct book/event/todo
// CRUD and query execution against a local calendar database.
package main

import (
	"fmt"
	"os"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultDB = ".calendarcore/calendarcore.db"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Printf("calctl %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	switch os.Args[1] {
	case "book-create":
		os.Exit(a.cmdBookCreate(os.Args[2:]))
	case "book-get":
		os.Exit(a.cmdBookGet(os.Args[2:]))
	case "book-list":
		os.Exit(a.cmdBookList(os.Args[2:]))
	case "book-delete":
		os.Exit(a.cmdBookDelete(os.Args[2:]))

	case "event-create":
		os.Exit(a.cmdEventCreate(os.Args[2:]))
	case "event-get":
		os.Exit(a.cmdEventGet(os.Args[2:]))
	case "event-list":
		os.Exit(a.cmdEventList(os.Args[2:]))
	case "event-delete":
		os.Exit(a.cmdEventDelete(os.Args[2:]))
	case "event-publish":
		os.Exit(a.cmdEventPublish(os.Args[2:]))

	case "todo-create":
		os.Exit(a.cmdTodoCreate(os.Args[2:]))
	case "todo-get":
		os.Exit(a.cmdTodoGet(os.Args[2:]))
	case "todo-list":
		os.Exit(a.cmdTodoList(os.Args[2:]))
	case "todo-delete":
		os.Exit(a.cmdTodoDelete(os.Args[2:]))

	case "sync":
		os.Exit(a.cmdSync(os.Args[2:]))
	case "search":
		os.Exit(a.cmdSearch(os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "calctl: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Run 'calctl --help' for usage.")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`calctl — calendarcore admin CLI

Usage:
  calctl <command> [flags]

Books:
  book-create --account ID --name NAME [--policy forme|remain|delete]
  book-get --id ID
  book-list --account ID
  book-delete --id ID

Events:
  event-create --book ID --summary TEXT [--start UNIX] [--end UNIX] [--allday YYYY-MM-DD]
  event-get --id ID
  event-list --book ID [--limit N]
  event-delete --id ID
  event-publish --id ID     Republish instance rows from the event's RRULE

To-dos:
  todo-create --book ID --summary TEXT [--due UNIX]
  todo-get --id ID
  todo-list --book ID [--limit N]
  todo-delete --id ID

Sync:
  sync --since VER          Pull upserts/tombstones since a version
  search --book ID --q TEXT Cross-kind substring search

Environment:
  CALCTL_DB        SQLite database path (default: .calendarcore/calendarcore.db)
  CALCTL_ACCOUNT   Default account id (avoids passing --account every time)

The create, get, list, sync and search commands accept --json for
machine-readable output; the delete commands and event-publish do not.

Exit codes:
  0  success
  1  error
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "calctl: "+format+"\n", args...)
	os.Exit(1)
}
