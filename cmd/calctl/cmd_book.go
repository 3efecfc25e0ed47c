package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

func (a *app) cmdBookCreate(args []string) int {
	flags := flag.NewFlagSet("book-create", flag.ContinueOnError)
	account := flags.String("account", "", "account id (overrides CALCTL_ACCOUNT)")
	name := flags.String("name", "", "book name")
	description := flags.String("description", "", "book description")
	color := flags.String("color", "", "display color")
	policy := flags.String("policy", "forme", "sync policy: forme|remain|delete")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	accountID, err := a.resolveAccount(*account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: book-create: %v\n", err)
		return 1
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "calctl: book-create: --name is required")
		return 1
	}

	b, err := a.engine.CreateBook(accountID, calmodel.Book{
		Name:        *name,
		Description: *description,
		Color:       *color,
		SyncPolicy:  syncPolicyFromFlag(*policy),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: book-create: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(b)
	} else {
		fmt.Printf("created book %d %q\n", b.ID, b.Name)
	}
	return 0
}

func (a *app) cmdBookGet(args []string) int {
	flags := flag.NewFlagSet("book-get", flag.ContinueOnError)
	id := flags.Int64("id", 0, "book id")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	b, err := a.engine.GetBook(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: book-get: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(b)
	} else {
		fmt.Printf("%d %q policy=%d mode=%d deleted=%t\n", b.ID, b.Name, b.SyncPolicy, b.Mode, b.Deleted)
	}
	return 0
}

func (a *app) cmdBookList(args []string) int {
	flags := flag.NewFlagSet("book-list", flag.ContinueOnError)
	account := flags.String("account", "", "account id (overrides CALCTL_ACCOUNT)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	accountID, err := a.resolveAccount(*account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: book-list: %v\n", err)
		return 1
	}
	books, err := a.engine.ListBooksForAccount(accountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calctl: book-list: %v\n", err)
		return 1
	}
	if *jsonOut {
		printJSON(books)
		return 0
	}
	for _, b := range books {
		fmt.Printf("%-6d %-30s policy=%d\n", b.ID, b.Name, b.SyncPolicy)
	}
	return 0
}

func (a *app) cmdBookDelete(args []string) int {
	flags := flag.NewFlagSet("book-delete", flag.ContinueOnError)
	id := flags.Int64("id", 0, "book id")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if err := a.engine.DeleteBook(*id); err != nil {
		fmt.Fprintf(os.Stderr, "calctl: book-delete: %v\n", err)
		return 1
	}
	fmt.Printf("deleted book %d\n", *id)
	return 0
}
