package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calendarcore/calendarcore/pkg/calmodel"
	"github.com/calendarcore/calendarcore/pkg/calstore"
)

// app holds shared state for all CLI subcommands.
type app struct {
	engine    *calstore.Engine
	accountID string // default account from CALCTL_ACCOUNT
}

// newApp opens the database and resolves the default account identity.
func newApp() (*app, error) {
	dbPath := envOr("CALCTL_DB", defaultDB)
	e, err := calstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", dbPath, err)
	}
	return &app{
		engine:    e,
		accountID: envOr("CALCTL_ACCOUNT", ""),
	}, nil
}

// Close releases the database connection.
func (a *app) Close() { a.engine.Close() }

// resolveAccount returns the account ID from the flag (if non-empty),
// falling back to the CALCTL_ACCOUNT environment variable.
func (a *app) resolveAccount(flagVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if a.accountID != "" {
		return a.accountID, nil
	}
	return "", fmt.Errorf("no account id: pass --account or set CALCTL_ACCOUNT")
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// syncPolicyFromFlag maps the CLI's short policy names onto calmodel's
// SyncPolicy, defaulting to SyncForMe for an empty/unrecognized value.
func syncPolicyFromFlag(s string) calmodel.SyncPolicy {
	switch s {
	case "remain":
		return calmodel.SyncEveryAndRemain
	case "delete":
		return calmodel.SyncEveryAndDelete
	default:
		return calmodel.SyncForMe
	}
}
