package main

import (
	"database/sql"

	"github.com/trezcool/goose"

	appfs "github.com/trezcool/agenda/fs"
)

// mockable
var gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
	return goose.RunFS(command, db, appfs.FS, "migrations", args...)
}

func (cli *commandLine) migrate(args []string) error {
	if cli.store.DB == nil {
		return errNoSQLEngine
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.store.DB.DB, arguments...)
}
