package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

var gooseRun = goose.Run

// Migrate runs a goose command ("up", "down", "status", "version", ...) against
// the migrations found at dir inside fsys.
func Migrate(db *sql.DB, fsys fs.FS, dir, command string, args ...string) error {
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := gooseRun(command, db, dir, args...); err != nil {
		return fmt.Errorf("run migrations %s: %w", command, err)
	}
	return nil
}
