// Package repo is the SQLite-backed store for dashboard entities. A
// Repo is constructed explicitly at startup and passed by handle; it
// keeps no state besides the database connection.
package repo

import (
	"database/sql"
	"errors"
	"time"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
