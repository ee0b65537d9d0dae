// Package db opens the workspace SQLite store holding dashboards,
// widgets, integrations, and the change log.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Workspace state lives under a .pulseboard directory next to the
// config file.
const (
	workspaceDir = ".pulseboard"
	storeName    = "pulseboard.db"
)

// Connection pragmas. The refresher's timers write events while HTTP
// handlers read, so WAL with a busy timeout instead of sqlite's
// default of failing immediately on a locked database.
var pragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Path returns the store location for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, workspaceDir, storeName)
}

// EnsureWorkspace creates the workspace state directory if missing
// and returns its path.
func EnsureWorkspace(workspace string) (string, error) {
	dir := filepath.Dir(Path(workspace))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("workspace %s: %w", workspace, err)
	}
	return dir, nil
}

// Open opens the workspace store, creating the state directory and
// applying the connection pragmas.
func Open(workspace string) (*sql.DB, error) {
	if _, err := EnsureWorkspace(workspace); err != nil {
		return nil, err
	}
	path := Path(workspace)
	dsn := "file:" + path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// modernc/sqlite serializes writes per connection; a single pooled
	// connection keeps writers from tripping over each other.
	conn.SetMaxOpenConns(1)
	return conn, nil
}
