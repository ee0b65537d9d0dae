package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesWorkspaceState(t *testing.T) {
	workspace := t.TempDir()
	conn, err := Open(workspace)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`CREATE TABLE scratch(x INTEGER)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := os.Stat(Path(workspace)); err != nil {
		t.Fatalf("store file missing: %v", err)
	}

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
	var fk int
	if err := conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
}

func TestPathDefaultsToCurrentDir(t *testing.T) {
	want := filepath.Join(".", workspaceDir, storeName)
	if got := Path(""); got != want {
		t.Fatalf("Path(\"\") = %q, want %q", got, want)
	}
}
