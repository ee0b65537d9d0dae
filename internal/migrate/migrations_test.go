package migrate

import (
	"testing"

	"pulseboard/internal/db"
)

func TestMigrateAppliesAllStepsOnce(t *testing.T) {
	conn, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	all, err := steps()
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	var applied int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count: %v", err)
	}
	if applied != len(all) {
		t.Fatalf("applied %d migrations, want %d", applied, len(all))
	}

	// rerunning is a no-op
	if err := Migrate(conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("recount: %v", err)
	}
	if applied != len(all) {
		t.Fatalf("rerun applied %d migrations, want %d", applied, len(all))
	}

	for _, table := range []string{"users", "dashboards", "widgets", "integrations", "events"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestStepsAreOrderedByVersion(t *testing.T) {
	all, err := steps()
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("no embedded migrations")
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].version >= all[i].version {
			t.Fatalf("steps out of order: %s before %s", all[i-1].name, all[i].name)
		}
	}
}
