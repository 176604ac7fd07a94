package postgres

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
)

func TestDSNFromParts(t *testing.T) {
	got := DSN(config.DBConfig{
		Host:           "db",
		Port:           5432,
		Name:           "fog",
		User:           "app",
		Password:       "p@ss",
		SSLMode:        "disable",
		ConnectTimeout: 2 * time.Second,
	})
	want := "postgres://app:p%40ss@db:5432/fog?connect_timeout=2&sslmode=disable"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func TestDSNPrefersExplicit(t *testing.T) {
	if got := DSN(config.DBConfig{DSN: "postgres://x", Host: "ignored"}); got != "postgres://x" {
		t.Fatalf("got=%q", got)
	}
}

func TestDSNSubSecondTimeoutRoundsUp(t *testing.T) {
	got := DSN(config.DBConfig{Host: "db", Port: 1, ConnectTimeout: 500 * time.Millisecond})
	if !strings.Contains(got, "connect_timeout=1") {
		t.Fatalf("got=%q", got)
	}
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for base := range ups {
		if !downs[base] {
			t.Fatalf("migration %s has no down file", base)
		}
	}
}
