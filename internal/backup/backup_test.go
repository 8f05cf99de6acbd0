package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/coffeematch/internal/errors"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO users (id, name) VALUES (1, 'Ada'), (2, 'Grace')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}
	return dbPath
}

func countUsers(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	return n
}

// clock returns a now func that advances a minute per call.
func clock() func() time.Time {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestNewManagerRejects(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"postgres", "postgres://localhost/coffeematch"},
		{"postgresql", "postgresql://localhost/coffeematch"},
		{"memory", ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(tt.dsn)
			if !errors.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, err := NewManager(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	info, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(info.Path) != filepath.Join(filepath.Dir(dbPath), DirName) {
		t.Errorf("backup written outside %s: %s", mgr.Dir(), info.Path)
	}
	if info.Size == 0 {
		t.Error("expected a non-empty backup")
	}
	if got := countUsers(t, info.Path); got != 2 {
		t.Errorf("expected 2 users in backup, got %d", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Create(context.Background()); !errors.IsValidation(err) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestUniqueNamesWithinOneSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := NewManager(dbPath)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for range 3 {
		info, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if seen[info.Path] {
			t.Fatalf("duplicate backup path %s", info.Path)
		}
		seen[info.Path] = true
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(list))
	}
	if filepath.Base(list[0].Path) != "coffeematch-20260301-090000-2.db" {
		t.Errorf("expected the last suffixed backup first, got %s", filepath.Base(list[0].Path))
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := NewManager(dbPath)
	mgr.now = clock()

	var last Info
	for range Keep + 3 {
		info, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		last = info
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != Keep {
		t.Fatalf("expected %d backups after rotation, got %d", Keep, len(list))
	}
	if list[0].Path != last.Path {
		t.Errorf("expected newest first, got %s", list[0].Path)
	}
	for i := 1; i < len(list); i++ {
		if !list[i-1].Taken.After(list[i].Taken) {
			t.Errorf("backups out of order at %d", i)
		}
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := NewManager(dbPath)
	if err := os.MkdirAll(mgr.Dir(), 0o700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "coffeematch-latest.db", "backup-20260301-0900.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected no backups, got %+v", list)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr, _ := NewManager(dbPath)
	mgr.now = clock()

	snap, err := mgr.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM users"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	previous, err := mgr.Restore(ctx, snap.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := countUsers(t, dbPath); got != 2 {
		t.Errorf("expected 2 users after restore, got %d", got)
	}
	if previous == nil {
		t.Fatal("expected the current database to be backed up first")
	}
	if got := countUsers(t, previous.Path); got != 0 {
		t.Errorf("expected the pre-restore backup to hold the emptied table, got %d users", got)
	}
}

func TestRestoreRejectsBadFiles(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr, _ := NewManager(dbPath)

	corrupt := filepath.Join(t.TempDir(), "corrupt.db")
	if err := os.WriteFile(corrupt, []byte("this is not a database"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.db")},
		{"corrupt", corrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Restore(ctx, tt.path); err == nil {
				t.Fatal("expected an error")
			}
			if got := countUsers(t, dbPath); got != 2 {
				t.Errorf("database changed: %d users", got)
			}
		})
	}
}
