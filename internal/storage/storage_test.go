package storage

import (
	"path/filepath"
	"testing"
)

func TestTouchRecentAndList(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	if err := TouchRecent(db, "abc123", "First Video"); err != nil {
		t.Fatalf("TouchRecent: %v", err)
	}
	if err := TouchRecent(db, "xyz789", ""); err != nil {
		t.Fatalf("TouchRecent: %v", err)
	}
	// Second question on abc123 bumps the counter and recency.
	if err := TouchRecent(db, "abc123", ""); err != nil {
		t.Fatalf("TouchRecent: %v", err)
	}

	recents, err := ListRecents(db, 0)
	if err != nil {
		t.Fatalf("ListRecents: %v", err)
	}
	if len(recents) != 2 {
		t.Fatalf("got %d recents, want 2", len(recents))
	}

	first := recents[0]
	if first.VideoID != "abc123" {
		t.Errorf("newest recent = %q, want abc123", first.VideoID)
	}
	if first.Questions != 2 {
		t.Errorf("questions = %d, want 2", first.Questions)
	}
	if first.Title != "First Video" {
		t.Errorf("title = %q, empty touch must not erase it", first.Title)
	}
}

func TestSetTitle(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	if err := TouchRecent(db, "abc123", ""); err != nil {
		t.Fatalf("TouchRecent: %v", err)
	}
	if err := SetTitle(db, "abc123", "Learned Later"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}

	recents, err := ListRecents(db, 1)
	if err != nil {
		t.Fatalf("ListRecents: %v", err)
	}
	if len(recents) != 1 || recents[0].Title != "Learned Later" {
		t.Errorf("recents = %+v, want title set", recents)
	}
}

func TestListRecentsLimit(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	for _, id := range []string{"a", "b", "c"} {
		if err := TouchRecent(db, id, ""); err != nil {
			t.Fatalf("TouchRecent: %v", err)
		}
	}

	recents, err := ListRecents(db, 2)
	if err != nil {
		t.Fatalf("ListRecents: %v", err)
	}
	if len(recents) != 2 {
		t.Errorf("got %d recents, want 2", len(recents))
	}
}

func TestMigrationsRunOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("first OpenDB: %v", err)
	}
	db.Close()

	// Reopening must not re-apply migrations.
	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("second OpenDB: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("schema_migrations has %d rows, want %d", count, len(migrations))
	}
}
