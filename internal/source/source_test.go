package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/testutil"
)

func TestJSONFile_DocumentOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "entries.json")
	ts := time.Date(2025, 1, 17, 17, 26, 50, 672_000_000, time.UTC)
	want := []models.Note{
		{ID: "z", Content: "last alphabetically", Tags: []string{"t"}, Created: ts, Modified: ts},
		{ID: "a", Content: "first alphabetically"},
	}
	testutil.WriteEntries(t, path, want)

	got, err := NewJSONFile(path).Notes(context.Background())
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(got) != 2 || got[0].ID != "z" || got[1].ID != "a" {
		t.Fatalf("notes = %+v", got)
	}
	if !got[0].Created.Equal(ts) || got[0].Tags[0] != "t" {
		t.Errorf("note = %+v", got[0])
	}
}

func TestJSONFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewJSONFile(filepath.Join(dir, "missing.json")).Notes(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := NewJSONFile(bad).Notes(context.Background()); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestJSONFile_EmptyEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	_ = os.WriteFile(path, []byte(`{"metadata":{"version":"1.0"}}`), 0o644)
	got, err := NewJSONFile(path).Notes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("notes = %#v, want empty slice", got)
	}
}

func TestVault_Notes(t *testing.T) {
	_, store := testutil.TestVault(t)
	_ = store.Write("b.md", []byte("---\nid: note-b\ntags: [x, y]\ncreated: 2024-05-01T00:00:00Z\n---\nbanana bread recipe\n"))
	_ = store.Write("a/first.md", []byte("plain content #inline\n"))

	got, err := NewVaultFromProvider(store).Notes(context.Background())
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	first := got[0]
	if first.ID != "a/first" || first.Content != "plain content #inline\n" {
		t.Errorf("first = %+v", first)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "inline" {
		t.Errorf("first tags = %v", first.Tags)
	}
	if first.Modified.IsZero() || !first.Created.Equal(first.Modified) {
		t.Errorf("timestamps = %v / %v", first.Created, first.Modified)
	}

	second := got[1]
	if second.ID != "note-b" || second.Content != "banana bread recipe\n" {
		t.Errorf("second = %+v", second)
	}
	if len(second.Tags) != 2 {
		t.Errorf("second tags = %v", second.Tags)
	}
	if !second.Created.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("created = %v", second.Created)
	}
}

func TestSQLite_Notes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`
		CREATE TABLE notes (
			id       TEXT PRIMARY KEY,
			content  TEXT NOT NULL,
			tags     TEXT,
			created  DATETIME,
			modified DATETIME
		);
		INSERT INTO notes VALUES ('second', 'cherry dates', '["fruit"]', '2024-01-02 03:04:05', NULL);
		INSERT INTO notes VALUES ('first', 'apple banana', NULL, NULL, NULL);
	`)
	db.Close()
	if err != nil {
		t.Fatal(err)
	}

	src, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer src.Close()

	got, err := src.Notes(context.Background())
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(got) != 2 || got[0].ID != "second" || got[1].ID != "first" {
		t.Fatalf("notes = %+v, want rowid order", got)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "fruit" {
		t.Errorf("tags = %v", got[0].Tags)
	}
	if got[0].Created.Year() != 2024 || !got[0].Modified.IsZero() {
		t.Errorf("timestamps = %v / %v", got[0].Created, got[0].Modified)
	}
	if got[1].Tags != nil {
		t.Errorf("tags = %v, want nil", got[1].Tags)
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	if _, err := Open("xml", "x"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestWatch_DebouncesFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entries.json")
	testutil.WriteEntries(t, path, testutil.Notes())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, NewJSONFile(path), 100*time.Millisecond, testutil.Logger(), func() { calls.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		testutil.WriteEntries(t, path, testutil.Notes()[:i%3+1])
	}
	_ = os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644)

	testutil.Eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "change not reported")
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 for one burst", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
}

func TestWatch_VaultNewDirectory(t *testing.T) {
	dir, store := testutil.TestVault(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go Watch(ctx, NewVaultFromProvider(store), 50*time.Millisecond, testutil.Logger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	_ = os.MkdirAll(filepath.Join(dir, "sub"), 0o755)
	testutil.Eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "new directory not reported")

	time.Sleep(100 * time.Millisecond)
	before := calls.Load()
	_ = os.WriteFile(filepath.Join(dir, "sub", "n.md"), []byte("nested"), 0o644)
	testutil.Eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > before
	}, "file in new directory not reported")
}

func TestRelevant(t *testing.T) {
	files := []string{"/data/notes.db"}
	dirs := []string{"/vault"}
	cases := map[string]bool{
		"/data/notes.db":     true,
		"/data/notes.db-wal": true,
		"/data/other.db":     false,
		"/vault/a.md":        true,
		"/vault/x/b.md":      true,
		"/vault/a.txt":       false,
		"/vaultother/a.md":   false,
	}
	for name, want := range cases {
		if got := relevant(name, files, dirs); got != want {
			t.Errorf("relevant(%q) = %v, want %v", name, got, want)
		}
	}
}
