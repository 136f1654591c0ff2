package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/similarity"
	"github.com/starford/notegraph/internal/source"
	"github.com/starford/notegraph/internal/testutil"
)

func testDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestSchemaCreation(t *testing.T) {
	db, _ := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestSync_SkipsUnchangedAndRemovesStale(t *testing.T) {
	db, _ := testDB(t)
	ctx := context.Background()
	logger := testutil.Logger()

	notes := testutil.Notes()
	st, err := db.Sync(ctx, notes, similarity.Build(notes), logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st.Upserted != 3 || st.Unchanged != 0 || st.Removed != 0 || st.Links != 2 {
		t.Fatalf("first sync = %+v", st)
	}

	notes[0].Content = "apple banana kiwifruit"
	notes = notes[:2]
	st, err = db.Sync(ctx, notes, similarity.Build(notes), logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st.Upserted != 1 || st.Unchanged != 1 || st.Removed != 1 || st.Links != 1 {
		t.Fatalf("second sync = %+v", st)
	}

	sums, err := db.Checksums(ctx)
	if err != nil {
		t.Fatalf("Checksums: %v", err)
	}
	if len(sums) != 2 {
		t.Errorf("checksums = %v, want 2 notes", sums)
	}
}

func TestLinksAndNeighbors(t *testing.T) {
	db, _ := testDB(t)
	ctx := context.Background()
	notes := testutil.Notes()
	if _, err := db.Sync(ctx, notes, similarity.Build(notes), testutil.Logger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	links, err := db.Links(ctx)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	want := similarity.Build(notes)
	if len(links) != len(want) {
		t.Fatalf("links = %+v, want %+v", links, want)
	}
	for i := range want {
		if links[i].SourceID != want[i].SourceID || links[i].TargetID != want[i].TargetID || links[i].Weight != want[i].Weight {
			t.Errorf("link %d = %+v, want %+v", i, links[i], want[i])
		}
	}

	got, err := db.Neighbors(ctx, "B")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Errorf("neighbors of B = %v, want [A C]", got)
	}
}

func TestExportReadableBySQLiteSource(t *testing.T) {
	db, path := testDB(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	notes := []models.Note{
		{ID: "one", Content: "orchard cherry", Tags: []string{"fruit"}, Created: created, Modified: created},
		{ID: "two", Content: "cherry orchard"},
	}
	if _, err := db.Sync(ctx, notes, similarity.Build(notes), testutil.Logger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	src, err := source.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer src.Close()

	got, err := src.Notes(ctx)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(got) != 2 || got[0].ID != "one" || got[1].ID != "two" {
		t.Fatalf("notes = %+v", got)
	}
	if !got[0].Created.Equal(created) || len(got[0].Tags) != 1 {
		t.Errorf("note one = %+v", got[0])
	}
	if !got[1].Created.IsZero() || len(got[1].Tags) != 0 {
		t.Errorf("note two = %+v", got[1])
	}
}
