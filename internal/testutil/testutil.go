// Package testutil provides shared test fixtures for note sets, vaults and
// entries files.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/storage"
)

// Notes returns the three-note example set: A and B share "apple" and
// "banana", B and C share "cherry", A and C share nothing.
func Notes() []models.Note {
	return []models.Note{
		{ID: "A", Content: "apple banana xylophone"},
		{ID: "B", Content: "apple banana cherry"},
		{ID: "C", Content: "cherry dates"},
	}
}

// Logger returns a logger that discards everything below error level.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteEntries writes notes as an entries document to path.
func WriteEntries(t *testing.T, path string, notes []models.Note) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"entries":  notes,
		"metadata": map[string]string{"version": "1.0"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
