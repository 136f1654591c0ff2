// Package source loads the current note set from a JSON entries file, a
// Markdown vault or a SQLite table, and watches it for changes.
package source

import (
	"context"
	"fmt"

	"github.com/starford/notegraph/internal/models"
)

// Kind names a source implementation in configuration.
type Kind string

const (
	KindJSON   Kind = "json"
	KindVault  Kind = "vault"
	KindSQLite Kind = "sqlite"
)

// Source supplies the current note set.
type Source interface {
	// Notes returns every note in a stable order.
	Notes(ctx context.Context) ([]models.Note, error)
	// Paths returns the files or directories whose changes affect Notes.
	Paths() []string
}

// Open returns the source of the given kind reading from path. The caller
// closes the result if it implements io.Closer.
func Open(kind Kind, path string) (Source, error) {
	switch kind {
	case KindJSON:
		return NewJSONFile(path), nil
	case KindVault:
		return NewVault(path)
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("source: unknown kind %q", kind)
	}
}
