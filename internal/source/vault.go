package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/parser"
	"github.com/starford/notegraph/internal/storage"
)

// Vault reads one note per Markdown file. The frontmatter may carry id,
// tags, created and modified; the id defaults to the path without its
// extension and both timestamps default to the file's modification time.
type Vault struct {
	store storage.Provider
}

// NewVault opens the vault rooted at dir.
func NewVault(dir string) (*Vault, error) {
	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("source: open vault: %w", err)
	}
	return &Vault{store: fs}, nil
}

// NewVaultFromProvider wraps an existing provider.
func NewVaultFromProvider(p storage.Provider) *Vault {
	return &Vault{store: p}
}

func (v *Vault) Paths() []string { return []string{v.store.Root()} }

// Notes parses every file in path order. Invalid frontmatter is kept as
// content rather than failing the load.
func (v *Vault) Notes(ctx context.Context) ([]models.Note, error) {
	files, err := v.store.List("")
	if err != nil {
		return nil, fmt.Errorf("source: list vault: %w", err)
	}
	notes := make([]models.Note, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := v.store.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		r, err := parser.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("source: parse %s: %w", f.Path, err)
		}
		n := models.Note{
			ID:       r.ID,
			Content:  r.Body,
			Tags:     r.Tags,
			Created:  r.Created,
			Modified: r.Modified,
		}
		if n.ID == "" {
			n.ID = strings.TrimSuffix(f.Path, ".md")
		}
		if n.Modified.IsZero() {
			n.Modified = f.ModTime
		}
		if n.Created.IsZero() {
			n.Created = n.Modified
		}
		notes = append(notes, n)
	}
	return notes, nil
}
