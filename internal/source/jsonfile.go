package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/starford/notegraph/internal/models"
)

// Document is the on-disk shape of an entries file.
type Document struct {
	Entries  []models.Note `json:"entries"`
	Metadata Metadata      `json:"metadata"`
}

// Metadata describes the entries file itself.
type Metadata struct {
	LastUpdate string `json:"lastUpdate,omitempty"`
	Version    string `json:"version,omitempty"`
}

// JSONFile reads notes from an entries document. Entries keep document order.
type JSONFile struct {
	path string
}

// NewJSONFile returns a source reading path on every call to Notes.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (j *JSONFile) Paths() []string { return []string{j.path} }

func (j *JSONFile) Notes(ctx context.Context) ([]models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", j.path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", j.path, err)
	}
	if doc.Entries == nil {
		doc.Entries = []models.Note{}
	}
	return doc.Entries, nil
}
