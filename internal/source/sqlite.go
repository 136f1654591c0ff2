package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/notegraph/internal/models"
)

const notesQuery = `SELECT id, content, tags, created, modified FROM notes ORDER BY rowid`

// SQLite reads notes from a "notes" table. tags holds a JSON array of
// strings; created and modified are SQLite DATETIME values.
type SQLite struct {
	path string
	conn *sql.DB
}

// OpenSQLite opens the database read-only.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("source: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("source: ping: %w", err)
	}
	return &SQLite{path: path, conn: conn}, nil
}

func (s *SQLite) Paths() []string { return []string{s.path} }

func (s *SQLite) Notes(ctx context.Context) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, notesQuery)
	if err != nil {
		return nil, fmt.Errorf("source: query notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var (
			n                 models.Note
			tags              sql.NullString
			created, modified sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.Content, &tags, &created, &modified); err != nil {
			return nil, fmt.Errorf("source: scan note: %w", err)
		}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &n.Tags); err != nil {
				return nil, fmt.Errorf("source: note %q tags: %w", n.ID, err)
			}
		}
		n.Created = nullTime(created)
		n.Modified = nullTime(modified)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: iterate notes: %w", err)
	}
	return notes, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func nullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
