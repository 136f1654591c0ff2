package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/notegraph/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertNote(ctx context.Context, tx execer, n models.Note, sum string) error {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO notes (id, content, tags, created, modified, checksum)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content  = excluded.content,
			tags     = excluded.tags,
			created  = excluded.created,
			modified = excluded.modified,
			checksum = excluded.checksum
	`, n.ID, n.Content, string(tagsJSON), nullable(n.Created), nullable(n.Modified), sum)
	if err != nil {
		return fmt.Errorf("index: upsert note %q: %w", n.ID, err)
	}
	return nil
}

func replaceLinks(ctx context.Context, tx execer, links []models.SimilarityLink) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM links`); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}
	for _, l := range links {
		tokens, _ := json.Marshal(nonNil(l.SharedTokens))
		tags, _ := json.Marshal(nonNil(l.SharedTags))
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO links (source, target, weight, shared_tokens, shared_tags) VALUES (?, ?, ?, ?, ?)`,
			l.SourceID, l.TargetID, l.Weight, string(tokens), string(tags),
		); err != nil {
			return fmt.Errorf("index: insert link %s-%s: %w", l.SourceID, l.TargetID, err)
		}
	}
	return nil
}

// Checksums returns the stored checksum of every note by id.
func (db *DB) Checksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Links returns the stored links in insertion order.
func (db *DB) Links(ctx context.Context) ([]models.SimilarityLink, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT source, target, weight, shared_tokens, shared_tags FROM links ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("index: links: %w", err)
	}
	defer rows.Close()

	out := []models.SimilarityLink{}
	for rows.Next() {
		var (
			l            models.SimilarityLink
			tokens, tags string
		)
		if err := rows.Scan(&l.SourceID, &l.TargetID, &l.Weight, &tokens, &tags); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tokens), &l.SharedTokens); err != nil {
			return nil, fmt.Errorf("index: link tokens: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &l.SharedTags); err != nil {
			return nil, fmt.Errorf("index: link tags: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Neighbors returns the ids linked to id, strongest first.
func (db *DB) Neighbors(ctx context.Context, id string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT CASE WHEN source = ? THEN target ELSE source END AS other
		FROM links
		WHERE source = ? OR target = ?
		ORDER BY weight DESC, other
	`, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("index: neighbors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullable(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
