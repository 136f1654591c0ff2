package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/notegraph/internal/checksum"
	"github.com/starford/notegraph/internal/models"
)

// Stats summarises one Sync.
type Stats struct {
	Upserted  int `json:"upserted"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Links     int `json:"links"`
}

// Sync brings the database up to date with notes and links in a single
// transaction:
//   - new or changed notes are upserted
//   - notes no longer present are deleted
//   - the link table is replaced
func (db *DB) Sync(ctx context.Context, notes []models.Note, links []models.SimilarityLink, logger *slog.Logger) (Stats, error) {
	var st Stats

	stored, err := db.Checksums(ctx)
	if err != nil {
		return st, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return st, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		seen[n.ID] = struct{}{}
		sum := checksum.Notes([]models.Note{n})
		if stored[n.ID] == sum {
			st.Unchanged++
			continue
		}
		if err := upsertNote(ctx, tx, n, sum); err != nil {
			return st, err
		}
		logger.Debug("index: upserted", slog.String("id", n.ID))
		st.Upserted++
	}

	for id := range stored {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
			return st, fmt.Errorf("index: delete note %q: %w", id, err)
		}
		logger.Debug("index: removed stale", slog.String("id", id))
		st.Removed++
	}

	if err := replaceLinks(ctx, tx, links); err != nil {
		return st, err
	}
	st.Links = len(links)

	if err := tx.Commit(); err != nil {
		return st, fmt.Errorf("index: commit: %w", err)
	}
	return st, nil
}
