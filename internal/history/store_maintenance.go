package history

import (
	"context"
	"fmt"
	"time"
)

// Prune deletes runs finished before cutoff. Failed items cascade.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx,
		`DELETE FROM runs WHERE finished_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts recorded runs by kind.
func (s *Store) Stats(ctx context.Context) (map[Kind]int, error) {
	rows, err := s.db.QueryContext(orBackground(ctx), `SELECT kind, COUNT(1) FROM runs GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Kind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats[Kind(kind)] = count
	}
	return stats, rows.Err()
}
