package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

// Record persists a finished run and its failed items in one transaction.
func (s *Store) Record(ctx context.Context, run Run, failed []FailedItem) error {
	ctx = orBackground(ctx)
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	if _, err := ParseKind(string(run.Kind)); err != nil {
		return err
	}
	if run.SpecJSON == "" {
		run.SpecJSON = "{}"
	}

	return s.inTx(ctx, func(tx execer) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			string(run.Kind),
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.Total,
			run.Succeeded,
			run.Failed,
			boolToInt(run.Cancelled),
			run.Message,
			run.SpecJSON,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for i, item := range failed {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO failed_items (run_id, position, item, detail) VALUES (?, ?, ?, ?)`,
				run.ID, i, item.Item, item.Detail,
			); err != nil {
				return fmt.Errorf("insert failed item: %w", err)
			}
		}
		return nil
	})
}

// Get returns the run whose ID starts with id, preferring the newest.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	row := s.db.QueryRowContext(orBackground(ctx),
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY (id = ?) DESC, finished_at DESC LIMIT 1`,
		id, id+"%", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Latest returns the most recently finished run of kind.
func (s *Store) Latest(ctx context.Context, kind Kind) (Run, error) {
	row := s.db.QueryRowContext(orBackground(ctx),
		`SELECT `+runColumns+` FROM runs WHERE kind = ? ORDER BY finished_at DESC LIMIT 1`, string(kind))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: no %s runs recorded", ErrRunNotFound, kind)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. kind may be empty for all.
func (s *Store) List(ctx context.Context, kind Kind, limit int) ([]Run, error) {
	ctx = orBackground(ctx)
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY finished_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FailedItems returns the failed items of runID in submission order.
func (s *Store) FailedItems(ctx context.Context, runID string) ([]FailedItem, error) {
	rows, err := s.db.QueryContext(orBackground(ctx),
		`SELECT run_id, position, item, detail FROM failed_items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list failed items: %w", err)
	}
	defer rows.Close()

	var items []FailedItem
	for rows.Next() {
		var item FailedItem
		if err := rows.Scan(&item.RunID, &item.Position, &item.Item, &item.Detail); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
