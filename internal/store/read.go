package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/repp/internal/textmap"
	"github.com/roach88/repp/internal/token"
)

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, rule_file, info, active
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row.Scan)
}

// ReadRuns returns all runs ordered by creation time, then ID.
// Returns an empty slice (not nil) when the store holds no runs.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, rule_file, info, active
		FROM runs
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadItems returns all items of a run in line order.
// Returns an empty slice (not nil) when the run has no items.
func (s *Store) ReadItems(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, input, output
		FROM items
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.RunID, &it.Seq, &it.Input, &it.Output); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// ReadTokens reconstructs an item's token lattice in token order.
// Returns an empty lattice (not nil) when the item produced no tokens.
func (s *Store) ReadTokens(ctx context.Context, itemID int64) (token.Lattice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token_id, form, span_from, span_to
		FROM tokens
		WHERE item_id = ?
		ORDER BY token_id ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	lattice := token.Lattice{}
	for rows.Next() {
		var tok token.Token
		var from, to int
		if err := rows.Scan(&tok.ID, &tok.Form, &from, &to); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tok.Span = textmap.Span{From: from, To: to}
		lattice = append(lattice, tok)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}

	return lattice, nil
}

func scanRun(scan func(dest ...any) error) (Run, error) {
	var run Run
	var active string
	if err := scan(&run.ID, &run.CreatedAt, &run.RuleFile, &run.Info, &active); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(active), &run.Active); err != nil {
		return Run{}, fmt.Errorf("scan run: unmarshal active set: %w", err)
	}
	return run, nil
}
