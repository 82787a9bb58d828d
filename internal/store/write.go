package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/repp/internal/token"
)

// Run is the metadata row recorded once per engine invocation.
type Run struct {
	ID        string
	CreatedAt string
	RuleFile  string
	Info      string
	Active    []string
}

// Item is one processed input line within a run, together with the
// rewritten text it produced. Its tokens live in the tokens table.
type Item struct {
	ID     int64
	RunID  string
	Seq    int
	Input  string
	Output string
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	active, err := json.Marshal(activeOrEmpty(run.Active))
	if err != nil {
		return fmt.Errorf("write run: marshal active set: %w", err)
	}

	if run.CreatedAt == "" {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO runs (id, rule_file, info, active)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, run.ID, run.RuleFile, run.Info, string(active))
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO runs (id, created_at, rule_file, info, active)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, run.ID, run.CreatedAt, run.RuleFile, run.Info, string(active))
	}
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteItem inserts an input line, its rewritten output, and its token
// lattice in a single transaction. seq is the 0-based position of the
// line within the run.
//
// Returns the item's rowid. A second write for the same (run, seq)
// fails with a constraint error: every line of a run is recorded once.
//
// Note: the run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteItem(ctx context.Context, runID string, seq int, input, output string, lattice token.Lattice) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write item: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO items (run_id, seq, input, output)
		VALUES (?, ?, ?, ?)
	`, runID, seq, input, output)
	if err != nil {
		return 0, fmt.Errorf("write item: insert: %w", err)
	}

	itemID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write item: last insert id: %w", err)
	}

	for _, tok := range lattice {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tokens (item_id, token_id, form, span_from, span_to)
			VALUES (?, ?, ?, ?, ?)
		`, itemID, tok.ID, tok.Form, tok.Span.From, tok.Span.To)
		if err != nil {
			return 0, fmt.Errorf("write item: insert token %d: %w", tok.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write item: commit: %w", err)
	}

	return itemID, nil
}

func activeOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
