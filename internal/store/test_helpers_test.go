package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/repp/internal/textmap"
	"github.com/roach88/repp/internal/token"
)

// createTestStore creates a file-backed store under a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a run record with minimal required fields.
func createTestRun(id string) Run {
	return Run{
		ID:       id,
		RuleFile: "rules/tokenizer.rpp",
		Info:     "test tokenizer",
		Active:   []string{"punct"},
	}
}

// createTestLattice builds a two-token lattice with known spans.
func createTestLattice() token.Lattice {
	return token.Lattice{
		{ID: 0, Form: "fast", Span: textmap.Span{From: 0, To: 4}},
		{ID: 1, Form: "(1)", Span: textmap.Span{From: 5, To: 8}},
	}
}
