package store

import "testing"

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if len(id) != 36 {
			t.Fatalf("Generate() = %q, want 36-char hyphenated UUID", id)
		}
		if seen[id] {
			t.Fatalf("Generate() repeated %q", id)
		}
		seen[id] = true
	}
}

func TestFixedGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2")

	if got := gen.Generate(); got != "run-1" {
		t.Errorf("first Generate() = %q, want run-1", got)
	}
	if got := gen.Generate(); got != "run-2" {
		t.Errorf("second Generate() = %q, want run-2", got)
	}
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("run-1")
	gen.Generate()

	defer func() {
		if recover() == nil {
			t.Error("expected panic after exhausting IDs")
		}
	}()
	gen.Generate()
}
