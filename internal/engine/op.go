package engine

import (
	"unicode/utf8"

	"github.com/roach88/repp/internal/textmap"
)

// Operation is the sealed interface over the closed variant set
// {Rule, Group, IterativeGroup, ExternalCall}. Only this package
// implements it; the variant set is fixed and exhaustive.
type Operation interface {
	// apply rewrites s under env, emitting intermediate Steps through
	// yield and returning the operation's own summary Step. The summary
	// maps are relative to s. A false second return means the consumer
	// stopped the trace and the result must be discarded.
	apply(s string, env *environ, yield func(Step) bool) (Step, bool)

	// String renders the operation in rule-text notation.
	String() string

	operation() // sealed
}

// Step records one operation's effect on a string. Steps are ephemeral,
// created for tracing and composition; only Results are retained by
// consumers.
type Step struct {
	Input    string
	Output   string
	Op       Operation
	Applied  bool
	StartMap textmap.Map
	EndMap   textmap.Map
}

// Result is the final rewritten string plus the cumulative maps back to
// the original input, including the synthetic text boundaries.
type Result struct {
	Output   string
	StartMap textmap.Map
	EndMap   textmap.Map
}

// Event is the sealed union of trace events: every Step of a trace,
// terminated by exactly one Result.
type Event interface {
	traceEvent() // sealed
}

func (Step) traceEvent()   {}
func (Result) traceEvent() {}

// environ carries the per-call evaluation context: the active module
// set consulted by ExternalCall and the optional iteration cap.
type environ struct {
	active    map[string]bool
	iterLimit int
}

// identityStep builds an applied=false summary for an operation that
// left s unchanged. Its maps are identity (all zero).
func identityStep(s string, op Operation) Step {
	n := utf8.RuneCountInString(s)
	return Step{
		Input:    s,
		Output:   s,
		Op:       op,
		Applied:  false,
		StartMap: textmap.Identity(n),
		EndMap:   textmap.Identity(n),
	}
}
