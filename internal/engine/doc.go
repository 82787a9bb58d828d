// Package engine implements the REPP rewrite engine: rules, composition
// operators, and the top-level Engine that applies a rule cascade to a
// string while tracking character provenance.
//
// The operation variant set is closed: Rule, Group, IterativeGroup, and
// ExternalCall all implement the sealed Operation interface. Applying an
// operation produces Step records; the engine composes the position maps
// of every applied step into a single Result that maps the final string
// back to the unmodified input.
//
// Thread-safety model:
//   - Rules and groups are immutable after construction and safe to
//     share across goroutines.
//   - Apply, Trace, and Tokenize are purely computational over in-memory
//     strings; they never block and never fail for a well-formed engine.
//   - Activate and Deactivate mutate the engine's default active set and
//     are not designed for concurrent use. Callers needing concurrent
//     calls with different active sets pass WithActiveModules per call.
package engine
