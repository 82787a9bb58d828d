// Package textmap provides the position-map algebra used to track
// character provenance through cascaded string rewrites.
//
// A Map holds one signed shift per character offset of a string, plus a
// sentinel slot at each end. The invariant throughout the package is
//
//	original = output + map[output+1]
//
// where the +1 accounts for the leading sentinel. Two maps travel with
// every rewrite: a start map for the left edge of a span and an end map
// for the right edge, because insertions and deletions can make the two
// edges diverge.
//
// Key design constraints:
//   - All offsets are Unicode code point (rune) offsets, never bytes
//   - Maps are plain int slices; composition never allocates per element
//   - Builder threads the growing output and both maps through a single
//     rewrite pass so rule application stays pure
package textmap
