package textmap

// Map is an ordered sequence of character shifts. For a string of n
// characters the map has n+2 slots: slot 0 is the synthetic
// start-of-text boundary, slot i (1 <= i <= n) belongs to the character
// at offset i-1, and slot n+1 is the synthetic end-of-text boundary.
//
// A value d at slot i means the character at output offset i-1
// originated at offset i-1+d in the previous stage's string.
type Map []int

// Identity returns an all-zero map for a string of n characters.
// An identity map reports every character as its own origin.
func Identity(n int) Map {
	return make(Map, n+2)
}

// StartIdentity returns a fresh overall start map for a string of n
// characters. The leading sentinel is seeded to 1 so that a token
// touching the start of text resolves to original offset 0 without a
// rule having to match there.
func StartIdentity(n int) Map {
	m := Identity(n)
	m[0] = 1
	return m
}

// EndIdentity returns a fresh overall end map for a string of n
// characters. The trailing sentinel is seeded to -1, the end-of-text
// counterpart of StartIdentity's leading 1.
func EndIdentity(n int) Map {
	m := Identity(n)
	m[len(m)-1] = -1
	return m
}

// Compose collapses two consecutive maps into one. newer maps the
// latest string back to the previous stage's string; older maps that
// stage back further. The result has the length of newer and maps the
// latest string all the way back:
//
//	result[i] = newer[i] + older[i+newer[i]]
//
// Indices into older are clamped to its bounds. Well-formed rewrite
// maps never go out of range; clamping keeps composition total for
// the approximate maps produced by opaque replacements.
func Compose(older, newer Map) Map {
	out := make(Map, len(newer))
	for i, d := range newer {
		j := i + d
		if j < 0 {
			j = 0
		} else if j >= len(older) {
			j = len(older) - 1
		}
		out[i] = d + older[j]
	}
	return out
}

// Equal reports whether two maps have identical length and contents.
func Equal(a, b Map) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
