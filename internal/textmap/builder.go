package textmap

// Builder accumulates the output string and both position maps while a
// single rewrite pass walks its input. It is the explicit accumulator
// threaded through rule application: the caller owns the running shift
// and input cursor, the builder owns the output side.
//
// Both maps begin with the leading sentinel slot already in place;
// Finish appends the trailing sentinel.
type Builder struct {
	out   []rune
	start Map
	end   Map
}

// NewBuilder returns a builder sized for roughly n output characters.
func NewBuilder(n int) *Builder {
	return &Builder{
		out:   make([]rune, 0, n),
		start: append(make(Map, 0, n+2), 0),
		end:   append(make(Map, 0, n+2), 0),
	}
}

// Len returns the number of characters emitted so far.
func (b *Builder) Len() int {
	return len(b.out)
}

// Copy appends text that corresponds 1:1, verbatim, to a span of the
// input, merely relocated by shift characters. Every copied character
// records exact provenance: the same shift in both maps.
func (b *Builder) Copy(text string, shift int) {
	for _, r := range text {
		b.out = append(b.out, r)
		b.start = append(b.start, shift)
		b.end = append(b.end, shift)
	}
}

// Insert appends text as an opaque replacement for width characters of
// input. Provenance is interpolated: the start-map values ramp down
// from shift, the end-map values ramp down from shift+width-1, which
// spreads approximate provenance evenly across the replaced span
// instead of pointing every inserted character at one input offset.
func (b *Builder) Insert(text string, width, shift int) {
	i := 0
	for _, r := range text {
		b.out = append(b.out, r)
		b.start = append(b.start, shift-i)
		b.end = append(b.end, shift+width-1-i)
		i++
	}
}

// Finish seals the builder, appending the trailing sentinel (the final
// running shift) to both maps, and returns the output string.
func (b *Builder) Finish(shift int) (string, Map, Map) {
	b.start = append(b.start, shift)
	b.end = append(b.end, shift)
	return string(b.out), b.start, b.end
}
