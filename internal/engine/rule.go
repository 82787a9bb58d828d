package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/roach88/repp/internal/textmap"
)

// ErrTemplateRef marks a replacement template that references a capture
// group the pattern does not define. Construction-time only.
var ErrTemplateRef = errors.New("replacement references undefined capture group")

// segment is one parsed piece of a replacement template: either a
// literal string or a \N group reference.
type segment struct {
	literal string
	group   int // 0 means literal
}

// Rule is a single pattern/replacement pair. The segment plan is
// derived once at construction; rules have no mutable state and are
// safe for concurrent use.
type Rule struct {
	pattern *regexp2.Regexp
	source  string // pattern text as written
	repl    string // replacement text as written

	// plan is the trackable prefix of the template: group references in
	// strictly increasing, gap-free order starting at 1, plus the
	// literals between them. rest is everything after the first break
	// in that order, emitted as one opaque chunk.
	plan []segment
	rest []segment
}

// NewRule compiles a rewrite rule. An invalid pattern or a template
// reference to an undefined capture group is a configuration error.
func NewRule(pattern, replacement string) (*Rule, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	segs := parseTemplate(replacement)

	maxGroup := 0
	for _, n := range re.GetGroupNumbers() {
		if n > maxGroup {
			maxGroup = n
		}
	}
	for _, seg := range segs {
		if seg.group > maxGroup {
			return nil, fmt.Errorf("pattern %q has no group \\%d: %w", pattern, seg.group, ErrTemplateRef)
		}
	}

	plan, rest := splitTrackable(segs)
	return &Rule{
		pattern: re,
		source:  pattern,
		repl:    replacement,
		plan:    plan,
		rest:    rest,
	}, nil
}

// parseTemplate splits a replacement template into literal and
// group-reference segments. \N (one or more digits) is a group
// reference, \\ a literal backslash; any other escape is kept verbatim.
func parseTemplate(tpl string) []segment {
	var segs []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(tpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 == len(runes) {
			lit.WriteRune(runes[i])
			continue
		}
		next := runes[i+1]
		switch {
		case next >= '0' && next <= '9':
			j := i + 1
			n := 0
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				n = n*10 + int(runes[j]-'0')
				j++
			}
			if n == 0 {
				// \0 is not a capture reference; keep it verbatim.
				lit.WriteString(string(runes[i:j]))
			} else {
				flush()
				segs = append(segs, segment{group: n})
			}
			i = j - 1
		case next == '\\':
			lit.WriteRune('\\')
			i++
		default:
			lit.WriteRune('\\')
		}
	}
	flush()
	return segs
}

// splitTrackable classifies the template prefix whose group references
// run 1, 2, 3, ... with no skips or repeats. References in that prefix
// copy their captured text with exact provenance; everything from the
// first out-of-order reference onward degrades to one opaque insert.
func splitTrackable(segs []segment) (plan, rest []segment) {
	next := 1
	for i, seg := range segs {
		if seg.group == 0 {
			continue
		}
		if seg.group != next {
			return segs[:i], segs[i:]
		}
		next++
	}
	return segs, nil
}

func (r *Rule) operation() {}

func (r *Rule) String() string {
	return fmt.Sprintf("!%s\t%s", r.source, r.repl)
}

// Pattern returns the pattern text as written in the rule file.
func (r *Rule) Pattern() string { return r.source }

// Replacement returns the replacement template as written.
func (r *Rule) Replacement() string { return r.repl }

// apply finds all non-overlapping matches left to right and rewrites
// each one, copying unmatched gaps verbatim. With zero matches the step
// is applied=false with identity maps.
func (r *Rule) apply(s string, env *environ, yield func(Step) bool) (Step, bool) {
	m, err := r.pattern.FindStringMatch(s)
	if err != nil || m == nil {
		// err is only possible with a match timeout, which rules never set
		step := identityStep(s, r)
		return step, yield(step)
	}

	runes := []rune(s)
	b := textmap.NewBuilder(len(runes))
	pos := 0 // input cursor, in characters
	shift := 0

	for ; m != nil; m, err = r.pattern.FindNextMatch(m) {
		if err != nil {
			break
		}
		ms, me := m.Index, m.Index+m.Length
		if pos < ms {
			b.Copy(string(runes[pos:ms]), shift)
		}
		shift = r.emit(m, b, ms, me, shift)
		pos = me
	}
	if pos < len(runes) {
		b.Copy(string(runes[pos:]), shift)
	}

	out, start, end := b.Finish(shift)
	step := Step{
		Input:    s,
		Output:   out,
		Op:       r,
		Applied:  true,
		StartMap: start,
		EndMap:   end,
	}
	return step, yield(step)
}

// emit writes the replacement for one match into b and returns the
// updated running shift. cur tracks how much of the match's input span
// has been consumed so far.
func (r *Rule) emit(m *regexp2.Match, b *textmap.Builder, ms, me, shift int) int {
	cur := ms

	for i, seg := range r.plan {
		if seg.group == 0 {
			// A literal consumes the input up to the next trackable
			// capture, or to the end of the match if none follows.
			width := r.nextBoundary(m, i, cur, me) - cur
			b.Insert(seg.literal, width, shift)
			shift += width - utf8.RuneCountInString(seg.literal)
			cur += width
			continue
		}
		grp := m.GroupByNumber(seg.group)
		if grp == nil || len(grp.Captures) == 0 {
			continue
		}
		// Exact provenance: the captured text is verbatim input, merely
		// relocated. Anchor the copy at the capture's own offset.
		copyShift := grp.Index - b.Len()
		b.Copy(grp.String(), copyShift)
		cur = grp.Index + grp.Length
		shift = copyShift
	}

	if len(r.rest) > 0 {
		text := expand(r.rest, m)
		width := me - cur
		b.Insert(text, width, shift)
		shift += width - utf8.RuneCountInString(text)
	} else if cur < me {
		// Matched input past the last template segment is deleted.
		shift += me - cur
	}
	return shift
}

// nextBoundary returns the input offset where the literal at plan index
// i stops consuming: the start of the next participating capture, or
// the match end when the literal closes the whole template.
func (r *Rule) nextBoundary(m *regexp2.Match, i, cur, me int) int {
	for _, seg := range r.plan[i+1:] {
		if seg.group == 0 {
			continue
		}
		if grp := m.GroupByNumber(seg.group); grp != nil && len(grp.Captures) > 0 {
			return grp.Index
		}
	}
	if len(r.rest) > 0 {
		return cur
	}
	return me
}

// expand renders template segments with group references substituted,
// without provenance.
func expand(segs []segment, m *regexp2.Match) string {
	var sb strings.Builder
	for _, seg := range segs {
		if seg.group == 0 {
			sb.WriteString(seg.literal)
			continue
		}
		if grp := m.GroupByNumber(seg.group); grp != nil && len(grp.Captures) > 0 {
			sb.WriteString(grp.String())
		}
	}
	return sb.String()
}
