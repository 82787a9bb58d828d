package engine

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/roach88/repp/internal/textmap"
)

// Group applies a fixed ordered list of operations in sequence, the
// output of one becoming the input of the next. Its summary step
// carries the composed maps for the whole sequence; applied is the
// logical OR of its children.
type Group struct {
	ops []Operation
}

// NewGroup builds a group over the given operations. The slice is
// copied; declaration order is evaluation order.
func NewGroup(ops ...Operation) *Group {
	g := &Group{}
	if len(ops) > 0 {
		g.ops = make([]Operation, len(ops))
		copy(g.ops, ops)
	}
	return g
}

// Operations returns the group's children in declaration order.
func (g *Group) Operations() []Operation { return g.ops }

func (g *Group) operation() {}

func (g *Group) String() string {
	return fmt.Sprintf("group(%d)", len(g.ops))
}

func (g *Group) apply(s string, env *environ, yield func(Step) bool) (Step, bool) {
	in := s
	n := utf8.RuneCountInString(s)
	start, end := textmap.Identity(n), textmap.Identity(n)
	applied := false

	for _, op := range g.ops {
		sum, ok := op.apply(s, env, yield)
		if !ok {
			return Step{}, false
		}
		if !sum.Applied {
			continue
		}
		start = textmap.Compose(start, sum.StartMap)
		end = textmap.Compose(end, sum.EndMap)
		s = sum.Output
		applied = true
	}

	step := Step{
		Input:    in,
		Output:   s,
		Op:       g,
		Applied:  applied,
		StartMap: start,
		EndMap:   end,
	}
	return step, yield(step)
}

// IterativeGroup wraps a group and feeds its output back as input until
// the string stops changing. Termination is not structurally
// guaranteed: a rule set that oscillates or grows without bound loops
// forever unless the engine was built with an iteration limit.
type IterativeGroup struct {
	name  string
	group *Group
}

// NewIterativeGroup builds an iterative group. name is the digit label
// the group carries in rule text.
func NewIterativeGroup(name string, ops ...Operation) *IterativeGroup {
	return &IterativeGroup{name: name, group: NewGroup(ops...)}
}

// Name returns the group's digit label.
func (ig *IterativeGroup) Name() string { return ig.name }

func (ig *IterativeGroup) operation() {}

func (ig *IterativeGroup) String() string {
	return fmt.Sprintf("#%s", ig.name)
}

func (ig *IterativeGroup) apply(s string, env *environ, yield func(Step) bool) (Step, bool) {
	in := s
	n := utf8.RuneCountInString(s)
	start, end := textmap.Identity(n), textmap.Identity(n)
	applied := false
	passes := 0

	for {
		if env.iterLimit > 0 && passes >= env.iterLimit {
			slog.Warn("iterative group stopped at iteration limit",
				"group", ig.name,
				"limit", env.iterLimit,
			)
			break
		}
		prev := s
		sum, ok := ig.group.apply(s, env, yield)
		if !ok {
			return Step{}, false
		}
		passes++
		if !sum.Applied {
			break
		}
		start = textmap.Compose(start, sum.StartMap)
		end = textmap.Compose(end, sum.EndMap)
		s = sum.Output
		applied = true
		if s == prev {
			// Fixpoint reached.
			break
		}
	}

	step := Step{
		Input:    in,
		Output:   s,
		Op:       ig,
		Applied:  applied,
		StartMap: start,
		EndMap:   end,
	}
	return step, yield(step)
}
