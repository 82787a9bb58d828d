package engine

import (
	"iter"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/roach88/repp/internal/textmap"
	"github.com/roach88/repp/internal/token"
)

// Engine owns a root group, a registry of named submodules, and the set
// of module names currently active by default.
type Engine struct {
	root      *Group
	modules   map[string]*Engine
	active    map[string]bool
	separator *regexp2.Regexp // nil means the tokenizer default
	info      string
	iterLimit int
}

// Option configures an engine at construction time.
type Option func(*Engine)

// WithModule registers a named submodule. Submodules are shared by
// reference with the ExternalCall operations that target them.
func WithModule(name string, m *Engine) Option {
	return func(e *Engine) {
		e.modules[name] = m
	}
}

// WithActive seeds the engine's default active-module set.
func WithActive(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.active[n] = true
		}
	}
}

// WithSeparator sets the module's tokenizer separator pattern.
func WithSeparator(re *regexp2.Regexp) Option {
	return func(e *Engine) {
		e.separator = re
	}
}

// WithInfo attaches the module's free-text meta annotation.
func WithInfo(info string) Option {
	return func(e *Engine) {
		e.info = info
	}
}

// WithIterationLimit caps the passes of every iterative group reachable
// from this engine. Zero (the default) means unbounded, matching the
// reference behavior; callers running untrusted rule sets should set a
// cap, since a non-converging group otherwise loops forever.
func WithIterationLimit(n int) Option {
	return func(e *Engine) {
		e.iterLimit = n
	}
}

// New builds an engine around a root group.
func New(root *Group, opts ...Option) *Engine {
	if root == nil {
		root = NewGroup()
	}
	e := &Engine{
		root:    root,
		modules: make(map[string]*Engine),
		active:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CallOption overrides per-call evaluation parameters.
type CallOption func(*callConfig)

type callConfig struct {
	active     map[string]bool
	haveActive bool
	verbose    bool
	separator  *regexp2.Regexp
}

// WithActiveModules overrides the engine's default active set for one
// call. Passing no names runs with every module inactive.
func WithActiveModules(names ...string) CallOption {
	return func(c *callConfig) {
		c.active = make(map[string]bool, len(names))
		for _, n := range names {
			c.active[n] = true
		}
		c.haveActive = true
	}
}

// WithVerbose includes applied=false steps in a trace.
func WithVerbose() CallOption {
	return func(c *callConfig) {
		c.verbose = true
	}
}

// WithTokenPattern overrides the separator pattern for one Tokenize
// call.
func WithTokenPattern(re *regexp2.Regexp) CallOption {
	return func(c *callConfig) {
		c.separator = re
	}
}

func (e *Engine) call(opts []CallOption) (*callConfig, *environ) {
	cfg := &callConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	active := e.active
	if cfg.haveActive {
		active = cfg.active
	}
	return cfg, &environ{active: active, iterLimit: e.iterLimit}
}

// Apply runs the root group over s and returns the final Result: the
// rewritten string plus the cumulative maps back to s, seeded with the
// synthetic start/end-of-text boundaries. Apply is total: no input
// string is invalid.
func (e *Engine) Apply(s string, opts ...CallOption) Result {
	_, env := e.call(opts)
	sum, _ := e.root.apply(s, env, func(Step) bool { return true })
	return e.result(s, sum)
}

// Trace runs the identical computation as Apply but exposes every
// intermediate Step, ending in one Result. The sequence is finite and
// restartable. Without WithVerbose, steps that left the string
// unchanged are omitted.
func (e *Engine) Trace(s string, opts ...CallOption) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		cfg, env := e.call(opts)
		stopped := false
		sum, ok := e.root.apply(s, env, func(st Step) bool {
			if !st.Applied && !cfg.verbose {
				return true
			}
			if !yield(st) {
				stopped = true
				return false
			}
			return true
		})
		if !ok || stopped {
			return
		}
		yield(e.result(s, sum))
	}
}

// Tokenize applies the cascade and splits the result on the module's
// separator pattern (or the override), mapping every token back to its
// original-text span.
func (e *Engine) Tokenize(s string, opts ...CallOption) token.Lattice {
	cfg, _ := e.call(opts)
	res := e.Apply(s, opts...)
	sep := cfg.separator
	if sep == nil {
		sep = e.separator
	}
	return token.Split(res.Output, res.StartMap, res.EndMap, sep)
}

func (e *Engine) result(s string, sum Step) Result {
	n := utf8.RuneCountInString(s)
	start := textmap.StartIdentity(n)
	end := textmap.EndIdentity(n)
	if !sum.Applied {
		return Result{Output: s, StartMap: start, EndMap: end}
	}
	return Result{
		Output:   sum.Output,
		StartMap: textmap.Compose(start, sum.StartMap),
		EndMap:   textmap.Compose(end, sum.EndMap),
	}
}

// Activate adds a module name to the engine's default active set.
func (e *Engine) Activate(name string) {
	e.active[name] = true
	slog.Debug("module activated", "module", name)
}

// Deactivate removes a module name from the engine's default active
// set.
func (e *Engine) Deactivate(name string) {
	delete(e.active, name)
	slog.Debug("module deactivated", "module", name)
}

// Active returns the default active module names, sorted.
func (e *Engine) Active() []string {
	names := make([]string, 0, len(e.active))
	for n := range e.active {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Module returns a registered submodule by name.
func (e *Engine) Module(name string) (*Engine, bool) {
	m, ok := e.modules[name]
	return m, ok
}

// Modules returns the registered submodule names, sorted.
func (e *Engine) Modules() []string {
	names := make([]string, 0, len(e.modules))
	for n := range e.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Root returns the engine's root group.
func (e *Engine) Root() *Group { return e.root }

// Info returns the module's meta annotation, if any.
func (e *Engine) Info() string { return e.info }

// Separator returns the module's tokenizer pattern, or nil when the
// default applies.
func (e *Engine) Separator() *regexp2.Regexp { return e.separator }
