// Package compiler parses the line-oriented REPP rule-text format into
// engines: rewrite rules, iterative groups, includes, and external
// module references resolved against a search directory.
//
// One declaration per line. Blank lines and lines starting with ';' are
// comments.
//
//	!PATTERN<TAB>REPLACEMENT   rewrite rule
//	>NAME                      call: internal group (digits) or module
//	#NAME ... #                internal iterative group (digits)
//	<FILENAME                  splice another rule file's lines
//	:PATTERN                   tokenizer separator (at most one)
//	@TEXT                      meta-info annotation (at most one)
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/roach88/repp/internal/engine"
)

// DefaultExtension is the file extension external modules are looked
// up with.
const DefaultExtension = ".rpp"

// Config controls module resolution and engine construction.
type Config struct {
	// Directory is searched for external modules and for includes
	// spliced by sources compiled from memory.
	Directory string

	// Extension overrides DefaultExtension for module lookup.
	Extension string

	// Modules pre-supplies named engines; they take precedence over
	// directory lookup and are shared by reference.
	Modules map[string]*engine.Engine

	// Active names the modules enabled by default on the returned
	// engine.
	Active []string

	// IterationLimit caps iterative-group passes on every engine
	// built. Zero means unbounded.
	IterationLimit int
}

func (c *Config) extension() string {
	if c.Extension != "" {
		return c.Extension
	}
	return DefaultExtension
}

// LoadFile compiles a rule file into an engine. It fails on the first
// configuration error encountered.
func LoadFile(path string, cfg *Config) (*engine.Engine, error) {
	l := newLoader(cfg)
	e, errs := l.loadFile(path)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	for _, name := range l.cfg.Active {
		e.Activate(name)
	}
	return e, nil
}

// LoadModule resolves a module by name: pre-supplied registry entry
// first, then NAME+extension in the search directory.
func LoadModule(name string, cfg *Config) (*engine.Engine, error) {
	l := newLoader(cfg)
	e, err := l.module(name)
	if err != nil {
		return nil, err
	}
	for _, n := range l.cfg.Active {
		e.Activate(n)
	}
	return e, nil
}

// Compile builds an engine from in-memory rule text. Includes and
// module references resolve against cfg.Directory.
func Compile(src []byte, cfg *Config) (*engine.Engine, error) {
	l := newLoader(cfg)
	dir := "."
	if l.cfg.Directory != "" {
		dir = l.cfg.Directory
	}
	lines, err := l.splice(src, "<input>", dir, map[string]bool{})
	if err != nil {
		return nil, err
	}
	e, errs := l.build(lines)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	for _, name := range l.cfg.Active {
		e.Activate(name)
	}
	return e, nil
}

// Check parses a rule file in collect-all mode and returns every
// configuration error found, or nil when the file is well-formed.
func Check(path string, cfg *Config) []error {
	l := newLoader(cfg)
	_, errs := l.loadFile(path)
	return errs
}

// loader owns the module registry shared across one load: every module
// is compiled at most once and shared by reference, and in-flight loads
// are tracked to reject reference cycles.
type loader struct {
	cfg      Config
	registry map[string]*engine.Engine
	loading  map[string]bool
}

func newLoader(cfg *Config) *loader {
	l := &loader{
		registry: make(map[string]*engine.Engine),
		loading:  make(map[string]bool),
	}
	if cfg != nil {
		l.cfg = *cfg
	}
	return l
}

func (l *loader) loadFile(path string) (*engine.Engine, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&ConfigError{
			Code:    ErrCodeModuleNotFound,
			File:    path,
			Message: "cannot read rule file",
			Err:     err,
		}}
	}
	lines, serr := l.splice(data, path, filepath.Dir(path), map[string]bool{abspath(path): true})
	if serr != nil {
		return nil, []error{serr}
	}
	return l.build(lines)
}

// module resolves name through the registry, the pre-supplied modules,
// and finally the search directory.
func (l *loader) module(name string) (*engine.Engine, error) {
	if m, ok := l.registry[name]; ok {
		return m, nil
	}
	if m, ok := l.cfg.Modules[name]; ok {
		l.registry[name] = m
		return m, nil
	}
	if l.loading[name] {
		return nil, &ConfigError{
			Code:    ErrCodeModuleCycle,
			Message: fmt.Sprintf("module %q is part of a reference cycle", name),
		}
	}
	path := filepath.Join(l.cfg.Directory, name+l.cfg.extension())
	if _, err := os.Stat(path); err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeModuleNotFound,
			Message: fmt.Sprintf("module %q not found at %s", name, path),
			Err:     err,
		}
	}

	l.loading[name] = true
	defer delete(l.loading, name)

	m, errs := l.loadFile(path)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	l.registry[name] = m
	slog.Debug("module loaded", "module", name, "path", path)
	return m, nil
}

// line is one spliced source line with its origin for error reporting.
type line struct {
	file string
	no   int
	text string
}

// splice expands include lines recursively, producing the flat line
// sequence the structural parser consumes. visited holds the absolute
// paths of files on the current include chain.
func (l *loader) splice(data []byte, file, dir string, visited map[string]bool) ([]line, error) {
	var out []line
	for i, raw := range strings.Split(string(data), "\n") {
		text := strings.TrimRight(raw, "\r")
		if !strings.HasPrefix(text, "<") {
			out = append(out, line{file: file, no: i + 1, text: text})
			continue
		}
		inc := filepath.Join(dir, strings.TrimSpace(text[1:]))
		abs := abspath(inc)
		if visited[abs] {
			return nil, &ConfigError{
				Code:    ErrCodeIncludeCycle,
				File:    file,
				Line:    i + 1,
				Message: fmt.Sprintf("include cycle through %s", inc),
			}
		}
		sub, err := os.ReadFile(inc)
		if err != nil {
			return nil, &ConfigError{
				Code:    ErrCodeIncludeNotFound,
				File:    file,
				Line:    i + 1,
				Message: fmt.Sprintf("cannot include %s", inc),
				Err:     err,
			}
		}
		visited[abs] = true
		spliced, serr := l.splice(sub, inc, filepath.Dir(inc), visited)
		delete(visited, abs)
		if serr != nil {
			return nil, serr
		}
		out = append(out, spliced...)
	}
	return out, nil
}

// build runs the structural parse and assembles the engine.
func (l *loader) build(lines []line) (*engine.Engine, []error) {
	p := &parser{loader: l, lines: lines, groups: make(map[string]*engine.IterativeGroup)}
	ops, _ := p.parse(true)
	if len(p.errs) > 0 {
		return nil, p.errs
	}

	opts := []engine.Option{engine.WithIterationLimit(l.cfg.IterationLimit)}
	if p.sep != nil {
		opts = append(opts, engine.WithSeparator(p.sep))
	}
	if p.info != "" {
		opts = append(opts, engine.WithInfo(p.info))
	}
	for name, m := range p.modules {
		opts = append(opts, engine.WithModule(name, m))
	}
	return engine.New(engine.NewGroup(ops...), opts...), nil
}

// parser performs the structural parse over spliced lines. It collects
// every error it can recover from so that Check reports them all;
// fail-fast callers take the first.
type parser struct {
	loader  *loader
	lines   []line
	pos     int
	groups  map[string]*engine.IterativeGroup
	modules map[string]*engine.Engine
	sep     *regexp2.Regexp
	info    string
	hasInfo bool
	errs    []error
}

// parse consumes declarations until a bare '#' (closing the enclosing
// block) or end of input. The second return reports whether a closing
// '#' was seen.
func (p *parser) parse(top bool) ([]engine.Operation, bool) {
	var ops []engine.Operation

	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		p.pos++
		text := ln.text

		switch {
		case text == "" || strings.HasPrefix(text, ";"):
			// comment

		case strings.HasPrefix(text, "!"):
			if r := p.parseRule(ln, text[1:]); r != nil {
				ops = append(ops, r)
			}

		case strings.HasPrefix(text, ">"):
			if op := p.parseCall(ln, text[1:]); op != nil {
				ops = append(ops, op)
			}

		case strings.HasPrefix(text, "#"):
			name := text[1:]
			if name == "" {
				return ops, true
			}
			p.parseGroup(ln, name)

		case strings.HasPrefix(text, ":"):
			p.parseSeparator(ln, text[1:])

		case strings.HasPrefix(text, "@"):
			p.parseMeta(ln, text[1:])

		default:
			p.fail(ln, ErrCodeMalformedLine, fmt.Sprintf("unrecognized declaration %q", text))
		}
	}
	return ops, false
}

func (p *parser) parseRule(ln line, body string) *engine.Rule {
	i := strings.IndexByte(body, '\t')
	if i < 0 {
		p.fail(ln, ErrCodeMalformedLine, "rewrite rule needs a tab between pattern and replacement")
		return nil
	}
	r, err := engine.NewRule(body[:i], body[i+1:])
	if err != nil {
		code := ErrCodeBadPattern
		if errors.Is(err, engine.ErrTemplateRef) {
			code = ErrCodeBadTemplate
		}
		p.errs = append(p.errs, &ConfigError{
			Code: code, File: ln.file, Line: ln.no,
			Message: "invalid rewrite rule", Err: err,
		})
		return nil
	}
	return r
}

func (p *parser) parseCall(ln line, name string) engine.Operation {
	if name == "" {
		p.fail(ln, ErrCodeMalformedLine, "call needs a group or module name")
		return nil
	}
	if isDigits(name) {
		g, ok := p.groups[name]
		if !ok {
			p.fail(ln, ErrCodeUndefinedGroup, fmt.Sprintf("internal group %s is not defined before use", name))
			return nil
		}
		return g
	}
	m, err := p.loader.module(name)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) && ce.File == "" {
			ce.File, ce.Line = ln.file, ln.no
		}
		p.errs = append(p.errs, err)
		return nil
	}
	if p.modules == nil {
		p.modules = make(map[string]*engine.Engine)
	}
	p.modules[name] = m
	return engine.NewExternalCall(name, m)
}

func (p *parser) parseGroup(ln line, name string) {
	if !isDigits(name) {
		p.fail(ln, ErrCodeMalformedLine, fmt.Sprintf("internal group name %q must be digits", name))
		name = ""
	}
	body, closed := p.parse(false)
	if !closed {
		p.fail(ln, ErrCodeUnterminatedGroup, fmt.Sprintf("group #%s is never closed", name))
		return
	}
	if name == "" {
		return
	}
	if _, dup := p.groups[name]; dup {
		p.fail(ln, ErrCodeDuplicateGroup, fmt.Sprintf("internal group %s defined twice", name))
		return
	}
	p.groups[name] = engine.NewIterativeGroup(name, body...)
}

func (p *parser) parseSeparator(ln line, pattern string) {
	if p.sep != nil {
		p.fail(ln, ErrCodeDuplicateSeparator, "tokenizer pattern declared twice")
		return
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		p.errs = append(p.errs, &ConfigError{
			Code: ErrCodeBadPattern, File: ln.file, Line: ln.no,
			Message: "invalid tokenizer pattern", Err: err,
		})
		return
	}
	p.sep = re
}

func (p *parser) parseMeta(ln line, text string) {
	if p.hasInfo {
		p.fail(ln, ErrCodeDuplicateMeta, "meta-info declared twice")
		return
	}
	p.info = text
	p.hasInfo = true
}

func (p *parser) fail(ln line, code, msg string) {
	p.errs = append(p.errs, &ConfigError{Code: code, File: ln.file, Line: ln.no, Message: msg})
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func abspath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
