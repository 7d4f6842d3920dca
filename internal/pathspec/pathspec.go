// Package pathspec holds an ordered set of compiled patterns and decides
// which paths it selects. The last pattern that matches a path wins.
package pathspec

import (
	"fmt"

	"github.com/ogdakke/pathspec/internal/concurrent"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/normalize"
	"github.com/ogdakke/pathspec/internal/pattern"
	"github.com/ogdakke/pathspec/internal/registry"
	"github.com/ogdakke/pathspec/internal/traversal"
)

// PathSpec is immutable after construction and safe for concurrent use.
type PathSpec struct {
	patterns []pattern.Pattern
	// sources[i] is the line patterns[i] was compiled from.
	sources []string
}

// CheckResult reports how a single path was decided. Index is the position
// in Patterns of the last pattern that matched, or -1.
type CheckResult struct {
	File    string `json:"file"`
	Matched bool   `json:"matched"`
	Index   int    `json:"index"`
}

type options struct {
	separators []string
}

type Option func(*options)

// WithSeparators replaces the host separators rewritten to "/" before
// matching. An empty non-nil slice disables normalization.
func WithSeparators(seps []string) Option {
	return func(o *options) {
		o.separators = seps
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New wraps already compiled patterns. Null patterns are dropped.
func New(patterns []pattern.Pattern) *PathSpec {
	sources := make([]string, len(patterns))
	for i, p := range patterns {
		if p != nil {
			sources[i] = p.String()
		}
	}
	return build(patterns, sources)
}

func build(patterns []pattern.Pattern, sources []string) *PathSpec {
	ps := &PathSpec{
		patterns: make([]pattern.Pattern, 0, len(patterns)),
		sources:  make([]string, 0, len(patterns)),
	}
	for i, p := range patterns {
		if p == nil || p.Polarity() == pattern.Null {
			continue
		}
		ps.patterns = append(ps.patterns, p)
		ps.sources = append(ps.sources, sources[i])
	}
	return ps
}

// FromLines compiles each non-empty line with factory. Nothing is returned
// unless every line compiles.
func FromLines(factory pattern.Factory, lines []string) (*PathSpec, error) {
	return fromLines(factory, lines, pattern.Text)
}

// FromByteLines is FromLines for raw byte pattern lines.
func FromByteLines(factory pattern.Factory, lines [][]byte) (*PathSpec, error) {
	text := make([]string, len(lines))
	for i, line := range lines {
		text[i] = string(line)
	}
	return fromLines(factory, text, pattern.Bytes)
}

// FromNamedLines looks the factory up by name. A nil reg uses the builtin
// pattern styles.
func FromNamedLines(reg *registry.Registry, name string, lines []string) (*PathSpec, error) {
	if reg == nil {
		reg = registry.Builtin()
	}
	factory, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	return FromLines(factory, lines)
}

func fromLines(factory pattern.Factory, lines []string, enc pattern.Encoding) (*PathSpec, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil factory", registry.ErrInvalidRegistration)
	}

	compiled := make([]pattern.Pattern, 0, len(lines))
	sources := make([]string, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		p, err := factory(line, enc)
		if err != nil {
			return nil, fmt.Errorf("line %d %q: %w", i+1, line, err)
		}
		compiled = append(compiled, p)
		sources = append(sources, line)
	}

	spec := build(compiled, sources)
	logger.Debug("Compiled path spec", "lines", len(lines), "patterns", spec.Len(), "encoding", enc)
	return spec, nil
}

func (ps *PathSpec) Len() int {
	return len(ps.patterns)
}

// Patterns returns a copy of the effective patterns in match order.
func (ps *PathSpec) Patterns() []pattern.Pattern {
	out := make([]pattern.Pattern, len(ps.patterns))
	copy(out, ps.patterns)
	return out
}

// Sources returns the pattern lines behind Patterns, index for index.
// Specs built with New report each pattern's String instead.
func (ps *PathSpec) Sources() []string {
	out := make([]string, len(ps.sources))
	copy(out, ps.sources)
	return out
}

// Equal reports whether both specs hold pairwise equal patterns.
func (ps *PathSpec) Equal(other *PathSpec) bool {
	if ps == nil || other == nil {
		return ps == other
	}
	if len(ps.patterns) != len(other.patterns) {
		return false
	}
	for i, p := range ps.patterns {
		if !p.Equal(other.patterns[i]) {
			return false
		}
	}
	return true
}

// MatchFile reports whether file is selected.
func (ps *PathSpec) MatchFile(file string, opts ...Option) (bool, error) {
	res, err := ps.check(file, pattern.Text, buildOptions(opts))
	return res.Matched, err
}

func (ps *PathSpec) MatchFileBytes(file []byte, opts ...Option) (bool, error) {
	res, err := ps.check(string(file), pattern.Bytes, buildOptions(opts))
	return res.Matched, err
}

// Check is MatchFile that also reports the deciding pattern.
func (ps *PathSpec) Check(file string, opts ...Option) (CheckResult, error) {
	return ps.check(file, pattern.Text, buildOptions(opts))
}

func (ps *PathSpec) check(file string, enc pattern.Encoding, o options) (CheckResult, error) {
	res := CheckResult{File: file, Index: -1}
	norm := []string{normalize.File(file, o.separators)}

	for i, p := range ps.patterns {
		hits, err := p.Match(norm, enc)
		if err != nil {
			return CheckResult{File: file, Index: -1}, err
		}
		if len(hits) > 0 {
			res.Matched = p.Polarity() == pattern.Include
			res.Index = i
		}
	}
	return res, nil
}

// MatchFiles returns the selected files in their original spelling, in the
// order they were first seen. Inputs that normalize to the same path are
// reported once, using the last spelling given.
func (ps *PathSpec) MatchFiles(files []string, opts ...Option) ([]string, error) {
	o := buildOptions(opts)
	originals, order := normalize.Files(files, o.separators)

	matched, err := ps.fold(order, pattern.Text)
	if err != nil {
		return nil, err
	}
	return restore(matched, originals), nil
}

func (ps *PathSpec) MatchFilesBytes(files [][]byte, opts ...Option) ([][]byte, error) {
	o := buildOptions(opts)
	text := make([]string, len(files))
	for i, f := range files {
		text[i] = string(f)
	}
	originals, order := normalize.Files(text, o.separators)

	matched, err := ps.fold(order, pattern.Bytes)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(matched))
	for _, norm := range matched {
		out = append(out, []byte(originals[norm]))
	}
	return out, nil
}

// MatchFilesParallel is MatchFiles with the candidates split across workers.
// Each partition runs the full pattern fold, so the result equals MatchFiles.
func (ps *PathSpec) MatchFilesParallel(files []string, workers int, opts ...Option) ([]string, error) {
	o := buildOptions(opts)
	originals, order := normalize.Files(files, o.separators)

	matched, err := concurrent.Run(order, workers, func(chunk []string) ([]string, error) {
		return ps.fold(chunk, pattern.Text)
	})
	if err != nil {
		return nil, err
	}
	return restore(matched, originals), nil
}

// MatchTree walks root and returns the selected files relative to it.
func (ps *PathSpec) MatchTree(root string, opts ...Option) ([]string, error) {
	var files []string
	err := traversal.Walk(root, func(rel string) error {
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ps.MatchFiles(files, opts...)
}

// fold applies every pattern to the whole candidate set in order. Include
// hits join the selection and Exclude hits leave it. The result keeps the
// order of candidates.
func (ps *PathSpec) fold(candidates []string, enc pattern.Encoding) ([]string, error) {
	selected := make(map[string]bool, len(candidates))
	for _, p := range ps.patterns {
		hits, err := p.Match(candidates, enc)
		if err != nil {
			return nil, err
		}
		include := p.Polarity() == pattern.Include
		for _, hit := range hits {
			if include {
				selected[hit] = true
			} else {
				delete(selected, hit)
			}
		}
	}

	matched := make([]string, 0, len(selected))
	for _, c := range candidates {
		if selected[c] {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func restore(matched []string, originals map[string]string) []string {
	out := make([]string, 0, len(matched))
	for _, norm := range matched {
		out = append(out, originals[norm])
	}
	return out
}
