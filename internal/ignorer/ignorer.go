package ignorer

import (
	"path/filepath"
	"strings"

	"github.com/ogdakke/pathspec/internal/gitignore"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pathspec"
	"github.com/ogdakke/pathspec/internal/pattern"
)

type Config struct {
	IncludeDotfiles bool
	// Nested also selects files matched by ignore files found in the tree.
	Nested bool
	// Factory compiles nested ignore files; required when Nested is set.
	Factory pattern.Factory
	// Workers splits batch matching; 1 matches sequentially, 0 uses every CPU.
	Workers int
}

// Matcher decides which walked files are selected.
type Matcher struct {
	spec            *pathspec.PathSpec
	nested          *gitignore.Matcher
	includeDotfiles bool
	workers         int
}

func NewMatcher(basePath string, spec *pathspec.PathSpec, cfg Config) (*Matcher, error) {
	matcher := &Matcher{
		spec:            spec,
		includeDotfiles: cfg.IncludeDotfiles,
		workers:         cfg.Workers,
	}

	if cfg.Nested {
		nested, err := gitignore.NewMatcher(basePath, cfg.Factory)
		if err != nil {
			return nil, err
		}
		if err := nested.LoadTree(); err != nil {
			return nil, err
		}
		matcher.nested = nested
	}

	return matcher, nil
}

func (m *Matcher) Spec() *pathspec.PathSpec {
	return m.spec
}

// Candidates drops dotfiles, and files below dot directories, unless they
// were asked for. It returns the kept files and the number dropped.
func (m *Matcher) Candidates(files []string) ([]string, int) {
	if m.includeDotfiles {
		return files, 0
	}

	kept := make([]string, 0, len(files))
	for _, f := range files {
		if isHidden(f) {
			logger.Trace("Skipping dotfile", "path", f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, len(files) - len(kept)
}

// Select returns the files picked by the pattern set or, when enabled, by
// the nested ignore files. Input order is kept.
func (m *Matcher) Select(files []string) ([]string, error) {
	var (
		selected []string
		err      error
	)
	if m.workers == 1 {
		selected, err = m.spec.MatchFiles(files)
	} else {
		selected, err = m.spec.MatchFilesParallel(files, m.workers)
	}
	if err != nil || m.nested == nil {
		return selected, err
	}

	picked := make(map[string]bool, len(selected))
	for _, f := range selected {
		picked[f] = true
	}

	merged := make([]string, 0, len(files))
	for _, f := range files {
		if picked[f] {
			merged = append(merged, f)
			continue
		}
		ignored, err := m.nested.ShouldIgnore(f)
		if err != nil {
			return nil, err
		}
		if ignored {
			merged = append(merged, f)
		}
	}
	return merged, nil
}

// Check reports the pattern that decided file.
func (m *Matcher) Check(file string) (pathspec.CheckResult, error) {
	return m.spec.Check(file)
}

func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
