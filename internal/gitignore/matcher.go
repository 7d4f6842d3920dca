package gitignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pathspec"
	"github.com/ogdakke/pathspec/internal/pattern"
	"github.com/ogdakke/pathspec/internal/traversal"
)

// Matcher applies the ignore files found in a tree, each to the paths
// below its own directory. A decision made by a deeper file overrides the
// ones above it.
type Matcher struct {
	basePath string
	factory  pattern.Factory
	// Compiled ignore files keyed by directory relative to basePath; "." is the root.
	specs map[string]*pathspec.PathSpec
}

func NewMatcher(basePath string, factory pattern.Factory) (*Matcher, error) {
	matcher := &Matcher{
		basePath: basePath,
		factory:  factory,
		specs:    make(map[string]*pathspec.PathSpec),
	}

	if err := matcher.LoadDirectory("."); err != nil {
		return nil, err
	}
	return matcher, nil
}

// LoadDirectory compiles the ignore file of dirRel, if it has one.
func (m *Matcher) LoadDirectory(dirRel string) error {
	dirRel = filepath.Clean(dirRel)
	path := filepath.Join(m.basePath, dirRel, FileName)

	lines, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("No ignore file found", "path", path)
		return nil
	}
	if err != nil {
		logger.Error("Cannot open ignore file", "path", path, "error", err)
		return err
	}

	spec, err := pathspec.FromLines(m.factory, lines)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if spec.Len() > 0 {
		m.specs[dirRel] = spec
		logger.Info("Ignore patterns loaded", "patterns", spec.Len(), "dir", dirRel)
	}
	return nil
}

// LoadTree walks basePath and loads every nested ignore file.
func (m *Matcher) LoadTree() error {
	return traversal.Walk(m.basePath, func(rel string) error {
		if filepath.Base(rel) != FileName {
			return nil
		}
		dir := filepath.Dir(rel)
		if dir == "." {
			return nil
		}
		return m.LoadDirectory(dir)
	})
}

// Directories returns the number of directories with effective patterns.
func (m *Matcher) Directories() int {
	return len(m.specs)
}

// ShouldIgnore reports whether rel, a path relative to basePath, is selected
// by the closest ignore file that has an opinion about it.
func (m *Matcher) ShouldIgnore(rel string) (bool, error) {
	if m == nil {
		return false, nil
	}

	rel = filepath.Clean(rel)
	dir := filepath.Dir(rel)
	for {
		if spec, ok := m.specs[dir]; ok {
			sub := rel
			if dir != "." {
				var err error
				if sub, err = filepath.Rel(dir, rel); err != nil {
					return false, err
				}
			}

			res, err := spec.Check(sub)
			if err != nil {
				return false, err
			}
			if res.Index >= 0 {
				logger.Trace("Path decided by ignore file", "path", rel, "dir", dir, "ignored", res.Matched, "rule", res.Index)
				return res.Matched, nil
			}
		}

		if dir == "." {
			return false, nil
		}
		dir = filepath.Dir(dir)
	}
}

// Exists reports whether dir holds an ignore file.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil && info.Mode().IsRegular()
}
