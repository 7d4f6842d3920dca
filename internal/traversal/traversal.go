// Package traversal walks directory trees and reports regular files
// relative to the walk root, following symlinks and detecting recursion.
package traversal

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/ogdakke/pathspec/internal/logger"
)

// ErrRecursion matches any *RecursionError.
var ErrRecursion = errors.New("directory recursion detected")

// RecursionError reports a directory whose real path is already one of its
// own ancestors.
type RecursionError struct {
	RealPath   string
	FirstPath  string
	SecondPath string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("real path %q was encountered at %q and then %q", e.RealPath, e.FirstPath, e.SecondPath)
}

func (e *RecursionError) Is(target error) bool {
	return target == ErrRecursion
}

// FileFunc receives each regular file path relative to the walk root.
type FileFunc func(rel string) error

var errStop = errors.New("stop walk")

// Walk visits every regular file below root depth first, in directory order.
// Symlinks are followed. Returning an error from fn stops the walk.
func Walk(root string, fn FileFunc) error {
	rootFull, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", root, err)
	}

	logger.Debug("Walking tree", "root", rootFull)
	return walkDir(rootFull, "", make(map[string]string), fn)
}

func walkDir(rootFull, dirRel string, memo map[string]string, fn FileFunc) error {
	dirFull := filepath.Join(rootFull, dirRel)
	dirReal, err := realPath(dirFull)
	if err != nil {
		return err
	}

	if first, seen := memo[dirReal]; seen {
		return &RecursionError{RealPath: dirReal, FirstPath: first, SecondPath: dirRel}
	}
	memo[dirReal] = dirRel
	// The same directory may legitimately appear again on another branch.
	defer delete(memo, dirReal)

	entries, err := os.ReadDir(dirFull)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dirFull, err)
	}

	for _, entry := range entries {
		nodeRel := filepath.Join(dirRel, entry.Name())
		info, err := os.Stat(filepath.Join(rootFull, nodeRel))
		if err != nil {
			return fmt.Errorf("stat %s: %w", nodeRel, err)
		}

		switch {
		case info.IsDir():
			if err := walkDir(rootFull, nodeRel, memo, fn); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			logger.Trace("Found file", "path", nodeRel)
			if err := fn(nodeRel); err != nil {
				return err
			}
		}
	}
	return nil
}

// IterTree is the lazy form of Walk. A walk error is yielded once as the
// final element.
func IterTree(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := Walk(root, func(rel string) error {
			if !yield(rel, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", err)
		}
	}
}

func realPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return filepath.Abs(resolved)
}
