package traversal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ogdakke/pathspec/internal/logger"
)

// ancestor is an immutable link in the chain from a directory up to the root.
type ancestor struct {
	real   string
	rel    string
	parent *ancestor
}

func (a *ancestor) find(real string) (string, bool) {
	for node := a; node != nil; node = node.parent {
		if node.real == real {
			return node.rel, true
		}
	}
	return "", false
}

type concurrentWalker struct {
	rootFull string
	group    *errgroup.Group
	ctx      context.Context

	mu    sync.Mutex
	files []string
}

// WalkConcurrent walks root like Walk, descending into sibling directories
// on up to workers goroutines. The result is sorted.
func WalkConcurrent(ctx context.Context, root string, workers int) ([]string, error) {
	rootFull, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	w := &concurrentWalker{rootFull: rootFull, group: group, ctx: gctx}

	logger.Debug("Walking tree concurrently", "root", rootFull, "workers", workers)
	group.Go(func() error {
		return w.walkDir("", nil)
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(w.files)
	return w.files, nil
}

func (w *concurrentWalker) walkDir(dirRel string, chain *ancestor) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	dirFull := filepath.Join(w.rootFull, dirRel)
	dirReal, err := realPath(dirFull)
	if err != nil {
		return err
	}

	if first, seen := chain.find(dirReal); seen {
		return &RecursionError{RealPath: dirReal, FirstPath: first, SecondPath: dirRel}
	}
	chain = &ancestor{real: dirReal, rel: dirRel, parent: chain}

	entries, err := os.ReadDir(dirFull)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dirFull, err)
	}

	for _, entry := range entries {
		nodeRel := filepath.Join(dirRel, entry.Name())
		info, err := os.Stat(filepath.Join(w.rootFull, nodeRel))
		if err != nil {
			return fmt.Errorf("stat %s: %w", nodeRel, err)
		}

		switch {
		case info.IsDir():
			// With every worker busy the subdirectory is walked inline.
			if !w.group.TryGo(func() error { return w.walkDir(nodeRel, chain) }) {
				if err := w.walkDir(nodeRel, chain); err != nil {
					return err
				}
			}
		case info.Mode().IsRegular():
			w.mu.Lock()
			w.files = append(w.files, nodeRel)
			w.mu.Unlock()
		}
	}
	return nil
}
