// Package scan runs a pattern set against a directory tree: it compiles
// the patterns, walks the tree, selects files and tallies rule hits.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/ogdakke/pathspec/internal/domain"
	"github.com/ogdakke/pathspec/internal/gitignore"
	"github.com/ogdakke/pathspec/internal/gitwildmatch"
	"github.com/ogdakke/pathspec/internal/ignorer"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pathspec"
	"github.com/ogdakke/pathspec/internal/pattern"
	"github.com/ogdakke/pathspec/internal/registry"
	"github.com/ogdakke/pathspec/internal/traversal"
)

type Options struct {
	Directory string
	// Lines are applied after the lines read from PatternFiles.
	Lines        []string
	PatternFiles []string
	Style        string
	Registry     *registry.Registry

	Workers         int
	Invert          bool
	IncludeDotfiles bool
	Nested          bool
}

// ProgressFunc receives the number of files found so far and, once
// matching is done, the number selected.
type ProgressFunc func(filesFound, filesMatched int)

const progressInterval = 256

// Compile resolves the style and compiles the pattern files followed by
// the explicit lines.
func Compile(opts Options) (*pathspec.PathSpec, pattern.Factory, error) {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Builtin()
	}
	style := opts.Style
	if style == "" {
		style = gitwildmatch.Name
	}

	factory, err := reg.Lookup(style)
	if err != nil {
		return nil, nil, err
	}

	var lines []string
	if len(opts.PatternFiles) > 0 {
		fileLines, err := gitignore.LoadFiles(opts.PatternFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load pattern files: %w", err)
		}
		lines = append(lines, fileLines...)
	}
	lines = append(lines, opts.Lines...)

	spec, err := pathspec.FromLines(factory, lines)
	if err != nil {
		return nil, nil, fmt.Errorf("could not compile patterns: %w", err)
	}
	return spec, factory, nil
}

func Run(ctx context.Context, opts Options, progress ProgressFunc) (domain.ScanResult, error) {
	startTime := time.Now()
	if progress == nil {
		progress = func(int, int) {}
	}

	logger.Info("Compiling patterns", "style", opts.Style, "lines", len(opts.Lines), "files", len(opts.PatternFiles))
	compileStart := time.Now()
	spec, factory, err := Compile(opts)
	if err != nil {
		logger.Error("Could not compile patterns", "error", err)
		return domain.ScanResult{}, err
	}

	matcher, err := ignorer.NewTimingMatcher(opts.Directory, spec, ignorer.Config{
		IncludeDotfiles: opts.IncludeDotfiles,
		Nested:          opts.Nested,
		Factory:         factory,
		Workers:         opts.Workers,
	})
	if err != nil {
		logger.Error("Could not load nested ignore files", "error", err)
		return domain.ScanResult{}, fmt.Errorf("could not load nested ignore files: %w", err)
	}
	compileDuration := time.Since(compileStart)

	logger.Info("Starting file traversal", "directory", opts.Directory, "workers", opts.Workers)
	traversalStart := time.Now()
	files, err := walk(ctx, opts, progress)
	traversalDuration := time.Since(traversalStart)
	if err != nil {
		logger.Error("Error during traversal", "error", err, "duration", traversalDuration)
		return domain.ScanResult{}, fmt.Errorf("error walking %s: %w", opts.Directory, err)
	}

	candidates, skipped := matcher.Candidates(files)
	selected, hits, err := Evaluate(matcher, candidates)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("error matching files: %w", err)
	}
	matchDuration := matcher.GetMatchTime()

	if opts.Invert {
		selected = Complement(candidates, selected)
	}
	progress(len(files), len(selected))

	logger.Info("Scan completed",
		"files_found", len(files),
		"files_skipped", skipped,
		"files_matched", len(selected),
		"compile_duration", compileDuration,
		"traversal_duration", traversalDuration,
		"match_duration", matchDuration)

	return domain.ScanResult{
		Files:        selected,
		Candidates:   candidates,
		RuleHits:     hits,
		Patterns:     spec.Len(),
		FilesFound:   len(files),
		FilesMatched: len(selected),
		FilesSkipped: skipped,
		Inverted:     opts.Invert,
		Timing: domain.TimingBreakdown{
			TotalDuration:     time.Since(startTime),
			CompileDuration:   compileDuration,
			TraversalDuration: traversalDuration,
			MatchDuration:     matchDuration,
		},
	}, nil
}

func walk(ctx context.Context, opts Options, progress ProgressFunc) ([]string, error) {
	if opts.Workers != 1 {
		files, err := traversal.WalkConcurrent(ctx, opts.Directory, opts.Workers)
		if err == nil {
			progress(len(files), 0)
		}
		return files, err
	}

	var files []string
	err := traversal.Walk(opts.Directory, func(rel string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		files = append(files, rel)
		if len(files)%progressInterval == 0 {
			progress(len(files), 0)
		}
		return nil
	})
	if err == nil {
		progress(len(files), 0)
	}
	return files, err
}

// Complement returns the members of all missing from selected, in order.
func Complement(all, selected []string) []string {
	picked := make(map[string]bool, len(selected))
	for _, f := range selected {
		picked[f] = true
	}
	rest := make([]string, 0, max(0, len(all)-len(selected)))
	for _, f := range all {
		if !picked[f] {
			rest = append(rest, f)
		}
	}
	return rest
}
