package scan

import (
	"sort"

	"github.com/ogdakke/pathspec/internal/domain"
	"github.com/ogdakke/pathspec/internal/pathspec"
)

// Decider is the part of ignorer.Matcher a scan needs.
type Decider interface {
	Select(files []string) ([]string, error)
	Check(file string) (pathspec.CheckResult, error)
	Spec() *pathspec.PathSpec
}

// Evaluate selects files and tallies which pattern decided each of them.
func Evaluate(d Decider, files []string) ([]string, domain.RuleHits, error) {
	selected, err := d.Select(files)
	if err != nil {
		return nil, nil, err
	}
	hits, err := RuleHits(d, files)
	if err != nil {
		return nil, nil, err
	}
	return selected, hits, nil
}

// RuleHits returns one entry per pattern, most decisive first. Patterns
// that decided nothing are included with zero hits.
func RuleHits(d Decider, files []string) (domain.RuleHits, error) {
	spec := d.Spec()
	patterns := spec.Patterns()
	sources := spec.Sources()

	counts := make([]int, len(patterns))
	for _, f := range files {
		res, err := d.Check(f)
		if err != nil {
			return nil, err
		}
		if res.Index >= 0 {
			counts[res.Index]++
		}
	}

	hits := make(domain.RuleHits, 0, len(patterns))
	for i, p := range patterns {
		var percentage float64
		if len(files) > 0 {
			percentage = float64(counts[i]) / float64(len(files)) * 100
		}
		hits = append(hits, domain.RuleHit{
			Index:      i,
			Pattern:    sources[i],
			Polarity:   p.Polarity().String(),
			Hits:       counts[i],
			Percentage: percentage,
		})
	}
	sort.Sort(hits)
	return hits, nil
}
