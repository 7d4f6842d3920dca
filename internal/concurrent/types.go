package concurrent

import (
	"sort"
	"sync"
	"sync/atomic"
)

// MatchJob is one partition of the candidate paths.
type MatchJob struct {
	ID    int
	Paths []string
}

type MatchResult struct {
	ID      int
	Matched []string
	Err     error
}

// MatchFunc applies a full, ordered rule fold to a partition of paths.
type MatchFunc func(paths []string) ([]string, error)

type WorkerPool struct {
	workerCount int
	match       MatchFunc
	jobs        chan MatchJob
	results     chan MatchResult
	done        chan struct{}
	processed   atomic.Int64
	wg          sync.WaitGroup
}

// ResultCollector reassembles partition results in job order.
type ResultCollector struct {
	results      map[int][]string
	err          error
	pathsMatched int
	mu           sync.RWMutex
}

func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make(map[int][]string),
	}
}

func (rc *ResultCollector) AddResult(result MatchResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if result.Err != nil {
		if rc.err == nil {
			rc.err = result.Err
		}
		return
	}
	rc.results[result.ID] = result.Matched
	rc.pathsMatched += len(result.Matched)
}

// GetResults returns matched paths ordered by job ID, or the first error
// reported by any worker.
func (rc *ResultCollector) GetResults() ([]string, error) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.err != nil {
		return nil, rc.err
	}

	ids := make([]int, 0, len(rc.results))
	for id := range rc.results {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	matched := make([]string, 0, rc.pathsMatched)
	for _, id := range ids {
		matched = append(matched, rc.results[id]...)
	}
	return matched, nil
}
