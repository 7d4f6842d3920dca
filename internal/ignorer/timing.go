package ignorer

import (
	"sync/atomic"
	"time"

	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pathspec"
)

// TimingMatcher records how long loading nested ignore files, batch
// selection and single-file checks took. Safe for concurrent use.
type TimingMatcher struct {
	*Matcher
	loadTime   atomic.Int64
	selectTime atomic.Int64
	checkTime  atomic.Int64
	checks     atomic.Int64
}

func NewTimingMatcher(basePath string, spec *pathspec.PathSpec, cfg Config) (*TimingMatcher, error) {
	loadStart := time.Now()
	matcher, err := NewMatcher(basePath, spec, cfg)
	if err != nil {
		return nil, err
	}

	tm := &TimingMatcher{Matcher: matcher}
	loadDuration := observe(&tm.loadTime, loadStart)

	logger.Debug("Timing matcher created", "nested", cfg.Nested, "initial_load_duration", loadDuration)
	return tm, nil
}

func observe(total *atomic.Int64, start time.Time) time.Duration {
	d := time.Since(start)
	total.Add(int64(d))
	return d
}

func (tm *TimingMatcher) Select(files []string) ([]string, error) {
	start := time.Now()
	selected, err := tm.Matcher.Select(files)
	d := observe(&tm.selectTime, start)

	logger.Trace("Batch match timing", "files", len(files), "selected", len(selected), "duration", d)
	return selected, err
}

func (tm *TimingMatcher) Check(file string) (pathspec.CheckResult, error) {
	start := time.Now()
	res, err := tm.Matcher.Check(file)
	tm.checks.Add(1)
	if d := observe(&tm.checkTime, start); d > 100*time.Microsecond {
		logger.Trace("Slow check", "path", file, "rule", res.Index, "duration", d)
	}
	return res, err
}

func (tm *TimingMatcher) GetLoadTime() time.Duration {
	if tm == nil {
		return 0
	}
	return time.Duration(tm.loadTime.Load())
}

// GetMatchTime is the time spent in Select and Check together.
func (tm *TimingMatcher) GetMatchTime() time.Duration {
	if tm == nil {
		return 0
	}
	return time.Duration(tm.selectTime.Load() + tm.checkTime.Load())
}

func (tm *TimingMatcher) GetSelectTime() time.Duration {
	if tm == nil {
		return 0
	}
	return time.Duration(tm.selectTime.Load())
}

// Checks returns how many single-file checks ran.
func (tm *TimingMatcher) Checks() int64 {
	if tm == nil {
		return 0
	}
	return tm.checks.Load()
}

func (tm *TimingMatcher) GetTotalTime() time.Duration {
	if tm == nil {
		return 0
	}
	return tm.GetLoadTime() + tm.GetMatchTime()
}
