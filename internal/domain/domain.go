package domain

import "time"

// RuleHit counts the files a pattern decided, i.e. the files for which it
// was the last matching pattern.
type RuleHit struct {
	Index      int     `json:"index"`
	Pattern    string  `json:"pattern"`
	Polarity   string  `json:"polarity"`
	Hits       int     `json:"hits"`
	Percentage float64 `json:"percentage"`
}

type RuleHits []RuleHit

func (r RuleHits) Len() int { return len(r) }
func (r RuleHits) Less(i, j int) bool {
	if r[i].Hits != r[j].Hits {
		return r[i].Hits > r[j].Hits
	}
	return r[i].Index < r[j].Index
}
func (r RuleHits) Swap(i, j int) { r[i], r[j] = r[j], r[i] }

type TimingBreakdown struct {
	TotalDuration     time.Duration `json:"total_duration"`
	CompileDuration   time.Duration `json:"compile_duration"`
	TraversalDuration time.Duration `json:"traversal_duration"`
	MatchDuration     time.Duration `json:"match_duration"`
}

type ScanResult struct {
	Files        []string
	Candidates   []string // walked files the patterns were applied to
	RuleHits     RuleHits
	Patterns     int
	FilesFound   int
	FilesMatched int
	FilesSkipped int
	Inverted     bool
	Timing       TimingBreakdown
}

type JSONMetadata struct {
	Directory    string          `json:"directory"`
	Style        string          `json:"style"`
	Patterns     int             `json:"patterns"`
	FilesFound   int             `json:"files_found"`
	FilesMatched int             `json:"files_matched"`
	FilesSkipped int             `json:"files_skipped"`
	Inverted     bool            `json:"inverted"`
	Timing       TimingBreakdown `json:"timing"`
}

type JSONResult struct {
	Files []string `json:"files"`
	Rules RuleHits `json:"rules"`
}

type JSONOutput struct {
	Result   JSONResult    `json:"result"`
	Metadata *JSONMetadata `json:"metadata,omitempty"`
}
