// Package snapshot compares scan results against golden JSON files.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ogdakke/pathspec/internal/domain"
	"github.com/ogdakke/pathspec/internal/scan"
)

type TestSnapshot struct {
	TestName string      `json:"test_name"`
	Options  TestOptions `json:"options"`
	Result   TestResult  `json:"result"`
}

type TestOptions struct {
	Lines           []string `json:"lines"`
	Style           string   `json:"style"`
	Invert          bool     `json:"invert"`
	IncludeDotfiles bool     `json:"include_dotfiles"`
	Nested          bool     `json:"nested"`
	WorkerCount     int      `json:"worker_count"`
}

// TestResult is the deterministic part of a domain.ScanResult.
type TestResult struct {
	Files        []string        `json:"files"`
	Rules        domain.RuleHits `json:"rules"`
	FilesFound   int             `json:"files_found"`
	FilesMatched int             `json:"files_matched"`
	FilesSkipped int             `json:"files_skipped"`
}

type SnapshotTester struct {
	snapshotDir  string
	baselineMode bool
}

func NewSnapshotTester(snapshotDir string, baselineMode bool) *SnapshotTester {
	return &SnapshotTester{
		snapshotDir:  snapshotDir,
		baselineMode: baselineMode,
	}
}

func (st *SnapshotTester) Test(t *testing.T, testName string, testDir string, options TestOptions) {
	t.Helper()

	result := st.runScan(t, testDir, options)

	snapshot := TestSnapshot{
		TestName: testName,
		Options:  options,
		Result: TestResult{
			Files:        result.Files,
			Rules:        result.RuleHits,
			FilesFound:   result.FilesFound,
			FilesMatched: result.FilesMatched,
			FilesSkipped: result.FilesSkipped,
		},
	}

	snapshotPath := filepath.Join(st.snapshotDir, testName+".json")

	if st.baselineMode {
		st.createSnapshot(t, snapshot, snapshotPath)
	} else {
		st.compareSnapshot(t, snapshot, snapshotPath)
	}
}

func (st *SnapshotTester) runScan(t *testing.T, testDir string, options TestOptions) domain.ScanResult {
	t.Helper()

	result, err := scan.Run(context.Background(), scan.Options{
		Directory:       testDir,
		Lines:           options.Lines,
		Style:           options.Style,
		Workers:         options.WorkerCount,
		Invert:          options.Invert,
		IncludeDotfiles: options.IncludeDotfiles,
		Nested:          options.Nested,
	}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return result
}

func (st *SnapshotTester) createSnapshot(t *testing.T, snapshot TestSnapshot, snapshotPath string) {
	t.Helper()

	if err := os.MkdirAll(st.snapshotDir, 0755); err != nil {
		t.Fatalf("Failed to create snapshot directory: %v", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}

	if err := os.WriteFile(snapshotPath, append(data, '\n'), 0644); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}

	t.Logf("Created snapshot: %s", snapshotPath)
}

func (st *SnapshotTester) compareSnapshot(t *testing.T, snapshot TestSnapshot, snapshotPath string) {
	t.Helper()

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		t.Fatalf("Failed to read snapshot %s: %v. Run with UPDATE_SNAPSHOTS=1 to create baseline.", snapshotPath, err)
	}

	var expected TestSnapshot
	if err := json.Unmarshal(data, &expected); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}

	if diff := Diff(expected, snapshot); diff != "" {
		t.Errorf("Snapshot mismatch for %s (-expected +actual):\n%s", snapshot.TestName, diff)
	}
}

// Diff compares two snapshots. Percentages only need to agree to two
// decimals, and nil and empty slices are equal.
func Diff(expected, actual TestSnapshot) string {
	return cmp.Diff(expected, actual,
		cmpopts.EquateEmpty(),
		cmpopts.EquateApprox(0, 0.01),
	)
}

func IsBaselineMode() bool {
	return os.Getenv("UPDATE_SNAPSHOTS") == "1" ||
		os.Getenv("BASELINE_MODE") == "1" ||
		strings.Contains(strings.Join(os.Args, " "), "-update-snapshots")
}
