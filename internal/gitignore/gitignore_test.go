package gitignore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/ogdakke/pathspec/internal/gitwildmatch"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Plain", "*.log\nbuild/\n", []string{"*.log", "build/"}},
		{"No trailing newline", "*.log\n*.tmp", []string{"*.log", "*.tmp"}},
		{"CRLF", "*.log\r\nbuild/\r\n", []string{"*.log", "build/"}},
		{"BOM", "\xEF\xBB\xBF*.log\n", []string{"*.log"}},
		{"Comments and blanks kept", "# c\n\n*.go\n", []string{"# c", "", "*.go"}},
		{"Escaped trailing space kept", "foo\\ \n", []string{"foo\\ "}},
		{"Empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := ReadLines(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !slices.Equal(lines, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, lines)
			}
		})
	}
}

func TestLoadFiles(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "gitignore_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	first := filepath.Join(tempDir, "first")
	second := filepath.Join(tempDir, "second")
	writeFile(t, first, "*.log\n")
	writeFile(t, second, "!keep.log\n")

	lines, err := LoadFiles([]string{first, second})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !slices.Equal(lines, []string{"*.log", "!keep.log"}) {
		t.Errorf("Unexpected lines: %q", lines)
	}

	missingA := filepath.Join(tempDir, "missing-a")
	missingB := filepath.Join(tempDir, "missing-b")
	lines, err = LoadFiles([]string{first, missingA, missingB})
	if err == nil {
		t.Fatal("Expected error for missing files")
	}
	if lines != nil {
		t.Errorf("Expected no lines on failure, got %q", lines)
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("Expected 2 aggregated errors, got %d", len(merr.Errors))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist in %v", err)
	}
}

func TestNewMatcher(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "gitignore_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	matcher, err := NewMatcher(tempDir, gitwildmatch.New)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if matcher == nil {
		t.Fatal("Expected matcher, got nil")
	}
	if matcher.Directories() != 0 {
		t.Errorf("Expected no directories, got %d", matcher.Directories())
	}

	gitignoreContent := `# This is a comment
*.log
node_modules/
build/
# Another comment

*.tmp`
	writeFile(t, filepath.Join(tempDir, FileName), gitignoreContent)

	matcher, err = NewMatcher(tempDir, gitwildmatch.New)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if matcher.Directories() != 1 {
		t.Fatalf("Expected 1 directory, got %d", matcher.Directories())
	}
	if got := matcher.specs["."].Len(); got != 4 {
		t.Errorf("Expected 4 patterns, got %d", got)
	}
	if !Exists(tempDir) {
		t.Error("Expected ignore file to exist")
	}
}

func TestNewMatcherInvalidPattern(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, FileName), "[z-a]\n")

	if _, err := NewMatcher(tempDir, gitwildmatch.New); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestShouldIgnoreWithNilMatcher(t *testing.T) {
	var matcher *Matcher
	result, err := matcher.ShouldIgnore("some/path")
	if err != nil || result {
		t.Errorf("Expected false for nil matcher, got %v, %v", result, err)
	}
}

func TestHierarchicalGitignore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "gitignore_hierarchy_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	writeFile(t, filepath.Join(tempDir, FileName), "*.log\n")
	writeFile(t, filepath.Join(tempDir, "project", FileName), "*.tmp\nbuild/\n!keep.log\n")
	writeFile(t, filepath.Join(tempDir, "project", "src", FileName), "*.bak\n")
	writeFile(t, filepath.Join(tempDir, "project", "src", "utils.go"), "package src")

	matcher, err := NewMatcher(tempDir, gitwildmatch.New)
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}
	if err := matcher.LoadTree(); err != nil {
		t.Fatalf("Failed to load tree: %v", err)
	}
	if matcher.Directories() != 3 {
		t.Fatalf("Expected 3 directories, got %d", matcher.Directories())
	}

	tests := []struct {
		path     string
		expected bool
		desc     string
	}{
		{"debug.log", true, "root level .log file"},
		{"project/app.log", true, "project level .log file (inherited from root)"},
		{"project/src/error.log", true, "src level .log file (inherited from root)"},
		{"project/keep.log", false, "re-included by the project ignore file"},
		{"keep.log", true, "root keep.log not covered by project negation"},

		{"project/temp.tmp", true, "project level .tmp file"},
		{"project/src/cache.tmp", true, "src level .tmp file (inherited from project)"},
		{"project/build/output.txt", true, "files in build directory"},

		{"project/src/backup.bak", true, "src level .bak file"},

		{"readme.txt", false, "root level regular file"},
		{"project/main.go", false, "project level regular file"},
		{"project/src/utils.go", false, "src level regular file"},
		{"temp.tmp", false, ".tmp file at root (not covered by project ignore file)"},
		{"backup.bak", false, ".bak file at root (not covered by src ignore file)"},
	}

	for _, test := range tests {
		result, err := matcher.ShouldIgnore(filepath.FromSlash(test.path))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", test.desc, err)
		}
		if result != test.expected {
			t.Errorf("%s: path %q expected %v, got %v", test.desc, test.path, test.expected, result)
		}
	}
}
