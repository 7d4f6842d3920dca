// Package gitignore reads ignore-file pattern lines from disk.
package gitignore

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/ogdakke/pathspec/internal/logger"
)

// FileName is the per-directory ignore file picked up by LoadTree.
const FileName = ".gitignore"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadLines splits r into pattern lines. A leading UTF-8 byte order mark is
// dropped and CRLF line endings are accepted. Lines are otherwise returned
// verbatim, comments and blanks included, so the pattern compiler decides
// what they mean.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if first {
			line = bytes.TrimPrefix(line, utf8BOM)
			first = false
		}
		lines = append(lines, string(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadFile reads the pattern lines of a single file.
func LoadFile(path string) ([]string, error) {
	logger.Debug("Loading pattern file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	logger.Trace("Pattern file loaded", "path", path, "lines", len(lines))
	return lines, nil
}

// LoadFiles concatenates the lines of every file in order. Every file is
// attempted and all failures are reported together; no lines are returned
// unless every file loaded.
func LoadFiles(paths []string) ([]string, error) {
	var (
		lines  []string
		result *multierror.Error
	)
	for _, path := range paths {
		fileLines, err := LoadFile(path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		lines = append(lines, fileLines...)
	}

	if err := result.ErrorOrNil(); err != nil {
		logger.Error("Cannot load pattern files", "failed", len(result.Errors), "error", err)
		return nil, err
	}
	return lines, nil
}
