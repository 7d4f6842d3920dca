// Package normalize rewrites host path separators to "/".
package normalize

import (
	"os"
	"strings"
)

// Separator is the only separator patterns are written against.
const Separator = "/"

// DefaultSeparators returns the separators used by the host other than "/".
func DefaultSeparators() []string {
	if os.PathSeparator != '/' {
		return []string{string(os.PathSeparator)}
	}
	return []string{}
}

// File rewrites every separator in seps to "/". A nil seps uses
// DefaultSeparators; an empty non-nil slice leaves file untouched.
func File(file string, seps []string) string {
	if seps == nil {
		seps = DefaultSeparators()
	}
	for _, sep := range seps {
		if sep == "" || sep == Separator {
			continue
		}
		file = strings.ReplaceAll(file, sep, Separator)
	}
	return file
}

// Files normalizes files and maps each normalized path back to the caller's
// spelling. When two inputs normalize to the same path the later one wins.
// order holds each normalized path once, in first-seen order.
func Files(files []string, seps []string) (originals map[string]string, order []string) {
	originals = make(map[string]string, len(files))
	order = make([]string, 0, len(files))
	for _, f := range files {
		norm := File(f, seps)
		if _, seen := originals[norm]; !seen {
			order = append(order, norm)
		}
		originals[norm] = f
	}
	return originals, order
}
