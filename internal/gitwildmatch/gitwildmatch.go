// Package gitwildmatch compiles gitignore-style pattern lines into
// anchored regular expressions.
//
// The produced expressions follow the shapes git check-ignore agrees with:
//
//	spam           ^(?:.+/)?spam(?:/.*)?$
//	/an/abs/path   ^an/abs/path(?:/.*)?$
//	dir/           ^(?:.+/)?dir/.*$
//	spam/**        ^spam/.*$
//	left/**/right  ^left(?:/.+)?/right(?:/.*)?$
//	**             ^.+$
//	**/            ^.+/.*$
//	!temp          ^(?:.+/)?temp$   (exclude)
package gitwildmatch

import (
	"fmt"
	"strings"

	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pattern"
)

const (
	// Name is the registry name of this pattern style.
	Name = "gitwildmatch"
	// AliasName is the older name kept for configurations written against it.
	AliasName = "gitignore"
)

const doubleStar = "**"

// Compile translates line and compiles the resulting expression.
func Compile(line string, enc pattern.Encoding) (*pattern.RegexPattern, error) {
	regex, polarity := PatternToRegex(line)
	p, err := pattern.NewRegexPattern(regex, polarity, enc)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", line, err)
	}
	logger.Trace("Compiled pattern", "pattern", line, "regex", regex, "polarity", polarity)
	return p, nil
}

// New is the pattern.Factory for git wildmatch patterns.
func New(line string, enc pattern.Encoding) (pattern.Pattern, error) {
	p, err := Compile(line, enc)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PatternToRegex translates one pattern line. Blank lines, comments and the
// bare root pattern return an empty expression and pattern.Null.
func PatternToRegex(line string) (string, pattern.Polarity) {
	line = trimLine(line)
	if line == "" || line[0] == '#' || line == "/" {
		return "", pattern.Null
	}

	polarity := pattern.Include
	if line[0] == '!' {
		polarity = pattern.Exclude
		line = line[1:]
		if line == "" || line == "/" {
			return "", pattern.Null
		}
	}

	dirOnly := strings.HasSuffix(line, "/")
	segs := splitSegments(line)

	var b strings.Builder
	b.WriteByte('^')
	needSlash := false
	end := len(segs) - 1
	for i, seg := range segs {
		switch seg {
		case doubleStar:
			switch {
			case i == 0 && i == end && dirOnly:
				// "**/" matches below any directory, never a top-level file.
				b.WriteString(".+/.*")
			case i == 0 && i == end:
				b.WriteString(".+")
			case i == 0:
				b.WriteString("(?:.+/)?")
				needSlash = false
			case i == end:
				b.WriteString("/.*")
			default:
				b.WriteString("(?:/.+)?")
				needSlash = true
			}
		case "*":
			if needSlash {
				b.WriteByte('/')
			}
			b.WriteString("[^/]+")
			if i == end && polarity == pattern.Include {
				b.WriteString("(?:/.*)?")
			}
			needSlash = true
		default:
			if needSlash {
				b.WriteByte('/')
			}
			b.WriteString(translateSegment(seg))
			if i == end && polarity == pattern.Include {
				b.WriteString("(?:/.*)?")
			}
			needSlash = true
		}
	}
	b.WriteByte('$')

	return b.String(), polarity
}

// splitSegments splits a pattern body on "/" and rewrites anchoring and the
// directory marker in terms of "**" segments.
func splitSegments(line string) []string {
	segs := strings.Split(line, "/")

	if segs[0] == "" {
		// A leading slash anchors the pattern at the root.
		segs = segs[1:]
	} else if len(segs) == 1 || (len(segs) == 2 && segs[1] == "") {
		// No inner slash: match at any depth.
		if !isDoubleStar(segs[0]) {
			segs = append([]string{doubleStar}, segs...)
		}
	}

	// A trailing slash matches only below a directory of that name.
	if len(segs) > 1 && segs[len(segs)-1] == "" {
		segs[len(segs)-1] = doubleStar
	}

	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		if isDoubleStar(seg) {
			seg = doubleStar
			if len(out) > 0 && out[len(out)-1] == doubleStar {
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

func isDoubleStar(seg string) bool {
	if len(seg) < 2 {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] != '*' {
			return false
		}
	}
	return true
}

// trimLine drops the line terminator, leading blanks and unescaped
// trailing blanks.
func trimLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	line = strings.TrimLeft(line, " \t\r\n\v\f")

	end := len(line)
	for end > 0 && isSpace(line[end-1]) {
		backslashes := 0
		for i := end - 2; i >= 0 && line[i] == '\\'; i-- {
			backslashes++
		}
		if backslashes%2 == 1 {
			break
		}
		end--
	}
	return line[:end]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
