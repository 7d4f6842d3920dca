// Package globmatch provides pattern styles backed by third-party glob
// engines. Lines use the same comment and "!" conventions as gitwildmatch,
// but the body is handed to the engine unchanged.
package globmatch

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pattern"
)

const (
	GlobName       = "glob"
	DoublestarName = "doublestar"
)

// Pattern is a compiled line of one of the glob styles.
type Pattern struct {
	style    string
	source   string
	polarity pattern.Polarity
	encoding pattern.Encoding
	match    func(path string) bool
}

func (p *Pattern) Polarity() pattern.Polarity { return p.polarity }
func (p *Pattern) Encoding() pattern.Encoding { return p.encoding }
func (p *Pattern) String() string             { return p.source }

func (p *Pattern) Match(files []string, enc pattern.Encoding) ([]string, error) {
	if p.polarity == pattern.Null {
		return nil, nil
	}
	if err := pattern.CheckEncoding(p.encoding, enc); err != nil {
		return nil, err
	}

	var matched []string
	for _, f := range files {
		if p.match(f) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func (p *Pattern) Equal(other pattern.Pattern) bool {
	o, ok := other.(*Pattern)
	if !ok || o == nil {
		return false
	}
	return p.style == o.style &&
		p.source == o.source &&
		p.polarity == o.polarity &&
		p.encoding == o.encoding
}

// NewGlob compiles line with gobwas/glob, "/" being the separator that
// single wildcards do not cross.
func NewGlob(line string, enc pattern.Encoding) (pattern.Pattern, error) {
	p, body := parseLine(GlobName, line, enc)
	if p.polarity == pattern.Null {
		return p, nil
	}

	g, err := glob.Compile(body, '/')
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", pattern.ErrInvalidPattern, line, err)
	}
	p.match = g.Match
	logger.Trace("Compiled glob pattern", "pattern", line, "polarity", p.polarity)
	return p, nil
}

// NewDoublestar compiles line with bmatcuk/doublestar.
func NewDoublestar(line string, enc pattern.Encoding) (pattern.Pattern, error) {
	p, body := parseLine(DoublestarName, line, enc)
	if p.polarity == pattern.Null {
		return p, nil
	}

	if !doublestar.ValidatePattern(body) {
		return nil, fmt.Errorf("%w: %q: %v", pattern.ErrInvalidPattern, line, doublestar.ErrBadPattern)
	}
	p.match = func(path string) bool {
		return doublestar.MatchUnvalidated(body, path)
	}
	logger.Trace("Compiled doublestar pattern", "pattern", line, "polarity", p.polarity)
	return p, nil
}

// parseLine handles blank lines, comments and negation shared by both styles.
func parseLine(style, line string, enc pattern.Encoding) (*Pattern, string) {
	p := &Pattern{style: style, encoding: enc, polarity: pattern.Null}

	body := strings.TrimSpace(line)
	if body == "" || strings.HasPrefix(body, "#") {
		return p, ""
	}

	p.polarity = pattern.Include
	if strings.HasPrefix(body, "!") {
		p.polarity = pattern.Exclude
		body = body[1:]
	} else if strings.HasPrefix(body, `\!`) || strings.HasPrefix(body, `\#`) {
		body = body[1:]
	}
	if body == "" {
		p.polarity = pattern.Null
		return p, ""
	}

	p.source = body
	return p, body
}
