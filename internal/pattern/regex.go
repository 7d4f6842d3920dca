package pattern

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// RegexPattern matches paths with a regular expression compiled from a
// pattern line.
type RegexPattern struct {
	source   string
	regex    *regexp.Regexp
	polarity Polarity
	encoding Encoding
}

// NewRegexPattern compiles source. A Null polarity yields a pattern that
// matches nothing and source is ignored.
func NewRegexPattern(source string, polarity Polarity, enc Encoding) (*RegexPattern, error) {
	p := &RegexPattern{
		polarity: polarity,
		encoding: enc,
	}
	if polarity == Null {
		return p, nil
	}

	expr := source
	if enc == Bytes {
		expr = latin1(source)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, source, err)
	}
	p.source = source
	p.regex = re
	return p, nil
}

func (p *RegexPattern) Polarity() Polarity { return p.polarity }
func (p *RegexPattern) Encoding() Encoding { return p.encoding }
func (p *RegexPattern) String() string     { return p.source }

// Regexp returns the compiled expression, nil for Null patterns.
func (p *RegexPattern) Regexp() *regexp.Regexp { return p.regex }

func (p *RegexPattern) Match(files []string, enc Encoding) ([]string, error) {
	if p.polarity == Null {
		return nil, nil
	}
	if err := CheckEncoding(p.encoding, enc); err != nil {
		return nil, err
	}

	var matched []string
	for _, f := range files {
		subject := f
		if enc == Bytes {
			subject = latin1(f)
		}
		if p.regex.MatchString(subject) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func (p *RegexPattern) Equal(other Pattern) bool {
	o, ok := other.(*RegexPattern)
	if !ok || o == nil {
		return false
	}
	return p.polarity == o.polarity && p.encoding == o.encoding && p.source == o.source
}

// latin1 maps every byte of s to the rune of the same value, so raw byte
// sequences that are not valid UTF-8 can be compiled and matched.
func latin1(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	buf := make([]byte, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		buf = utf8.AppendRune(buf, rune(s[i]))
	}
	return string(buf)
}
