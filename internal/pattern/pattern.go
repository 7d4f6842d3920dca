package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is returned when a pattern compiled from one text
	// encoding is matched against paths of the other encoding.
	ErrTypeMismatch = errors.New("pattern and path encodings differ")
	// ErrInvalidPattern is returned when a pattern line cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")
)

type Polarity uint8

const (
	// Null patterns compile to nothing and never take part in matching.
	Null Polarity = iota
	// Include patterns select the paths they match.
	Include
	// Exclude patterns ("!" prefixed) deselect the paths they match.
	Exclude
)

func (p Polarity) String() string {
	switch p {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "null"
	}
}

// Encoding is the representation pattern text or path text arrived in.
type Encoding uint8

const (
	Text Encoding = iota
	Bytes
)

func (e Encoding) String() string {
	if e == Bytes {
		return "bytes"
	}
	return "text"
}

// Pattern is one compiled pattern line.
type Pattern interface {
	Polarity() Polarity
	Encoding() Encoding
	// Match returns the subset of files hit by the pattern. enc describes
	// the representation the caller's files arrived in.
	Match(files []string, enc Encoding) ([]string, error)
	Equal(other Pattern) bool
	String() string
}

// Factory compiles a single raw pattern line.
type Factory func(line string, enc Encoding) (Pattern, error)

// CheckEncoding returns ErrTypeMismatch when the encodings differ.
func CheckEncoding(patternEnc, pathEnc Encoding) error {
	if patternEnc != pathEnc {
		return fmt.Errorf("%w: pattern is %s, paths are %s", ErrTypeMismatch, patternEnc, pathEnc)
	}
	return nil
}
