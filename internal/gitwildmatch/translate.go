package gitwildmatch

import "strings"

// translateSegment converts the glob syntax of one path segment into
// regular expression syntax.
func translateSegment(seg string) string {
	var b strings.Builder
	escape := false
	for i := 0; i < len(seg); {
		c := seg[i]
		i++

		switch {
		case escape:
			escape = false
			writeLiteral(&b, c)
		case c == '\\':
			escape = true
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		case c == '[':
			expr, next, ok := translateBracket(seg, i)
			if !ok {
				// Unterminated expressions are taken literally, as git does.
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(expr)
			i = next
		default:
			writeLiteral(&b, c)
		}
	}
	return b.String()
}

// translateBracket converts the bracket expression whose body starts at
// seg[start]. It returns the translated class and the index just past the
// closing bracket; ok is false when no closing bracket exists.
func translateBracket(seg string, start int) (expr string, next int, ok bool) {
	j := start
	if j < len(seg) && (seg[j] == '!' || seg[j] == '^') {
		j++
	}
	if j < len(seg) && seg[j] == ']' {
		j++
	}
	for j < len(seg) && seg[j] != ']' {
		switch {
		case seg[j] == '\\' && j+1 < len(seg):
			j += 2
		case isPosixClassStart(seg, j):
			j += posixClassLen(seg, j)
		default:
			j++
		}
	}
	if j >= len(seg) {
		return "", start, false
	}

	var b strings.Builder
	b.WriteByte('[')
	i := start
	if seg[i] == '!' || seg[i] == '^' {
		b.WriteByte('^')
		i++
	}
	for i < j {
		c := seg[i]
		switch {
		case c == '\\' && i+1 < j:
			writeClassLiteral(&b, seg[i+1])
			i += 2
		case c == '\\':
			b.WriteString(`\\`)
			i++
		case isPosixClassStart(seg, i):
			n := posixClassLen(seg, i)
			b.WriteString(seg[i : i+n])
			i += n
		default:
			b.WriteByte(c)
			i++
		}
	}
	b.WriteByte(']')
	return b.String(), j + 1, true
}

// isPosixClassStart reports whether a complete "[:name:]" starts at seg[i].
func isPosixClassStart(seg string, i int) bool {
	if i+1 >= len(seg) || seg[i] != '[' || seg[i+1] != ':' {
		return false
	}
	return strings.Contains(seg[i+2:], ":]")
}

func posixClassLen(seg string, i int) int {
	return 2 + strings.Index(seg[i+2:], ":]") + 2
}

// writeLiteral writes c so that it only matches itself. ASCII punctuation is
// backslash escaped; letters, digits, '_' and non-ASCII bytes pass through.
func writeLiteral(b *strings.Builder, c byte) {
	if c < 0x80 && !isWord(c) {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

func writeClassLiteral(b *strings.Builder, c byte) {
	if c < 0x80 && !isAlnum(c) {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isWord(c byte) bool {
	return isAlnum(c) || c == '_'
}
