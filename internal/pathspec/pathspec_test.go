package pathspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogdakke/pathspec/internal/gitwildmatch"
	"github.com/ogdakke/pathspec/internal/globmatch"
	"github.com/ogdakke/pathspec/internal/pattern"
	"github.com/ogdakke/pathspec/internal/registry"
)

func mustLines(t *testing.T, lines ...string) *PathSpec {
	t.Helper()
	spec, err := FromLines(gitwildmatch.New, lines)
	require.NoError(t, err)
	return spec
}

func TestRoundTrip(t *testing.T) {
	spec := mustLines(t, "*.py", "!special.py")

	matched, err := spec.MatchFiles([]string{"a.py", "special.py", "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, matched)
}

func TestLastMatchWins(t *testing.T) {
	spec := mustLines(t, "temp", "!temp/keep")

	tests := []struct {
		path     string
		expected bool
	}{
		{"temp/keep", false},
		{"temp/other", true},
		{"temp", true},
		{"src/temp", true},
		{"temporary", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			matched, err := spec.MatchFile(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, matched)
		})
	}

	reincluded := mustLines(t, "temp", "!temp/keep", "temp/keep")
	matched, err := reincluded.MatchFile("temp/keep")
	require.NoError(t, err)
	assert.True(t, matched, "a later include overrides the exclude")
}

func TestMatchFilesAgreesWithMatchFile(t *testing.T) {
	spec := mustLines(t,
		"# build output",
		"build/",
		"*.log",
		"!important.log",
		"/root.txt",
		"docs/**/draft-*",
	)

	files := []string{
		"build/out.bin",
		"src/build/obj.o",
		"debug.log",
		"logs/important.log",
		"logs/other.log",
		"root.txt",
		"sub/root.txt",
		"docs/a/b/draft-1.md",
		"docs/final.md",
		"main.go",
	}

	batch, err := spec.MatchFiles(files)
	require.NoError(t, err)

	var single []string
	for _, f := range files {
		ok, err := spec.MatchFile(f)
		require.NoError(t, err)
		if ok {
			single = append(single, f)
		}
	}

	assert.Equal(t, single, batch)
	assert.Equal(t, []string{
		"build/out.bin",
		"src/build/obj.o",
		"debug.log",
		"logs/other.log",
		"root.txt",
		"docs/a/b/draft-1.md",
	}, batch)
}

func TestEmptyAndNullLines(t *testing.T) {
	spec := mustLines(t, "", "# comment", "   ", "/", "*.txt")
	assert.Equal(t, 1, spec.Len())

	empty := mustLines(t)
	matched, err := empty.MatchFiles([]string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestNormalizationKeepsOriginalSpelling(t *testing.T) {
	spec := mustLines(t, "dir/*.txt")

	matched, err := spec.MatchFiles([]string{`dir\a.txt`, "dir/b.txt", "c.txt"}, WithSeparators([]string{`\`}))
	require.NoError(t, err)
	assert.Equal(t, []string{`dir\a.txt`, "dir/b.txt"}, matched)

	ok, err := spec.MatchFile(`dir\a.txt`, WithSeparators([]string{}))
	require.NoError(t, err)
	assert.False(t, ok, "normalization disabled")
}

func TestNormalizationCollisionLastWins(t *testing.T) {
	spec := mustLines(t, "*.txt")

	matched, err := spec.MatchFiles([]string{`a\b.txt`, "a/b.txt"}, WithSeparators([]string{`\`}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.txt"}, matched)
}

func TestCheck(t *testing.T) {
	spec := mustLines(t, "*.log", "!keep.log", "# comment", "tmp/")

	tests := []struct {
		file    string
		matched bool
		index   int
	}{
		{"debug.log", true, 0},
		{"keep.log", false, 1},
		{"tmp/keep.log", true, 2},
		{"main.go", false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			res, err := spec.Check(tt.file)
			require.NoError(t, err)
			assert.Equal(t, CheckResult{File: tt.file, Matched: tt.matched, Index: tt.index}, res)
		})
	}
}

func TestTypeMismatch(t *testing.T) {
	textSpec := mustLines(t, "*.py")
	byteSpec, err := FromByteLines(gitwildmatch.New, [][]byte{[]byte("*.py")})
	require.NoError(t, err)

	_, err = textSpec.MatchFileBytes([]byte("a.py"))
	assert.ErrorIs(t, err, pattern.ErrTypeMismatch)

	_, err = textSpec.MatchFilesBytes([][]byte{[]byte("a.py")})
	assert.ErrorIs(t, err, pattern.ErrTypeMismatch)

	_, err = byteSpec.MatchFile("a.py")
	assert.ErrorIs(t, err, pattern.ErrTypeMismatch)

	_, err = byteSpec.MatchFiles([]string{"a.py"})
	assert.ErrorIs(t, err, pattern.ErrTypeMismatch)

	ok, err := byteSpec.MatchFileBytes([]byte("pkg/a.py"))
	require.NoError(t, err)
	assert.True(t, ok)

	matched, err := byteSpec.MatchFilesBytes([][]byte{[]byte("a.py"), []byte("b.c")})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a.py")}, matched)
}

func TestByteLinesOutsideUTF8(t *testing.T) {
	spec, err := FromByteLines(gitwildmatch.New, [][]byte{
		[]byte("caf\xe9.txt"),
		[]byte("na?ve/"),
		[]byte("[\xe0\xe1].log"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, spec.Len())

	files := [][]byte{
		[]byte("caf\xe9.txt"),
		[]byte("cafe.txt"),
		[]byte("dir/caf\xe9.txt"),
		[]byte("na\xefve/readme"),
		[]byte("\xe1.log"),
		[]byte("\xe2.log"),
	}
	matched, err := spec.MatchFilesBytes(files)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{
		[]byte("caf\xe9.txt"),
		[]byte("dir/caf\xe9.txt"),
		[]byte("na\xefve/readme"),
		[]byte("\xe1.log"),
	}, matched)

	ok, err := spec.MatchFileBytes([]byte("caf\xe9.txt"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFromNamedLines(t *testing.T) {
	spec, err := FromNamedLines(nil, gitwildmatch.Name, []string{"*.py"})
	require.NoError(t, err)

	alias, err := FromNamedLines(nil, gitwildmatch.AliasName, []string{"*.py"})
	require.NoError(t, err)
	assert.True(t, spec.Equal(alias))

	_, err = FromNamedLines(nil, "nope", []string{"*.py"})
	assert.ErrorIs(t, err, registry.ErrUnknownPattern)

	var unknown *registry.UnknownPatternError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.Name)

	reg := registry.New()
	require.NoError(t, reg.Register("mine", globmatch.NewGlob, false))
	globSpec, err := FromNamedLines(reg, "mine", []string{"*.py"})
	require.NoError(t, err)

	ok, err := globSpec.MatchFile("a.py")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = globSpec.MatchFile("pkg/a.py")
	require.NoError(t, err)
	assert.False(t, ok, "glob * does not cross separators")
}

func TestConstructionIsAtomic(t *testing.T) {
	spec, err := FromLines(gitwildmatch.New, []string{"*.py", "[z-a]", "*.go"})
	assert.Nil(t, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)
	assert.Contains(t, err.Error(), "line 2")

	_, err = FromLines(nil, []string{"*.py"})
	assert.ErrorIs(t, err, registry.ErrInvalidRegistration)
}

func TestEqual(t *testing.T) {
	a := mustLines(t, "*.py", "!x.py")
	b := mustLines(t, "# same rules", "*.py", "", "!x.py")
	c := mustLines(t, "!x.py", "*.py")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.Len(t, a.Patterns(), 2)
	assert.Equal(t, []string{"*.py", "!x.py"}, b.Sources())
}

func TestNewDropsNullPatterns(t *testing.T) {
	null, err := gitwildmatch.New("# comment", pattern.Text)
	require.NoError(t, err)
	compiled, err := gitwildmatch.New("*.go", pattern.Text)
	require.NoError(t, err)

	spec := New([]pattern.Pattern{null, compiled, nil})
	assert.Equal(t, 1, spec.Len())
	assert.Equal(t, []string{compiled.String()}, spec.Sources())
}

func TestMatchFilesParallel(t *testing.T) {
	spec := mustLines(t, "*.tmp", "!keep-*.tmp", "cache/", "/top.txt")

	var files []string
	for i := 0; i < 500; i++ {
		switch i % 5 {
		case 0:
			files = append(files, fmt.Sprintf("dir%d/file%d.tmp", i%7, i))
		case 1:
			files = append(files, fmt.Sprintf("dir%d/keep-%d.tmp", i%7, i))
		case 2:
			files = append(files, fmt.Sprintf("cache/%d.bin", i))
		case 3:
			files = append(files, fmt.Sprintf("src/%d.go", i))
		default:
			files = append(files, "top.txt")
		}
	}

	sequential, err := spec.MatchFiles(files)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 3, 16} {
		parallel, err := spec.MatchFilesParallel(files, workers)
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel, "workers=%d", workers)
	}

	byteSpec, err := FromByteLines(gitwildmatch.New, [][]byte{[]byte("*.tmp")})
	require.NoError(t, err)
	_, err = byteSpec.MatchFilesParallel(files, 4)
	assert.ErrorIs(t, err, pattern.ErrTypeMismatch)
}

func TestMatchTree(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a.py", "special.py", "pkg/b.py", "pkg/c.txt", "build/out.o"} {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, nil, 0644))
	}

	spec := mustLines(t, "*.py", "!special.py", "build/")
	matched, err := spec.MatchTree(root)
	require.NoError(t, err)

	expected := []string{"a.py", filepath.Join("build", "out.o"), filepath.Join("pkg", "b.py")}
	assert.ElementsMatch(t, expected, matched)
}
