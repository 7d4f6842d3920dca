package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogdakke/pathspec/internal/domain"
)

func sampleResult() domain.ScanResult {
	return domain.ScanResult{
		Files: []string{"a.py", "pkg/b.py"},
		RuleHits: domain.RuleHits{
			{Index: 0, Pattern: "*.py", Polarity: "include", Hits: 2, Percentage: 50},
			{Index: 1, Pattern: "!special.py", Polarity: "exclude", Hits: 1, Percentage: 25},
		},
		Patterns:     2,
		FilesFound:   4,
		FilesMatched: 2,
		Timing:       domain.TimingBreakdown{TotalDuration: time.Millisecond},
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputter(&buf, true, "").Output(FormatJSON, "/test", "gitwildmatch", sampleResult()))

	var doc domain.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), "output is not valid JSON")

	assert.Equal(t, []string{"a.py", "pkg/b.py"}, doc.Result.Files)
	assert.Len(t, doc.Result.Rules, 2)
	require.NotNil(t, doc.Metadata)
	assert.Equal(t, "/test", doc.Metadata.Directory)
	assert.Equal(t, "gitwildmatch", doc.Metadata.Style)
	assert.Equal(t, 4, doc.Metadata.FilesFound)
	assert.Equal(t, time.Millisecond, doc.Metadata.Timing.TotalDuration)
}

func TestOutputJSONWithoutMetadata(t *testing.T) {
	var buf bytes.Buffer
	result := sampleResult()
	result.Files = nil
	require.NoError(t, NewOutputter(&buf, false, "").Output(FormatJSON, "/test", "glob", result))

	assert.NotContains(t, buf.String(), "metadata")
	assert.Contains(t, buf.String(), `"files": []`)
}

func TestOutputCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputter(&buf, false, "").Output(FormatCSV, "", "", sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"type", "value", "polarity", "hits"},
		{"file", "a.py", "", ""},
		{"file", "pkg/b.py", "", ""},
		{"rule", "*.py", "include", "2"},
		{"rule", "!special.py", "exclude", "1"},
	}, records)
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputter(&buf, false, "").Output(FormatTable, "", "", sampleResult()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Matched files:"))
	assert.Contains(t, out, "pkg/b.py")
	assert.Contains(t, out, "!special.py")
	assert.Contains(t, out, "50.00%")

	buf.Reset()
	inverted := sampleResult()
	inverted.Inverted = true
	require.NoError(t, NewOutputter(&buf, false, "").OutputTable(inverted))
	assert.True(t, strings.HasPrefix(buf.String(), "Unmatched files:"))
}

func TestOutputTemplate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		expected string
	}{
		{"Default", "", "a.py\npkg/b.py\n"},
		{"Sprig functions", `{{ .Result.Files | join "," | upper }}`, "A.PY,PKG/B.PY"},
		{"Metadata", `{{ .Metadata.FilesMatched }}/{{ .Metadata.FilesFound }} {{ .Metadata.Style }}`, "2/4 glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewOutputter(&buf, false, tt.tmpl).Output(FormatTemplate, "/d", "glob", sampleResult()))
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	var buf bytes.Buffer
	err := NewOutputter(&buf, false, "{{ .Nope").Output(FormatTemplate, "", "", sampleResult())
	assert.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewOutputter(&buf, false, "").Output("xml", "", "", sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
