package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"

	"github.com/ogdakke/pathspec/internal/domain"
)

const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatTemplate = "template"
)

// DefaultTemplate prints one matched file per line.
const DefaultTemplate = `{{ range .Result.Files }}{{ . }}
{{ end }}`

func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatCSV, FormatTemplate}
}

type Outputter struct {
	w               io.Writer
	includeMetadata bool
	template        string
}

func NewOutputter(w io.Writer, includeMetadata bool, tmpl string) *Outputter {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	return &Outputter{
		w:               w,
		includeMetadata: includeMetadata,
		template:        tmpl,
	}
}

func (o *Outputter) Output(kind string, directory string, style string, result domain.ScanResult) error {
	switch kind {
	case FormatJSON:
		return o.OutputJSON(o.document(directory, style, result, o.includeMetadata))
	case FormatCSV:
		return o.OutputCSV(result)
	case FormatTemplate:
		return o.OutputTemplate(o.document(directory, style, result, true))
	case FormatTable, "":
		return o.OutputTable(result)
	default:
		return fmt.Errorf("unknown output format %q, expected one of %s", kind, strings.Join(Formats(), ", "))
	}
}

func (o *Outputter) document(directory, style string, result domain.ScanResult, withMetadata bool) domain.JSONOutput {
	files := result.Files
	if files == nil {
		files = []string{}
	}
	doc := domain.JSONOutput{
		Result: domain.JSONResult{
			Files: files,
			Rules: result.RuleHits,
		},
	}

	if withMetadata {
		doc.Metadata = &domain.JSONMetadata{
			Directory:    directory,
			Style:        style,
			Patterns:     result.Patterns,
			FilesFound:   result.FilesFound,
			FilesMatched: result.FilesMatched,
			FilesSkipped: result.FilesSkipped,
			Inverted:     result.Inverted,
			Timing:       result.Timing,
		}
	}
	return doc
}

func (o *Outputter) OutputTable(result domain.ScanResult) error {
	width := 60
	title := "Matched files:"
	if result.Inverted {
		title = "Unmatched files:"
	}

	fmt.Fprintln(o.w, title)
	fmt.Fprintln(o.w, strings.Repeat("-", width))
	for _, f := range result.Files {
		fmt.Fprintln(o.w, f)
	}
	fmt.Fprintln(o.w, strings.Repeat("-", width))

	if len(result.RuleHits) > 0 {
		fmt.Fprintf(o.w, "\nRules:\n")
		fmt.Fprintln(o.w, strings.Repeat("-", width))
		fmt.Fprintf(o.w, "%-5s %-30s %-8s %-6s %s\n", "#", "Pattern", "Polarity", "Hits", "Percentage")
		fmt.Fprintln(o.w, strings.Repeat("-", width))

		for _, rule := range result.RuleHits {
			fmt.Fprintf(o.w, "%-5d %-30s %-8s %-6d %.2f%%\n", rule.Index, rule.Pattern, rule.Polarity, rule.Hits, rule.Percentage)
		}
		fmt.Fprintln(o.w, strings.Repeat("-", width))
	}
	return nil
}

func (o *Outputter) OutputCSV(result domain.ScanResult) error {
	writer := csv.NewWriter(o.w)

	writer.Write([]string{"type", "value", "polarity", "hits"})
	for _, f := range result.Files {
		writer.Write([]string{"file", f, "", ""})
	}
	for _, rule := range result.RuleHits {
		writer.Write([]string{"rule", rule.Pattern, rule.Polarity, fmt.Sprintf("%d", rule.Hits)})
	}

	writer.Flush()
	return writer.Error()
}

func (o *Outputter) OutputJSON(doc domain.JSONOutput) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(o.w, string(data))
	return err
}

func (o *Outputter) OutputTemplate(doc domain.JSONOutput) error {
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(o.template)
	if err != nil {
		return fmt.Errorf("error parsing template: %w", err)
	}
	return tmpl.Execute(o.w, doc)
}
