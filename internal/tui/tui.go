package tui

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ogdakke/pathspec/internal/domain"
	"github.com/ogdakke/pathspec/internal/scan"
)

// RunTUI scans opts.Directory and opens the pattern tester on the result.
func RunTUI(opts scan.Options) error {
	return run(NewModel(opts))
}

// RunTUIFromJSON shows a result saved with --format json.
func RunTUIFromJSON(jsonFile string) error {
	doc, err := LoadJSON(jsonFile)
	if err != nil {
		return err
	}
	return run(NewModelFromJSON(doc))
}

func LoadJSON(jsonFile string) (domain.JSONOutput, error) {
	var doc domain.JSONOutput

	data, err := os.ReadFile(jsonFile)
	if err != nil {
		return doc, fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse JSON file: %w", err)
	}
	return doc, nil
}

func run(model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
