package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ogdakke/pathspec/internal/domain"
	"github.com/ogdakke/pathspec/internal/ignorer"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/scan"
)

type ViewMode int

const (
	ViewRules ViewMode = iota
	ViewFiles
)

type LabelMode int

const (
	LabelCount LabelMode = iota
	LabelPercentage
)

type Model struct {
	opts  scan.Options
	lines []string
	input textinput.Model

	result     domain.ScanResult
	chart      barchart.Model
	ready      bool
	loading    bool
	readOnly   bool
	err        error
	patternErr error

	width  int
	height int

	// Horizontal scrolling in the chart, vertical in the file list
	scrollOffset int
	maxVisible   int

	labelMode LabelMode
	viewMode  ViewMode

	// Progress tracking
	filesFound   int
	filesMatched int
	progressChan chan progressMsg
}

type scanCompleteMsg struct {
	result domain.ScanResult
	err    error
}

type progressMsg struct {
	filesFound   int
	filesMatched int
}

type scanStartedMsg struct {
	progressChan chan progressMsg
	doneChan     chan scanCompleteMsg
}

func (m ViewMode) String() string {
	if m == ViewFiles {
		return "Files"
	}
	return "Rules"
}

func (m LabelMode) String() string {
	if m == LabelPercentage {
		return "Percentage"
	}
	return "Count"
}

func newInput() textinput.Model {
	input := textinput.New()
	input.Placeholder = "add a pattern line, e.g. *.log or !keep.log"
	input.Prompt = "pattern> "
	input.CharLimit = 256
	input.Width = 60
	return input
}

func NewModel(opts scan.Options) Model {
	return Model{
		opts:    opts,
		lines:   append([]string(nil), opts.Lines...),
		input:   newInput(),
		loading: true,
	}
}

// NewModelFromJSON shows a saved JSON result. Patterns cannot be edited
// because the candidate files are not part of the document.
func NewModelFromJSON(doc domain.JSONOutput) Model {
	m := Model{
		input:    newInput(),
		ready:    true,
		readOnly: true,
		result: domain.ScanResult{
			Files:        doc.Result.Files,
			RuleHits:     doc.Result.Rules,
			Patterns:     len(doc.Result.Rules),
			FilesMatched: len(doc.Result.Files),
		},
	}
	if doc.Metadata != nil {
		m.opts.Directory = doc.Metadata.Directory
		m.opts.Style = doc.Metadata.Style
		m.result.FilesFound = doc.Metadata.FilesFound
		m.result.FilesSkipped = doc.Metadata.FilesSkipped
		m.result.Inverted = doc.Metadata.Inverted
		m.result.Timing = doc.Metadata.Timing
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.readOnly {
		return tea.EnterAltScreen
	}
	return tea.Batch(
		startScan(m.opts),
		tea.EnterAltScreen,
	)
}

func listenForProgress(progressChan <-chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		progress, ok := <-progressChan
		if !ok {
			return nil
		}
		return progress
	}
}

func listenForCompletion(doneChan <-chan scanCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		return <-doneChan
	}
}

func startScan(opts scan.Options) tea.Cmd {
	return func() tea.Msg {
		logger.Info("Starting async TUI scan", "directory", opts.Directory)

		progressChan := make(chan progressMsg, 10)
		doneChan := make(chan scanCompleteMsg, 1)

		go func() {
			defer close(progressChan)
			defer close(doneChan)

			progressFunc := func(filesFound, filesMatched int) {
				select {
				case progressChan <- progressMsg{
					filesFound:   filesFound,
					filesMatched: filesMatched,
				}:
				default:
					// Channel full, skip update
				}
			}

			result, err := scan.Run(context.Background(), opts, progressFunc)

			doneChan <- scanCompleteMsg{
				result: result,
				err:    err,
			}
		}()

		return scanStartedMsg{
			progressChan: progressChan,
			doneChan:     doneChan,
		}
	}
}

// evaluate reapplies the current pattern lines to the files found by the
// last scan without walking the tree again.
func (m *Model) evaluate() {
	opts := m.opts
	opts.Lines = m.lines

	spec, factory, err := scan.Compile(opts)
	if err != nil {
		m.patternErr = err
		return
	}
	// Candidates were already filtered for dotfiles by the scan.
	matcher, err := ignorer.NewMatcher(opts.Directory, spec, ignorer.Config{
		IncludeDotfiles: true,
		Nested:          opts.Nested,
		Factory:         factory,
		Workers:         opts.Workers,
	})
	if err != nil {
		m.patternErr = err
		return
	}

	selected, hits, err := scan.Evaluate(matcher, m.result.Candidates)
	if err != nil {
		m.patternErr = err
		return
	}
	if opts.Invert {
		selected = scan.Complement(m.result.Candidates, selected)
	}

	m.patternErr = nil
	m.result.Files = selected
	m.result.FilesMatched = len(selected)
	m.result.RuleHits = hits
	m.result.Patterns = spec.Len()
	logger.Debug("Patterns re-evaluated", "patterns", spec.Len(), "matched", len(selected))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.ready {
			m.updateChart()
		}
		return m, nil

	case scanStartedMsg:
		m.progressChan = msg.progressChan
		return m, tea.Batch(
			listenForProgress(msg.progressChan),
			listenForCompletion(msg.doneChan),
		)

	case progressMsg:
		if m.loading && msg.filesFound > 0 {
			m.filesFound = msg.filesFound
			m.filesMatched = msg.filesMatched

			return m, listenForProgress(m.progressChan)
		}
		return m, nil

	case scanCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.result = msg.result
		m.ready = true
		m.scrollOffset = 0
		m.updateChart()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "/", "i":
			if m.ready && !m.readOnly {
				cmd := m.input.Focus()
				return m, cmd
			}
		case "backspace", "d":
			if m.ready && !m.readOnly && len(m.lines) > 0 {
				m.lines = m.lines[:len(m.lines)-1]
				m.evaluate()
				m.updateChart()
			}
		case "x":
			if m.ready && !m.readOnly {
				m.opts.Invert = !m.opts.Invert
				m.result.Inverted = m.opts.Invert
				m.evaluate()
				m.updateChart()
			}
		case "r":
			if m.ready && !m.readOnly {
				m.loading = true
				m.ready = false
				m.opts.Lines = m.lines
				return m, startScan(m.opts)
			}
		case "v":
			if m.ready {
				m.viewMode = (m.viewMode + 1) % 2
				m.scrollOffset = 0
				m.updateChart()
			}
		case "t":
			if m.ready {
				m.labelMode = (m.labelMode + 1) % 2
				m.updateChart()
			}
		case "left", "up":
			if m.ready && m.scrollOffset > 0 {
				m.scrollOffset--
				m.updateChart()
			}
		case "right", "down":
			if m.ready && m.scrollOffset < m.scrollLimit() {
				m.scrollOffset++
				m.updateChart()
			}
		case "home":
			if m.ready {
				m.scrollOffset = 0
				m.updateChart()
			}
		case "end":
			if m.ready {
				m.scrollOffset = m.scrollLimit()
				m.updateChart()
			}
		}
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		line := m.input.Value()
		if line != "" {
			m.lines = append(m.lines, line)
			m.input.Reset()
			m.evaluate()
			if m.patternErr != nil {
				// Keep the rejected line editable.
				m.lines = m.lines[:len(m.lines)-1]
				m.input.SetValue(line)
			}
			m.updateChart()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) visibleFiles() int {
	return max(5, m.height-14)
}

func (m *Model) scrollLimit() int {
	if m.viewMode == ViewFiles {
		return max(0, len(m.result.Files)-m.visibleFiles())
	}
	return max(0, len(m.result.RuleHits)-m.maxVisible)
}

func (m *Model) updateChart() {
	if !m.ready || len(m.result.RuleHits) == 0 {
		return
	}

	// Account for border (2 chars) and padding (4 chars: 2 left + 2 right) and some margin
	chartWidth := m.width - 7
	chartHeight := m.height - 14

	if chartWidth < 30 {
		chartWidth = 30
	}
	if chartHeight < 10 {
		chartHeight = 10
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	// Each bar with label needs roughly 14 characters of space
	estimatedLabelWidth := 14
	m.maxVisible = min(chartWidth/estimatedLabelWidth, len(m.result.RuleHits), 25)

	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
	if m.scrollOffset > m.scrollLimit() {
		m.scrollOffset = m.scrollLimit()
	}
	if m.viewMode != ViewRules {
		return
	}

	var barData []barchart.BarData
	startIndex := m.scrollOffset
	endIndex := min(startIndex+m.maxVisible, len(m.result.RuleHits))

	for i := startIndex; i < endIndex; i++ {
		rule := m.result.RuleHits[i]

		// Green for include rules, red for exclude rules
		color := "10"
		if rule.Polarity == "exclude" {
			color = "9"
		}

		var valueStr string
		switch m.labelMode {
		case LabelCount:
			if rule.Hits >= 1000000 {
				valueStr = fmt.Sprintf("%.1fM", float64(rule.Hits)/1000000)
			} else if rule.Hits >= 1000 {
				valueStr = fmt.Sprintf("%.1fk", float64(rule.Hits)/1000)
			} else {
				valueStr = strconv.Itoa(rule.Hits)
			}
		case LabelPercentage:
			valueStr = fmt.Sprintf("%.1f%%", rule.Percentage)
		}

		barData = append(barData, barchart.BarData{
			Label: fmt.Sprintf("#%d:%s", rule.Index, valueStr),
			Values: []barchart.BarValue{
				{Name: rule.Pattern, Value: float64(rule.Hits), Style: lipgloss.NewStyle().Foreground(lipgloss.Color(color))},
			},
		})
	}

	m.chart.PushAll(barData)
	m.chart.Draw()
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit", m.err)
	}

	if m.loading {
		progressText := "Scanning files..."
		if m.filesFound > 0 {
			progressText = fmt.Sprintf("Files found: %d, Matched: %d", m.filesFound, m.filesMatched)
		}
		return progressText + "\n\nPress 'q' to quit"
	}

	if !m.ready {
		return "Loading...\n\nPress 'q' to quit"
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("14")).
		Render("Pattern Tester")

	inverted := ""
	if m.result.Inverted {
		inverted = " | Inverted"
	}

	info := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("Directory: %s | Style: %s | Patterns: %d | View: %s | Labels: %s%s",
			m.opts.Directory, m.opts.Style, m.result.Patterns, m.viewMode.String(), m.labelMode.String(), inverted))

	stats := lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Render(fmt.Sprintf("Found: %d | Skipped: %d | Matched: %d",
			m.result.FilesFound, m.result.FilesSkipped, m.result.FilesMatched))

	timing := lipgloss.NewStyle().
		Foreground(lipgloss.Color("5")).
		Render(fmt.Sprintf("Timing: Total %s | Compile %s | Traversal %s | Match %s",
			m.result.Timing.TotalDuration,
			m.result.Timing.CompileDuration,
			m.result.Timing.TraversalDuration,
			m.result.Timing.MatchDuration))

	var body string
	if m.viewMode == ViewFiles {
		body = m.fileList()
	} else if len(m.result.RuleHits) == 0 {
		body = "No patterns yet"
	} else {
		body = m.chart.View()
	}

	window := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Render(body)

	sections := []string{title, info, stats, timing, "", window, ""}
	if !m.readOnly {
		sections = append(sections, m.patternPane())
	}

	controls := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render("Controls: '/' add pattern | 'd' drop last | 'x' invert | 'v' rules/files | 't' toggle labels | ←→ scroll | home/end | 'r' rescan | 'q' quit")
	sections = append(sections, controls)

	return strings.Join(sections, "\n")
}

func (m Model) fileList() string {
	if len(m.result.Files) == 0 {
		return "No files matched"
	}
	end := min(m.scrollOffset+m.visibleFiles(), len(m.result.Files))
	header := fmt.Sprintf("Files %d-%d/%d", m.scrollOffset+1, end, len(m.result.Files))
	return header + "\n\n" + strings.Join(m.result.Files[m.scrollOffset:end], "\n")
}

func (m Model) patternPane() string {
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var b strings.Builder
	shown := m.lines
	if len(shown) > 5 {
		shown = shown[len(shown)-5:]
		fmt.Fprintf(&b, "  ... %d earlier lines\n", len(m.lines)-5)
	}
	for _, line := range shown {
		b.WriteString(lineStyle.Render("  "+line) + "\n")
	}
	b.WriteString(m.input.View())
	if m.patternErr != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.patternErr.Error()))
	}
	return b.String()
}
