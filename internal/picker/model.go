// Package picker provides the Bubble Tea fuzzy country picker.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/life-progress/internal/fuzzy"
	"github.com/verte-zerg/life-progress/internal/model"
	"github.com/verte-zerg/life-progress/internal/render"
)

const defaultVisible = 10

// Searcher returns fuzzy matches for a query.
type Searcher interface {
	Search(query string) []model.MatchResult
}

var (
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	selectedName = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

// Model implements the Bubble Tea picker.
type Model struct {
	searcher Searcher
	input    textinput.Model
	results  []model.MatchResult
	cursor   int
	offset   int
	height   int

	selected string
	done     bool
}

// NewModel constructs a picker seeded with query.
func NewModel(searcher Searcher, query string) *Model {
	input := textinput.New()
	input.Prompt = "country> "
	input.Placeholder = "type to search"
	input.SetValue(query)
	input.Focus()
	m := &Model{searcher: searcher, input: input}
	m.refresh()
	return m
}

// Selected returns the chosen country once the picker has finished.
func (m *Model) Selected() (string, bool) {
	return m.selected, m.done && m.selected != ""
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.clampOffset()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.results) > 0 {
				m.selected = m.results[m.cursor].Name
			}
			m.done = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			m.move(-1)
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			m.move(1)
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.refresh()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	if len(m.results) == 0 {
		b.WriteString(emptyStyle.Render("  no matching country"))
		b.WriteByte('\n')
	}
	end := min(m.offset+m.visible(), len(m.results))
	for i := m.offset; i < end; i++ {
		r := m.results[i]
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(render.Highlight(r.Name, r.Indices, selectedName, matchStyle))
		} else {
			b.WriteString("  ")
			b.WriteString(render.Highlight(r.Name, r.Indices, nameStyle, matchStyle))
		}
		b.WriteByte('\n')
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d matches  enter select  esc quit", len(m.results))))
	return b.String()
}

func (m *Model) refresh() {
	query := strings.TrimSpace(m.input.Value())
	results := m.searcher.Search(query)
	if query != "" {
		results = fuzzy.Rank(results)
	}
	m.results = results
	m.cursor = 0
	m.offset = 0
}

func (m *Model) move(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.results)) % len(m.results)
	m.clampOffset()
}

func (m *Model) clampOffset() {
	visible := m.visible()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// visible is the number of result rows that fit below the input and above
// the footer.
func (m *Model) visible() int {
	if m.height <= 0 {
		return defaultVisible
	}
	return max(m.height-2, 1)
}
