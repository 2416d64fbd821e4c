package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// BatchModel - Live batch progress
// =============================================================================

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// rowDoneMsg reports one finished row to the progress view.
type rowDoneMsg struct {
	index int
	total int
	name  string
	err   error
}

// batchDoneMsg ends the progress view.
type batchDoneMsg struct{}

// BatchModel is the bubbletea model showing live progress of a batch run.
type BatchModel struct {
	Total   int
	Done    int
	Failed  int
	Current string
	Width   int
}

// NewBatchModel creates a progress model. The row total is learned from the
// first rowDoneMsg, so the model can be started before the sheet is fetched.
func NewBatchModel() BatchModel {
	return BatchModel{Width: 40}
}

func (m BatchModel) Init() tea.Cmd {
	return nil
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width - 30
		if m.Width < 10 {
			m.Width = 10
		}
		if m.Width > 60 {
			m.Width = 60
		}
	case rowDoneMsg:
		m.Total = msg.total
		m.Done++
		m.Current = msg.name
		if msg.err != nil {
			m.Failed++
		}
	case batchDoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m BatchModel) View() string {
	if m.Total == 0 {
		return ""
	}

	filled := m.Done * m.Width / m.Total
	bar := barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", m.Width-filled))

	line := fmt.Sprintf("%s %s", bar, StyleDim.Render(fmt.Sprintf("%d/%d", m.Done, m.Total)))
	if m.Failed > 0 {
		line += " " + StyleWarning.Render(fmt.Sprintf("(%d failed)", m.Failed))
	}
	if m.Current != "" {
		line += "\n  " + StyleDim.Render(m.Current)
	}
	return line + "\n"
}
