package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crossref/internal/drift"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	severeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	standardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	results    []drift.Result
	lastUpdate time.Time
	projects   int
	severe     int
}

type updateMsg struct {
	results  []drift.Result
	projects int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.results = msg.results
		m.projects = msg.projects
		m.lastUpdate = time.Now()

		m.severe = 0
		items := []list.Item{}
		for _, r := range m.results {
			if r.Severity == drift.SeveritySevere {
				m.severe++
			}
			items = append(items, item{
				title: fmt.Sprintf("Reload (%s drift)", r.Severity),
				desc:  r.Message,
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d cached projects",
		m.lastUpdate.Format("15:04:05"), m.projects))

	var summary string
	switch {
	case len(m.results) == 0:
		summary = successStyle.Render("✅ Snapshots Fresh")
	case m.severe > 0:
		summary = severeStyle.Render(fmt.Sprintf("⚠️  %d Severe Drift", m.severe))
	default:
		summary = standardStyle.Render(fmt.Sprintf("%d Reloads", len(m.results)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Snapshot Drift Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Recent Reloads"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
