package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ncurl/jobwatch/internal/model"
)

// Lines per record in the list view (uid + subtitle + blank separator).
const recordItemHeight = 3

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	uidStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedUIDStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	groupBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")) // soft green
)

type reviewModel struct {
	records  []model.SeenRecord
	viewport viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
}

// Run opens the interactive browser over the most recently seen records.
func Run(records []model.SeenRecord) error {
	m := reviewModel{records: records}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.syncViewport()
			}
		case "down", "j":
			if m.cursor < len(m.records)-1 {
				m.cursor++
				m.syncViewport()
			}
		case "g", "home":
			m.cursor = 0
			m.syncViewport()
		case "G", "end":
			if len(m.records) > 0 {
				m.cursor = len(m.records) - 1
				m.syncViewport()
			}
		}
	}
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// border (2) + header (1) + status bar (1)
	contentHeight := m.height - 4
	if contentHeight < recordItemHeight {
		contentHeight = recordItemHeight
	}
	if !m.ready {
		m.viewport = viewport.New(m.width-2, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width - 2
		m.viewport.Height = contentHeight
	}
	m.viewport.SetContent(m.renderList())
	m.syncViewport()
}

// syncViewport keeps the cursor row visible as it moves.
func (m *reviewModel) syncViewport() {
	m.viewport.SetContent(m.renderList())
	top := m.cursor * recordItemHeight
	bottom := top + recordItemHeight
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m reviewModel) renderList() string {
	if len(m.records) == 0 {
		return subtitleStyle.Render("no records yet; run a poll first")
	}

	var b strings.Builder
	for i, rec := range m.records {
		uid := uidStyle
		sub := subtitleStyle
		if i == m.cursor {
			uid = selectedUIDStyle
			sub = selectedSubtitleStyle
		}

		b.WriteString(uid.Render(rec.UID))
		b.WriteString("\n")
		b.WriteString(sub.Render(fmt.Sprintf("  %s · first seen %s",
			groupBadgeStyle.Render(rec.SourceGroup),
			rec.FirstSeen.Local().Format("Jan 2 15:04"))))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m reviewModel) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("seen jobs (%d)", len(m.records)))

	var url string
	if len(m.records) > 0 {
		url = m.records[m.cursor].URL
	}
	age := ""
	if len(m.records) > 0 {
		age = humanAge(time.Since(m.records[m.cursor].FirstSeen))
	}
	status := statusBarStyle.Width(m.width).Render(
		fmt.Sprintf("%s  %s  ·  j/k move · g/G jump · q quit", age, url))

	body := borderStyle.Width(m.width - 2).Render(m.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
