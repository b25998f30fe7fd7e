package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/repowatch/internal/engine"
)

var (
	appStyle       = lipgloss.NewStyle().Margin(0, 0)
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	focusPaneStyle = paneStyle.BorderForeground(lipgloss.Color("205"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	animStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderTickMsg drives the fixed render clock. The engine never pushes into
// the TUI; each tick reads the latest published snapshot and frame.
type RenderTickMsg time.Time

const renderInterval = 100 * time.Millisecond

func renderTick() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg {
		return RenderTickMsg(t)
	})
}

const (
	paneUncommitted = iota
	paneCommitted
	paneCount
)

type AppModel struct {
	eng         *engine.Engine
	statusbar   *StatusBarModel
	uncommitted viewport.Model
	committed   viewport.Model
	focus       int
	showHelp    bool
	width       int
	height      int
}

func NewAppModel(eng *engine.Engine) *AppModel {
	return &AppModel{
		eng:         eng,
		statusbar:   NewStatusBarModel(eng),
		uncommitted: viewport.New(0, 0),
		committed:   viewport.New(0, 0),
	}
}

func (m *AppModel) Init() tea.Cmd {
	return renderTick()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % paneCount
		case "shift+tab":
			m.focus = (m.focus + paneCount - 1) % paneCount
		case "?":
			m.showHelp = !m.showHelp
		default:
			// Scrolling keys go to the focused pane's viewport.
			var cmd tea.Cmd
			if m.focus == paneCommitted {
				m.committed, cmd = m.committed.Update(msg)
			} else {
				m.uncommitted, cmd = m.uncommitted.Update(msg)
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case RenderTickMsg:
		m.refreshContent()
		return m, renderTick()
	}
	return m, nil
}

func (m *AppModel) layout() {
	paneWidth := m.width/3 - 4
	paneHeight := m.height - 6
	if paneWidth < 10 {
		paneWidth = 10
	}
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.uncommitted.Width = paneWidth
	m.uncommitted.Height = paneHeight
	m.committed.Width = paneWidth
	m.committed.Height = paneHeight
}

func (m *AppModel) refreshContent() {
	snap := m.eng.Snapshot()
	m.uncommitted.SetContent(renderUncommitted(snap))
	m.committed.SetContent(renderCommitted(snap))
}

func (m *AppModel) View() string {
	if m.showHelp {
		return appStyle.Render(helpView())
	}

	snap := m.eng.Snapshot()

	left := m.pane(paneUncommitted, titleStyle.Render("Uncommitted Changes"), m.uncommitted.View())
	middle := m.pane(paneCommitted, titleStyle.Render("Committed (Session)"), m.committed.View())
	right := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Activity"),
		animStyle.Render(m.eng.Frame()),
	))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right)
	footer := helpStyle.Render("tab: switch pane  up/down: scroll  ?: help  q: quit")

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.statusbar.View(snap, m.width),
		footer,
	))
}

func (m *AppModel) pane(idx int, title, content string) string {
	style := paneStyle
	if m.focus == idx {
		style = focusPaneStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func helpView() string {
	return titleStyle.Render("repowatch") + "\n\n" +
		"Panes\n" +
		"  left    uncommitted working-tree changes\n" +
		"  middle  files committed since the session started\n" +
		"  right   change activity\n\n" +
		"Keys\n" +
		"  tab / shift+tab   switch pane focus\n" +
		"  up/down, k/j      scroll the focused pane\n" +
		"  ?                 toggle this help\n" +
		"  q, ctrl+c         quit\n\n" +
		helpStyle.Render("Files are grouped by parent directory for compact display.")
}
