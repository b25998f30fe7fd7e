package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/yubzen/repowatch/internal/engine"
)

var (
	sbBaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("235")).Padding(0, 1)
	sbRepoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	sbBranchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	sbOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sbWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type StatusBarModel struct {
	eng *engine.Engine
}

func NewStatusBarModel(eng *engine.Engine) *StatusBarModel {
	return &StatusBarModel{eng: eng}
}

func (m *StatusBarModel) View(snap *engine.Snapshot, width int) string {
	repoStr := sbRepoStyle.Render(fmt.Sprintf("[%s]", filepath.Base(m.eng.Root())))

	branch := "…"
	if snap != nil && snap.Branch != "" {
		branch = snap.Branch
	}
	branchStr := sbBranchStyle.Render(fmt.Sprintf("[%s]", branch))

	mode := sbOKStyle.Render("[watching]")
	if !m.eng.Watching() {
		mode = sbWarnStyle.Render("[polling]")
	}

	s := fmt.Sprintf("%s %s %s | %s | session started %s",
		repoStr, branchStr, mode, statusText(snap), humanize.Time(m.eng.SessionStart()))
	return sbBaseStyle.Width(width).Render(s)
}

func statusText(snap *engine.Snapshot) string {
	if snap.UncommittedCount() == 0 && snap.CommittedCount() == 0 {
		return "Repository clean"
	}
	return fmt.Sprintf("%d uncommitted, %d committed", snap.UncommittedCount(), snap.CommittedCount())
}
