package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubzen/repowatch/internal/config"
	"github.com/yubzen/repowatch/internal/engine"
	"github.com/yubzen/repowatch/internal/vcs"
)

type stubBackend struct {
	root string
}

func (s *stubBackend) Status(context.Context) ([]vcs.FileStatus, error) { return nil, nil }
func (s *stubBackend) CommitsSince(context.Context, time.Time, int) ([]vcs.Commit, error) {
	return nil, nil
}
func (s *stubBackend) BranchName(context.Context) string { return "main" }
func (s *stubBackend) Root() string                      { return s.root }
func (s *stubBackend) Close()                            {}

func newTestApp(t *testing.T) *AppModel {
	t.Helper()
	eng := engine.New(config.Default(), &stubBackend{root: t.TempDir()})
	return NewAppModel(eng)
}

func TestAppQuitKeys(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune{'q'}},
		"ctrl+c": {Type: tea.KeyCtrlC},
	}
	for name, msg := range keys {
		t.Run(name, func(t *testing.T) {
			m := newTestApp(t)
			_, cmd := m.Update(msg)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestAppTabCyclesFocus(t *testing.T) {
	m := newTestApp(t)
	assert.Equal(t, paneUncommitted, m.focus)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneCommitted, m.focus)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneUncommitted, m.focus)
}

func TestAppHelpToggle(t *testing.T) {
	m := newTestApp(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "repowatch")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.False(t, m.showHelp)
}

func TestAppRenderTickReschedules(t *testing.T) {
	m := newTestApp(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	_, cmd := m.Update(RenderTickMsg(time.Now()))
	assert.NotNil(t, cmd, "the render clock must keep ticking")
}

func TestAppViewShowsPaneTitles(t *testing.T) {
	m := newTestApp(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.refreshContent()

	view := m.View()
	assert.Contains(t, view, "Uncommitted Changes")
	assert.Contains(t, view, "Committed (Session)")
	assert.Contains(t, view, "Activity")
}
