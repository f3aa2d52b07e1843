package shell

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-codebuilder/internal/terminal"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

func newModel(t *testing.T, options ...terminal.Option) Model {
	t.Helper()
	ws := workspace.NewBuilder().AddFile("a.js", "console.log(1)").Build()
	options = append([]terminal.Option{terminal.WithInstallDelay(0)}, options...)
	return New(context.Background(), terminal.New(ws, options...))
}

// submit types input, presses enter and runs the resulting command
func submit(t *testing.T, m Model, input string) Model {
	t.Helper()
	m.input.SetValue(input)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.running)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)
	require.False(t, m.running)
	return m
}

func TestSubmit(t *testing.T) {
	m := submit(t, newModel(t), "echo hello")

	require.Empty(t, m.input.Value())
	view := m.View()
	require.Contains(t, view, "$ echo hello")
	require.Contains(t, view, "hello")
}

func TestSubmit_Blank(t *testing.T) {
	m := newModel(t)
	m.input.SetValue("   ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.False(t, next.(Model).running)
}

func TestExit(t *testing.T) {
	m := newModel(t)
	m.input.SetValue("exit")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
	require.Empty(t, next.(Model).View())
}

func TestHistoryKeys(t *testing.T) {
	m := submit(t, newModel(t), "pwd")
	m = submit(t, m, "date")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	require.Equal(t, "date", m.input.Value())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	require.Equal(t, "pwd", m.input.Value())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	require.Equal(t, "date", m.input.Value())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	require.Empty(t, m.input.Value())
}

func TestCtrlC_CancelsRunningCommand(t *testing.T) {
	m := newModel(t, terminal.WithInstallDelay(time.Minute))
	m.input.SetValue("npm install lodash")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.Contains(t, m.View(), "running")

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	next, quit := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	require.Nil(t, quit)

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("command was not cancelled")
	}

	next, _ = m.Update(msg)
	m = next.(Model)
	require.False(t, m.running)
	require.Contains(t, m.View(), "Installation cancelled")
}

func TestCtrlC_QuitsWhenIdle(t *testing.T) {
	next, cmd := newModel(t).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.True(t, next.(Model).quitting)
}

func TestView_KeepsLastLines(t *testing.T) {
	m := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = submit(t, next.(Model), "echo last")

	view := m.View()
	require.NotContains(t, view, "Welcome")
	require.Contains(t, view, "last")
}
