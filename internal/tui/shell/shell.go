// Package shell is the interactive front end of the workspace terminal.
package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakoblorz/go-codebuilder/internal/terminal"
	"github.com/jakoblorz/go-codebuilder/internal/tui"
)

// Model runs terminal commands typed at a prompt. Commands execute in a
// tea.Cmd so long installs do not block rendering; ctrl+c cancels the
// running command or quits when idle.
type Model struct {
	ctx    context.Context
	term   *terminal.Terminal
	input  textinput.Model
	height int

	running  bool
	cancel   context.CancelFunc
	quitting bool
}

// executedMsg reports that a command finished
type executedMsg struct {
	lines []terminal.Line
}

// New creates a shell over term. ctx bounds every command.
func New(ctx context.Context, term *terminal.Terminal) Model {
	ti := textinput.New()
	ti.Prompt = tui.PromptStyle.Render("$ ")
	ti.Placeholder = `type "help"`
	ti.Focus()

	return Model{ctx: ctx, term: term, input: ti}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - 2
		return m, nil

	case executedMsg:
		m.running = false
		m.cancel = nil
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.running {
				m.cancel()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyUp:
			if cmd, ok := m.term.History().Up(); ok {
				m.input.SetValue(cmd)
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			m.input.SetValue(m.term.History().Down())
			m.input.CursorEnd()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}

	input := m.input.Value()
	m.input.Reset()
	switch strings.TrimSpace(input) {
	case "":
		return m, nil
	case "exit":
		m.quitting = true
		return m, tea.Quit
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.running = true
	m.cancel = cancel
	term := m.term
	return m, func() tea.Msg {
		defer cancel()
		return executedMsg{lines: term.Execute(ctx, input)}
	}
}

// View renders the line buffer followed by the prompt
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := m.term.Lines()
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[len(lines)-(m.height-2):]
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(tui.LineStyle(l.Type).Render(l.Content))
		b.WriteString("\n")
	}

	if m.running {
		b.WriteString(tui.SubtleStyle.Render("running… (ctrl+c to cancel)"))
	} else {
		b.WriteString(m.input.View())
	}
	return b.String()
}

// Run runs the shell until the user quits or ctx is done
func Run(ctx context.Context, term *terminal.Terminal) error {
	_, err := tea.NewProgram(New(ctx, term), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
