package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakoblorz/go-codebuilder/internal/highlight"
	"github.com/jakoblorz/go-codebuilder/internal/tui"
)

// EditorModel edits the content of one workspace file
type EditorModel struct {
	path     string
	original string
	textarea textarea.Model
	saved    bool
	done     bool
}

// NewEditor creates an editor holding content
func NewEditor(path, content string) EditorModel {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(20)
	ta.SetValue(content)
	ta.Focus()

	return EditorModel{
		path:     path,
		original: content,
		textarea: ta,
	}
}

// Init initializes the component
func (m EditorModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.textarea.SetWidth(msg.Width)
		// header and help take three rows
		m.textarea.SetHeight(max(msg.Height-3, 1))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlS:
			m.saved = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		}
	}

	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the component
func (m EditorModel) View() string {
	if m.done {
		return ""
	}

	marker := ""
	if m.Modified() {
		marker = " ●"
	}
	header := tui.HeaderStyle.Render(fmt.Sprintf("%s (%s)%s", m.path, highlight.Language(m.path), marker))

	return fmt.Sprintf("%s\n%s\n%s",
		header,
		m.textarea.View(),
		tui.SubtleStyle.Render("ctrl+s save • esc discard"))
}

// Value returns the edited content
func (m EditorModel) Value() string {
	return m.textarea.Value()
}

// Modified reports whether the content differs from what was loaded
func (m EditorModel) Modified() bool {
	return m.textarea.Value() != m.original
}

// Saved reports whether the user saved
func (m EditorModel) Saved() bool {
	return m.saved
}

// IsDone returns whether the user finished editing
func (m EditorModel) IsDone() bool {
	return m.done
}

// Edit runs the editor full screen and returns the content and whether
// the user saved it
func Edit(path, content string) (string, bool, error) {
	final, err := tea.NewProgram(NewEditor(path, content), tea.WithAltScreen()).Run()
	if err != nil {
		return "", false, fmt.Errorf("failed to run editor: %w", err)
	}
	m := final.(EditorModel)
	return m.Value(), m.Saved(), nil
}
