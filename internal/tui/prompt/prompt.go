// Package prompt holds the interactive forms of the CLI.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/tui"
)

// Prompter runs forms with the shared theme.
type Prompter struct {
	theme *huh.Theme
}

// New creates a Prompter
func New() *Prompter {
	return &Prompter{theme: tui.NewHuhTheme()}
}

// TemplateOptions builds the picker options, one per template, labelled
// with the name and description
func TemplateOptions(list []*models.Template) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(list))
	for _, t := range list {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s: %s", t.Name, t.Description), t.ID))
	}
	return opts
}

// PickTemplate asks for a template and returns its id, or "" when the user
// aborts
func (p *Prompter) PickTemplate(list []*models.Template) (string, error) {
	id := ""

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Submit.SetKeys("enter", " ")
	keyMap.Select.Submit.SetHelp("space/enter", "apply")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(TemplateOptions(list)...).
				Value(&id),
		).
			Title("New Project").
			Description("Pick a template. It replaces every file in the workspace."),
	).
		WithTheme(p.theme).
		WithShowHelp(true).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// ConfirmDelete asks before removing path and the files below it
func (p *Prompter) ConfirmDelete(path string, files []string) (bool, error) {
	confirmed := false

	desc := "This cannot be undone."
	if len(files) > 1 {
		desc = fmt.Sprintf("%d files will be removed:\n  %s", len(files), strings.Join(files, "\n  "))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", path)).
				Description(desc).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		),
	).WithTheme(p.theme)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}

// AskText asks for one line of text. Blank answers are rejected.
func (p *Prompter) AskText(title, placeholder string) (string, error) {
	value := ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(&value).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("value cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(p.theme)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// RenderTemplateApplied summarizes a template switch
func RenderTemplateApplied(tpl *models.Template) string {
	var b strings.Builder

	b.WriteString(tui.SuccessStyle.Render("✓ " + tpl.Name))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Created %d file(s):\n", len(tpl.Files)))
	for i, f := range tpl.Files {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, f.Path))
	}
	return b.String()
}
