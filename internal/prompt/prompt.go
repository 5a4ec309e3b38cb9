// Package prompt asks the user for values missing from the command line.
// The scaffolding pipeline never calls it; the CLI fills a create.Request
// with its answers before a run starts.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agentx-labs/create-agentx/internal/projectname"
	"github.com/agentx-labs/create-agentx/internal/templates"
	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrAborted is returned when the user quits a prompt.
var ErrAborted = errors.New("aborted by user")

// Prompter collects answers from the user.
type Prompter interface {
	ProjectName(ctx context.Context, placeholder string) (string, error)
	Template(ctx context.Context, choices []templates.Summary, current string) (string, error)
	ConfirmOverwrite(ctx context.Context, dir string) (bool, error)
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Forms prompts with huh forms rendered inline.
type Forms struct {
	in    io.Reader
	out   io.Writer
	theme *huh.Theme
}

// NewForms creates a Prompter reading from in and drawing to out.
func NewForms(in io.Reader, out io.Writer) *Forms {
	return &Forms{in: in, out: out, theme: newTheme()}
}

func newTheme() *huh.Theme {
	t := huh.ThemeCharm()
	accent := lipgloss.Color("#7D56F4")
	t.Focused.Title = t.Focused.Title.Foreground(accent).Bold(true)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(lipgloss.Color("#FF5F87"))
	return t
}

func (f *Forms) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(f.theme).
		WithShowHelp(false).
		WithInput(f.in).
		WithOutput(f.out).
		WithProgramOptions(tea.WithoutSignalHandler())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// ProjectName asks for a project name and re-prompts inline until it is valid.
func (f *Forms) ProjectName(ctx context.Context, placeholder string) (string, error) {
	name := ""
	field := huh.NewInput().
		Title("Project name").
		Placeholder(placeholder).
		Value(&name).
		Validate(projectname.Validate)

	if err := f.run(ctx, field); err != nil {
		return "", err
	}
	return name, nil
}

// Template asks which template to use. current is preselected.
func (f *Forms) Template(ctx context.Context, choices []templates.Summary, current string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no templates available")
	}
	selected := current
	field := huh.NewSelect[string]().
		Title("Template").
		Options(TemplateOptions(choices)...).
		Value(&selected)

	if err := f.run(ctx, field); err != nil {
		return "", err
	}
	return selected, nil
}

// ConfirmOverwrite asks whether to write into a non-empty directory.
func (f *Forms) ConfirmOverwrite(ctx context.Context, dir string) (bool, error) {
	ok := false
	field := huh.NewConfirm().
		Title(fmt.Sprintf("Directory %s is not empty. Write into it anyway?", dir)).
		Description("Existing files with the same names will be replaced.").
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := f.run(ctx, field); err != nil {
		return false, err
	}
	return ok, nil
}

// TemplateOptions builds select options labelled "id (version) - description".
func TemplateOptions(choices []templates.Summary) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		label := fmt.Sprintf("%s (%s)", c.ID, c.Version)
		if c.Description != "" {
			label += " - " + c.Description
		}
		opts = append(opts, huh.NewOption(label, c.ID))
	}
	return opts
}

// Static answers from fixed values. It never blocks, so it serves
// non-interactive runs and tests.
type Static struct {
	Name      string
	Choice    string
	Overwrite bool
}

func (s Static) ProjectName(context.Context, string) (string, error) { return s.Name, nil }

func (s Static) Template(_ context.Context, _ []templates.Summary, current string) (string, error) {
	if s.Choice != "" {
		return s.Choice, nil
	}
	return current, nil
}

func (s Static) ConfirmOverwrite(context.Context, string) (bool, error) { return s.Overwrite, nil }
