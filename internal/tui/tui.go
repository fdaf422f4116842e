package tui

import (
	"devops-topics/internal/viewmodel"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	// Glyphs is the configured glyph set (unicode|ascii).
	Glyphs string
}

func Run(list *viewmodel.TopicsList, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference(opts.Glyphs)

	m := newAppModel(list)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
