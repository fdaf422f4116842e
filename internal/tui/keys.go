package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Toggle       key.Binding
	ToggleDeep   key.Binding
	Expand       key.Binding
	AddTopic     key.Binding
	AddSubtopic  key.Binding
	Edit         key.Binding
	Delete       key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	LastPage     key.Binding
	JumpPage     key.Binding
	Help         key.Binding
	Quit         key.Binding
	Submit       key.Binding
	Cancel       key.Binding
	ForceQuitCtl key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle done")),
		ToggleDeep:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "toggle with children")),
		Expand:      key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "expand/collapse")),
		AddTopic:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add topic")),
		AddSubtopic: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add subtopic")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete subtopic")),
		NextPage:    key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p", "prev page")),
		LastPage:    key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last page")),
		JumpPage: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to page"),
		),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Submit:       key.NewBinding(key.WithKeys("enter")),
		Cancel:       key.NewBinding(key.WithKeys("esc")),
		ForceQuitCtl: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Expand, k.AddTopic, k.AddSubtopic, k.NextPage, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand},
		{k.Toggle, k.ToggleDeep, k.Edit, k.Delete},
		{k.AddTopic, k.AddSubtopic},
		{k.NextPage, k.PrevPage, k.LastPage, k.JumpPage},
		{k.Help, k.Quit},
	}
}
