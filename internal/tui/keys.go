package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Answer1  key.Binding
	Answer2  key.Binding
	Answer3  key.Binding
	TypeNote key.Binding
	Start    key.Binding
	Stop     key.Binding
	Slower   key.Binding
	Faster   key.Binding
	Adaptive key.Binding
	Naming   key.Binding
	LevelMap key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Answer1:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "option 1")),
		Answer2:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "option 2")),
		Answer3:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "option 3")),
		TypeNote: key.NewBinding(key.WithKeys("enter"), key.WithHelp("c#/db/h enter", "type a note")),
		Start:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "start round")),
		Stop:     key.NewBinding(key.WithKeys("esc", "s"), key.WithHelp("esc", "stop round")),
		Slower:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more time")),
		Faster:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "less time")),
		Adaptive: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "adaptive timer")),
		Naming:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note names")),
		LevelMap: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "level map")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Answer1, k.Answer2, k.Answer3, k.Start, k.Stop, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Answer1, k.Answer2, k.Answer3, k.TypeNote},
		{k.Start, k.Stop, k.LevelMap},
		{k.Slower, k.Faster, k.Adaptive, k.Naming},
		{k.Help, k.Quit},
	}
}

func (k keyMap) answerIndex(msg string) int {
	for i, b := range []key.Binding{k.Answer1, k.Answer2, k.Answer3} {
		for _, name := range b.Keys() {
			if name == msg {
				return i
			}
		}
	}
	return -1
}
