package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle key.Binding
	Open   key.Binding
	Close  key.Binding
	Next   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hold/release")),
		Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Close:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "close")),
		Next:   key.NewBinding(key.WithKeys("n", "enter"), key.WithHelp("n", "next")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Open, k.Close, k.Next, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// forScreen enables only the bindings that do something on sc.
func (k *keyMap) forScreen(sc screen) {
	trading := sc == screenTrading
	k.Toggle.SetEnabled(trading)
	k.Open.SetEnabled(trading)
	k.Close.SetEnabled(trading)
	k.Next.SetEnabled(sc == screenAnalysis)
}
