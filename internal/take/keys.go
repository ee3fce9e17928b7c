package take

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Submit key.Binding
	Close  key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Prev:   key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←", "prev")),
		Next:   key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→", "next")),
		Submit: key.NewBinding(key.WithKeys("ctrl+s", "S"), key.WithHelp("S", "submit")),
		Close:  key.NewBinding(key.WithKeys("enter", "q", "esc"), key.WithHelp("enter", "close")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
