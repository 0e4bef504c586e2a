package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	left    key.Binding
	right   key.Binding
	enter   key.Binding
	back    key.Binding
	signIn  key.Binding
	signOut key.Binding
	create  key.Binding
	refresh key.Binding
	share   key.Binding
	export  key.Binding
	imprt   key.Binding
	rows    key.Binding
	gtm     key.Binding
	rename  key.Binding
	profile key.Binding
	approve key.Binding
	reject  key.Binding
	comment key.Binding
	next    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		signIn:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
		signOut: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		create:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new sheet")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		share:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
		export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export to CM")),
		imprt:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import from CM")),
		rows:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add rows")),
		gtm:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "GTM request")),
		rename:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "rename")),
		profile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next profile")),
		approve: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "approve")),
		reject:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		comment: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.enter, k.back},
		{k.create, k.refresh, k.signOut},
		{k.share, k.export, k.imprt, k.rows, k.gtm, k.rename, k.profile},
		{k.approve, k.reject, k.comment},
		{k.quit},
	}
}
