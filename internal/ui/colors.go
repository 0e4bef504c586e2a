package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	header lipgloss.Style
	badge  lipgloss.Style
	focus  lipgloss.Style
	modal  lipgloss.Style
	snack  lipgloss.Style
	items  list.DefaultItemStyles
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		header: NewBold("#FFFFFF").Background(lipgloss.Color(t)).Padding(0, 1),
		badge:  NewStyle(s),
		focus:  NewBold(t),
		modal:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(e)).Padding(1, 2),
		snack:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
		items:  list.NewDefaultItemStyles(),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// consentStyle frames the product counsel notice.
func consentStyle() lipgloss.Style {
	return styles.modal.BorderForeground(lipgloss.Color("#7D56F4"))
}
