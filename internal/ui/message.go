package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/floody/internal/store"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStoreEvent MsgKind = iota
	MsgReady
	MsgFilesLoaded
	MsgProfilesLoaded
	MsgChainDone
	MsgSheetCreated
	MsgAuthChecked
	MsgActionDone
	MsgGtmLoaded
	MsgGtmSubmitted
	MsgGtmResult
	MsgSnackbarExpired
	MsgSignedOut
)

// outcome carries the value and error of a finished command.
type outcome struct {
	value any
	err   error
}

// storeEventMsg is the constructor for [MsgStoreEvent]
func storeEventMsg(ev store.Event) Msg {
	return Msg{kind: MsgStoreEvent, data: ev}
}

// doneMsg is the constructor for every command result kind.
func doneMsg(kind MsgKind, value any, err error) Msg {
	return Msg{kind: kind, data: outcome{value: value, err: err}}
}

// snackbarExpiredMsg is the constructor for [MsgSnackbarExpired]
func snackbarExpiredMsg(seq int) Msg {
	return Msg{kind: MsgSnackbarExpired, data: seq}
}

func (m Msg) outcome() outcome {
	o, _ := m.data.(outcome)
	return o
}
