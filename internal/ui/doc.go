// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three pages:
//  1. [PageMain] : sign in, pick a recent sheet or create a new one (HOMEPAGE, FILESELECT, CREATENEW, LOADING)
//  2. [PageManage] : share, export, import, add rows, rename and request a GTM export for one sheet
//  3. [PageGtm] : review a GTM request and approve or reject it
//
// [Render] is a pure function of a store snapshot. The [Model] subscribes to the store and receives every
// store event as a [Msg], so each mutation made by the auth gateway, the loader or the action handlers
// triggers a re-render. Network work runs in tea.Cmd goroutines.
//
// Errors are shown in a blocking modal, status messages in a snackbar that clears itself after [SnackbarTimeout].
package ui
