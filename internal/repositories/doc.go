// Package repositories implements SQLite persistence for the client's local state.
//
// The browser keeps session keys in sessionStorage/localStorage. The terminal client keeps them in sqlite so that a selection survives between one-shot CLI invocations and the TUI.
//
// Key Implementations:
//   - [PreferenceRepository] : key/value session keys (profileId, consent flag, consent expiry)
//   - [TokenRepository] : the persisted OAuth token, one row per provider
package repositories
