// Package store holds the client's session state: the current route, auth state, the profile → account → floodlight configuration selection chain, recent files and header-bar contents.
//
// A [Store] is created once per process and passed to every component that reads or mutates it. Readers take a [Snapshot], a deep copy that can be used without holding a lock. Mutations go through methods that enforce the selection invariants and notify subscribers with an [Event].
//
// # Selection generations
//
// Every profile or account selection bumps a generation counter. Loaders capture the generation when a chain starts and hand it back with their results; results for an older generation are discarded, so a slow response for a previous profile can never overwrite the current selection.
package store
