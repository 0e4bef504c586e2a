// package loader runs the dependent fetch chain behind the selection form
//
// Profiles are loaded first. Selecting a profile loads its accounts, the first account is selected
// automatically, and that loads the account's floodlight configurations. Every chain carries the
// store generation captured when it started; results that arrive after a newer selection are dropped
// and the superseded requests are cancelled.
package loader
