// Package cli provides the interactive chatkeeper shell.
//
// A guest can register and log in. A logged-in user can chat, read recent
// history, inspect their profile and change their password; admins also
// manage accounts and trigger backups. Every command that needs a login
// re-validates the session first, so an expired session logs the user out
// on their next command.
//
// The shell is started via App.Run, which blocks until the user exits or
// input ends. See runREPL for the command table.
package cli
