// Package sqlite provides SQLite-backed session persistence.
//
// It stores the signed-in access token and user so a command can resume a
// session without logging in again.
package sqlite
