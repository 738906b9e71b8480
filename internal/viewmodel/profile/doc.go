// Package profile implements the signed-in user's profile screen logic.
//
// The ViewModel turns screen inputs (appearing, tapping a project, tapping
// settings) into output signals the screen binds to: the user, the backed
// projects, the empty state and navigation requests. It owns no rendering.
//
// On every appearance the cached session user is emitted at once, then a
// refresh is handed to the environment's scheduler. When the refresh
// finishes the confirmed user, the backed projects and the empty-state flag
// are emitted in that order. A non-animated appearance is also tracked as a
// profile view; the animated flag never affects the data flow.
package profile
