// Package session implements the review session state machine and the
// summary handed to the rewards system when a session ends.
//
// A Session is a plain value object; the Controller moves it through
// Presenting, Revealed and Completed. Grading applies the scheduler result
// locally and advances at once, while persistence of the new schedule
// state is dispatched without waiting for the store.
package session
