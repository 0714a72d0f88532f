// Package sqlite provides an embedded SQLite implementation of the storage
// interfaces in internal/store, for single-learner and local deployments.
// It uses the pure Go modernc.org/sqlite driver and needs no cgo.
package sqlite
