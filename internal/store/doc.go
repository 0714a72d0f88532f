// Package store defines the persistence interfaces the review core depends on.
// Adapters live under internal/platform.
package store
