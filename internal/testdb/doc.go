// Package testdb provides helpers for PostgreSQL integration tests. Tests
// that use it are skipped unless DATABASE_URL is set.
package testdb
