// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in internal/store. It handles connections, embedded
// goose migrations, query execution and mapping between rows and domain
// values.
package postgres
