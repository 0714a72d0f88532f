// Package task manages background job queuing and processing.
// Graded schedule states are written to the store by a pool of workers
// so a review session never waits on storage latency. Tasks are not
// persisted or retried; a lost write is reconciled on the next due read.
package task
