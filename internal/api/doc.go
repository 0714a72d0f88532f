// Package api translates HTTP requests into review session and scheduling
// operations. Handlers decode and validate requests, call the
// review_session service and map its errors to status codes and safe
// messages; internal error text is only ever logged.
package api
