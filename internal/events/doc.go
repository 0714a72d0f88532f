// Package events carries notifications out of the review core.
//
// Services emit an Event through an EventEmitter without knowing which
// handlers receive it. The review core emits session.completed when a
// session ends; handlers forward it to the rewards system over a webhook
// or log it when no webhook is configured.
package events
