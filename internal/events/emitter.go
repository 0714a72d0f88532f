package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lexiquest/review-api/internal/redact"
)

// InMemoryEventEmitter stores registered handlers in memory and
// dispatches events to them synchronously, in registration order.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With(slog.String("component", "in_memory_event_emitter")),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	log := e.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
	)

	if len(handlers) == 0 {
		log.Warn("no handlers registered for event")
		return nil
	}

	log.Debug("emitting event", slog.Int("handler_count", len(handlers)))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("handler failed to process event",
				slog.String("error", redact.Error(err)),
				slog.Int("handler_index", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// AsyncHandler runs a wrapped handler on its own goroutine so emitters
// return without waiting on slow receivers. Wait blocks until every
// started delivery has finished.
type AsyncHandler struct {
	next   EventHandler
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewAsyncHandler wraps next.
func NewAsyncHandler(next EventHandler, logger *slog.Logger) *AsyncHandler {
	return &AsyncHandler{
		next:   next,
		logger: logger.With(slog.String("component", "async_event_handler")),
	}
}

// HandleEvent starts delivery and returns nil. Delivery outlives ctx's
// cancellation but keeps its values.
func (h *AsyncHandler) HandleEvent(ctx context.Context, event *Event) error {
	ctx = context.WithoutCancel(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.next.HandleEvent(ctx, event); err != nil {
			h.logger.Error("async event delivery failed",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type),
				slog.String("error", redact.Error(err)))
		}
	}()

	return nil
}

// Wait blocks until all deliveries started so far have finished.
func (h *AsyncHandler) Wait() {
	h.wg.Wait()
}
