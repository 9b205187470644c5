package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"
)

// Async hands events to a background worker so request paths never wait on a broker.
// When the buffer is full the event is dropped and counted.
type Async struct {
	next    Publisher
	timeout time.Duration
	queue   chan ReactionEvent
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
}

// NewAsync starts the worker. timeout bounds each downstream publish.
func NewAsync(next Publisher, buffer int, timeout time.Duration) *Async {
	if buffer <= 0 {
		buffer = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		queue:   make(chan ReactionEvent, buffer),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for event := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.PublishReaction(ctx, event); err != nil {
			middleware.Logger.Warn("reaction event publish failed",
				slog.String("key", event.Key()),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// PublishReaction enqueues the event and returns immediately.
func (a *Async) PublishReaction(_ context.Context, event ReactionEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil
	}
	select {
	case a.queue <- event:
	default:
		observability.EventsPublished.WithLabelValues("async", "dropped").Inc()
	}
	return nil
}

// Close drains queued events, then closes the downstream publisher.
func (a *Async) Close() error {
	var err error
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()
		a.wg.Wait()
		err = a.next.Close()
	})
	return err
}
