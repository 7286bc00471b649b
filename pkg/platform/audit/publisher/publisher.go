// Package publisher fans audit events out to the configured store and sinks.
// Emission must never fail a user-facing request: sink errors are logged (by
// the caller-provided logger) and swallowed.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	id "medtrack/pkg/domain"
	audit "medtrack/pkg/platform/audit"
)

// Publisher delivers events to a primary store plus optional extra sinks.
// With an async buffer, Emit enqueues and a single worker drains; without
// one, Emit delivers synchronously.
type Publisher struct {
	store  audit.Store
	sinks  []audit.Sink
	logger *slog.Logger

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with the given queue depth. Events
// are dropped (and counted via the logger) when the queue is full; audit
// pressure must not back up request handling.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithSink adds an extra delivery target, e.g. the Kafka sink.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records the event. In async mode it enqueues; in sync mode it
// delivers inline and reports store failure to the caller.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			p.logger.Warn("audit queue full, dropping event", "action", event.Action)
		}
		return nil
	}
	return p.deliver(ctx, event)
}

// List exposes the primary store's query side.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops the async worker after draining queued events.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		// Queued events outlive the originating request; deliver with a
		// background context.
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Error("audit delivery failed", "action", event.Action, "error", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	err := p.store.Append(ctx, event)
	for _, sink := range p.sinks {
		if sinkErr := sink.Append(ctx, event); sinkErr != nil {
			p.logger.Error("audit sink failed", "action", event.Action, "error", sinkErr)
		}
	}
	return err
}
