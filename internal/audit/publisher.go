package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"personpatch/pkg/requestcontext"
)

// ErrPublisherClosed is returned by Emit once Close has been called.
var ErrPublisherClosed = errors.New("audit publisher closed")

// Sink is where events end up: the in-memory store or Kafka.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher hands events to a background Worker through a bounded channel.
// Emit never blocks the request path: a full buffer drops the event with a
// warning.
type Publisher struct {
	mu     sync.RWMutex
	closed bool
	outbox chan Event
	logger *slog.Logger
}

// NewPublisher creates a publisher with a buffer of size events. Pair it with
// NewWorker(sink, p.Inbox()).
func NewPublisher(size int, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{outbox: make(chan Event, size), logger: logger}
}

// Emit stamps the event with the request id and time when they are missing
// and enqueues it. After Close it returns ErrPublisherClosed.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.outbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"request_id", event.RequestID,
			"action", event.Action,
			"person_id", event.PersonID,
		)
	}
	return nil
}

// Inbox is the receive side consumed by the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.outbox
}

// Close stops accepting events; the Worker drains what is buffered and exits.
// It is safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.outbox)
}

// SyncPublisher writes straight to a sink on the caller's goroutine.
type SyncPublisher struct {
	sink Sink
}

func NewSyncPublisher(sink Sink) *SyncPublisher {
	return &SyncPublisher{sink: sink}
}

func (p *SyncPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return p.sink.Append(ctx, event)
}
