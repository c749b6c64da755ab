package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "personpatch/pkg/domain"
	"personpatch/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakySink fails every event for person "bad" and records the rest.
type flakySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *flakySink) Append(_ context.Context, event Event) error {
	if event.PersonID == "bad" {
		return errors.New("sink unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *flakySink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

func TestPublisherStampsEvents(t *testing.T) {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), now), "req-9")

	pub := NewPublisher(1, discardLogger())
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionPersonCreated, PersonID: "p1"}))

	got := <-pub.Inbox()
	assert.Equal(t, now, got.Timestamp)
	assert.Equal(t, "req-9", got.RequestID)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	pub := NewPublisher(1, discardLogger())
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionPersonCreated, PersonID: "first"}))
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionPersonCreated, PersonID: "second"}))

	got := <-pub.Inbox()
	assert.Equal(t, id.PersonID("first"), got.PersonID)
	select {
	case extra := <-pub.Inbox():
		t.Fatalf("expected the second event to be dropped, got %v", extra)
	default:
	}
}

func TestPublisherEmitAfterClose(t *testing.T) {
	pub := NewPublisher(1, discardLogger())
	pub.Close()
	pub.Close()

	assert.NotPanics(t, func() {
		err := pub.Emit(context.Background(), Event{Action: ActionPersonPatched, PersonID: "late"})
		assert.ErrorIs(t, err, ErrPublisherClosed)
	})
	_, open := <-pub.Inbox()
	assert.False(t, open)
}

func TestPublisherConcurrentEmitAndClose(t *testing.T) {
	pub := NewPublisher(8, discardLogger())
	go func() {
		for range pub.Inbox() {
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := pub.Emit(context.Background(), Event{Action: ActionPersonCreated, PersonID: "p"})
				if err != nil {
					assert.ErrorIs(t, err, ErrPublisherClosed)
				}
			}
		}()
	}
	pub.Close()
	wg.Wait()
}

func TestWorkerContinuesAfterSinkFailure(t *testing.T) {
	sink := &flakySink{}
	pub := NewPublisher(10, discardLogger())
	worker := NewWorker(sink, pub.Inbox(), discardLogger())
	ctx := context.Background()

	for _, personID := range []id.PersonID{"p1", "bad", "p2"} {
		require.NoError(t, pub.Emit(ctx, Event{Action: ActionPersonPatched, PersonID: personID}))
	}
	pub.Close()

	require.NoError(t, worker.Run(ctx))
	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, id.PersonID("p1"), events[0].PersonID)
	assert.Equal(t, id.PersonID("p2"), events[1].PersonID)
}

func TestWorkerDrainsOnCancel(t *testing.T) {
	sink := NewInMemoryStore()
	pub := NewPublisher(10, discardLogger())
	for range 3 {
		require.NoError(t, pub.Emit(context.Background(), Event{Action: ActionPersonCreated, PersonID: "p"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(sink, pub.Inbox(), discardLogger()).Run(ctx))

	events, err := sink.ListByPerson(context.Background(), "p")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestSyncPublisher(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewSyncPublisher(store)

	require.NoError(t, pub.Emit(context.Background(), Event{Action: ActionPersonCreated, PersonID: "p1"}))
	require.NoError(t, pub.Emit(context.Background(), Event{Action: ActionPersonPatched, PersonID: "p2"}))

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[0].Timestamp.IsZero())

	mine, err := store.ListByPerson(context.Background(), "p2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ActionPersonPatched, mine[0].Action)

	store.Clear()
	all, _ = store.ListAll(context.Background())
	assert.Empty(t, all)
}
