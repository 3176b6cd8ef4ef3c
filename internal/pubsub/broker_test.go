package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type change struct {
	Text  string
	Caret int
}

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_PublishToSubscribers(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	broker := NewBroker[change]().WithClock(func() time.Time { return fixed })
	defer broker.Close()

	ctx := context.Background()
	first := broker.Subscribe(ctx)
	second := broker.Subscribe(ctx)
	require.Equal(t, 2, broker.SubscriberCount())

	broker.Publish(TextChangedEvent, change{Text: "hi", Caret: 2})

	for _, ch := range []<-chan Event[change]{first, second} {
		event := receive(t, ch)
		require.Equal(t, TextChangedEvent, event.Type)
		require.Equal(t, change{Text: "hi", Caret: 2}, event.Payload)
		require.Equal(t, fixed, event.Timestamp)
	}
}

func TestBroker_ContextCancellationUnsubscribes(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool {
		return broker.SubscriberCount() == 0
	}, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after cancel")
}

func TestBroker_DropsWhenBufferFull(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(CreatedEvent, 1)
	broker.Publish(CreatedEvent, 2)

	require.Equal(t, 1, receive(t, ch).Payload)
	select {
	case <-ch:
		require.Fail(t, "second event should have been dropped")
	default:
	}
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")

	require.NotPanics(t, func() { broker.Publish(SubmittedEvent, "ignored") })
}
