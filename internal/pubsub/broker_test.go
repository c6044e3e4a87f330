package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesSubscriber(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ch := b.Subscribe(context.Background())
	b.Publish(ChangedEvent, "payload")

	select {
	case ev := <-ch:
		assert.Equal(t, ChangedEvent, ev.Type)
		assert.Equal(t, "payload", ev.Payload)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ch1 := b.Subscribe(context.Background())
	ch2 := b.Subscribe(context.Background())
	b.Publish(ChangedEvent, 7)

	for _, ch := range []<-chan Event[int]{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, 7, ev.Payload)
		case <-time.After(time.Second):
			t.Fatal("expected event on every subscription")
		}
	}
}

func TestBroker_ContextCancelClosesSubscription(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}

func TestBroker_CloseClosesSubscribers(t *testing.T) {
	b := NewBroker[int]()
	ch := b.Subscribe(context.Background())
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing and re-closing after Close are no-ops.
	require.NotPanics(t, func() {
		b.Publish(ChangedEvent, 1)
		b.Close()
	})
}

func TestBroker_SubscribeAfterClose(t *testing.T) {
	b := NewBroker[int]()
	b.Close()

	ch := b.Subscribe(context.Background())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBroker_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ch := b.Subscribe(context.Background())
	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBufferSize*3; i++ {
			b.Publish(ChangedEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
		// Publisher never blocked.
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on full subscriber")
	}
	assert.Len(t, ch, defaultBufferSize)
}
