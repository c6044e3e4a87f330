package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenCmd_DeliversEvent(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	l := NewContinuousListener(context.Background(), b)
	b.Publish(ChangedEvent, "x")

	msg := l.Listen()()
	ev, ok := msg.(Event[string])
	require.True(t, ok, "expected Event message, got %T", msg)
	assert.Equal(t, "x", ev.Payload)
}

func TestListenCmd_NilOnCancel(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewContinuousListener(ctx, b)
	cancel()

	done := make(chan struct{})
	var msg any
	go func() {
		msg = l.Listen()()
		close(done)
	}()

	select {
	case <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestListenCmd_NilOnBrokerClose(t *testing.T) {
	b := NewBroker[string]()
	l := NewContinuousListener(context.Background(), b)
	b.Close()

	msg := l.Listen()()
	assert.Nil(t, msg)
}
