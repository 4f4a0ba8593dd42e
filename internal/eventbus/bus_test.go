package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := New()
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer sub1.Close()
	defer sub2.Close()

	b.Publish(chatcore.Typing{Sender: "nanook", RoomID_: "room-1"})

	for _, sub := range []*Subscription{sub1, sub2} {
		select {
		case ev := <-sub.Events:
			assert.Equal(t, "typing", ev.SSEName())
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestUnsubscribeDoesNotAffectOthers(t *testing.T) {
	b := New()
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	sub1.Close()

	b.Publish(chatcore.Typing{Sender: "forge", RoomID_: "room-1"})

	select {
	case ev := <-sub2.Events:
		assert.Equal(t, "typing", ev.SSEName())
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber never received the event")
	}

	_, ok := <-sub1.Events
	assert.False(t, ok, "closed subscriber's channel should be drained and closed")
}

func TestLagSignalOnFullBuffer(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	// Fill the buffer past capacity without draining.
	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish(chatcore.Typing{Sender: "nanook", RoomID_: "room-1"})
	}

	// Drain what fit; the pending Lag is delivered ahead of the next event
	// published once the buffer has room again.
	for i := 0; i < subscriberBuffer; i++ {
		<-sub.Events
	}
	b.Publish(chatcore.Typing{Sender: "nanook", RoomID_: "room-1"})

	ev := <-sub.Events
	lag, sawLag := ev.(chatcore.Lag)
	assert.True(t, sawLag, "slow subscriber should observe a Lag signal rather than block the publisher")
	assert.Equal(t, 5, lag.N)
}

func TestCloseDeliversTerminalSignal(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	b.Close()

	_, ok := <-sub.Events
	require.False(t, ok, "channel should be closed as the terminal signal")
}
