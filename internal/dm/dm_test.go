package dm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

func newTestResolver(t *testing.T) (*Resolver, func()) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	bus := eventbus.New()
	engine := messaging.New(s, bus)
	return New(s, engine), func() { s.Close(); bus.Close() }
}

func TestRoomNameIsSymmetricAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, RoomName("Alice", "bob"), RoomName("BOB", "alice"))
	assert.Equal(t, "dm:alice:bob", RoomName("alice", "bob"))
}

func TestSendIsIdempotentAcrossOrder(t *testing.T) {
	r, cleanup := newTestResolver(t)
	defer cleanup()

	first, err := r.Send(SendInput{Sender: "alice", Recipient: "bob", Content: "hi"})
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := r.Send(SendInput{Sender: "bob", Recipient: "alice", Content: "yo"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.RoomID, second.RoomID)
}

func TestSendRejectsSelfDM(t *testing.T) {
	r, cleanup := newTestResolver(t)
	defer cleanup()

	_, err := r.Send(SendInput{Sender: "alice", Recipient: "alice", Content: "hi"})
	require.Error(t, err)
	ce, ok := chatcore.As(err)
	require.True(t, ok)
	assert.Equal(t, chatcore.KindInvalid, ce.Kind)
}

func TestListConversationsEnrichesOtherParticipant(t *testing.T) {
	r, cleanup := newTestResolver(t)
	defer cleanup()

	_, err := r.Send(SendInput{Sender: "alice", Recipient: "bob", Content: "hi"})
	require.NoError(t, err)

	convs, err := r.ListConversations("alice")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "bob", convs[0].OtherParticipant)
}
