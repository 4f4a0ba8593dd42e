package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, func()) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	bus := eventbus.New()
	return New(s, bus), s, func() { s.Close(); bus.Close() }
}

func createTestRoom(t *testing.T, s *store.Store, name string) chatcore.Room {
	t.Helper()
	room, err := s.CreateRoom(name, "", "tester")
	require.NoError(t, err)
	return room
}

func TestSendMessagePublishesNewMessage(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-a")

	sub := e.Bus.Subscribe()
	defer sub.Close()

	msg, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, int64(1), msg.Seq)

	ev := <-sub.Events
	nm, ok := ev.(chatcore.NewMessage)
	require.True(t, ok)
	assert.Equal(t, msg.ID, nm.Message.ID)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-b")

	_, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "   "})
	require.Error(t, err)
	ce, ok := chatcore.As(err)
	require.True(t, ok)
	assert.Equal(t, chatcore.KindInvalid, ce.Kind)
}

func TestSendMessageRejectsMissingReplyTo(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-c")

	missing := "does-not-exist"
	_, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "hi", ReplyTo: &missing})
	require.Error(t, err)
	ce, _ := chatcore.As(err)
	assert.Equal(t, chatcore.KindInvalid, ce.Kind)
}

func TestEditMessageRejectsWrongOwner(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-d")

	msg, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "original"})
	require.NoError(t, err)

	_, err = e.EditMessage(room.ID, msg.ID, "forge", "edited", nil)
	require.Error(t, err)
	ce, _ := chatcore.As(err)
	assert.Equal(t, chatcore.KindForbidden, ce.Kind)
}

func TestEditMessagePublishesMessageEdited(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-e")

	msg, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "original"})
	require.NoError(t, err)

	sub := e.Bus.Subscribe()
	defer sub.Close()

	edited, err := e.EditMessage(room.ID, msg.ID, "nanook", "revised", nil)
	require.NoError(t, err)
	assert.Equal(t, "revised", edited.Content)

	ev := <-sub.Events
	_, ok := ev.(chatcore.MessageEdited)
	assert.True(t, ok)
}

func TestToggleReactionAddsThenRemoves(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-f")

	msg, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "hi"})
	require.NoError(t, err)

	_, added, err := e.ToggleReaction(room.ID, msg.ID, "forge", "+1")
	require.NoError(t, err)
	assert.True(t, added)

	_, added, err = e.ToggleReaction(room.ID, msg.ID, "forge", "+1")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestPinUnpinMessage(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "room-g")

	msg, err := e.SendMessage(SendInput{RoomID: room.ID, Sender: "nanook", Content: "pin me"})
	require.NoError(t, err)

	pinned, err := e.PinMessage(room.ID, msg.ID, "forge")
	require.NoError(t, err)
	require.NotNil(t, pinned.PinnedAt)

	unpinned, err := e.UnpinMessage(room.ID, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, unpinned.PinnedAt)
}
