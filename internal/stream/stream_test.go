package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/presence"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

func TestReplayByAfterSeq(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	bus := eventbus.New()
	defer bus.Close()
	svc := New(s, bus, presence.New())

	room, err := s.CreateRoom("stream-room", "", "tester")
	require.NoError(t, err)

	first, err := s.InsertMessage(store.NewMessageInput{RoomID: room.ID, Sender: "nanook", Content: "one"})
	require.NoError(t, err)
	_, err = s.InsertMessage(store.NewMessageInput{RoomID: room.ID, Sender: "nanook", Content: "two"})
	require.NoError(t, err)

	after := first.Seq
	replay := svc.replay(Request{RoomID: room.ID, After: &after})
	require.Len(t, replay, 1)
	assert.Equal(t, "two", replay[0].Content)
}

func TestPayloadForDeletedEventIsMinimal(t *testing.T) {
	ev := chatcore.MessageDeleted{ID: "m1", RoomID_: "r1"}
	b, err := json.Marshal(payloadFor(ev))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1","room_id":"r1"}`, string(b))
}

func TestPayloadForNewMessageIsFullEntity(t *testing.T) {
	ev := chatcore.NewMessage{Message: chatcore.Message{ID: "m1", RoomID: "r1", Content: "hi"}}
	b, err := json.Marshal(payloadFor(ev))
	require.NoError(t, err)
	var decoded chatcore.Message
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "hi", decoded.Content)
}
