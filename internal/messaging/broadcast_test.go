package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func TestBroadcastDeliversToEachRoom(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	roomA := createTestRoom(t, s, "bcast-a")
	roomB := createTestRoom(t, s, "bcast-b")

	results, err := e.Broadcast(BroadcastInput{
		RoomIDs: []string{roomA.ID, roomB.ID},
		Sender:  "nanook",
		Content: "heads up",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success)
		assert.NotNil(t, r.MessageID)
	}
}

func TestBroadcastReportsMissingRoomWithoutAbortingOthers(t *testing.T) {
	e, s, cleanup := newTestEngine(t)
	defer cleanup()
	room := createTestRoom(t, s, "bcast-c")

	results, err := e.Broadcast(BroadcastInput{
		RoomIDs: []string{room.ID, "does-not-exist"},
		Sender:  "nanook",
		Content: "heads up",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	require.NotNil(t, results[1].Error)
}

func TestBroadcastRejectsTooManyRooms(t *testing.T) {
	e, _, cleanup := newTestEngine(t)
	defer cleanup()

	ids := make([]string, 21)
	for i := range ids {
		ids[i] = "room"
	}
	_, err := e.Broadcast(BroadcastInput{RoomIDs: ids, Sender: "nanook", Content: "x"})
	require.Error(t, err)
	ce, ok := chatcore.As(err)
	require.True(t, ok)
	assert.Equal(t, chatcore.KindInvalid, ce.Kind)
}
