package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insertMsg(t *testing.T, s *Store, roomID, sender, content string, replyTo *string) chatcore.Message {
	t.Helper()
	m, err := s.InsertMessage(NewMessageInput{RoomID: roomID, Sender: sender, Content: content, ReplyTo: replyTo})
	require.NoError(t, err)
	return m
}

func TestThreadWalksAncestorsAndDescendants(t *testing.T) {
	s := newTestStore(t)
	room, err := s.CreateRoom("thread-room", "", "tester")
	require.NoError(t, err)

	root := insertMsg(t, s, room.ID, "nanook", "root", nil)
	childA := insertMsg(t, s, room.ID, "sedna", "child-a", &root.ID)
	childB := insertMsg(t, s, room.ID, "akna", "child-b", &root.ID)
	grandchild := insertMsg(t, s, room.ID, "nanook", "grandchild", &childA.ID)

	gotRoot, replies, err := s.Thread(room.ID, grandchild.ID)
	require.NoError(t, err)
	require.Equal(t, root.ID, gotRoot.ID)
	require.Len(t, replies, 3)

	byID := make(map[string]ThreadReply, len(replies))
	for _, r := range replies {
		byID[r.Message.ID] = r
	}
	require.Equal(t, 1, byID[childA.ID].Depth)
	require.Equal(t, 1, byID[childB.ID].Depth)
	require.Equal(t, 2, byID[grandchild.ID].Depth)
}

// TestThreadGuardsAgainstReplyCycle constructs a corrupted store where two
// descendants mutually cite each other via reply_to (A replies to the root,
// B replies to A, and A is rewritten to reply to B). The A<->B cycle is then
// detached from the root, so Thread from the root must terminate, return the
// root, and list no node more than once instead of looping forever.
func TestThreadGuardsAgainstReplyCycle(t *testing.T) {
	s := newTestStore(t)
	room, err := s.CreateRoom("cycle-room", "", "tester")
	require.NoError(t, err)

	root := insertMsg(t, s, room.ID, "nanook", "root", nil)
	a := insertMsg(t, s, room.ID, "sedna", "a", &root.ID)
	b := insertMsg(t, s, room.ID, "akna", "b", &a.ID)

	// Corrupt the store: make A reply to B, closing a cycle A->B->A.
	_, err = s.db.Exec(`UPDATE messages SET reply_to = ? WHERE id = ?`, b.ID, a.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	var gotRoot chatcore.Message
	var replies []ThreadReply
	go func() {
		gotRoot, replies, err = s.Thread(room.ID, root.ID)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Thread did not return within the deadline; likely an infinite BFS loop on a reply cycle")
	}

	require.NoError(t, err)
	require.Equal(t, root.ID, gotRoot.ID)

	seen := map[string]bool{}
	for _, r := range replies {
		require.False(t, seen[r.Message.ID], "each node must appear at most once in a cyclic thread walk")
		seen[r.Message.ID] = true
	}
}
