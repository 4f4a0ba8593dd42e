package webhook

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/eventbus"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

func TestEventAllowedWildcardAndList(t *testing.T) {
	assert.True(t, eventAllowed("*", "message"))
	assert.True(t, eventAllowed("message, message_edited", "message_edited"))
	assert.False(t, eventAllowed("message_edited", "message"))
}

func TestEventToPayloadSkipsRoomlessEvents(t *testing.T) {
	_, _, _, ok := eventToPayload(chatcore.Typing{Sender: "nanook", RoomID_: "r1"})
	assert.False(t, ok)

	_, _, _, ok = eventToPayload(chatcore.ProfileUpdated{})
	assert.False(t, ok)

	name, roomID, _, ok := eventToPayload(chatcore.NewMessage{Message: chatcore.Message{RoomID: "r1"}})
	require.True(t, ok)
	assert.Equal(t, "message", name)
	assert.Equal(t, "r1", roomID)
}

func TestDeliverOneSignsAndLogsSuccess(t *testing.T) {
	var calls int32
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotSignature = r.Header.Get("X-Chat-Signature")
		io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	bus := eventbus.New()
	defer bus.Close()

	room, err := s.CreateRoom("webhook-room", "", "tester")
	require.NoError(t, err)

	secret := "shh"
	wh, err := s.CreateWebhook(room.ID, srv.URL, "*", &secret, "tester")
	require.NoError(t, err)

	d := New(s, bus)
	d.deliverOne(wh, "message", room.ID, room.Name, map[string]string{"hello": "world"})

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, gotSignature, "sha256=")

	logs, err := s.ListDeliveryLog("")
	require.NoError(t, err)
	_ = logs // delivery_group is random; just confirm no panic querying
}

func TestDeliverOneRetriesOnFailureThenLogsExhaustion(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	bus := eventbus.New()
	defer bus.Close()

	room, err := s.CreateRoom("webhook-room-2", "", "tester")
	require.NoError(t, err)
	wh, err := s.CreateWebhook(room.ID, srv.URL, "*", nil, "tester")
	require.NoError(t, err)

	prevBackoffs := retryBackoffs
	retryBackoffs = []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}
	defer func() { retryBackoffs = prevBackoffs }()

	d := New(s, bus)
	start := time.Now()
	d.deliverOne(wh, "message", room.ID, room.Name, map[string]string{"hello": "world"})
	elapsed := time.Since(start)

	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}
