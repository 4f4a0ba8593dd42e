package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostTypingIsIdempotentWithinWindow(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-typing")

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/typing", typingRequest{Sender: "nanook"}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// A repeat inside the dedup window is accepted the same way.
	rec = doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/typing", typingRequest{Sender: "nanook"}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSendDMCreatesRoomOnFirstMessage(t *testing.T) {
	r, _, cleanup := newTestRouter(t)
	defer cleanup()

	rec := doRequest(t, r, "POST", "/api/v1/dm", sendDMRequest{Sender: "a", Recipient: "b", Content: "hi"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out map[string]interface{}
	decodeBody(t, rec, &out)
	assert.Equal(t, true, out["created"])
	assert.NotEmpty(t, out["room_id"])
}

func TestBroadcastReportsPerRoomDeliveries(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	roomA := createRoom(t, s, "broadcast-a")
	roomB := createRoom(t, s, "broadcast-b")

	rec := doRequest(t, r, "POST", "/api/v1/broadcast", broadcastRequest{
		RoomIDs: []string{roomA.ID, roomB.ID, "does-not-exist"},
		Sender:  "admin",
		Content: "heads up",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Deliveries []map[string]interface{} `json:"deliveries"`
	}
	decodeBody(t, rec, &out)
	require.Len(t, out.Deliveries, 3)
}

func TestBookmarkAddListRemove(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-bookmark")

	rec := doRequest(t, r, "PUT", "/api/v1/rooms/"+room.ID+"/bookmark", bookmarkRequest{Sender: "nanook"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/bookmarks?sender=nanook", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bookmarks []interface{}
	decodeBody(t, rec, &bookmarks)
	require.Len(t, bookmarks, 1)

	rec = doRequest(t, r, "DELETE", "/api/v1/rooms/"+room.ID+"/bookmark?sender=nanook", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestExportRoomDefaultsToJSON(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-export")

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/messages",
		sendMessageRequest{Sender: "nanook", Content: "export me"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/rooms/"+room.ID+"/export", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), room.ID+"-export.json")
}

func TestProfileUpsertAndGet(t *testing.T) {
	r, _, cleanup := newTestRouter(t)
	defer cleanup()

	rec := doRequest(t, r, "PUT", "/api/v1/profiles/nanook", upsertProfileRequest{DisplayName: strPtr("Nanook")}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/profiles/nanook", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	decodeBody(t, rec, &out)
	assert.Equal(t, "Nanook", out["display_name"])
}

func TestWebhookCRUDRequiresAdmin(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-webhook")
	full, err := s.GetRoomWithAdminKey(room.ID)
	require.NoError(t, err)

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/webhooks",
		createWebhookRequest{URL: "https://example.com/hook", CreatedBy: "nanook"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/webhooks",
		createWebhookRequest{URL: "https://example.com/hook", CreatedBy: "nanook"},
		map[string]string{"X-Admin-Key": full.AdminKey})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func strPtr(s string) *string { return &s }
