package httpapi

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func TestCreateRoomReturnsAdminKey(t *testing.T) {
	r, _, cleanup := newTestRouter(t)
	defer cleanup()

	rec := doRequest(t, r, "POST", "/api/v1/rooms", createRoomRequest{Name: "general", CreatedBy: "nanook"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var room chatcore.Room
	decodeBody(t, rec, &room)
	assert.Equal(t, "general", room.Name)
	assert.NotEmpty(t, room.AdminKey)
}

func TestCreateRoomRejectsEmptyName(t *testing.T) {
	r, _, cleanup := newTestRouter(t)
	defer cleanup()

	rec := doRequest(t, r, "POST", "/api/v1/rooms", createRoomRequest{Name: "", CreatedBy: "nanook"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRoomRequiresAdminKey(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-a")

	rec := doRequest(t, r, "PUT", "/api/v1/rooms/"+room.ID, updateRoomRequest{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	full, err := s.GetRoomWithAdminKey(room.ID)
	require.NoError(t, err)

	newName := "room-a-renamed"
	rec = doRequest(t, r, "PUT", "/api/v1/rooms/"+room.ID, updateRoomRequest{Name: &newName},
		map[string]string{"X-Admin-Key": full.AdminKey})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated chatcore.Room
	decodeBody(t, rec, &updated)
	assert.Equal(t, newName, updated.Name)
	assert.Empty(t, updated.AdminKey, "admin key must never round-trip in responses")
}

func TestArchiveRoomRequiresAdminKey(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-b")
	full, err := s.GetRoomWithAdminKey(room.ID)
	require.NoError(t, err)

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/archive", nil,
		map[string]string{"Authorization": "Bearer " + full.AdminKey})
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ArchivedAt)
}

func TestSendAndListMessages(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-c")

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/messages",
		sendMessageRequest{Sender: "nanook", Content: "hello world"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/rooms/"+room.ID+"/messages", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []chatcore.Message
	decodeBody(t, rec, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello world", msgs[0].Content)
}

func TestDeleteMessageRequiresOwnerOrAdmin(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-d")

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/messages",
		sendMessageRequest{Sender: "nanook", Content: "mine"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var msg chatcore.Message
	decodeBody(t, rec, &msg)

	rec = doRequest(t, r, "DELETE", "/api/v1/rooms/"+room.ID+"/messages/"+msg.ID+"?sender=someoneelse", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, r, "DELETE", "/api/v1/rooms/"+room.ID+"/messages/"+msg.ID+"?sender=nanook", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUploadFileRejectsOversizedPayload(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-e")

	big := make([]byte, maxFileBytes+1)
	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/files", uploadFileRequest{
		Sender:      "nanook",
		Filename:    "big.bin",
		ContentType: "application/octet-stream",
		Data:        base64.StdEncoding.EncodeToString(big),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAndDownloadFile(t *testing.T) {
	r, s, cleanup := newTestRouter(t)
	defer cleanup()
	room := createRoom(t, s, "room-f")

	rec := doRequest(t, r, "POST", "/api/v1/rooms/"+room.ID+"/files", uploadFileRequest{
		Sender:      "nanook",
		Filename:    "note.txt",
		ContentType: "text/plain",
		Data:        base64.StdEncoding.EncodeToString([]byte("hi there")),
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var info chatcore.FileInfo
	decodeBody(t, rec, &info)

	rec = doRequest(t, r, "GET", "/api/v1/rooms/"+room.ID+"/files/"+info.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi there", rec.Body.String())
}
