package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

// CreateRoom creates a room and returns it with admin_key populated once.
func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Name) < 1 || len(req.Name) > 100 {
		writeErr(c, chatcore.Invalid("name must be between 1 and 100 characters"))
		return
	}
	room, err := h.Store.CreateRoom(req.Name, req.Description, req.CreatedBy)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, room)
}

// ListRooms lists non-DM rooms, optionally decorated with a bookmark flag.
func (h *Handlers) ListRooms(c *gin.Context) {
	f := store.RoomListFilter{
		IncludeArchived: queryBool(c, "include_archived"),
		Sender:          c.Query("sender"),
	}
	rooms, err := h.Store.ListRooms(f)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rooms)
}

// GetRoom returns room detail without admin_key.
func (h *Handlers) GetRoom(c *gin.Context) {
	room, err := h.Store.GetRoom(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, room)
}

type updateRoomRequest struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	MaxMessages      *json.RawMessage `json:"max_messages"`
	MaxMessageAgeHrs *json.RawMessage `json:"max_message_age_hours"`
}

// retentionField turns a present-but-possibly-null JSON field into the
// **int64 UpdateRoom expects: nil ⇒ "leave unchanged", non-nil pointing at
// nil ⇒ "clear to NULL", non-nil pointing at a value ⇒ "set".
func retentionField(raw *json.RawMessage) **int64 {
	if raw == nil {
		return nil
	}
	var v *int64
	if err := json.Unmarshal(*raw, &v); err != nil {
		return nil
	}
	return &v
}

// UpdateRoom patches name/description/retention fields; requires the
// room's admin key. Retention fields distinguish "absent" (unchanged) from
// "null" (clear) by presence in the JSON body, not just nil-ness.
func (h *Handlers) UpdateRoom(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	var req updateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.Store.UpdateRoom(roomID, req.Name, req.Description,
		retentionField(req.MaxMessages), retentionField(req.MaxMessageAgeHrs))
	if err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.RoomUpdated{Room: chatcore.RoomWithStats{Room: room}})
	writeJSON(c, http.StatusOK, room)
}

// ArchiveRoom sets archived_at; requires the room's admin key.
func (h *Handlers) ArchiveRoom(c *gin.Context) {
	h.setArchived(c, true)
}

// UnarchiveRoom clears archived_at; requires the room's admin key.
func (h *Handlers) UnarchiveRoom(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *Handlers) setArchived(c *gin.Context, archived bool) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	room, err := h.Store.SetRoomArchived(roomID, archived)
	if err != nil {
		writeErr(c, err)
		return
	}
	if archived {
		h.Bus.Publish(chatcore.RoomArchived{Room: chatcore.RoomWithStats{Room: room}})
	} else {
		h.Bus.Publish(chatcore.RoomUnarchived{Room: chatcore.RoomWithStats{Room: room}})
	}
	writeJSON(c, http.StatusOK, room)
}

// DeleteRoom removes a room and everything that cascades from it; requires
// the room's admin key.
func (h *Handlers) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	if err := h.Store.DeleteRoom(roomID); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
