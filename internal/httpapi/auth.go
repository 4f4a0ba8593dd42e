package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// adminKeyFromRequest reads the bearer key from Authorization: Bearer <key>
// or X-Admin-Key, in that order.
func adminKeyFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if key, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(key)
		}
	}
	return strings.TrimSpace(c.GetHeader("X-Admin-Key"))
}

// requireAdmin fetches room id, checks its admin_key against the request's
// key, and returns the room on success. Any failure writes the response
// and returns ok=false.
func (h *Handlers) requireAdmin(c *gin.Context, roomID string) (chatcore.Room, bool) {
	room, err := h.Store.GetRoomWithAdminKey(roomID)
	if err != nil {
		writeErr(c, err)
		return chatcore.Room{}, false
	}
	key := adminKeyFromRequest(c)
	if key == "" {
		writeErr(c, chatcore.Unauthorized("admin key required"))
		return chatcore.Room{}, false
	}
	if key != room.AdminKey {
		writeErr(c, chatcore.Forbidden("admin key does not match this room"))
		return chatcore.Room{}, false
	}
	room.AdminKey = ""
	return room, true
}
