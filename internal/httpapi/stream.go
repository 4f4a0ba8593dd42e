package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/stream"
)

// StreamRoom opens a long-lived SSE connection for a room.
func (h *Handlers) StreamRoom(c *gin.Context) {
	h.Stream.Handle(c, stream.Request{
		RoomID:     c.Param("id"),
		Since:      c.Query("since"),
		After:      queryInt64Ptr(c, "after"),
		Sender:     c.Query("sender"),
		SenderType: queryStringPtr(c, "sender_type"),
	})
}
