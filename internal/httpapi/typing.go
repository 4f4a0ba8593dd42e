package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

type typingRequest struct {
	Sender string `json:"sender"`
}

// PostTyping publishes a Typing event, deduped to one per (room, sender)
// every 2 seconds.
func (h *Handlers) PostTyping(c *gin.Context) {
	var req typingRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	roomID := c.Param("id")
	if h.Typing.Allow(roomID, req.Sender) {
		h.Bus.Publish(chatcore.Typing{Sender: req.Sender, RoomID_: roomID})
	}
	c.Status(http.StatusNoContent)
}
