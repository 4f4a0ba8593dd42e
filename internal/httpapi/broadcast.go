package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
)

type broadcastRequest struct {
	RoomIDs    []string        `json:"room_ids"`
	Sender     string          `json:"sender"`
	Content    string          `json:"content"`
	Metadata   json.RawMessage `json:"metadata"`
	SenderType *string         `json:"sender_type"`
}

// PostBroadcast sends one message to up to 20 rooms, reporting per-room
// success or failure rather than failing the whole call.
func (h *Handlers) PostBroadcast(c *gin.Context) {
	var req broadcastRequest
	if !bindJSON(c, &req) {
		return
	}
	deliveries, err := h.Engine.Broadcast(messaging.BroadcastInput{
		RoomIDs:    req.RoomIDs,
		Sender:     req.Sender,
		Content:    req.Content,
		Metadata:   req.Metadata,
		SenderType: req.SenderType,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deliveries": deliveries})
}
