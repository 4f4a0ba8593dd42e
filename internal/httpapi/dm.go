package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/dm"
)

type sendDMRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

// SendDM resolves (or creates) the sender/recipient's DM room and sends
// the message through the standard insert path.
func (h *Handlers) SendDM(c *gin.Context) {
	var req sendDMRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.DM.Send(dm.SendInput{Sender: req.Sender, Recipient: req.Recipient, Content: req.Content})
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"message": result.Message,
		"room_id": result.RoomID,
		"created": result.Created,
	})
}

// ListDMConversations lists a sender's DM conversations, enriched with the
// other participant.
func (h *Handlers) ListDMConversations(c *gin.Context) {
	sender := c.Query("sender")
	if sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	convs, err := h.DM.ListConversations(sender)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, convs)
}

// GetDMRoom returns a DM room's detail, same shape as a regular room.
func (h *Handlers) GetDMRoom(c *gin.Context) {
	room, err := h.Store.GetRoom(c.Param("room_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, room)
}
