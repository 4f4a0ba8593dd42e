package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

type setReadRequest struct {
	Sender string `json:"sender"`
	Seq    int64  `json:"seq"`
}

// SetReadPosition records how far sender has read in a room.
func (h *Handlers) SetReadPosition(c *gin.Context) {
	var req setReadRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	rp, err := h.Engine.SetReadPosition(c.Param("id"), req.Sender, req.Seq)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rp)
}

// Unread reports unread message counts per room for a sender.
func (h *Handlers) Unread(c *gin.Context) {
	sender := c.Query("sender")
	if sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	rows, err := h.Store.Unread(sender)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rows)
}
