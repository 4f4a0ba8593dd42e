package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type pinRequest struct {
	PinnedBy string `json:"pinned_by"`
}

// PinMessage pins a message; requires the room's admin key.
func (h *Handlers) PinMessage(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	var req pinRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.Engine.PinMessage(roomID, c.Param("msg_id"), req.PinnedBy)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msg)
}

// UnpinMessage unpins a message; requires the room's admin key.
func (h *Handlers) UnpinMessage(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	msg, err := h.Engine.UnpinMessage(roomID, c.Param("msg_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msg)
}

// ListPins returns a room's pinned messages.
func (h *Handlers) ListPins(c *gin.Context) {
	pins, err := h.Store.ListPinned(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, pins)
}
