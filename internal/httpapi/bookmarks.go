package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

type bookmarkRequest struct {
	Sender string `json:"sender"`
}

// AddBookmark is an idempotent bookmark insert, publishing RoomBookmarked.
func (h *Handlers) AddBookmark(c *gin.Context) {
	var req bookmarkRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	roomID := c.Param("id")
	b, err := h.Store.AddBookmark(roomID, req.Sender)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.RoomBookmarked{RoomID_: roomID, Sender: req.Sender})
	writeJSON(c, http.StatusOK, b)
}

// RemoveBookmark removes a bookmark, publishing RoomUnbookmarked.
func (h *Handlers) RemoveBookmark(c *gin.Context) {
	sender := c.Query("sender")
	if sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	roomID := c.Param("id")
	if err := h.Store.RemoveBookmark(roomID, sender); err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.RoomUnbookmarked{RoomID_: roomID, Sender: sender})
	c.Status(http.StatusNoContent)
}

// ListBookmarks lists a sender's bookmarked rooms, newest first.
func (h *Handlers) ListBookmarks(c *gin.Context) {
	sender := c.Query("sender")
	if sender == "" {
		writeErr(c, chatcore.Invalid("sender is required"))
		return
	}
	bookmarks, err := h.Store.ListBookmarks(sender)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bookmarks)
}
