package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

// ActivityFeed is the cross-room feed, newest first.
func (h *Handlers) ActivityFeed(c *gin.Context) {
	f := store.ListFilter{
		Sender:     c.Query("sender"),
		SenderType: c.Query("sender_type"),
		Since:      c.Query("since"),
		Before:     c.Query("before"),
		After:      queryInt64Ptr(c, "after"),
		BeforeSeq:  queryInt64Ptr(c, "before_seq"),
		Limit:      queryIntDefault(c, "limit", 0),
		Latest:     queryInt64Ptr(c, "latest"),
	}
	rows, err := h.Engine.ActivityFeed(f)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rows)
}

// Search runs FTS with a LIKE fallback, scoped by optional room/sender
// filters.
func (h *Handlers) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		writeErr(c, chatcore.Invalid("q is required"))
		return
	}
	f := store.SearchFilter{
		Room:       c.Query("room"),
		Sender:     c.Query("sender"),
		SenderType: c.Query("sender_type"),
		Limit:      queryIntDefault(c, "limit", 0),
	}
	msgs, err := h.Engine.Search(q, f)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msgs)
}

// Participants aggregates distinct senders in a room from messages.
func (h *Handlers) Participants(c *gin.Context) {
	participants, err := h.Store.Participants(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, participants)
}
