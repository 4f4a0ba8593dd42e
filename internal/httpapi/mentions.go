package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// Mentions returns messages that @-mention target, paginated by seq.
func (h *Handlers) Mentions(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		writeErr(c, chatcore.Invalid("target is required"))
		return
	}
	msgs, err := h.Engine.Mentions(target, queryInt64Ptr(c, "after"), c.Query("room"), queryIntDefault(c, "limit", 0))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msgs)
}

// UnreadMentions reports, per room, target's unread mention backlog.
func (h *Handlers) UnreadMentions(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		writeErr(c, chatcore.Invalid("target is required"))
		return
	}
	rows, err := h.Engine.UnreadMentions(target)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rows)
}
