package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

type reactionRequest struct {
	Sender string `json:"sender"`
	Emoji  string `json:"emoji"`
}

// AddReaction toggles a reaction on: adding it if absent.
func (h *Handlers) AddReaction(c *gin.Context) {
	h.toggleReaction(c)
}

// RemoveReaction toggles a reaction off: removing it if present.
func (h *Handlers) RemoveReaction(c *gin.Context) {
	h.toggleReaction(c)
}

func (h *Handlers) toggleReaction(c *gin.Context) {
	var req reactionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Sender == "" || req.Emoji == "" {
		writeErr(c, chatcore.Invalid("sender and emoji are required"))
		return
	}
	reaction, added, err := h.Engine.ToggleReaction(c.Param("id"), c.Param("msg_id"), req.Sender, req.Emoji)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reaction": reaction, "added": added})
}

// ListReactions returns every reaction on one message.
func (h *Handlers) ListReactions(c *gin.Context) {
	reactions, err := h.Store.ListReactions(c.Param("msg_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, reactions)
}

// BulkReactions groups reactions by message for an entire room.
func (h *Handlers) BulkReactions(c *gin.Context) {
	grouped, err := h.Store.ReactionsByMessage(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, grouped)
}
