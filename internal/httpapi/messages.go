package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

type sendMessageRequest struct {
	Sender     string          `json:"sender"`
	Content    string          `json:"content"`
	Metadata   json.RawMessage `json:"metadata"`
	ReplyTo    *string         `json:"reply_to"`
	SenderType *string         `json:"sender_type"`
}

// SendMessage inserts a message into the room.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.Engine.SendMessage(messaging.SendInput{
		RoomID:     c.Param("id"),
		Sender:     req.Sender,
		Content:    req.Content,
		Metadata:   req.Metadata,
		ReplyTo:    req.ReplyTo,
		SenderType: req.SenderType,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, msg)
}

type editMessageRequest struct {
	Sender   string          `json:"sender"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata"`
}

// EditMessage edits a message; sender must match the stored owner.
func (h *Handlers) EditMessage(c *gin.Context) {
	var req editMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.Engine.EditMessage(c.Param("id"), c.Param("msg_id"), req.Sender, req.Content, req.Metadata)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msg)
}

// DeleteMessage removes a message; the actor must be the original sender
// (via ?sender=) or hold the room's admin key.
func (h *Handlers) DeleteMessage(c *gin.Context) {
	roomID, msgID := c.Param("id"), c.Param("msg_id")
	sender := c.Query("sender")
	if sender != "" {
		msg, err := h.Store.GetMessage(roomID, msgID)
		if err != nil {
			writeErr(c, err)
			return
		}
		if msg.Sender != sender {
			writeErr(c, chatcore.Forbidden("sender does not match message owner"))
			return
		}
	} else if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	if err := h.Engine.DeleteMessage(roomID, msgID); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMessages lists a room's messages with cursor/filter support.
func (h *Handlers) ListMessages(c *gin.Context) {
	f := store.ListFilter{
		RoomID:     c.Param("id"),
		Sender:     c.Query("sender"),
		SenderType: c.Query("sender_type"),
		Since:      c.Query("since"),
		Before:     c.Query("before"),
		After:      queryInt64Ptr(c, "after"),
		BeforeSeq:  queryInt64Ptr(c, "before_seq"),
		Limit:      queryIntDefault(c, "limit", 0),
		Latest:     queryInt64Ptr(c, "latest"),
	}
	if exclude := c.QueryArray("exclude_sender"); len(exclude) > 0 {
		f.ExcludeSender = exclude
	}
	msgs, err := h.Engine.ListMessages(f)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msgs)
}

// ListEdits returns a message's edit history, oldest first.
func (h *Handlers) ListEdits(c *gin.Context) {
	edits, err := h.Store.ListEdits(c.Param("msg_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, edits)
}

// Thread returns a message's root and its descendants, depth-annotated.
func (h *Handlers) Thread(c *gin.Context) {
	root, replies, err := h.Engine.Thread(c.Param("id"), c.Param("msg_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"root": root, "replies": replies})
}
