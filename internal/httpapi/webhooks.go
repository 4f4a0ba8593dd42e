package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/messaging"
)

type createWebhookRequest struct {
	URL       string  `json:"url"`
	Events    string  `json:"events"` // "*" or comma-separated SSE event names
	Secret    *string `json:"secret"`
	CreatedBy string  `json:"created_by"`
}

// CreateWebhook registers an outgoing webhook subscription; requires the
// room's admin key.
func (h *Handlers) CreateWebhook(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	var req createWebhookRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.URL == "" {
		writeErr(c, chatcore.Invalid("url is required"))
		return
	}
	events := req.Events
	if events == "" {
		events = "*"
	}
	wh, err := h.Store.CreateWebhook(roomID, req.URL, events, req.Secret, req.CreatedBy)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, wh)
}

// ListWebhooks returns a room's outgoing webhooks.
func (h *Handlers) ListWebhooks(c *gin.Context) {
	whs, err := h.Store.ListWebhooks(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, whs)
}

// DeleteWebhook removes an outgoing webhook; requires the room's admin key.
func (h *Handlers) DeleteWebhook(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	if err := h.Store.DeleteWebhook(roomID, c.Param("wid")); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createIncomingWebhookRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

// CreateIncomingWebhook registers a token-gated posting endpoint; requires
// the room's admin key.
func (h *Handlers) CreateIncomingWebhook(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	var req createIncomingWebhookRequest
	if !bindJSON(c, &req) {
		return
	}
	wh, err := h.Store.CreateIncomingWebhook(roomID, req.Name, req.CreatedBy)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, wh)
}

// ListIncomingWebhooks returns a room's incoming webhooks.
func (h *Handlers) ListIncomingWebhooks(c *gin.Context) {
	whs, err := h.Store.ListIncomingWebhooks(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, whs)
}

// DeleteIncomingWebhook removes an incoming webhook; requires the room's
// admin key.
func (h *Handlers) DeleteIncomingWebhook(c *gin.Context) {
	roomID := c.Param("id")
	if _, ok := h.requireAdmin(c, roomID); !ok {
		return
	}
	if err := h.Store.DeleteIncomingWebhook(roomID, c.Param("wid")); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type incomingWebhookPostRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// PostHook resolves a public posting token to its room and sends the
// message through the standard Message Engine insert path.
func (h *Handlers) PostHook(c *gin.Context) {
	wh, err := h.Store.GetIncomingWebhookByToken(c.Param("token"))
	if err != nil {
		writeErr(c, err)
		return
	}
	var req incomingWebhookPostRequest
	if !bindJSON(c, &req) {
		return
	}
	sender := req.Sender
	if sender == "" {
		sender = wh.Name
	}
	msg, err := h.Engine.SendMessage(messaging.SendInput{RoomID: wh.RoomID, Sender: sender, Content: req.Content})
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, msg)
}
