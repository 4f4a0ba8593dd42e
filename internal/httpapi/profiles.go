package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
	"github.com/Humans-Not-Required/agent-chat/internal/store"
)

type upsertProfileRequest struct {
	DisplayName *string         `json:"display_name"`
	SenderType  *string         `json:"sender_type"`
	AvatarURL   *string         `json:"avatar_url"`
	Bio         *string         `json:"bio"`
	StatusText  *string         `json:"status_text"`
	Metadata    json.RawMessage `json:"metadata"`
}

// UpsertProfile merges patch fields into sender's stored profile, publishing
// ProfileUpdated. Absent fields preserve their prior stored value.
func (h *Handlers) UpsertProfile(c *gin.Context) {
	var req upsertProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.Store.UpsertProfile(c.Param("sender"), store.ProfilePatch{
		DisplayName: req.DisplayName,
		SenderType:  req.SenderType,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
		StatusText:  req.StatusText,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.ProfileUpdated{Profile: profile})
	writeJSON(c, http.StatusOK, profile)
}

// GetProfile fetches a sender's profile.
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.Store.GetProfile(c.Param("sender"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, profile)
}

// ListProfiles lists profiles, optionally filtered by sender_type.
func (h *Handlers) ListProfiles(c *gin.Context) {
	profiles, err := h.Store.ListProfiles(c.Query("sender_type"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, profiles)
}

// DeleteProfile removes a sender's profile, publishing ProfileDeleted.
func (h *Handlers) DeleteProfile(c *gin.Context) {
	sender := c.Param("sender")
	if err := h.Store.DeleteProfile(sender); err != nil {
		writeErr(c, err)
		return
	}
	h.Bus.Publish(chatcore.ProfileDeleted{Sender: sender})
	c.Status(http.StatusNoContent)
}
