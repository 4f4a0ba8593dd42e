package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoomPresence returns who is currently connected to one room.
func (h *Handlers) RoomPresence(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.Presence.GetRoom(c.Param("id")))
}

// AllPresence returns presence across every room.
func (h *Handlers) AllPresence(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.Presence.GetAll())
}
